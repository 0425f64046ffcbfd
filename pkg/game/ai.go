package game

// GreedyNavigator heads for the food one step at a time. It has no
// lookahead and can trap itself.
type GreedyNavigator struct {
	rng Rand
}

// NewGreedyNavigator creates a navigator. A nil rng uses the global source.
func NewGreedyNavigator(rng Rand) *GreedyNavigator {
	return &GreedyNavigator{rng: orGlobal(rng)}
}

// ChooseDirection computes the next move for s.
func (n *GreedyNavigator) ChooseDirection(s State) Direction {
	head := s.Head()
	reverse := s.Direction.Opposite()

	safe := make([]Direction, 0, len(Directions))
	closer := make([]Direction, 0, len(Directions))
	currentDist := Manhattan(head, s.Food)

	for _, d := range Directions {
		// Prevent 180-degree turns
		if d == reverse {
			continue
		}

		next, ok := nextHead(s, d)
		if !ok || s.Occupies(next) {
			continue
		}
		safe = append(safe, d)

		if Manhattan(next, s.Food) < currentDist {
			closer = append(closer, d)
		}
	}

	switch {
	case len(closer) > 0:
		return closer[n.rng.Intn(len(closer))]
	case len(safe) > 0:
		return safe[n.rng.Intn(len(safe))]
	default:
		return s.Direction
	}
}

// nextHead applies the boundary policy to a step from the head.
func nextHead(s State, d Direction) (Point, bool) {
	p := Neighbor(s.Head(), d)
	if s.Mode == ModePassThrough {
		return Wrap(p, s.GridSize), true
	}
	return p, InBounds(p, s.GridSize)
}
