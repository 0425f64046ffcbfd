package game

// Navigator defines the brain of an unattended snake (demo bots, autoplay).
// Human players do not use one; their input goes through RequestDirection.
type Navigator interface {
	ChooseDirection(s State) Direction
}

// NavigatorFunc adapts a plain function to Navigator.
type NavigatorFunc func(s State) Direction

func (f NavigatorFunc) ChooseDirection(s State) Direction {
	return f(s)
}

var _ Navigator = (*GreedyNavigator)(nil)
