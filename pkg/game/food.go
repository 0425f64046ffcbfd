package game

import "math/rand"

// Rand is the randomness the generator and navigator need.
// *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

type globalRand struct{}

func (globalRand) Intn(n int) int { return rand.Intn(n) }

func orGlobal(rng Rand) Rand {
	if rng == nil {
		return globalRand{}
	}
	return rng
}

// PlaceFood picks a free cell uniformly at random.
// When the snake fills the board it returns the origin.
func PlaceFood(snake []Point, gridSize int, rng Rand) Point {
	occupied := make(map[Point]bool, len(snake))
	for _, p := range snake {
		occupied[p] = true
	}

	free := make([]Point, 0, gridSize*gridSize)
	for x := 0; x < gridSize; x++ {
		for y := 0; y < gridSize; y++ {
			p := Point{X: x, Y: y}
			if !occupied[p] {
				free = append(free, p)
			}
		}
	}

	if len(free) == 0 {
		return Point{} // board full
	}
	return free[orGlobal(rng).Intn(len(free))]
}
