package game

import (
	"math/rand"
	"testing"
)

// TestPlaceFoodAvoidsSnake places food against many random bodies
func TestPlaceFoodAvoidsSnake(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const n = 8

	for trial := 0; trial < 200; trial++ {
		// Random subset of cells, never the full board.
		count := rng.Intn(n*n - 1)
		perm := rng.Perm(n * n)[:count]
		snake := make([]Point, 0, count)
		for _, idx := range perm {
			snake = append(snake, Point{X: idx % n, Y: idx / n})
		}

		food := PlaceFood(snake, n, rng)
		if !InBounds(food, n) {
			t.Fatalf("food %v off the board", food)
		}
		for _, p := range snake {
			if p == food {
				t.Fatalf("trial %d: food %v placed on the snake", trial, food)
			}
		}
	}
}

func TestPlaceFoodLastFreeCell(t *testing.T) {
	snake := []Point{{0, 0}, {1, 0}, {1, 1}}
	food := PlaceFood(snake, 2, rand.New(rand.NewSource(1)))
	if food != (Point{X: 0, Y: 1}) {
		t.Errorf("food = %v, want the only free cell (0,1)", food)
	}
}

func TestPlaceFoodFullBoard(t *testing.T) {
	snake := []Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	if food := PlaceFood(snake, 2, fixedRand(3)); food != (Point{}) {
		t.Errorf("full board should return the origin, got %v", food)
	}
}

func TestPlaceFoodNilRand(t *testing.T) {
	food := PlaceFood([]Point{{0, 0}}, 3, nil)
	if food == (Point{}) || !InBounds(food, 3) {
		t.Errorf("unexpected food %v", food)
	}
}
