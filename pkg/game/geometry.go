package game

// Neighbor returns the cell one step from p in direction d.
func Neighbor(p Point, d Direction) Point {
	dx, dy := d.Delta()
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Wrap maps p onto a toroidal n x n board.
func Wrap(p Point, n int) Point {
	return Point{X: mod(p.X, n), Y: mod(p.Y, n)}
}

// InBounds reports whether p lies on an n x n board.
func InBounds(p Point, n int) bool {
	return p.X >= 0 && p.X < n && p.Y >= 0 && p.Y < n
}

// IsOpposite reports whether a and b are a reverse pair.
func IsOpposite(a, b Direction) bool {
	return a.Opposite() == b
}

// Manhattan returns |dx| + |dy|.
func Manhattan(a, b Point) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func mod(v, n int) int {
	return ((v % n) + n) % n
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
