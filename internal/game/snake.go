package game

// Point is a grid coordinate in blocks. Coordinates fit in int16 because the
// wire protocol encodes them as signed 16-bit little-endian.
type Point struct {
	X int16
	Y int16
}

// RGB is a snake color triplet.
type RGB struct {
	R, G, B uint8
}

// initialStomach is the growth credit a snake spawns with: the body extends
// for this many ticks before the tail starts following.
const initialStomach = 10

// Snake is one player's snake. Nodes is the ordered polyline of turning
// points, head first; consecutive nodes always share exactly one coordinate
// (segments are never diagonal). Head and tail coincide at spawn.
type Snake struct {
	ID    uint8
	Color RGB
	Nodes []Point

	// Direction is the last committed movement axis. Moving is the player's
	// latest intent; the two differ for at most one tick, and that difference
	// is what triggers the corner insertion behind the head.
	Direction Direction
	Moving    Direction

	HasLost bool
	Stomach uint8
	Boost   bool
}

// NewSnake creates a snake at (x, y) facing dir, with head and tail on the
// same tile.
func NewSnake(id uint8, color RGB, x, y int16, dir Direction) *Snake {
	return &Snake{
		ID:        id,
		Color:     color,
		Nodes:     []Point{{x, y}, {x, y}},
		Direction: dir,
		Moving:    dir,
		Stomach:   initialStomach,
	}
}

// Head returns the head node.
func (s *Snake) Head() Point {
	return s.Nodes[0]
}

// Tail returns the tail node.
func (s *Snake) Tail() Point {
	return s.Nodes[len(s.Nodes)-1]
}

// Len returns the number of nodes in the polyline.
func (s *Snake) Len() int {
	return len(s.Nodes)
}

// ChangeIntent records the player's move intent. A move opposite to the
// committed direction is ignored: it would fold the head straight into the
// neck.
func (s *Snake) ChangeIntent(m Direction) {
	if !m.Valid() || m == s.Direction.Opposite() {
		return
	}
	s.Moving = m
}

// advance moves the snake one tick: the head shifts one block along the
// current intent, then the tail either consumes a stomach credit or retracts
// one step. Frozen snakes do not move at all.
func (s *Snake) advance() {
	if s.HasLost {
		return
	}

	if s.Moving != s.Direction {
		// Turning: duplicate the head position as a corner node behind the
		// head before it moves, so the following segment stays axis-aligned
		// while the head proceeds along the new axis. The order matters.
		s.Nodes = append(s.Nodes, Point{})
		copy(s.Nodes[2:], s.Nodes[1:])
		s.Nodes[1] = s.Nodes[0]
	}
	switch s.Moving {
	case DirUp:
		s.Nodes[0].Y--
	case DirDown:
		s.Nodes[0].Y++
	case DirLeft:
		s.Nodes[0].X--
	case DirRight:
		s.Nodes[0].X++
	}
	s.Direction = s.Moving

	if s.Stomach > 0 {
		// Growing: the tail stays put and the body lengthens by one block.
		s.Stomach--
		return
	}
	s.retractTail()
}

// retractTail pulls the tail one step toward the pre-tail node. When the tail
// has caught up with the pre-tail it is dropped first and the step applies to
// the new tail. Drop-then-step keeps the tail within one block of the body
// without ever overshooting.
func (s *Snake) retractTail() {
	last := len(s.Nodes) - 1
	if last >= 2 && s.Nodes[last] == s.Nodes[last-1] {
		s.Nodes = s.Nodes[:last]
		last--
	}
	tail := &s.Nodes[last]
	pre := s.Nodes[last-1]
	switch {
	case tail.X == pre.X && tail.Y != pre.Y:
		tail.Y += unitStep(pre.Y - tail.Y)
	case tail.Y == pre.Y && tail.X != pre.X:
		tail.X += unitStep(pre.X - tail.X)
	}
}

func unitStep(d int16) int16 {
	if d < 0 {
		return -1
	}
	return 1
}

// contains reports whether (x, y) lies on one of the snake's segments. When a
// snake is checked against itself the head-to-neck segment is skipped, so the
// corner node inserted this same tick can never register a false
// self-collision; every other own segment still counts.
func (s *Snake) contains(x, y int16, selfID uint8) bool {
	first := 0
	if selfID == s.ID {
		if len(s.Nodes) < 3 {
			return false
		}
		first = 1
	}
	for i := first; i+1 < len(s.Nodes); i++ {
		a, b := s.Nodes[i], s.Nodes[i+1]
		// Vertical segment.
		if a.X == b.X && x == a.X && between(y, a.Y, b.Y) {
			return true
		}
		// Horizontal segment.
		if a.Y == b.Y && y == a.Y && between(x, a.X, b.X) {
			return true
		}
	}
	return false
}

// between reports whether v lies in [a, b] or [b, a], inclusive.
func between(v, a, b int16) bool {
	if a > b {
		a, b = b, a
	}
	return a <= v && v <= b
}
