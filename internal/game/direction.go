package game

// Direction is a movement axis on the grid. The byte values are part of the
// wire protocol (Move payload) and must match the client.
type Direction uint8

const (
	DirUp    Direction = 1
	DirDown  Direction = 2
	DirLeft  Direction = 3
	DirRight Direction = 4
)

// Valid reports whether d is one of the four movement directions.
func (d Direction) Valid() bool {
	return d >= DirUp && d <= DirRight
}

// Opposite returns the reverse of d.
func (d Direction) Opposite() Direction {
	switch d {
	case DirUp:
		return DirDown
	case DirDown:
		return DirUp
	case DirLeft:
		return DirRight
	case DirRight:
		return DirLeft
	}
	return 0
}

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	}
	return "invalid"
}
