package game

// FoodType identifies what a food item does when eaten. The byte values are
// part of the wire protocol.
type FoodType uint8

const (
	// FoodApple grows the eater and relocates itself on eat.
	FoodApple FoodType = 1
	// FoodMango is removed on eat and grants the eater a timed boost.
	FoodMango FoodType = 2
)

const nFoodTypes = 2

// Gameplay constants baked into both the server and the client. Changing any
// of these is a protocol break.
const (
	// AppleGrowth is the stomach credit granted per apple.
	AppleGrowth = 4
	// MaxFood caps the number of food items on the map.
	MaxFood = 20
	// spawnMargin keeps spawned food away from the walls.
	spawnMargin = 2
)

// Food is a collectible item on the grid.
type Food struct {
	Pos  Point
	Type FoodType
}

func (t FoodType) String() string {
	switch t {
	case FoodApple:
		return "apple"
	case FoodMango:
		return "mango"
	}
	return "invalid"
}
