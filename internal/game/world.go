package game

import (
	"fmt"
	"log"
	"math/rand"
	"slices"
	"sync"
	"time"
)

// World holds the shared authoritative state of one session: every player's
// snake, dead or alive, and all food on the map. The world owns a single
// coarse mutex; workers must hold it for the duration of any read or
// mutation and release it immediately after.
type World struct {
	mu sync.Mutex

	dims    int16
	period  time.Duration
	noDeath bool

	Food    []*Food
	Players []*Snake
}

// NewWorld creates a world of the given square dimension with one apple at a
// random interior coordinate. noDeath suppresses fatal collision outcomes
// while still logging them.
func NewWorld(dims int16, period time.Duration, noDeath bool) *World {
	w := &World{
		dims:    dims,
		period:  period,
		noDeath: noDeath,
	}
	w.Food = []*Food{{Pos: w.randomInterior(), Type: FoodApple}}
	return w
}

// Lock acquires the world mutex.
func (w *World) Lock() { w.mu.Lock() }

// Unlock releases the world mutex.
func (w *World) Unlock() { w.mu.Unlock() }

// Dimensions returns the square grid side length in blocks.
func (w *World) Dimensions() int16 { return w.dims }

// Period returns the tick period the world was configured with.
func (w *World) Period() time.Duration { return w.period }

// AddPlayer registers a snake for player id at (x, y), facing away from its
// spawn quadrant so it never starts by running straight into the nearest
// walls. Caller must hold the world lock.
func (w *World) AddPlayer(id uint8, color RGB, x, y int16) {
	half := w.dims / 2
	var dir Direction
	switch {
	case x <= half && y <= half:
		dir = DirDown
	case x <= half:
		dir = DirRight
	case y <= half:
		dir = DirLeft
	default:
		dir = DirUp
	}
	w.Players = append(w.Players, NewSnake(id, color, x, y, dir))
}

// Player returns the snake registered for id. A missing id is an invariant
// violation: the world never references a player it did not register.
func (w *World) Player(id uint8) (*Snake, error) {
	for _, s := range w.Players {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, fmt.Errorf("game: unknown player id %d", id)
}

// TileKind classifies what occupies a grid coordinate.
type TileKind uint8

const (
	TileEmpty TileKind = iota
	TileSnake
	TileFood
	TileWall
)

// Tile is the result of classifying one coordinate. SnakeID is set for
// TileSnake, FoodType for TileFood.
type Tile struct {
	Kind     TileKind
	SnakeID  uint8
	FoodType FoodType
}

// CheckTile classifies the coordinate for the snake identified by selfID.
// Snake bodies win over food and food over wall; wall and body never coincide
// in a valid state, the wall check only comes last. The wall is the outermost
// ring of tiles. Caller must hold the world lock.
func (w *World) CheckTile(x, y int16, selfID uint8) Tile {
	for _, s := range w.Players {
		if s.contains(x, y, selfID) {
			return Tile{Kind: TileSnake, SnakeID: s.ID}
		}
	}
	for _, f := range w.Food {
		if f.Pos.X == x && f.Pos.Y == y {
			return Tile{Kind: TileFood, FoodType: f.Type}
		}
	}
	if x < 1 || y < 1 || x >= w.dims-1 || y >= w.dims-1 {
		return Tile{Kind: TileWall}
	}
	return Tile{Kind: TileEmpty}
}

// UpdateSnake advances the snake one tick and resolves whatever its head
// landed on: wall and snake tiles kill, apples feed, mangoes boost. It
// reports whether a mango was eaten this tick so the caller can start its
// boost timer. Caller must hold the world lock.
func (w *World) UpdateSnake(id uint8) (boosted bool, err error) {
	snake, err := w.Player(id)
	if err != nil {
		return false, err
	}
	if snake.HasLost {
		// Frozen snakes stay where they died; re-resolving the head would
		// re-report the same collision every tick.
		return false, nil
	}
	snake.advance()
	head := snake.Head()

	tile := w.CheckTile(head.X, head.Y, id)
	switch tile.Kind {
	case TileEmpty:
	case TileSnake:
		w.kill(id, tile.SnakeID)
	case TileWall:
		// Running into a wall is self-inflicted.
		w.kill(id, id)
	case TileFood:
		switch tile.FoodType {
		case FoodApple:
			snake.Stomach += AppleGrowth
			w.relocateFood(head)
		case FoodMango:
			snake.Boost = true
			w.removeFood(head)
			boosted = true
		}
		w.maybeSpawnFood()
	}
	return boosted, nil
}

// kill marks the victim as lost and credits the killer. In no-death mode the
// kill is logged but not applied.
func (w *World) kill(victim, killer uint8) {
	log.Printf("snake %d killed snake %d", killer, victim)
	if w.noDeath {
		return
	}
	if s, err := w.Player(victim); err == nil {
		s.HasLost = true
	}
}

// relocateFood moves the food item at p to a fresh random interior
// coordinate. Caller must hold the world lock.
func (w *World) relocateFood(p Point) {
	for _, f := range w.Food {
		if f.Pos == p {
			f.Pos = w.randomInterior()
			return
		}
	}
}

// removeFood deletes any food item at p. Caller must hold the world lock.
func (w *World) removeFood(p Point) {
	kept := w.Food[:0]
	for _, f := range w.Food {
		if f.Pos != p {
			kept = append(kept, f)
		}
	}
	w.Food = kept
}

// maybeSpawnFood gives a 50% chance that one extra food item appears after
// any food is eaten, as long as the map is under the cap. The type is
// sampled uniformly over both kinds.
func (w *World) maybeSpawnFood() {
	if len(w.Food) >= MaxFood {
		return
	}
	if rand.Intn(2) == 0 {
		return
	}
	w.Food = append(w.Food, &Food{
		Pos:  w.randomInterior(),
		Type: FoodType(1 + rand.Intn(nFoodTypes)),
	})
}

// randomInterior returns a coordinate at least spawnMargin tiles away from
// every wall.
func (w *World) randomInterior() Point {
	span := int(w.dims) - 2*spawnMargin
	return Point{
		X: int16(spawnMargin + rand.Intn(span)),
		Y: int16(spawnMargin + rand.Intn(span)),
	}
}

// Alive returns the ids of snakes still in play, in ascending order.
// Caller must hold the world lock.
func (w *World) Alive() []uint8 {
	ids := make([]uint8, 0, len(w.Players))
	for _, s := range w.Players {
		if !s.HasLost {
			ids = append(ids, s.ID)
		}
	}
	slices.Sort(ids)
	return ids
}

// AliveSnakes returns the snakes still in play, ascending by id. Caller must
// hold the world lock.
func (w *World) AliveSnakes() []*Snake {
	snakes := make([]*Snake, 0, len(w.Players))
	for _, id := range w.Alive() {
		s, err := w.Player(id)
		if err != nil {
			continue
		}
		snakes = append(snakes, s)
	}
	return snakes
}
