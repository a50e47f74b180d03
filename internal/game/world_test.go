package game

import (
	"testing"
	"time"
)

func testWorld(dims int16) *World {
	return NewWorld(dims, 50*time.Millisecond, false)
}

func TestNewWorldSeedsOneApple(t *testing.T) {
	w := testWorld(16)
	if len(w.Food) != 1 {
		t.Fatalf("got %d food items, want 1", len(w.Food))
	}
	if w.Food[0].Type != FoodApple {
		t.Errorf("seed food type = %v, want apple", w.Food[0].Type)
	}
	p := w.Food[0].Pos
	if p.X < spawnMargin || p.Y < spawnMargin || p.X >= 16-spawnMargin || p.Y >= 16-spawnMargin {
		t.Errorf("seed food at %v outside the interior", p)
	}
}

func TestAddPlayerSpawnDirections(t *testing.T) {
	cases := []struct {
		x, y int16
		want Direction
	}{
		{4, 4, DirDown},
		{4, 60, DirRight},
		{60, 4, DirLeft},
		{60, 60, DirUp},
	}
	w := testWorld(64)
	for i, c := range cases {
		w.AddPlayer(uint8(i+1), RGB{}, c.x, c.y)
		s, err := w.Player(uint8(i + 1))
		if err != nil {
			t.Fatalf("Player(%d): %v", i+1, err)
		}
		if s.Direction != c.want {
			t.Errorf("spawn (%d,%d): direction %v, want %v", c.x, c.y, s.Direction, c.want)
		}
	}
}

func TestPlayerUnknown(t *testing.T) {
	w := testWorld(16)
	if _, err := w.Player(9); err == nil {
		t.Error("Player(9) returned no error for an unregistered id")
	}
}

func TestCheckTileWallRing(t *testing.T) {
	w := testWorld(16)
	w.Food = nil
	walls := []Point{{0, 5}, {15, 5}, {5, 0}, {5, 15}, {0, 0}, {15, 15}}
	for _, p := range walls {
		if got := w.CheckTile(p.X, p.Y, 0); got.Kind != TileWall {
			t.Errorf("CheckTile%v = %v, want wall", p, got.Kind)
		}
	}
	interior := []Point{{1, 1}, {14, 14}, {8, 8}}
	for _, p := range interior {
		if got := w.CheckTile(p.X, p.Y, 0); got.Kind != TileEmpty {
			t.Errorf("CheckTile%v = %v, want empty", p, got.Kind)
		}
	}
}

func TestCheckTilePrecedence(t *testing.T) {
	w := testWorld(16)
	w.Food = []*Food{{Pos: Point{X: 5, Y: 5}, Type: FoodMango}}
	w.Players = []*Snake{{ID: 1, Nodes: []Point{{X: 5, Y: 3}, {X: 5, Y: 7}}}}

	got := w.CheckTile(5, 5, 2)
	if got.Kind != TileSnake || got.SnakeID != 1 {
		t.Errorf("snake under food: got %+v, want snake 1", got)
	}
	got = w.CheckTile(5, 5, 1)
	if got.Kind != TileFood || got.FoodType != FoodMango {
		t.Errorf("food without snake: got %+v, want mango", got)
	}
}

func TestUpdateSnakeApple(t *testing.T) {
	w := testWorld(16)
	w.AddPlayer(1, RGB{}, 4, 4)
	w.Food = []*Food{{Pos: Point{X: 4, Y: 5}, Type: FoodApple}}

	boosted, err := w.UpdateSnake(1)
	if err != nil {
		t.Fatalf("UpdateSnake: %v", err)
	}
	if boosted {
		t.Error("apple reported as boost")
	}
	s, _ := w.Player(1)
	// One credit spent moving, then the apple's growth lands on top.
	if want := uint8(initialStomach - 1 + AppleGrowth); s.Stomach != want {
		t.Errorf("stomach = %d, want %d", s.Stomach, want)
	}
	if s.HasLost {
		t.Error("snake died eating an apple")
	}
	if len(w.Food) < 1 || len(w.Food) > 2 {
		t.Errorf("got %d food items after apple, want 1 or 2", len(w.Food))
	}
	if w.Food[0].Type != FoodApple {
		t.Errorf("relocated apple changed type to %v", w.Food[0].Type)
	}
}

func TestUpdateSnakeMango(t *testing.T) {
	w := testWorld(16)
	w.AddPlayer(1, RGB{}, 4, 4)
	w.Food = []*Food{{Pos: Point{X: 4, Y: 5}, Type: FoodMango}}

	boosted, err := w.UpdateSnake(1)
	if err != nil {
		t.Fatalf("UpdateSnake: %v", err)
	}
	if !boosted {
		t.Error("mango did not report a boost")
	}
	s, _ := w.Player(1)
	if !s.Boost {
		t.Error("boost flag not set")
	}
	// The mango is consumed outright; at most one random replacement spawns.
	if len(w.Food) > 1 {
		t.Errorf("got %d food items after mango, want at most 1", len(w.Food))
	}
}

func TestUpdateSnakeWallDeath(t *testing.T) {
	w := testWorld(16)
	w.AddPlayer(1, RGB{}, 4, 4)
	w.Food = nil
	s, _ := w.Player(1)
	s.Direction = DirLeft
	s.Moving = DirLeft

	for i := 0; i < 3; i++ {
		if _, err := w.UpdateSnake(1); err != nil {
			t.Fatalf("UpdateSnake: %v", err)
		}
		if s.HasLost {
			t.Fatalf("snake died at %v before reaching the wall", s.Head())
		}
	}
	if _, err := w.UpdateSnake(1); err != nil {
		t.Fatalf("UpdateSnake: %v", err)
	}
	if !s.HasLost {
		t.Errorf("snake at %v survived the wall", s.Head())
	}
}

func TestUpdateSnakeNoDeathMode(t *testing.T) {
	w := NewWorld(16, 50*time.Millisecond, true)
	w.AddPlayer(1, RGB{}, 4, 4)
	w.Food = nil
	s, _ := w.Player(1)
	s.Direction = DirLeft
	s.Moving = DirLeft

	for i := 0; i < 6; i++ {
		if _, err := w.UpdateSnake(1); err != nil {
			t.Fatalf("UpdateSnake: %v", err)
		}
	}
	if s.HasLost {
		t.Error("snake lost in no-death mode")
	}
}

func TestUpdateSnakeCollisionCreditsKiller(t *testing.T) {
	w := testWorld(16)
	w.AddPlayer(1, RGB{}, 4, 4)
	w.AddPlayer(2, RGB{}, 6, 3)
	w.Food = nil

	s1, _ := w.Player(1)
	s1.Direction = DirRight
	s1.Moving = DirRight
	s2, _ := w.Player(2)
	s2.Nodes = []Point{{X: 6, Y: 3}, {X: 6, Y: 10}}

	// Two steps put player 1's head onto player 2's vertical body.
	w.UpdateSnake(1)
	w.UpdateSnake(1)

	if !s1.HasLost {
		t.Error("player 1 survived running into player 2")
	}
	if s2.HasLost {
		t.Error("player 2 lost while being run into")
	}
	alive := w.Alive()
	if len(alive) != 1 || alive[0] != 2 {
		t.Errorf("Alive() = %v, want [2]", alive)
	}
}

func TestTurnAtSpawnDoesNotSelfCollide(t *testing.T) {
	w := testWorld(16)
	w.AddPlayer(1, RGB{}, 4, 4)
	w.Food = nil
	s, _ := w.Player(1)

	s.ChangeIntent(DirRight)
	if _, err := w.UpdateSnake(1); err != nil {
		t.Fatalf("UpdateSnake: %v", err)
	}
	if s.HasLost {
		t.Error("turning on the spawn tile killed the snake")
	}
}

func TestAliveAscending(t *testing.T) {
	w := testWorld(64)
	w.AddPlayer(3, RGB{}, 60, 4)
	w.AddPlayer(1, RGB{}, 4, 4)
	w.AddPlayer(2, RGB{}, 4, 60)

	alive := w.Alive()
	if len(alive) != 3 || alive[0] != 1 || alive[1] != 2 || alive[2] != 3 {
		t.Fatalf("Alive() = %v, want [1 2 3]", alive)
	}

	s2, _ := w.Player(2)
	s2.HasLost = true
	alive = w.Alive()
	if len(alive) != 2 || alive[0] != 1 || alive[1] != 3 {
		t.Errorf("Alive() = %v, want [1 3]", alive)
	}

	snakes := w.AliveSnakes()
	if len(snakes) != 2 || snakes[0].ID != 1 || snakes[1].ID != 3 {
		t.Errorf("AliveSnakes() ids wrong: %v, %v", snakes[0].ID, snakes[1].ID)
	}
}

func TestEndConditionThreePlayers(t *testing.T) {
	w := testWorld(64)
	for i, p := range []Point{{4, 4}, {4, 60}, {60, 4}} {
		w.AddPlayer(uint8(i+1), RGB{}, p.X, p.Y)
	}
	if len(w.Alive()) < 2 {
		t.Fatal("session over with all three alive")
	}
	s1, _ := w.Player(1)
	s1.HasLost = true
	if len(w.Alive()) < 2 {
		t.Fatal("session over with two alive")
	}
	s2, _ := w.Player(2)
	s2.HasLost = true
	if len(w.Alive()) >= 2 {
		t.Error("session not over with one alive")
	}
}

func TestMaybeSpawnFoodRespectsCap(t *testing.T) {
	w := testWorld(64)
	w.Food = nil
	for i := 0; i < MaxFood; i++ {
		w.Food = append(w.Food, &Food{Pos: Point{X: int16(i + 2), Y: 5}, Type: FoodApple})
	}
	for i := 0; i < 50; i++ {
		w.maybeSpawnFood()
	}
	if len(w.Food) != MaxFood {
		t.Errorf("food count %d exceeded cap %d", len(w.Food), MaxFood)
	}
}

func TestRandomInteriorStaysOffWalls(t *testing.T) {
	w := testWorld(16)
	for i := 0; i < 200; i++ {
		p := w.randomInterior()
		if p.X < spawnMargin || p.Y < spawnMargin || p.X > 16-spawnMargin-1 || p.Y > 16-spawnMargin-1 {
			t.Fatalf("randomInterior() = %v outside margin", p)
		}
	}
}

func TestRemoveAndRelocateFood(t *testing.T) {
	w := testWorld(16)
	w.Food = []*Food{
		{Pos: Point{X: 3, Y: 3}, Type: FoodApple},
		{Pos: Point{X: 9, Y: 9}, Type: FoodMango},
	}
	w.removeFood(Point{X: 9, Y: 9})
	if len(w.Food) != 1 || w.Food[0].Pos != (Point{X: 3, Y: 3}) {
		t.Fatalf("removeFood left %+v", w.Food)
	}
	w.relocateFood(Point{X: 3, Y: 3})
	if len(w.Food) != 1 {
		t.Fatalf("relocateFood changed count to %d", len(w.Food))
	}
	if w.Food[0].Type != FoodApple {
		t.Errorf("relocateFood changed type to %v", w.Food[0].Type)
	}
}
