package spectator

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"snakearena/internal/game"
)

type stubSource struct {
	world *game.World
}

func (s stubSource) CurrentWorld() *game.World { return s.world }

func TestSnapshotIncludesDeadSnakes(t *testing.T) {
	w := game.NewWorld(16, 50*time.Millisecond, false)
	w.AddPlayer(1, game.RGB{R: 1, G: 2, B: 3}, 4, 4)
	w.AddPlayer(2, game.RGB{R: 4, G: 5, B: 6}, 12, 12)
	s2, _ := w.Player(2)
	s2.HasLost = true

	snap := NewServer(stubSource{world: w}).snapshot()
	if snap == nil {
		t.Fatal("snapshot returned nil with a world present")
	}
	if snap.MapSize != 16 {
		t.Errorf("map size = %d, want 16", snap.MapSize)
	}
	if len(snap.Snakes) != 2 {
		t.Fatalf("snapshot lists %d snakes, want both", len(snap.Snakes))
	}
	if !snap.Snakes[1].Dead {
		t.Error("dead snake not flagged")
	}
	if snap.Snakes[0].Color != [3]uint8{1, 2, 3} {
		t.Errorf("snake color = %v", snap.Snakes[0].Color)
	}
	if len(snap.Food) != 1 {
		t.Errorf("snapshot lists %d food items, want 1", len(snap.Food))
	}
}

func TestSnapshotNilWorld(t *testing.T) {
	if snap := NewServer(stubSource{}).snapshot(); snap != nil {
		t.Errorf("snapshot without a session = %+v, want nil", snap)
	}
}

func TestHandlerStreamsSnapshots(t *testing.T) {
	w := game.NewWorld(16, 50*time.Millisecond, false)
	w.AddPlayer(1, game.RGB{R: 9, G: 9, B: 9}, 4, 4)

	ts := httptest.NewServer(NewServer(stubSource{world: w}).Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	ws, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	defer ws.Close()
	if resp != nil {
		resp.Body.Close()
	}

	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var snap Snapshot
	if err := ws.ReadJSON(&snap); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if snap.MapSize != 16 || len(snap.Snakes) != 1 || snap.Snakes[0].ID != 1 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
}
