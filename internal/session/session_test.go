package session

import (
	"context"
	"net"
	"testing"
	"time"

	"snakearena/internal/config"
	"snakearena/internal/game"
	"snakearena/internal/protocol"
)

func TestSpawnCorner(t *testing.T) {
	cases := []struct {
		id   uint8
		x, y int16
	}{
		{1, 4, 4},
		{2, 4, 60},
		{3, 60, 4},
		{4, 60, 60},
	}
	for _, c := range cases {
		x, y := spawnCorner(c.id, 64)
		if x != c.x || y != c.y {
			t.Errorf("spawnCorner(%d, 64) = (%d,%d), want (%d,%d)", c.id, x, y, c.x, c.y)
		}
	}
}

func TestSpawnCornerPanicsOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("spawnCorner(5) did not panic")
		}
	}()
	spawnCorner(5, 64)
}

func dialGame(t *testing.T, addr string) (net.Conn, *protocol.Reader) {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial %s: %v", addr, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn, protocol.NewReader(conn, 100*time.Millisecond)
}

func expectMessage(t *testing.T, r *protocol.Reader, want protocol.MsgType) []byte {
	t.Helper()
	typ, payload, err := r.Next()
	if err != nil {
		t.Fatalf("reading %s: %v", want, err)
	}
	if typ != want {
		t.Fatalf("got message %s, want %s", typ, want)
	}
	return payload
}

// TestSessionEndToEnd connects two clients, lets the snakes run into the
// walls, and checks the full message sequence from id assignment to the
// final frame.
func TestSessionEndToEnd(t *testing.T) {
	cfg := config.Defaults()
	cfg.ListenAddr = "127.0.0.1:0"
	cfg.Players = 2
	cfg.MapSize = 16
	cfg.FramePeriodMS = 5
	cfg.InputPeriodMS = 2

	srv := NewServer(cfg)
	if err := srv.Listen(); err != nil {
		t.Fatalf("Listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	addr := srv.Addr().String()
	c1, r1 := dialGame(t, addr)
	_, r2 := dialGame(t, addr)

	id1, err := protocol.DecodePlayerID(expectMessage(t, r1, protocol.MsgPlayerID))
	if err != nil {
		t.Fatalf("DecodePlayerID: %v", err)
	}
	id2, err := protocol.DecodePlayerID(expectMessage(t, r2, protocol.MsgPlayerID))
	if err != nil {
		t.Fatalf("DecodePlayerID: %v", err)
	}
	if id1 != 1 || id2 != 2 {
		t.Fatalf("assigned ids %d, %d; want 1, 2 in connect order", id1, id2)
	}

	params, err := protocol.DecodeGameParams(expectMessage(t, r1, protocol.MsgGameParams))
	if err != nil {
		t.Fatalf("DecodeGameParams: %v", err)
	}
	if params.MapSize != 16 {
		t.Errorf("params map size = %d, want 16", params.MapSize)
	}
	if len(params.Players) != 2 {
		t.Fatalf("params list %d players, want 2", len(params.Players))
	}
	if params.Players[0].X0 != 4 || params.Players[0].Y0 != 4 {
		t.Errorf("player 1 spawn (%d,%d), want (4,4)", params.Players[0].X0, params.Players[0].Y0)
	}
	if params.Players[1].X0 != 4 || params.Players[1].Y0 != 12 {
		t.Errorf("player 2 spawn (%d,%d), want (4,12)", params.Players[1].X0, params.Players[1].Y0)
	}
	expectMessage(t, r2, protocol.MsgGameParams)

	// The second client just absorbs its stream; the session cannot end
	// until its worker is done too.
	go func() {
		for {
			if _, _, err := r2.Next(); err != nil {
				return
			}
		}
	}()

	// Steer player 1 so the input path is exercised; it dies on the east
	// wall instead of the south one.
	if err := protocol.SendMove(c1, game.DirRight); err != nil {
		t.Fatalf("SendMove: %v", err)
	}

	var last *protocol.Frame
	frames := 0
	for {
		typ, payload, err := r1.Next()
		if err != nil {
			// Server closed the connection: session over.
			break
		}
		if typ != protocol.MsgFrame {
			t.Fatalf("mid-game message %s", typ)
		}
		fr, err := protocol.DecodeFrame(payload)
		if err != nil {
			t.Fatalf("frame %d: %v", frames, err)
		}
		last = fr
		frames++
		if frames > 10000 {
			t.Fatal("session did not terminate")
		}
	}

	if frames == 0 || last == nil {
		t.Fatal("no frames received")
	}
	if len(last.Snakes) >= 2 {
		t.Errorf("final frame lists %d alive snakes, want fewer than 2", len(last.Snakes))
	}
	if len(last.Food) == 0 {
		t.Error("final frame lists no food")
	}
	for _, s := range last.Snakes {
		if s.HasLost {
			t.Errorf("frame includes lost snake %d", s.ID)
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
