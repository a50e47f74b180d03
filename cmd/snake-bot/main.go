// snake-bot is a headless stand-in for the real rendering client: it
// completes the handshake, drains the frame stream, and sends a random move
// each input period. Useful for filling a roster while testing the server.
package main

import (
	"flag"
	"log"
	"math/rand"
	"net"
	"time"

	"snakearena/internal/game"
	"snakearena/internal/protocol"
)

func main() {
	var (
		addr       = flag.String("addr", "127.0.0.1:4000", "server address")
		movePeriod = flag.Duration("move-period", 300*time.Millisecond, "time between random moves")
	)
	flag.Parse()

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		log.Fatalf("dial %s: %v", *addr, err)
	}
	defer conn.Close()

	r := protocol.NewReader(conn, time.Second)

	t, payload, err := r.Next()
	if err != nil {
		log.Fatalf("handshake: %v", err)
	}
	if t != protocol.MsgPlayerID {
		log.Fatalf("handshake: expected player_id, got %s", t)
	}
	id, err := protocol.DecodePlayerID(payload)
	if err != nil {
		log.Fatalf("handshake: %v", err)
	}
	log.Printf("assigned player id %d", id)

	t, payload, err = r.Next()
	if err != nil {
		log.Fatalf("handshake: %v", err)
	}
	if t != protocol.MsgGameParams {
		log.Fatalf("handshake: expected game_params, got %s", t)
	}
	params, err := protocol.DecodeGameParams(payload)
	if err != nil {
		log.Fatalf("handshake: %v", err)
	}
	log.Printf("joined a %d-player game on a %dx%d map", len(params.Players), params.MapSize, params.MapSize)

	// Drain frames so the server's writes never back up; exit when the
	// session ends and the server closes the connection.
	done := make(chan struct{})
	go func() {
		defer close(done)
		frames := 0
		for {
			t, payload, err := r.Next()
			if err != nil {
				log.Printf("session over after %d frames (%v)", frames, err)
				return
			}
			if t != protocol.MsgFrame {
				continue
			}
			if _, err := protocol.DecodeFrame(payload); err != nil {
				log.Printf("bad frame: %v", err)
				return
			}
			frames++
		}
	}()

	ticker := time.NewTicker(*movePeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			// Pure random; the server rejects reversals on its own.
			d := game.Direction(1 + rand.Intn(4))
			if err := protocol.SendMove(conn, d); err != nil {
				return
			}
		}
	}
}
