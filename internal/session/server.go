// Package session runs game sessions: it accepts exactly N players on one
// TCP listener, drives one worker goroutine per player over a shared world,
// and starts the next session when the previous one ends.
package session

import (
	"context"
	"log"
	"math/rand"
	"net"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"snakearena/internal/config"
	"snakearena/internal/game"
	"snakearena/internal/metrics"
	"snakearena/internal/protocol"
)

// palette holds the snake colors handed out to players. It is shuffled once
// per session so repeat sessions look different.
var palette = []game.RGB{
	{R: 0x4C, G: 0x3B, B: 0xE3},
	{R: 0xDA, G: 0xAD, B: 0xFF},
	{R: 0xF6, G: 0x83, B: 0x03},
	{R: 0xF7, G: 0x49, B: 0x80},
	{R: 0x9A, G: 0xF4, B: 0x96},
	{R: 0x91, G: 0x67, B: 0x9D},
	{R: 0xE1, G: 0x1C, B: 0x2F},
	{R: 0x97, G: 0x99, B: 0x13},
}

// Server owns the game listener and runs sessions on it back to back.
type Server struct {
	cfg config.Config
	ln  net.Listener

	world atomic.Pointer[game.World]
}

// NewServer creates a server for the given configuration. Call Run to start
// serving.
func NewServer(cfg config.Config) *Server {
	return &Server{cfg: cfg}
}

// Listen binds the game listener. Run calls it if the caller has not.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return err
	}
	s.ln = ln
	return nil
}

// Addr returns the bound listener address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// CurrentWorld returns the world of the session in progress, or nil before
// the first session opens. Readers must take the world lock.
func (s *Server) CurrentWorld() *game.World {
	return s.world.Load()
}

// Run serves sessions until ctx is canceled. The listener is reused across
// sessions; each session gets a fresh world.
func (s *Server) Run(ctx context.Context) error {
	if s.ln == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}
	defer s.ln.Close()
	go func() {
		<-ctx.Done()
		s.ln.Close()
	}()

	log.Printf("listening on %s for %d-player sessions", s.ln.Addr(), s.cfg.Players)
	for {
		if err := s.runSession(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
	}
}

// runSession accepts one full roster, then blocks until every worker has
// finished its game.
func (s *Server) runSession(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	session := uuid.New().String()
	colors := make([]game.RGB, len(palette))
	copy(colors, palette)
	rand.Shuffle(len(colors), func(i, j int) { colors[i], colors[j] = colors[j], colors[i] })

	world := game.NewWorld(int16(s.cfg.MapSize), s.cfg.FramePeriod(), s.cfg.NoDeath)
	s.world.Store(world)
	metrics.SessionsStarted.Inc()
	log.Printf("[%s] session open, waiting for %d players", session, s.cfg.Players)

	var wg sync.WaitGroup
	for id := 1; id <= s.cfg.Players; id++ {
		conn, err := s.ln.Accept()
		if err != nil {
			// Unblock workers already waiting for the roster to fill.
			cancel()
			wg.Wait()
			return err
		}
		log.Printf("[%s] new connection from %s", session, conn.RemoteAddr())

		wk := &worker{
			ctx:     ctx,
			session: session,
			id:      uint8(id),
			players: s.cfg.Players,
			color:   colors[id-1],
			conn:    conn,
			reader:  protocol.NewReader(conn, s.cfg.ReadTimeout()),
			world:   world,
			cfg:     s.cfg,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			wk.run()
		}()
	}

	wg.Wait()
	log.Printf("[%s] session over", session)
	return nil
}
