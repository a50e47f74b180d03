package session

import (
	"context"
	"errors"
	"log"
	"net"
	"time"

	"snakearena/internal/config"
	"snakearena/internal/game"
	"snakearena/internal/metrics"
	"snakearena/internal/protocol"
)

const (
	// registerPoll is how long a worker sleeps between checks that the
	// roster has filled, so it does not monopolize the world lock.
	registerPoll = 200 * time.Millisecond

	// phaseSleep separates the polling phases of the simulation loop.
	phaseSleep = time.Millisecond

	// spawnOffset is how far in from the walls the corner spawns sit.
	spawnOffset = 4
)

// worker drives one player's connection through the session states:
// AwaitingPlayers, GameParamsSent, Simulating, Ended. Each worker advances
// only its own snake and writes only to its own connection; the shared world
// is touched strictly under its lock.
type worker struct {
	ctx     context.Context
	session string
	id      uint8
	players int
	color   game.RGB
	conn    net.Conn
	reader  *protocol.Reader
	world   *game.World
	cfg     config.Config
}

func (wk *worker) run() {
	defer wk.conn.Close()
	metrics.PlayersConnected.Inc()
	defer metrics.PlayersConnected.Dec()

	err := wk.awaitPlayers()
	if err == nil {
		err = wk.sendParams()
	}
	if err == nil {
		err = wk.simulate()
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		// Fatal for this worker only; the other players' workers keep going.
		metrics.WorkerFailures.Inc()
		log.Printf("[%s] player %d aborted: %v", wk.session, wk.id, err)
	}
}

// spawnCorner maps player ids 1 to 4 onto the four map corners, offset
// spawnOffset tiles from the walls.
func spawnCorner(id uint8, dims int16) (x, y int16) {
	switch id {
	case 1:
		return spawnOffset, spawnOffset
	case 2:
		return spawnOffset, dims - spawnOffset
	case 3:
		return dims - spawnOffset, spawnOffset
	case 4:
		return dims - spawnOffset, dims - spawnOffset
	}
	panic("session: player id out of range")
}

// awaitPlayers sends this player its id, registers its snake at the corner
// for its slot, and blocks until the whole roster has registered.
func (wk *worker) awaitPlayers() error {
	if err := protocol.SendPlayerID(wk.conn, wk.id); err != nil {
		return err
	}
	x, y := spawnCorner(wk.id, wk.world.Dimensions())
	wk.world.Lock()
	wk.world.AddPlayer(wk.id, wk.color, x, y)
	wk.world.Unlock()
	log.Printf("[%s] player %d registered at (%d,%d)", wk.session, wk.id, x, y)

	for {
		wk.world.Lock()
		registered := len(wk.world.Players)
		wk.world.Unlock()
		if registered == wk.players {
			return nil
		}
		select {
		case <-wk.ctx.Done():
			return wk.ctx.Err()
		case <-time.After(registerPoll):
		}
	}
}

// sendParams snapshots the full roster and sends this client its one-shot
// GameParams message.
func (wk *worker) sendParams() error {
	params := &protocol.GameParams{
		MapSize:      uint16(wk.cfg.MapSize),
		BlockSize:    uint16(wk.cfg.BlockSize),
		InitialSpeed: uint8(wk.cfg.InitialSpeed),
	}
	wk.world.Lock()
	for _, s := range wk.world.Players {
		head := s.Head()
		params.Players = append(params.Players, protocol.PlayerParams{
			ID:    s.ID,
			Color: s.Color,
			X0:    head.X,
			Y0:    head.Y,
		})
	}
	wk.world.Unlock()

	if err := protocol.SendGameParams(wk.conn, params); err != nil {
		return err
	}
	log.Printf("[%s] player %d sent game params", wk.session, wk.id)
	return nil
}

// simulate runs the main loop: poll for a move on the input cadence, advance
// this player's snake and broadcast a whole-world frame on the frame
// cadence, and stop once fewer than two snakes remain standing.
func (wk *worker) simulate() error {
	var (
		lastInput = time.Now()
		lastFrame = time.Now()
		lastBoost time.Time
		wasLost   bool
	)

	for {
		if wk.ctx.Err() != nil {
			return wk.ctx.Err()
		}

		if time.Since(lastInput) > wk.cfg.InputPeriod() {
			dir, ok, err := wk.reader.PollMove()
			if err != nil {
				return err
			}
			if ok {
				lastInput = time.Now()
				wk.world.Lock()
				snake, err := wk.world.Player(wk.id)
				if err != nil {
					wk.world.Unlock()
					return err
				}
				snake.ChangeIntent(dir)
				wk.world.Unlock()
			}
		}

		time.Sleep(phaseSleep)

		if time.Since(lastFrame) > wk.cfg.FramePeriod() {
			wk.world.Lock()
			boosted, err := wk.world.UpdateSnake(wk.id)
			if err != nil {
				wk.world.Unlock()
				return err
			}
			if boosted {
				lastBoost = time.Now()
			}
			snake, err := wk.world.Player(wk.id)
			if err != nil {
				wk.world.Unlock()
				return err
			}
			if snake.Boost {
				// One extra step per frame while boosted doubles the
				// movement rate.
				if _, err := wk.world.UpdateSnake(wk.id); err != nil {
					wk.world.Unlock()
					return err
				}
			}
			if time.Since(lastBoost) > wk.cfg.BoostDuration() {
				snake.Boost = false
			}
			if snake.HasLost && !wasLost {
				wasLost = true
				metrics.DeathsTotal.Inc()
			}
			payload := protocol.EncodeFrame(wk.world.Food, wk.world.AliveSnakes())
			wk.world.Unlock()

			metrics.TicksTotal.Inc()
			if err := protocol.WriteMessage(wk.conn, protocol.MsgFrame, payload); err != nil {
				return err
			}
			metrics.FramesSent.Inc()
			lastFrame = time.Now()
		}

		time.Sleep(phaseSleep)

		wk.world.Lock()
		alive := wk.world.Alive()
		if len(alive) < 2 {
			// One last tick so the final deaths land in the closing frame.
			if _, err := wk.world.UpdateSnake(wk.id); err != nil {
				wk.world.Unlock()
				return err
			}
			wk.world.Unlock()
			return wk.finish(alive)
		}
		wk.world.Unlock()

		time.Sleep(phaseSleep)
	}
}

// finish sends one final frame so every client sees the end state, then
// reports the outcome. The connection close in run ends the session for this
// player.
func (wk *worker) finish(alive []uint8) error {
	time.Sleep(phaseSleep)

	wk.world.Lock()
	payload := protocol.EncodeFrame(wk.world.Food, wk.world.AliveSnakes())
	wk.world.Unlock()
	if err := protocol.WriteMessage(wk.conn, protocol.MsgFrame, payload); err != nil {
		return err
	}
	metrics.FramesSent.Inc()

	switch len(alive) {
	case 0:
		log.Printf("[%s] player %d: game over, nobody survived", wk.session, wk.id)
	case 1:
		log.Printf("[%s] player %d: game over, player %d wins", wk.session, wk.id, alive[0])
	}
	log.Printf("[%s] closing connection with player %d", wk.session, wk.id)
	return nil
}
