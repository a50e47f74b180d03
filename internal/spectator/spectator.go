// Package spectator streams read-only world snapshots to WebSocket
// observers. It sits outside the game protocol: snapshots are JSON with
// compact single-character keys so a browser overlay can consume them
// directly.
package spectator

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"snakearena/internal/game"
)

// WorldSource hands out the world currently being simulated, or nil when no
// session is in progress.
type WorldSource interface {
	CurrentWorld() *game.World
}

// snapshotInterval is the spectator broadcast cadence. Spectators are not
// latency-sensitive, so this is coarser than the game frame cadence.
const snapshotInterval = 100 * time.Millisecond

// SnakeDTO is one snake in a spectator snapshot.
// {"i":1,"c":[76,59,227],"s":[[4,4],[4,10]],"d":false}
type SnakeDTO struct {
	ID    uint8      `json:"i"`
	Color [3]uint8   `json:"c"`
	Nodes [][2]int16 `json:"s"`
	Dead  bool       `json:"d"`
	Boost bool       `json:"b,omitempty"`
}

// FoodDTO is one food item in a spectator snapshot.
type FoodDTO struct {
	Type uint8 `json:"t"`
	X    int16 `json:"x"`
	Y    int16 `json:"y"`
}

// Snapshot is the whole-world state pushed to a spectator. Unlike game
// frames it includes dead snakes, so an observer can keep rendering them.
type Snapshot struct {
	MapSize int16      `json:"m"`
	Snakes  []SnakeDTO `json:"s"`
	Food    []FoodDTO  `json:"f"`
}

// Server upgrades spectator requests and pushes snapshots until the peer
// goes away.
type Server struct {
	source   WorldSource
	upgrader websocket.Upgrader
}

// NewServer creates a spectator server over the given world source.
func NewServer(source WorldSource) *Server {
	return &Server{
		source: source,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Spectating is read-only and unauthenticated; tighten in
			// production.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns the HTTP handler for the spectator endpoint.
func (s *Server) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("spectator upgrade error: %v", err)
			return
		}
		defer ws.Close()
		log.Printf("spectator connected: %s", ws.RemoteAddr())

		// The read pump only exists to notice the peer closing.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := ws.NextReader(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(snapshotInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				log.Printf("spectator disconnected: %s", ws.RemoteAddr())
				return
			case <-ticker.C:
				snap := s.snapshot()
				if snap == nil {
					continue
				}
				if err := ws.WriteJSON(snap); err != nil {
					return
				}
			}
		}
	}
}

// snapshot captures the current world under its lock, or nil when no
// session is running.
func (s *Server) snapshot() *Snapshot {
	w := s.source.CurrentWorld()
	if w == nil {
		return nil
	}

	w.Lock()
	defer w.Unlock()

	snap := &Snapshot{
		MapSize: w.Dimensions(),
		Snakes:  make([]SnakeDTO, 0, len(w.Players)),
		Food:    make([]FoodDTO, 0, len(w.Food)),
	}
	for _, sn := range w.Players {
		dto := SnakeDTO{
			ID:    sn.ID,
			Color: [3]uint8{sn.Color.R, sn.Color.G, sn.Color.B},
			Nodes: make([][2]int16, 0, len(sn.Nodes)),
			Dead:  sn.HasLost,
			Boost: sn.Boost,
		}
		for _, n := range sn.Nodes {
			dto.Nodes = append(dto.Nodes, [2]int16{n.X, n.Y})
		}
		snap.Snakes = append(snap.Snakes, dto)
	}
	for _, f := range w.Food {
		snap.Food = append(snap.Food, FoodDTO{Type: uint8(f.Type), X: f.Pos.X, Y: f.Pos.Y})
	}
	return snap
}
