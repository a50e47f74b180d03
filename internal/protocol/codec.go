package protocol

import (
	"fmt"
	"io"
	"math"

	"snakearena/internal/game"
)

// binaryWriter accumulates little-endian payload bytes.
type binaryWriter struct {
	buf []byte
}

func (w *binaryWriter) writeUint8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *binaryWriter) writeBool(v bool) {
	if v {
		w.writeUint8(1)
		return
	}
	w.writeUint8(0)
}

func (w *binaryWriter) writeUint16(v uint16) {
	w.buf = append(w.buf, byte(v), byte(v>>8))
}

func (w *binaryWriter) writeInt16(v int16) {
	w.writeUint16(uint16(v))
}

func (w *binaryWriter) bytes() []byte {
	return w.buf
}

// binaryReader consumes a payload with bounds-checked little-endian reads.
type binaryReader struct {
	data   []byte
	offset int
}

func (r *binaryReader) readUint8() (uint8, error) {
	if r.offset+1 > len(r.data) {
		return 0, ErrShortBuffer
	}
	v := r.data[r.offset]
	r.offset++
	return v, nil
}

func (r *binaryReader) readBool() (bool, error) {
	v, err := r.readUint8()
	return v != 0, err
}

func (r *binaryReader) readUint16() (uint16, error) {
	if r.offset+2 > len(r.data) {
		return 0, ErrShortBuffer
	}
	v := uint16(r.data[r.offset]) | uint16(r.data[r.offset+1])<<8
	r.offset += 2
	return v, nil
}

func (r *binaryReader) readInt16() (int16, error) {
	v, err := r.readUint16()
	return int16(v), err
}

func (r *binaryReader) readPoint() (game.Point, error) {
	x, err := r.readInt16()
	if err != nil {
		return game.Point{}, err
	}
	y, err := r.readInt16()
	if err != nil {
		return game.Point{}, err
	}
	return game.Point{X: x, Y: y}, nil
}

func (r *binaryReader) remaining() int {
	return len(r.data) - r.offset
}

// WriteMessage frames payload as one message and writes it in a single call.
func WriteMessage(w io.Writer, t MsgType, payload []byte) error {
	if len(payload) > math.MaxUint16 {
		return fmt.Errorf("%w: payload of %d bytes exceeds frame limit", ErrMalformed, len(payload))
	}
	buf := make([]byte, 0, HeaderSize+len(payload))
	buf = append(buf, byte(t), byte(len(payload)), byte(len(payload)>>8))
	buf = append(buf, payload...)
	_, err := w.Write(buf)
	return err
}

// SendPlayerID writes the one-shot id assignment message.
func SendPlayerID(w io.Writer, id uint8) error {
	return WriteMessage(w, MsgPlayerID, []byte{id})
}

// DecodePlayerID decodes a PlayerId payload.
func DecodePlayerID(payload []byte) (uint8, error) {
	if len(payload) != 1 {
		return 0, fmt.Errorf("%w: player_id payload of %d bytes", ErrMalformed, len(payload))
	}
	return payload[0], nil
}

// EncodeGameParams encodes a GameParams payload.
func EncodeGameParams(p *GameParams) []byte {
	w := &binaryWriter{}
	w.writeUint16(p.MapSize)
	w.writeUint16(p.BlockSize)
	w.writeUint8(p.InitialSpeed)
	w.writeUint8(uint8(len(p.Players)))
	for _, pl := range p.Players {
		w.writeUint8(pl.ID)
		w.writeUint8(pl.Color.R)
		w.writeUint8(pl.Color.G)
		w.writeUint8(pl.Color.B)
		w.writeInt16(pl.X0)
		w.writeInt16(pl.Y0)
	}
	return w.bytes()
}

// SendGameParams writes the session snapshot message.
func SendGameParams(w io.Writer, p *GameParams) error {
	return WriteMessage(w, MsgGameParams, EncodeGameParams(p))
}

// DecodeGameParams decodes a GameParams payload. Trailing bytes are treated
// as a framing error.
func DecodeGameParams(payload []byte) (*GameParams, error) {
	r := &binaryReader{data: payload}
	p := &GameParams{}
	var err error
	if p.MapSize, err = r.readUint16(); err != nil {
		return nil, err
	}
	if p.BlockSize, err = r.readUint16(); err != nil {
		return nil, err
	}
	if p.InitialSpeed, err = r.readUint8(); err != nil {
		return nil, err
	}
	n, err := r.readUint8()
	if err != nil {
		return nil, err
	}
	p.Players = make([]PlayerParams, 0, n)
	for i := 0; i < int(n); i++ {
		var pl PlayerParams
		if pl.ID, err = r.readUint8(); err != nil {
			return nil, err
		}
		if pl.Color.R, err = r.readUint8(); err != nil {
			return nil, err
		}
		if pl.Color.G, err = r.readUint8(); err != nil {
			return nil, err
		}
		if pl.Color.B, err = r.readUint8(); err != nil {
			return nil, err
		}
		if pl.X0, err = r.readInt16(); err != nil {
			return nil, err
		}
		if pl.Y0, err = r.readInt16(); err != nil {
			return nil, err
		}
		p.Players = append(p.Players, pl)
	}
	if r.remaining() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes after game_params", ErrMalformed, r.remaining())
	}
	return p, nil
}

// SendMove writes a Move message carrying one direction byte.
func SendMove(w io.Writer, d game.Direction) error {
	return WriteMessage(w, MsgMove, []byte{byte(d)})
}

// DecodeMove decodes a Move payload. Any byte outside the four directions is
// a fatal decode error.
func DecodeMove(payload []byte) (game.Direction, error) {
	if len(payload) != 1 {
		return 0, fmt.Errorf("%w: move payload of %d bytes", ErrMalformed, len(payload))
	}
	d := game.Direction(payload[0])
	if !d.Valid() {
		return 0, fmt.Errorf("%w: move byte %d", ErrMalformed, payload[0])
	}
	return d, nil
}

// EncodeFrame encodes a whole-world snapshot: the food list followed by the
// given snakes, nodes walking head to tail.
func EncodeFrame(food []*game.Food, snakes []*game.Snake) []byte {
	w := &binaryWriter{}
	w.writeUint8(uint8(len(food)))
	for _, f := range food {
		w.writeUint8(uint8(f.Type))
		w.writeInt16(f.Pos.X)
		w.writeInt16(f.Pos.Y)
	}
	w.writeUint8(uint8(len(snakes)))
	for _, s := range snakes {
		w.writeUint8(s.ID)
		w.writeBool(s.HasLost)
		w.writeUint8(s.Stomach)
		w.writeUint8(uint8(len(s.Nodes)))
		for _, n := range s.Nodes {
			w.writeInt16(n.X)
			w.writeInt16(n.Y)
		}
	}
	return w.bytes()
}

// SendFrame writes a Frame message for the given world contents.
func SendFrame(w io.Writer, food []*game.Food, snakes []*game.Snake) error {
	return WriteMessage(w, MsgFrame, EncodeFrame(food, snakes))
}

// DecodeFrame decodes a Frame payload. Trailing bytes are treated as a
// framing error.
func DecodeFrame(payload []byte) (*Frame, error) {
	r := &binaryReader{data: payload}
	fr := &Frame{}

	nFood, err := r.readUint8()
	if err != nil {
		return nil, err
	}
	fr.Food = make([]FrameFood, 0, nFood)
	for i := 0; i < int(nFood); i++ {
		t, err := r.readUint8()
		if err != nil {
			return nil, err
		}
		if game.FoodType(t) != game.FoodApple && game.FoodType(t) != game.FoodMango {
			return nil, fmt.Errorf("%w: food type %d", ErrMalformed, t)
		}
		pos, err := r.readPoint()
		if err != nil {
			return nil, err
		}
		fr.Food = append(fr.Food, FrameFood{Type: game.FoodType(t), Pos: pos})
	}

	nSnakes, err := r.readUint8()
	if err != nil {
		return nil, err
	}
	fr.Snakes = make([]FrameSnake, 0, nSnakes)
	for i := 0; i < int(nSnakes); i++ {
		var s FrameSnake
		if s.ID, err = r.readUint8(); err != nil {
			return nil, err
		}
		if s.HasLost, err = r.readBool(); err != nil {
			return nil, err
		}
		if s.Stomach, err = r.readUint8(); err != nil {
			return nil, err
		}
		nNodes, err := r.readUint8()
		if err != nil {
			return nil, err
		}
		s.Nodes = make([]game.Point, 0, nNodes)
		for j := 0; j < int(nNodes); j++ {
			p, err := r.readPoint()
			if err != nil {
				return nil, err
			}
			s.Nodes = append(s.Nodes, p)
		}
		fr.Snakes = append(fr.Snakes, s)
	}
	if r.remaining() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes after frame", ErrMalformed, r.remaining())
	}
	return fr, nil
}
