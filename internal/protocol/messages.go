// Package protocol implements the binary wire format spoken between the
// snake server and its clients.
//
// Every message is framed as [type:1][length:2 little-endian][payload].
// All multi-byte payload fields are little-endian; grid coordinates are
// two's-complement signed 16-bit values.
package protocol

import "snakearena/internal/game"

// MsgType is the one-byte message type id that opens every frame. The values
// are shared with the client.
type MsgType uint8

const (
	MsgPlayerID   MsgType = 0
	MsgGameParams MsgType = 1
	MsgGameStart  MsgType = 2 // reserved, never sent
	MsgFrame      MsgType = 3
	MsgMove       MsgType = 4
)

// HeaderSize is the fixed size of the frame header in bytes.
const HeaderSize = 3

func (t MsgType) String() string {
	switch t {
	case MsgPlayerID:
		return "player_id"
	case MsgGameParams:
		return "game_params"
	case MsgGameStart:
		return "game_start"
	case MsgFrame:
		return "frame"
	case MsgMove:
		return "move"
	}
	return "unknown"
}

// PlayerParams is one player's entry in the GameParams message.
type PlayerParams struct {
	ID    uint8
	Color game.RGB
	X0    int16
	Y0    int16
}

// GameParams is the one-shot session snapshot sent to every client once all
// players have joined.
type GameParams struct {
	MapSize      uint16
	BlockSize    uint16
	InitialSpeed uint8
	Players      []PlayerParams
}

// FrameFood is one food item in a decoded Frame.
type FrameFood struct {
	Type game.FoodType
	Pos  game.Point
}

// FrameSnake is one snake in a decoded Frame, nodes walking head to tail.
type FrameSnake struct {
	ID      uint8
	HasLost bool
	Stomach uint8
	Nodes   []game.Point
}

// Frame is a decoded whole-world snapshot: all food, then every still-alive
// snake.
type Frame struct {
	Food   []FrameFood
	Snakes []FrameSnake
}
