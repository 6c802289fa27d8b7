package npc

import (
	"mahjong-lite/mahjong"
	"mahjong-lite/tile"
)

// ActionType is what a brain can ask the table to do on its behalf.
type ActionType byte

const (
	ActionPass    ActionType = 0
	ActionDraw    ActionType = 1
	ActionDiscard ActionType = 2
	ActionClaim   ActionType = 3
	ActionKong    ActionType = 4
	ActionWin     ActionType = 5
)

var ActionTypeDictionary = map[ActionType]string{
	ActionPass:    "PASS",
	ActionDraw:    "DRAW",
	ActionDiscard: "DISCARD",
	ActionClaim:   "CLAIM",
	ActionKong:    "KONG",
	ActionWin:     "WIN",
}

// GameView is a read-only projection of the game state visible to the NPC.
// Hands of the other seats are never included.
type GameView struct {
	Seat             int
	CurrentSeat      int
	Phase            mahjong.Phase
	HasDrawnThisTurn bool

	Hand        []tile.Tile
	Melds       []mahjong.MeldSnapshot
	FlowerCount int

	OpenDiscard    tile.Tile
	HasOpenDiscard bool
	DiscarderSeat  int

	AllDiscards []tile.Tile
	WallCount   int
}

// Decision is what a BrainDecider returns.
type Decision struct {
	Action ActionType
	Tile   tile.Tile
	Claim  mahjong.ClaimKind
}

// BrainDecider is the core interface all NPC types implement.
type BrainDecider interface {
	// Decide is called on the NPC's turn and on every open claim window.
	Decide(view GameView) Decision
	// Name returns a human-readable identifier for debugging.
	Name() string
}
