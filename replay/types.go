package replay

import "encoding/json"

// GameSpec describes one scripted mahjong hand: who sits where, optional
// hand and wall constraints, and the action script to replay through the
// engine.
type GameSpec struct {
	DealerSeat int          `json:"dealer_seat"`
	Seats      []SeatSpec   `json:"seats"`
	Wall       []string     `json:"wall,omitempty"`
	Actions    []ActionSpec `json:"actions"`
	RNG        *RNGSpec     `json:"rng,omitempty"`
	UnitPayout float64      `json:"unit_payout,omitempty"`
}

type SeatSpec struct {
	Seat   int      `json:"seat"`
	Name   string   `json:"name,omitempty"`
	UserID uint64   `json:"user_id,omitempty"`
	IsHero bool     `json:"is_hero,omitempty"`
	Hand   []string `json:"hand,omitempty"` // the 16 dealt tiles, optional
}

type ActionSpec struct {
	Seat int    `json:"seat"`
	Type string `json:"type"` // draw, discard, kong, win, claim_chow, claim_pung, claim_kong, claim_win
	Tile string `json:"tile,omitempty"`
}

type RNGSpec struct {
	Seed int64 `json:"seed"`
}

// ReplayTape is the generated event log. Each payload is also carried
// base64-encoded so web clients can feed it to the same decoder the live
// gateway uses.
type ReplayTape struct {
	TapeVersion int           `json:"tape_version"`
	TableID     string        `json:"table_id"`
	HeroSeat    int           `json:"hero_seat"`
	Events      []ReplayEvent `json:"events"`
}

type ReplayEvent struct {
	Type       string          `json:"type"`
	Seq        uint64          `json:"seq"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	PayloadB64 string          `json:"payload_b64,omitempty"`
}
