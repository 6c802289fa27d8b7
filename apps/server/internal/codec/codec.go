package codec

import (
	"encoding/json"
	"fmt"
	"strings"

	"mahjong-lite/mahjong"
	"mahjong-lite/tile"
)

// Wire protocol: one JSON envelope per websocket text message. Exactly one
// payload pointer is set, selected by Type.

// Client -> server envelope types.
const (
	ClientJoinTable = "joinTable"
	ClientStandUp   = "standUp"
	ClientAction    = "action"
)

type ClientEnvelope struct {
	Type      string            `json:"type"`
	TableID   string            `json:"tableId,omitempty"`
	JoinTable *JoinTableRequest `json:"joinTable,omitempty"`
	Action    *ActionRequest    `json:"action,omitempty"`
}

type JoinTableRequest struct {
	Nickname string `json:"nickname,omitempty"`
}

// ActionRequest carries every in-game move: draw, discard, kong, win, and
// claim-window answers (claim / pass).
type ActionRequest struct {
	Type  string `json:"type"`
	Tile  string `json:"tile,omitempty"`
	Claim string `json:"claim,omitempty"`
}

// Action request types.
const (
	ActionDraw    = "draw"
	ActionDiscard = "discard"
	ActionKong    = "kong"
	ActionWin     = "win"
	ActionClaim   = "claim"
	ActionPass    = "pass"
)

func DecodeClient(data []byte) (*ClientEnvelope, error) {
	var env ClientEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	if strings.TrimSpace(env.Type) == "" {
		return nil, fmt.Errorf("missing envelope type")
	}
	return &env, nil
}

// Server -> client envelope types.
const (
	ServerError         = "error"
	ServerTableSnapshot = "tableSnapshot"
	ServerSeatUpdate    = "seatUpdate"
	ServerHandStart     = "handStart"
	ServerDealHand      = "dealHand"
	ServerActionPrompt  = "actionPrompt"
	ServerClaimPrompt   = "claimPrompt"
	ServerActionResult  = "actionResult"
	ServerGameEnd       = "gameEnd"
)

type ServerEnvelope struct {
	Type       string `json:"type"`
	TableID    string `json:"tableId,omitempty"`
	ServerSeq  uint64 `json:"serverSeq"`
	ServerTsMs int64  `json:"serverTsMs,omitempty"`

	Error         *ErrorResponse `json:"error,omitempty"`
	TableSnapshot *TableView     `json:"tableSnapshot,omitempty"`
	SeatUpdate    *SeatUpdate    `json:"seatUpdate,omitempty"`
	HandStart     *HandStart     `json:"handStart,omitempty"`
	DealHand      *DealHand      `json:"dealHand,omitempty"`
	ActionPrompt  *ActionPrompt  `json:"actionPrompt,omitempty"`
	ClaimPrompt   *ClaimPrompt   `json:"claimPrompt,omitempty"`
	ActionResult  *ActionResult  `json:"actionResult,omitempty"`
	GameEnd       *GameEnd       `json:"gameEnd,omitempty"`
}

type ErrorResponse struct {
	Code    int32  `json:"code"`
	Message string `json:"message"`
}

type SeatUpdate struct {
	Seat         int         `json:"seat"`
	PlayerJoined *PlayerInfo `json:"playerJoined,omitempty"`
	PlayerLeftID uint64      `json:"playerLeftId,omitempty"`
}

type PlayerInfo struct {
	UserID   uint64 `json:"userId"`
	Nickname string `json:"nickname"`
	Seat     int    `json:"seat"`
	Robot    bool   `json:"robot"`
}

type HandStart struct {
	Round          uint32 `json:"round"`
	DealerSeat     int    `json:"dealerSeat"`
	PrevailingWind string `json:"prevailingWind"`
	WallCount      int    `json:"wallCount"`
}

type DealHand struct {
	Seat    int      `json:"seat"`
	Tiles   []string `json:"tiles"`
	Flowers []string `json:"flowers,omitempty"`
}

type ActionPrompt struct {
	Seat             int    `json:"seat"`
	Phase            string `json:"phase"`
	TimeLimitSec     int32  `json:"timeLimitSec,omitempty"`
	ActionDeadlineMs int64  `json:"actionDeadlineMs,omitempty"`
}

// ClaimPrompt is sent to a single seat when an opponent's discard is
// claimable by that seat.
type ClaimPrompt struct {
	Seat          int      `json:"seat"`
	DiscarderSeat int      `json:"discarderSeat"`
	Discard       string   `json:"discard"`
	Claims        []string `json:"claims"`
	DeadlineMs    int64    `json:"deadlineMs"`
}

type ActionResult struct {
	Seat  int    `json:"seat"`
	Type  string `json:"type"`
	Tile  string `json:"tile,omitempty"`
	Claim string `json:"claim,omitempty"`
}

type GameEnd struct {
	Round     uint32         `json:"round"`
	Status    string         `json:"status"`
	Winner    int            `json:"winner"`
	WinKind   string         `json:"winKind,omitempty"`
	Total     float64        `json:"total,omitempty"`
	Ambitions []AmbitionView `json:"ambitions,omitempty"`
}

func Encode(env *ServerEnvelope) ([]byte, error) {
	return json.Marshal(env)
}

// --- Per-viewer snapshot projection ---

// TableView mirrors mahjong.Snapshot with only the viewer's own hand spelled
// out; other seats expose a tile count.
type TableView struct {
	Status      string         `json:"status"`
	Winner      int            `json:"winner"`
	CurrentSeat int            `json:"currentSeat"`
	Phase       string         `json:"phase"`
	DealerSeat  int            `json:"dealerSeat"`
	WallCount   int            `json:"wallCount"`
	OpenDiscard string         `json:"openDiscard,omitempty"`
	Players     []SeatView     `json:"players"`
	Ambitions   []AmbitionView `json:"ambitions,omitempty"`
}

type SeatView struct {
	Seat      int        `json:"seat"`
	UserID    uint64     `json:"userId"`
	Nickname  string     `json:"nickname,omitempty"`
	Robot     bool       `json:"robot,omitempty"`
	HandCount int        `json:"handCount"`
	Hand      []string   `json:"hand,omitempty"`
	Melds     []MeldView `json:"melds,omitempty"`
	Flowers   []string   `json:"flowers,omitempty"`
	Discards  []string   `json:"discards,omitempty"`
}

type MeldView struct {
	Kind        string   `json:"kind"`
	Tiles       []string `json:"tiles"`
	Concealed   bool     `json:"concealed"`
	ClaimedFrom int      `json:"claimedFrom"`
}

type AmbitionView struct {
	Seat   int     `json:"seat"`
	Kind   string  `json:"kind"`
	Payout float64 `json:"payout"`
}

// SnapshotView projects snap for one viewer. viewerSeat may be InvalidSeat
// for a pure spectator; names maps seat to nickname.
func SnapshotView(snap mahjong.Snapshot, viewerSeat int, names map[int]string) *TableView {
	view := &TableView{
		Status:      mahjong.GameStatusDictionary[snap.Status],
		Winner:      snap.Winner,
		CurrentSeat: snap.CurrentSeat,
		Phase:       mahjong.PhaseTypeDictionary[snap.Phase],
		DealerSeat:  snap.DealerSeat,
		WallCount:   snap.WallCount,
	}
	if snap.HasOpenDiscard {
		view.OpenDiscard = snap.OpenDiscard.String()
	}
	for _, ps := range snap.Players {
		sv := SeatView{
			Seat:      ps.Seat,
			UserID:    ps.ID,
			Nickname:  names[ps.Seat],
			Robot:     ps.Robot,
			HandCount: len(ps.Hand),
			Flowers:   TileNames(ps.Flowers),
			Discards:  TileNames(ps.Discards),
		}
		if ps.Seat == viewerSeat {
			sv.Hand = TileNames(ps.Hand)
		}
		for _, m := range ps.Melds {
			sv.Melds = append(sv.Melds, MeldView{
				Kind:        mahjong.MeldKindDictionary[m.Kind],
				Tiles:       TileNames(m.Tiles),
				Concealed:   m.Concealed,
				ClaimedFrom: m.ClaimedFrom,
			})
		}
		view.Players = append(view.Players, sv)
	}
	for _, a := range snap.Ambitions {
		view.Ambitions = append(view.Ambitions, AmbitionView{
			Seat:   a.Seat,
			Kind:   mahjong.AmbitionKindDictionary[a.Kind],
			Payout: a.Payout,
		})
	}
	return view
}

func TileNames(ts []tile.Tile) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.String())
	}
	return out
}

// ParseClaimKind maps a wire claim name ("CHOW", "PUNG", ...) back to the
// engine enum.
func ParseClaimKind(name string) (mahjong.ClaimKind, bool) {
	want := strings.ToUpper(strings.TrimSpace(name))
	for kind, label := range mahjong.ClaimKindDictionary {
		if label == want && kind != mahjong.ClaimNone {
			return kind, true
		}
	}
	return mahjong.ClaimNone, false
}
