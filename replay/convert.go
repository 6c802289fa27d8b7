package replay

import (
	"mahjong-lite/mahjong"
	"mahjong-lite/tile"
)

// TableView is the spectator-safe projection of one snapshot: only the hero
// seat's hand is spelled out, everyone else shows a count.
type TableView struct {
	Status      string         `json:"status"`
	Winner      int            `json:"winner"`
	CurrentSeat int            `json:"current_seat"`
	Phase       string         `json:"phase"`
	WallCount   int            `json:"wall_count"`
	OpenDiscard string         `json:"open_discard,omitempty"`
	DiscardPile []string       `json:"discard_pile"`
	Players     []SeatView     `json:"players"`
	Ambitions   []AmbitionView `json:"ambitions,omitempty"`
}

type SeatView struct {
	Seat      int        `json:"seat"`
	Name      string     `json:"name,omitempty"`
	HandCount int        `json:"hand_count"`
	Hand      []string   `json:"hand,omitempty"`
	Melds     []MeldView `json:"melds,omitempty"`
	Flowers   []string   `json:"flowers,omitempty"`
	Discards  []string   `json:"discards,omitempty"`
}

type MeldView struct {
	Kind        string   `json:"kind"`
	Tiles       []string `json:"tiles"`
	Concealed   bool     `json:"concealed"`
	ClaimedFrom int      `json:"claimed_from"`
}

type AmbitionView struct {
	Seat   int     `json:"seat"`
	Kind   string  `json:"kind"`
	Payout float64 `json:"payout"`
}

func tileNames(ts []tile.Tile) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.String())
	}
	return out
}

func toTableView(snap mahjong.Snapshot, heroSeat int, names map[int]string) TableView {
	view := TableView{
		Status:      mahjong.GameStatusDictionary[snap.Status],
		Winner:      snap.Winner,
		CurrentSeat: snap.CurrentSeat,
		Phase:       mahjong.PhaseTypeDictionary[snap.Phase],
		WallCount:   snap.WallCount,
		DiscardPile: tileNames(snap.DiscardPile),
	}
	if snap.HasOpenDiscard {
		view.OpenDiscard = snap.OpenDiscard.String()
	}
	for _, ps := range snap.Players {
		sv := SeatView{
			Seat:      ps.Seat,
			Name:      names[ps.Seat],
			HandCount: len(ps.Hand),
			Flowers:   tileNames(ps.Flowers),
			Discards:  tileNames(ps.Discards),
		}
		if ps.Seat == heroSeat {
			sv.Hand = tileNames(ps.Hand)
		}
		for _, m := range ps.Melds {
			sv.Melds = append(sv.Melds, MeldView{
				Kind:        mahjong.MeldKindDictionary[m.Kind],
				Tiles:       tileNames(m.Tiles),
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
