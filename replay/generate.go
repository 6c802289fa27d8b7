package replay

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"mahjong-lite/mahjong"
)

const defaultTableID = "replay_local"

// Event payloads carried by the tape, one struct per event type.

type HandStartEvent struct {
	DealerSeat     int    `json:"dealer_seat"`
	PrevailingWind string `json:"prevailing_wind"`
	WallCount      int    `json:"wall_count"`
}

type DealHandEvent struct {
	Seat  int      `json:"seat"`
	Tiles []string `json:"tiles"`
}

type ActionPromptEvent struct {
	Seat  int    `json:"seat"`
	Phase string `json:"phase"`
}

type ActionResultEvent struct {
	Seat int    `json:"seat"`
	Type string `json:"type"`
	Tile string `json:"tile,omitempty"`
}

type GameEndEvent struct {
	Status    string         `json:"status"`
	Winner    int            `json:"winner"`
	WinKind   string         `json:"win_kind,omitempty"`
	Total     float64        `json:"total,omitempty"`
	Ambitions []AmbitionView `json:"ambitions,omitempty"`
}

// GenerateReplayTape runs a GameSpec through the real engine and records
// every step as a tape event. Any rules violation in the script surfaces as
// a *ReplayError naming the failing step.
func GenerateReplayTape(spec GameSpec) (*ReplayTape, error) {
	ns, err := normalizeSpec(spec)
	if err != nil {
		return nil, err
	}

	game, err := mahjong.NewGame(mahjong.Config{
		Seed:             seedFromSpec(spec.RNG),
		WallOverride:     ns.wall,
		ForcedDealerSeat: &ns.dealerSeat,
		UnitPayout:       spec.UnitPayout,
	})
	if err != nil {
		return nil, &ReplayError{StepIndex: -1, Reason: "engine_init_failed", Message: err.Error()}
	}
	names := make(map[int]string, len(ns.seats))
	for _, seat := range ns.seats {
		if err := game.SitDown(seat.seat, seat.userID, false); err != nil {
			return nil, &ReplayError{StepIndex: -1, Reason: "seat_init_failed", Message: err.Error()}
		}
		names[seat.seat] = seat.name
	}

	builder := newTapeBuilder(defaultTableID, ns.heroSeat)

	if err := game.StartHand(); err != nil {
		return nil, &ReplayError{StepIndex: -1, Reason: "start_hand_failed", Message: err.Error()}
	}
	after := game.Snapshot()
	builder.add("handStart", HandStartEvent{
		DealerSeat:     after.DealerSeat,
		PrevailingWind: after.PrevailingWind.String(),
		WallCount:      after.WallCount,
	})
	for _, ps := range after.Players {
		if ps.Seat == ns.heroSeat {
			builder.add("dealHand", DealHandEvent{Seat: ps.Seat, Tiles: tileNames(ps.Hand)})
		}
	}
	builder.add("snapshot", toTableView(after, ns.heroSeat, names))
	builder.add("actionPrompt", ActionPromptEvent{
		Seat:  after.CurrentSeat,
		Phase: mahjong.PhaseTypeDictionary[after.Phase],
	})

	for stepIdx, action := range ns.actions {
		before := game.Snapshot()
		if before.Status != mahjong.StatusPlaying {
			return nil, &ReplayError{
				StepIndex: int32(stepIdx),
				Reason:    "no_action_expected",
				Message:   "hand is already complete; no further actions are allowed",
			}
		}

		if err := applyAction(game, action); err != nil {
			return nil, stepError(stepIdx, before, err)
		}

		builder.add("actionResult", ActionResultEvent{
			Seat: action.seat,
			Type: actionName(action.kind),
			Tile: tileName(action),
		})
		snap := game.Snapshot()
		builder.add("snapshot", toTableView(snap, ns.heroSeat, names))
		if snap.Status == mahjong.StatusPlaying {
			builder.add("actionPrompt", ActionPromptEvent{
				Seat:  snap.CurrentSeat,
				Phase: mahjong.PhaseTypeDictionary[snap.Phase],
			})
		}
	}

	final := game.Snapshot()
	if final.Status != mahjong.StatusPlaying {
		end := GameEndEvent{
			Status: mahjong.GameStatusDictionary[final.Status],
			Winner: final.Winner,
		}
		if res := game.WinResult(); res != nil {
			end.WinKind = mahjong.WinKindDictionary[res.Kind]
			end.Total = res.Total
			for _, kind := range res.Ambitions {
				end.Ambitions = append(end.Ambitions, AmbitionView{
					Seat:   final.Winner,
					Kind:   mahjong.AmbitionKindDictionary[kind],
					Payout: mahjong.AmbitionPayouts[kind],
				})
			}
		}
		builder.add("gameEnd", end)
	}
	return builder.tape, nil
}

func applyAction(game *mahjong.Game, action normalizedAction) error {
	switch action.kind {
	case actDraw:
		_, ok, err := game.Draw(action.seat)
		if err != nil {
			return err
		}
		if !ok {
			// Wall exhausted: the script must be ending the hand here.
			return game.EndDrawn()
		}
		return nil
	case actDiscard:
		return game.Discard(action.seat, action.t)
	case actKong:
		return game.DeclareKong(action.seat, action.t)
	case actWin:
		_, err := game.DeclareWin(action.seat)
		return err
	case actClaimChow:
		return game.ProcessClaim(mahjong.Claim{Seat: action.seat, Kind: mahjong.ClaimChow})
	case actClaimPung:
		return game.ProcessClaim(mahjong.Claim{Seat: action.seat, Kind: mahjong.ClaimPung})
	case actClaimKong:
		return game.ProcessClaim(mahjong.Claim{Seat: action.seat, Kind: mahjong.ClaimKong})
	case actClaimWin:
		return game.ProcessClaim(mahjong.Claim{Seat: action.seat, Kind: mahjong.ClaimWin})
	}
	return fmt.Errorf("unhandled action kind %d", action.kind)
}

func stepError(stepIdx int, before mahjong.Snapshot, err error) *ReplayError {
	reason := "engine_error"
	switch err {
	case mahjong.ErrOutOfTurn:
		reason = "out_of_turn"
	case mahjong.ErrWrongPhase:
		reason = "wrong_phase"
	case mahjong.ErrTileNotInHand:
		reason = "tile_not_in_hand"
	case mahjong.ErrInvalidClaim:
		reason = "invalid_claim"
	case mahjong.ErrNoOpenDiscard:
		reason = "no_open_discard"
	case mahjong.ErrGameEnded:
		reason = "no_action_expected"
	}
	return &ReplayError{
		StepIndex: int32(stepIdx),
		Reason:    reason,
		Message:   err.Error(),
		Expected: &ExpectedState{
			ActionSeat: before.CurrentSeat,
			Phase:      mahjong.PhaseTypeDictionary[before.Phase],
		},
	}
}

func actionName(kind actionKind) string {
	for name, k := range actionNames {
		if k == kind {
			return name
		}
	}
	return "unknown"
}

func tileName(action normalizedAction) string {
	if !needsTile[action.kind] {
		return ""
	}
	return action.t.String()
}

type tapeBuilder struct {
	tape *ReplayTape
	seq  uint64
}

func newTapeBuilder(tableID string, heroSeat int) *tapeBuilder {
	return &tapeBuilder{
		tape: &ReplayTape{
			TapeVersion: 1,
			TableID:     tableID,
			HeroSeat:    heroSeat,
		},
	}
}

func (b *tapeBuilder) add(eventType string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		// Payloads are plain structs; a marshal failure is a programming bug.
		panic(fmt.Sprintf("replay: marshal %s payload: %v", eventType, err))
	}
	b.seq++
	b.tape.Events = append(b.tape.Events, ReplayEvent{
		Type:       eventType,
		Seq:        b.seq,
		Payload:    raw,
		PayloadB64: base64.StdEncoding.EncodeToString(raw),
	})
}
