package replay

import (
	"fmt"
	"math/rand"
	"strings"

	"mahjong-lite/mahjong"
	"mahjong-lite/tile"
)

type actionKind byte

const (
	actDraw actionKind = iota
	actDiscard
	actKong
	actWin
	actClaimChow
	actClaimPung
	actClaimKong
	actClaimWin
)

var actionNames = map[string]actionKind{
	"draw":       actDraw,
	"discard":    actDiscard,
	"kong":       actKong,
	"win":        actWin,
	"claim_chow": actClaimChow,
	"claim_pung": actClaimPung,
	"claim_kong": actClaimKong,
	"claim_win":  actClaimWin,
}

// needsTile marks the action kinds whose spec must name a tile.
var needsTile = map[actionKind]bool{
	actDiscard: true,
	actKong:    true,
}

type normalizedSeat struct {
	seat   int
	userID uint64
	name   string
	isHero bool
	hand   []tile.Tile
}

type normalizedAction struct {
	seat int
	kind actionKind
	t    tile.Tile
}

type normalizedSpec struct {
	dealerSeat int
	seats      []normalizedSeat
	heroSeat   int
	wall       []tile.ID
	actions    []normalizedAction
}

func normalizeSpec(spec GameSpec) (normalizedSpec, error) {
	var out normalizedSpec
	out.dealerSeat = spec.DealerSeat

	if out.dealerSeat < 0 || out.dealerSeat >= mahjong.SeatCount {
		return out, &ReplayError{StepIndex: -1, Reason: "invalid_dealer", Message: "dealer_seat out of range"}
	}
	if len(spec.Seats) != mahjong.SeatCount {
		return out, &ReplayError{StepIndex: -1, Reason: "invalid_seats", Message: "exactly 4 seats are required"}
	}

	hands := make([][]tile.Tile, mahjong.SeatCount)
	seen := make(map[int]struct{}, mahjong.SeatCount)
	heroCount := 0
	for i, seat := range spec.Seats {
		if seat.Seat < 0 || seat.Seat >= mahjong.SeatCount {
			return out, &ReplayError{StepIndex: -1, Reason: "invalid_seat", Message: fmt.Sprintf("seat %d out of range", i)}
		}
		if _, exists := seen[seat.Seat]; exists {
			return out, &ReplayError{StepIndex: -1, Reason: "duplicate_seat", Message: fmt.Sprintf("duplicate seat %d", seat.Seat)}
		}
		seen[seat.Seat] = struct{}{}

		hand, err := parseHand(seat.Hand)
		if err != nil {
			return out, &ReplayError{StepIndex: -1, Reason: "invalid_hand", Message: fmt.Sprintf("seat %d: %v", seat.Seat, err)}
		}
		hands[seat.Seat] = hand

		userID := seat.UserID
		if userID == 0 {
			userID = 100000 + uint64(seat.Seat)
		}
		name := strings.TrimSpace(seat.Name)
		if name == "" {
			name = fmt.Sprintf("P%d", seat.Seat)
		}
		ns := normalizedSeat{
			seat:   seat.Seat,
			userID: userID,
			name:   name,
			isHero: seat.IsHero,
			hand:   hand,
		}
		if ns.isHero {
			heroCount++
			out.heroSeat = ns.seat
		}
		out.seats = append(out.seats, ns)
	}
	if heroCount == 0 {
		out.heroSeat = out.dealerSeat
	} else if heroCount > 1 {
		return out, &ReplayError{StepIndex: -1, Reason: "invalid_hero", Message: "multiple seats marked as hero"}
	}

	wall, err := buildWall(spec, out.dealerSeat, hands)
	if err != nil {
		return out, err
	}
	out.wall = wall

	out.actions = make([]normalizedAction, 0, len(spec.Actions))
	for i, a := range spec.Actions {
		kind, ok := actionNames[strings.ToLower(strings.TrimSpace(a.Type))]
		if !ok {
			return out, &ReplayError{StepIndex: int32(i), Reason: "invalid_action", Message: fmt.Sprintf("unknown action type %q", a.Type)}
		}
		if a.Seat < 0 || a.Seat >= mahjong.SeatCount {
			return out, &ReplayError{StepIndex: int32(i), Reason: "invalid_action_seat", Message: fmt.Sprintf("seat %d out of range", a.Seat)}
		}
		na := normalizedAction{seat: a.Seat, kind: kind}
		if a.Tile != "" {
			t, err := tile.Parse(strings.TrimSpace(a.Tile))
			if err != nil {
				return out, &ReplayError{StepIndex: int32(i), Reason: "invalid_tile", Message: err.Error()}
			}
			na.t = t
		} else if needsTile[kind] {
			return out, &ReplayError{StepIndex: int32(i), Reason: "missing_tile", Message: fmt.Sprintf("%s requires a tile", a.Type)}
		}
		out.actions = append(out.actions, na)
	}
	return out, nil
}

func parseHand(names []string) ([]tile.Tile, error) {
	if len(names) == 0 {
		return nil, nil
	}
	if len(names) != mahjong.HandBaseSize {
		return nil, fmt.Errorf("hand must contain exactly %d tiles", mahjong.HandBaseSize)
	}
	out := make([]tile.Tile, 0, len(names))
	for i, n := range names {
		t, err := tile.Parse(strings.TrimSpace(n))
		if err != nil {
			return nil, fmt.Errorf("hand[%d]: %w", i, err)
		}
		if t.IsBonus() {
			return nil, fmt.Errorf("hand[%d]: bonus tiles cannot be dealt constraints", i)
		}
		out = append(out, t)
	}
	return out, nil
}

// buildWall produces the full 144-tile wall override. An explicit wall spec
// wins; otherwise the constrained hands are laid into the deal slots
// (round-robin batches of four, dealer first), the unconstrained playing
// tiles follow shuffled by the spec seed, and the bonus tiles sink to the
// wall back so seat constraints stay aligned.
func buildWall(spec GameSpec, dealer int, hands [][]tile.Tile) ([]tile.ID, error) {
	if len(spec.Wall) > 0 {
		if len(spec.Wall) != tile.TotalTiles {
			return nil, &ReplayError{
				StepIndex: -1,
				Reason:    "invalid_wall",
				Message:   fmt.Sprintf("wall must contain %d tiles", tile.TotalTiles),
			}
		}
		for _, h := range hands {
			if h != nil {
				return nil, &ReplayError{StepIndex: -1, Reason: "conflicting_constraints", Message: "wall and seat hands cannot both be constrained"}
			}
		}
		ts := make([]tile.Tile, 0, len(spec.Wall))
		for i, s := range spec.Wall {
			t, err := tile.Parse(strings.TrimSpace(s))
			if err != nil {
				return nil, &ReplayError{StepIndex: -1, Reason: "invalid_wall_tile", Message: fmt.Sprintf("wall[%d]: %v", i, err)}
			}
			ts = append(ts, t)
		}
		ids, err := tile.BuildIDs(ts)
		if err != nil {
			return nil, &ReplayError{StepIndex: -1, Reason: "invalid_wall", Message: err.Error()}
		}
		return ids, nil
	}

	used := make(map[tile.Tile]int)
	for _, h := range hands {
		for _, t := range h {
			used[t]++
		}
	}
	var remaining []tile.Tile
	for _, kind := range tile.PlayingKinds {
		if used[kind] > 4 {
			return nil, &ReplayError{
				StepIndex: -1,
				Reason:    "invalid_hand",
				Message:   fmt.Sprintf("more than four copies of %s constrained", kind),
			}
		}
		for c := used[kind]; c < 4; c++ {
			remaining = append(remaining, kind)
		}
	}
	if seed := seedFromSpec(spec.RNG); seed != 0 {
		r := rand.New(rand.NewSource(seed))
		r.Shuffle(len(remaining), func(i, j int) {
			remaining[i], remaining[j] = remaining[j], remaining[i]
		})
	}

	full := make([]tile.Tile, 0, tile.TotalTiles)
	ri := 0
	for pass := 0; pass < mahjong.HandBaseSize/4; pass++ {
		for j := 0; j < mahjong.SeatCount; j++ {
			seat := (dealer + j) % mahjong.SeatCount
			for k := 0; k < 4; k++ {
				if hands[seat] != nil {
					full = append(full, hands[seat][pass*4+k])
				} else {
					full = append(full, remaining[ri])
					ri++
				}
			}
		}
	}
	full = append(full, remaining[ri:]...)
	full = append(full, tile.BonusKinds...)

	ids, err := tile.BuildIDs(full)
	if err != nil {
		return nil, &ReplayError{StepIndex: -1, Reason: "invalid_wall", Message: err.Error()}
	}
	return ids, nil
}

func seedFromSpec(rng *RNGSpec) int64 {
	if rng == nil {
		return 0
	}
	return rng.Seed
}
