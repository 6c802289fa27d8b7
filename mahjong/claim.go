package mahjong

import "mahjong-lite/tile"

// Claim is a request to take the open discard.
type Claim struct {
	Seat int
	Kind ClaimKind
}

// chowPartners returns the two hand identities needed to complete a run with
// the discard. The three positional patterns are checked in fixed order
// (discard low, middle, high) and the first satisfied one wins.
func chowPartners(hand tile.List, discard tile.Tile) ([2]tile.Tile, bool) {
	if !discard.IsNumbered() {
		return [2]tile.Tile{}, false
	}
	rank := int(discard.Rank())
	patterns := [3][2]int{
		{rank + 1, rank + 2}, // discard is the low member
		{rank - 1, rank + 1}, // middle
		{rank - 2, rank - 1}, // high
	}
	for _, pat := range patterns {
		if pat[0] < 1 || pat[1] > 9 {
			continue
		}
		a := discard.WithRank(byte(pat[0]))
		b := discard.WithRank(byte(pat[1]))
		if hand.CountMatching(a) >= 1 && hand.CountMatching(b) >= 1 {
			return [2]tile.Tile{a, b}, true
		}
	}
	return [2]tile.Tile{}, false
}

// IsValidClaim reports whether the claim could be applied right now.
func (g *Game) IsValidClaim(c Claim) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.isValidClaimLocked(c)
}

func (g *Game) isValidClaimLocked(c Claim) bool {
	if g.status != StatusPlaying || !g.hasOpenDiscard {
		return false
	}
	if c.Seat < 0 || c.Seat >= SeatCount || c.Seat == g.discarderSeat {
		return false
	}
	p := g.players[c.Seat]
	discard := g.openDiscard.Of()

	switch c.Kind {
	case ClaimChow:
		// Any seat may chow. The written source rules restrict chow to the
		// next seat in turn order, but the validated logic does not.
		_, ok := chowPartners(p.hand, discard)
		return ok
	case ClaimPung:
		return p.hand.CountMatching(discard) >= 2
	case ClaimKong:
		return p.hand.CountMatching(discard) >= 3
	case ClaimWin:
		candidate := append(tile.Identities(p.hand), discard)
		return EvaluateHand(candidate, p.melds, len(p.flowers)).Valid
	}
	return false
}

// ProcessClaim validates and applies a claim against the open discard.
// On success the claimant becomes the acting player in discard phase; kong
// claims draw a replacement tile first.
func (g *Game) ProcessClaim(c Claim) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != StatusPlaying {
		return ErrGameEnded
	}
	if !g.hasOpenDiscard {
		return ErrNoOpenDiscard
	}
	if !g.isValidClaimLocked(c) {
		return ErrInvalidClaim
	}

	p := g.players[c.Seat]
	discardID := g.openDiscard
	discard := discardID.Of()
	from := g.discarderSeat

	// The claim consumes the discard: off the shared pile, off the
	// discarder's pile, out of the claim window.
	if i := g.discardPile.IndexOfID(discardID); i >= 0 {
		g.discardPile.RemoveAt(i)
	}
	dp := g.players[from]
	if i := dp.discards.IndexOfID(discardID); i >= 0 {
		dp.discards.RemoveAt(i)
	}
	g.hasOpenDiscard = false
	g.discarderSeat = InvalidSeat

	switch c.Kind {
	case ClaimChow:
		partners, _ := chowPartners(p.hand, discard)
		ids := p.removeMatching(partners[0], 1)
		ids = append(ids, p.removeMatching(partners[1], 1)...)
		ids = append(ids, discardID)
		p.addMeld(Meld{Kind: MeldChow, Tiles: ids, ClaimedFrom: from})

	case ClaimPung:
		ids := p.removeMatching(discard, 2)
		ids = append(ids, discardID)
		p.addMeld(Meld{Kind: MeldPung, Tiles: ids, ClaimedFrom: from})
		g.logAmbitionLocked(c.Seat, AmbitionKang)

	case ClaimKong:
		ids := p.removeMatching(discard, 3)
		ids = append(ids, discardID)
		p.addMeld(Meld{Kind: MeldKong, Tiles: ids, ClaimedFrom: from})
		g.logAmbitionLocked(c.Seat, AmbitionKang)

	case ClaimWin:
		p.addHandTile(discardID)
		res := EvaluateHand(tile.Identities(p.hand), p.melds, len(p.flowers))
		g.finishWinLocked(c.Seat, &res)
		return nil
	}

	g.current = c.Seat
	g.phase = PhaseTypeDiscard
	g.hasDrawnThisTurn = true

	if c.Kind == ClaimKong {
		// Kong replacement draw before the claimant's discard.
		if _, ok := g.drawTileLocked(p); !ok {
			return nil // wall exhausted, caller ends the game
		}
	}
	return nil
}

// ResolveClaims arbitrates one discard window: the highest-priority valid
// claim wins (Win > Kong > Pung > Chow); equal kinds fall back to turn order
// from the discarder's next seat.
func (g *Game) ResolveClaims(claims []Claim) (Claim, bool) {
	g.mu.Lock()
	from := g.discarderSeat
	var best Claim
	found := false
	for _, c := range claims {
		if !g.isValidClaimLocked(c) {
			continue
		}
		if !found || claimBefore(c, best, from) {
			best = c
			found = true
		}
	}
	g.mu.Unlock()
	return best, found
}

func claimBefore(a, b Claim, discarder int) bool {
	if a.Kind.priority() != b.Kind.priority() {
		return a.Kind.priority() > b.Kind.priority()
	}
	return seatDistance(discarder, a.Seat) < seatDistance(discarder, b.Seat)
}

func seatDistance(from, to int) int {
	return ((to - from) + SeatCount) % SeatCount
}
