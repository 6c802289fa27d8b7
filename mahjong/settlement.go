package mahjong

import "time"

// AmbitionKind 奖励项 — bonus conditions paid instantly (kang) or at win time.
type AmbitionKind byte

const (
	AmbitionTodas      AmbitionKind = 1 // base win
	AmbitionEscalera   AmbitionKind = 2 // three chows spanning 1-9 of one suit
	AmbitionNoFlowers  AmbitionKind = 3 // winning with an empty flower collection
	AmbitionAllUp      AmbitionKind = 4 // every meld concealed
	AmbitionSietePares AmbitionKind = 5 // seven pairs + one trio shape
	AmbitionKang       AmbitionKind = 6 // instant, on completing a pung or kong
)

var AmbitionKindDictionary = map[AmbitionKind]string{
	AmbitionTodas:      "TODAS",
	AmbitionEscalera:   "ESCALERA",
	AmbitionNoFlowers:  "NO_FLOWERS",
	AmbitionAllUp:      "ALL_UP",
	AmbitionSietePares: "SIETE_PARES",
	AmbitionKang:       "KANG",
}

// AmbitionPayouts maps each kind to its unit multiplier. Siete Pares stacks
// with Todas for the fixed 1.5x total.
var AmbitionPayouts = map[AmbitionKind]float64{
	AmbitionTodas:      1.0,
	AmbitionEscalera:   0.5,
	AmbitionNoFlowers:  0.25,
	AmbitionAllUp:      0.25,
	AmbitionSietePares: 0.5,
	AmbitionKang:       0.25,
}

// AmbitionRecord is one append-only ledger entry.
type AmbitionRecord struct {
	Seat   int
	Kind   AmbitionKind
	Payout float64
	At     time.Time
}
