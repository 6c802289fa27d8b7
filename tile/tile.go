package tile

import (
	"fmt"
	"strings"
)

// Tile 牌枚举 (identity only, instances are tracked by ID)
//
// 编码规则:
// - 高4位: 花色 (0:Circle, 1:Bamboo, 2:Character, 3:Wind, 4:Dragon, 5:Flower, 6:Season)
// - 低4位: 点数 (1-9 数牌; 风 E=1 S=2 W=3 N=4; 箭 R=1 G=2 W=3; 花/季 1-4)
type Tile byte

func (t Tile) String() string {
	if t == TileInvalid {
		return "Invalid"
	}

	suit := Suit(t >> 4)
	rank := t & 0x0F

	switch suit {
	case Wind:
		return "W" + windNames[rank]
	case Dragon:
		return "D" + dragonNames[rank]
	case Flower:
		return fmt.Sprintf("F%d", rank)
	case Season:
		return fmt.Sprintf("S%d", rank)
	}
	return fmt.Sprintf("%s%d", suit, rank)
}

var windNames = map[Tile]string{1: "E", 2: "S", 3: "W", 4: "N"}
var dragonNames = map[Tile]string{1: "R", 2: "G", 3: "W"}

// Rank 获取点数 (1-9 for numbered suits, identifier otherwise)
func (t Tile) Rank() byte {
	if t == TileInvalid {
		return 0
	}
	return byte(t & 0x0F)
}

// Suit 花色
func (t Tile) Suit() Suit {
	return Suit(t >> 4)
}

// Matches reports suit+rank equality. Instance identity is carried by ID,
// never by Tile, so this is plain byte equality.
func (t Tile) Matches(o Tile) bool {
	return t == o
}

// IsBonus reports whether the tile is a flower or season. Bonus tiles never
// participate in melds or sequences.
func (t Tile) IsBonus() bool {
	s := t.Suit()
	return s == Flower || s == Season
}

// IsHonor reports whether the tile is a wind or dragon.
func (t Tile) IsHonor() bool {
	s := t.Suit()
	return s == Wind || s == Dragon
}

// IsNumbered reports whether the tile belongs to a numbered suit and can form
// sequences.
func (t Tile) IsNumbered() bool {
	return t.Suit() <= Character
}

// WithRank returns the same-suit tile at rank r. Callers guarantee r is a
// legal rank for the suit.
func (t Tile) WithRank(r byte) Tile {
	return Tile(byte(t)&0xF0 | r)
}

// SortKey defines a display total order (suit category, then rank).
// It never feeds a rules decision.
func (t Tile) SortKey() int {
	return int(t.Suit())*16 + int(t.Rank())
}

// Parse 将字符串 (如 "C5", "B1", "WE", "DR", "F3") 转换为 Tile
func Parse(s string) (Tile, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 2 {
		return TileInvalid, fmt.Errorf("invalid tile string: %q", s)
	}

	var suit Suit
	switch s[0] {
	case 'C':
		suit = Circle
	case 'B':
		suit = Bamboo
	case 'K':
		suit = Character
	case 'W':
		switch s[1] {
		case 'E':
			return TileWindEast, nil
		case 'S':
			return TileWindSouth, nil
		case 'W':
			return TileWindWest, nil
		case 'N':
			return TileWindNorth, nil
		}
		return TileInvalid, fmt.Errorf("invalid wind: %q", s)
	case 'D':
		switch s[1] {
		case 'R':
			return TileDragonRed, nil
		case 'G':
			return TileDragonGreen, nil
		case 'W':
			return TileDragonWhite, nil
		}
		return TileInvalid, fmt.Errorf("invalid dragon: %q", s)
	case 'F':
		suit = Flower
	case 'S':
		suit = Season
	default:
		return TileInvalid, fmt.Errorf("invalid suit: %c", s[0])
	}

	rank := int(s[1] - '0')
	maxRank := 9
	if suit == Flower || suit == Season {
		maxRank = 4
	}
	if rank < 1 || rank > maxRank {
		return TileInvalid, fmt.Errorf("invalid rank: %c", s[1])
	}
	return Tile(byte(suit)<<4 | byte(rank)), nil
}
