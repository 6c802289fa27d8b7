package mahjong

import (
	"fmt"

	"mahjong-lite/tile"
)

type Config struct {
	// RNG seed (0 => time-based)
	Seed int64

	// WallOverride fixes the wall order for tests and replays. Must be a
	// permutation of all 144 tile IDs.
	WallOverride []tile.ID

	// ForcedDealerSeat pins the dealer instead of rolling for it.
	ForcedDealerSeat *int

	// UnitPayout scales ambition multipliers into points. 0 => 1.0.
	UnitPayout float64
}

func (c Config) validate() error {
	if c.UnitPayout < 0 {
		return fmt.Errorf("UnitPayout must be >= 0")
	}
	if c.ForcedDealerSeat != nil {
		if s := *c.ForcedDealerSeat; s < 0 || s >= SeatCount {
			return fmt.Errorf("invalid dealer seat %d", s)
		}
	}
	if c.WallOverride != nil {
		if len(c.WallOverride) != tile.TotalTiles {
			return fmt.Errorf("wall override must hold %d tiles, got %d", tile.TotalTiles, len(c.WallOverride))
		}
		seen := make(map[tile.ID]bool, len(c.WallOverride))
		for _, id := range c.WallOverride {
			if int(id) >= tile.TotalTiles {
				return fmt.Errorf("wall override has unknown tile id %d", id)
			}
			if seen[id] {
				return fmt.Errorf("wall override has duplicate tile id %d", id)
			}
			seen[id] = true
		}
	}
	return nil
}

func (c Config) unitPayout() float64 {
	if c.UnitPayout == 0 {
		return 1.0
	}
	return c.UnitPayout
}
