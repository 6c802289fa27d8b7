package tile

const TileInvalid Tile = 0

// Circle 筒
const (
	TileCircle1 Tile = iota + 0x01
	TileCircle2
	TileCircle3
	TileCircle4
	TileCircle5
	TileCircle6
	TileCircle7
	TileCircle8
	TileCircle9
)

// Bamboo 索
const (
	TileBamboo1 Tile = iota + 0x11
	TileBamboo2
	TileBamboo3
	TileBamboo4
	TileBamboo5
	TileBamboo6
	TileBamboo7
	TileBamboo8
	TileBamboo9
)

// Character 万
const (
	TileCharacter1 Tile = iota + 0x21
	TileCharacter2
	TileCharacter3
	TileCharacter4
	TileCharacter5
	TileCharacter6
	TileCharacter7
	TileCharacter8
	TileCharacter9
)

// Wind 风
const (
	TileWindEast Tile = iota + 0x31
	TileWindSouth
	TileWindWest
	TileWindNorth
)

// Dragon 箭
const (
	TileDragonRed Tile = iota + 0x41
	TileDragonGreen
	TileDragonWhite
)

// Flower 花
const (
	TileFlower1 Tile = iota + 0x51
	TileFlower2
	TileFlower3
	TileFlower4
)

// Season 季
const (
	TileSeason1 Tile = iota + 0x61
	TileSeason2
	TileSeason3
	TileSeason4
)

// PlayingKinds lists the 34 meldable tile identities in display order.
var PlayingKinds = []Tile{
	TileCircle1, TileCircle2, TileCircle3, TileCircle4, TileCircle5,
	TileCircle6, TileCircle7, TileCircle8, TileCircle9,
	TileBamboo1, TileBamboo2, TileBamboo3, TileBamboo4, TileBamboo5,
	TileBamboo6, TileBamboo7, TileBamboo8, TileBamboo9,
	TileCharacter1, TileCharacter2, TileCharacter3, TileCharacter4, TileCharacter5,
	TileCharacter6, TileCharacter7, TileCharacter8, TileCharacter9,
	TileWindEast, TileWindSouth, TileWindWest, TileWindNorth,
	TileDragonRed, TileDragonGreen, TileDragonWhite,
}

// BonusKinds lists the 8 bonus tile identities. Each occurs once in the set.
var BonusKinds = []Tile{
	TileFlower1, TileFlower2, TileFlower3, TileFlower4,
	TileSeason1, TileSeason2, TileSeason3, TileSeason4,
}
