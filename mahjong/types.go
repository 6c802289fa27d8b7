package mahjong

const (
	// SeatCount 固定四人局
	SeatCount = 4

	// HandBaseSize is the settled hand size; the acting player holds one more
	// between draw and discard.
	HandBaseSize = 16

	// WinningTotal is the tile count of a complete hand (concealed tiles plus
	// three per meld).
	WinningTotal = 17

	// TriosNeeded 标准胡牌: 5 组 + 1 对
	TriosNeeded = 5

	InvalidSeat = -1
)

// Phase 回合阶段
type Phase byte

const (
	PhaseTypeDraw    Phase = 0
	PhaseTypeDiscard Phase = 1
)

var PhaseTypeDictionary = map[Phase]string{
	PhaseTypeDraw:    "draw",
	PhaseTypeDiscard: "discard",
}

// MeldKind 副露类型
type MeldKind byte

const (
	MeldChow MeldKind = 1
	MeldPung MeldKind = 2
	MeldKong MeldKind = 3
)

var MeldKindDictionary = map[MeldKind]string{
	MeldChow: "CHOW",
	MeldPung: "PUNG",
	MeldKong: "KONG",
}

// ClaimKind 对弃牌的宣告类型
type ClaimKind byte

const (
	ClaimNone ClaimKind = 0
	ClaimChow ClaimKind = 1
	ClaimPung ClaimKind = 2
	ClaimKong ClaimKind = 3
	ClaimWin  ClaimKind = 4
)

var ClaimKindDictionary = map[ClaimKind]string{
	ClaimNone: "NONE",
	ClaimChow: "CHOW",
	ClaimPung: "PUNG",
	ClaimKong: "KONG",
	ClaimWin:  "WIN",
}

// priority orders simultaneous claims on one discard: Win > Kong > Pung > Chow.
func (k ClaimKind) priority() int {
	switch k {
	case ClaimWin:
		return 4
	case ClaimKong:
		return 3
	case ClaimPung:
		return 2
	case ClaimChow:
		return 1
	}
	return 0
}

// WinKind 胡牌形态
type WinKind byte

const (
	WinNone       WinKind = 0
	WinStandard   WinKind = 1 // 5 trios + 1 pair
	WinSietePares WinKind = 2 // 7 pairs + 1 trio
)

var WinKindDictionary = map[WinKind]string{
	WinNone:       "NONE",
	WinStandard:   "STANDARD",
	WinSietePares: "SIETE_PARES",
}

// GameStatus 对局状态
type GameStatus byte

const (
	StatusPlaying  GameStatus = 0
	StatusFinished GameStatus = 1
	StatusDrawn    GameStatus = 2 // wall exhausted, no winner
)

var GameStatusDictionary = map[GameStatus]string{
	StatusPlaying:  "PLAYING",
	StatusFinished: "FINISHED",
	StatusDrawn:    "DRAWN",
}
