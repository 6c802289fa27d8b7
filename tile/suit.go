package tile

type Suit byte

const (
	Circle    Suit = iota // 筒
	Bamboo                // 索
	Character             // 万
	Wind                  // 风
	Dragon                // 箭
	Flower                // 花
	Season                // 季
)

func (s Suit) String() string {
	switch s {
	case Circle:
		return "C"
	case Bamboo:
		return "B"
	case Character:
		return "K"
	case Wind:
		return "W"
	case Dragon:
		return "D"
	case Flower:
		return "F"
	case Season:
		return "S"
	}
	return "?"
}
