package npc

// Difficulty tiers. Chow claims are a tier-1 privilege: runs commit the hand
// early and weaker personas misuse them.
const (
	TierExpert   = 1
	TierStandard = 2
	TierCasual   = 3
)

// PlayProfile defines the tunable parameters for a RuleBrain.
type PlayProfile struct {
	ClaimGreed float64 `json:"claimGreed"` // 0.0–1.0: shaves the claim improvement margins
	Caution    float64 `json:"caution"`    // 0.0–1.0: weight on safe discards late in the wall
	Randomness float64 `json:"randomness"` // 0.0–1.0: discard score noise
}

// NPCPersona defines a named NPC character.
type NPCPersona struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Tagline   string      `json:"tagline"`
	AvatarKey string      `json:"avatarKey"`
	Tier      int         `json:"tier"` // 1=expert, 2=standard, 3=casual
	Brain     PlayProfile `json:"brain"`
}
