package npc

import (
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"mahjong-lite/mahjong"
)

// NPCInstance represents an active NPC seated at a table.
type NPCInstance struct {
	PlayerID   uint64
	Seat       int
	Persona    *NPCPersona
	Brain      BrainDecider
	ThinkDelay time.Duration
}

// Manager manages NPC lifecycle and decision-making at tables.
type Manager struct {
	registry  *PersonaRegistry
	instances map[uint64]*NPCInstance // keyed by PlayerID
	mu        sync.RWMutex
	rng       *rand.Rand
	nextID    uint64 // auto-incrementing fake player IDs for NPCs
}

// NewManager creates an NPC manager with the given persona registry.
func NewManager(registry *PersonaRegistry) *Manager {
	return &Manager{
		registry:  registry,
		instances: make(map[uint64]*NPCInstance),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		nextID:    9_000_000, // NPC IDs start from 9M to avoid collision with real users
	}
}

// Registry returns the underlying PersonaRegistry.
func (m *Manager) Registry() *PersonaRegistry {
	return m.registry
}

// SpawnNPC creates and seats an NPC at a table.
// Returns the NPCInstance so the caller can integrate it into the table.
func (m *Manager) SpawnNPC(game *mahjong.Game, seat int, persona *NPCPersona) (*NPCInstance, error) {
	m.mu.Lock()
	m.nextID++
	playerID := m.nextID
	seed := m.rng.Int63()
	m.mu.Unlock()

	brain := NewRuleBrain(persona, seed)

	// Think delay: 1–3 seconds base, plus random jitter, so NPC pacing feels
	// natural in multi-NPC claim windows.
	baseMs := 1000 + int(persona.Brain.Randomness*2000)
	jitterMs := m.rng.Intn(1500)
	thinkDelay := time.Duration(baseMs+jitterMs) * time.Millisecond

	if err := game.SitDown(seat, playerID, true); err != nil {
		return nil, fmt.Errorf("spawn NPC %s at seat %d: %w", persona.Name, seat, err)
	}

	inst := &NPCInstance{
		PlayerID:   playerID,
		Seat:       seat,
		Persona:    persona,
		Brain:      brain,
		ThinkDelay: thinkDelay,
	}

	m.mu.Lock()
	m.instances[playerID] = inst
	m.mu.Unlock()

	log.Printf("[NPC] Spawned %s (ID=%d) at seat %d", persona.Name, playerID, seat)
	return inst, nil
}

// OnTurn is called on the NPC's turn and on every open discard window.
// It builds a GameView from the snapshot and asks the brain for a decision.
func (m *Manager) OnTurn(playerID uint64, snap mahjong.Snapshot) Decision {
	m.mu.RLock()
	inst := m.instances[playerID]
	m.mu.RUnlock()

	if inst == nil {
		log.Printf("[NPC] OnTurn called for unknown player %d", playerID)
		return Decision{Action: ActionPass}
	}

	view := BuildGameView(inst.Seat, snap)
	decision := inst.Brain.Decide(view)
	log.Printf("[NPC] %s decides: %s tile=%v", inst.Persona.Name, ActionTypeDictionary[decision.Action], decision.Tile)
	return decision
}

// GetInstance returns the NPC instance for a given playerID, or nil.
func (m *Manager) GetInstance(playerID uint64) *NPCInstance {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.instances[playerID]
}

// IsNPC checks if a playerID belongs to an NPC.
func (m *Manager) IsNPC(playerID uint64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.instances[playerID] != nil
}

// DespawnNPC removes an NPC from tracking.
func (m *Manager) DespawnNPC(playerID uint64) {
	m.mu.Lock()
	inst := m.instances[playerID]
	delete(m.instances, playerID)
	m.mu.Unlock()

	if inst != nil {
		log.Printf("[NPC] Despawned %s (ID=%d)", inst.Persona.Name, playerID)
	}
}

// GetThinkDelay returns the simulated thinking delay for an NPC.
func (m *Manager) GetThinkDelay(playerID uint64) time.Duration {
	m.mu.RLock()
	inst := m.instances[playerID]
	m.mu.RUnlock()
	if inst == nil {
		return time.Second
	}
	return inst.ThinkDelay
}

// BuildGameView projects a snapshot down to what one seat may see: its own
// hand and flowers, everyone's melds and discards, never another hand.
func BuildGameView(seat int, snap mahjong.Snapshot) GameView {
	view := GameView{
		Seat:             seat,
		CurrentSeat:      snap.CurrentSeat,
		Phase:            snap.Phase,
		HasDrawnThisTurn: snap.HasDrawnThisTurn,
		OpenDiscard:      snap.OpenDiscard,
		HasOpenDiscard:   snap.HasOpenDiscard,
		DiscarderSeat:    snap.DiscarderSeat,
		AllDiscards:      snap.DiscardPile,
		WallCount:        snap.WallCount,
	}
	for _, ps := range snap.Players {
		if ps.Seat == seat {
			view.Hand = ps.Hand
			view.Melds = ps.Melds
			view.FlowerCount = len(ps.Flowers)
			break
		}
	}
	return view
}
