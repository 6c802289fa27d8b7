package lobby

import (
	"fmt"
	"log"
	"math/rand"
	"sort"
	"sync"
	"time"

	"mahjong-lite/apps/server/internal/ledger"
	"mahjong-lite/apps/server/internal/table"
	"mahjong-lite/mahjong"
	"mahjong-lite/mahjong/npc"
)

// Lobby manages active tables. A new table is filled with NPCs up to one
// open seat, so a quick-starting human always lands in a playable game.
type Lobby struct {
	mu      sync.RWMutex
	tables  map[string]*table.Table
	nextID  uint64
	cfg     table.TableConfig
	ledger  ledger.Service
	npcMgr  *npc.Manager
	rng     *rand.Rand
	janitor *time.Ticker
	done    chan struct{}
}

// TableSummary is the lobby listing entry for one table.
type TableSummary struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	OpenSeat bool   `json:"openSeat"`
}

const (
	idleTableTTL     = 10 * time.Minute
	janitorInterval  = time.Minute
	npcSeatsPerTable = mahjong.SeatCount - 1
)

func New(cfg table.TableConfig, ledgerService ledger.Service, npcMgr *npc.Manager) *Lobby {
	l := &Lobby{
		tables:  make(map[string]*table.Table),
		cfg:     cfg,
		ledger:  ledgerService,
		npcMgr:  npcMgr,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		janitor: time.NewTicker(janitorInterval),
		done:    make(chan struct{}),
	}
	go l.runJanitor()
	return l
}

// QuickStart finds a table with an open seat or creates one. The caller then
// joins it through the table's event queue.
func (l *Lobby) QuickStart(broadcastFn func(userID uint64, data []byte)) (*table.Table, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, t := range l.tables {
		if !t.IsClosed() && t.HasOpenSeat() {
			return t, nil
		}
	}
	return l.createTableLocked(broadcastFn)
}

func (l *Lobby) createTableLocked(broadcastFn func(userID uint64, data []byte)) (*table.Table, error) {
	l.nextID++
	tableID := fmt.Sprintf("table_%d", l.nextID)

	cfg := l.cfg
	if cfg.Seed == 0 {
		cfg.Seed = l.rng.Int63()
	}
	t := table.New(tableID, cfg, broadcastFn, l.ledger, l.npcMgr)
	if t == nil {
		return nil, fmt.Errorf("create table %s failed", tableID)
	}

	for _, persona := range l.pickRosterLocked(npcSeatsPerTable) {
		if err := t.SeatNPC(persona); err != nil {
			t.Stop()
			return nil, fmt.Errorf("seat NPC on %s: %w", tableID, err)
		}
	}

	l.tables[tableID] = t
	log.Printf("[Lobby] Created table %s (%d tables active)", tableID, len(l.tables))
	return t, nil
}

// pickRosterLocked draws n distinct personas from the registry.
func (l *Lobby) pickRosterLocked(n int) []*npc.NPCPersona {
	if l.npcMgr == nil {
		return nil
	}
	all := l.npcMgr.Registry().All()
	if len(all) == 0 {
		return nil
	}
	l.rng.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	if n > len(all) {
		n = len(all)
	}
	return all[:n]
}

func (l *Lobby) GetTable(tableID string) (*table.Table, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	t, ok := l.tables[tableID]
	return t, ok
}

func (l *Lobby) ListTables() []TableSummary {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]TableSummary, 0, len(l.tables))
	for id, t := range l.tables {
		snap := t.Snapshot()
		out = append(out, TableSummary{
			ID:       id,
			Status:   mahjong.GameStatusDictionary[snap.Status],
			OpenSeat: t.HasOpenSeat(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (l *Lobby) runJanitor() {
	for {
		select {
		case <-l.janitor.C:
			l.reapIdleTables()
		case <-l.done:
			return
		}
	}
}

// reapIdleTables closes tables with no human online past the TTL.
func (l *Lobby) reapIdleTables() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for id, t := range l.tables {
		if t.IsClosed() || t.IsIdleFor(idleTableTTL) {
			t.Stop()
			delete(l.tables, id)
			log.Printf("[Lobby] Reaped idle table %s (%d tables active)", id, len(l.tables))
		}
	}
}

// Shutdown stops the janitor and all tables.
func (l *Lobby) Shutdown() {
	close(l.done)
	l.janitor.Stop()

	l.mu.Lock()
	defer l.mu.Unlock()
	for id, t := range l.tables {
		t.Stop()
		delete(l.tables, id)
	}
	log.Printf("[Lobby] Shut down")
}
