package table

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"mahjong-lite/apps/server/internal/codec"
	"mahjong-lite/apps/server/internal/ledger"
	"mahjong-lite/mahjong"
	"mahjong-lite/mahjong/npc"
	"mahjong-lite/tile"
)

// Table hosts one four-seat game behind an actor loop: every mutation comes
// in as an Event, so the engine sees one decision at a time.
type Table struct {
	ID     string
	Config TableConfig

	mu       sync.RWMutex
	game     *mahjong.Game
	players  map[uint64]*PlayerConn // userID -> connection
	seats    map[int]uint64         // seat -> userID
	round    uint32
	gameID   string
	closed   bool
	stopOnce sync.Once

	events chan Event
	done   chan struct{}

	// Server sequence for event ordering
	serverSeq uint64

	// Claim window state: opened after every discard, closed by answers or
	// the deadline.
	claimOpen     bool
	claimDeadline time.Time
	claimEligible map[int][]mahjong.ClaimKind
	claimAnswered map[int]bool
	claimsGot     []mahjong.Claim

	// Timers and lifecycle metadata.
	actionTimeoutSeat int
	actionDeadline    time.Time
	nextHandAt        time.Time
	emptySince        time.Time

	broadcast func(userID uint64, data []byte)
	ledger    ledger.Service

	npcManager *npc.Manager
}

// TableConfig contains table settings.
type TableConfig struct {
	Seed             int64
	UnitPayout       float64
	TurnTimeLimitSec int32
	ClaimWindow      time.Duration
}

// PlayerConn represents one participant at the table (human or NPC).
type PlayerConn struct {
	UserID   uint64
	Nickname string
	Seat     int
	Robot    bool
	Online   bool
	Departed bool
	LastSeen time.Time
}

// Event types for the actor message queue.
type EventType int

const (
	EventJoinTable EventType = iota
	EventStandUp
	EventAction
	EventStartHand
	EventConnLost
	EventConnResume
	EventClose
)

// PlayerAction is a decoded in-game move (kinds from the codec package).
type PlayerAction struct {
	Kind  string
	Tile  tile.Tile
	Claim mahjong.ClaimKind
}

// Event represents a message to the table actor.
type Event struct {
	Type      EventType
	UserID    uint64
	Nickname  string
	Action    PlayerAction
	Timestamp time.Time
	Response  chan error
}

var (
	ErrTableClosed     = errors.New("table closed")
	ErrTableFull       = errors.New("table full")
	ErrNotSeated       = errors.New("player not seated")
	ErrNoClaimWindow   = errors.New("no claim window open")
	ErrClaimWindowOpen = errors.New("claim window open")
)

const (
	defaultTurnTimeLimitSec = int32(30)
	departedTurnLimitSec    = int32(2)
	defaultClaimWindow      = 3500 * time.Millisecond
	finishedHandDelay       = 8 * time.Second
	drawnHandDelay          = 4 * time.Second
)

// New creates a table and starts its actor goroutine.
func New(
	id string,
	cfg TableConfig,
	broadcastFn func(userID uint64, data []byte),
	ledgerService ledger.Service,
	npcMgr *npc.Manager,
) *Table {
	if cfg.TurnTimeLimitSec <= 0 {
		cfg.TurnTimeLimitSec = defaultTurnTimeLimitSec
	}
	if cfg.ClaimWindow <= 0 {
		cfg.ClaimWindow = defaultClaimWindow
	}

	t := &Table{
		ID:                id,
		Config:            cfg,
		players:           make(map[uint64]*PlayerConn),
		seats:             make(map[int]uint64),
		events:            make(chan Event, 256),
		done:              make(chan struct{}),
		broadcast:         broadcastFn,
		ledger:            ledgerService,
		npcManager:        npcMgr,
		actionTimeoutSeat: mahjong.InvalidSeat,
		emptySince:        time.Now(),
	}

	game, err := mahjong.NewGame(mahjong.Config{
		Seed:       cfg.Seed,
		UnitPayout: cfg.UnitPayout,
	})
	if err != nil {
		log.Printf("[Table %s] Failed to create game: %v", id, err)
		return nil
	}
	t.game = game

	go t.run()

	log.Printf("[Table %s] Created (turnLimit=%ds, claimWindow=%s)", id, cfg.TurnTimeLimitSec, cfg.ClaimWindow)
	return t
}

// run is the main actor loop.
func (t *Table) run() {
	// Sub-second heartbeat for timeouts, claim deadlines and hand scheduling.
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case event := <-t.events:
			err := t.handleEvent(event)
			if event.Response != nil {
				event.Response <- err
			}
		case <-ticker.C:
			t.tick()
		case <-t.done:
			log.Printf("[Table %s] Actor stopped", t.ID)
			return
		}
	}
}

func (t *Table) handleEvent(e Event) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed && e.Type != EventClose {
		return ErrTableClosed
	}

	switch e.Type {
	case EventJoinTable:
		return t.handleJoinTable(e.UserID, e.Nickname)
	case EventStandUp:
		return t.handleStandUp(e.UserID)
	case EventAction:
		return t.handleAction(e.UserID, e.Action)
	case EventStartHand:
		return t.tryStartHand(time.Now())
	case EventConnLost:
		return t.handleConnLost(e.UserID, e.Timestamp)
	case EventConnResume:
		return t.handleConnResume(e.UserID, e.Nickname, e.Timestamp)
	case EventClose:
		t.stopLocked()
		return nil
	default:
		return fmt.Errorf("unknown event type: %d", e.Type)
	}
}

func (t *Table) handleJoinTable(userID uint64, nickname string) error {
	now := time.Now()
	resolvedNickname := normalizeNickname(nickname, userID)
	if player, exists := t.players[userID]; exists {
		player.Online = true
		player.Departed = false
		player.LastSeen = now
		player.Nickname = resolvedNickname
		t.sendSnapshot(userID)
		t.resendPromptIfActing(player.Seat)
		return nil // Already joined
	}

	seat, ok := t.freeSeatLocked()
	if !ok {
		return ErrTableFull
	}
	if err := t.game.SitDown(seat, userID, false); err != nil {
		return err
	}
	t.players[userID] = &PlayerConn{
		UserID:   userID,
		Nickname: resolvedNickname,
		Seat:     seat,
		Online:   true,
		LastSeen: now,
	}
	t.seats[seat] = userID
	t.updateEmptySinceLocked(now)
	log.Printf("[Table %s] Player %d seated at %d", t.ID, userID, seat)

	t.broadcastSeatUpdate(seat, userID)
	t.sendSnapshot(userID)
	if err := t.tryStartHand(now); err != nil {
		log.Printf("[Table %s] start after join failed: %v", t.ID, err)
	}
	return nil
}

// SeatNPC spawns an NPC at the first free seat. Called by the lobby during
// table setup, before the human joins.
func (t *Table) SeatNPC(persona *npc.NPCPersona) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.npcManager == nil {
		return fmt.Errorf("NPC manager not available")
	}
	seat, ok := t.freeSeatLocked()
	if !ok {
		return ErrTableFull
	}

	inst, err := t.npcManager.SpawnNPC(t.game, seat, persona)
	if err != nil {
		return err
	}
	t.players[inst.PlayerID] = &PlayerConn{
		UserID:   inst.PlayerID,
		Nickname: inst.Persona.Name,
		Seat:     seat,
		Robot:    true,
		Online:   true,
		LastSeen: time.Now(),
	}
	t.seats[seat] = inst.PlayerID
	t.updateEmptySinceLocked(time.Now())

	log.Printf("[Table %s] NPC %s seated at %d", t.ID, persona.Name, seat)
	t.broadcastSeatUpdate(seat, inst.PlayerID)
	return nil
}

// handleStandUp marks the seat as departed. A four-seat game cannot release
// the chair mid-session; the autopilot drives departed seats on a short
// timeout until the table winds down.
func (t *Table) handleStandUp(userID uint64) error {
	player := t.players[userID]
	if player == nil {
		return nil
	}
	player.Departed = true
	player.Online = false
	player.LastSeen = time.Now()
	t.updateEmptySinceLocked(player.LastSeen)
	log.Printf("[Table %s] Player %d departed seat %d (autopilot takes over)", t.ID, userID, player.Seat)
	t.resendPromptIfActing(player.Seat)
	return nil
}

func (t *Table) handleConnLost(userID uint64, ts time.Time) error {
	player := t.players[userID]
	if player == nil {
		return nil
	}
	if ts.IsZero() {
		ts = time.Now()
	}
	player.Online = false
	player.LastSeen = ts
	t.updateEmptySinceLocked(ts)
	log.Printf("[Table %s] Player %d connection lost", t.ID, userID)
	return nil
}

func (t *Table) handleConnResume(userID uint64, nickname string, ts time.Time) error {
	player := t.players[userID]
	if player == nil {
		return nil
	}
	player.Nickname = normalizeNickname(nickname, userID)
	if ts.IsZero() {
		ts = time.Now()
	}
	player.Online = true
	player.Departed = false
	player.LastSeen = ts
	t.updateEmptySinceLocked(ts)
	t.sendSnapshot(userID)
	t.resendPromptIfActing(player.Seat)
	log.Printf("[Table %s] Player %d connection resumed", t.ID, userID)
	return nil
}

func (t *Table) handleAction(userID uint64, action PlayerAction) error {
	player := t.players[userID]
	if player == nil {
		return ErrNotSeated
	}
	seat := player.Seat
	player.LastSeen = time.Now()

	switch action.Kind {
	case codec.ActionClaim, codec.ActionPass:
		return t.handleClaimAnswer(seat, action)
	}
	if t.claimOpen {
		return ErrClaimWindowOpen
	}
	return t.applyAction(seat, action)
}

// applyAction routes one engine call and the follow-up orchestration.
// Caller holds t.mu.
func (t *Table) applyAction(seat int, action PlayerAction) error {
	switch action.Kind {
	case codec.ActionDraw:
		drawn, ok, err := t.game.Draw(seat)
		if err != nil {
			return err
		}
		t.clearActionTimeoutLocked()
		if !ok {
			if err := t.game.EndDrawn(); err != nil {
				return err
			}
			log.Printf("[Table %s] Wall exhausted, hand %d drawn", t.ID, t.round)
			t.handleGameEnd()
			return nil
		}
		t.broadcastDrawResult(seat, drawn)
		t.promptSeat(seat)
		return nil

	case codec.ActionDiscard:
		if err := t.game.Discard(seat, action.Tile); err != nil {
			return err
		}
		t.clearActionTimeoutLocked()
		t.broadcastActionResult(seat, codec.ActionDiscard, action.Tile.String(), "")
		t.openClaimWindow()
		return nil

	case codec.ActionKong:
		if err := t.game.DeclareKong(seat, action.Tile); err != nil {
			return err
		}
		t.clearActionTimeoutLocked()
		// Kong tiles stay face down for the room; the declarer knows.
		t.broadcastActionResult(seat, codec.ActionKong, "", "")
		t.sendSnapshot(t.seats[seat])
		t.promptSeat(seat)
		return nil

	case codec.ActionWin:
		if _, err := t.game.DeclareWin(seat); err != nil {
			return err
		}
		t.clearActionTimeoutLocked()
		t.broadcastActionResult(seat, codec.ActionWin, "", "")
		t.handleGameEnd()
		return nil

	default:
		return fmt.Errorf("unknown action %q", action.Kind)
	}
}

// --- Claim window ---

func (t *Table) handleClaimAnswer(seat int, action PlayerAction) error {
	if !t.claimOpen {
		return ErrNoClaimWindow
	}
	if _, eligible := t.claimEligible[seat]; !eligible {
		return mahjong.ErrInvalidClaim
	}
	if t.claimAnswered[seat] {
		return nil // repeated answer, first one stands
	}

	if action.Kind == codec.ActionClaim {
		claim := mahjong.Claim{Seat: seat, Kind: action.Claim}
		if !t.game.IsValidClaim(claim) {
			return mahjong.ErrInvalidClaim
		}
		t.claimsGot = append(t.claimsGot, claim)
	}
	t.claimAnswered[seat] = true

	if t.allClaimsAnswered() {
		t.resolveClaimWindow()
	}
	return nil
}

// openClaimWindow offers the fresh discard to every seat with a legal claim.
// With no eligible seat the window closes immediately and the next player is
// prompted to draw.
func (t *Table) openClaimWindow() {
	snap := t.game.Snapshot()
	if !snap.HasOpenDiscard {
		t.promptSeat(snap.CurrentSeat)
		return
	}

	eligible := make(map[int][]mahjong.ClaimKind)
	for seat := 0; seat < mahjong.SeatCount; seat++ {
		if seat == snap.DiscarderSeat {
			continue
		}
		var kinds []mahjong.ClaimKind
		for _, kind := range []mahjong.ClaimKind{mahjong.ClaimWin, mahjong.ClaimKong, mahjong.ClaimPung, mahjong.ClaimChow} {
			if t.game.IsValidClaim(mahjong.Claim{Seat: seat, Kind: kind}) {
				kinds = append(kinds, kind)
			}
		}
		if len(kinds) > 0 {
			eligible[seat] = kinds
		}
	}
	if len(eligible) == 0 {
		t.promptSeat(snap.CurrentSeat)
		return
	}

	t.claimOpen = true
	t.claimDeadline = time.Now().Add(t.Config.ClaimWindow)
	t.claimEligible = eligible
	t.claimAnswered = make(map[int]bool, len(eligible))
	t.claimsGot = nil

	for seat, kinds := range eligible {
		userID := t.seats[seat]
		if userID == 0 {
			continue
		}
		if t.isNPC(userID) {
			t.scheduleNPCClaim(seat, userID, snap)
			continue
		}
		t.sendClaimPrompt(userID, seat, snap, kinds)
	}
}

func (t *Table) allClaimsAnswered() bool {
	for seat := range t.claimEligible {
		if !t.claimAnswered[seat] {
			return false
		}
	}
	return true
}

// resolveClaimWindow closes the window, applies the highest-priority claim
// (if any) and prompts whoever acts next. Caller holds t.mu.
func (t *Table) resolveClaimWindow() {
	t.claimOpen = false
	claims := t.claimsGot
	t.claimsGot = nil
	t.claimEligible = nil
	t.claimAnswered = nil

	best, found := t.game.ResolveClaims(claims)
	if found {
		if err := t.game.ProcessClaim(best); err != nil {
			log.Printf("[Table %s] claim %s by seat %d rejected: %v",
				t.ID, mahjong.ClaimKindDictionary[best.Kind], best.Seat, err)
			found = false
		}
	}

	snap := t.game.Snapshot()
	if found {
		log.Printf("[Table %s] Claim %s by seat %d", t.ID, mahjong.ClaimKindDictionary[best.Kind], best.Seat)
		t.broadcastActionResult(best.Seat, codec.ActionClaim, "", mahjong.ClaimKindDictionary[best.Kind])
		t.broadcastSnapshots()
		if snap.Status != mahjong.StatusPlaying {
			t.handleGameEnd()
			return
		}
	}
	t.promptSeat(snap.CurrentSeat)
}

// --- Hand lifecycle ---

func (t *Table) tryStartHand(now time.Time) error {
	if t.closed {
		return ErrTableClosed
	}
	if len(t.seats) < mahjong.SeatCount {
		return nil
	}
	if !t.nextHandAt.IsZero() && now.Before(t.nextHandAt) {
		return nil
	}
	status, _ := t.game.Status()
	if t.round > 0 && status == mahjong.StatusPlaying {
		return nil
	}
	return t.startHand()
}

func (t *Table) startHand() error {
	t.nextHandAt = time.Time{}
	t.clearActionTimeoutLocked()
	t.claimOpen = false
	t.claimsGot = nil
	t.claimEligible = nil
	t.claimAnswered = nil

	if err := t.game.StartHand(); err != nil {
		log.Printf("[Table %s] StartHand failed: %v", t.ID, err)
		return err
	}
	t.round++
	t.gameID = fmt.Sprintf("%s_r%d", t.ID, t.round)

	snap := t.game.Snapshot()
	log.Printf("[Table %s] Hand %d started. Dealer: %d, wall: %d", t.ID, t.round, snap.DealerSeat, snap.WallCount)

	t.broadcastToAll(&codec.ServerEnvelope{
		Type: codec.ServerHandStart,
		HandStart: &codec.HandStart{
			Round:          t.round,
			DealerSeat:     snap.DealerSeat,
			PrevailingWind: snap.PrevailingWind.String(),
			WallCount:      snap.WallCount,
		},
	})
	t.sendHands(snap)
	t.broadcastSnapshots()
	t.promptSeat(snap.CurrentSeat)
	return nil
}

func (t *Table) handleGameEnd() {
	t.clearActionTimeoutLocked()
	t.claimOpen = false
	t.claimsGot = nil
	t.claimEligible = nil
	t.claimAnswered = nil

	snap := t.game.Snapshot()
	end := &codec.GameEnd{
		Round:  t.round,
		Status: mahjong.GameStatusDictionary[snap.Status],
		Winner: snap.Winner,
	}
	if res := t.game.WinResult(); res != nil {
		end.WinKind = mahjong.WinKindDictionary[res.Kind]
		end.Total = res.Total
	}
	for _, a := range t.game.Ambitions() {
		end.Ambitions = append(end.Ambitions, codec.AmbitionView{
			Seat:   a.Seat,
			Kind:   mahjong.AmbitionKindDictionary[a.Kind],
			Payout: a.Payout,
		})
	}

	t.broadcastSnapshots()
	t.broadcastToAll(&codec.ServerEnvelope{Type: codec.ServerGameEnd, GameEnd: end})
	log.Printf("[Table %s] Hand %d ended: %s winner=%d", t.ID, t.round, end.Status, end.Winner)

	t.persistResult(snap, end)

	delay := finishedHandDelay
	if snap.Status == mahjong.StatusDrawn {
		delay = drawnHandDelay
	}
	t.nextHandAt = time.Now().Add(delay)
	t.gameID = ""
}

func (t *Table) persistResult(snap mahjong.Snapshot, end *codec.GameEnd) {
	if t.ledger == nil || strings.TrimSpace(t.gameID) == "" {
		return
	}
	rec := ledger.GameRecord{
		GameID:      t.gameID,
		TableID:     t.ID,
		Round:       t.round,
		Status:      end.Status,
		WinnerSeat:  snap.Winner,
		WinKind:     end.WinKind,
		TotalPayout: end.Total,
		PlayedAt:    time.Now().UTC(),
	}
	for seat := 0; seat < mahjong.SeatCount; seat++ {
		userID := t.seats[seat]
		pc := t.players[userID]
		if pc == nil {
			continue
		}
		rec.Seats = append(rec.Seats, ledger.SeatResult{
			Seat:     seat,
			UserID:   userID,
			Nickname: pc.Nickname,
			Robot:    pc.Robot,
		})
	}
	for _, a := range t.game.Ambitions() {
		rec.Ambitions = append(rec.Ambitions, ledger.AmbitionEntry{
			Seat:   a.Seat,
			Kind:   mahjong.AmbitionKindDictionary[a.Kind],
			Payout: a.Payout,
		})
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := t.ledger.RecordGame(ctx, rec); err != nil {
			log.Printf("[Table %s] record game %s failed: %v", t.ID, rec.GameID, err)
		}
	}()
}

// --- Prompts, timeouts, NPC scheduling ---

func (t *Table) promptSeat(seat int) {
	userID := t.seats[seat]
	if userID == 0 {
		return
	}
	snap := t.game.Snapshot()
	if snap.Status != mahjong.StatusPlaying {
		return
	}

	if t.isNPC(userID) {
		// Broadcast the prompt so clients show the active-seat marker; the
		// NPC goroutine handles its own timing.
		t.broadcastPrompt(seat, snap, 0, time.Time{})
		t.scheduleNPCAction(seat, userID)
		return
	}

	timeLimit := t.Config.TurnTimeLimitSec
	player := t.players[userID]
	if player != nil && (player.Departed || !player.Online) {
		timeLimit = departedTurnLimitSec
	}
	deadline := time.Now().Add(time.Duration(timeLimit) * time.Second)
	t.actionTimeoutSeat = seat
	t.actionDeadline = deadline
	t.broadcastPrompt(seat, snap, timeLimit, deadline)
}

func (t *Table) resendPromptIfActing(seat int) {
	snap := t.game.Snapshot()
	if snap.Status != mahjong.StatusPlaying || t.claimOpen {
		return
	}
	if snap.CurrentSeat == seat {
		t.promptSeat(seat)
	}
}

func (t *Table) broadcastPrompt(seat int, snap mahjong.Snapshot, timeLimit int32, deadline time.Time) {
	prompt := &codec.ActionPrompt{
		Seat:  seat,
		Phase: mahjong.PhaseTypeDictionary[snap.Phase],
	}
	if timeLimit > 0 {
		prompt.TimeLimitSec = timeLimit
		prompt.ActionDeadlineMs = deadline.UnixMilli()
	}
	t.broadcastToAll(&codec.ServerEnvelope{Type: codec.ServerActionPrompt, ActionPrompt: prompt})
}

func (t *Table) sendClaimPrompt(userID uint64, seat int, snap mahjong.Snapshot, kinds []mahjong.ClaimKind) {
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, mahjong.ClaimKindDictionary[k])
	}
	t.sendToUser(userID, &codec.ServerEnvelope{
		Type: codec.ServerClaimPrompt,
		ClaimPrompt: &codec.ClaimPrompt{
			Seat:          seat,
			DiscarderSeat: snap.DiscarderSeat,
			Discard:       snap.OpenDiscard.String(),
			Claims:        names,
			DeadlineMs:    t.claimDeadline.UnixMilli(),
		},
	})
}

func (t *Table) isNPC(userID uint64) bool {
	if t.npcManager == nil {
		return false
	}
	return t.npcManager.IsNPC(userID)
}

// scheduleNPCAction asks the brain for a turn decision off the actor
// goroutine and injects it back as an Event.
func (t *Table) scheduleNPCAction(seat int, userID uint64) {
	if t.npcManager == nil {
		return
	}
	snap := t.game.Snapshot()
	thinkDelay := t.npcManager.GetThinkDelay(userID)

	go func() {
		time.Sleep(thinkDelay)
		decision := t.npcManager.OnTurn(userID, snap)
		action, ok := npcDecisionToAction(decision)
		if !ok {
			action = fallbackAction(seat, snap)
		}
		if err := t.SubmitEvent(Event{Type: EventAction, UserID: userID, Action: action}); err != nil && !errors.Is(err, ErrTableClosed) {
			log.Printf("[Table %s] NPC action failed seat=%d: %v", t.ID, seat, err)
		}
	}()
}

// scheduleNPCClaim polls the brain once for a claim-window answer. Anything
// other than a claim counts as a pass.
func (t *Table) scheduleNPCClaim(seat int, userID uint64, snap mahjong.Snapshot) {
	thinkDelay := t.npcManager.GetThinkDelay(userID)
	if thinkDelay > t.Config.ClaimWindow/2 {
		thinkDelay = t.Config.ClaimWindow / 2
	}

	go func() {
		time.Sleep(thinkDelay)
		decision := t.npcManager.OnTurn(userID, snap)
		action := PlayerAction{Kind: codec.ActionPass}
		if decision.Action == npc.ActionClaim {
			action = PlayerAction{Kind: codec.ActionClaim, Claim: decision.Claim}
		}
		if err := t.SubmitEvent(Event{Type: EventAction, UserID: userID, Action: action}); err != nil && !errors.Is(err, ErrTableClosed) {
			log.Printf("[Table %s] NPC claim answer failed seat=%d: %v", t.ID, seat, err)
		}
	}()
}

func npcDecisionToAction(d npc.Decision) (PlayerAction, bool) {
	switch d.Action {
	case npc.ActionDraw:
		return PlayerAction{Kind: codec.ActionDraw}, true
	case npc.ActionDiscard:
		return PlayerAction{Kind: codec.ActionDiscard, Tile: d.Tile}, true
	case npc.ActionKong:
		return PlayerAction{Kind: codec.ActionKong, Tile: d.Tile}, true
	case npc.ActionWin:
		return PlayerAction{Kind: codec.ActionWin}, true
	}
	return PlayerAction{}, false
}

// fallbackAction keeps the hand moving when a brain or a timed-out human
// yields nothing usable.
func fallbackAction(seat int, snap mahjong.Snapshot) PlayerAction {
	if snap.Phase == mahjong.PhaseTypeDiscard {
		for _, ps := range snap.Players {
			if ps.Seat == seat && len(ps.Hand) > 0 {
				return PlayerAction{Kind: codec.ActionDiscard, Tile: ps.Hand[len(ps.Hand)-1]}
			}
		}
	}
	return PlayerAction{Kind: codec.ActionDraw}
}

func (t *Table) tick() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}
	now := time.Now()

	if t.claimOpen && !now.Before(t.claimDeadline) {
		// Silence counts as a pass for everyone still thinking.
		t.resolveClaimWindow()
	}
	if t.actionTimeoutSeat != mahjong.InvalidSeat && !t.actionDeadline.IsZero() && !now.Before(t.actionDeadline) {
		t.handleActionTimeout()
	}
	if !t.nextHandAt.IsZero() && !now.Before(t.nextHandAt) {
		if err := t.tryStartHand(now); err != nil {
			log.Printf("[Table %s] delayed hand start failed: %v", t.ID, err)
		}
	}
}

func (t *Table) handleActionTimeout() {
	seat := t.actionTimeoutSeat
	t.clearActionTimeoutLocked()

	snap := t.game.Snapshot()
	if snap.Status != mahjong.StatusPlaying || t.claimOpen || snap.CurrentSeat != seat {
		return
	}
	action := fallbackAction(seat, snap)
	log.Printf("[Table %s] Action timeout seat=%d -> auto %s", t.ID, seat, action.Kind)
	if err := t.applyAction(seat, action); err != nil {
		log.Printf("[Table %s] auto action failed seat=%d: %v", t.ID, seat, err)
	}
}

// --- Broadcast helpers ---

func (t *Table) nextSeq() uint64 {
	t.serverSeq++
	return t.serverSeq
}

func (t *Table) stamp(env *codec.ServerEnvelope) *codec.ServerEnvelope {
	env.TableID = t.ID
	env.ServerSeq = t.nextSeq()
	env.ServerTsMs = time.Now().UnixMilli()
	return env
}

func (t *Table) sendToUser(userID uint64, env *codec.ServerEnvelope) {
	if t.isNPC(userID) {
		return
	}
	data, err := codec.Encode(t.stamp(env))
	if err != nil {
		log.Printf("[Table %s] Failed to encode message: %v", t.ID, err)
		return
	}
	t.broadcast(userID, data)
}

func (t *Table) broadcastToAll(env *codec.ServerEnvelope) {
	data, err := codec.Encode(t.stamp(env))
	if err != nil {
		log.Printf("[Table %s] Failed to encode message: %v", t.ID, err)
		return
	}
	for userID := range t.players {
		if t.isNPC(userID) {
			continue
		}
		t.broadcast(userID, data)
	}
}

func (t *Table) seatNames() map[int]string {
	names := make(map[int]string, len(t.seats))
	for seat, userID := range t.seats {
		if pc := t.players[userID]; pc != nil {
			names[seat] = pc.Nickname
		}
	}
	return names
}

// sendSnapshot sends the per-viewer projection to one user.
func (t *Table) sendSnapshot(userID uint64) {
	player := t.players[userID]
	if player == nil {
		return
	}
	snap := t.game.Snapshot()
	view := codec.SnapshotView(snap, player.Seat, t.seatNames())
	t.sendToUser(userID, &codec.ServerEnvelope{Type: codec.ServerTableSnapshot, TableSnapshot: view})
}

func (t *Table) broadcastSnapshots() {
	snap := t.game.Snapshot()
	names := t.seatNames()
	for userID, pc := range t.players {
		if t.isNPC(userID) {
			continue
		}
		view := codec.SnapshotView(snap, pc.Seat, names)
		t.sendToUser(userID, &codec.ServerEnvelope{Type: codec.ServerTableSnapshot, TableSnapshot: view})
	}
}

func (t *Table) broadcastSeatUpdate(seat int, userID uint64) {
	pc := t.players[userID]
	if pc == nil {
		return
	}
	t.broadcastToAll(&codec.ServerEnvelope{
		Type: codec.ServerSeatUpdate,
		SeatUpdate: &codec.SeatUpdate{
			Seat: seat,
			PlayerJoined: &codec.PlayerInfo{
				UserID:   userID,
				Nickname: pc.Nickname,
				Seat:     seat,
				Robot:    pc.Robot,
			},
		},
	})
}

// sendHands delivers each seat its own dealt tiles.
func (t *Table) sendHands(snap mahjong.Snapshot) {
	for _, ps := range snap.Players {
		userID := t.seats[ps.Seat]
		if userID == 0 || t.isNPC(userID) {
			continue
		}
		t.sendToUser(userID, &codec.ServerEnvelope{
			Type: codec.ServerDealHand,
			DealHand: &codec.DealHand{
				Seat:    ps.Seat,
				Tiles:   codec.TileNames(ps.Hand),
				Flowers: codec.TileNames(ps.Flowers),
			},
		})
	}
}

// broadcastDrawResult tells the room a draw happened and only the drawer
// which tile it was.
func (t *Table) broadcastDrawResult(seat int, drawn tile.Tile) {
	public := &codec.ServerEnvelope{
		Type:         codec.ServerActionResult,
		ActionResult: &codec.ActionResult{Seat: seat, Type: codec.ActionDraw},
	}
	data, err := codec.Encode(t.stamp(public))
	if err != nil {
		log.Printf("[Table %s] Failed to encode message: %v", t.ID, err)
		return
	}
	drawerID := t.seats[seat]
	for userID := range t.players {
		if t.isNPC(userID) {
			continue
		}
		if userID == drawerID {
			t.sendToUser(userID, &codec.ServerEnvelope{
				Type:         codec.ServerActionResult,
				ActionResult: &codec.ActionResult{Seat: seat, Type: codec.ActionDraw, Tile: drawn.String()},
			})
			continue
		}
		t.broadcast(userID, data)
	}
}

func (t *Table) broadcastActionResult(seat int, kind, tileName, claimName string) {
	t.broadcastToAll(&codec.ServerEnvelope{
		Type: codec.ServerActionResult,
		ActionResult: &codec.ActionResult{
			Seat:  seat,
			Type:  kind,
			Tile:  tileName,
			Claim: claimName,
		},
	})
}

// --- Misc ---

func (t *Table) freeSeatLocked() (int, bool) {
	for seat := 0; seat < mahjong.SeatCount; seat++ {
		if t.seats[seat] == 0 {
			return seat, true
		}
	}
	return 0, false
}

func (t *Table) clearActionTimeoutLocked() {
	t.actionTimeoutSeat = mahjong.InvalidSeat
	t.actionDeadline = time.Time{}
}

func (t *Table) updateEmptySinceLocked(now time.Time) {
	for _, pc := range t.players {
		if !pc.Robot && pc.Online {
			t.emptySince = time.Time{}
			return
		}
	}
	if t.emptySince.IsZero() {
		t.emptySince = now
	}
}

func normalizeNickname(raw string, userID uint64) string {
	nickname := strings.TrimSpace(raw)
	if nickname == "" {
		return fmt.Sprintf("user_%d", userID)
	}
	return nickname
}

// HasOpenSeat reports whether a human can still join.
func (t *Table) HasOpenSeat() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		return false
	}
	_, ok := t.freeSeatLocked()
	return ok
}

// IsIdleFor reports whether no human has been online for ttl.
func (t *Table) IsIdleFor(ttl time.Duration) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		return true
	}
	if t.emptySince.IsZero() {
		return false
	}
	return time.Since(t.emptySince) >= ttl
}

func (t *Table) IsClosed() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.closed
}

// Snapshot returns the current game state (thread-safe).
func (t *Table) Snapshot() mahjong.Snapshot {
	return t.game.Snapshot()
}

// SubmitEvent sends an event to the actor and waits for the outcome.
func (t *Table) SubmitEvent(e Event) error {
	e.Timestamp = time.Now()
	if e.Response == nil {
		e.Response = make(chan error, 1)
	}

	t.mu.RLock()
	closed := t.closed
	t.mu.RUnlock()
	if closed {
		return ErrTableClosed
	}

	select {
	case t.events <- e:
	case <-t.done:
		return ErrTableClosed
	}

	select {
	case err := <-e.Response:
		return err
	case <-t.done:
		return ErrTableClosed
	}
}

// Stop shuts down the table actor.
func (t *Table) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *Table) stopLocked() {
	t.closed = true
	t.nextHandAt = time.Time{}
	t.clearActionTimeoutLocked()
	t.stopOnce.Do(func() {
		close(t.done)
	})
}
