package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"wizard-game/dto"
	"wizard-game/engine"
	"wizard-game/entities"
)

var ErrRoomNotFound = errors.New("room not found")

// ErrorCode is engine.Code plus the manager's own errors.
func ErrorCode(err error) string {
	if errors.Is(err, ErrRoomNotFound) {
		return "room_not_found"
	}
	return engine.Code(err)
}

// Options wires a Manager. Store, Journal and Autoplay may be nil; without
// Autoplay a timed-out turn gets the default move.
type Options struct {
	Store       Store
	Journal     Journal
	Autoplay    Policy
	Logger      *zap.Logger
	Rules       engine.Options
	TurnTimeout time.Duration
}

// Manager owns every table in the process. Tables are independent: each has
// its own lock, held for a move together with its persistence, so moves at
// one table are processed one at a time while other tables run in parallel.
type Manager struct {
	mu     sync.RWMutex
	tables map[string]*table

	store       Store
	journal     Journal
	autoplay    Policy
	log         *zap.Logger
	rules       engine.Options
	turnTimeout time.Duration

	notifyMu sync.RWMutex
	notify   []func(roomID string)
}

type table struct {
	mu        sync.Mutex
	session   *engine.Session
	createdAt time.Time
	timer     *time.Timer
}

func NewManager(o Options) *Manager {
	log := o.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		tables:      make(map[string]*table),
		store:       o.Store,
		journal:     o.Journal,
		autoplay:    o.Autoplay,
		log:         log,
		rules:       o.Rules,
		turnTimeout: o.TurnTimeout,
	}
}

// OnChange registers fn to run after every accepted move and on teardown.
// It runs outside the table lock.
func (m *Manager) OnChange(fn func(roomID string)) {
	m.notifyMu.Lock()
	m.notify = append(m.notify, fn)
	m.notifyMu.Unlock()
}

func (m *Manager) changed(roomID string) {
	m.notifyMu.RLock()
	fns := append([]func(string){}, m.notify...)
	m.notifyMu.RUnlock()
	for _, fn := range fns {
		fn(roomID)
	}
}

func (m *Manager) lookup(roomID string) (*table, error) {
	m.mu.RLock()
	t, ok := m.tables[roomID]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, roomID)
	}
	return t, nil
}

// CreateRoom seats players at a new table and deals the first round. A nil
// seed draws a random one.
func (m *Manager) CreateRoom(ctx context.Context, players []string, seed *uint64) (string, error) {
	s := newSeed()
	if seed != nil {
		s = *seed
	}
	roomID := newRoomID()
	session, err := engine.NewSession(roomID, players, s, m.rules)
	if err != nil {
		return "", err
	}
	t := &table{session: session, createdAt: time.Now()}

	m.mu.Lock()
	m.tables[roomID] = t
	m.mu.Unlock()

	t.mu.Lock()
	m.save(ctx, roomID, session.Record())
	m.armTimer(roomID, t)
	t.mu.Unlock()

	m.log.Info("room created", zap.String("room_id", roomID), zap.Strings("players", players))
	return roomID, nil
}

func (m *Manager) SubmitBid(ctx context.Context, roomID, player string, value int) error {
	return m.move(ctx, roomID, player, func(s *engine.Session) error {
		return s.SubmitBid(player, value)
	})
}

func (m *Manager) ChooseTrump(ctx context.Context, roomID, player string, suit entities.Suit) error {
	return m.move(ctx, roomID, player, func(s *engine.Session) error {
		return s.ChooseTrump(player, suit)
	})
}

func (m *Manager) PlayCard(ctx context.Context, roomID, player string, card entities.Card) error {
	return m.move(ctx, roomID, player, func(s *engine.Session) error {
		return s.PlayCard(player, card)
	})
}

// ForfeitTurn makes the default move for player and returns it.
func (m *Manager) ForfeitTurn(ctx context.Context, roomID, player string) (engine.Action, error) {
	var made engine.Action
	err := m.move(ctx, roomID, player, func(s *engine.Session) error {
		a, err := s.ForfeitTurn(player)
		made = a
		return err
	})
	return made, err
}

func (m *Manager) move(ctx context.Context, roomID, player string, fn func(*engine.Session) error) error {
	t, err := m.lookup(roomID)
	if err != nil {
		return err
	}
	t.mu.Lock()
	err = m.moveLocked(ctx, roomID, t, fn)
	t.mu.Unlock()
	if err != nil {
		m.log.Info("move rejected",
			zap.String("room_id", roomID),
			zap.String("player_id", player),
			zap.String("code", ErrorCode(err)),
			zap.Error(err))
		return err
	}
	m.changed(roomID)
	return nil
}

// moveLocked applies fn and persists the outcome. Callers hold t.mu.
func (m *Manager) moveLocked(ctx context.Context, roomID string, t *table, fn func(*engine.Session) error) error {
	if err := fn(t.session); err != nil {
		return err
	}
	rec := t.session.Record()
	seq := len(rec.Actions)
	last := rec.Actions[seq-1]
	m.save(ctx, roomID, rec)
	m.appendJournal(ctx, roomID, seq, last)
	m.armTimer(roomID, t)
	m.log.Debug("move accepted",
		zap.String("room_id", roomID),
		zap.String("player_id", last.Player),
		zap.String("kind", string(last.Kind)),
		zap.Int("round", last.Round),
		zap.Bool("forfeit", last.Forfeit))
	return nil
}

// save and appendJournal log failures instead of returning them: the move
// has already happened and the table stays authoritative in memory.
func (m *Manager) save(ctx context.Context, roomID string, rec engine.Record) {
	if m.store == nil {
		return
	}
	if err := m.store.Save(ctx, rec); err != nil {
		m.log.Error("save record failed", zap.String("room_id", roomID), zap.Error(err))
	}
}

func (m *Manager) appendJournal(ctx context.Context, roomID string, seq int, a engine.Action) {
	if m.journal == nil {
		return
	}
	entry, err := newJournalEntry(roomID, seq, a, time.Now().UTC())
	if err == nil {
		err = m.journal.Append(ctx, entry)
	}
	if err != nil {
		m.log.Error("journal append failed", zap.String("room_id", roomID), zap.Int("seq", seq), zap.Error(err))
	}
}

// State is the broadcastable snapshot of a table.
func (m *Manager) State(roomID string) (engine.Snapshot, error) {
	t, err := m.lookup(roomID)
	if err != nil {
		return engine.Snapshot{}, err
	}
	return t.session.State(), nil
}

// Hand is player's private hand; transports must only send it to that player.
func (m *Manager) Hand(roomID, player string) ([]entities.Card, error) {
	t, err := m.lookup(roomID)
	if err != nil {
		return nil, err
	}
	return t.session.Hand(player)
}

// DeleteRoom tears a table down. It cannot be undone.
func (m *Manager) DeleteRoom(ctx context.Context, roomID string) error {
	m.mu.Lock()
	t, ok := m.tables[roomID]
	delete(m.tables, roomID)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrRoomNotFound, roomID)
	}

	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
	}
	t.session.Close()
	t.mu.Unlock()

	if m.store != nil {
		if err := m.store.Delete(ctx, roomID); err != nil {
			m.log.Error("delete record failed", zap.String("room_id", roomID), zap.Error(err))
		}
	}
	m.log.Info("room deleted", zap.String("room_id", roomID))
	m.changed(roomID)
	return nil
}

func (m *Manager) ListRooms() []dto.RoomInfo {
	m.mu.RLock()
	ids := make([]string, 0, len(m.tables))
	tables := make(map[string]*table, len(m.tables))
	for id, t := range m.tables {
		ids = append(ids, id)
		tables[id] = t
	}
	m.mu.RUnlock()

	rooms := make([]dto.RoomInfo, 0, len(ids))
	for _, id := range ids {
		t := tables[id]
		snap := t.session.State()
		status := entities.RoomStatusPlaying
		switch snap.Phase {
		case engine.PhaseFinished:
			status = entities.RoomStatusEnd
		case engine.PhaseClosed:
			status = entities.RoomStatusClosed
		}
		rooms = append(rooms, dto.RoomInfo{
			RoomID:    id,
			Players:   snap.Players,
			Round:     snap.Round,
			MaxRounds: snap.MaxRounds,
			Phase:     string(snap.Phase),
			Status:    status,
			CreatedAt: t.createdAt,
		})
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].CreatedAt.Before(rooms[j].CreatedAt) })
	return rooms
}

// Recover rebuilds every stored table. Records that no longer replay are
// logged and skipped.
func (m *Manager) Recover(ctx context.Context) (int, error) {
	if m.store == nil {
		return 0, nil
	}
	ids, err := m.store.List(ctx)
	if err != nil {
		return 0, err
	}
	restored := 0
	for _, id := range ids {
		rec, err := m.store.Load(ctx, id)
		if err != nil {
			m.log.Warn("skip stored room", zap.String("room_id", id), zap.Error(err))
			continue
		}
		session, err := engine.Restore(rec)
		if err != nil {
			m.log.Warn("skip stored room", zap.String("room_id", id), zap.Error(err))
			continue
		}
		if rec.Closed {
			continue
		}
		t := &table{session: session, createdAt: time.Now()}
		m.mu.Lock()
		m.tables[id] = t
		m.mu.Unlock()
		t.mu.Lock()
		m.armTimer(id, t)
		t.mu.Unlock()
		restored++
	}
	m.log.Info("rooms recovered", zap.Int("count", restored))
	return restored, nil
}

// Shutdown stops every turn timer; tables stay in the store.
func (m *Manager) Shutdown() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.tables {
		t.mu.Lock()
		if t.timer != nil {
			t.timer.Stop()
		}
		t.mu.Unlock()
	}
}
