package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"wizard-game/engine"
	"wizard-game/entities"
)

// memStore is an in-memory Store.
type memStore struct {
	mu      sync.Mutex
	records map[string]engine.Record
	saveErr error
}

func newMemStore() *memStore { return &memStore{records: map[string]engine.Record{}} }

func (s *memStore) Save(ctx context.Context, rec engine.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.records[rec.ID] = rec
	return nil
}

func (s *memStore) Load(ctx context.Context, roomID string) (engine.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[roomID]
	if !ok {
		return rec, fmt.Errorf("%w: %s", ErrRoomNotFound, roomID)
	}
	return rec, nil
}

func (s *memStore) Delete(ctx context.Context, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, roomID)
	return nil
}

func (s *memStore) List(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	return ids, nil
}

// memJournal records appended entries.
type memJournal struct {
	mu      sync.Mutex
	entries []JournalEntry
}

func (j *memJournal) Append(ctx context.Context, e JournalEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, e)
	return nil
}

func (j *memJournal) len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.entries)
}

func (j *memJournal) all() []JournalEntry {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]JournalEntry(nil), j.entries...)
}

var roster = []string{"ann", "bob", "cat"}

func newTestManager(t *testing.T, store Store, journal Journal, timeout time.Duration) *Manager {
	t.Helper()
	m := NewManager(Options{
		Store:       store,
		Journal:     journal,
		Logger:      zaptest.NewLogger(t),
		Rules:       engine.DefaultOptions(),
		TurnTimeout: timeout,
	})
	t.Cleanup(m.Shutdown)
	return m
}

func seed(v uint64) *uint64 { return &v }

// forfeitRound lets the player to act forfeit until the round number changes.
func forfeitRound(t *testing.T, m *Manager, roomID string) {
	t.Helper()
	ctx := context.Background()
	start, err := m.State(roomID)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	for {
		snap, _ := m.State(roomID)
		if snap.Round != start.Round || snap.Phase == engine.PhaseFinished {
			return
		}
		if _, err := m.ForfeitTurn(ctx, roomID, snap.CurrentPlayer); err != nil {
			t.Fatalf("forfeit: %v", err)
		}
	}
}

func TestManagerPersistsEveryMove(t *testing.T) {
	store, journal := newMemStore(), &memJournal{}
	m := newTestManager(t, store, journal, 0)
	ctx := context.Background()

	roomID, err := m.CreateRoom(ctx, roster, seed(17))
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	var notified []string
	m.OnChange(func(id string) { notified = append(notified, id) })

	forfeitRound(t, m, roomID)

	snap, _ := m.State(roomID)
	if snap.Round != 2 {
		t.Fatalf("round = %d", snap.Round)
	}
	rec, err := store.Load(ctx, roomID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(rec.Actions) != snap.Version || journal.len() != snap.Version {
		t.Fatalf("record %d, journal %d, version %d", len(rec.Actions), journal.len(), snap.Version)
	}
	if len(notified) != snap.Version {
		t.Fatalf("notified %d times for %d moves", len(notified), snap.Version)
	}
	for i, e := range journal.all() {
		if e.Seq != i+1 || e.RoomID != roomID || !e.Forfeit {
			t.Fatalf("journal entry %d = %+v", i, e)
		}
	}
}

func TestManagerRejectsWithTypedErrors(t *testing.T) {
	m := newTestManager(t, nil, nil, 0)
	ctx := context.Background()
	roomID, err := m.CreateRoom(ctx, roster, seed(3))
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	snap, _ := m.State(roomID)
	other := "bob"
	if snap.CurrentPlayer == other {
		other = "cat"
	}
	if err := m.SubmitBid(ctx, roomID, other, 0); !errors.Is(err, engine.ErrNotPlayersTurn) && !errors.Is(err, engine.ErrWrongPhase) {
		t.Fatalf("out of turn: err = %v", err)
	}
	if err := m.PlayCard(ctx, roomID, snap.CurrentPlayer, entities.NewWizard()); !errors.Is(err, engine.ErrWrongPhase) {
		t.Fatalf("play while bidding: err = %v", err)
	}
	if err := m.SubmitBid(ctx, "nope", "ann", 0); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("unknown room: err = %v", err)
	}
	if _, err := m.CreateRoom(ctx, []string{"solo", "duo"}, nil); !errors.Is(err, engine.ErrInvalidRoster) {
		t.Fatalf("short roster: err = %v", err)
	}
	if after, _ := m.State(roomID); after.Version != 0 {
		t.Fatalf("rejected moves changed the table")
	}
}

func TestManagerRecover(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()
	first := newTestManager(t, store, nil, 0)
	roomID, err := first.CreateRoom(ctx, roster, seed(99))
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	forfeitRound(t, first, roomID)
	forfeitRound(t, first, roomID)
	want, _ := first.State(roomID)
	wantHand, _ := first.Hand(roomID, "ann")

	gone, err := first.CreateRoom(ctx, roster, seed(1))
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if err := first.DeleteRoom(ctx, gone); err != nil {
		t.Fatalf("DeleteRoom: %v", err)
	}

	second := newTestManager(t, store, nil, 0)
	n, err := second.Recover(ctx)
	if err != nil || n != 1 {
		t.Fatalf("Recover = %d, %v", n, err)
	}
	got, err := second.State(roomID)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if got.Version != want.Version || got.Round != want.Round || got.CurrentPlayer != want.CurrentPlayer {
		t.Fatalf("recovered %+v, want %+v", got, want)
	}
	gotHand, _ := second.Hand(roomID, "ann")
	if fmt.Sprint(gotHand) != fmt.Sprint(wantHand) {
		t.Fatalf("hand %v, want %v", gotHand, wantHand)
	}
	if _, err := second.State(gone); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("deleted room came back: %v", err)
	}
}

func TestManagerSaveFailureKeepsMove(t *testing.T) {
	store := newMemStore()
	m := newTestManager(t, store, nil, 0)
	ctx := context.Background()
	roomID, err := m.CreateRoom(ctx, roster, seed(5))
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	store.saveErr = errors.New("disk full")
	snap, _ := m.State(roomID)
	if _, err := m.ForfeitTurn(ctx, roomID, snap.CurrentPlayer); err != nil {
		t.Fatalf("forfeit: %v", err)
	}
	if after, _ := m.State(roomID); after.Version != 1 {
		t.Fatalf("version = %d", after.Version)
	}
}

func TestManagerDeleteRoom(t *testing.T) {
	m := newTestManager(t, newMemStore(), nil, 0)
	ctx := context.Background()
	roomID, err := m.CreateRoom(ctx, roster, nil)
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if len(m.ListRooms()) != 1 {
		t.Fatalf("ListRooms = %v", m.ListRooms())
	}
	if err := m.DeleteRoom(ctx, roomID); err != nil {
		t.Fatalf("DeleteRoom: %v", err)
	}
	if err := m.DeleteRoom(ctx, roomID); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("second delete: err = %v", err)
	}
	if len(m.ListRooms()) != 0 {
		t.Fatalf("room still listed")
	}
}

func TestManagerTablesRunInParallel(t *testing.T) {
	m := newTestManager(t, newMemStore(), &memJournal{}, 0)
	ctx := context.Background()
	var ids []string
	for i := 0; i < 4; i++ {
		id, err := m.CreateRoom(ctx, roster, seed(uint64(i)))
		if err != nil {
			t.Fatalf("CreateRoom: %v", err)
		}
		ids = append(ids, id)
	}
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for r := 0; r < 3; r++ {
				for {
					snap, _ := m.State(id)
					if snap.Round > r+1 {
						break
					}
					if _, err := m.ForfeitTurn(ctx, id, snap.CurrentPlayer); err != nil {
						t.Errorf("room %s forfeit: %v", id, err)
						return
					}
				}
			}
		}(id)
	}
	wg.Wait()
	for _, id := range ids {
		if snap, _ := m.State(id); snap.Round != 4 {
			t.Fatalf("room %s at round %d", id, snap.Round)
		}
	}
}
