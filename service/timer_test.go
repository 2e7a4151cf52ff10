package service

import (
	"context"
	"testing"
	"time"
)

func TestTurnTimeoutForfeits(t *testing.T) {
	journal := &memJournal{}
	m := newTestManager(t, nil, journal, 20*time.Millisecond)
	roomID, err := m.CreateRoom(context.Background(), roster, seed(8))
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if snap, _ := m.State(roomID); snap.Round >= 2 {
			entries := journal.all()
			if len(entries) < snap.Version {
				t.Fatalf("journal has %d of %d moves", len(entries), snap.Version)
			}
			for _, e := range entries[:snap.Version] {
				if !e.Forfeit {
					t.Fatalf("timed out move not marked as forfeit: %+v", e)
				}
			}
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("turn timer never advanced the table")
}

func TestNoTimerWithoutTimeout(t *testing.T) {
	m := newTestManager(t, nil, nil, 0)
	roomID, err := m.CreateRoom(context.Background(), roster, seed(8))
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if snap, _ := m.State(roomID); snap.Version != 0 {
		t.Fatalf("table moved on its own: version %d", snap.Version)
	}
}
