package service

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/rand"
)

var (
	seedMu  sync.Mutex
	seedRng = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
)

// newSeed picks a shuffle seed for a table that was not given one.
func newSeed() uint64 {
	seedMu.Lock()
	defer seedMu.Unlock()
	return seedRng.Uint64()
}

// newRoomID is the first eight hex digits of a fresh UUID.
func newRoomID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}
