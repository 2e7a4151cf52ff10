package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"wizard-game/engine"
)

// JournalEntry is one accepted move as it is audited.
type JournalEntry struct {
	RoomID  string
	Seq     int
	Round   int
	Player  string
	Kind    engine.ActionKind
	Payload []byte
	Forfeit bool
	At      time.Time
}

// Journal is an append-only log of accepted moves.
type Journal interface {
	Append(ctx context.Context, e JournalEntry) error
}

func newJournalEntry(roomID string, seq int, a engine.Action, at time.Time) (JournalEntry, error) {
	payload, err := json.Marshal(a)
	if err != nil {
		return JournalEntry{}, err
	}
	return JournalEntry{
		RoomID:  roomID,
		Seq:     seq,
		Round:   a.Round,
		Player:  a.Player,
		Kind:    a.Kind,
		Payload: payload,
		Forfeit: a.Forfeit,
		At:      at,
	}, nil
}

const journalSchema = `CREATE TABLE IF NOT EXISTS wizard_actions (
	room_id    VARCHAR(64)  NOT NULL,
	seq        INT          NOT NULL,
	round_no   INT          NOT NULL,
	player_id  VARCHAR(128) NOT NULL,
	kind       VARCHAR(32)  NOT NULL,
	payload    JSON         NOT NULL,
	forfeit    BOOLEAN      NOT NULL DEFAULT FALSE,
	created_at DATETIME(3)  NOT NULL,
	PRIMARY KEY (room_id, seq)
)`

// MySQLJournal stores the journal in the wizard_actions table.
type MySQLJournal struct {
	db *sql.DB
}

func NewMySQLJournal(db *sql.DB) *MySQLJournal {
	return &MySQLJournal{db: db}
}

func (j *MySQLJournal) EnsureSchema(ctx context.Context) error {
	if _, err := j.db.ExecContext(ctx, journalSchema); err != nil {
		return fmt.Errorf("create wizard_actions: %w", err)
	}
	return nil
}

func (j *MySQLJournal) Append(ctx context.Context, e JournalEntry) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO wizard_actions (room_id, seq, round_no, player_id, kind, payload, forfeit, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RoomID, e.Seq, e.Round, e.Player, string(e.Kind), e.Payload, e.Forfeit, e.At)
	if err != nil {
		return fmt.Errorf("journal %s #%d: %w", e.RoomID, e.Seq, err)
	}
	return nil
}

// Actions reads back a room's moves in order, ready for engine.Restore.
func (j *MySQLJournal) Actions(ctx context.Context, roomID string) ([]engine.Action, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT payload FROM wizard_actions WHERE room_id = ? ORDER BY seq`, roomID)
	if err != nil {
		return nil, fmt.Errorf("journal %s: %w", roomID, err)
	}
	defer rows.Close()

	var actions []engine.Action
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("journal %s scan: %w", roomID, err)
		}
		var a engine.Action
		if err := json.Unmarshal(payload, &a); err != nil {
			return nil, fmt.Errorf("journal %s decode: %w", roomID, err)
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}
