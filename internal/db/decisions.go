package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Decision kinds. Prompt decisions come from the classifier, route
// decisions from the router.
const (
	KindPrompt = "prompt"
	KindRoute  = "route"
)

// Decision is one append-only audit record. Entries are never updated or
// deleted, and they are never read back into decision logic.
type Decision struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id,omitempty"`
	Kind      string    `json:"kind"`
	Input     string    `json:"input"`
	Outcome   string    `json:"outcome"`
	Rule      string    `json:"rule,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Context   string    `json:"context,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Recorder is the append-only decision log contract. Satisfied by *DB
// (persisted) and *MemLog (in-memory).
type Recorder interface {
	Append(d *Decision) error
}

// AppendDecision records one decision. ID and CreatedAt are filled in if
// unset. sqlite serializes writers, so concurrent appends never interleave
// and insertion order matches completion order.
func (db *DB) AppendDecision(d *Decision) error {
	if d.Kind != KindPrompt && d.Kind != KindRoute {
		return fmt.Errorf("unknown decision kind %q", d.Kind)
	}
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}

	var sessionID any
	if d.SessionID != "" {
		sessionID = d.SessionID
	}

	_, err := db.Exec(`
		INSERT INTO decisions (id, session_id, kind, input, decision, rule, reason, context, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, d.ID, sessionID, d.Kind, d.Input, d.Outcome, d.Rule, d.Reason, d.Context, d.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("appending decision: %w", err)
	}
	return nil
}

// Append implements Recorder.
func (db *DB) Append(d *Decision) error {
	return db.AppendDecision(d)
}

// DecisionFilter narrows ListDecisions. Zero values mean no filter.
type DecisionFilter struct {
	Kind      string
	Outcome   string
	SessionID string
	Since     time.Time
	Limit     int
}

// ListDecisions returns decisions in insertion order, oldest first.
func (db *DB) ListDecisions(f DecisionFilter) ([]*Decision, error) {
	query := `
		SELECT id, session_id, kind, input, decision, rule, reason, context, created_at
		FROM decisions WHERE 1=1`
	var args []any

	if f.Kind != "" {
		query += " AND kind = ?"
		args = append(args, f.Kind)
	}
	if f.Outcome != "" {
		query += " AND decision = ?"
		args = append(args, f.Outcome)
	}
	if f.SessionID != "" {
		query += " AND session_id = ?"
		args = append(args, f.SessionID)
	}
	if !f.Since.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, f.Since.UTC().Format(time.RFC3339Nano))
	}

	query += " ORDER BY created_at ASC, id ASC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying decisions: %w", err)
	}
	defer rows.Close()

	var decisions []*Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		decisions = append(decisions, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating decisions: %w", err)
	}

	return decisions, nil
}

// CountDecisions returns per-outcome counts for the audit summary.
func (db *DB) CountDecisions() (map[string]int, error) {
	rows, err := db.Query(`SELECT decision, COUNT(*) FROM decisions GROUP BY decision`)
	if err != nil {
		return nil, fmt.Errorf("counting decisions: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("scanning decision count: %w", err)
		}
		counts[outcome] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating decision counts: %w", err)
	}

	return counts, nil
}

func scanDecision(rows *sql.Rows) (*Decision, error) {
	d := &Decision{}
	var sessionID sql.NullString
	var createdAt string

	err := rows.Scan(&d.ID, &sessionID, &d.Kind, &d.Input, &d.Outcome, &d.Rule, &d.Reason, &d.Context, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("scanning decision row: %w", err)
	}

	if sessionID.Valid {
		d.SessionID = sessionID.String
	}

	d.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	return d, nil
}

// ErrDecisionNotFound is returned when a decision lookup finds nothing.
var ErrDecisionNotFound = errors.New("decision not found")

// GetDecision retrieves one decision by ID.
func (db *DB) GetDecision(id string) (*Decision, error) {
	rows, err := db.Query(`
		SELECT id, session_id, kind, input, decision, rule, reason, context, created_at
		FROM decisions WHERE id = ?
	`, id)
	if err != nil {
		return nil, fmt.Errorf("querying decision: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("querying decision: %w", err)
		}
		return nil, ErrDecisionNotFound
	}
	return scanDecision(rows)
}
