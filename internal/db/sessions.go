package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrActiveSessionExists is returned when creating a session that would
// duplicate an active session for the same actor+project combination.
var ErrActiveSessionExists = errors.New("active session already exists for this actor and project")

// ErrSessionNotFound is returned when a session is not found.
var ErrSessionNotFound = errors.New("session not found")

// Session is one terminal session being driven by termpilot. The
// assistant-mode flag is the caller-level routing override: while set,
// every instruction in this session routes to the assistant.
type Session struct {
	ID            string     `json:"id"`
	Actor         string     `json:"actor"`
	Program       string     `json:"program"`
	ProjectPath   string     `json:"project_path"`
	AssistantMode bool       `json:"assistant_mode"`
	StartedAt     time.Time  `json:"started_at"`
	LastActiveAt  time.Time  `json:"last_active_at"`
	EndedAt       *time.Time `json:"ended_at,omitempty"`
}

// CreateSession creates a new session. Generates a UUID if unset.
// Returns ErrActiveSessionExists if an active session already exists for
// the actor+project.
func (db *DB) CreateSession(s *Session) error {
	if s.Actor == "" {
		return fmt.Errorf("actor is required")
	}
	if s.ProjectPath == "" {
		return fmt.Errorf("project_path is required")
	}

	if s.ID == "" {
		s.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	s.StartedAt = now
	s.LastActiveAt = now
	s.EndedAt = nil

	_, err := db.Exec(`
		INSERT INTO sessions (id, actor, program, project_path, assistant_mode, started_at, last_active_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, NULL)
	`, s.ID, s.Actor, s.Program, s.ProjectPath, boolToInt(s.AssistantMode), s.StartedAt.Format(time.RFC3339), s.LastActiveAt.Format(time.RFC3339))
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrActiveSessionExists
		}
		return fmt.Errorf("creating session: %w", err)
	}

	return nil
}

// GetSession retrieves a session by ID.
func (db *DB) GetSession(id string) (*Session, error) {
	row := db.QueryRow(`
		SELECT id, actor, program, project_path, assistant_mode, started_at, last_active_at, ended_at
		FROM sessions WHERE id = ?
	`, id)

	return scanSession(row)
}

// GetActiveSession retrieves the active session for an actor and project.
func (db *DB) GetActiveSession(actor, projectPath string) (*Session, error) {
	row := db.QueryRow(`
		SELECT id, actor, program, project_path, assistant_mode, started_at, last_active_at, ended_at
		FROM sessions
		WHERE actor = ? AND project_path = ? AND ended_at IS NULL
	`, actor, projectPath)

	return scanSession(row)
}

// ListActiveSessions returns all active sessions, most recently active first.
func (db *DB) ListActiveSessions() ([]*Session, error) {
	rows, err := db.Query(`
		SELECT id, actor, program, project_path, assistant_mode, started_at, last_active_at, ended_at
		FROM sessions
		WHERE ended_at IS NULL
		ORDER BY last_active_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying active sessions: %w", err)
	}
	defer rows.Close()

	return scanSessions(rows)
}

// SetSessionAssistantMode flips the routing override for an active session.
func (db *DB) SetSessionAssistantMode(id string, on bool) error {
	result, err := db.Exec(`
		UPDATE sessions SET assistant_mode = ? WHERE id = ? AND ended_at IS NULL
	`, boolToInt(on), id)
	if err != nil {
		return fmt.Errorf("updating session assistant mode: %w", err)
	}
	return requireRowAffected(result)
}

// TouchSession updates last_active_at for an active session.
func (db *DB) TouchSession(id string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	result, err := db.Exec(`
		UPDATE sessions SET last_active_at = ? WHERE id = ? AND ended_at IS NULL
	`, now, id)
	if err != nil {
		return fmt.Errorf("touching session: %w", err)
	}
	return requireRowAffected(result)
}

// EndSession marks a session as ended.
func (db *DB) EndSession(id string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	result, err := db.Exec(`
		UPDATE sessions SET ended_at = ? WHERE id = ? AND ended_at IS NULL
	`, now, id)
	if err != nil {
		return fmt.Errorf("ending session: %w", err)
	}
	return requireRowAffected(result)
}

// FindStaleSessions returns active sessions idle longer than threshold.
func (db *DB) FindStaleSessions(threshold time.Duration) ([]*Session, error) {
	cutoff := time.Now().UTC().Add(-threshold).Format(time.RFC3339)
	rows, err := db.Query(`
		SELECT id, actor, program, project_path, assistant_mode, started_at, last_active_at, ended_at
		FROM sessions
		WHERE ended_at IS NULL AND last_active_at < ?
		ORDER BY last_active_at ASC
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("finding stale sessions: %w", err)
	}
	defer rows.Close()

	return scanSessions(rows)
}

func requireRowAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func scanSession(row *sql.Row) (*Session, error) {
	s := &Session{}
	var mode int
	var startedAt, lastActiveAt string
	var endedAt sql.NullString

	err := row.Scan(&s.ID, &s.Actor, &s.Program, &s.ProjectPath, &mode, &startedAt, &lastActiveAt, &endedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("scanning session: %w", err)
	}

	return fillSession(s, mode, startedAt, lastActiveAt, endedAt)
}

func scanSessions(rows *sql.Rows) ([]*Session, error) {
	var sessions []*Session
	for rows.Next() {
		s := &Session{}
		var mode int
		var startedAt, lastActiveAt string
		var endedAt sql.NullString

		if err := rows.Scan(&s.ID, &s.Actor, &s.Program, &s.ProjectPath, &mode, &startedAt, &lastActiveAt, &endedAt); err != nil {
			return nil, fmt.Errorf("scanning session row: %w", err)
		}

		filled, err := fillSession(s, mode, startedAt, lastActiveAt, endedAt)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, filled)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}

	return sessions, nil
}

func fillSession(s *Session, mode int, startedAt, lastActiveAt string, endedAt sql.NullString) (*Session, error) {
	s.AssistantMode = mode != 0

	var err error
	s.StartedAt, err = time.Parse(time.RFC3339, startedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing started_at: %w", err)
	}

	s.LastActiveAt, err = time.Parse(time.RFC3339, lastActiveAt)
	if err != nil {
		return nil, fmt.Errorf("parsing last_active_at: %w", err)
	}

	if endedAt.Valid {
		t, err := time.Parse(time.RFC3339, endedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parsing ended_at: %w", err)
		}
		s.EndedAt = &t
	}

	return s, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isUniqueConstraintError checks if the error is a unique constraint
// violation. FOREIGN KEY errors also contain "constraint failed" and are
// explicitly excluded.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "foreign key") {
		return false
	}
	return strings.Contains(msg, "unique constraint failed") ||
		strings.Contains(msg, "constraint failed")
}
