package preset

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
	"pkt.systems/pslog"

	"rhythm/internal/logx"
	"rhythm/internal/timer"
)

// DefaultUserID scopes presets when no user is configured.
const DefaultUserID = "local"

// timeLayout is fixed width so text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLRepository keeps presets in an SQLite database, scoped to one user.
type SQLRepository struct {
	conn   *sql.DB
	path   string
	userID string
	base   pslog.Logger
	log    pslog.Logger
	now    func() time.Time
	mu     sync.Mutex
}

// OpenSQLite opens (creating if needed) the database at path and applies
// pending migrations. Presets are read and written for userID.
func OpenSQLite(path string, userID string, logger pslog.Logger) (*SQLRepository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("preset database path is required")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		userID = DefaultUserID
	}
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	base := logger.With("preset_db", path)
	repo := &SQLRepository{
		conn:   conn,
		path:   path,
		userID: userID,
		base:   base,
		log:    logx.WithUser(base, userID),
		now:    time.Now,
	}
	if err := repo.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the database.
func (r *SQLRepository) Close() error {
	return r.conn.Close()
}

// UserID returns the scope presets are stored under.
func (r *SQLRepository) UserID() string {
	return r.userID
}

// ForUser returns a repository sharing the connection but scoped to userID.
func (r *SQLRepository) ForUser(userID string) *SQLRepository {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		userID = DefaultUserID
	}
	return &SQLRepository{
		conn:   r.conn,
		path:   r.path,
		userID: userID,
		base:   r.base,
		log:    logx.WithUser(r.base, userID),
		now:    r.now,
	}
}

func (r *SQLRepository) migrate() error {
	if _, err := r.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}
	var current int
	if err := r.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&current); err != nil {
		return fmt.Errorf("get schema version: %w", err)
	}
	migrations := []struct {
		version int
		sql     string
	}{
		{1, migrationV1Presets},
		{2, migrationV2UpdatedAt},
	}
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := r.conn.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration v%d: %w", m.version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration v%d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration v%d: %w", m.version, err)
		}
		r.log.Debug("preset migration applied", "version", m.version)
	}
	return nil
}

const migrationV1Presets = `
CREATE TABLE IF NOT EXISTS user_presets (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	name TEXT NOT NULL,
	work_duration INTEGER NOT NULL,
	rest_duration INTEGER NOT NULL,
	rounds INTEGER NOT NULL,
	exercises TEXT NOT NULL DEFAULT '[]',
	created_at TEXT NOT NULL,
	UNIQUE(user_id, name)
);

CREATE INDEX IF NOT EXISTS idx_user_presets_user ON user_presets(user_id, created_at);
`

const migrationV2UpdatedAt = `
ALTER TABLE user_presets ADD COLUMN updated_at TEXT;
`

// List returns the user's presets, newest first.
func (r *SQLRepository) List(ctx context.Context) ([]Preset, error) {
	rows, err := r.conn.QueryContext(ctx, `
		SELECT name, work_duration, rest_duration, rounds, exercises, created_at
		FROM user_presets
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
	`, r.userID)
	if err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}
	defer rows.Close()

	var out []Preset
	for rows.Next() {
		p, err := scanPreset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}
	return out, nil
}

// Get returns the user's preset called name.
func (r *SQLRepository) Get(ctx context.Context, name string) (Preset, error) {
	row := r.conn.QueryRowContext(ctx, `
		SELECT name, work_duration, rest_duration, rounds, exercises, created_at
		FROM user_presets
		WHERE user_id = ? AND name = ?
	`, r.userID, strings.TrimSpace(name))
	p, err := scanPreset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Preset{}, fmt.Errorf("preset %q: %w", name, ErrNotFound)
	}
	return p, err
}

// Save inserts or, with overwrite, updates the user's preset.
func (r *SQLRepository) Save(ctx context.Context, p Preset, overwrite bool) (SaveResult, error) {
	p, err := p.Normalize()
	if err != nil {
		return 0, err
	}
	exercises, err := encodeExercises(p.Exercises)
	if err != nil {
		return 0, err
	}

	// Serialise read-compare-write within this process.
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	existing, err := scanPreset(tx.QueryRowContext(ctx, `
		SELECT name, work_duration, rest_duration, rounds, exercises, created_at
		FROM user_presets
		WHERE user_id = ? AND name = ?
	`, r.userID, p.Name))
	now := r.now().UTC().Format(timeLayout)
	var result SaveResult
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO user_presets (id, user_id, name, work_duration, rest_duration, rounds, exercises, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, uuid.NewString(), r.userID, p.Name, p.WorkDuration, p.RestDuration, p.Rounds, exercises, now, now); err != nil {
			return 0, fmt.Errorf("insert preset %q: %w", p.Name, err)
		}
		result = Created
	case err != nil:
		return 0, err
	case SameSetup(existing, p):
		return Unchanged, nil
	case !overwrite:
		return 0, fmt.Errorf("save %q: %w", p.Name, ErrConflict)
	default:
		if _, err := tx.ExecContext(ctx, `
			UPDATE user_presets
			SET work_duration = ?, rest_duration = ?, rounds = ?, exercises = ?, updated_at = ?
			WHERE user_id = ? AND name = ?
		`, p.WorkDuration, p.RestDuration, p.Rounds, exercises, now, r.userID, p.Name); err != nil {
			return 0, fmt.Errorf("update preset %q: %w", p.Name, err)
		}
		result = Updated
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit preset %q: %w", p.Name, err)
	}
	r.log.Debug("preset saved", "preset", p.Name, "result", result.String())
	return result, nil
}

// Delete removes the user's preset called name.
func (r *SQLRepository) Delete(ctx context.Context, name string) error {
	res, err := r.conn.ExecContext(ctx, `
		DELETE FROM user_presets WHERE user_id = ? AND name = ?
	`, r.userID, strings.TrimSpace(name))
	if err != nil {
		return fmt.Errorf("delete preset %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete preset %q: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("preset %q: %w", name, ErrNotFound)
	}
	r.log.Debug("preset deleted", "preset", name)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPreset(row rowScanner) (Preset, error) {
	var (
		p         Preset
		exercises string
		created   string
	)
	if err := row.Scan(&p.Name, &p.WorkDuration, &p.RestDuration, &p.Rounds, &exercises, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Preset{}, err
		}
		return Preset{}, fmt.Errorf("scan preset: %w", err)
	}
	if err := json.Unmarshal([]byte(exercises), &p.Exercises); err != nil {
		return Preset{}, fmt.Errorf("decode exercises for %q: %w", p.Name, err)
	}
	if len(p.Exercises) == 0 {
		p.Exercises = nil
	}
	if t, err := time.Parse(timeLayout, created); err == nil {
		p.CreatedAt = t
	}
	p.Configuration = timer.Configuration{
		WorkDuration: p.WorkDuration,
		RestDuration: p.RestDuration,
		Rounds:       p.Rounds,
	}.Normalize()
	return p, nil
}

func encodeExercises(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("encode exercises: %w", err)
	}
	return string(data), nil
}
