package stats

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	session_id      TEXT PRIMARY KEY,
	start_time      TEXT,
	end_time        TEXT NOT NULL,
	duration_secs   INTEGER NOT NULL,
	bash_commands   INTEGER NOT NULL,
	destructive     INTEGER NOT NULL,
	system_level    INTEGER NOT NULL,
	file_operations INTEGER NOT NULL,
	formatted       INTEGER NOT NULL,
	linted          INTEGER NOT NULL,
	info_sessions   INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS mcp_usage (
	session_id TEXT NOT NULL,
	server     TEXT NOT NULL,
	calls      INTEGER NOT NULL,
	PRIMARY KEY (session_id, server),
	FOREIGN KEY (session_id) REFERENCES sessions(session_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_sessions_end ON sessions(end_time);
`

// Archive stores finished session summaries in SQLite.
type Archive struct {
	db *sql.DB
}

// OpenArchive opens or creates the archive database at path.
func OpenArchive(path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Archive{db: db}, nil
}

// Close closes the underlying database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Record stores sum, replacing any earlier row for the same session.
func (a *Archive) Record(sum Summary, end time.Time) error {
	tx, err := a.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var start sql.NullString
	if !sum.StartTime.IsZero() {
		start = sql.NullString{String: sum.StartTime.UTC().Format(time.RFC3339), Valid: true}
	}
	if _, err := tx.Exec(`DELETE FROM mcp_usage WHERE session_id = ?`, sum.SessionID); err != nil {
		return fmt.Errorf("clear mcp usage: %w", err)
	}
	_, err = tx.Exec(`INSERT OR REPLACE INTO sessions
		(session_id, start_time, end_time, duration_secs, bash_commands, destructive,
		 system_level, file_operations, formatted, linted, info_sessions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sum.SessionID, start, end.UTC().Format(time.RFC3339), int64(sum.Duration.Seconds()),
		sum.BashCommands, sum.Destructive, sum.SystemLevel,
		sum.FileOperations, sum.Formatted, sum.Linted, sum.InfoSessions)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	for _, u := range sum.MCPUsage {
		if _, err := tx.Exec(`INSERT INTO mcp_usage (session_id, server, calls) VALUES (?, ?, ?)`,
			sum.SessionID, u.Server, u.Count); err != nil {
			return fmt.Errorf("insert mcp usage: %w", err)
		}
	}
	return tx.Commit()
}

// Recent returns up to limit archived summaries, newest first.
func (a *Archive) Recent(limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := a.db.Query(`SELECT session_id, start_time, duration_secs, bash_commands,
		destructive, system_level, file_operations, formatted, linted, info_sessions
		FROM sessions ORDER BY end_time DESC, session_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum   Summary
			start sql.NullString
			secs  int64
		)
		if err := rows.Scan(&sum.SessionID, &start, &secs, &sum.BashCommands,
			&sum.Destructive, &sum.SystemLevel, &sum.FileOperations,
			&sum.Formatted, &sum.Linted, &sum.InfoSessions); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if start.Valid {
			if t, err := time.Parse(time.RFC3339, start.String); err == nil {
				sum.StartTime = t
			}
		}
		sum.Duration = time.Duration(secs) * time.Second
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	for i := range out {
		usage, err := a.mcpUsage(out[i].SessionID)
		if err != nil {
			return nil, err
		}
		out[i].MCPUsage = usage
	}
	return out, nil
}

func (a *Archive) mcpUsage(sessionID string) ([]ServerUsage, error) {
	rows, err := a.db.Query(`SELECT server, calls FROM mcp_usage
		WHERE session_id = ? ORDER BY calls DESC, server`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query mcp usage: %w", err)
	}
	defer rows.Close()

	var usage []ServerUsage
	for rows.Next() {
		var u ServerUsage
		if err := rows.Scan(&u.Server, &u.Count); err != nil {
			return nil, fmt.Errorf("scan mcp usage: %w", err)
		}
		usage = append(usage, u)
	}
	return usage, rows.Err()
}
