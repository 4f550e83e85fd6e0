package stats

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/klauern/hookguard/internal/constants"
)

// Store keeps one session-<id>.json per session in a directory.
type Store struct {
	dir string
	now func() time.Time
}

// NewStore returns a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// SetClock sets the time source given to sessions the store loads or creates.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// Dir returns the store directory.
func (s *Store) Dir() string {
	return s.dir
}

var unsafeIDChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// SessionID returns id made safe for a file name, or a fresh UUID when id
// is empty.
func SessionID(id string) string {
	if id == "" {
		return uuid.New().String()
	}
	return unsafeIDChars.ReplaceAllString(id, "_")
}

// Path returns the file backing session id.
func (s *Store) Path(id string) string {
	return filepath.Join(s.dir, constants.SessionFileStem+SessionID(id)+".json")
}

// Load reads session id. A missing file yields a new empty session.
func (s *Store) Load(id string) (*Session, error) {
	id = SessionID(id)
	data, err := os.ReadFile(s.Path(id))
	if errors.Is(err, fs.ErrNotExist) {
		sess := NewSession(id)
		if s.now != nil {
			sess.SetClock(s.now)
			sess.StartTime = sess.clock()
		}
		return sess, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session %s: %w", id, err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to parse session %s: %w", id, err)
	}
	if sess.SessionID == "" {
		sess.SessionID = id
	}
	if sess.MCPUsage == nil {
		sess.MCPUsage = map[string]int{}
	}
	sess.SetClock(s.now)
	return &sess, nil
}

// Save writes sess as indented JSON through a temp file and rename, so a
// concurrent reader never sees a partial file.
func (s *Store) Save(sess *Session) error {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("failed to create stats directory: %w", err)
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".session-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := os.Rename(tmpName, s.Path(sess.SessionID)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Update loads session id, applies fn and saves the result.
func (s *Store) Update(id string, fn func(*Session) error) (*Session, error) {
	sess, err := s.Load(id)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return sess, err
	}
	if err := s.Save(sess); err != nil {
		return sess, err
	}
	return sess, nil
}

// Remove deletes the file for session id. Missing files are not an error.
func (s *Store) Remove(id string) error {
	err := os.Remove(s.Path(id))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}
