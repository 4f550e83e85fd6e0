// Package eventlog appends hook events to a rotating log file.
package eventlog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauern/hookguard/internal/config"
	"github.com/klauern/hookguard/internal/constants"
)

// Event type names written by the built-in hooks.
const (
	EventPromptSubmit   = "PROMPT_SUBMIT"
	EventBashCommand    = "BASH_COMMAND"
	EventFileAutomation = "FILE_AUTOMATION"
	EventMCPTool        = "MCP_TOOL"
	EventSecurityBlock  = "SECURITY_BLOCK"
	EventSessionEnd     = "SESSION_END"
	EventAudit          = "AUDIT"
)

// TimestampLayout is the text-format timestamp, always in UTC.
const TimestampLayout = "2006-01-02 15:04:05 UTC"

// Entry is one structured log record.
type Entry struct {
	Timestamp string                 `json:"timestamp"`
	Event     string                 `json:"event"`
	Details   string                 `json:"details,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Logger writes entries to w in one of the config logging formats.
// It is safe for concurrent use.
type Logger struct {
	mu     sync.Mutex
	w      io.Writer
	format string
	now    func() time.Time
}

// New returns a Logger writing to w. An unknown format falls back to text.
func New(w io.Writer, format string) *Logger {
	if !config.IsValidLoggingFormat(format) {
		format = config.LoggingFormatText
	}
	return &Logger{w: w, format: format, now: time.Now}
}

// Open returns a Logger backed by a rotating hook.log in cfg's log
// directory. The returned closer releases the file.
func Open(cfg *config.Config) (*Logger, io.Closer, error) {
	path := filepath.Join(cfg.LogDir(), constants.DefaultLogFile)
	lj := config.SetupLogRotation(path, cfg.Logging.Rotation)
	if lj == nil {
		return nil, nil, fmt.Errorf("cannot create log directory for %s", path)
	}
	return New(lj, cfg.Logging.Format), lj, nil
}

// SetClock replaces the time source.
func (l *Logger) SetClock(now func() time.Time) {
	l.now = now
}

// Log appends an event with a free-form detail string.
func (l *Logger) Log(eventType, details string) error {
	return l.write(Entry{Event: eventType, Details: details})
}

// LogFields appends an event with structured fields. In text format the
// fields are rendered as compact JSON after the details.
func (l *Logger) LogFields(eventType, details string, fields map[string]interface{}) error {
	return l.write(Entry{Event: eventType, Details: details, Fields: fields})
}

func (l *Logger) write(e Entry) error {
	ts := l.now().UTC()

	var line []byte
	switch l.format {
	case config.LoggingFormatJSONL, config.LoggingFormatPretty:
		e.Timestamp = ts.Format(time.RFC3339)
		var err error
		if l.format == config.LoggingFormatPretty {
			line, err = json.MarshalIndent(e, "", "  ")
		} else {
			line, err = json.Marshal(e)
		}
		if err != nil {
			return fmt.Errorf("failed to marshal log entry: %w", err)
		}
	default:
		text := fmt.Sprintf("[%s] %s: %s", ts.Format(TimestampLayout), e.Event, e.Details)
		if len(e.Fields) > 0 {
			extra, err := json.Marshal(e.Fields)
			if err != nil {
				return fmt.Errorf("failed to marshal log fields: %w", err)
			}
			text += " " + string(extra)
		}
		line = []byte(text)
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.w.Write(line); err != nil {
		return fmt.Errorf("failed to write log entry: %w", err)
	}
	return nil
}

// EventLogger is what hooks need from an event log.
type EventLogger interface {
	Log(eventType, details string) error
	LogFields(eventType, details string, fields map[string]interface{}) error
}

// Safe logs and reports failures on stderr instead of returning them.
func Safe(l EventLogger, eventType, details string) {
	if l == nil {
		return
	}
	if err := l.Log(eventType, details); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to log: %v\n", err)
	}
}

// Discard is an EventLogger that drops everything.
type Discard struct{}

func (Discard) Log(string, string) error { return nil }
func (Discard) LogFields(string, string, map[string]interface{}) error { return nil }
