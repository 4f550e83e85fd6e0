package core

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/klauern/hookguard/internal/config"
)

// LogEntry is one line of the per-hook debug log written with --log.
type LogEntry struct {
	Timestamp string                 `json:"timestamp"`
	HookKey   string                 `json:"hook_key"`
	SessionID string                 `json:"session_id,omitempty"`
	Event     string                 `json:"event"`
	ToolName  string                 `json:"tool_name"`
	RawData   map[string]interface{} `json:"raw_data,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// encode renders the entry as a single jsonl line, or indented for pretty.
func (e LogEntry) encode(format string) ([]byte, error) {
	var (
		b   []byte
		err error
	)
	if format == config.LoggingFormatPretty {
		b, err = json.MarshalIndent(e, "", "  ")
	} else {
		b, err = json.Marshal(e)
	}
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// logHookEvent appends an entry to the hook's debug log under LoggingDir.
// It is a no-op if LoggingEnabled is false. Failures are reported on the
// context's Stderr and never interrupt the hook.
func logHookEvent(ctx *HookContext, hookKey, sessionID, event, toolName string,
	rawData map[string]interface{}, details map[string]interface{},
) {
	if ctx == nil || !ctx.LoggingEnabled {
		return
	}
	errw := ctx.Stderr
	if errw == nil {
		errw = os.Stderr
	}
	now := ctx.Now
	if now == nil {
		now = time.Now
	}

	line, err := LogEntry{
		Timestamp: now().Format(time.RFC3339),
		HookKey:   hookKey,
		SessionID: sessionID,
		Event:     event,
		ToolName:  toolName,
		RawData:   rawData,
		Details:   details,
	}.encode(ctx.LoggingFormat)
	if err != nil {
		fmt.Fprintf(errw, "hook log: encode %s entry: %v\n", hookKey, err)
		return
	}
	if err := appendLogLine(ctx.FileSystem, ctx.LoggingDir, hookKey, line); err != nil {
		fmt.Fprintf(errw, "hook log: %v\n", err)
	}
}

func appendLogLine(fsys FileSystem, dir, hookKey string, line []byte) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	if fsys == nil {
		fsys = &RealFileSystem{}
	}
	path := config.GetHookLogPath(dir, hookKey)
	f, err := fsys.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	_, werr := f.Write(line)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return fmt.Errorf("write %s: %w", path, werr)
	}
	return nil
}
