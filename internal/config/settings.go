package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/klauern/hookguard/internal/constants"
)

type HookCommand struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Timeout *int   `json:"timeout,omitempty"`
}

type HookMatcher struct {
	Matcher string        `json:"matcher,omitempty"`
	Hooks   []HookCommand `json:"hooks"`
}

type HooksConfig struct {
	PreToolUse       []HookMatcher `json:"PreToolUse,omitempty"`
	PostToolUse      []HookMatcher `json:"PostToolUse,omitempty"`
	UserPromptSubmit []HookMatcher `json:"UserPromptSubmit,omitempty"`
	Notification     []HookMatcher `json:"Notification,omitempty"`
	Stop             []HookMatcher `json:"Stop,omitempty"`
	SubagentStop     []HookMatcher `json:"SubagentStop,omitempty"`
	PreCompact       []HookMatcher `json:"PreCompact,omitempty"`
	SessionStart     []HookMatcher `json:"SessionStart,omitempty"`
	SessionEnd       []HookMatcher `json:"SessionEnd,omitempty"`
}

// eventSlots returns pointers to every event list keyed by event name.
func (h *HooksConfig) eventSlots() map[string]*[]HookMatcher {
	return map[string]*[]HookMatcher{
		"PreToolUse":       &h.PreToolUse,
		"PostToolUse":      &h.PostToolUse,
		"UserPromptSubmit": &h.UserPromptSubmit,
		"Notification":     &h.Notification,
		"Stop":             &h.Stop,
		"SubagentStop":     &h.SubagentStop,
		"PreCompact":       &h.PreCompact,
		"SessionStart":     &h.SessionStart,
		"SessionEnd":       &h.SessionEnd,
	}
}

// EventNames lists settings event keys in display order.
var EventNames = []string{
	"PreToolUse", "PostToolUse", "UserPromptSubmit", "Notification", "Stop",
	"SubagentStop", "PreCompact", "SessionStart", "SessionEnd",
}

// Matchers returns the matcher list for event, or nil for an unknown event.
func (h *HooksConfig) Matchers(event string) []HookMatcher {
	if slot, ok := h.eventSlots()[event]; ok {
		return *slot
	}
	return nil
}

// PluginConfig stores per-plugin settings.
// A nil Enabled means default (enabled). If Enabled=false, the plugin is disabled.
type PluginConfig struct {
	Enabled *bool `json:"enabled,omitempty"`
}

type Settings struct {
	Hooks   HooksConfig             `json:"hooks,omitempty"`
	Plugins map[string]PluginConfig `json:"plugins,omitempty"`
	Other   map[string]interface{}  `json:"-"`
}

// GetSettingsPath returns ~/.claude/settings.json when global, otherwise
// workDir/.claude/settings.json.
func GetSettingsPath(global bool, workDir string) (string, error) {
	if global {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(homeDir, constants.ClaudeDir, constants.SettingsFileName), nil
	}
	if workDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
		workDir = cwd
	}
	return filepath.Join(workDir, constants.ClaudeDir, constants.SettingsFileName), nil
}

// LoadSettings reads settingsPath, keeping unknown top-level keys in Other.
// A missing file yields empty settings.
func LoadSettings(settingsPath string) (*Settings, error) {
	settings := &Settings{
		Plugins: make(map[string]PluginConfig),
		Other:   make(map[string]interface{}),
	}

	data, err := os.ReadFile(settingsPath) // #nosec G304 - controlled settings paths
	if os.IsNotExist(err) {
		return settings, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse settings JSON: %w", err)
	}
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	delete(raw, "hooks")
	delete(raw, "plugins")
	settings.Other = raw

	if settings.Plugins == nil {
		settings.Plugins = make(map[string]PluginConfig)
	}
	return settings, nil
}

// SaveSettings writes settings, merging Other back in at the top level.
func SaveSettings(settingsPath string, settings *Settings) error {
	if err := os.MkdirAll(filepath.Dir(settingsPath), 0o750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	output := make(map[string]interface{}, len(settings.Other)+2)
	for k, v := range settings.Other {
		output[k] = v
	}
	if !IsHooksConfigEmpty(settings.Hooks) {
		output["hooks"] = settings.Hooks
	}
	if len(settings.Plugins) > 0 {
		output["plugins"] = settings.Plugins
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.WriteFile(settingsPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}

func IsHooksConfigEmpty(hooks HooksConfig) bool {
	for _, slot := range hooks.eventSlots() {
		if len(*slot) > 0 {
			return false
		}
	}
	return true
}

// IsPluginEnabled returns true if the plugin is enabled (default) or explicitly enabled.
// Returns false if explicitly disabled in settings.
func (s *Settings) IsPluginEnabled(key string) bool {
	if s == nil || s.Plugins == nil {
		return true
	}
	cfg, ok := s.Plugins[key]
	if !ok || cfg.Enabled == nil {
		return true
	}
	return *cfg.Enabled
}

// SetPluginEnabled records an explicit enabled flag for key.
func (s *Settings) SetPluginEnabled(key string, enabled bool) {
	if s.Plugins == nil {
		s.Plugins = make(map[string]PluginConfig)
	}
	s.Plugins[key] = PluginConfig{Enabled: &enabled}
}

// MergeResult represents the result of merging hook matchers
type MergeResult struct {
	Matchers      []HookMatcher
	WasDuplicate  bool
	DuplicateInfo string
}

// AddHookToSettings registers command for event under matcher. Unknown
// events are an error.
func AddHookToSettings(settings *Settings, event, matcher, command string, timeout *int) (MergeResult, error) {
	slot, ok := settings.Hooks.eventSlots()[event]
	if !ok {
		return MergeResult{}, fmt.Errorf("unknown hook event %q", event)
	}
	result := mergeHookMatcher(*slot, HookMatcher{
		Matcher: matcher,
		Hooks:   []HookCommand{{Type: "command", Command: command, Timeout: timeout}},
	})
	*slot = result.Matchers
	return result, nil
}

var hookKeyPattern = regexp.MustCompile(regexp.QuoteMeta(constants.BinaryName) + `\s+hooks\s+run\s+(\S+)`)

// ExtractHookKey returns the plugin key from a hookguard command, e.g.
// "/usr/local/bin/hookguard hooks run security --log" -> "security".
func ExtractHookKey(command string) string {
	m := hookKeyPattern.FindStringSubmatch(command)
	if len(m) > 1 {
		return m[1]
	}
	return ""
}

// IsHookguardCommand reports whether command invokes `hookguard hooks run`.
func IsHookguardCommand(command string) bool {
	return ExtractHookKey(command) != ""
}

// MatchesHookKey reports whether command runs exactly the plugin key.
func MatchesHookKey(command, key string) bool {
	return key != "" && ExtractHookKey(command) == key
}

func mergeHookMatcher(existing []HookMatcher, incoming HookMatcher) MergeResult {
	for i, matcher := range existing {
		if matcher.Matcher != incoming.Matcher {
			continue
		}
		for j, current := range existing[i].Hooks {
			for _, hook := range incoming.Hooks {
				if current.Command == hook.Command {
					return MergeResult{
						Matchers:      existing,
						WasDuplicate:  true,
						DuplicateInfo: fmt.Sprintf("Hook command '%s' already exists for matcher '%s'", hook.Command, matcher.Matcher),
					}
				}
				// Same plugin with different flags: replace in place.
				if key := ExtractHookKey(hook.Command); key != "" && key == ExtractHookKey(current.Command) {
					existing[i].Hooks[j] = hook
					return MergeResult{
						Matchers:      existing,
						WasDuplicate:  true,
						DuplicateInfo: fmt.Sprintf("Replaced existing %s hook with updated command for matcher '%s'", key, matcher.Matcher),
					}
				}
			}
		}
		existing[i].Hooks = append(existing[i].Hooks, incoming.Hooks...)
		return MergeResult{Matchers: existing}
	}
	return MergeResult{Matchers: append(existing, incoming)}
}

// RemoveHooksFromSettings removes every hook command for which match returns
// true, dropping matchers left empty. It returns the number removed.
func RemoveHooksFromSettings(settings *Settings, match func(command string) bool) int {
	removed := 0
	for _, slot := range settings.Hooks.eventSlots() {
		var kept []HookMatcher
		for _, matcher := range *slot {
			var hooks []HookCommand
			for _, hook := range matcher.Hooks {
				if match(hook.Command) {
					removed++
					continue
				}
				hooks = append(hooks, hook)
			}
			if len(hooks) > 0 {
				matcher.Hooks = hooks
				kept = append(kept, matcher)
			}
		}
		*slot = kept
	}
	return removed
}

// RemoveHookKeyFromSettings removes all commands running plugin key.
func RemoveHookKeyFromSettings(settings *Settings, key string) int {
	return RemoveHooksFromSettings(settings, func(command string) bool {
		return MatchesHookKey(command, key)
	})
}

// InstalledHook is one hookguard command found in settings.
type InstalledHook struct {
	Event   string
	Matcher string
	Key     string
	Command string
}

// ListHookguardHooks returns all hookguard commands in settings, ordered by
// event then position.
func ListHookguardHooks(settings *Settings) []InstalledHook {
	var out []InstalledHook
	for _, event := range EventNames {
		for _, matcher := range settings.Hooks.Matchers(event) {
			for _, hook := range matcher.Hooks {
				if key := ExtractHookKey(hook.Command); key != "" {
					out = append(out, InstalledHook{Event: event, Matcher: matcher.Matcher, Key: key, Command: hook.Command})
				}
			}
		}
	}
	return out
}

// IsPluginEnabled checks (project first, then global) settings to see if a plugin is enabled.
// Defaults to enabled if settings cannot be loaded or plugin key absent.
func IsPluginEnabled(pluginKey string) bool {
	for _, global := range []bool{false, true} {
		path, err := GetSettingsPath(global, "")
		if err != nil {
			continue
		}
		s, err := LoadSettings(path)
		if err != nil {
			continue
		}
		if !s.IsPluginEnabled(pluginKey) {
			return false
		}
	}
	return true
}
