package hooks

import "github.com/klauern/hookguard/internal/core"

// init registers all built-in hooks using batch registration
func init() {
	builtinHooks := map[string]core.HookFactory{
		"prompt":   NewPromptHook,
		"security": NewSecurityHook,
		"format":   NewFormatHook,
		"stats":    NewStatsHook,
		"audit":    NewAuditHook,
	}
	core.RegisterBuiltinHooks(builtinHooks)
}
