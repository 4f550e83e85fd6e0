package core

import (
	"reflect"
	"sync"
	"testing"
)

type testHook struct {
	*BaseHook
}

func (h *testHook) Run() error {
	return nil
}

func newTestHook(key string) HookFactory {
	return func(ctx *HookContext) Hook {
		return &testHook{BaseHook: NewBaseHook(key, key+" hook", "test hook "+key, ctx)}
	}
}

func TestRegistryCreate(t *testing.T) {
	registry := NewRegistry(TestHookContext(nil))
	if err := registry.Register("prompt", newTestHook("prompt")); err != nil {
		t.Fatalf("Register: %v", err)
	}

	hook, err := registry.Create("prompt")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if hook.Key() != "prompt" {
		t.Errorf("key = %q", hook.Key())
	}
	if _, err := registry.Create("missing"); err == nil {
		t.Error("expected error for unknown key")
	}
	if err := registry.Register("prompt", newTestHook("prompt")); err == nil {
		t.Error("expected duplicate registration error")
	}
}

func TestRegistryMustRegisterPanics(t *testing.T) {
	registry := NewRegistry(TestHookContext(nil))
	registry.MustRegister("security", newTestHook("security"))
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate MustRegister")
		}
	}()
	registry.MustRegister("security", newTestHook("security"))
}

func TestRegistryKeysSorted(t *testing.T) {
	registry := NewRegistry(TestHookContext(nil))
	registry.MustRegisterBatch(map[string]HookFactory{
		"stats":    newTestHook("stats"),
		"audit":    newTestHook("audit"),
		"security": newTestHook("security"),
	})
	want := []string{"audit", "security", "stats"}
	if got := registry.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys = %v, want %v", got, want)
	}
}

func TestRegistryBatchIsAtomic(t *testing.T) {
	registry := NewRegistry(TestHookContext(nil))
	registry.MustRegister("format", newTestHook("format"))

	err := registry.RegisterBatch(map[string]HookFactory{
		"format": newTestHook("format"),
		"prompt": newTestHook("prompt"),
	})
	if err == nil {
		t.Fatal("expected duplicate error")
	}
	if got := registry.Keys(); !reflect.DeepEqual(got, []string{"format"}) {
		t.Errorf("partial batch registered: %v", got)
	}
}

func TestRegistrySetContext(t *testing.T) {
	registry := NewRegistry(TestHookContext(func(string) bool { return true }))
	registry.MustRegister("test", newTestHook("test"))

	hook1, _ := registry.Create("test")
	if !hook1.IsEnabled() {
		t.Error("Expected hook to be enabled with first context")
	}

	disabled := TestHookContext(func(string) bool { return false })
	registry.SetContext(disabled)
	if registry.Context() != disabled {
		t.Error("Context not updated")
	}
	hook2, _ := registry.Create("test")
	if hook2.IsEnabled() {
		t.Error("Expected hook to be disabled with second context")
	}
}

type promptOnlyHook struct {
	*BaseHook
}

func (h *promptOnlyHook) Run() error { return nil }

func (h *promptOnlyHook) Events() []EventType { return []EventType{UserPromptSubmitEvent} }

func TestRegistryCatalog(t *testing.T) {
	registry := NewRegistry(TestHookContext(nil))
	for _, k := range []string{"security", "format", "stats", "audit"} {
		registry.MustRegister(k, newTestHook(k))
	}
	registry.MustRegister("prompt", func(ctx *HookContext) Hook {
		return &promptOnlyHook{BaseHook: NewBaseHook("prompt", "Prompt", "scores prompts", ctx)}
	})

	infos := registry.Catalog()
	var keys []string
	for _, info := range infos {
		keys = append(keys, info.Key)
	}
	want := []string{"audit", "format", "prompt", "security", "stats"}
	if !reflect.DeepEqual(keys, want) {
		t.Fatalf("Catalog keys = %v, want %v", keys, want)
	}
	if got := infos[2]; got.Description != "scores prompts" ||
		!reflect.DeepEqual(got.Events, []EventType{UserPromptSubmitEvent}) {
		t.Errorf("prompt info = %+v", got)
	}
	if got := infos[0].Events; !reflect.DeepEqual(got, []EventType{PreToolUseEvent}) {
		t.Errorf("default events = %v", got)
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	registry := NewRegistry(TestHookContext(nil))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures int
	)
	for i := 0; i < 5; i++ {
		wg.Go(func() {
			if err := registry.Register("shared", newTestHook("shared")); err != nil {
				mu.Lock()
				failures++
				mu.Unlock()
			}
		})
	}
	wg.Wait()
	if failures != 4 {
		t.Fatalf("expected 4 duplicate errors, got %d", failures)
	}

	for i := 0; i < 5; i++ {
		wg.Go(func() { _ = registry.Catalog() })
		wg.Go(func() {
			if _, err := registry.Create("shared"); err != nil {
				t.Errorf("Create: %v", err)
			}
		})
		wg.Go(func() { registry.SetContext(TestHookContext(nil)) })
	}
	wg.Wait()
}

func TestGlobalRegistry(t *testing.T) {
	saved := globalRegistry
	t.Cleanup(func() { globalRegistry = saved })
	globalRegistry = NewRegistry(TestHookContext(nil))

	RegisterBuiltinHooks(map[string]HookFactory{"global": newTestHook("global")})
	hook, err := CreateHook("global")
	if err != nil || hook.Key() != "global" {
		t.Fatalf("CreateHook = %v, %v", hook, err)
	}
	if got := GetHookKeys(); !reflect.DeepEqual(got, []string{"global"}) {
		t.Errorf("GetHookKeys = %v", got)
	}
	if c := Catalog(); len(c) != 1 || c[0].Key != "global" {
		t.Errorf("Catalog = %+v", c)
	}

	ctx := TestHookContext(nil)
	SetGlobalContext(ctx)
	if GlobalContext() != ctx {
		t.Error("SetGlobalContext did not replace the context")
	}
}
