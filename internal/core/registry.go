package core

import (
	"fmt"
	"sort"
	"sync"
)

// HookFactory is a function that creates a Hook instance
type HookFactory func(ctx *HookContext) Hook

// Registry manages hook registration and creation
type Registry struct {
	mu        sync.RWMutex
	factories map[string]HookFactory
	context   *HookContext
}

// NewRegistry creates a new hook registry
func NewRegistry(ctx *HookContext) *Registry {
	if ctx == nil {
		ctx = DefaultHookContext()
	}
	return &Registry{
		factories: make(map[string]HookFactory),
		context:   ctx,
	}
}

// Register registers a hook factory with the given key
func (r *Registry) Register(key string, factory HookFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[key]; exists {
		return fmt.Errorf("hook with key '%s' already registered", key)
	}
	r.factories[key] = factory
	return nil
}

// MustRegister is like Register but panics on error
func (r *Registry) MustRegister(key string, factory HookFactory) {
	if err := r.Register(key, factory); err != nil {
		panic(err)
	}
}

// RegisterBatch registers hooks atomically: either all keys are new and
// every factory is added, or nothing changes.
func (r *Registry) RegisterBatch(hooks map[string]HookFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key := range hooks {
		if _, exists := r.factories[key]; exists {
			return fmt.Errorf("hook with key '%s' already registered", key)
		}
	}
	for key, factory := range hooks {
		r.factories[key] = factory
	}
	return nil
}

// MustRegisterBatch is like RegisterBatch but panics on error
func (r *Registry) MustRegisterBatch(hooks map[string]HookFactory) {
	if err := r.RegisterBatch(hooks); err != nil {
		panic(err)
	}
}

// Create creates a hook instance by key
func (r *Registry) Create(key string) (Hook, error) {
	r.mu.RLock()
	factory, exists := r.factories[key]
	ctx := r.context
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("hook with key '%s' not found", key)
	}
	return factory(ctx), nil
}

// Keys returns all registered hook keys in sorted order
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.factories))
	for k := range r.factories {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// HookInfo describes a registered hook for listings and installation.
type HookInfo struct {
	Key         string
	Name        string
	Description string
	Events      []EventType
}

// EventsOf returns the events h handles. Hooks that do not implement
// EventsProvider are treated as PreToolUse hooks.
func EventsOf(h Hook) []EventType {
	if p, ok := h.(EventsProvider); ok {
		return p.Events()
	}
	return []EventType{PreToolUseEvent}
}

// Catalog instantiates every registered hook and returns its description,
// sorted by key.
func (r *Registry) Catalog() []HookInfo {
	r.mu.RLock()
	factories := make(map[string]HookFactory, len(r.factories))
	for k, v := range r.factories {
		factories[k] = v
	}
	ctx := r.context
	r.mu.RUnlock()

	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		infos = make([]HookInfo, 0, len(factories))
	)
	for key, factory := range factories {
		wg.Go(func() {
			h := factory(ctx)
			info := HookInfo{Key: key, Name: h.Name(), Description: h.Description(), Events: EventsOf(h)}
			mu.Lock()
			infos = append(infos, info)
			mu.Unlock()
		})
	}
	wg.Wait()
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos
}

// SetContext updates the context used for creating hook instances
func (r *Registry) SetContext(ctx *HookContext) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.context = ctx
}

// Context returns the context used for creating hook instances.
func (r *Registry) Context() *HookContext {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.context
}

var globalRegistry = NewRegistry(nil)

// CreateHook creates a hook instance by key from the global registry
func CreateHook(key string) (Hook, error) {
	return globalRegistry.Create(key)
}

// GetHookKeys returns all registered hook keys from the global registry
func GetHookKeys() []string {
	return globalRegistry.Keys()
}

// Catalog describes every hook in the global registry.
func Catalog() []HookInfo {
	return globalRegistry.Catalog()
}

// SetGlobalContext updates the global registry's context
func SetGlobalContext(ctx *HookContext) {
	globalRegistry.SetContext(ctx)
}

// GlobalContext returns the global registry's context.
func GlobalContext() *HookContext {
	return globalRegistry.Context()
}

// RegisterBuiltinHooks can be called by the hooks package to register all built-in hooks
func RegisterBuiltinHooks(hooks map[string]HookFactory) {
	globalRegistry.MustRegisterBatch(hooks)
}
