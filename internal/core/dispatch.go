package core

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/brads3290/cchooks"
)

// Handlers groups the per-event callbacks a hook supports. Nil entries
// mean the hook ignores that event.
type Handlers struct {
	PreToolUse       func(context.Context, *cchooks.PreToolUseEvent) cchooks.PreToolUseResponseInterface
	PostToolUse      func(context.Context, *cchooks.PostToolUseEvent) cchooks.PostToolUseResponseInterface
	UserPromptSubmit func(context.Context, *Envelope) error
	Stop             func(context.Context, *Envelope) error
}

// Dispatch reads one event from the context's Stdin and routes it.
// Tool events go through the cchooks runner; prompt and stop events are
// handled directly since cchooks does not model them.
func (h *BaseHook) Dispatch(ctx context.Context, hs Handlers) error {
	if !h.IsEnabled() {
		return nil
	}

	in := h.context.Stdin
	if in == nil {
		in = os.Stdin
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read hook input: %w", err)
	}
	env, err := ParseEnvelope(data)
	if err != nil {
		return err
	}
	h.envelope = env

	switch env.EventType() {
	case UserPromptSubmitEvent:
		if hs.UserPromptSubmit != nil {
			return hs.UserPromptSubmit(ctx, env)
		}
	case StopEvent, SubagentStopEvent:
		if hs.Stop != nil {
			return hs.Stop(ctx, env)
		}
	case PreToolUseEvent:
		if hs.PreToolUse != nil {
			return h.runTool(data, hs.PreToolUse, nil)
		}
	case PostToolUseEvent:
		if hs.PostToolUse != nil {
			return h.runTool(data, nil, hs.PostToolUse)
		}
	}
	return nil
}

func (h *BaseHook) runTool(data []byte,
	pre func(context.Context, *cchooks.PreToolUseEvent) cchooks.PreToolUseResponseInterface,
	post func(context.Context, *cchooks.PostToolUseEvent) cchooks.PostToolUseResponseInterface,
) error {
	if h.context.ReplayStdin != nil {
		restore, err := h.context.ReplayStdin(data)
		if err != nil {
			return err
		}
		defer restore()
	}
	runner := h.context.RunnerFactory(pre, post, h.CreateRawHandler())
	runner.Run()
	return nil
}

// ReplayStdin swaps os.Stdin for a pipe that yields data.
func ReplayStdin(data []byte) (func(), error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}
	go func() {
		_, _ = w.Write(data)
		_ = w.Close()
	}()

	orig := os.Stdin
	os.Stdin = r
	return func() {
		os.Stdin = orig
		_ = r.Close()
	}, nil
}
