package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/vk/recipego/internal/registry"
	"github.com/vk/recipego/internal/result"
)

// ScriptModule registers a deterministic "test" namespace for state-machine
// tests: test:ok succeeds, test:fail fails with its message attribute,
// test:log writes its message attribute to the step log. Executed action
// labels are recorded in order.
type ScriptModule struct {
	mu    sync.Mutex
	calls []string
}

// Calls returns the labels of every executed action, in execution order.
func (m *ScriptModule) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *ScriptModule) record(attrs registry.Attributes, fallback string) {
	label := attrs.Get("label")
	if label == "" {
		label = fallback
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, label)
}

// Register registers the scripted handlers with the engine.
func (m *ScriptModule) Register(r *registry.Registry) {
	r.Register("test", "ok", &registry.Action{
		Handler: func(_ context.Context, _ registry.RunContext, attrs registry.Attributes) error {
			m.record(attrs, "ok")
			return nil
		},
	})
	r.Register("test", "fail", &registry.Action{
		Handler: func(_ context.Context, _ registry.RunContext, attrs registry.Attributes) error {
			m.record(attrs, "fail")
			message := attrs.Get("message")
			if message == "" {
				message = "scripted failure"
			}
			return errors.New(message)
		},
	})
	r.Register("test", "log", &registry.Action{
		Handler: func(_ context.Context, rc registry.RunContext, attrs registry.Attributes) error {
			m.record(attrs, "log")
			rc.Log(result.LevelInfo, attrs.Get("message"))
			return nil
		},
	})
}
