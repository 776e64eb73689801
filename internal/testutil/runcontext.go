package testutil

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/vk/recipego/internal/result"
	"github.com/vk/recipego/internal/vars"
)

// RecordingRunContext is a registry.RunContext for handler tests: it records
// every emission in order instead of building a full StepResult through the
// executor.
type RecordingRunContext struct {
	Dir     string
	Context vars.Context
	Timeout time.Duration

	mu          sync.Mutex
	LogEntries  []result.LogEntry
	Reports     []result.Report
	Attachments []result.Attachment
}

// NewRecordingRunContext returns a run context rooted at dir with an empty
// canonical variable context.
func NewRecordingRunContext(dir string) *RecordingRunContext {
	return &RecordingRunContext{Dir: dir, Context: vars.New()}
}

// Basedir implements registry.RunContext.
func (r *RecordingRunContext) Basedir() string { return r.Dir }

// Resolve implements registry.RunContext.
func (r *RecordingRunContext) Resolve(elem ...string) string {
	if len(elem) > 0 && filepath.IsAbs(elem[0]) {
		return filepath.Join(elem...)
	}
	return filepath.Join(append([]string{r.Dir}, elem...)...)
}

// Vars implements registry.RunContext.
func (r *RecordingRunContext) Vars() vars.Context { return r.Context }

// CommandTimeout implements registry.RunContext.
func (r *RecordingRunContext) CommandTimeout() time.Duration { return r.Timeout }

// Log implements registry.RunContext.
func (r *RecordingRunContext) Log(level result.Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.LogEntries = append(r.LogEntries, result.LogEntry{Level: level, Message: message})
}

// Logf implements registry.RunContext.
func (r *RecordingRunContext) Logf(level result.Level, format string, args ...any) {
	r.Log(level, fmt.Sprintf(format, args...))
}

// Report implements registry.RunContext.
func (r *RecordingRunContext) Report(category string, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Reports = append(r.Reports, result.Report{Category: category, Data: data})
}

// Attach implements registry.RunContext.
func (r *RecordingRunContext) Attach(path, description string) error {
	resolved := r.Resolve(path)
	digest, err := result.FileDigest(resolved)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Attachments = append(r.Attachments, result.Attachment{
		Path:        resolved,
		Description: description,
		Digest:      digest,
	})
	return nil
}

// Messages returns just the log messages, in emission order.
func (r *RecordingRunContext) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs := make([]string, len(r.LogEntries))
	for i, entry := range r.LogEntries {
		msgs[i] = entry.Message
	}
	return msgs
}
