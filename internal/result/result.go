// Package result holds the data produced by executing a recipe: one
// StepResult per executed step, aggregated into a Build. The package is pure
// accumulation; interpretation of the data belongs to the reporting layer
// that consumes it.
package result

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/zeebo/blake3"
)

// Status describes the lifecycle state of a build or a single step.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Level tags a log entry with its severity.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// LogEntry is a single line of output produced by an action.
type LogEntry struct {
	Level   Level  `yaml:"level"`
	Message string `yaml:"message"`
}

// Report is a typed block of structured data produced by an action, for
// example a parsed test-result set. The payload is opaque to the engine and
// rendered by an external layer.
type Report struct {
	Category string `yaml:"category"`
	Data     any    `yaml:"data"`
}

// Attachment references a file produced by the build, together with a
// description and a blake3 digest of its content at attach time.
type Attachment struct {
	Path        string `yaml:"path"`
	Description string `yaml:"description,omitempty"`
	Digest      string `yaml:"digest"`
}

// StepResult records everything a single step produced. Log entries, reports
// and attachments keep their emission order; steps that failed keep the
// partial output of every action that ran.
type StepResult struct {
	ID          string       `yaml:"id"`
	Description string       `yaml:"description,omitempty"`
	Status      Status       `yaml:"status"`
	Log         []LogEntry   `yaml:"log,omitempty"`
	Reports     []Report     `yaml:"reports,omitempty"`
	Attachments []Attachment `yaml:"attachments,omitempty"`
	Started     time.Time    `yaml:"started"`
	Stopped     time.Time    `yaml:"stopped"`
}

// Duration is the wall-clock time the step took.
func (s *StepResult) Duration() time.Duration {
	return s.Stopped.Sub(s.Started)
}

// Build is the complete ordered record of one recipe execution.
type Build struct {
	ID      string        `yaml:"id"`
	Status  Status        `yaml:"status"`
	Steps   []*StepResult `yaml:"steps"`
	Started time.Time     `yaml:"started"`
	Stopped time.Time     `yaml:"stopped"`
}

// NewBuild returns a pending build with a fresh ULID identifier.
func NewBuild() *Build {
	return &Build{
		ID:     ulid.Make().String(),
		Status: StatusPending,
	}
}

// Step returns the result recorded for the given step id, or nil.
func (b *Build) Step(id string) *StepResult {
	for _, s := range b.Steps {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// FileDigest computes the hex-encoded blake3 digest of the file's content.
func FileDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening attachment: %w", err)
	}
	defer f.Close()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing attachment %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
