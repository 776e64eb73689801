package result

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"
)

func TestNewBuild(t *testing.T) {
	t.Parallel()

	// --- Act ---
	b := NewBuild()

	// --- Assert ---
	require.Equal(t, StatusPending, b.Status)
	_, err := ulid.Parse(b.ID)
	require.NoError(t, err, "build id should be a valid ULID")
}

func TestBuild_Step(t *testing.T) {
	t.Parallel()

	b := NewBuild()
	b.Steps = append(b.Steps,
		&StepResult{ID: "checkout", Status: StatusSucceeded},
		&StepResult{ID: "test", Status: StatusFailed},
	)

	require.Equal(t, StatusFailed, b.Step("test").Status)
	require.Nil(t, b.Step("missing"))
}

func TestStepResult_Duration(t *testing.T) {
	t.Parallel()

	start := time.Now()
	s := &StepResult{Started: start, Stopped: start.Add(3 * time.Second)}
	require.Equal(t, 3*time.Second, s.Duration())
}

func TestFileDigest(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	path := filepath.Join(dir, "artifact.bin")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0600))

	// --- Act ---
	first, err := FileDigest(path)
	require.NoError(t, err)
	second, err := FileDigest(path)
	require.NoError(t, err)

	// --- Assert ---
	require.NotEmpty(t, first)
	require.Equal(t, first, second, "digest must be deterministic")
	require.Len(t, first, 64, "blake3 digest is 32 bytes hex encoded")
}

func TestFileDigest_Missing(t *testing.T) {
	t.Parallel()

	_, err := FileDigest(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}
