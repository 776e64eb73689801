package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/recipego/internal/result"
	"github.com/vk/recipego/internal/testutil"
	"github.com/vk/recipego/modules/sh"
)

// Test for: shell steps run strictly in document order and their output is
// captured into the step log.
func TestCoreExecution_SequentialShellSteps(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	recipeXML := `<build xmlns:sh="http://example.com/tools/sh">
		<step id="write">
			<sh:pipe command="echo alpha &gt; marker.txt"/>
		</step>
		<step id="read">
			<sh:exec executable="cat" args="marker.txt"/>
		</step>
	</build>`

	// --- Act ---
	res := testutil.RunRecipe(t, recipeXML, testutil.HarnessOptions{}, &sh.Module{})

	// --- Assert ---
	require.NoError(t, res.Err)
	require.Equal(t, result.StatusSucceeded, res.Build.Status)
	require.Len(t, res.Build.Steps, 2)

	// The second step reads the file the first one wrote, proving both ran
	// in order inside the same basedir.
	readStep := res.Build.Step("read")
	require.NotNil(t, readStep)
	require.Equal(t, result.StatusSucceeded, readStep.Status)

	var messages []string
	for _, entry := range readStep.Log {
		messages = append(messages, entry.Message)
	}
	require.Contains(t, messages, "alpha")
}

// Test for: stderr output is captured at error level without failing the
// action.
func TestCoreExecution_StderrCapturedAtErrorLevel(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	recipeXML := `<build xmlns:sh="http://example.com/tools/sh">
		<step id="noisy">
			<sh:pipe command="echo warning-line 1&gt;&amp;2"/>
		</step>
	</build>`

	// --- Act ---
	res := testutil.RunRecipe(t, recipeXML, testutil.HarnessOptions{}, &sh.Module{})

	// --- Assert ---
	require.NoError(t, res.Err)
	require.Equal(t, result.StatusSucceeded, res.Build.Status)

	step := res.Build.Step("noisy")
	require.NotNil(t, step)
	require.Equal(t, result.StatusSucceeded, step.Status)

	var found bool
	for _, entry := range step.Log {
		if entry.Message == "warning-line" {
			found = true
			require.Equal(t, result.LevelError, entry.Level)
		}
	}
	require.True(t, found, "stderr line should be captured in the step log")
}
