package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/vk/recipego/internal/result"
)

// writeRecipe writes a recipe document into a temp dir and returns its path.
func writeRecipe(t *testing.T, recipeXML string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recipe.xml")
	require.NoError(t, os.WriteFile(path, []byte(recipeXML), 0600))
	return path
}

func TestApp_Run_WritesResultFile(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	recipeXML := `<build xmlns:sh="http://example.com/tools/sh">
		<step id="greet">
			<sh:exec executable="echo" args="hello ${reponame}"/>
		</step>
	</build>`
	tempDir := t.TempDir()
	resultPath := filepath.Join(tempDir, "result.yml")

	cfg, err := NewConfig(Config{
		RecipePath: writeRecipe(t, recipeXML),
		Basedir:    tempDir,
		Vars:       map[string]string{"reponame": "trunk"},
		ResultPath: resultPath,
		LogLevel:   "debug",
	})
	require.NoError(t, err)

	out := &bytes.Buffer{}
	testApp := NewApp(out, cfg)

	// --- Act ---
	runErr := testApp.Run(context.Background(), cfg)

	// --- Assert ---
	require.NoError(t, runErr)

	data, err := os.ReadFile(resultPath)
	require.NoError(t, err)

	var build result.Build
	require.NoError(t, yaml.Unmarshal(data, &build))
	require.Equal(t, result.StatusSucceeded, build.Status)
	require.Len(t, build.Steps, 1)
	require.Equal(t, "greet", build.Steps[0].ID)

	messages := make([]string, 0, len(build.Steps[0].Log))
	for _, entry := range build.Steps[0].Log {
		messages = append(messages, entry.Message)
	}
	require.Contains(t, messages, "hello trunk")
}

func TestApp_Run_FailedBuildReturnsError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	recipeXML := `<build xmlns:sh="http://example.com/tools/sh">
		<step id="break">
			<sh:exec executable="false"/>
		</step>
	</build>`
	cfg, err := NewConfig(Config{
		RecipePath: writeRecipe(t, recipeXML),
		Basedir:    t.TempDir(),
		LogLevel:   "error",
	})
	require.NoError(t, err)

	testApp := NewApp(&bytes.Buffer{}, cfg)

	// --- Act ---
	runErr := testApp.Run(context.Background(), cfg)

	// --- Assert ---
	require.Error(t, runErr)
	require.Contains(t, runErr.Error(), "failed")
}

func TestApp_Run_DryRunSkipsExecution(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The executable does not exist; a dry run must not try to spawn it.
	recipeXML := `<build xmlns:sh="http://example.com/tools/sh">
		<step id="never">
			<sh:exec executable="/no/such/binary"/>
		</step>
	</build>`
	resultPath := filepath.Join(t.TempDir(), "result.yml")
	cfg, err := NewConfig(Config{
		RecipePath: writeRecipe(t, recipeXML),
		Basedir:    t.TempDir(),
		ResultPath: resultPath,
		DryRun:     true,
		LogLevel:   "info",
	})
	require.NoError(t, err)

	out := &bytes.Buffer{}
	testApp := NewApp(out, cfg)

	// --- Act ---
	runErr := testApp.Run(context.Background(), cfg)

	// --- Assert ---
	require.NoError(t, runErr)
	require.NoFileExists(t, resultPath, "dry run must not produce a result file")
	require.Contains(t, out.String(), "Recipe is valid")
}

func TestApp_Run_InvalidRecipeIsRejected(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	recipeXML := `<build><step id="empty"></step></build>`
	cfg, err := NewConfig(Config{
		RecipePath: writeRecipe(t, recipeXML),
		Basedir:    t.TempDir(),
	})
	require.NoError(t, err)

	testApp := NewApp(&bytes.Buffer{}, cfg)

	// --- Act ---
	runErr := testApp.Run(context.Background(), cfg)

	// --- Assert ---
	require.Error(t, runErr)
	require.Contains(t, runErr.Error(), "parsing recipe")
}

func TestApp_Run_ProfileDefaultsApply(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The profile switches the failure policy to continue and presets a
	// variable the recipe expands.
	profileHCL := `
		defaults {
			onerror         = "continue"
			command_timeout = "30s"
		}

		variables {
			reponame = "branches/stable"
		}
	`
	tempDir := t.TempDir()
	profilePath := filepath.Join(tempDir, "runner.hcl")
	require.NoError(t, os.WriteFile(profilePath, []byte(profileHCL), 0600))

	recipeXML := `<build xmlns:sh="http://example.com/tools/sh">
		<step id="break">
			<sh:exec executable="false"/>
		</step>
		<step id="after">
			<sh:exec executable="echo" args="${reponame}"/>
		</step>
	</build>`
	resultPath := filepath.Join(tempDir, "result.yml")
	cfg, err := NewConfig(Config{
		RecipePath:  writeRecipe(t, recipeXML),
		Basedir:     tempDir,
		ProfilePath: profilePath,
		ResultPath:  resultPath,
		LogLevel:    "error",
	})
	require.NoError(t, err)

	testApp := NewApp(&bytes.Buffer{}, cfg)

	// --- Act ---
	runErr := testApp.Run(context.Background(), cfg)

	// --- Assert ---
	// With onerror=continue the second step still runs, and the build as a
	// whole is reported failed.
	require.Error(t, runErr)

	data, err := os.ReadFile(resultPath)
	require.NoError(t, err)
	var build result.Build
	require.NoError(t, yaml.Unmarshal(data, &build))
	require.Equal(t, result.StatusFailed, build.Status)
	require.Len(t, build.Steps, 2)
	require.Equal(t, result.StatusSucceeded, build.Steps[1].Status)
}

func TestNewConfig_RequiresRecipePath(t *testing.T) {
	t.Parallel()

	// --- Act ---
	cfg, err := NewConfig(Config{Timeout: time.Second})

	// --- Assert ---
	require.Nil(t, cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "RecipePath")
}
