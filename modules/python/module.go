// Package python provides the Python tool actions: python:exec runs a
// script through the interpreter, python:unittest turns a unittest results
// file into a structured test report.
package python

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"

	"github.com/vk/recipego/internal/proc"
	"github.com/vk/recipego/internal/registry"
	"github.com/vk/recipego/internal/result"
	"github.com/vk/recipego/internal/shellwords"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the python action handlers with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register("python", "exec", &registry.Action{
		Required: []string{"file"},
		Handler:  onExec,
	})
	r.Register("python", "unittest", &registry.Action{
		Required: []string{"file"},
		Handler:  onUnittest,
	})
}

// onExec is the handler for python:exec. The interpreter defaults to
// "python" and can be overridden with the interpreter attribute.
func onExec(ctx context.Context, rc registry.RunContext, attrs registry.Attributes) error {
	interpreter := attrs.Get("interpreter")
	if interpreter == "" {
		interpreter = "python"
	}
	extra, err := shellwords.Split(attrs.Get("args"))
	if err != nil {
		return err
	}

	opts := proc.Options{
		Executable: interpreter,
		Args:       append([]string{rc.Resolve(attrs.Get("file"))}, extra...),
	}
	if output := attrs.Get("output"); output != "" {
		opts.OutputPath = rc.Resolve(output)
	}

	code, err := proc.Run(ctx, rc, opts)
	if err != nil {
		return err
	}
	if code != 0 {
		return fmt.Errorf("python script failed (exit code %d)", code)
	}
	return nil
}

// testCase mirrors one <test> element of a unittest results file.
type testCase struct {
	Name     string `xml:"name,attr" yaml:"name"`
	Fixture  string `xml:"fixture,attr" yaml:"fixture,omitempty"`
	File     string `xml:"file,attr" yaml:"file,omitempty"`
	Status   string `xml:"status,attr" yaml:"status"`
	Duration string `xml:"duration,attr" yaml:"duration,omitempty"`
}

type testResults struct {
	Tests []testCase `xml:"test"`
}

// parseResults decodes a unittest results document.
func parseResults(data []byte) ([]testCase, error) {
	var results testResults
	if err := xml.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("parsing unittest results: %w", err)
	}
	return results.Tests, nil
}

// onUnittest is the handler for python:unittest. It reads the results file
// written by the test run and records a "test" category report. Failed test
// cases do not fail the action; the step that ran the tests already
// reflects the process exit code.
func onUnittest(ctx context.Context, rc registry.RunContext, attrs registry.Attributes) error {
	path := rc.Resolve(attrs.Get("file"))
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading unittest results: %w", err)
	}

	tests, err := parseResults(data)
	if err != nil {
		return err
	}

	failed := 0
	for _, tc := range tests {
		if tc.Status != "success" {
			failed++
		}
	}
	if failed > 0 {
		rc.Logf(result.LevelWarn, "%d of %d tests failed", failed, len(tests))
	} else {
		rc.Logf(result.LevelInfo, "%d tests passed", len(tests))
	}

	rc.Report("test", tests)
	return nil
}
