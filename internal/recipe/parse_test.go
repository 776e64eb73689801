package recipe

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/recipego/internal/registry"
)

// testRegistry returns a registry with the handful of action types the
// parser tests reference.
func testRegistry() *registry.Registry {
	noop := func(_ context.Context, _ registry.RunContext, _ registry.Attributes) error { return nil }
	reg := registry.New()
	reg.Register("sh", "exec", &registry.Action{Required: []string{"executable"}, Handler: noop})
	reg.Register("svn", "checkout", &registry.Action{Required: []string{"url", "path", "revision"}, Handler: noop})
	reg.Register("python", "unittest", &registry.Action{Required: []string{"file"}, Handler: noop})
	return reg
}

func parse(t *testing.T, doc string) (*Recipe, error) {
	t.Helper()
	return Parse(strings.NewReader(doc), testRegistry())
}

func TestParse_FullRecipe(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	doc := `<build description="nightly" onerror="continue"
       xmlns:sh="http://example.com/tools/sh"
       xmlns:svn="http://example.com/tools/svn">
  <step id="checkout" description="Fetch sources">
    <svn:checkout url="http://example.org/repos" path="${path}" revision="${revision}"/>
  </step>
  <step id="test" onerror="ignore">
    <sh:exec executable="make" args="test"/>
    <sh:exec executable="make" args="clean"/>
  </step>
</build>`

	// --- Act ---
	rcp, err := parse(t, doc)

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, "nightly", rcp.Description)
	require.Equal(t, OnErrorContinue, rcp.OnError)
	require.Len(t, rcp.Steps, 2)

	checkout := rcp.Steps[0]
	require.Equal(t, "checkout", checkout.ID)
	require.Equal(t, "Fetch sources", checkout.Description)
	require.Equal(t, OnErrorInherit, checkout.OnError)
	require.Len(t, checkout.Actions, 1)
	require.Equal(t, "svn:checkout", checkout.Actions[0].QName())
	// Attribute values stay raw; expansion is the executor's job.
	require.Equal(t, "${revision}", checkout.Actions[0].Attrs["revision"])

	test := rcp.Steps[1]
	require.Equal(t, OnErrorIgnore, test.OnError)
	require.Len(t, test.Actions, 2, "action order within a step must be preserved")
	require.Equal(t, "test", test.Actions[0].Attrs["args"])
	require.Equal(t, "clean", test.Actions[1].Attrs["args"])
}

func TestParse_BarePrefixNamespace(t *testing.T) {
	t.Parallel()

	// Recipes may use prefixes without xmlns declarations; the prefix is
	// the namespace token.
	doc := `<build><step id="a"><sh:exec executable="true"/></step></build>`

	rcp, err := parse(t, doc)

	require.NoError(t, err)
	require.Equal(t, "sh", rcp.Steps[0].Actions[0].Namespace)
	require.Equal(t, "exec", rcp.Steps[0].Actions[0].Name)
}

func TestParse_EntityEscapes(t *testing.T) {
	t.Parallel()

	doc := `<build><step id="a"><sh:exec executable="echo" args="&quot;a &amp; b&quot; &lt;tag&gt; &apos;q&apos;"/></step></build>`

	rcp, err := parse(t, doc)

	require.NoError(t, err)
	require.Equal(t, `"a & b" <tag> 'q'`, rcp.Steps[0].Actions[0].Attrs["args"])
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
		msg  string
	}{
		{"empty document", ``, "missing root element"},
		{"wrong root", `<pipeline/>`, "root element must be <build>"},
		{"zero steps", `<build/>`, "no build steps"},
		{"step without id", `<build><step><sh:exec executable="true"/></step></build>`, `"id" attribute`},
		{"duplicate step id", `<build><step id="a"><sh:exec executable="true"/></step><step id="a"><sh:exec executable="true"/></step></build>`, "duplicate step id"},
		{"bogus onerror", `<build><step id="a" onerror="bogus"><sh:exec executable="true"/></step></build>`, "invalid onerror"},
		{"bogus build onerror", `<build onerror="abort"><step id="a"><sh:exec executable="true"/></step></build>`, "invalid onerror"},
		{"step with no actions", `<build><step id="a"></step></build>`, "no actions"},
		{"non-step at top level", `<build><job id="a"/></build>`, "only <step> elements"},
		{"action without namespace", `<build><step id="a"><exec executable="true"/></step></build>`, "no namespace"},
		{"missing required attribute", `<build><step id="a"><sh:exec args="-v"/></step></build>`, `required attribute "executable"`},
		{"nested action content", `<build><step id="a"><sh:exec executable="true"><inner/></sh:exec></step></build>`, "nested content"},
		{"malformed xml", `<build><step id="a">`, "unexpected EOF"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := parse(t, tt.doc)

			require.Error(t, err)
			require.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestParse_UnknownAction(t *testing.T) {
	t.Parallel()

	doc := `<build><step id="a"><hg:pull repo="x"/></step></build>`

	_, err := parse(t, doc)

	var unknown *UnknownActionError
	require.Error(t, err)
	require.True(t, errors.As(err, &unknown))
	require.Equal(t, "hg", unknown.Namespace)
	require.Equal(t, "pull", unknown.Name)
}

func TestParse_SyntaxErrorCarriesLine(t *testing.T) {
	t.Parallel()

	doc := "<build>\n  <step id=\"a\">\n    <sh:exec args=\"-v\"/>\n  </step>\n</build>"

	_, err := parse(t, doc)

	var syntax *SyntaxError
	require.Error(t, err)
	require.True(t, errors.As(err, &syntax))
	require.Equal(t, 3, syntax.Line)
}

func TestParse_Idempotent(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	doc := `<build description="d">
  <step id="one"><sh:exec executable="true" args="a b"/></step>
  <step id="two" onerror="continue"><python:unittest file="${path}/results.xml"/></step>
</build>`

	// --- Act ---
	first, err := parse(t, doc)
	require.NoError(t, err)
	second, err := parse(t, doc)
	require.NoError(t, err)

	// --- Assert ---
	require.Equal(t, first, second, "parsing the same document twice must yield structurally equal models")
}
