package integration_tests

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/recipego/internal/recipe"
	"github.com/vk/recipego/internal/testutil"
)

// Test for: structurally invalid recipe documents are rejected before any
// step executes.
func TestRecipeValidation_InvalidDocumentsAreRejected(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		recipeXML string
		wantMsg   string
	}{
		{
			name:      "wrong root element",
			recipeXML: `<pipeline><step id="a"><test:ok/></step></pipeline>`,
			wantMsg:   "root element must be <build>",
		},
		{
			name:      "step without id",
			recipeXML: `<build><step><test:ok/></step></build>`,
			wantMsg:   `steps must have an "id" attribute`,
		},
		{
			name: "duplicate step ids",
			recipeXML: `<build>
				<step id="a"><test:ok/></step>
				<step id="a"><test:ok/></step>
			</build>`,
			wantMsg: `duplicate step id "a"`,
		},
		{
			name:      "step without actions",
			recipeXML: `<build><step id="a"></step></build>`,
			wantMsg:   `step "a" has no actions`,
		},
		{
			name:      "invalid onerror value",
			recipeXML: `<build><step id="a" onerror="retry"><test:ok/></step></build>`,
			wantMsg:   `invalid onerror value "retry"`,
		},
		{
			name:      "action without namespace",
			recipeXML: `<build><step id="a"><ok/></step></build>`,
			wantMsg:   "has no namespace",
		},
		{
			name:      "empty recipe",
			recipeXML: `<build></build>`,
			wantMsg:   "no build steps",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Act ---
			res := testutil.RunRecipe(t, tc.recipeXML, testutil.HarnessOptions{}, &testutil.ScriptModule{})

			// --- Assert ---
			require.Error(t, res.Err)
			require.Nil(t, res.Build, "nothing must execute for an invalid recipe")
			if tc.wantMsg != "" {
				require.Contains(t, res.Err.Error(), tc.wantMsg)
			}
		})
	}
}

// Test for: referencing an action no compiled-in module provides is a parse
// error carrying the document line.
func TestRecipeValidation_UnknownActionIsRejected(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	recipeXML := `<build>
	<step id="a">
		<test:no_such_action/>
	</step>
</build>`

	// --- Act ---
	res := testutil.RunRecipe(t, recipeXML, testutil.HarnessOptions{}, &testutil.ScriptModule{})

	// --- Assert ---
	require.Error(t, res.Err)

	var unknownErr *recipe.UnknownActionError
	require.True(t, errors.As(res.Err, &unknownErr))
	require.Equal(t, "test", unknownErr.Namespace)
	require.Equal(t, "no_such_action", unknownErr.Name)
	require.Equal(t, 3, unknownErr.Line)
}
