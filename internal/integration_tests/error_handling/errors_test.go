package integration_tests

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/transtab/internal/app"
	"github.com/vk/transtab/internal/failure"
	"github.com/vk/transtab/internal/testutil"
)

const pricesCSV = `item,price
Orange,90
Pen,a
`

func TestErrorHandling_FailedRunsWriteNothing(t *testing.T) {
	testCases := []struct {
		name     string
		spec     string
		contains string
		check    func(t *testing.T, err error)
	}{
		{
			name:     "syntax error names the line",
			spec:     "drop\nrename 'item'\n",
			contains: "line 2",
			check: func(t *testing.T, err error) {
				var synErr *failure.SyntaxError
				require.ErrorAs(t, err, &synErr)
				assert.Equal(t, 2, synErr.Line)
			},
		},
		{
			name:     "unknown operation fails before any change",
			spec:     "drop\ndo no_such_operation on 'price'\n",
			contains: "no_such_operation",
			check: func(t *testing.T, err error) {
				var opErr *failure.UnknownOperationError
				require.ErrorAs(t, err, &opErr)
				assert.Equal(t, "no_such_operation", opErr.Name)
			},
		},
		{
			name:     "validate_number rejects text",
			spec:     "do validate_number on 'price'\n",
			contains: "did not contain a numerical value",
			check: func(t *testing.T, err error) {
				var hookErr *failure.HookError
				require.ErrorAs(t, err, &hookErr)
				assert.Equal(t, "validate_number", hookErr.Operation)
				assert.Equal(t, 3, hookErr.Row)
				var typeErr *failure.TypeError
				require.ErrorAs(t, err, &typeErr)
				assert.Equal(t, "a", typeErr.Value)
			},
		},
		{
			name:     "unknown column",
			spec:     "delete 'cost'\n",
			contains: "cost",
			check: func(t *testing.T, err error) {
				var refErr *failure.ReferenceError
				require.ErrorAs(t, err, &refErr)
			},
		},
		{
			name:     "replace without default",
			spec:     "replace 'item' {'Orange': 'Citrus'}\n",
			contains: "Pen",
			check: func(t *testing.T, err error) {
				var lookupErr *failure.LookupError
				require.ErrorAs(t, err, &lookupErr)
				assert.Equal(t, 3, lookupErr.Row)
			},
		},
		{
			name:     "sum of text",
			spec:     "sum-col-and-delete-duplicate-rows sum 'price' unique 'item'\n",
			contains: "cannot sum",
			check: func(t *testing.T, err error) {
				var typeErr *failure.TypeError
				require.ErrorAs(t, err, &typeErr)
				assert.Equal(t, 3, typeErr.Row)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			files := map[string]string{
				"prices.csv": pricesCSV,
				"prices.txt": tc.spec,
			}
			cfg := app.Config{InputPath: "prices.csv", FormatPath: "prices.txt", OutputPath: "out.csv"}

			// --- Act ---
			result := testutil.RunIntegrationTest(t, files, cfg)

			// --- Assert ---
			require.Error(t, result.Err)
			assert.Contains(t, result.Err.Error(), tc.contains)
			tc.check(t, result.Err)
			_, err := os.Stat(result.Path("out.csv"))
			assert.True(t, os.IsNotExist(err), "no output is written for a failed run")
		})
	}
}

func TestErrorHandling_MissingSpecification(t *testing.T) {
	// --- Arrange ---
	files := map[string]string{"prices.csv": pricesCSV}
	cfg := app.Config{InputPath: "prices.csv", FormatPath: "riceland", OutputPath: "out.csv"}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, cfg)

	// --- Assert ---
	var readErr *failure.ReadError
	require.ErrorAs(t, result.Err, &readErr)
	assert.Contains(t, result.Err.Error(), "riceland.hcl")
}

func TestErrorHandling_UnsupportedInput(t *testing.T) {
	// --- Arrange ---
	files := map[string]string{
		"prices.ods": "binary",
		"prices.txt": "drop\n",
	}
	cfg := app.Config{InputPath: "prices.ods", FormatPath: "prices.txt"}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, cfg)

	// --- Assert ---
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), ".ods")
}

func TestErrorHandling_BrokenScript(t *testing.T) {
	// --- Arrange ---
	files := map[string]string{
		"prices.csv": pricesCSV,
		"prices.txt": "do fix on 'price'\n",
		"prices.go":  "package prices\n\nfunc fix(v any) any {\n",
	}
	cfg := app.Config{InputPath: "prices.csv", FormatPath: "prices.txt", OutputPath: "out.csv"}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, cfg)

	// --- Assert ---
	var synErr *failure.SyntaxError
	require.ErrorAs(t, result.Err, &synErr)
	assert.Contains(t, synErr.Source, "prices.go")
}
