package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/transtab/internal/app"
	"github.com/vk/transtab/internal/testutil"
)

const contactsCSV = `id,name,phone,state
1,ann,(555) 123-4567,ar
2,bob,555/765 4321,tx
1,ann,(555) 123-4567,ar
`

var contactsExpected = [][]string{
	{"id", "name", "Phone", "state", "Label"},
	{"1", "ann", "555-123-4567", "Arkansas", "ann - Arkansas"},
	{"2", "bob", "555-765-4321", "Texas", "bob - Texas"},
}

func TestTransform_StructuredSpec(t *testing.T) {
	testCases := []struct {
		name     string
		specFile string
		spec     string
	}{
		{
			name:     "json",
			specFile: "contacts.json",
			spec: `{
  "has_header_row": true,
  "header_rows": {"C": {"action": "replace", "with": "Phone"}},
  "columns": {
    "A": "unique",
    "C": {"action": "operation", "function": "validate_phone_number"},
    "D": {"action": "replace", "with": {"ar": "Arkansas", "tx": "Texas"}}
  },
  "new_columns": {
    "Label": {"action": "concatenate", "based_on": ["B", "D"], "join_string": " - "}
  }
}`,
		},
		{
			name:     "hcl",
			specFile: "contacts.hcl",
			spec: `
has_header_row = true

header_rows = {
  C = { action = "replace", with = "Phone" }
}

columns = {
  A = "unique"
  C = { action = "operation", function = "validate_phone_number" }
  D = { action = "replace", with = { ar = "Arkansas", tx = "Texas" } }
}

new_columns = {
  Label = { action = "concatenate", based_on = ["B", "D"], join_string = " - " }
}
`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			files := map[string]string{
				"contacts.csv": contactsCSV,
				tc.specFile:    tc.spec,
			}
			cfg := app.Config{InputPath: "contacts.csv", FormatPath: tc.specFile, OutputPath: "out.csv"}

			// --- Act ---
			result := testutil.RunIntegrationTest(t, files, cfg)

			// --- Assert ---
			require.NoError(t, result.Err)
			testutil.AssertOutput(t, result.Path("out.csv"), contactsExpected)
		})
	}
}

func TestTransform_StructuredSpecWithoutHeader(t *testing.T) {
	// --- Arrange ---
	files := map[string]string{
		"contacts.csv": contactsCSV,
		"formats/contacts.hcl": `
rows    = { 1 = "drop" }
columns = { B = "drop", D = "clear" }
`,
	}
	cfg := app.Config{InputPath: "contacts.csv", FormatPath: "contacts", OutputPath: "out.csv"}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, cfg)

	// --- Assert ---
	require.NoError(t, result.Err)
	testutil.AssertOutput(t, result.Path("out.csv"), [][]string{
		{"1", "(555) 123-4567", ""},
		{"2", "555/765 4321", ""},
		{"1", "(555) 123-4567", ""},
	})
}
