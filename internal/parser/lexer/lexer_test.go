package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextToken(t *testing.T) {
	input := `# grocery cleanup
RENAME 'item' as 'Item'
replace 'type' {'Fruit':'F',
                 'Vegetable':'V'} Case-Insensitive
delete row 3 # trailing comment
do validate_number on 'price' quit-on-error`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{NEWLINE, "\n"},
		{RENAME, "RENAME"},
		{STRING, "item"},
		{AS, "as"},
		{STRING, "Item"},
		{NEWLINE, "\n"},
		{REPLACE, "replace"},
		{STRING, "type"},
		{LBRACE, "{"},
		{STRING, "Fruit"},
		{COLON, ":"},
		{STRING, "F"},
		{COMMA, ","},
		{STRING, "Vegetable"},
		{COLON, ":"},
		{STRING, "V"},
		{RBRACE, "}"},
		{CASE_INSENSITIVE, "Case-Insensitive"},
		{NEWLINE, "\n"},
		{DELETE, "delete"},
		{ROW, "row"},
		{NUMBER, "3"},
		{NEWLINE, "\n"},
		{DO, "do"},
		{IDENTIFIER, "validate_number"},
		{ON, "on"},
		{STRING, "price"},
		{QUIT_ON_ERROR, "quit-on-error"},
		{EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()
		require.Equal(t, tt.expectedType, tok.Type, "tests[%d] - wrong type, literal %q", i, tok.Literal)
		require.Equal(t, tt.expectedLiteral, tok.Literal, "tests[%d] - wrong literal", i)
	}
}

func TestNextToken_Positions(t *testing.T) {
	tokens := Tokenize("drop\n  clear 'x'")

	require.Len(t, tokens, 5)
	assert.Equal(t, Token{Type: DROP, Literal: "drop", Line: 1, Column: 1}, tokens[0])
	assert.Equal(t, Token{Type: CLEAR, Literal: "clear", Line: 2, Column: 3}, tokens[2])
	assert.Equal(t, Token{Type: STRING, Literal: "x", Line: 2, Column: 9}, tokens[3])
}

func TestNextToken_UnterminatedString(t *testing.T) {
	tokens := Tokenize("clear 'x\ndrop")

	require.GreaterOrEqual(t, len(tokens), 2)
	assert.Equal(t, ILLEGAL, tokens[1].Type)
	assert.Equal(t, "'x", tokens[1].Literal)
}

func TestLookupIdent(t *testing.T) {
	assert.Equal(t, DELETE_DUPLICATE_ROWS, LookupIdent("Delete-Duplicate-Rows"))
	assert.Equal(t, SUM_COL_AND_DELETE_DUPLICATE_ROWS, LookupIdent("sum-col-and-delete-duplicate-rows"))
	assert.Equal(t, IDENTIFIER, LookupIdent("set_hire_date"))
	assert.True(t, DO.IsKeyword())
	assert.False(t, STRING.IsKeyword())
}
