// Package lexer splits the textual command language into tokens.
package lexer

import (
	"fmt"
	"strings"
)

type TokenType int

const (
	// Special
	ILLEGAL TokenType = iota
	EOF
	NEWLINE

	// Literals
	IDENTIFIER // validate_number
	STRING     // 'Hire Date'
	NUMBER     // 3

	// Punctuation
	COMMA  // ,
	COLON  // :
	EQUALS // =
	LBRACE // {
	RBRACE // }

	// Keywords
	DATES
	NEW
	COL
	CLEAR
	DELETE
	ROW
	DROP
	RENAME
	AS
	COPY
	TO
	CUTPASTE
	CONCATENATE
	AND
	STORE
	IN
	USING
	REPLACE
	CASE_INSENSITIVE
	DEFAULT
	DELETE_DUPLICATE_ROWS
	UNIQUE
	DELETE_ROWS_BY_COLUMN_VAL
	VAL
	SUM_COL_AND_DELETE_DUPLICATE_ROWS
	SUM
	DO
	ON
	QUIT_ON_ERROR
)

var keywords = map[string]TokenType{
	"dates":                             DATES,
	"new":                               NEW,
	"col":                               COL,
	"clear":                             CLEAR,
	"delete":                            DELETE,
	"row":                               ROW,
	"drop":                              DROP,
	"rename":                            RENAME,
	"as":                                AS,
	"copy":                              COPY,
	"to":                                TO,
	"cutpaste":                          CUTPASTE,
	"concatenate":                       CONCATENATE,
	"and":                               AND,
	"store":                             STORE,
	"in":                                IN,
	"using":                             USING,
	"replace":                           REPLACE,
	"case-insensitive":                  CASE_INSENSITIVE,
	"default":                           DEFAULT,
	"delete-duplicate-rows":             DELETE_DUPLICATE_ROWS,
	"unique":                            UNIQUE,
	"delete-rows-by-column-val":         DELETE_ROWS_BY_COLUMN_VAL,
	"val":                               VAL,
	"sum-col-and-delete-duplicate-rows": SUM_COL_AND_DELETE_DUPLICATE_ROWS,
	"sum":                               SUM,
	"do":                                DO,
	"on":                                ON,
	"quit-on-error":                     QUIT_ON_ERROR,
}

var names = map[TokenType]string{
	ILLEGAL:    "illegal character",
	EOF:        "end of input",
	NEWLINE:    "end of line",
	IDENTIFIER: "identifier",
	STRING:     "quoted string",
	NUMBER:     "number",
	COMMA:      "','",
	COLON:      "':'",
	EQUALS:     "'='",
	LBRACE:     "'{'",
	RBRACE:     "'}'",
}

func (t TokenType) String() string {
	if n, ok := names[t]; ok {
		return n
	}
	for word, tt := range keywords {
		if tt == t {
			return "keyword " + word
		}
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// IsKeyword reports whether t is one of the language's keywords.
func (t TokenType) IsKeyword() bool {
	return t >= DATES
}

type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

func (t Token) String() string {
	switch t.Type {
	case STRING:
		return fmt.Sprintf("'%s'", t.Literal)
	case EOF, NEWLINE:
		return t.Type.String()
	}
	return fmt.Sprintf("%q", t.Literal)
}

// Lexer produces tokens from the input. Newlines are significant except
// inside braces, so a replace map may span several lines.
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	line         int
	column       int
	braces       int
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

func (l *Lexer) NextToken() Token {
	l.skipBlanks()

	tok := Token{Line: l.line, Column: l.column}

	switch l.ch {
	case '\n':
		tok.Type, tok.Literal = NEWLINE, "\n"
		l.readChar()
		l.line++
		l.column = 1
		return tok
	case ',':
		tok.Type, tok.Literal = COMMA, ","
	case ':':
		tok.Type, tok.Literal = COLON, ":"
	case '=':
		tok.Type, tok.Literal = EQUALS, "="
	case '{':
		l.braces++
		tok.Type, tok.Literal = LBRACE, "{"
	case '}':
		if l.braces > 0 {
			l.braces--
		}
		tok.Type, tok.Literal = RBRACE, "}"
	case '\'':
		lit, ok := l.readString()
		if !ok {
			tok.Type, tok.Literal = ILLEGAL, "'"+lit
			return tok
		}
		tok.Type, tok.Literal = STRING, lit
		return tok
	case 0:
		tok.Type = EOF
		return tok
	default:
		if isLetter(l.ch) {
			tok.Literal = l.readIdentifier()
			tok.Type = LookupIdent(tok.Literal)
			return tok
		}
		if isDigit(l.ch) {
			tok.Type, tok.Literal = NUMBER, l.readNumber()
			return tok
		}
		tok.Type, tok.Literal = ILLEGAL, string(l.ch)
	}

	l.readChar()
	return tok
}

// skipBlanks skips spaces, tabs, carriage returns and comments. Newlines
// are skipped only inside braces.
func (l *Lexer) skipBlanks() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r':
			l.readChar()
		case l.ch == '#':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		case l.ch == '\n' && l.braces > 0:
			l.readChar()
			l.line++
			l.column = 1
		default:
			return
		}
	}
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '-' {
		l.readChar()
	}
	return l.input[position:l.position]
}

func (l *Lexer) readNumber() string {
	position := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readString consumes a single-quoted literal. Literals end at the closing
// quote and may not span lines.
func (l *Lexer) readString() (string, bool) {
	position := l.position + 1
	for {
		l.readChar()
		if l.ch == '\'' {
			lit := l.input[position:l.position]
			l.readChar()
			return lit, true
		}
		if l.ch == '\n' || l.ch == 0 {
			return l.input[position:l.position], false
		}
	}
}

// LookupIdent maps a word to its keyword type, ignoring case.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[strings.ToLower(ident)]; ok {
		return tok
	}
	return IDENTIFIER
}

// Tokenize returns every token of input, EOF included.
func Tokenize(input string) []Token {
	l := New(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens
		}
	}
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
