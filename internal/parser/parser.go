package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vk/transtab/internal/command"
	"github.com/vk/transtab/internal/failure"
	"github.com/vk/transtab/internal/parser/lexer"
	"github.com/vk/transtab/internal/registry"
	"github.com/vk/transtab/internal/table"
)

// Parser is a recursive-descent parser over the token stream.
type Parser struct {
	l      *lexer.Lexer
	source string
	lines  []string

	curTok  lexer.Token
	peekTok lexer.Token
}

// New returns a parser for input. source names the input in diagnostics.
func New(source, input string) *Parser {
	p := &Parser{
		l:      lexer.New(input),
		source: source,
		lines:  strings.Split(input, "\n"),
	}
	p.nextToken()
	p.nextToken()
	return p
}

// Parse parses a whole specification. Any malformed line fails the parse.
func Parse(source, input string) ([]command.Command, error) {
	return New(source, input).ParseProgram()
}

func (p *Parser) nextToken() {
	p.curTok = p.peekTok
	p.peekTok = p.l.NextToken()
}

// ParseProgram parses commands until end of input.
func (p *Parser) ParseProgram() ([]command.Command, error) {
	var cmds []command.Command
	for {
		for p.curTok.Type == lexer.NEWLINE {
			p.nextToken()
		}
		if p.curTok.Type == lexer.EOF {
			return cmds, nil
		}

		cmd, err := p.parseCommand()
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, cmd)

		// parseCommand leaves curTok on the command's last token.
		p.nextToken()
		if p.curTok.Type != lexer.NEWLINE && p.curTok.Type != lexer.EOF {
			return nil, p.errorf(p.curTok, "unexpected %s after %q command", p.curTok, cmd.Keyword())
		}
	}
}

func (p *Parser) parseCommand() (command.Command, error) {
	switch p.curTok.Type {
	case lexer.DATES:
		return p.parseDates()
	case lexer.NEW:
		return p.parseNew()
	case lexer.CLEAR:
		col, err := p.expectString()
		if err != nil {
			return nil, err
		}
		return command.ClearColumn{Column: col}, nil
	case lexer.DELETE:
		return p.parseDelete()
	case lexer.DROP:
		return command.DropLastRow{}, nil
	case lexer.RENAME:
		return p.parseRename()
	case lexer.COPY:
		src, dest, err := p.parsePair(lexer.TO)
		if err != nil {
			return nil, err
		}
		return command.Copy{Src: src, Dest: dest}, nil
	case lexer.CUTPASTE:
		src, dest, err := p.parsePair(lexer.TO)
		if err != nil {
			return nil, err
		}
		return command.CutPaste{Src: src, Dest: dest}, nil
	case lexer.CONCATENATE:
		return p.parseConcatenate()
	case lexer.REPLACE:
		return p.parseReplace()
	case lexer.DELETE_DUPLICATE_ROWS:
		return p.parseDeleteDuplicates()
	case lexer.DELETE_ROWS_BY_COLUMN_VAL:
		return p.parseDeleteByValue()
	case lexer.SUM_COL_AND_DELETE_DUPLICATE_ROWS:
		return p.parseSumAndDedupe()
	case lexer.DO:
		return p.parseDo()
	case lexer.ILLEGAL:
		return nil, p.errorf(p.curTok, "illegal token %s", p.curTok)
	}
	return nil, p.errorf(p.curTok, "unknown command %s", p.curTok)
}

// dates = 'a', 'b'
func (p *Parser) parseDates() (command.Command, error) {
	if err := p.expectPeek(lexer.EQUALS); err != nil {
		return nil, err
	}
	cols, err := p.parseStringList()
	if err != nil {
		return nil, err
	}
	return command.DeclareDates{Columns: cols}, nil
}

// new [col] 'name'
func (p *Parser) parseNew() (command.Command, error) {
	p.skipOptional(lexer.COL)
	if err := p.expectPeek(lexer.STRING); err != nil {
		return nil, err
	}
	return command.NewColumn{Name: p.curTok.Literal}, nil
}

// delete row N | delete 'name'
func (p *Parser) parseDelete() (command.Command, error) {
	if p.peekTok.Type == lexer.ROW {
		p.nextToken()
		if err := p.expectPeek(lexer.NUMBER); err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(p.curTok.Literal)
		if err != nil || n < 1 {
			return nil, p.errorf(p.curTok, "row number must be a positive integer, got %s", p.curTok)
		}
		return command.DeleteRows{Rows: []int{n}}, nil
	}
	col, err := p.expectString()
	if err != nil {
		return nil, err
	}
	return command.DeleteColumns{Columns: []table.Ref{col}}, nil
}

// rename 'name' [as] 'new'
func (p *Parser) parseRename() (command.Command, error) {
	col, err := p.expectString()
	if err != nil {
		return nil, err
	}
	p.skipOptional(lexer.AS)
	if err := p.expectPeek(lexer.STRING); err != nil {
		return nil, err
	}
	return command.RenameColumn{Column: col, NewName: p.curTok.Literal}, nil
}

// 'src' [sep] 'dest'
func (p *Parser) parsePair(sep lexer.TokenType) (table.Ref, table.Ref, error) {
	src, err := p.expectString()
	if err != nil {
		return table.Ref{}, table.Ref{}, err
	}
	p.skipOptional(sep)
	dest, err := p.expectString()
	if err != nil {
		return table.Ref{}, table.Ref{}, err
	}
	return src, dest, nil
}

// concatenate 'a', 'b' [and] [store] [in] 'dest' [using 'joiner']
func (p *Parser) parseConcatenate() (command.Command, error) {
	sources, err := p.parseStringList()
	if err != nil {
		return nil, err
	}
	p.skipOptional(lexer.AND)
	p.skipOptional(lexer.STORE)
	p.skipOptional(lexer.IN)
	dest, err := p.expectString()
	if err != nil {
		return nil, err
	}
	cmd := command.Concatenate{Sources: sources, Dest: dest}
	if p.peekTok.Type == lexer.USING {
		p.nextToken()
		if err := p.expectPeek(lexer.STRING); err != nil {
			return nil, err
		}
		cmd.Joiner = p.curTok.Literal
	}
	return cmd, nil
}

// replace 'col' {'k':'v', ...} [case-insensitive] [default 'v']
func (p *Parser) parseReplace() (command.Command, error) {
	col, err := p.expectString()
	if err != nil {
		return nil, err
	}
	if err := p.expectPeek(lexer.LBRACE); err != nil {
		return nil, err
	}

	mapping := make(map[string]table.Value)
	for p.peekTok.Type != lexer.RBRACE {
		if err := p.expectPeek(lexer.STRING); err != nil {
			return nil, err
		}
		key := p.curTok.Literal
		if err := p.expectPeek(lexer.COLON); err != nil {
			return nil, err
		}
		if err := p.expectPeek(lexer.STRING); err != nil {
			return nil, err
		}
		mapping[key] = table.Text(p.curTok.Literal)
		p.skipOptional(lexer.COMMA)
	}
	p.nextToken()

	cmd := command.Replace{Column: col, Mapping: mapping}
	for {
		switch p.peekTok.Type {
		case lexer.CASE_INSENSITIVE:
			p.nextToken()
			cmd.CaseInsensitive = true
		case lexer.DEFAULT:
			p.nextToken()
			if err := p.expectPeek(lexer.STRING); err != nil {
				return nil, err
			}
			def := table.Text(p.curTok.Literal)
			cmd.Default = &def
		default:
			return cmd, nil
		}
	}
}

// delete-duplicate-rows [unique 'col']
func (p *Parser) parseDeleteDuplicates() (command.Command, error) {
	if p.peekTok.Type != lexer.UNIQUE {
		return command.DeleteDuplicates{}, nil
	}
	p.nextToken()
	col, err := p.expectString()
	if err != nil {
		return nil, err
	}
	return command.DeleteDuplicates{Keys: []table.Ref{col}}, nil
}

// delete-rows-by-column-val col 'name' val 'literal'
func (p *Parser) parseDeleteByValue() (command.Command, error) {
	if err := p.expectPeek(lexer.COL); err != nil {
		return nil, err
	}
	col, err := p.expectString()
	if err != nil {
		return nil, err
	}
	if err := p.expectPeek(lexer.VAL); err != nil {
		return nil, err
	}
	if err := p.expectPeek(lexer.STRING); err != nil {
		return nil, err
	}
	return command.DeleteRowsByValue{Column: col, Value: p.curTok.Literal}, nil
}

// sum-col-and-delete-duplicate-rows sum 'col' unique 'col'
func (p *Parser) parseSumAndDedupe() (command.Command, error) {
	if err := p.expectPeek(lexer.SUM); err != nil {
		return nil, err
	}
	sum, err := p.expectString()
	if err != nil {
		return nil, err
	}
	if err := p.expectPeek(lexer.UNIQUE); err != nil {
		return nil, err
	}
	unique, err := p.expectString()
	if err != nil {
		return nil, err
	}
	return command.SumAndDedupe{Sum: sum, Unique: unique}, nil
}

// do name [on 'col'] [quit-on-error]
func (p *Parser) parseDo() (command.Command, error) {
	p.nextToken()
	name := p.curTok.Literal
	if (p.curTok.Type != lexer.IDENTIFIER && !p.curTok.Type.IsKeyword()) || !registry.IsIdentifier(name) {
		return nil, p.errorf(p.curTok, "expected operation name, got %s", p.curTok)
	}
	cmd := command.Custom{Operation: name}
	if p.peekTok.Type == lexer.ON {
		p.nextToken()
		col, err := p.expectString()
		if err != nil {
			return nil, err
		}
		cmd.Column = &col
	}
	if p.peekTok.Type == lexer.QUIT_ON_ERROR {
		p.nextToken()
		cmd.QuitOnError = true
	}
	return cmd, nil
}

// 'a' [, 'b' ...]
func (p *Parser) parseStringList() ([]table.Ref, error) {
	first, err := p.expectString()
	if err != nil {
		return nil, err
	}
	refs := []table.Ref{first}
	for p.peekTok.Type == lexer.COMMA {
		p.nextToken()
		ref, err := p.expectString()
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func (p *Parser) expectString() (table.Ref, error) {
	if err := p.expectPeek(lexer.STRING); err != nil {
		return table.Ref{}, err
	}
	return table.Named(p.curTok.Literal), nil
}

func (p *Parser) expectPeek(t lexer.TokenType) error {
	if p.peekTok.Type != t {
		return p.errorf(p.peekTok, "expected %s, got %s", t, p.peekTok)
	}
	p.nextToken()
	return nil
}

func (p *Parser) skipOptional(t lexer.TokenType) {
	if p.peekTok.Type == t {
		p.nextToken()
	}
}

func (p *Parser) errorf(tok lexer.Token, format string, args ...any) error {
	e := &failure.SyntaxError{
		Source: p.source,
		Line:   tok.Line,
		Column: tok.Column,
		Msg:    fmt.Sprintf(format, args...),
	}
	if tok.Line > 0 && tok.Line <= len(p.lines) {
		e.Text = strings.TrimSpace(p.lines[tok.Line-1])
	}
	return e
}
