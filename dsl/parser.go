package dsl

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	// Color must precede HashComment so #accbf2 lexes as a color,
	// and Number folds unit suffixes into a single token.
	sceneLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{3}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{8})`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `-?(?:\d+\.\d+|\d+)(?:px|pt|mm|in|%|x)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[][(),.=+\-*/%<>!?;:]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	sceneParser = participle.MustBuild[Scene](
		participle.Lexer(sceneLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
	)
)

// Parse reads a scene from r and returns its AST.
func Parse(r io.Reader) (*Scene, error) {
	return sceneParser.Parse("", r)
}

// ParseString parses scene source held in a string.
func ParseString(input string) (*Scene, error) {
	return sceneParser.ParseString("", input)
}

// Scene is the root AST node for a Fresco scene file.
type Scene struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Name     string         `parser:"Newline* 'scene' @Ident"`
	Version  string         `parser:"@Ident"`
	Sections []*Section     `parser:"'{' Newline* ( @@ Newline* )* '}' Newline*"`
}

// Section represents a top-level section (meta/canvas/resources/layers/table).
type Section struct {
	Meta      *MetaSection      `parser:"  @@"`
	Canvas    *CanvasSection    `parser:"| @@"`
	Resources *ResourcesSection `parser:"| @@"`
	Layers    *LayersSection    `parser:"| @@"`
	Table     *TableSection     `parser:"| @@"`
}

// Kind returns the human-readable section type.
func (s *Section) Kind() string {
	switch {
	case s == nil:
		return "unknown"
	case s.Meta != nil:
		return "meta"
	case s.Canvas != nil:
		return "canvas"
	case s.Resources != nil:
		return "resources"
	case s.Layers != nil:
		return "layers"
	case s.Table != nil:
		return "table"
	default:
		return "unknown"
	}
}

// MetaSection captures metadata assignments.
type MetaSection struct {
	Block *Block `parser:"'meta' @@"`
}

// CanvasSection declares the pixel canvas and its background gradient.
type CanvasSection struct {
	Spec  CanvasSpec `parser:"'canvas' @@"`
	Block *Block     `parser:"( Newline* @@ )?"`
}

// CanvasSpec stores header tokens (eg: preset name, width/height overrides).
type CanvasSpec struct {
	Preset string    `parser:"@Ident"`
	Params []*Lexeme `parser:"@@*"`
}

// ResourcesSection groups resource declarations.
type ResourcesSection struct {
	Block *Block `parser:"'resources' @@"`
}

// LayersSection lists compositing operations in draw order.
type LayersSection struct {
	Block *Block `parser:"'layers' @@"`
}

// TableSection describes the data table drawn after the layer queue.
type TableSection struct {
	Args  []*Lexeme `parser:"'table' @@*"`
	Block *Block    `parser:"( Newline* @@ )?"`
}

// Block is a brace-delimited statement list. Statements end at
// newlines or semicolons.
type Block struct {
	Statements []*Statement `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Statement is a single line inside a block: a `key: value`
// assignment or a command with positional arguments.
type Statement struct {
	Assignment *Assignment `parser:"  @@"`
	Command    *Command    `parser:"| @@"`
}

// Assignment binds a value to a property name.
type Assignment struct {
	Key   string `parser:"@Ident"`
	Value *Value `parser:"':' Newline* @@"`
}

// Command is a named instruction with argument lexemes and an
// optional nested block.
type Command struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Name  string         `parser:"@Ident"`
	Args  []*Lexeme      `parser:"@@*"`
	Block *Block         `parser:"( Newline* @@ )?"`
}

// Value is the right-hand side of an assignment.
type Value struct {
	String *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Color  *string        `parser:"| @Color"`
	Array  *ArrayValue    `parser:"| @@"`
	Expr   *Expression    `parser:"| @@"`
}

// ArrayValue is a `[ ... ]` list whose elements may span lines.
type ArrayValue struct {
	Values []*Value `parser:"'[' Newline* ( @@ ( (',' | ';' | Newline+) Newline* @@ )* )? Newline* ']'"`
}

// Expression collects raw lexemes that the layout stage evaluates
// later, such as data paths and arithmetic.
type Expression struct {
	Parts []*Lexeme
}

// Parse consumes lexemes until a terminator outside any bracket or
// paren nesting. It implements participle.Parseable.
func (e *Expression) Parse(lex *lexer.PeekingLexer) error {
	var depth exprDepth
	var parts []*Lexeme
	for {
		if endsExpression(lex.Peek(), depth) {
			break
		}
		lexeme, err := takeLexeme(lex)
		if err != nil {
			return err
		}
		depth.observe(lexeme.Raw)
		parts = append(parts, lexeme)
	}
	if len(parts) == 0 {
		return participle.NextMatch
	}
	e.Parts = parts
	return nil
}

// Lexeme is one source token. Value holds the unquoted text for
// strings while Raw always keeps the original spelling.
type Lexeme struct {
	Type  string         `json:"type"`
	Value string         `json:"value"`
	Raw   string         `json:"raw"`
	Pos   lexer.Position `json:"-"`
}

// Parse captures a single argument lexeme, refusing tokens that end
// an argument list. It implements participle.Parseable.
func (l *Lexeme) Parse(lex *lexer.PeekingLexer) error {
	if endsArgList(lex.Peek()) {
		return participle.NextMatch
	}
	lexeme, err := takeLexeme(lex)
	if err != nil {
		return err
	}
	*l = *lexeme
	return nil
}

// StringLiteral is a double-quoted string, unquoted during capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("empty string capture")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// tokenIDSet caches the token types the hand-written Parse methods
// recognize by identity.
type tokenIDSet struct {
	newline lexer.TokenType
	lbrace  lexer.TokenType
	rbrace  lexer.TokenType
	symbol  lexer.TokenType
	str     lexer.TokenType
}

var tokenIDs = resolveTokenIDs()

func resolveTokenIDs() tokenIDSet {
	symbols := sceneLexer.Symbols()
	get := func(name string) lexer.TokenType {
		tt, ok := symbols[name]
		if !ok {
			panic("lexer rule " + name + " missing")
		}
		return tt
	}
	return tokenIDSet{
		newline: get("Newline"),
		lbrace:  get("LBrace"),
		rbrace:  get("RBrace"),
		symbol:  get("Symbol"),
		str:     get("String"),
	}
}

// tokenNames maps token types back to rule names for Lexeme.Type.
var tokenNames = func() map[lexer.TokenType]string {
	names := make(map[lexer.TokenType]string)
	for name, tt := range sceneLexer.Symbols() {
		names[tt] = name
	}
	return names
}()

// takeLexeme consumes the next token and converts it to a Lexeme,
// unquoting strings into Value while Raw keeps the source text.
func takeLexeme(lex *lexer.PeekingLexer) (*Lexeme, error) {
	tok := lex.Next()
	if tok.EOF() {
		return nil, participle.NextMatch
	}
	name, ok := tokenNames[tok.Type]
	if !ok {
		name = fmt.Sprintf("#%d", tok.Type)
	}
	value := tok.Value
	if tok.Type == tokenIDs.str {
		unquoted, err := strconv.Unquote(tok.Value)
		if err != nil {
			return nil, err
		}
		value = unquoted
	}
	return &Lexeme{Type: name, Value: value, Raw: tok.Value, Pos: tok.Pos}, nil
}

// endsArgList reports whether tok terminates a command argument list.
func endsArgList(tok *lexer.Token) bool {
	if tok == nil || tok.EOF() {
		return true
	}
	switch tok.Type {
	case tokenIDs.newline, tokenIDs.lbrace, tokenIDs.rbrace:
		return true
	case tokenIDs.symbol:
		return tok.Value == ";"
	}
	return false
}

// exprDepth tracks paren and bracket nesting while scanning an
// expression.
type exprDepth struct {
	paren   int
	bracket int
}

func (d *exprDepth) observe(raw string) {
	switch raw {
	case "(":
		d.paren++
	case ")":
		if d.paren > 0 {
			d.paren--
		}
	case "[":
		d.bracket++
	case "]":
		if d.bracket > 0 {
			d.bracket--
		}
	}
}

func (d exprDepth) top() bool { return d.paren == 0 && d.bracket == 0 }

// endsExpression reports whether tok terminates an expression at the
// current depth. `]` closes an enclosing array even inside parens.
func endsExpression(tok *lexer.Token, d exprDepth) bool {
	if tok == nil || tok.EOF() {
		return true
	}
	switch tok.Type {
	case tokenIDs.newline, tokenIDs.lbrace, tokenIDs.rbrace:
		return d.top()
	case tokenIDs.symbol:
		switch tok.Value {
		case ";", ",":
			return d.top()
		case "]":
			return d.bracket == 0
		}
	}
	return false
}
