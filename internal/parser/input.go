package parser

import (
	"errors"
	"fmt"

	"github.com/genv-lang/genv/internal/ast"
	"github.com/genv-lang/genv/internal/config"
	"github.com/genv-lang/genv/internal/diagnostic"
	"github.com/genv-lang/genv/internal/position"
)

// errNoMatch is the soft failure: the alternative does not apply here and
// the caller may try another one.
var errNoMatch = errors.New("no match")

// Failure is a hard failure. Its diagnostic is already recorded in the
// context and no further alternatives are tried.
type Failure struct {
	Diagnostic diagnostic.Diagnostic
}

func (f *Failure) Error() string {
	return f.Diagnostic.String()
}

// parser is the cursor over one source file.
type parser struct {
	ctx  *Context
	cfg  *config.Config
	file *position.SourceFile
	src  string
	pos  int

	// nest counts open brackets; newlines are insignificant while it is
	// positive.
	nest int

	furthest int
}

func newParser(ctx *Context, file *position.SourceFile) *parser {
	return &parser{
		ctx:  ctx,
		cfg:  ctx.config,
		file: file,
		src:  file.Content,
	}
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) peekAt(off int) byte {
	if p.pos+off >= len(p.src) {
		return 0
	}
	return p.src[p.pos+off]
}

func (p *parser) hasPrefix(s string) bool {
	return len(p.src)-p.pos >= len(s) && p.src[p.pos:p.pos+len(s)] == s
}

// fail returns the soft failure and remembers how far the parse got.
func (p *parser) fail() error {
	if p.pos > p.furthest {
		p.furthest = p.pos
	}
	return errNoMatch
}

func (p *parser) span(start int) position.Span {
	return p.file.SpanOf(start, p.pos)
}

func (p *parser) pointSpan(off int) position.Span {
	end := off + 1
	if end > len(p.src) {
		end = len(p.src)
	}
	return p.file.SpanOf(off, end)
}

// hard records an error at span and returns the hard failure.
func (p *parser) hard(span position.Span, kind diagnostic.Kind) error {
	return p.ctx.pushError(span, kind)
}

// commit escalates a soft failure into a syntax error. Hard failures and
// success pass through.
func (p *parser) commit(err error, expected string) error {
	if err == errNoMatch {
		return p.hard(p.pointSpan(p.skipBlankAhead()), diagnostic.SyntaxError{Message: "expected " + expected})
	}
	return err
}

// skipBlankAhead returns the offset of the next significant character
// without moving the cursor.
func (p *parser) skipBlankAhead() int {
	save := p.pos
	p.blank()
	off := p.pos
	p.pos = save
	return off
}

// attempt runs fn and rolls the cursor back when it fails softly. Span
// entries allocated by the failed alternative are dropped; every other
// context mutation survives.
func (p *parser) attempt(fn func() error) error {
	pos, nest, mark := p.pos, p.nest, p.ctx.NextID()
	err := fn()
	if err == errNoMatch {
		p.pos, p.nest = pos, nest
		p.ctx.prune(mark)
	}
	return err
}

func attemptValue[T any](p *parser, fn func() (T, error)) (T, error) {
	var v T
	err := p.attempt(func() error {
		var err error
		v, err = fn()
		return err
	})
	return v, err
}

// choice tries each alternative in order and returns the first that does
// not fail softly.
func choice[T any](p *parser, alts ...func() (T, error)) (T, error) {
	for _, alt := range alts {
		v, err := attemptValue(p, alt)
		if err != errNoMatch {
			return v, err
		}
	}
	var zero T
	return zero, errNoMatch
}

// separated parses elem values separated by sep. A trailing separator is
// accepted.
func separated[T any](p *parser, sep string, min int, elem func() (T, error)) ([]T, error) {
	var out []T
	for {
		v, err := attemptValue(p, elem)
		if err == errNoMatch {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		if p.sign(sep) != nil {
			break
		}
	}
	if len(out) < min {
		return nil, p.fail()
	}
	return out, nil
}

// enclosed parses open, fn and close with newlines insignificant in between.
func (p *parser) enclosed(open, close string, fn func() error) error {
	return p.enclosedWith(open, close, true, fn)
}

// enclosedWith is enclosed with a missing close committed only when
// committed is set.
func (p *parser) enclosedWith(open, close string, committed bool, fn func() error) error {
	defer func(nest int) { p.nest = nest }(p.nest)
	if err := p.sign(open); err != nil {
		return err
	}
	p.nest++
	if err := fn(); err != nil {
		return err
	}
	if err := p.sign(close); err != nil {
		return p.softUnless(committed, err, fmt.Sprintf("'%s'", close))
	}
	return nil
}

// ====== Whitespace ======

func (p *parser) hspace() {
	for !p.eof() {
		switch p.src[p.pos] {
		case ' ', '\t', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) skipComment() {
	if p.peek() != '#' {
		return
	}
	for !p.eof() && p.src[p.pos] != '\n' {
		p.pos++
	}
}

// blank skips spaces, tabs and comments, and newlines inside brackets.
func (p *parser) blank() {
	for {
		p.hspace()
		p.skipComment()
		if p.nest > 0 && p.peek() == '\n' {
			p.pos++
			continue
		}
		return
	}
}

// mark skips blanks and returns the start offset of the next token.
func (p *parser) mark() int {
	p.blank()
	return p.pos
}

// atLineBreak reports whether only blanks remain before the end of the
// line or of the input.
func (p *parser) atLineBreak() bool {
	save := p.pos
	defer func() { p.pos = save }()
	p.hspace()
	p.skipComment()
	return p.eof() || p.peek() == '\n'
}

// lineBreaks consumes the end of the current line and any following lines
// holding only blanks or comments. It leaves the cursor at the start of the
// next content line.
func (p *parser) lineBreaks() bool {
	save := p.pos
	p.hspace()
	p.skipComment()
	if p.peek() != '\n' {
		p.pos = save
		return false
	}
	p.pos++
	for {
		line := p.pos
		p.hspace()
		p.skipComment()
		if p.peek() != '\n' {
			p.pos = line
			return true
		}
		p.pos++
	}
}

// lineEnd consumes the rest of a line, including its newline.
func (p *parser) lineEnd() bool {
	save := p.pos
	p.hspace()
	p.skipComment()
	if p.eof() {
		return true
	}
	if p.peek() == '\n' {
		p.pos++
		return true
	}
	p.pos = save
	return false
}

// indentation consumes and measures leading whitespace.
func (p *parser) indentation() int {
	start := p.pos
	for !p.eof() && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
	return p.pos - start
}

// ====== Tokens ======

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentChar(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isHexDigit(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

// keyword matches a reserved word on a word boundary.
func (p *parser) keyword(name string) error {
	save := p.pos
	p.blank()
	if !p.hasPrefix(name) || isIdentChar(p.peekAt(len(name))) {
		err := p.fail()
		p.pos = save
		return err
	}
	p.pos += len(name)
	return nil
}

// sign matches punctuation. A sign made of operator characters may not be
// directly followed by an operator modifier, so `=` does not match `==`.
// `=` does not match the arrow either.
func (p *parser) sign(s string) error {
	save := p.pos
	p.blank()
	if !p.hasPrefix(s) {
		err := p.fail()
		p.pos = save
		return err
	}
	next := p.peekAt(len(s))
	if p.hasOperatorChar(s) && (p.cfg.IsOperatorModifier(next) || (s == "=" && next == '>')) {
		err := p.fail()
		p.pos = save
		return err
	}
	p.pos += len(s)
	return nil
}

func (p *parser) hasOperatorChar(s string) bool {
	for i := 0; i < len(s); i++ {
		if p.cfg.IsOperatorChar(s[i]) {
			return true
		}
	}
	return false
}

// colon matches ':' but not the identifier separator.
func (p *parser) colon() error {
	save := p.pos
	p.blank()
	if p.peek() != ':' || p.peekAt(1) == ':' {
		err := p.fail()
		p.pos = save
		return err
	}
	p.pos++
	return nil
}

// word scans an identifier-shaped word at the cursor without skipping
// blanks.
func (p *parser) word() string {
	if !isIdentStart(p.peek()) {
		return ""
	}
	start := p.pos
	for !p.eof() && isIdentChar(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos]
}

// name scans a non-keyword word.
func (p *parser) name() (string, int, error) {
	save := p.pos
	p.blank()
	start := p.pos
	w := p.word()
	if w == "" || p.cfg.IsKeyword(w) {
		p.pos = start
		err := p.fail()
		p.pos = save
		return "", 0, err
	}
	return w, start, nil
}

// identifier parses an unqualified name and allocates its identity.
func (p *parser) identifier() (*ast.Identifier, error) {
	w, start, err := p.name()
	if err != nil {
		return nil, err
	}
	span := p.span(start)
	return &ast.Identifier{Name: w, ID: p.ctx.NewIdentity(span), Span: span}, nil
}

// qualifiedName scans `a::b::c` without allocating an identity.
func (p *parser) qualifiedName() (string, int, error) {
	w, start, err := p.name()
	if err != nil {
		return "", 0, err
	}
	for p.hasPrefix(separator) && isIdentStart(p.peekAt(len(separator))) {
		save := p.pos
		p.pos += len(separator)
		next := p.word()
		if p.cfg.IsKeyword(next) {
			p.pos = save
			break
		}
		w += separator + next
	}
	return w, start, nil
}

// qualifiedIdentifier parses a possibly qualified name as one identifier.
func (p *parser) qualifiedIdentifier() (*ast.Identifier, error) {
	w, start, err := p.qualifiedName()
	if err != nil {
		return nil, err
	}
	span := p.span(start)
	return &ast.Identifier{Name: w, ID: p.ctx.NewIdentity(span), Span: span}, nil
}

// separator joins the components of qualified names and module paths.
const separator = "::"
