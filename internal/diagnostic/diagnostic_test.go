package diagnostic

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/genv-lang/genv/internal/position"
)

func TestPushErrorSetsMustStop(t *testing.T) {
	l := NewList()
	l.PushWarning(New(position.Span{}, SyntaxError{Message: "w"}))
	if l.MustStop() {
		t.Fatalf("warning must not stop the list")
	}

	l.PushError(New(position.Span{}, UnexpectedToken{}))
	if !l.MustStop() {
		t.Fatalf("error must stop the list")
	}
	if l.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", l.Len())
	}
}

func TestAppendPreservesOrderAndOrsStop(t *testing.T) {
	parent := NewList()
	parent.PushWarning(New(position.Span{}, SyntaxError{Message: "first"}))

	child := NewList()
	child.PushWarning(New(position.Span{}, SyntaxError{Message: "second"}))
	child.PushError(New(position.Span{}, FileNotFound{Path: "x.gv"}))

	parent.Append(child)

	if !parent.MustStop() {
		t.Errorf("expected stop flag to propagate from child")
	}
	entries := parent.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	want := []string{"SYNTAX_ERROR", "SYNTAX_ERROR", "FILE_NOT_FOUND"}
	for i, e := range entries {
		if e.Diagnostic.Kind.Code() != want[i] {
			t.Errorf("entry %d: expected %s, got %s", i, want[i], e.Diagnostic.Kind.Code())
		}
	}
	if entries[2].Severity != SeverityError {
		t.Errorf("expected last entry to be an error")
	}

	calm := NewList()
	calm.Append(NewList())
	if calm.MustStop() {
		t.Errorf("appending two clean lists must not stop")
	}
}

func TestDuplicatesAreKept(t *testing.T) {
	l := NewList()
	d := New(position.Span{}, DuplicatedOperator{Lexeme: "++"})
	l.PushError(d)
	l.PushError(d)
	if got := len(l.Errors()); got != 2 {
		t.Errorf("expected 2 errors, got %d", got)
	}
	first, ok := l.FirstError()
	if !ok || first.Kind != (DuplicatedOperator{Lexeme: "++"}) {
		t.Errorf("unexpected first error %v", first)
	}
}

func TestKindStrings(t *testing.T) {
	tests := []struct {
		kind Kind
		code string
		text string
	}{
		{FileNotFound{Path: "lib/foo.gv"}, "FILE_NOT_FOUND", "lib/foo.gv"},
		{UnexpectedToken{}, "UNEXPECTED_TOKEN", "unexpected token"},
		{SyntaxError{Message: "expected ')'"}, "SYNTAX_ERROR", "expected ')'"},
		{UnknownIdentifier{}, "UNKNOWN_IDENTIFIER", "unknown identifier"},
		{ModuleNotFound{Path: "m"}, "MODULE_NOT_FOUND", "module not found"},
		{DuplicatedOperator{Lexeme: "<>"}, "DUPLICATED_OPERATOR", "<>"},
		{OutOfBounds{Got: 300, Expected: 255}, "OUT_OF_BOUNDS", "got 300"},
		{OrphanSignature{Name: "f"}, "ORPHAN_SIGNATURE", "f"},
		{TypeConflict{Expected: "int", Got: "string"}, "TYPE_CONFLICT", "expected int"},
		{UnresolvedType{Type: "T"}, "UNRESOLVED_TYPE", "T"},
		{NoMain{}, "NO_MAIN", "no main"},
		{NoError{}, "NO_ERROR", "no error"},
	}

	for _, tt := range tests {
		if tt.kind.Code() != tt.code {
			t.Errorf("%T: code %s, want %s", tt.kind, tt.kind.Code(), tt.code)
		}
		if !strings.Contains(tt.kind.String(), tt.text) {
			t.Errorf("%T: %q does not contain %q", tt.kind, tt.kind.String(), tt.text)
		}
	}
}

func TestErrorWrapping(t *testing.T) {
	sf := position.NewSourceFile("main.gv", "mod foo")
	d := New(sf.SpanOf(0, 7), FileNotFound{Path: "foo.gv"})

	err := fmt.Errorf("parse failed: %w", AsError(d))

	var diagErr *Error
	if !errors.As(err, &diagErr) {
		t.Fatalf("expected *Error in chain")
	}
	if diagErr.Diagnostic.Kind.Code() != "FILE_NOT_FOUND" {
		t.Errorf("unexpected kind %v", diagErr.Diagnostic.Kind)
	}
	if !strings.HasPrefix(diagErr.Error(), "main.gv:1:1-8") {
		t.Errorf("unexpected message %q", diagErr.Error())
	}
	if Empty().Kind.Code() != "NO_ERROR" {
		t.Errorf("Empty() must carry the success sentinel")
	}
}
