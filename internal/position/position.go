// Package position provides source position tracking for the genv front end.
// Spans are attached to every node identity and every diagnostic, and the
// SourceMap doubles as the registry of every file a parse has loaded.
package position

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Position represents a single point in source code
type Position struct {
	Filename string // Source file name
	Line     int    // 1-based line number
	Column   int    // 1-based column number
	Offset   int    // 0-based byte offset in source
}

// IsValid returns true if the position is valid
func (p Position) IsValid() bool {
	return p.Line > 0 && p.Column > 0 && p.Offset >= 0
}

// String returns a string representation of the position
func (p Position) String() string {
	if p.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", filepath.Base(p.Filename), p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Before returns true if this position comes before other
func (p Position) Before(other Position) bool {
	if p.Filename != other.Filename {
		return p.Filename < other.Filename
	}
	return p.Offset < other.Offset
}

// After returns true if this position comes after other
func (p Position) After(other Position) bool {
	if p.Filename != other.Filename {
		return p.Filename > other.Filename
	}
	return p.Offset > other.Offset
}

// Span represents a range of source code between two positions.
// Spans are immutable values.
type Span struct {
	Start Position // Starting position (inclusive)
	End   Position // Ending position (exclusive)
}

// IsValid returns true if the span is valid
func (s Span) IsValid() bool {
	return s.Start.IsValid() && s.End.IsValid() &&
		s.Start.Filename == s.End.Filename &&
		s.Start.Offset <= s.End.Offset
}

// String returns a string representation of the span
func (s Span) String() string {
	prefix := ""
	if s.Start.Filename != "" {
		prefix = filepath.Base(s.Start.Filename) + ":"
	}
	if s.Start.Line == s.End.Line {
		return fmt.Sprintf("%s%d:%d-%d", prefix, s.Start.Line, s.Start.Column, s.End.Column)
	}
	return fmt.Sprintf("%s%d:%d-%d:%d", prefix, s.Start.Line, s.Start.Column, s.End.Line, s.End.Column)
}

// Line returns the line the span starts on.
func (s Span) Line() int { return s.Start.Line }

// Column returns the column the span starts on.
func (s Span) Column() int { return s.Start.Column }

// Len returns the length of the span in bytes
func (s Span) Len() int {
	if !s.IsValid() {
		return 0
	}
	return s.End.Offset - s.Start.Offset
}

// Contains returns true if the span contains the given position
func (s Span) Contains(pos Position) bool {
	if !s.IsValid() || !pos.IsValid() {
		return false
	}
	if s.Start.Filename != pos.Filename {
		return false
	}
	return s.Start.Offset <= pos.Offset && pos.Offset < s.End.Offset
}

// Between returns the span running from the start of s to the end of to.
func (s Span) Between(to Span) Span {
	return Span{Start: s.Start, End: to.End}
}

// Union returns a span that encompasses both this span and other
func (s Span) Union(other Span) Span {
	if !s.IsValid() {
		return other
	}
	if !other.IsValid() {
		return s
	}
	if s.Start.Filename != other.Start.Filename {
		return s // Cannot union spans from different files
	}

	start := s.Start
	if other.Start.Before(start) {
		start = other.Start
	}

	end := s.End
	if other.End.After(end) {
		end = other.End
	}

	return Span{Start: start, End: end}
}

// SourceFile represents a source file with content and position tracking
type SourceFile struct {
	Filename string   // File path
	Content  string   // Source code content
	Lines    []string // Lines of source code for efficient access

	lineStarts []int
}

// NewSourceFile creates a new source file from content
func NewSourceFile(filename, content string) *SourceFile {
	starts := []int{0}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &SourceFile{
		Filename:   filename,
		Content:    content,
		Lines:      strings.Split(content, "\n"),
		lineStarts: starts,
	}
}

// GetLine returns the specified line (1-based) or empty string if invalid
func (sf *SourceFile) GetLine(lineNum int) string {
	if lineNum < 1 || lineNum > len(sf.Lines) {
		return ""
	}
	return strings.TrimSuffix(sf.Lines[lineNum-1], "\r")
}

// GetSpanText returns the text covered by the span
func (sf *SourceFile) GetSpanText(span Span) string {
	if !span.IsValid() || span.Start.Filename != sf.Filename {
		return ""
	}
	if span.Start.Offset > len(sf.Content) || span.End.Offset > len(sf.Content) {
		return ""
	}
	return sf.Content[span.Start.Offset:span.End.Offset]
}

// PositionFromOffset converts a byte offset to a Position
func (sf *SourceFile) PositionFromOffset(offset int) Position {
	if offset < 0 || offset > len(sf.Content) {
		return Position{}
	}

	// index of the last line starting at or before offset
	line := sort.Search(len(sf.lineStarts), func(i int) bool {
		return sf.lineStarts[i] > offset
	}) - 1

	return Position{
		Filename: sf.Filename,
		Line:     line + 1,
		Column:   offset - sf.lineStarts[line] + 1,
		Offset:   offset,
	}
}

// SpanOf brackets the byte range [start, end) and trims surrounding
// whitespace from both ends. A range holding only whitespace collapses to
// an empty span at start.
func (sf *SourceFile) SpanOf(start, end int) Span {
	if end > len(sf.Content) {
		end = len(sf.Content)
	}
	if start > end {
		start = end
	}
	trimmedStart, trimmedEnd := start, end
	for trimmedStart < trimmedEnd && isSpace(sf.Content[trimmedStart]) {
		trimmedStart++
	}
	for trimmedEnd > trimmedStart && isSpace(sf.Content[trimmedEnd-1]) {
		trimmedEnd--
	}
	if trimmedStart == trimmedEnd {
		trimmedStart, trimmedEnd = start, start
	}
	return Span{
		Start: sf.PositionFromOffset(trimmedStart),
		End:   sf.PositionFromOffset(trimmedEnd),
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// SourceMap is the registry of loaded files, keyed by path and kept in
// load order.
type SourceMap struct {
	files map[string]*SourceFile
	order []string
}

// NewSourceMap creates a new source map
func NewSourceMap() *SourceMap {
	return &SourceMap{
		files: make(map[string]*SourceFile),
	}
}

// AddFile adds a source file to the map. Re-adding a path replaces its
// content but keeps its original position in the load order.
func (sm *SourceMap) AddFile(filename, content string) *SourceFile {
	file := NewSourceFile(filename, content)
	if _, ok := sm.files[filename]; !ok {
		sm.order = append(sm.order, filename)
	}
	sm.files[filename] = file
	return file
}

// GetFile returns the source file for the given filename
func (sm *SourceMap) GetFile(filename string) *SourceFile {
	return sm.files[filename]
}

// Merge copies every file of other into sm.
func (sm *SourceMap) Merge(other *SourceMap) {
	if other == nil {
		return
	}
	for _, path := range other.order {
		if _, ok := sm.files[path]; !ok {
			sm.order = append(sm.order, path)
		}
		sm.files[path] = other.files[path]
	}
}

// Paths returns every registered path in load order.
func (sm *SourceMap) Paths() []string {
	out := make([]string, len(sm.order))
	copy(out, sm.order)
	return out
}

// Len returns the number of registered files.
func (sm *SourceMap) Len() int { return len(sm.order) }

// GetSpanText returns the text covered by the span across all files
func (sm *SourceMap) GetSpanText(span Span) string {
	file := sm.GetFile(span.Start.Filename)
	if file == nil {
		return ""
	}
	return file.GetSpanText(span)
}

// GetLine returns the specified line from the appropriate file
func (sm *SourceMap) GetLine(pos Position) string {
	file := sm.GetFile(pos.Filename)
	if file == nil {
		return ""
	}
	return file.GetLine(pos.Line)
}
