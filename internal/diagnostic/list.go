package diagnostic

// Entry pairs a diagnostic with its severity.
type Entry struct {
	Diagnostic Diagnostic
	Severity   Severity
}

// List is an append-only, ordered diagnostics collection. Reporting order
// equals insertion order and nothing is deduplicated.
type List struct {
	entries  []Entry
	mustStop bool
}

// NewList creates an empty list.
func NewList() *List {
	return &List{}
}

// PushError records an error and marks the list as stopped.
func (l *List) PushError(d Diagnostic) {
	l.mustStop = true
	l.entries = append(l.entries, Entry{Diagnostic: d, Severity: SeverityError})
}

// PushWarning records a warning. It never stops the parse.
func (l *List) PushWarning(d Diagnostic) {
	l.entries = append(l.entries, Entry{Diagnostic: d, Severity: SeverityWarning})
}

// Append concatenates other onto l and ORs the stop flags.
func (l *List) Append(other *List) {
	if other == nil {
		return
	}
	l.entries = append(l.entries, other.entries...)
	l.mustStop = l.mustStop || other.mustStop
}

// MustStop reports whether an error has been pushed.
func (l *List) MustStop() bool { return l.mustStop }

// Len returns the number of entries.
func (l *List) Len() int { return len(l.entries) }

// Entries returns a copy of every entry in insertion order.
func (l *List) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Errors returns the error diagnostics in insertion order.
func (l *List) Errors() []Diagnostic {
	return l.filter(SeverityError)
}

// Warnings returns the warning diagnostics in insertion order.
func (l *List) Warnings() []Diagnostic {
	return l.filter(SeverityWarning)
}

// FirstError returns the earliest error, if any.
func (l *List) FirstError() (Diagnostic, bool) {
	for _, e := range l.entries {
		if e.Severity == SeverityError {
			return e.Diagnostic, true
		}
	}
	return Diagnostic{}, false
}

func (l *List) filter(sev Severity) []Diagnostic {
	var out []Diagnostic
	for _, e := range l.entries {
		if e.Severity == sev {
			out = append(out, e.Diagnostic)
		}
	}
	return out
}
