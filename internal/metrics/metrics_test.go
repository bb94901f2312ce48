package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/genv-lang/genv/internal/diagnostic"
	"github.com/genv-lang/genv/internal/position"
)

func TestRecordParse(t *testing.T) {
	registry := prometheus.NewRegistry()
	c := NewCollector(registry)

	diags := diagnostic.NewList()
	diags.PushWarning(diagnostic.New(position.Span{}, diagnostic.SyntaxError{Message: "old version"}))
	diags.PushError(diagnostic.New(position.Span{}, diagnostic.FileNotFound{Path: "/src/foo.gv"}))

	c.RecordParse(true, 2, nil, 3*time.Millisecond)
	c.RecordParse(false, 1, diags, time.Millisecond)

	if got := testutil.ToFloat64(c.parses.WithLabelValues("ok")); got != 1 {
		t.Errorf("expected 1 successful parse, got %v", got)
	}
	if got := testutil.ToFloat64(c.parses.WithLabelValues("error")); got != 1 {
		t.Errorf("expected 1 failed parse, got %v", got)
	}
	if got := testutil.ToFloat64(c.files); got != 3 {
		t.Errorf("expected 3 files, got %v", got)
	}
	if got := testutil.ToFloat64(c.diagnostics.WithLabelValues("error", "FILE_NOT_FOUND")); got != 1 {
		t.Errorf("expected 1 FILE_NOT_FOUND error, got %v", got)
	}
	if got := testutil.ToFloat64(c.diagnostics.WithLabelValues("warning", "SYNTAX_ERROR")); got != 1 {
		t.Errorf("expected 1 SYNTAX_ERROR warning, got %v", got)
	}
	if got := testutil.CollectAndCount(c.duration); got != 1 {
		t.Errorf("expected the duration histogram to be collected once, got %d", got)
	}
}

func TestNewCollectorDefaultRegistry(t *testing.T) {
	c := NewCollector(nil)
	if c.Registry() == nil {
		t.Fatal("expected a registry")
	}
}

func TestHandler(t *testing.T) {
	c := NewCollector(nil)
	c.RecordParse(true, 1, nil, time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, "genv_parser_parses_total") {
		t.Errorf("expected the parse counter in the output, got:\n%s", body)
	}
}
