package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/thywilljoshua/pdf-corpus/internal/extract"
)

func TestObserveExtraction(t *testing.T) {
	r := New("extract")
	r.ObserveExtraction(extract.Stats{TotalExtracted: 4, Deduplicated: 2})
	r.ObserveExtraction(extract.Stats{TotalExtracted: 1})
	if got := testutil.ToFloat64(r.Images.WithLabelValues("extracted")); got != 5 {
		t.Errorf("extracted = %v, want 5", got)
	}
	if got := testutil.ToFloat64(r.Images.WithLabelValues("deduplicated")); got != 2 {
		t.Errorf("deduplicated = %v, want 2", got)
	}
}

func TestPush(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		path = req.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := New("link")
	r.Links.WithLabelValues("figure_ref").Inc()
	if err := r.Push(context.Background(), srv.URL); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if path != "/metrics/job/link" {
		t.Errorf("pushed to %q, want /metrics/job/link", path)
	}
	if err := r.Push(context.Background(), ""); err != nil {
		t.Errorf("Push(\"\") = %v, want nil", err)
	}
}
