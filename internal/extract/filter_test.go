package extract

import "testing"

func TestFilterBoundaries(t *testing.T) {
	f := DefaultFilter()
	tests := []struct {
		name       string
		w, h, size int
		want       Rejection
	}{
		{"minimum dimensions pass", 100, 100, 5 * 1024, Accepted},
		{"narrow", 99, 500, 50000, TooSmall},
		{"short", 500, 99, 50000, TooSmall},
		{"aspect at ceiling", 1000, 100, 50000, Accepted},
		{"aspect above ceiling", 1001, 100, 50000, AspectRatio},
		{"tall aspect above ceiling", 100, 1001, 50000, AspectRatio},
		{"size at floor", 300, 300, 5120, Accepted},
		{"size below floor", 300, 300, 5119, FileSize},
		{"small wins over size", 10, 10, 0, TooSmall},
	}
	for _, tt := range tests {
		if got := f.Check(tt.w, tt.h, tt.size); got != tt.want {
			t.Errorf("%s: Check(%d, %d, %d) = %v, want %v", tt.name, tt.w, tt.h, tt.size, got, tt.want)
		}
	}
}

func TestFilterAcceptsTallies(t *testing.T) {
	f := DefaultFilter()
	var stats Stats
	f.Accepts(50, 50, 10000, &stats)
	f.Accepts(2000, 100, 10000, &stats)
	f.Accepts(200, 200, 100, &stats)
	if !f.Accepts(200, 200, 10000, &stats) {
		t.Errorf("Accepts(200, 200, 10000) = false, want true")
	}
	want := Stats{FilteredTooSmall: 1, FilteredAspectRatio: 1, FilteredFileSize: 1}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
}

func TestDeduper(t *testing.T) {
	var stats Stats
	d := NewDeduper(&stats)
	if d.Seen("a") {
		t.Errorf("first Seen(a) = true, want false")
	}
	if !d.Seen("a") {
		t.Errorf("second Seen(a) = false, want true")
	}
	if d.Seen("b") {
		t.Errorf("first Seen(b) = true, want false")
	}
	if stats.Deduplicated != 1 {
		t.Errorf("Deduplicated = %d, want 1", stats.Deduplicated)
	}
	if d.Len() != 2 {
		t.Errorf("Len = %d, want 2", d.Len())
	}
}
