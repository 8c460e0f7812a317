package eds

import (
	"testing"
	"time"
)

func TestTimeRangeQuery(t *testing.T) {
	start := time.Date(2026, 3, 10, 11, 30, 0, 0, time.UTC)
	end := time.Date(2026, 4, 9, 12, 0, 0, 0, time.UTC)

	got := TimeRangeQuery(start, end)
	want := `(occur-in-time-range? (make-time "20260310T113000Z") (make-time "20260409T120000Z"))`
	if got != want {
		t.Fatalf("TimeRangeQuery() = %q, want %q", got, want)
	}
}

func TestTimeRangeQueryConvertsToUTC(t *testing.T) {
	// January, so New York is on standard time (UTC-5).
	ny, _ := time.LoadLocation("America/New_York")
	start := time.Date(2026, 1, 15, 7, 0, 0, 0, ny)
	end := start.Add(time.Hour)

	got := TimeRangeQuery(start, end)
	want := `(occur-in-time-range? (make-time "20260115T120000Z") (make-time "20260115T130000Z"))`
	if got != want {
		t.Fatalf("TimeRangeQuery() = %q, want %q", got, want)
	}
}
