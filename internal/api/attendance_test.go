package api

import (
	"testing"
	"time"
)

func TestDayBounds(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	at := time.Date(2026, 8, 28, 17, 45, 12, 0, loc)

	from, to := dayBounds(at)
	if !from.Equal(time.Date(2026, 8, 28, 0, 0, 0, 0, loc)) {
		t.Fatalf("from = %v", from)
	}
	if !to.Equal(time.Date(2026, 8, 29, 0, 0, 0, 0, loc)) {
		t.Fatalf("to = %v", to)
	}
	if !from.Before(at) || !at.Before(to) {
		t.Fatal("timestamp should fall inside its own day window")
	}
}
