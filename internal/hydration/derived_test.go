package hydration

import (
	"testing"
	"time"
)

func TestProgressClamp(t *testing.T) {
	tests := []struct {
		name  string
		total int
		goal  int
		want  float64
	}{
		{name: "zero goal", total: 5000, goal: 0, want: 0},
		{name: "negative goal", total: 100, goal: -1, want: 0},
		{name: "exactly goal", total: 2000, goal: 2000, want: 100},
		{name: "over goal", total: 9000, goal: 2000, want: 100},
		{name: "partial", total: 500, goal: 2000, want: 25},
		{name: "nothing yet", total: 0, goal: 2000, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Progress(tt.total, tt.goal); got != tt.want {
				t.Fatalf("Progress(%d, %d) = %v, want %v", tt.total, tt.goal, got, tt.want)
			}
		})
	}
}

func TestRemainingAndGlasses(t *testing.T) {
	if got := Remaining(750, 2000); got != 1250 {
		t.Fatalf("expected 1250 remaining, got %d", got)
	}
	if got := Remaining(2500, 2000); got != 0 {
		t.Fatalf("expected no remaining, got %d", got)
	}
	if got := GlassesRemaining(1250); got != 5 {
		t.Fatalf("expected 5 glasses, got %d", got)
	}
	if got := GlassesRemaining(1); got != 1 {
		t.Fatalf("expected 1 glass, got %d", got)
	}
	if got := GlassesRemaining(0); got != 0 {
		t.Fatalf("expected 0 glasses, got %d", got)
	}
}

func TestDateAtLocationUsesLocalCalendarDate(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*60*60)
	value := time.Date(2026, 10, 13, 20, 0, 0, 0, time.UTC)

	got := DateAtLocation(value, jakarta)
	want := time.Date(2026, 10, 14, 0, 0, 0, 0, jakarta)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}
