package workers

import (
	"runtime"
	"testing"
)

func TestCountScalesWithMultiplier(t *testing.T) {
	t.Setenv("SCANNER_WORKERS", "")
	procs := runtime.GOMAXPROCS(0)

	tests := []struct {
		name       string
		multiplier float64
		limit      int
		want       int
	}{
		{"cpu bound", 1.0, 0, procs},
		{"io bound", 2.0, 0, procs * 2},
		{"capped", 2.0, 1, 1},
		{"tiny multiplier floors at one", 0.001, 0, 1},
		{"zero multiplier floors at one", 0, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Count(tt.multiplier, tt.limit); got != tt.want {
				t.Errorf("Count(%v, %d) = %d, want %d", tt.multiplier, tt.limit, got, tt.want)
			}
		})
	}
}

func TestCountEnvOverride(t *testing.T) {
	t.Setenv("SCANNER_WORKERS", "7")
	if got := Count(1.0, 0); got != 7 {
		t.Errorf("Count with override = %d, want 7", got)
	}

	// The limit still caps an override.
	if got := Count(1.0, 3); got != 3 {
		t.Errorf("Count with capped override = %d, want 3", got)
	}
}

func TestCountIgnoresBadOverride(t *testing.T) {
	procs := runtime.GOMAXPROCS(0)
	for _, override := range []string{"0", "-2", "many"} {
		t.Setenv("SCANNER_WORKERS", override)
		if got := Count(1.0, 0); got != procs {
			t.Errorf("SCANNER_WORKERS=%q: Count = %d, want %d", override, got, procs)
		}
	}
}

func TestHelpersAgreeWithCount(t *testing.T) {
	t.Setenv("SCANNER_WORKERS", "")

	if got, want := ForCPU(0), Count(1.0, 0); got != want {
		t.Errorf("ForCPU = %d, want %d", got, want)
	}
	if got, want := ForIO(0), Count(2.0, 0); got != want {
		t.Errorf("ForIO = %d, want %d", got, want)
	}
	if got, want := ForMixed(0), Count(1.5, 0); got != want {
		t.Errorf("ForMixed = %d, want %d", got, want)
	}
	if got := ForIO(4); got > 4 {
		t.Errorf("ForIO(4) = %d, want at most 4", got)
	}
}
