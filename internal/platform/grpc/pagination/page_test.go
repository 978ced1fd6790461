package pagination

import "testing"

func TestClampPageSize(t *testing.T) {
	cfg := PageSizeConfig{Default: 50, Max: 500}
	tests := []struct {
		value int32
		want  int
	}{
		{0, 50},
		{-3, 50},
		{10, 10},
		{900, 500},
	}
	for _, tc := range tests {
		if got := ClampPageSize(tc.value, cfg); got != tc.want {
			t.Fatalf("ClampPageSize(%d) = %d, want %d", tc.value, got, tc.want)
		}
	}
	if got := ClampPageSize(0, PageSizeConfig{}); got != 1 {
		t.Fatalf("ClampPageSize with empty config = %d, want 1", got)
	}
}

func TestNextAfter(t *testing.T) {
	if got := NextAfter(20, 10, 10); got != 20 {
		t.Fatalf("full page cursor = %d, want 20", got)
	}
	if got := NextAfter(20, 4, 10); got != 0 {
		t.Fatalf("short page cursor = %d, want 0", got)
	}
	if got := NextAfter(0, 0, 10); got != 0 {
		t.Fatalf("empty page cursor = %d, want 0", got)
	}
}
