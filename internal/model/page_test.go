package model

import "testing"

func TestClampPage(t *testing.T) {
	tests := []struct {
		page, limit         int
		wantPage, wantLimit int
	}{
		{0, 0, 1, DefaultLimit},
		{-3, 10, 1, 10},
		{2, 50, 2, 50},
		{1, -5, 1, 1},
		{1, 1, 1, 1},
		{1, 100, 1, 100},
		{1, 101, 1, 100},
		{4, 1000, 4, 100},
	}

	for _, tt := range tests {
		page, limit := ClampPage(tt.page, tt.limit)
		if page != tt.wantPage || limit != tt.wantLimit {
			t.Errorf("ClampPage(%d, %d) = (%d, %d), want (%d, %d)",
				tt.page, tt.limit, page, limit, tt.wantPage, tt.wantLimit)
		}
	}
}

func TestOffset(t *testing.T) {
	if got := Offset(1, 20); got != 0 {
		t.Errorf("Offset(1, 20) = %d, want 0", got)
	}
	if got := Offset(3, 25); got != 50 {
		t.Errorf("Offset(3, 25) = %d, want 50", got)
	}
}
