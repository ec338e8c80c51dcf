package model

import (
	"errors"
	"fmt"
	"testing"
)

func TestParseMovementStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    MovementStatus
		wantErr bool
	}{
		{"Pending", MovementPending, false},
		{"pending", MovementPending, false},
		{"  COMPLETED ", MovementCompleted, false},
		{"cancelled", MovementCancelled, false},
		{"done", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseMovementStatus(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMovementStatus(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, ErrInvalidInput) {
			t.Errorf("ParseMovementStatus(%q) error = %v, want ErrInvalidInput", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseMovementStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMovementFilterNormalize(t *testing.T) {
	f := MovementFilter{OrderBy: "pallet_id; DROP TABLE movements", Order: "sideways", Limit: 500}
	f.Normalize()
	if f.OrderBy != OrderByOutAt {
		t.Errorf("expected order by %q, got %q", OrderByOutAt, f.OrderBy)
	}
	if f.Order != "DESC" {
		t.Errorf("expected DESC, got %q", f.Order)
	}
	if f.Page != 1 || f.Limit != MaxLimit {
		t.Errorf("expected page 1 limit %d, got page %d limit %d", MaxLimit, f.Page, f.Limit)
	}

	f = MovementFilter{OrderBy: OrderByInAt, Order: "asc"}
	f.Normalize()
	if f.OrderBy != OrderByInAt || f.Order != "ASC" {
		t.Errorf("expected in_at ASC, got %s %s", f.OrderBy, f.Order)
	}
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{fmt.Errorf("movement 3: %w", ErrNotFound), "not_found"},
		{ErrInvalidTransition, "invalid_transition"},
		{fmt.Errorf("wrapped: %w", ErrOverlappingInterval), "overlapping_interval"},
		{ErrInvalidInterval, "invalid_interval"},
		{errors.New("disk on fire"), "error"},
	}

	for _, tt := range tests {
		if got := ErrorKind(tt.err); got != tt.want {
			t.Errorf("ErrorKind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestValidCondition(t *testing.T) {
	for _, c := range []string{ConditionGood, ConditionDamaged, ConditionLost, ConditionStolen, ConditionUnfit} {
		if !ValidCondition(c) {
			t.Errorf("expected %q to be valid", c)
		}
	}
	if ValidCondition("good") {
		t.Error("condition statuses are case-sensitive")
	}
}
