package context_test

import (
	"errors"
	"testing"

	cectx "github.com/easyops/contextengine/pkg/context"
)

func TestAllocate(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		identity int
		project  int
		other    int
	}{
		{"even split", 1000, 200, 500, 300},
		{"remainder goes to project", 999, 199, 501, 299},
		{"small total", 7, 1, 4, 2},
		{"zero", 0, 0, 0, 0},
		{"negative treated as zero", -5, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := cectx.Allocate(tt.total)

			if b.Identity.Allocated != tt.identity {
				t.Errorf("identity = %d, want %d", b.Identity.Allocated, tt.identity)
			}
			if b.Project.Allocated != tt.project {
				t.Errorf("project = %d, want %d", b.Project.Allocated, tt.project)
			}
			if b.Other.Allocated != tt.other {
				t.Errorf("other = %d, want %d", b.Other.Allocated, tt.other)
			}

			sum := b.Identity.Allocated + b.Project.Allocated + b.Other.Allocated
			if sum != b.Total.Allocated {
				t.Errorf("category sum = %d, total = %d", sum, b.Total.Allocated)
			}
		})
	}
}

func TestTokenBudget_TryReserve(t *testing.T) {
	b := cectx.Allocate(1000)

	if !b.TryReserve(cectx.CategoryIdentity, 150) {
		t.Fatal("expected reserve of 150 to succeed")
	}
	if b.TryReserve(cectx.CategoryIdentity, 51) {
		t.Fatal("expected reserve beyond allocation to fail")
	}
	if !b.TryReserve(cectx.CategoryIdentity, 50) {
		t.Fatal("expected reserve of exactly the remainder to succeed")
	}
	if got := b.Remaining(cectx.CategoryIdentity); got != 0 {
		t.Errorf("Remaining = %d, want 0", got)
	}

	if !b.TryReserve(cectx.CategoryOther, 10) {
		t.Fatal("expected reserve in other to succeed")
	}
	if b.Total.Used != 210 {
		t.Errorf("Total.Used = %d, want 210", b.Total.Used)
	}
}

func TestTokenBudget_TryReserveRejects(t *testing.T) {
	b := cectx.Allocate(100)

	if b.TryReserve(cectx.CategoryProject, -1) {
		t.Error("negative cost should be rejected")
	}
	if b.TryReserve(cectx.Category("bogus"), 1) {
		t.Error("unknown category should be rejected")
	}
	if b.Total.Used != 0 {
		t.Errorf("rejected reservations must not change state, Total.Used = %d", b.Total.Used)
	}
}

func TestTokenBudget_Line(t *testing.T) {
	b := cectx.Allocate(1000)
	b.TryReserve(cectx.CategoryProject, 120)

	line, err := b.Line(cectx.CategoryProject)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if line.Allocated != 500 || line.Used != 120 || line.Remaining() != 380 {
		t.Errorf("line = %+v", line)
	}

	if _, err := b.Line(cectx.Category("bogus")); !errors.Is(err, cectx.ErrUnknownCategory) {
		t.Errorf("expected ErrUnknownCategory, got %v", err)
	}
}

func TestTokenBudget_Clone(t *testing.T) {
	b := cectx.Allocate(1000)
	clone := b.Clone()
	clone.TryReserve(cectx.CategoryOther, 100)

	if b.Other.Used != 0 {
		t.Error("reserving on clone must not affect the original")
	}
}
