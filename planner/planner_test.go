package planner

import (
	"errors"
	"testing"

	"github.com/pithecene-io/splimer/types"
)

func TestPlan_PartsOverrideFragmentSize(t *testing.T) {
	cfg := types.Config{Mode: types.ModeSplit, FragmentSize: types.DefaultFragmentSize, Parts: 3}

	plan, err := Plan(cfg, 10000)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if plan.FragmentSize != 3334 {
		t.Errorf("FragmentSize = %d, want 3334", plan.FragmentSize)
	}
	if plan.TotalParts != 3 {
		t.Errorf("TotalParts = %d, want 3", plan.TotalParts)
	}
	if plan.Skip {
		t.Error("expected Skip=false")
	}
	if cfg.FragmentSize != types.DefaultFragmentSize {
		t.Error("Plan must not mutate the caller's Config")
	}
}

func TestPlan_ExplicitFragmentSize(t *testing.T) {
	plan, err := Plan(types.Config{FragmentSize: 4096}, 10000)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if plan.FragmentSize != 4096 || plan.TotalParts != 3 {
		t.Errorf("got size=%d parts=%d, want 4096/3", plan.FragmentSize, plan.TotalParts)
	}
}

func TestPlan_ExactMultiple(t *testing.T) {
	plan, err := Plan(types.Config{FragmentSize: 1024}, 4096)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if plan.TotalParts != 4 {
		t.Errorf("TotalParts = %d, want 4", plan.TotalParts)
	}
}

func TestPlan_SkipWhenSmallerThanFragment(t *testing.T) {
	plan, err := Plan(types.Config{FragmentSize: 4096}, 4095)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if !plan.Skip {
		t.Error("expected Skip=true for file smaller than fragment size")
	}
}

func TestPlan_EqualSizeIsNotSkipped(t *testing.T) {
	plan, err := Plan(types.Config{FragmentSize: 4096}, 4096)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if plan.Skip {
		t.Error("file exactly one fragment long should still be split")
	}
	if plan.TotalParts != 1 {
		t.Errorf("TotalParts = %d, want 1", plan.TotalParts)
	}
}

func TestPlan_SkipIgnoresPartNumber(t *testing.T) {
	plan, err := Plan(types.Config{FragmentSize: 4096, PartNumber: 9}, 100)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if !plan.Skip {
		t.Error("expected Skip=true")
	}
}

func TestPlan_Errors(t *testing.T) {
	tests := []struct {
		name     string
		cfg      types.Config
		fileSize int64
		want     error
	}{
		{"fragment too small", types.Config{FragmentSize: 1023}, 10000, ErrFragmentSizeTooSmall},
		{"parts yield too small fragments", types.Config{FragmentSize: 4096, Parts: 20}, 10000, ErrFragmentSizeTooSmall},
		{"parts on empty file", types.Config{Parts: 2}, 0, ErrFragmentSizeTooSmall},
		{"one part", types.Config{FragmentSize: 4096, Parts: 1}, 10000, ErrTooFewParts},
		{"negative parts", types.Config{FragmentSize: 4096, Parts: -3}, 10000, ErrTooFewParts},
		{"part number beyond total", types.Config{FragmentSize: 4096, PartNumber: 4}, 10000, ErrPartNumberOutOfRange},
		{"negative part number", types.Config{FragmentSize: 4096, PartNumber: -1}, 10000, ErrPartNumberOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Plan(tt.cfg, tt.fileSize)
			if err == nil {
				t.Fatalf("expected error, got plan %+v", plan)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.want)
			}
			var pe *Error
			if !errors.As(err, &pe) {
				t.Errorf("expected *Error, got %T", err)
			}
		})
	}
}

func TestPlan_LastPartNumberAccepted(t *testing.T) {
	plan, err := Plan(types.Config{FragmentSize: 4096, PartNumber: 3}, 10000)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	start, end, first := plan.Range()
	if start != 8192 || end != 10000 || first != 3 {
		t.Errorf("Range() = %d, %d, %d; want 8192, 10000, 3", start, end, first)
	}
}

func TestPlan_FullRange(t *testing.T) {
	plan, err := Plan(types.Config{FragmentSize: 4096}, 10000)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	start, end, first := plan.Range()
	if start != 0 || end != 10000 || first != 1 {
		t.Errorf("Range() = %d, %d, %d; want 0, 10000, 1", start, end, first)
	}
}

func TestCeilDiv(t *testing.T) {
	tests := []struct{ a, b, want int64 }{
		{0, 3, 0},
		{1, 3, 1},
		{3, 3, 1},
		{10000, 3, 3334},
		{10000, 4096, 3},
	}
	for _, tt := range tests {
		if got := CeilDiv(tt.a, tt.b); got != tt.want {
			t.Errorf("CeilDiv(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  types.Config
		want error
	}{
		{"defaults", types.Config{FragmentSize: types.DefaultFragmentSize}, nil},
		{"parts", types.Config{FragmentSize: types.DefaultFragmentSize, Parts: 2}, nil},
		{"one part", types.Config{FragmentSize: types.DefaultFragmentSize, Parts: 1}, ErrTooFewParts},
		{"negative parts", types.Config{FragmentSize: types.DefaultFragmentSize, Parts: -1}, ErrTooFewParts},
		{"fragment too small", types.Config{FragmentSize: 12}, ErrFragmentSizeTooSmall},
		{"merge too small", types.Config{Mode: types.ModeMerge, FragmentSize: 12}, ErrFragmentSizeTooSmall},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.cfg)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("Validate error = %v, want %v", err, tt.want)
			}
		})
	}
}
