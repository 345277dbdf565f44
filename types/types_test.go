package types //nolint:revive // types is a valid package name

import (
	"regexp"
	"testing"
)

func TestVersion_Format(t *testing.T) {
	semverRegex := regexp.MustCompile(`^\d+\.\d+\.\d+(-[a-zA-Z0-9.]+)?$`)
	if !semverRegex.MatchString(Version) {
		t.Errorf("Version %q is not a valid semver", Version)
	}
	if ContractVersion != Version {
		t.Errorf("ContractVersion %q != Version %q", ContractVersion, Version)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeSplit, false},
		{"split", ModeSplit, false},
		{"merge", ModeMerge, false},
		{"join", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseMode(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestConfig_EffectiveBufferSize(t *testing.T) {
	tests := []struct {
		name         string
		buffer       int64
		fragmentSize int64
		want         int64
	}{
		{"default", 0, 1 << 30, DefaultBufferSize},
		{"negative means default", -1, 0, DefaultBufferSize},
		{"configured", 4096, 1 << 20, 4096},
		{"capped at fragment size", 1 << 20, 2048, 2048},
		{"default capped", 0, 1024, 1024},
		{"no cap for merges", 1 << 20, 0, 1 << 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{BufferSize: tt.buffer}
			if got := cfg.EffectiveBufferSize(tt.fragmentSize); got != tt.want {
				t.Errorf("EffectiveBufferSize(%d) = %d, want %d", tt.fragmentSize, got, tt.want)
			}
		})
	}
}

func TestPlan_Range(t *testing.T) {
	p := &Plan{Config: Config{FragmentSize: 3000}, FileSize: 10000}
	if s, e, i := p.Range(); s != 0 || e != 10000 || i != 1 {
		t.Errorf("full range = %d, %d, %d", s, e, i)
	}

	p.PartNumber = 2
	if s, e, i := p.Range(); s != 3000 || e != 6000 || i != 2 {
		t.Errorf("part 2 range = %d, %d, %d", s, e, i)
	}

	p.PartNumber = 4
	if s, e, i := p.Range(); s != 9000 || e != 10000 || i != 4 {
		t.Errorf("last part range = %d, %d, %d", s, e, i)
	}
}

func TestFragment_Size(t *testing.T) {
	if got := (Fragment{Start: 3334, End: 6668}).Size(); got != 3334 {
		t.Errorf("Size = %d, want 3334", got)
	}
}

func TestReport_Outcome(t *testing.T) {
	if got := (&Report{}).Outcome(); got != "success" {
		t.Errorf("Outcome = %q, want success", got)
	}
	if got := (&Report{Skipped: true}).Outcome(); got != "skipped" {
		t.Errorf("Outcome = %q, want skipped", got)
	}
}
