package types

// Fragment is one numbered output file of a split.
// Index is 1-based and contiguous; [Start, End) is the byte range of the
// original file it holds.
type Fragment struct {
	Index int    `json:"index" yaml:"index"`
	Start int64  `json:"start" yaml:"start"`
	End   int64  `json:"end" yaml:"end"`
	Path  string `json:"path" yaml:"path"`
}

// Size returns the number of bytes held by the fragment.
func (f Fragment) Size() int64 {
	return f.End - f.Start
}

// Plan is the effective configuration produced by the planner.
// Read-only once computed.
type Plan struct {
	Config

	// FileSize is the input size the plan was computed against.
	FileSize int64 `json:"file_size" yaml:"file_size"`
	// TotalParts is ceil(FileSize / FragmentSize).
	TotalParts int `json:"total_parts" yaml:"total_parts"`
	// Skip is set when the input is already smaller than one fragment.
	Skip bool `json:"skip" yaml:"skip"`
}

// Range returns the byte range and first fragment index the split covers.
// A full split covers the whole file starting at index 1; a PartNumber
// split covers only that fragment's range.
func (p *Plan) Range() (start, end int64, firstIndex int) {
	if p.PartNumber <= 0 {
		return 0, p.FileSize, 1
	}
	start = int64(p.PartNumber-1) * p.FragmentSize
	end = min(start+p.FragmentSize, p.FileSize)
	return start, end, p.PartNumber
}
