package signal

// FrequencyRange selects a half-open run of FFT bins [Start, End). Ranges are
// configured once per session and never change while a race is running.
type FrequencyRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Clamped returns a copy constrained to [0, maxBin]. A range that collapses
// (or arrives inverted) clamps to an empty range at its start so loudness
// reads as 0 instead of failing.
func (r FrequencyRange) Clamped(maxBin int) FrequencyRange {
	out := r
	if out.Start < 0 {
		out.Start = 0
	}
	if out.End > maxBin {
		out.End = maxBin
	}
	if out.End < out.Start {
		out.End = out.Start
	}
	return out
}

// Width reports the number of bins covered.
func (r FrequencyRange) Width() int {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

// Empty reports whether the range covers no bins.
func (r FrequencyRange) Empty() bool {
	return r.Width() == 0
}

// Bands holds the two control bands for the endless runner: everything below
// the division bin drives jumps, everything at or above it drives dives.
type Bands struct {
	Jump FrequencyRange `json:"jump"`
	Dive FrequencyRange `json:"dive"`
}

// SplitAt builds jump/dive bands from a single division bin over [0, maxBin).
func SplitAt(division, maxBin int) Bands {
	if maxBin < 0 {
		maxBin = 0
	}
	if division < 0 {
		division = 0
	}
	if division > maxBin {
		division = maxBin
	}
	return Bands{
		Jump: FrequencyRange{Start: 0, End: division},
		Dive: FrequencyRange{Start: division, End: maxBin},
	}
}
