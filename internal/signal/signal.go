package signal

// Average converts an FFT frequency-bin snapshot into a normalized [0,1]
// loudness score over the half-open bin range [start, end).
//
// Each bin amplitude is rectified against the noise floor (values at or below
// the floor contribute nothing), the rectified values are averaged, and the
// mean is scaled by the dynamic range remaining above the floor so the score
// stays comparable regardless of how aggressively the floor is tuned.
//
// A degenerate range (start >= end), an empty snapshot, or a range falling
// entirely outside the snapshot yields 0 rather than an error so per-tick
// callers stay branch-free. A missing audio frame is simply silence.
func Average(data []byte, start, end, noise int) float64 {
	if len(data) == 0 {
		return 0
	}
	if start < 0 {
		start = 0
	}
	if end > len(data) {
		end = len(data)
	}
	if start >= end {
		return 0
	}
	if noise < 0 {
		noise = 0
	} else if noise > 254 {
		noise = 254
	}

	sum := 0.0
	for i := start; i < end; i++ {
		rectified := int(data[i]) - noise
		if rectified > 0 {
			sum += float64(rectified)
		}
	}

	mean := sum / float64(end-start)
	return mean / float64(255-noise)
}
