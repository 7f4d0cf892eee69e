package signal

import (
	"math"
	"testing"
)

func TestAverageDegenerateRangeIsZero(t *testing.T) {
	data := []byte{10, 20, 30}
	if got := Average(data, 2, 2, 0); got != 0 {
		t.Fatalf("expected 0 for empty range, got %v", got)
	}
	if got := Average(data, 3, 1, 0); got != 0 {
		t.Fatalf("expected 0 for inverted range, got %v", got)
	}
	if got := Average(nil, 0, 4, 0); got != 0 {
		t.Fatalf("expected 0 for missing frame, got %v", got)
	}
}

func TestAverageAllZeroInputIsZero(t *testing.T) {
	data := make([]byte, 64)
	for _, noise := range []int{0, 10, 100, 254} {
		if got := Average(data, 0, len(data), noise); got != 0 {
			t.Fatalf("expected 0 for silent frame at noise=%d, got %v", noise, got)
		}
	}
}

func TestAverageStaysNormalized(t *testing.T) {
	data := make([]byte, 128)
	for i := range data {
		data[i] = byte((i * 7) % 256)
	}
	for start := 0; start < len(data); start += 13 {
		for end := start + 1; end <= len(data); end += 17 {
			for _, noise := range []int{0, 40, 120} {
				got := Average(data, start, end, noise)
				if got < 0 || got > 1 {
					t.Fatalf("Average(%d,%d,%d) = %v out of [0,1]", start, end, noise, got)
				}
			}
		}
	}
}

func TestAverageSaturatedApproachesOne(t *testing.T) {
	data := make([]byte, 32)
	for i := range data {
		data[i] = 255
	}
	if got := Average(data, 0, len(data), 0); got != 1 {
		t.Fatalf("expected 1 for saturated frame at zero floor, got %v", got)
	}
	if got := Average(data, 0, len(data), 100); got != 1 {
		t.Fatalf("saturated frame should still normalize to 1 above the floor, got %v", got)
	}
}

func TestAverageNoiseFloorScenario(t *testing.T) {
	got := Average([]byte{200, 200, 200}, 0, 3, 100)
	want := 100.0 / 155.0
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestAverageOutOfBoundsRangeClamps(t *testing.T) {
	data := []byte{255, 255}
	if got := Average(data, 0, 10, 0); got != 1 {
		t.Fatalf("expected clamped range to average in-bounds bins, got %v", got)
	}
	if got := Average(data, 5, 10, 0); got != 0 {
		t.Fatalf("expected 0 for range past the snapshot, got %v", got)
	}
}

func TestFrequencyRangeClamped(t *testing.T) {
	r := FrequencyRange{Start: -4, End: 2000}.Clamped(1024)
	if r.Start != 0 || r.End != 1024 {
		t.Fatalf("unexpected clamp result: %+v", r)
	}
	inverted := FrequencyRange{Start: 500, End: 100}.Clamped(1024)
	if !inverted.Empty() {
		t.Fatalf("inverted range should clamp to empty, got %+v", inverted)
	}
}

func TestSplitAt(t *testing.T) {
	bands := SplitAt(400, 1024)
	if bands.Jump.Start != 0 || bands.Jump.End != 400 {
		t.Fatalf("unexpected jump band: %+v", bands.Jump)
	}
	if bands.Dive.Start != 400 || bands.Dive.End != 1024 {
		t.Fatalf("unexpected dive band: %+v", bands.Dive)
	}

	edge := SplitAt(2000, 1024)
	if !edge.Dive.Empty() {
		t.Fatalf("division past the last bin should leave an empty dive band, got %+v", edge.Dive)
	}
}
