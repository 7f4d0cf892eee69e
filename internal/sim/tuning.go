package sim

// World pacing for the endless runner. Units match the field package: the
// boat hull is about one unit tall and the window scrolls along X.
const (
	// ScrollSpeed is world units per second; the world offset is the master
	// clock for obstacle positions and the score.
	ScrollSpeed = 6.0
	// ScoreCoefficient converts world offset into displayed score points.
	ScoreCoefficient = 10.0

	// BoatScreenX pins the boat's horizontal screen position.
	BoatScreenX = 0.0
	BoatWidth   = 1.4
	BoatHeight  = 1.8

	// MaxBins caps the frequency snapshot length accepted from clients.
	MaxBins = 1024
	// DefaultNoiseFloor rectifies ambient room noise out of the signal.
	DefaultNoiseFloor = 100
	// DefaultDivisionBin splits jump band (below) from dive band (above).
	DefaultDivisionBin = 400
)
