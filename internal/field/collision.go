package field

import "math"

// CheckCollision tests the boat against every live obstacle and returns the
// first hit. Both boxes are shrunk below their visual size so near-misses
// resolve in the player's favor. Against airborne kinds the boat's hitbox is
// lifted toward its mast, since that is the part a low-hanging obstacle
// actually clips. Pure with respect to its arguments and the obstacles'
// current derived positions.
func (f *Field) CheckCollision(boatX, boatY, boatWidth, boatHeight float64) (*Obstacle, bool) {
	for _, o := range f.obstacles {
		if boatHitsObstacle(boatX, boatY, boatWidth, boatHeight, o) {
			return o, true
		}
	}
	return nil, false
}

// boatHitsObstacle runs one forgiving AABB test between box centers.
func boatHitsObstacle(boatX, boatY, boatWidth, boatHeight float64, o *Obstacle) bool {
	hitY := boatY
	if !o.Config.FloatsOnWater {
		hitY += boatHeight * BoatHitboxLift
	}

	halfW := (boatWidth*HitboxShrink + o.Config.Width*HitboxShrink) / 2
	halfH := (boatHeight*HitboxShrink + o.Config.Height*HitboxShrink) / 2

	obstacleX := o.ScreenX + o.Config.HitboxOffsetX
	return math.Abs(boatX-obstacleX) < halfW && math.Abs(hitY-o.Y) < halfH
}
