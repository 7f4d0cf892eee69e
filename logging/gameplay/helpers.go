package gameplay

import (
	"context"

	"wakerunner/server/logging"
)

const (
	// EventRaceStarted is emitted when a run or two-lane round begins.
	EventRaceStarted logging.EventType = "gameplay.race_started"
	// EventActionTriggered is emitted when a jump or dive fires.
	EventActionTriggered logging.EventType = "gameplay.action_triggered"
	// EventObstacleSpawned is emitted when the field spawns an obstacle.
	EventObstacleSpawned logging.EventType = "gameplay.obstacle_spawned"
	// EventCollision is emitted when the boat hits an obstacle.
	EventCollision logging.EventType = "gameplay.collision"
	// EventRaceFinished is emitted when a two-lane round reports a winner.
	EventRaceFinished logging.EventType = "gameplay.race_finished"
	// EventHighScore is emitted when a run sets a new persisted high score.
	EventHighScore logging.EventType = "gameplay.high_score"
)

type RaceStartedPayload struct {
	Mode string `json:"mode"`
	Seed string `json:"seed"`
}

type ActionTriggeredPayload struct {
	Action string `json:"action"`
	Source string `json:"source,omitempty"`
}

type ObstacleSpawnedPayload struct {
	Kind   string  `json:"kind"`
	WorldX float64 `json:"worldX"`
}

type CollisionPayload struct {
	Kind  string `json:"kind"`
	Score int    `json:"score"`
}

type RaceFinishedPayload struct {
	Winner int  `json:"winner"`
	Draw   bool `json:"draw,omitempty"`
}

type HighScorePayload struct {
	Score    int `json:"score"`
	Previous int `json:"previous"`
}

// RaceStarted publishes a race start event.
func RaceStarted(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload RaceStartedPayload) {
	publish(ctx, pub, EventRaceStarted, tick, actor, nil, logging.SeverityInfo, payload)
}

// ActionTriggered publishes a jump or dive trigger.
func ActionTriggered(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ActionTriggeredPayload) {
	publish(ctx, pub, EventActionTriggered, tick, actor, nil, logging.SeverityDebug, payload)
}

// ObstacleSpawned publishes a spawn event.
func ObstacleSpawned(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload ObstacleSpawnedPayload) {
	publish(ctx, pub, EventObstacleSpawned, tick, actor, []logging.EntityRef{target}, logging.SeverityDebug, payload)
}

// Collision publishes the game-over collision.
func Collision(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload CollisionPayload) {
	publish(ctx, pub, EventCollision, tick, actor, []logging.EntityRef{target}, logging.SeverityInfo, payload)
}

// RaceFinished publishes a two-lane result.
func RaceFinished(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload RaceFinishedPayload) {
	publish(ctx, pub, EventRaceFinished, tick, actor, nil, logging.SeverityInfo, payload)
}

// HighScore publishes a new persisted high score.
func HighScore(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload HighScorePayload) {
	publish(ctx, pub, EventHighScore, tick, actor, nil, logging.SeverityInfo, payload)
}

func publish(ctx context.Context, pub logging.Publisher, eventType logging.EventType, tick uint64, actor logging.EntityRef, targets []logging.EntityRef, severity logging.Severity, payload any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     eventType,
		Tick:     tick,
		Actor:    actor,
		Targets:  targets,
		Severity: severity,
		Category: logging.CategoryGameplay,
		Payload:  payload,
	})
}
