package sim

import (
	"bytes"
	"encoding/json"
	"testing"

	"wakerunner/server/internal/signal"
)

const dt = 1.0 / 30.0

func newEndlessEngine(seed string) *Engine {
	return NewEngine(Config{
		Mode:       ModeEndless,
		Seed:       seed,
		Bands:      signal.SplitAt(8, 16),
		NoiseFloor: 0,
	})
}

func startEngine(t *testing.T, e *Engine) {
	t.Helper()
	e.Apply([]Command{{Type: CommandStart}})
	e.Step(dt)
	if e.Status() != StatusRacing {
		t.Fatalf("expected racing after start, got %s", e.Status())
	}
	events := e.DrainEvents()
	found := false
	for _, event := range events {
		if event.Kind == EventRaceStarted {
			found = true
		}
	}
	if !found {
		t.Fatalf("start should emit a race_started event, got %+v", events)
	}
}

func jumpFrame() []byte {
	frame := make([]byte, 16)
	for i := 0; i < 8; i++ {
		frame[i] = 255
	}
	return frame
}

func diveFrame() []byte {
	frame := make([]byte, 16)
	for i := 8; i < 16; i++ {
		frame[i] = 255
	}
	return frame
}

func TestEngineIgnoresInputBeforeStart(t *testing.T) {
	e := newEndlessEngine("idle")
	e.Apply([]Command{{Type: CommandAudioFrame, Bins: jumpFrame()}})
	e.Step(dt)
	if e.Status() != StatusReady {
		t.Fatalf("audio before start should not race, got %s", e.Status())
	}
	if snap := e.Snapshot(); snap.Score != 0 || len(snap.Obstacles) != 0 {
		t.Fatalf("nothing should advance before start: %+v", snap)
	}
}

func TestAudioFrameTriggersJump(t *testing.T) {
	e := newEndlessEngine("jump")
	startEngine(t, e)

	e.Apply([]Command{{Type: CommandAudioFrame, Bins: jumpFrame()}})
	e.Step(dt)

	if snap := e.Snapshot(); snap.BoatMode != "jumping" {
		t.Fatalf("loud jump band should start a jump, boat is %s", snap.BoatMode)
	}
	events := e.DrainEvents()
	if len(events) != 1 || events[0].Kind != EventJumped || events[0].Source != "audio" {
		t.Fatalf("expected one audio jump event, got %+v", events)
	}
}

func TestAudioFrameIsConsumedByOneTick(t *testing.T) {
	e := newEndlessEngine("stale")
	startEngine(t, e)

	e.Apply([]Command{{Type: CommandAudioFrame, Bins: diveFrame()}})
	e.Step(dt)
	if snap := e.Snapshot(); snap.BoatMode != "diving" {
		t.Fatalf("loud dive band should start a dive, boat is %s", snap.BoatMode)
	}

	// No fresh frame: the hold releases and the dive unwinds.
	for i := 0; i < 300; i++ {
		e.Step(dt)
	}
	if snap := e.Snapshot(); snap.BoatMode != "floating" {
		t.Fatalf("stale frame must read as silence, boat is %s", snap.BoatMode)
	}
}

func TestKeyboardAutoRepeatCannotRetrigger(t *testing.T) {
	e := newEndlessEngine("keys")
	startEngine(t, e)

	e.Apply([]Command{{Type: CommandKeyDown, Key: KeyJump}})
	e.Step(dt)
	if e.DrainEvents()[0].Kind != EventJumped {
		t.Fatalf("key-down should jump")
	}

	// OS auto-repeat floods key-downs without a key-up; ride out the jump,
	// the landing cooldown, and more repeats. No second jump may fire. The
	// window stays short of the first obstacle reaching the boat.
	for i := 0; i < 150; i++ {
		e.Apply([]Command{{Type: CommandKeyDown, Key: KeyJump}})
		e.Step(dt)
	}
	for _, event := range e.DrainEvents() {
		if event.Kind == EventJumped {
			t.Fatalf("auto-repeat retriggered a jump")
		}
	}

	// A real release and press jumps again.
	e.Apply([]Command{{Type: CommandKeyUp, Key: KeyJump}})
	e.Step(dt)
	e.Apply([]Command{{Type: CommandKeyDown, Key: KeyJump}})
	e.Step(dt)
	jumped := false
	for _, event := range e.DrainEvents() {
		if event.Kind == EventJumped {
			jumped = true
		}
	}
	if !jumped {
		t.Fatalf("fresh key press after release should jump")
	}
}

func TestJumpWinsWhenBothBandsFire(t *testing.T) {
	e := newEndlessEngine("both")
	startEngine(t, e)

	frame := make([]byte, 16)
	for i := range frame {
		frame[i] = 255
	}
	e.Apply([]Command{{Type: CommandAudioFrame, Bins: frame}})
	e.Step(dt)
	if snap := e.Snapshot(); snap.BoatMode != "jumping" {
		t.Fatalf("jump should win the tie, boat is %s", snap.BoatMode)
	}
}

func TestScoreFollowsWorldOffset(t *testing.T) {
	e := newEndlessEngine("score")
	startEngine(t, e)

	prev := -1
	for i := 0; i < 30; i++ {
		e.Step(dt)
		score := e.Score()
		if score < prev {
			t.Fatalf("score went backwards: %d -> %d", prev, score)
		}
		prev = score
	}
	if prev == 0 {
		t.Fatalf("a second of racing should have scored points")
	}
}

func TestPassiveRunEndsInCollision(t *testing.T) {
	e := newEndlessEngine("doomed")
	startEngine(t, e)

	var collided bool
	for i := 0; i < 20000 && !collided; i++ {
		e.Step(dt)
		for _, event := range e.DrainEvents() {
			if event.Kind == EventCollision {
				collided = true
				if event.ObstacleKind == "" || event.ObstacleID == "" {
					t.Fatalf("collision event missing obstacle identity: %+v", event)
				}
			}
		}
	}
	if !collided {
		t.Fatalf("a boat that never jumps or dives should eventually collide")
	}
	if e.Status() != StatusGameOver {
		t.Fatalf("collision should end the run, status %s", e.Status())
	}

	// The world freezes after game over.
	score := e.Score()
	for i := 0; i < 30; i++ {
		e.Step(dt)
	}
	if e.Score() != score {
		t.Fatalf("score advanced after game over: %d -> %d", score, e.Score())
	}
}

func TestStartTickPresentsPristineWorld(t *testing.T) {
	e := newEndlessEngine("fresh")
	e.Apply([]Command{{Type: CommandStart}})
	e.Step(dt)

	if snap := e.Snapshot(); snap.Score != 0 {
		t.Fatalf("the start tick must not advance the world, score %d", snap.Score)
	}

	// Integration begins on the following tick.
	e.Step(dt)
	if snap := e.Snapshot(); snap.Score == 0 {
		t.Fatalf("the tick after start should scroll the world")
	}
}

func TestRestartAfterGameOver(t *testing.T) {
	e := newEndlessEngine("again")
	startEngine(t, e)
	for i := 0; i < 20000 && e.Status() != StatusGameOver; i++ {
		e.Step(dt)
	}
	if e.Status() != StatusGameOver {
		t.Fatalf("expected a game over")
	}
	e.DrainEvents()

	e.Apply([]Command{{Type: CommandStart}})
	e.Step(dt)
	if e.Status() != StatusRacing {
		t.Fatalf("restart should race again, status %s", e.Status())
	}
	if snap := e.Snapshot(); snap.Score != 0 || len(snap.Obstacles) != 0 {
		t.Fatalf("restart should reset the world: %+v", snap)
	}
}

func TestIdenticalSeedsProduceIdenticalCourses(t *testing.T) {
	runKinds := func(seed string) []string {
		e := newEndlessEngine(seed)
		e.Apply([]Command{{Type: CommandStart}})
		var kinds []string
		for i := 0; i < 6000; i++ {
			e.Step(dt)
			for _, event := range e.DrainEvents() {
				if event.Kind == EventObstacleSpawned {
					kinds = append(kinds, string(event.ObstacleKind))
				}
				if event.Kind == EventCollision {
					return kinds
				}
			}
		}
		return kinds
	}

	a := runKinds("replay")
	b := runKinds("replay")
	if len(a) == 0 || len(a) != len(b) {
		t.Fatalf("replays diverged in length: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("replays diverged at spawn %d: %s vs %s", i, a[i], b[i])
		}
	}
}

func TestLanesModeReportsWinner(t *testing.T) {
	e := NewEngine(Config{
		Mode:       ModeLanes,
		RedBand:    signal.FrequencyRange{Start: 0, End: 8},
		BlueBand:   signal.FrequencyRange{Start: 8, End: 16},
		NoiseFloor: 0,
	})
	e.Apply([]Command{{Type: CommandStart}})
	e.Step(dt)

	frame := jumpFrame() // loud in the red band only
	for i := 0; i < 100000 && e.Status() != StatusFinished; i++ {
		e.Apply([]Command{{Type: CommandAudioFrame, Bins: frame}})
		e.Step(dt)
	}
	if e.Status() != StatusFinished {
		t.Fatalf("race never finished")
	}
	snap := e.Snapshot()
	if snap.Winner != 0 || snap.Draw {
		t.Fatalf("red lane should win, got %+v", snap)
	}

	// A red-lane win must still name its winner on the wire.
	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("failed to marshal snapshot: %v", err)
	}
	if !bytes.Contains(data, []byte(`"winner":0`)) {
		t.Fatalf("finished snapshot should carry an explicit winner: %s", data)
	}
	finished := false
	for _, event := range e.DrainEvents() {
		if event.Kind == EventRaceFinished && event.Winner == 0 {
			finished = true
		}
	}
	if !finished {
		t.Fatalf("expected a race_finished event for the red lane")
	}
}

func TestSnapshotIsDetachedFromEngineState(t *testing.T) {
	e := newEndlessEngine("detach")
	startEngine(t, e)
	for i := 0; i < 3000; i++ {
		e.Step(dt)
		if len(e.Snapshot().Obstacles) > 0 {
			break
		}
	}
	snap := e.Snapshot()
	if len(snap.Obstacles) == 0 {
		t.Fatalf("expected live obstacles in the snapshot")
	}
	before := snap.Obstacles[0].X
	for i := 0; i < 30; i++ {
		e.Step(dt)
	}
	if snap.Obstacles[0].X != before {
		t.Fatalf("snapshot mutated by later ticks")
	}
}
