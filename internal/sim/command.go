package sim

// CommandType names the kinds of input a session can stage for the next tick.
type CommandType string

const (
	// CommandStart begins (or restarts) a run from the ready or game-over
	// state.
	CommandStart CommandType = "start"
	// CommandAudioFrame delivers one FFT frequency snapshot. Only the most
	// recent frame staged before a tick is consumed; older frames are stale
	// by definition.
	CommandAudioFrame CommandType = "audio"
	// CommandKeyDown and CommandKeyUp carry the keyboard fallback. Key-down
	// is edge-filtered inside the engine so auto-repeat cannot retrigger.
	CommandKeyDown CommandType = "key_down"
	CommandKeyUp   CommandType = "key_up"
)

// Key names the two logical keyboard actions.
type Key string

const (
	KeyJump Key = "jump"
	KeyDive Key = "dive"
)

// Command is one staged input. Bins is only set for audio frames and holds
// the raw unsigned-byte frequency array from the client's analyser.
type Command struct {
	ActorID string
	Type    CommandType
	Key     Key
	Bins    []byte
}
