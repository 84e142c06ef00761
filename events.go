package spruce

// EventType identifies a kind of sculpture event.
type EventType uint8

const (
	EventPhaseChanged   EventType = iota // the phase label changed
	EventGestureChanged                  // the adapter published a different gesture
)

// Event carries a state change to an optional EventSink.
type Event struct {
	Type EventType
	// Phase and PrevPhase are valid for EventPhaseChanged.
	Phase     Phase
	PrevPhase Phase
	// Gesture and PrevGesture are valid for EventGestureChanged.
	Gesture     Gesture
	PrevGesture Gesture
	// T is the interpolation parameter when the event fired.
	T float32
}

// EventSink receives sculpture events. Implementations must not block: the
// sculpture emits from inside its frame update.
type EventSink interface {
	EmitEvent(event Event)
}

// MultiSink fans every event out to each sink in order.
type MultiSink []EventSink

func (m MultiSink) EmitEvent(event Event) {
	for _, s := range m {
		if s != nil {
			s.EmitEvent(event)
		}
	}
}
