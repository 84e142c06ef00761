package ecs

import (
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"

	"github.com/phanxgames/spruce"
)

// EventType is the Donburi event type for sculpture events.
var EventType = events.NewEventType[spruce.Event]()

// State mirrors the sculpture's labels as of the last event.
type State struct {
	Phase   spruce.Phase
	Gesture spruce.Gesture
	T       float32
	// Transitions counts phase changes seen so far.
	Transitions int
}

// StateComponent holds the singleton State entity.
var StateComponent = donburi.NewComponentType[State]()

type donburiSink struct {
	world donburi.World
	state *donburi.Entry
}

// NewDonburiSink creates an EventSink backed by a Donburi world. It
// creates the State entity if the world does not have one yet.
func NewDonburiSink(world donburi.World) spruce.EventSink {
	entry, ok := StateComponent.First(world)
	if !ok {
		entry = world.Entry(world.Create(StateComponent))
	}
	return &donburiSink{world: world, state: entry}
}

func (s *donburiSink) EmitEvent(event spruce.Event) {
	st := StateComponent.Get(s.state)
	st.T = event.T
	switch event.Type {
	case spruce.EventPhaseChanged:
		st.Phase = event.Phase
		st.Transitions++
	case spruce.EventGestureChanged:
		st.Gesture = event.Gesture
	}
	EventType.Publish(s.world, event)
}

// Latest returns the world's State, if a sink was created for it.
func Latest(world donburi.World) (State, bool) {
	entry, ok := StateComponent.First(world)
	if !ok {
		return State{}, false
	}
	return *StateComponent.Get(entry), true
}
