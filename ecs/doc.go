// Package ecs bridges spruce sculpture events into a [Donburi] world.
//
// [NewDonburiSink] publishes every phase and gesture change as a typed
// event on [EventType] and keeps a singleton entity with the latest
// [State]. Systems subscribe to the event type and drain it with
// events.ProcessAllEvents, or read the state with [Latest].
//
// Usage:
//
//	world := donburi.NewWorld()
//	sculpture.SetEventSink(ecs.NewDonburiSink(world))
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
