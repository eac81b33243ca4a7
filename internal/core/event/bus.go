// Package event provides a double-buffered, poll-based event bus.
//
// Events emitted during tick N become readable during tick N+1, after the
// simulation swaps buffers. Consumers poll by concrete type in whatever
// order their own phase dictates; there is no handler registration, so event
// delivery order never depends on map iteration.
package event

import "reflect"

// Bus buffers simulation events for one tick. Single-goroutine use only.
type Bus struct {
	front map[reflect.Type][]any // readable this tick
	back  map[reflect.Type][]any // collecting for next tick
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		front: make(map[reflect.Type][]any),
		back:  make(map[reflect.Type][]any),
	}
}

// Emit queues an event for the next tick.
func Emit[T any](b *Bus, ev T) {
	t := reflect.TypeOf(ev)
	b.back[t] = append(b.back[t], ev)
}

// Events returns the events of type T emitted last tick, in emission order.
// The returned slice is owned by the bus and valid until the next swap.
func Events[T any](b *Bus) []T {
	t := reflect.TypeOf((*T)(nil)).Elem()
	raw := b.front[t]
	if len(raw) == 0 {
		return nil
	}
	out := make([]T, 0, len(raw))
	for _, v := range raw {
		out = append(out, v.(T))
	}
	return out
}

// Pending returns the events of type T emitted this tick, not yet published
// by a swap. Saves capture these so a reload resumes with the same event
// flow a continuous run would have seen.
func Pending[T any](b *Bus) []T {
	t := reflect.TypeOf((*T)(nil)).Elem()
	raw := b.back[t]
	if len(raw) == 0 {
		return nil
	}
	out := make([]T, 0, len(raw))
	for _, v := range raw {
		out = append(out, v.(T))
	}
	return out
}

// SwapBuffers publishes last tick's emissions and clears the write side.
// Called once per tick, before any system runs.
func (b *Bus) SwapBuffers() {
	b.front, b.back = b.back, b.front
	for t := range b.back {
		b.back[t] = b.back[t][:0]
	}
}
