package events

import "github.com/kelindar/event"

// SubscribeToChannel forwards events of one type into a shared channel.
// The send never blocks; events the channel cannot take immediately are
// dropped. Returns an unsubscribe function.
func SubscribeToChannel[T Event](bus *Bus, ch chan<- any) func() {
	return event.Subscribe(bus.dispatcher, func(e T) {
		select {
		case ch <- e:
		default:
		}
	})
}
