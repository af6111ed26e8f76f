package events

import (
	"sync"
	"testing"
	"time"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := New()
	received := make(chan DeviceEvent, 1)

	unsub := bus.Subscribe(func(e DeviceEvent) {
		received <- e
	})
	defer unsub()

	bus.Publish(DeviceEvent{Action: "added", Path: "/dev/video0"})

	got := <-received
	if got.Path != "/dev/video0" || got.Action != "added" {
		t.Errorf("received %+v", got)
	}
}

func TestBusUnsubscribe(t *testing.T) {
	bus := New()
	received := make(chan CaptureErrorEvent, 1)

	unsub := bus.Subscribe(func(e CaptureErrorEvent) {
		received <- e
	})

	bus.Publish(CaptureErrorEvent{Path: "/dev/video0"})
	<-received

	unsub()
	bus.Publish(CaptureErrorEvent{Path: "/dev/video1"})

	select {
	case <-received:
		t.Fatal("received an event after unsubscribing")
	case <-time.After(10 * time.Millisecond):
	}
}

func TestBusTypeSelectivity(t *testing.T) {
	bus := New()
	deviceReceived := make(chan bool, 1)
	snapshotReceived := make(chan bool, 1)

	unsub1 := bus.Subscribe(func(DeviceEvent) { deviceReceived <- true })
	defer unsub1()
	unsub2 := bus.Subscribe(func(SnapshotEvent) { snapshotReceived <- true })
	defer unsub2()

	bus.Publish(DeviceEvent{Action: "added"})
	<-deviceReceived
	select {
	case <-snapshotReceived:
		t.Fatal("snapshot subscriber received a device event")
	case <-time.After(10 * time.Millisecond):
	}

	bus.Publish(SnapshotEvent{Path: "/dev/video0"})
	<-snapshotReceived
	select {
	case <-deviceReceived:
		t.Fatal("device subscriber received a snapshot event")
	case <-time.After(10 * time.Millisecond):
	}
}

func TestBusUnknownHandlerIsNoop(t *testing.T) {
	bus := New()
	unsub := bus.Subscribe(func(int) {})
	unsub()
}

func TestBusConcurrentPublish(t *testing.T) {
	bus := New()
	const goroutines = 10
	const perGoroutine = 100

	received := make(chan bool, goroutines*perGoroutine)
	unsub := bus.Subscribe(func(DeviceEvent) { received <- true })
	defer unsub()

	var wg sync.WaitGroup
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perGoroutine {
				bus.Publish(DeviceEvent{Action: "added"})
			}
		}()
	}
	wg.Wait()

	for range goroutines * perGoroutine {
		select {
		case <-received:
		case <-time.After(2 * time.Second):
			t.Fatal("timeout draining events")
		}
	}
}
