package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/smazurov/camcore/internal/events"
)

// registerEventRoutes registers the server-sent events stream.
func (s *Server) registerEventRoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Event Stream",
		Description: "Real-time event stream for device changes, snapshots and capture errors",
		Tags:        []string{"events"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"device-change": events.DeviceEvent{},
		"snapshot":      events.SnapshotEvent{},
		"capture-error": events.CaptureErrorEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		eventCh := make(chan any, 16)

		unsubscribers := []func(){
			events.SubscribeToChannel[events.DeviceEvent](s.bus, eventCh),
			events.SubscribeToChannel[events.SnapshotEvent](s.bus, eventCh),
			events.SubscribeToChannel[events.CaptureErrorEvent](s.bus, eventCh),
		}
		defer func() {
			for _, unsub := range unsubscribers {
				unsub()
			}
		}()

		// New connections get the current device set before live changes.
		if devices, err := s.service.ListDevices(); err == nil {
			now := time.Now().Format(time.RFC3339)
			for _, d := range devices {
				if err := send.Data(events.DeviceEvent{
					Action:    "present",
					Path:      d.Path,
					ID:        d.ID,
					Name:      d.Name,
					Timestamp: now,
				}); err != nil {
					return
				}
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-eventCh:
				if err := send.Data(ev); err != nil {
					return
				}
			}
		}
	})
}
