package events

// Event type constants for kelindar/event.
const (
	TypeDevice uint32 = iota + 1
	TypeSnapshot
	TypeCaptureError
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// DeviceEvent is published when a capture device appears or
// disappears, either from the initial scan or from a hotplug uevent.
type DeviceEvent struct {
	// Action is "added", "removed", or "present" for devices already
	// connected when an event stream starts.
	Action string `json:"action" example:"added" doc:"Action type: added, removed or present"`
	Path   string `json:"path" example:"/dev/video0" doc:"Device node path"`
	ID     string `json:"id,omitempty" doc:"Stable device identifier"`
	Name   string `json:"name,omitempty" doc:"Driver-reported card name"`
	// Timestamp is RFC 3339.
	Timestamp string `json:"timestamp" example:"2026-08-30T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for DeviceEvent.
func (e DeviceEvent) Type() uint32 { return TypeDevice }

// SnapshotEvent is published after a single-frame capture requested
// through the API completes.
type SnapshotEvent struct {
	Path      string `json:"path" example:"/dev/video0" doc:"Device node path"`
	Format    string `json:"format" example:"YUYV" doc:"Negotiated pixel format"`
	Width     uint32 `json:"width" example:"640" doc:"Negotiated width"`
	Height    uint32 `json:"height" example:"480" doc:"Negotiated height"`
	Bytes     int    `json:"bytes" doc:"Frame payload size"`
	Timestamp string `json:"timestamp" doc:"Capture timestamp"`
}

// Type returns the event type identifier for SnapshotEvent.
func (e SnapshotEvent) Type() uint32 { return TypeSnapshot }

// CaptureErrorEvent is published when a capture attempt fails.
type CaptureErrorEvent struct {
	Path      string `json:"path" example:"/dev/video0" doc:"Device node path"`
	Error     string `json:"error" doc:"Failure description"`
	Timestamp string `json:"timestamp" doc:"Failure timestamp"`
}

// Type returns the event type identifier for CaptureErrorEvent.
func (e CaptureErrorEvent) Type() uint32 { return TypeCaptureError }
