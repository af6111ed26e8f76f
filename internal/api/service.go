package api

import (
	"fmt"

	"github.com/smazurov/camcore/internal/metrics"
	"github.com/smazurov/camcore/pkg/camera"
)

// DeviceService is the device access surface the handlers run against.
// The production implementation opens the V4L2 device per request;
// tests substitute a fake.
type DeviceService interface {
	ListDevices() ([]camera.DeviceInfo, error)
	ResolveDevice(id string) (string, error)
	Formats(path string) ([]camera.FormatInfo, error)
	Resolutions(path, format string) (*camera.ResolutionInfo, error)
	Intervals(path, format string, width, height uint32) (*camera.IntervalInfo, error)
	Controls(path string) ([]*camera.Control, error)
	GetControl(path string, id uint32) (*camera.Control, error)
	SetControl(path string, id uint32, value any) error
	Snapshot(path string, req SnapshotRequest) (*Snapshot, error)
}

// SnapshotRequest selects the capture mode for a one-shot frame grab.
type SnapshotRequest struct {
	Format string
	Width  uint32
	Height uint32
	FPS    uint32
	// Skip is how many frames to discard before keeping one, giving
	// auto-exposure time to settle.
	Skip int
}

// Snapshot is one captured frame with its negotiated mode.
type Snapshot struct {
	Format string
	Width  uint32
	Height uint32
	Data   []byte
}

// v4l2Service implements DeviceService against real devices.
type v4l2Service struct{}

// NewDeviceService returns a DeviceService backed by the kernel.
func NewDeviceService() DeviceService {
	return &v4l2Service{}
}

func (*v4l2Service) ListDevices() ([]camera.DeviceInfo, error) {
	return camera.FindDevices()
}

func (*v4l2Service) ResolveDevice(id string) (string, error) {
	return camera.FindDeviceByID(id)
}

func (*v4l2Service) Formats(path string) ([]camera.FormatInfo, error) {
	cam, err := camera.Open(path)
	if err != nil {
		return nil, err
	}
	defer cam.Close()

	var formats []camera.FormatInfo
	it := cam.Formats()
	for {
		f, ok := it.Next()
		if !ok {
			break
		}
		formats = append(formats, f)
	}
	return formats, it.Err()
}

func (*v4l2Service) Resolutions(path, format string) (*camera.ResolutionInfo, error) {
	cam, err := camera.Open(path)
	if err != nil {
		return nil, err
	}
	defer cam.Close()
	return cam.Resolutions(format)
}

func (*v4l2Service) Intervals(path, format string, width, height uint32) (*camera.IntervalInfo, error) {
	cam, err := camera.Open(path)
	if err != nil {
		return nil, err
	}
	defer cam.Close()
	return cam.Intervals(format, width, height)
}

func (*v4l2Service) Controls(path string) ([]*camera.Control, error) {
	cam, err := camera.Open(path)
	if err != nil {
		return nil, err
	}
	defer cam.Close()

	var controls []*camera.Control
	it := cam.Controls()
	for {
		c, ok := it.Next()
		if !ok {
			break
		}
		controls = append(controls, c)
	}
	return controls, it.Err()
}

func (*v4l2Service) GetControl(path string, id uint32) (*camera.Control, error) {
	cam, err := camera.Open(path)
	if err != nil {
		return nil, err
	}
	defer cam.Close()
	return cam.GetControl(id)
}

func (*v4l2Service) SetControl(path string, id uint32, value any) error {
	cam, err := camera.Open(path)
	if err != nil {
		return err
	}
	defer cam.Close()
	return cam.SetControl(id, value)
}

func (*v4l2Service) Snapshot(path string, req SnapshotRequest) (*Snapshot, error) {
	cam, err := camera.Open(path)
	if err != nil {
		return nil, err
	}
	defer cam.Close()

	cfg := &camera.Config{
		Width:  req.Width,
		Height: req.Height,
		Format: req.Format,
	}
	if req.FPS > 0 {
		cfg.Interval = camera.Interval{Numerator: 1, Denominator: req.FPS}
	}
	if err := cam.Start(cfg); err != nil {
		return nil, fmt.Errorf("starting capture: %w", err)
	}
	metrics.SessionStarted()
	defer metrics.SessionStopped()

	for i := 0; i < req.Skip; i++ {
		frame, err := cam.Capture()
		if err != nil {
			metrics.RecordCaptureError(path)
			return nil, fmt.Errorf("discarding frame %d: %w", i, err)
		}
		metrics.RecordFrame(path, frame.Len())
		frame.Release()
	}

	frame, err := cam.Capture()
	if err != nil {
		metrics.RecordCaptureError(path)
		return nil, fmt.Errorf("capturing frame: %w", err)
	}
	defer frame.Release()
	metrics.RecordFrame(path, frame.Len())

	data := make([]byte, frame.Len())
	copy(data, frame.Bytes())

	width, height := cam.Resolution()
	snap := &Snapshot{
		Format: frame.Format,
		Width:  width,
		Height: height,
		Data:   data,
	}
	if err := cam.Stop(); err != nil {
		return nil, err
	}
	return snap, nil
}
