package api

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/camcore/internal/api/models"
	"github.com/smazurov/camcore/internal/events"
	"github.com/smazurov/camcore/internal/metrics"
	"github.com/smazurov/camcore/pkg/camera"
)

// DeviceInput identifies a device by its stable ID.
type DeviceInput struct {
	DeviceID string `path:"device_id" example:"usb-0000:00:14.0-1" doc:"Stable device identifier"`
}

// DeviceFormatInput adds a pixel format selection.
type DeviceFormatInput struct {
	DeviceInput
	Format string `query:"format" example:"YUYV" doc:"Pixel format FourCC"`
}

// DeviceResolutionInput adds a frame size selection.
type DeviceResolutionInput struct {
	DeviceFormatInput
	Width  uint32 `query:"width" example:"1920" doc:"Frame width in pixels"`
	Height uint32 `query:"height" example:"1080" doc:"Frame height in pixels"`
}

// SnapshotInput carries the snapshot request body.
type SnapshotInput struct {
	DeviceInput
	Body models.SnapshotRequestData
}

// Capability bits worth naming in the API, from linux/videodev2.h.
var capNames = []struct {
	flag uint32
	name string
}{
	{0x00000001, "Video Capture"},
	{0x00000002, "Video Output"},
	{0x00001000, "Multi-planar Video Capture"},
	{0x00008000, "Memory-to-Memory"},
	{0x00010000, "Tuner"},
	{0x00020000, "Audio"},
	{0x00200000, "Extended Pixel Format"},
	{0x00800000, "Metadata Capture"},
	{0x01000000, "Read/Write I/O"},
	{0x04000000, "Streaming I/O"},
	{0x20000000, "Media Controller I/O"},
}

func translateCapabilities(caps uint32) []string {
	var names []string
	for _, c := range capNames {
		if caps&c.flag != 0 {
			names = append(names, c.name)
		}
	}
	return names
}

func toAPIDevice(d camera.DeviceInfo) models.DeviceInfo {
	return models.DeviceInfo{
		Path:         d.Path,
		Name:         d.Name,
		ID:           d.ID,
		Driver:       d.Driver,
		Caps:         d.Caps,
		Capabilities: translateCapabilities(d.Caps),
	}
}

func toAPIFramerate(i camera.Interval) models.Framerate {
	return models.Framerate{
		Numerator:   i.Numerator,
		Denominator: i.Denominator,
		FPS:         i.FPS(),
	}
}

// resolveDevice maps the path parameter to a device node, answering
// 404 when the ID is unknown.
func (s *Server) resolveDevice(id string) (string, error) {
	path, err := s.service.ResolveDevice(id)
	if err != nil {
		return "", huma.Error404NotFound("Device not found", err)
	}
	return path, nil
}

// enumStatus maps enumeration errors to the right HTTP status: bad
// format or resolution selections are the client's fault.
func enumStatus(err error, message string) error {
	if errors.Is(err, camera.ErrBadFormat) || errors.Is(err, camera.ErrBadResolution) {
		return huma.Error400BadRequest(message, err)
	}
	return huma.Error500InternalServerError(message, err)
}

// registerDeviceRoutes registers discovery, enumeration and snapshot
// endpoints.
func (s *Server) registerDeviceRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-devices",
		Method:      http.MethodGet,
		Path:        "/api/devices",
		Summary:     "List Devices",
		Description: "List all streaming-capable video capture devices",
		Tags:        []string{"devices"},
		Security:    withAuth(),
		Errors:      []int{401, 500},
	}, func(ctx context.Context, input *struct{}) (*models.DeviceListResponse, error) {
		found, err := s.service.ListDevices()
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to scan devices", err)
		}

		devices := make([]models.DeviceInfo, len(found))
		for i, d := range found {
			devices[i] = toAPIDevice(d)
		}
		return &models.DeviceListResponse{
			Body: models.DeviceListData{Devices: devices, Count: len(devices)},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "device-formats",
		Method:      http.MethodGet,
		Path:        "/api/devices/{device_id}/formats",
		Summary:     "Formats",
		Description: "List pixel formats the device can produce",
		Tags:        []string{"devices"},
		Security:    withAuth(),
		Errors:      []int{401, 404, 500},
	}, func(ctx context.Context, input *DeviceInput) (*models.FormatListResponse, error) {
		path, err := s.resolveDevice(input.DeviceID)
		if err != nil {
			return nil, err
		}

		found, err := s.service.Formats(path)
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to enumerate formats", err)
		}

		formats := make([]models.FormatInfo, len(found))
		for i, f := range found {
			formats[i] = models.FormatInfo{
				Format:      f.Format,
				Description: f.Description,
				Compressed:  f.Compressed,
				Emulated:    f.Emulated,
			}
		}
		return &models.FormatListResponse{
			Body: models.FormatListData{Device: path, Formats: formats},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "device-resolutions",
		Method:      http.MethodGet,
		Path:        "/api/devices/{device_id}/resolutions",
		Summary:     "Resolutions",
		Description: "List frame sizes supported for a pixel format",
		Tags:        []string{"devices"},
		Security:    withAuth(),
		Errors:      []int{400, 401, 404, 500},
	}, func(ctx context.Context, input *DeviceFormatInput) (*models.ResolutionListResponse, error) {
		path, err := s.resolveDevice(input.DeviceID)
		if err != nil {
			return nil, err
		}

		info, err := s.service.Resolutions(path, input.Format)
		if err != nil {
			return nil, enumStatus(err, "Failed to enumerate resolutions")
		}

		var body models.ResolutionListData
		for _, r := range info.Discrete {
			body.Discrete = append(body.Discrete, models.Resolution{Width: r.Width, Height: r.Height})
		}
		if sw := info.Stepwise; sw != nil {
			body.Stepwise = &models.StepwiseResolution{
				Min:  models.Resolution{Width: sw.Min.Width, Height: sw.Min.Height},
				Max:  models.Resolution{Width: sw.Max.Width, Height: sw.Max.Height},
				Step: models.Resolution{Width: sw.Step.Width, Height: sw.Step.Height},
			}
		}
		return &models.ResolutionListResponse{Body: body}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "device-framerates",
		Method:      http.MethodGet,
		Path:        "/api/devices/{device_id}/framerates",
		Summary:     "Framerates",
		Description: "List frame rates supported for a pixel format and frame size",
		Tags:        []string{"devices"},
		Security:    withAuth(),
		Errors:      []int{400, 401, 404, 500},
	}, func(ctx context.Context, input *DeviceResolutionInput) (*models.FramerateListResponse, error) {
		path, err := s.resolveDevice(input.DeviceID)
		if err != nil {
			return nil, err
		}

		info, err := s.service.Intervals(path, input.Format, input.Width, input.Height)
		if err != nil {
			return nil, enumStatus(err, "Failed to enumerate framerates")
		}

		var body models.FramerateListData
		for _, iv := range info.Discrete {
			body.Discrete = append(body.Discrete, toAPIFramerate(iv))
		}
		if sw := info.Stepwise; sw != nil {
			body.Stepwise = &models.StepwiseFramerate{
				Min:  toAPIFramerate(sw.Min),
				Max:  toAPIFramerate(sw.Max),
				Step: toAPIFramerate(sw.Step),
			}
		}
		return &models.FramerateListResponse{Body: body}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "device-stats",
		Method:      http.MethodGet,
		Path:        "/api/devices/{device_id}/stats",
		Summary:     "Capture Stats",
		Description: "Report frame and error counters for a device",
		Tags:        []string{"devices"},
		Security:    withAuth(),
		Errors:      []int{401, 404},
	}, func(ctx context.Context, input *DeviceInput) (*models.CaptureStatsResponse, error) {
		path, err := s.resolveDevice(input.DeviceID)
		if err != nil {
			return nil, err
		}

		body := models.CaptureStatsData{Device: path}
		if stats := metrics.GetCaptureStats(path); stats != nil {
			body.Frames = stats.Frames
			body.Bytes = stats.Bytes
			body.Errors = stats.Errors
		}
		return &models.CaptureStatsResponse{Body: body}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "device-snapshot",
		Method:      http.MethodPost,
		Path:        "/api/devices/{device_id}/snapshot",
		Summary:     "Snapshot",
		Description: "Capture a single frame and return it base64-encoded",
		Tags:        []string{"devices"},
		Security:    withAuth(),
		Errors:      []int{400, 401, 404, 500},
	}, func(ctx context.Context, input *SnapshotInput) (*models.SnapshotResponse, error) {
		path, err := s.resolveDevice(input.DeviceID)
		if err != nil {
			return nil, err
		}

		skip := input.Body.Skip
		if skip == 0 {
			skip = s.options.SnapshotSkipFrames
		}
		snap, err := s.service.Snapshot(path, SnapshotRequest{
			Format: input.Body.Format,
			Width:  input.Body.Width,
			Height: input.Body.Height,
			FPS:    input.Body.FPS,
			Skip:   skip,
		})
		if err != nil {
			if s.bus != nil {
				s.bus.Publish(events.CaptureErrorEvent{
					Path:      path,
					Error:     err.Error(),
					Timestamp: time.Now().Format(time.RFC3339),
				})
			}
			switch {
			case errors.Is(err, camera.ErrBadFormat),
				errors.Is(err, camera.ErrBadResolution),
				errors.Is(err, camera.ErrBadInterval):
				return nil, huma.Error400BadRequest("Unsupported capture mode", err)
			}
			return nil, huma.Error500InternalServerError("Snapshot failed", err)
		}

		if s.bus != nil {
			s.bus.Publish(events.SnapshotEvent{
				Path:      path,
				Format:    snap.Format,
				Width:     snap.Width,
				Height:    snap.Height,
				Bytes:     len(snap.Data),
				Timestamp: time.Now().Format(time.RFC3339),
			})
		}

		return &models.SnapshotResponse{
			Body: models.SnapshotData{
				Device: path,
				Format: snap.Format,
				Width:  snap.Width,
				Height: snap.Height,
				Image:  base64.StdEncoding.EncodeToString(snap.Data),
			},
		}, nil
	})
}
