package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/camcore/internal/api/models"
	"github.com/smazurov/camcore/pkg/camera"
)

// ControlInput identifies one control on a device.
type ControlInput struct {
	DeviceInput
	ControlID uint32 `path:"control_id" example:"9963776" doc:"V4L2 control identifier"`
}

// ControlUpdateInput carries a new control value.
type ControlUpdateInput struct {
	ControlInput
	Body models.ControlUpdateData
}

func toAPIControl(c *camera.Control) models.ControlInfo {
	info := models.ControlInfo{
		ID:       c.ID,
		Name:     c.Name,
		Readable: c.Readable(),
		Writable: c.Writable(),
	}

	switch d := c.Data.(type) {
	case camera.IntegerData:
		info.Type = "integer"
		info.Value = d.Value
		info.Default = d.Default
		info.Minimum = int64(d.Minimum)
		info.Maximum = int64(d.Maximum)
		info.Step = int64(d.Step)
	case camera.BooleanData:
		info.Type = "boolean"
		info.Value = d.Value
		info.Default = d.Default
	case camera.MenuData:
		info.Type = "menu"
		info.Value = d.Value
		info.Default = d.Default
		for _, item := range d.Items {
			info.Items = append(info.Items, models.MenuItem{Index: item.Index, Name: item.Name})
		}
	case camera.IntegerMenuData:
		info.Type = "integer_menu"
		info.Value = d.Value
		info.Default = d.Default
		for _, item := range d.Items {
			info.Items = append(info.Items, models.MenuItem{Index: item.Index, Value: item.Value})
		}
	case camera.BitmaskData:
		info.Type = "bitmask"
		info.Value = d.Value
		info.Default = d.Default
		info.Maximum = int64(d.Maximum)
	case camera.Integer64Data:
		info.Type = "integer64"
		info.Value = d.Value
		info.Default = d.Default
		info.Minimum = d.Minimum
		info.Maximum = d.Maximum
		info.Step = d.Step
	case camera.StringData:
		info.Type = "string"
		info.Value = d.Value
		info.Minimum = int64(d.MinLength)
		info.Maximum = int64(d.MaxLength)
	case camera.ButtonData:
		info.Type = "button"
	case camera.CtrlClassData:
		info.Type = "class"
	default:
		info.Type = "unknown"
	}
	return info
}

// registerControlRoutes registers control list, read and write
// endpoints.
func (s *Server) registerControlRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "device-controls",
		Method:      http.MethodGet,
		Path:        "/api/devices/{device_id}/controls",
		Summary:     "List Controls",
		Description: "List all enabled controls the device exposes",
		Tags:        []string{"controls"},
		Security:    withAuth(),
		Errors:      []int{401, 404, 500},
	}, func(ctx context.Context, input *DeviceInput) (*models.ControlListResponse, error) {
		path, err := s.resolveDevice(input.DeviceID)
		if err != nil {
			return nil, err
		}

		found, err := s.service.Controls(path)
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to enumerate controls", err)
		}

		controls := make([]models.ControlInfo, len(found))
		for i, c := range found {
			controls[i] = toAPIControl(c)
		}
		return &models.ControlListResponse{
			Body: models.ControlListData{Device: path, Controls: controls},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-control",
		Method:      http.MethodGet,
		Path:        "/api/devices/{device_id}/controls/{control_id}",
		Summary:     "Get Control",
		Description: "Read one control and its current value",
		Tags:        []string{"controls"},
		Security:    withAuth(),
		Errors:      []int{401, 404, 500},
	}, func(ctx context.Context, input *ControlInput) (*models.ControlResponse, error) {
		path, err := s.resolveDevice(input.DeviceID)
		if err != nil {
			return nil, err
		}

		c, err := s.service.GetControl(path, input.ControlID)
		if err != nil {
			if errors.Is(err, camera.ErrControlNotFound) {
				return nil, huma.Error404NotFound("Control not found", err)
			}
			return nil, huma.Error500InternalServerError("Failed to read control", err)
		}
		return &models.ControlResponse{Body: toAPIControl(c)}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-control",
		Method:      http.MethodPut,
		Path:        "/api/devices/{device_id}/controls/{control_id}",
		Summary:     "Set Control",
		Description: "Write a control value, or press a button control with an empty body",
		Tags:        []string{"controls"},
		Security:    withAuth(),
		Errors:      []int{400, 401, 404, 500},
	}, func(ctx context.Context, input *ControlUpdateInput) (*models.ControlResponse, error) {
		path, err := s.resolveDevice(input.DeviceID)
		if err != nil {
			return nil, err
		}

		value, err := updateValue(input.Body)
		if err != nil {
			return nil, huma.Error400BadRequest("Invalid control value", err)
		}

		if err := s.service.SetControl(path, input.ControlID, value); err != nil {
			if errors.Is(err, camera.ErrControlNotFound) {
				return nil, huma.Error404NotFound("Control not found", err)
			}
			return nil, huma.Error500InternalServerError("Failed to set control", err)
		}

		c, err := s.service.GetControl(path, input.ControlID)
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to read control back", err)
		}
		return &models.ControlResponse{Body: toAPIControl(c)}, nil
	})
}

// updateValue picks the value out of an update body, rejecting requests
// that set more than one field. A fully empty body is a button press.
func updateValue(body models.ControlUpdateData) (any, error) {
	var value any
	count := 0
	if body.Integer != nil {
		value = *body.Integer
		count++
	}
	if body.Boolean != nil {
		value = *body.Boolean
		count++
	}
	if body.String != nil {
		value = *body.String
		count++
	}
	if count > 1 {
		return nil, errors.New("at most one of integer, boolean or string may be set")
	}
	return value, nil
}
