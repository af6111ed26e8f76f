//go:build linux

package camera

import (
	"errors"
	"fmt"
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/smazurov/camcore/internal/v4l2"
)

// Control describes one device control together with its current
// value. The Data field holds a type-specific variant.
type Control struct {
	ID    uint32
	Name  string
	Flags uint32
	Data  CtrlData
}

// Readable reports whether the control's value can be read.
func (c *Control) Readable() bool {
	return c.Flags&FLAG_WRITE_ONLY == 0
}

// Writable reports whether the control accepts new values.
func (c *Control) Writable() bool {
	return c.Flags&(FLAG_READ_ONLY|FLAG_DISABLED|FLAG_GRABBED) == 0
}

// CtrlData is the type-specific part of a Control. The concrete type
// is one of IntegerData, BooleanData, MenuData, IntegerMenuData,
// BitmaskData, Integer64Data, StringData, ButtonData, CtrlClassData or
// UnknownData.
type CtrlData interface {
	ctrlData()
}

// IntegerData is an integer control with a bounded range.
type IntegerData struct {
	Value   int32
	Default int32
	Minimum int32
	Maximum int32
	Step    int32
}

// BooleanData is an on/off control.
type BooleanData struct {
	Value   bool
	Default bool
}

// MenuItem is one selectable position of a menu control. Gaps in the
// index range are legal; absent positions are simply not listed.
type MenuItem struct {
	Index uint32
	Name  string
}

// MenuData is a control whose value selects one of a set of named
// positions.
type MenuData struct {
	Value   uint32
	Default uint32
	Items   []MenuItem
}

// IntegerMenuItem is one selectable position of an integer menu.
type IntegerMenuItem struct {
	Index uint32
	Value int64
}

// IntegerMenuData is a menu whose positions carry integer values
// rather than names.
type IntegerMenuData struct {
	Value   uint32
	Default uint32
	Items   []IntegerMenuItem
}

// BitmaskData is a control whose value is a set of independent bits.
// Maximum has every usable bit set.
type BitmaskData struct {
	Value   uint32
	Default uint32
	Maximum uint32
}

// Integer64Data is a 64-bit integer control.
type Integer64Data struct {
	Value   int64
	Default int64
	Minimum int64
	Maximum int64
	Step    int64
}

// StringData is a string-valued control with length bounds in bytes.
type StringData struct {
	Value     string
	MinLength uint32
	MaxLength uint32
}

// ButtonData is a write-only trigger with no value.
type ButtonData struct{}

// CtrlClassData marks a class header pseudo-control, emitted by
// drivers to name a group of controls.
type CtrlClassData struct{}

// UnknownData stands in for control types this package does not
// decode, such as array payloads.
type UnknownData struct {
	Type uint32
}

func (IntegerData) ctrlData()     {}
func (BooleanData) ctrlData()     {}
func (MenuData) ctrlData()        {}
func (IntegerMenuData) ctrlData() {}
func (BitmaskData) ctrlData()     {}
func (Integer64Data) ctrlData()   {}
func (StringData) ctrlData()      {}
func (ButtonData) ctrlData()      {}
func (CtrlClassData) ctrlData()   {}
func (UnknownData) ctrlData()     {}

// GetControl queries one control by ID and reads its current value.
// ErrControlNotFound is returned when the device does not have the
// control. Valid in any session state.
func (c *Camera) GetControl(id uint32) (*Control, error) {
	q := v4l2.QueryExtCtrl{ID: id}
	ok, err := c.dev.TryIoctl(v4l2.VIDIOC_QUERY_EXT_CTRL, unsafe.Pointer(&q))
	if errors.Is(err, unix.ENOTTY) {
		// Drivers predating the extended query only answer the base one.
		return c.getControlBase(id)
	}
	if err != nil {
		return nil, fmt.Errorf("camera: control query failed: %w", err)
	}
	if !ok {
		return nil, ErrControlNotFound
	}
	return c.buildControl(&q)
}

// getControlBase queries one control with VIDIOC_QUERYCTRL and widens
// the 32-bit reply into the extended shape.
func (c *Camera) getControlBase(id uint32) (*Control, error) {
	q := v4l2.QueryCtrl{ID: id}
	ok, err := c.dev.TryIoctl(v4l2.VIDIOC_QUERYCTRL, unsafe.Pointer(&q))
	if err != nil {
		return nil, fmt.Errorf("camera: control query failed: %w", err)
	}
	if !ok {
		return nil, ErrControlNotFound
	}
	ext := v4l2.QueryExtCtrl{
		ID:           q.ID,
		Typ:          q.Typ,
		Name:         q.Name,
		Minimum:      int64(q.Minimum),
		Maximum:      int64(q.Maximum),
		Step:         uint64(q.Step),
		DefaultValue: int64(q.DefaultValue),
		Flags:        q.Flags,
	}
	return c.buildControl(&ext)
}

// buildControl fills a Control from a query result, fetching the
// current value for readable value-carrying types.
func (c *Camera) buildControl(q *v4l2.QueryExtCtrl) (*Control, error) {
	ctrl := &Control{
		ID:    q.ID,
		Name:  cstr(q.Name[:]),
		Flags: q.Flags,
	}

	switch q.Typ {
	case v4l2.V4L2_CTRL_TYPE_BUTTON:
		ctrl.Data = ButtonData{}
		return ctrl, nil
	case v4l2.V4L2_CTRL_TYPE_CTRL_CLASS:
		ctrl.Data = CtrlClassData{}
		return ctrl, nil
	}

	readable := q.Flags&FLAG_WRITE_ONLY == 0

	switch q.Typ {
	case v4l2.V4L2_CTRL_TYPE_INTEGER:
		d := IntegerData{
			Default: int32(q.DefaultValue),
			Minimum: int32(q.Minimum),
			Maximum: int32(q.Maximum),
			Step:    int32(q.Step),
		}
		if readable {
			v, err := c.getValue(q.ID)
			if err != nil {
				return nil, err
			}
			d.Value = v
		}
		ctrl.Data = d

	case v4l2.V4L2_CTRL_TYPE_BOOLEAN:
		d := BooleanData{Default: q.DefaultValue != 0}
		if readable {
			v, err := c.getValue(q.ID)
			if err != nil {
				return nil, err
			}
			d.Value = v != 0
		}
		ctrl.Data = d

	case v4l2.V4L2_CTRL_TYPE_MENU:
		d := MenuData{Default: uint32(q.DefaultValue)}
		if readable {
			v, err := c.getValue(q.ID)
			if err != nil {
				return nil, err
			}
			d.Value = uint32(v)
		}
		for idx := uint32(q.Minimum); idx <= uint32(q.Maximum); idx++ {
			m := v4l2.QueryMenu{ID: q.ID, Index: idx}
			ok, err := c.dev.TryIoctl(v4l2.VIDIOC_QUERYMENU, unsafe.Pointer(&m))
			if err != nil {
				return nil, fmt.Errorf("camera: menu query failed: %w", err)
			}
			if !ok {
				continue
			}
			d.Items = append(d.Items, MenuItem{Index: idx, Name: cstr(m.Name())})
		}
		ctrl.Data = d

	case v4l2.V4L2_CTRL_TYPE_INTEGER_MENU:
		d := IntegerMenuData{Default: uint32(q.DefaultValue)}
		if readable {
			v, err := c.getValue(q.ID)
			if err != nil {
				return nil, err
			}
			d.Value = uint32(v)
		}
		for idx := uint32(q.Minimum); idx <= uint32(q.Maximum); idx++ {
			m := v4l2.QueryMenu{ID: q.ID, Index: idx}
			ok, err := c.dev.TryIoctl(v4l2.VIDIOC_QUERYMENU, unsafe.Pointer(&m))
			if err != nil {
				return nil, fmt.Errorf("camera: menu query failed: %w", err)
			}
			if !ok {
				continue
			}
			d.Items = append(d.Items, IntegerMenuItem{Index: idx, Value: m.Value()})
		}
		ctrl.Data = d

	case v4l2.V4L2_CTRL_TYPE_BITMASK:
		d := BitmaskData{
			Default: uint32(q.DefaultValue),
			Maximum: uint32(q.Maximum),
		}
		if readable {
			v, err := c.getValue(q.ID)
			if err != nil {
				return nil, err
			}
			d.Value = uint32(v)
		}
		ctrl.Data = d

	case v4l2.V4L2_CTRL_TYPE_INTEGER64:
		d := Integer64Data{
			Default: q.DefaultValue,
			Minimum: q.Minimum,
			Maximum: q.Maximum,
			Step:    int64(q.Step),
		}
		if readable {
			v, err := c.getValue64(q.ID)
			if err != nil {
				return nil, err
			}
			d.Value = v
		}
		ctrl.Data = d

	case v4l2.V4L2_CTRL_TYPE_STRING:
		d := StringData{
			MinLength: uint32(q.Minimum),
			MaxLength: uint32(q.Maximum),
		}
		if readable {
			v, err := c.getString(q.ID, uint32(q.Maximum))
			if err != nil {
				return nil, err
			}
			d.Value = v
		}
		ctrl.Data = d

	default:
		ctrl.Data = UnknownData{Type: q.Typ}
	}

	return ctrl, nil
}

// getValue reads a 32-bit control value with VIDIOC_G_CTRL.
func (c *Camera) getValue(id uint32) (int32, error) {
	ctrl := v4l2.Control{ID: id}
	if err := c.dev.Ioctl(v4l2.VIDIOC_G_CTRL, unsafe.Pointer(&ctrl)); err != nil {
		return 0, fmt.Errorf("camera: control read failed: %w", err)
	}
	return ctrl.Value, nil
}

// getValue64 reads a 64-bit control value with VIDIOC_G_EXT_CTRLS.
func (c *Camera) getValue64(id uint32) (int64, error) {
	ec := v4l2.ExtControl{ID: id}
	ecs := v4l2.ExtControls{
		CtrlClass: id & v4l2.V4L2_CTRL_ID2CLASS,
		Count:     1,
		Controls:  &ec,
	}
	if err := c.dev.Ioctl(v4l2.VIDIOC_G_EXT_CTRLS, unsafe.Pointer(&ecs)); err != nil {
		return 0, fmt.Errorf("camera: control read failed: %w", err)
	}
	return ec.Int64(), nil
}

// getString reads a string control value. maxLength is the driver's
// reported maximum, excluding the terminator.
func (c *Camera) getString(id, maxLength uint32) (string, error) {
	buf := make([]byte, maxLength+1)
	ec := v4l2.ExtControl{ID: id, Size: uint32(len(buf))}
	ec.SetPtr(unsafe.Pointer(&buf[0]))
	ecs := v4l2.ExtControls{
		CtrlClass: id & v4l2.V4L2_CTRL_ID2CLASS,
		Count:     1,
		Controls:  &ec,
	}
	err := c.dev.Ioctl(v4l2.VIDIOC_G_EXT_CTRLS, unsafe.Pointer(&ecs))
	runtime.KeepAlive(buf)
	if err != nil {
		return "", fmt.Errorf("camera: control read failed: %w", err)
	}
	return cstr(buf), nil
}

// SetControl writes a control value. Accepted value types are the Go
// integer types (int, int32, int64, uint32) for integer, menu and
// bitmask controls, bool for boolean controls, string for string
// controls, and nil for buttons. ErrControlNotFound is returned when
// the device does not have the control; a value the driver rejects
// surfaces as the driver's error. Valid in any session state.
func (c *Camera) SetControl(id uint32, value any) error {
	ec := v4l2.ExtControl{ID: id}

	switch v := value.(type) {
	case nil:
		// Button press.
	case int:
		ec.SetInt64(int64(v))
	case int32:
		ec.SetInt64(int64(v))
	case int64:
		ec.SetInt64(v)
	case uint32:
		ec.SetInt64(int64(v))
	case bool:
		if v {
			ec.SetInt64(1)
		}
	case string:
		buf := make([]byte, len(v)+1)
		copy(buf, v)
		ec.Size = uint32(len(buf))
		ec.SetPtr(unsafe.Pointer(&buf[0]))
		defer runtime.KeepAlive(buf)
	default:
		return fmt.Errorf("camera: unsupported control value type %T", value)
	}

	ecs := v4l2.ExtControls{
		CtrlClass: id & v4l2.V4L2_CTRL_ID2CLASS,
		Count:     1,
		Controls:  &ec,
	}
	ok, err := c.dev.TryIoctl(v4l2.VIDIOC_S_EXT_CTRLS, unsafe.Pointer(&ecs))
	if err != nil {
		return fmt.Errorf("camera: control write failed: %w", err)
	}
	if !ok {
		return ErrControlNotFound
	}
	return nil
}

// ControlIter walks the device's controls lazily with the NEXT_CTRL
// enumeration, one query per Next plus the value reads.
type ControlIter struct {
	cam   *Camera
	class uint32
	last  uint32
	err   error
	done  bool
}

// Controls returns an iterator over every control the device exposes.
// Valid in any session state.
func (c *Camera) Controls() *ControlIter {
	return &ControlIter{cam: c}
}

// ControlsByClass returns an iterator over the controls of one class,
// e.g. CLASS_CAMERA. Valid in any session state.
func (c *Camera) ControlsByClass(class uint32) *ControlIter {
	return &ControlIter{cam: c, class: class, last: class}
}

// Next returns the next control. It returns false when the enumeration
// is exhausted or failed; check Err to tell the two apart.
func (it *ControlIter) Next() (*Control, bool) {
	if it.done {
		return nil, false
	}

	for {
		q := v4l2.QueryExtCtrl{ID: it.last | v4l2.V4L2_CTRL_FLAG_NEXT_CTRL}
		ok, err := it.cam.dev.TryIoctl(v4l2.VIDIOC_QUERY_EXT_CTRL, unsafe.Pointer(&q))
		if err != nil {
			it.err = fmt.Errorf("camera: control enumeration failed: %w", err)
			it.done = true
			return nil, false
		}
		if !ok {
			it.done = true
			return nil, false
		}
		// NEXT_CTRL yields controls in ascending ID order, so leaving
		// the requested class ends a class-filtered walk.
		if it.class != 0 && q.ID&v4l2.V4L2_CTRL_ID2CLASS != it.class {
			it.done = true
			return nil, false
		}
		it.last = q.ID

		if q.Flags&FLAG_DISABLED != 0 {
			continue
		}

		ctrl, err := it.cam.buildControl(&q)
		if err != nil {
			it.err = err
			it.done = true
			return nil, false
		}
		return ctrl, true
	}
}

// Err returns the first error the iteration hit, or nil when it ended
// normally.
func (it *ControlIter) Err() error {
	return it.err
}
