//go:build linux

package camera

import (
	"fmt"
	"unsafe"

	"github.com/smazurov/camcore/internal/v4l2"
)

// FormatInfo describes one pixel format the device can produce.
type FormatInfo struct {
	// Format is the FourCC of the pixel format, e.g. "YUYV".
	Format string
	// Description is the driver's human-readable name for it.
	Description string
	// Compressed is set for compressed formats such as MJPG.
	Compressed bool
	// Emulated is set when the driver converts from another format in
	// software.
	Emulated bool
}

// Resolution is one discrete frame size in pixels.
type Resolution struct {
	Width  uint32
	Height uint32
}

// StepwiseResolution is a range of frame sizes. Continuous ranges are
// reported with a step of 1.
type StepwiseResolution struct {
	Min  Resolution
	Max  Resolution
	Step Resolution
}

// ResolutionInfo holds the sizes a format supports: either a list of
// discrete sizes or a stepwise range, never both.
type ResolutionInfo struct {
	Discrete []Resolution
	Stepwise *StepwiseResolution
}

// StepwiseInterval is a range of frame intervals. Continuous ranges
// are reported with a step of 1/Max.Denominator.
type StepwiseInterval struct {
	Min  Interval
	Max  Interval
	Step Interval
}

// IntervalInfo holds the frame intervals a format and resolution
// support: either a list of discrete intervals or a stepwise range,
// never both.
type IntervalInfo struct {
	Discrete []Interval
	Stepwise *StepwiseInterval
}

// FormatIter walks the device's pixel formats lazily, one ioctl per
// Next. Iteration order is the driver's.
//
//	it := cam.Formats()
//	for {
//	    f, ok := it.Next()
//	    if !ok {
//	        break
//	    }
//	    ...
//	}
//	if err := it.Err(); err != nil { ... }
type FormatIter struct {
	dev   transport
	index uint32
	err   error
	done  bool
}

// Formats returns an iterator over the device's pixel formats. Valid
// in any session state.
func (c *Camera) Formats() *FormatIter {
	return &FormatIter{dev: c.dev}
}

// Next returns the next format. It returns false when the enumeration
// is exhausted or failed; check Err to tell the two apart.
func (it *FormatIter) Next() (FormatInfo, bool) {
	if it.done {
		return FormatInfo{}, false
	}

	desc := v4l2.FmtDesc{
		Index: it.index,
		Typ:   v4l2.V4L2_BUF_TYPE_VIDEO_CAPTURE,
	}
	ok, err := it.dev.TryIoctl(v4l2.VIDIOC_ENUM_FMT, unsafe.Pointer(&desc))
	if err != nil {
		it.err = fmt.Errorf("camera: format enumeration failed: %w", err)
		it.done = true
		return FormatInfo{}, false
	}
	if !ok {
		it.done = true
		return FormatInfo{}, false
	}

	it.index++
	return FormatInfo{
		Format:      FourCCString(desc.PixelFormat),
		Description: cstr(desc.Description[:]),
		Compressed:  desc.Flags&v4l2.V4L2_FMT_FLAG_COMPRESSED != 0,
		Emulated:    desc.Flags&v4l2.V4L2_FMT_FLAG_EMULATED != 0,
	}, true
}

// Err returns the first error the iteration hit, or nil when it ended
// normally.
func (it *FormatIter) Err() error {
	return it.err
}

// Resolutions reports the frame sizes the device supports for a pixel
// format. ErrBadFormat is returned when the device does not produce
// the format at all. Valid in any session state.
func (c *Camera) Resolutions(format string) (*ResolutionInfo, error) {
	fourcc, err := FourCC(format)
	if err != nil {
		return nil, err
	}

	info := &ResolutionInfo{}
	for index := uint32(0); ; index++ {
		size := v4l2.Frmsizeenum{Index: index, PixelFormat: fourcc}
		ok, err := c.dev.TryIoctl(v4l2.VIDIOC_ENUM_FRAMESIZES, unsafe.Pointer(&size))
		if err != nil {
			return nil, fmt.Errorf("camera: frame size enumeration failed: %w", err)
		}
		if !ok {
			if index == 0 {
				return nil, ErrBadFormat
			}
			break
		}
		if size.PixelFormat != fourcc {
			return nil, ErrBadFormat
		}

		switch size.Typ {
		case v4l2.V4L2_FRMSIZE_TYPE_DISCRETE:
			d := size.Discrete()
			info.Discrete = append(info.Discrete, Resolution{d.Width, d.Height})
		case v4l2.V4L2_FRMSIZE_TYPE_STEPWISE, v4l2.V4L2_FRMSIZE_TYPE_CONTINUOUS:
			s := size.Stepwise()
			sw := &StepwiseResolution{
				Min:  Resolution{s.MinWidth, s.MinHeight},
				Max:  Resolution{s.MaxWidth, s.MaxHeight},
				Step: Resolution{s.StepWidth, s.StepHeight},
			}
			if size.Typ == v4l2.V4L2_FRMSIZE_TYPE_CONTINUOUS {
				sw.Step = Resolution{1, 1}
			}
			info.Stepwise = sw
			// Stepwise entries are singular; the driver has nothing
			// more to enumerate.
			return info, nil
		default:
			return nil, fmt.Errorf("camera: unknown frame size type %d", size.Typ)
		}
	}
	return info, nil
}

// Intervals reports the frame intervals the device supports for a
// pixel format at a resolution. ErrBadFormat is returned for an
// unsupported format, ErrBadResolution for an unsupported size. Valid
// in any session state.
func (c *Camera) Intervals(format string, width, height uint32) (*IntervalInfo, error) {
	fourcc, err := FourCC(format)
	if err != nil {
		return nil, err
	}

	info := &IntervalInfo{}
	for index := uint32(0); ; index++ {
		ival := v4l2.Frmivalenum{
			Index:       index,
			PixelFormat: fourcc,
			Width:       width,
			Height:      height,
		}
		ok, err := c.dev.TryIoctl(v4l2.VIDIOC_ENUM_FRAMEINTERVALS, unsafe.Pointer(&ival))
		if err != nil {
			return nil, fmt.Errorf("camera: frame interval enumeration failed: %w", err)
		}
		if !ok {
			if index == 0 {
				return nil, ErrBadResolution
			}
			break
		}
		if ival.PixelFormat != fourcc {
			return nil, ErrBadFormat
		}
		if ival.Width != width || ival.Height != height {
			return nil, ErrBadResolution
		}

		switch ival.Typ {
		case v4l2.V4L2_FRMIVAL_TYPE_DISCRETE:
			d := ival.Discrete()
			info.Discrete = append(info.Discrete, Interval{d.Numerator, d.Denominator})
		case v4l2.V4L2_FRMIVAL_TYPE_STEPWISE, v4l2.V4L2_FRMIVAL_TYPE_CONTINUOUS:
			s := ival.Stepwise()
			sw := &StepwiseInterval{
				Min:  Interval{s.Min.Numerator, s.Min.Denominator},
				Max:  Interval{s.Max.Numerator, s.Max.Denominator},
				Step: Interval{s.Step.Numerator, s.Step.Denominator},
			}
			if ival.Typ == v4l2.V4L2_FRMIVAL_TYPE_CONTINUOUS {
				sw.Step = Interval{1, sw.Max.Denominator}
			}
			info.Stepwise = sw
			return info, nil
		default:
			return nil, fmt.Errorf("camera: unknown frame interval type %d", ival.Typ)
		}
	}
	return info, nil
}

// cstr decodes a null-terminated byte array from the kernel.
func cstr(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
