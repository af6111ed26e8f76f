//go:build linux

package camera

import "fmt"

// Interval is a frame interval: the camera produces one frame every
// Numerator/Denominator seconds. Note this is the reciprocal of a
// frame rate; 30 fps is Interval{1, 30}.
type Interval struct {
	Numerator   uint32
	Denominator uint32
}

// FPS returns the interval expressed as frames per second.
func (i Interval) FPS() float64 {
	if i.Numerator == 0 {
		return 0
	}
	return float64(i.Denominator) / float64(i.Numerator)
}

func (i Interval) String() string {
	return fmt.Sprintf("%d/%d", i.Numerator, i.Denominator)
}

// Field selects how frames are stored: progressive, single field, or
// one of the interlaced orders. Values match the kernel enum.
type Field uint32

// Field modes.
const (
	// FIELD_ANY lets the driver pick whatever it considers best.
	FIELD_ANY Field = 0
	// FIELD_NONE is progressive; the device has no fields.
	FIELD_NONE Field = 1
	// FIELD_TOP is the top field only.
	FIELD_TOP Field = 2
	// FIELD_BOTTOM is the bottom field only.
	FIELD_BOTTOM Field = 3
	// FIELD_INTERLACED stores both fields interlaced.
	FIELD_INTERLACED Field = 4
	// FIELD_SEQ_TB stores both fields sequentially, top first.
	FIELD_SEQ_TB Field = 5
	// FIELD_SEQ_BT stores both fields sequentially, bottom first.
	FIELD_SEQ_BT Field = 6
	// FIELD_ALTERNATE alternates fields into separate buffers.
	FIELD_ALTERNATE Field = 7
	// FIELD_INTERLACED_TB is interlaced, top field transmitted first.
	FIELD_INTERLACED_TB Field = 8
	// FIELD_INTERLACED_BT is interlaced, bottom field transmitted first.
	FIELD_INTERLACED_BT Field = 9
)

// Config describes the mode a capture session is started in. Zero
// fields are replaced with defaults: 640x480 YUYV, one frame per 1/30
// second, progressive, two kernel buffers.
type Config struct {
	// Interval is the requested frame interval (not a frame rate).
	Interval Interval
	// Width and Height are the requested resolution in pixels.
	Width  uint32
	Height uint32
	// Format is the FourCC of the requested pixel format, e.g. "YUYV"
	// or "MJPG". Case-sensitive.
	Format string
	// Field is the requested interlacing mode.
	Field Field
	// NBuffers is the number of kernel buffers to allocate, at least 1.
	NBuffers uint32
}

func (c Config) withDefaults() Config {
	if c.Interval == (Interval{}) {
		c.Interval = Interval{1, 30}
	}
	if c.Width == 0 && c.Height == 0 {
		c.Width, c.Height = 640, 480
	}
	if c.Format == "" {
		c.Format = "YUYV"
	}
	if c.NBuffers == 0 {
		c.NBuffers = 2
	}
	return c
}

// FourCC packs a 4-character format code into its numeric form.
func FourCC(code string) (uint32, error) {
	if len(code) != 4 {
		return 0, fmt.Errorf("camera: %q is not a FourCC: %w", code, ErrBadFormat)
	}
	return uint32(code[0]) | uint32(code[1])<<8 | uint32(code[2])<<16 | uint32(code[3])<<24, nil
}

// FourCCString unpacks a numeric format code into its 4-character form.
func FourCCString(code uint32) string {
	return string([]byte{
		byte(code),
		byte(code >> 8),
		byte(code >> 16),
		byte(code >> 24),
	})
}
