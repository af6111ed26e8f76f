//go:build linux

package v4l2

import (
	"encoding/binary"
	"unsafe"
)

// Structures and constants from linux/videodev2.h whose layout is the
// same on 32-bit and 64-bit kernels. Arch-dependent structures and the
// ioctl request codes that encode their sizes live in videodev2_64bit.go
// and videodev2_arm.go.

// Compile-time struct size assertions. These cause build failures if a
// struct no longer matches the kernel's expected layout.
var (
	_ [104]byte = [unsafe.Sizeof(Capability{})]byte{}
	_ [64]byte  = [unsafe.Sizeof(FmtDesc{})]byte{}
	_ [48]byte  = [unsafe.Sizeof(PixFormat{})]byte{}
	_ [8]byte   = [unsafe.Sizeof(Fract{})]byte{}
	_ [204]byte = [unsafe.Sizeof(StreamParm{})]byte{}
	_ [8]byte   = [unsafe.Sizeof(FrmsizeDiscrete{})]byte{}
	_ [24]byte  = [unsafe.Sizeof(FrmsizeStepwise{})]byte{}
	_ [44]byte  = [unsafe.Sizeof(Frmsizeenum{})]byte{}
	_ [24]byte  = [unsafe.Sizeof(FrmivalStepwise{})]byte{}
	_ [52]byte  = [unsafe.Sizeof(Frmivalenum{})]byte{}
	_ [20]byte  = [unsafe.Sizeof(RequestBuffers{})]byte{}
	_ [16]byte  = [unsafe.Sizeof(Timecode{})]byte{}
	_ [68]byte  = [unsafe.Sizeof(QueryCtrl{})]byte{}
	_ [232]byte = [unsafe.Sizeof(QueryExtCtrl{})]byte{}
	_ [44]byte  = [unsafe.Sizeof(QueryMenu{})]byte{}
	_ [8]byte   = [unsafe.Sizeof(Control{})]byte{}
	_ [20]byte  = [unsafe.Sizeof(ExtControl{})]byte{}
)

// Request codes whose payload has the same size on every architecture.
const (
	VIDIOC_QUERYCAP            = 0x80685600
	VIDIOC_ENUM_FMT            = 0xc0405602
	VIDIOC_REQBUFS             = 0xc0145608
	VIDIOC_STREAMON            = 0x40045612
	VIDIOC_STREAMOFF           = 0x40045613
	VIDIOC_G_PARM              = 0xc0cc5615
	VIDIOC_S_PARM              = 0xc0cc5616
	VIDIOC_G_CTRL              = 0xc008561b
	VIDIOC_S_CTRL              = 0xc008561c
	VIDIOC_QUERYCTRL           = 0xc0445624
	VIDIOC_QUERYMENU           = 0xc02c5625
	VIDIOC_ENUM_FRAMESIZES     = 0xc02c564a
	VIDIOC_ENUM_FRAMEINTERVALS = 0xc034564b
	VIDIOC_QUERY_EXT_CTRL      = 0xc0e85667
)

const (
	V4L2_BUF_TYPE_VIDEO_CAPTURE = 1
	V4L2_MEMORY_MMAP            = 1

	V4L2_CAP_VIDEO_CAPTURE = 0x00000001
	V4L2_CAP_STREAMING     = 0x04000000
	V4L2_CAP_DEVICE_CAPS   = 0x80000000

	V4L2_FMT_FLAG_COMPRESSED = 0x0001
	V4L2_FMT_FLAG_EMULATED   = 0x0002

	V4L2_FRMSIZE_TYPE_DISCRETE   = 1
	V4L2_FRMSIZE_TYPE_CONTINUOUS = 2
	V4L2_FRMSIZE_TYPE_STEPWISE   = 3

	V4L2_FRMIVAL_TYPE_DISCRETE   = 1
	V4L2_FRMIVAL_TYPE_CONTINUOUS = 2
	V4L2_FRMIVAL_TYPE_STEPWISE   = 3
)

// Control machinery.
const (
	V4L2_CTRL_ID2CLASS       = 0x0fff0000
	V4L2_CTRL_FLAG_NEXT_CTRL = 0x80000000

	V4L2_CTRL_TYPE_INTEGER      = 1
	V4L2_CTRL_TYPE_BOOLEAN      = 2
	V4L2_CTRL_TYPE_MENU         = 3
	V4L2_CTRL_TYPE_BUTTON       = 4
	V4L2_CTRL_TYPE_INTEGER64    = 5
	V4L2_CTRL_TYPE_CTRL_CLASS   = 6
	V4L2_CTRL_TYPE_STRING       = 7
	V4L2_CTRL_TYPE_BITMASK      = 8
	V4L2_CTRL_TYPE_INTEGER_MENU = 9
)

// Capability has size 104 bytes.
type Capability struct {
	Driver       [16]byte  // offset 0
	Card         [32]byte  // offset 16
	BusInfo      [32]byte  // offset 48
	Version      uint32    // offset 80
	Capabilities uint32    // offset 84
	DeviceCaps   uint32    // offset 88
	_            [3]uint32 // offset 92
}

// FmtDesc has size 64 bytes.
type FmtDesc struct {
	Index       uint32    // offset 0
	Typ         uint32    // offset 4
	Flags       uint32    // offset 8
	Description [32]byte  // offset 12
	PixelFormat uint32    // offset 44
	MbusCode    uint32    // offset 48
	_           [3]uint32 // offset 52
}

// PixFormat has size 48 bytes. It is embedded into the arch-dependent
// Format structure.
type PixFormat struct {
	Width        uint32 // offset 0
	Height       uint32 // offset 4
	PixelFormat  uint32 // offset 8
	Field        uint32 // offset 12
	BytesPerLine uint32 // offset 16
	SizeImage    uint32 // offset 20
	Colorspace   uint32 // offset 24
	Priv         uint32 // offset 28
	Flags        uint32 // offset 32
	YcbcrEnc     uint32 // offset 36
	Quantization uint32 // offset 40
	XferFunc     uint32 // offset 44
}

// Fract is a rational number, used for frame intervals.
type Fract struct {
	Numerator   uint32
	Denominator uint32
}

// CaptureParm has size 40 bytes.
type CaptureParm struct {
	Capability   uint32    // offset 0
	CaptureMode  uint32    // offset 4
	TimePerFrame Fract     // offset 8
	ExtendedMode uint32    // offset 16
	ReadBuffers  uint32    // offset 20
	_            [4]uint32 // offset 24
}

// StreamParm has size 204 bytes on both 32-bit and 64-bit kernels: the
// union holds only 4-byte-aligned members.
type StreamParm struct {
	Typ     uint32      // offset 0
	Capture CaptureParm // offset 4 (union with outputparm)
	_       [160]byte   // offset 44, rest of the 200-byte union
}

// RequestBuffers has size 20 bytes.
type RequestBuffers struct {
	Count        uint32   // offset 0
	Typ          uint32   // offset 4
	Memory       uint32   // offset 8
	Capabilities uint32   // offset 12
	Flags        uint8    // offset 16
	_            [3]uint8 // offset 17
}

// Timecode has size 16 bytes.
type Timecode struct {
	Typ      uint32
	Flags    uint32
	Frames   uint8
	Seconds  uint8
	Minutes  uint8
	Hours    uint8
	Userbits [4]uint8
}

// FrmsizeDiscrete is one entry of a discrete frame size enumeration.
type FrmsizeDiscrete struct {
	Width  uint32
	Height uint32
}

// FrmsizeStepwise describes a frame size range.
type FrmsizeStepwise struct {
	MinWidth   uint32
	MaxWidth   uint32
	StepWidth  uint32
	MinHeight  uint32
	MaxHeight  uint32
	StepHeight uint32
}

// Frmsizeenum has size 44 bytes. The union area holds either a
// discrete pair or a stepwise range; inspect Typ before decoding.
type Frmsizeenum struct {
	Index       uint32    // offset 0
	PixelFormat uint32    // offset 4
	Typ         uint32    // offset 8
	union       [24]byte  // offset 12
	_           [2]uint32 // offset 36
}

// Discrete decodes the union as a discrete frame size. Valid only when
// Typ == V4L2_FRMSIZE_TYPE_DISCRETE.
func (e *Frmsizeenum) Discrete() FrmsizeDiscrete {
	return *(*FrmsizeDiscrete)(unsafe.Pointer(&e.union[0]))
}

// Stepwise decodes the union as a frame size range. Valid when Typ is
// V4L2_FRMSIZE_TYPE_STEPWISE or V4L2_FRMSIZE_TYPE_CONTINUOUS.
func (e *Frmsizeenum) Stepwise() FrmsizeStepwise {
	return *(*FrmsizeStepwise)(unsafe.Pointer(&e.union[0]))
}

// SetDiscrete encodes a discrete frame size into the union.
func (e *Frmsizeenum) SetDiscrete(d FrmsizeDiscrete) {
	*(*FrmsizeDiscrete)(unsafe.Pointer(&e.union[0])) = d
}

// SetStepwise encodes a frame size range into the union.
func (e *Frmsizeenum) SetStepwise(s FrmsizeStepwise) {
	*(*FrmsizeStepwise)(unsafe.Pointer(&e.union[0])) = s
}

// FrmivalStepwise describes a frame interval range.
type FrmivalStepwise struct {
	Min  Fract
	Max  Fract
	Step Fract
}

// Frmivalenum has size 52 bytes. Same union discipline as Frmsizeenum.
type Frmivalenum struct {
	Index       uint32    // offset 0
	PixelFormat uint32    // offset 4
	Width       uint32    // offset 8
	Height      uint32    // offset 12
	Typ         uint32    // offset 16
	union       [24]byte  // offset 20
	_           [2]uint32 // offset 44
}

// Discrete decodes the union as a discrete frame interval.
func (e *Frmivalenum) Discrete() Fract {
	return *(*Fract)(unsafe.Pointer(&e.union[0]))
}

// Stepwise decodes the union as a frame interval range.
func (e *Frmivalenum) Stepwise() FrmivalStepwise {
	return *(*FrmivalStepwise)(unsafe.Pointer(&e.union[0]))
}

// SetDiscrete encodes a discrete frame interval into the union.
func (e *Frmivalenum) SetDiscrete(f Fract) {
	*(*Fract)(unsafe.Pointer(&e.union[0])) = f
}

// SetStepwise encodes a frame interval range into the union.
func (e *Frmivalenum) SetStepwise(s FrmivalStepwise) {
	*(*FrmivalStepwise)(unsafe.Pointer(&e.union[0])) = s
}

// QueryCtrl has size 68 bytes.
type QueryCtrl struct {
	ID           uint32    // offset 0
	Typ          uint32    // offset 4
	Name         [32]byte  // offset 8
	Minimum      int32     // offset 40
	Maximum      int32     // offset 44
	Step         int32     // offset 48
	DefaultValue int32     // offset 52
	Flags        uint32    // offset 56
	_            [2]uint32 // offset 60
}

// QueryExtCtrl has size 232 bytes.
type QueryExtCtrl struct {
	ID           uint32     // offset 0
	Typ          uint32     // offset 4
	Name         [32]byte   // offset 8
	Minimum      int64      // offset 40
	Maximum      int64      // offset 48
	Step         uint64     // offset 56
	DefaultValue int64      // offset 64
	Flags        uint32     // offset 72
	ElemSize     uint32     // offset 76
	Elems        uint32     // offset 80
	NrOfDims     uint32     // offset 84
	Dims         [4]uint32  // offset 88
	_            [32]uint32 // offset 104
}

// QueryMenu has size 44 bytes. The kernel declares it packed; every
// field here is 4-byte aligned so the Go layout matches. The union
// holds a name for menu controls and an int64 value for integer menus.
type QueryMenu struct {
	ID    uint32   // offset 0
	Index uint32   // offset 4
	union [32]byte // offset 8
	_     uint32   // offset 40
}

// Name decodes the union as a menu item name.
func (m *QueryMenu) Name() []byte {
	return m.union[:]
}

// Value decodes the union as an integer menu item value. The int64
// sits at offset 8, which is not 8-aligned inside the packed struct,
// so it is assembled byte-wise.
func (m *QueryMenu) Value() int64 {
	return int64(binary.NativeEndian.Uint64(m.union[:8]))
}

// Control has size 8 bytes, the VIDIOC_G_CTRL/VIDIOC_S_CTRL payload.
type Control struct {
	ID    uint32
	Value int32
}

// ExtControl has size 20 bytes. The kernel declares it packed: the
// 8-byte value union starts at offset 12. Integer values and payload
// pointers are stored through the accessors below.
type ExtControl struct {
	ID    uint32  // offset 0
	Size  uint32  // offset 4
	_     uint32  // offset 8
	value [8]byte // offset 12, union of __s64 / pointers
}

// SetInt64 stores a 64-bit integer value.
func (c *ExtControl) SetInt64(v int64) {
	binary.NativeEndian.PutUint64(c.value[:], uint64(v))
}

// Int64 reads the value as a 64-bit integer.
func (c *ExtControl) Int64() int64 {
	return int64(binary.NativeEndian.Uint64(c.value[:]))
}

// SetPtr stores a payload pointer (string controls). The pointed-to
// memory must be kept alive by the caller for the duration of the
// ioctl.
func (c *ExtControl) SetPtr(p unsafe.Pointer) {
	binary.NativeEndian.PutUint64(c.value[:], uint64(uintptr(p)))
}

// Ptr reads the value as a payload pointer.
func (c *ExtControl) Ptr() unsafe.Pointer {
	return unsafe.Pointer(uintptr(binary.NativeEndian.Uint64(c.value[:])))
}

// ExtControls is the VIDIOC_G_EXT_CTRLS/VIDIOC_S_EXT_CTRLS payload.
// Its size differs per architecture because of the trailing pointer;
// see the assertions in the arch files.
type ExtControls struct {
	CtrlClass uint32 // offset 0
	Count     uint32 // offset 4
	ErrorIdx  uint32 // offset 8
	_         [2]uint32
	Controls  *ExtControl
}
