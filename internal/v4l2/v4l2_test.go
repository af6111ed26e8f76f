//go:build linux

package v4l2

import (
	"encoding/binary"
	"testing"
	"unsafe"
)

// The ioctl request code embeds the payload size in bits 16-29. If a
// struct definition drifts from the kernel layout, the code and the Go
// sizeof disagree and the driver would reject or misparse the request.
func TestRequestCodesMatchPayloadSizes(t *testing.T) {
	tests := []struct {
		name string
		code uint32
		size uintptr
	}{
		{"VIDIOC_QUERYCAP", VIDIOC_QUERYCAP, unsafe.Sizeof(Capability{})},
		{"VIDIOC_ENUM_FMT", VIDIOC_ENUM_FMT, unsafe.Sizeof(FmtDesc{})},
		{"VIDIOC_S_FMT", VIDIOC_S_FMT, unsafe.Sizeof(Format{})},
		{"VIDIOC_G_FMT", VIDIOC_G_FMT, unsafe.Sizeof(Format{})},
		{"VIDIOC_REQBUFS", VIDIOC_REQBUFS, unsafe.Sizeof(RequestBuffers{})},
		{"VIDIOC_QUERYBUF", VIDIOC_QUERYBUF, unsafe.Sizeof(Buffer{})},
		{"VIDIOC_QBUF", VIDIOC_QBUF, unsafe.Sizeof(Buffer{})},
		{"VIDIOC_DQBUF", VIDIOC_DQBUF, unsafe.Sizeof(Buffer{})},
		{"VIDIOC_S_PARM", VIDIOC_S_PARM, unsafe.Sizeof(StreamParm{})},
		{"VIDIOC_G_CTRL", VIDIOC_G_CTRL, unsafe.Sizeof(Control{})},
		{"VIDIOC_S_CTRL", VIDIOC_S_CTRL, unsafe.Sizeof(Control{})},
		{"VIDIOC_QUERYCTRL", VIDIOC_QUERYCTRL, unsafe.Sizeof(QueryCtrl{})},
		{"VIDIOC_QUERYMENU", VIDIOC_QUERYMENU, unsafe.Sizeof(QueryMenu{})},
		{"VIDIOC_ENUM_FRAMESIZES", VIDIOC_ENUM_FRAMESIZES, unsafe.Sizeof(Frmsizeenum{})},
		{"VIDIOC_ENUM_FRAMEINTERVALS", VIDIOC_ENUM_FRAMEINTERVALS, unsafe.Sizeof(Frmivalenum{})},
		{"VIDIOC_G_EXT_CTRLS", VIDIOC_G_EXT_CTRLS, unsafe.Sizeof(ExtControls{})},
		{"VIDIOC_S_EXT_CTRLS", VIDIOC_S_EXT_CTRLS, unsafe.Sizeof(ExtControls{})},
		{"VIDIOC_QUERY_EXT_CTRL", VIDIOC_QUERY_EXT_CTRL, unsafe.Sizeof(QueryExtCtrl{})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := uintptr((tt.code >> 16) & 0x3fff)
			if encoded != tt.size {
				t.Errorf("request encodes payload size %d, struct has size %d", encoded, tt.size)
			}
		})
	}
}

func TestFrmsizeenumUnion(t *testing.T) {
	e := Frmsizeenum{Typ: V4L2_FRMSIZE_TYPE_STEPWISE}
	sw := (*FrmsizeStepwise)(unsafe.Pointer(&e.union[0]))
	*sw = FrmsizeStepwise{
		MinWidth: 320, MaxWidth: 1920, StepWidth: 16,
		MinHeight: 240, MaxHeight: 1080, StepHeight: 16,
	}

	got := e.Stepwise()
	if got.MinWidth != 320 || got.MaxWidth != 1920 || got.StepWidth != 16 {
		t.Errorf("stepwise width decode = %+v", got)
	}

	// The discrete view aliases the first eight bytes of the union.
	d := e.Discrete()
	if d.Width != 320 || d.Height != 1920 {
		t.Errorf("discrete view = %+v, want aliased stepwise head", d)
	}
}

func TestQueryMenuValue(t *testing.T) {
	m := QueryMenu{}
	want := int64(-42)
	binary.NativeEndian.PutUint64(m.union[:8], uint64(want))
	if got := m.Value(); got != want {
		t.Errorf("Value() = %d, want %d", got, want)
	}
}

func TestExtControlValueRoundTrip(t *testing.T) {
	c := ExtControl{ID: 1}
	c.SetInt64(-1 << 40)
	if got := c.Int64(); got != -1<<40 {
		t.Errorf("Int64() = %d, want %d", got, -1<<40)
	}
}
