//go:build linux

package camera

import (
	"encoding/binary"
	"errors"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/smazurov/camcore/internal/v4l2"
)

// fakeDevice scripts driver behavior behind the transport interface so
// session logic can be exercised without hardware. It dispatches on the
// request code and decodes the argument the way the kernel would.
type fakeDevice struct {
	formats []fakeFormat
	sizes   map[uint32]fakeSizes
	ivals   map[ivalKey]fakeIvals

	// mangleSize and mangleIval rewrite enumeration replies before they
	// are returned, for misbehaving-driver scenarios.
	mangleSize func(*v4l2.Frmsizeenum)
	mangleIval func(*v4l2.Frmivalenum)

	// fmtEcho rewrites the S_FMT reply; nil echoes the request.
	fmtEcho func(*v4l2.PixFormat)
	// parmEcho replaces the S_PARM echo; nil echoes the request.
	parmEcho *v4l2.Fract

	grantBuffers uint32 // 0 grants what was requested
	bufLength    uint32
	querybufErr  error
	querybufAt   uint32 // index querybufErr fires at
	streamOnErr  error

	nbufs     uint32
	queued    map[uint32]bool
	requeued  []uint32
	streaming bool
	frames    []fakeFrame
	mapped    int
	unmapped  int
	closed    bool

	controls []*fakeControl
	// noExtCtrl makes the device reject the extended control query the
	// way a pre-3.17 kernel would.
	noExtCtrl bool
}

type fakeFormat struct {
	fourcc uint32
	desc   string
	flags  uint32
}

type fakeSizes struct {
	discrete []v4l2.FrmsizeDiscrete
	stepwise *v4l2.FrmsizeStepwise
	typ      uint32 // stepwise or continuous, when stepwise is set
}

type ivalKey struct {
	fourcc        uint32
	width, height uint32
}

type fakeIvals struct {
	discrete []v4l2.Fract
	stepwise *v4l2.FrmivalStepwise
	typ      uint32
}

type fakeFrame struct {
	index     uint32
	bytesUsed uint32
}

type fakeControl struct {
	id     uint32
	name   string
	typ    uint32
	min    int64
	max    int64
	step   uint64
	def    int64
	flags  uint32
	value  int64
	str    string
	menu   map[uint32]string
	imenu  map[uint32]int64
	setErr error
}

// newFakeDevice returns a device with one YUYV mode at 640x480, 1/30,
// and 4096-byte buffers.
func newFakeDevice() *fakeDevice {
	yuyv := mustFourCC("YUYV")
	return &fakeDevice{
		formats: []fakeFormat{{fourcc: yuyv, desc: "YUYV 4:2:2"}},
		sizes: map[uint32]fakeSizes{
			yuyv: {discrete: []v4l2.FrmsizeDiscrete{{Width: 640, Height: 480}}},
		},
		ivals: map[ivalKey]fakeIvals{
			{yuyv, 640, 480}: {discrete: []v4l2.Fract{{Numerator: 1, Denominator: 30}}},
		},
		bufLength: 4096,
	}
}

func mustFourCC(s string) uint32 {
	v, err := FourCC(s)
	if err != nil {
		panic(err)
	}
	return v
}

func (d *fakeDevice) Ioctl(req uint32, arg unsafe.Pointer) error {
	switch req {
	case v4l2.VIDIOC_S_FMT:
		f := (*v4l2.Format)(arg)
		if d.fmtEcho != nil {
			d.fmtEcho(&f.Pix)
		}
		f.Pix.BytesPerLine = f.Pix.Width * 2
		f.Pix.SizeImage = f.Pix.BytesPerLine * f.Pix.Height
		return nil

	case v4l2.VIDIOC_S_PARM:
		p := (*v4l2.StreamParm)(arg)
		if d.parmEcho != nil {
			p.Capture.TimePerFrame = *d.parmEcho
		}
		return nil

	case v4l2.VIDIOC_REQBUFS:
		rb := (*v4l2.RequestBuffers)(arg)
		count := rb.Count
		if d.grantBuffers != 0 {
			count = d.grantBuffers
		}
		rb.Count = count
		d.nbufs = count
		d.queued = make(map[uint32]bool)
		return nil

	case v4l2.VIDIOC_QUERYBUF:
		b := (*v4l2.Buffer)(arg)
		if d.querybufErr != nil && b.Index == d.querybufAt {
			return d.querybufErr
		}
		if b.Index >= d.nbufs {
			return unix.EINVAL
		}
		b.Length = d.bufLength
		return nil

	case v4l2.VIDIOC_QBUF:
		b := (*v4l2.Buffer)(arg)
		d.queued[b.Index] = true
		if d.streaming {
			d.requeued = append(d.requeued, b.Index)
		}
		return nil

	case v4l2.VIDIOC_STREAMON:
		if d.streamOnErr != nil {
			return d.streamOnErr
		}
		d.streaming = true
		return nil

	case v4l2.VIDIOC_STREAMOFF:
		d.streaming = false
		return nil

	case v4l2.VIDIOC_DQBUF:
		b := (*v4l2.Buffer)(arg)
		if len(d.frames) == 0 {
			return unix.EIO
		}
		fr := d.frames[0]
		d.frames = d.frames[1:]
		b.Index = fr.index
		b.BytesUsed = fr.bytesUsed
		d.queued[fr.index] = false
		return nil

	case v4l2.VIDIOC_ENUM_FMT:
		desc := (*v4l2.FmtDesc)(arg)
		if int(desc.Index) >= len(d.formats) {
			return unix.EINVAL
		}
		f := d.formats[desc.Index]
		desc.PixelFormat = f.fourcc
		desc.Flags = f.flags
		desc.Description = [32]byte{}
		copy(desc.Description[:31], f.desc)
		return nil

	case v4l2.VIDIOC_ENUM_FRAMESIZES:
		e := (*v4l2.Frmsizeenum)(arg)
		s, ok := d.sizes[e.PixelFormat]
		if !ok {
			return unix.EINVAL
		}
		if s.stepwise != nil {
			if e.Index > 0 {
				return unix.EINVAL
			}
			e.Typ = s.typ
			e.SetStepwise(*s.stepwise)
		} else {
			if int(e.Index) >= len(s.discrete) {
				return unix.EINVAL
			}
			e.Typ = v4l2.V4L2_FRMSIZE_TYPE_DISCRETE
			e.SetDiscrete(s.discrete[e.Index])
		}
		if d.mangleSize != nil {
			d.mangleSize(e)
		}
		return nil

	case v4l2.VIDIOC_ENUM_FRAMEINTERVALS:
		e := (*v4l2.Frmivalenum)(arg)
		iv, ok := d.ivals[ivalKey{e.PixelFormat, e.Width, e.Height}]
		if !ok {
			return unix.EINVAL
		}
		if iv.stepwise != nil {
			if e.Index > 0 {
				return unix.EINVAL
			}
			e.Typ = iv.typ
			e.SetStepwise(*iv.stepwise)
		} else {
			if int(e.Index) >= len(iv.discrete) {
				return unix.EINVAL
			}
			e.Typ = v4l2.V4L2_FRMIVAL_TYPE_DISCRETE
			e.SetDiscrete(iv.discrete[e.Index])
		}
		if d.mangleIval != nil {
			d.mangleIval(e)
		}
		return nil

	case v4l2.VIDIOC_QUERY_EXT_CTRL:
		if d.noExtCtrl {
			return unix.ENOTTY
		}
		q := (*v4l2.QueryExtCtrl)(arg)
		ctrl := d.lookupControl(q.ID)
		if ctrl == nil {
			return unix.EINVAL
		}
		q.ID = ctrl.id
		q.Typ = ctrl.typ
		q.Name = [32]byte{}
		copy(q.Name[:31], ctrl.name)
		q.Minimum = ctrl.min
		q.Maximum = ctrl.max
		q.Step = ctrl.step
		q.DefaultValue = ctrl.def
		q.Flags = ctrl.flags
		q.Elems = 1
		q.ElemSize = 4
		return nil

	case v4l2.VIDIOC_QUERYCTRL:
		q := (*v4l2.QueryCtrl)(arg)
		ctrl := d.lookupControl(q.ID)
		if ctrl == nil {
			return unix.EINVAL
		}
		q.ID = ctrl.id
		q.Typ = ctrl.typ
		q.Name = [32]byte{}
		copy(q.Name[:31], ctrl.name)
		q.Minimum = int32(ctrl.min)
		q.Maximum = int32(ctrl.max)
		q.Step = int32(ctrl.step)
		q.DefaultValue = int32(ctrl.def)
		q.Flags = ctrl.flags
		return nil

	case v4l2.VIDIOC_QUERYMENU:
		m := (*v4l2.QueryMenu)(arg)
		ctrl := d.lookupControl(m.ID)
		if ctrl == nil {
			return unix.EINVAL
		}
		union := m.Name()
		for i := range union {
			union[i] = 0
		}
		if ctrl.menu != nil {
			name, ok := ctrl.menu[m.Index]
			if !ok {
				return unix.EINVAL
			}
			copy(union[:31], name)
			return nil
		}
		if ctrl.imenu != nil {
			v, ok := ctrl.imenu[m.Index]
			if !ok {
				return unix.EINVAL
			}
			binary.NativeEndian.PutUint64(union[:8], uint64(v))
			return nil
		}
		return unix.EINVAL

	case v4l2.VIDIOC_G_CTRL:
		c := (*v4l2.Control)(arg)
		ctrl := d.lookupControl(c.ID)
		if ctrl == nil {
			return unix.EINVAL
		}
		c.Value = int32(ctrl.value)
		return nil

	case v4l2.VIDIOC_S_CTRL:
		c := (*v4l2.Control)(arg)
		ctrl := d.lookupControl(c.ID)
		if ctrl == nil {
			return unix.EINVAL
		}
		ctrl.value = int64(c.Value)
		return nil

	case v4l2.VIDIOC_G_EXT_CTRLS:
		ecs := (*v4l2.ExtControls)(arg)
		ec := ecs.Controls
		ctrl := d.lookupControl(ec.ID)
		if ctrl == nil {
			return unix.EINVAL
		}
		if ctrl.typ == v4l2.V4L2_CTRL_TYPE_STRING {
			buf := unsafe.Slice((*byte)(ec.Ptr()), ec.Size)
			for i := range buf {
				buf[i] = 0
			}
			copy(buf[:len(buf)-1], ctrl.str)
			return nil
		}
		ec.SetInt64(ctrl.value)
		return nil

	case v4l2.VIDIOC_S_EXT_CTRLS:
		ecs := (*v4l2.ExtControls)(arg)
		ec := ecs.Controls
		ctrl := d.lookupControl(ec.ID)
		if ctrl == nil {
			return unix.EINVAL
		}
		if ctrl.setErr != nil {
			return ctrl.setErr
		}
		if ctrl.typ == v4l2.V4L2_CTRL_TYPE_STRING {
			buf := unsafe.Slice((*byte)(ec.Ptr()), ec.Size)
			ctrl.str = cstr(buf)
			return nil
		}
		ctrl.value = ec.Int64()
		return nil
	}

	return unix.ENOTTY
}

// lookupControl resolves an ID, honoring the NEXT_CTRL enumeration
// flag the way the kernel does: the reply is the enabled or disabled
// control with the smallest ID above the requested one.
func (d *fakeDevice) lookupControl(id uint32) *fakeControl {
	if id&v4l2.V4L2_CTRL_FLAG_NEXT_CTRL != 0 {
		base := id &^ uint32(v4l2.V4L2_CTRL_FLAG_NEXT_CTRL)
		var best *fakeControl
		for _, c := range d.controls {
			if c.id > base && (best == nil || c.id < best.id) {
				best = c
			}
		}
		return best
	}
	for _, c := range d.controls {
		if c.id == id {
			return c
		}
	}
	return nil
}

func (d *fakeDevice) TryIoctl(req uint32, arg unsafe.Pointer) (bool, error) {
	err := d.Ioctl(req, arg)
	if errors.Is(err, unix.EINVAL) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (d *fakeDevice) Mmap(offset, length uint32) ([]byte, error) {
	d.mapped++
	return make([]byte, length), nil
}

func (d *fakeDevice) Munmap(b []byte) error {
	d.unmapped++
	return nil
}

func (d *fakeDevice) Close() error {
	d.closed = true
	return nil
}
