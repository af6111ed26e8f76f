//go:build linux

package camera

import (
	"unsafe"

	"github.com/smazurov/camcore/internal/v4l2"
)

// Frame is a lease over one filled kernel buffer, valid until Release
// is called. The data is the device's memory-mapped region sliced to
// the driver-reported used length; no copy is made. The lease shares
// the mapping with the session's buffer pool and exclusively owns the
// dequeued buffer slot until released.
//
// A Frame must be released before the Camera it came from is closed.
type Frame struct {
	// Width and Height are the resolution negotiated when the frame
	// was captured.
	Width  uint32
	Height uint32
	// Format is the FourCC of the negotiated pixel format.
	Format string

	data     []byte
	index    uint32
	cam      *Camera
	region   *region
	released bool
}

// Bytes returns the frame payload. The slice aliases kernel memory and
// is invalidated by Release.
func (f *Frame) Bytes() []byte {
	return f.data
}

// Len returns the payload length, the driver-reported number of bytes
// used.
func (f *Frame) Len() int {
	return len(f.data)
}

// Release re-enqueues the buffer to the device, making it eligible for
// the next capture, and drops the lease's reference on the mapping.
// Safe to call more than once; a no-op after the first call. If the
// session has already stopped streaming, only the reference is
// dropped.
func (f *Frame) Release() {
	if f.released {
		return
	}
	f.released = true
	f.data = nil

	if f.cam.state == stateStreaming {
		buf := v4l2.Buffer{
			Index:  f.index,
			Typ:    v4l2.V4L2_BUF_TYPE_VIDEO_CAPTURE,
			Memory: v4l2.V4L2_MEMORY_MMAP,
		}
		if err := f.cam.dev.Ioctl(v4l2.VIDIOC_QBUF, unsafe.Pointer(&buf)); err != nil {
			f.cam.logger.Warn("failed to requeue buffer", "index", f.index, "error", err)
		}
	}

	f.region.release()
}
