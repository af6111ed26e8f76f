//go:build linux

package camera

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/smazurov/camcore/internal/v4l2"
)

// region is one memory-mapped kernel buffer, shared between the pool
// and any frame leases drawn from it. The reference count, not the
// pool, decides when the mapping is released: a frame may still be
// read after Stop has freed the pool.
type region struct {
	data []byte
	dev  transport
	refs atomic.Int32
}

func (r *region) retain() {
	r.refs.Add(1)
}

func (r *region) release() {
	if r.refs.Add(-1) == 0 {
		_ = r.dev.Munmap(r.data)
		r.data = nil
	}
}

// pool owns the device's buffer allocation: it reserves n buffers,
// queries each one's kernel-assigned length and offset, and maps it.
// One region per buffer index for the pool's lifetime; the pool never
// re-maps.
type pool struct {
	dev     transport
	regions []*region
}

// allocPool is all-or-nothing: if any step fails, everything mapped so
// far is released and no partial pool is left live.
func allocPool(dev transport, n uint32) (*pool, error) {
	req := v4l2.RequestBuffers{
		Count:  n,
		Typ:    v4l2.V4L2_BUF_TYPE_VIDEO_CAPTURE,
		Memory: v4l2.V4L2_MEMORY_MMAP,
	}
	if err := dev.Ioctl(v4l2.VIDIOC_REQBUFS, unsafe.Pointer(&req)); err != nil {
		return nil, fmt.Errorf("camera: buffer request failed: %w", err)
	}
	// The driver may grant fewer buffers than asked for.
	if req.Count == 0 {
		return nil, fmt.Errorf("camera: driver granted no buffers")
	}

	p := &pool{dev: dev}
	for i := uint32(0); i < req.Count; i++ {
		buf := v4l2.Buffer{
			Index:  i,
			Typ:    v4l2.V4L2_BUF_TYPE_VIDEO_CAPTURE,
			Memory: v4l2.V4L2_MEMORY_MMAP,
		}
		if err := dev.Ioctl(v4l2.VIDIOC_QUERYBUF, unsafe.Pointer(&buf)); err != nil {
			p.free()
			return nil, fmt.Errorf("camera: buffer %d query failed: %w", i, err)
		}

		data, err := dev.Mmap(buf.Offset(), buf.Length)
		if err != nil {
			p.free()
			return nil, fmt.Errorf("camera: buffer %d mmap failed: %w", i, err)
		}

		r := &region{data: data, dev: dev}
		r.refs.Store(1) // the pool's own reference
		p.regions = append(p.regions, r)
	}

	return p, nil
}

// free drops the pool's reference on every region. Mappings with
// outstanding frame leases stay valid until the last lease is
// released.
func (p *pool) free() {
	for _, r := range p.regions {
		r.release()
	}
	p.regions = nil
}

func (p *pool) size() int {
	return len(p.regions)
}
