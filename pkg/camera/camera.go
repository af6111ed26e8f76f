//go:build linux

// Package camera implements a capture session against a V4L2 video
// device: format and frame-rate negotiation, a pool of memory-mapped
// kernel buffers handed out as zero-copy frame leases, enumeration of
// supported formats/resolutions/intervals, and the device control
// subsystem.
//
// A session is single-threaded: Capture blocks the calling goroutine
// until the driver has a filled buffer, and a Camera must not be
// driven from more than one goroutine concurrently.
//
//	cam, err := camera.Open("/dev/video0")
//	if err := cam.Start(&camera.Config{
//	    Width: 1280, Height: 720,
//	    Format: "YUYV",
//	    Interval: camera.Interval{1, 30},
//	}); err != nil { ... }
//	frame, err := cam.Capture()
//	process(frame.Bytes())
//	frame.Release()
//	cam.Stop()
//	cam.Close()
//
// Start, Capture and Stop panic when called out of sequence: an
// out-of-order call is a programming bug, not a runtime condition.
package camera

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/smazurov/camcore/internal/v4l2"
)

type state int

const (
	stateIdle state = iota
	stateStreaming
	stateAborted
)

// Camera is a capture session on one device. The zero value is not
// usable; construct with Open.
type Camera struct {
	dev    transport
	state  state
	logger *slog.Logger

	// Negotiated mode, meaningful once Streaming has been entered.
	width    uint32
	height   uint32
	fourcc   uint32
	interval Interval

	pool *pool
}

// Open opens the device node and returns an idle session. The
// descriptor is blocking; Capture waits on it.
func Open(path string) (*Camera, error) {
	dev, err := openTransport(path)
	if err != nil {
		return nil, fmt.Errorf("camera: open %s: %w", path, err)
	}
	return &Camera{
		dev:    dev,
		state:  stateIdle,
		logger: slog.With("component", "camera", "device", path),
	}, nil
}

// newCamera wires a session onto an existing transport. Used by tests.
func newCamera(dev transport) *Camera {
	return &Camera{
		dev:    dev,
		state:  stateIdle,
		logger: slog.With("component", "camera"),
	}
}

// Start negotiates the requested mode and flips the device into
// streaming. On a negotiation mismatch the typed error is returned and
// the session stays idle and retryable; if the device fails after
// buffers were allocated, the allocation is rolled back and the
// session is aborted.
//
// Start panics unless the session is idle.
func (c *Camera) Start(cfg *Config) error {
	if c.state != stateIdle {
		panic("camera: Start called on a non-idle session")
	}

	conf := Config{}
	if cfg != nil {
		conf = *cfg
	}
	conf = conf.withDefaults()

	fourcc, err := FourCC(conf.Format)
	if err != nil {
		return err
	}

	if err := c.tuneFormat(conf.Width, conf.Height, fourcc, conf.Field); err != nil {
		return err
	}
	if err := c.tuneStream(conf.Interval); err != nil {
		return err
	}

	p, err := allocPool(c.dev, conf.NBuffers)
	if err != nil {
		return err
	}

	if err := c.streamOn(p); err != nil {
		// Roll back the allocation. The device may be half-configured
		// at this point, so the session is not reusable.
		p.free()
		c.state = stateAborted
		return fmt.Errorf("camera: stream start failed: %w", err)
	}

	c.width = conf.Width
	c.height = conf.Height
	c.fourcc = fourcc
	c.interval = conf.Interval
	c.pool = p
	c.state = stateStreaming

	c.logger.Debug("streaming started",
		"width", conf.Width, "height", conf.Height,
		"format", conf.Format, "interval", conf.Interval.String(),
		"buffers", p.size())
	return nil
}

// tuneFormat sets resolution, pixel format and field mode, then checks
// the driver's echo for exactness.
func (c *Camera) tuneFormat(width, height, fourcc uint32, field Field) error {
	f := v4l2.Format{Typ: v4l2.V4L2_BUF_TYPE_VIDEO_CAPTURE}
	f.Pix.Width = width
	f.Pix.Height = height
	f.Pix.PixelFormat = fourcc
	f.Pix.Field = uint32(field)

	if err := c.dev.Ioctl(v4l2.VIDIOC_S_FMT, unsafe.Pointer(&f)); err != nil {
		return fmt.Errorf("camera: set format failed: %w", err)
	}

	if f.Pix.Width != width || f.Pix.Height != height {
		return ErrBadResolution
	}
	if f.Pix.PixelFormat != fourcc {
		return ErrBadFormat
	}
	// FIELD_ANY asks the driver to choose, so any echo is acceptable.
	if field != FIELD_ANY && f.Pix.Field != uint32(field) {
		return ErrBadField
	}
	return nil
}

// tuneStream sets the frame interval and checks the echo by
// cross-multiplication, so 2/60 still satisfies a 1/30 request while
// avoiding floating-point comparison.
func (c *Camera) tuneStream(interval Interval) error {
	parm := v4l2.StreamParm{Typ: v4l2.V4L2_BUF_TYPE_VIDEO_CAPTURE}
	parm.Capture.TimePerFrame = v4l2.Fract{
		Numerator:   interval.Numerator,
		Denominator: interval.Denominator,
	}

	if err := c.dev.Ioctl(v4l2.VIDIOC_S_PARM, unsafe.Pointer(&parm)); err != nil {
		return fmt.Errorf("camera: set stream parameters failed: %w", err)
	}

	echo := parm.Capture.TimePerFrame
	if echo.Denominator == 0 ||
		uint64(echo.Numerator)*uint64(interval.Denominator) !=
			uint64(echo.Denominator)*uint64(interval.Numerator) {
		return ErrBadInterval
	}
	return nil
}

// streamOn enqueues every pool buffer and switches the device into
// streaming mode.
func (c *Camera) streamOn(p *pool) error {
	for i := range p.regions {
		buf := v4l2.Buffer{
			Index:  uint32(i),
			Typ:    v4l2.V4L2_BUF_TYPE_VIDEO_CAPTURE,
			Memory: v4l2.V4L2_MEMORY_MMAP,
		}
		if err := c.dev.Ioctl(v4l2.VIDIOC_QBUF, unsafe.Pointer(&buf)); err != nil {
			return err
		}
	}

	typ := uint32(v4l2.V4L2_BUF_TYPE_VIDEO_CAPTURE)
	return c.dev.Ioctl(v4l2.VIDIOC_STREAMON, unsafe.Pointer(&typ))
}

// Capture blocks until the device has a filled buffer, dequeues it and
// returns it as a zero-copy Frame lease. Releasing the frame makes the
// buffer available for the next capture.
//
// Capture panics unless the session is streaming.
func (c *Camera) Capture() (*Frame, error) {
	if c.state != stateStreaming {
		panic("camera: Capture called on a non-streaming session")
	}

	buf := v4l2.Buffer{
		Typ:    v4l2.V4L2_BUF_TYPE_VIDEO_CAPTURE,
		Memory: v4l2.V4L2_MEMORY_MMAP,
	}
	if err := c.dev.Ioctl(v4l2.VIDIOC_DQBUF, unsafe.Pointer(&buf)); err != nil {
		return nil, fmt.Errorf("camera: dequeue failed: %w", err)
	}

	if int(buf.Index) >= len(c.pool.regions) {
		return nil, fmt.Errorf("camera: driver returned buffer index %d outside the pool", buf.Index)
	}
	r := c.pool.regions[buf.Index]
	if int(buf.BytesUsed) > len(r.data) {
		return nil, fmt.Errorf("camera: driver reported %d bytes used in a %d byte buffer",
			buf.BytesUsed, len(r.data))
	}

	r.retain()
	return &Frame{
		Width:  c.width,
		Height: c.height,
		Format: FourCCString(c.fourcc),
		data:   r.data[:buf.BytesUsed],
		index:  buf.Index,
		cam:    c,
		region: r,
	}, nil
}

// Stop takes the device out of streaming mode and frees the buffer
// pool. The session is terminal afterwards: capturing again requires a
// new Open.
//
// Stop panics unless the session is streaming.
func (c *Camera) Stop() error {
	if c.state != stateStreaming {
		panic("camera: Stop called on a non-streaming session")
	}

	typ := uint32(v4l2.V4L2_BUF_TYPE_VIDEO_CAPTURE)
	err := c.dev.Ioctl(v4l2.VIDIOC_STREAMOFF, unsafe.Pointer(&typ))

	// Free the allocation even when STREAMOFF failed; leaving mapped
	// buffers behind would leak across the session's end of life.
	c.state = stateAborted
	c.pool.free()
	c.pool = nil

	if err != nil {
		return fmt.Errorf("camera: stream stop failed: %w", err)
	}
	return nil
}

// Close releases the device handle, stopping the stream first when
// needed. Outstanding frames must already be released.
func (c *Camera) Close() error {
	var err error
	if c.state == stateStreaming {
		err = c.Stop()
	}
	if cerr := c.dev.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("camera: close failed: %w", cerr)
	}
	return err
}

// Resolution returns the negotiated resolution. Meaningful only once
// Streaming has been entered at least once.
func (c *Camera) Resolution() (width, height uint32) {
	return c.width, c.height
}

// Streaming reports whether the session is currently streaming.
func (c *Camera) Streaming() bool {
	return c.state == stateStreaming
}
