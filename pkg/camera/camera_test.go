//go:build linux

package camera

import (
	"errors"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/smazurov/camcore/internal/v4l2"
)

func TestStartCaptureReleaseStop(t *testing.T) {
	dev := newFakeDevice()
	dev.frames = []fakeFrame{{index: 0, bytesUsed: 1024}, {index: 1, bytesUsed: 2048}}
	cam := newCamera(dev)

	if err := cam.Start(nil); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !cam.Streaming() {
		t.Fatal("session not streaming after Start")
	}
	if !dev.streaming {
		t.Fatal("device not streaming after Start")
	}
	if dev.mapped != 2 {
		t.Fatalf("mapped %d buffers, want 2", dev.mapped)
	}
	for i := uint32(0); i < 2; i++ {
		if !dev.queued[i] {
			t.Errorf("buffer %d not queued before stream on", i)
		}
	}

	frame, err := cam.Capture()
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if frame.Len() != 1024 {
		t.Errorf("frame length = %d, want 1024", frame.Len())
	}
	if frame.Width != 640 || frame.Height != 480 {
		t.Errorf("frame resolution = %dx%d, want 640x480", frame.Width, frame.Height)
	}
	if frame.Format != "YUYV" {
		t.Errorf("frame format = %q, want YUYV", frame.Format)
	}

	frame.Release()
	if len(dev.requeued) != 1 || dev.requeued[0] != 0 {
		t.Errorf("requeued buffers = %v, want [0]", dev.requeued)
	}

	if err := cam.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if cam.Streaming() {
		t.Error("session still streaming after Stop")
	}
	if dev.streaming {
		t.Error("device still streaming after Stop")
	}
	if dev.unmapped != dev.mapped {
		t.Errorf("unmapped %d of %d mapped buffers", dev.unmapped, dev.mapped)
	}
}

func TestStartNegotiationMismatches(t *testing.T) {
	tests := []struct {
		name    string
		prep    func(*fakeDevice)
		cfg     Config
		wantErr error
	}{
		{
			name: "clamped resolution",
			prep: func(d *fakeDevice) {
				d.fmtEcho = func(p *v4l2.PixFormat) {
					p.Width, p.Height = 640, 480
				}
			},
			cfg:     Config{Width: 1920, Height: 1080},
			wantErr: ErrBadResolution,
		},
		{
			name: "substituted format",
			prep: func(d *fakeDevice) {
				d.fmtEcho = func(p *v4l2.PixFormat) {
					p.PixelFormat = mustFourCC("MJPG")
				}
			},
			cfg:     Config{Format: "YUYV"},
			wantErr: ErrBadFormat,
		},
		{
			name: "substituted field",
			prep: func(d *fakeDevice) {
				d.fmtEcho = func(p *v4l2.PixFormat) {
					p.Field = uint32(FIELD_INTERLACED)
				}
			},
			cfg:     Config{Field: FIELD_NONE},
			wantErr: ErrBadField,
		},
		{
			name: "unsupported interval",
			prep: func(d *fakeDevice) {
				d.parmEcho = &v4l2.Fract{Numerator: 1, Denominator: 25}
			},
			cfg:     Config{Interval: Interval{1, 30}},
			wantErr: ErrBadInterval,
		},
		{
			name: "zero denominator echo",
			prep: func(d *fakeDevice) {
				d.parmEcho = &v4l2.Fract{}
			},
			cfg:     Config{Interval: Interval{1, 30}},
			wantErr: ErrBadInterval,
		},
		{
			name:    "unparseable format",
			prep:    func(d *fakeDevice) {},
			cfg:     Config{Format: "Y8"},
			wantErr: ErrBadFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := newFakeDevice()
			tt.prep(dev)
			cam := newCamera(dev)

			err := cam.Start(&tt.cfg)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Start error = %v, want %v", err, tt.wantErr)
			}
			if cam.Streaming() {
				t.Error("session streaming after failed negotiation")
			}
			if dev.mapped != 0 {
				t.Errorf("mapped %d buffers before negotiation succeeded", dev.mapped)
			}
			if cam.state != stateIdle {
				t.Error("session not retryable after negotiation mismatch")
			}
		})
	}
}

func TestStartEquivalentIntervalAccepted(t *testing.T) {
	dev := newFakeDevice()
	// 2/60 is the same rate as 1/30 and must pass the echo check.
	dev.parmEcho = &v4l2.Fract{Numerator: 2, Denominator: 60}
	cam := newCamera(dev)

	if err := cam.Start(&Config{Interval: Interval{1, 30}}); err != nil {
		t.Fatalf("Start rejected an equivalent interval echo: %v", err)
	}
}

func TestStartStreamOnFailureRollsBack(t *testing.T) {
	dev := newFakeDevice()
	dev.streamOnErr = unix.EIO
	cam := newCamera(dev)

	err := cam.Start(nil)
	if err == nil {
		t.Fatal("Start succeeded despite stream on failure")
	}
	if dev.mapped == 0 {
		t.Fatal("buffers were never mapped, rollback test is vacuous")
	}
	if dev.unmapped != dev.mapped {
		t.Errorf("unmapped %d of %d mapped buffers after rollback", dev.unmapped, dev.mapped)
	}
	if cam.state != stateAborted {
		t.Error("session not aborted after stream on failure")
	}
}

func TestStartGrantsFewerBuffers(t *testing.T) {
	dev := newFakeDevice()
	dev.grantBuffers = 1
	dev.frames = []fakeFrame{{index: 0, bytesUsed: 512}}
	cam := newCamera(dev)

	if err := cam.Start(&Config{NBuffers: 4}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if dev.mapped != 1 {
		t.Errorf("mapped %d buffers, want the driver's grant of 1", dev.mapped)
	}
}

func TestStartAllocRollback(t *testing.T) {
	dev := newFakeDevice()
	dev.querybufErr = unix.EIO
	dev.querybufAt = 1
	cam := newCamera(dev)

	err := cam.Start(nil)
	if err == nil {
		t.Fatal("Start succeeded despite buffer query failure")
	}
	if dev.unmapped != dev.mapped {
		t.Errorf("unmapped %d of %d mapped buffers after alloc rollback", dev.unmapped, dev.mapped)
	}
}

func TestCaptureGuardsDriverReplies(t *testing.T) {
	t.Run("index outside pool", func(t *testing.T) {
		dev := newFakeDevice()
		dev.frames = []fakeFrame{{index: 7, bytesUsed: 64}}
		cam := newCamera(dev)
		if err := cam.Start(nil); err != nil {
			t.Fatalf("Start failed: %v", err)
		}
		if _, err := cam.Capture(); err == nil {
			t.Fatal("Capture accepted an out-of-pool buffer index")
		}
	})

	t.Run("bytesused beyond mapping", func(t *testing.T) {
		dev := newFakeDevice()
		dev.frames = []fakeFrame{{index: 0, bytesUsed: dev.bufLength + 1}}
		cam := newCamera(dev)
		if err := cam.Start(nil); err != nil {
			t.Fatalf("Start failed: %v", err)
		}
		if _, err := cam.Capture(); err == nil {
			t.Fatal("Capture accepted a bytesused beyond the mapping")
		}
	})
}

func TestFrameSurvivesStop(t *testing.T) {
	dev := newFakeDevice()
	dev.frames = []fakeFrame{{index: 0, bytesUsed: 256}}
	cam := newCamera(dev)
	if err := cam.Start(nil); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	frame, err := cam.Capture()
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	frame.Bytes()[0] = 0xab

	if err := cam.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	// The held frame's region must outlive the pool teardown.
	if dev.unmapped != dev.mapped-1 {
		t.Fatalf("unmapped %d of %d regions while a frame is held", dev.unmapped, dev.mapped)
	}
	if frame.Bytes()[0] != 0xab {
		t.Error("frame bytes changed across Stop")
	}

	requeuedBefore := len(dev.requeued)
	frame.Release()
	if dev.unmapped != dev.mapped {
		t.Errorf("unmapped %d of %d regions after last release", dev.unmapped, dev.mapped)
	}
	if len(dev.requeued) != requeuedBefore {
		t.Error("frame was requeued after the stream ended")
	}
}

func TestFrameReleaseIdempotent(t *testing.T) {
	dev := newFakeDevice()
	dev.frames = []fakeFrame{{index: 0, bytesUsed: 128}}
	cam := newCamera(dev)
	if err := cam.Start(nil); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	frame, err := cam.Capture()
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	frame.Release()
	frame.Release()
	if len(dev.requeued) != 1 {
		t.Errorf("requeued %d times, want 1", len(dev.requeued))
	}
}

func TestLifecyclePanics(t *testing.T) {
	mustPanic := func(t *testing.T, f func()) {
		t.Helper()
		defer func() {
			if recover() == nil {
				t.Fatal("expected a panic")
			}
		}()
		f()
	}

	t.Run("capture while idle", func(t *testing.T) {
		cam := newCamera(newFakeDevice())
		mustPanic(t, func() { cam.Capture() })
	})

	t.Run("stop while idle", func(t *testing.T) {
		cam := newCamera(newFakeDevice())
		mustPanic(t, func() { cam.Stop() })
	})

	t.Run("double start", func(t *testing.T) {
		cam := newCamera(newFakeDevice())
		if err := cam.Start(nil); err != nil {
			t.Fatalf("Start failed: %v", err)
		}
		mustPanic(t, func() { cam.Start(nil) })
	})

	t.Run("start after abort", func(t *testing.T) {
		dev := newFakeDevice()
		dev.streamOnErr = unix.EIO
		cam := newCamera(dev)
		if err := cam.Start(nil); err == nil {
			t.Fatal("Start succeeded despite stream on failure")
		}
		mustPanic(t, func() { cam.Start(nil) })
	})
}

func TestCloseStopsStreaming(t *testing.T) {
	dev := newFakeDevice()
	cam := newCamera(dev)
	if err := cam.Start(nil); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := cam.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if dev.streaming {
		t.Error("device still streaming after Close")
	}
	if !dev.closed {
		t.Error("device handle not closed")
	}
	if dev.unmapped != dev.mapped {
		t.Errorf("unmapped %d of %d buffers after Close", dev.unmapped, dev.mapped)
	}
}

func TestConfigDefaults(t *testing.T) {
	c := Config{}.withDefaults()
	if c.Width != 640 || c.Height != 480 {
		t.Errorf("default resolution = %dx%d, want 640x480", c.Width, c.Height)
	}
	if c.Format != "YUYV" {
		t.Errorf("default format = %q, want YUYV", c.Format)
	}
	if c.Interval != (Interval{1, 30}) {
		t.Errorf("default interval = %v, want 1/30", c.Interval)
	}
	if c.NBuffers != 2 {
		t.Errorf("default buffer count = %d, want 2", c.NBuffers)
	}
}

func TestFourCCRoundTrip(t *testing.T) {
	v, err := FourCC("MJPG")
	if err != nil {
		t.Fatalf("FourCC failed: %v", err)
	}
	if got := FourCCString(v); got != "MJPG" {
		t.Errorf("round trip = %q, want MJPG", got)
	}
	if _, err := FourCC("TOOLONG"); !errors.Is(err, ErrBadFormat) {
		t.Errorf("FourCC on a 7-byte code: error = %v, want ErrBadFormat", err)
	}
}
