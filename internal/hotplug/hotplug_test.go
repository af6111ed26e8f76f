//go:build linux

package hotplug

import (
	"context"
	"errors"
	"testing"
)

func TestParseUEvent(t *testing.T) {
	tests := []struct {
		name   string
		input  []byte
		want   Change
		wantOK bool
	}{
		{
			name:  "empty input",
			input: []byte{},
		},
		{
			name:  "no separator",
			input: []byte("invalid"),
		},
		{
			name:  "missing action",
			input: []byte("@/devices/foo"),
		},
		{
			name:   "video device add",
			input:  []byte("add@/devices/pci0000:00/usb1/1-2/video4linux/video0\x00SUBSYSTEM=video4linux\x00DEVNAME=video0\x00"),
			want:   Change{Action: "add", Name: "video0", Path: "/dev/video0"},
			wantOK: true,
		},
		{
			name:   "video device remove with /dev prefix",
			input:  []byte("remove@/devices/pci0000:00/usb1/1-2/video4linux/video2\x00SUBSYSTEM=video4linux\x00DEVNAME=/dev/video2\x00"),
			want:   Change{Action: "remove", Name: "video2", Path: "/dev/video2"},
			wantOK: true,
		},
		{
			name:  "other subsystem ignored",
			input: []byte("add@/devices/usb/1-1\x00SUBSYSTEM=usb\x00DEVNAME=bus/usb/001/004\x00"),
		},
		{
			name:  "change action ignored",
			input: []byte("change@/devices/foo/video0\x00SUBSYSTEM=video4linux\x00DEVNAME=video0\x00"),
		},
		{
			name:  "missing devname ignored",
			input: []byte("add@/devices/foo/video0\x00SUBSYSTEM=video4linux\x00"),
		},
		{
			name:  "only null bytes",
			input: []byte{0, 0, 0, 0},
		},
		{
			name:   "libudev header skipped",
			input:  append([]byte("libudev\x00\x01\x02\x03\x00"), []byte("add@/devices/foo/video1\x00SUBSYSTEM=video4linux\x00DEVNAME=video1\x00")...),
			want:   Change{Action: "add", Name: "video1", Path: "/dev/video1"},
			wantOK: true,
		},
		{
			name:   "value containing equals",
			input:  []byte("add@/devices/foo/video0\x00SUBSYSTEM=video4linux\x00DEVNAME=video0\x00ID_MODEL=a=b=c\x00"),
			want:   Change{Action: "add", Name: "video0", Path: "/dev/video0"},
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseUEvent(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ok: expected %v, got %v (%+v)", tt.wantOK, ok, got)
			}
			if !ok {
				return
			}
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestNewMonitorClose(t *testing.T) {
	m, err := NewMonitor()
	if err != nil {
		t.Skipf("netlink unavailable: %v", err)
	}

	if m.fd <= 0 {
		t.Errorf("expected valid fd, got %d", m.fd)
	}
	if closeErr := m.Close(); closeErr != nil {
		t.Errorf("Close() error: %v", closeErr)
	}

	// Second close reports the stale descriptor.
	if closeErr := m.Close(); closeErr == nil {
		t.Error("expected error on second Close()")
	}
}

func TestMonitorRunCancellation(t *testing.T) {
	m, err := NewMonitor()
	if err != nil {
		t.Skipf("netlink unavailable: %v", err)
	}
	defer func() { _ = m.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ch := make(chan Change, 1)
	runErr := m.Run(ctx, ch)

	if !errors.Is(runErr, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", runErr)
	}
	if _, open := <-ch; open {
		t.Error("expected channel to be closed after Run returns")
	}
}
