//go:build linux

// Package hotplug watches for video capture devices appearing and
// disappearing. It listens to kernel uevent broadcasts over a netlink
// socket, so no udev daemon or cgo is needed.
package hotplug

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"golang.org/x/sys/unix"
)

// Actions reported in a Change.
const (
	ActionAdd    = "add"
	ActionRemove = "remove"
)

// Change describes a video device arriving or leaving.
type Change struct {
	Action string // "add" or "remove"
	Name   string // kernel name, e.g. "video0"
	Path   string // device node, e.g. "/dev/video0"
}

// Monitor delivers video4linux hotplug changes from the kernel.
type Monitor struct {
	fd int
}

const netlinkKobjectUEvent = 15

// NewMonitor opens a netlink socket bound to the kernel uevent
// broadcast group.
func NewMonitor() (*Monitor, error) {
	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, netlinkKobjectUEvent)
	if err != nil {
		return nil, err
	}

	addr := &unix.SockaddrNetlink{
		Family: unix.AF_NETLINK,
		Groups: 1,
	}
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return nil, err
	}

	return &Monitor{fd: fd}, nil
}

// Close releases the netlink socket.
func (m *Monitor) Close() error {
	return unix.Close(m.fd)
}

// Run reads uevents and sends video device changes to ch until the
// context is cancelled or a socket error occurs. The channel is closed
// when Run returns.
func (m *Monitor) Run(ctx context.Context, ch chan<- Change) error {
	defer close(ch)

	buf := make([]byte, 8192)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Short receive timeout so cancellation is noticed promptly.
		tv := unix.Timeval{Sec: 1}
		if err := unix.SetsockoptTimeval(m.fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
			return err
		}

		n, _, err := unix.Recvfrom(m.fd, buf, 0)
		if err != nil {
			if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
				continue
			}
			return err
		}
		if n == 0 {
			continue
		}

		c, ok := parseUEvent(buf[:n])
		if !ok {
			continue
		}

		select {
		case ch <- c:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// parseUEvent decodes a kernel uevent message of the form
// "ACTION@KOBJ\0KEY=VALUE\0..." and reports whether it describes a
// video4linux add or remove.
func parseUEvent(data []byte) (Change, bool) {
	if len(data) == 0 {
		return Change{}, false
	}

	// udev relays prepend a binary "libudev" header before the uevent
	// payload. Skip to the ACTION@KOBJ part if one is present.
	if bytes.HasPrefix(data, []byte("libudev")) {
		for i := 0; i < len(data)-1; i++ {
			if data[i] == 0 {
				rest := data[i+1:]
				if idx := bytes.IndexByte(rest, '@'); idx > 0 && idx < 20 {
					data = rest
					break
				}
			}
		}
	}

	parts := bytes.Split(data, []byte{0})
	if len(parts) == 0 || len(parts[0]) == 0 {
		return Change{}, false
	}

	header := string(parts[0])
	atIdx := strings.Index(header, "@")
	if atIdx < 1 {
		return Change{}, false
	}

	action := header[:atIdx]
	if action != ActionAdd && action != ActionRemove {
		return Change{}, false
	}

	var subsystem, devname string
	for _, part := range parts[1:] {
		if len(part) == 0 {
			continue
		}
		kv := string(part)
		eqIdx := strings.Index(kv, "=")
		if eqIdx < 1 {
			continue
		}
		switch kv[:eqIdx] {
		case "SUBSYSTEM":
			subsystem = kv[eqIdx+1:]
		case "DEVNAME":
			devname = kv[eqIdx+1:]
		}
	}

	if subsystem != "video4linux" || devname == "" {
		return Change{}, false
	}

	// DEVNAME may or may not carry the /dev prefix depending on the
	// kernel version.
	name := strings.TrimPrefix(devname, "/dev/")
	return Change{
		Action: action,
		Name:   name,
		Path:   "/dev/" + name,
	}, true
}
