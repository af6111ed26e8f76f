//go:build linux

package camera

import (
	"unsafe"

	"github.com/smazurov/camcore/internal/v4l2"
)

// transport is the lower layer a session talks through: one ioctl
// exchange at a time plus buffer mapping. The production implementation
// wraps a device descriptor; tests substitute a scripted driver.
type transport interface {
	// Ioctl issues a request, retrying on signal interruption.
	Ioctl(req uint32, arg unsafe.Pointer) error
	// TryIoctl issues a request and reports ok=false on the driver's
	// not-applicable reply (end of an indexed enumeration, unknown id).
	TryIoctl(req uint32, arg unsafe.Pointer) (bool, error)
	// Mmap maps length bytes of a kernel buffer at the given offset.
	Mmap(offset, length uint32) ([]byte, error)
	// Munmap releases a mapping returned by Mmap.
	Munmap(b []byte) error
	Close() error
}

type v4l2Transport struct {
	fd int
}

func openTransport(path string) (*v4l2Transport, error) {
	fd, err := v4l2.Open(path)
	if err != nil {
		return nil, err
	}
	return &v4l2Transport{fd: fd}, nil
}

func (t *v4l2Transport) Ioctl(req uint32, arg unsafe.Pointer) error {
	return v4l2.Ioctl(t.fd, req, arg)
}

func (t *v4l2Transport) TryIoctl(req uint32, arg unsafe.Pointer) (bool, error) {
	return v4l2.TryIoctl(t.fd, req, arg)
}

func (t *v4l2Transport) Mmap(offset, length uint32) ([]byte, error) {
	return v4l2.Mmap(t.fd, offset, length)
}

func (t *v4l2Transport) Munmap(b []byte) error {
	return v4l2.Munmap(b)
}

func (t *v4l2Transport) Close() error {
	return v4l2.Close(t.fd)
}
