//go:build linux

// Package v4l2 provides the raw transport to a Video4Linux2 character
// device: open/close, ioctl with automatic EINTR retry, and buffer
// memory mapping. The fixed-size request payloads exchanged with the
// kernel live in the videodev2 files and must match the kernel ABI
// byte for byte.
//
// This package does not use cgo, enabling simple cross-compilation for
// different Linux architectures (amd64, arm64, arm).
package v4l2

import (
	"errors"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Open opens a device node for streaming I/O. The descriptor is
// blocking: VIDIOC_DQBUF on it waits for a filled buffer.
func Open(path string) (int, error) {
	return unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
}

// OpenQuery opens a device node non-blocking, for capability and
// format queries that never wait on the driver.
func OpenQuery(path string) (int, error) {
	return unix.Open(path, unix.O_RDWR|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
}

// Close closes a descriptor returned by Open or OpenQuery.
func Close(fd int) error {
	return unix.Close(fd)
}

// Ioctl issues a single request against the device, retrying while the
// call is interrupted by a signal.
func Ioctl(fd int, req uint32, arg unsafe.Pointer) error {
	for {
		_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(req), uintptr(arg))
		if errno == 0 {
			return nil
		}
		if errno != unix.EINTR {
			return errno
		}
	}
}

// TryIoctl issues a request and reports ok=false when the driver
// answers EINVAL. For indexed enumeration queries EINVAL is the
// designed end-of-sequence reply, not an error; every other failure is
// returned as-is.
func TryIoctl(fd int, req uint32, arg unsafe.Pointer) (bool, error) {
	err := Ioctl(fd, req, arg)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, unix.EINVAL) {
		return false, nil
	}
	return false, err
}

// Mmap maps a kernel buffer at the offset reported by VIDIOC_QUERYBUF
// into the process address space.
func Mmap(fd int, offset uint32, length uint32) ([]byte, error) {
	return unix.Mmap(fd, int64(offset), int(length),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
}

// Munmap releases a mapping created by Mmap.
func Munmap(b []byte) error {
	return unix.Munmap(b)
}
