//go:build linux && (amd64 || arm64)

package v4l2

import "unsafe"

// Request codes for payloads whose size depends on the architecture.
const (
	VIDIOC_G_FMT       = 0xc0d05604
	VIDIOC_S_FMT       = 0xc0d05605
	VIDIOC_QUERYBUF    = 0xc0585609
	VIDIOC_QBUF        = 0xc058560f
	VIDIOC_DQBUF       = 0xc0585611
	VIDIOC_G_EXT_CTRLS = 0xc0205647
	VIDIOC_S_EXT_CTRLS = 0xc0205648
)

var (
	_ [208]byte = [unsafe.Sizeof(Format{})]byte{}
	_ [88]byte  = [unsafe.Sizeof(Buffer{})]byte{}
	_ [32]byte  = [unsafe.Sizeof(ExtControls{})]byte{}
)

// Format has size 208 bytes on 64-bit kernels: the fmt union is
// 8-aligned because one of its members carries a pointer, so four
// bytes of padding follow Typ.
type Format struct {
	Typ uint32    // offset 0
	_   uint32    // offset 4, padding
	Pix PixFormat // offset 8 (union with window/vbi formats)
	_   [152]byte // offset 56, rest of the 200-byte union
}

// Timeval matches the kernel timeval inside v4l2_buffer.
type Timeval struct {
	Sec  int64
	Usec int64
}

// Buffer has size 88 bytes on 64-bit kernels.
type Buffer struct {
	Index     uint32   // offset 0
	Typ       uint32   // offset 4
	BytesUsed uint32   // offset 8
	Flags     uint32   // offset 12
	Field     uint32   // offset 16
	_         uint32   // offset 20, padding before timeval
	Timestamp Timeval  // offset 24
	TC        Timecode // offset 40
	Sequence  uint32   // offset 56
	Memory    uint32   // offset 60
	M         uint64   // offset 64, union: offset / userptr / planes / fd
	Length    uint32   // offset 72
	Reserved2 uint32   // offset 76
	RequestFd uint32   // offset 80
	_         uint32   // offset 84, tail padding
}

// Offset returns the mmap offset reported by VIDIOC_QUERYBUF for
// V4L2_MEMORY_MMAP buffers.
func (b *Buffer) Offset() uint32 {
	return uint32(b.M)
}
