//go:build linux && (386 || arm)

package v4l2

import "unsafe"

// Request codes for payloads whose size depends on the architecture.
const (
	VIDIOC_G_FMT       = 0xc0cc5604
	VIDIOC_S_FMT       = 0xc0cc5605
	VIDIOC_QUERYBUF    = 0xc0445609
	VIDIOC_QBUF        = 0xc044560f
	VIDIOC_DQBUF       = 0xc0445611
	VIDIOC_G_EXT_CTRLS = 0xc0185647
	VIDIOC_S_EXT_CTRLS = 0xc0185648
)

var (
	_ [204]byte = [unsafe.Sizeof(Format{})]byte{}
	_ [68]byte  = [unsafe.Sizeof(Buffer{})]byte{}
	_ [24]byte  = [unsafe.Sizeof(ExtControls{})]byte{}
)

// Format has size 204 bytes on 32-bit kernels; the fmt union follows
// Typ with no padding.
type Format struct {
	Typ uint32    // offset 0
	Pix PixFormat // offset 4 (union with window/vbi formats)
	_   [152]byte // offset 52, rest of the 200-byte union
}

// Timeval matches the kernel timeval inside v4l2_buffer.
type Timeval struct {
	Sec  int32
	Usec int32
}

// Buffer has size 68 bytes on 32-bit kernels.
type Buffer struct {
	Index     uint32   // offset 0
	Typ       uint32   // offset 4
	BytesUsed uint32   // offset 8
	Flags     uint32   // offset 12
	Field     uint32   // offset 16
	Timestamp Timeval  // offset 20
	TC        Timecode // offset 28
	Sequence  uint32   // offset 44
	Memory    uint32   // offset 48
	M         uint32   // offset 52, union: offset / userptr
	Length    uint32   // offset 56
	Reserved2 uint32   // offset 60
	RequestFd uint32   // offset 64
}

// Offset returns the mmap offset reported by VIDIOC_QUERYBUF for
// V4L2_MEMORY_MMAP buffers.
func (b *Buffer) Offset() uint32 {
	return b.M
}
