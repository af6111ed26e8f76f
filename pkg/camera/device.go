//go:build linux

package camera

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unsafe"

	"github.com/smazurov/camcore/internal/v4l2"
)

// DeviceInfo describes one capture device found on the system.
type DeviceInfo struct {
	// Path is the device node, e.g. /dev/video0.
	Path string
	// Name is the driver's human-readable card name.
	Name string
	// ID is a stable identifier that survives reboots and re-plugs,
	// taken from /dev/v4l/by-id when available.
	ID string
	// Driver is the kernel driver name.
	Driver string
	// Caps is the effective capability mask.
	Caps uint32
}

// FindDevices scans /sys/class/video4linux and returns every device
// that supports streaming video capture. Devices that cannot be opened
// or probed are skipped with a debug log line.
func FindDevices() ([]DeviceInfo, error) {
	entries, err := os.ReadDir("/sys/class/video4linux")
	if err != nil {
		if os.IsNotExist(err) {
			return []DeviceInfo{}, nil
		}
		return nil, fmt.Errorf("camera: read video4linux directory: %w", err)
	}

	logger := slog.With("component", "camera")
	var devices []DeviceInfo

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		path := "/dev/" + entry.Name()

		fd, err := v4l2.OpenQuery(path)
		if err != nil {
			logger.Debug("skipping unopenable device", "path", path, "error", err)
			continue
		}

		cap := v4l2.Capability{}
		err = v4l2.Ioctl(fd, v4l2.VIDIOC_QUERYCAP, unsafe.Pointer(&cap))
		v4l2.Close(fd)
		if err != nil {
			logger.Debug("skipping unqueryable device", "path", path, "error", err)
			continue
		}

		caps := cap.Capabilities
		if caps&v4l2.V4L2_CAP_DEVICE_CAPS != 0 {
			caps = cap.DeviceCaps
		}
		if caps&v4l2.V4L2_CAP_VIDEO_CAPTURE == 0 || caps&v4l2.V4L2_CAP_STREAMING == 0 {
			continue
		}

		index := readSysfsInt(filepath.Join("/sys/class/video4linux", entry.Name(), "index"))
		id := findStableID(entry.Name(), index)
		if id == "" {
			busInfo := cstr(cap.BusInfo[:])
			if strings.HasPrefix(busInfo, "usb-") {
				id = fmt.Sprintf("%s-video-index%d", busInfo, index)
			} else {
				id = fmt.Sprintf("platform-%s-video-index%d", busInfo, index)
			}
		}

		devices = append(devices, DeviceInfo{
			Path:   path,
			Name:   cstr(cap.Card[:]),
			ID:     id,
			Driver: cstr(cap.Driver[:]),
			Caps:   caps,
		})
	}

	return devices, nil
}

// FindDeviceByID resolves a stable device ID to its current device
// node.
func FindDeviceByID(id string) (string, error) {
	devices, err := FindDevices()
	if err != nil {
		return "", err
	}
	for _, d := range devices {
		if d.ID == id {
			return d.Path, nil
		}
	}
	return "", fmt.Errorf("camera: no device with ID %s", id)
}

// findStableID looks for a matching symlink in /dev/v4l/by-id.
func findStableID(deviceName string, index int) string {
	byIDDir := "/dev/v4l/by-id"
	entries, err := os.ReadDir(byIDDir)
	if err != nil {
		return ""
	}

	suffix := fmt.Sprintf("-video-index%d", index)
	for _, entry := range entries {
		if entry.Type()&os.ModeSymlink == 0 {
			continue
		}
		target, err := os.Readlink(filepath.Join(byIDDir, entry.Name()))
		if err != nil {
			continue
		}
		if filepath.Base(target) == deviceName && strings.HasSuffix(entry.Name(), suffix) {
			return entry.Name()
		}
	}
	return ""
}

// readSysfsInt reads an integer from a sysfs attribute, 0 on any
// failure.
func readSysfsInt(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	val, _ := strconv.Atoi(strings.TrimSpace(string(data)))
	return val
}
