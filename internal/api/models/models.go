// Package models holds the request and response types served by the
// HTTP API.
package models

// Health check models.
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Service status"`
	Message string `json:"message" example:"API is healthy" doc:"Status message"`
}

type HealthResponse struct {
	Body HealthData
}

// Version models.
type VersionData struct {
	Version   string `json:"version" example:"dev" doc:"Application version"`
	GitCommit string `json:"git_commit" example:"abc1234" doc:"Git commit SHA"`
	BuildDate string `json:"build_date" example:"2026-08-15 14:30" doc:"Build timestamp"`
	GoVersion string `json:"go_version" example:"go1.24.0" doc:"Go compiler version"`
	Platform  string `json:"platform" example:"linux/arm64" doc:"Platform"`
}

type VersionResponse struct {
	Body VersionData
}

// DeviceInfo describes one capture device.
type DeviceInfo struct {
	Path         string   `json:"path" example:"/dev/video0" doc:"Device node path"`
	Name         string   `json:"name" example:"USB Camera" doc:"Driver's card name"`
	ID           string   `json:"id" example:"usb-0000:00:14.0-1" doc:"Stable device identifier"`
	Driver       string   `json:"driver" example:"uvcvideo" doc:"Kernel driver name"`
	Caps         uint32   `json:"caps" example:"69206017" doc:"Raw V4L2 capability flags"`
	Capabilities []string `json:"capabilities" example:"[\"Video Capture\", \"Streaming I/O\"]" doc:"Decoded capability names"`
}

type DeviceListData struct {
	Devices []DeviceInfo `json:"devices" doc:"Available capture devices"`
	Count   int          `json:"count" example:"2" doc:"Number of devices found"`
}

type DeviceListResponse struct {
	Body DeviceListData
}

// FormatInfo describes one pixel format a device supports.
type FormatInfo struct {
	Format      string `json:"format" example:"YUYV" doc:"Pixel format FourCC"`
	Description string `json:"description" example:"YUYV 4:2:2" doc:"Driver's format name"`
	Compressed  bool   `json:"compressed" example:"false" doc:"Whether the format is compressed"`
	Emulated    bool   `json:"emulated" example:"false" doc:"Whether the driver converts in software"`
}

type FormatListData struct {
	Device  string       `json:"device" example:"/dev/video0" doc:"Device node path"`
	Formats []FormatInfo `json:"formats" doc:"Supported pixel formats"`
}

type FormatListResponse struct {
	Body FormatListData
}

// Resolution is one discrete frame size.
type Resolution struct {
	Width  uint32 `json:"width" example:"1920" doc:"Frame width in pixels"`
	Height uint32 `json:"height" example:"1080" doc:"Frame height in pixels"`
}

// StepwiseResolution is a range of frame sizes.
type StepwiseResolution struct {
	Min  Resolution `json:"min" doc:"Smallest supported size"`
	Max  Resolution `json:"max" doc:"Largest supported size"`
	Step Resolution `json:"step" doc:"Size increment"`
}

type ResolutionListData struct {
	Discrete []Resolution        `json:"discrete,omitempty" doc:"Discrete sizes, if the device reports them"`
	Stepwise *StepwiseResolution `json:"stepwise,omitempty" doc:"Size range, if the device reports one"`
}

type ResolutionListResponse struct {
	Body ResolutionListData
}

// Framerate is one frame interval expressed both as a fraction and in
// frames per second.
type Framerate struct {
	Numerator   uint32  `json:"numerator" example:"1" doc:"Interval fraction numerator"`
	Denominator uint32  `json:"denominator" example:"30" doc:"Interval fraction denominator"`
	FPS         float64 `json:"fps" example:"30" doc:"Frames per second"`
}

// StepwiseFramerate is a range of frame intervals.
type StepwiseFramerate struct {
	Min  Framerate `json:"min" doc:"Shortest interval (highest rate)"`
	Max  Framerate `json:"max" doc:"Longest interval (lowest rate)"`
	Step Framerate `json:"step" doc:"Interval increment"`
}

type FramerateListData struct {
	Discrete []Framerate        `json:"discrete,omitempty" doc:"Discrete intervals, if the device reports them"`
	Stepwise *StepwiseFramerate `json:"stepwise,omitempty" doc:"Interval range, if the device reports one"`
}

type FramerateListResponse struct {
	Body FramerateListData
}

// MenuItem is one selectable position of a menu control.
type MenuItem struct {
	Index uint32 `json:"index" example:"1" doc:"Menu position"`
	Name  string `json:"name,omitempty" example:"50 Hz" doc:"Position name, for named menus"`
	Value int64  `json:"value,omitempty" example:"400" doc:"Position value, for integer menus"`
}

// ControlInfo describes one device control. Fields beyond Type are
// populated according to the control type.
type ControlInfo struct {
	ID       uint32     `json:"id" example:"9963776" doc:"V4L2 control identifier"`
	Name     string     `json:"name" example:"Brightness" doc:"Driver's control name"`
	Type     string     `json:"type" example:"integer" doc:"Control type"`
	Readable bool       `json:"readable" example:"true" doc:"Whether the value can be read"`
	Writable bool       `json:"writable" example:"true" doc:"Whether the value can be set"`
	Value    any        `json:"value,omitempty" doc:"Current value"`
	Default  any        `json:"default,omitempty" doc:"Default value"`
	Minimum  int64      `json:"minimum,omitempty" example:"-64" doc:"Lower bound, for integer types"`
	Maximum  int64      `json:"maximum,omitempty" example:"64" doc:"Upper bound, for integer types"`
	Step     int64      `json:"step,omitempty" example:"1" doc:"Value increment, for integer types"`
	Items    []MenuItem `json:"items,omitempty" doc:"Menu positions, for menu types"`
}

type ControlListData struct {
	Device   string        `json:"device" example:"/dev/video0" doc:"Device node path"`
	Controls []ControlInfo `json:"controls" doc:"Device controls"`
}

type ControlListResponse struct {
	Body ControlListData
}

type ControlResponse struct {
	Body ControlInfo
}

// ControlUpdateData carries a new control value. Exactly one value
// field must be set, matching the control type. Buttons take no value.
type ControlUpdateData struct {
	Integer *int64  `json:"integer,omitempty" example:"42" doc:"Value for integer, menu and bitmask controls"`
	Boolean *bool   `json:"boolean,omitempty" example:"true" doc:"Value for boolean controls"`
	String  *string `json:"string,omitempty" example:"back yard" doc:"Value for string controls"`
}

// Snapshot models.
type SnapshotData struct {
	Device string `json:"device" example:"/dev/video0" doc:"Device node path"`
	Format string `json:"format" example:"MJPG" doc:"Pixel format of the frame"`
	Width  uint32 `json:"width" example:"1920" doc:"Frame width in pixels"`
	Height uint32 `json:"height" example:"1080" doc:"Frame height in pixels"`
	Image  string `json:"image" doc:"Base64-encoded frame payload"`
}

type SnapshotResponse struct {
	Body SnapshotData
}

// SnapshotRequestData selects the capture mode for a snapshot. Zero
// fields use the device defaults.
type SnapshotRequestData struct {
	Format string `json:"format,omitempty" example:"MJPG" doc:"Pixel format FourCC"`
	Width  uint32 `json:"width,omitempty" example:"1920" doc:"Frame width in pixels"`
	Height uint32 `json:"height,omitempty" example:"1080" doc:"Frame height in pixels"`
	FPS    uint32 `json:"fps,omitempty" example:"30" doc:"Frame rate in frames per second"`
	Skip   int    `json:"skip,omitempty" example:"5" doc:"Frames to discard before keeping one, for exposure settling"`
}

// CaptureStatsData reports frame and error counters for one device
// since startup or the last unplug.
type CaptureStatsData struct {
	Device string `json:"device" example:"/dev/video0" doc:"Device node path"`
	Frames uint64 `json:"frames" example:"1200" doc:"Frames captured"`
	Bytes  uint64 `json:"bytes" example:"737280000" doc:"Frame payload bytes captured"`
	Errors uint64 `json:"errors" example:"0" doc:"Capture errors"`
}

type CaptureStatsResponse struct {
	Body CaptureStatsData
}
