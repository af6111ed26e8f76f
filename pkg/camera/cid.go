//go:build linux

package camera

// Control classes and IDs from linux/v4l2-controls.h. Only the classes
// a capture device commonly exposes are carried: user, camera and
// codec controls.
const (
	CLASS_USER   uint32 = 0x00980000
	CLASS_CODEC  uint32 = 0x00990000
	CLASS_CAMERA uint32 = 0x009a0000
	CLASS_JPEG   uint32 = 0x009d0000

	CID_BASE        = CLASS_USER | 0x900
	CID_CODEC_BASE  = CLASS_CODEC | 0x900
	CID_CAMERA_BASE = CLASS_CAMERA | 0x900
	CID_JPEG_BASE   = CLASS_JPEG | 0x900
)

// Control flags reported by the driver.
const (
	FLAG_DISABLED         uint32 = 0x0001
	FLAG_GRABBED          uint32 = 0x0002
	FLAG_READ_ONLY        uint32 = 0x0004
	FLAG_UPDATE           uint32 = 0x0008
	FLAG_INACTIVE         uint32 = 0x0010
	FLAG_SLIDER           uint32 = 0x0020
	FLAG_WRITE_ONLY       uint32 = 0x0040
	FLAG_VOLATILE         uint32 = 0x0080
	FLAG_HAS_PAYLOAD      uint32 = 0x0100
	FLAG_EXECUTE_ON_WRITE uint32 = 0x0200
)

// User-class control IDs.
const (
	CID_BRIGHTNESS                = CID_BASE + 0
	CID_CONTRAST                  = CID_BASE + 1
	CID_SATURATION                = CID_BASE + 2
	CID_HUE                       = CID_BASE + 3
	CID_AUDIO_VOLUME              = CID_BASE + 5
	CID_AUDIO_BALANCE             = CID_BASE + 6
	CID_AUDIO_BASS                = CID_BASE + 7
	CID_AUDIO_TREBLE              = CID_BASE + 8
	CID_AUDIO_MUTE                = CID_BASE + 9
	CID_AUDIO_LOUDNESS            = CID_BASE + 10
	CID_AUTO_WHITE_BALANCE        = CID_BASE + 12
	CID_DO_WHITE_BALANCE          = CID_BASE + 13
	CID_RED_BALANCE               = CID_BASE + 14
	CID_BLUE_BALANCE              = CID_BASE + 15
	CID_GAMMA                     = CID_BASE + 16
	CID_EXPOSURE                  = CID_BASE + 17
	CID_AUTOGAIN                  = CID_BASE + 18
	CID_GAIN                      = CID_BASE + 19
	CID_HFLIP                     = CID_BASE + 20
	CID_VFLIP                     = CID_BASE + 21
	CID_POWER_LINE_FREQUENCY      = CID_BASE + 24
	CID_HUE_AUTO                  = CID_BASE + 25
	CID_WHITE_BALANCE_TEMPERATURE = CID_BASE + 26
	CID_SHARPNESS                 = CID_BASE + 27
	CID_BACKLIGHT_COMPENSATION    = CID_BASE + 28
	CID_CHROMA_AGC                = CID_BASE + 29
	CID_COLOR_KILLER              = CID_BASE + 30
	CID_COLORFX                   = CID_BASE + 31
	CID_AUTOBRIGHTNESS            = CID_BASE + 32
	CID_BAND_STOP_FILTER          = CID_BASE + 33
	CID_ROTATE                    = CID_BASE + 34
	CID_BG_COLOR                  = CID_BASE + 35
	CID_CHROMA_GAIN               = CID_BASE + 36
	CID_ILLUMINATORS_1            = CID_BASE + 37
	CID_ILLUMINATORS_2            = CID_BASE + 38
	CID_MIN_BUFFERS_FOR_CAPTURE   = CID_BASE + 39
	CID_MIN_BUFFERS_FOR_OUTPUT    = CID_BASE + 40
	CID_ALPHA_COMPONENT           = CID_BASE + 41
	CID_COLORFX_CBCR              = CID_BASE + 42
)

// Menu positions for CID_POWER_LINE_FREQUENCY.
const (
	POWER_LINE_FREQUENCY_DISABLED = 0
	POWER_LINE_FREQUENCY_50HZ     = 1
	POWER_LINE_FREQUENCY_60HZ     = 2
	POWER_LINE_FREQUENCY_AUTO     = 3
)

// Camera-class control IDs.
const (
	CID_EXPOSURE_AUTO               = CID_CAMERA_BASE + 1
	CID_EXPOSURE_ABSOLUTE           = CID_CAMERA_BASE + 2
	CID_EXPOSURE_AUTO_PRIORITY      = CID_CAMERA_BASE + 3
	CID_PAN_RELATIVE                = CID_CAMERA_BASE + 4
	CID_TILT_RELATIVE               = CID_CAMERA_BASE + 5
	CID_PAN_RESET                   = CID_CAMERA_BASE + 6
	CID_TILT_RESET                  = CID_CAMERA_BASE + 7
	CID_PAN_ABSOLUTE                = CID_CAMERA_BASE + 8
	CID_TILT_ABSOLUTE               = CID_CAMERA_BASE + 9
	CID_FOCUS_ABSOLUTE              = CID_CAMERA_BASE + 10
	CID_FOCUS_RELATIVE              = CID_CAMERA_BASE + 11
	CID_FOCUS_AUTO                  = CID_CAMERA_BASE + 12
	CID_ZOOM_ABSOLUTE               = CID_CAMERA_BASE + 13
	CID_ZOOM_RELATIVE               = CID_CAMERA_BASE + 14
	CID_ZOOM_CONTINUOUS             = CID_CAMERA_BASE + 15
	CID_PRIVACY                     = CID_CAMERA_BASE + 16
	CID_IRIS_ABSOLUTE               = CID_CAMERA_BASE + 17
	CID_IRIS_RELATIVE               = CID_CAMERA_BASE + 18
	CID_AUTO_EXPOSURE_BIAS          = CID_CAMERA_BASE + 19
	CID_AUTO_N_PRESET_WHITE_BALANCE = CID_CAMERA_BASE + 20
	CID_WIDE_DYNAMIC_RANGE          = CID_CAMERA_BASE + 21
	CID_IMAGE_STABILIZATION         = CID_CAMERA_BASE + 22
	CID_ISO_SENSITIVITY             = CID_CAMERA_BASE + 23
	CID_ISO_SENSITIVITY_AUTO        = CID_CAMERA_BASE + 24
	CID_EXPOSURE_METERING           = CID_CAMERA_BASE + 25
	CID_SCENE_MODE                  = CID_CAMERA_BASE + 26
	CID_3A_LOCK                     = CID_CAMERA_BASE + 27
	CID_AUTO_FOCUS_START            = CID_CAMERA_BASE + 28
	CID_AUTO_FOCUS_STOP             = CID_CAMERA_BASE + 29
	CID_AUTO_FOCUS_STATUS           = CID_CAMERA_BASE + 30
	CID_AUTO_FOCUS_RANGE            = CID_CAMERA_BASE + 31
)

// Menu positions for CID_EXPOSURE_AUTO.
const (
	EXPOSURE_AUTO              = 0
	EXPOSURE_MANUAL            = 1
	EXPOSURE_SHUTTER_PRIORITY  = 2
	EXPOSURE_APERTURE_PRIORITY = 3
)

// Codec-class control IDs, the subset encoders on capture hardware
// commonly expose.
const (
	CID_MPEG_VIDEO_BITRATE_MODE        = CID_CODEC_BASE + 206
	CID_MPEG_VIDEO_BITRATE             = CID_CODEC_BASE + 207
	CID_MPEG_VIDEO_BITRATE_PEAK        = CID_CODEC_BASE + 208
	CID_MPEG_VIDEO_GOP_SIZE            = CID_CODEC_BASE + 210
	CID_MPEG_VIDEO_REPEAT_SEQ_HEADER   = CID_CODEC_BASE + 226
	CID_MPEG_VIDEO_FORCE_KEY_FRAME     = CID_CODEC_BASE + 229
	CID_MPEG_VIDEO_FRAME_RC_ENABLE     = CID_CODEC_BASE + 230
	CID_MPEG_VIDEO_HEADER_MODE         = CID_CODEC_BASE + 238
	CID_MPEG_VIDEO_H264_ENTROPY_MODE   = CID_CODEC_BASE + 344
	CID_MPEG_VIDEO_H264_I_FRAME_QP     = CID_CODEC_BASE + 350
	CID_MPEG_VIDEO_H264_P_FRAME_QP     = CID_CODEC_BASE + 351
	CID_MPEG_VIDEO_H264_MIN_QP         = CID_CODEC_BASE + 354
	CID_MPEG_VIDEO_H264_MAX_QP         = CID_CODEC_BASE + 355
	CID_MPEG_VIDEO_H264_LEVEL          = CID_CODEC_BASE + 359
	CID_MPEG_VIDEO_H264_VUI_SAR_ENABLE = CID_CODEC_BASE + 360
	CID_MPEG_VIDEO_H264_PROFILE        = CID_CODEC_BASE + 363
)

// JPEG-class control IDs.
const (
	CID_JPEG_CHROMA_SUBSAMPLING  = CID_JPEG_BASE + 1
	CID_JPEG_RESTART_INTERVAL    = CID_JPEG_BASE + 2
	CID_JPEG_COMPRESSION_QUALITY = CID_JPEG_BASE + 3
	CID_JPEG_ACTIVE_MARKER       = CID_JPEG_BASE + 4
)
