package hid

// Modifier keycodes, USB HID keyboard usage page. The compiled tables carry
// the modifier bitmask; these are the keycodes pressed for each bit.
const (
	KeyLeftCtrl  uint16 = 0xE0
	KeyLeftShift uint16 = 0xE1
	KeyLeftAlt   uint16 = 0xE2
	KeyLeftGUI   uint16 = 0xE3
)

// Consumer control usage codes. Zero is the neutral (all released) report.
const (
	UsageNeutral         uint16 = 0x0000
	UsageVolumeIncrement uint16 = 0x00E9
	UsageVolumeDecrement uint16 = 0x00EA
	UsageMute            uint16 = 0x00E2
	UsagePlayPause       uint16 = 0x00CD
	UsageScanNext        uint16 = 0x00B5
	UsageScanPrevious    uint16 = 0x00B6
	UsageStop            uint16 = 0x00B7
)
