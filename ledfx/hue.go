package ledfx

import "keypad-go/types"

// HueRange is the size of the color wheel. Hues advance modulo this value.
const HueRange = 192

// HueToRGB maps a wheel position to a color. The wheel has three 64-step
// phases (red→green, green→blue, blue→red) with components 0..252, matching
// the pixel driver's keys brightness curve.
func HueToRGB(hue uint8) types.RGB {
	step := (hue % 64) << 2
	nstep := uint8(252) - step
	switch hue / 64 {
	case 0:
		return types.RGB{R: nstep, G: step}
	case 1:
		return types.RGB{G: nstep, B: step}
	default:
		return types.RGB{B: nstep, R: step}
	}
}
