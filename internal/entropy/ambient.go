package entropy

import "time"

const goldenRatio32 = 0x9E3779B9

// Ambient carries the environment signals the host observed for one
// generation request. Every field is optional; a zero value means "not seen".
type Ambient struct {
	ScreenWidth    int    `json:"screen_width,omitempty" yaml:"screen_width"`
	ScreenHeight   int    `json:"screen_height,omitempty" yaml:"screen_height"`
	TimezoneOffset int    `json:"timezone_offset,omitempty" yaml:"timezone_offset"`
	Language       string `json:"language,omitempty" yaml:"language"`
	UserAgent      string `json:"user_agent,omitempty" yaml:"user_agent"`
	DeviceMemory   int    `json:"device_memory,omitempty" yaml:"device_memory"`
	Cores          int    `json:"cores,omitempty" yaml:"cores"`

	PointerX  float64 `json:"pointer_x,omitempty" yaml:"pointer_x"`
	PointerY  float64 `json:"pointer_y,omitempty" yaml:"pointer_y"`
	LastClick int64   `json:"last_click_ms,omitempty" yaml:"last_click_ms"`
}

// geometryWord folds the screen and device fields, each scaled by the 32-bit
// golden ratio constant.
func geometryWord(a Ambient) uint32 {
	fields := []int{
		len(a.UserAgent),
		a.ScreenWidth * a.ScreenHeight,
		a.TimezoneOffset,
		len(a.Language),
		a.DeviceMemory,
		a.Cores,
	}
	var mixed uint32
	for _, v := range fields {
		mixed ^= uint32(v) * goldenRatio32
	}
	return mixed
}

// pointerWord is x*y*click reduced modulo 2^32-1. Zero when no pointer was seen.
func pointerWord(a Ambient) uint32 {
	if a.PointerX == 0 && a.PointerY == 0 && a.LastClick == 0 {
		return 0
	}
	x := uint64(abs(a.PointerX))
	y := uint64(abs(a.PointerY))
	click := uint64(a.LastClick)
	if click == 0 {
		click = 1
	}
	return uint32((x * y % 0xFFFFFFFF) * (click % 0xFFFFFFFF) % 0xFFFFFFFF)
}

// timingWord keeps the sub-millisecond digits of now.
func timingWord(now time.Time) uint32 {
	ns := now.UnixNano()
	micro := (ns / 1000) % 1000
	nano := ns % 1000
	return uint32(micro*1000+nano) * goldenRatio32
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
