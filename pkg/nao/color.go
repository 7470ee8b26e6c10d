package nao

// Rgb is a color with one value per channel.
type Rgb[T any] struct {
	Red   T `json:"red"`
	Green T `json:"green"`
	Blue  T `json:"blue"`
}

// RgbF32 is a color with channels in [0, 1], the unit LoLA expects.
type RgbF32 Rgb[float32]

// Rgb8 is a color with 8-bit channels.
type Rgb8 Rgb[uint8]

// NewRgb creates a color.
func NewRgb[T any](red, green, blue T) Rgb[T] {
	return Rgb[T]{Red: red, Green: green, Blue: blue}
}

// Rgb8FromHex converts 0xRRGGBB to a color.
func Rgb8FromHex(hex uint32) Rgb8 {
	return Rgb8{
		Red:   uint8((hex >> 16) & 0xFF),
		Green: uint8((hex >> 8) & 0xFF),
		Blue:  uint8(hex & 0xFF),
	}
}

// ToF32 scales each channel into [0, 1].
func (c Rgb8) ToF32() RgbF32 {
	return RgbF32{
		Red:   float32(c.Red) / 255,
		Green: float32(c.Green) / 255,
		Blue:  float32(c.Blue) / 255,
	}
}

// To8 scales each channel to [0, 255], truncating. Out-of-range input is
// clamped first.
func (c RgbF32) To8() Rgb8 {
	return Rgb8{
		Red:   channelTo8(c.Red),
		Green: channelTo8(c.Green),
		Blue:  channelTo8(c.Blue),
	}
}

func rgbF32(red, green, blue float32) RgbF32 {
	return RgbF32(NewRgb(red, green, blue))
}

func channelTo8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v * 255)
}

// Named colors.
var (
	Blue    = rgbF32(0, 0, 1)
	Cyan    = rgbF32(0, 1, 1)
	Empty   = rgbF32(0, 0, 0)
	Gray    = rgbF32(0.5, 0.5, 0.5)
	Green   = rgbF32(0, 0.5, 0)
	Lime    = rgbF32(0, 1, 0)
	Magenta = rgbF32(1, 0, 1)
	Maroon  = rgbF32(0.5, 0, 0)
	Navy    = rgbF32(0, 0, 0.5)
	Olive   = rgbF32(0.5, 0.5, 0)
	Purple  = rgbF32(0.5, 0, 0.5)
	Red     = rgbF32(1, 0, 0)
	Silver  = rgbF32(0.75, 0.75, 0.75)
	Teal    = rgbF32(0, 0.5, 0.5)
	White   = rgbF32(1, 1, 1)
	Yellow  = rgbF32(1, 1, 0)
	Orange  = rgbF32(1, 0.25, 0)
)
