package types

type ScalingMode string

const (
	ScalingModeFill          ScalingMode = "fill"
	ScalingModeCenter        ScalingMode = "center"
	ScalingModeStretch       ScalingMode = "stretched"
	ScalingModeFitHorizontal ScalingMode = "horizontal"
	ScalingModeFitVertical   ScalingMode = "vertical"
)

// Valid reports whether m is one of the known scaling modes.
func (m ScalingMode) Valid() bool {
	switch m {
	case ScalingModeFill, ScalingModeCenter, ScalingModeStretch,
		ScalingModeFitHorizontal, ScalingModeFitVertical:
		return true
	}
	return false
}

type EasingMode string

const (
	EasingLinear    EasingMode = "linear"
	EasingEaseIn    EasingMode = "ease-in"
	EasingEaseOut   EasingMode = "ease-out"
	EasingEaseInOut EasingMode = "ease-in-out"
)

// Valid reports whether m is one of the known easing modes.
func (m EasingMode) Valid() bool {
	switch m {
	case EasingLinear, EasingEaseIn, EasingEaseOut, EasingEaseInOut:
		return true
	}
	return false
}
