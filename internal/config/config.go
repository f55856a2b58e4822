// Package config turns the viper configuration into typed, validated
// settings.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/matjam/wallfade/internal/render"
	"github.com/matjam/wallfade/internal/types"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

const (
	MinFramerate = 1
	MaxFramerate = 240
)

type Settings struct {
	Wallpapers     string            `mapstructure:"wallpapers" json:"wallpapers"`
	Shuffle        bool              `mapstructure:"shuffle" json:"shuffle"`
	Delay          float64           `mapstructure:"delay" json:"delay"`
	FadeSpeed      float64           `mapstructure:"fade_speed" json:"fade_speed"`
	FadeIn         bool              `mapstructure:"fade_in" json:"fade_in"`
	ScaleMode      types.ScalingMode `mapstructure:"scale_mode" json:"scale_mode"`
	Filter         render.Filter     `mapstructure:"filter" json:"filter"`
	Easing         types.EasingMode  `mapstructure:"easing" json:"easing"`
	FramerateLimit int               `mapstructure:"framerate_limit" json:"framerate_limit"`
	IdleFramerate  int               `mapstructure:"idle_framerate" json:"idle_framerate"`
	Backend        string            `mapstructure:"backend" json:"backend"`
	Debug          bool              `mapstructure:"debug" json:"debug"`
}

// SetDefaults registers the default value of every setting with v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("wallpapers", "~/Pictures/wallpapers")
	v.SetDefault("shuffle", true)
	v.SetDefault("delay", 300)
	v.SetDefault("fade_speed", 1.0)
	v.SetDefault("fade_in", true)
	v.SetDefault("scale_mode", string(types.ScalingModeFill))
	v.SetDefault("filter", string(render.FilterLinear))
	v.SetDefault("easing", string(types.EasingEaseInOut))
	v.SetDefault("framerate_limit", 60)
	v.SetDefault("idle_framerate", 5)
	v.SetDefault("backend", "glx")
	v.SetDefault("debug", false)
}

// FromViper reads and validates the settings held by v. Frame rates are
// clamped into range rather than rejected.
func FromViper(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	s.FramerateLimit = min(max(s.FramerateLimit, MinFramerate), MaxFramerate)
	s.IdleFramerate = min(max(s.IdleFramerate, MinFramerate), s.FramerateLimit)
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks s for values the daemon cannot run with.
func (s Settings) Validate() error {
	var errs []error
	if s.Wallpapers == "" {
		errs = append(errs, errors.New("wallpapers: directory not set"))
	}
	if s.Delay <= 0 {
		errs = append(errs, fmt.Errorf("delay: must be positive, got %v", s.Delay))
	}
	if s.FadeSpeed <= 0 {
		errs = append(errs, fmt.Errorf("fade_speed: must be positive, got %v", s.FadeSpeed))
	}
	if !s.ScaleMode.Valid() {
		errs = append(errs, fmt.Errorf("scale_mode: unknown mode %q", s.ScaleMode))
	}
	if !s.Filter.Valid() {
		errs = append(errs, fmt.Errorf("filter: unknown filter %q", s.Filter))
	}
	if !s.Easing.Valid() {
		errs = append(errs, fmt.Errorf("easing: unknown mode %q", s.Easing))
	}
	if s.Backend == "" {
		errs = append(errs, errors.New("backend: not set"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// DelayDuration is the time between image changes.
func (s Settings) DelayDuration() time.Duration {
	return time.Duration(s.Delay * float64(time.Second))
}

// FadeDuration is the length of a cross-fade.
func (s Settings) FadeDuration() time.Duration {
	return time.Duration(s.FadeSpeed * float64(time.Second))
}
