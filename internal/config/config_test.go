package config

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/viper"

	"github.com/matjam/wallfade"
	"github.com/matjam/wallfade/internal/types"
)

var defaults = Settings{
	Wallpapers:     "~/Pictures/wallpapers",
	Shuffle:        true,
	Delay:          300,
	FadeSpeed:      1,
	FadeIn:         true,
	ScaleMode:      types.ScalingModeFill,
	Filter:         "linear",
	Easing:         types.EasingEaseInOut,
	FramerateLimit: 60,
	IdleFramerate:  5,
	Backend:        "glx",
}

func TestDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	got, err := FromViper(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(defaults, got); diff != "" {
		t.Errorf("unexpected settings (-want +got):\n%s", diff)
	}
}

func TestDefaultConfigFileMatchesDefaults(t *testing.T) {
	v := viper.New()
	v.SetConfigType("toml")
	if err := v.ReadConfig(strings.NewReader(wallfade.DefaultConfig)); err != nil {
		t.Fatalf("failed to parse default config: %v", err)
	}
	got, err := FromViper(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(defaults, got); diff != "" {
		t.Errorf("default config file disagrees with defaults (-want +got):\n%s", diff)
	}
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("toml")
	err := v.ReadConfig(strings.NewReader(`
wallpapers = "/srv/walls"
delay = 2.5
fade_speed = 0.25
scale_mode = "center"
easing = "linear"
framerate_limit = 1000
idle_framerate = 0
backend = "x11"
`))
	if err != nil {
		t.Fatalf("failed to parse config: %v", err)
	}
	got, err := FromViper(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := defaults
	want.Wallpapers = "/srv/walls"
	want.Delay = 2.5
	want.FadeSpeed = 0.25
	want.ScaleMode = types.ScalingModeCenter
	want.Easing = types.EasingLinear
	want.FramerateLimit = MaxFramerate
	want.IdleFramerate = MinFramerate
	want.Backend = "x11"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected settings (-want +got):\n%s", diff)
	}
	if got.DelayDuration() != 2500*time.Millisecond {
		t.Errorf("DelayDuration() = %v", got.DelayDuration())
	}
	if got.FadeDuration() != 250*time.Millisecond {
		t.Errorf("FadeDuration() = %v", got.FadeDuration())
	}
}

func TestIdleFramerateNeverExceedsFull(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("framerate_limit", 10)
	v.Set("idle_framerate", 30)
	got, err := FromViper(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.IdleFramerate != 10 {
		t.Errorf("IdleFramerate = %d, want 10", got.IdleFramerate)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{"unknown_easing", "easing", "bouncy"},
		{"unknown_scale_mode", "scale_mode", "tile"},
		{"unknown_filter", "filter", "lanczos"},
		{"zero_delay", "delay", 0},
		{"negative_fade", "fade_speed", -1},
		{"zero_fade", "fade_speed", 0},
		{"no_backend", "backend", ""},
		{"no_wallpapers", "wallpapers", ""},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			v := viper.New()
			SetDefaults(v)
			v.Set(test.key, test.val)
			_, err := FromViper(v)
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("FromViper() error = %v, want ErrInvalid", err)
			}
			if err != nil && !strings.Contains(err.Error(), test.key) {
				t.Errorf("error %q does not name %s", err, test.key)
			}
		})
	}
}
