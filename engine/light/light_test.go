package light

import (
	"math"
	"testing"
)

func near(a, b [3]float32) bool {
	for i := range a {
		if math.Abs(float64(a[i]-b[i])) > 1e-6 {
			return false
		}
	}
	return true
}

func TestDefaults(t *testing.T) {
	l := NewLight()
	if !near(l.ToLight(), [3]float32{0.3713907, 0.7427814, 0.5570860}) {
		t.Errorf("ToLight() = %v", l.ToLight())
	}
	if l.Radiance() != [3]float32{1, 1, 1} || l.Ambient() != 0.35 {
		t.Errorf("radiance %v ambient %v", l.Radiance(), l.Ambient())
	}
}

func TestOptions(t *testing.T) {
	tests := []struct {
		name     string
		opts     []LightBuilderOption
		dir      [3]float32
		radiance [3]float32
		ambient  float32
	}{
		{
			name:     "straight down",
			opts:     []LightBuilderOption{WithDirection(0, -4, 0)},
			dir:      [3]float32{0, -1, 0},
			radiance: [3]float32{1, 1, 1},
			ambient:  0.35,
		},
		{
			name:     "zero direction keeps default",
			opts:     []LightBuilderOption{WithDirection(0, 0, 0)},
			dir:      NewLight().Direction(),
			radiance: [3]float32{1, 1, 1},
			ambient:  0.35,
		},
		{
			name:     "warm and dim",
			opts:     []LightBuilderOption{WithColor(1, 0.5, 0.25), WithIntensity(2), WithAmbient(0.1)},
			dir:      NewLight().Direction(),
			radiance: [3]float32{2, 1, 0.5},
			ambient:  0.1,
		},
		{
			name:     "clamped",
			opts:     []LightBuilderOption{WithIntensity(-1), WithAmbient(3)},
			dir:      NewLight().Direction(),
			radiance: [3]float32{0, 0, 0},
			ambient:  1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLight(tt.opts...)
			if !near(l.Direction(), tt.dir) {
				t.Errorf("Direction() = %v, want %v", l.Direction(), tt.dir)
			}
			if !near(l.Radiance(), tt.radiance) {
				t.Errorf("Radiance() = %v, want %v", l.Radiance(), tt.radiance)
			}
			if l.Ambient() != tt.ambient {
				t.Errorf("Ambient() = %v, want %v", l.Ambient(), tt.ambient)
			}
		})
	}
}

func TestToLightOpposesDirection(t *testing.T) {
	l := NewLight()
	l.SetDirection(1, 0, 0)
	if l.ToLight() != [3]float32{-1, 0, 0} {
		t.Errorf("ToLight() = %v, want (-1, 0, 0)", l.ToLight())
	}
}
