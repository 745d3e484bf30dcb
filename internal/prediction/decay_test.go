package prediction

import (
	"math"
	"testing"
)

func TestDecayWeight_OneAtZero(t *testing.T) {
	for _, factor := range []float64{0.1, 0.5, 0.9, 0.95, 0.999} {
		if got := DecayWeight(0, factor); got != 1.0 {
			t.Errorf("DecayWeight(0, %v) = %v, want 1", factor, got)
		}
	}
}

func TestDecayWeight_StrictlyDecreasing(t *testing.T) {
	days := []float64{0, 0.25, 1, 2.5, 7, 30, 90}
	for _, factor := range []float64{0.1, 0.5, 0.95, 0.999} {
		for i := 1; i < len(days); i++ {
			newer := DecayWeight(days[i-1], factor)
			older := DecayWeight(days[i], factor)
			if !(newer > older) {
				t.Errorf("factor %v: DecayWeight(%v)=%v should exceed DecayWeight(%v)=%v",
					factor, days[i-1], newer, days[i], older)
			}
		}
	}
}

func TestHalfLife(t *testing.T) {
	tests := []struct {
		factor float64
		want   float64
	}{
		{factor: 0.5, want: 1},
		{factor: 0.95, want: 13.513},
		{factor: 0.99, want: 68.968},
	}

	for _, tt := range tests {
		got := HalfLife(tt.factor)
		if math.Abs(got-tt.want) > 0.001 {
			t.Errorf("HalfLife(%v) = %v, want %v", tt.factor, got, tt.want)
		}
		if w := DecayWeight(got, tt.factor); math.Abs(w-0.5) > 1e-9 {
			t.Errorf("DecayWeight(HalfLife(%v)) = %v, want 0.5", tt.factor, w)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{name: "defaults", modify: func(c *Config) {}, wantErr: false},
		{name: "decay factor of one", modify: func(c *Config) { c.DecayFactor = 1 }, wantErr: true},
		{name: "decay factor of zero", modify: func(c *Config) { c.DecayFactor = 0 }, wantErr: true},
		{name: "negative smoothing", modify: func(c *Config) { c.SmoothingWeight = -0.1 }, wantErr: true},
		{name: "zero sensitivity", modify: func(c *Config) { c.ConfidenceSensitivity = 0 }, wantErr: true},
		{name: "weekend ratio below one", modify: func(c *Config) { c.WeekendRatio = 0.9 }, wantErr: true},
		{name: "negative minimum", modify: func(c *Config) { c.MinEventsForInsights = -1 }, wantErr: true},
		{name: "no smoothing", modify: func(c *Config) { c.SmoothingWeight = 0 }, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
