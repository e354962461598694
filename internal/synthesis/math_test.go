package synthesis

import "testing"

func TestRoundScore(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected int
	}{
		{"rounds half up", 79.5, 80},
		{"rounds down below half", 84.4, 84},
		{"clamps above range", 112.0, 100},
		{"clamps below range", -3.0, 0},
		{"exact integer", 84.0, 84},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RoundScore(tt.input); got != tt.expected {
				t.Errorf("RoundScore(%v) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestMean(t *testing.T) {
	if got := Mean([]float64{0.8, 0.6}); got != 0.7 {
		t.Errorf("Mean = %v, want 0.7", got)
	}
	if got := Mean(nil); got != 0 {
		t.Errorf("Mean(nil) = %v, want 0", got)
	}
}
