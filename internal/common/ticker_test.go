package common

import "testing"

func TestNormalizeTicker(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "canonical uppercase", input: "AAPL", want: "AAPL"},
		{name: "lowercase normalized up", input: "aapl", want: "AAPL"},
		{name: "mixed case normalized up", input: "MsFt", want: "MSFT"},
		{name: "single letter", input: "F", want: "F"},
		{name: "five letters", input: "GOOGL", want: "GOOGL"},
		{name: "surrounding whitespace trimmed", input: "  ibm ", want: "IBM"},
		{name: "empty rejected", input: "", wantErr: true},
		{name: "whitespace only rejected", input: "   ", wantErr: true},
		{name: "too long rejected", input: "TOOLONG", wantErr: true},
		{name: "digits rejected", input: "AB1", wantErr: true},
		{name: "exchange qualifier rejected", input: "ASX:GNP", wantErr: true},
		{name: "punctuation rejected", input: "BRK.B", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeTicker(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("NormalizeTicker(%q) = %q, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeTicker(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeTicker(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsValidTicker(t *testing.T) {
	if !IsValidTicker("AAPL") {
		t.Error("IsValidTicker(AAPL) = false, want true")
	}
	// Lowercase is normalizable but not canonical
	if IsValidTicker("aapl") {
		t.Error("IsValidTicker(aapl) = true, want false")
	}
	if IsValidTicker("") {
		t.Error("IsValidTicker(empty) = true, want false")
	}
}
