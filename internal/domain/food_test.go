package domain

import (
	"math"
	"testing"
)

func TestQualityScore(t *testing.T) {
	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{
			name: "all fields present",
			got:  QualityScore(true, true, true, true, true, true, true, true, true),
			want: 1.0,
		},
		{
			name: "name and energy only",
			got:  QualityScore(true, false, false, true, false, false, false, false, false),
			want: 0.4,
		},
		{
			name: "nothing present",
			got:  QualityScore(false, false, false, false, false, false, false, false, false),
			want: 0,
		},
		{
			name: "fiber and sugar are half weight",
			got:  QualityScore(false, false, false, false, false, false, false, true, true),
			want: 0.1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if math.Abs(tt.got-tt.want) > 1e-9 {
				t.Errorf("QualityScore() = %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestCleanName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"strips trademark symbols", "Cheerios™ Original®", "Cheerios Original"},
		{"collapses whitespace", "  Greek   Yogurt  ", "Greek Yogurt"},
		{"trims trailing dash", "Oat Milk - ", "Oat Milk"},
		{"empty stays empty", "", ""},
		{"plain name unchanged", "Banana", "Banana"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanName(tt.input); got != tt.want {
				t.Errorf("CleanName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanName_CapsLength(t *testing.T) {
	long := ""
	for i := 0; i < 300; i++ {
		long += "a"
	}
	if got := CleanName(long); len([]rune(got)) != 255 {
		t.Errorf("CleanName() length = %d, want 255", len([]rune(got)))
	}
}

func TestBuildSearchTerms(t *testing.T) {
	tests := []struct {
		name     string
		food     string
		brand    string
		category string
		want     string
	}{
		{
			name:     "name brand and category",
			food:     "Greek Yogurt",
			brand:    "Fage",
			category: "Dairy",
			want:     "Greek Yogurt greek yogurt Fage Dairy dairy",
		},
		{
			name: "short tokens dropped",
			food: "My Oat Mix",
			want: "My Oat Mix oat mix",
		},
		{
			name: "duplicates removed",
			food: "rice rice",
			want: "rice rice rice",
		},
		{
			name: "empty inputs",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildSearchTerms(tt.food, tt.brand, tt.category); got != tt.want {
				t.Errorf("BuildSearchTerms() = %q, want %q", got, tt.want)
			}
		})
	}
}
