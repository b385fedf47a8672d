package main

import "testing"

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "lowercases and trims",
			input: "  Hades  ",
			want:  "hades",
		},
		{
			name:  "trailing roman two",
			input: "God of War II",
			want:  "god of war 2",
		},
		{
			name:  "trailing roman three",
			input: "The Witcher III",
			want:  "the witcher 3",
		},
		{
			name:  "trailing roman four",
			input: "Grand Theft Auto IV",
			want:  "grand theft auto 4",
		},
		{
			name:  "trailing roman five",
			input: "Civilization V",
			want:  "civilization 5",
		},
		{
			name:  "lowercase roman suffix",
			input: "god of war ii",
			want:  "god of war 2",
		},
		{
			name:  "bare trailing I is kept",
			input: "Devil May Cry I",
			want:  "devil may cry i",
		},
		{
			name:  "roman in the middle is kept",
			input: "Age of Empires II Definitive",
			want:  "age of empires ii definitive",
		},
		{
			name:  "trademark glyphs and apostrophes stripped",
			input: "Marvel's Spider-Man™",
			want:  "marvels spider man",
		},
		{
			name:  "punctuation becomes spaces and collapses",
			input: "NieR:Automata - Game of the YoRHa",
			want:  "nier automata game of the yorha",
		},
		{
			name:  "digits survive",
			input: "Resident Evil 4",
			want:  "resident evil 4",
		},
		{
			name:  "empty input",
			input: "   ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeTitle(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeTitleIdempotent(t *testing.T) {
	inputs := []string{
		"God of War II",
		"Marvel's Spider-Man™",
		"NieR:Automata",
		"Final Fantasy VII Remake",
	}
	for _, input := range inputs {
		once := NormalizeTitle(input)
		twice := NormalizeTitle(once)
		if once != twice {
			t.Errorf("NormalizeTitle not idempotent for %q: %q then %q", input, once, twice)
		}
	}
}

func TestExtractNumbers(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []int
	}{
		{
			name:  "digit run",
			input: "resident evil 4",
			want:  []int{4},
		},
		{
			name:  "multiple digit runs",
			input: "2 fast 2 furious 10",
			want:  []int{2, 10},
		},
		{
			name:  "roman word inside title",
			input: "age of empires ii definitive",
			want:  []int{2},
		},
		{
			name:  "no numbers",
			input: "hades",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractNumbers(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("ExtractNumbers(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for _, n := range tt.want {
				if _, ok := got[n]; !ok {
					t.Errorf("ExtractNumbers(%q) missing %d, got %v", tt.input, n, got)
				}
			}
		})
	}
}

func TestNumberSetIntersects(t *testing.T) {
	a := NumberSet{2: {}, 10: {}}
	b := NumberSet{10: {}}
	c := NumberSet{3: {}}

	if !a.Intersects(b) {
		t.Error("expected {2,10} to intersect {10}")
	}
	if a.Intersects(c) {
		t.Error("expected {2,10} not to intersect {3}")
	}
	if a.Intersects(nil) {
		t.Error("expected no intersection with an empty set")
	}
}

func TestNumberSetAnyGreaterThan(t *testing.T) {
	s := NumberSet{1: {}, 2: {}}
	if !s.AnyGreaterThan(1) {
		t.Error("expected {1,2} to have a number greater than 1")
	}
	if s.AnyGreaterThan(2) {
		t.Error("expected {1,2} to have nothing greater than 2")
	}
}
