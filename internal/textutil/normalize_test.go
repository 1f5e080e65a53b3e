package textutil

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"straight apostrophe", "Ol' Burger Beats", "ol burger beats"},
		{"curly apostrophe", "Ol’ Burger Beats", "ol burger beats"},
		{"dollar sign kept", "A$AP Rocky", "a$ap rocky"},
		{"periods removed", "[bsd.u]", "[bsdu]"},
		{"hyphens removed", "Jean-Michel", "jeanmichel"},
		{"case folded", "MF DOOM", "mf doom"},
		{"underscores removed", "some_artist", "someartist"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestExpandCensoredProfanity(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"F*ck Love", "fuck Love"},
		{"F**k Love", "fuck Love"},
		{"Sh*t Happens", "shit Happens"},
		{"B*tch Please", "bitch Please"},
		{"D-mn", "damn"},
		{"No Censoring Here", "No Censoring Here"},
	}
	for _, tt := range tests {
		if got := ExpandCensoredProfanity(tt.input); got != tt.expected {
			t.Errorf("ExpandCensoredProfanity(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestStripAlbumSuffixes(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Winter - EP", "Winter"},
		{"Winter EP", "Winter"},
		{"Lonely Star - Single", "Lonely Star"},
		{"Double Or Nothing (& Metro Boomin)", "Double Or Nothing"},
		{"Album Name (Deluxe Edition)", "Album Name"},
		{"Title [Explicit]", "Title"},
		{"Record (feat. Someone)", "Record"},
		{"Record (with Someone)", "Record"},
		{"No Suffix Here", "No Suffix Here"},
	}
	for _, tt := range tests {
		if got := StripAlbumSuffixes(tt.input); got != tt.expected {
			t.Errorf("StripAlbumSuffixes(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestTitleMatchVariations(t *testing.T) {
	got := TitleMatchVariations("F*ck Love - EP")
	want := []string{"F*ck Love - EP", "fuck Love - EP", "F*ck Love", "fuck Love"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TitleMatchVariations = %v, want %v", got, want)
	}

	// No duplicate entries when no transformation applies.
	got = TitleMatchVariations("Plain Title")
	if len(got) != 1 || got[0] != "Plain Title" {
		t.Errorf("TitleMatchVariations(plain) = %v, want single original", got)
	}
}

func TestNormalizeTitleForMatching(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Album (Deluxe)", "album"},
		{"Album (Deluxe Edition)", "album"},
		{"Album - Remastered", "album"},
		{"Album [Expanded]", "album"},
		{"Album", "album"},
		// Only one suffix is removed.
		{"Album (Deluxe) (Remastered)", "album (deluxe) (remastered)"},
	}
	for _, tt := range tests {
		if got := NormalizeTitleForMatching(tt.input); got != tt.expected {
			t.Errorf("NormalizeTitleForMatching(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestHasEditionQualifier(t *testing.T) {
	if !HasEditionQualifier("Album (Deluxe)") {
		t.Error("expected edition qualifier on deluxe title")
	}
	if HasEditionQualifier("Album") {
		t.Error("unexpected edition qualifier on plain title")
	}
}

func TestCleanInput(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		isArtist bool
		expected string
	}{
		{"collapse whitespace", "  Son  Lux  ", true, "Son Lux"},
		{"curly apostrophe folded", "Ol’ Burger Beats", true, "Ol' Burger Beats"},
		{"profanity and suffix", "F*ck Love  - EP", false, "fuck Love"},
		{"deluxe stripped for albums", "Winter  (Deluxe Edition)", false, "Winter"},
		{"suffix kept for artists", "The EP", true, "The EP"},
		{"zero width removed", "Son​Lux", true, "SonLux"},
		{"empty", "   ", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanInput(tt.input, tt.isArtist); got != tt.expected {
				t.Errorf("CleanInput(%q, %v) = %q, want %q", tt.input, tt.isArtist, got, tt.expected)
			}
		})
	}
}

func TestUnwrapBrackets(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"[bsd.u]", "bsd.u"},
		{"bsd.u", "bsd.u"},
		{"[ spaced ]", "spaced"},
		{"[]", "[]"},
		{"[only-open", "[only-open"},
	}
	for _, tt := range tests {
		if got := UnwrapBrackets(tt.input); got != tt.expected {
			t.Errorf("UnwrapBrackets(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
