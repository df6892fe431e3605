package content

import (
	"reflect"
	"testing"
)

func TestStripImageMarkers(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"no markers", "Buka menu pasien", "Buka menu pasien"},
		{"single marker", "Klik tombol simpan [GAMBAR 1] lalu tutup", "Klik tombol simpan lalu tutup"},
		{"case insensitive", "Lihat [gambar 2] di bawah", "Lihat di bawah"},
		{"marker with spaces", "Langkah [GAMBAR  3] selesai", "Langkah selesai"},
		{"collapses whitespace", "a  [GAMBAR 1]\n\nb", "a b"},
		{"marker only", "[GAMBAR 1]", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripImageMarkers(tt.in); got != tt.want {
				t.Errorf("StripImageMarkers(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseImageRefs(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"none sentinel", "none", nil},
		{"none sentinel uppercase", "NONE", nil},
		{"single", "faq1/a.png", []string{"faq1/a.png"}},
		{"multiple with spaces", "a.png; b.png ;c.png", []string{"a.png", "b.png", "c.png"}},
		{"backslashes normalised", "dir\\a.png;dir\\b.png", []string{"dir/a.png", "dir/b.png"}},
		{"trailing separator", "a.png;", []string{"a.png"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseImageRefs(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseImageRefs(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestImageMarkerIndex(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"[GAMBAR 1]", 0},
		{"[gambar 3]", 2},
		{"[GAMBAR  10]", 9},
		{"[GAMBAR 0]", -1},
		{"plain text", -1},
		{"", -1},
	}

	for _, tt := range tests {
		if got := ImageMarkerIndex(tt.in); got != tt.want {
			t.Errorf("ImageMarkerIndex(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSplitByImageMarkers(t *testing.T) {
	parts := SplitByImageMarkers("intro [GAMBAR 1] middle [GAMBAR 2] end")
	want := []string{"intro ", " middle ", " end"}
	if !reflect.DeepEqual(parts, want) {
		t.Errorf("SplitByImageMarkers = %v, want %v", parts, want)
	}

	if parts := SplitByImageMarkers("no markers"); len(parts) != 1 {
		t.Errorf("text without markers should stay whole, got %v", parts)
	}
}
