// Package content parses FAQ answer bodies: positional [GAMBAR n] image
// markers, semicolon-joined image reference lists, and the cleaned text used
// for embedding.
package content

import (
	"regexp"
	"strconv"
	"strings"
)

// NoImages is the stored sentinel for documents without image references.
const NoImages = "none"

var imageMarkerRe = regexp.MustCompile(`(?i)\[GAMBAR\s*(\d+)\]`)

// StripImageMarkers removes [GAMBAR n] markers and normalises whitespace.
// Markdown is preserved — only the markers go; the result feeds the embedder.
func StripImageMarkers(text string) string {
	if text == "" {
		return ""
	}
	clean := imageMarkerRe.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(clean), " ")
}

// ParseImageRefs splits a semicolon-joined reference string from the store.
// Empty strings and the "none" sentinel yield no refs.
func ParseImageRefs(refs string) []string {
	if refs == "" || strings.EqualFold(refs, NoImages) {
		return nil
	}
	var out []string
	for _, p := range strings.Split(refs, ";") {
		clean := strings.ReplaceAll(strings.TrimSpace(p), "\\", "/")
		if clean != "" {
			out = append(out, clean)
		}
	}
	return out
}

// SplitByImageMarkers splits an answer body into the text segments around
// [GAMBAR n] markers. API consumers that render answers (chat bots, admin
// frontends) use it to interleave the referenced images with the text; the
// service itself only ships answers with the markers left in place.
func SplitByImageMarkers(text string) []string {
	return imageMarkerRe.Split(text, -1)
}

// ImageMarkerIndex extracts the zero-based image index from a [GAMBAR n]
// marker, or -1 when the text holds no marker. The companion to
// SplitByImageMarkers for the same rendering consumers.
func ImageMarkerIndex(marker string) int {
	m := imageMarkerRe.FindStringSubmatch(marker)
	if m == nil {
		return -1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return -1
	}
	return n - 1
}
