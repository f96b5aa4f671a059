package match

import (
	"path"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	timestampPrefix = regexp.MustCompile(`^\d{8,}[-_\s]*`)
	documentExt     = regexp.MustCompile(`\.(pdf|docx?|txt|rtf|odt)$`)
	separators      = regexp.MustCompile(`[-_.\s]+`)
	nonWord         = regexp.MustCompile(`[^\p{L}\p{N}]+`)
)

// NormalizeFilename lowercases a file name, strips a leading upload timestamp and the
// document extension, and collapses separators to single spaces.
func NormalizeFilename(name string) string {
	s := strings.ToLower(norm.NFKC.String(path.Base(strings.ReplaceAll(name, `\`, "/"))))
	s = documentExt.ReplaceAllString(s, "")
	s = timestampPrefix.ReplaceAllString(s, "")
	s = separators.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func normalizeTitle(s string) string {
	s = strings.ToLower(norm.NFKC.String(s))
	return strings.TrimSpace(nonWord.ReplaceAllString(s, " "))
}

// Similarity is the Dice coefficient over character bigrams, ignoring whitespace.
// It returns a value in [0,1].
func Similarity(a, b string) float64 {
	ra := []rune(stripSpace(a))
	rb := []rune(stripSpace(b))
	if string(ra) == string(rb) {
		if len(ra) == 0 {
			return 0
		}
		return 1
	}
	if len(ra) < 2 || len(rb) < 2 {
		return 0
	}

	bigrams := make(map[string]int, len(ra)-1)
	for i := 0; i < len(ra)-1; i++ {
		bigrams[string(ra[i:i+2])]++
	}
	shared := 0
	for i := 0; i < len(rb)-1; i++ {
		bg := string(rb[i : i+2])
		if bigrams[bg] > 0 {
			bigrams[bg]--
			shared++
		}
	}
	return 2 * float64(shared) / float64(len(ra)+len(rb)-2)
}

func stripSpace(s string) string {
	return strings.Join(strings.Fields(s), "")
}
