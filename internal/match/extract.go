package match

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// docNumber matches tokens shaped like 36-2903 that are not part of a longer number.
var docNumber = regexp.MustCompile(`(?:^|[^\d])(\d{1,3})-(\d{1,5})(?:[^\d]|$)`)

// supersedes accepts prefixes written apart from or attached to the number
// (AFI 36-2903, AFI36-2903).
var supersedes = regexp.MustCompile(`(?i)supersedes\s*:?\s*(?:[a-z][a-z.#]*\s*){0,3}?(\d{1,3})-(\d{1,5})(?:[^\d]|$)`)

// DocumentNumber is a parsed NN-NNNN identifier, compared numerically.
type DocumentNumber struct {
	Series int
	Serial int
	Raw    string
}

// Equal compares two numbers ignoring leading zeros.
func (n DocumentNumber) Equal(o DocumentNumber) bool {
	return n.Series == o.Series && n.Serial == o.Serial
}

func parseNumber(series, serial string) (DocumentNumber, bool) {
	a, err := strconv.Atoi(series)
	if err != nil {
		return DocumentNumber{}, false
	}
	b, err := strconv.Atoi(serial)
	if err != nil {
		return DocumentNumber{}, false
	}
	return DocumentNumber{Series: a, Serial: b, Raw: series + "-" + serial}, true
}

// ExtractDocumentNumber returns the first document number found in s.
func ExtractDocumentNumber(s string) (DocumentNumber, bool) {
	m := docNumber.FindStringSubmatch(s)
	if m == nil {
		return DocumentNumber{}, false
	}
	return parseNumber(m[1], m[2])
}

// ExtractSupersedes returns the document number named in a "supersedes" statement.
func ExtractSupersedes(text string) (DocumentNumber, bool) {
	m := supersedes.FindStringSubmatch(text)
	if m == nil {
		return DocumentNumber{}, false
	}
	return parseNumber(m[1], m[2])
}

var boilerplate = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(page\s+)?\d+(\s+(of|/)\s+\d+)?$`),
	regexp.MustCompile(`^\d{1,4}[/.-]\d{1,2}[/.-]\d{1,4}$`),
	regexp.MustCompile(`(?i)^\d{0,2}\s*(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+\d{1,2}?,?\s*\d{4}$`),
	regexp.MustCompile(`(?i)^(by order of|compliance with this|certified by|opr:|supersedes|distribution|releasability|accessibility|table of contents|department of|effective date|confidential)`),
}

// ExtractTitle picks the first early line that looks like a title: 15-200 characters
// and not page-number, date or header boilerplate.
func ExtractTitle(text string) (string, bool) {
	seen := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}
		seen++
		if seen > 15 {
			break
		}
		n := utf8.RuneCountInString(line)
		if n < 15 || n > 200 || isBoilerplate(line) {
			continue
		}
		return line, true
	}
	return "", false
}

func isBoilerplate(line string) bool {
	for _, re := range boilerplate {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}
