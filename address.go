package dealerscraper

import (
	"regexp"
	"strings"
)

// ParsedAddress is a free-text address decomposed into structured fields.
type ParsedAddress struct {
	Street     string
	City       string
	Region     string // validated US state or Canadian province code
	PostalCode string
}

const (
	usZipPattern       = `\d{5}(?:-\d{4})?`
	canadianPostalCode = `[A-Za-z]\d[A-Za-z]\s?\d[A-Za-z]\d`
)

var (
	// "222 W Merchandise Mart Plaza, Chicago, IL 60654, USA" — optional
	// trailing country segment.
	addrWithCountry = regexp.MustCompile(
		`^(.*?),\s*([^,]+?),\s*([A-Za-z]{2})\s+(` + usZipPattern + `|` + canadianPostalCode + `)(?:,\s*[^,]+)?\s*$`)

	// "123 Main St, Springfield, OR 97477"
	addrPlain = regexp.MustCompile(
		`^(.*?),\s*([^,]+?),\s*([A-Za-z]{2})\s+(` + usZipPattern + `|` + canadianPostalCode + `)\s*$`)

	// inline "…, City, ST 12345 …" suffix anywhere near the end
	addrInline = regexp.MustCompile(
		`([A-Za-z]{2})\s+(` + usZipPattern + `|` + canadianPostalCode + `)`)

	usZipRe    = regexp.MustCompile(`^` + usZipPattern + `$`)
	caPostalRe = regexp.MustCompile(`^` + canadianPostalCode + `$`)
)

// streetAbbreviations maps spelled-out street words to their standard
// abbreviations. Applied after field segmentation, never before, to avoid
// corrupting segmentation boundaries.
var streetAbbreviations = []struct {
	re   *regexp.Regexp
	abbr string
}{
	{regexp.MustCompile(`(?i)\bStreet\b`), "St"},
	{regexp.MustCompile(`(?i)\bAvenue\b`), "Ave"},
	{regexp.MustCompile(`(?i)\bBoulevard\b`), "Blvd"},
	{regexp.MustCompile(`(?i)\bHighway\b`), "Hwy"},
	{regexp.MustCompile(`(?i)\bLane\b`), "Ln"},
	{regexp.MustCompile(`(?i)\bDrive\b`), "Dr"},
	{regexp.MustCompile(`(?i)\bRoad\b`), "Rd"},
	{regexp.MustCompile(`(?i)\bParkway\b`), "Pkwy"},
	{regexp.MustCompile(`(?i)\bExpressway\b`), "Expy"},
}

// uppercaseAbbreviations are tokens kept fully uppercase through title casing.
var uppercaseAbbreviations = []string{
	"NE", "NW", "SE", "SW", "GMC", "FIAT", "RAM", "BMW", "USA", "II", "III", "IV",
}

// ParseAddress decomposes a free-text address into structured fields.
// Format-specific patterns are tried in priority order; the first pattern
// that yields a plausible region code (validated against the closed
// US/Canada region table) wins. Returns ENOTFOUND when no pattern produces
// a street and a valid region.
func ParseAddress(text string) (*ParsedAddress, error) {
	text = joinLines(text)
	if strings.TrimSpace(text) == "" {
		return nil, Errorf(ENOTFOUND, "empty address")
	}

	for _, re := range []*regexp.Regexp{addrWithCountry, addrPlain} {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		region := strings.ToUpper(strings.TrimSpace(m[3]))
		if !ValidRegion(region) {
			continue
		}
		return &ParsedAddress{
			Street:     NormalizeStreet(m[1]),
			City:       cleanCity(m[2]),
			Region:     region,
			PostalCode: normalizePostal(m[4]),
		}, nil
	}

	// Loose comma-delimited fallback: street, city, then a trailing part
	// holding "ST 12345" (possibly followed by a country).
	parts := splitParts(text)
	if len(parts) >= 3 {
		if m := addrInline.FindStringSubmatch(parts[len(parts)-1]); m != nil {
			region := strings.ToUpper(m[1])
			if ValidRegion(region) {
				return &ParsedAddress{
					Street:     NormalizeStreet(parts[0]),
					City:       cleanCity(parts[1]),
					Region:     region,
					PostalCode: normalizePostal(m[2]),
				}, nil
			}
		}
		// "street, city, ST, 12345" with the region as its own part
		if len(parts) >= 4 && ValidRegion(strings.ToUpper(parts[2])) {
			return &ParsedAddress{
				Street:     NormalizeStreet(parts[0]),
				City:       cleanCity(parts[1]),
				Region:     strings.ToUpper(parts[2]),
				PostalCode: normalizePostal(parts[3]),
			}, nil
		}
	}

	return nil, Errorf(ENOTFOUND, "no parseable street and region in %q", text)
}

// ValidPostalCode reports whether code is a well-formed US ZIP (5-digit or
// ZIP+4) or Canadian "A1A 1A1" postal code. A detected-but-invalid postal
// code does not fail parsing; callers surface it as a diagnostic.
func ValidPostalCode(code string) bool {
	if code == "" {
		return false
	}
	return usZipRe.MatchString(code) || caPostalRe.MatchString(code)
}

// NormalizeStreet expands common street-word abbreviations and applies
// title casing with uppercase abbreviations preserved. Idempotent: already
// normalized streets pass through unchanged.
func NormalizeStreet(street string) string {
	street = strings.TrimSpace(collapseWhitespace(street))
	for _, a := range streetAbbreviations {
		street = a.re.ReplaceAllString(street, a.abbr)
	}
	street = TitleCase(street)
	return strings.TrimRight(street, " .,")
}

// TitleCase title-cases text while preserving known uppercase abbreviations
// (NE, GMC, BMW, …).
func TitleCase(text string) string {
	words := strings.Fields(text)
	for i, w := range words {
		words[i] = titleWord(w)
	}
	return strings.Join(words, " ")
}

func titleWord(w string) string {
	trimmed := strings.TrimRight(w, ".,;:!?")
	for _, abbr := range uppercaseAbbreviations {
		if strings.EqualFold(trimmed, abbr) {
			return abbr + w[len(trimmed):]
		}
	}
	runes := []rune(strings.ToLower(w))
	for i, r := range runes {
		if r >= 'a' && r <= 'z' {
			runes[i] = r - ('a' - 'A')
			break
		}
		if r >= '0' && r <= '9' {
			continue
		}
		break
	}
	return string(runes)
}

func cleanCity(city string) string {
	city = strings.TrimSpace(city)
	city = strings.TrimRight(city, ", ")
	return TitleCase(city)
}

func normalizePostal(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	// Canadian postal codes carry an interior space.
	if len(code) == 6 && caPostalRe.MatchString(code[:3]+" "+code[3:]) {
		return code[:3] + " " + code[3:]
	}
	return code
}

func joinLines(text string) string {
	if !strings.ContainsAny(text, "\n\r") {
		return strings.TrimSpace(text)
	}
	var parts []string
	for _, line := range strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == '\r' }) {
		line = strings.TrimSpace(line)
		if line != "" {
			parts = append(parts, strings.TrimRight(line, ","))
		}
	}
	return strings.Join(parts, ", ")
}

func splitParts(text string) []string {
	var parts []string
	for _, p := range strings.Split(text, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

var whitespaceRe = regexp.MustCompile(`\s+`)

func collapseWhitespace(s string) string {
	return whitespaceRe.ReplaceAllString(s, " ")
}
