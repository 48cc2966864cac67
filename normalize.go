package dealerscraper

import (
	"net/url"
	"regexp"
	"strings"
)

// Normalizer cleans and validates one raw extracted record into a canonical
// record. Canonical form is a fixed point: normalizing an already-canonical
// record is a no-op.
type Normalizer struct {
	// DealerGroup is stamped onto every canonical record.
	DealerGroup string
}

// corporateSuffixes get their casing standardized in canonical names.
// They are kept in the name; only the dedupe key strips them.
var corporateSuffixes = []struct {
	re    *regexp.Regexp
	canon string
}{
	{regexp.MustCompile(`(?i)\bllc\b`), "LLC"},
	{regexp.MustCompile(`(?i)\binc\b`), "Inc"},
	{regexp.MustCompile(`(?i)\bltd\b`), "Ltd"},
	{regexp.MustCompile(`(?i)\bcorp\b`), "Corp"},
}

// Normalize converts a raw record to canonical form. A nil record with an
// EINVALID or ENOTFOUND error means "discard — not a real location" (e.g., a
// corporate HQ entry or malformed row); the error message explains why.
func (n *Normalizer) Normalize(raw RawRecord) (*CanonicalRecord, error) {
	name := strings.TrimSpace(collapseWhitespace(raw.Name))
	if !ValidName(name) {
		return nil, Errorf(EINVALID, "rejected name %q", name)
	}

	street, city, region, postal, err := n.resolveAddress(raw)
	if err != nil {
		return nil, err
	}

	name = normalizeName(name)
	country := CountryForRegion(region)
	if country == "" {
		return nil, Errorf(EINVALID, "unresolvable region %q for %q", region, name)
	}

	rec := &CanonicalRecord{
		Name:        name,
		Street:      street,
		City:        city,
		Region:      region,
		PostalCode:  postal,
		Country:     country,
		Phone:       strings.TrimSpace(collapseWhitespace(raw.Phone)),
		Website:     CleanWebsite(raw.Website),
		Brands:      BrandsInName(name),
		Category:    ClassifyName(name),
		DealerGroup: n.DealerGroup,
		SourceURL:   raw.SourceURL,
		Strategy:    raw.Strategy,
	}
	return rec, nil
}

// resolveAddress prefers structured fields when the strategy provided them
// and falls back to parsing the free-text address.
func (n *Normalizer) resolveAddress(raw RawRecord) (street, city, region, postal string, err error) {
	region = strings.ToUpper(strings.TrimSpace(raw.Region))
	if raw.Address != "" && (region == "" || !ValidRegion(region)) {
		parsed, perr := ParseAddress(raw.Address)
		if perr != nil {
			return "", "", "", "", Errorf(EINVALID, "no parseable street and region for %q", raw.Name)
		}
		return parsed.Street, parsed.City, parsed.Region, parsed.PostalCode, nil
	}
	if !ValidRegion(region) {
		return "", "", "", "", Errorf(EINVALID, "no parseable street and region for %q", raw.Name)
	}

	street = NormalizeStreet(raw.Address)
	if raw.City != "" || raw.PostalCode != "" {
		// Structured fields present; the address text is the street alone.
		street = NormalizeStreet(firstLine(raw.Address))
	}
	if street == "" {
		return "", "", "", "", Errorf(EINVALID, "no parseable street and region for %q", raw.Name)
	}
	return street, cleanCity(raw.City), region, normalizePostal(raw.PostalCode), nil
}

func firstLine(s string) string {
	if i := strings.IndexAny(s, "\n\r"); i >= 0 {
		return s[:i]
	}
	return s
}

func normalizeName(name string) string {
	name = TitleCase(name)
	for _, suffix := range corporateSuffixes {
		name = suffix.re.ReplaceAllString(name, suffix.canon)
	}
	return name
}

// trackingParams are query parameters stripped from extracted websites.
var trackingParams = regexp.MustCompile(`^(utm_|gclid$|fbclid$|mc_cid$|mc_eid$)`)

var schemePrefix = regexp.MustCompile(`^https?://(www\.)?`)

// CleanWebsite standardizes an extracted website: scheme and leading www
// stripped, backslashes repaired, tracking query parameters removed,
// trailing slash dropped. Fragment-only and relative hrefs yield the empty
// string.
func CleanWebsite(website string) string {
	website = strings.TrimSpace(website)
	if website == "" || strings.HasPrefix(website, "#") || strings.HasPrefix(website, "/") {
		return ""
	}
	website = strings.ReplaceAll(website, "\\", "/")
	website = schemePrefix.ReplaceAllString(website, "")

	if i := strings.IndexByte(website, '?'); i >= 0 {
		base, query := website[:i], website[i+1:]
		if values, err := url.ParseQuery(query); err == nil {
			for key := range values {
				if trackingParams.MatchString(strings.ToLower(key)) {
					values.Del(key)
				}
			}
			if encoded := values.Encode(); encoded != "" {
				website = base + "?" + encoded
			} else {
				website = base
			}
		} else {
			website = base
		}
	}

	return strings.TrimRight(website, "/")
}
