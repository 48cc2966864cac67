package dealerscraper

import (
	"regexp"
	"strings"
)

// Deduplicator merges a batch of canonical records into a unique set.
//
// The key is the lowercased name with corporate suffixes removed paired with
// the lowercased street reduced to letters and digits, with one trailing
// suite/unit designator stripped first — so "123 Main St" and
// "123 Main St Suite 2" identify the same physical location. Two records
// with the same key are merged field-by-field, fill-gaps only: the record
// with more populated fields survives, ties broken by strategy tier
// (specific over generic over fallback). Output order is insertion order of
// the surviving records, so output is deterministic given deterministic
// input order.
type Deduplicator struct{}

var (
	suffixNoiseRe = regexp.MustCompile(`(?i)\b(?:llc|inc|ltd|corp|co)\b\.?`)
	unitSuffixRe  = regexp.MustCompile(`(?i)[,\s]+(?:suite|ste|unit|apt|bldg|#)\s*\.?\s*[\w-]+\s*$`)
	nonAlnumRe    = regexp.MustCompile(`[^a-z0-9]+`)
)

// Dedupe returns the unique set for records. Records without a usable key
// (missing name or street) are kept as-is.
func (d *Deduplicator) Dedupe(records []CanonicalRecord) []CanonicalRecord {
	out := make([]CanonicalRecord, 0, len(records))
	index := make(map[[2]string]int)

	for _, rec := range records {
		key, ok := dedupeKey(rec)
		if !ok {
			out = append(out, rec)
			continue
		}
		at, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, rec)
			continue
		}
		out[at] = merge(out[at], rec)
	}
	return out
}

func dedupeKey(rec CanonicalRecord) ([2]string, bool) {
	name := nameKey(rec.Name)
	street := streetKey(rec.Street)
	if name == "" || street == "" {
		return [2]string{}, false
	}
	return [2]string{name, street}, true
}

func nameKey(name string) string {
	name = suffixNoiseRe.ReplaceAllString(strings.ToLower(name), "")
	return strings.TrimSpace(collapseWhitespace(name))
}

func streetKey(street string) string {
	street = unitSuffixRe.ReplaceAllString(strings.ToLower(street), "")
	return nonAlnumRe.ReplaceAllString(street, "")
}

// merge combines two records sharing a key. The winner keeps its slot; the
// loser only fills gaps, never overwrites a present field.
func merge(a, b CanonicalRecord) CanonicalRecord {
	winner, loser := a, b
	if betterRecord(b, a) {
		winner, loser = b, a
	}

	fill(&winner.Street, loser.Street)
	fill(&winner.City, loser.City)
	fill(&winner.Region, loser.Region)
	fill(&winner.PostalCode, loser.PostalCode)
	fill(&winner.Country, loser.Country)
	fill(&winner.Phone, loser.Phone)
	fill(&winner.Website, loser.Website)
	if len(winner.Brands) == 0 {
		winner.Brands = loser.Brands
	}
	if winner.Category == CategoryUnknown || winner.Category == "" {
		winner.Category = loser.Category
	}
	return winner
}

// betterRecord reports whether b should win over a: more populated fields,
// or on a tie, a higher-priority strategy tier.
func betterRecord(b, a CanonicalRecord) bool {
	bc, ac := b.FieldCount(), a.FieldCount()
	if bc != ac {
		return bc > ac
	}
	return b.Tier < a.Tier
}

func fill(dst *string, src string) {
	if *dst == "" {
		*dst = src
	}
}
