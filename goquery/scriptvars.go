package goquery

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/kaptinlin/jsonrepair"

	dealerscraper "github.com/CedmondsTH/dealer-scraper"
)

var _ dealerscraper.Strategy = (*ScriptVarsStrategy)(nil)

// scriptVarPatterns locate JavaScript array literals that hold location
// data. Each pattern's first capture group is the array start; the literal
// is then balanced-bracket scanned from there.
var scriptVarPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:var|let|const)\s+(?:locations|dealers|stores|dealerLocations)\s*=\s*(\[)`),
	regexp.MustCompile(`window\.(?:locations|dealers|dealerData|storeData)\s*=\s*(\[)`),
	regexp.MustCompile(`(?:"|')?(?:locations|dealers|locationData)(?:"|')?\s*:\s*(\[)`),
}

// scriptVarKeys maps the JSON key spellings seen in dealer-platform script
// data onto record fields, checked in order.
var (
	nameKeys    = []string{"name", "title", "dealerName", "dealer_name"}
	addressKeys = []string{"address", "street", "address1", "streetAddress", "full_address"}
	cityKeys    = []string{"city", "locality"}
	regionKeys  = []string{"state", "region", "province"}
	postalKeys  = []string{"zip", "zipcode", "postalCode", "postal_code"}
	phoneKeys   = []string{"phone", "telephone", "phoneNumber", "phone_number"}
	siteKeys    = []string{"url", "website", "site", "link"}
)

// ScriptVarsStrategy extracts locations from inline JavaScript data: map
// widgets and store locators that ship their dealer list as an array
// literal assigned to a well-known variable.
type ScriptVarsStrategy struct{}

// NewScriptVarsStrategy creates a new ScriptVarsStrategy.
func NewScriptVarsStrategy() *ScriptVarsStrategy {
	return &ScriptVarsStrategy{}
}

func (s *ScriptVarsStrategy) Name() string { return "scriptvars" }

func (s *ScriptVarsStrategy) Tier() dealerscraper.Tier { return dealerscraper.TierGeneric }

// CanHandle reports whether any inline script contains a recognized
// location-array assignment.
func (s *ScriptVarsStrategy) CanHandle(html, url string) bool {
	doc, err := parseDoc(html)
	if err != nil {
		return false
	}
	found := false
	doc.Find("script:not([src])").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if arr := findLocationArray(sel.Text()); arr != "" {
			found = true
			return false
		}
		return true
	})
	return found
}

// Extract pulls the first parseable location array out of the page's inline
// scripts. JavaScript object literals are rarely strict JSON (unquoted keys,
// trailing commas), so parse failures get a repair pass.
func (s *ScriptVarsStrategy) Extract(ctx context.Context, html, url string) ([]dealerscraper.RawRecord, error) {
	doc, err := parseDoc(html)
	if err != nil {
		return nil, dealerscraper.Errorf(dealerscraper.EINVALID, "parsing HTML: %v", err)
	}

	var records []dealerscraper.RawRecord
	doc.Find("script:not([src])").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		arr := findLocationArray(sel.Text())
		if arr == "" {
			return true
		}
		recs := decodeLocationArray(arr)
		if len(recs) == 0 {
			return true
		}
		for i := range recs {
			recs[i].SourceURL = url
			recs[i].Strategy = s.Name()
		}
		records = recs
		return false
	})
	return records, nil
}

// findLocationArray returns the raw array literal of the first matching
// assignment in the script source, or "" when none is found.
func findLocationArray(script string) string {
	for _, pat := range scriptVarPatterns {
		loc := pat.FindStringSubmatchIndex(script)
		if loc == nil {
			continue
		}
		if arr := balancedArray(script[loc[2]:]); arr != "" {
			return arr
		}
	}
	return ""
}

// balancedArray scans from an opening bracket to its matching close,
// skipping string literals.
func balancedArray(s string) string {
	depth := 0
	inString := false
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch c {
			case '\\':
				i++
			case quote:
				inString = false
			}
			continue
		}
		switch c {
		case '"', '\'':
			inString = true
			quote = c
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return ""
}

// decodeLocationArray parses a JavaScript array literal into records,
// repairing non-JSON syntax if needed.
func decodeLocationArray(arr string) []dealerscraper.RawRecord {
	var items []map[string]any
	if err := json.Unmarshal([]byte(arr), &items); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(arr)
		if repairErr != nil || json.Unmarshal([]byte(repaired), &items) != nil {
			return nil
		}
	}

	var records []dealerscraper.RawRecord
	for _, item := range items {
		name := firstKey(item, nameKeys)
		if name == "" {
			continue
		}
		records = append(records, dealerscraper.RawRecord{
			Name:       name,
			Address:    firstKey(item, addressKeys),
			City:       firstKey(item, cityKeys),
			Region:     firstKey(item, regionKeys),
			PostalCode: firstKey(item, postalKeys),
			Phone:      firstKey(item, phoneKeys),
			Website:    firstKey(item, siteKeys),
		})
	}
	return records
}

func firstKey(item map[string]any, keys []string) string {
	for _, k := range keys {
		if s, ok := item[k].(string); ok {
			if v := strings.TrimSpace(s); v != "" {
				return v
			}
		}
	}
	return ""
}
