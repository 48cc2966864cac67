package goquery

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/kaptinlin/jsonrepair"

	dealerscraper "github.com/CedmondsTH/dealer-scraper"
)

var _ dealerscraper.Strategy = (*JSONLDStrategy)(nil)

// jsonldTypes are the schema.org types that describe a dealership location.
var jsonldTypes = map[string]bool{
	"AutoDealer":         true,
	"AutomotiveBusiness": true,
	"AutoRepair":         true,
	"AutoBodyShop":       true,
	"LocalBusiness":      true,
}

// JSONLDStrategy extracts locations from schema.org structured data in
// script[type="application/ld+json"] blocks. Dealer platforms embed these
// for SEO, which makes them the most reliable generic source when present.
type JSONLDStrategy struct{}

// NewJSONLDStrategy creates a new JSONLDStrategy.
func NewJSONLDStrategy() *JSONLDStrategy {
	return &JSONLDStrategy{}
}

func (s *JSONLDStrategy) Name() string { return "jsonld" }

func (s *JSONLDStrategy) Tier() dealerscraper.Tier { return dealerscraper.TierGeneric }

// CanHandle reports whether the page carries at least one ld+json block
// with a dealership-shaped type.
func (s *JSONLDStrategy) CanHandle(html, url string) bool {
	doc, err := parseDoc(html)
	if err != nil {
		return false
	}
	found := false
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		for _, node := range decodeJSONLD(sel.Text()) {
			if jsonldTypes[nodeType(node)] {
				found = true
				return false
			}
		}
		return true
	})
	return found
}

// Extract walks every ld+json block, flattening @graph containers and
// top-level arrays, and converts dealership-typed nodes to raw records.
func (s *JSONLDStrategy) Extract(ctx context.Context, html, url string) ([]dealerscraper.RawRecord, error) {
	doc, err := parseDoc(html)
	if err != nil {
		return nil, dealerscraper.Errorf(dealerscraper.EINVALID, "parsing HTML: %v", err)
	}

	var records []dealerscraper.RawRecord
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		for _, node := range decodeJSONLD(sel.Text()) {
			if !jsonldTypes[nodeType(node)] {
				continue
			}
			if rec, ok := recordFromNode(node); ok {
				rec.SourceURL = url
				rec.Strategy = s.Name()
				records = append(records, rec)
			}
		}
	})
	return records, nil
}

// decodeJSONLD parses one script block into a flat list of object nodes,
// expanding top-level arrays and @graph containers. Malformed JSON gets one
// repair attempt before being skipped.
func decodeJSONLD(raw string) []map[string]any {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(raw)
		if repairErr != nil || json.Unmarshal([]byte(repaired), &parsed) != nil {
			return nil
		}
	}

	var nodes []map[string]any
	var walk func(v any)
	walk = func(v any) {
		switch t := v.(type) {
		case []any:
			for _, item := range t {
				walk(item)
			}
		case map[string]any:
			if graph, ok := t["@graph"].([]any); ok {
				for _, item := range graph {
					walk(item)
				}
				return
			}
			nodes = append(nodes, t)
		}
	}
	walk(parsed)
	return nodes
}

// nodeType returns the node's @type, taking the first entry when @type is
// an array.
func nodeType(node map[string]any) string {
	switch t := node["@type"].(type) {
	case string:
		return t
	case []any:
		for _, v := range t {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}

// recordFromNode maps a schema.org node to a RawRecord. Returns false when
// the node has no name.
func recordFromNode(node map[string]any) (dealerscraper.RawRecord, bool) {
	name := stringField(node, "name")
	if name == "" {
		return dealerscraper.RawRecord{}, false
	}

	rec := dealerscraper.RawRecord{
		Name:    name,
		Phone:   stringField(node, "telephone"),
		Website: stringField(node, "url"),
	}

	if addr, ok := node["address"].(map[string]any); ok {
		rec.Address = stringField(addr, "streetAddress")
		rec.City = stringField(addr, "addressLocality")
		rec.Region = stringField(addr, "addressRegion")
		rec.PostalCode = stringField(addr, "postalCode")
	} else if addr := stringField(node, "address"); addr != "" {
		rec.Address = addr
	}
	return rec, true
}

func stringField(node map[string]any, key string) string {
	s, _ := node[key].(string)
	return strings.TrimSpace(s)
}
