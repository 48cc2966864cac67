package dealerscraper

import (
	"sort"
	"strings"
)

// carBrands is the known brand vocabulary used for tagging and for the
// franchised-category cue.
var carBrands = []string{
	"Acura", "Airstream", "Alfa Romeo", "Aston Martin", "Audi", "Bentley",
	"BMW", "Bugatti", "Cadillac", "Chevrolet", "Ferrari", "FIAT", "Ford",
	"Genesis", "GMC", "Honda", "Hummer", "Hyundai", "Infiniti", "Isuzu",
	"Jaguar", "Kia", "Lamborghini", "Land Rover", "Lexus", "Lincoln",
	"Maserati", "Mazda", "McLaren", "Mercedes-Benz", "Mini", "Mitsubishi",
	"Nissan", "Polestar", "Porsche", "Rolls-Royce", "smart", "Sprinter",
	"Subaru", "Tesla", "Toyota", "Volkswagen", "Volvo", "Lotus", "INEOS",
	"Koenigsegg", "Harley-Davidson", "Rimac", "Karma", "Lucid", "Vinfast",
	"CDJR", "CDJRF", "Buick GMC", "Rivian", "Ford PRO", "GMC/Chevy Business Elite",
	"RAM Commercial", "Freightliner", "Western Star", "International", "Peterbilt",
	"Kenworth", "Mack", "Hino", "Capacity", "Autocar", "Fuso", "Maybach",
	"Pagani", "Chrysler", "Dodge", "Scion", "Jeep",
}

// brandsByLength is carBrands sorted longest-first so that overlapping names
// ("Buick GMC" vs "GMC", "Ford PRO" vs "Ford") resolve longest-match-wins.
var brandsByLength = func() []string {
	sorted := make([]string, len(carBrands))
	copy(sorted, carBrands)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) > len(sorted[j])
	})
	return sorted
}()

// Keyword cues for category classification, checked in priority order.
var (
	collisionKeywords = []string{
		"collision", "body shop", "autobody", "auto body", "repair center",
		"collision repair", "body repair", "repair",
	}
	fixedOpsKeywords = []string{
		"service", "quick lane", "express", "maintenance", "tire", "lube",
	}
	usedCarKeywords = []string{
		"used", "pre-owned", "auto sales", "car sales",
	}
)

// invalidNames are extracted "names" that are page furniture rather than
// dealerships.
var invalidNames = map[string]bool{
	"locations":         true,
	"saved":             true,
	"community news":    true,
	"essential cookies": true,
	"sales":             true,
	"service phone:":    true,
	"parts phone:":      true,
}

// BrandsInName scans a dealership name against the brand vocabulary using
// case-insensitive substring matching, longest match wins. The CDJR stack
// collapses into its combined tags before individual matching.
func BrandsInName(name string) []string {
	lower := strings.ToLower(name)
	if lower == "" {
		return nil
	}

	if containsAll(lower, "chrysler", "jeep", "dodge", "ram", "fiat") {
		return []string{"CDJRF"}
	}
	if containsAll(lower, "chrysler", "jeep", "dodge", "ram") {
		return []string{"CDJR"}
	}

	var brands []string
	for _, brand := range brandsByLength {
		bl := strings.ToLower(brand)
		idx := strings.Index(lower, bl)
		if idx < 0 {
			continue
		}
		brands = append(brands, brand)
		// Mask the matched span so shorter overlapping brands don't re-match.
		lower = lower[:idx] + strings.Repeat("\x00", len(bl)) + lower[idx+len(bl):]
	}

	// Restore vocabulary order for deterministic output.
	sort.SliceStable(brands, func(i, j int) bool {
		return brandIndex(brands[i]) < brandIndex(brands[j])
	})
	return brands
}

func brandIndex(brand string) int {
	for i, b := range carBrands {
		if b == brand {
			return i
		}
	}
	return len(carBrands)
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

// ClassifyName infers the dealership category from keyword cues in the name.
// Collision cues win over fixed-ops cues, which win over used-car cues; a
// known brand in the name marks the location as franchised; anything else is
// unknown.
func ClassifyName(name string) Category {
	lower := strings.ToLower(name)
	switch {
	case containsAny(lower, collisionKeywords):
		return CategoryCollision
	case containsAny(lower, fixedOpsKeywords):
		return CategoryFixedOps
	case containsAny(lower, usedCarKeywords):
		return CategoryUsed
	case len(BrandsInName(name)) > 0:
		return CategoryFranchised
	}
	return CategoryUnknown
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// ValidName reports whether an extracted name plausibly identifies a
// dealership rather than page furniture.
func ValidName(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	return !invalidNames[strings.ToLower(strings.TrimSpace(name))]
}
