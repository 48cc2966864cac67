package dealerscraper

// Category classifies what kind of operation a dealership location is,
// inferred from keyword cues in its name.
type Category string

// Dealership categories.
const (
	CategoryFranchised Category = "Franchised"
	CategoryUsed       Category = "Used"
	CategoryCollision  Category = "Collision"
	CategoryFixedOps   Category = "Fixed Ops"
	CategoryUnknown    Category = "Unknown"
)

// RawRecord is a single location as extracted by one strategy invocation.
// It is never mutated after creation; normalization produces a new value.
type RawRecord struct {
	Name       string `json:"name"`
	Address    string `json:"address"` // free-text, possibly multi-part
	City       string `json:"city"`    // set when the source provides structured fields
	Region     string `json:"region"`
	PostalCode string `json:"postalCode"`
	Phone      string `json:"phone"`
	Website    string `json:"website"`
	SourceURL  string `json:"sourceUrl"`
	Strategy   string `json:"strategy"` // name of the strategy that produced it
}

// CanonicalRecord is a fully normalized, deduplication-ready location entry.
type CanonicalRecord struct {
	Name        string   `json:"name"`
	Street      string   `json:"street"`
	City        string   `json:"city"`
	Region      string   `json:"region"` // US state or Canadian province code
	PostalCode  string   `json:"postalCode"`
	Country     string   `json:"country"`
	Phone       string   `json:"phone"`
	Website     string   `json:"website"` // scheme and www stripped, tracking params removed
	Brands      []string `json:"brands"`
	Category    Category `json:"category"`
	DealerGroup string   `json:"dealerGroup"`
	SourceURL   string   `json:"sourceUrl"`
	Strategy    string   `json:"strategy"`
	Tier        Tier     `json:"tier"`
}

// Validate returns an error if the record violates canonical invariants.
func (r *CanonicalRecord) Validate() error {
	if r.Name == "" {
		return Errorf(EINVALID, "record name required")
	}
	if r.Region != "" && r.Country == "" {
		return Errorf(EINVALID, "country unresolved for region %q", r.Region)
	}
	return nil
}

// FieldCount returns the number of populated scalar fields. The deduplicator
// uses it to pick a merge winner.
func (r *CanonicalRecord) FieldCount() int {
	n := 0
	for _, v := range []string{r.Name, r.Street, r.City, r.Region, r.PostalCode, r.Country, r.Phone, r.Website} {
		if v != "" {
			n++
		}
	}
	if len(r.Brands) > 0 {
		n++
	}
	if r.Category != "" && r.Category != CategoryUnknown {
		n++
	}
	return n
}
