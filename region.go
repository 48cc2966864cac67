package dealerscraper

// Countries resolvable from a region code.
const (
	CountryUS     = "United States of America"
	CountryCanada = "Canada"
)

// usStates is the closed set of US state and territory codes.
var usStates = map[string]bool{
	"AL": true, "AK": true, "AZ": true, "AR": true, "CA": true, "CO": true,
	"CT": true, "DE": true, "FL": true, "GA": true, "HI": true, "ID": true,
	"IL": true, "IN": true, "IA": true, "KS": true, "KY": true, "LA": true,
	"ME": true, "MD": true, "MA": true, "MI": true, "MN": true, "MS": true,
	"MO": true, "MT": true, "NE": true, "NV": true, "NH": true, "NJ": true,
	"NM": true, "NY": true, "NC": true, "ND": true, "OH": true, "OK": true,
	"OR": true, "PA": true, "RI": true, "SC": true, "SD": true, "TN": true,
	"TX": true, "UT": true, "VT": true, "VA": true, "WA": true, "WV": true,
	"WI": true, "WY": true, "DC": true, "PR": true,
}

// canadianProvinces is the closed set of Canadian province and territory codes.
var canadianProvinces = map[string]bool{
	"AB": true, "BC": true, "MB": true, "NB": true, "NL": true, "NS": true,
	"NT": true, "NU": true, "ON": true, "PE": true, "QC": true, "SK": true,
	"YT": true,
}

// ValidRegion reports whether code is a known US state or Canadian province.
func ValidRegion(code string) bool {
	return usStates[code] || canadianProvinces[code]
}

// CountryForRegion resolves a region code to its country. The lookup is
// authoritative: it never depends on free-text country mentions. Returns
// the empty string for unknown regions.
func CountryForRegion(code string) string {
	switch {
	case canadianProvinces[code]:
		return CountryCanada
	case usStates[code]:
		return CountryUS
	}
	return ""
}
