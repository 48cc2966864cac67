package fs

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strings"

	dealerscraper "github.com/CedmondsTH/dealer-scraper"
)

// ExportColumns is the column order for CSV exports.
var ExportColumns = []string{
	"Dealership",
	"Dealer Group",
	"Dealership Type",
	"Car Brand",
	"Address",
	"City",
	"State/Province",
	"Postal Code",
	"Phone",
	"Country",
	"Website",
}

// WriteCSV writes canonical records as CSV with a header row.
func WriteCSV(w io.Writer, records []dealerscraper.CanonicalRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportColumns); err != nil {
		return err
	}
	for _, rec := range records {
		row := []string{
			rec.Name,
			rec.DealerGroup,
			string(rec.Category),
			strings.Join(rec.Brands, "; "),
			rec.Street,
			rec.City,
			rec.Region,
			rec.PostalCode,
			rec.Phone,
			rec.Country,
			rec.Website,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes an outcome as indented JSON.
func WriteJSON(w io.Writer, out *dealerscraper.Outcome) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
