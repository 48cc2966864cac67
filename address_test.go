package dealerscraper_test

import (
	"testing"

	dealerscraper "github.com/CedmondsTH/dealer-scraper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want dealerscraper.ParsedAddress
	}{
		{
			name: "comma delimited",
			text: "123 Main St, Springfield, OR 97477",
			want: dealerscraper.ParsedAddress{Street: "123 Main St", City: "Springfield", Region: "OR", PostalCode: "97477"},
		},
		{
			name: "street with suite",
			text: "456 Oak Ave Suite 2, Austin, TX 78701",
			want: dealerscraper.ParsedAddress{Street: "456 Oak Ave Suite 2", City: "Austin", Region: "TX", PostalCode: "78701"},
		},
		{
			name: "trailing country",
			text: "222 W Merchandise Mart Plaza, Chicago, IL 60654, USA",
			want: dealerscraper.ParsedAddress{Street: "222 W Merchandise Mart Plaza", City: "Chicago", Region: "IL", PostalCode: "60654"},
		},
		{
			name: "zip plus four",
			text: "789 Pine Rd, Boise, ID 83702-1234",
			want: dealerscraper.ParsedAddress{Street: "789 Pine Rd", City: "Boise", Region: "ID", PostalCode: "83702-1234"},
		},
		{
			name: "canadian postal without space",
			text: "100 King St W, Toronto, ON M5X1A9",
			want: dealerscraper.ParsedAddress{Street: "100 King St W", City: "Toronto", Region: "ON", PostalCode: "M5X 1A9"},
		},
		{
			name: "newline delimited block",
			text: "55 Harbor Blvd\nVentura, CA 93001",
			want: dealerscraper.ParsedAddress{Street: "55 Harbor Blvd", City: "Ventura", Region: "CA", PostalCode: "93001"},
		},
		{
			name: "region as its own comma part",
			text: "10 Elm Street, Salem, MA, 01970",
			want: dealerscraper.ParsedAddress{Street: "10 Elm St", City: "Salem", Region: "MA", PostalCode: "01970"},
		},
		{
			name: "abbreviations expanded after segmentation",
			text: "42 Wilshire Boulevard, Los Angeles, CA 90010",
			want: dealerscraper.ParsedAddress{Street: "42 Wilshire Blvd", City: "Los Angeles", Region: "CA", PostalCode: "90010"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := dealerscraper.ParseAddress(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestParseAddress_NoRegion(t *testing.T) {
	t.Parallel()

	tests := []string{
		"",
		"Corporate Headquarters",
		"123 Main St, Springfield, ZZ 97477",
		"just, some, commas",
	}
	for _, text := range tests {
		_, err := dealerscraper.ParseAddress(text)
		assert.Equal(t, dealerscraper.ENOTFOUND, dealerscraper.ErrorCode(err), "text %q", text)
	}
}

func TestValidPostalCode(t *testing.T) {
	t.Parallel()

	assert.True(t, dealerscraper.ValidPostalCode("97477"))
	assert.True(t, dealerscraper.ValidPostalCode("83702-1234"))
	assert.True(t, dealerscraper.ValidPostalCode("M5X 1A9"))
	assert.True(t, dealerscraper.ValidPostalCode("M5X1A9"))
	assert.False(t, dealerscraper.ValidPostalCode("974"))
	assert.False(t, dealerscraper.ValidPostalCode("ABCDE"))
	assert.False(t, dealerscraper.ValidPostalCode(""))
}

func TestNormalizeStreet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"123 main street", "123 Main St"},
		{"456 Oak Avenue", "456 Oak Ave"},
		{"789 Sunset  Drive,", "789 Sunset Dr"},
		{"100 5th Ave NE", "100 5Th Ave NE"},
		{"123 Main St", "123 Main St"}, // already normalized
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, dealerscraper.NormalizeStreet(tt.in))
	}
}

func TestNormalizeStreet_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{"123 Main Street", "456 oak avenue suite 2", "100 5th Ave NE"}
	for _, in := range inputs {
		once := dealerscraper.NormalizeStreet(in)
		assert.Equal(t, once, dealerscraper.NormalizeStreet(once), "input %q", in)
	}
}

func TestTitleCase(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Edwards Chevrolet Buick GMC", dealerscraper.TitleCase("EDWARDS CHEVROLET BUICK GMC"))
	assert.Equal(t, "BMW Of Portland", dealerscraper.TitleCase("bmw of portland"))
	assert.Equal(t, "Main St NE", dealerscraper.TitleCase("main st ne"))
}
