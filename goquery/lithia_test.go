package goquery_test

import (
	"context"
	"testing"

	dsgoquery "github.com/CedmondsTH/dealer-scraper/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lithiaHTML = `<html><body><ul>
<li class="info-window">
	<span class="org">Lithia Toyota of Springfield</span>
	<a class="url" href="https://lithiatoyotaspringfield.com">Visit</a>
	<span class="street-address">163 Pioneer Pkwy W</span>
	<span class="locality">Springfield</span>
	<span class="region">OR</span>
	<span class="postal-code">97477</span>
	<span class="tel" data-click-to-call="Sales" data-click-to-call-phone="541-555-0130">
		<span class="value">541-555-0131</span>
	</span>
</li>
<li class="info-window">
	<span class="org">Lithia Honda of Medford</span>
	<span class="street-address">4095 Crater Lake Hwy</span>
	<span class="locality">Medford</span>
	<span class="region">OR</span>
	<span class="postal-code">97504</span>
	<span class="tel" data-click-to-call="Sales">
		<span class="value">541-555-0140</span>
	</span>
</li>
</ul></body></html>`

func TestLithiaStrategy_CanHandle(t *testing.T) {
	t.Parallel()

	s := dsgoquery.NewLithiaStrategy()

	assert.True(t, s.CanHandle("<html></html>", "https://www.lithia.com/locations"))
	assert.True(t, s.CanHandle(lithiaHTML, "https://example.com"))
	assert.False(t, s.CanHandle("<html><body></body></html>", "https://example.com"))
}

func TestLithiaStrategy_Extract(t *testing.T) {
	t.Parallel()

	s := dsgoquery.NewLithiaStrategy()
	records, err := s.Extract(context.Background(), lithiaHTML, "https://www.lithia.com/locations")

	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "Lithia Toyota of Springfield", first.Name)
	assert.Equal(t, "163 Pioneer Pkwy W", first.Address)
	assert.Equal(t, "Springfield", first.City)
	assert.Equal(t, "OR", first.Region)
	assert.Equal(t, "97477", first.PostalCode)
	assert.Equal(t, "541-555-0130", first.Phone, "click-to-call attribute wins over the visible number")
	assert.Equal(t, "https://lithiatoyotaspringfield.com", first.Website)
	assert.Equal(t, "lithia", first.Strategy)

	second := records[1]
	assert.Equal(t, "Lithia Honda of Medford", second.Name)
	assert.Equal(t, "541-555-0140", second.Phone, "visible number used when the attribute is absent")
}

func TestLithiaStrategy_Extract_SkipsNamelessCards(t *testing.T) {
	t.Parallel()

	html := `<li class="info-window"><span class="street-address">1 Orphan St</span></li>`
	s := dsgoquery.NewLithiaStrategy()

	records, err := s.Extract(context.Background(), html, "https://www.lithia.com")

	require.NoError(t, err)
	assert.Empty(t, records)
}
