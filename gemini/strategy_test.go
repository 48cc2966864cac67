package gemini_test

import (
	"context"
	"testing"

	dealerscraper "github.com/CedmondsTH/dealer-scraper"
	"github.com/CedmondsTH/dealer-scraper/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrategy_Tier(t *testing.T) {
	t.Parallel()

	s := gemini.NewStrategy(nil, nil)

	assert.Equal(t, dealerscraper.TierFallback, s.Tier())
	assert.Equal(t, "gemini", s.Name())
}

func TestStrategy_CanHandle_AlwaysClaims(t *testing.T) {
	t.Parallel()

	s := gemini.NewStrategy(nil, nil)

	assert.True(t, s.CanHandle("<html></html>", "https://example.com"))
	assert.True(t, s.CanHandle("", ""))
}

func TestStrategy_Extract_RequiresHTML(t *testing.T) {
	t.Parallel()

	s := gemini.NewStrategy(nil, nil) // nil client ok, validation runs first

	_, err := s.Extract(context.Background(), "   ", "https://example.com")

	require.Error(t, err)
	assert.Equal(t, dealerscraper.EINVALID, dealerscraper.ErrorCode(err))
}

func TestBuildConfig(t *testing.T) {
	t.Parallel()

	config := gemini.BuildConfig()

	require.NotNil(t, config.SystemInstruction)
	require.Len(t, config.SystemInstruction.Parts, 1)
	assert.Contains(t, config.SystemInstruction.Parts[0].Text, "never invent locations")
	require.NotNil(t, config.Temperature)
	assert.InDelta(t, 0.2, *config.Temperature, 0.001)
}

func TestBuildExtractionPrompt(t *testing.T) {
	t.Parallel()

	prompt := gemini.BuildExtractionPrompt("# Locations\n\nSpringfield Toyota", "https://www.springfield-auto.com/locations")

	assert.Contains(t, prompt, "springfield auto")
	assert.Contains(t, prompt, "https://www.springfield-auto.com/locations")
	assert.Contains(t, prompt, "JSON array")
	assert.Contains(t, prompt, "Springfield Toyota")
	assert.NotContains(t, prompt, "never invent locations",
		"system instruction must not leak into the user prompt")
}

func TestParseResponse(t *testing.T) {
	t.Parallel()

	t.Run("plain JSON array", func(t *testing.T) {
		t.Parallel()
		text := `[{"name": "Springfield Toyota", "street": "123 Main St", "city": "Springfield", "state": "OR", "zip": "97477", "phone": "541-555-0100", "website": "https://springfieldtoyota.com"}]`

		records, err := gemini.ParseResponse(text, "https://example.com")

		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, dealerscraper.RawRecord{
			Name:       "Springfield Toyota",
			Address:    "123 Main St",
			City:       "Springfield",
			Region:     "OR",
			PostalCode: "97477",
			Phone:      "541-555-0100",
			Website:    "https://springfieldtoyota.com",
		}, records[0])
	})

	t.Run("markdown fenced response", func(t *testing.T) {
		t.Parallel()
		text := "```json\n[{\"name\": \"Fenced Motors\"}]\n```"

		records, err := gemini.ParseResponse(text, "https://example.com")

		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Fenced Motors", records[0].Name)
	})

	t.Run("single object treated as array", func(t *testing.T) {
		t.Parallel()
		records, err := gemini.ParseResponse(`{"name": "Solo Autos"}`, "https://example.com")

		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Solo Autos", records[0].Name)
	})

	t.Run("repairs trailing commas", func(t *testing.T) {
		t.Parallel()
		records, err := gemini.ParseResponse(`[{"name": "Comma Cars",},]`, "https://example.com")

		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Comma Cars", records[0].Name)
	})

	t.Run("nameless entries dropped", func(t *testing.T) {
		t.Parallel()
		records, err := gemini.ParseResponse(`[{"city": "Nowhere"}, {"name": "Named"}]`, "https://example.com")

		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Named", records[0].Name)
	})

	t.Run("prose response is an error", func(t *testing.T) {
		t.Parallel()
		_, err := gemini.ParseResponse("I could not find any dealerships on this page.", "https://example.com")

		require.Error(t, err)
		assert.Equal(t, dealerscraper.EINVALID, dealerscraper.ErrorCode(err))
	})

	t.Run("empty response", func(t *testing.T) {
		t.Parallel()
		records, err := gemini.ParseResponse("", "https://example.com")

		require.NoError(t, err)
		assert.Empty(t, records)
	})
}
