package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"google.golang.org/genai"

	dealerscraper "github.com/CedmondsTH/dealer-scraper"
)

const model = "gemini-2.5-flash"

// Ensure Strategy implements dealerscraper.Strategy at compile time.
var _ dealerscraper.Strategy = (*Strategy)(nil)

// Strategy is the fallback-tier extraction strategy. It claims every page;
// the registry only consults the fallback tier after the CSS tiers have
// failed, so there is no cheaper option left by the time Extract runs.
type Strategy struct {
	client *genai.Client
	prep   *Preparer
}

// NewStrategy creates a fallback Strategy. prep may be nil, in which case
// raw HTML is truncated to DefaultMaxChars.
func NewStrategy(client *genai.Client, prep *Preparer) *Strategy {
	if prep == nil {
		prep = NewPreparer(nil, nil)
	}
	return &Strategy{client: client, prep: prep}
}

func (s *Strategy) Name() string { return "gemini" }

func (s *Strategy) Tier() dealerscraper.Tier { return dealerscraper.TierFallback }

// CanHandle always claims the page.
func (s *Strategy) CanHandle(html, url string) bool { return true }

// Extract prompts the model with the reduced page content and parses the
// returned JSON array.
func (s *Strategy) Extract(ctx context.Context, html, pageURL string) ([]dealerscraper.RawRecord, error) {
	if strings.TrimSpace(html) == "" {
		return nil, dealerscraper.Errorf(dealerscraper.EINVALID, "html required")
	}

	prompt := BuildExtractionPrompt(s.prep.Prepare(html), pageURL)

	result, err := s.client.Models.GenerateContent(ctx, model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: prompt}},
		}},
		BuildConfig(),
	)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, dealerscraper.Errorf(dealerscraper.EINTERNAL, "gemini returned nil result")
	}

	records, err := ParseResponse(result.Text(), pageURL)
	if err != nil {
		return nil, err
	}
	for i := range records {
		records[i].SourceURL = pageURL
		records[i].Strategy = s.Name()
	}
	return records, nil
}

// BuildConfig returns the GenerateContentConfig for extraction calls. Low
// temperature keeps the model from inventing locations.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0.2)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You extract dealership location data from web page content. Output only what appears in the content; never invent locations. Respond with a valid JSON array and nothing else.",
			}},
		},
		Temperature: &temp,
	}
}

// BuildExtractionPrompt builds the user prompt for one page.
func BuildExtractionPrompt(content, pageURL string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Analyze this content from %s (%s) and extract every dealership location.\n\n", siteName(pageURL), pageURL)
	sb.WriteString("Extract each dealership as a JSON object with these fields:\n")
	sb.WriteString("- name: full dealership name\n")
	sb.WriteString("- street: street address\n")
	sb.WriteString("- city: city name\n")
	sb.WriteString("- state: state/province (2-letter code if possible)\n")
	sb.WriteString("- zip: postal/ZIP code\n")
	sb.WriteString("- phone: phone number\n")
	sb.WriteString("- website: dealership website URL if present\n\n")
	sb.WriteString("Return ONLY a valid JSON array of dealership objects. No explanation or additional text.\n\n")
	sb.WriteString("Content:\n")
	sb.WriteString(content)
	return sb.String()
}

// ParseResponse converts a model response into raw records. Markdown code
// fences are stripped and malformed JSON gets one repair attempt. A single
// top-level object is treated as a one-element array.
func ParseResponse(text, pageURL string) ([]dealerscraper.RawRecord, error) {
	text = stripFences(text)
	if text == "" {
		return nil, nil
	}

	var items []responseItem
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		var single responseItem
		if json.Unmarshal([]byte(text), &single) == nil && single.Name != "" {
			items = []responseItem{single}
		} else {
			repaired, repairErr := jsonrepair.JSONRepair(text)
			if repairErr != nil || json.Unmarshal([]byte(repaired), &items) != nil {
				return nil, dealerscraper.Errorf(dealerscraper.EINVALID, "unparseable model response")
			}
		}
	}

	var records []dealerscraper.RawRecord
	for _, item := range items {
		if strings.TrimSpace(item.Name) == "" {
			continue
		}
		records = append(records, dealerscraper.RawRecord{
			Name:       strings.TrimSpace(item.Name),
			Address:    strings.TrimSpace(item.Street),
			City:       strings.TrimSpace(item.City),
			Region:     strings.TrimSpace(item.State),
			PostalCode: strings.TrimSpace(item.Zip),
			Phone:      strings.TrimSpace(item.Phone),
			Website:    strings.TrimSpace(item.Website),
		})
	}
	return records, nil
}

type responseItem struct {
	Name    string `json:"name"`
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Phone   string `json:"phone"`
	Website string `json:"website"`
}

func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if after, ok := strings.CutPrefix(text, "```json"); ok {
		text = after
	} else if after, ok := strings.CutPrefix(text, "```"); ok {
		text = after
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// siteName derives a readable site name from the URL host for the prompt.
func siteName(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return pageURL
	}
	host := strings.TrimPrefix(u.Host, "www.")
	if i := strings.LastIndex(host, "."); i > 0 {
		host = host[:i]
	}
	return strings.ReplaceAll(strings.ReplaceAll(host, "-", " "), "_", " ")
}
