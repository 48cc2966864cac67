package goquery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindPhone(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "tel link wins over text",
			html: `<div><a href="tel:503-555-0100">Call</a><p>(999) 999-9999</p></div>`,
			want: "503-555-0100",
		},
		{
			name: "text pattern fallback",
			html: `<div><p>Sales: (503) 555-0100</p></div>`,
			want: "(503) 555-0100",
		},
		{
			name: "dotted format",
			html: `<div>503.555.0100</div>`,
			want: "503.555.0100",
		},
		{
			name: "no phone",
			html: `<div>123 Main St, Springfield, OR 97477</div>`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			doc, err := parseDoc(tt.html)
			require.NoError(t, err)
			assert.Equal(t, tt.want, findPhone(doc.Find("div").First()))
		})
	}
}

func TestFindWebsite_SkipsNonNavigableLinks(t *testing.T) {
	t.Parallel()

	html := `<div>
		<a href="#">anchor</a>
		<a href="tel:555-0100">call</a>
		<a href="mailto:x@example.com">mail</a>
		<a href="https://dealer.example.com">site</a>
	</div>`
	doc, err := parseDoc(html)
	require.NoError(t, err)

	assert.Equal(t, "https://dealer.example.com", findWebsite(doc.Find("div").First()))
}

func TestBalancedArray(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "flat", input: `[1, 2, 3] rest`, want: `[1, 2, 3]`},
		{name: "nested", input: `[[1], [2]] rest`, want: `[[1], [2]]`},
		{name: "bracket in string", input: `[{"name": "a ] b"}] rest`, want: `[{"name": "a ] b"}]`},
		{name: "escaped quote", input: `[{"name": "a \" ] b"}]`, want: `[{"name": "a \" ] b"}]`},
		{name: "unterminated", input: `[1, 2`, want: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, balancedArray(tt.input))
		})
	}
}

func TestCollapseSpaces(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a b c", collapseSpaces("  a \n\t b   c  "))
	assert.Equal(t, "", collapseSpaces("   "))
}
