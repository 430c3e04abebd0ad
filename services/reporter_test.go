package services

import (
	"strings"
	"testing"
	"time"

	"gsc-exporter/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderHTMLGroupsAndMarksTruncation(t *testing.T) {
	props, errs := ParseProperties([]string{
		"sc-domain:example.com",
		"https://www.example.com/",
		"https://www.acme.org/",
	}, SuffixHeuristicResolver{})
	require.Empty(t, errs)

	window := models.DateWindow{
		Start: time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, time.July, 31, 0, 0, 0, 0, time.UTC),
		Label: "2025-07",
	}
	records := []models.MonthlyRecord{
		{Property: "sc-domain:example.com", Month: "2025-07", Clicks: 1234, Impressions: 56789,
			CTR: 0.0217, Position: 12.4, UniqueQueries: 25000, QueriesTruncated: true, UniquePages: 310},
		{Property: "https://www.acme.org/", Month: "2025-07", Clicks: 10, Impressions: 100,
			CTR: 0.1, Position: 3, UniqueQueries: 4, UniquePages: 2},
	}

	r := NewReporter()
	html, err := r.RenderHTML("Google Organic Monthly Summary Report", window, props, records)
	require.NoError(t, err)

	// Index grouped by root domain, acme.org first.
	assert.Less(t, strings.Index(html, "acme.org"), strings.Index(html, "example.com"))
	assert.Contains(t, html, "sc-domain:example.com")

	// Truncated query count carries the asterisk and triggers the note.
	assert.Contains(t, html, "25,000*")
	assert.Contains(t, html, "query counts")
	assert.NotContains(t, html, "page counts")

	assert.Contains(t, html, "1,234")
	assert.Contains(t, html, "2.17%")
	assert.Contains(t, html, "2025-07-01 to 2025-07-31")
}

func TestRenderHTMLNoTruncationNote(t *testing.T) {
	props, errs := ParseProperties([]string{"sc-domain:example.com"}, SuffixHeuristicResolver{})
	require.Empty(t, errs)

	window := models.DateWindow{
		Start: time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC),
		Label: "2025-06",
	}
	records := []models.MonthlyRecord{
		{Property: "sc-domain:example.com", Month: "2025-06", Clicks: 5, Impressions: 50, CTR: 0.1, Position: 1},
	}

	r := NewReporter()
	html, err := r.RenderHTML("Report", window, props, records)
	require.NoError(t, err)
	assert.NotContains(t, html, "alert-warning")
}

func TestRenderHTMLOrdersRowsByGroupThenClicks(t *testing.T) {
	props, errs := ParseProperties([]string{
		"sc-domain:example.com",
		"https://www.example.com/",
		"https://www.acme.org/",
	}, SuffixHeuristicResolver{})
	require.Empty(t, errs)

	window := models.DateWindow{
		Start: time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, time.July, 31, 0, 0, 0, 0, time.UTC),
		Label: "2025-07",
	}
	// Input order deliberately scrambled: quiet example.com prefix
	// first, then the busy domain property, then acme.org.
	records := []models.MonthlyRecord{
		{Property: "https://www.example.com/", Month: "2025-07", Clicks: 1111, Impressions: 9000},
		{Property: "sc-domain:example.com", Month: "2025-07", Clicks: 5234, Impressions: 8000},
		{Property: "https://www.acme.org/", Month: "2025-07", Clicks: 777, Impressions: 600},
	}

	r := NewReporter()
	html, err := r.RenderHTML("Report", window, props, records)
	require.NoError(t, err)

	// acme.org's group sorts first, then example.com with its busier
	// property ahead of the quieter one.
	acme := strings.Index(html, "777")
	domain := strings.Index(html, "5,234")
	prefix := strings.Index(html, "1,111")
	require.NotEqual(t, -1, acme)
	require.NotEqual(t, -1, domain)
	require.NotEqual(t, -1, prefix)
	assert.Less(t, acme, domain)
	assert.Less(t, domain, prefix)
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "0", formatCount(0))
	assert.Equal(t, "999", formatCount(999))
	assert.Equal(t, "1,000", formatCount(1000))
	assert.Equal(t, "25,000", formatCount(25000))
	assert.Equal(t, "1,234,567", formatCount(1234567))
}

func TestAnchorFor(t *testing.T) {
	assert.Equal(t, "www-example-com-", anchorFor("https://www.example.com/"))
	assert.Equal(t, "sc-domain-example-com", anchorFor("sc-domain:example.com"))
}
