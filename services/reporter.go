package services

import (
	"fmt"
	"html/template"
	"sort"
	"strings"

	"gsc-exporter/models"
)

// Reporter renders monthly records as HTML documents and a terminal
// summary. Pure formatting: all decisions were made upstream by the
// pipeline.
type Reporter struct{}

// NewReporter creates a new Reporter.
func NewReporter() *Reporter {
	return &Reporter{}
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<link href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/css/bootstrap.min.css" rel="stylesheet">
<style>
body { padding: 2rem; }
.table th, .table td { text-align: right; vertical-align: middle; }
.table th:first-child, .table td:first-child { text-align: left; }
</style>
</head>
<body>
<div class="container-fluid">
<h1 class="mb-3">{{.Title}}</h1>
<p class="text-muted">{{.Window}}</p>
<h2>Index</h2>
<ul>
{{range .Groups}}<li><strong>{{.RootDomain}}</strong><ul>
{{range .Properties}}<li><a href="#{{.Anchor}}">{{.Raw}}</a></li>
{{end}}</ul></li>
{{end}}</ul>
{{if .TruncationNote}}<div class="alert alert-warning" role="alert"><strong>*Note:</strong> {{.TruncationNote}}</div>{{end}}
<div class="table-responsive">
<table class="table table-striped table-hover">
<thead><tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</tbody>
</table>
</div>
</div>
<footer class="text-center text-muted mt-5"><p>gsc-exporter</p></footer>
</body>
</html>
`))

type reportGroup struct {
	RootDomain string
	Properties []reportLink
}

type reportLink struct {
	Raw    string
	Anchor string
}

type reportData struct {
	Title          string
	Window         string
	Groups         []reportGroup
	Columns        []string
	Rows           [][]string
	TruncationNote string
}

// RenderHTML produces the themed HTML report for one window's records.
// The index groups properties under their root domain in sorted order.
func (r *Reporter) RenderHTML(title string, window models.DateWindow, props []models.Property, records []models.MonthlyRecord) (string, error) {
	data := reportData{
		Title:   title,
		Window:  window.StartString() + " to " + window.EndString(),
		Columns: []string{"property", "clicks", "impressions", "ctr", "position", "# queries", "# pages"},
	}

	var current *reportGroup
	groupOf := make(map[string]int, len(props))
	for _, p := range props {
		if current == nil || current.RootDomain != p.RootDomain {
			data.Groups = append(data.Groups, reportGroup{RootDomain: p.RootDomain})
			current = &data.Groups[len(data.Groups)-1]
		}
		current.Properties = append(current.Properties, reportLink{Raw: p.Raw, Anchor: anchorFor(p.Raw)})
		groupOf[p.Raw] = len(data.Groups) - 1
	}

	// Rows follow the grouped index; within a root domain the busier
	// property comes first.
	sorted := append([]models.MonthlyRecord{}, records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		gi, gj := groupOf[sorted[i].Property], groupOf[sorted[j].Property]
		if gi != gj {
			return gi < gj
		}
		return sorted[i].Clicks > sorted[j].Clicks
	})

	queriesTruncated := false
	pagesTruncated := false
	for _, rec := range sorted {
		queries := fmt.Sprintf("%s%s", formatCount(rec.UniqueQueries), truncMark(rec.QueriesTruncated))
		pages := fmt.Sprintf("%s%s", formatCount(rec.UniquePages), truncMark(rec.PagesTruncated))
		queriesTruncated = queriesTruncated || rec.QueriesTruncated
		pagesTruncated = pagesTruncated || rec.PagesTruncated

		data.Rows = append(data.Rows, []string{
			rec.Property,
			formatCount(int(rec.Clicks)),
			formatCount(int(rec.Impressions)),
			fmt.Sprintf("%.2f%%", rec.CTR*100),
			fmt.Sprintf("%.2f", rec.Position),
			queries,
			pages,
		})
	}

	var notes []string
	if queriesTruncated {
		notes = append(notes, "query counts")
	}
	if pagesTruncated {
		notes = append(notes, "page counts")
	}
	if len(notes) > 0 {
		data.TruncationNote = fmt.Sprintf(
			"The %s for some properties may be incomplete as they exceeded the API's export limit.",
			strings.Join(notes, " and "))
	}

	var sb strings.Builder
	if err := reportTemplate.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return sb.String(), nil
}

// PrintSummary prints a compact per-window overview to the terminal.
func (r *Reporter) PrintSummary(records []models.MonthlyRecord) {
	thin := strings.Repeat("─", 72)

	byMonth := make(map[string][]models.MonthlyRecord)
	var months []string
	for _, rec := range records {
		if _, seen := byMonth[rec.Month]; !seen {
			months = append(months, rec.Month)
		}
		byMonth[rec.Month] = append(byMonth[rec.Month], rec)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(months)))

	fmt.Printf("\n SUMMARY\n%s\n", thin)
	for _, month := range months {
		var clicks, imprs float64
		for _, rec := range byMonth[month] {
			clicks += rec.Clicks
			imprs += rec.Impressions
		}
		fmt.Printf("  %-12s %3d properties  %12s clicks  %14s impressions\n",
			month, len(byMonth[month]), formatCount(int(clicks)), formatCount(int(imprs)))
	}
	fmt.Printf("%s\n\n", thin)
}

// anchorFor makes a URL-friendly anchor from a property identifier.
func anchorFor(raw string) string {
	repl := strings.NewReplacer("https://", "", "http://", "", ":", "-", "/", "-", ".", "-")
	return repl.Replace(raw)
}

// formatCount renders an integer with comma grouping.
func formatCount(n int) string {
	s := fmt.Sprintf("%d", n)
	if n < 0 || len(s) <= 3 {
		return s
	}
	var sb strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		sb.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(s[i : i+3])
	}
	return sb.String()
}

func truncMark(truncated bool) string {
	if truncated {
		return "*"
	}
	return ""
}
