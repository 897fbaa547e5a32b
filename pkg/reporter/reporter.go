package reporter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/amosWeiskopf/seoscout/internal/models"
	"github.com/amosWeiskopf/seoscout/pkg/store"
)

// Formats lists the supported report formats
var Formats = []string{"json", "yaml", "html", "markdown"}

// topCTALimit caps the most common CTAs listed in the summary
const topCTALimit = 10

// Reporter handles report generation in various formats
type Reporter struct {
	now func() time.Time
}

// New creates a new Reporter instance
func New() *Reporter {
	return &Reporter{now: time.Now}
}

// Build assembles a report from the ranked URLs and CTA records
func (r *Reporter) Build(keyword string, sites []models.RankedURL, ctas []models.CTARecord) *models.Report {
	return &models.Report{
		Keyword:         keyword,
		GeneratedAt:     r.now(),
		Summary:         summarize(sites, ctas),
		TopRankingSites: sites,
		CTAs:            ctas,
	}
}

// GenerateReport renders report in the specified format
func (r *Reporter) GenerateReport(report *models.Report, format string) (string, error) {
	switch format {
	case "json":
		return r.generateJSON(report)
	case "yaml":
		return r.generateYAML(report)
	case "html":
		return r.generateHTML(report)
	case "markdown":
		return r.generateMarkdown(report)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// summarize counts the CTAs of successful pages. A text is counted once per
// page that uses it.
func summarize(sites []models.RankedURL, ctas []models.CTARecord) models.Summary {
	summary := models.Summary{RankedSites: len(sites)}

	pages := make(map[string]int)
	var order []string
	for _, rec := range ctas {
		if rec.Failed() {
			summary.PagesFailed++
			continue
		}
		summary.PagesAnalyzed++
		summary.TotalCTAs += rec.Total
		for _, c := range rec.Common {
			if pages[c.Text] == 0 {
				order = append(order, c.Text)
			}
			pages[c.Text]++
		}
	}

	for _, text := range order {
		summary.TopCTAs = append(summary.TopCTAs, models.CTACount{Text: text, Pages: pages[text]})
	}
	sort.SliceStable(summary.TopCTAs, func(i, j int) bool {
		return summary.TopCTAs[i].Pages > summary.TopCTAs[j].Pages
	})
	if len(summary.TopCTAs) > topCTALimit {
		summary.TopCTAs = summary.TopCTAs[:topCTALimit]
	}
	return summary
}

// generateJSON creates a JSON formatted report
func (r *Reporter) generateJSON(report *models.Report) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	return string(data), nil
}

// generateYAML creates a YAML formatted report
func (r *Reporter) generateYAML(report *models.Report) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	return buf.String(), nil
}

var htmlTemplate = template.Must(template.New("report").
	Funcs(template.FuncMap{"ctas": store.JoinCTAs}).
	Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Competitor Report - {{.Keyword}}</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 1200px;
            margin: 0 auto;
            padding: 20px;
            background: #f5f5f5;
        }
        .header {
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            color: white;
            padding: 2rem;
            border-radius: 10px;
            margin-bottom: 2rem;
        }
        .score-card {
            background: white;
            border-radius: 10px;
            padding: 1.5rem;
            margin-bottom: 1.5rem;
            box-shadow: 0 2px 10px rgba(0,0,0,0.1);
        }
        .score-grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(200px, 1fr));
            gap: 1rem;
            margin: 1rem 0;
        }
        .score-item {
            text-align: center;
            padding: 1rem;
            background: #f8f9fa;
            border-radius: 8px;
        }
        .score-value {
            font-size: 2rem;
            font-weight: bold;
            color: #667eea;
        }
        .score-label {
            color: #666;
            font-size: 0.9rem;
            margin-top: 0.5rem;
        }
        table {
            width: 100%;
            border-collapse: collapse;
        }
        th, td {
            text-align: left;
            padding: 0.5rem;
            border-bottom: 1px solid #eee;
        }
    </style>
</head>
<body>
    <div class="header">
        <h1>Competitor Report: {{.Keyword}}</h1>
        <p>Generated on {{.GeneratedAt.Format "January 2, 2006"}}</p>
    </div>

    <div class="score-card">
        <h2>Summary</h2>
        <div class="score-grid">
            <div class="score-item">
                <div class="score-value">{{.Summary.RankedSites}}</div>
                <div class="score-label">Ranked Sites</div>
            </div>
            <div class="score-item">
                <div class="score-value">{{.Summary.PagesAnalyzed}}</div>
                <div class="score-label">Pages Analyzed</div>
            </div>
            <div class="score-item">
                <div class="score-value">{{.Summary.PagesFailed}}</div>
                <div class="score-label">Pages Failed</div>
            </div>
            <div class="score-item">
                <div class="score-value">{{.Summary.TotalCTAs}}</div>
                <div class="score-label">Total CTAs</div>
            </div>
        </div>

        {{if .Summary.TopCTAs}}
        <h3>Most Common CTAs</h3>
        <ul>
            {{range .Summary.TopCTAs}}
            <li>{{.Text}} ({{.Pages}})</li>
            {{end}}
        </ul>
        {{end}}
    </div>

    <div class="score-card">
        <h2>Top Ranking Sites</h2>
        <table>
            <tr><th>Rank</th><th>Title</th><th>URL</th></tr>
            {{range .TopRankingSites}}
            <tr><td>{{.Rank}}</td><td>{{.Title}}</td><td><a href="{{.URL}}">{{.URL}}</a></td></tr>
            {{end}}
        </table>
    </div>

    <div class="score-card">
        <h2>Call-to-Action Analysis</h2>
        <table>
            <tr><th>URL</th><th>Header</th><th>Footer</th><th>Body</th><th>Total</th></tr>
            {{range .CTAs}}
            {{if .Failed}}
            <tr><td>{{.URL}}</td><td colspan="3">Error</td><td>0</td></tr>
            {{else}}
            <tr><td>{{.URL}}</td><td>{{ctas .Header}}</td><td>{{ctas .Footer}}</td><td>{{ctas .Body}}</td><td>{{.Total}}</td></tr>
            {{end}}
            {{end}}
        </table>
    </div>
</body>
</html>
`))

// generateHTML creates an HTML formatted report
func (r *Reporter) generateHTML(report *models.Report) (string, error) {
	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, report); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// generateMarkdown creates a Markdown formatted report
func (r *Reporter) generateMarkdown(report *models.Report) (string, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# Competitor Report: %s\n\n", report.Keyword)
	fmt.Fprintf(&buf, "*Generated on %s*\n\n", report.GeneratedAt.Format("January 2, 2006"))

	fmt.Fprintf(&buf, "## Summary\n\n")
	fmt.Fprintf(&buf, "| Metric | Value |\n")
	fmt.Fprintf(&buf, "|--------|-------|\n")
	fmt.Fprintf(&buf, "| Ranked Sites | %d |\n", report.Summary.RankedSites)
	fmt.Fprintf(&buf, "| Pages Analyzed | %d |\n", report.Summary.PagesAnalyzed)
	fmt.Fprintf(&buf, "| Pages Failed | %d |\n", report.Summary.PagesFailed)
	fmt.Fprintf(&buf, "| **Total CTAs** | **%d** |\n\n", report.Summary.TotalCTAs)

	if len(report.Summary.TopCTAs) > 0 {
		fmt.Fprintf(&buf, "### Most Common CTAs\n\n")
		for _, c := range report.Summary.TopCTAs {
			fmt.Fprintf(&buf, "- %s (%d)\n", c.Text, c.Pages)
		}
		fmt.Fprintf(&buf, "\n")
	}

	if len(report.TopRankingSites) > 0 {
		fmt.Fprintf(&buf, "## Top Ranking Sites\n\n")
		fmt.Fprintf(&buf, "| Rank | Title | URL |\n")
		fmt.Fprintf(&buf, "|------|-------|-----|\n")
		for _, s := range report.TopRankingSites {
			fmt.Fprintf(&buf, "| %d | %s | %s |\n", s.Rank, escapeCell(s.Title), s.URL)
		}
		fmt.Fprintf(&buf, "\n")
	}

	if len(report.CTAs) > 0 {
		fmt.Fprintf(&buf, "## Call-to-Action Analysis\n\n")
		for _, rec := range report.CTAs {
			fmt.Fprintf(&buf, "### %s\n", rec.URL)
			if rec.Failed() {
				fmt.Fprintf(&buf, "- **Status:** Error\n\n")
				continue
			}
			fmt.Fprintf(&buf, "- **Header:** %s\n", store.JoinCTAs(rec.Header))
			fmt.Fprintf(&buf, "- **Footer:** %s\n", store.JoinCTAs(rec.Footer))
			fmt.Fprintf(&buf, "- **Body:** %s\n", store.JoinCTAs(rec.Body))
			fmt.Fprintf(&buf, "- **Total:** %d\n", rec.Total)
			fmt.Fprintf(&buf, "\n")
		}
	}

	return buf.String(), nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
