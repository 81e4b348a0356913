package output

import (
	"bytes"
	"html/template"

	"github.com/shopspring/decimal"

	"github.com/fincast/fincast/pkg/money"
)

// HTMLFormatter renders a self-contained report page: the projection
// summary, the year table, and the simulation bands when present.
type HTMLFormatter struct{}

func (h HTMLFormatter) Name() string      { return "html" }
func (h HTMLFormatter) Extension() string { return "html" }

var htmlReportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"currency": func(d decimal.Decimal) string { return money.FromDecimal(d).Format() },
	"percent":  FormatPercentage,
	"inc":      func(i int) int { return i + 1 },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Household Projection Report</title>
<style>
body { font-family: sans-serif; margin: 2em; color: #222; }
h1, h2 { color: #1a3e5c; }
table { border-collapse: collapse; margin: 1em 0; }
th, td { border: 1px solid #ccc; padding: 4px 10px; text-align: right; }
th { background: #eef3f7; }
td:first-child, th:first-child { text-align: left; }
.shortfall { color: #a00; font-weight: bold; }
.meta { color: #666; font-size: 0.9em; }
</style>
</head>
<body>
<h1>Household Projection Report</h1>
<p class="meta">Generated {{.GeneratedAt.Format "2006-01-02 15:04:05"}}</p>

{{with .Projection}}
<h2>Deterministic Projection: {{.ScenarioName}}</h2>
<table>
<tr><th>Final net worth</th><td>{{currency .Metrics.FinalNetWorth}}</td></tr>
<tr><th>Final portfolio</th><td>{{currency .Metrics.FinalPortfolioBalance}}</td></tr>
<tr><th>Years solvent</th><td>{{.Metrics.YearsSolvent}} of {{len .Snapshots}}</td></tr>
{{if .Metrics.FirstShortfallYear}}<tr><th>First shortfall</th><td class="shortfall">{{.Metrics.FirstShortfallYear}}</td></tr>{{end}}
<tr><th>Total contributions</th><td>{{currency .Metrics.TotalContributions}}</td></tr>
<tr><th>Total withdrawals</th><td>{{currency .Metrics.TotalWithdrawals}}</td></tr>
<tr><th>Total growth</th><td>{{currency .Metrics.TotalGrowth}}</td></tr>
</table>

<h2>Year by Year</h2>
<table>
<tr><th>Year</th><th>Income</th><th>Expenses</th><th>Withdrawals</th><th>Portfolio</th><th>Net worth</th><th>Shortfall</th></tr>
{{range .Snapshots}}
<tr>
<td>{{.Year}}</td>
<td>{{currency .TotalIncome}}</td>
<td>{{currency .TotalExpenses}}</td>
<td>{{currency .TotalWithdrawals}}</td>
<td>{{currency .PortfolioBalance}}</td>
<td>{{currency .NetWorth}}</td>
<td>{{if .Shortfall}}<span class="shortfall">{{currency .ShortfallAmount}}</span>{{else}}&mdash;{{end}}</td>
</tr>
{{end}}
</table>
{{end}}

{{with .MonteCarlo}}
<h2>Monte Carlo Simulation</h2>
<p class="meta">Run {{.RunID}}: {{.CompletedIterations}} of {{.RequestedIterations}} iterations, seed {{.Seed}}, {{.SamplingMode}} sampling</p>
<table>
<tr><th>Success rate</th><td>{{percent .SuccessRate}} ({{.SuccessCriterion}})</td></tr>
<tr><th>Median final net worth</th><td>{{currency .FinalNetWorth.Median}}</td></tr>
<tr><th>Mean final net worth</th><td>{{currency .FinalNetWorth.Mean}}</td></tr>
<tr><th>Depletion rate</th><td>{{percent .Depletion.Rate}}</td></tr>
</table>

<h2>Net Worth Percentile Bands</h2>
<table>
<tr><th>Year</th><th>P10</th><th>P25</th><th>P50</th><th>P75</th><th>P90</th></tr>
{{range .Years}}
<tr>
<td>{{.Year}}</td>
<td>{{currency .NetWorth.P10}}</td>
<td>{{currency .NetWorth.P25}}</td>
<td>{{currency .NetWorth.P50}}</td>
<td>{{currency .NetWorth.P75}}</td>
<td>{{currency .NetWorth.P90}}</td>
</tr>
{{end}}
</table>
{{end}}

{{with .Comparison}}
<h2>Scenario Comparison</h2>
<table>
<tr><th>Rank</th><th>Scenario</th><th>Success rate</th><th>Final net worth</th></tr>
{{range $i, $o := .Outcomes}}
<tr>
<td>{{inc $i}}</td>
<td>{{$o.Name}}</td>
<td>{{percent $o.MonteCarlo.SuccessRate}}</td>
<td>{{currency $o.Projection.Metrics.FinalNetWorth}}</td>
</tr>
{{end}}
</table>
{{end}}

{{with .Spending}}
<h2>Sustainable Spending</h2>
<table>
<tr><th>Target success rate</th><td>{{percent .TargetSuccessRate}}</td></tr>
<tr><th>Spending multiplier</th><td>{{.Multiplier.StringFixed 4}}</td></tr>
<tr><th>First-year spending</th><td>{{currency .FirstYearSpending}}</td></tr>
<tr><th>Achieved success rate</th><td>{{percent .AchievedSuccessRate}}</td></tr>
</table>
{{end}}

</body>
</html>
`))

func (h HTMLFormatter) Format(data *ReportData) ([]byte, error) {
	var buf bytes.Buffer
	if err := htmlReportTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
