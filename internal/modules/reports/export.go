package reports

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	chart "github.com/wcharczuk/go-chart/v2"
)

// ParseFormat validates an export format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatJSON, FormatCSV, FormatPNG:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// Render produces the export of a report in the given format.
func Render(r *Report, format Format) (*Export, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON:
		data, err = json.MarshalIndent(r, "", "  ")
	case FormatCSV:
		data, err = renderCSV(r.ChartsData.Cashflow)
	case FormatPNG:
		data, err = renderPNG(r.Title, r.ChartsData.Cashflow)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	return &Export{ReportID: r.ID, ProjectID: r.ProjectID, Format: format, Data: data}, nil
}

func renderCSV(cf *CashflowSeries) ([]byte, error) {
	if cf == nil || len(cf.Months) == 0 {
		return nil, ErrNoCashflow
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	header := []string{"month", "revenue", "total_cost", "monthly_profit", "cumulative_profit"}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for i, month := range cf.Months {
		record := []string{
			strconv.Itoa(month),
			formatAmount(cf.Revenue[i]),
			formatAmount(cf.TotalCost[i]),
			formatAmount(cf.MonthlyProfit[i]),
			formatAmount(cf.CumulativeProfit[i]),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func renderPNG(title string, cf *CashflowSeries) ([]byte, error) {
	if cf == nil || len(cf.Months) < 2 {
		return nil, ErrNoCashflow
	}

	x := make([]float64, len(cf.Months))
	for i, m := range cf.Months {
		x[i] = float64(m)
	}

	amountFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.0f")
	}
	graph := chart.Chart{
		Title:  title,
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			Name:           "Month",
			ValueFormatter: amountFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Amount",
			ValueFormatter: amountFormatter,
		},
		Series: []chart.Series{
			chart.ContinuousSeries{Name: "Revenue", XValues: x, YValues: cf.Revenue},
			chart.ContinuousSeries{Name: "Total cost", XValues: x, YValues: cf.TotalCost},
			chart.ContinuousSeries{Name: "Cumulative profit", XValues: x, YValues: cf.CumulativeProfit},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render cashflow chart: %w", err)
	}
	return buf.Bytes(), nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 0, 64)
}
