package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/constants"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/domain"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/format"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/mathutil"
)

// Write renders r to w in the named format.
func Write(w io.Writer, outputFormat string, r Report) error {
	switch outputFormat {
	case constants.OutputFormatPretty:
		return PrettyFormat(w, r)
	case constants.OutputFormatCSV:
		return CsvFormat(w, r)
	case constants.OutputFormatJSON:
		return JSONFormat(w, r)
	case constants.OutputFormatYAML:
		return YAMLFormat(w, r)
	default:
		return fmt.Errorf("unsupported output format %s", outputFormat)
	}
}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, r Report) error {
	p := message.NewPrinter(language.English)
	res := r.Results

	var b strings.Builder
	title := fmt.Sprintf("--- P&L forecast (%s, %s) ---", r.Region, r.StoreType)
	if r.IsExampleData {
		title += " [example data]"
	}
	b.WriteString(title + "\n")

	b.WriteString("Line                   | Amount\n")
	b.WriteString("____                   | ______\n")
	row := func(label string, amount float64) {
		_, _ = p.Fprintf(&b, "%-22s | $%.2f\n", label, amount)
	}
	row("Gross Fees", res.GrossFees)
	row("Discounts", res.Discounts)
	row("Tax Prep Income", res.TaxPrepIncome)
	if !mathutil.IsZero(res.TaxRushIncome) {
		row("TaxRush Income", res.TaxRushIncome)
	}
	if !mathutil.IsZero(res.OtherIncome) {
		row("Other Income", res.OtherIncome)
	}
	row("Total Revenue", res.TotalRevenue)

	if r.PriorYear != nil {
		b.WriteString("\n")
		row("PY Gross Fees", r.PriorYear.GrossFees)
		row("PY Tax Prep Income", r.PriorYear.TaxPrepIncome)
		row("PY Total Income", r.PriorYear.TotalIncome)
	}

	b.WriteString("\n")
	for _, line := range res.Expenses {
		if mathutil.IsZero(line.Amount) {
			continue
		}
		row(line.Label, line.Amount)
	}
	row("Total Expenses", res.TotalExpenses)
	row("Net Income", res.NetIncome)

	b.WriteString("\n")
	_, _ = p.Fprintf(&b, "Total Returns          | %.0f\n", res.TotalReturns)
	fmt.Fprintf(&b, "Cost Per Return        | %s (%s)\n", format.Currency(res.CostPerReturn), res.CostPerReturnStatus)
	fmt.Fprintf(&b, "Net Margin             | %s (%s)\n", format.Percent(res.NetMarginPct), res.NetMarginStatus)
	fmt.Fprintf(&b, "Net Income Status      | %s\n", res.NetIncomeStatus)

	if r.ExpenseRange != nil {
		fmt.Fprintf(&b, "Expense Range          | %s - %s (target %s)\n",
			format.Currency(r.ExpenseRange.Min), format.Currency(r.ExpenseRange.Max), format.Currency(r.ExpenseRange.Target))
	}

	if len(r.KPIs) > 0 {
		b.WriteString("\nKPI                    | Status\n")
		b.WriteString("___                    | ______\n")
		for _, k := range r.KPIs {
			fmt.Fprintf(&b, "%-22s | %s\n", k.Metric, k.Status)
		}
	}

	if len(r.Missing) > 0 {
		fmt.Fprintf(&b, "\nMissing: %s\n", strings.Join(r.Missing, ", "))
	}
	for _, warning := range r.Warnings {
		fmt.Fprintf(&b, "Warning: %s\n", warning)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// CsvFormat outputs in comma-separated value format, one row per line item.
func CsvFormat(w io.Writer, r Report) error {
	res := r.Results
	var b strings.Builder
	b.WriteString(`"section","item","amount","status"` + "\n")
	row := func(section, item string, amount float64, status string) {
		fmt.Fprintf(&b, `"%s","%s","%.2f","%s"`+"\n", section, item, amount, status)
	}

	row("revenue", "grossFees", res.GrossFees, "")
	row("revenue", "discounts", res.Discounts, "")
	row("revenue", "taxPrepIncome", res.TaxPrepIncome, "")
	row("revenue", "taxRushIncome", res.TaxRushIncome, "")
	row("revenue", "otherIncome", res.OtherIncome, "")
	row("revenue", "totalRevenue", res.TotalRevenue, "")
	if r.PriorYear != nil {
		row("priorYear", "grossFees", r.PriorYear.GrossFees, "")
		row("priorYear", "taxPrepIncome", r.PriorYear.TaxPrepIncome, "")
		row("priorYear", "totalIncome", r.PriorYear.TotalIncome, "")
	}

	statuses := make(map[string]string, len(r.KPIs))
	for _, k := range r.KPIs {
		statuses[k.Metric] = string(k.Status)
	}
	for _, line := range res.Expenses {
		row("expense", string(line.Key), line.Amount, statuses[string(line.Key)])
	}
	row("expense", "totalExpenses", res.TotalExpenses, "")

	row("summary", "netIncome", res.NetIncome, string(res.NetIncomeStatus))
	row("summary", "totalReturns", res.TotalReturns, "")
	row("summary", "costPerReturn", res.CostPerReturn, string(res.CostPerReturnStatus))
	row("summary", "netMarginPct", res.NetMarginPct, string(res.NetMarginStatus))
	for _, k := range r.KPIs {
		if _, isLine := domain.LookupExpense(domain.ExpenseKey(k.Metric)); isLine {
			continue
		}
		fmt.Fprintf(&b, `"kpi","%s","","%s"`+"\n", k.Metric, k.Status)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// JSONFormat outputs the report as indented JSON.
func JSONFormat(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// YAMLFormat outputs the report as YAML.
func YAMLFormat(w io.Writer, r Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return enc.Close()
}
