// Package report renders analysis results as terminal tables.
package report

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"cryptoTA/internal/app"
	"cryptoTA/internal/strategy/analytics"
	"cryptoTA/internal/strategy/indicators"
	"cryptoTA/internal/strategy/optimization"
)

// Console writes human readable reports to out.
type Console struct {
	out io.Writer
}

// NewConsole creates a Console writing to out.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// PrintSAR prints the last n ticks of sar next to their prices. n <= 0 prints
// every tick.
func (c *Console) PrintSAR(symbol string, sar *indicators.ParabolicSAR, n int) error {
	series := sar.Series()
	first := 0
	if n > 0 && series.TickCount() > n {
		first = series.TickCount() - n
	}

	fmt.Fprintf(c.out, "\n%s %s  [%s]\n", symbol, sar.Name(), series.PeriodDescription())

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "End", "High", "Low", "Close", "SAR", "Trend", "EP", "AF")
	for i := first; i < series.TickCount(); i++ {
		tick, err := series.Tick(i)
		if err != nil {
			return err
		}
		state, err := sar.State(i)
		if err != nil {
			return err
		}
		table.Append(
			fmt.Sprintf("%d", i),
			tick.EndTime.UTC().Format("2006-01-02 15:04"),
			tick.High.String(),
			tick.Low.String(),
			tick.Close.String(),
			state.SAR.StringFixed(4),
			string(state.Trend),
			state.ExtremePoint.String(),
			state.Acceleration.String(),
		)
	}
	return table.Render()
}

// PrintReport prints one row per symbol and a portfolio total.
func (c *Console) PrintReport(report *app.Report) error {
	table := tablewriter.NewWriter(c.out)
	table.Header("Symbol", "Strategy", "Trades", "Open", "Win%", "Net", "PF", "MaxDD", "Expect.")
	for _, s := range report.Symbols {
		table.Append(summaryRow(s.Symbol, s.Strategy, s.Summary)...)
	}
	table.Append(summaryRow("TOTAL", "", report.Total)...)
	return table.Render()
}

// PrintTrades lists every trade of the report, closed or open, in symbol order.
func (c *Console) PrintTrades(report *app.Report) error {
	table := tablewriter.NewWriter(c.out)
	table.Header("Symbol", "Entry", "Exit", "Profit")
	for _, s := range report.Symbols {
		for _, trade := range s.Record.Trades() {
			exit, profit := "open", "-"
			if o, ok := trade.Exit(); ok {
				exit = o.String()
			}
			if p, ok := trade.Profit(); ok {
				profit = p.String()
			}
			table.Append(s.Symbol, trade.Entry().String(), exit, profit)
		}
	}
	return table.Render()
}

// PrintOptimization prints the top results, best first. top <= 0 prints all.
func (c *Console) PrintOptimization(results []optimization.OptimizationResult, top int) error {
	if top > 0 && len(results) > top {
		results = results[:top]
	}
	table := tablewriter.NewWriter(c.out)
	table.Header("Rank", "Parameters", "Score", "Trades", "Win%", "Net")
	for i, r := range results {
		table.Append(
			fmt.Sprintf("%d", i+1),
			r.Parameters.String(),
			r.Score.StringFixed(4),
			fmt.Sprintf("%d", r.Summary.TotalTrades),
			r.Summary.WinRate.StringFixed(2),
			r.Summary.NetProfit.String(),
		)
	}
	return table.Render()
}

func summaryRow(symbol, strategy string, s *analytics.Summary) []any {
	return []any{
		symbol,
		strategy,
		fmt.Sprintf("%d", s.TotalTrades),
		fmt.Sprintf("%d", s.OpenTrades),
		s.WinRate.StringFixed(2),
		s.NetProfit.String(),
		s.ProfitFactor.StringFixed(2),
		s.MaxDrawdown.String(),
		s.Expectancy.StringFixed(4),
	}
}
