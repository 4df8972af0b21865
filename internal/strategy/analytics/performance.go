package analytics

import (
	"github.com/shopspring/decimal"

	"cryptoTA/internal/domain"
	"cryptoTA/internal/num"
)

// Summary holds performance metrics of a trading record or portfolio.
type Summary struct {
	// Basic Metrics
	TotalTrades   int // closed trades
	OpenTrades    int
	WinningTrades int
	LosingTrades  int
	WinRate       decimal.Decimal // percent of closed trades that won
	GrossProfit   decimal.Decimal
	GrossLoss     decimal.Decimal // negative or zero
	NetProfit     decimal.Decimal
	AverageWin    decimal.Decimal
	AverageLoss   decimal.Decimal // negative or zero
	ProfitFactor  decimal.Decimal // zero when there is no loss

	// Advanced Metrics
	MaxConsecutiveWins   int
	MaxConsecutiveLosses int
	MaxDrawdown          decimal.Decimal // largest drop of cumulative profit from its peak
	Expectancy           decimal.Decimal
	EquityCurve          []EquityPoint
}

// EquityPoint is the cumulative profit after a trade closed.
type EquityPoint struct {
	Index    int // series index of the exit order
	Value    decimal.Decimal
	Drawdown decimal.Decimal
}

// Analyze walks the closed and open trades of record once.
// Trades with zero profit count as losing, as they do not pay their costs.
func Analyze(record domain.TradesRecord) *Summary {
	s := &Summary{}

	var consecutiveWins, consecutiveLosses int
	cumulative, peak := decimal.Zero, decimal.Zero

	trades := record.Iterator()
	for trades.HasNext() {
		trade, ok := trades.Next()
		if !ok {
			break
		}
		profit, closed := trade.Profit()
		if !closed {
			continue
		}
		s.TotalTrades++

		if profit.IsPositive() {
			s.WinningTrades++
			s.GrossProfit = s.GrossProfit.Add(profit)
			consecutiveWins++
			consecutiveLosses = 0
		} else {
			s.LosingTrades++
			s.GrossLoss = s.GrossLoss.Add(profit)
			consecutiveLosses++
			consecutiveWins = 0
		}
		if consecutiveWins > s.MaxConsecutiveWins {
			s.MaxConsecutiveWins = consecutiveWins
		}
		if consecutiveLosses > s.MaxConsecutiveLosses {
			s.MaxConsecutiveLosses = consecutiveLosses
		}

		cumulative = cumulative.Add(profit)
		peak = num.Max(peak, cumulative)
		drawdown := peak.Sub(cumulative)
		s.MaxDrawdown = num.Max(s.MaxDrawdown, drawdown)

		exit, _ := trade.Exit()
		s.EquityCurve = append(s.EquityCurve, EquityPoint{
			Index:    exit.Index,
			Value:    cumulative,
			Drawdown: drawdown,
		})
	}
	s.NetProfit = cumulative

	open := record.OpenTrades()
	for open.HasNext() {
		if _, ok := open.Next(); ok {
			s.OpenTrades++
		}
	}

	if s.TotalTrades == 0 {
		return s
	}
	winFraction := ratio(num.OfInt(int64(s.WinningTrades)), num.OfInt(int64(s.TotalTrades)))
	s.WinRate = winFraction.Mul(num.Hundred)
	if s.WinningTrades > 0 {
		s.AverageWin = ratio(s.GrossProfit, num.OfInt(int64(s.WinningTrades)))
	}
	if s.LosingTrades > 0 {
		s.AverageLoss = ratio(s.GrossLoss, num.OfInt(int64(s.LosingTrades)))
	}
	s.ProfitFactor = ratio(s.GrossProfit, s.GrossLoss.Neg())
	lossFraction := num.One.Sub(winFraction)
	s.Expectancy = winFraction.Mul(s.AverageWin).Add(lossFraction.Mul(s.AverageLoss))
	return s
}

// ratio is a/b, or zero when b is zero.
func ratio(a, b decimal.Decimal) decimal.Decimal {
	r, err := num.Div(a, b)
	if err != nil {
		return decimal.Zero
	}
	return r
}
