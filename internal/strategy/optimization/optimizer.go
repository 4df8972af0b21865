package optimization

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"cryptoTA/internal/domain"
	"cryptoTA/internal/num"
	"cryptoTA/internal/ports"
	"cryptoTA/internal/strategy/analytics"
	"cryptoTA/internal/strategy/backtesting"
	"cryptoTA/internal/strategy/indicators"
	"cryptoTA/internal/strategy/strategies"
)

// ParameterRange defines a range for a parameter to optimize
type ParameterRange struct {
	Name  string
	Min   decimal.Decimal
	Max   decimal.Decimal
	Step  decimal.Decimal
	IsInt bool
}

// Parameters maps parameter names to values.
type Parameters map[string]decimal.Decimal

func (p Parameters) String() string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + p[k].String()
	}
	return strings.Join(parts, " ")
}

// OptimizationResult holds the results of a parameter optimization
type OptimizationResult struct {
	Parameters Parameters
	Summary    *analytics.Summary
	Score      decimal.Decimal
}

// OptimizerConfig holds configuration for the optimizer
type OptimizerConfig struct {
	ParameterRanges []ParameterRange
	Backtest        backtesting.BacktestConfig
	// Build turns a parameter combination into a strategy factory.
	Build         func(Parameters) (strategies.Factory, error)
	ScoreFunction func(*analytics.Summary) decimal.Decimal
	// Workers bounds the number of combinations evaluated at once. Zero means 4.
	Workers int
	Logger  ports.Logger
}

// Optimizer implements strategy parameter optimization
type Optimizer struct {
	config OptimizerConfig
}

// NewOptimizer creates a new optimizer instance
func NewOptimizer(config OptimizerConfig) (*Optimizer, error) {
	if config.Build == nil {
		return nil, fmt.Errorf("optimizer needs a strategy builder: %w", ports.ErrConfigurationError)
	}
	for _, r := range config.ParameterRanges {
		if !r.Step.IsPositive() || r.Max.LessThan(r.Min) {
			return nil, fmt.Errorf("parameter %q: invalid range [%s, %s] step %s: %w",
				r.Name, r.Min, r.Max, r.Step, ports.ErrConfigurationError)
		}
	}
	if config.ScoreFunction == nil {
		config.ScoreFunction = DefaultScoreFunction
	}
	if config.Workers <= 0 {
		config.Workers = 4
	}
	if config.Logger == nil {
		config.Logger = ports.NopLogger{}
	}
	return &Optimizer{config: config}, nil
}

// Optimize backtests every parameter combination over all series and returns
// the results, best score first. Every combination builds its own strategies,
// so indicator caches are never shared between goroutines; the series are
// only read. Combinations the builder rejects as misconfigured are skipped.
func (o *Optimizer) Optimize(ctx context.Context, series []*domain.TimeSeries) ([]OptimizationResult, error) {
	combinations := o.generateParameterCombinations()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		results  = make([]OptimizationResult, 0, len(combinations))
		firstErr error
	)
	sem := make(chan struct{}, o.config.Workers)

	for _, params := range combinations {
		wg.Add(1)
		go func(params Parameters) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			result, err := o.evaluate(ctx, params, series)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case errors.Is(err, ports.ErrConfigurationError):
				o.config.Logger.Warn(ctx, "Skipping parameter combination", map[string]interface{}{
					"params": params.String(),
					"error":  err.Error(),
				})
			case err != nil:
				if firstErr == nil {
					firstErr = err
					cancel()
				}
			default:
				results = append(results, result)
			}
		}(params)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sortResultsByScore(results)
	return results, nil
}

func (o *Optimizer) evaluate(ctx context.Context, params Parameters, series []*domain.TimeSeries) (OptimizationResult, error) {
	factory, err := o.config.Build(params)
	if err != nil {
		return OptimizationResult{}, err
	}
	portfolio, err := backtesting.RunPortfolio(ctx, series, factory, o.config.Backtest)
	if err != nil {
		return OptimizationResult{}, fmt.Errorf("parameters %s: %w", params, err)
	}
	summary := analytics.Analyze(portfolio)
	return OptimizationResult{
		Parameters: params,
		Summary:    summary,
		Score:      o.config.ScoreFunction(summary),
	}, nil
}

// generateParameterCombinations generates all possible parameter combinations
func (o *Optimizer) generateParameterCombinations() []Parameters {
	var combinations []Parameters
	current := make(Parameters)

	var generate func(int)
	generate = func(paramIndex int) {
		if paramIndex == len(o.config.ParameterRanges) {
			combination := make(Parameters, len(current))
			for k, v := range current {
				combination[k] = v
			}
			combinations = append(combinations, combination)
			return
		}

		param := o.config.ParameterRanges[paramIndex]
		for value := param.Min; value.LessThanOrEqual(param.Max); value = value.Add(param.Step) {
			if param.IsInt {
				current[param.Name] = value.Round(0)
			} else {
				current[param.Name] = value
			}
			generate(paramIndex + 1)
		}
	}

	generate(0)
	return combinations
}

// sortResultsByScore sorts optimization results by score in descending order.
// Equal scores keep a stable order by parameters.
func sortResultsByScore(results []OptimizationResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if c := results[i].Score.Cmp(results[j].Score); c != 0 {
			return c > 0
		}
		return results[i].Parameters.String() < results[j].Parameters.String()
	})
}

// DefaultScoreFunction ranks by net profit, then win rate breaks near ties.
func DefaultScoreFunction(summary *analytics.Summary) decimal.Decimal {
	return summary.NetProfit.Add(summary.WinRate.Div(num.Hundred))
}

// SAR parameter names understood by SARReversalBuilder.
const (
	ParamWindow  = "window"
	ParamInitial = "initial"
	ParamStep    = "step"
	ParamMax     = "max"
)

// SARReversalBuilder builds SARReversal factories. Parameters missing from a
// combination keep their DefaultParabolicSARConfig value.
func SARReversalBuilder(logger ports.Logger) func(Parameters) (strategies.Factory, error) {
	return func(params Parameters) (strategies.Factory, error) {
		cfg := indicators.DefaultParabolicSARConfig()
		if v, ok := params[ParamWindow]; ok {
			cfg.Window = int(v.IntPart())
		}
		if v, ok := params[ParamInitial]; ok {
			cfg.InitialAcceleration = v
		}
		if v, ok := params[ParamStep]; ok {
			cfg.AccelerationStep = v
		}
		if v, ok := params[ParamMax]; ok {
			cfg.MaxAcceleration = v
		}
		return strategies.SARReversalFactory(cfg, logger), nil
	}
}
