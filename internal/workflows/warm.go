package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/flightpath/internal/core/domain"
)

// RoutePair is a named flight kept warm in the cache.
type RoutePair struct {
	Name  string
	Start domain.GeoPoint
	End   domain.GeoPoint
}

// WarmInput is the input for the warm-up workflow.
type WarmInput struct {
	Pairs       []RoutePair
	Points      int
	IncludeWind bool
}

// WarmResult describes one rendered pair.
type WarmResult struct {
	Name       string
	DistanceKm float64
	ZoomLevel  int
	PageBytes  int
}

// WarmReport is returned by WarmMapsWorkflow.
type WarmReport struct {
	Warmed []WarmResult
	Failed []string
}

// WarmMapsWorkflow renders every pair in parallel, then caches the plan of
// the opposite wind variant. A pair that cannot be rendered is reported, not
// retried forever; the workflow only fails when nothing could be warmed.
func WarmMapsWorkflow(ctx workflow.Context, input WarmInput) (WarmReport, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting map warm-up", "pairs", len(input.Pairs))

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	var report WarmReport
	if len(input.Pairs) == 0 {
		return report, nil
	}

	futures := make([]workflow.Future, len(input.Pairs))
	for i, pair := range input.Pairs {
		futures[i] = workflow.ExecuteActivity(ctx, "WarmMap", pair, input.Points, input.IncludeWind)
	}

	for i, f := range futures {
		var res WarmResult
		if err := f.Get(ctx, &res); err != nil {
			logger.Warn("warm-up failed", "pair", input.Pairs[i].Name, "error", err)
			report.Failed = append(report.Failed, input.Pairs[i].Name)
			continue
		}
		report.Warmed = append(report.Warmed, res)

		// WarmMap already cached the plan it drew; warm the other wind variant.
		var windSamples int
		if err := workflow.ExecuteActivity(ctx, "WarmPlan", input.Pairs[i], input.Points, !input.IncludeWind).Get(ctx, &windSamples); err != nil {
			logger.Warn("plan warm-up failed", "pair", input.Pairs[i].Name, "error", err)
		}
	}

	if len(report.Warmed) == 0 {
		return report, fmt.Errorf("no route could be warmed (%d failed)", len(report.Failed))
	}

	logger.Info("Map warm-up finished", "warmed", len(report.Warmed), "failed", len(report.Failed))
	return report, nil
}
