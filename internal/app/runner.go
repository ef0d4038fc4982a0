package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/vigil/internal/common"
	"github.com/bobmcallan/vigil/internal/confidence"
	"github.com/bobmcallan/vigil/internal/interfaces"
	"github.com/bobmcallan/vigil/internal/models"
	"github.com/bobmcallan/vigil/internal/services/charts"
	"github.com/bobmcallan/vigil/internal/storage"
)

// Pipeline step names, in execution order
const (
	StepTechnical    = "technical"
	StepFundamentals = "fundamentals"
	StepVisual       = "visual"
	StepSynthesis    = "synthesis"
)

// Run outcomes recorded in metrics
const (
	RunStatusSuccess = "success"
	RunStatusPartial = "partial"
	RunStatusFailed  = "failed"
)

// notifiedCharts are attached to the chat update after the text messages.
var notifiedCharts = []string{charts.ChartSector, charts.ChartPie}

// Runner executes the daily analysis pipeline.
type Runner struct {
	store        interfaces.SnapshotStore
	tracker      interfaces.TrackerService
	fundamentals interfaces.FundamentalsService
	charts       interfaces.ChartService
	synthesis    interfaces.SynthesisService
	notifier     interfaces.Notifier
	metrics      *common.Metrics
	logger       *common.Logger

	now   func() time.Time
	newID func() string
}

// NewRunner creates a pipeline runner. notifier may be nil to disable chat updates.
func NewRunner(
	store interfaces.SnapshotStore,
	tracker interfaces.TrackerService,
	fundamentals interfaces.FundamentalsService,
	chartService interfaces.ChartService,
	synthesis interfaces.SynthesisService,
	notifier interfaces.Notifier,
	metrics *common.Metrics,
	logger *common.Logger,
) *Runner {
	if metrics == nil {
		metrics = common.NewMetrics()
	}
	return &Runner{
		store:        store,
		tracker:      tracker,
		fundamentals: fundamentals,
		charts:       chartService,
		synthesis:    synthesis,
		notifier:     notifier,
		metrics:      metrics,
		logger:       logger,
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

// Run executes technical analysis, fundamentals extraction, chart rendering
// and synthesis, saves the run record, then sends the chat update.
// A failed technical step skips the remaining steps.
func (r *Runner) Run(ctx context.Context) (*models.RunResult, error) {
	result := &models.RunResult{
		ID:        r.newID(),
		Timestamp: r.now(),
		Steps:     make(map[string]models.StepResult, 4),
	}

	r.logger.Info().Str("run_id", result.ID).Msg("Analysis run starting")

	report, step := r.Technical(ctx)
	result.Steps[StepTechnical] = step

	var synthesis *models.PortfolioSynthesis
	if step.Status == models.StepStatusSuccess {
		result.Steps[StepFundamentals] = r.Fundamentals(ctx, report)
		result.Steps[StepVisual] = r.Visual(ctx)
		synthesis, result.Steps[StepSynthesis] = r.Synthesis(ctx)
	} else {
		skipped := models.StepResult{
			Status: models.StepStatusSkipped,
			Error:  "technical analysis failed",
		}
		result.Steps[StepFundamentals] = skipped
		result.Steps[StepVisual] = skipped
		result.Steps[StepSynthesis] = skipped
	}

	status := runStatus(result)
	r.metrics.RecordRun(status)

	if err := r.store.SaveRunResult(ctx, result); err != nil {
		return result, fmt.Errorf("failed to save run result: %w", err)
	}

	if report != nil {
		if err := r.Notify(ctx, report, synthesis); err != nil {
			r.logger.Warn().Err(err).Msg("Chat update incomplete")
		}
	}

	r.logger.Info().
		Str("run_id", result.ID).
		Str("status", status).
		Msg("Analysis run complete")

	return result, nil
}

// Technical runs the tracker and returns the saved daily report.
func (r *Runner) Technical(ctx context.Context) (*models.DailyReport, models.StepResult) {
	var report *models.DailyReport
	step := r.timed(StepTechnical, func() models.StepResult {
		var err error
		report, err = r.tracker.Analyze(ctx)
		if err != nil {
			return failed(err)
		}
		return models.StepResult{
			Status:        models.StepStatusSuccess,
			HoldingsCount: len(report.Holdings),
		}
	})
	return report, step
}

// Fundamentals extracts filing metrics for every RSI alert in the report.
// A nil report is loaded from storage.
func (r *Runner) Fundamentals(ctx context.Context, report *models.DailyReport) models.StepResult {
	return r.timed(StepFundamentals, func() models.StepResult {
		if report == nil {
			var err error
			if report, err = r.store.GetDailyReport(ctx); err != nil {
				return failed(fmt.Errorf("failed to load daily report: %w", err))
			}
		}

		alerts := r.fundamentals.Alerts(report)
		results, err := r.fundamentals.ExtractAll(ctx, alerts)

		extracted := []string{}
		for _, fr := range results {
			if fr.Status == models.FundamentalStatusSuccess {
				extracted = append(extracted, fr.Ticker)
			}
		}

		step := models.StepResult{
			Status:      models.StepStatusSuccess,
			AlertsFound: len(alerts),
			Extracted:   extracted,
		}
		if err != nil {
			step.Status = models.StepStatusError
			step.Error = err.Error()
		}
		return step
	})
}

// Visual renders portfolio charts from the stored split.
func (r *Runner) Visual(ctx context.Context) models.StepResult {
	return r.timed(StepVisual, func() models.StepResult {
		split, err := r.store.GetPortfolioSplit(ctx)
		if err != nil {
			return failed(fmt.Errorf("failed to load portfolio split: %w", err))
		}

		names, err := r.charts.Render(ctx, split)
		step := models.StepResult{
			Status: models.StepStatusSuccess,
			Charts: names,
		}
		if err != nil {
			step.Status = models.StepStatusError
			step.Error = err.Error()
		}
		return step
	})
}

// Synthesis scores the stored report into confidence verdicts.
func (r *Runner) Synthesis(ctx context.Context) (*models.PortfolioSynthesis, models.StepResult) {
	var synthesis *models.PortfolioSynthesis
	step := r.timed(StepSynthesis, func() models.StepResult {
		var err error
		synthesis, err = r.synthesis.Synthesize(ctx)
		if err != nil {
			return failed(err)
		}
		r.metrics.RecordSynthesis(synthesis.TotalHoldings, synthesis.Summary.SellCandidates, synthesis.Summary.AverageConfidence)
		return models.StepResult{
			Status:            models.StepStatusSuccess,
			AverageConfidence: synthesis.Summary.AverageConfidence,
			ARated:            synthesis.Summary.ARated,
			SellCandidates:    synthesis.Summary.SellCandidates,
		}
	})
	return synthesis, step
}

// Notify sends the technical report, the synthesis summary and the sector
// and pie charts. Missing charts are skipped; delivery errors are joined.
func (r *Runner) Notify(ctx context.Context, report *models.DailyReport, synthesis *models.PortfolioSynthesis) error {
	if r.notifier == nil {
		r.logger.Debug().Msg("No notifier configured, skipping chat update")
		return nil
	}

	var errs []error
	if err := r.notifier.SendMessage(ctx, r.tracker.FormatReport(report)); err != nil {
		errs = append(errs, fmt.Errorf("technical report: %w", err))
	}

	if synthesis != nil {
		if err := r.notifier.SendMessage(ctx, confidence.FormatSynthesisMessage(*synthesis)); err != nil {
			errs = append(errs, fmt.Errorf("synthesis summary: %w", err))
		}
	}

	for _, chart := range notifiedCharts {
		name := charts.FileName(chart)
		data, err := r.store.ReadRaw(storage.ChartsDir, name)
		if err != nil {
			r.logger.Debug().Str("chart", name).Err(err).Msg("Chart not available")
			continue
		}
		if err := r.notifier.SendFile(ctx, "", name, data); err != nil {
			errs = append(errs, fmt.Errorf("chart %s: %w", name, err))
		}
	}

	return errors.Join(errs...)
}

// timed runs fn, stamps its duration and records step metrics.
func (r *Runner) timed(name string, fn func() models.StepResult) models.StepResult {
	start := r.now()
	step := fn()
	elapsed := r.now().Sub(start)
	step.DurationMs = elapsed.Milliseconds()
	r.metrics.RecordStep(name, elapsed.Seconds())

	event := r.logger.Info()
	if step.Status != models.StepStatusSuccess {
		event = r.logger.Warn().Str("error", step.Error)
	}
	event.Str("step", name).Str("status", step.Status).Int64("duration_ms", step.DurationMs).Msg("Step finished")

	return step
}

func failed(err error) models.StepResult {
	return models.StepResult{Status: models.StepStatusError, Error: err.Error()}
}

func runStatus(result *models.RunResult) string {
	ok := 0
	for _, step := range result.Steps {
		if step.Status == models.StepStatusSuccess {
			ok++
		}
	}
	switch ok {
	case len(result.Steps):
		return RunStatusSuccess
	case 0:
		return RunStatusFailed
	default:
		return RunStatusPartial
	}
}
