package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/thc-edge/vetbot/config"
	"github.com/thc-edge/vetbot/internal/db"
	"github.com/thc-edge/vetbot/internal/db/models"
	"github.com/thc-edge/vetbot/internal/db/repos"
	"github.com/thc-edge/vetbot/internal/discord"
	"github.com/thc-edge/vetbot/internal/logger"
	"github.com/thc-edge/vetbot/internal/report"
	"github.com/thc-edge/vetbot/internal/retry"
	"github.com/thc-edge/vetbot/internal/torn"
)

// Storage retry policy shared by the router and the processor.
const (
	storageAttempts    = 3
	storageBackoffStep = 200 * time.Millisecond
)

// Reply text for processor outcomes.
const (
	msgReportReady      = "Generated report for %d member(s)."
	msgProgress         = "Processed %d of %d member(s)."
	msgNoData           = "No member data could be analyzed."
	msgFinalBatchFailed = "all lookups in the final batch failed"
)

// TickOutcome reports what one processor tick did to a job.
type TickOutcome int

// Tick outcomes.
const (
	// TickUnknown means the tick failed before reaching a decision.
	TickUnknown TickOutcome = iota
	// TickNotFound means the job does not exist, usually because a
	// previous tick delivered the report and deleted it.
	TickNotFound
	// TickErrored means the job is in a terminal error state.
	TickErrored
	// TickStale means a concurrent tick advanced the job first.
	TickStale
	// TickAdvanced means this tick advanced the cursor and targets remain.
	TickAdvanced
	// TickCompleted means the job has consumed every target.
	TickCompleted
)

// String returns a readable name for logging.
func (o TickOutcome) String() string {
	switch o {
	case TickNotFound:
		return "not_found"
	case TickErrored:
		return "errored"
	case TickStale:
		return "stale"
	case TickAdvanced:
		return "advanced"
	case TickCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// storagePolicy retries transient job-store failures. Missing records,
// constraint violations, and dead contexts are final.
func storagePolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: storageAttempts,
		Backoff:     retry.LinearBackoff(storageBackoffStep),
		Retryable: func(err error) bool {
			return !errors.Is(err, gorm.ErrRecordNotFound) &&
				!db.IsDuplicateKeyError(err) &&
				!errors.Is(err, context.Canceled) &&
				!errors.Is(err, context.DeadlineExceeded)
		},
	}
}

// Processor advances analysis jobs one bounded tick at a time. All state
// lives in the job store, so any invocation can pick up any job, and
// concurrent ticks are serialized by conditional cursor updates rather
// than locks.
type Processor struct {
	jobs           *repos.AnalysisJobRepository
	game           *torn.Client
	assembler      report.Assembler
	webhook        *discord.WebhookClient
	batchSize      int
	analyzeTimeout time.Duration
	storage        retry.Policy
}

// NewProcessor creates the batch processor. batchSize bounds how many
// targets one tick fetches; analyzeTimeout bounds each individual fetch.
func NewProcessor(jobs *repos.AnalysisJobRepository, game *torn.Client, assembler report.Assembler, webhook *discord.WebhookClient, batchSize int, analyzeTimeout time.Duration) *Processor {
	if batchSize <= 0 {
		batchSize = config.DefaultBatchSize
	}
	if analyzeTimeout <= 0 {
		analyzeTimeout = config.DefaultAnalyzeTimeout
	}
	return &Processor{
		jobs:           jobs,
		game:           game,
		assembler:      assembler,
		webhook:        webhook,
		batchSize:      batchSize,
		analyzeTimeout: analyzeTimeout,
		storage:        storagePolicy(),
	}
}

// Run drives a job to a terminal outcome, looping RunTick and re-reading
// whenever a concurrent tick wins the advance.
func (p *Processor) Run(ctx context.Context, jobID string) error {
	for {
		outcome, err := p.RunTick(ctx, jobID)
		if err != nil {
			return fmt.Errorf("job %s tick failed: %w", jobID, err)
		}
		logger.Debugf("job %s tick outcome: %s", jobID, outcome)

		switch outcome {
		case TickAdvanced, TickStale:
			continue
		default:
			return nil
		}
	}
}

// RunTick performs at most one bounded slice of work on the job:
// claim it if still queued, fetch the next batch of analyses
// concurrently, append the successes, and advance the checkpoint with a
// conditional update. The tick that moves the cursor onto the end of the
// target list also runs the completion side effects, exactly once.
func (p *Processor) RunTick(ctx context.Context, jobID string) (TickOutcome, error) {
	job, err := p.loadJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Infof("job %s not found, nothing to process", jobID)
			return TickNotFound, nil
		}
		return TickUnknown, err
	}

	switch job.Status {
	case models.JobStatusError:
		p.surfaceError(ctx, job)
		return TickErrored, nil
	case models.JobStatusComplete:
		// The completing tick owns delivery; observing this state means
		// it is still running or its cleanup failed.
		logger.Infof("job %s already complete", job.ID)
		return TickCompleted, nil
	case models.JobStatusQueued:
		claimed, err := p.markRunning(ctx, job.ID)
		if err != nil {
			return TickUnknown, err
		}
		if !claimed {
			return TickStale, nil
		}
		job.Status = models.JobStatusRunning
		job.Cursor = 0
	}

	end := job.Cursor + p.batchSize
	if end > len(job.Targets) {
		end = len(job.Targets)
	}
	slice := job.Targets[job.Cursor:end]

	analyses, err := p.analyzeSlice(ctx, job, slice)
	if err != nil {
		return TickUnknown, err
	}

	prior, err := decodeResults(job.Results)
	if err != nil {
		return TickUnknown, fmt.Errorf("job %s results are unreadable: %w", job.ID, err)
	}

	newCursor := job.Cursor + len(slice)
	final := newCursor == len(job.Targets)

	if final && len(analyses) == 0 {
		msg := msgFinalBatchFailed
		if len(prior) == 0 {
			msg = msgNoData
		}
		marked, err := p.markError(ctx, job.ID, msg)
		if err != nil {
			return TickUnknown, err
		}
		if !marked {
			return TickStale, nil
		}
		job.LastError = msg
		p.surfaceError(ctx, job)
		return TickErrored, nil
	}

	combined := append(prior, analyses...)
	status := models.JobStatusRunning
	if final {
		status = models.JobStatusComplete
	}

	advanced, err := p.advanceCursor(ctx, job.ID, job.Cursor, newCursor, combined, status)
	if err != nil {
		return TickUnknown, err
	}
	if !advanced {
		logger.Debugf("job %s was advanced by a concurrent tick", job.ID)
		return TickStale, nil
	}

	if !final {
		p.reportProgress(ctx, job, newCursor)
		return TickAdvanced, nil
	}

	p.deliver(ctx, job, combined)
	return TickCompleted, nil
}

// analyzeSlice fetches one analysis per target concurrently, each under
// its own timeout. Failed lookups are dropped so one bad target cannot
// abort the job; only a dead parent context aborts the tick.
func (p *Processor) analyzeSlice(ctx context.Context, job *models.AnalysisJob, slice models.TargetList) ([]report.Analysis, error) {
	collected := make([]*report.Analysis, len(slice))

	g, gctx := errgroup.WithContext(ctx)
	for i, memberID := range slice {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, p.analyzeTimeout)
			defer cancel()

			analysis, err := p.game.Analyze(callCtx, job.Credential, memberID)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				logger.Warnf("skipping member %s for job %s: %v", memberID, job.ID, err)
				return nil
			}
			collected[i] = analysis
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("tick aborted: %w", err)
	}

	analyses := make([]report.Analysis, 0, len(collected))
	for _, a := range collected {
		if a != nil {
			analyses = append(analyses, *a)
		}
	}
	return analyses, nil
}

// deliver assembles the report, sends it as a follow-up attachment, and
// deletes the job. Delivery failures are logged only; the work is
// committed either way.
func (p *Processor) deliver(ctx context.Context, job *models.AnalysisJob, analyses []report.Analysis) {
	doc, err := p.assembler.Assemble(analyses, time.Now())
	if err != nil {
		logger.Errorf("failed to assemble report for job %s: %v", job.ID, err)
	} else {
		data := &discord.ResponseData{Content: fmt.Sprintf(msgReportReady, len(analyses))}
		if job.Ephemeral {
			data.Flags = discord.MessageFlagEphemeral
		}
		file := &discord.File{Name: doc.Filename, Content: doc.Content}
		if err := p.webhook.CreateFollowup(ctx, job.ApplicationID, job.InteractionToken, data, file); err != nil {
			logger.Errorf("failed to deliver report for job %s: %v", job.ID, err)
		} else {
			logger.Infof("delivered report for job %s covering %d member(s)", job.ID, len(analyses))
		}
	}

	if err := p.deleteJob(ctx, job.ID); err != nil {
		logger.Errorf("failed to delete delivered job %s: %v", job.ID, err)
	}
}

// reportProgress rewrites the original acknowledgement with the current
// checkpoint and re-offers the status button.
func (p *Processor) reportProgress(ctx context.Context, job *models.AnalysisJob, cursor int) {
	statusID, err := discord.Token{Step: discord.StepJobStatus, JobID: job.ID}.Encode()
	if err != nil {
		logger.Errorf("failed to encode status token for job %s: %v", job.ID, err)
		return
	}
	data := &discord.ResponseData{
		Content:    fmt.Sprintf(msgProgress, cursor, len(job.Targets)),
		Components: []discord.Component{discord.StatusRow(statusID)},
	}
	if err := p.webhook.EditOriginal(ctx, job.ApplicationID, job.InteractionToken, data); err != nil {
		logger.Warnf("failed to report progress for job %s: %v", job.ID, err)
	}
}

// surfaceError rewrites the original acknowledgement with the job's
// terminal error message.
func (p *Processor) surfaceError(ctx context.Context, job *models.AnalysisJob) {
	msg := job.LastError
	if msg == "" {
		msg = msgNoData
	}
	data := &discord.ResponseData{Content: msg}
	if err := p.webhook.EditOriginal(ctx, job.ApplicationID, job.InteractionToken, data); err != nil {
		logger.Warnf("failed to surface error for job %s: %v", job.ID, err)
	}
}

func (p *Processor) loadJob(ctx context.Context, id string) (*models.AnalysisJob, error) {
	var job *models.AnalysisJob
	err := retry.Do(ctx, p.storage, func() error {
		var err error
		job, err = p.jobs.GetByID(ctx, id)
		return err
	})
	return job, err
}

func (p *Processor) markRunning(ctx context.Context, id string) (bool, error) {
	var claimed bool
	err := retry.Do(ctx, p.storage, func() error {
		var err error
		claimed, err = p.jobs.MarkRunning(ctx, id)
		return err
	})
	return claimed, err
}

func (p *Processor) advanceCursor(ctx context.Context, id string, expected, next int, results []report.Analysis, status models.JobStatus) (bool, error) {
	var advanced bool
	err := retry.Do(ctx, p.storage, func() error {
		var err error
		advanced, err = p.jobs.AdvanceCursor(ctx, id, expected, next, results, status)
		return err
	})
	return advanced, err
}

func (p *Processor) markError(ctx context.Context, id, msg string) (bool, error) {
	var marked bool
	err := retry.Do(ctx, p.storage, func() error {
		var err error
		marked, err = p.jobs.MarkError(ctx, id, msg)
		return err
	})
	return marked, err
}

func (p *Processor) deleteJob(ctx context.Context, id string) error {
	return retry.Do(ctx, p.storage, func() error {
		return p.jobs.Delete(ctx, id)
	})
}

func decodeResults(raw json.RawMessage) ([]report.Analysis, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var analyses []report.Analysis
	if err := json.Unmarshal(raw, &analyses); err != nil {
		return nil, err
	}
	return analyses, nil
}
