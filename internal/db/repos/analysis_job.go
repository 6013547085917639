package repos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/thc-edge/vetbot/internal/db/models"
)

// AnalysisJobRepository provides access to analysis-job database operations.
// All state transitions that race across ticks are expressed as conditional
// updates so that concurrent processors can never double-apply a slice.
type AnalysisJobRepository struct {
	db *gorm.DB
}

// NewAnalysisJobRepository creates a new analysis job repository instance
func NewAnalysisJobRepository(db *gorm.DB) *AnalysisJobRepository {
	return &AnalysisJobRepository{db: db}
}

// Create creates a new job in the database
func (r *AnalysisJobRepository) Create(ctx context.Context, job *models.AnalysisJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// GetByID retrieves a job by its ID
func (r *AnalysisJobRepository) GetByID(ctx context.Context, id string) (*models.AnalysisJob, error) {
	var job models.AnalysisJob
	err := r.db.WithContext(ctx).Where(&models.AnalysisJob{ID: id}).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("job not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

// List returns jobs, newest first, optionally filtered by owner and status
func (r *AnalysisJobRepository) List(ctx context.Context, ownerID string, opts *models.ListOptions) ([]models.AnalysisJob, error) {
	var jobs []models.AnalysisJob
	qry := &models.AnalysisJob{}
	if ownerID != "" {
		qry.OwnerID = ownerID
	}

	db := r.db.WithContext(ctx)
	if opts != nil && opts.IncludeDeleted {
		db = db.Unscoped()
	}

	db = db.Model(&models.AnalysisJob{}).Where(qry)
	if opts != nil {
		if opts.Status != nil && *opts.Status != models.JobStatusUnknown {
			db = db.Where(models.AnalysisJobStatusField+" = ?", *opts.Status)
		}
		limit := opts.Limit
		if limit <= 0 {
			limit = models.DefaultLimit
		}
		db = db.Limit(limit).Offset(opts.Offset)
	} else {
		db = db.Limit(models.DefaultLimit)
	}

	err := db.Order(models.AnalysisJobCreatedAtField + " DESC").Find(&jobs).Error
	return jobs, err
}

// Delete removes a job from the store once its report has been delivered.
// Soft delete keeps the row for auditing; every query path excludes it.
func (r *AnalysisJobRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.AnalysisJob{ID: id}).Error
}

// Purge hard-deletes a job, soft-deleted or not. Used by operator tooling.
func (r *AnalysisJobRepository) Purge(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Unscoped().Delete(&models.AnalysisJob{ID: id}).Error
}

// MarkRunning transitions a queued job to running with a zeroed cursor.
// Returns false if another tick already claimed the transition.
func (r *AnalysisJobRepository) MarkRunning(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.AnalysisJob{}).
		Where("id = ? AND status = ?", id, models.JobStatusQueued).
		Updates(map[string]interface{}{
			models.AnalysisJobStatusField: models.JobStatusRunning,
			models.AnalysisJobCursorField: 0,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark job running: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// AdvanceCursor moves the checkpoint from expectedCursor to newCursor,
// replacing the accumulated results and setting the new status, but only if
// no concurrent tick advanced the job first. Returns false when the
// conditional update matched no row (stale tick).
func (r *AnalysisJobRepository) AdvanceCursor(ctx context.Context, id string, expectedCursor, newCursor int, results interface{}, status models.JobStatus) (bool, error) {
	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return false, fmt.Errorf("failed to marshal results: %w", err)
	}

	res := r.db.WithContext(ctx).Model(&models.AnalysisJob{}).
		Where("id = ? AND status = ? AND cursor = ?", id, models.JobStatusRunning, expectedCursor).
		Updates(map[string]interface{}{
			models.AnalysisJobCursorField:  newCursor,
			models.AnalysisJobResultsField: resultsJSON,
			models.AnalysisJobStatusField:  status,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to advance cursor: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// MarkError terminates a job with a message. Terminal states are never
// overwritten. Returns false if the job was already terminal or missing.
func (r *AnalysisJobRepository) MarkError(ctx context.Context, id string, msg string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.AnalysisJob{}).
		Where("id = ? AND status IN ?", id, []models.JobStatus{models.JobStatusQueued, models.JobStatusRunning}).
		Updates(map[string]interface{}{
			models.AnalysisJobStatusField:    models.JobStatusError,
			models.AnalysisJobLastErrorField: msg,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark job errored: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
