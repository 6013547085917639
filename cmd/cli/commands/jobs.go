package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/thc-edge/vetbot/internal/db/models"
	"github.com/thc-edge/vetbot/internal/db/repos"
)

// jobStore is the shared repository handle, set before any jobs
// subcommand runs. Tests inject their own.
var jobStore *repos.AnalysisJobRepository

// jobOutput is the operator-facing view of a job. The credential never
// leaves the store.
type jobOutput struct {
	ID         string `json:"id"`
	Owner      string `json:"owner"`
	Status     string `json:"status"`
	TargetType string `json:"target_type"`
	Targets    int    `json:"targets"`
	Cursor     int    `json:"cursor"`
	LastError  string `json:"last_error,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// jobListOutput represents the filtered output for a list of jobs
type jobListOutput struct {
	Jobs []jobOutput `json:"jobs"`
}

func newJobOutput(job *models.AnalysisJob) jobOutput {
	return jobOutput{
		ID:         job.ID,
		Owner:      job.OwnerID,
		Status:     string(job.Status),
		TargetType: string(job.TargetType),
		Targets:    len(job.Targets),
		Cursor:     job.Cursor,
		LastError:  job.LastError,
		CreatedAt:  job.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func init() {
	jobsCmd.AddCommand(listJobsCmd)
	jobsCmd.AddCommand(getJobCmd)
	jobsCmd.AddCommand(deleteJobCmd)

	// Add flags
	listJobsCmd.Flags().StringP(flagOwnerID, "o", "", "Filter jobs by owner id")
	listJobsCmd.Flags().IntP(flagLimit, "l", 0, "Limit the number of jobs returned")
	listJobsCmd.Flags().StringP(flagStatus, "s", "", "Filter jobs by status (queued|running|complete|error)")

	getJobCmd.Flags().StringP(flagJobID, "i", "", "Job ID to fetch")
	_ = getJobCmd.MarkFlagRequired(flagJobID)

	deleteJobCmd.Flags().StringP(flagJobID, "i", "", "Job ID to delete")
	_ = deleteJobCmd.MarkFlagRequired(flagJobID)
	deleteJobCmd.Flags().Bool(flagPurge, false, "Hard-delete the row instead of soft-deleting it")
}

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect and clean up analysis jobs",
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if jobStore != nil {
			return nil
		}
		_ = godotenv.Load()
		var err error
		jobStore, err = openStore()
		return err
	},
}

var listJobsCmd = &cobra.Command{
	Use:   "list",
	Short: "List analysis jobs, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		owner, _ := cmd.Flags().GetString(flagOwnerID)
		limit, _ := cmd.Flags().GetInt(flagLimit)
		status, _ := cmd.Flags().GetString(flagStatus)

		opts := &models.ListOptions{Limit: limit}
		if status != "" {
			parsed, err := models.ParseJobStatus(status)
			if err != nil {
				return err
			}
			opts.Status = &parsed
		}

		jobs, err := jobStore.List(context.Background(), owner, opts)
		if err != nil {
			return fmt.Errorf("error fetching jobs: %w", err)
		}

		output := jobListOutput{
			Jobs: make([]jobOutput, len(jobs)),
		}
		for i := range jobs {
			output.Jobs[i] = newJobOutput(&jobs[i])
		}

		// Pretty print the response
		prettyJSON, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			return fmt.Errorf("error formatting response: %w", err)
		}
		cmd.Println(string(prettyJSON))
		return nil
	},
}

var getJobCmd = &cobra.Command{
	Use:   "get",
	Short: "Get a specific analysis job",
	RunE: func(cmd *cobra.Command, _ []string) error {
		jobID, _ := cmd.Flags().GetString(flagJobID)

		job, err := jobStore.GetByID(context.Background(), jobID)
		if err != nil {
			return fmt.Errorf("error fetching job: %w", err)
		}

		// Pretty print the response
		prettyJSON, err := json.MarshalIndent(newJobOutput(job), "", "  ")
		if err != nil {
			return fmt.Errorf("error formatting response: %w", err)
		}
		cmd.Println(string(prettyJSON))
		return nil
	},
}

var deleteJobCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a stalled analysis job",
	RunE: func(cmd *cobra.Command, _ []string) error {
		jobID, _ := cmd.Flags().GetString(flagJobID)
		purge, _ := cmd.Flags().GetBool(flagPurge)

		remove := jobStore.Delete
		if purge {
			remove = jobStore.Purge
		}
		if err := remove(context.Background(), jobID); err != nil {
			return fmt.Errorf("error deleting job: %w", err)
		}

		cmd.Printf("Job %s deleted\n", jobID)
		return nil
	},
}

// GetJobsCmd returns the jobs command
func GetJobsCmd() *cobra.Command {
	return jobsCmd
}
