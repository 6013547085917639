package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Field names for the analysis job model, used by conditional updates.
const (
	// AnalysisJobStatusField is the field name for job status
	AnalysisJobStatusField = "status"
	// AnalysisJobCursorField is the field name for the progress cursor
	AnalysisJobCursorField = "cursor"
	// AnalysisJobResultsField is the field name for accumulated results
	AnalysisJobResultsField = "results"
	// AnalysisJobLastErrorField is the field name for the terminal error message
	AnalysisJobLastErrorField = "last_error"
	// AnalysisJobCreatedAtField is the field name for the creation timestamp
	AnalysisJobCreatedAtField = "created_at"
)

// JobStatus represents the current state of an analysis job
type JobStatus string

// Job status constants
const (
	// JobStatusUnknown represents an unknown or invalid job status
	JobStatusUnknown JobStatus = "unknown"
	// JobStatusQueued indicates the job is waiting for its first tick
	JobStatusQueued JobStatus = "queued"
	// JobStatusRunning indicates at least one tick has started
	JobStatusRunning JobStatus = "running"
	// JobStatusComplete indicates every target has been consumed
	JobStatusComplete JobStatus = "complete"
	// JobStatusError indicates the job failed terminally
	JobStatusError JobStatus = "error"
)

// String returns the string representation of the job status
func (s JobStatus) String() string {
	return string(s)
}

// Terminal reports whether no further tick may mutate the job.
func (s JobStatus) Terminal() bool {
	return s == JobStatusComplete || s == JobStatusError
}

// ParseJobStatus converts a string to a JobStatus type
func ParseJobStatus(str string) (JobStatus, error) {
	switch str {
	case string(JobStatusUnknown):
		return JobStatusUnknown, nil
	case string(JobStatusQueued):
		return JobStatusQueued, nil
	case string(JobStatusRunning):
		return JobStatusRunning, nil
	case string(JobStatusComplete):
		return JobStatusComplete, nil
	case string(JobStatusError):
		return JobStatusError, nil
	default:
		return JobStatusUnknown, fmt.Errorf("invalid job status: %s", str)
	}
}

// UnmarshalJSON implements json.Unmarshaler for JobStatus
func (s *JobStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	status, err := ParseJobStatus(str)
	if err != nil {
		return err
	}

	*s = status
	return nil
}

// TargetType describes how the job's target list was obtained
type TargetType string

// Target type constants
const (
	// TargetTypeDirectIDs indicates the user pasted individual member ids
	TargetTypeDirectIDs TargetType = "direct_ids"
	// TargetTypeGroupID indicates the list was expanded from a faction id
	TargetTypeGroupID TargetType = "group_id"
)

// ParseTargetType converts a string to a TargetType
func ParseTargetType(str string) (TargetType, error) {
	switch str {
	case string(TargetTypeDirectIDs):
		return TargetTypeDirectIDs, nil
	case string(TargetTypeGroupID):
		return TargetTypeGroupID, nil
	default:
		return "", fmt.Errorf("invalid target type: %s", str)
	}
}

// KeyType describes the flavor of API credential supplied by the user
type KeyType string

// Key type constants
const (
	// KeyTypeLimited is a limited-access API credential
	KeyTypeLimited KeyType = "limited"
	// KeyTypeFull is a full-access API credential
	KeyTypeFull KeyType = "full"
)

// ParseKeyType converts a string to a KeyType
func ParseKeyType(str string) (KeyType, error) {
	switch str {
	case string(KeyTypeLimited):
		return KeyTypeLimited, nil
	case string(KeyTypeFull):
		return KeyTypeFull, nil
	default:
		return "", fmt.Errorf("invalid key type: %s", str)
	}
}

// TargetList is an ordered list of member ids stored as a JSON column.
type TargetList []string

// Value implements driver.Valuer so gorm can persist the list as JSON.
func (t TargetList) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	data, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner for reading the JSON column back.
func (t *TargetList) Scan(value interface{}) error {
	if value == nil {
		*t = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, t)
	case string:
		return json.Unmarshal([]byte(v), t)
	default:
		return fmt.Errorf("unsupported target list column type %T", value)
	}
}

// AnalysisJob is the durable record of one member-analysis request. It is
// created when the user submits a target list, advanced tick by tick by the
// batch processor, and deleted once the report has been delivered.
//
// The credential is stored in plaintext for the lifetime of the job so that
// any later tick can call the game API on the user's behalf.
type AnalysisJob struct {
	ID               string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OwnerID          string          `json:"owner_id" gorm:"not null;index"`
	Status           JobStatus       `json:"status" gorm:"not null;index"`
	TargetType       TargetType      `json:"target_type" gorm:"not null"`
	KeyType          KeyType         `json:"key_type" gorm:"not null"`
	Credential       string          `json:"-" gorm:"not null;type:text"`
	GroupID          string          `json:"group_id,omitempty"`
	Targets          TargetList      `json:"targets" gorm:"type:jsonb"`
	Cursor           int             `json:"cursor" gorm:"not null;default:0"`
	Results          json.RawMessage `json:"results,omitempty" gorm:"type:jsonb"`
	LastError        string          `json:"last_error,omitempty" gorm:"type:text"`
	InteractionToken string          `json:"-" gorm:"not null;type:text"`
	ApplicationID    string          `json:"-" gorm:"not null"`
	Ephemeral        bool            `json:"ephemeral" gorm:"not null;default:false"`
	CreatedAt        time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt        time.Time       `json:"updated_at"`
	DeletedAt        gorm.DeletedAt  `json:"-" gorm:"index"`
}

// Validate ensures that the job data is valid
func (j *AnalysisJob) Validate() error {
	if j.ID == "" {
		return fmt.Errorf("job id cannot be empty")
	}
	if j.OwnerID == "" {
		return fmt.Errorf("job owner cannot be empty")
	}
	if j.Credential == "" {
		return fmt.Errorf("job credential cannot be empty")
	}
	if len(j.Targets) == 0 {
		return fmt.Errorf("job target list cannot be empty")
	}
	if j.Cursor < 0 || j.Cursor > len(j.Targets) {
		return fmt.Errorf("job cursor %d out of range [0, %d]", j.Cursor, len(j.Targets))
	}
	return nil
}

// BeforeCreate is a GORM hook that runs before creating a new job
func (j *AnalysisJob) BeforeCreate(_ *gorm.DB) error {
	if j.Status == "" {
		j.Status = JobStatusQueued
	}
	if j.TargetType == "" {
		j.TargetType = TargetTypeDirectIDs
	}
	return j.Validate()
}
