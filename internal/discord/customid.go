package discord

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// MaxCustomIDLength is the platform's limit on a component custom id.
const MaxCustomIDLength = 100

// Conversation steps encoded into component custom ids.
const (
	StepCredentialType  = "credential_type"
	StepCredentialModal = "credential_modal"
	StepTargetType      = "target_type"
	StepTargetModal     = "target_modal"
	StepJobStatus       = "job_status"
)

// Token is the conversation state a component carries between
// interactions. Nothing is stored server side: the current step plus the
// choices made so far ride inside the custom id and come back with the
// next click or submission.
type Token struct {
	Step       string `json:"-"`
	KeyType    string `json:"k,omitempty"`
	Credential string `json:"c,omitempty"`
	TargetType string `json:"t,omitempty"`
	JobID      string `json:"-"`
}

// Encode serializes the token into a custom id. Steps that carry a
// single value keep it readable as "step:value"; steps that accumulate
// choices pack them as base64url JSON after the step prefix.
func (t Token) Encode() (string, error) {
	var id string
	switch t.Step {
	case StepCredentialType, StepCredentialModal:
		id = t.Step + ":" + t.KeyType
	case StepTargetType, StepTargetModal:
		payload, err := json.Marshal(t)
		if err != nil {
			return "", fmt.Errorf("failed to encode token payload: %w", err)
		}
		id = t.Step + ":" + base64.RawURLEncoding.EncodeToString(payload)
	case StepJobStatus:
		id = t.Step + ":" + t.JobID
	default:
		return "", fmt.Errorf("unknown token step: %q", t.Step)
	}
	if len(id) > MaxCustomIDLength {
		return "", fmt.Errorf("encoded token is %d characters, limit is %d", len(id), MaxCustomIDLength)
	}
	return id, nil
}

// DecodeToken parses a custom id back into conversation state.
func DecodeToken(customID string) (Token, error) {
	step, rest, ok := strings.Cut(customID, ":")
	if !ok {
		return Token{}, fmt.Errorf("malformed token: %q", customID)
	}
	switch step {
	case StepCredentialType, StepCredentialModal:
		return Token{Step: step, KeyType: rest}, nil
	case StepTargetType, StepTargetModal:
		payload, err := base64.RawURLEncoding.DecodeString(rest)
		if err != nil {
			return Token{}, fmt.Errorf("failed to decode token payload: %w", err)
		}
		t := Token{Step: step}
		if err := json.Unmarshal(payload, &t); err != nil {
			return Token{}, fmt.Errorf("failed to decode token payload: %w", err)
		}
		return t, nil
	case StepJobStatus:
		return Token{Step: step, JobID: rest}, nil
	default:
		return Token{}, fmt.Errorf("unknown token step: %q", step)
	}
}
