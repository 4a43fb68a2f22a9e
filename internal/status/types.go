// Package status describes the state of the periodic census exposed by serve.
package status

import "time"

// RunPhase represents the current phase of the census loop
type RunPhase string

const (
	// RunPhasePending means no census has run yet
	RunPhasePending RunPhase = "Pending"

	// RunPhaseRunning means a census is currently in progress
	RunPhaseRunning RunPhase = "Running"

	// RunPhaseComplete means the last census completed
	RunPhaseComplete RunPhase = "Complete"

	// RunPhaseFailed means the last census was aborted
	RunPhaseFailed RunPhase = "Failed"
)

// RunStatus represents the state of the census loop
type RunStatus struct {
	// Phase represents the current phase
	Phase RunPhase `json:"phase"`

	// Message provides additional information about the phase
	Message string `json:"message,omitempty"`

	// LastAttempt is the start time of the last census
	LastAttempt *time.Time `json:"lastAttempt,omitempty"`

	// AttemptCount is the number of failed attempts since the last completed census
	AttemptCount int `json:"attemptCount,omitempty"`

	// LastRunTime is the finish time of the last completed census
	LastRunTime *time.Time `json:"lastRunTime,omitempty"`

	// LastRunID identifies the last completed census
	LastRunID string `json:"lastRunId,omitempty"`

	// Schedule is the configured interval between runs (e.g. "15m")
	Schedule string `json:"schedule,omitempty"`
}

// Copy returns a deep copy of s
func (s *RunStatus) Copy() *RunStatus {
	if s == nil {
		return nil
	}
	out := *s
	if s.LastAttempt != nil {
		t := *s.LastAttempt
		out.LastAttempt = &t
	}
	if s.LastRunTime != nil {
		t := *s.LastRunTime
		out.LastRunTime = &t
	}
	return &out
}
