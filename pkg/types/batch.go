// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// GroupMode selects the dimension documents are grouped by for synthesis.
type GroupMode string

const (
	GroupFramework GroupMode = "framework"
	GroupToolType  GroupMode = "tool_type"
	GroupConcern   GroupMode = "concern"
)

// GroupUncategorized collects documents with no IDs in framework or
// tool-type mode.
const GroupUncategorized = "uncategorized"

// BatchJob is one planned synthesis request covering part or all of a group.
type BatchJob struct {
	// ID is derived from mode, group ID, and sequence number
	// (e.g. "cat_2-3_batch_1").
	ID string `json:"id" yaml:"id"`

	// CategoryID is the group key: a category ID, tool-type ID, or concern ID.
	CategoryID string `json:"category_id" yaml:"category_id"`

	// Mode is the grouping dimension the job was planned under.
	Mode GroupMode `json:"mode" yaml:"mode"`

	// Documents are the member documents in planning order.
	Documents []ExtractedDocument `json:"documents" yaml:"documents"`

	// EstimatedTokens is the member token total plus prompt overhead.
	EstimatedTokens int `json:"estimated_tokens" yaml:"estimated_tokens"`
}

// MemberIDs returns the IDs of the job's documents in order.
func (j BatchJob) MemberIDs() []string {
	ids := make([]string, len(j.Documents))
	for i, d := range j.Documents {
		ids[i] = d.ID
	}
	return ids
}

// JobStatus is the lifecycle state of a submitted synthesis batch.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobSubmitted JobStatus = "submitted"
	JobEnded     JobStatus = "ended"
	JobCollected JobStatus = "collected"
)

// JobState tracks one submitted Message Batch across runs.
type JobState struct {
	// JobID is the provider's batch ID.
	JobID string `json:"job_id" yaml:"job_id"`

	// Status is pending, submitted, ended, or collected.
	Status JobStatus `json:"status" yaml:"status"`

	// RequestCount is the number of requests in the batch.
	RequestCount int `json:"request_count" yaml:"request_count"`

	// CreatedAt is when the batch was submitted.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// MemberIDs are the custom IDs of the batch's requests.
	MemberIDs []string `json:"member_ids" yaml:"member_ids"`

	// RunID identifies the submit invocation.
	RunID string `json:"run_id,omitempty" yaml:"run_id,omitempty"`
}
