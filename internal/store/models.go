// Package store contains the embedded state store shared with the
// orchestrator application. The provisioning core owns the schema; row
// data is owned by the orchestrator and is never mutated here.
package store

import "time"

// AgentRecord is a row in the agents table.
type AgentRecord struct {
	ID        int64
	Name      string
	Status    string
	CreatedAt time.Time
}

// TaskRecord is a row in the tasks table.
type TaskRecord struct {
	ID              int64
	AgentName       string
	TaskDescription string
	Status          string
	Result          string
	CreatedAt       time.Time
	CompletedAt     *time.Time
}
