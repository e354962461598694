package interfaces

import (
	"context"
	"time"
)

// EventType identifies an application event
type EventType string

const (
	// EventAnalysisStarted fires when an orchestration begins module fan-out
	EventAnalysisStarted EventType = "analysis_started"
	// EventModuleSettled fires once per module when it succeeds or fails terminally
	EventModuleSettled EventType = "analysis_module_settled"
	// EventAnalysisCompleted fires after synthesis and persistence succeed
	EventAnalysisCompleted EventType = "analysis_completed"
	// EventAnalysisFailed fires when the orchestration aborts
	EventAnalysisFailed EventType = "analysis_failed"
	// EventRecordsPruned fires after a retention sweep deletes records
	EventRecordsPruned EventType = "records_pruned"
)

// Event is a published application event
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}

// EventHandler processes a published event
type EventHandler func(ctx context.Context, event Event)

// EventService provides in-process pub/sub for application events
type EventService interface {
	Subscribe(eventType EventType, handler EventHandler) error
	Publish(ctx context.Context, event Event) error
}
