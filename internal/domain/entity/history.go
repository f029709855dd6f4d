package entity

import "time"

// StatusHistory is the audit trail of persisted status transitions
type StatusHistory struct {
	ID             int64     `json:"id"`
	ApplicationID  int64     `json:"application_id"`
	CorrelationID  string    `json:"correlation_id"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	Event          string    `json:"event"`
	Timestamp      time.Time `json:"timestamp"`
}
