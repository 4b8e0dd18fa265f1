package models

import "time"

const PaymentStatusUpdatedTopic = "payments.status.updated"

// PaymentStatusEvent mirrors a normalized webhook notification to the event
// bus so other services can react without consuming provider callbacks.
type PaymentStatusEvent struct {
	PaymentID  string        `json:"payment_id"`
	Gateway    string        `json:"gateway"`
	Status     string        `json:"status"`
	Canonical  PaymentStatus `json:"canonical_status,omitempty"`
	ReceivedAt time.Time     `json:"received_at"`
}
