package models

import "time"

type PaymentStatus string

const (
	StatusPending  PaymentStatus = "PENDING"
	StatusApproved PaymentStatus = "APPROVED"
	StatusExpired  PaymentStatus = "EXPIRED"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusExpired:
		return true
	default:
		return false
	}
}

// CanTransitionTo enforces the monotonic lifecycle: PENDING may move to
// APPROVED or EXPIRED, both of which are terminal.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	return s == StatusPending && (next == StatusApproved || next == StatusExpired)
}

type PaymentItem struct {
	Title     string `json:"title"`
	UnitPrice int    `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	Tangible  bool   `json:"tangible"`
}

type CustomerDocument struct {
	Number string `json:"number"`
	Type   string `json:"type"`
}

type Customer struct {
	Name     string           `json:"name"`
	Email    string           `json:"email"`
	Phone    string           `json:"phone,omitempty"`
	Document CustomerDocument `json:"document"`
}

// PaymentRequest is the canonical charge request, amounts in centavos.
type PaymentRequest struct {
	Currency string        `json:"currency"`
	Amount   int           `json:"amount"`
	Items    []PaymentItem `json:"items"`
	Customer Customer      `json:"customer"`
}

// GatewayPaymentData is what a gateway client receives: the canonical request
// plus the internal id and the expiration chosen by the orchestrator.
type GatewayPaymentData struct {
	PaymentRequest
	ID             string
	ExpirationDate time.Time
}

// GatewayPaymentResult is immutable once returned by a gateway.
type GatewayPaymentResult struct {
	Qrcode           string    `json:"qrcode"`
	GatewayPaymentID string    `json:"gatewayPaymentId"`
	ExpirationDate   time.Time `json:"expirationDate"`
	Gateway          string    `json:"gateway"`
}

type GatewayPaymentStatus struct {
	Status           PaymentStatus `json:"status"`
	Gateway          string        `json:"gateway"`
	GatewayPaymentID string        `json:"gatewayPaymentId"`
	Qrcode           string        `json:"qrcode,omitempty"`
}

type PaymentResponse struct {
	ID             string        `json:"id"`
	Qrcode         string        `json:"qrcode"`
	ExpirationDate time.Time     `json:"expirationDate"`
	Status         PaymentStatus `json:"status"`
}

// StoredPayment is owned by the payment store; nothing else holds a writable
// reference. Status is the only mutable field.
type StoredPayment struct {
	ID           string               `json:"id"`
	Gateway      string               `json:"gateway"`
	OriginalData PaymentRequest       `json:"originalData"`
	Result       GatewayPaymentResult `json:"result"`
	CreatedAt    time.Time            `json:"createdAt"`
	Status       PaymentStatus        `json:"status"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
