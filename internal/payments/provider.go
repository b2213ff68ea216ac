// Package payments integrates the external payment gateway. The workflow
// only initiates orders and checks their status; settlement confirmation
// arrives out of band and is applied through the mark-paid operation.
package payments

import "context"

type InitiateRequest struct {
	Amount            float64
	Email             string
	Phone             string
	MerchantReference string
	Description       string
}

type InitiateResponse struct {
	OrderTrackingID   string `json:"order_tracking_id"`
	MerchantReference string `json:"merchant_reference"`
	RedirectURL       string `json:"redirect_url"`
	Status            string `json:"status"`
}

type TransactionStatus struct {
	OrderTrackingID string  `json:"order_tracking_id"`
	PaymentMethod   string  `json:"payment_method"`
	Amount          float64 `json:"amount"`
	StatusCode      int     `json:"status_code"`
	Description     string  `json:"description"`
}

type Provider interface {
	InitiatePayment(ctx context.Context, req InitiateRequest) (*InitiateResponse, error)
	GetTransactionStatus(ctx context.Context, orderTrackingID string) (*TransactionStatus, error)
}
