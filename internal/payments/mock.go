package payments

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MockProvider is used for tests and local development.
type MockProvider struct {
	mu            sync.Mutex
	InitiateCalls []InitiateRequest
	FailInitiate  error
}

// Calls returns a snapshot; initiation may run on a background goroutine.
func (m *MockProvider) Calls() []InitiateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]InitiateRequest(nil), m.InitiateCalls...)
}

func (m *MockProvider) InitiatePayment(_ context.Context, req InitiateRequest) (*InitiateResponse, error) {
	m.mu.Lock()
	m.InitiateCalls = append(m.InitiateCalls, req)
	m.mu.Unlock()
	if m.FailInitiate != nil {
		return nil, m.FailInitiate
	}
	return &InitiateResponse{
		OrderTrackingID:   uuid.NewString(),
		MerchantReference: req.MerchantReference,
		RedirectURL:       "https://pay.example/redirect",
		Status:            "200",
	}, nil
}

func (m *MockProvider) GetTransactionStatus(_ context.Context, orderTrackingID string) (*TransactionStatus, error) {
	return &TransactionStatus{OrderTrackingID: orderTrackingID, StatusCode: 1, Description: "COMPLETED"}, nil
}
