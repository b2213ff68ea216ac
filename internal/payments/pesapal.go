package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"gigwork_backend/internal/config"
	"gigwork_backend/pkg/apperrors"
)

// PesapalClient talks to the Pesapal v3 API. Tokens are short-lived, so
// every call requests one; the IPN registration is cached for the process
// lifetime.
type PesapalClient struct {
	baseURL        string
	consumerKey    string
	consumerSecret string
	callbackURL    string
	httpClient     *http.Client

	mu    sync.Mutex
	ipnID string
}

func NewPesapalClient(cfg config.PaymentsConfig) *PesapalClient {
	return &PesapalClient{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		consumerKey:    cfg.ConsumerKey,
		consumerSecret: cfg.ConsumerSecret,
		callbackURL:    cfg.CallbackURL,
		httpClient:     &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *PesapalClient) InitiatePayment(ctx context.Context, req InitiateRequest) (*InitiateResponse, error) {
	token, err := p.requestToken(ctx)
	if err != nil {
		return nil, err
	}

	ipnID, err := p.registerIPN(ctx, token)
	if err != nil {
		return nil, err
	}

	reference := req.MerchantReference
	if reference == "" {
		reference = "GIG-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
	}
	description := req.Description
	if description == "" {
		description = "Gig payment"
	}

	payload := map[string]any{
		"id":              reference,
		"currency":        "UGX",
		"amount":          req.Amount,
		"description":     description,
		"callback_url":    p.callbackURL,
		"notification_id": ipnID,
		"billing_address": map[string]any{
			"email_address": req.Email,
			"phone_number":  req.Phone,
			"country_code":  "UG",
		},
	}

	var out struct {
		OrderTrackingID string `json:"order_tracking_id"`
		RedirectURL     string `json:"redirect_url"`
		Status          string `json:"status"`
	}
	if err := p.doJSON(ctx, http.MethodPost, "/Transactions/SubmitOrderRequest", token, payload, &out); err != nil {
		return nil, err
	}

	return &InitiateResponse{
		OrderTrackingID:   out.OrderTrackingID,
		MerchantReference: reference,
		RedirectURL:       out.RedirectURL,
		Status:            out.Status,
	}, nil
}

func (p *PesapalClient) GetTransactionStatus(ctx context.Context, orderTrackingID string) (*TransactionStatus, error) {
	token, err := p.requestToken(ctx)
	if err != nil {
		return nil, err
	}

	var out struct {
		PaymentMethod string  `json:"payment_method"`
		Amount        float64 `json:"amount"`
		StatusCode    int     `json:"status_code"`
		Description   string  `json:"description"`
	}
	path := "/Transactions/GetTransactionStatus?orderTrackingId=" + orderTrackingID
	if err := p.doJSON(ctx, http.MethodGet, path, token, nil, &out); err != nil {
		return nil, err
	}

	return &TransactionStatus{
		OrderTrackingID: orderTrackingID,
		PaymentMethod:   out.PaymentMethod,
		Amount:          out.Amount,
		StatusCode:      out.StatusCode,
		Description:     out.Description,
	}, nil
}

func (p *PesapalClient) requestToken(ctx context.Context) (string, error) {
	payload := map[string]string{
		"consumer_key":    p.consumerKey,
		"consumer_secret": p.consumerSecret,
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := p.doJSON(ctx, http.MethodPost, "/Auth/RequestToken", "", payload, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", apperrors.ErrPaymentProviderError.WithDetails("empty token from gateway")
	}
	return out.Token, nil
}

func (p *PesapalClient) registerIPN(ctx context.Context, token string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ipnID != "" {
		return p.ipnID, nil
	}

	payload := map[string]string{
		"url":                   p.callbackURL,
		"ipn_notification_type": "POST",
	}

	var out struct {
		IPNID string `json:"ipn_id"`
	}
	if err := p.doJSON(ctx, http.MethodPost, "/URLSetup/RegisterIPN", token, payload, &out); err != nil {
		return "", err
	}
	if out.IPNID == "" {
		return "", apperrors.ErrPaymentProviderError.WithDetails("gateway returned no IPN id")
	}
	p.ipnID = out.IPNID
	return p.ipnID, nil
}

func (p *PesapalClient) doJSON(ctx context.Context, method, path, token string, payload, out any) error {
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return apperrors.ErrPaymentProviderError.WithError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return apperrors.ErrPaymentProviderError.WithDetails(
			fmt.Sprintf("gateway responded %d on %s", resp.StatusCode, path))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
