package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ProviderConfig holds the payment provider connection settings.
type ProviderConfig struct {
	AccessToken string        `env:"MP_ACCESS_TOKEN,required"`                          // AccessToken authenticates every provider API call.
	BaseURL     string        `env:"MP_BASE_URL" envDefault:"https://api.mercadopago.com"` // BaseURL of the provider API.
	Timeout     time.Duration `env:"MP_HTTP_TIMEOUT" envDefault:"10s"`                   // Timeout bounds a single lookup.
}

// MercadoPagoClient implements Provider against the Mercado Pago REST API.
type MercadoPagoClient struct {
	baseURL string
	token   string
	httpc   *http.Client
}

// NewMercadoPagoClient creates a provider client from the given config.
func NewMercadoPagoClient(cfg ProviderConfig) *MercadoPagoClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &MercadoPagoClient{
		baseURL: cfg.BaseURL,
		token:   cfg.AccessToken,
		httpc:   &http.Client{Timeout: timeout},
	}
}

// preapprovalResp mirrors the subscription object. The payer email lives at
// the top level here, unlike payments.
type preapprovalResp struct {
	ID                string `json:"id"`
	Status            string `json:"status"`
	ExternalReference string `json:"external_reference"`
	PayerEmail        string `json:"payer_email"`
	Reason            string `json:"reason"`
	AutoRecurring     struct {
		TransactionAmount float64 `json:"transaction_amount"`
	} `json:"auto_recurring"`
}

// paymentResp mirrors the payment object; payment ids are numeric and the
// payer email is nested.
type paymentResp struct {
	ID                json.Number `json:"id"`
	Status            string      `json:"status"`
	ExternalReference string      `json:"external_reference"`
	Description       string      `json:"description"`
	TransactionAmount float64     `json:"transaction_amount"`
	Payer             Payer       `json:"payer"`
}

func (c *MercadoPagoClient) GetSubscription(ctx context.Context, id string) (*Record, error) {
	var resp preapprovalResp
	if err := c.get(ctx, "/preapproval/"+id, &resp); err != nil {
		return nil, err
	}
	return &Record{
		ID:                resp.ID,
		Kind:              KindSubscription,
		Status:            resp.Status,
		ExternalReference: resp.ExternalReference,
		PayerEmail:        resp.PayerEmail,
		Reason:            resp.Reason,
		Amount:            resp.AutoRecurring.TransactionAmount,
	}, nil
}

func (c *MercadoPagoClient) GetPayment(ctx context.Context, id string) (*Record, error) {
	var resp paymentResp
	if err := c.get(ctx, "/v1/payments/"+id, &resp); err != nil {
		return nil, err
	}
	return &Record{
		ID:                resp.ID.String(),
		Kind:              KindPayment,
		Status:            resp.Status,
		ExternalReference: resp.ExternalReference,
		Payer:             resp.Payer,
		Reason:            resp.Description,
		Amount:            resp.TransactionAmount,
	}, nil
}

func (c *MercadoPagoClient) get(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return errors.Join(ErrProviderLookup, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return errors.Join(ErrProviderLookup, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return errors.Join(ErrProviderLookup, fmt.Errorf("provider returned http %d for %s", resp.StatusCode, path))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return errors.Join(ErrProviderLookup, err)
	}
	return nil
}

var _ Provider = (*MercadoPagoClient)(nil)
