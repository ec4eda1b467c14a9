package external

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	snapProductionURL = "https://app.midtrans.com/snap/v1/transactions"
	snapSandboxURL    = "https://app.sandbox.midtrans.com/snap/v1/transactions"
)

// MidtransClient creates hosted Snap checkout sessions. Sandbox keys are
// prefixed SB- and route to the sandbox host.
type MidtransClient struct {
	baseURL    string
	serverKey  string
	httpClient *http.Client
}

type MidtransConfig struct {
	ServerKey string
	// BaseURL overrides the Midtrans host, used in tests
	BaseURL string
	Timeout time.Duration
}

type snapTransactionDetails struct {
	OrderID     string `json:"order_id"`
	GrossAmount int64  `json:"gross_amount"`
}

type snapCustomerDetails struct {
	FirstName string `json:"first_name,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type snapRequest struct {
	TransactionDetails snapTransactionDetails `json:"transaction_details"`
	CreditCard         map[string]bool        `json:"credit_card"`
	CustomerDetails    *snapCustomerDetails   `json:"customer_details,omitempty"`
	EnabledPayments    []string               `json:"enabled_payments"`
}

// SnapSession is the checkout session returned by the gateway
type SnapSession struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// Customer holds the best-effort contact details forwarded to the gateway
type Customer struct {
	Name  string
	Email string
	Phone string
}

var enabledPayments = []string{
	"gopay", "shopeepay", "permata_va", "bca_va", "bni_va", "bri_va",
	"echannel", "other_va", "indomaret", "alfamart",
}

func NewMidtransClient(cfg MidtransConfig) *MidtransClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		if strings.HasPrefix(cfg.ServerKey, "SB-") {
			baseURL = snapSandboxURL
		} else {
			baseURL = snapProductionURL
		}
	}

	return &MidtransClient{
		baseURL:   baseURL,
		serverKey: cfg.ServerKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Enabled reports whether a server key is configured. Without one, bookings
// are created with no checkout session.
func (mc *MidtransClient) Enabled() bool {
	return mc.serverKey != ""
}

// CreateTransaction requests a hosted checkout session for an order. The
// booking code is passed as the gateway's order identifier. Any non-2xx
// response means no session is available.
func (mc *MidtransClient) CreateTransaction(ctx context.Context, orderID string, grossAmount int64, customer *Customer) (*SnapSession, error) {
	req := snapRequest{
		TransactionDetails: snapTransactionDetails{
			OrderID:     orderID,
			GrossAmount: grossAmount,
		},
		CreditCard:      map[string]bool{"secure": true},
		EnabledPayments: enabledPayments,
	}
	if customer != nil {
		req.CustomerDetails = &snapCustomerDetails{
			FirstName: customer.Name,
			Email:     customer.Email,
			Phone:     customer.Phone,
		}
	}

	jsonBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, mc.baseURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Basic "+mc.authToken())

	resp, err := mc.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to create snap transaction: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("snap transaction rejected: status %d", resp.StatusCode)
	}

	var session SnapSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if session.Token == "" {
		return nil, fmt.Errorf("snap response missing token")
	}

	return &session, nil
}

// authToken builds the Basic credential: base64(serverKey + ":")
func (mc *MidtransClient) authToken() string {
	return base64.StdEncoding.EncodeToString([]byte(mc.serverKey + ":"))
}
