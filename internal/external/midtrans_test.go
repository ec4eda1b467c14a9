package external

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTransaction(t *testing.T) {
	var gotAuth string
	var gotBody snapRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(SnapSession{
			Token:       "snap-token-123",
			RedirectURL: "https://app.sandbox.midtrans.com/snap/v4/redirection/snap-token-123",
		})
	}))
	defer srv.Close()

	client := NewMidtransClient(MidtransConfig{
		ServerKey: "SB-Mid-server-abc",
		BaseURL:   srv.URL,
	})

	session, err := client.CreateTransaction(context.Background(), "REUNI26-2026-0001", 150000, &Customer{
		Name:  "Budi",
		Email: "budi@example.com",
		Phone: "+628123456789",
	})
	require.NoError(t, err)

	assert.Equal(t, "snap-token-123", session.Token)
	assert.Contains(t, session.RedirectURL, "snap-token-123")

	expectedAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("SB-Mid-server-abc:"))
	assert.Equal(t, expectedAuth, gotAuth)

	assert.Equal(t, "REUNI26-2026-0001", gotBody.TransactionDetails.OrderID)
	assert.Equal(t, int64(150000), gotBody.TransactionDetails.GrossAmount)
	require.NotNil(t, gotBody.CustomerDetails)
	assert.Equal(t, "Budi", gotBody.CustomerDetails.FirstName)
}

func TestCreateTransactionRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error_messages":["Access denied"]}`))
	}))
	defer srv.Close()

	client := NewMidtransClient(MidtransConfig{ServerKey: "bad-key", BaseURL: srv.URL})

	_, err := client.CreateTransaction(context.Background(), "REUNI26-2026-0002", 50000, nil)
	assert.ErrorContains(t, err, "status 401")
}

func TestCreateTransactionMissingToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewMidtransClient(MidtransConfig{ServerKey: "key", BaseURL: srv.URL})

	_, err := client.CreateTransaction(context.Background(), "REUNI26-2026-0003", 50000, nil)
	assert.ErrorContains(t, err, "missing token")
}

func TestSandboxKeyRouting(t *testing.T) {
	sandbox := NewMidtransClient(MidtransConfig{ServerKey: "SB-Mid-server-abc"})
	assert.Equal(t, snapSandboxURL, sandbox.baseURL)

	production := NewMidtransClient(MidtransConfig{ServerKey: "Mid-server-abc"})
	assert.Equal(t, snapProductionURL, production.baseURL)
}

func TestEnabled(t *testing.T) {
	assert.False(t, NewMidtransClient(MidtransConfig{}).Enabled())
	assert.True(t, NewMidtransClient(MidtransConfig{ServerKey: "key"}).Enabled())
}
