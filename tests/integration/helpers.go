package integration

import (
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"alumhub/internal/models"
)

const DefaultAPIBaseURL = "http://localhost:8090"

var uniqueCounter atomic.Int64

// APIBaseURL returns the base URL of the API under test
func APIBaseURL() string {
	if url := os.Getenv("API_BASE_URL"); url != "" {
		return url
	}
	return DefaultAPIBaseURL
}

// AdminCredentials returns the bootstrap admin credentials. The API must run
// with the same ADMIN_EMAIL/ADMIN_PASSWORD so the account exists.
func AdminCredentials() (email, password string) {
	email = os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@alumhub.test"
	}
	password = os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin-secret"
	}
	return email, password
}

// RequireAPI returns a client for the running API, skipping the test when no
// server is reachable
func RequireAPI(t *testing.T) *TestClient {
	client := NewTestClient(APIBaseURL())
	if err := client.HealthCheck(); err != nil {
		t.Skipf("API not reachable at %s: %v", client.BaseURL, err)
	}
	return client
}

// RequireAdmin returns a client authenticated as the bootstrap admin,
// skipping the test when the account is not available
func RequireAdmin(t *testing.T, client *TestClient) *TestClient {
	admin := client.As(AdminCredentials())
	if _, err := admin.MeRaw(); err != nil {
		t.Skipf("Admin account not available (set ADMIN_EMAIL/ADMIN_PASSWORD on the API): %v", err)
	}
	return admin
}

// uniqueSuffix returns a value unique across the test run, for codes and
// emails that collide on reruns against the same database
func uniqueSuffix() string {
	return fmt.Sprintf("%d%03d", time.Now().UnixNano()/int64(time.Millisecond), uniqueCounter.Add(1))
}

// RegisterTestUser registers a fresh member account and returns a client
// authenticated as that account
func RegisterTestUser(t *testing.T, client *TestClient) (*TestClient, *models.RegisterResponse) {
	email := fmt.Sprintf("alumni-%s@example.com", uniqueSuffix())
	password := "integration-pass"

	resp := client.Register(t, models.RegisterRequest{
		Email:          email,
		Password:       password,
		Name:           "Integration Tester",
		GraduationYear: 2006,
	})
	LogTestResult(t, "Registered user %s (id=%d)", email, resp.ID)

	return client.As(email, password), resp
}

// CreateTestEvent creates an active event with one ticket type and returns it
// together with its ticket types
func CreateTestEvent(t *testing.T, admin *TestClient) (*models.Event, []models.TicketType) {
	code := fmt.Sprintf("ITEVT%s", uniqueSuffix())

	event := admin.CreateEvent(t, models.CreateEventRequest{
		Code:      code,
		Title:     "Integration Test Reunion",
		EventDate: time.Now().AddDate(0, 1, 0).Format("2006-01-02"),
		Location:  "Test Hall",
		TicketTypes: []models.TicketTypeInput{
			{Name: "Regular", Price: 75000, Quota: 1000},
		},
	})
	LogTestResult(t, "Created event %s (id=%d)", event.Code, event.ID)

	got, ticketTypes := admin.GetEvent(t, event.ID)
	if len(ticketTypes) == 0 {
		t.Fatalf("Event %d has no ticket types", event.ID)
	}
	return got, ticketTypes
}

// SettlementNotification builds a settled-payment webhook payload for an order
func SettlementNotification(orderID string) models.MidtransNotification {
	return models.MidtransNotification{
		OrderID:           orderID,
		TransactionID:     fmt.Sprintf("txn-%s", uniqueSuffix()),
		TransactionStatus: "settlement",
		PaymentType:       "gopay",
		GrossAmount:       "150000.00",
		StatusCode:        "200",
	}
}

// LogTestStep logs a test step for better debugging
func LogTestStep(t *testing.T, step string, args ...interface{}) {
	t.Logf("🔹 "+step, args...)
}

// LogTestResult logs a test result
func LogTestResult(t *testing.T, result string, args ...interface{}) {
	t.Logf("✅ "+result, args...)
}
