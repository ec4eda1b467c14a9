package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"alumhub/internal/models"
)

// TestClient provides methods for testing the API
type TestClient struct {
	BaseURL    string
	HTTPClient *http.Client

	email    string
	password string
}

// NewTestClient creates a new unauthenticated test client
func NewTestClient(baseURL string) *TestClient {
	return &TestClient{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// As returns a client sending the given basic-auth credentials
func (c *TestClient) As(email, password string) *TestClient {
	return &TestClient{
		BaseURL:    c.BaseURL,
		HTTPClient: c.HTTPClient,
		email:      email,
		password:   password,
	}
}

// makeRequest makes an HTTP request and returns the response
func (c *TestClient) makeRequest(t *testing.T, method, path string, body interface{}) *http.Response {
	resp, err := c.doRequest(method, path, body)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	return resp
}

func (c *TestClient) doRequest(method, path string, body interface{}) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reqBody)
	if err != nil {
		return nil, err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.email != "" {
		req.SetBasicAuth(c.email, c.password)
	}

	return c.HTTPClient.Do(req)
}

// Register creates an account
func (c *TestClient) Register(t *testing.T, req models.RegisterRequest) *models.RegisterResponse {
	resp := c.makeRequest(t, "POST", "/api/users/register", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 201, got %d. Body: %s", resp.StatusCode, string(body))
	}

	var out models.RegisterResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("Failed to decode register response: %v", err)
	}
	return &out
}

// CreateEvent creates an event (admin only)
func (c *TestClient) CreateEvent(t *testing.T, req models.CreateEventRequest) *models.Event {
	resp := c.makeRequest(t, "POST", "/api/events", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 201, got %d. Body: %s", resp.StatusCode, string(body))
	}

	var event models.Event
	if err := json.NewDecoder(resp.Body).Decode(&event); err != nil {
		t.Fatalf("Failed to decode event response: %v", err)
	}
	return &event
}

// GetEvent returns an event together with its ticket types
func (c *TestClient) GetEvent(t *testing.T, eventID int64) (*models.Event, []models.TicketType) {
	resp := c.makeRequest(t, "GET", fmt.Sprintf("/api/events/%d", eventID), nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 200, got %d. Body: %s", resp.StatusCode, string(body))
	}

	var out struct {
		Event       models.Event        `json:"event"`
		TicketTypes []models.TicketType `json:"ticket_types"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("Failed to decode event response: %v", err)
	}
	return &out.Event, out.TicketTypes
}

// ListEvents lists all events
func (c *TestClient) ListEvents(t *testing.T) []models.Event {
	resp := c.makeRequest(t, "GET", "/api/events", nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 200, got %d. Body: %s", resp.StatusCode, string(body))
	}

	var events []models.Event
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		t.Fatalf("Failed to decode events response: %v", err)
	}
	return events
}

// CreateBooking creates a new booking
func (c *TestClient) CreateBooking(t *testing.T, req models.CreateBookingRequest) *models.CreateBookingResponse {
	booking, err := c.CreateBookingRaw(req)
	if err != nil {
		t.Fatalf("Failed to create booking: %v", err)
	}
	return booking
}

// CreateBookingRaw creates a booking without failing the test on error.
// Safe to call from concurrent goroutines.
func (c *TestClient) CreateBookingRaw(req models.CreateBookingRequest) (*models.CreateBookingResponse, error) {
	resp, err := c.doRequest("POST", "/api/bookings", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("expected status 201, got %d: %s", resp.StatusCode, string(body))
	}

	var booking models.CreateBookingResponse
	if err := json.NewDecoder(resp.Body).Decode(&booking); err != nil {
		return nil, fmt.Errorf("failed to decode booking response: %w", err)
	}
	return &booking, nil
}

// GetBooking returns a booking by id
func (c *TestClient) GetBooking(t *testing.T, bookingID int64) *models.Booking {
	resp := c.makeRequest(t, "GET", fmt.Sprintf("/api/bookings/%d", bookingID), nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 200, got %d. Body: %s", resp.StatusCode, string(body))
	}

	var booking models.Booking
	if err := json.NewDecoder(resp.Body).Decode(&booking); err != nil {
		t.Fatalf("Failed to decode booking response: %v", err)
	}
	return &booking
}

// ListBookings lists the caller's bookings
func (c *TestClient) ListBookings(t *testing.T) []models.Booking {
	resp := c.makeRequest(t, "GET", "/api/bookings", nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 200, got %d. Body: %s", resp.StatusCode, string(body))
	}

	var bookings []models.Booking
	if err := json.NewDecoder(resp.Body).Decode(&bookings); err != nil {
		t.Fatalf("Failed to decode bookings response: %v", err)
	}
	return bookings
}

// ListBookingTickets lists the tickets of a booking
func (c *TestClient) ListBookingTickets(t *testing.T, bookingID int64) []models.Ticket {
	resp := c.makeRequest(t, "GET", fmt.Sprintf("/api/bookings/%d/tickets", bookingID), nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 200, got %d. Body: %s", resp.StatusCode, string(body))
	}

	var tickets []models.Ticket
	if err := json.NewDecoder(resp.Body).Decode(&tickets); err != nil {
		t.Fatalf("Failed to decode tickets response: %v", err)
	}
	return tickets
}

// SendPaymentWebhook delivers a gateway notification to the webhook endpoint
func (c *TestClient) SendPaymentWebhook(t *testing.T, notification models.MidtransNotification) {
	resp := c.makeRequest(t, "POST", "/api/payments/midtrans/notification", notification)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 200, got %d. Body: %s", resp.StatusCode, string(body))
	}
}

// MeRaw returns the authenticated account without failing the test
func (c *TestClient) MeRaw() (*models.User, error) {
	resp, err := c.doRequest("GET", "/api/users/me", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("expected status 200, got %d: %s", resp.StatusCode, string(body))
	}

	var user models.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user response: %w", err)
	}
	return &user, nil
}

// HealthCheck reports whether the API is reachable and healthy
func (c *TestClient) HealthCheck() error {
	resp, err := c.doRequest("GET", "/health", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed with status %d", resp.StatusCode)
	}
	return nil
}
