package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	authKeyTTL      = 10 * time.Minute
	eventsListTTL   = 30 * time.Second
	eventsListKey   = "events:list"
	authKeyTemplate = "auth:%s:%s"
)

// ValkeyClient caches Basic Auth lookups and event list responses.
// Every method degrades gracefully; a cache outage never fails a request.
type ValkeyClient struct {
	client *redis.Client
}

type Config struct {
	Addr     string
	Password string
}

func NewValkeyClient(cfg Config) (*ValkeyClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping valkey: %w", err)
	}

	return &ValkeyClient{client: rdb}, nil
}

// GetUserIDByAuth returns the cached user ID for an email + password-hash
// pair, or an error on cache miss.
func (vc *ValkeyClient) GetUserIDByAuth(ctx context.Context, email, passwordHash string) (int64, error) {
	key := fmt.Sprintf(authKeyTemplate, email, passwordHash)
	return vc.client.Get(ctx, key).Int64()
}

// SetUserIDByAuth caches a verified credential pair. bcrypt comparison is
// the expensive part of Basic Auth; this skips it for repeat callers.
func (vc *ValkeyClient) SetUserIDByAuth(ctx context.Context, email, passwordHash string, userID int64) {
	key := fmt.Sprintf(authKeyTemplate, email, passwordHash)
	vc.client.Set(ctx, key, userID, authKeyTTL)
}

// GetEventsListRaw returns the cached event list as raw JSON.
func (vc *ValkeyClient) GetEventsListRaw(ctx context.Context) ([]byte, error) {
	return vc.client.Get(ctx, eventsListKey).Bytes()
}

// SetEventsList caches the event list response.
func (vc *ValkeyClient) SetEventsList(ctx context.Context, response any) {
	payload, err := json.Marshal(response)
	if err != nil {
		return
	}
	vc.client.Set(ctx, eventsListKey, payload, eventsListTTL)
}

// InvalidateEventsList drops the cached event list after a mutation.
func (vc *ValkeyClient) InvalidateEventsList(ctx context.Context) {
	vc.client.Del(ctx, eventsListKey)
}

func (vc *ValkeyClient) Close() error {
	return vc.client.Close()
}
