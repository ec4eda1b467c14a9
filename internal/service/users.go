package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"alumhub/internal/cache"
	apperrors "alumhub/internal/errors"
	"alumhub/internal/logger"
	"alumhub/internal/messaging"
	"alumhub/internal/models"
	"alumhub/internal/repository"
)

type UserService struct {
	userRepo    *repository.UserRepository
	valkeyCache *cache.ValkeyClient
	natsClient  *messaging.NATSClient
}

func NewUserService(userRepo *repository.UserRepository, valkeyCache *cache.ValkeyClient, natsClient *messaging.NATSClient) *UserService {
	return &UserService{userRepo: userRepo, valkeyCache: valkeyCache, natsClient: natsClient}
}

// Register creates an account and assigns its registration numbers. The
// global number and the cohort number (when a graduation year is given) come
// from the same transaction as the user row, so a failed insert never burns
// a number.
func (s *UserService) Register(ctx context.Context, req *models.RegisterRequest) (*models.RegisterResponse, error) {
	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: email already registered", apperrors.ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:          req.Email,
		PasswordHash:   string(hash),
		Name:           req.Name,
		Phone:          req.Phone,
		Role:           "member",
		GraduationYear: req.GraduationYear,
		IsActive:       true,
	}

	if err := s.userRepo.CreateWithSequences(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	registered := models.UserRegisteredEvent{
		UserID:         user.ID,
		GraduationYear: user.GraduationYear,
		Timestamp:      time.Now(),
	}
	if user.RegNoGlobal != nil {
		registered.RegNoGlobal = *user.RegNoGlobal
	}
	if err := s.natsClient.Publish(models.EventUserRegistered, registered); err != nil {
		logger.WithContext(ctx).Error("Failed to publish user registered event",
			"error", err, "user_id", user.ID)
	}

	resp := &models.RegisterResponse{ID: user.ID}
	if user.RegNoGlobal != nil {
		resp.RegNoGlobal = *user.RegNoGlobal
	}
	resp.RegNoCohort = user.RegNoCohort
	return resp, nil
}

// EnsureAdmin guarantees an administrator account exists for the given
// credentials, creating or promoting it as needed. Run at startup.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to look up admin account: %w", err)
	}

	if user == nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash admin password: %w", err)
		}
		admin := &models.User{
			Email:        email,
			PasswordHash: string(hash),
			Name:         "Administrator",
			Role:         "admin",
			IsActive:     true,
		}
		if err := s.userRepo.CreateWithSequences(ctx, admin); err != nil {
			return fmt.Errorf("failed to create admin account: %w", err)
		}
		return nil
	}

	if user.Role != "admin" {
		if err := s.userRepo.SetRole(ctx, user.ID, "admin"); err != nil {
			return fmt.Errorf("failed to promote admin account: %w", err)
		}
	}
	return nil
}

// Authenticate checks email/password and returns the user. Verified
// credentials are cached briefly so hot clients skip the bcrypt compare.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	cacheKey := credentialDigest(password)

	if s.valkeyCache != nil {
		if userID, err := s.valkeyCache.GetUserIDByAuth(ctx, email, cacheKey); err == nil {
			user, err := s.userRepo.GetByID(ctx, userID)
			if err == nil && user != nil && user.IsActive {
				return user, nil
			}
		}
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, apperrors.ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.ErrUnauthorized
	}

	if s.valkeyCache != nil {
		s.valkeyCache.SetUserIDByAuth(ctx, email, cacheKey, user.ID)
	}

	return user, nil
}

// credentialDigest hashes a password for use in a cache key, so plaintext
// never reaches the cache.
func credentialDigest(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Get returns a user by id
func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %d", apperrors.ErrNotFound, id)
	}
	return user, nil
}
