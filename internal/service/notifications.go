package service

import (
	"context"
	"fmt"

	"alumhub/internal/models"
	"alumhub/internal/repository"
)

type NotificationService struct {
	logRepo *repository.LogRepository
}

func NewNotificationService(logRepo *repository.LogRepository) *NotificationService {
	return &NotificationService{logRepo: logRepo}
}

func (s *NotificationService) List(ctx context.Context, userID int64) ([]models.Notification, error) {
	notifications, err := s.logRepo.ListNotifications(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (s *NotificationService) Create(ctx context.Context, notification *models.Notification) error {
	return s.logRepo.CreateNotification(ctx, notification)
}
