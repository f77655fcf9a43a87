package usecase

import (
	"context"

	"safeher/model"
)

const defaultAlertPageSize = 50

type AlertService struct {
	Alerts AlertStore
}

func NewAlertService(alerts AlertStore) *AlertService {
	return &AlertService{Alerts: alerts}
}

func (s *AlertService) List(ctx context.Context, userID string, page, limit int) ([]model.Alert, int64, error) {
	page, limit = NormalizePage(page, limit, defaultAlertPageSize)
	return s.Alerts.ListByUser(ctx, userID, page, limit)
}

func (s *AlertService) ListBySession(ctx context.Context, userID, sessionID string) ([]model.Alert, error) {
	alerts, err := s.Alerts.ListBySession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if alerts == nil {
		alerts = []model.Alert{}
	}
	return alerts, nil
}

func (s *AlertService) Get(ctx context.Context, userID, id string) (*model.Alert, error) {
	return s.Alerts.FindByID(ctx, userID, id)
}

func (s *AlertService) Delete(ctx context.Context, userID, id string) error {
	return s.Alerts.Delete(ctx, userID, id)
}

func (s *AlertService) DeleteAll(ctx context.Context, userID string) (int64, error) {
	return s.Alerts.DeleteAll(ctx, userID)
}

func (s *AlertService) Stats(ctx context.Context, userID string) (*model.AlertStats, error) {
	return s.Alerts.Stats(ctx, userID)
}
