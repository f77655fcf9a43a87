package usecase

import (
	"context"
	"strings"

	"safeher/apperrors"
	"safeher/dto"
	"safeher/model"
	"safeher/scheduler"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SessionService struct {
	Sessions   SessionStore
	Watchdog   ExpiryScheduler
	Dispatcher AlertDispatcher
	Clock      scheduler.Clock
	lg         *zap.Logger
}

func NewSessionService(sessions SessionStore, watchdog ExpiryScheduler, dispatcher AlertDispatcher, clock scheduler.Clock, lg *zap.Logger) *SessionService {
	if clock == nil {
		clock = scheduler.NewRealClock()
	}
	return &SessionService{
		Sessions:   sessions,
		Watchdog:   watchdog,
		Dispatcher: dispatcher,
		Clock:      clock,
		lg:         lg,
	}
}

// Start creates an active session and arms its expiry timer.
func (s *SessionService) Start(ctx context.Context, userID string, req dto.StartSessionRequest) (*model.Session, error) {
	vehicle := model.VehicleType(strings.ToLower(strings.TrimSpace(req.VehicleType)))
	if vehicle == "" {
		vehicle = model.VehicleOther
	}
	if !vehicle.Valid() {
		return nil, apperrors.Validation("invalid vehicle type %q", req.VehicleType)
	}
	if req.DurationMinutes <= 0 || req.DurationMinutes > model.MaxSessionMinutes {
		return nil, apperrors.Validation("duration must be between 1 and %d minutes", model.MaxSessionMinutes)
	}

	now := s.Clock.Now()

	var loc *model.Location
	if req.Location != nil {
		l := req.Location.ToLocation(now)
		if err := l.Validate(); err != nil {
			return nil, apperrors.Validation("%s", err.Error())
		}
		loc = &l
	}

	existing, err := s.Sessions.FindActiveByUser(ctx, userID)
	if err != nil && !apperrors.Is(err, apperrors.KindNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Conflict("an active session already exists")
	}

	session := model.NewSession(uuid.NewString(), userID, vehicle, req.DurationMinutes, now)
	session.VehicleNumber = strings.ToUpper(strings.TrimSpace(req.VehicleNumber))
	session.DriverNotes = strings.TrimSpace(req.DriverNotes)
	if loc != nil {
		session.LastKnown = loc
		session.LocationHistory = []model.Location{*loc}
	}

	if err := s.Sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	s.Watchdog.ScheduleExpiry(session.ID, session.ScheduledEndTime)

	s.lg.Info("Session started",
		zap.String("session_id", session.ID),
		zap.String("user_id", userID),
		zap.Time("scheduled_end", session.ScheduledEndTime))
	return session, nil
}

func (s *SessionService) owned(ctx context.Context, userID, sessionID string) (*model.Session, error) {
	session, err := s.Sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, apperrors.NotFound("session not found")
	}
	return session, nil
}

// Stop ends an active session as completed (default) or cancelled. The
// expiry timer is cancelled before the status changes.
func (s *SessionService) Stop(ctx context.Context, userID, sessionID, status string) (*model.Session, error) {
	target := model.SessionCompleted
	switch model.SessionStatus(status) {
	case "", model.SessionCompleted:
	case model.SessionCancelled:
		target = model.SessionCancelled
	default:
		return nil, apperrors.Validation("status must be completed or cancelled")
	}

	session, err := s.owned(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.SessionActive {
		return nil, apperrors.Validation("session already ended")
	}

	s.Watchdog.CancelExpiry(sessionID)

	now := s.Clock.Now()
	upd := model.StatusUpdate{Status: target, EndReason: model.EndUserStopped, ActualEndTime: &now}
	changed, err := s.Sessions.UpdateStatus(ctx, sessionID, model.SessionActive, upd)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, apperrors.Validation("session already ended")
	}

	session.Status = target
	session.EndReason = model.EndUserStopped
	session.ActualEndTime = &now
	session.UpdatedAt = now

	s.lg.Info("Session stopped", zap.String("session_id", sessionID), zap.String("status", string(target)))
	return session, nil
}

func (s *SessionService) UpdateLocation(ctx context.Context, userID, sessionID string, in dto.LocationInput) (*model.Location, error) {
	loc := in.ToLocation(s.Clock.Now())
	if err := loc.Validate(); err != nil {
		return nil, apperrors.Validation("%s", err.Error())
	}

	session, err := s.owned(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.SessionActive {
		return nil, apperrors.Validation("session already ended")
	}

	ok, err := s.Sessions.UpdateLocation(ctx, sessionID, loc)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.Validation("session already ended")
	}
	return &loc, nil
}

// TriggerAlert raises a user-initiated alert (panic button, keyword, scream).
// On success the session moves to alert_triggered.
func (s *SessionService) TriggerAlert(ctx context.Context, userID, sessionID string, req dto.TriggerAlertRequest, meta *model.AlertMetadata) (*model.Alert, error) {
	reason := model.AlertReason(req.Reason)
	if reason == "" {
		reason = model.ReasonManual
	}
	if !reason.Valid() {
		return nil, apperrors.Validation("invalid alert reason %q", req.Reason)
	}

	var loc *model.Location
	if req.Location != nil {
		l := req.Location.ToLocation(s.Clock.Now())
		if err := l.Validate(); err != nil {
			return nil, apperrors.Validation("%s", err.Error())
		}
		loc = &l
	}

	session, err := s.owned(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.SessionActive {
		return nil, apperrors.Validation("session already ended")
	}

	if loc != nil {
		if _, err := s.Sessions.UpdateLocation(ctx, sessionID, *loc); err != nil {
			s.lg.Warn("Could not record alert location", zap.String("session_id", sessionID), zap.Error(err))
		}
	}

	s.Watchdog.CancelExpiry(sessionID)

	alert, err := s.Dispatcher.DispatchWithMetadata(ctx, sessionID, reason, loc, meta)
	if alert == nil {
		// Nothing was sent, keep the session covered by the watchdog.
		s.Watchdog.ScheduleExpiry(sessionID, session.ScheduledEndTime)
		return nil, err
	}

	now := s.Clock.Now()
	_, uerr := s.Sessions.UpdateStatus(ctx, sessionID, model.SessionActive, model.StatusUpdate{
		Status:         model.SessionAlertTriggered,
		EndReason:      model.EndAlertTriggered,
		ActualEndTime:  &now,
		AlertTriggered: true,
		AlertReason:    reason,
		AlertTime:      &now,
	})
	if uerr != nil {
		s.lg.Error("Failed to mark session after alert", zap.String("session_id", sessionID), zap.Error(uerr))
	}

	return alert, err
}

func (s *SessionService) Get(ctx context.Context, userID, sessionID string) (*model.Session, error) {
	return s.owned(ctx, userID, sessionID)
}

// Active returns the user's active session, or nil when there is none.
func (s *SessionService) Active(ctx context.Context, userID string) (*model.Session, error) {
	session, err := s.Sessions.FindActiveByUser(ctx, userID)
	if apperrors.Is(err, apperrors.KindNotFound) {
		return nil, nil
	}
	return session, err
}

func (s *SessionService) List(ctx context.Context, userID string, page, limit int) ([]model.Session, int64, error) {
	page, limit = NormalizePage(page, limit, 20)
	return s.Sessions.ListByUser(ctx, userID, page, limit)
}

// NormalizePage clamps paging input to page >= 1 and 1 <= limit <= 100.
func NormalizePage(page, limit, def int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = def
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
