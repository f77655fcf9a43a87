package usecase

import (
	"context"
	"sync"
	"time"

	"safeher/model"
	"safeher/scheduler"
	"safeher/utils"

	"go.uber.org/zap"
)

type expiryTimer struct {
	timer    scheduler.Timer
	deadline time.Time
}

// Watchdog fires a timer_expired alert for every active session that is not
// stopped before its deadline plus the grace period. Pending timers live in
// memory only; Reconcile rebuilds them from the store.
type Watchdog struct {
	sessions   SessionStore
	dispatcher AlertDispatcher
	clock      scheduler.Clock
	grace      time.Duration
	lg         *zap.Logger

	mu       sync.Mutex
	timers   map[string]*expiryTimer
	inflight map[string]struct{}
	stopped  bool
}

func NewWatchdog(sessions SessionStore, dispatcher AlertDispatcher, clock scheduler.Clock, grace time.Duration, lg *zap.Logger) *Watchdog {
	if clock == nil {
		clock = scheduler.NewRealClock()
	}
	return &Watchdog{
		sessions:   sessions,
		dispatcher: dispatcher,
		clock:      clock,
		grace:      grace,
		lg:         lg,
		timers:     make(map[string]*expiryTimer),
		inflight:   make(map[string]struct{}),
	}
}

// ScheduleExpiry arranges Expire at scheduledEnd + grace, replacing any timer
// already pending for the session.
func (w *Watchdog) ScheduleExpiry(sessionID string, scheduledEnd time.Time) {
	fireAt := scheduledEnd.Add(w.grace)
	delay := fireAt.Sub(w.clock.Now())

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}

	if old, ok := w.timers[sessionID]; ok {
		if old.deadline.Equal(scheduledEnd) {
			return
		}
		old.timer.Stop()
		delete(w.timers, sessionID)
	}

	if delay <= 0 {
		w.lg.Debug("Expiry already due, leaving it to reconcile", zap.String("session_id", sessionID))
		utils.SetPendingTimers(len(w.timers))
		return
	}

	handle := &expiryTimer{deadline: scheduledEnd}
	handle.timer = w.clock.AfterFunc(delay, func() { w.fire(sessionID, handle) })
	w.timers[sessionID] = handle
	utils.SetPendingTimers(len(w.timers))

	w.lg.Debug("Scheduled expiry",
		zap.String("session_id", sessionID),
		zap.Time("fire_at", fireAt),
		zap.Duration("delay", delay))
}

// CancelExpiry drops the pending timer, if any.
func (w *Watchdog) CancelExpiry(sessionID string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[sessionID]; ok {
		t.timer.Stop()
		delete(w.timers, sessionID)
		utils.SetPendingTimers(len(w.timers))
		w.lg.Debug("Cancelled expiry", zap.String("session_id", sessionID))
	}
}

func (w *Watchdog) fire(sessionID string, handle *expiryTimer) {
	w.mu.Lock()
	if w.timers[sessionID] != handle {
		w.mu.Unlock()
		return
	}
	delete(w.timers, sessionID)
	utils.SetPendingTimers(len(w.timers))
	w.mu.Unlock()

	_ = w.Expire(context.Background(), sessionID)
}

// Expire alerts for the session if it is still active. Concurrent calls for
// the same id collapse into one, and a session that already left active is
// left alone. Errors are logged and returned but never panic.
func (w *Watchdog) Expire(ctx context.Context, sessionID string) error {
	w.mu.Lock()
	if _, busy := w.inflight[sessionID]; busy {
		w.mu.Unlock()
		utils.TrackExpiration("skipped")
		return nil
	}
	w.inflight[sessionID] = struct{}{}
	if t, ok := w.timers[sessionID]; ok {
		t.timer.Stop()
		delete(w.timers, sessionID)
		utils.SetPendingTimers(len(w.timers))
	}
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		delete(w.inflight, sessionID)
		w.mu.Unlock()
	}()

	session, err := w.sessions.FindByID(ctx, sessionID)
	if err != nil {
		w.lg.Error("Expire: failed to load session", zap.String("session_id", sessionID), zap.Error(err))
		utils.TrackExpiration("failed")
		return err
	}
	if session.Status != model.SessionActive {
		w.lg.Info("Session not active, skipping alert",
			zap.String("session_id", sessionID),
			zap.String("status", string(session.Status)))
		utils.TrackExpiration("skipped")
		return nil
	}

	w.lg.Warn("Timer expired, sending alert", zap.String("session_id", sessionID))

	alert, err := w.dispatcher.Dispatch(ctx, sessionID, model.ReasonTimerExpired, nil)
	if alert == nil {
		// Nothing went out; the session stays active for the next reconcile.
		w.lg.Error("Expire: dispatch failed", zap.String("session_id", sessionID), zap.Error(err))
		utils.TrackExpiration("failed")
		return err
	}
	if err != nil {
		w.lg.Error("Expire: alert sent but not recorded", zap.String("session_id", sessionID), zap.Error(err))
	}

	now := w.clock.Now()
	changed, uerr := w.sessions.UpdateStatus(ctx, sessionID, model.SessionActive, model.StatusUpdate{
		Status:         model.SessionAlertTriggered,
		EndReason:      model.EndTimerExpired,
		ActualEndTime:  &now,
		AlertTriggered: true,
		AlertReason:    model.ReasonTimerExpired,
		AlertTime:      &now,
	})
	if uerr != nil {
		w.lg.Error("Expire: failed to mark session", zap.String("session_id", sessionID), zap.Error(uerr))
		utils.TrackExpiration("failed")
		return uerr
	}
	if !changed {
		w.lg.Info("Session ended while alert was sending", zap.String("session_id", sessionID))
	}

	utils.TrackExpiration("alerted")
	return err
}

// Reconcile expires every active session already past deadline + grace and
// schedules timers for the rest.
func (w *Watchdog) Reconcile(ctx context.Context) error {
	cutoff := w.clock.Now().Add(-w.grace)

	expired, err := w.sessions.FindActiveWithDeadlineBefore(ctx, cutoff)
	if err != nil {
		w.lg.Error("Reconcile: failed to query expired sessions", zap.Error(err))
		utils.TrackError("watchdog", "reconcile_query_failed")
		return err
	}
	for _, s := range expired {
		w.lg.Warn("Found expired session", zap.String("session_id", s.ID), zap.Time("scheduled_end", s.ScheduledEndTime))
		_ = w.Expire(ctx, s.ID)
	}

	pending, err := w.sessions.FindActiveWithDeadlineAfter(ctx, cutoff)
	if err != nil {
		w.lg.Error("Reconcile: failed to query active sessions", zap.Error(err))
		utils.TrackError("watchdog", "reconcile_query_failed")
		return err
	}
	for _, s := range pending {
		w.ScheduleExpiry(s.ID, s.ScheduledEndTime)
	}

	if len(expired) > 0 || len(pending) > 0 {
		w.lg.Info("Reconciled sessions", zap.Int("expired", len(expired)), zap.Int("scheduled", len(pending)))
	}
	return nil
}

func (w *Watchdog) ReconcileJob() scheduler.Job {
	return scheduler.FuncJob(func(ctx context.Context) {
		_ = w.Reconcile(ctx)
	})
}

func (w *Watchdog) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.timers)
}

func (w *Watchdog) HasPending(sessionID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.timers[sessionID]
	return ok
}

// Stop cancels every pending timer. Later ScheduleExpiry calls are ignored.
func (w *Watchdog) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for id, t := range w.timers {
		t.timer.Stop()
		delete(w.timers, id)
	}
	w.stopped = true
	utils.SetPendingTimers(0)
}
