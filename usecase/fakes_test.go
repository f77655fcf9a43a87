package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"safeher/apperrors"
	"safeher/model"
	"safeher/services"
)

type memSessions struct {
	mu       sync.Mutex
	byID     map[string]*model.Session
	updates  int
	failFind error
}

func newMemSessions() *memSessions {
	return &memSessions{byID: make(map[string]*model.Session)}
}

func (m *memSessions) put(s *model.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.byID[s.ID] = &cp
}

func (m *memSessions) get(id string) *model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *m.byID[id]
	return &cp
}

func (m *memSessions) Create(_ context.Context, s *model.Session) error {
	m.put(s)
	return nil
}

func (m *memSessions) FindByID(_ context.Context, id string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFind != nil {
		return nil, m.failFind
	}
	s, ok := m.byID[id]
	if !ok {
		return nil, apperrors.NotFound("session not found")
	}
	cp := *s
	return &cp, nil
}

func (m *memSessions) FindActiveByUser(_ context.Context, userID string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.byID {
		if s.UserID == userID && s.Status == model.SessionActive {
			cp := *s
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("no active session")
}

func (m *memSessions) ListByUser(_ context.Context, userID string, page, limit int) ([]model.Session, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Session
	for _, s := range m.byID {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	total := int64(len(out))
	start := (page - 1) * limit
	if start > len(out) {
		start = len(out)
	}
	end := start + limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (m *memSessions) activeWhere(pred func(time.Time) bool) []model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Session
	for _, s := range m.byID {
		if s.Status == model.SessionActive && pred(s.ScheduledEndTime) {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memSessions) FindActiveWithDeadlineBefore(_ context.Context, cutoff time.Time) ([]model.Session, error) {
	return m.activeWhere(func(t time.Time) bool { return !t.After(cutoff) }), nil
}

func (m *memSessions) FindActiveWithDeadlineAfter(_ context.Context, cutoff time.Time) ([]model.Session, error) {
	return m.activeWhere(func(t time.Time) bool { return t.After(cutoff) }), nil
}

func (m *memSessions) UpdateStatus(_ context.Context, id string, from model.SessionStatus, upd model.StatusUpdate) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok || s.Status != from {
		return false, nil
	}
	m.updates++
	s.Status = upd.Status
	s.EndReason = upd.EndReason
	s.ActualEndTime = upd.ActualEndTime
	s.AlertTriggered = upd.AlertTriggered
	s.AlertReason = upd.AlertReason
	s.AlertTime = upd.AlertTime
	return true, nil
}

func (m *memSessions) UpdateLocation(_ context.Context, id string, loc model.Location) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok || s.Status != model.SessionActive {
		return false, nil
	}
	l := loc
	s.LastKnown = &l
	s.LocationHistory = append(s.LocationHistory, loc)
	if len(s.LocationHistory) > model.MaxLocationHistory {
		s.LocationHistory = s.LocationHistory[len(s.LocationHistory)-model.MaxLocationHistory:]
	}
	return true, nil
}

type memContacts struct {
	mu   sync.Mutex
	list []*model.Contact
}

func (m *memContacts) Create(_ context.Context, c *model.Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.list = append(m.list, &cp)
	return nil
}

func (m *memContacts) ListActive(_ context.Context, userID string) ([]model.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Contact
	for _, c := range m.list {
		if c.UserID == userID && c.IsActive {
			out = append(out, *c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsPrimary != out[j].IsPrimary {
			return out[i].IsPrimary
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *memContacts) find(userID, id string) *model.Contact {
	for _, c := range m.list {
		if c.UserID == userID && c.ID == id && c.IsActive {
			return c
		}
	}
	return nil
}

func (m *memContacts) FindByID(_ context.Context, userID, id string) (*model.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.find(userID, id)
	if c == nil {
		return nil, apperrors.NotFound("contact not found")
	}
	cp := *c
	return &cp, nil
}

func (m *memContacts) CountActive(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, c := range m.list {
		if c.UserID == userID && c.IsActive {
			n++
		}
	}
	return n, nil
}

func (m *memContacts) PhoneHashExists(_ context.Context, userID, hash, excludeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.list {
		if c.UserID == userID && c.IsActive && c.PhoneHash == hash && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memContacts) Update(_ context.Context, userID, id string, upd model.ContactUpdate) (*model.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.find(userID, id)
	if c == nil {
		return nil, apperrors.NotFound("contact not found")
	}
	if upd.Name != nil {
		c.Name = *upd.Name
	}
	if upd.Relationship != nil {
		c.Relationship = *upd.Relationship
	}
	if upd.PhoneNumber != nil {
		c.PhoneNumber = *upd.PhoneNumber
	}
	if upd.PhoneHash != nil {
		c.PhoneHash = *upd.PhoneHash
	}
	if upd.Email != nil {
		c.Email = *upd.Email
	}
	if upd.IsPrimary != nil {
		c.IsPrimary = *upd.IsPrimary
	}
	cp := *c
	return &cp, nil
}

func (m *memContacts) ClearPrimary(_ context.Context, userID, keepID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.list {
		if c.UserID == userID && c.ID != keepID {
			c.IsPrimary = false
		}
	}
	return nil
}

func (m *memContacts) SoftDelete(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.find(userID, id)
	if c == nil {
		return apperrors.NotFound("contact not found")
	}
	c.IsActive = false
	return nil
}

func (m *memContacts) SoftDeleteAll(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, c := range m.list {
		if c.UserID == userID && c.IsActive {
			c.IsActive = false
			n++
		}
	}
	return n, nil
}

type memAlerts struct {
	mu        sync.Mutex
	list      []model.Alert
	createErr error
}

func (m *memAlerts) Create(_ context.Context, a *model.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.list = append(m.list, *a)
	return nil
}

func (m *memAlerts) all() []model.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Alert(nil), m.list...)
}

func (m *memAlerts) FindByID(_ context.Context, userID, id string) (*model.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.list {
		if m.list[i].ID == id && m.list[i].UserID == userID {
			a := m.list[i]
			return &a, nil
		}
	}
	return nil, apperrors.NotFound("alert not found")
}

func (m *memAlerts) ListByUser(_ context.Context, userID string, page, limit int) ([]model.Alert, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Alert
	for _, a := range m.list {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	total := int64(len(out))
	if len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

func (m *memAlerts) ListBySession(_ context.Context, userID, sessionID string) ([]model.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Alert
	for _, a := range m.list {
		if a.UserID == userID && a.SessionID == sessionID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAlerts) Delete(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.list {
		if m.list[i].ID == id && m.list[i].UserID == userID {
			m.list = append(m.list[:i], m.list[i+1:]...)
			return nil
		}
	}
	return apperrors.NotFound("alert not found")
}

func (m *memAlerts) DeleteAll(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.list[:0]
	var n int64
	for _, a := range m.list {
		if a.UserID == userID {
			n++
			continue
		}
		kept = append(kept, a)
	}
	m.list = kept
	return n, nil
}

func (m *memAlerts) Stats(_ context.Context, userID string) (*model.AlertStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := &model.AlertStats{ByReason: map[string]int64{}, ByStatus: map[string]int64{}}
	for _, a := range m.list {
		if a.UserID != userID {
			continue
		}
		st.Total++
		st.ByReason[string(a.TriggerReason)]++
		st.ByStatus[string(a.Status)]++
	}
	return st, nil
}

type memUsers struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newMemUsers(users ...*model.User) *memUsers {
	m := &memUsers{users: make(map[string]*model.User)}
	for _, u := range users {
		m.users[u.UserID] = u
	}
	return m
}

func (m *memUsers) Create(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.users[u.UserID] = &cp
	return nil
}

func (m *memUsers) FindByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, apperrors.NotFound("user not found")
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("user not found")
}

func (m *memUsers) FindByEmailOrPhone(_ context.Context, email, phone string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) || u.Phone == phone {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("user not found")
}

func (m *memUsers) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		u.LastLogin = at
	}
	return nil
}

// fakeCipher marks ciphertext with an "enc:" prefix; anything else fails.
type fakeCipher struct{}

func (fakeCipher) Encrypt(p string) (string, error) { return "enc:" + p, nil }

func (fakeCipher) Decrypt(c string) (string, error) {
	if !strings.HasPrefix(c, "enc:") {
		return "", apperrors.Encryption(nil, "bad ciphertext")
	}
	return strings.TrimPrefix(c, "enc:"), nil
}

func (fakeCipher) Hash(p string) string { return "h:" + p }

type sentMessage struct {
	To      string
	Subject string
	Body    string
}

type fakeSender struct {
	mu    sync.Mutex
	sent  []sentMessage
	fail  map[string]bool
	unset bool
}

func (f *fakeSender) result(to string) (services.SendResult, error) {
	if f.unset {
		return services.SendResult{Reason: "not configured"}, nil
	}
	if f.fail[to] {
		return services.SendResult{}, errors.New("provider rejected " + to)
	}
	return services.SendResult{OK: true, ProviderID: "id-" + to}, nil
}

func (f *fakeSender) record(m sentMessage) (services.SendResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	res, err := f.result(m.To)
	if err == nil && res.OK {
		f.sent = append(f.sent, m)
	}
	return res, err
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeSMS struct{ fakeSender }

func (f *fakeSMS) Send(_ context.Context, phone, message string) (services.SendResult, error) {
	return f.record(sentMessage{To: phone, Body: message})
}

type fakeEmail struct{ fakeSender }

func (f *fakeEmail) Send(_ context.Context, address, subject, body string) (services.SendResult, error) {
	return f.record(sentMessage{To: address, Subject: subject, Body: body})
}

type recordingScheduler struct {
	mu        sync.Mutex
	scheduled map[string]time.Time
	cancelled []string
}

func newRecordingScheduler() *recordingScheduler {
	return &recordingScheduler{scheduled: make(map[string]time.Time)}
}

func (r *recordingScheduler) ScheduleExpiry(id string, end time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scheduled[id] = end
}

func (r *recordingScheduler) CancelExpiry(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.scheduled, id)
	r.cancelled = append(r.cancelled, id)
}

func (r *recordingScheduler) has(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.scheduled[id]
	return ok
}
