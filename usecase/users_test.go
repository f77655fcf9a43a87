package usecase

import (
	"context"
	"testing"
	"time"

	"safeher/apperrors"
	"safeher/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubTokens struct{ n int }

func (s *stubTokens) GenerateJWT(userID string) (string, time.Time, error) {
	s.n++
	return "token-" + userID, t0.Add(time.Hour), nil
}

type memBlacklist struct{ tokens map[string]time.Time }

func (m *memBlacklist) Blacklist(_ context.Context, token string, exp time.Time) error {
	m.tokens[token] = exp
	return nil
}

func (m *memBlacklist) IsBlacklisted(_ context.Context, token string) bool {
	_, ok := m.tokens[token]
	return ok
}

func newUserService(h *harness) (*UserService, *stubTokens) {
	tokens := &stubTokens{}
	return NewUserService(h.users, tokens, nil, h.clock, zap.NewNop()), tokens
}

func TestRegisterAndLogin(t *testing.T) {
	h := newHarness(t)
	svc, tokens := newUserService(h)

	res, err := svc.Register(context.Background(), model.RegisterRequest{
		Name: "Priya", Email: "Priya@Example.com", Password: "s3cret-pass", Phone: "+91 98765 43210",
	})
	require.NoError(t, err)
	assert.Equal(t, "priya@example.com", res.User.Email)
	assert.Equal(t, "919876543210", res.User.Phone)
	assert.NotEqual(t, "s3cret-pass", res.User.Password)
	assert.Equal(t, "token-"+res.User.UserID, res.Token)

	login, err := svc.Login(context.Background(), model.LoginRequest{Email: "priya@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, res.User.UserID, login.User.UserID)
	assert.Equal(t, 2, tokens.n)

	me, err := svc.Me(context.Background(), res.User.UserID)
	require.NoError(t, err)
	assert.Equal(t, t0, me.LastLogin)
}

func TestRegisterDuplicate(t *testing.T) {
	h := newHarness(t)
	svc, _ := newUserService(h)

	_, err := svc.Register(context.Background(), model.RegisterRequest{
		Name: "Dup", Email: "asha@example.com", Password: "password1", Phone: "9000000000",
	})
	assert.True(t, apperrors.Is(err, apperrors.KindConflict))
}

func TestRegisterShortPassword(t *testing.T) {
	h := newHarness(t)
	svc, _ := newUserService(h)

	_, err := svc.Register(context.Background(), model.RegisterRequest{
		Name: "Short", Email: "s@example.com", Password: "abc", Phone: "9000000000",
	})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestLoginFailures(t *testing.T) {
	h := newHarness(t)
	svc, _ := newUserService(h)

	_, err := svc.Register(context.Background(), model.RegisterRequest{
		Name: "Meera", Email: "meera@example.com", Password: "correct-horse", Phone: "9111111111",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), model.LoginRequest{Email: "meera@example.com", Password: "wrong-horse"})
	assert.True(t, apperrors.Is(err, apperrors.KindUnauthorized))

	_, err = svc.Login(context.Background(), model.LoginRequest{Email: "nobody@example.com", Password: "whatever1"})
	assert.True(t, apperrors.Is(err, apperrors.KindUnauthorized))

	u, _ := h.users.FindByEmail(context.Background(), "meera@example.com")
	h.users.users[u.UserID].IsActive = false
	_, err = svc.Login(context.Background(), model.LoginRequest{Email: "meera@example.com", Password: "correct-horse"})
	assert.ErrorContains(t, err, "deactivated")
}

func TestLogoutBlacklists(t *testing.T) {
	h := newHarness(t)
	bl := &memBlacklist{tokens: map[string]time.Time{}}
	svc := NewUserService(h.users, &stubTokens{}, bl, h.clock, zap.NewNop())

	require.NoError(t, svc.Logout(context.Background(), "tok", t0.Add(time.Hour)))
	assert.True(t, bl.IsBlacklisted(context.Background(), "tok"))
}

func TestAlertService(t *testing.T) {
	h := newHarness(t)
	h.addSession("s1", 10)
	_, err := h.disp.Dispatch(context.Background(), "s1", model.ReasonManual, nil)
	require.NoError(t, err)
	_, err = h.disp.Dispatch(context.Background(), "s1", model.ReasonPanicButton, nil)
	require.NoError(t, err)

	svc := NewAlertService(h.alerts)

	list, total, err := svc.List(context.Background(), "u1", 1, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, list, 2)

	bySession, err := svc.ListBySession(context.Background(), "u1", "s1")
	require.NoError(t, err)
	assert.Len(t, bySession, 2)
	none, err := svc.ListBySession(context.Background(), "u2", "s1")
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = svc.Get(context.Background(), "someone-else", list[0].ID)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	stats, err := svc.Stats(context.Background(), "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.Total)
	assert.EqualValues(t, 1, stats.ByReason["panic_button"])

	require.NoError(t, svc.Delete(context.Background(), "u1", list[0].ID))
	n, err := svc.DeleteAll(context.Background(), "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
