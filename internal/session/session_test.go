package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestWithCookies(cookies []*http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range cookies {
		r.AddCookie(ck)
	}
	return r
}

func TestIdentityRoundTrip(t *testing.T) {
	m := NewManager("secret", 30*time.Minute, 20*time.Minute)

	rec := httptest.NewRecorder()
	require.NoError(t, m.SetIdentity(rec, Identity{UserID: "u1", Username: "abc@sample.com", Email: "abc@sample.com"}))

	id, ok := m.Identity(requestWithCookies(rec.Result().Cookies()))
	require.True(t, ok)
	assert.Equal(t, "u1", id.UserID)
	assert.Equal(t, "abc@sample.com", id.Email)
}

func TestIdentityRejectsTamperedCookie(t *testing.T) {
	m := NewManager("secret", 30*time.Minute, 20*time.Minute)

	rec := httptest.NewRecorder()
	require.NoError(t, m.SetIdentity(rec, Identity{UserID: "u1"}))
	cookies := rec.Result().Cookies()
	cookies[0].Value += "x"

	_, ok := m.Identity(requestWithCookies(cookies))
	assert.False(t, ok)
}

func TestIdentityRejectsWrongSecret(t *testing.T) {
	issuer := NewManager("secret-a", 30*time.Minute, 20*time.Minute)
	verifier := NewManager("secret-b", 30*time.Minute, 20*time.Minute)

	rec := httptest.NewRecorder()
	require.NoError(t, issuer.SetIdentity(rec, Identity{UserID: "u1"}))

	_, ok := verifier.Identity(requestWithCookies(rec.Result().Cookies()))
	assert.False(t, ok)
}

func TestIdentityExpires(t *testing.T) {
	m := NewManager("secret", -time.Minute, 20*time.Minute)

	rec := httptest.NewRecorder()
	require.NoError(t, m.SetIdentity(rec, Identity{UserID: "u1"}))

	_, ok := m.Identity(requestWithCookies(rec.Result().Cookies()))
	assert.False(t, ok)
}

func TestRefreshReissuesInsideActiveWindow(t *testing.T) {
	// Remaining life (30m) is below the active window (1h), so every
	// request re-issues the cookie.
	m := NewManager("secret", 30*time.Minute, time.Hour)

	rec := httptest.NewRecorder()
	require.NoError(t, m.SetIdentity(rec, Identity{UserID: "u1"}))

	refreshed := httptest.NewRecorder()
	m.Refresh(refreshed, requestWithCookies(rec.Result().Cookies()))

	cookies := refreshed.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "authen", cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
}

func TestRefreshSkipsFreshCookie(t *testing.T) {
	m := NewManager("secret", 30*time.Minute, time.Minute)

	rec := httptest.NewRecorder()
	require.NoError(t, m.SetIdentity(rec, Identity{UserID: "u1"}))

	refreshed := httptest.NewRecorder()
	m.Refresh(refreshed, requestWithCookies(rec.Result().Cookies()))
	assert.Empty(t, refreshed.Result().Cookies())
}

func TestClearExpiresIdentityCookieOnly(t *testing.T) {
	m := NewManager("secret", 30*time.Minute, 20*time.Minute)

	rec := httptest.NewRecorder()
	m.Clear(rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "authen", cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestFlashPopReturnsMessageOnce(t *testing.T) {
	m := NewManager("secret", 30*time.Minute, 20*time.Minute)

	rec := httptest.NewRecorder()
	require.NoError(t, m.SetFlash(rec, "Password has been changed."))

	popRec := httptest.NewRecorder()
	msg, ok := m.PopFlash(popRec, requestWithCookies(rec.Result().Cookies()))
	require.True(t, ok)
	assert.Equal(t, "Password has been changed.", msg)

	// Pop expires the temp cookie so the notice shows only once.
	cookies := popRec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "temp_session", cookies[0].Name)
	assert.Negative(t, cookies[0].MaxAge)

	_, ok = m.PopFlash(httptest.NewRecorder(), requestWithCookies(nil))
	assert.False(t, ok)
}
