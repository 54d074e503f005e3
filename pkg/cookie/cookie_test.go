package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cardless-trial/pkg/cookie"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newManager(t *testing.T, opts ...cookie.Option) *cookie.Manager {
	t.Helper()
	m, err := cookie.New([]string{testSecret}, opts...)
	require.NoError(t, err)
	return m
}

func requestWithCookie(name, value string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: name, Value: value})
	return r
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := cookie.New(nil)
	assert.ErrorIs(t, err, cookie.ErrNoSecret)

	_, err = cookie.New([]string{""})
	assert.ErrorIs(t, err, cookie.ErrNoSecret)

	_, err = cookie.New([]string{"too-short"})
	assert.ErrorIs(t, err, cookie.ErrSecretTooShort)
}

func TestSetGet(t *testing.T) {
	t.Parallel()
	m := newManager(t)

	w := httptest.NewRecorder()
	m.Set(w, "sid", "sub_123")

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sub_123", cookies[0].Value)
	assert.Equal(t, "/", cookies[0].Path)
	assert.True(t, cookies[0].HttpOnly)

	got, err := m.Get(requestWithCookie("sid", cookies[0].Value), "sid")
	require.NoError(t, err)
	assert.Equal(t, "sub_123", got)
}

func TestGet_Missing(t *testing.T) {
	t.Parallel()
	m := newManager(t)

	_, err := m.Get(httptest.NewRequest(http.MethodGet, "/", nil), "sid")
	assert.ErrorIs(t, err, cookie.ErrCookieNotFound)
}

func TestSignedRoundTrip(t *testing.T) {
	t.Parallel()
	m := newManager(t)

	w := httptest.NewRecorder()
	m.SetSigned(w, "sid", "sub_123")

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.NotEqual(t, "sub_123", cookies[0].Value, "signed cookie must not carry the raw value")

	got, err := m.GetSigned(requestWithCookie("sid", cookies[0].Value), "sid")
	require.NoError(t, err)
	assert.Equal(t, "sub_123", got)
}

func TestSigned_TamperDetected(t *testing.T) {
	t.Parallel()
	m := newManager(t)

	w := httptest.NewRecorder()
	m.SetSigned(w, "sid", "sub_123")
	value := w.Result().Cookies()[0].Value

	encoded, sig, ok := strings.Cut(value, "|")
	require.True(t, ok)
	tampered := encoded + "x|" + sig

	_, err := m.GetSigned(requestWithCookie("sid", tampered), "sid")
	require.Error(t, err)

	_, err = m.GetSigned(requestWithCookie("sid", "no-separator"), "sid")
	assert.ErrorIs(t, err, cookie.ErrInvalidFormat)
}

func TestSigned_KeyRotation(t *testing.T) {
	t.Parallel()

	old, err := cookie.New([]string{testSecret})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	old.SetSigned(w, "sid", "sub_123")
	value := w.Result().Cookies()[0].Value

	rotated, err := cookie.New([]string{"ffffffffffffffffffffffffffffffff", testSecret})
	require.NoError(t, err)

	got, err := rotated.GetSigned(requestWithCookie("sid", value), "sid")
	require.NoError(t, err)
	assert.Equal(t, "sub_123", got)
}

func TestDelete(t *testing.T) {
	t.Parallel()
	m := newManager(t)

	w := httptest.NewRecorder()
	m.Delete(w, "sid")

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
	assert.Empty(t, cookies[0].Value)
}
