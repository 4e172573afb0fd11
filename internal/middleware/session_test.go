package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSession struct {
	user string
}

func (s stubSession) CurrentUser() (string, bool) {
	return s.user, s.user != ""
}

func TestRequireSession(t *testing.T) {
	e := echo.New()

	t.Run("stores the user when logged in", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/form", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		var seen string
		handler := func(c echo.Context) error {
			seen = GetUser(c)
			return c.NoContent(http.StatusOK)
		}

		err := RequireSession(stubSession{user: "alice"})(handler)(c)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "alice", seen)
	})

	t.Run("rejects when logged out", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/form", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		called := false
		handler := func(c echo.Context) error {
			called = true
			return nil
		}

		err := RequireSession(stubSession{})(handler)(c)
		require.NoError(t, err)
		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		var body problemDetails
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, errorTypeUnauthorized, body.Type)
		assert.Equal(t, "/api/v1/form", body.Instance)
	})
}

func TestGetUser_Missing(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Equal(t, "", GetUser(c))
}
