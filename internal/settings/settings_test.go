package settings

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projectsanctuary/sanctuary/internal/storage/local"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	db, err := local.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db)
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	st, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), st)

	on, err := s.AutoArchiveEnabled(ctx)
	require.NoError(t, err)
	assert.False(t, on)

	st, err = s.Update(ctx, func(st *Settings) {
		st.AutoArchive = true
		st.Cloud.Dropbox = true
	})
	require.NoError(t, err)
	assert.True(t, st.AutoArchive)

	on, err = s.AutoArchiveEnabled(ctx)
	require.NoError(t, err)
	assert.True(t, on)

	_, err = s.Update(ctx, func(st *Settings) { st.ReminderFrequency = "hourly" })
	assert.ErrorIs(t, err, ErrInvalidFrequency)

	st, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "weekly", st.ReminderFrequency)
	assert.True(t, st.Cloud.Dropbox)
}

func TestHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(newStore(t)).Register(r.Group("/api/v1"))

	put := func(body string) int {
		req := httptest.NewRequest(http.MethodPut, "/api/v1/settings", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusBadRequest, put(`{"reminderFrequency":"never"}`))
	assert.Equal(t, http.StatusOK, put(`{"autoArchive":true,"reminderFrequency":"daily"}`))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"autoArchive":true`)
	assert.Contains(t, w.Body.String(), `"reminderFrequency":"daily"`)
}
