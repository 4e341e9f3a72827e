package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"concierge/config"
	dbpkg "concierge/db"
	"concierge/models"
	"concierge/router"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminRequest(r *gin.Engine, method, path, token string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) any {
	t.Helper()
	var out any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestAdminRoutesRequireToken(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)

	for _, path := range []string{"/api/users", "/api/settings", "/api/users/u1/turns"} {
		w := adminRequest(r, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)

		w = adminRequest(r, http.MethodGet, path, "wrong-token", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestAdminRoutesUnavailableWithoutConfiguredToken(t *testing.T) {
	db := newTestDB(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(dbpkg.SetDBtoContext(db))
	router.Initialize(r, config.Configuration{})

	w := adminRequest(r, http.MethodGet, "/api/users", "any-token", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGetUserStatesOrdersHumanModeFirst(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)

	seedUserState(t, db, models.UserState{LineUserID: "u-calm", IsRegistered: true, Nickname: "Bob"})
	seedUserState(t, db, models.UserState{LineUserID: "u-waiting", IsRegistered: true, Nickname: "Alice", IsHumanMode: true})

	w := adminRequest(r, http.MethodGet, "/api/users", "admin-token", nil)
	require.Equal(t, http.StatusOK, w.Code)

	list := decodeJSON(t, w).([]any)
	require.Len(t, list, 2)
	first := list[0].(map[string]any)
	assert.Equal(t, "u-waiting", first["line_user_id"])
	assert.Equal(t, true, first["is_human_mode"])
}

func TestGetUserStatesFilter(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)

	seedUserState(t, db, models.UserState{LineUserID: "u1", Nickname: "Alice", Community: "Maple Court"})
	seedUserState(t, db, models.UserState{LineUserID: "u2", Nickname: "Bob", Community: "Oak Hill"})

	w := adminRequest(r, http.MethodGet, "/api/users?q=Maple", "admin-token", nil)
	require.Equal(t, http.StatusOK, w.Code)

	list := decodeJSON(t, w).([]any)
	require.Len(t, list, 1)
	assert.Equal(t, "u1", list[0].(map[string]any)["line_user_id"])
}

func TestGetUserTurnsNewestFirst(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)

	for i, msg := range []string{"first", "second", "third"} {
		at := time.Now().Add(time.Duration(i) * time.Second)
		turn := models.ConversationTurn{
			LineUserID: "u1",
			Sender:     models.TURN_SENDER_USER,
			Message:    msg,
			CreatedAt:  &at,
		}
		require.NoError(t, db.Create(&turn).Error)
	}

	w := adminRequest(r, http.MethodGet, "/api/users/u1/turns?limit=2", "admin-token", nil)
	require.Equal(t, http.StatusOK, w.Code)

	list := decodeJSON(t, w).([]any)
	require.Len(t, list, 2)
	assert.Equal(t, "third", list[0].(map[string]any)["message"])
	assert.Equal(t, "second", list[1].(map[string]any)["message"])
}

func TestSettingsRoundTrip(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)

	// No row yet: GET serves editable defaults.
	w := adminRequest(r, http.MethodGet, "/api/settings", "admin-token", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeJSON(t, w).(map[string]any)
	assert.Equal(t, models.AI_BACKEND_GPT, data["active_ai"])

	body, _ := json.Marshal(map[string]any{
		"active_ai":                models.AI_BACKEND_GEMINI,
		"handover_keywords":        "urgent",
		"handover_timeout_minutes": 15,
		"gemini_model_name":        "gemini-2.0-flash",
	})
	w = adminRequest(r, http.MethodPut, "/api/settings", "admin-token", body)
	require.Equal(t, http.StatusOK, w.Code)

	var stored models.Settings
	require.NoError(t, db.First(&stored).Error)
	assert.Equal(t, models.AI_BACKEND_GEMINI, stored.ActiveAI)
	assert.Equal(t, 15, stored.HandoverTimeoutMinutes)

	// A second PUT updates the same singleton row.
	body, _ = json.Marshal(map[string]any{
		"active_ai":         models.AI_BACKEND_GPT,
		"handover_keywords": "complaint",
	})
	w = adminRequest(r, http.MethodPut, "/api/settings", "admin-token", body)
	require.Equal(t, http.StatusOK, w.Code)

	var count int
	db.Model(&models.Settings{}).Count(&count)
	assert.Equal(t, 1, count)
}

func TestUpdateSettingsRejectsUnknownBackend(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)

	body, _ := json.Marshal(map[string]any{"active_ai": "claude"})
	w := adminRequest(r, http.MethodPut, "/api/settings", "admin-token", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
