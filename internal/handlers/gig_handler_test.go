package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gigwork_backend/internal/auth"
	"gigwork_backend/internal/config"
	"gigwork_backend/internal/dispatch"
	"gigwork_backend/internal/models"
	"gigwork_backend/internal/payments"
	"gigwork_backend/internal/repositories/memory"
	"gigwork_backend/internal/services"
	"gigwork_backend/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	config.AppConfig = &config.Config{
		JWT: config.JWTConfig{Secret: "handler-test-secret", TTL: 60},
		Notifications: config.NotificationsConfig{
			RetentionDays: 30,
			SinkBuffer:    16,
		},
	}
}

type testEnv struct {
	router   *gin.Engine
	profiles *memory.ProfileStore
}

func newTestEnv() *testEnv {
	gigs := memory.NewGigStore()
	interests := memory.NewInterestStore(gigs)
	notes := memory.NewNotificationStore()
	profiles := memory.NewProfileStore()
	dispatcher := dispatch.NewDispatcher(notes)

	gigService := services.NewGigService(gigs, interests, profiles, dispatcher, &payments.MockProvider{})
	notificationService := services.NewNotificationService(notes, dispatcher)

	base := NewBaseHandler(validator.New())
	gigHandler := NewGigHandler(base, gigService)
	notificationHandler := NewNotificationHandler(base, notificationService)

	profiles.Put(models.ProfileSummary{UserID: "inst-1", Name: "City Clinic"})
	profiles.Put(models.ProfileSummary{UserID: "prof-1", Name: "Alice Nurse"})

	router := gin.New()
	api := router.Group("/api/v1")
	gigHandler.RegisterRoutes(api)
	notificationHandler.RegisterRoutes(api)

	return &testEnv{router: router, profiles: profiles}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func tokenFor(t *testing.T, userID string, role models.UserRole) string {
	t.Helper()
	token, err := auth.GenerateToken(userID, role)
	require.NoError(t, err)
	return token
}

func TestGigRoutes_FullFlow(t *testing.T) {
	env := newTestEnv()
	instToken := tokenFor(t, "inst-1", models.UserRoleInstitution)
	profToken := tokenFor(t, "prof-1", models.UserRoleProfessional)

	// Create a gig.
	w := env.request(t, http.MethodPost, "/api/v1/jobs", instToken, map[string]any{
		"title":      "Weekend locum",
		"pay_amount": 200,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	// Public listing shows it.
	w = env.request(t, http.MethodGet, "/api/v1/jobs", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Weekend locum")

	// Professional expresses interest.
	w = env.request(t, http.MethodPost, "/api/v1/jobs/"+created.ID+"/express-interest", profToken, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Duplicate expression conflicts.
	w = env.request(t, http.MethodPost, "/api/v1/jobs/"+created.ID+"/express-interest", profToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Check-interest reflects it.
	w = env.request(t, http.MethodGet, "/api/v1/jobs/"+created.ID+"/check-interest", profToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"has_interest":true`)

	// Owner lists interested professionals.
	w = env.request(t, http.MethodGet, "/api/v1/jobs/"+created.ID+"/interested-professionals", instToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "prof-1")

	// Owner accepts.
	w = env.request(t, http.MethodPost, "/api/v1/jobs/"+created.ID+"/interests/prof-1/decide", instToken, map[string]any{
		"decision": "accepted",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"status":"assigned"`)

	// Professional drains the decision notification exactly once.
	w = env.request(t, http.MethodPost, "/api/v1/notifications/drain", profToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "interest_accepted")

	w = env.request(t, http.MethodPost, "/api/v1/notifications/drain", profToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":0`)

	// Mark paid.
	w = env.request(t, http.MethodPost, "/api/v1/jobs/"+created.ID+"/mark-paid", instToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"paid"`)
}

func TestGigRoutes_AuthAndRoles(t *testing.T) {
	env := newTestEnv()
	instToken := tokenFor(t, "inst-1", models.UserRoleInstitution)
	profToken := tokenFor(t, "prof-1", models.UserRoleProfessional)

	// No token.
	w := env.request(t, http.MethodPost, "/api/v1/jobs", "", map[string]any{
		"title": "x", "pay_amount": 1,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Wrong role: professionals cannot post gigs.
	w = env.request(t, http.MethodPost, "/api/v1/jobs", profToken, map[string]any{
		"title": "x", "pay_amount": 1,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Wrong role: institutions cannot express interest.
	w = env.request(t, http.MethodPost, "/api/v1/jobs", instToken, map[string]any{
		"title": "Valid gig", "pay_amount": 10,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = env.request(t, http.MethodPost, "/api/v1/jobs/"+created.ID+"/express-interest", instToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Garbage token.
	w = env.request(t, http.MethodGet, "/api/v1/notifications", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGigRoutes_Validation(t *testing.T) {
	env := newTestEnv()
	instToken := tokenFor(t, "inst-1", models.UserRoleInstitution)

	w := env.request(t, http.MethodPost, "/api/v1/jobs", instToken, map[string]any{
		"title": "", "pay_amount": 100,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.request(t, http.MethodPost, "/api/v1/jobs", instToken, map[string]any{
		"title": "No pay", "pay_amount": 0,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.request(t, http.MethodGet, "/api/v1/jobs/does-not-exist", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNotificationRoutes(t *testing.T) {
	env := newTestEnv()
	instToken := tokenFor(t, "inst-9", models.UserRoleInstitution)
	profToken := tokenFor(t, "prof-9", models.UserRoleProfessional)

	w := env.request(t, http.MethodPost, "/api/v1/jobs", instToken, map[string]any{
		"title": "Notify me", "pay_amount": 10,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = env.request(t, http.MethodPost, "/api/v1/jobs/"+created.ID+"/express-interest", profToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	// Institution sees the interest_received event.
	w = env.request(t, http.MethodGet, "/api/v1/notifications", instToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "interest_received")

	w = env.request(t, http.MethodGet, "/api/v1/notifications/unread-count", instToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"unread_count":1`)

	var list struct {
		Notifications []struct {
			ID string `json:"id"`
		} `json:"notifications"`
	}
	w = env.request(t, http.MethodGet, "/api/v1/notifications", instToken, nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Notifications, 1)

	w = env.request(t, http.MethodPost, "/api/v1/notifications/"+list.Notifications[0].ID+"/read", instToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.request(t, http.MethodGet, "/api/v1/notifications/unread-count", instToken, nil)
	assert.Contains(t, w.Body.String(), `"unread_count":0`)
}
