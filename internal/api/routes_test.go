package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"fittrack/fitness-app/internal/config"
	"fittrack/fitness-app/internal/domain"
	"fittrack/fitness-app/internal/email"
	"fittrack/fitness-app/internal/generator"
	"fittrack/fitness-app/internal/metrics"
	"fittrack/fitness-app/internal/repository/memory"
	"fittrack/fitness-app/internal/service"
	"fittrack/fitness-app/internal/session"
)

type testAPI struct {
	router *gin.Engine
}

func newTestAPI(t *testing.T, opts RouterOptions) *testAPI {
	t.Helper()
	store := memory.NewStore()
	manager, reg := metrics.NewTestManagerAndRegistry()
	if opts.Metrics == nil {
		opts.Metrics = manager
		opts.Gatherer = reg
	}

	exerciseService := service.NewExerciseService(store.Exercises, nil, nil)
	_, err := exerciseService.SeedDefaults(context.Background())
	require.NoError(t, err)

	setupStatus := service.NewSetupStatusService(store.Profiles, 0, time.Hour)
	strategy := generator.NewMock()
	sessionService := service.NewSessionService(store, opts.Metrics, service.SessionOptions{})
	t.Cleanup(sessionService.Close)

	services := Services{
		Auth: service.NewAuthService(store.Users, email.NewService(config.MailConfig{}), nil, service.AuthConfig{
			Secret:     "test-secret",
			Expiration: time.Hour,
			BaseURL:    "http://localhost:8080",
		}, nil),
		Profile:     service.NewProfileService(store.Profiles, setupStatus, nil),
		SetupStatus: setupStatus,
		Exercise:    exerciseService,
		Plan:        service.NewPlanService(store, strategy, opts.Metrics),
		Session:     sessionService,
		History:     service.NewHistoryService(store, strategy),
		Demo:        service.NewDemoService(store, nil, 1),
	}

	router := gin.New()
	SetupRoutes(router, services, opts)
	return &testAPI{router: router}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// signUp registers and logs in a user. Mail is disabled so the account is confirmed at once.
func (a *testAPI) signUp(t *testing.T, emailAddr string) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/v1/auth/register", "", RegisterRequest{Email: emailAddr, Password: "secret123"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.do(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Email: emailAddr, Password: "secret123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	login := decode[LoginResponse](t, rec)
	require.NotEmpty(t, login.Token)
	return login.Token
}

func (a *testAPI) createProfile(t *testing.T, token string, days int) {
	t.Helper()
	level := domain.ExperienceIntermediate
	rec := a.do(t, http.MethodPost, "/api/v1/profile", token, ProfileRequest{
		Age:                 intRef(30),
		TrainingDaysPerWeek: &days,
		ExperienceLevel:     &level,
		Goals:               []string{domain.GoalStrength},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func (a *testAPI) generatePlan(t *testing.T, token string) domain.WorkoutPlan {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/v1/plans", token, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[domain.WorkoutPlan](t, rec)
}

func intRef(v int) *int { return &v }

func TestPingAndMetrics(t *testing.T) {
	a := newTestAPI(t, RouterOptions{})

	rec := a.do(t, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pong")

	rec = a.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fittrack_test_server_current_requests")
}

func TestAuthFlow(t *testing.T) {
	a := newTestAPI(t, RouterOptions{})

	rec := a.do(t, http.MethodPost, "/api/v1/auth/register", "", RegisterRequest{Email: "Ana@Example.com", Password: "secret123"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	user := decode[UserResponse](t, rec)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.True(t, user.EmailVerified)

	rec = a.do(t, http.MethodPost, "/api/v1/auth/register", "", RegisterRequest{Email: "ana@example.com", Password: "secret123"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/v1/auth/register", "", RegisterRequest{Email: "bo@example.com", Password: "123"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Email: "ana@example.com", Password: "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Email: "ana@example.com", Password: "secret123"})
	require.Equal(t, http.StatusOK, rec.Code)
	token := decode[LoginResponse](t, rec).Token

	rec = a.do(t, http.MethodGet, "/api/v1/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[UserResponse](t, rec)
	assert.Equal(t, user.ID, me.ID)

	rec = a.do(t, http.MethodPost, "/api/v1/auth/password/reset", "", PasswordResetRequest{Email: "nobody@example.com"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/v1/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "signed out token")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	a := newTestAPI(t, RouterOptions{})

	for _, path := range []string{"/api/v1/me", "/api/v1/profile", "/api/v1/plans", "/api/v1/history", "/api/v1/insights"} {
		rec := a.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := a.do(t, http.MethodGet, "/api/v1/me", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Token abc")
	resp := httptest.NewRecorder()
	a.router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestProfileAndPlans(t *testing.T) {
	a := newTestAPI(t, RouterOptions{})
	token := a.signUp(t, "ana@example.com")

	rec := a.do(t, http.MethodGet, "/api/v1/profile", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/v1/profile/setup-status", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode[map[string]bool](t, rec)["complete"])

	rec = a.do(t, http.MethodPost, "/api/v1/plans", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "no profile yet")

	rec = a.do(t, http.MethodPost, "/api/v1/profile", token, ProfileRequest{DateOfBirth: strRef("1990-13-45")})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, decode[ProfileResult](t, rec).Success)

	a.createProfile(t, token, 3)

	rec = a.do(t, http.MethodGet, "/api/v1/profile/setup-status", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode[map[string]bool](t, rec)["complete"])

	rec = a.do(t, http.MethodGet, "/api/v1/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decode[domain.Profile](t, rec)
	assert.Equal(t, 3, profile.TrainingDaysPerWeek)
	assert.Equal(t, "ana@example.com", profile.Email)

	days := 4
	rec = a.do(t, http.MethodPatch, "/api/v1/profile", token, ProfileRequest{TrainingDaysPerWeek: &days})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[ProfileResult](t, rec)
	assert.True(t, updated.Success)
	require.NotNil(t, updated.Profile)
	assert.Equal(t, 4, updated.Profile.TrainingDaysPerWeek)
	assert.Equal(t, 30, updated.Profile.Age, "untouched fields are kept")

	rec = a.do(t, http.MethodGet, "/api/v1/plans/active", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	plan := a.generatePlan(t, token)
	assert.True(t, plan.Active)
	require.Len(t, plan.Workouts, 4)
	assert.NotEmpty(t, plan.Workouts[0].Exercises)

	rec = a.do(t, http.MethodGet, "/api/v1/plans/active", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, plan.ID, decode[domain.WorkoutPlan](t, rec).ID)

	second := a.generatePlan(t, token)
	rec = a.do(t, http.MethodGet, "/api/v1/plans", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	plans := decode[[]domain.WorkoutPlan](t, rec)
	require.Len(t, plans, 2)
	active := 0
	for _, p := range plans {
		if p.Active {
			active++
			assert.Equal(t, second.ID, p.ID)
		}
	}
	assert.Equal(t, 1, active)

	other := a.signUp(t, "bo@example.com")
	rec = a.do(t, http.MethodGet, "/api/v1/plans/"+plan.ID, other, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "plans are private")

	rec = a.do(t, http.MethodGet, "/api/v1/recommendations", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode[map[string][]string](t, rec)["recommendations"])
}

func strRef(s string) *string { return &s }

func TestWorkoutSessionFlow(t *testing.T) {
	a := newTestAPI(t, RouterOptions{})
	token := a.signUp(t, "ana@example.com")
	a.createProfile(t, token, 3)
	plan := a.generatePlan(t, token)
	workout := plan.Workouts[0]

	rec := a.do(t, http.MethodPost, "/api/v1/sessions", token, StartSessionRequest{WorkoutID: workout.ID, Flow: "sideways"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/v1/sessions", token, StartSessionRequest{WorkoutID: workout.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	snap := decode[session.Snapshot](t, rec)
	assert.Equal(t, session.StateInProgress, snap.State)
	assert.True(t, snap.Saved)
	require.Len(t, snap.Exercises, len(workout.Exercises))
	slotID := snap.Exercises[0].ID
	base := "/api/v1/sessions/" + snap.SessionID

	rec = a.do(t, http.MethodPut, base+"/sets", token, map[string]interface{}{
		"slotId": slotID, "setNumber": 1, "reps": 10, "weight": 42.5, "difficultyRating": 7,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	entry := decode[session.SetLog](t, rec)
	require.NotNil(t, entry.Reps)
	assert.Equal(t, 10, *entry.Reps)

	rec = a.do(t, http.MethodPut, base+"/sets", token, map[string]interface{}{"slotId": slotID, "setNumber": 1, "difficultyRating": 11})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodPost, base+"/sets/complete", token, SetRequest{SlotID: slotID, SetNumber: 1})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decode[session.CompleteResult](t, rec)
	assert.True(t, result.Set.Completed)
	assert.True(t, result.RestStarted)

	rec = a.do(t, http.MethodPost, base+"/rest/skip", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[session.Snapshot](t, rec).Rest.Active)

	rec = a.do(t, http.MethodPost, base+"/sets/complete", token, SetRequest{SlotID: slotID, SetNumber: 99})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodPost, base+"/sets/complete", token, SetRequest{SlotID: "missing", SetNumber: 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(t, http.MethodPost, base+"/extra-sets", token, ExtraSetRequest{SlotID: slotID})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, workout.Exercises[0].Sets+1, decode[map[string]interface{}](t, rec)["totalSets"])

	rec = a.do(t, http.MethodGet, "/api/v1/exercises?q=plank", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	planks := decode[[]domain.Exercise](t, rec)
	require.NotEmpty(t, planks)

	rec = a.do(t, http.MethodPost, base+"/exercises", token, AddExerciseRequest{ExerciseID: planks[0].ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, decode[session.Slot](t, rec).Added)

	rec = a.do(t, http.MethodPost, base+"/exercises", token, AddExerciseRequest{ExerciseID: planks[0].ID})
	assert.Equal(t, http.StatusConflict, rec.Code, "an exercise gets one slot per session")

	other := a.signUp(t, "bo@example.com")
	rec = a.do(t, http.MethodGet, base, other, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "sessions are private")

	rec = a.do(t, http.MethodPost, base+"/complete", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, session.StateCompleted, decode[session.Snapshot](t, rec).State)

	rec = a.do(t, http.MethodPost, base+"/complete", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/v1/history", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[[]service.SessionHistory](t, rec)
	require.Len(t, history, 1)
	assert.Equal(t, snap.SessionID, history[0].ID)

	rec = a.do(t, http.MethodGet, "/api/v1/history/exercises/"+workout.Exercises[0].ExerciseID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.ExercisePerformanceLog](t, rec), 1)

	rec = a.do(t, http.MethodGet, "/api/v1/sessions/unknown", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHistoryEndpoints(t *testing.T) {
	a := newTestAPI(t, RouterOptions{})
	token := a.signUp(t, "ana@example.com")

	rec := a.do(t, http.MethodGet, "/api/v1/history?limit=0", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/v1/history", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]service.SessionHistory](t, rec))

	rec = a.do(t, http.MethodGet, "/api/v1/insights", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{service.ProfileMissingInsight}, decode[map[string][]string](t, rec)["insights"])

	rec = a.do(t, http.MethodPost, "/api/v1/demo/history", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "no active plan")

	a.createProfile(t, token, 3)
	a.generatePlan(t, token)

	rec = a.do(t, http.MethodPost, "/api/v1/demo/history", token, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.EqualValues(t, 3, decode[map[string]int](t, rec)["sessionsCreated"])

	rec = a.do(t, http.MethodGet, "/api/v1/history?limit=2", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[[]service.SessionHistory](t, rec)
	require.Len(t, history, 2)
	assert.True(t, history[0].StartedAt.After(history[1].StartedAt))
	assert.NotEmpty(t, history[0].Exercises)
}

func TestExerciseEndpoints(t *testing.T) {
	a := newTestAPI(t, RouterOptions{})
	token := a.signUp(t, "ana@example.com")

	rec := a.do(t, http.MethodGet, "/api/v1/exercises", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[[]domain.Exercise](t, rec)
	require.NotEmpty(t, all)

	rec = a.do(t, http.MethodGet, "/api/v1/exercises?type=juggling", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/v1/exercises/"+all[0].ID, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/v1/exercises/missing", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/v1/exercises", token, CreateExerciseRequest{
		Name:         "Farmer Carry",
		Category:     "Full Body",
		ExerciseType: domain.ExerciseTypeDistance,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotEmpty(t, decode[domain.Exercise](t, rec).ID)

	rec = a.do(t, http.MethodPost, "/api/v1/exercises", token, map[string]string{"category": "Legs"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/v1/exercises/"+all[0].ID+"/video-upload-url", token, VideoUploadURLRequest{ContentType: "video/mp4"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code, "object storage disabled")
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(rate.Every(time.Minute), 2, time.Minute)
	now := time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.False(t, limiter.Allow("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.2"), "buckets are per client")

	now = now.Add(time.Minute)
	assert.True(t, limiter.Allow("10.0.0.1"), "one token refilled")

	now = now.Add(2 * time.Minute)
	limiter.Allow("10.0.0.3")
	limiter.mu.Lock()
	_, kept := limiter.visitors["10.0.0.2"]
	limiter.mu.Unlock()
	assert.False(t, kept, "idle visitors are dropped")
}

func TestAuthRateLimit(t *testing.T) {
	a := newTestAPI(t, RouterOptions{AuthLimiter: NewRateLimiter(rate.Every(time.Minute), 2, time.Minute)})

	body := LoginRequest{Email: "ana@example.com", Password: "secret123"}
	for i := 0; i < 2; i++ {
		rec := a.do(t, http.MethodPost, "/api/v1/auth/login", "", body)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec := a.do(t, http.MethodPost, "/api/v1/auth/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "Rate limit"))

	rec = a.do(t, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "the auth limiter only guards auth routes")
}

func TestPanicRecovery(t *testing.T) {
	manager := metrics.NewTestManager()
	router := gin.New()
	router.Use(PanicRecovery(manager))
	router.GET("/boom", func(c *gin.Context) { panic("boom") })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
