package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/cloudwego/hertz/pkg/common/config"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/route"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfg "Reformly/config"
	"Reformly/internal/model/dto"
	"Reformly/pkg/response"
	"Reformly/storage/redis"
)

func newEngine(t *testing.T) *route.Engine {
	t.Helper()

	mr := miniredis.RunT(t)
	c := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	redis.SetClient(c)
	t.Cleanup(func() { _ = c.Close() })

	prev := cfg.Cfg
	t.Cleanup(func() { cfg.Cfg = prev })
	cfg.Cfg.EventsEnabled = false

	e := route.NewEngine(config.NewOptions(nil))
	g := e.Group("/v1/onboarding")
	g.GET("/plans", ListPlans)
	g.POST("/sessions", CreateSession)
	g.GET("/sessions/:id", GetSession)
	g.POST("/sessions/:id/next", NextStep)
	g.POST("/sessions/:id/back", PreviousStep)
	g.PATCH("/sessions/:id/data", UpdateSessionData)
	g.PUT("/sessions/:id/plan", SelectPlan)
	g.GET("/sessions/:id/preview", GetPlanPreview)
	g.POST("/sessions/:id/google", GoogleSignIn)
	e.GET("/v1/users/me", GetUserProfile)
	return e
}

func jsonBody(s string) *ut.Body {
	return &ut.Body{Body: bytes.NewBufferString(s), Len: len(s)}
}

var jsonHeader = ut.Header{Key: "Content-Type", Value: "application/json"}

func decodeSnapshot(t *testing.T, body []byte) dto.SessionSnapshot {
	t.Helper()
	var env struct {
		Data dto.SessionSnapshot `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &env))
	return env.Data
}

func decodeError(t *testing.T, body []byte) response.ErrorDetail {
	t.Helper()
	var env response.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &env))
	return env.Error
}

func TestListPlans(t *testing.T) {
	e := newEngine(t)

	w := ut.PerformRequest(e, http.MethodGet, "/v1/onboarding/plans", nil)
	resp := w.Result()
	assert.Equal(t, http.StatusOK, resp.StatusCode())

	var env struct {
		Data dto.PlanListResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body(), &env))
	assert.Len(t, env.Data.Plans, 3)
	assert.Equal(t, "4-week", env.Data.DefaultPlanID)
}

func TestSessionNavigation(t *testing.T) {
	e := newEngine(t)

	w := ut.PerformRequest(e, http.MethodPost, "/v1/onboarding/sessions?step=7", nil)
	resp := w.Result()
	require.Equal(t, http.StatusCreated, resp.StatusCode())
	snap := decodeSnapshot(t, resp.Body())
	assert.Equal(t, 1, snap.Step)
	assert.True(t, snap.Redirected)
	id := snap.SessionID

	w = ut.PerformRequest(e, http.MethodPost, "/v1/onboarding/sessions/"+id+"/back", nil)
	snap = decodeSnapshot(t, w.Result().Body())
	assert.Equal(t, 0, snap.Step)

	// 不带 step 参数只读取
	w = ut.PerformRequest(e, http.MethodGet, "/v1/onboarding/sessions/"+id, nil)
	snap = decodeSnapshot(t, w.Result().Body())
	assert.Equal(t, 0, snap.Step)
	assert.False(t, snap.Redirected)

	w = ut.PerformRequest(e, http.MethodGet, "/v1/onboarding/sessions/"+id+"?step=5", nil)
	snap = decodeSnapshot(t, w.Result().Body())
	assert.Equal(t, 1, snap.Step)
	assert.True(t, snap.Redirected)

	w = ut.PerformRequest(e, http.MethodPost, "/v1/onboarding/sessions/"+id+"/next", nil)
	snap = decodeSnapshot(t, w.Result().Body())
	assert.Equal(t, 2, snap.Step)
	assert.Equal(t, "otp", snap.StepName)
}

func TestSessionErrors(t *testing.T) {
	e := newEngine(t)

	w := ut.PerformRequest(e, http.MethodGet, "/v1/onboarding/sessions/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Result().StatusCode())
	assert.Equal(t, "ONBOARDING_SESSION_NOT_FOUND", decodeError(t, w.Result().Body()).Code)

	w = ut.PerformRequest(e, http.MethodPost, "/v1/onboarding/sessions", nil)
	id := decodeSnapshot(t, w.Result().Body()).SessionID

	w = ut.PerformRequest(e, http.MethodPatch, "/v1/onboarding/sessions/"+id+"/data",
		jsonBody(`{"main_goal":"fly"}`), jsonHeader)
	assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode())
	assert.Equal(t, "ONBOARDING_FIELD_INVALID", decodeError(t, w.Result().Body()).Code)

	w = ut.PerformRequest(e, http.MethodPut, "/v1/onboarding/sessions/"+id+"/plan",
		jsonBody(`{"plan_id":"lifetime"}`), jsonHeader)
	assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode())
	assert.Equal(t, "PLAN_NOT_FOUND", decodeError(t, w.Result().Body()).Code)

	w = ut.PerformRequest(e, http.MethodGet, "/v1/onboarding/sessions/"+id+"/preview", nil)
	assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode())
	assert.Equal(t, "ONBOARDING_STEP_INVALID", decodeError(t, w.Result().Body()).Code)

	w = ut.PerformRequest(e, http.MethodPost, "/v1/onboarding/sessions/"+id+"/google",
		jsonBody(`{}`), jsonHeader)
	assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode())
	assert.Equal(t, "INVALID_REQUEST", decodeError(t, w.Result().Body()).Code)
}

func TestUpdateSessionData(t *testing.T) {
	e := newEngine(t)

	w := ut.PerformRequest(e, http.MethodPost, "/v1/onboarding/sessions?step=1", nil)
	id := decodeSnapshot(t, w.Result().Body()).SessionID

	w = ut.PerformRequest(e, http.MethodPatch, "/v1/onboarding/sessions/"+id+"/data",
		jsonBody(`{"main_goal":"keep-fit","height":{"value":170,"unit":"cm"}}`), jsonHeader)
	require.Equal(t, http.StatusOK, w.Result().StatusCode())

	snap := decodeSnapshot(t, w.Result().Body())
	assert.Equal(t, 1, snap.Step)
	assert.Equal(t, "keep-fit", snap.Data.AboutYou.MainGoal)
	assert.Equal(t, 170.0, snap.Data.Metrics.Height.Value)
}

func TestGetUserProfile_Unauthenticated(t *testing.T) {
	e := newEngine(t)

	w := ut.PerformRequest(e, http.MethodGet, "/v1/users/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Result().StatusCode())
}
