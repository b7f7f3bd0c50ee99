package response

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Reformly/pkg/errors"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.OTPRateLimited, http.StatusTooManyRequests},
		{errors.SignInInProgress, http.StatusConflict},
		{errors.SignInTimeout, http.StatusGatewayTimeout},
		{errors.BackendAuthFailed, http.StatusBadGateway},
		{fmt.Errorf("%w: upstream 503", errors.BackendAuthFailed), http.StatusBadGateway},
		{errors.SignInCancelled, http.StatusBadRequest},
		{errors.VerificationCodeInvalid, http.StatusBadRequest},
		{errors.Unauthorized, http.StatusUnauthorized},
		{errors.OnboardingSessionNotFound, http.StatusNotFound},
		{stderrors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusOf(tt.err), tt.err.Error())
	}
}

func TestError_SignInIsRetryable(t *testing.T) {
	c := app.NewContext(0)
	Error(context.Background(), c, errors.SignInPopupBlocked)

	assert.Equal(t, http.StatusBadRequest, c.Response.StatusCode())

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(c.Response.Body(), &body))
	assert.Equal(t, "SIGN_IN_POPUP_BLOCKED", body.Error.Code)
	assert.Equal(t, errors.SignInPopupBlocked.Message, body.Error.Message)
	assert.Equal(t, true, body.Error.Details["retryable"])
}

func TestError_HidesInternalMessage(t *testing.T) {
	c := app.NewContext(0)
	Error(context.Background(), c, stderrors.New("pq: password authentication failed"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(c.Response.Body(), &body))
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
	assert.NotContains(t, body.Error.Message, "pq")
	assert.Nil(t, body.Error.Details)
}
