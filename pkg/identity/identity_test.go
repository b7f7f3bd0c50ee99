package identity

import (
	"context"
	stderrors "errors"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Reformly/pkg/errors"
)

type stubClient struct {
	tok *auth.Token
	err error
}

func (s stubClient) VerifyIDToken(context.Context, string) (*auth.Token, error) {
	return s.tok, s.err
}

func TestFirebaseVerifier_Verify(t *testing.T) {
	v := &FirebaseVerifier{client: stubClient{tok: &auth.Token{
		UID:      "uid-1",
		Firebase: auth.FirebaseInfo{SignInProvider: "google.com"},
		Claims:   map[string]interface{}{"email": "ann@example.com", "name": "Ann"},
	}}}

	id, err := v.Verify(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, Identity{UID: "uid-1", Email: "ann@example.com", Name: "Ann", Provider: "google.com"}, id)
}

func TestFirebaseVerifier_Errors(t *testing.T) {
	v := &FirebaseVerifier{client: stubClient{err: stderrors.New("ID token has expired")}}
	_, err := v.Verify(context.Background(), "token")
	assert.ErrorIs(t, err, errors.IdentityFailed)

	_, err = v.Verify(context.Background(), "  ")
	assert.ErrorIs(t, err, errors.IdentityFailed)

	v = &FirebaseVerifier{client: stubClient{tok: &auth.Token{UID: "u", Claims: map[string]interface{}{}}}}
	_, err = v.Verify(context.Background(), "token")
	assert.ErrorIs(t, err, errors.IdentityFailed)
}

func TestClientError(t *testing.T) {
	assert.NoError(t, ClientError(""))
	assert.Equal(t, errors.SignInCancelled, ClientError(CodePopupClosed))
	assert.Equal(t, errors.SignInCancelled, ClientError(CodeCancelledRequest))
	assert.Equal(t, errors.SignInPopupBlocked, ClientError(CodePopupBlocked))
	assert.Equal(t, errors.SignInNetworkError, ClientError(CodeNetworkFailed))
	assert.Equal(t, errors.IdentityFailed, ClientError("auth/internal-error"))

	assert.True(t, Cancelled(ClientError(CodePopupClosed)))
	assert.False(t, Cancelled(ClientError(CodePopupBlocked)))
	assert.False(t, Cancelled(nil))
}

func TestNewFirebaseVerifier_RequiresProject(t *testing.T) {
	_, err := NewFirebaseVerifier(context.Background(), FirebaseConfig{})
	assert.Error(t, err)

	_, err = NewFirebaseVerifier(context.Background(), FirebaseConfig{ProjectID: "p", CredentialsJSON: "%%%"})
	assert.Error(t, err)
}
