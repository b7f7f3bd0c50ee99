package identity

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"Reformly/pkg/errors"
)

// Identity 校验通过的 Google 身份
type Identity struct {
	UID      string
	Email    string
	Name     string
	Provider string
}

// Verifier 校验浏览器转发来的 ID token
type Verifier interface {
	Verify(ctx context.Context, idToken string) (Identity, error)
}

// tokenVerifier firebase auth.Client 中用到的方法
type tokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

type FirebaseVerifier struct {
	client tokenVerifier
}

type FirebaseConfig struct {
	ProjectID       string
	CredentialsFile string
	CredentialsJSON string // base64
}

// NewFirebaseVerifier 初始化 Firebase Admin 并创建 auth 客户端。
// 两种凭证都未配置时使用默认应用凭证（ADC）。
func NewFirebaseVerifier(ctx context.Context, cfg FirebaseConfig) (*FirebaseVerifier, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("firebase project id must be set")
	}

	var opts []option.ClientOption
	switch {
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	case cfg.CredentialsJSON != "":
		jsonKey, err := base64.StdEncoding.DecodeString(cfg.CredentialsJSON)
		if err != nil {
			return nil, fmt.Errorf("firebase credentials json is not valid base64: %w", err)
		}
		opts = append(opts, option.WithCredentialsJSON(jsonKey))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase auth client: %w", err)
	}

	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (Identity, error) {
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return Identity{}, errors.IdentityFailed
	}

	tok, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", errors.IdentityFailed, err)
	}

	id := Identity{
		UID:      tok.UID,
		Provider: tok.Firebase.SignInProvider,
	}
	if email, ok := tok.Claims["email"].(string); ok {
		id.Email = email
	}
	if name, ok := tok.Claims["name"].(string); ok {
		id.Name = name
	}

	if id.Email == "" {
		return Identity{}, fmt.Errorf("%w: token carries no email", errors.IdentityFailed)
	}

	return id, nil
}
