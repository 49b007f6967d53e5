package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"testing"

	"github.com/go-chi/jwtauth"

	"github.com/appvote/portal/internal/models"
)

func testClient(t *testing.T) *JwtClient {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("error generating test key: %v", err)
	}

	return &JwtClient{auth: jwtauth.New("RS256", key, &key.PublicKey)}
}

func TestCreateJWTRoundTrip(t *testing.T) {
	j := testClient(t)

	profile := models.Profile{
		ID:       "9f1f8f2a-61a8-4b6f-8f3a-1b2c3d4e5f60",
		Username: "concision",
		Role:     models.RoleAdmin,
	}

	tokenString, err := j.CreateJWT(profile)
	if err != nil {
		t.Fatalf("CreateJWT returned error: %v", err)
	}

	token, err := j.auth.Decode(tokenString)
	if err != nil {
		t.Fatalf("error decoding token: %v", err)
	}

	ctx := jwtauth.NewContext(context.Background(), token, nil)
	userToken := j.UserTokenFromCtx(ctx)

	if userToken.ID != profile.ID {
		t.Errorf("expected id %v, got %v", profile.ID, userToken.ID)
	}

	if userToken.Nickname != profile.Username {
		t.Errorf("expected nickname %v, got %v", profile.Username, userToken.Nickname)
	}

	if !userToken.IsAdmin() {
		t.Errorf("expected admin token")
	}

	if !userToken.LoggedIn() {
		t.Errorf("expected token to be logged in")
	}
}

func TestUserTokenDefaultsToUserRole(t *testing.T) {
	j := testClient(t)

	claims := jwtauth.Claims{"sub": "some-id", "name": "somebody"}
	token, _, err := j.auth.Encode(claims)
	if err != nil {
		t.Fatalf("error encoding claims: %v", err)
	}

	ctx := jwtauth.NewContext(context.Background(), token, nil)
	userToken := j.UserTokenFromCtx(ctx)

	if userToken.Role != models.RoleUser {
		t.Errorf("expected missing role claim to default to %q, got %q", models.RoleUser, userToken.Role)
	}

	if userToken.IsAdmin() {
		t.Errorf("token without role claim must not be admin")
	}
}

func TestUserTokenFromCtxZeroCases(t *testing.T) {
	j := testClient(t)

	// No token in context at all.
	userToken := j.UserTokenFromCtx(context.Background())
	if userToken.LoggedIn() {
		t.Errorf("expected zero token for empty context")
	}

	// Token missing the sub claim is treated like no credential.
	claims := jwtauth.Claims{"name": "somebody", "role": models.RoleAdmin}
	token, _, err := j.auth.Encode(claims)
	if err != nil {
		t.Fatalf("error encoding claims: %v", err)
	}

	ctx := jwtauth.NewContext(context.Background(), token, nil)
	userToken = j.UserTokenFromCtx(ctx)
	if userToken.LoggedIn() {
		t.Errorf("expected zero token when sub claim is missing")
	}
}
