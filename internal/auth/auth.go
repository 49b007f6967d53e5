package auth

import (
	"context"
	"net/http"
	"os"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-chi/jwtauth"
	"github.com/gorilla/mux"

	"github.com/appvote/portal/internal/errors"
	"github.com/appvote/portal/internal/models"
)

type Client interface {
	Verifier() func(http.Handler) http.Handler
	Authenticator(ignoredRoutes []*mux.Route) func(http.Handler) http.Handler
	CreateJWT(p models.Profile) (string, error)
	UserTokenFromCtx(ctx context.Context) models.UserToken
}

type JwtClient struct {
	auth *jwtauth.JWTAuth
}

func InitJwtAuth(secretPath, publicPath string) (*JwtClient, error) {
	var op errors.Op = "auth.InitJwtAuth"
	keytext, err := os.ReadFile(secretPath)
	if err != nil {
		return nil, errors.E(op, errors.KindJWTError, err, "error reading from secret key file")
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(keytext)
	if err != nil {
		return nil, errors.E(op, errors.KindJWTError, err, "error parsing private key")
	}

	pubtext, err := os.ReadFile(publicPath)
	if err != nil {
		return nil, errors.E(op, errors.KindJWTError, err, "error reading from public key file")
	}

	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubtext)
	if err != nil {
		return nil, errors.E(op, errors.KindJWTError, err, "error parsing public key")
	}

	return &JwtClient{auth: jwtauth.New("RS256", privateKey, pubKey)}, nil
}

func (j JwtClient) UserTokenFromCtx(ctx context.Context) (token models.UserToken) {
	_, claims, err := jwtauth.FromContext(ctx)

	if err != nil {
		return
	}

	id, ok := claims["sub"].(string)
	if !ok {
		// Always expect to have a 'sub' claim.  If we don't then something is very wrong.
		// We'll treat it like no credential at all.
		return
	}

	nickname, _ := claims["name"].(string)

	role, ok := claims["role"].(string)
	if !ok {
		role = models.RoleUser
	}

	return models.UserToken{
		ID:       id,
		Nickname: nickname,
		Role:     role,
	}
}

func (j JwtClient) Verifier() func(http.Handler) http.Handler {
	return jwtauth.Verifier(j.auth)
}

func (j JwtClient) CreateJWT(p models.Profile) (string, error) {
	var op errors.Op = "auth.createJWT"
	var claims jwtauth.Claims = make(map[string]interface{})
	claims["sub"] = p.ID
	claims["name"] = p.Username
	claims["role"] = p.Role

	_, tokenString, err := j.auth.Encode(claims)
	if err != nil {
		return "", errors.E(op, errors.KindJWTError, err, "error creating jwt for profile")
	}

	return tokenString, nil
}

func (j JwtClient) Authenticator(excludes []*mux.Route) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			curr := mux.CurrentRoute(r)
			exclude := false
			for _, e := range excludes {
				if e == curr {
					exclude = true
					break
				}
			}

			if exclude {
				next.ServeHTTP(w, r)
				return
			} else {
				j.authenticatorHelper(next).ServeHTTP(w, r)
				return
			}
		})
	}
}

func (j JwtClient) authenticatorHelper(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, _, err := jwtauth.FromContext(r.Context())

		if err != nil && err != jwtauth.ErrNoTokenFound {
			http.Error(w, http.StatusText(401), 401)
			return
		}

		if token == nil {
			// No token provided--which is fine.  Pass it through and let application logic handle it.
			next.ServeHTTP(w, r)
			return
		}

		if !token.Valid {
			http.Error(w, http.StatusText(401), 401)
			return
		}

		next.ServeHTTP(w, r)
	})
}
