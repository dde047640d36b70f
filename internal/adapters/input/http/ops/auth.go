package ops

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt"
)

// BearerAuth rejects requests that do not carry a valid HS256 bearer
// token signed with the shared ops secret.
type BearerAuth struct {
	secret []byte
	next   http.Handler
	logger *slog.Logger
}

func NewBearerAuth(secret string, next http.Handler, logger *slog.Logger) *BearerAuth {
	return &BearerAuth{secret: []byte(secret), next: next, logger: logger}
}

func (a *BearerAuth) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tokenString, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !found || tokenString == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		a.logger.Warn("rejected ops request with invalid token")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	a.next.ServeHTTP(w, r)
}
