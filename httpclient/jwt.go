package httpclient

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTConfig configures a self-signed token supplier.
type JWTConfig struct {
	// Issuer is the iss claim.
	Issuer string
	// Subject is the sub claim.
	Subject string
	// Secret is the HMAC signing key.
	Secret []byte
	// TTL is the token lifetime. Defaults to one minute.
	TTL time.Duration
}

// JWTSupplier returns a RequestTokenSupplier that signs a short-lived HS256
// token whose audience is the host of the outgoing request.
func JWTSupplier(cfg JWTConfig) RequestTokenSupplier {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	return func(req *http.Request) (string, error) {
		if len(cfg.Secret) == 0 {
			return "", fmt.Errorf("httpclient: jwt secret is empty")
		}
		now := time.Now()
		claims := jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   cfg.Subject,
			Audience:  jwt.ClaimStrings{req.URL.Host},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cfg.Secret)
		if err != nil {
			return "", fmt.Errorf("httpclient: sign jwt: %w", err)
		}
		return token, nil
	}
}
