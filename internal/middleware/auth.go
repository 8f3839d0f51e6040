package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/signoffhq/signoff/internal/config"
	"github.com/signoffhq/signoff/internal/modules/model"
	"github.com/signoffhq/signoff/internal/modules/serializer"
)

// AgencyClaims is the session token issued by the identity store.
// sub is the agency user id.
type AgencyClaims struct {
	Email        string `json:"email"`
	UserMetadata struct {
		FullName string `json:"full_name"`
	} `json:"user_metadata"`
	jwt.RegisteredClaims
}

// AgencyAuth verifies the agency session token and sets the model.Agency in the context.
// It also sets the agency_id attribute on the current span for telemetry filtering.
func AgencyAuth(cfg *config.Config) gin.HandlerFunc {
	secret := []byte(cfg.Auth.JWTSecret)
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Auth.JWTIssuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Auth.JWTIssuer))
	}

	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
			return
		}
		raw := strings.TrimPrefix(auth, "Bearer ")

		agency, err := parseAgency(raw, secret, opts)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
			return
		}

		span := trace.SpanFromContext(c.Request.Context())
		if span.SpanContext().IsValid() {
			span.SetAttributes(attribute.String("agency_id", agency.ID.String()))
		}

		c.Set(model.AgencyContextKey, agency)
		c.Next()
	}
}

func parseAgency(raw string, secret []byte, opts []jwt.ParserOption) (*model.Agency, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("jwt secret is not configured")
	}
	var claims AgencyClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("subject is not a user id: %w", err)
	}
	return &model.Agency{
		ID:       id,
		Email:    claims.Email,
		FullName: claims.UserMetadata.FullName,
	}, nil
}

// AgencyFrom returns the identity set by AgencyAuth.
func AgencyFrom(c *gin.Context) (*model.Agency, bool) {
	v, ok := c.Get(model.AgencyContextKey)
	if !ok {
		return nil, false
	}
	a, ok := v.(*model.Agency)
	return a, ok && a != nil
}
