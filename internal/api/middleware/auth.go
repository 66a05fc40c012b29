package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
)

type contextKey string

const actorKey contextKey = "actor"

const (
	msgMissingToken = "отсутствует токен авторизации"
	msgInvalidToken = "некорректный токен авторизации"
)

var (
	// ErrInvalidClaims токен подписан, но sub или role некорректны
	ErrInvalidClaims = errors.New("middleware: invalid token claims")
)

// Claims полезная нагрузка токена внешнего провайдера идентификации
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Auth проверяет Bearer JWT (HS256) и кладет domain.Actor в контекст запроса
func Auth(secret, issuer string, logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				logger.Warn("Auth: missing bearer token for %s %s", r.Method, r.URL.Path)
				handlers.RespondUnauthorized(w, msgMissingToken)
				return
			}

			actor, err := ParseToken(strings.TrimPrefix(header, "Bearer "), secret, issuer)
			if err != nil {
				logger.Warn("Auth: rejected token for %s %s: %v", r.Method, r.URL.Path, err)
				handlers.RespondUnauthorized(w, msgInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// ParseToken проверяет подпись и срок действия токена и возвращает актора
func ParseToken(token, secret, issuer string) (domain.Actor, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return domain.Actor{}, err
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return domain.Actor{}, ErrInvalidClaims
	}
	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return domain.Actor{}, ErrInvalidClaims
	}

	return domain.Actor{ID: id, Role: role}, nil
}

// IssueToken подписывает токен для актора. Используется в тестах и локальной разработке.
func IssueToken(actor domain.Actor, secret, issuer string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID.String(),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// WithActor кладет актора в контекст
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// GetActor извлекает актора, положенного Auth
func GetActor(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(domain.Actor)
	return actor, ok
}
