package progressapi

import (
	"context"
	"errors"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/reckoning/go/internal/authgate"
	"github.com/mcdev12/reckoning/go/internal/models"
)

const bearerPrefix = "Bearer "

// TokenVerifier validates bearer tokens
type TokenVerifier interface {
	Verify(token string) (models.Identity, error)
}

// TokenSource supplies the bearer token for outgoing calls
type TokenSource interface {
	Token() (string, bool)
}

// NewAuthInterceptor authenticates every incoming call and stores the identity on the context
func NewAuthInterceptor(verifier TokenVerifier) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if req.Spec().IsClient {
				return next(ctx, req)
			}

			header := req.Header().Get("Authorization")
			if !strings.HasPrefix(header, bearerPrefix) {
				return nil, connect.NewError(connect.CodeUnauthenticated, errors.New("missing bearer token"))
			}

			id, err := verifier.Verify(strings.TrimPrefix(header, bearerPrefix))
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}
			return next(authgate.WithIdentity(ctx, id), req)
		}
	}
}

// NewBearerInterceptor attaches the current token to every outgoing call
func NewBearerInterceptor(tokens TokenSource) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if !req.Spec().IsClient {
				return next(ctx, req)
			}

			token, ok := tokens.Token()
			if !ok {
				return nil, connect.NewError(connect.CodeUnauthenticated, errors.New("no token available"))
			}
			req.Header().Set("Authorization", bearerPrefix+token)
			return next(ctx, req)
		}
	}
}

// NewLoggingInterceptor logs and measures every incoming call
func NewLoggingInterceptor(metrics *Metrics) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)
			elapsed := time.Since(start)

			code := "ok"
			if err != nil {
				code = connect.CodeOf(err).String()
			}
			if metrics != nil {
				metrics.RecordRequest(req.Spec().Procedure, code, elapsed)
			}

			event := log.Debug()
			if err != nil && connect.CodeOf(err) == connect.CodeUnavailable {
				event = log.Warn().Err(err)
			}
			event.
				Str("procedure", req.Spec().Procedure).
				Str("code", code).
				Dur("duration", elapsed).
				Msg("handled request")
			return resp, err
		}
	}
}
