package idempotency

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/GlebRadaev/gofood/pkg/auth"
	"github.com/GlebRadaev/gofood/pkg/utils"
)

const Header = "Idempotency-Key"

type Guard struct {
	client redis.Cmdable
	ttl    time.Duration
}

func New(client redis.Cmdable, ttl time.Duration) *Guard {
	return &Guard{client: client, ttl: ttl}
}

// Key scopes a client key to the caller and the endpoint.
func Key(userID int, method, path, key string) string {
	return fmt.Sprintf("idempotency:%d:%s:%s:%s", userID, method, path, key)
}

// Reserve records key for the guard's TTL. It returns false when the key is already taken.
func (g *Guard) Reserve(ctx context.Context, key string) (bool, error) {
	return g.client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), g.ttl).Result()
}

func (g *Guard) Release(ctx context.Context, key string) error {
	return g.client.Del(ctx, key).Err()
}

// Middleware rejects a replayed Idempotency-Key with 409. Requests without the header pass through.
// If Redis is unreachable the request is served unguarded.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientKey := r.Header.Get(Header)
		if clientKey == "" {
			next.ServeHTTP(w, r)
			return
		}
		actor, _ := auth.IdentityFromContext(r.Context())
		key := Key(actor.UserID, r.Method, r.URL.Path, clientKey)

		fresh, err := g.Reserve(r.Context(), key)
		if err != nil {
			zap.L().Warn("idempotency store unavailable", zap.String("key", key), zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}
		if !fresh {
			zap.L().Info("replayed request rejected", zap.String("key", key))
			utils.RespondWithError(w, http.StatusConflict, "Request with this Idempotency-Key was already processed")
			return
		}

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		// a failed request changed nothing, so the client may retry with the same key
		if ww.Status() >= http.StatusBadRequest {
			if err := g.Release(context.WithoutCancel(r.Context()), key); err != nil {
				zap.L().Warn("failed to release idempotency key", zap.String("key", key), zap.Error(err))
			}
		}
	})
}
