// infrastructure/container.go
package infrastructure

import (
	"context"
	"log"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/fitproxy/whoopserver/config"
	"github.com/fitproxy/whoopserver/infrastructure/redis"
	"github.com/fitproxy/whoopserver/internal/auth"
	"github.com/fitproxy/whoopserver/internal/records"
	"github.com/fitproxy/whoopserver/pkg/whoopclient"
)

// Container provides application dependencies
type Container struct {
	// Services
	AuthService    *auth.Service
	RecordsService *records.Service

	// Handlers
	AuthHandler    *auth.Handler
	RecordsHandler *records.Handler

	// Infrastructure
	RedisClient     goredis.UniversalClient
	RedisHealth     *redis.HealthChecker
	TokenStore      *auth.FallbackTokenStore
	CredentialStore *auth.CredentialStore
	WhoopClient     *whoopclient.Client
}

// NewContainer creates and initializes the dependency container
func NewContainer(ctx context.Context, cfg config.Config) (*Container, error) {
	container := &Container{}

	// The durable token mirror is optional; without Redis the fallback store
	// is in-memory only and tokens are lost on restart.
	var redisStore *auth.RedisTokenStore
	healthCheck := func() bool { return false }

	if cfg.Redis.Addr != "" {
		container.RedisClient = redis.NewClient(redis.DefaultConfig(cfg.Redis.Addr, cfg.Redis.Password))
		container.RedisHealth = redis.NewHealthChecker(container.RedisClient, 30*time.Second)
		container.RedisHealth.Check(ctx)

		redisStore = auth.NewRedisTokenStore(container.RedisClient, cfg.Redis.KeyPrefix)
		healthCheck = container.RedisHealth.IsHealthy
	} else {
		log.Println("REDIS_URL not set; tokens will be held in memory only")
	}

	container.TokenStore = auth.NewFallbackTokenStore(redisStore, healthCheck)
	container.TokenStore.StartReplicationRoutine(ctx)

	container.CredentialStore = auth.NewCredentialStore(container.TokenStore)

	auth.InitSessionStore([]byte(cfg.Server.SessionSecret))

	container.AuthService = auth.NewService(auth.OAuthConfig{
		ClientID:     cfg.Whoop.ClientID,
		ClientSecret: cfg.Whoop.ClientSecret,
		RedirectURI:  cfg.RedirectURI(),
		Scopes:       auth.DefaultScopes,
		AuthURL:      cfg.Whoop.AuthURL,
		TokenURL:     cfg.Whoop.TokenURL,
	})

	container.WhoopClient = whoopclient.NewClient(container.CredentialStore, container.AuthService)

	container.RecordsService = records.NewService(container.WhoopClient, cfg.Whoop.APIBaseURL)

	container.AuthHandler = auth.NewHandler(container.AuthService, container.CredentialStore)
	container.RecordsHandler = records.NewHandler(container.RecordsService)

	return container, nil
}

// Shutdown gracefully closes connections
func (c *Container) Shutdown() {
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			log.Printf("Error closing Redis connection: %v", err)
		}
	}
}
