package app

import (
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/quildacademy/quild-backend/internal/clients/redis"
	"github.com/quildacademy/quild-backend/internal/platform/identity"
	"github.com/quildacademy/quild-backend/internal/platform/logger"
	"github.com/quildacademy/quild-backend/internal/platform/webhook"
)

type Clients struct {
	// Redis is nil when REDIS_ADDR is unset; callers fall back to in-process
	// locking and no leaderboard cache.
	Redis    *goredis.Client
	Profiles identity.ProfileFetcher
	Sessions *identity.SessionVerifier
	Webhooks *webhook.Verifier
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	// Redis
	var rdb *goredis.Client
	if strings.TrimSpace(cfg.RedisAddr) != "" {
		c, err := redis.NewClient(log, redis.Config{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			return Clients{}, fmt.Errorf("init redis: %w", err)
		}
		rdb = c
	}

	// Identity provider
	var profiles identity.ProfileFetcher
	if strings.TrimSpace(cfg.IdentitySecretKey) != "" {
		p, err := identity.NewClient(log, identity.ClientConfig{BaseURL: cfg.IdentityAPIURL, SecretKey: cfg.IdentitySecretKey})
		if err != nil {
			closeRedis(rdb)
			return Clients{}, fmt.Errorf("init identity client: %w", err)
		}
		profiles = p
	} else {
		log.Warn("CLERK_SECRET_KEY not set; new users will get placeholder profiles")
	}

	sessions, err := identity.NewSessionVerifier(identity.SessionConfig{
		PublicKeyPEM:      cfg.SessionPublicKey,
		HMACSecret:        cfg.SessionSecret,
		AuthorizedParties: cfg.AuthorizedParties,
	})
	if err != nil {
		closeRedis(rdb)
		return Clients{}, fmt.Errorf("init session verifier: %w", err)
	}

	// Webhooks
	var hooks *webhook.Verifier
	if strings.TrimSpace(cfg.WebhookSecret) != "" {
		v, err := webhook.NewVerifier(cfg.WebhookSecret)
		if err != nil {
			closeRedis(rdb)
			return Clients{}, fmt.Errorf("init webhook verifier: %w", err)
		}
		hooks = v
	} else {
		log.Warn("CLERK_WEBHOOK_SECRET not set; webhook deliveries will be rejected")
	}

	return Clients{
		Redis:    rdb,
		Profiles: profiles,
		Sessions: sessions,
		Webhooks: hooks,
	}, nil
}

func (c Clients) Close() {
	closeRedis(c.Redis)
}

func closeRedis(rdb *goredis.Client) {
	if rdb != nil {
		_ = rdb.Close()
	}
}
