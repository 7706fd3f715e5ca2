package session

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage/redis"

	"github.com/ManuelReschke/opad/internal/pkg/cache"
	"github.com/ManuelReschke/opad/internal/pkg/env"
)

// Session keys.
const (
	KeyUserID = "user_id"
	KeyEmail  = "email"
)

// sessionDB keeps sessions apart from the cache in database 0.
const sessionDB = 1

var sessionStore *session.Store

// NewSessionStore keeps sessions in Redis, on the server the cache uses.
func NewSessionStore() *session.Store {
	sessionStore = session.New(storeConfig(redis.New(storageConfig())))
	return sessionStore
}

// storageConfig reuses the cache client's address and password and falls
// back to the CACHE_* variables when the cache is not set up.
func storageConfig() redis.Config {
	cfg := redis.Config{
		Host:     env.GetEnv("CACHE_HOST", "localhost"),
		Port:     env.GetEnvInt("CACHE_PORT", 6379),
		Password: env.GetEnv("CACHE_PASSWORD", ""),
		Database: sessionDB,
	}
	client := cache.GetClient()
	if client == nil {
		return cfg
	}
	opts := client.Options()
	if host, port, err := net.SplitHostPort(opts.Addr); err == nil {
		cfg.Host = host
		if n, err := strconv.Atoi(port); err == nil {
			cfg.Port = n
		}
	}
	if opts.Password != "" {
		cfg.Password = opts.Password
	}
	return cfg
}

func storeConfig(storage fiber.Storage) session.Config {
	return session.Config{
		Storage:        storage,
		KeyLookup:      "cookie:session_id",
		CookieHTTPOnly: true,
		CookieSecure:   !env.IsDev(),
		CookieSameSite: "Lax",
		Expiration:     time.Duration(env.GetEnvInt("SESSION_TTL_HOURS", 24*7)) * time.Hour,
	}
}

func GetSessionStore() *session.Store {
	return sessionStore
}

// UseStore replaces the package store, tests use an in-memory one.
func UseStore(store *session.Store) {
	sessionStore = store
}

// Login binds the user to a fresh session id.
func Login(c *fiber.Ctx, userID uint, email string) error {
	if sessionStore == nil {
		return fmt.Errorf("session store not initialized")
	}
	sess, err := sessionStore.Get(c)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	if err := sess.Regenerate(); err != nil {
		return fmt.Errorf("failed to regenerate session: %w", err)
	}
	sess.Set(KeyUserID, userID)
	sess.Set(KeyEmail, email)
	return sess.Save()
}

// Logout destroys the current session.
func Logout(c *fiber.Ctx) error {
	if sessionStore == nil {
		return fmt.Errorf("session store not initialized")
	}
	sess, err := sessionStore.Get(c)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	return sess.Destroy()
}

// CurrentUser returns the user bound to the session, ok is false for
// anonymous requests.
func CurrentUser(c *fiber.Ctx) (userID uint, email string, ok bool) {
	if sessionStore == nil {
		return 0, "", false
	}
	sess, err := sessionStore.Get(c)
	if err != nil {
		return 0, "", false
	}
	id, ok := sess.Get(KeyUserID).(uint)
	if !ok || id == 0 {
		return 0, "", false
	}
	email, _ = sess.Get(KeyEmail).(string)
	return id, email, true
}
