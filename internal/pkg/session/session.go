package session

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage/redis"

	"github.com/SmartRiskHQ/SmartRisk/internal/pkg/cache"
	"github.com/SmartRiskHQ/SmartRisk/internal/pkg/env"
)

// Manager owns the server-side session store lifecycle. It is constructed
// once at startup and torn down on shutdown so tests can swap in their own
// instance instead of relying on ambient state.
type Manager struct {
	store   *session.Store
	storage *redis.Storage
}

var manager *Manager

// NewManager builds a session store backed by Redis database 1 (the cache
// uses DB 0), reusing the cache client's address and credentials.
func NewManager() *Manager {
	cacheClient := cache.GetClient()
	host := "localhost"
	port := 6379
	password := env.GetEnv("CACHE_PASSWORD", "")
	if cacheClient != nil {
		addr := cacheClient.Options().Addr
		if h, p, err := net.SplitHostPort(addr); err == nil {
			host = h
			if v, err := strconv.Atoi(p); err == nil {
				port = v
			}
		}
		// Prefer password from the underlying client if present
		if p := cacheClient.Options().Password; p != "" {
			password = p
		}
	}

	storage := redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: password,
		Database: 1, // Separate database for sessions
		Reset:    false,
	})

	store := session.New(session.Config{
		Storage:        storage,
		CookieHTTPOnly: true,
		Expiration:     24 * time.Hour,
		KeyLookup:      "cookie:session_id",
	})

	return &Manager{store: store, storage: storage}
}

// Store exposes the underlying fiber session store
func (m *Manager) Store() *session.Store {
	return m.store
}

// Close releases the session storage connection
func (m *Manager) Close() error {
	if m.storage != nil {
		return m.storage.Close()
	}
	return nil
}

// Install makes a manager the process-wide default used by middleware.
func Install(m *Manager) {
	manager = m
}

// Shutdown closes the installed manager's storage, if any.
func Shutdown() error {
	if manager == nil {
		return nil
	}
	return manager.Close()
}

// GetSessionStore returns the installed session store
func GetSessionStore() *session.Store {
	if manager == nil {
		return nil
	}
	return manager.store
}

// SetSessionValue stores a key-value pair in the user's individual session
func SetSessionValue(c *fiber.Ctx, key string, value string) error {
	store := GetSessionStore()
	if store == nil {
		return fmt.Errorf("session store not initialized")
	}

	sess, err := store.Get(c)
	if err != nil {
		return fmt.Errorf("failed to get session: %v", err)
	}

	sess.Set(key, value)
	return sess.Save()
}

// GetSessionValue retrieves a value by key from the user's individual session
func GetSessionValue(c *fiber.Ctx, key string) string {
	store := GetSessionStore()
	if store == nil {
		return ""
	}

	sess, err := store.Get(c)
	if err != nil {
		return ""
	}

	value := sess.Get(key)
	if value == nil {
		return ""
	}

	if strValue, ok := value.(string); ok {
		return strValue
	}

	return ""
}
