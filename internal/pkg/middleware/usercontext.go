package middleware

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/SmartRiskHQ/SmartRisk/app/models"
	"github.com/SmartRiskHQ/SmartRisk/app/repository"
	"github.com/SmartRiskHQ/SmartRisk/internal/pkg/session"
	"github.com/SmartRiskHQ/SmartRisk/internal/pkg/usercontext"
)

// UserContextMiddleware resolves the session into a complete user context for
// every request. A profile fetch failure degrades to "profile absent" instead
// of failing the request: user present / profile absent is a valid state.
func UserContextMiddleware(c *fiber.Ctx) error {
	store := session.GetSessionStore()
	if store == nil {
		return setAnonymous(c)
	}

	sess, err := store.Get(c)
	if err != nil {
		return setAnonymous(c)
	}

	userID, ok := sess.Get(usercontext.KeyUserID).(uint)
	if !ok || userID == 0 {
		return setAnonymous(c)
	}

	username := session.GetSessionValue(c, usercontext.KeyUsername)
	email := session.GetSessionValue(c, usercontext.KeyEmail)
	isAdmin, _ := sess.Get(usercontext.KeyIsAdmin).(bool)

	var profile *models.Profile
	if repos := repository.GetGlobalRepositories(); repos != nil {
		p, err := repos.Profile.GetByUserID(userID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				log.Printf("profile fetch failed for user %d: %v", userID, err)
			}
		} else {
			profile = p
			isAdmin = isAdmin || p.Role == models.ROLE_ADMIN
		}
	}

	userCtx := usercontext.UserContext{
		UserID:     userID,
		Username:   username,
		Email:      email,
		IsLoggedIn: true,
		IsAdmin:    isAdmin,
		Profile:    profile,
	}
	c.Locals("USER_CONTEXT", userCtx)
	c.Locals(usercontext.KeyFromProtected, true)
	c.Locals(usercontext.KeyUserID, userID)
	c.Locals(usercontext.KeyIsAdmin, isAdmin)

	return c.Next()
}

func setAnonymous(c *fiber.Ctx) error {
	c.Locals("USER_CONTEXT", usercontext.UserContext{
		IsLoggedIn: false,
		IsAdmin:    false,
	})
	c.Locals(usercontext.KeyFromProtected, false)
	c.Locals(usercontext.KeyIsAdmin, false)
	return c.Next()
}
