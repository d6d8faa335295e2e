package controllers

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/SmartRiskHQ/SmartRisk/app/models"
	"github.com/SmartRiskHQ/SmartRisk/app/repository"
	"github.com/SmartRiskHQ/SmartRisk/internal/pkg/session"
	"github.com/SmartRiskHQ/SmartRisk/internal/pkg/usercontext"
)

var validate = validator.New()

type registerRequest struct {
	FullName string `json:"full_name" validate:"required,min=3,max=150"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleRegister creates a user account and opens a session.
func HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
	}

	repos := repository.GetGlobalRepositories()
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := repos.User.GetByEmail(email); err == nil {
		return jsonError(c, fiber.StatusConflict, "email_taken", "An account with this email already exists")
	}

	user, err := models.CreateUser(strings.TrimSpace(req.FullName), email, req.Password)
	if err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
	}
	if err := repos.User.Create(user); err != nil {
		log.Printf("user create failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to create account")
	}

	if err := openSession(c, user); err != nil {
		log.Printf("session open failed after register: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Account created but login failed")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
	})
}

// HandleLogin verifies credentials and opens a session. Invalid credentials
// leave the session untouched.
func HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
	}

	repos := repository.GetGlobalRepositories()
	user, err := repos.User.GetByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusUnauthorized, "invalid_credentials", "Invalid email or password")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Login failed")
	}
	if !user.CheckPassword(req.Password) {
		return jsonError(c, fiber.StatusUnauthorized, "invalid_credentials", "Invalid email or password")
	}
	if !user.IsActive() {
		return jsonError(c, fiber.StatusForbidden, "account_disabled", "This account is disabled")
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := repos.User.Update(user); err != nil {
		log.Printf("failed to stamp last login for user %d: %v", user.ID, err)
	}

	if err := openSession(c, user); err != nil {
		log.Printf("session open failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Login failed")
	}

	return c.JSON(fiber.Map{
		"id":       user.ID,
		"name":     user.Name,
		"email":    user.Email,
		"is_admin": user.IsAdmin(),
	})
}

// HandleLogout destroys the session.
func HandleLogout(c *fiber.Ctx) error {
	store := session.GetSessionStore()
	if store == nil {
		return c.JSON(fiber.Map{"ok": true})
	}
	sess, err := store.Get(c)
	if err == nil {
		if err := sess.Destroy(); err != nil {
			log.Printf("session destroy failed: %v", err)
		}
	}
	return c.JSON(fiber.Map{"ok": true})
}

type passwordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type passwordResetConfirm struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

// HandlePasswordResetRequest issues a reset token. The response is the same
// whether or not the email exists, so the endpoint cannot be used to probe
// for accounts.
func HandlePasswordResetRequest(c *fiber.Ctx) error {
	var req passwordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
	}

	repos := repository.GetGlobalRepositories()
	user, err := repos.User.GetByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err == nil {
		if err := user.GenerateResetToken(); err == nil {
			if err := repos.User.Update(user); err != nil {
				log.Printf("failed to store reset token for user %d: %v", user.ID, err)
			}
			// TODO: send the reset email once the mailer is configured.
			log.Printf("password reset requested for user %d", user.ID)
		}
	}

	return c.JSON(fiber.Map{"ok": true})
}

// HandlePasswordResetConfirm sets a new password from a valid reset token.
func HandlePasswordResetConfirm(c *fiber.Ctx) error {
	var req passwordResetConfirm
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
	}

	repos := repository.GetGlobalRepositories()
	user, err := repos.User.GetByResetToken(strings.TrimSpace(req.Token))
	if err != nil || !user.IsResetTokenValid(strings.TrimSpace(req.Token)) {
		return jsonError(c, fiber.StatusBadRequest, "invalid_token", "Reset token is invalid or expired")
	}

	if err := user.SetPassword(req.Password); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to set password")
	}
	user.ClearResetToken()
	if err := repos.User.Update(user); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to save password")
	}

	return c.JSON(fiber.Map{"ok": true})
}

func openSession(c *fiber.Ctx, user *models.User) error {
	store := session.GetSessionStore()
	if store == nil {
		return errors.New("session store not initialized")
	}
	sess, err := store.Get(c)
	if err != nil {
		return err
	}
	sess.Set(usercontext.KeyUserID, user.ID)
	sess.Set(usercontext.KeyUsername, user.Name)
	sess.Set(usercontext.KeyEmail, user.Email)
	sess.Set(usercontext.KeyIsAdmin, user.IsAdmin())
	sess.Set(usercontext.AuthKey, true)
	return sess.Save()
}
