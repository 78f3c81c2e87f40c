package stubserver

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-tutor-cli/internal/models"
)

const sessionCookie = "gema_session"

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
	ClassID  int    `json:"class_id"`
}

func (s *Server) register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return sendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if req.Username == "" || req.Password == "" || req.Role == "" {
		return sendError(c, fiber.StatusBadRequest, "username, password and role required")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return sendError(c, fiber.StatusInternalServerError, "hash password")
	}

	user := User{Username: req.Username, Password: string(hashed), Role: req.Role, ClassID: req.ClassID}
	if err := s.store.CreateUser(&user); err != nil {
		return sendError(c, fiber.StatusBadRequest, "username already taken")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user_id": user.ID})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return sendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	user, err := s.store.UserByUsername(req.Username)
	if err != nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return sendError(c, fiber.StatusUnauthorized, "Invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return sendError(c, fiber.StatusInternalServerError, "sign session")
	}

	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    signed,
		HTTPOnly: true,
		Path:     "/",
	})
	s.logger.Info().Int("user_id", user.ID).Msg("session started")
	return c.JSON(fiber.Map{"message": "Logged in"})
}

func (s *Server) logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:    sessionCookie,
		Value:   "",
		Expires: time.Now().Add(-time.Hour),
		Path:    "/",
	})
	return c.JSON(fiber.Map{"message": "Logged out"})
}

func (s *Server) me(c *fiber.Ctx) error {
	userID, ok := s.sessionUserID(c)
	if !ok {
		return sendError(c, fiber.StatusUnauthorized, "Not logged in")
	}

	user, err := s.store.UserByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return sendError(c, fiber.StatusUnauthorized, "Not logged in")
		}
		return sendError(c, fiber.StatusInternalServerError, "lookup user")
	}

	return c.JSON(models.User{ID: user.ID, Username: user.Username, Role: user.Role, ClassID: user.ClassID})
}

// sessionUserID verifies the session cookie and extracts the user id.
func (s *Server) sessionUserID(c *fiber.Ctx) (int, bool) {
	raw := c.Cookies(sessionCookie)
	if raw == "" {
		return 0, false
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return 0, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false
	}
	id, ok := claims["user_id"].(float64)
	if !ok {
		return 0, false
	}
	return int(id), true
}
