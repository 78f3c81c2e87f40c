// Package stubserver is a local stand-in for the remote tutor service. It
// mirrors the service's endpoint surface and wire shapes closely enough for
// the CLI and its integration tests to run offline; evaluations and tutor
// replies are canned instead of model-generated.
package stubserver

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// Config holds the knobs the stub server needs.
type Config struct {
	// Secret signs the session cookie.
	Secret string
}

// Server bundles the fiber app and its collaborators.
type Server struct {
	App    *fiber.App
	store  *Store
	cfg    Config
	logger zerolog.Logger
}

// New builds the stub application with every route registered.
func New(store *Store, cfg Config, logger zerolog.Logger) *Server {
	s := &Server{
		App:    fiber.New(fiber.Config{AppName: "GEMA Stub"}),
		store:  store,
		cfg:    cfg,
		logger: logger.With().Str("component", "stub_server").Logger(),
	}

	app := s.App
	app.Post("/register", s.register)
	app.Post("/login", s.login)
	app.Post("/logout", s.logout)
	app.Get("/me", s.me)

	app.Get("/programs", s.listPrograms)
	app.Get("/programs/classroom/:classId", s.programsByClass)
	app.Get("/programs/:id", s.programDetail)
	app.Post("/programs", s.createProgram)
	app.Delete("/programs/:id", s.deleteProgram)

	app.Get("/chat/messages", s.listMessages)
	app.Post("/chat/message", s.chatMessage)

	app.Post("/submissions", s.submitCode)
	app.Get("/submissions/program/:pid/user/:uid", s.submissionsForProgramUser)

	app.Post("/quiz/mark", s.markQuiz)
	app.Get("/quiz/program/:programId/user/:userId", s.quizByProgramUser)
	app.Get("/quiz/program/:programId", s.quizzesByProgram)
	app.Get("/quiz/class/:classId", s.quizzesByClass)
	app.Get("/quiz/user/:userId", s.quizByUser)

	app.Get("/audio/*", s.serveAudio)

	return s
}

// sendError mirrors the remote service's failure shape: a bare object with
// an "error" field, no envelope.
func sendError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}
