// Package fakeapi serves an in-memory copy of the remote user service, for
// tests and offline demos.
package fakeapi

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/dusk-indust/usermgr/internal/userapi"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"go.uber.org/zap"
)

// Server is a fiber app implementing GET/POST /users and
// GET/PUT/DELETE /users/:id over an in-memory list.
type Server struct {
	app *fiber.App
	log *zap.Logger

	mu       sync.Mutex
	users    []userapi.User
	nextID   int
	failures map[string]int // method -> status for the next request
	delay    time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithUsers replaces the seed data.
func WithUsers(users []userapi.User) Option {
	return func(s *Server) {
		s.users = slices.Clone(users)
	}
}

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithDelay makes every request wait d before it is handled.
func WithDelay(d time.Duration) Option {
	return func(s *Server) {
		s.delay = d
	}
}

// New creates a Server seeded with SeedUsers.
func New(opts ...Option) *Server {
	s := &Server{
		log:      zap.NewNop(),
		users:    SeedUsers(),
		failures: make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, u := range s.users {
		s.nextID = max(s.nextID, u.ID)
	}
	s.nextID++

	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		AppName:               "usermgr-fakeapi",
	})
	s.app.Use(s.logRequest)
	s.app.Use(s.injectFailure)

	s.app.Get("/users", s.handleList)
	s.app.Post("/users", s.handleCreate)
	s.app.Get("/users/:id", s.handleGet)
	s.app.Put("/users/:id", s.handleUpdate)
	s.app.Delete("/users/:id", s.handleDelete)
	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Handler adapts the app to net/http, e.g. for httptest.NewServer.
func (s *Server) Handler() http.Handler {
	return adaptor.FiberApp(s.app)
}

// Listen serves on addr until ctx is cancelled.
func (s *Server) Listen(ctx context.Context, addr string) error {
	go func() {
		<-ctx.Done()
		_ = s.app.ShutdownWithTimeout(5 * time.Second)
	}()
	s.log.Info("fake user service listening", zap.String("addr", addr))
	return s.app.Listen(addr)
}

// FailNext makes the next request with the given method answer status
// without touching the data.
func (s *Server) FailNext(method string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = status
}

// Users returns a copy of the current data.
func (s *Server) Users() []userapi.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.users)
}

func (s *Server) logRequest(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.log.Debug("fakeapi request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("elapsed", time.Since(start)))
	return err
}

func (s *Server) injectFailure(c *fiber.Ctx) error {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	s.mu.Lock()
	status, ok := s.failures[c.Method()]
	delete(s.failures, c.Method())
	s.mu.Unlock()

	if ok {
		return c.Status(status).JSON(fiber.Map{"error": http.StatusText(status)})
	}
	return c.Next()
}

func (s *Server) handleList(c *fiber.Ctx) error {
	return c.JSON(s.Users())
}

func (s *Server) handleGet(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	s.mu.Lock()
	i := s.indexOf(id)
	var u userapi.User
	if i >= 0 {
		u = s.users[i]
	}
	s.mu.Unlock()

	if i < 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{})
	}
	return c.JSON(u)
}

func (s *Server) handleCreate(c *fiber.Ctx) error {
	var u userapi.User
	if err := c.BodyParser(&u); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	s.mu.Lock()
	u.ID = s.nextID
	s.nextID++
	s.users = append(s.users, u)
	s.mu.Unlock()

	return c.Status(fiber.StatusCreated).JSON(u)
}

func (s *Server) handleUpdate(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	var u userapi.User
	if err := c.BodyParser(&u); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	u.ID = id

	s.mu.Lock()
	i := s.indexOf(id)
	if i >= 0 {
		s.users[i] = u
	}
	s.mu.Unlock()

	if i < 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{})
	}
	return c.JSON(u)
}

func (s *Server) handleDelete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	s.mu.Lock()
	i := s.indexOf(id)
	if i >= 0 {
		s.users = slices.Delete(s.users, i, i+1)
	}
	s.mu.Unlock()

	if i < 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{})
	}
	return c.JSON(fiber.Map{})
}

// indexOf must be called with s.mu held.
func (s *Server) indexOf(id int) int {
	return slices.IndexFunc(s.users, func(u userapi.User) bool { return u.ID == id })
}
