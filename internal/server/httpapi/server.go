// Package httpapi exposes the REST surface over echo: auth, folders, notes,
// the caller's account and liveness endpoints.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/server/envelope"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/dmitrijs2005/notekeeper/internal/server/services"
	"github.com/labstack/echo/v4"
)

type UserService interface {
	SignUp(ctx context.Context, username, email, password string) (*services.AuthResult, error)
	SignIn(ctx context.Context, email, password string) (*services.AuthResult, error)
	UpdateCredentials(ctx context.Context, userID string, upd models.CredentialsUpdate) (*models.User, error)
	Delete(ctx context.Context, userID string) error
}

type FolderService interface {
	List(ctx context.Context, userID string) ([]*models.Folder, error)
	Create(ctx context.Context, userID, name string) ([]*models.Folder, error)
	Update(ctx context.Context, userID, id, name string) ([]*models.Folder, error)
	Delete(ctx context.Context, userID, id string) ([]*models.Folder, error)
}

type NoteService interface {
	List(ctx context.Context, userID string) ([]*models.Note, error)
	Create(ctx context.Context, userID string, p services.NotePatch) ([]*models.Note, error)
	Update(ctx context.Context, userID, id string, p services.NotePatch) ([]*models.Note, error)
	Delete(ctx context.Context, userID, id string) ([]*models.Note, error)
}

// Authenticator resolves an Authorization header value to a user id.
type Authenticator interface {
	Authenticate(header string) (string, error)
}

type Config struct {
	Address           string
	Environment       string
	Production        bool
	AllowedOrigins    []string
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RequestTimeout    time.Duration
}

type Server struct {
	cfg      Config
	echo     *echo.Echo
	users    UserService
	folders  FolderService
	notes    NoteService
	guard    Authenticator
	envelope *envelope.Builder
	logger   logging.Logger
	started  time.Time
}

func NewServer(cfg Config, us UserService, fs FolderService, ns NoteService, guard Authenticator, l logging.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		echo:     echo.New(),
		users:    us,
		folders:  fs,
		notes:    ns,
		guard:    guard,
		envelope: envelope.NewBuilder(cfg.Production),
		logger:   l.With("module", "http_server"),
		started:  time.Now(),
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.HTTPErrorHandler = s.handleError
	s.registerMiddleware()
	s.registerRoutes()
	return s
}

// Handler returns the fully wired router.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return err
	}
	s.echo.Listener = listen

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := s.echo.Start(""); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) registerRoutes() {
	e := s.echo

	auth := e.Group("/auth")
	auth.POST("/signup", s.signUp)
	auth.POST("/signin", s.signIn)
	auth.GET("/signout", s.signOut)

	folders := e.Group("/folders", s.requireUser)
	folders.GET("", s.listFolders)
	folders.POST("", s.createFolder)
	folders.PUT("/:id", s.updateFolder)
	folders.DELETE("/:id", s.deleteFolder)

	notes := e.Group("/notes", s.requireUser)
	notes.GET("", s.listNotes)
	notes.POST("", s.createNote)
	notes.PUT("/:id", s.updateNote)
	notes.DELETE("/:id", s.deleteNote)

	users := e.Group("/users", s.requireUser)
	users.PUT("", s.updateUser)
	users.DELETE("", s.deleteUser)

	api := e.Group("/api/v1")
	api.GET("/self", s.self)
	api.GET("/health", s.health)
}
