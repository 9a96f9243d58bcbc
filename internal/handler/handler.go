package handlers

import (
	"github.com/go-playground/validator/v10"

	"contentboard/internal/config"
	"contentboard/internal/logger"
	"contentboard/internal/service"
)

// HealthChecker reports whether the database answers.
type HealthChecker interface {
	HealthCheck() error
}

type Handlers struct {
	UserService   service.UserService
	AuthService   service.AuthService
	PostService   service.PostService
	TagService    service.TagService
	TablesService service.TablesService
	DB            HealthChecker
	Cfg           *config.Config
	Validate      *validator.Validate
	Log           *logger.Logger
}

func NewHandlers(services *service.Service, db HealthChecker, cfg *config.Config, log *logger.Logger) *Handlers {
	return &Handlers{
		UserService:   services.User,
		AuthService:   services.Auth,
		PostService:   services.Post,
		TagService:    services.Tag,
		TablesService: services.Tables,
		DB:            db,
		Cfg:           cfg,
		Validate:      validator.New(),
		Log:           log,
	}
}
