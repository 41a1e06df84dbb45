// internal/app/features/courses/handler.go
package courses

import (
	"go.uber.org/zap"

	uierrors "github.com/dalemusser/learnscope/internal/app/features/errors"
	coursestore "github.com/dalemusser/learnscope/internal/app/store/courses"
)

// Handler is the shared dependency container for the courses feature.
type Handler struct {
	Courses *coursestore.Store
	Log     *zap.Logger
	ErrLog  *uierrors.ErrorLogger
}

// NewHandler constructs a courses Handler.
func NewHandler(store *coursestore.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Courses: store,
		Log:     logger,
		ErrLog:  errLog,
	}
}
