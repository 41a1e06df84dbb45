// internal/app/features/holidays/handler.go
package holidays

import (
	"go.uber.org/zap"

	uierrors "github.com/dalemusser/learnscope/internal/app/features/errors"
	holidaystore "github.com/dalemusser/learnscope/internal/app/store/holidays"
)

// Handler serves the national-holiday calendar pages and JSON.
type Handler struct {
	Holidays *holidaystore.Store
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
}

// NewHandler creates a holidays handler.
func NewHandler(store *holidaystore.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Holidays: store,
		Log:      logger,
		ErrLog:   errLog,
	}
}
