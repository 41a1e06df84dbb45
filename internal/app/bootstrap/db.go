// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"

	activitystore "github.com/dalemusser/learnscope/internal/app/store/activity"
	coursestore "github.com/dalemusser/learnscope/internal/app/store/courses"
	holidaystore "github.com/dalemusser/learnscope/internal/app/store/holidays"
)

// EnsureSchema creates the MongoDB indexes every store depends on. The
// Moodle database is external and read-only; no schema is touched there.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	if err := coursestore.New(db).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("course indexes: %w", err)
	}
	if err := activitystore.New(db).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("activity indexes: %w", err)
	}
	if err := holidaystore.New(db).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("holiday indexes: %w", err)
	}

	logger.Info("MongoDB indexes ensured")
	return nil
}
