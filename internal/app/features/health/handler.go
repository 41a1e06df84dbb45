package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/dalemusser/learnscope/internal/app/system/timeouts"
)

// Handler holds dependencies needed for health checks.
type Handler struct {
	Client *mongo.Client
	Moodle *pgxpool.Pool
	Redis  *redis.Client
	Log    *zap.Logger
}

// NewHandler constructs a health Handler. Moodle and Redis may be nil;
// their checks report "disabled" instead of probing.
func NewHandler(client *mongo.Client, moodle *pgxpool.Pool, rdb *redis.Client, logger *zap.Logger) *Handler {
	return &Handler{
		Client: client,
		Moodle: moodle,
		Redis:  rdb,
		Log:    logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Moodle   string `json:"moodle"`
	Cache    string `json:"cache"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "moodle":"connected", "cache":"connected" }
//
// The local database is load-bearing: if its ping fails the endpoint
// returns 503. Moodle and cache failures are reported in the body but
// keep the status 200, since the dashboard can serve mirrored data
// without them.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:   "ok",
		Database: "connected",
		Moodle:   "disabled",
		Cache:    "disabled",
	}

	if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		resp.Error = err.Error()
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	if h.Moodle != nil {
		resp.Moodle = "connected"
		if err := h.Moodle.Ping(ctx); err != nil {
			h.Log.Warn("health-check: moodle ping failed", zap.Error(err))
			resp.Moodle = "disconnected"
		}
	}

	if h.Redis != nil {
		resp.Cache = "connected"
		if err := h.Redis.Ping(ctx).Err(); err != nil {
			h.Log.Warn("health-check: redis ping failed", zap.Error(err))
			resp.Cache = "disconnected"
		}
	}

	_ = json.NewEncoder(w).Encode(resp)
}
