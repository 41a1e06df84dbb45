// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Read-only pool against the Moodle Postgres database.
	MoodlePool *pgxpool.Pool

	// Nil when caching is disabled.
	RedisClient *redis.Client
}
