package main

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/dalemusser/learnscope/internal/app/bootstrap"
	coursestore "github.com/dalemusser/learnscope/internal/app/store/courses"
	holidaystore "github.com/dalemusser/learnscope/internal/app/store/holidays"
	moodlestore "github.com/dalemusser/learnscope/internal/app/store/moodle"
	"github.com/dalemusser/learnscope/internal/app/system/holidayfetch"
	"github.com/dalemusser/learnscope/internal/app/system/sync"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	// Subcommand args are ours; WAFFLE's config loader parses os.Args
	// as flags, so hand it only the program name.
	args := make([]string, len(os.Args))
	copy(args, os.Args)
	os.Args = os.Args[:1]

	_, appCfg, err := bootstrap.LoadConfig(logger)
	if err != nil {
		logger.Fatal("config load failed", zap.Error(err))
	}
	if err := bootstrap.ValidateConfig(nil, appCfg, logger); err != nil {
		logger.Fatal("config validation failed", zap.Error(err))
	}

	ctx := context.Background()
	deps, err := bootstrap.ConnectDB(ctx, nil, appCfg, logger)
	if err != nil {
		logger.Fatal("backend connect failed", zap.Error(err))
	}
	defer func() {
		if deps.MoodlePool != nil {
			deps.MoodlePool.Close()
		}
		if deps.RedisClient != nil {
			_ = deps.RedisClient.Close()
		}
		_ = deps.MongoClient.Disconnect(ctx)
	}()

	reconciler := sync.New(
		moodlestore.New(deps.MoodlePool),
		coursestore.New(deps.MongoDatabase),
		logger)
	fetcher := holidayfetch.New(appCfg.HolidayAPIBaseURL, logger)
	sink := holidaystore.New(deps.MongoDatabase)

	cli := &commandLine{
		syncCourses: reconciler.Run,
		loadYears: func(ctx context.Context, years []int) (holidayfetch.LoadStats, error) {
			return fetcher.LoadYears(ctx, sink, years)
		},
	}

	if err := cli.run(ctx, args); err != nil {
		if err != errHelp {
			logger.Error("command failed", zap.Error(err))
		}
		os.Exit(1)
	}
}
