package services

import (
	"context"
	"time"

	"chatbot-admin-console/internal/config"
	"chatbot-admin-console/internal/logger"
	"chatbot-admin-console/models"

	"github.com/go-co-op/gocron"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// RescanScheduler periodically re-queues website scans for live bots so
// their suggestion data does not go stale. The safe-merge policy on the scan
// task guarantees reruns never clobber operator edits.
type RescanScheduler struct {
	scheduler *gocron.Scheduler
	cfg       *config.Config
	db        *mongo.Database
	enqueue   func(bot *models.Bot) error
}

func NewRescanScheduler(cfg *config.Config, mongoClient *mongo.Client, enqueue func(bot *models.Bot) error) *RescanScheduler {
	s := gocron.NewScheduler(time.UTC)
	s.TagsUnique()

	return &RescanScheduler{
		scheduler: s,
		cfg:       cfg,
		db:        mongoClient.Database(cfg.DBName),
		enqueue:   enqueue,
	}
}

func (rs *RescanScheduler) Start() error {
	_, err := rs.scheduler.Cron(rs.cfg.RescanCron).Tag("rescan-live-bots").Do(rs.rescanLiveBots)
	if err != nil {
		return err
	}
	rs.scheduler.StartAsync()
	logger.Info("Rescan scheduler started", "cron", rs.cfg.RescanCron)
	return nil
}

func (rs *RescanScheduler) Stop() {
	rs.scheduler.Stop()
}

func (rs *RescanScheduler) rescanLiveBots() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cursor, err := rs.db.Collection("bots").Find(ctx, bson.M{
		"status":          models.DraftStatusLive,
		"profile.website": bson.M{"$nin": bson.A{"", nil}},
	})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	queued := 0
	for cursor.Next(ctx) {
		var bot models.Bot
		if err := cursor.Decode(&bot); err != nil {
			continue
		}
		if err := rs.enqueue(&bot); err != nil {
			logger.Error("Failed to enqueue rescan", "bot_id", bot.ID.Hex(), "error", err)
			continue
		}
		queued++
	}

	logger.Info("Queued periodic rescans", "count", queued)
	return cursor.Err()
}
