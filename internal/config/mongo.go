package config

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func ConnectMongoDB(cfg *Config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %v", err)
	}

	// Test connection
	err = client.Ping(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %v", err)
	}

	// Create indexes
	err = CreateIndexes(client, cfg.DBName)
	if err != nil {
		return nil, fmt.Errorf("failed to create indexes: %v", err)
	}

	return client, nil
}

func CreateIndexes(client *mongo.Client, dbName string) error {
	db := client.Database(dbName)

	// Users collection indexes
	usersCollection := db.Collection("users")
	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := usersCollection.Indexes().CreateMany(context.Background(), userIndexes)
	if err != nil {
		return err
	}

	// Workspaces collection indexes
	workspacesCollection := db.Collection("workspaces")
	workspaceIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err = workspacesCollection.Indexes().CreateMany(context.Background(), workspaceIndexes)
	if err != nil {
		return err
	}

	// Bots collection indexes
	botsCollection := db.Collection("bots")
	botIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "workspace_id", Value: 1}}},
		{Keys: bson.D{{Key: "embed_secret", Value: 1}}},
	}
	_, err = botsCollection.Indexes().CreateMany(context.Background(), botIndexes)
	if err != nil {
		return err
	}

	// Onboarding drafts: one active draft per bot
	draftsCollection := db.Collection("onboarding_drafts")
	draftIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "bot_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "workspace_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}
	_, err = draftsCollection.Indexes().CreateMany(context.Background(), draftIndexes)
	if err != nil {
		return err
	}

	// Website imports
	importsCollection := db.Collection("website_imports")
	importIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "bot_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}
	_, err = importsCollection.Indexes().CreateMany(context.Background(), importIndexes)
	if err != nil {
		return err
	}

	// Notification logs (read path is paginated and filtered)
	logsCollection := db.Collection("notification_logs")
	logIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "workspace_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "type", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}
	_, err = logsCollection.Indexes().CreateMany(context.Background(), logIndexes)
	if err != nil {
		return err
	}

	// History collections
	for _, name := range []string{"conversations", "leads", "appointments"} {
		col := db.Collection(name)
		idx := []mongo.IndexModel{
			{Keys: bson.D{{Key: "workspace_id", Value: 1}, {Key: "created_at", Value: -1}}},
		}
		if _, err := col.Indexes().CreateMany(context.Background(), idx); err != nil {
			return err
		}
	}

	return nil
}
