package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultTimeout = 10 * time.Second

// Collection names. Sessions and reset tokens use the token itself as _id.
const (
	agentsCollection     = "agents"
	sessionsCollection   = "sessions"
	resetsCollection     = "reset_tokens"
	businessesCollection = "businesses"
	incidentsCollection  = "incidents"
	commentsCollection   = "comments"
	activitiesCollection = "activities"
	countersCollection   = "counters"
)

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	return client, db, nil
}

// EnsureIndexes creates the indexes the repositories rely on: unique usernames
// for agents, and expiry indexes feeding the background sweeper.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	agentIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "username", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"username": bson.M{"$gt": ""}}),
		},
		{Keys: bson.D{{Key: "email", Value: 1}}},
		{Keys: bson.D{{Key: "subgroup", Value: 1}}},
	}
	if _, err := db.Collection(agentsCollection).Indexes().CreateMany(ctx, agentIndexes); err != nil {
		return fmt.Errorf("agent indexes: %w", err)
	}

	if _, err := db.Collection(sessionsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "expires_at", Value: 1}},
	}); err != nil {
		return fmt.Errorf("session indexes: %w", err)
	}

	if _, err := db.Collection(resetsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "expires_at", Value: 1}},
	}); err != nil {
		return fmt.Errorf("reset token indexes: %w", err)
	}

	if _, err := db.Collection(incidentsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "business_id", Value: 1}},
	}); err != nil {
		return fmt.Errorf("incident indexes: %w", err)
	}

	if _, err := db.Collection(activitiesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "agent_id", Value: 1}},
	}); err != nil {
		return fmt.Errorf("activity indexes: %w", err)
	}

	return nil
}

// nextID hands out monotonically increasing int64 ids per entity, backed by a
// counters collection and an atomic findOneAndUpdate upsert.
func nextID(ctx context.Context, db *mongo.Database, entity string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := db.Collection(countersCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": entity},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next id for %s: %w", entity, err)
	}
	return counter.Seq, nil
}
