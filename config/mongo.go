package config

import (
	"context"
	"log"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	mongoClient *mongo.Client
	mongoOnce   sync.Once
)

// ConnectMongo initializes a singleton Mongo client from MONGOURI.
// Returns nil without error when no URI is configured, letting callers
// fall back to a non-Mongo notification store.
func ConnectMongo() (*mongo.Client, error) {
	var err error
	mongoOnce.Do(func() {
		cfg := LoadConfig()
		if cfg.MongoURI == "" || cfg.AppEnv == "test" {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var client *mongo.Client
		client, err = mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return
		}
		if err = client.Ping(ctx, nil); err != nil {
			return
		}

		mongoClient = client
		log.Printf("Connected to MongoDB")
	})
	return mongoClient, err
}

// GetMongoCollection returns a collection handle from the configured database.
func GetMongoCollection(collection string) *mongo.Collection {
	if mongoClient == nil {
		return nil
	}
	cfg := LoadConfig()
	dbName := cfg.MongoDB
	if dbName == "" {
		dbName = "bookingapi"
	}
	return mongoClient.Database(dbName).Collection(collection)
}
