package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func indexModels() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		organizationsCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "isActive", Value: 1}}},
		},
		guestsCollection: {
			{Keys: bson.D{{Key: "guestCode", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "organizationId", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "signInTime", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: 1}}},
			{Keys: bson.D{{Key: "organizationId", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "organizationId", Value: 1}, {Key: "signInTime", Value: 1}}},
		},
	}
}

// EnsureIndexes creates the unique and query indexes both collections rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for collection, idx := range indexModels() {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", collection, err)
		}
	}
	return nil
}
