package repository

import (
	"context"
	"fmt"
	"time"

	"safeher/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	UsersCollection    = "users"
	SessionsCollection = "sessions"
	ContactsCollection = "contacts"
	AlertsCollection   = "alerts"
)

func SetupIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	userIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "email", Value: 1}},
			Options: options.Index().
				SetName("email_unique").
				SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "phone", Value: 1}},
			Options: options.Index().
				SetName("phone_index"),
		},
	}

	sessionIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().
				SetName("user_sessions_date"),
		},
		// Reconcile scans active sessions by deadline
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "scheduled_end_time", Value: 1},
			},
			Options: options.Index().
				SetName("status_deadline"),
		},
	}

	contactIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "is_active", Value: 1},
			},
			Options: options.Index().
				SetName("user_active_contacts"),
		},
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "phone_hash", Value: 1},
			},
			Options: options.Index().
				SetName("user_phone_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"is_active": true}),
		},
	}

	alertIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().
				SetName("user_alerts_date"),
		},
		{
			Keys: bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().
				SetName("session_id_index"),
		},
		{
			Keys: bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().
				SetName("alert_retention").
				SetExpireAfterSeconds(int32(model.AlertRetention / time.Second)),
		},
	}

	for coll, indexes := range map[string][]mongo.IndexModel{
		UsersCollection:    userIndexes,
		SessionsCollection: sessionIndexes,
		ContactsCollection: contactIndexes,
		AlertsCollection:   alertIndexes,
	} {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", coll, err)
		}
	}

	return nil
}
