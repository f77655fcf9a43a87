package repository

import (
	"context"

	"safeher/model"
	"safeher/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func GetAlertRepo(db *mongo.Database) *AlertRepo {
	return &AlertRepo{MongoCollection: db.Collection(AlertsCollection)}
}

type AlertRepo struct {
	MongoCollection *mongo.Collection
}

// Create stores the alert with its full ledger in a single insert.
func (r *AlertRepo) Create(ctx context.Context, a *model.Alert) error {
	timer := utils.TrackDBOperation("insert", AlertsCollection)
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := r.MongoCollection.InsertOne(ctx, a); err != nil {
		return writeErr(err, AlertsCollection, "insert")
	}
	return nil
}

func (r *AlertRepo) FindByID(ctx context.Context, userID, id string) (*model.Alert, error) {
	timer := utils.TrackDBOperation("find", AlertsCollection)
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var a model.Alert
	if err := r.MongoCollection.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&a); err != nil {
		return nil, findErr(err, AlertsCollection, "alert")
	}
	return &a, nil
}

func (r *AlertRepo) ListByUser(ctx context.Context, userID string, page, limit int) ([]model.Alert, int64, error) {
	timer := utils.TrackDBOperation("find", AlertsCollection)
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{"user_id": userID}
	alerts, err := r.find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page-1)*limit)).
		SetLimit(int64(limit)))
	if err != nil {
		return nil, 0, err
	}

	total, err := r.MongoCollection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, readErr(err, AlertsCollection)
	}
	return alerts, total, nil
}

func (r *AlertRepo) ListBySession(ctx context.Context, userID, sessionID string) ([]model.Alert, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return r.find(ctx, bson.M{"user_id": userID, "session_id": sessionID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
}

func (r *AlertRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]model.Alert, error) {
	cursor, err := r.MongoCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, readErr(err, AlertsCollection)
	}
	defer cursor.Close(ctx)

	alerts := []model.Alert{}
	if err := cursor.All(ctx, &alerts); err != nil {
		return nil, readErr(err, AlertsCollection)
	}
	return alerts, nil
}

func (r *AlertRepo) Delete(ctx context.Context, userID, id string) error {
	timer := utils.TrackDBOperation("delete", AlertsCollection)
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.MongoCollection.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return writeErr(err, AlertsCollection, "delete")
	}
	if res.DeletedCount == 0 {
		return findErr(mongo.ErrNoDocuments, AlertsCollection, "alert")
	}
	return nil
}

func (r *AlertRepo) DeleteAll(ctx context.Context, userID string) (int64, error) {
	timer := utils.TrackDBOperation("delete", AlertsCollection)
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.MongoCollection.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, writeErr(err, AlertsCollection, "delete")
	}
	return res.DeletedCount, nil
}

type countBucket struct {
	Key   string `bson:"_id"`
	Count int64  `bson:"count"`
}

// Stats aggregates totals by reason and status plus the five newest alerts.
func (r *AlertRepo) Stats(ctx context.Context, userID string) (*model.AlertStats, error) {
	timer := utils.TrackDBOperation("aggregate", AlertsCollection)
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	stats := &model.AlertStats{
		ByReason: map[string]int64{},
		ByStatus: map[string]int64{},
	}

	for field, into := range map[string]map[string]int64{
		"trigger_reason": stats.ByReason,
		"status":         stats.ByStatus,
	} {
		pipeline := mongo.Pipeline{
			{{Key: "$match", Value: bson.M{"user_id": userID}}},
			{{Key: "$group", Value: bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}}},
		}
		cursor, err := r.MongoCollection.Aggregate(ctx, pipeline)
		if err != nil {
			return nil, readErr(err, AlertsCollection)
		}
		var buckets []countBucket
		err = cursor.All(ctx, &buckets)
		cursor.Close(ctx)
		if err != nil {
			return nil, readErr(err, AlertsCollection)
		}
		for _, b := range buckets {
			into[b.Key] = b.Count
		}
	}

	for _, n := range stats.ByStatus {
		stats.Total += n
	}

	recent, err := r.find(ctx, bson.M{"user_id": userID}, options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(5))
	if err != nil {
		return nil, err
	}
	stats.Recent = recent
	return stats, nil
}
