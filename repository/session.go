package repository

import (
	"context"
	"time"

	"safeher/model"
	"safeher/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func GetSessionRepo(db *mongo.Database) *SessionRepo {
	return &SessionRepo{MongoCollection: db.Collection(SessionsCollection)}
}

type SessionRepo struct {
	MongoCollection *mongo.Collection
}

func (r *SessionRepo) Create(ctx context.Context, s *model.Session) error {
	timer := utils.TrackDBOperation("insert", SessionsCollection)
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := r.MongoCollection.InsertOne(ctx, s); err != nil {
		return writeErr(err, SessionsCollection, "insert")
	}
	return nil
}

func (r *SessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	timer := utils.TrackDBOperation("find", SessionsCollection)
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var s model.Session
	if err := r.MongoCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&s); err != nil {
		return nil, findErr(err, SessionsCollection, "session")
	}
	return &s, nil
}

// FindActiveByUser returns the user's most recent active session.
func (r *SessionRepo) FindActiveByUser(ctx context.Context, userID string) (*model.Session, error) {
	timer := utils.TrackDBOperation("find", SessionsCollection)
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "start_time", Value: -1}})
	filter := bson.M{"user_id": userID, "status": model.SessionActive}

	var s model.Session
	if err := r.MongoCollection.FindOne(ctx, filter, opts).Decode(&s); err != nil {
		return nil, findErr(err, SessionsCollection, "active session")
	}
	return &s, nil
}

func (r *SessionRepo) ListByUser(ctx context.Context, userID string, page, limit int) ([]model.Session, int64, error) {
	timer := utils.TrackDBOperation("find", SessionsCollection)
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{"user_id": userID}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"location_history": 0})

	sessions, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}

	total, err := r.MongoCollection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, readErr(err, SessionsCollection)
	}
	return sessions, total, nil
}

// FindActiveWithDeadlineBefore returns active sessions whose scheduled end is
// at or before cutoff.
func (r *SessionRepo) FindActiveWithDeadlineBefore(ctx context.Context, cutoff time.Time) ([]model.Session, error) {
	timer := utils.TrackDBOperation("find", SessionsCollection)
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return r.find(ctx, bson.M{
		"status":             model.SessionActive,
		"scheduled_end_time": bson.M{"$lte": cutoff},
	}, options.Find().SetProjection(bson.M{"location_history": 0}))
}

func (r *SessionRepo) FindActiveWithDeadlineAfter(ctx context.Context, cutoff time.Time) ([]model.Session, error) {
	timer := utils.TrackDBOperation("find", SessionsCollection)
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return r.find(ctx, bson.M{
		"status":             model.SessionActive,
		"scheduled_end_time": bson.M{"$gt": cutoff},
	}, options.Find().SetProjection(bson.M{"location_history": 0}))
}

func (r *SessionRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]model.Session, error) {
	cursor, err := r.MongoCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, readErr(err, SessionsCollection)
	}
	defer cursor.Close(ctx)

	sessions := []model.Session{}
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, readErr(err, SessionsCollection)
	}
	return sessions, nil
}

// UpdateStatus applies the transition only if the session is still in from.
// It reports whether a document was changed.
func (r *SessionRepo) UpdateStatus(ctx context.Context, id string, from model.SessionStatus, upd model.StatusUpdate) (bool, error) {
	timer := utils.TrackDBOperation("update", SessionsCollection)
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	set := bson.M{
		"status":     upd.Status,
		"updated_at": time.Now(),
	}
	if upd.EndReason != "" {
		set["end_reason"] = upd.EndReason
	}
	if upd.ActualEndTime != nil {
		set["actual_end_time"] = *upd.ActualEndTime
	}
	if upd.AlertTriggered {
		set["alert_triggered"] = true
		set["alert_reason"] = upd.AlertReason
	}
	if upd.AlertTime != nil {
		set["alert_time"] = *upd.AlertTime
	}

	res, err := r.MongoCollection.UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, writeErr(err, SessionsCollection, "update")
	}
	return res.ModifiedCount == 1, nil
}

// UpdateLocation records loc as the last known location of an active session
// and appends it to the capped history.
func (r *SessionRepo) UpdateLocation(ctx context.Context, id string, loc model.Location) (bool, error) {
	timer := utils.TrackDBOperation("update", SessionsCollection)
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.MongoCollection.UpdateOne(ctx,
		bson.M{"_id": id, "status": model.SessionActive},
		bson.M{
			"$set": bson.M{"last_known_location": loc, "updated_at": time.Now()},
			"$push": bson.M{"location_history": bson.M{
				"$each":  bson.A{loc},
				"$slice": -model.MaxLocationHistory,
			}},
		},
	)
	if err != nil {
		return false, writeErr(err, SessionsCollection, "update")
	}
	return res.MatchedCount == 1, nil
}

func (r *SessionRepo) CountActive(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	n, err := r.MongoCollection.CountDocuments(ctx, bson.M{"status": model.SessionActive})
	if err != nil {
		return 0, readErr(err, SessionsCollection)
	}
	return n, nil
}
