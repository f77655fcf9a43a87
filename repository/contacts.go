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

func GetContactRepo(db *mongo.Database) *ContactRepo {
	return &ContactRepo{MongoCollection: db.Collection(ContactsCollection)}
}

type ContactRepo struct {
	MongoCollection *mongo.Collection
}

func (r *ContactRepo) Create(ctx context.Context, c *model.Contact) error {
	timer := utils.TrackDBOperation("insert", ContactsCollection)
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := r.MongoCollection.InsertOne(ctx, c); err != nil {
		return writeErr(err, ContactsCollection, "insert")
	}
	return nil
}

// ListActive returns the user's active contacts, primary first, newest next.
func (r *ContactRepo) ListActive(ctx context.Context, userID string) ([]model.Contact, error) {
	timer := utils.TrackDBOperation("find", ContactsCollection)
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{
		{Key: "is_primary", Value: -1},
		{Key: "created_at", Value: -1},
	})
	cursor, err := r.MongoCollection.Find(ctx, bson.M{"user_id": userID, "is_active": true}, opts)
	if err != nil {
		return nil, readErr(err, ContactsCollection)
	}
	defer cursor.Close(ctx)

	contacts := []model.Contact{}
	if err := cursor.All(ctx, &contacts); err != nil {
		return nil, readErr(err, ContactsCollection)
	}
	return contacts, nil
}

func (r *ContactRepo) FindByID(ctx context.Context, userID, id string) (*model.Contact, error) {
	timer := utils.TrackDBOperation("find", ContactsCollection)
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var c model.Contact
	err := r.MongoCollection.FindOne(ctx, bson.M{"_id": id, "user_id": userID, "is_active": true}).Decode(&c)
	if err != nil {
		return nil, findErr(err, ContactsCollection, "contact")
	}
	return &c, nil
}

func (r *ContactRepo) CountActive(ctx context.Context, userID string) (int64, error) {
	timer := utils.TrackDBOperation("count", ContactsCollection)
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	n, err := r.MongoCollection.CountDocuments(ctx, bson.M{"user_id": userID, "is_active": true})
	if err != nil {
		return 0, readErr(err, ContactsCollection)
	}
	return n, nil
}

// PhoneHashExists reports whether another active contact of the user has the
// same phone hash. excludeID may be empty.
func (r *ContactRepo) PhoneHashExists(ctx context.Context, userID, hash, excludeID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{"user_id": userID, "phone_hash": hash, "is_active": true}
	if excludeID != "" {
		filter["_id"] = bson.M{"$ne": excludeID}
	}
	n, err := r.MongoCollection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, readErr(err, ContactsCollection)
	}
	return n > 0, nil
}

func (r *ContactRepo) Update(ctx context.Context, userID, id string, upd model.ContactUpdate) (*model.Contact, error) {
	timer := utils.TrackDBOperation("update", ContactsCollection)
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	set := bson.M{"updated_at": time.Now()}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Relationship != nil {
		set["relationship"] = *upd.Relationship
	}
	if upd.PhoneNumber != nil {
		set["phone_number"] = *upd.PhoneNumber
	}
	if upd.PhoneHash != nil {
		set["phone_hash"] = *upd.PhoneHash
	}
	if upd.Email != nil {
		set["email"] = *upd.Email
	}
	if upd.IsPrimary != nil {
		set["is_primary"] = *upd.IsPrimary
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var c model.Contact
	err := r.MongoCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "user_id": userID, "is_active": true},
		bson.M{"$set": set},
		opts,
	).Decode(&c)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, writeErr(err, ContactsCollection, "update")
		}
		return nil, findErr(err, ContactsCollection, "contact")
	}
	return &c, nil
}

// ClearPrimary unsets the primary flag on every active contact except keepID.
func (r *ContactRepo) ClearPrimary(ctx context.Context, userID, keepID string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := r.MongoCollection.UpdateMany(ctx,
		bson.M{"user_id": userID, "is_active": true, "_id": bson.M{"$ne": keepID}},
		bson.M{"$set": bson.M{"is_primary": false}},
	)
	if err != nil {
		return writeErr(err, ContactsCollection, "update")
	}
	return nil
}

// SoftDelete marks the contact inactive.
func (r *ContactRepo) SoftDelete(ctx context.Context, userID, id string) error {
	timer := utils.TrackDBOperation("delete", ContactsCollection)
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.MongoCollection.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID, "is_active": true},
		bson.M{"$set": bson.M{"is_active": false, "is_primary": false, "updated_at": time.Now()}},
	)
	if err != nil {
		return writeErr(err, ContactsCollection, "delete")
	}
	if res.MatchedCount == 0 {
		return findErr(mongo.ErrNoDocuments, ContactsCollection, "contact")
	}
	return nil
}

func (r *ContactRepo) SoftDeleteAll(ctx context.Context, userID string) (int64, error) {
	timer := utils.TrackDBOperation("delete", ContactsCollection)
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.MongoCollection.UpdateMany(ctx,
		bson.M{"user_id": userID, "is_active": true},
		bson.M{"$set": bson.M{"is_active": false, "is_primary": false, "updated_at": time.Now()}},
	)
	if err != nil {
		return 0, writeErr(err, ContactsCollection, "delete")
	}
	return res.ModifiedCount, nil
}
