package repository

import (
	"context"
	"strings"
	"time"

	"safeher/model"
	"safeher/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func GetUserRepo(db *mongo.Database) *UserRepo {
	return &UserRepo{MongoCollection: db.Collection(UsersCollection)}
}

type UserRepo struct {
	MongoCollection *mongo.Collection
}

func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	timer := utils.TrackDBOperation("insert", UsersCollection)
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if _, err := r.MongoCollection.InsertOne(ctx, user); err != nil {
		return writeErr(err, UsersCollection, "insert")
	}

	utils.TrackRegistration()
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

// FindByEmailOrPhone matches either field; used for duplicate checks on register.
func (r *UserRepo) FindByEmailOrPhone(ctx context.Context, email, phone string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"email": strings.ToLower(strings.TrimSpace(email))},
		bson.M{"phone": phone},
	}})
}

func (r *UserRepo) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	timer := utils.TrackDBOperation("find", UsersCollection)
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var user model.User
	if err := r.MongoCollection.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, findErr(err, UsersCollection, "user")
	}
	return &user, nil
}

func (r *UserRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	timer := utils.TrackDBOperation("update", UsersCollection)
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := r.MongoCollection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"last_login": at, "updated_at": at}},
	)
	if err != nil {
		return writeErr(err, UsersCollection, "update")
	}
	return nil
}
