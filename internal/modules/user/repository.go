package user

import (
	"context"
	"errors"
	"time"

	"github.com/negocios-forms/core/internal/models"
	"github.com/negocios-forms/core/internal/pkg/errs"
	"github.com/negocios-forms/core/internal/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	List(ctx context.Context) ([]models.UserModel, error)
	// Get returns nil, nil when the user does not exist.
	Get(ctx context.Context, id primitive.ObjectID) (*models.UserModel, error)
	// EmailTaken reports whether a user other than except owns email.
	EmailTaken(ctx context.Context, email string, except primitive.ObjectID) (bool, error)
	Insert(ctx context.Context, u *models.UserModel) error
	// Update writes only the attributes patch supplies and returns the stored
	// result, or nil, nil when the user does not exist.
	Update(ctx context.Context, id primitive.ObjectID, patch models.UserPatch, now time.Time) (*models.UserModel, error)
	PushLocation(ctx context.Context, id primitive.ObjectID, loc models.UserLocation) (*models.UserModel, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
}

type mongoRepository struct {
	coll *mongo.Collection
}

func NewRepository(db *mongo.Database) Repository {
	return &mongoRepository{coll: db.Collection(models.UserModel{}.CollectionName())}
}

func (r *mongoRepository) List(ctx context.Context) (out []models.UserModel, err error) {
	defer func(start time.Time) { metrics.ObserveStore(r.coll.Name(), "list", start, err) }(time.Now())

	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, errs.FromStore(err)
	}
	out = []models.UserModel{}
	if err = cur.All(ctx, &out); err != nil {
		return nil, errs.FromStore(err)
	}
	for i := range out {
		out[i].Normalize()
	}
	return out, nil
}

func (r *mongoRepository) Get(ctx context.Context, id primitive.ObjectID) (_ *models.UserModel, err error) {
	defer func(start time.Time) { metrics.ObserveStore(r.coll.Name(), "get", start, err) }(time.Now())

	var u models.UserModel
	err = r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.FromStore(err)
	}
	u.Normalize()
	return &u, nil
}

func (r *mongoRepository) EmailTaken(ctx context.Context, email string, except primitive.ObjectID) (_ bool, err error) {
	defer func(start time.Time) { metrics.ObserveStore(r.coll.Name(), "email_taken", start, err) }(time.Now())

	n, err := r.coll.CountDocuments(ctx, bson.D{
		{Key: "email", Value: email},
		{Key: "_id", Value: bson.D{{Key: "$ne", Value: except}}},
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, errs.FromStore(err)
	}
	return n > 0, nil
}

func (r *mongoRepository) Insert(ctx context.Context, u *models.UserModel) (err error) {
	defer func(start time.Time) { metrics.ObserveStore(r.coll.Name(), "insert", start, err) }(time.Now())

	if _, err = r.coll.InsertOne(ctx, u); err != nil {
		return errs.FromStore(err)
	}
	return nil
}

func (r *mongoRepository) Update(ctx context.Context, id primitive.ObjectID, patch models.UserPatch, now time.Time) (*models.UserModel, error) {
	return r.findAndUpdate(ctx, "update", id, patch.Update(now))
}

func (r *mongoRepository) PushLocation(ctx context.Context, id primitive.ObjectID, loc models.UserLocation) (*models.UserModel, error) {
	return r.findAndUpdate(ctx, "push_location", id, bson.D{
		{Key: "$push", Value: bson.D{{Key: "location", Value: loc}}},
		{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: loc.CreatedAt}}},
	})
}

// findAndUpdate applies update to the user and decodes the post-image.
func (r *mongoRepository) findAndUpdate(ctx context.Context, op string, id primitive.ObjectID, update bson.D) (_ *models.UserModel, err error) {
	defer func(start time.Time) { metrics.ObserveStore(r.coll.Name(), op, start, err) }(time.Now())

	var u models.UserModel
	err = r.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: id}},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.FromStore(err)
	}
	u.Normalize()
	return &u, nil
}

func (r *mongoRepository) Delete(ctx context.Context, id primitive.ObjectID) (_ bool, err error) {
	defer func(start time.Time) { metrics.ObserveStore(r.coll.Name(), "delete", start, err) }(time.Now())

	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return false, errs.FromStore(err)
	}
	return res.DeletedCount > 0, nil
}
