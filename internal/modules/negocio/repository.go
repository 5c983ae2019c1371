package negocio

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

// Repository stores negocios and maintains their form back-references.
type Repository interface {
	List(ctx context.Context) ([]models.NegocioModel, error)
	// Get returns nil, nil when the negocio does not exist.
	Get(ctx context.Context, id primitive.ObjectID) (*models.NegocioModel, error)
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
	// FindConflict returns a negocio other than except sharing nombre, or
	// regimen when regimen is not empty.
	FindConflict(ctx context.Context, nombre, regimen string, except primitive.ObjectID) (*models.NegocioModel, error)
	Insert(ctx context.Context, n *models.NegocioModel) error
	// Update writes only the attributes patch supplies and returns the stored
	// result, or nil, nil when the negocio does not exist.
	Update(ctx context.Context, id primitive.ObjectID, patch models.NegocioPatch, now time.Time) (*models.NegocioModel, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
	LinkForm(ctx context.Context, negocioID, formID primitive.ObjectID) error
	UnlinkForm(ctx context.Context, formID primitive.ObjectID) error
}

type mongoRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewRepository(db *mongo.Database) Repository {
	return &mongoRepository{coll: db.Collection(models.NegocioModel{}.CollectionName()), now: time.Now}
}

func (r *mongoRepository) observe(op string, start time.Time, err error) {
	metrics.ObserveStore(r.coll.Name(), op, start, err)
}

func (r *mongoRepository) List(ctx context.Context) (out []models.NegocioModel, err error) {
	defer func(start time.Time) { r.observe("list", start, err) }(time.Now())

	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, errs.FromStore(err)
	}
	out = []models.NegocioModel{}
	if err = cur.All(ctx, &out); err != nil {
		return nil, errs.FromStore(err)
	}
	for i := range out {
		out[i].Normalize()
	}
	return out, nil
}

func (r *mongoRepository) Get(ctx context.Context, id primitive.ObjectID) (_ *models.NegocioModel, err error) {
	defer func(start time.Time) { r.observe("get", start, err) }(time.Now())

	var n models.NegocioModel
	err = r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&n)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.FromStore(err)
	}
	n.Normalize()
	return &n, nil
}

func (r *mongoRepository) Exists(ctx context.Context, id primitive.ObjectID) (_ bool, err error) {
	defer func(start time.Time) { r.observe("exists", start, err) }(time.Now())

	n, err := r.coll.CountDocuments(ctx, bson.D{{Key: "_id", Value: id}}, options.Count().SetLimit(1))
	if err != nil {
		return false, errs.FromStore(err)
	}
	return n > 0, nil
}

func (r *mongoRepository) FindConflict(ctx context.Context, nombre, regimen string, except primitive.ObjectID) (_ *models.NegocioModel, err error) {
	defer func(start time.Time) { r.observe("find_conflict", start, err) }(time.Now())

	or := bson.A{bson.D{{Key: "nombre_negocio", Value: nombre}}}
	if regimen != "" {
		or = append(or, bson.D{{Key: "regimen_fiscal", Value: regimen}})
	}
	filter := bson.D{
		{Key: "_id", Value: bson.D{{Key: "$ne", Value: except}}},
		{Key: "$or", Value: or},
	}

	var n models.NegocioModel
	err = r.coll.FindOne(ctx, filter).Decode(&n)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.FromStore(err)
	}
	return &n, nil
}

func (r *mongoRepository) Insert(ctx context.Context, n *models.NegocioModel) (err error) {
	defer func(start time.Time) { r.observe("insert", start, err) }(time.Now())

	if _, err = r.coll.InsertOne(ctx, n); err != nil {
		return errs.FromStore(err)
	}
	return nil
}

func (r *mongoRepository) Update(ctx context.Context, id primitive.ObjectID, patch models.NegocioPatch, now time.Time) (_ *models.NegocioModel, err error) {
	defer func(start time.Time) { r.observe("update", start, err) }(time.Now())

	var n models.NegocioModel
	err = r.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: id}},
		patch.Update(now),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&n)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.FromStore(err)
	}
	n.Normalize()
	return &n, nil
}

func (r *mongoRepository) Delete(ctx context.Context, id primitive.ObjectID) (_ bool, err error) {
	defer func(start time.Time) { r.observe("delete", start, err) }(time.Now())

	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return false, errs.FromStore(err)
	}
	return res.DeletedCount > 0, nil
}

func (r *mongoRepository) LinkForm(ctx context.Context, negocioID, formID primitive.ObjectID) (err error) {
	defer func(start time.Time) { r.observe("link_form", start, err) }(time.Now())

	res, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: negocioID}},
		bson.D{
			{Key: "$addToSet", Value: bson.D{{Key: "formularios", Value: formID}}},
			{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: r.now()}}},
		},
	)
	if err != nil {
		return errs.FromStore(err)
	}
	if res.MatchedCount == 0 {
		return errNotFound
	}
	return nil
}

func (r *mongoRepository) UnlinkForm(ctx context.Context, formID primitive.ObjectID) (err error) {
	defer func(start time.Time) { r.observe("unlink_form", start, err) }(time.Now())

	_, err = r.coll.UpdateMany(ctx,
		bson.D{{Key: "formularios", Value: formID}},
		bson.D{
			{Key: "$pull", Value: bson.D{{Key: "formularios", Value: formID}}},
			{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: r.now()}}},
		},
	)
	if err != nil {
		return errs.FromStore(err)
	}
	return nil
}
