package form

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

// Repository persists whole form documents.
type Repository interface {
	List(ctx context.Context) ([]models.FormModel, error)
	ListByNegocio(ctx context.Context, negocioID primitive.ObjectID) ([]models.FormModel, error)
	// Get returns nil, nil when the form does not exist.
	Get(ctx context.Context, id primitive.ObjectID) (*models.FormModel, error)
	Insert(ctx context.Context, f *models.FormModel) error
	// Save replaces the stored document if its version still equals
	// f.Version, then bumps f.Version. A mismatch returns errStaleForm.
	Save(ctx context.Context, f *models.FormModel) error
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
}

type mongoRepository struct {
	coll *mongo.Collection
}

func NewRepository(db *mongo.Database) Repository {
	return &mongoRepository{coll: db.Collection(models.FormModel{}.CollectionName())}
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}}

func (r *mongoRepository) List(ctx context.Context) ([]models.FormModel, error) {
	return r.find(ctx, "list", bson.D{})
}

func (r *mongoRepository) ListByNegocio(ctx context.Context, negocioID primitive.ObjectID) ([]models.FormModel, error) {
	return r.find(ctx, "list_by_negocio", bson.D{{Key: "negocio", Value: negocioID}})
}

func (r *mongoRepository) find(ctx context.Context, op string, filter bson.D) (out []models.FormModel, err error) {
	defer func(start time.Time) { metrics.ObserveStore(r.coll.Name(), op, start, err) }(time.Now())

	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, errs.FromStore(err)
	}
	out = []models.FormModel{}
	if err = cur.All(ctx, &out); err != nil {
		return nil, errs.FromStore(err)
	}
	for i := range out {
		out[i].Normalize()
	}
	return out, nil
}

func (r *mongoRepository) Get(ctx context.Context, id primitive.ObjectID) (_ *models.FormModel, err error) {
	defer func(start time.Time) { metrics.ObserveStore(r.coll.Name(), "get", start, err) }(time.Now())

	var f models.FormModel
	err = r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&f)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.FromStore(err)
	}
	f.Normalize()
	return &f, nil
}

func (r *mongoRepository) Insert(ctx context.Context, f *models.FormModel) (err error) {
	defer func(start time.Time) { metrics.ObserveStore(r.coll.Name(), "insert", start, err) }(time.Now())

	if _, err = r.coll.InsertOne(ctx, f); err != nil {
		return errs.FromStore(err)
	}
	return nil
}

func (r *mongoRepository) Save(ctx context.Context, f *models.FormModel) (err error) {
	defer func(start time.Time) { metrics.ObserveStore(r.coll.Name(), "save", start, err) }(time.Now())

	expected := f.Version
	f.Version = expected + 1
	res, err := r.coll.ReplaceOne(ctx, versionFilter(f.ID, expected), f)
	if err != nil {
		f.Version = expected
		return errs.FromStore(err)
	}
	if res.MatchedCount == 0 {
		f.Version = expected
		return errStaleForm
	}
	return nil
}

// versionFilter matches the document at the expected version. Documents
// written before versioning carry no __v and count as version 0.
func versionFilter(id primitive.ObjectID, expected int64) bson.D {
	if expected == 0 {
		return bson.D{
			{Key: "_id", Value: id},
			{Key: "$or", Value: bson.A{
				bson.D{{Key: "__v", Value: 0}},
				bson.D{{Key: "__v", Value: bson.D{{Key: "$exists", Value: false}}}},
			}},
		}
	}
	return bson.D{{Key: "_id", Value: id}, {Key: "__v", Value: expected}}
}

func (r *mongoRepository) Delete(ctx context.Context, id primitive.ObjectID) (_ bool, err error) {
	defer func(start time.Time) { metrics.ObserveStore(r.coll.Name(), "delete", start, err) }(time.Now())

	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return false, errs.FromStore(err)
	}
	return res.DeletedCount > 0, nil
}
