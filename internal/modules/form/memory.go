package form

import (
	"context"

	"github.com/negocios-forms/core/internal/models"
	"github.com/negocios-forms/core/internal/pkg/memstore"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepository is a Repository backed by memstore. It honours the same
// version check as the Mongo implementation.
type MemoryRepository struct {
	Docs *memstore.Collection[models.FormModel]
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		Docs: memstore.New(func(f *models.FormModel) primitive.ObjectID { return f.ID }),
	}
}

func newerFirst(a, b *models.FormModel) bool { return a.CreatedAt.After(b.CreatedAt) }

func (r *MemoryRepository) List(ctx context.Context) ([]models.FormModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.normalized(r.Docs.Find(nil, newerFirst))
}

func (r *MemoryRepository) ListByNegocio(ctx context.Context, negocioID primitive.ObjectID) ([]models.FormModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.normalized(r.Docs.Find(func(f *models.FormModel) bool { return f.Negocio == negocioID }, newerFirst))
}

func (r *MemoryRepository) normalized(out []models.FormModel, err error) ([]models.FormModel, error) {
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Normalize()
	}
	return out, nil
}

func (r *MemoryRepository) Get(ctx context.Context, id primitive.ObjectID) (*models.FormModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := r.Docs.Get(id)
	if f != nil {
		f.Normalize()
	}
	return f, err
}

func (r *MemoryRepository) Insert(ctx context.Context, f *models.FormModel) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.Docs.Insert(f)
}

func (r *MemoryRepository) Save(ctx context.Context, f *models.FormModel) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	expected := f.Version
	f.Version = expected + 1
	ok, err := r.Docs.ReplaceIf(f, func(stored *models.FormModel) bool { return stored.Version == expected })
	if err != nil || !ok {
		f.Version = expected
	}
	if err != nil {
		return err
	}
	if !ok {
		return errStaleForm
	}
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return r.Docs.Delete(id), nil
}
