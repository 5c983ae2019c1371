package negocio

import (
	"context"
	"time"

	"github.com/negocios-forms/core/internal/models"
	"github.com/negocios-forms/core/internal/pkg/errs"
	"github.com/negocios-forms/core/internal/pkg/memstore"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepository is a Repository backed by memstore. Unique names and
// fiscal regimes are enforced the way the Mongo indexes enforce them.
type MemoryRepository struct {
	Docs *memstore.Collection[models.NegocioModel]
	now  func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		Docs: memstore.New(func(n *models.NegocioModel) primitive.ObjectID { return n.ID }),
		now:  time.Now,
	}
}

var (
	_ Repository = (*MemoryRepository)(nil)

	errDuplicateKey = errs.Conflict("registro duplicado")
)

func (r *MemoryRepository) List(ctx context.Context) ([]models.NegocioModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := r.Docs.Find(nil, nil)
	for i := range out {
		out[i].Normalize()
	}
	return out, err
}

func (r *MemoryRepository) Get(ctx context.Context, id primitive.ObjectID) (*models.NegocioModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n, err := r.Docs.Get(id)
	if n != nil {
		n.Normalize()
	}
	return n, err
}

func (r *MemoryRepository) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	n, err := r.Get(ctx, id)
	return n != nil, err
}

func (r *MemoryRepository) FindConflict(ctx context.Context, nombre, regimen string, except primitive.ObjectID) (*models.NegocioModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	found, err := r.Docs.Find(func(n *models.NegocioModel) bool {
		if n.ID == except {
			return false
		}
		return n.NombreNegocio == nombre || (regimen != "" && n.RegimenFiscal == regimen)
	}, nil)
	if err != nil || len(found) == 0 {
		return nil, err
	}
	return &found[0], nil
}

func (r *MemoryRepository) unique(ctx context.Context, n *models.NegocioModel) error {
	dup, err := r.FindConflict(ctx, n.NombreNegocio, n.RegimenFiscal, n.ID)
	if err != nil {
		return err
	}
	if dup != nil {
		return errDuplicateKey
	}
	return nil
}

func (r *MemoryRepository) Insert(ctx context.Context, n *models.NegocioModel) error {
	if err := r.unique(ctx, n); err != nil {
		return err
	}
	return r.Docs.Insert(n)
}

func (r *MemoryRepository) Update(ctx context.Context, id primitive.ObjectID, patch models.NegocioPatch, now time.Time) (*models.NegocioModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	current, err := r.Docs.Get(id)
	if err != nil || current == nil {
		return nil, err
	}
	next := patch.Apply(*current)
	if err := r.unique(ctx, &next); err != nil {
		return nil, err
	}
	_, err = r.Docs.UpdateEach(
		func(n *models.NegocioModel) bool { return n.ID == id },
		func(n *models.NegocioModel) {
			*n = patch.Apply(*n)
			n.Touch(now)
		},
	)
	if err != nil {
		return nil, err
	}
	n, err := r.Docs.Get(id)
	if n != nil {
		n.Normalize()
	}
	return n, err
}

func (r *MemoryRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return r.Docs.Delete(id), nil
}

func (r *MemoryRepository) LinkForm(ctx context.Context, negocioID, formID primitive.ObjectID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n, err := r.Docs.UpdateEach(
		func(n *models.NegocioModel) bool { return n.ID == negocioID },
		func(n *models.NegocioModel) {
			n.Normalize()
			n.AddForm(formID)
			n.Touch(r.now())
		},
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return errNotFound
	}
	return nil
}

func (r *MemoryRepository) UnlinkForm(ctx context.Context, formID primitive.ObjectID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := r.Docs.UpdateEach(
		func(n *models.NegocioModel) bool { return n.HasForm(formID) },
		func(n *models.NegocioModel) {
			n.RemoveForm(formID)
			n.Touch(r.now())
		},
	)
	return err
}
