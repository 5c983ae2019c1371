package user

import (
	"context"
	"time"

	"github.com/negocios-forms/core/internal/models"
	"github.com/negocios-forms/core/internal/pkg/errs"
	"github.com/negocios-forms/core/internal/pkg/memstore"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var _ Repository = (*MemoryRepository)(nil)

// MemoryRepository is a Repository backed by memstore with the unique email
// index emulated.
type MemoryRepository struct {
	Docs *memstore.Collection[models.UserModel]
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		Docs: memstore.New(func(u *models.UserModel) primitive.ObjectID { return u.ID }),
	}
}

func (r *MemoryRepository) List(ctx context.Context) ([]models.UserModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := r.Docs.Find(nil, nil)
	for i := range out {
		out[i].Normalize()
	}
	return out, err
}

func (r *MemoryRepository) Get(ctx context.Context, id primitive.ObjectID) (*models.UserModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u, err := r.Docs.Get(id)
	if u != nil {
		u.Normalize()
	}
	return u, err
}

func (r *MemoryRepository) EmailTaken(ctx context.Context, email string, except primitive.ObjectID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	found, err := r.Docs.Find(func(u *models.UserModel) bool { return u.Email == email && u.ID != except }, nil)
	return len(found) > 0, err
}

func (r *MemoryRepository) unique(ctx context.Context, u *models.UserModel) error {
	taken, err := r.EmailTaken(ctx, u.Email, u.ID)
	if err != nil {
		return err
	}
	if taken {
		return errs.Conflict("registro duplicado")
	}
	return nil
}

func (r *MemoryRepository) Insert(ctx context.Context, u *models.UserModel) error {
	if err := r.unique(ctx, u); err != nil {
		return err
	}
	return r.Docs.Insert(u)
}

func (r *MemoryRepository) Update(ctx context.Context, id primitive.ObjectID, patch models.UserPatch, now time.Time) (*models.UserModel, error) {
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
	n, err := r.Docs.UpdateEach(
		func(u *models.UserModel) bool { return u.ID == id },
		func(u *models.UserModel) {
			*u = patch.Apply(*u)
			u.Touch(now)
		},
	)
	if err != nil || n == 0 {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *MemoryRepository) PushLocation(ctx context.Context, id primitive.ObjectID, loc models.UserLocation) (*models.UserModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n, err := r.Docs.UpdateEach(
		func(u *models.UserModel) bool { return u.ID == id },
		func(u *models.UserModel) {
			u.Location = append(u.Location, loc)
			u.Touch(loc.CreatedAt)
		},
	)
	if err != nil || n == 0 {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *MemoryRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return r.Docs.Delete(id), nil
}
