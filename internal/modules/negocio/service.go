package negocio

import (
	"context"
	"strings"
	"time"

	"github.com/negocios-forms/core/internal/models"
	"github.com/negocios-forms/core/internal/pkg/events"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Service struct {
	repo   Repository
	events events.Publisher
	log    *zap.Logger
	now    func() time.Time
}

func NewService(repo Repository, pub events.Publisher, log *zap.Logger) *Service {
	if pub == nil {
		pub = events.Noop{}
	}
	return &Service{repo: repo, events: pub, log: log.Named("negocio"), now: time.Now}
}

func (s *Service) List(ctx context.Context) ([]models.NegocioModel, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, rawID string) (*models.NegocioModel, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

// Create stores a new active negocio with no forms.
func (s *Service) Create(ctx context.Context, dto CreateNegocioDTO) (*models.NegocioModel, error) {
	n := &models.NegocioModel{
		Base:               models.NewBase(s.now()),
		NombreNegocio:      strings.TrimSpace(dto.NombreNegocio),
		DescripcionNegocio: strings.TrimSpace(dto.DescripcionNegocio),
		RegimenFiscal:      strings.TrimSpace(dto.RegimenFiscal),
		Activo:             true,
		Formularios:        []primitive.ObjectID{},
	}
	if dto.Activo != nil {
		n.Activo = *dto.Activo
	}
	if n.NombreNegocio == "" || n.DescripcionNegocio == "" {
		return nil, errRequired
	}
	if err := s.checkUnique(ctx, n); err != nil {
		return nil, err
	}
	if err := s.repo.Insert(ctx, n); err != nil {
		return nil, err
	}
	s.events.Produce(events.NegocioCreated, n.ID.Hex(), n)
	return n, nil
}

// Update writes the supplied attributes. An empty regimen_fiscal clears it.
// The form back-references are never rewritten from the loaded copy.
func (s *Service) Update(ctx context.Context, rawID string, dto UpdateNegocioDTO) (*models.NegocioModel, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	patch := dto.patch()
	next := patch.Apply(*current)
	if next.NombreNegocio == "" || next.DescripcionNegocio == "" {
		return nil, errRequired
	}
	if err := s.checkUnique(ctx, &next); err != nil {
		return nil, err
	}

	n, err := s.repo.Update(ctx, id, patch, s.now())
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, errNotFound
	}
	s.events.Produce(events.NegocioUpdated, n.ID.Hex(), n)
	return n, nil
}

// Delete removes the negocio. Its forms are kept.
func (s *Service) Delete(ctx context.Context, rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return errNotFound
	}
	s.events.Produce(events.NegocioDeleted, id.Hex(), nil)
	return nil
}

func (s *Service) load(ctx context.Context, id primitive.ObjectID) (*models.NegocioModel, error) {
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, errNotFound
	}
	return n, nil
}

func (s *Service) checkUnique(ctx context.Context, n *models.NegocioModel) error {
	dup, err := s.repo.FindConflict(ctx, n.NombreNegocio, n.RegimenFiscal, n.ID)
	if err != nil {
		return err
	}
	if dup == nil {
		return nil
	}
	if dup.NombreNegocio == n.NombreNegocio {
		return errDuplicateNombre
	}
	return errDuplicateRegimen
}

func parseID(raw string) (primitive.ObjectID, error) {
	id, err := models.ParseObjectID(raw)
	if err != nil {
		return primitive.NilObjectID, errInvalidID
	}
	return id, nil
}
