package user

import (
	"context"
	"strings"
	"time"

	"github.com/negocios-forms/core/internal/models"
	"github.com/negocios-forms/core/internal/pkg/errs"
	"github.com/negocios-forms/core/internal/pkg/events"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// NegocioLookup resolves the negocio a user is attached to.
type NegocioLookup interface {
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
}

type Service struct {
	repo     Repository
	negocios NegocioLookup
	events   events.Publisher
	log      *zap.Logger
	now      func() time.Time
	cost     int
}

func NewService(repo Repository, negocios NegocioLookup, pub events.Publisher, log *zap.Logger) *Service {
	if pub == nil {
		pub = events.Noop{}
	}
	return &Service{
		repo:     repo,
		negocios: negocios,
		events:   pub,
		log:      log.Named("user"),
		now:      time.Now,
		cost:     bcrypt.DefaultCost,
	}
}

func (s *Service) List(ctx context.Context) ([]models.UserModel, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, rawID string) (*models.UserModel, error) {
	id, err := parseID(rawID, errInvalidID)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

func (s *Service) Create(ctx context.Context, dto CreateUserDTO) (*models.UserModel, error) {
	now := s.now()
	u := &models.UserModel{
		Base:     models.NewBase(now),
		Username: strings.TrimSpace(dto.Username),
		Email:    normalizeEmail(dto.Email),
		Rol:      models.Role(strings.TrimSpace(dto.Rol)),
		Activo:   true,
		Location: []models.UserLocation{},
	}
	if u.Username == "" || u.Email == "" || dto.Password == "" {
		return nil, errRequired
	}
	if err := validate.Var(u.Email, "email"); err != nil {
		return nil, errInvalidEmail
	}
	if u.Rol == "" {
		u.Rol = models.RoleUsuario
	}
	if !u.Rol.Valid() {
		return nil, errInvalidRol
	}
	for _, l := range dto.Location {
		loc, err := newLocation(l, now)
		if err != nil {
			return nil, err
		}
		u.Location = append(u.Location, loc)
	}
	if err := s.setNegocio(ctx, u, dto.Negocio); err != nil {
		return nil, err
	}
	if err := s.setPassword(u, dto.Password); err != nil {
		return nil, err
	}
	if err := s.checkEmail(ctx, u); err != nil {
		return nil, err
	}

	if err := s.repo.Insert(ctx, u); err != nil {
		return nil, err
	}
	s.events.Produce(events.UserCreated, u.ID.Hex(), u)
	return u, nil
}

// Update writes the supplied attributes. A new password is hashed again.
// The location history is left to PutLocation.
func (s *Service) Update(ctx context.Context, rawID string, dto UpdateUserDTO) (*models.UserModel, error) {
	id, err := parseID(rawID, errInvalidID)
	if err != nil {
		return nil, err
	}
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	patch, err := s.patch(ctx, dto)
	if err != nil {
		return nil, err
	}
	next := patch.Apply(*current)
	if err := s.checkEmail(ctx, &next); err != nil {
		return nil, err
	}

	u, err := s.repo.Update(ctx, id, patch, s.now())
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errNotFound
	}
	s.events.Produce(events.UserUpdated, u.ID.Hex(), u)
	return u, nil
}

// patch validates dto and turns it into the stored attributes.
func (s *Service) patch(ctx context.Context, dto UpdateUserDTO) (models.UserPatch, error) {
	var p models.UserPatch
	if dto.Username != nil {
		name := strings.TrimSpace(*dto.Username)
		if name == "" {
			return p, errRequired
		}
		p.Username = &name
	}
	if dto.Email != nil {
		email := normalizeEmail(*dto.Email)
		if email == "" {
			return p, errRequired
		}
		if err := validate.Var(email, "email"); err != nil {
			return p, errInvalidEmail
		}
		p.Email = &email
	}
	if dto.Rol != nil {
		rol := models.Role(strings.TrimSpace(*dto.Rol))
		if !rol.Valid() {
			return p, errInvalidRol
		}
		p.Rol = &rol
	}
	p.Activo = dto.Activo
	if dto.Negocio != nil {
		id, err := s.negocioID(ctx, *dto.Negocio)
		if err != nil {
			return p, err
		}
		p.Negocio = &id
	}
	if dto.Password != nil {
		hash, err := s.hash(*dto.Password)
		if err != nil {
			return p, err
		}
		p.PasswordHash = &hash
	}
	return p, nil
}

// PutLocation appends one entry to the user's location history.
func (s *Service) PutLocation(ctx context.Context, rawID string, dto LocationDTO) (*models.UserModel, error) {
	id, err := parseID(rawID, errInvalidID)
	if err != nil {
		return nil, err
	}
	loc, err := newLocation(dto, s.now())
	if err != nil {
		return nil, err
	}
	u, err := s.repo.PushLocation(ctx, id, loc)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errNotFound
	}
	s.events.Produce(events.UserUpdated, u.ID.Hex(), u)
	return u, nil
}

func (s *Service) Delete(ctx context.Context, rawID string) error {
	id, err := parseID(rawID, errInvalidID)
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
	s.events.Produce(events.UserDeleted, id.Hex(), nil)
	return nil
}

func (s *Service) load(ctx context.Context, id primitive.ObjectID) (*models.UserModel, error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errNotFound
	}
	return u, nil
}

func (s *Service) setPassword(u *models.UserModel, password string) error {
	hash, err := s.hash(password)
	if err != nil {
		return err
	}
	u.Password = hash
	return nil
}

func (s *Service) hash(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", errShortPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", errs.Internal(err)
	}
	return string(hash), nil
}

func (s *Service) setNegocio(ctx context.Context, u *models.UserModel, raw string) error {
	id, err := s.negocioID(ctx, raw)
	if err != nil {
		return err
	}
	u.Negocio = nil
	if !id.IsZero() {
		u.Negocio = &id
	}
	return nil
}

// negocioID resolves raw to an existing negocio. An empty raw yields
// primitive.NilObjectID.
func (s *Service) negocioID(ctx context.Context, raw string) (primitive.ObjectID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return primitive.NilObjectID, nil
	}
	id, err := parseID(raw, errInvalidNegocioID)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if s.negocios != nil {
		ok, err := s.negocios.Exists(ctx, id)
		if err != nil {
			return primitive.NilObjectID, err
		}
		if !ok {
			return primitive.NilObjectID, errNegocioNotFound
		}
	}
	return id, nil
}

func (s *Service) checkEmail(ctx context.Context, u *models.UserModel) error {
	taken, err := s.repo.EmailTaken(ctx, u.Email, u.ID)
	if err != nil {
		return err
	}
	if taken {
		return errDuplicateEmail
	}
	return nil
}

func newLocation(dto LocationDTO, now time.Time) (models.UserLocation, error) {
	lat, lng := strings.TrimSpace(dto.Latitude), strings.TrimSpace(dto.Longitude)
	if lat == "" || lng == "" {
		return models.UserLocation{}, errLocationRequired
	}
	return models.UserLocation{Base: models.NewBase(now), Latitude: lat, Longitude: lng}, nil
}

func normalizeEmail(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func parseID(raw string, invalid error) (primitive.ObjectID, error) {
	id, err := models.ParseObjectID(raw)
	if err != nil {
		return primitive.NilObjectID, invalid
	}
	return id, nil
}
