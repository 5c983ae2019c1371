package form

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/negocios-forms/core/internal/models"
	"github.com/negocios-forms/core/internal/pkg/errs"
	"github.com/negocios-forms/core/internal/pkg/events"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// GroupInput is the body of AddGroup. Orden is nil when the caller sent no
// usable number.
type GroupInput struct {
	NombreGrupo string
	Orden       *float64
}

// FieldInput is the body of AddField.
type FieldInput struct {
	Label            string
	Name             string
	FieldType        models.FieldType
	Placeholder      string
	AllowMultiOption bool
	Validations      *models.FieldValidations
	Required         bool
}

type Service struct {
	forms    Repository
	negocios NegocioLinker
	events   events.Publisher
	log      *zap.Logger
	now      func() time.Time
}

func NewService(forms Repository, negocios NegocioLinker, pub events.Publisher, log *zap.Logger) *Service {
	if pub == nil {
		pub = events.Noop{}
	}
	return &Service{
		forms:    forms,
		negocios: negocios,
		events:   pub,
		log:      log.Named("form"),
		now:      time.Now,
	}
}

// ListForms returns every form, newest first.
func (s *Service) ListForms(ctx context.Context) ([]models.FormModel, error) {
	return s.forms.List(ctx)
}

func (s *Service) GetForm(ctx context.Context, formID string) (*models.FormModel, error) {
	id, err := parseID(formID, errInvalidFormID)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

// ListFormsByNegocio returns the forms owned by a negocio, newest first. An
// unknown negocio yields an empty list.
func (s *Service) ListFormsByNegocio(ctx context.Context, negocioID string) ([]models.FormModel, error) {
	id, err := parseID(negocioID, errInvalidNegocioID)
	if err != nil {
		return nil, err
	}
	return s.forms.ListByNegocio(ctx, id)
}

// CreateForm stores an empty form under the negocio and links it there.
func (s *Service) CreateForm(ctx context.Context, negocioID, nombre string) (*models.FormModel, error) {
	nid, err := parseID(negocioID, errInvalidNegocioID)
	if err != nil {
		return nil, err
	}
	nombre = strings.TrimSpace(nombre)
	if nombre == "" {
		return nil, errNombreFormularioRequired
	}

	exists, err := s.negocios.Exists(ctx, nid)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errNegocioNotFound
	}

	f := &models.FormModel{
		Base:             models.NewBase(s.now()),
		NombreFormulario: nombre,
		Activo:           true,
		Negocio:          nid,
	}
	f.Normalize()
	if err := validate(f); err != nil {
		return nil, err
	}
	if err := s.forms.Insert(ctx, f); err != nil {
		return nil, err
	}

	if err := s.negocios.LinkForm(ctx, nid, f.ID); err != nil {
		// Without the back-reference the form would be orphaned.
		if _, delErr := s.forms.Delete(context.WithoutCancel(ctx), f.ID); delErr != nil {
			s.log.Error("rollback of unlinked form failed",
				zap.String("form_id", f.ID.Hex()),
				zap.Error(delErr),
			)
		}
		return nil, err
	}

	s.events.Produce(events.FormCreated, f.ID.Hex(), f)
	return f, nil
}

// UpdateForm patches the root attributes of a form.
func (s *Service) UpdateForm(ctx context.Context, formID string, patch models.FormPatch) (*models.FormModel, error) {
	id, err := parseID(formID, errInvalidFormID)
	if err != nil {
		return nil, err
	}
	f, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	*f = patch.Apply(*f)
	return s.save(ctx, f)
}

// DeleteForm pulls the form from every negocio referencing it, then removes
// it. A failed unlink leaves both untouched.
func (s *Service) DeleteForm(ctx context.Context, formID string) error {
	id, err := parseID(formID, errInvalidFormID)
	if err != nil {
		return err
	}
	f, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.negocios.UnlinkForm(ctx, id); err != nil {
		return err
	}

	deleted, err := s.forms.Delete(ctx, id)
	if err != nil {
		if linkErr := s.negocios.LinkForm(context.WithoutCancel(ctx), f.Negocio, id); linkErr != nil {
			s.log.Error("relink of undeleted form failed",
				zap.String("form_id", id.Hex()),
				zap.String("negocio_id", f.Negocio.Hex()),
				zap.Error(linkErr),
			)
		}
		return err
	}
	if !deleted {
		return errFormNotFound
	}
	s.events.Produce(events.FormDeleted, id.Hex(), nil)
	return nil
}

// AddGroup appends a group to the form.
func (s *Service) AddGroup(ctx context.Context, formID string, in GroupInput) (*models.FormModel, error) {
	id, err := parseID(formID, errInvalidFormID)
	if err != nil {
		return nil, err
	}
	nombre := strings.TrimSpace(in.NombreGrupo)
	if nombre == "" || in.Orden == nil {
		return nil, errGroupInputRequired
	}

	f, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, taken := f.GroupWithOrden(*in.Orden, primitive.NilObjectID); taken {
		return nil, ordenTaken(*in.Orden)
	}

	f.Grupos = append(f.Grupos, models.FormGroup{
		Base:        models.NewBase(s.now()),
		NombreGrupo: nombre,
		Orden:       *in.Orden,
		Activo:      true,
		Fields:      []models.FormField{},
	})
	return s.save(ctx, f)
}

// UpdateGroup applies patch to one group.
func (s *Service) UpdateGroup(ctx context.Context, formID, groupID string, patch models.GroupPatch) (*models.FormModel, error) {
	fid, gid, err := parseGroupPath(formID, groupID)
	if err != nil {
		return nil, err
	}
	f, g, err := s.loadGroup(ctx, fid, gid)
	if err != nil {
		return nil, err
	}
	if patch.NombreGrupo != nil {
		trimmed := strings.TrimSpace(*patch.NombreGrupo)
		patch.NombreGrupo = &trimmed
	}
	if patch.Orden != nil {
		if _, taken := f.GroupWithOrden(*patch.Orden, gid); taken {
			return nil, ordenTaken(*patch.Orden)
		}
	}

	*g = patch.Apply(*g)
	g.Touch(s.now())
	return s.save(ctx, f)
}

// AddField appends a field to the addressed group.
func (s *Service) AddField(ctx context.Context, formID, groupID string, in FieldInput) (*models.FormModel, error) {
	fid, gid, err := parseGroupPath(formID, groupID)
	if err != nil {
		return nil, err
	}
	in.Label = strings.TrimSpace(in.Label)
	in.Name = strings.TrimSpace(in.Name)
	in.FieldType = models.FieldType(strings.TrimSpace(string(in.FieldType)))
	if in.Label == "" || in.Name == "" || in.FieldType == "" {
		return nil, errFieldInputRequired
	}

	f, g, err := s.loadGroup(ctx, fid, gid)
	if err != nil {
		return nil, err
	}

	field := models.FormField{
		Base:             models.NewBase(s.now()),
		Label:            in.Label,
		Name:             in.Name,
		Placeholder:      strings.TrimSpace(in.Placeholder),
		FieldType:        in.FieldType,
		Activo:           true,
		Opciones:         []models.FieldOption{},
		AllowMultiOption: in.AllowMultiOption,
		Required:         in.Required,
	}
	if in.Validations != nil {
		field.Validations = *in.Validations
	}
	g.Fields = append(g.Fields, field)
	return s.save(ctx, f)
}

// UpdateField applies patch to one field.
func (s *Service) UpdateField(ctx context.Context, formID, groupID, fieldID string, patch models.FieldPatch) (*models.FormModel, error) {
	fid, gid, fdid, err := parseFieldPath(formID, groupID, fieldID)
	if err != nil {
		return nil, err
	}
	f, fd, err := s.loadField(ctx, fid, gid, fdid)
	if err != nil {
		return nil, err
	}

	patch.Label = trimmed(patch.Label)
	patch.Name = trimmed(patch.Name)
	patch.Placeholder = trimmed(patch.Placeholder)
	if patch.FieldType != nil {
		ft := models.FieldType(strings.TrimSpace(string(*patch.FieldType)))
		patch.FieldType = &ft
	}

	*fd = patch.Apply(*fd)
	fd.Touch(s.now())
	return s.save(ctx, f)
}

// AddOption appends an option to the addressed field.
func (s *Service) AddOption(ctx context.Context, formID, groupID, fieldID, label string) (*models.FormModel, error) {
	fid, gid, fdid, err := parseFieldPath(formID, groupID, fieldID)
	if err != nil {
		return nil, err
	}
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, errLabelRequired
	}

	f, fd, err := s.loadField(ctx, fid, gid, fdid)
	if err != nil {
		return nil, err
	}
	fd.Opciones = append(fd.Opciones, models.FieldOption{
		Base:   models.NewBase(s.now()),
		Label:  label,
		Activo: true,
	})
	return s.save(ctx, f)
}

// UpdateOption applies patch to one option.
func (s *Service) UpdateOption(ctx context.Context, formID, groupID, fieldID, optionID string, patch models.OptionPatch) (*models.FormModel, error) {
	fid, gid, fdid, err := parseFieldPath(formID, groupID, fieldID)
	if err != nil {
		return nil, err
	}
	oid, err := parseID(optionID, errInvalidOptionID)
	if err != nil {
		return nil, err
	}

	f, fd, err := s.loadField(ctx, fid, gid, fdid)
	if err != nil {
		return nil, err
	}
	o, ok := fd.Option(oid)
	if !ok {
		return nil, errOptionNotFound
	}

	patch.Label = trimmed(patch.Label)
	*o = patch.Apply(*o)
	o.Touch(s.now())
	return s.save(ctx, f)
}

func (s *Service) load(ctx context.Context, id primitive.ObjectID) (*models.FormModel, error) {
	f, err := s.forms.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, errFormNotFound
	}
	return f, nil
}

func (s *Service) loadGroup(ctx context.Context, fid, gid primitive.ObjectID) (*models.FormModel, *models.FormGroup, error) {
	f, err := s.load(ctx, fid)
	if err != nil {
		return nil, nil, err
	}
	g, ok := f.Group(gid)
	if !ok {
		return nil, nil, errGroupNotFound
	}
	return f, g, nil
}

func (s *Service) loadField(ctx context.Context, fid, gid, fdid primitive.ObjectID) (*models.FormModel, *models.FormField, error) {
	f, g, err := s.loadGroup(ctx, fid, gid)
	if err != nil {
		return nil, nil, err
	}
	fd, ok := g.Field(fdid)
	if !ok {
		return nil, nil, errFieldNotFound
	}
	return f, fd, nil
}

// save validates the whole tree and writes it back in one replace.
func (s *Service) save(ctx context.Context, f *models.FormModel) (*models.FormModel, error) {
	f.Normalize()
	if err := validate(f); err != nil {
		return nil, err
	}
	f.Touch(s.now())
	if err := s.forms.Save(ctx, f); err != nil {
		if errs.KindOf(err) == errs.KindConflict {
			s.log.Info("stale form save rejected", zap.String("form_id", f.ID.Hex()), zap.Int64("version", f.Version))
		}
		return nil, err
	}
	s.events.Produce(events.FormUpdated, f.ID.Hex(), f)
	return f, nil
}

func validate(f *models.FormModel) error {
	err := f.Validate()
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return errs.Invalid(verr.Error())
	}
	return err
}

func ordenTaken(orden float64) error {
	return errs.Conflict(fmt.Sprintf("Ya existe un grupo con orden %v en este formulario", orden))
}

func parseID(raw string, invalid error) (primitive.ObjectID, error) {
	id, err := models.ParseObjectID(raw)
	if err != nil {
		return primitive.NilObjectID, invalid
	}
	return id, nil
}

func parseGroupPath(formID, groupID string) (primitive.ObjectID, primitive.ObjectID, error) {
	fid, err := parseID(formID, errInvalidFormID)
	if err != nil {
		return fid, fid, err
	}
	gid, err := parseID(groupID, errInvalidGroupID)
	return fid, gid, err
}

func parseFieldPath(formID, groupID, fieldID string) (fid, gid, fdid primitive.ObjectID, err error) {
	if fid, gid, err = parseGroupPath(formID, groupID); err != nil {
		return
	}
	fdid, err = parseID(fieldID, errInvalidFieldID)
	return
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
