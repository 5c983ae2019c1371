package legacy

import (
	"context"
	"fmt"
	"time"

	"github.com/negocios-forms/core/internal/models"
	"github.com/negocios-forms/core/internal/pkg/errs"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Source reads the superseded collections.
type Source interface {
	Groups(ctx context.Context) ([]models.LegacyFormGroup, error)
	NegocioRefs(ctx context.Context) ([]models.LegacyNegocioRef, error)
}

// FormStore is the part of the form repository the migration writes to.
type FormStore interface {
	Get(ctx context.Context, id primitive.ObjectID) (*models.FormModel, error)
	Insert(ctx context.Context, f *models.FormModel) error
}

type Linker interface {
	LinkForm(ctx context.Context, negocioID, formID primitive.ObjectID) error
}

type Outcome string

const (
	OutcomeMigrated Outcome = "migrated"
	OutcomePlanned  Outcome = "planned"
	OutcomeExisting Outcome = "already_migrated"
	OutcomeOrphan   Outcome = "orphan"
	OutcomeInvalid  Outcome = "invalid"
)

// Step records what happened to one legacy group.
type Step struct {
	GroupID primitive.ObjectID
	Nombre  string
	Negocio primitive.ObjectID
	Fields  int
	Outcome Outcome
	Reason  string
}

type Report struct {
	Steps []Step
}

func (r Report) Count(o Outcome) int {
	n := 0
	for _, s := range r.Steps {
		if s.Outcome == o {
			n++
		}
	}
	return n
}

type Migrator struct {
	src   Source
	forms FormStore
	links Linker
	log   *zap.Logger
	now   func() time.Time
}

func NewMigrator(src Source, forms FormStore, links Linker, log *zap.Logger) *Migrator {
	return &Migrator{src: src, forms: forms, links: links, log: log.Named("legacy"), now: time.Now}
}

// Run converts every legacy group. With dryRun nothing is written. Groups
// already present as forms are skipped, so Run can be repeated.
func (m *Migrator) Run(ctx context.Context, dryRun bool) (Report, error) {
	groups, err := m.src.Groups(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("read legacy groups: %w", err)
	}
	refs, err := m.src.NegocioRefs(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("read negocio references: %w", err)
	}
	owners := Owners(refs)

	var report Report
	for _, g := range groups {
		step, err := m.migrateOne(ctx, g, owners, dryRun)
		if err != nil {
			return report, fmt.Errorf("migrate group %s: %w", g.ID.Hex(), err)
		}
		m.log.Info("legacy group",
			zap.String("group_id", step.GroupID.Hex()),
			zap.String("nombre", step.Nombre),
			zap.String("outcome", string(step.Outcome)),
			zap.Int("fields", step.Fields),
			zap.String("reason", step.Reason),
		)
		report.Steps = append(report.Steps, step)
	}
	return report, nil
}

func (m *Migrator) migrateOne(ctx context.Context, g models.LegacyFormGroup, owners map[primitive.ObjectID]primitive.ObjectID, dryRun bool) (Step, error) {
	step := Step{GroupID: g.ID, Nombre: g.NombreGrupo, Fields: len(g.Preguntas)}

	negocio, ok := owners[g.ID]
	if !ok {
		step.Outcome = OutcomeOrphan
		step.Reason = "ningún negocio referencia el grupo"
		return step, nil
	}
	step.Negocio = negocio

	existing, err := m.forms.Get(ctx, g.ID)
	if err != nil {
		return step, err
	}
	if existing != nil {
		step.Outcome = OutcomeExisting
		return step, nil
	}

	f := Transform(g, negocio, m.now())
	if err := f.Validate(); err != nil {
		step.Outcome = OutcomeInvalid
		step.Reason = err.Error()
		return step, nil
	}
	if dryRun {
		step.Outcome = OutcomePlanned
		return step, nil
	}

	if err := m.forms.Insert(ctx, &f); err != nil {
		return step, err
	}
	if err := m.links.LinkForm(ctx, negocio, f.ID); err != nil {
		// The negocio vanished between the read and the write.
		if errs.KindOf(err) == errs.KindNotFound {
			step.Outcome = OutcomeMigrated
			step.Reason = "negocio no encontrado al enlazar"
			return step, nil
		}
		return step, err
	}
	step.Outcome = OutcomeMigrated
	return step, nil
}

type mongoSource struct {
	db *mongo.Database
}

// NewSource reads legacy documents straight from db.
func NewSource(db *mongo.Database) Source {
	return &mongoSource{db: db}
}

func (s *mongoSource) Groups(ctx context.Context) ([]models.LegacyFormGroup, error) {
	cur, err := s.db.Collection(models.LegacyFormGroup{}.CollectionName()).
		Find(ctx, bson.D{})
	if err != nil {
		return nil, errs.FromStore(err)
	}
	out := []models.LegacyFormGroup{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.FromStore(err)
	}
	return out, nil
}

func (s *mongoSource) NegocioRefs(ctx context.Context) ([]models.LegacyNegocioRef, error) {
	cur, err := s.db.Collection(models.NegocioModel{}.CollectionName()).
		Find(ctx, bson.D{}, options.Find().SetProjection(bson.D{
			{Key: "formulario", Value: 1},
			{Key: "formularios", Value: 1},
		}))
	if err != nil {
		return nil, errs.FromStore(err)
	}
	out := []models.LegacyNegocioRef{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.FromStore(err)
	}
	return out, nil
}
