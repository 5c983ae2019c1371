package legacy

import (
	"context"
	"testing"
	"time"

	"github.com/negocios-forms/core/internal/models"
	"github.com/negocios-forms/core/internal/modules/form"
	"github.com/negocios-forms/core/internal/modules/negocio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap/zaptest"
)

func TestFieldTypeOf(t *testing.T) {
	cases := map[string]models.FieldType{
		"texto":     models.FieldText,
		"Número":    models.FieldNumber,
		" FECHA ":   models.FieldDate,
		"boolean":   models.FieldCheckbox,
		"Selección": models.FieldSelect,
		"radio":     models.FieldRadio,
		"":          models.FieldText,
		"color":     models.FieldText,
	}
	for in, want := range cases {
		assert.Equal(t, want, FieldTypeOf(in, false), in)
	}
	assert.Equal(t, models.FieldSelect, FieldTypeOf("desconocido", true))
	assert.Equal(t, models.FieldRadio, FieldTypeOf("radio", true))
}

func TestFieldNameIsUniqueWithinGroup(t *testing.T) {
	used := map[string]bool{}
	assert.Equal(t, "razon_social", fieldName("¿Razón social?", 0, used))
	assert.Equal(t, "razon_social_2", fieldName("Razón  social", 1, used))
	assert.Equal(t, "pregunta_3", fieldName("¿?", 2, used))
}

func legacyGroup() models.LegacyFormGroup {
	no := false
	return models.LegacyFormGroup{
		ID:          primitive.NewObjectID(),
		NombreGrupo: "Datos fiscales",
		Orden:       2,
		Preguntas: []models.LegacyQuestion{
			{ID: primitive.NewObjectID(), Pregunta: "RFC", TipoDato: "texto"},
			{
				ID:       primitive.NewObjectID(),
				Pregunta: "Régimen",
				TipoDato: "lista",
				Opciones: []models.LegacyOption{
					{ID: primitive.NewObjectID(), Descripcion: "General"},
					{ID: primitive.NewObjectID(), Descripcion: "RESICO", Activo: &no},
				},
			},
		},
		CreatedAt: time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestTransform(t *testing.T) {
	g := legacyGroup()
	owner := primitive.NewObjectID()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	f := Transform(g, owner, now)
	require.NoError(t, f.Validate())
	assert.Equal(t, g.ID, f.ID)
	assert.Equal(t, "Datos fiscales", f.NombreFormulario)
	assert.Equal(t, owner, f.Negocio)
	assert.True(t, f.Activo)
	assert.Equal(t, g.CreatedAt, f.CreatedAt)
	assert.Equal(t, g.CreatedAt, f.UpdatedAt)

	require.Len(t, f.Grupos, 1)
	grp := f.Grupos[0]
	assert.Equal(t, 2.0, grp.Orden)
	require.Len(t, grp.Fields, 2)
	assert.Equal(t, g.Preguntas[0].ID, grp.Fields[0].ID)
	assert.Equal(t, "rfc", grp.Fields[0].Name)
	assert.Equal(t, models.FieldText, grp.Fields[0].FieldType)
	assert.Equal(t, models.FieldSelect, grp.Fields[1].FieldType)
	require.Len(t, grp.Fields[1].Opciones, 2)
	assert.True(t, grp.Fields[1].Opciones[0].Activo)
	assert.False(t, grp.Fields[1].Opciones[1].Activo)
	assert.Empty(t, grp.Fields[0].Opciones)
	assert.NotNil(t, grp.Fields[0].Opciones)
}

func TestOwnersFirstReferenceWins(t *testing.T) {
	g1, g2 := primitive.NewObjectID(), primitive.NewObjectID()
	n1, n2 := primitive.NewObjectID(), primitive.NewObjectID()

	owners := Owners([]models.LegacyNegocioRef{
		{ID: n1, Formulario: &g1},
		{ID: n2, Formularios: []primitive.ObjectID{g1, g2}},
	})
	assert.Equal(t, n1, owners[g1])
	assert.Equal(t, n2, owners[g2])
}

type fakeSource struct {
	groups []models.LegacyFormGroup
	refs   []models.LegacyNegocioRef
}

func (s fakeSource) Groups(context.Context) ([]models.LegacyFormGroup, error) { return s.groups, nil }
func (s fakeSource) NegocioRefs(context.Context) ([]models.LegacyNegocioRef, error) {
	return s.refs, nil
}

func TestMigratorRun(t *testing.T) {
	ctx := context.Background()
	negocios := negocio.NewMemoryRepository()
	owner := &models.NegocioModel{
		Base:               models.NewBase(time.Now()),
		NombreNegocio:      "Acme",
		DescripcionNegocio: "Ferretería",
		Activo:             true,
	}
	require.NoError(t, negocios.Insert(ctx, owner))

	owned, orphan := legacyGroup(), legacyGroup()
	orphan.NombreGrupo = "Sin dueño"
	src := fakeSource{
		groups: []models.LegacyFormGroup{owned, orphan},
		refs:   []models.LegacyNegocioRef{{ID: owner.ID, Formulario: &owned.ID}},
	}
	forms := form.NewMemoryRepository()
	m := NewMigrator(src, forms, negocios, zaptest.NewLogger(t))

	report, err := m.Run(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Count(OutcomePlanned))
	assert.Equal(t, 1, report.Count(OutcomeOrphan))
	assert.Equal(t, 0, forms.Docs.Len())
	assert.Equal(t, 0, forms.Docs.Writes())

	report, err = m.Run(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Count(OutcomeMigrated))
	assert.Equal(t, 1, forms.Docs.Len())

	migrated, err := forms.Get(ctx, owned.ID)
	require.NoError(t, err)
	require.NotNil(t, migrated)
	assert.Equal(t, owner.ID, migrated.Negocio)

	n, err := negocios.Get(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{owned.ID}, n.Formularios)

	report, err = m.Run(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Count(OutcomeExisting))
	assert.Equal(t, 1, forms.Docs.Len())
}
