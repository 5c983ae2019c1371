package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func sampleForm() FormModel {
	now := time.Now()
	opt := FieldOption{Base: NewBase(now), Label: "N/A", Activo: true}
	field := FormField{Base: NewBase(now), Label: "Name", Name: "name", FieldType: FieldText, Activo: true, Opciones: []FieldOption{opt}}
	group := FormGroup{Base: NewBase(now), NombreGrupo: "Contact", Orden: 1, Activo: true, Fields: []FormField{field}}
	return FormModel{
		Base:             NewBase(now),
		NombreFormulario: "Intake",
		Activo:           true,
		Negocio:          primitive.NewObjectID(),
		Grupos:           []FormGroup{group},
	}
}

func TestParseObjectID(t *testing.T) {
	id := primitive.NewObjectID()
	got, err := ParseObjectID(id.Hex())
	require.NoError(t, err)
	assert.Equal(t, id, got)

	for _, raw := range []string{"", "123", "zzzzzzzzzzzzzzzzzzzzzzzz", id.Hex() + "0", "abcdefabcdef"} {
		_, err := ParseObjectID(raw)
		assert.ErrorIs(t, err, ErrInvalidID, raw)
	}
}

func TestFormTreeLookups(t *testing.T) {
	f := sampleForm()
	gid := f.Grupos[0].ID
	fid := f.Grupos[0].Fields[0].ID
	oid := f.Grupos[0].Fields[0].Opciones[0].ID

	g, ok := f.Group(gid)
	require.True(t, ok)
	fd, ok := g.Field(fid)
	require.True(t, ok)
	o, ok := fd.Option(oid)
	require.True(t, ok)
	assert.Equal(t, "N/A", o.Label)

	o.Label = "changed"
	assert.Equal(t, "changed", f.Grupos[0].Fields[0].Opciones[0].Label, "lookups address the node in place")

	_, ok = f.Group(primitive.NewObjectID())
	assert.False(t, ok)
	_, ok = g.Field(gid)
	assert.False(t, ok)
	_, ok = fd.Option(fid)
	assert.False(t, ok)
}

func TestInactiveNodesStayAddressable(t *testing.T) {
	f := sampleForm()
	f.Grupos[0].Activo = false
	f.Grupos[0].Fields[0].Activo = false

	g, ok := f.Group(f.Grupos[0].ID)
	require.True(t, ok)
	_, ok = g.Field(g.Fields[0].ID)
	assert.True(t, ok)
}

func TestValidate(t *testing.T) {
	f := sampleForm()
	require.NoError(t, f.Validate())

	bad := sampleForm()
	bad.Grupos[0].Fields[0].FieldType = "textarea"
	err := bad.Validate()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "grupos.0.fields.0.fieldType", verr.Path)

	bad = sampleForm()
	bad.Grupos[0].NombreGrupo = "  "
	require.ErrorAs(t, bad.Validate(), &verr)
	assert.Equal(t, "grupos.0.nombre_grupo", verr.Path)

	bad = sampleForm()
	lo, hi := 10.0, 1.0
	bad.Grupos[0].Fields[0].Validations = FieldValidations{Min: &lo, Max: &hi}
	require.ErrorAs(t, bad.Validate(), &verr)

	bad = sampleForm()
	bad.Negocio = primitive.NilObjectID
	require.ErrorAs(t, bad.Validate(), &verr)
	assert.Equal(t, "negocio", verr.Path)
}

func TestGroupWithOrden(t *testing.T) {
	f := sampleForm()
	gid := f.Grupos[0].ID

	_, taken := f.GroupWithOrden(1, primitive.NewObjectID())
	assert.True(t, taken)
	_, taken = f.GroupWithOrden(1, gid)
	assert.False(t, taken, "a group does not collide with itself")
	_, taken = f.GroupWithOrden(2, primitive.NilObjectID)
	assert.False(t, taken)
}

func TestNormalizeAndBSONShape(t *testing.T) {
	f := FormModel{Base: NewBase(time.Now()), NombreFormulario: "x", Negocio: primitive.NewObjectID()}
	f.Normalize()
	assert.NotNil(t, f.Grupos)

	raw, err := bson.Marshal(f)
	require.NoError(t, err)
	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))
	for _, key := range []string{"_id", "createdAt", "updatedAt", "nombre_formulario", "activo", "negocio", "grupos", "__v"} {
		assert.Contains(t, doc, key)
	}
}
