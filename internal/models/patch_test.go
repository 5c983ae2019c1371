package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestFieldPatchOnlyTouchesSuppliedAttributes(t *testing.T) {
	f := sampleForm()
	orig := f.Grupos[0].Fields[0]
	orig.Placeholder = "your name"
	orig.Required = true

	got := FieldPatch{Label: strPtr("Full name")}.Apply(orig)

	assert.Equal(t, "Full name", got.Label)
	want := orig
	want.Label = "Full name"
	assert.Equal(t, want, got)
	assert.Equal(t, "Name", orig.Label, "Apply returns a copy")
}

func TestFieldPatchReplacesValidationBundle(t *testing.T) {
	f := sampleForm()
	lo := 3.0
	got := FieldPatch{Validations: &FieldValidations{Required: true, Min: &lo, Regex: "^[a-z]+$"}}.Apply(f.Grupos[0].Fields[0])
	assert.True(t, got.Validations.Required)
	assert.Equal(t, 3.0, *got.Validations.Min)
	assert.Nil(t, got.Validations.Max)
}

func TestGroupPatch(t *testing.T) {
	g := sampleForm().Grupos[0]
	orden := 4.0
	got := GroupPatch{Orden: &orden, Activo: boolPtr(false)}.Apply(g)
	assert.Equal(t, 4.0, got.Orden)
	assert.False(t, got.Activo)
	assert.Equal(t, g.NombreGrupo, got.NombreGrupo)

	assert.Equal(t, g, GroupPatch{}.Apply(g))
}

func TestOptionPatch(t *testing.T) {
	o := sampleForm().Grupos[0].Fields[0].Opciones[0]
	got := OptionPatch{Label: strPtr("Otro")}.Apply(o)
	assert.Equal(t, "Otro", got.Label)
	assert.True(t, got.Activo)
}

func TestNegocioFormSet(t *testing.T) {
	f1, f2 := sampleForm().ID, sampleForm().ID
	n := NegocioModel{}
	n.Normalize()

	assert.True(t, n.AddForm(f1))
	assert.False(t, n.AddForm(f1))
	assert.True(t, n.AddForm(f2))
	assert.Len(t, n.Formularios, 2)

	assert.True(t, n.RemoveForm(f1))
	assert.False(t, n.RemoveForm(f1))
	assert.Equal(t, f2, n.Formularios[0])
}

func TestUserPatch(t *testing.T) {
	u := UserModel{Username: "ana", Email: "ana@example.com", Rol: RoleUsuario}
	rol := RoleAdmin
	got := UserPatch{Rol: &rol, PasswordHash: strPtr("hash")}.Apply(u)
	assert.Equal(t, RoleAdmin, got.Rol)
	assert.Equal(t, "hash", got.Password)
	assert.Equal(t, "ana", got.Username)
}

func TestNegocioPatchUpdateDocument(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	got := NegocioPatch{DescripcionNegocio: strPtr("nueva"), RegimenFiscal: strPtr("")}.Update(now)
	assert.Equal(t, bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "descripcion_negocio", Value: "nueva"},
			{Key: "updatedAt", Value: now},
		}},
		{Key: "$unset", Value: bson.D{{Key: "regimen_fiscal", Value: ""}}},
	}, got)

	got = NegocioPatch{}.Update(now)
	assert.Equal(t, bson.D{{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: now}}}}, got)
}

func TestUserPatchUpdateDocument(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	negocio := primitive.NewObjectID()

	got := UserPatch{Email: strPtr("ana@example.com"), Negocio: &negocio}.Update(now)
	assert.Equal(t, bson.D{{Key: "$set", Value: bson.D{
		{Key: "email", Value: "ana@example.com"},
		{Key: "negocio", Value: negocio},
		{Key: "updatedAt", Value: now},
	}}}, got)

	detach := primitive.NilObjectID
	got = UserPatch{Negocio: &detach}.Update(now)
	assert.Equal(t, bson.E{Key: "$unset", Value: bson.D{{Key: "negocio", Value: ""}}}, got[1])
	assert.Nil(t, UserPatch{Negocio: &detach}.Apply(UserModel{Negocio: &negocio}).Negocio)
}
