package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Patches hold one pointer per patchable attribute. A nil pointer means the
// attribute was not supplied and keeps its prior value. Apply never mutates
// its argument's scalar fields in place; it returns the patched copy.

type FormPatch struct {
	NombreFormulario *string
	Activo           *bool
}

func (p FormPatch) Apply(f FormModel) FormModel {
	if p.NombreFormulario != nil {
		f.NombreFormulario = *p.NombreFormulario
	}
	if p.Activo != nil {
		f.Activo = *p.Activo
	}
	return f
}

type GroupPatch struct {
	NombreGrupo *string
	Orden       *float64
	Activo      *bool
}

func (p GroupPatch) Apply(g FormGroup) FormGroup {
	if p.NombreGrupo != nil {
		g.NombreGrupo = *p.NombreGrupo
	}
	if p.Orden != nil {
		g.Orden = *p.Orden
	}
	if p.Activo != nil {
		g.Activo = *p.Activo
	}
	return g
}

type FieldPatch struct {
	Label            *string
	Name             *string
	FieldType        *FieldType
	Placeholder      *string
	Activo           *bool
	AllowMultiOption *bool
	Validations      *FieldValidations
	Required         *bool
}

func (p FieldPatch) Apply(f FormField) FormField {
	if p.Label != nil {
		f.Label = *p.Label
	}
	if p.Name != nil {
		f.Name = *p.Name
	}
	if p.FieldType != nil {
		f.FieldType = *p.FieldType
	}
	if p.Placeholder != nil {
		f.Placeholder = *p.Placeholder
	}
	if p.Activo != nil {
		f.Activo = *p.Activo
	}
	if p.AllowMultiOption != nil {
		f.AllowMultiOption = *p.AllowMultiOption
	}
	if p.Validations != nil {
		f.Validations = *p.Validations
	}
	if p.Required != nil {
		f.Required = *p.Required
	}
	return f
}

type OptionPatch struct {
	Label  *string
	Activo *bool
}

func (p OptionPatch) Apply(o FieldOption) FieldOption {
	if p.Label != nil {
		o.Label = *p.Label
	}
	if p.Activo != nil {
		o.Activo = *p.Activo
	}
	return o
}

type NegocioPatch struct {
	NombreNegocio      *string
	DescripcionNegocio *string
	// RegimenFiscal set to "" clears the regime.
	RegimenFiscal *string
	Activo        *bool
}

func (p NegocioPatch) Apply(n NegocioModel) NegocioModel {
	if p.NombreNegocio != nil {
		n.NombreNegocio = *p.NombreNegocio
	}
	if p.DescripcionNegocio != nil {
		n.DescripcionNegocio = *p.DescripcionNegocio
	}
	if p.RegimenFiscal != nil {
		n.RegimenFiscal = *p.RegimenFiscal
	}
	if p.Activo != nil {
		n.Activo = *p.Activo
	}
	return n
}

// Update returns the $set/$unset document writing only the supplied
// attributes. formularios is never part of it.
func (p NegocioPatch) Update(now time.Time) bson.D {
	var set, unset bson.D
	if p.NombreNegocio != nil {
		set = append(set, bson.E{Key: "nombre_negocio", Value: *p.NombreNegocio})
	}
	if p.DescripcionNegocio != nil {
		set = append(set, bson.E{Key: "descripcion_negocio", Value: *p.DescripcionNegocio})
	}
	if p.RegimenFiscal != nil {
		if *p.RegimenFiscal == "" {
			unset = append(unset, bson.E{Key: "regimen_fiscal", Value: ""})
		} else {
			set = append(set, bson.E{Key: "regimen_fiscal", Value: *p.RegimenFiscal})
		}
	}
	if p.Activo != nil {
		set = append(set, bson.E{Key: "activo", Value: *p.Activo})
	}
	return updateDoc(set, unset, now)
}

// UserPatch.PasswordHash must already be hashed by the caller. A Negocio of
// primitive.NilObjectID detaches the user.
type UserPatch struct {
	Username     *string
	Email        *string
	PasswordHash *string
	Rol          *Role
	Negocio      *primitive.ObjectID
	Activo       *bool
}

func (p UserPatch) Apply(u UserModel) UserModel {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.PasswordHash != nil {
		u.Password = *p.PasswordHash
	}
	if p.Rol != nil {
		u.Rol = *p.Rol
	}
	if p.Negocio != nil {
		if p.Negocio.IsZero() {
			u.Negocio = nil
		} else {
			id := *p.Negocio
			u.Negocio = &id
		}
	}
	if p.Activo != nil {
		u.Activo = *p.Activo
	}
	return u
}

// Update returns the $set/$unset document writing only the supplied
// attributes. The location history is never part of it.
func (p UserPatch) Update(now time.Time) bson.D {
	var set, unset bson.D
	if p.Username != nil {
		set = append(set, bson.E{Key: "username", Value: *p.Username})
	}
	if p.Email != nil {
		set = append(set, bson.E{Key: "email", Value: *p.Email})
	}
	if p.PasswordHash != nil {
		set = append(set, bson.E{Key: "password", Value: *p.PasswordHash})
	}
	if p.Rol != nil {
		set = append(set, bson.E{Key: "rol", Value: string(*p.Rol)})
	}
	if p.Negocio != nil {
		if p.Negocio.IsZero() {
			unset = append(unset, bson.E{Key: "negocio", Value: ""})
		} else {
			set = append(set, bson.E{Key: "negocio", Value: *p.Negocio})
		}
	}
	if p.Activo != nil {
		set = append(set, bson.E{Key: "activo", Value: *p.Activo})
	}
	return updateDoc(set, unset, now)
}

func updateDoc(set, unset bson.D, now time.Time) bson.D {
	set = append(set, bson.E{Key: "updatedAt", Value: now})
	doc := bson.D{{Key: "$set", Value: set}}
	if len(unset) > 0 {
		doc = append(doc, bson.E{Key: "$unset", Value: unset})
	}
	return doc
}
