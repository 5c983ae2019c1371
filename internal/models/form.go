package models

import (
	"fmt"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FieldType is the input kind of a form field.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldNumber   FieldType = "number"
	FieldSelect   FieldType = "select"
	FieldCheckbox FieldType = "checkbox"
	FieldDate     FieldType = "date"
	FieldRadio    FieldType = "radio"
)

// FieldTypes lists the accepted field types in declaration order.
var FieldTypes = []FieldType{FieldText, FieldNumber, FieldSelect, FieldCheckbox, FieldDate, FieldRadio}

// Valid reports whether t belongs to the fixed enumeration.
func (t FieldType) Valid() bool {
	for _, ft := range FieldTypes {
		if t == ft {
			return true
		}
	}
	return false
}

// FieldValidations is the rule bundle evaluated by form renderers.
type FieldValidations struct {
	Required      bool     `json:"required"                bson:"required"`
	Min           *float64 `json:"min,omitempty"           bson:"min,omitempty"`
	Max           *float64 `json:"max,omitempty"           bson:"max,omitempty"`
	Regex         string   `json:"regex,omitempty"         bson:"regex,omitempty"`
	CustomMessage string   `json:"customMessage,omitempty" bson:"customMessage,omitempty"`
}

// FieldOption is a selectable value of a field.
type FieldOption struct {
	Base   `bson:",inline"`
	Label  string `json:"label"  bson:"label"`
	Activo bool   `json:"activo" bson:"activo"`
}

// FormField is a single data-entry definition inside a group.
type FormField struct {
	Base             `bson:",inline"`
	Label            string           `json:"label"                 bson:"label"`
	Name             string           `json:"name"                  bson:"name"`
	Placeholder      string           `json:"placeholder,omitempty" bson:"placeholder,omitempty"`
	FieldType        FieldType        `json:"fieldType"             bson:"fieldType"`
	Activo           bool             `json:"activo"                bson:"activo"`
	Opciones         []FieldOption    `json:"opciones"              bson:"opciones"`
	AllowMultiOption bool             `json:"allowMultiOption"      bson:"allowMultiOption"`
	Validations      FieldValidations `json:"validations"           bson:"validations"`
	Required         bool             `json:"required"              bson:"required"`
}

// FormGroup is an ordered section of a form.
type FormGroup struct {
	Base        `bson:",inline"`
	NombreGrupo string      `json:"nombre_grupo" bson:"nombre_grupo"`
	Orden       float64     `json:"orden"        bson:"orden"`
	Activo      bool        `json:"activo"       bson:"activo"`
	Fields      []FormField `json:"fields"       bson:"fields"`
}

// FormModel is the root of the form tree. The whole tree is stored as one
// document; Version is checked and bumped on every save.
type FormModel struct {
	Base             `bson:",inline"`
	NombreFormulario string             `json:"nombre_formulario" bson:"nombre_formulario"`
	Activo           bool               `json:"activo"            bson:"activo"`
	Negocio          primitive.ObjectID `json:"negocio"           bson:"negocio"`
	Grupos           []FormGroup        `json:"grupos"            bson:"grupos"`
	Version          int64              `json:"__v"               bson:"__v"`
}

func (FormModel) CollectionName() string { return "forms" }

// Normalize replaces nil sequences with empty ones so the tree always
// serializes arrays.
func (f *FormModel) Normalize() {
	if f.Grupos == nil {
		f.Grupos = []FormGroup{}
	}
	for gi := range f.Grupos {
		g := &f.Grupos[gi]
		if g.Fields == nil {
			g.Fields = []FormField{}
		}
		for fi := range g.Fields {
			if g.Fields[fi].Opciones == nil {
				g.Fields[fi].Opciones = []FieldOption{}
			}
		}
	}
}

// Group returns the group with the given id.
func (f *FormModel) Group(id primitive.ObjectID) (*FormGroup, bool) {
	i, ok := indexNodes(f.Grupos, func(g *FormGroup) primitive.ObjectID { return g.ID })[id]
	if !ok {
		return nil, false
	}
	return &f.Grupos[i], true
}

// Field returns the field with the given id.
func (g *FormGroup) Field(id primitive.ObjectID) (*FormField, bool) {
	i, ok := indexNodes(g.Fields, func(fd *FormField) primitive.ObjectID { return fd.ID })[id]
	if !ok {
		return nil, false
	}
	return &g.Fields[i], true
}

// Option returns the option with the given id.
func (fd *FormField) Option(id primitive.ObjectID) (*FieldOption, bool) {
	i, ok := indexNodes(fd.Opciones, func(o *FieldOption) primitive.ObjectID { return o.ID })[id]
	if !ok {
		return nil, false
	}
	return &fd.Opciones[i], true
}

// GroupWithOrden returns the first group, other than except, using orden.
func (f *FormModel) GroupWithOrden(orden float64, except primitive.ObjectID) (*FormGroup, bool) {
	for i := range f.Grupos {
		if f.Grupos[i].ID != except && f.Grupos[i].Orden == orden {
			return &f.Grupos[i], true
		}
	}
	return nil, false
}

// ValidationError names the offending path inside the tree.
type ValidationError struct {
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Form validation failed: %s: %s", e.Path, e.Message)
}

// Validate enforces the schema of the stored document: required text,
// the field type enumeration, and min/max coherence.
func (f *FormModel) Validate() error {
	if strings.TrimSpace(f.NombreFormulario) == "" {
		return &ValidationError{Path: "nombre_formulario", Message: "es obligatorio"}
	}
	if f.Negocio.IsZero() {
		return &ValidationError{Path: "negocio", Message: "es obligatorio"}
	}
	for gi := range f.Grupos {
		g := &f.Grupos[gi]
		gp := "grupos." + strconv.Itoa(gi)
		if strings.TrimSpace(g.NombreGrupo) == "" {
			return &ValidationError{Path: gp + ".nombre_grupo", Message: "es obligatorio"}
		}
		for fi := range g.Fields {
			fd := &g.Fields[fi]
			fp := gp + ".fields." + strconv.Itoa(fi)
			if strings.TrimSpace(fd.Label) == "" {
				return &ValidationError{Path: fp + ".label", Message: "es obligatorio"}
			}
			if strings.TrimSpace(fd.Name) == "" {
				return &ValidationError{Path: fp + ".name", Message: "es obligatorio"}
			}
			if !fd.FieldType.Valid() {
				return &ValidationError{Path: fp + ".fieldType", Message: fmt.Sprintf("`%s` no es un valor válido", fd.FieldType)}
			}
			v := fd.Validations
			if v.Min != nil && v.Max != nil && *v.Min > *v.Max {
				return &ValidationError{Path: fp + ".validations", Message: "min no puede ser mayor que max"}
			}
			for oi := range fd.Opciones {
				if strings.TrimSpace(fd.Opciones[oi].Label) == "" {
					return &ValidationError{Path: fp + ".opciones." + strconv.Itoa(oi) + ".label", Message: "es obligatorio"}
				}
			}
		}
	}
	return nil
}
