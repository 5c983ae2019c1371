package form

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/negocios-forms/core/internal/models"
)

// Number accepts a JSON number or a numeric string. Anything else leaves it
// unset without failing the decode, so the handler can decide what a bad
// value means for the operation.
type Number struct {
	Value float64
	Valid bool
}

func (n *Number) UnmarshalJSON(b []byte) error {
	*n = Number{}
	raw := bytes.TrimSpace(b)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	text := string(raw)
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		text = strings.TrimSpace(s)
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	n.Value, n.Valid = v, true
	return nil
}

func (n *Number) ptr() *float64 {
	if n == nil || !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

type CreateFormDTO struct {
	NombreFormulario string `json:"nombre_formulario"`
}

type UpdateFormDTO struct {
	NombreFormulario *string `json:"nombre_formulario"`
	Activo           *bool   `json:"activo"`
}

func (d UpdateFormDTO) patch() models.FormPatch {
	return models.FormPatch{NombreFormulario: trimmed(d.NombreFormulario), Activo: d.Activo}
}

type AddGroupDTO struct {
	NombreGrupo string `json:"nombre_grupo"`
	Orden       Number `json:"orden"`
}

// UpdateGroupDTO ignores an orden that is not a number.
type UpdateGroupDTO struct {
	NombreGrupo *string `json:"nombre_grupo"`
	Orden       *Number `json:"orden"`
	Activo      *bool   `json:"activo"`
}

func (d UpdateGroupDTO) patch() models.GroupPatch {
	return models.GroupPatch{NombreGrupo: d.NombreGrupo, Orden: d.Orden.ptr(), Activo: d.Activo}
}

type AddFieldDTO struct {
	Label            string                   `json:"label"`
	Name             string                   `json:"name"`
	FieldType        models.FieldType         `json:"fieldType"`
	Placeholder      string                   `json:"placeholder"`
	AllowMultiOption bool                     `json:"allowMultiOption"`
	Validations      *models.FieldValidations `json:"validations"`
	Required         bool                     `json:"required"`
}

func (d AddFieldDTO) input() FieldInput {
	return FieldInput{
		Label:            d.Label,
		Name:             d.Name,
		FieldType:        d.FieldType,
		Placeholder:      d.Placeholder,
		AllowMultiOption: d.AllowMultiOption,
		Validations:      d.Validations,
		Required:         d.Required,
	}
}

type UpdateFieldDTO struct {
	Label            *string                  `json:"label"`
	Name             *string                  `json:"name"`
	FieldType        *models.FieldType        `json:"fieldType"`
	Placeholder      *string                  `json:"placeholder"`
	Activo           *bool                    `json:"activo"`
	AllowMultiOption *bool                    `json:"allowMultiOption"`
	Validations      *models.FieldValidations `json:"validations"`
	Required         *bool                    `json:"required"`
}

func (d UpdateFieldDTO) patch() models.FieldPatch {
	return models.FieldPatch{
		Label:            d.Label,
		Name:             d.Name,
		FieldType:        d.FieldType,
		Placeholder:      d.Placeholder,
		Activo:           d.Activo,
		AllowMultiOption: d.AllowMultiOption,
		Validations:      d.Validations,
		Required:         d.Required,
	}
}

type AddOptionDTO struct {
	Label string `json:"label"`
}

type UpdateOptionDTO struct {
	Label  *string `json:"label"`
	Activo *bool   `json:"activo"`
}

func (d UpdateOptionDTO) patch() models.OptionPatch {
	return models.OptionPatch{Label: d.Label, Activo: d.Activo}
}
