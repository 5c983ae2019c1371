// Package legacy converts documents of the flat form_groups schema into
// nested forms.
package legacy

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/negocios-forms/core/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var tipoDatoAliases = map[string]models.FieldType{
	"text":      models.FieldText,
	"texto":     models.FieldText,
	"string":    models.FieldText,
	"cadena":    models.FieldText,
	"number":    models.FieldNumber,
	"numero":    models.FieldNumber,
	"numerico":  models.FieldNumber,
	"int":       models.FieldNumber,
	"integer":   models.FieldNumber,
	"entero":    models.FieldNumber,
	"decimal":   models.FieldNumber,
	"float":     models.FieldNumber,
	"select":    models.FieldSelect,
	"lista":     models.FieldSelect,
	"seleccion": models.FieldSelect,
	"checkbox":  models.FieldCheckbox,
	"casilla":   models.FieldCheckbox,
	"boolean":   models.FieldCheckbox,
	"bool":      models.FieldCheckbox,
	"date":      models.FieldDate,
	"fecha":     models.FieldDate,
	"radio":     models.FieldRadio,
	"opcion":    models.FieldRadio,
}

// FieldTypeOf maps a legacy tipo_dato onto the field type enumeration.
// Unknown values become text, or select when the question has options.
func FieldTypeOf(tipoDato string, hasOptions bool) models.FieldType {
	if ft, ok := tipoDatoAliases[fold(tipoDato)]; ok {
		return ft
	}
	if hasOptions {
		return models.FieldSelect
	}
	return models.FieldText
}

// fold lowercases s and strips accents.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return out
}

// fieldName derives a machine name from a question. Names stay unique within
// the group through a numeric suffix.
func fieldName(pregunta string, pos int, used map[string]bool) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range fold(pregunta) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		case !lastUnderscore:
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	name := strings.TrimSuffix(b.String(), "_")
	if name == "" {
		name = "pregunta_" + strconv.Itoa(pos+1)
	}
	base := name
	for i := 2; used[name]; i++ {
		name = base + "_" + strconv.Itoa(i)
	}
	used[name] = true
	return name
}

func activo(v *bool) bool {
	return v == nil || *v
}

// Transform builds the nested form for one legacy group. The form keeps the
// legacy group id so existing negocio references stay valid.
func Transform(g models.LegacyFormGroup, negocio primitive.ObjectID, now time.Time) models.FormModel {
	created, updated := g.CreatedAt, g.UpdatedAt
	if created.IsZero() {
		created = now
	}
	if updated.IsZero() {
		updated = created
	}

	group := models.FormGroup{
		Base:        models.NewBase(now),
		NombreGrupo: strings.TrimSpace(g.NombreGrupo),
		Orden:       g.Orden,
		Activo:      activo(g.Activo),
		Fields:      make([]models.FormField, 0, len(g.Preguntas)),
	}
	group.CreatedAt, group.UpdatedAt = created, updated

	used := map[string]bool{}
	for i, q := range g.Preguntas {
		label := strings.TrimSpace(q.Pregunta)
		if label == "" {
			label = "Pregunta " + strconv.Itoa(i+1)
		}
		field := models.FormField{
			Base:      models.NewBase(now),
			Label:     label,
			Name:      fieldName(label, i, used),
			FieldType: FieldTypeOf(q.TipoDato, len(q.Opciones) > 0),
			Activo:    true,
			Opciones:  make([]models.FieldOption, 0, len(q.Opciones)),
		}
		if !q.ID.IsZero() {
			field.ID = q.ID
		}
		for j, o := range q.Opciones {
			opt := models.FieldOption{
				Base:   models.NewBase(now),
				Label:  strings.TrimSpace(o.Descripcion),
				Activo: activo(o.Activo),
			}
			if opt.Label == "" {
				opt.Label = "Opción " + strconv.Itoa(j+1)
			}
			if !o.ID.IsZero() {
				opt.ID = o.ID
			}
			field.Opciones = append(field.Opciones, opt)
		}
		group.Fields = append(group.Fields, field)
	}

	f := models.FormModel{
		Base:             models.Base{ID: g.ID, CreatedAt: created, UpdatedAt: updated},
		NombreFormulario: group.NombreGrupo,
		Activo:           group.Activo,
		Negocio:          negocio,
		Grupos:           []models.FormGroup{group},
	}
	f.Normalize()
	return f
}

// Owners maps each legacy group id to the negocio referencing it. The first
// negocio found wins when several point at the same group.
func Owners(refs []models.LegacyNegocioRef) map[primitive.ObjectID]primitive.ObjectID {
	out := map[primitive.ObjectID]primitive.ObjectID{}
	claim := func(group, negocio primitive.ObjectID) {
		if _, ok := out[group]; !ok {
			out[group] = negocio
		}
	}
	for _, ref := range refs {
		if ref.Formulario != nil {
			claim(*ref.Formulario, ref.ID)
		}
		for _, id := range ref.Formularios {
			claim(id, ref.ID)
		}
	}
	return out
}
