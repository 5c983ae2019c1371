package form

import (
	"context"

	"github.com/negocios-forms/core/internal/pkg/errs"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	errInvalidFormID    = errs.Invalid("Id de formulario inválido")
	errInvalidNegocioID = errs.Invalid("Id de negocio inválido")
	errInvalidGroupID   = errs.Invalid("Id de grupo inválido")
	errInvalidFieldID   = errs.Invalid("Id de campo inválido")
	errInvalidOptionID  = errs.Invalid("Id de opción inválido")

	errFormNotFound    = errs.NotFound("Formulario no encontrado")
	errNegocioNotFound = errs.NotFound("Negocio no encontrado")
	errGroupNotFound   = errs.NotFound("Grupo no encontrado")
	errFieldNotFound   = errs.NotFound("Campo no encontrado")
	errOptionNotFound  = errs.NotFound("Opción no encontrada")

	errNombreFormularioRequired = errs.Invalid("nombre_formulario es obligatorio")
	errGroupInputRequired       = errs.Invalid("nombre_grupo y orden son obligatorios")
	errFieldInputRequired       = errs.Invalid("label, name y fieldType son obligatorios")
	errLabelRequired            = errs.Invalid("label es obligatorio")

	errStaleForm = errs.Conflict("El formulario fue modificado por otra solicitud, vuelve a cargarlo")
)

// NegocioLinker maintains the negocio side of the form relationship.
type NegocioLinker interface {
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
	// LinkForm adds formID to the negocio's formularios unless present.
	LinkForm(ctx context.Context, negocioID, formID primitive.ObjectID) error
	// UnlinkForm removes formID from every negocio referencing it.
	UnlinkForm(ctx context.Context, formID primitive.ObjectID) error
}
