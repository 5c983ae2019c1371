package negocio

import (
	"strings"

	"github.com/negocios-forms/core/internal/models"
	"github.com/negocios-forms/core/internal/pkg/errs"
)

var (
	errInvalidID        = errs.Invalid("Id de negocio inválido")
	errNotFound         = errs.NotFound("Negocio no encontrado")
	errRequired         = errs.Invalid("nombre_negocio y descripcion_negocio son obligatorios")
	errDuplicateNombre  = errs.Conflict("Ya existe un negocio con ese nombre_negocio")
	errDuplicateRegimen = errs.Conflict("Ya existe un negocio con ese regimen_fiscal")
)

type CreateNegocioDTO struct {
	NombreNegocio      string `json:"nombre_negocio"`
	DescripcionNegocio string `json:"descripcion_negocio"`
	RegimenFiscal      string `json:"regimen_fiscal"`
	Activo             *bool  `json:"activo"`
}

type UpdateNegocioDTO struct {
	NombreNegocio      *string `json:"nombre_negocio"`
	DescripcionNegocio *string `json:"descripcion_negocio"`
	RegimenFiscal      *string `json:"regimen_fiscal"`
	Activo             *bool   `json:"activo"`
}

func (d UpdateNegocioDTO) patch() models.NegocioPatch {
	return models.NegocioPatch{
		NombreNegocio:      trimmed(d.NombreNegocio),
		DescripcionNegocio: trimmed(d.DescripcionNegocio),
		RegimenFiscal:      trimmed(d.RegimenFiscal),
		Activo:             d.Activo,
	}
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}
