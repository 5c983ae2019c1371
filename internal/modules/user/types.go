package user

import (
	"bytes"
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/negocios-forms/core/internal/pkg/errs"
)

var (
	errInvalidID        = errs.Invalid("Id de usuario inválido")
	errInvalidNegocioID = errs.Invalid("Id de negocio inválido")
	errNotFound         = errs.NotFound("User not found")
	errNegocioNotFound  = errs.NotFound("Negocio no encontrado")
	errRequired         = errs.Invalid("username, email y password son obligatorios")
	errShortPassword    = errs.Invalid("password debe tener al menos 6 caracteres")
	errInvalidEmail     = errs.Invalid("email inválido")
	errInvalidRol       = errs.Invalid("rol debe ser admin, negocio o usuario")
	errLocationRequired = errs.Invalid("latitude y longitude son obligatorios")
	errDuplicateEmail   = errs.Conflict("Ya existe un usuario con ese email")
)

const minPasswordLength = 6

// validate runs the same rules gin applies to bound DTOs.
var validate = validator.New()

type LocationDTO struct {
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

// Locations decodes either a single location object or an array of them.
type Locations []LocationDTO

func (l *Locations) UnmarshalJSON(b []byte) error {
	raw := bytes.TrimSpace(b)
	if len(raw) > 0 && raw[0] == '{' {
		var one LocationDTO
		if err := json.Unmarshal(raw, &one); err != nil {
			return err
		}
		*l = Locations{one}
		return nil
	}
	var many []LocationDTO
	if err := json.Unmarshal(raw, &many); err != nil {
		return err
	}
	*l = many
	return nil
}

type CreateUserDTO struct {
	Username string    `json:"username" binding:"required"`
	Email    string    `json:"email"    binding:"required,email"`
	Password string    `json:"password" binding:"required,min=6"`
	Rol      string    `json:"rol"`
	Negocio  string    `json:"negocio"`
	Location Locations `json:"location"`
}

type UpdateUserDTO struct {
	Username *string `json:"username"`
	Email    *string `json:"email"    binding:"omitempty,email"`
	Password *string `json:"password"`
	Rol      *string `json:"rol"`
	// Negocio set to "" detaches the user.
	Negocio *string `json:"negocio"`
	Activo  *bool   `json:"activo"`
}

type PutLocationDTO struct {
	Location LocationDTO `json:"location"`
}
