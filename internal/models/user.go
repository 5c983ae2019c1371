package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Role selects the profile a user account acts under.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleNegocio Role = "negocio"
	RoleUsuario Role = "usuario"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleNegocio, RoleUsuario:
		return true
	}
	return false
}

// UserLocation is one entry of a user's location history.
type UserLocation struct {
	Base      `bson:",inline"`
	Latitude  string `json:"latitude"  bson:"latitude"`
	Longitude string `json:"longitude" bson:"longitude"`
}

// UserModel is an account. Password holds a bcrypt hash and is never
// serialized to clients.
type UserModel struct {
	Base     `bson:",inline"`
	Username string              `json:"username"          bson:"username"`
	Email    string              `json:"email"             bson:"email"`
	Password string              `json:"-"                 bson:"password"`
	Rol      Role                `json:"rol"               bson:"rol"`
	Negocio  *primitive.ObjectID `json:"negocio,omitempty" bson:"negocio,omitempty"`
	Activo   bool                `json:"activo"            bson:"activo"`
	Location []UserLocation      `json:"location"          bson:"location"`
}

func (UserModel) CollectionName() string { return "users" }

func (u *UserModel) Normalize() {
	if u.Location == nil {
		u.Location = []UserLocation{}
	}
	if u.Rol == "" {
		u.Rol = RoleUsuario
	}
}
