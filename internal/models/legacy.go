package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Documents of the superseded flat schema. They are only read by the
// one-time migration into FormModel.

type LegacyOption struct {
	ID          primitive.ObjectID `bson:"_id"`
	Descripcion string             `bson:"descripcion"`
	Activo      *bool              `bson:"activo,omitempty"`
}

type LegacyQuestion struct {
	ID       primitive.ObjectID `bson:"_id"`
	Pregunta string             `bson:"pregunta"`
	TipoDato string             `bson:"tipo_dato"`
	Opciones []LegacyOption     `bson:"opciones"`
}

type LegacyFormGroup struct {
	ID          primitive.ObjectID `bson:"_id"`
	NombreGrupo string             `bson:"nombre_grupo"`
	Orden       float64            `bson:"orden"`
	Activo      *bool              `bson:"activo,omitempty"`
	Preguntas   []LegacyQuestion   `bson:"preguntas"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (LegacyFormGroup) CollectionName() string { return "form_groups" }

// LegacyNegocioRef is the slice of a negocio document the migration needs:
// old documents point at one group through formulario, newer ones list ids.
type LegacyNegocioRef struct {
	ID          primitive.ObjectID   `bson:"_id"`
	Formulario  *primitive.ObjectID  `bson:"formulario,omitempty"`
	Formularios []primitive.ObjectID `bson:"formularios"`
}
