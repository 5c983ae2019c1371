package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// NegocioModel is the owning tenant. Formularios is an insertion-ordered set
// of form ids.
type NegocioModel struct {
	Base               `bson:",inline"`
	NombreNegocio      string               `json:"nombre_negocio"           bson:"nombre_negocio"`
	DescripcionNegocio string               `json:"descripcion_negocio"      bson:"descripcion_negocio"`
	RegimenFiscal      string               `json:"regimen_fiscal,omitempty" bson:"regimen_fiscal,omitempty"`
	Activo             bool                 `json:"activo"                   bson:"activo"`
	Formularios        []primitive.ObjectID `json:"formularios"              bson:"formularios"`
}

func (NegocioModel) CollectionName() string { return "negocios" }

func (n *NegocioModel) Normalize() {
	if n.Formularios == nil {
		n.Formularios = []primitive.ObjectID{}
	}
}

// HasForm reports whether id is already referenced.
func (n *NegocioModel) HasForm(id primitive.ObjectID) bool {
	for _, f := range n.Formularios {
		if f == id {
			return true
		}
	}
	return false
}

// AddForm appends id unless it is already present.
func (n *NegocioModel) AddForm(id primitive.ObjectID) bool {
	if n.HasForm(id) {
		return false
	}
	n.Formularios = append(n.Formularios, id)
	return true
}

// RemoveForm drops id, preserving the order of the rest.
func (n *NegocioModel) RemoveForm(id primitive.ObjectID) bool {
	for i, f := range n.Formularios {
		if f == id {
			n.Formularios = append(n.Formularios[:i:i], n.Formularios[i+1:]...)
			return true
		}
	}
	return false
}
