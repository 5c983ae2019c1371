package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestIndexesCoverUniqueKeys(t *testing.T) {
	idx := Indexes()
	require.Contains(t, idx, "negocios")
	require.Contains(t, idx, "forms")
	require.Contains(t, idx, "users")

	unique := map[string]bool{}
	for coll, list := range idx {
		for _, m := range list {
			if m.Options != nil && m.Options.Unique != nil && *m.Options.Unique {
				keys := m.Keys.(bson.D)
				unique[coll+"."+keys[0].Key] = true
			}
		}
	}
	assert.Equal(t, map[string]bool{
		"negocios.nombre_negocio": true,
		"negocios.regimen_fiscal": true,
		"users.email":             true,
	}, unique)
}

func TestRegimenFiscalIndexIsPartial(t *testing.T) {
	for _, m := range Indexes()["negocios"] {
		if *m.Options.Name == "regimen_fiscal_unique" {
			assert.NotNil(t, m.Options.PartialFilterExpression)
			return
		}
	}
	t.Fatal("regimen_fiscal index missing")
}
