package form

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/negocios-forms/core/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T) (*gin.Engine, *fixture) {
	t.Helper()
	fx := newFixture(t)
	r := gin.New()
	NewHandler(fx.svc).RegisterRoutes(r.Group(""))
	return r, fx
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeForm(t *testing.T, w *httptest.ResponseRecorder) models.FormModel {
	t.Helper()
	var f models.FormModel
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &f), w.Body.String())
	return f
}

func message(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body.Message
}

func TestFormTreeLifecycleOverHTTP(t *testing.T) {
	r, fx := newRouter(t)
	negocio := fx.negocio.Hex()

	w := do(t, r, http.MethodPost, "/forms/negocio/"+negocio, `{"nombre_formulario":"Alta de cliente"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	f := decodeForm(t, w)
	base := "/forms/" + f.ID.Hex()

	w = do(t, r, http.MethodPost, base+"/groups", `{"nombre_grupo":"Datos generales","orden":"1"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	f = decodeForm(t, w)
	require.Len(t, f.Grupos, 1)
	assert.Equal(t, 1.0, f.Grupos[0].Orden)
	groupPath := base + "/groups/" + f.Grupos[0].ID.Hex()

	w = do(t, r, http.MethodPost, groupPath+"/fields",
		`{"label":"Tipo de persona","name":"tipo_persona","fieldType":"select","validations":{"required":true}}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	f = decodeForm(t, w)
	fd := f.Grupos[0].Fields[0]
	assert.True(t, fd.Validations.Required)
	assert.False(t, fd.Required)
	fieldPath := groupPath + "/fields/" + fd.ID.Hex()

	w = do(t, r, http.MethodPost, fieldPath+"/options", `{"label":"Moral"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	f = decodeForm(t, w)
	optionPath := fieldPath + "/options/" + f.Grupos[0].Fields[0].Opciones[0].ID.Hex()

	w = do(t, r, http.MethodPut, optionPath, `{"activo":false}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, r, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, w.Code)
	f = decodeForm(t, w)
	o := f.Grupos[0].Fields[0].Opciones[0]
	assert.Equal(t, "Moral", o.Label)
	assert.False(t, o.Activo)
	assert.EqualValues(t, 4, f.Version)

	w = do(t, r, http.MethodGet, "/forms/negocio/"+negocio, "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.FormModel
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)

	w = do(t, r, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, fx.linker.negocios[fx.negocio])

	w = do(t, r, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Formulario no encontrado", message(t, w))
}

func TestHandlerErrorStatuses(t *testing.T) {
	r, fx := newRouter(t)
	form, group, _, _ := fx.seed(t)

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		msg    string
	}{
		{"invalid form id", http.MethodGet, "/forms/123", "", http.StatusBadRequest, "Id de formulario inválido"},
		{"invalid negocio id", http.MethodGet, "/forms/negocio/zz", "", http.StatusBadRequest, "Id de negocio inválido"},
		{"malformed body", http.MethodPost, "/forms/" + form + "/groups", `{"nombre_grupo":`, http.StatusBadRequest, msgInvalidBody},
		{"orden not numeric", http.MethodPost, "/forms/" + form + "/groups", `{"nombre_grupo":"x","orden":"abc"}`, http.StatusBadRequest, "nombre_grupo y orden son obligatorios"},
		{"orden taken", http.MethodPost, "/forms/" + form + "/groups", `{"nombre_grupo":"x","orden":1}`, http.StatusConflict, ""},
		{"bad field type", http.MethodPost, "/forms/" + form + "/groups/" + group + "/fields", `{"label":"a","name":"a","fieldType":"colour"}`, http.StatusBadRequest, ""},
		{"empty create body", http.MethodPost, "/forms/negocio/" + fx.negocio.Hex(), "", http.StatusBadRequest, "nombre_formulario es obligatorio"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, r, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
			if tc.msg != "" {
				assert.Equal(t, tc.msg, message(t, w))
			}
		})
	}
}

func TestUpdateGroupIgnoresNonNumericOrden(t *testing.T) {
	r, fx := newRouter(t)
	form, group, _, _ := fx.seed(t)

	w := do(t, r, http.MethodPut, "/forms/"+form+"/groups/"+group, `{"orden":"abc","nombre_grupo":"Renombrado"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	f := decodeForm(t, w)
	assert.Equal(t, 1.0, f.Grupos[0].Orden)
	assert.Equal(t, "Renombrado", f.Grupos[0].NombreGrupo)
}
