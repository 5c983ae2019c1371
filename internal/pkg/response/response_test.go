package response

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/negocios-forms/core/internal/pkg/errs"
	"github.com/stretchr/testify/assert"
)

func TestErrorMapsKinds(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
		body   string
	}{
		{errs.Invalid("Id de formulario inválido"), http.StatusBadRequest, `{"message":"Id de formulario inválido"}`},
		{errs.NotFound("Formulario no encontrado"), http.StatusNotFound, `{"message":"Formulario no encontrado"}`},
		{errs.Conflict("registro duplicado"), http.StatusConflict, `{"message":"registro duplicado"}`},
		{fmt.Errorf("find: %w", context.DeadlineExceeded), http.StatusServiceUnavailable, `{"message":"find: context deadline exceeded"}`},
		{context.DeadlineExceeded, http.StatusServiceUnavailable, `{"message":"la solicitud excedió el tiempo de espera"}`},
		{errors.New("boom"), http.StatusInternalServerError, `{"message":"boom"}`},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		Error(c, tc.err)
		assert.Equal(t, tc.status, w.Code, tc.err.Error())
		assert.JSONEq(t, tc.body, w.Body.String())
		assert.Equal(t, tc.status, StatusOf(tc.err))
	}
}

func TestOKDoesNotWrapSlices(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	OK(c, []string{"a", "b"})
	assert.JSONEq(t, `["a","b"]`, w.Body.String())
}

func TestAbortingHelpers(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		write  func(*gin.Context)
		status int
	}{
		{func(c *gin.Context) { TooManyRequests(c, "lento") }, http.StatusTooManyRequests},
		{func(c *gin.Context) { Conflict(c, "lento") }, http.StatusConflict},
		{func(c *gin.Context) { Unavailable(c, "lento") }, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		tc.write(c)
		assert.True(t, c.IsAborted())
		assert.Equal(t, tc.status, w.Code)
		assert.JSONEq(t, `{"message":"lento"}`, w.Body.String())
	}
}
