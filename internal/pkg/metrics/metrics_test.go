package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, r http.Handler) string {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestMiddlewareLabelsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/probe/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", gin.WrapH(Handler()))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/probe/abc", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/probe/def", nil))

	body := scrape(t, r)
	assert.Contains(t, body, `negocios_http_requests_total{method="GET",route="/probe/:id",status="204"} 2`)
	assert.NotContains(t, body, `route="/metrics"`)
}

func TestObserveStore(t *testing.T) {
	ObserveStore("probe", "find", time.Now(), nil)
	ObserveStore("probe", "find", time.Now(), errors.New("x"))
	ObserveStore("probe", "find", time.Now(), errors.New("y"))

	body := scrape(t, Handler())
	assert.Contains(t, body, `negocios_store_operations_total{collection="probe",operation="find",result="ok"} 1`)
	assert.Contains(t, body, `negocios_store_operations_total{collection="probe",operation="find",result="error"} 2`)
}
