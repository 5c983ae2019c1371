package negocio

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/negocios-forms/core/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/negocios")
	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

func bind(c *gin.Context, dto interface{}) bool {
	if err := c.ShouldBindJSON(dto); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, "Cuerpo de la solicitud inválido")
		return false
	}
	return true
}

func (h *Handler) list(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

func (h *Handler) get(c *gin.Context) {
	n, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, n)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateNegocioDTO
	if !bind(c, &dto) {
		return
	}
	n, err := h.svc.Create(c.Request.Context(), dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, n)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateNegocioDTO
	if !bind(c, &dto) {
		return
	}
	n, err := h.svc.Update(c.Request.Context(), c.Param("id"), dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, n)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
