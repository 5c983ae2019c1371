package form

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/negocios-forms/core/internal/pkg/response"
)

const msgInvalidBody = "Cuerpo de la solicitud inválido"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/forms")

	g.GET("", h.list)
	g.GET("/negocio/:id_negocio", h.listByNegocio)
	g.POST("/negocio/:id_negocio", h.create)
	g.GET("/:id_form", h.get)
	g.PUT("/:id_form", h.update)
	g.DELETE("/:id_form", h.delete)

	g.POST("/:id_form/groups", h.addGroup)
	g.PUT("/:id_form/groups/:id_group", h.updateGroup)

	g.POST("/:id_form/groups/:id_group/fields", h.addField)
	g.PUT("/:id_form/groups/:id_group/fields/:id_field", h.updateField)

	g.POST("/:id_form/groups/:id_group/fields/:id_field/options", h.addOption)
	g.PUT("/:id_form/groups/:id_group/fields/:id_field/options/:id_option", h.updateOption)
}

// bind decodes the JSON body into dto. An empty body decodes as {}.
func bind(c *gin.Context, dto interface{}) bool {
	if err := c.ShouldBindJSON(dto); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, msgInvalidBody)
		return false
	}
	return true
}

// GET /forms
func (h *Handler) list(c *gin.Context) {
	forms, err := h.svc.ListForms(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, forms)
}

// GET /forms/:id_form
func (h *Handler) get(c *gin.Context) {
	f, err := h.svc.GetForm(c.Request.Context(), c.Param("id_form"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, f)
}

// GET /forms/negocio/:id_negocio
func (h *Handler) listByNegocio(c *gin.Context) {
	forms, err := h.svc.ListFormsByNegocio(c.Request.Context(), c.Param("id_negocio"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, forms)
}

// POST /forms/negocio/:id_negocio
func (h *Handler) create(c *gin.Context) {
	var dto CreateFormDTO
	if !bind(c, &dto) {
		return
	}
	f, err := h.svc.CreateForm(c.Request.Context(), c.Param("id_negocio"), dto.NombreFormulario)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, f)
}

// PUT /forms/:id_form
func (h *Handler) update(c *gin.Context) {
	var dto UpdateFormDTO
	if !bind(c, &dto) {
		return
	}
	f, err := h.svc.UpdateForm(c.Request.Context(), c.Param("id_form"), dto.patch())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, f)
}

// DELETE /forms/:id_form
func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.DeleteForm(c.Request.Context(), c.Param("id_form")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// POST /forms/:id_form/groups
func (h *Handler) addGroup(c *gin.Context) {
	var dto AddGroupDTO
	if !bind(c, &dto) {
		return
	}
	f, err := h.svc.AddGroup(c.Request.Context(), c.Param("id_form"), GroupInput{
		NombreGrupo: dto.NombreGrupo,
		Orden:       dto.Orden.ptr(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, f)
}

// PUT /forms/:id_form/groups/:id_group
func (h *Handler) updateGroup(c *gin.Context) {
	var dto UpdateGroupDTO
	if !bind(c, &dto) {
		return
	}
	f, err := h.svc.UpdateGroup(c.Request.Context(), c.Param("id_form"), c.Param("id_group"), dto.patch())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, f)
}

// POST /forms/:id_form/groups/:id_group/fields
func (h *Handler) addField(c *gin.Context) {
	var dto AddFieldDTO
	if !bind(c, &dto) {
		return
	}
	f, err := h.svc.AddField(c.Request.Context(), c.Param("id_form"), c.Param("id_group"), dto.input())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, f)
}

// PUT /forms/:id_form/groups/:id_group/fields/:id_field
func (h *Handler) updateField(c *gin.Context) {
	var dto UpdateFieldDTO
	if !bind(c, &dto) {
		return
	}
	f, err := h.svc.UpdateField(c.Request.Context(), c.Param("id_form"), c.Param("id_group"), c.Param("id_field"), dto.patch())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, f)
}

// POST /forms/:id_form/groups/:id_group/fields/:id_field/options
func (h *Handler) addOption(c *gin.Context) {
	var dto AddOptionDTO
	if !bind(c, &dto) {
		return
	}
	f, err := h.svc.AddOption(c.Request.Context(), c.Param("id_form"), c.Param("id_group"), c.Param("id_field"), dto.Label)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, f)
}

// PUT /forms/:id_form/groups/:id_group/fields/:id_field/options/:id_option
func (h *Handler) updateOption(c *gin.Context) {
	var dto UpdateOptionDTO
	if !bind(c, &dto) {
		return
	}
	f, err := h.svc.UpdateOption(c.Request.Context(),
		c.Param("id_form"), c.Param("id_group"), c.Param("id_field"), c.Param("id_option"),
		dto.patch(),
	)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, f)
}
