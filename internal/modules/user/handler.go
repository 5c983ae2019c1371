package user

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
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
	g := rg.Group("/users")
	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
	g.PUT("/putlocation/:id", h.putLocation)
}

func (h *Handler) list(c *gin.Context) {
	users, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, users)
}

func (h *Handler) get(c *gin.Context) {
	u, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, u)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateUserDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		var verrs validator.ValidationErrors
		switch {
		case errors.As(err, &verrs), errors.Is(err, io.EOF):
			response.Error(c, bindingError(verrs))
		default:
			response.BadRequest(c, msgInvalidBody)
		}
		return
	}
	u, err := h.svc.Create(c.Request.Context(), dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, u)
}

// bindingError picks the message for the first failed binding rule.
func bindingError(verrs validator.ValidationErrors) error {
	for _, fe := range verrs {
		switch {
		case fe.Field() == "Password" && fe.Tag() == "min":
			return errShortPassword
		case fe.Field() == "Email" && fe.Tag() == "email":
			return errInvalidEmail
		}
	}
	return errRequired
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateUserDTO
	if err := c.ShouldBindJSON(&dto); err != nil && !errors.Is(err, io.EOF) {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			response.Error(c, bindingError(verrs))
			return
		}
		response.BadRequest(c, msgInvalidBody)
		return
	}
	u, err := h.svc.Update(c.Request.Context(), c.Param("id"), dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, u)
}

// PUT /users/putlocation/:id
func (h *Handler) putLocation(c *gin.Context) {
	var dto PutLocationDTO
	if err := c.ShouldBindJSON(&dto); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, msgInvalidBody)
		return
	}
	u, err := h.svc.PutLocation(c.Request.Context(), c.Param("id"), dto.Location)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, u)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
