package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/negocios-forms/core/internal/modules/form"
	"github.com/negocios-forms/core/internal/modules/negocio"
	"github.com/negocios-forms/core/internal/modules/user"
	"github.com/negocios-forms/core/internal/pkg/metrics"
	"github.com/negocios-forms/core/internal/pkg/response"
	"go.uber.org/zap"
)

func (a *App) registerRoutes(deps Deps) {
	r := a.router

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "Ruta no encontrada")
	})
	r.NoMethod(func(c *gin.Context) {
		response.Message(c, http.StatusMethodNotAllowed, "Método no permitido")
	})

	r.GET("/ping", func(c *gin.Context) {
		body := gin.H{
			"status": "ok",
			"env":    a.cfg.Env,
			"uptime": uptime(time.Since(processStart)),
		}
		if deps.Ping != nil {
			if err := deps.Ping(c.Request.Context()); err != nil {
				a.logger.Warn("store ping failed", zap.Error(err))
				response.Unavailable(c, "la base de datos no está disponible")
				return
			}
		}
		if deps.Redis != nil {
			body["redis"] = "ok"
			if err := deps.Redis.Ping(c.Request.Context()).Err(); err != nil {
				body["redis"] = "unavailable"
			}
		}
		response.OK(c, body)
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("")

	form.NewHandler(form.NewService(deps.Forms, deps.Negocios, deps.Events, a.logger)).RegisterRoutes(api)
	negocio.NewHandler(negocio.NewService(deps.Negocios, deps.Events, a.logger)).RegisterRoutes(api)
	user.NewHandler(user.NewService(deps.Users, deps.Negocios, deps.Events, a.logger)).RegisterRoutes(api)
}
