package gateway

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/brillob/dtce/internal/apierrors"
	"github.com/brillob/dtce/internal/config"
	"github.com/brillob/dtce/internal/types/interfaces"
)

// NewRouter builds the gin engine for the gateway process: the
// submit/status/results/files REST surface (spec §6), the /healthz and
// /readyz operational endpoints, and a served Swagger UI.
func NewRouter(cfg *config.Config, store interfaces.ObjectStore, statusStore interfaces.JobStatusStore, bus interfaces.MessageBus) *gin.Engine {
	h := &Handler{Store: store, StatusStore: statusStore, Bus: bus, Config: cfg}

	r := gin.New()
	r.Use(gin.Recovery(), requestTracing(), requestLogger())

	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1/jobs")
	api.Use(apiKeyAuth(cfg))
	{
		api.POST("/submit", h.SubmitJob)
		api.GET("/:jobId/status", h.GetStatus)
		api.GET("/:jobId/results", h.GetResults)
		api.GET("/files/*fileKey", h.GetFile)
	}

	return r
}

func isNotFound(err error) bool {
	kind, ok := apierrors.KindOf(err)
	return ok && kind == apierrors.KindNotFound
}
