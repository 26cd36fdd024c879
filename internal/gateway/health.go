package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Healthz is a liveness probe: the process is up and serving. It never
// touches a backend.
//
// @Summary  Liveness probe
// @Tags     ops
// @Produce  json
// @Success  200  {object}  map[string]string
// @Router   /healthz [get]
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readyz is a readiness probe: every bound backend (object store, job
// status store, message bus) must answer within a short deadline.
//
// @Summary  Readiness probe
// @Tags     ops
// @Produce  json
// @Success  200  {object}  map[string]interface{}
// @Failure  503  {object}  map[string]interface{}
// @Router   /readyz [get]
func (h *Handler) Readyz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{}
	ok := true

	if _, err := h.StatusStore.Get(ctx, "__readyz__"); err != nil {
		checks["jobStatusStore"] = err.Error()
		ok = false
	} else {
		checks["jobStatusStore"] = "ok"
	}

	if pinger, supportsPing := h.Bus.(interface{ Ping(context.Context) error }); supportsPing {
		if err := pinger.Ping(ctx); err != nil {
			checks["messageBus"] = err.Error()
			ok = false
		} else {
			checks["messageBus"] = "ok"
		}
	} else if err := h.Bus.Publish(ctx, "__readyz__", []byte("{}")); err != nil {
		checks["messageBus"] = err.Error()
		ok = false
	} else {
		checks["messageBus"] = "ok"
	}

	if _, err := h.Store.PresignedURL(ctx, "__readyz__", time.Minute); err != nil {
		// Absent keys surface NotFound, which still proves the backend is
		// reachable; only a non-NotFound error indicates unreadiness.
		if !isNotFound(err) {
			checks["objectStore"] = err.Error()
			ok = false
		} else {
			checks["objectStore"] = "ok"
		}
	} else {
		checks["objectStore"] = "ok"
	}

	status := http.StatusOK
	if !ok {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"ready": ok, "checks": checks})
}
