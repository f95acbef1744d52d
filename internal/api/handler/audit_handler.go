package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/saasportal/admin-api/internal/core/ports"
)

// AuditHandler serves the tenant's audit trail.
type AuditHandler struct {
	audit ports.AuditReader
}

func NewAuditHandler(audit ports.AuditReader) *AuditHandler {
	return &AuditHandler{audit: audit}
}

const maxAuditEntries = 500

// Recent lists the newest audit entries for the tenant.
//
// @Summary      List recent audit entries
// @Tags         audit
// @Produce      json
// @Param        limit  query     int  false  "Max entries (default 100)"
// @Success      200    {object}  envelope
// @Security     BearerAuth
// @Router       /api/audit [get]
func (h *AuditHandler) Recent(c echo.Context) error {
	_, tenant, err := ctxActor(c)
	if err != nil {
		return err
	}

	limit := int64(100)
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxAuditEntries {
		limit = maxAuditEntries
	}

	entries, err := h.audit.Recent(c.Request().Context(), tenant.ID, limit)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "", map[string]any{"entries": entries})
}
