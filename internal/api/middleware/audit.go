package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/saasportal/admin-api/internal/core/ports"
)

// Audit records a security-relevant action after the handler succeeds.
// Recording is best-effort: a recorder failure is logged and never fails the
// request that triggered it.
func Audit(recorder ports.AuditRecorder, action string, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := next(c); err != nil {
				return err
			}

			entry := ports.AuditEntry{
				ID:        uuid.NewString(),
				Action:    action,
				TargetID:  c.Param("id"),
				IP:        c.RealIP(),
				UserAgent: c.Request().UserAgent(),
				Timestamp: time.Now().UTC(),
			}
			if tenant := TenantFromContext(c); tenant != nil {
				entry.TenantID = tenant.ID
			}
			if user := UserFromContext(c); user != nil {
				entry.ActorID = user.ID
			}

			if err := recorder.Record(c.Request().Context(), entry); err != nil {
				log.Error().Err(err).Str("action", action).Msg("audit record failed")
			}

			log.Info().
				Str("action", action).
				Str("actor_id", entry.ActorID).
				Str("tenant_id", entry.TenantID).
				Str("target_id", entry.TargetID).
				Str("ip", entry.IP).
				Msg("audit")

			return nil
		}
	}
}
