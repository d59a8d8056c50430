package shared

import (
	"net/http"

	"github.com/rs/zerolog"

	"payrolldocs/internal/domain/audit"
	"payrolldocs/internal/transport/http/middleware"
)

// RecordAudit stores an audit event for the authenticated caller. Failures
// are logged and never fail the request.
func RecordAudit(r *http.Request, events audit.Log, log zerolog.Logger, action, entityType, entityID string, before, after any) {
	if events == nil {
		return
	}
	user, _ := middleware.GetUser(r.Context())
	entry := audit.Entry{
		ActorID:    user.UserID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		RequestID:  middleware.GetRequestID(r.Context()),
		IP:         middleware.ClientIP(r),
		Before:     before,
		After:      after,
	}
	if err := events.Record(r.Context(), entry); err != nil {
		log.Warn().Err(err).Str("action", action).Msg("audit record failed")
	}
}
