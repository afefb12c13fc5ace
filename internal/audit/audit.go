// Package audit emite eventos de auditoría estructurados del gateway.
// Cada decisión de autenticación/autorización y cada trigger de deployment
// deja un registro con tenant, subject, path y outcome.
package audit

import (
	"context"

	"github.com/coaching2100/sallyport/internal/observability/logger"
	"go.uber.org/zap"
)

// Event es el nombre canónico de un evento auditable.
type Event string

const (
	EventTokenIssued     Event = "token.issued"
	EventTokenRejected   Event = "token.rejected"
	EventAuthGranted     Event = "auth.granted"
	EventAuthDenied      Event = "auth.denied"
	EventSessionCreated  Event = "session.created"
	EventSessionRevoked  Event = "session.revoked"
	EventDeployRequested Event = "deploy.requested"
)

// Log escribe un evento de auditoría. Los campos van además de los que ya
// porta el logger del contexto (request_id, tenant, etc.).
// En el futuro esto puede duplicarse hacia un sink externo (DB, pubsub).
func Log(ctx context.Context, event Event, fields ...zap.Field) {
	all := make([]zap.Field, 0, len(fields)+1)
	all = append(all, zap.String("audit_event", string(event)))
	all = append(all, fields...)
	logger.From(ctx).Named("audit").Info("audit", all...)
}
