// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"

	"github.com/pedramghafoori/mentorconnect/internal/app/store/audit"
	"github.com/pedramghafoori/mentorconnect/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Lifecycle controls logging for assignment transitions.
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Lifecycle string
	// Payment controls logging for payment authority outcomes
	// (authorizations placed, compensating cancels).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Payment string
}

// Logger provides convenience methods for recording audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
	}

	if event.AssignmentID != nil {
		fields = append(fields, zap.String("assignment_id", event.AssignmentID.Hex()))
	}
	if event.MenteeID != nil {
		fields = append(fields, zap.String("mentee_id", event.MenteeID.Hex()))
	}
	if event.MentorID != nil {
		fields = append(fields, zap.String("mentor_id", event.MentorID.Hex()))
	}
	if event.AuthorizationID != "" {
		fields = append(fields, zap.String("authorization_id", event.AuthorizationID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
// Logging destination is controlled by config: "all", "db", "log", or "off".
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryLifecycle:
		setting = l.config.Lifecycle
	case audit.CategoryPayment:
		setting = l.config.Payment
	default:
		setting = "all" // Default to logging everything for unknown categories
	}

	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	if setting == "all" || setting == "db" {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Lifecycle Events ---

// transitionEvents maps a committed target status to its event type.
var transitionEvents = map[models.AssignmentStatus]string{
	models.AssignmentPending:   audit.EventAssignmentCreated,
	models.AssignmentCharged:   audit.EventAssignmentAccepted,
	models.AssignmentRejected:  audit.EventAssignmentRejected,
	models.AssignmentCanceled:  audit.EventAssignmentCanceled,
	models.AssignmentCompleted: audit.EventAssignmentCompleted,
}

// Transition logs a committed assignment status transition.
func (l *Logger) Transition(ctx context.Context, a models.Assignment) {
	eventType, ok := transitionEvents[a.Status]
	if !ok {
		return
	}
	l.Log(ctx, audit.Event{
		Category:        audit.CategoryLifecycle,
		EventType:       eventType,
		AssignmentID:    &a.ID,
		MenteeID:        &a.MenteeID,
		MentorID:        &a.MentorID,
		AuthorizationID: a.PaymentAuthorizationID,
		Success:         true,
		Details: map[string]string{
			"status":         string(a.Status),
			"opportunity_id": a.OpportunityID.Hex(),
		},
	})
}

// --- Payment Events ---

// AuthorizationPlaced logs a fresh hold at the payment authority.
func (l *Logger) AuthorizationPlaced(ctx context.Context, authorizationID string, menteeID, opportunityID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:        audit.CategoryPayment,
		EventType:       audit.EventAuthorizationPlaced,
		MenteeID:        &menteeID,
		AuthorizationID: authorizationID,
		Success:         true,
		Details: map[string]string{
			"opportunity_id": opportunityID.Hex(),
		},
	})
}

// CompensationFailed logs a compensating cancel that did not go through,
// leaving a dangling hold at the payment authority.
func (l *Logger) CompensationFailed(ctx context.Context, authorizationID string, reason string) {
	l.Log(ctx, audit.Event{
		Category:        audit.CategoryPayment,
		EventType:       audit.EventCompensationFailed,
		AuthorizationID: authorizationID,
		Success:         false,
		FailureReason:   reason,
	})
}

// CompensationSucceeded logs a compensating cancel that released a hold
// after its matching local write failed.
func (l *Logger) CompensationSucceeded(ctx context.Context, authorizationID string) {
	l.Log(ctx, audit.Event{
		Category:        audit.CategoryPayment,
		EventType:       audit.EventCompensationSucceeded,
		AuthorizationID: authorizationID,
		Success:         true,
	})
}
