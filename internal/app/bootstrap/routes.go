// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	assignmentsfeature "github.com/pedramghafoori/mentorconnect/internal/app/features/assignments"
	healthfeature "github.com/pedramghafoori/mentorconnect/internal/app/features/health"
	notificationsfeature "github.com/pedramghafoori/mentorconnect/internal/app/features/notifications"
	"github.com/pedramghafoori/mentorconnect/internal/app/lifecycle"
	"github.com/pedramghafoori/mentorconnect/internal/app/notify"
	"github.com/pedramghafoori/mentorconnect/internal/app/payments"
	assignmentstore "github.com/pedramghafoori/mentorconnect/internal/app/store/assignments"
	"github.com/pedramghafoori/mentorconnect/internal/app/store/audit"
	notificationstore "github.com/pedramghafoori/mentorconnect/internal/app/store/notifications"
	opportunitystore "github.com/pedramghafoori/mentorconnect/internal/app/store/opportunities"
	userstore "github.com/pedramghafoori/mentorconnect/internal/app/store/users"
	"github.com/pedramghafoori/mentorconnect/internal/app/system/auditlog"
	"github.com/pedramghafoori/mentorconnect/internal/app/system/ratelimit"
	"github.com/pedramghafoori/mentorconnect/internal/app/system/workers"
	"github.com/pedramghafoori/mentorconnect/internal/domain/models"
)

// reconciler is the background sweep over settled assignments. Started in
// BuildHandler once the stores and the authority client exist, stopped in
// Shutdown.
var reconciler *workers.AuthReconciler

// catalog adapts the opportunity store to the lifecycle engine's read
// surface.
type catalog struct{ store *opportunitystore.Store }

func (c catalog) GetOpportunity(ctx context.Context, id primitive.ObjectID) (models.Opportunity, error) {
	return c.store.GetByID(ctx, id)
}

// identity adapts the user store to the lifecycle engine's read surface.
type identity struct{ store *userstore.Store }

func (i identity) GetUser(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	return i.store.GetByID(ctx, id)
}

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. MentorConnect builds the stores, the
// payment authority client, the notification dispatcher and hub, and the
// lifecycle engine, then mounts the feature routers.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	assignments := assignmentstore.New(db)
	notifications := notificationstore.New(db)
	opportunities := opportunitystore.New(db)
	users := userstore.New(db)

	authority := payments.New(payments.Config{
		BaseURL:           appCfg.PaymentBaseURL,
		APIKey:            appCfg.PaymentAPIKey,
		Timeout:           appCfg.PaymentTimeout,
		RequestsPerSecond: appCfg.PaymentRequestsPerSecond,
	}, logger)

	hub := notify.NewHub()
	dispatcher := notify.New(notifications, hub, logger)

	auditLogger := auditlog.New(audit.New(db), logger, auditlog.Config{
		Lifecycle: appCfg.AuditLifecycle,
		Payment:   appCfg.AuditPayment,
	})

	engine := lifecycle.New(lifecycle.Deps{
		Assignments: assignments,
		Catalog:     catalog{store: opportunities},
		Identity:    identity{store: users},
		Authority:   authority,
		Notifier:    dispatcher,
		Audit:       auditLogger,
		Currency:    appCfg.PaymentCurrency,
		Log:         logger,
	})

	reconciler = workers.NewAuthReconciler(assignments, authority, logger, 5*time.Minute, 24*time.Hour)
	reconciler.Start()

	r := chi.NewRouter()

	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Handle("/metrics", promhttp.Handler())

	// Write endpoints drive payment calls, so they get a per-IP cap on top
	// of the client-side throttle toward the authority.
	writeLimit := ratelimit.Middleware(ratelimit.New(120, time.Minute))

	assignmentsHandler := assignmentsfeature.NewHandler(engine, assignments, logger)
	r.With(writeLimit).Mount("/assignments", assignmentsfeature.Routes(assignmentsHandler))

	notificationsHandler := notificationsfeature.NewHandler(dispatcher, hub, logger)
	r.Mount("/notifications", notificationsfeature.Routes(notificationsHandler))

	return r, nil
}
