// internal/app/system/workers/reconcile.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/pedramghafoori/mentorconnect/internal/app/payments"
	"github.com/pedramghafoori/mentorconnect/internal/app/system/metrics"
	"github.com/pedramghafoori/mentorconnect/internal/domain/models"
	"go.uber.org/zap"
)

// settledLister lists assignments that settled while holding a payment
// authorization.
type settledLister interface {
	ListSettledWithAuthorization(ctx context.Context, since time.Time) ([]models.Assignment, error)
}

// authorityQuerier reads an authorization's current state at the payment
// authority.
type authorityQuerier interface {
	Query(ctx context.Context, authorizationID string) (payments.Status, error)
}

// AuthReconciler is a background worker that cross-checks settled
// assignments against the payment authority. A charged or completed
// assignment must have a captured authorization; a rejected or canceled
// one must have a canceled authorization. Anything else means the write
// to the authority and the status write here diverged, and an operator
// has to look at the hold.
type AuthReconciler struct {
	assignments settledLister
	authority   authorityQuerier
	log         *zap.Logger
	interval    time.Duration
	lookback    time.Duration
	stopCh      chan struct{}
	wg          sync.WaitGroup
}

// NewAuthReconciler creates a reconciliation worker.
//
// Parameters:
//   - assignments: the assignments store
//   - authority: the payment authority client
//   - logger: zap logger for logging
//   - interval: how often to run a sweep (e.g., 5 minutes)
//   - lookback: how far back in updated_at each sweep reaches (e.g., 24 hours)
func NewAuthReconciler(assignments settledLister, authority authorityQuerier, logger *zap.Logger, interval, lookback time.Duration) *AuthReconciler {
	return &AuthReconciler{
		assignments: assignments,
		authority:   authority,
		log:         logger,
		interval:    interval,
		lookback:    lookback,
		stopCh:      make(chan struct{}),
	}
}

// Start begins the background reconciliation loop.
func (w *AuthReconciler) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("authorization reconciler started",
		zap.Duration("interval", w.interval),
		zap.Duration("lookback", w.lookback))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *AuthReconciler) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("authorization reconciler stopped")
}

func (w *AuthReconciler) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *AuthReconciler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	since := time.Now().UTC().Add(-w.lookback)
	rows, err := w.assignments.ListSettledWithAuthorization(ctx, since)
	if err != nil {
		w.log.Error("failed to list settled assignments", zap.Error(err))
		return
	}

	mismatches := 0
	for _, a := range rows {
		if !w.check(ctx, a) {
			mismatches++
		}
	}
	if mismatches > 0 {
		w.log.Warn("authorization sweep found mismatches",
			zap.Int("checked", len(rows)),
			zap.Int("mismatches", mismatches))
	}
}

// check verifies one assignment's hold and reports whether it agrees with
// the authority. Transient query failures count as agreement; the next
// sweep will see the row again.
func (w *AuthReconciler) check(ctx context.Context, a models.Assignment) bool {
	got, err := w.authority.Query(ctx, a.PaymentAuthorizationID)
	if err != nil {
		if payments.IsRetryable(err) {
			w.log.Warn("authorization query failed, will retry next sweep",
				zap.String("assignment_id", a.ID.Hex()),
				zap.Error(err))
			return true
		}
		w.log.Error("authorization query failed",
			zap.String("assignment_id", a.ID.Hex()),
			zap.String("authorization_id", a.PaymentAuthorizationID),
			zap.Error(err))
		return true
	}

	want := expectedAuthState(a.Status)
	if got == want {
		return true
	}

	metrics.AuthorizationMismatches.Inc()
	w.log.Error("authorization state disagrees with assignment status",
		zap.String("assignment_id", a.ID.Hex()),
		zap.String("authorization_id", a.PaymentAuthorizationID),
		zap.String("assignment_status", string(a.Status)),
		zap.String("authority_status", string(got)),
		zap.String("expected", string(want)))
	return false
}

func expectedAuthState(s models.AssignmentStatus) payments.Status {
	switch s {
	case models.AssignmentCharged, models.AssignmentCompleted:
		return payments.StatusCaptured
	default:
		return payments.StatusCanceled
	}
}
