// internal/app/lifecycle/engine.go

// Package lifecycle is the assignment lifecycle engine: it owns every
// Assignment state transition and sequences the payment authority, the
// assignment store and the notification dispatcher around each one.
//
// The ordering rule that keeps the two systems from diverging: the external
// payment call happens first, where it can still be compensated (an
// authorization can be canceled; an uncommitted local write costs nothing),
// and the local conditional write is the single source of truth for whether
// a transition happened. Notifications go out only after the local commit
// and are fire-and-forget.
package lifecycle

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/pedramghafoori/mentorconnect/internal/app/notify"
	assignmentstore "github.com/pedramghafoori/mentorconnect/internal/app/store/assignments"
	"github.com/pedramghafoori/mentorconnect/internal/app/system/auditlog"
	"github.com/pedramghafoori/mentorconnect/internal/app/system/metrics"
	"github.com/pedramghafoori/mentorconnect/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	notifyTimeout     = 5 * time.Second
	compensateTimeout = 10 * time.Second
)

// AssignmentStore is the persistence surface the engine drives. The
// production implementation is internal/app/store/assignments; it must
// return that package's sentinel errors.
type AssignmentStore interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	Insert(ctx context.Context, a models.Assignment) (models.Assignment, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Assignment, error)
	CompareAndSetStatus(ctx context.Context, id primitive.ObjectID, expected, next models.AssignmentStatus, extra map[string]any) error
}

// Catalog is the read-only opportunity lookup.
type Catalog interface {
	GetOpportunity(ctx context.Context, id primitive.ObjectID) (models.Opportunity, error)
}

// Identity is the read-only user lookup.
type Identity interface {
	GetUser(ctx context.Context, id primitive.ObjectID) (models.User, error)
}

// Authority is the payment authority surface the engine needs. The engine
// never retries these calls; retryable failures surface to the edge.
type Authority interface {
	Authorize(ctx context.Context, amountMinorUnits int64, currency string, metadata map[string]string) (string, error)
	Capture(ctx context.Context, authorizationID string) error
	Cancel(ctx context.Context, authorizationID string) error
}

// Notifier is the notification dispatcher surface. Send awaits persistence
// but not delivery. SetAssignmentStatus participates in the engine's
// transaction via the context it receives.
type Notifier interface {
	Send(ctx context.Context, recipientID primitive.ObjectID, kind string, payload map[string]string) error
	SetAssignmentStatus(ctx context.Context, assignmentID primitive.ObjectID, status models.AssignmentStatus) error
}

// Deps bundles the engine's collaborators.
type Deps struct {
	Assignments AssignmentStore
	Catalog     Catalog
	Identity    Identity
	Authority   Authority
	Notifier    Notifier
	// Audit records the transition trail. Nil disables audit recording.
	Audit *auditlog.Logger
	// Currency is the ISO 4217 code used for every authorization.
	Currency string
	Log      *zap.Logger
}

// Engine orchestrates assignment creation and every state transition. It is
// safe for concurrent use; per-assignment mutual exclusion comes from the
// store's conditional update, not from locks here.
type Engine struct {
	assignments AssignmentStore
	catalog     Catalog
	identity    Identity
	authority   Authority
	notifier    Notifier
	audit       *auditlog.Logger
	currency    string
	log         *zap.Logger
}

func New(d Deps) *Engine {
	return &Engine{
		assignments: d.Assignments,
		catalog:     d.Catalog,
		identity:    d.Identity,
		authority:   d.Authority,
		notifier:    d.Notifier,
		audit:       d.Audit,
		currency:    d.Currency,
		log:         d.Log,
	}
}

// CreateInput carries everything CreateAssignment needs. FeeSnapshot is in
// minor currency units and is captured here, once; later opportunity price
// changes do not touch existing assignments. AuthorizationID may reference a
// hold the caller already placed, in which case no new authorization is made.
type CreateInput struct {
	MenteeID        primitive.ObjectID
	OpportunityID   primitive.ObjectID
	FeeSnapshot     int64
	Prerequisites   models.Prerequisites
	Agreements      models.Agreements
	AuthorizationID string
}

// Create validates the referenced opportunity and mentee, authorizes a
// payment hold when a fee is due, and inserts the assignment as pending.
//
// The authorization and the insert cannot share a transaction (the authority
// has no transactional join with the local store), so the authorization goes
// first and the insert decides the outcome. If the insert fails after a
// fresh authorization succeeded, the hold is canceled before returning —
// on a context detached from the caller's, so a caller timeout cannot leave
// the authorization dangling. If that compensating cancel itself fails,
// Create returns a *CompensationError.
func (e *Engine) Create(ctx context.Context, in CreateInput) (models.Assignment, error) {
	if in.FeeSnapshot < 0 {
		return models.Assignment{}, ErrInvalidFee
	}

	opp, err := e.catalog.GetOpportunity(ctx, in.OpportunityID)
	if err != nil {
		return models.Assignment{}, err
	}
	if !opp.HasMentor() {
		return models.Assignment{}, ErrNoMentor
	}

	mentee, err := e.identity.GetUser(ctx, in.MenteeID)
	if err != nil {
		return models.Assignment{}, err
	}

	authID := in.AuthorizationID
	freshAuth := false
	if in.FeeSnapshot > 0 && authID == "" {
		authID, err = e.authority.Authorize(ctx, in.FeeSnapshot, e.currency, map[string]string{
			"opportunity_id": in.OpportunityID.Hex(),
			"mentee_id":      in.MenteeID.Hex(),
		})
		if err != nil {
			// Fail-closed: no authorization, no assignment.
			return models.Assignment{}, err
		}
		freshAuth = true
		e.audit.AuthorizationPlaced(ctx, authID, in.MenteeID, in.OpportunityID)
	}

	created, err := e.assignments.Insert(ctx, models.Assignment{
		MenteeID:               in.MenteeID,
		MentorID:               opp.MentorID,
		OpportunityID:          in.OpportunityID,
		FeeSnapshot:            in.FeeSnapshot,
		StartDate:              opp.StartDate,
		Prerequisites:          in.Prerequisites,
		Agreements:             in.Agreements,
		PaymentAuthorizationID: authID,
		Status:                 models.AssignmentPending,
	})
	if err != nil {
		if freshAuth {
			if cerr := e.cancelDangling(ctx, authID); cerr != nil {
				return models.Assignment{}, &CompensationError{
					AuthorizationID: authID,
					Primary:         err,
					CancelErr:       cerr,
				}
			}
		}
		return models.Assignment{}, err
	}

	metrics.AssignmentTransitions.WithLabelValues(string(models.AssignmentPending)).Inc()
	e.audit.Transition(ctx, created)

	e.dispatch(ctx, opp.MentorID, notify.TypeAssignmentReceived, map[string]string{
		"assignment_id":        created.ID.Hex(),
		"status":               string(created.Status),
		"mentee_id":            mentee.ID.Hex(),
		"mentee_name":          mentee.FullName,
		"mentee_avatar":        mentee.AvatarURL,
		"opportunity_id":       opp.ID.Hex(),
		"opportunity_title":    opp.Title,
		"opportunity_location": opp.Location,
		"opportunity_date":     opp.StartDate.UTC().Format(time.RFC3339),
		"opportunity_price":    strconv.FormatInt(in.FeeSnapshot, 10),
	})

	return created, nil
}

// Accept transitions a pending assignment to charged, capturing the payment
// hold first. A capture failure aborts with no local mutation and the
// authority's error propagates unchanged.
func (e *Engine) Accept(ctx context.Context, id primitive.ObjectID) (models.Assignment, error) {
	a, err := e.assignments.GetByID(ctx, id)
	if err != nil {
		return models.Assignment{}, err
	}
	if a.Status != models.AssignmentPending {
		return models.Assignment{}, ErrInvalidStateTransition
	}

	if a.PaymentAuthorizationID != "" {
		if err := e.authority.Capture(ctx, a.PaymentAuthorizationID); err != nil {
			return models.Assignment{}, err
		}
	}

	if err := e.commitTransition(ctx, id, models.AssignmentPending, models.AssignmentCharged); err != nil {
		return models.Assignment{}, err
	}
	a.Status = models.AssignmentCharged
	a.UpdatedAt = time.Now().UTC()

	e.audit.Transition(ctx, a)
	e.notifyDecision(ctx, a, notify.TypeAssignmentAccepted)
	return a, nil
}

// Reject transitions a pending assignment to rejected, releasing any payment
// hold instead of capturing it.
func (e *Engine) Reject(ctx context.Context, id primitive.ObjectID) (models.Assignment, error) {
	a, err := e.settlePending(ctx, id, models.AssignmentRejected)
	if err != nil {
		return models.Assignment{}, err
	}
	e.notifyDecision(ctx, a, notify.TypeAssignmentRejected)
	return a, nil
}

// Cancel is the mentee-initiated withdrawal of a pending assignment. Any
// payment hold is released and the mentor is notified.
func (e *Engine) Cancel(ctx context.Context, id primitive.ObjectID) (models.Assignment, error) {
	a, err := e.settlePending(ctx, id, models.AssignmentCanceled)
	if err != nil {
		return models.Assignment{}, err
	}

	payload := map[string]string{
		"assignment_id":  a.ID.Hex(),
		"status":         string(a.Status),
		"opportunity_id": a.OpportunityID.Hex(),
	}
	if mentee, err := e.identity.GetUser(ctx, a.MenteeID); err == nil {
		payload["mentee_name"] = mentee.FullName
	}
	if opp, err := e.catalog.GetOpportunity(ctx, a.OpportunityID); err == nil {
		payload["opportunity_title"] = opp.Title
	}
	e.dispatch(ctx, a.MentorID, notify.TypeAssignmentWithdrawn, payload)

	return a, nil
}

// Complete marks a charged assignment's session as finished. No payment call
// is involved; the fee was collected at acceptance.
func (e *Engine) Complete(ctx context.Context, id primitive.ObjectID) (models.Assignment, error) {
	a, err := e.assignments.GetByID(ctx, id)
	if err != nil {
		return models.Assignment{}, err
	}
	if a.Status != models.AssignmentCharged {
		return models.Assignment{}, ErrInvalidStateTransition
	}

	if err := e.commitTransition(ctx, id, models.AssignmentCharged, models.AssignmentCompleted); err != nil {
		return models.Assignment{}, err
	}
	a.Status = models.AssignmentCompleted
	a.UpdatedAt = time.Now().UTC()

	e.audit.Transition(ctx, a)
	e.notifyDecision(ctx, a, notify.TypeAssignmentCompleted)
	return a, nil
}

// settlePending is the shared reject/cancel path: require pending, release
// any authorization, then commit the transition. The cancel must precede the
// local write for the same reason authorize precedes the insert: a released
// hold with a still-pending assignment is recoverable, held funds on a
// terminal assignment are not.
func (e *Engine) settlePending(ctx context.Context, id primitive.ObjectID, target models.AssignmentStatus) (models.Assignment, error) {
	a, err := e.assignments.GetByID(ctx, id)
	if err != nil {
		return models.Assignment{}, err
	}
	if a.Status != models.AssignmentPending {
		return models.Assignment{}, ErrInvalidStateTransition
	}

	if a.PaymentAuthorizationID != "" {
		if err := e.authority.Cancel(ctx, a.PaymentAuthorizationID); err != nil {
			return models.Assignment{}, err
		}
	}

	if err := e.commitTransition(ctx, id, models.AssignmentPending, target); err != nil {
		return models.Assignment{}, err
	}
	a.Status = target
	a.UpdatedAt = time.Now().UTC()

	e.audit.Transition(ctx, a)
	return a, nil
}

// commitTransition performs the conditional status write and the
// denormalized notification patch in one transaction scope. A status
// conflict (concurrent transition won, or the document vanished) maps to
// ErrInvalidStateTransition.
func (e *Engine) commitTransition(ctx context.Context, id primitive.ObjectID, from, to models.AssignmentStatus) error {
	err := e.assignments.WithTransaction(ctx, func(ctx context.Context) error {
		if err := e.assignments.CompareAndSetStatus(ctx, id, from, to, nil); err != nil {
			return err
		}
		return e.notifier.SetAssignmentStatus(ctx, id, to)
	})
	if err != nil {
		if errors.Is(err, assignmentstore.ErrStatusConflict) {
			return ErrInvalidStateTransition
		}
		return err
	}
	metrics.AssignmentTransitions.WithLabelValues(string(to)).Inc()
	return nil
}

// cancelDangling releases an authorization whose matching local write
// failed. It runs on a detached context so a caller timeout or disconnect
// cannot abandon the hold mid-cleanup.
func (e *Engine) cancelDangling(ctx context.Context, authID string) error {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensateTimeout)
	defer cancel()

	if err := e.authority.Cancel(cctx, authID); err != nil {
		metrics.CompensationFailures.Inc()
		e.audit.CompensationFailed(cctx, authID, err.Error())
		e.log.Error("compensating cancel failed: authorization is dangling and needs operator reconciliation",
			zap.String("authorization_id", authID),
			zap.Error(err))
		return err
	}
	e.audit.CompensationSucceeded(cctx, authID)
	e.log.Warn("canceled dangling payment authorization after failed local write",
		zap.String("authorization_id", authID))
	return nil
}

// notifyDecision tells the mentee the outcome of a transition on their
// assignment, with the mentor's display fields snapshotted for rendering.
func (e *Engine) notifyDecision(ctx context.Context, a models.Assignment, kind string) {
	payload := map[string]string{
		"assignment_id":  a.ID.Hex(),
		"status":         string(a.Status),
		"opportunity_id": a.OpportunityID.Hex(),
	}
	if opp, err := e.catalog.GetOpportunity(ctx, a.OpportunityID); err == nil {
		payload["opportunity_title"] = opp.Title
	}
	if mentor, err := e.identity.GetUser(ctx, a.MentorID); err == nil {
		payload["mentor_name"] = mentor.FullName
		payload["mentor_avatar"] = mentor.AvatarURL
	}
	e.dispatch(ctx, a.MenteeID, kind, payload)
}

// dispatch sends one post-commit notification. It awaits persistence (on a
// detached context) but never fails the operation that triggered it.
func (e *Engine) dispatch(ctx context.Context, recipientID primitive.ObjectID, kind string, payload map[string]string) {
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	if err := e.notifier.Send(nctx, recipientID, kind, payload); err != nil {
		e.log.Warn("lifecycle notification not persisted",
			zap.String("type", kind),
			zap.String("recipient_id", recipientID.Hex()),
			zap.Error(err))
	}
}
