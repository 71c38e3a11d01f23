// internal/app/features/assignments/handler.go
package assignments

import (
	"context"

	"github.com/pedramghafoori/mentorconnect/internal/app/lifecycle"
	assignmentstore "github.com/pedramghafoori/mentorconnect/internal/app/store/assignments"
	"github.com/pedramghafoori/mentorconnect/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Service is the slice of the lifecycle engine this feature drives.
type Service interface {
	Create(ctx context.Context, in lifecycle.CreateInput) (models.Assignment, error)
	Accept(ctx context.Context, id primitive.ObjectID) (models.Assignment, error)
	Reject(ctx context.Context, id primitive.ObjectID) (models.Assignment, error)
	Cancel(ctx context.Context, id primitive.ObjectID) (models.Assignment, error)
	Complete(ctx context.Context, id primitive.ObjectID) (models.Assignment, error)
}

// Handler serves the assignment lifecycle API. Writes go through the engine;
// list reads go straight to the store (they take no part in any write
// decision, so they can run outside a transaction).
type Handler struct {
	Svc   Service
	Store *assignmentstore.Store
	Log   *zap.Logger
}

func NewHandler(svc Service, store *assignmentstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, Store: store, Log: logger}
}
