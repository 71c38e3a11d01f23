// internal/app/features/assignments/handler_test.go
package assignments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pedramghafoori/mentorconnect/internal/app/lifecycle"
	"github.com/pedramghafoori/mentorconnect/internal/app/payments"
	assignmentstore "github.com/pedramghafoori/mentorconnect/internal/app/store/assignments"
	opportunitystore "github.com/pedramghafoori/mentorconnect/internal/app/store/opportunities"
	"github.com/pedramghafoori/mentorconnect/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeService struct {
	created    models.Assignment
	updated    models.Assignment
	createErr  error
	acceptErr  error
	rejectErr  error
	cancelErr  error
	settleErr  error
	lastCreate lifecycle.CreateInput
}

func (f *fakeService) Create(_ context.Context, in lifecycle.CreateInput) (models.Assignment, error) {
	f.lastCreate = in
	if f.createErr != nil {
		return models.Assignment{}, f.createErr
	}
	return f.created, nil
}

func (f *fakeService) Accept(context.Context, primitive.ObjectID) (models.Assignment, error) {
	if f.acceptErr != nil {
		return models.Assignment{}, f.acceptErr
	}
	return f.updated, nil
}

func (f *fakeService) Reject(context.Context, primitive.ObjectID) (models.Assignment, error) {
	if f.rejectErr != nil {
		return models.Assignment{}, f.rejectErr
	}
	return f.updated, nil
}

func (f *fakeService) Cancel(context.Context, primitive.ObjectID) (models.Assignment, error) {
	if f.cancelErr != nil {
		return models.Assignment{}, f.cancelErr
	}
	return f.updated, nil
}

func (f *fakeService) Complete(context.Context, primitive.ObjectID) (models.Assignment, error) {
	if f.settleErr != nil {
		return models.Assignment{}, f.settleErr
	}
	return f.updated, nil
}

func newTestRouter(svc *fakeService) http.Handler {
	h := NewHandler(svc, nil, zap.NewNop())
	return Routes(h)
}

func createBody(t *testing.T) string {
	t.Helper()
	return `{
		"mentee_id": "` + primitive.NewObjectID().Hex() + `",
		"opportunity_id": "` + primitive.NewObjectID().Hex() + `",
		"fee_snapshot": 5000,
		"prerequisites": {"verified": true, "method": "external-check"},
		"agreements": {"mentee_signature": "Jordan Lee"}
	}`
}

func TestCreateSuccess(t *testing.T) {
	svc := &fakeService{created: models.Assignment{
		ID:     primitive.NewObjectID(),
		Status: models.AssignmentPending,
	}}
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(createBody(t)))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d; body %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var got models.Assignment
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Status != models.AssignmentPending {
		t.Errorf("status = %q, want %q", got.Status, models.AssignmentPending)
	}
	if svc.lastCreate.FeeSnapshot != 5000 {
		t.Errorf("FeeSnapshot = %d, want 5000", svc.lastCreate.FeeSnapshot)
	}
}

func TestCreateBadInput(t *testing.T) {
	router := newTestRouter(&fakeService{})

	cases := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"bad mentee id", `{"mentee_id": "nope", "opportunity_id": "` + primitive.NewObjectID().Hex() + `"}`},
		{"bad opportunity id", `{"mentee_id": "` + primitive.NewObjectID().Hex() + `", "opportunity_id": "zz"}`},
		{"bad prereq method", `{"mentee_id": "` + primitive.NewObjectID().Hex() + `",
			"opportunity_id": "` + primitive.NewObjectID().Hex() + `",
			"prerequisites": {"method": "vibes"}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			router.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestErrorStatusMapping(t *testing.T) {
	id := primitive.NewObjectID().Hex()

	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"stale transition", lifecycle.ErrInvalidStateTransition, http.StatusConflict},
		{"not found", assignmentstore.ErrNotFound, http.StatusNotFound},
		{"opportunity gone", opportunitystore.ErrNotFound, http.StatusNotFound},
		{"payment declined", &payments.Error{Category: payments.Rejected, Op: "capture", Status: 402}, http.StatusPaymentRequired},
		{"payment auth broken", &payments.Error{Category: payments.Fatal, Op: "capture", Status: 401}, http.StatusPaymentRequired},
		{"payment unreachable", &payments.Error{Category: payments.Retryable, Op: "capture"}, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(&fakeService{acceptErr: tc.err})
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/"+id+"/accept", nil)
			router.ServeHTTP(rec, req)
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d; body %s", rec.Code, tc.wantStatus, rec.Body.String())
			}
			if tc.wantStatus == http.StatusServiceUnavailable && rec.Header().Get("Retry-After") == "" {
				t.Error("missing Retry-After header on 503")
			}
		})
	}
}

func TestCreateErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"duplicate application", assignmentstore.ErrDuplicateAssignment, http.StatusConflict, "duplicate_assignment"},
		{"no mentor", lifecycle.ErrNoMentor, http.StatusUnprocessableEntity, "validation_failed"},
		{"negative fee", lifecycle.ErrInvalidFee, http.StatusUnprocessableEntity, "validation_failed"},
		{
			"dangling authorization",
			&lifecycle.CompensationError{
				AuthorizationID: "auth_1",
				Primary:         assignmentstore.ErrDuplicateAssignment,
				CancelErr:       errors.New("authority unreachable"),
			},
			http.StatusBadGateway,
			"compensation_failed",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(&fakeService{createErr: tc.err})
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(createBody(t)))
			router.ServeHTTP(rec, req)
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d; body %s", rec.Code, tc.wantStatus, rec.Body.String())
			}
			var body errorBody
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if body.Error != tc.wantCode {
				t.Errorf("error code = %q, want %q", body.Error, tc.wantCode)
			}
		})
	}
}

func TestTransitionBadID(t *testing.T) {
	router := newTestRouter(&fakeService{})
	for _, action := range []string{"accept", "reject", "cancel", "complete"} {
		t.Run(action, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/not-an-id/"+action, nil)
			router.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestListRequiresExactlyOneParty(t *testing.T) {
	router := newTestRouter(&fakeService{})

	for _, target := range []string{
		"/",
		"/?mentor=" + primitive.NewObjectID().Hex() + "&mentee=" + primitive.NewObjectID().Hex(),
		"/?mentor=" + primitive.NewObjectID().Hex() + "&status=sideways",
	} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, target, nil)
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("GET %s: status = %d, want %d", target, rec.Code, http.StatusBadRequest)
		}
	}
}
