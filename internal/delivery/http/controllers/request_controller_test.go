package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"afisha/internal/delivery/http/helpers"
	"afisha/internal/domain"
)

// fakeRequestService implements domain.RequestService for handler tests.
type fakeRequestService struct {
	createResult        *domain.ParticipationRequest
	createErr           error
	lastCreateRequester int64
	lastCreateEvent     int64

	cancelResult        *domain.ParticipationRequest
	cancelErr           error
	lastCancelRequester int64
	lastCancelRequest   int64

	listResult []*domain.ParticipationRequest
	listErr    error
}

func (f *fakeRequestService) Create(ctx context.Context, requesterID, eventID int64) (*domain.ParticipationRequest, error) {
	f.lastCreateRequester = requesterID
	f.lastCreateEvent = eventID
	return f.createResult, f.createErr
}

func (f *fakeRequestService) Cancel(ctx context.Context, requesterID, requestID int64) (*domain.ParticipationRequest, error) {
	f.lastCancelRequester = requesterID
	f.lastCancelRequest = requestID
	return f.cancelResult, f.cancelErr
}

func (f *fakeRequestService) ListByRequester(ctx context.Context, requesterID int64) ([]*domain.ParticipationRequest, error) {
	return f.listResult, f.listErr
}

func (f *fakeRequestService) ListByEvent(ctx context.Context, eventID int64) ([]*domain.ParticipationRequest, error) {
	return f.listResult, f.listErr
}

func (f *fakeRequestService) GetByIDs(ctx context.Context, ids []int64) ([]*domain.ParticipationRequest, error) {
	return f.listResult, f.listErr
}

func (f *fakeRequestService) CountByEventAndStatus(ctx context.Context, eventID int64, status domain.RequestStatus) (int64, error) {
	return 0, nil
}

func TestRequestControllerCreate(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "created",
			query:      "?eventId=7",
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing eventId",
			query:      "",
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
		{
			name:       "duplicate request",
			query:      "?eventId=7",
			serviceErr: domain.ErrConflict,
			wantStatus: http.StatusConflict,
			wantCode:   helpers.ErrCodeConflict,
		},
		{
			name:       "unknown event",
			query:      "?eventId=7",
			serviceErr: domain.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   helpers.ErrCodeNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeRequestService{
				createResult: &domain.ParticipationRequest{ID: 15, EventID: 7, RequesterID: 2, Status: domain.RequestStatusPending},
				createErr:    tt.serviceErr,
			}
			controller := NewRequestController(testLogger, svc)

			req := httptest.NewRequest(http.MethodPost, "http://test/users/2/requests"+tt.query, nil)
			req.SetPathValue("userID", "2")
			rec := httptest.NewRecorder()
			controller.Create(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			resp := decodeEnvelope(t, rec.Body)
			if tt.wantCode != "" {
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.wantCode, resp.Error.Code)
				return
			}
			require.Nil(t, resp.Error)
			assert.Equal(t, int64(2), svc.lastCreateRequester)
			assert.Equal(t, int64(7), svc.lastCreateEvent)
		})
	}
}

func TestRequestControllerCancel(t *testing.T) {
	svc := &fakeRequestService{
		cancelResult: &domain.ParticipationRequest{ID: 15, Status: domain.RequestStatusCanceled},
	}
	controller := NewRequestController(testLogger, svc)

	req := httptest.NewRequest(http.MethodPatch, "http://test/users/2/requests/15/cancel", nil)
	req.SetPathValue("userID", "2")
	req.SetPathValue("requestID", "15")
	rec := httptest.NewRecorder()
	controller.Cancel(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(2), svc.lastCancelRequester)
	assert.Equal(t, int64(15), svc.lastCancelRequest)
}

func TestRequestControllerList(t *testing.T) {
	svc := &fakeRequestService{
		listResult: []*domain.ParticipationRequest{{ID: 15}, {ID: 16}},
	}
	controller := NewRequestController(testLogger, svc)

	req := httptest.NewRequest(http.MethodGet, "http://test/users/2/requests", nil)
	req.SetPathValue("userID", "2")
	rec := httptest.NewRecorder()
	controller.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec.Body)
	require.Nil(t, resp.Error)
}
