package domain

import (
	"context"
	"time"
)

// RequestStatus is the state of a participation request. Pending is only
// reachable when the target event moderates requests and has a nonzero
// participant limit; Confirmed, Rejected, and Canceled are terminal.
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "PENDING"
	RequestStatusConfirmed RequestStatus = "CONFIRMED"
	RequestStatusRejected  RequestStatus = "REJECTED"
	RequestStatusCanceled  RequestStatus = "CANCELED"
)

// ParticipationRequest is a user's request to join an event. At most one
// non-canceled request exists per (requester, event) pair.
type ParticipationRequest struct {
	ID          int64         `json:"id"`
	EventID     int64         `json:"event"`
	RequesterID int64         `json:"requester"`
	Status      RequestStatus `json:"status"`
	Created     time.Time     `json:"created"`
}

// RequestRepository defines storage operations for participation requests.
// SwitchStatuses applies both status sets in a single transaction so that no
// write of an admission batch is observable individually.
type RequestRepository interface {
	Create(ctx context.Context, req *ParticipationRequest) error
	GetByID(ctx context.Context, id int64) (*ParticipationRequest, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*ParticipationRequest, error)
	ListByRequester(ctx context.Context, requesterID int64) ([]*ParticipationRequest, error)
	ListByEvent(ctx context.Context, eventID int64) ([]*ParticipationRequest, error)
	ExistsActive(ctx context.Context, requesterID, eventID int64) (bool, error)
	CountByEventAndStatus(ctx context.Context, eventID int64, status RequestStatus) (int64, error)
	CountByEventIDsAndStatus(ctx context.Context, eventIDs []int64, status RequestStatus) (map[int64]int64, error)
	UpdateStatus(ctx context.Context, id int64, status RequestStatus) error
	SwitchStatuses(ctx context.Context, confirmIDs, rejectIDs []int64) error
}

// RequestService defines the participation request lifecycle operations.
type RequestService interface {
	Create(ctx context.Context, requesterID, eventID int64) (*ParticipationRequest, error)
	Cancel(ctx context.Context, requesterID, requestID int64) (*ParticipationRequest, error)
	ListByRequester(ctx context.Context, requesterID int64) ([]*ParticipationRequest, error)
	ListByEvent(ctx context.Context, eventID int64) ([]*ParticipationRequest, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*ParticipationRequest, error)
	CountByEventAndStatus(ctx context.Context, eventID int64, status RequestStatus) (int64, error)
}

// AdmissionResult is the partition returned by a batch admission call. Every
// input id appears in exactly one of the two lists.
type AdmissionResult struct {
	Confirmed []*ParticipationRequest `json:"confirmedRequests"`
	Rejected  []*ParticipationRequest `json:"rejectedRequests"`
}

// AdmissionService reconciles batch admission decisions against an event's
// remaining capacity on behalf of the event's initiator.
type AdmissionService interface {
	SwitchRequestsStatus(ctx context.Context, eventID, actorID int64, requestIDs []int64, status RequestStatus) (*AdmissionResult, error)
	ListEventRequests(ctx context.Context, eventID, actorID int64) ([]*ParticipationRequest, error)
}
