package domain

import (
	"context"
	"time"
)

// EventState is the moderation state of an event. The set is closed: no
// transition leaves Published or Canceled.
type EventState string

const (
	EventStatePending   EventState = "PENDING"
	EventStatePublished EventState = "PUBLISHED"
	EventStateCanceled  EventState = "CANCELED"
)

// StateAction is a requested state transition carried inside an event patch.
type StateAction string

const (
	// Owner actions.
	StateActionSendToReview StateAction = "SEND_TO_REVIEW"
	StateActionCancelReview StateAction = "CANCEL_REVIEW"
	// Admin actions.
	StateActionPublish StateAction = "PUBLISH_EVENT"
	StateActionReject  StateAction = "REJECT_EVENT"
)

// Location is a lat/lon pair stored in its own row.
type Location struct {
	ID  int64   `json:"-"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Event is a public event with limited-capacity participation.
// ParticipantLimit 0 means unlimited. PublishedOn is set exactly once, at the
// PENDING to PUBLISHED transition.
type Event struct {
	ID                int64      `json:"id"`
	Title             string     `json:"title"`
	Annotation        string     `json:"annotation"`
	Description       string     `json:"description"`
	CategoryID        int64      `json:"category"`
	Location          Location   `json:"location"`
	EventDate         time.Time  `json:"eventDate"`
	CreatedOn         time.Time  `json:"createdOn"`
	PublishedOn       *time.Time `json:"publishedOn,omitempty"`
	Paid              bool       `json:"paid"`
	ParticipantLimit  int        `json:"participantLimit"`
	RequestModeration bool       `json:"requestModeration"`
	State             EventState `json:"state"`
	InitiatorID       int64      `json:"-"`
}

// NewEvent holds the fields of an event being created. RequestModeration
// defaults to true when nil.
type NewEvent struct {
	Title             string
	Annotation        string
	Description       string
	CategoryID        int64
	Location          Location
	EventDate         time.Time
	Paid              bool
	ParticipantLimit  int
	RequestModeration *bool
}

// EventPatch carries a partial update. Only non-nil fields overwrite the
// current record; omitted fields are preserved.
type EventPatch struct {
	Title             *string
	Annotation        *string
	Description       *string
	CategoryID        *int64
	Location          *Location
	EventDate         *time.Time
	Paid              *bool
	ParticipantLimit  *int
	RequestModeration *bool
	StateAction       *StateAction
}

// EventSearchParams filters the admin event listing.
type EventSearchParams struct {
	States       []EventState
	CategoryIDs  []int64
	InitiatorIDs []int64
	RangeStart   *time.Time
	RangeEnd     *time.Time
	Page         PageParams
}

// EventRepository defines storage operations for events. Create assigns both
// the event id and the location id.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id int64) (*Event, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*Event, error)
	Update(ctx context.Context, event *Event) error
	ListByInitiator(ctx context.Context, initiatorID int64, page PageParams) ([]*Event, error)
	Search(ctx context.Context, params EventSearchParams) ([]*Event, error)
}

// EventFull is the full read-model projection of an event. ConfirmedRequests
// and Views are derived on read and carry no lifecycle of their own.
type EventFull struct {
	Event
	Initiator         UserSummary `json:"initiator"`
	ConfirmedRequests int64       `json:"confirmedRequests"`
	Views             int64       `json:"views"`
}

// EventShort is the condensed read-model projection used by listings.
type EventShort struct {
	ID                int64       `json:"id"`
	Title             string      `json:"title"`
	Annotation        string      `json:"annotation"`
	CategoryID        int64       `json:"category"`
	EventDate         time.Time   `json:"eventDate"`
	Paid              bool        `json:"paid"`
	Initiator         UserSummary `json:"initiator"`
	ConfirmedRequests int64       `json:"confirmedRequests"`
	Views             int64       `json:"views"`
}

// EventService defines the event lifecycle operations.
type EventService interface {
	Create(ctx context.Context, spec NewEvent, initiatorID int64) (*EventFull, error)
	UpdateAsOwner(ctx context.Context, eventID, actorID int64, patch EventPatch) (*EventFull, error)
	UpdateAsAdmin(ctx context.Context, eventID int64, patch EventPatch) (*EventFull, error)
	Get(ctx context.Context, eventID, actorID int64) (*EventFull, error)
	GetPublished(ctx context.Context, eventID int64) (*EventFull, error)
	ListByInitiator(ctx context.Context, initiatorID int64, page PageParams) ([]*EventShort, error)
	AdminSearch(ctx context.Context, params EventSearchParams) ([]*EventFull, error)
}

// ProjectionService builds read-model projections for a set of events,
// merging request counts and external view statistics.
type ProjectionService interface {
	Full(ctx context.Context, events []*Event) ([]*EventFull, error)
	Short(ctx context.Context, events []*Event) ([]*EventShort, error)
}
