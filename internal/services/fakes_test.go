package services

import (
	"context"
	"log/slog"
	"time"

	"afisha/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	byID   map[int64]*domain.Event
	nextID int64
	err    error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		byID:   make(map[int64]*domain.Event),
		nextID: 1,
	}
}

func (f *fakeEventRepo) add(e *domain.Event) *domain.Event {
	if e.ID == 0 {
		e.ID = f.nextID
		f.nextID++
	}
	f.byID[e.ID] = e
	return e
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.err != nil {
		return f.err
	}
	e.ID = f.nextID
	e.Location.ID = f.nextID
	f.nextID++
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	e, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEventRepo) GetByIDs(ctx context.Context, ids []int64) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, id := range ids {
		if e, ok := f.byID[id]; ok {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, e *domain.Event) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byID[e.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *e
	f.byID[e.ID] = &cp
	return nil
}

func (f *fakeEventRepo) ListByInitiator(ctx context.Context, initiatorID int64, page domain.PageParams) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, e := range f.byID {
		if e.InitiatorID == initiatorID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) Search(ctx context.Context, params domain.EventSearchParams) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, e := range f.byID {
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

// fakeRequestRepo is an in-memory RequestRepository for tests. It records
// SwitchStatuses calls and counts capacity-check queries.
type fakeRequestRepo struct {
	byID   map[int64]*domain.ParticipationRequest
	nextID int64
	err    error

	countCalls     int
	switchConfirms [][]int64
	switchRejects  [][]int64
	switchErr      error
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{
		byID:   make(map[int64]*domain.ParticipationRequest),
		nextID: 1,
	}
}

func (f *fakeRequestRepo) add(r *domain.ParticipationRequest) *domain.ParticipationRequest {
	if r.ID == 0 {
		r.ID = f.nextID
		f.nextID++
	}
	f.byID[r.ID] = r
	return r
}

func (f *fakeRequestRepo) Create(ctx context.Context, r *domain.ParticipationRequest) error {
	if f.err != nil {
		return f.err
	}
	r.ID = f.nextID
	f.nextID++
	cp := *r
	f.byID[r.ID] = &cp
	return nil
}

func (f *fakeRequestRepo) GetByID(ctx context.Context, id int64) (*domain.ParticipationRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	r, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRequestRepo) GetByIDs(ctx context.Context, ids []int64) ([]*domain.ParticipationRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.ParticipationRequest
	for _, id := range ids {
		if r, ok := f.byID[id]; ok {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRequestRepo) ListByRequester(ctx context.Context, requesterID int64) ([]*domain.ParticipationRequest, error) {
	var out []*domain.ParticipationRequest
	for _, r := range f.byID {
		if r.RequesterID == requesterID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRequestRepo) ListByEvent(ctx context.Context, eventID int64) ([]*domain.ParticipationRequest, error) {
	var out []*domain.ParticipationRequest
	for _, r := range f.byID {
		if r.EventID == eventID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRequestRepo) ExistsActive(ctx context.Context, requesterID, eventID int64) (bool, error) {
	for _, r := range f.byID {
		if r.RequesterID == requesterID && r.EventID == eventID && r.Status != domain.RequestStatusCanceled {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRequestRepo) CountByEventAndStatus(ctx context.Context, eventID int64, status domain.RequestStatus) (int64, error) {
	f.countCalls++
	var count int64
	for _, r := range f.byID {
		if r.EventID == eventID && r.Status == status {
			count++
		}
	}
	return count, nil
}

func (f *fakeRequestRepo) CountByEventIDsAndStatus(ctx context.Context, eventIDs []int64, status domain.RequestStatus) (map[int64]int64, error) {
	out := make(map[int64]int64)
	for _, id := range eventIDs {
		for _, r := range f.byID {
			if r.EventID == id && r.Status == status {
				out[id]++
			}
		}
	}
	return out, nil
}

func (f *fakeRequestRepo) UpdateStatus(ctx context.Context, id int64, status domain.RequestStatus) error {
	r, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	r.Status = status
	return nil
}

func (f *fakeRequestRepo) SwitchStatuses(ctx context.Context, confirmIDs, rejectIDs []int64) error {
	if f.switchErr != nil {
		return f.switchErr
	}
	f.switchConfirms = append(f.switchConfirms, confirmIDs)
	f.switchRejects = append(f.switchRejects, rejectIDs)
	for _, id := range rejectIDs {
		if r, ok := f.byID[id]; ok {
			r.Status = domain.RequestStatusRejected
		}
	}
	for _, id := range confirmIDs {
		if r, ok := f.byID[id]; ok {
			r.Status = domain.RequestStatusConfirmed
		}
	}
	return nil
}

// fakeUserDirectory is an in-memory UserDirectory for tests.
type fakeUserDirectory struct {
	byID map[int64]*domain.UserSummary
}

func newFakeUserDirectory(users ...*domain.UserSummary) *fakeUserDirectory {
	f := &fakeUserDirectory{byID: make(map[int64]*domain.UserSummary)}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUserDirectory) GetByID(ctx context.Context, id int64) (*domain.UserSummary, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserDirectory) GetByIDs(ctx context.Context, ids []int64) ([]*domain.UserSummary, error) {
	var out []*domain.UserSummary
	var missing []int64
	for _, id := range ids {
		u, ok := f.byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		out = append(out, u)
	}
	if len(missing) > 0 {
		return nil, &domain.NotFoundIDsError{Entity: "users", IDs: missing}
	}
	return out, nil
}

// fakeCategoryRepo is an in-memory CategoryRepository for tests.
type fakeCategoryRepo struct {
	byID map[int64]*domain.Category
}

func newFakeCategoryRepo(categories ...*domain.Category) *fakeCategoryRepo {
	f := &fakeCategoryRepo{byID: make(map[int64]*domain.Category)}
	for _, c := range categories {
		f.byID[c.ID] = c
	}
	return f
}

func (f *fakeCategoryRepo) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

// fakeCollector is an AnalyticsCollector returning canned stats or an error.
type fakeCollector struct {
	stats []domain.ViewStat
	err   error

	calls      int
	lastStart  time.Time
	lastPaths  []string
	lastUnique bool
}

func (f *fakeCollector) QueryHits(ctx context.Context, start, end time.Time, paths []string, unique bool) ([]domain.ViewStat, error) {
	f.calls++
	f.lastStart = start
	f.lastPaths = paths
	f.lastUnique = unique
	if f.err != nil {
		return nil, f.err
	}
	return f.stats, nil
}

// fakeEmailService records notification sends.
type fakeEmailService struct {
	published []*domain.EventPublishedEmailData
	confirmed []*domain.RequestConfirmedEmailData
	err       error
}

func (f *fakeEmailService) SendEventPublished(ctx context.Context, data *domain.EventPublishedEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, data)
	return nil
}

func (f *fakeEmailService) SendRequestConfirmed(ctx context.Context, data *domain.RequestConfirmedEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.confirmed = append(f.confirmed, data)
	return nil
}
