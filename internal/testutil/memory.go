// Package testutil holds in-memory implementations of the domain ports for
// use-case and handler tests.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Abdurahmanit/GroupProject/village-market/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ListingStore is an in-memory domain.ListingRepository. Stored values are
// deep copies so tests observe the same isolation a database gives.
type ListingStore[T any, PT domain.ListingPtr[T]] struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]PT
	order []primitive.ObjectID
}

func NewListingStore[T any, PT domain.ListingPtr[T]]() *ListingStore[T, PT] {
	return &ListingStore[T, PT]{items: make(map[primitive.ObjectID]PT)}
}

func clone[T any, PT domain.ListingPtr[T]](in PT) PT {
	raw, err := json.Marshal(in)
	if err != nil {
		panic(err)
	}
	out := PT(new(T))
	if err := json.Unmarshal(raw, out); err != nil {
		panic(err)
	}
	out.Meta().Normalize()
	return out
}

func (s *ListingStore[T, PT]) Create(_ context.Context, listing PT) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	meta := listing.Meta()
	if meta.ID.IsZero() {
		meta.ID = primitive.NewObjectID()
	}
	meta.Normalize()
	s.items[meta.ID] = clone[T, PT](listing)
	s.order = append(s.order, meta.ID)
	return nil
}

func (s *ListingStore[T, PT]) FindByID(_ context.Context, id primitive.ObjectID) (PT, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return clone[T, PT](item), nil
}

func (s *ListingStore[T, PT]) Find(_ context.Context, filter domain.ListingFilter) ([]PT, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	filter.Normalize()

	var matched []PT
	for _, id := range s.order {
		item, ok := s.items[id]
		if !ok || !matches(item, filter) {
			continue
		}
		matched = append(matched, clone[T, PT](item))
	}

	kind := PT(new(T)).Kind()
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := sortTime(matched[i], kind), sortTime(matched[j], kind)
		if kind.SortAsc {
			return a.Before(b)
		}
		return a.After(b)
	})

	total := int64(len(matched))
	start := len(matched)
	if skip := filter.Skip(); skip < int64(start) {
		start = int(skip)
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func sortTime(l domain.Listing, kind *domain.Kind) time.Time {
	if kind.SortField == "createdAt" || kind.SortField == "" {
		return l.Meta().CreatedAt
	}
	if t, ok := fieldValue(l, kind.SortField).(string); ok {
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed
		}
	}
	return l.Meta().CreatedAt
}

func matches(l domain.Listing, f domain.ListingFilter) bool {
	kind := l.Kind()
	meta := l.Meta()
	if !f.IncludeHidden && !meta.Visible() {
		return false
	}
	if !f.OwnerID.IsZero() {
		owned, ok := l.(domain.Owned)
		if !ok || owned.OwnerID() != f.OwnerID {
			return false
		}
	}
	if f.Category != "" && fieldValue(l, kind.CategoryField) != f.Category {
		return false
	}
	if f.City != "" && !containsFold(fieldValue(l, kind.CityField), f.City) {
		return false
	}
	if f.Search != "" && !containsFold(fieldValue(l, kind.TitleField), f.Search) {
		return false
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		price, _ := fieldValue(l, kind.PriceField).(float64)
		if f.MinPrice != nil && price < *f.MinPrice {
			return false
		}
		if f.MaxPrice != nil && price > *f.MaxPrice {
			return false
		}
	}
	if f.From != nil || f.To != nil {
		at := meta.CreatedAt
		if kind.DateField != "" {
			if s, ok := fieldValue(l, kind.DateField).(string); ok {
				at, _ = time.Parse(time.RFC3339Nano, s)
			}
		}
		if f.From != nil && at.Before(*f.From) {
			return false
		}
		if f.To != nil && at.After(*f.To) {
			return false
		}
	}
	return true
}

// fieldValue resolves a dotted JSON path on the listing's JSON form.
func fieldValue(l domain.Listing, path string) any {
	fields, err := domain.ToFields(l)
	if err != nil {
		return nil
	}
	var cur any = fields
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[part]
	}
	return cur
}

func containsFold(v any, needle string) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	return regexp.MustCompile("(?i)" + regexp.QuoteMeta(needle)).MatchString(s)
}

func (s *ListingStore[T, PT]) Update(_ context.Context, listing PT) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.update(listing, nil)
}

// update keeps the stored flags and creation time, like the Mongo $set.
// check runs against the stored item before the write. Callers hold s.mu.
func (s *ListingStore[T, PT]) update(listing PT, check func(stored, next PT) error) error {
	id := listing.Meta().ID
	stored, ok := s.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	next := clone[T, PT](listing)
	if check != nil {
		if err := check(stored, next); err != nil {
			return err
		}
	}
	meta, old := next.Meta(), stored.Meta()
	meta.IsActive, meta.IsApproved, meta.CreatedAt = old.IsActive, old.IsApproved, old.CreatedAt
	s.items[id] = next
	return nil
}

func (s *ListingStore[T, PT]) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *ListingStore[T, PT]) SetActive(_ context.Context, id primitive.ObjectID, active bool) error {
	return s.mutate(id, func(b *domain.Base) { b.IsActive = active })
}

func (s *ListingStore[T, PT]) SetApproved(_ context.Context, id primitive.ObjectID, approved bool) error {
	return s.mutate(id, func(b *domain.Base) { b.IsApproved = approved })
}

func (s *ListingStore[T, PT]) mutate(id primitive.ObjectID, fn func(*domain.Base)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	fn(item.Meta())
	item.Meta().UpdatedAt = time.Now().UTC()
	return nil
}

func (s *ListingStore[T, PT]) Stats(_ context.Context) (domain.ListingStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var st domain.ListingStats
	for _, item := range s.items {
		st.Total++
		if item.Meta().IsActive {
			st.Active++
		}
		if item.Meta().IsApproved {
			st.Approved++
		}
	}
	return st, nil
}

func (s *ListingStore[T, PT]) IDsByOwner(_ context.Context, owner primitive.ObjectID) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := []string{}
	for _, id := range s.order {
		item, ok := s.items[id]
		if !ok {
			continue
		}
		if owned, ok := any(item).(domain.Owned); ok && owned.OwnerID() == owner {
			ids = append(ids, id.Hex())
		}
	}
	return ids, nil
}

// Put stores listing as is, bypassing use-case defaults. Handy for seeding.
func (s *ListingStore[T, PT]) Put(listing PT) PT {
	_ = s.Create(context.Background(), listing)
	return listing
}

// EventStore adds the booking counter to the in-memory event store.
type EventStore struct {
	*ListingStore[domain.Event, *domain.Event]
}

func NewEventStore() *EventStore {
	return &EventStore{ListingStore: NewListingStore[domain.Event, *domain.Event]()}
}

// Update keeps the stored booking counter and refuses a capacity below it.
func (s *EventStore) Update(_ context.Context, event *domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.update(event, func(stored, next *domain.Event) error {
		next.CurrentBookings = stored.CurrentBookings
		if next.Capacity < stored.CurrentBookings {
			return domain.CapacityBelowBookings()
		}
		return nil
	})
}

func (s *EventStore) Book(_ context.Context, id primitive.ObjectID, tickets int) (*domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	event, ok := s.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if !event.Visible() {
		return nil, domain.ErrEventUnavailable
	}
	if event.CurrentBookings+tickets > event.Capacity {
		return nil, domain.ErrCapacityExceeded
	}
	event.CurrentBookings += tickets
	event.UpdatedAt = time.Now().UTC()
	return clone[domain.Event, *domain.Event](event), nil
}

// UserStore is an in-memory domain.UserRepository.
type UserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]domain.User
	order []primitive.ObjectID
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[primitive.ObjectID]domain.User)}
}

func (s *UserStore) Create(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	for _, u := range s.users {
		if u.Email == user.Email {
			return domain.ErrDuplicateEmail
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	s.users[user.ID] = *user
	s.order = append(s.order, user.ID)
	return nil
}

func (s *UserStore) FindByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *UserStore) List(_ context.Context, status domain.UserStatus, page, limit int) ([]*domain.User, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []*domain.User
	for i := len(s.order) - 1; i >= 0; i-- {
		u, ok := s.users[s.order[i]]
		if !ok {
			continue
		}
		if status == domain.UserStatusPending && u.IsApproved || status == domain.UserStatusApproved && !u.IsApproved {
			continue
		}
		found := u
		matched = append(matched, &found)
	}
	total := int64(len(matched))
	start := len(matched)
	if skip := domain.PageSkip(page, limit); skip < int64(start) {
		start = int(skip)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (s *UserStore) Approve(_ context.Context, id primitive.ObjectID, at time.Time) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if u.IsApproved {
		return nil, fmt.Errorf("%w: user is already approved", domain.ErrConflict)
	}
	u.IsApproved = true
	u.ApprovedAt = &at
	u.UpdatedAt = at
	s.users[id] = u
	return &u, nil
}

func (s *UserStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *UserStore) Stats(_ context.Context) (domain.UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var st domain.UserStats
	for _, u := range s.users {
		st.Total++
		if u.IsApproved {
			st.Approved++
		}
	}
	st.Pending = st.Total - st.Approved
	return st, nil
}

// FileStore is an in-memory domain.FileStorage.
type FileStore struct {
	mu      sync.Mutex
	files   map[string][]byte
	seq     int
	FailOn  int
	Removed []string
}

func NewFileStore() *FileStore {
	return &FileStore{files: make(map[string][]byte)}
}

func (s *FileStore) Save(_ context.Context, dir, originalName, _ string, r io.Reader, _ int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	if s.FailOn > 0 && s.seq == s.FailOn {
		return "", fmt.Errorf("storage unavailable")
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	p := fmt.Sprintf("uploads/%s/%d-%s", dir, s.seq, originalName)
	s.files[p] = buf.Bytes()
	return p, nil
}

func (s *FileStore) Remove(_ context.Context, p string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, p)
	s.Removed = append(s.Removed, p)
	return nil
}

func (s *FileStore) Has(p string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.files[p]
	return ok
}

func (s *FileStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

// Mailer records sent mails. Err, when set, is returned by every send.
type Mailer struct {
	mu       sync.Mutex
	Err      error
	Welcome  []string
	Approved []string
	Rejected []string
}

func (m *Mailer) SendWelcome(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Welcome = append(m.Welcome, user.Email)
	return m.Err
}

func (m *Mailer) SendApproved(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Approved = append(m.Approved, user.Email)
	return m.Err
}

func (m *Mailer) SendRejected(_ context.Context, user *domain.User, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Rejected = append(m.Rejected, user.Email)
	return m.Err
}

// Publisher records published subjects.
type Publisher struct {
	mu       sync.Mutex
	Subjects []string
}

func (p *Publisher) Publish(_ context.Context, subject string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Subjects = append(p.Subjects, subject)
	return nil
}

func (p *Publisher) Published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.Subjects...)
}
