package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/Almer24/it-ticketing-system/internal/models"
	"github.com/Almer24/it-ticketing-system/internal/repository"
)

// fakeTicketRepo mirrors the postgres repo's contract: number allocation
// under a lock, guarded mutations, cascade delete of updates.
type fakeTicketRepo struct {
	mu      sync.Mutex
	seq     int
	tickets map[string]*models.Ticket
	updates map[string][]models.TicketUpdate
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{
		tickets: map[string]*models.Ticket{},
		updates: map[string][]models.TicketUpdate{},
	}
}

func (r *fakeTicketRepo) nextID() string {
	r.seq++
	return fmt.Sprintf("id-%04d", r.seq)
}

func (r *fakeTicketRepo) highestNumber(prefix string) string {
	best := ""
	for _, t := range r.tickets {
		if !strings.HasPrefix(t.TicketNumber, prefix) {
			continue
		}
		n := t.TicketNumber
		if len(n) > len(best) || (len(n) == len(best) && n > best) {
			best = n
		}
	}
	return best
}

func (r *fakeTicketRepo) Create(ctx context.Context, t *models.Ticket, first *models.TicketUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	year := time.Now().Year()
	t.TicketNumber = repository.NextTicketNumber(year, r.highestNumber(repository.YearPrefix(year)))
	for _, existing := range r.tickets {
		if existing.TicketNumber == t.TicketNumber {
			return repository.ErrDuplicateNumber
		}
	}

	t.ID = r.nextID()
	now := time.Now()
	t.CreatedAt, t.UpdatedAt = now, now
	cp := *t
	r.tickets[t.ID] = &cp

	first.ID = r.nextID()
	first.TicketID = t.ID
	first.CreatedAt = now
	r.updates[t.ID] = append(r.updates[t.ID], *first)
	return nil
}

func (r *fakeTicketRepo) Get(ctx context.Context, id string) (*models.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	cp.Updates = append([]models.TicketUpdate(nil), r.updates[id]...)
	return &cp, nil
}

func (r *fakeTicketRepo) guarded(id string, mutate func(*models.Ticket), upd *models.TicketUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	if !ok {
		return repository.ErrNotFound
	}
	if t.Status == models.StatusClosed {
		return repository.ErrTicketClosed
	}
	mutate(t)
	t.UpdatedAt = time.Now()
	upd.ID = r.nextID()
	upd.CreatedAt = time.Now()
	r.updates[id] = append(r.updates[id], *upd)
	return nil
}

func (r *fakeTicketRepo) SetStatus(ctx context.Context, id, status string, upd *models.TicketUpdate) error {
	return r.guarded(id, func(t *models.Ticket) { t.Status = status }, upd)
}

func (r *fakeTicketRepo) SetAssignee(ctx context.Context, id, assignee string, upd *models.TicketUpdate) error {
	return r.guarded(id, func(t *models.Ticket) { t.AssignedTo = assignee }, upd)
}

func (r *fakeTicketRepo) SetPhoto(ctx context.Context, id, url, key string, upd *models.TicketUpdate) error {
	return r.guarded(id, func(t *models.Ticket) { t.PhotoURL, t.PhotoKey = url, key }, upd)
}

func (r *fakeTicketRepo) AddUpdate(ctx context.Context, upd *models.TicketUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[upd.TicketID]; !ok {
		return repository.ErrNotFound
	}
	upd.ID = r.nextID()
	upd.CreatedAt = time.Now()
	r.updates[upd.TicketID] = append(r.updates[upd.TicketID], *upd)
	return nil
}

func (r *fakeTicketRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.tickets, id)
	delete(r.updates, id)
	return nil
}

func (r *fakeTicketRepo) List(ctx context.Context, f repository.TicketFilter) ([]models.Ticket, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Ticket
	for _, t := range r.tickets {
		if f.CreatedBy != "" && t.CreatedBy != f.CreatedBy {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Department != "" && t.Department != f.Department {
			continue
		}
		out = append(out, *t)
	}
	return out, len(out), nil
}

func (r *fakeTicketRepo) Summary(ctx context.Context) (*repository.ReportSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := &repository.ReportSummary{
		ByStatus:     map[string]int{},
		ByDepartment: map[string]int{},
		ByEquipment:  map[string]int{},
	}
	for _, t := range r.tickets {
		s.Total++
		s.ByStatus[t.Status]++
		s.ByDepartment[t.Department]++
		s.ByEquipment[t.EquipmentType]++
	}
	return s, nil
}

// updateCount is a test-only peek at the audit log, for cascade assertions.
func (r *fakeTicketRepo) updateCount(ticketID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.updates[ticketID])
}

// -----------------------------------------------------------------------------

type fakeUserRepo struct {
	mu     sync.Mutex
	seq    int
	users  map[string]*models.User
	hashes map[string]string
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*models.User{}, hashes: map[string]string{}}
}

// add seeds a user directly, bypassing validation.
func (r *fakeUserRepo) add(u models.User) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	if u.ID == "" {
		u.ID = fmt.Sprintf("u-%03d", r.seq)
	}
	cp := u
	r.users[cp.ID] = &cp
	return &cp
}

func (r *fakeUserRepo) Create(ctx context.Context, u *models.User, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	r.seq++
	u.ID = fmt.Sprintf("u-%03d", r.seq)
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	cp := *u
	r.users[u.ID] = &cp
	r.hashes[u.ID] = passwordHash
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, r.hashes[u.ID], nil
		}
	}
	return nil, "", nil
}

func (r *fakeUserRepo) List(ctx context.Context, q, role string, limit, offset int) ([]models.User, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.User
	for _, u := range r.users {
		if role != "" && u.Role != role {
			continue
		}
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (r *fakeUserRepo) Update(ctx context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	r.hashes[id] = passwordHash
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	delete(r.hashes, id)
	return nil
}

// -----------------------------------------------------------------------------

type fakePhotoStore struct {
	mu      sync.Mutex
	objects map[string]bool
	removed []string
}

func newFakePhotoStore() *fakePhotoStore {
	return &fakePhotoStore{objects: map[string]bool{}}
}

func (s *fakePhotoStore) Put(ctx context.Context, reader io.Reader, size int64, contentType, filename string) (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := fmt.Sprintf("tickets/%d-%s", len(s.objects)+1, filename)
	s.objects[key] = true
	return "http://photos.local/" + key, key, nil
}

func (s *fakePhotoStore) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	s.removed = append(s.removed, key)
	return nil
}

func (s *fakePhotoStore) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.objects[key], nil
}
