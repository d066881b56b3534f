package service

import (
	"context"
	"errors"
	"fitbuddy/app/internal/domain"
	"fitbuddy/app/internal/payment"
	"fitbuddy/app/internal/repository"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*domain.User
	err   error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[primitive.ObjectID]*domain.User{}}
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return primitive.NilObjectID, r.err
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	cp := *user
	cp.ID = primitive.NewObjectID()
	r.users[cp.ID] = &cp
	return cp.ID, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.Email == strings.ToLower(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) update(id primitive.ObjectID, fn func(u *domain.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(u)
	return nil
}

func (r *memUserRepo) UpdateName(_ context.Context, id primitive.ObjectID, name string) error {
	return r.update(id, func(u *domain.User) { u.Name = name })
}

func (r *memUserRepo) UpdatePasswordHash(_ context.Context, id primitive.ObjectID, hash string) error {
	return r.update(id, func(u *domain.User) { u.PasswordHash = hash })
}

func (r *memUserRepo) UpdateAvatarKey(_ context.Context, id primitive.ObjectID, key string) error {
	return r.update(id, func(u *domain.User) { u.AvatarKey = key })
}

func (r *memUserRepo) UpdateSubscription(_ context.Context, id primitive.ObjectID, sub domain.Subscription) error {
	return r.update(id, func(u *domain.User) { u.Subscription = sub })
}

func (r *memUserRepo) add(u domain.User) primitive.ObjectID {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	r.mu.Lock()
	r.users[u.ID] = &u
	r.mu.Unlock()
	return u.ID
}

type memWorkoutRepo struct {
	mu       sync.Mutex
	workouts map[primitive.ObjectID]domain.Workout
	err      error
	clock    time.Time
}

func newMemWorkoutRepo() *memWorkoutRepo {
	return &memWorkoutRepo{
		workouts: map[primitive.ObjectID]domain.Workout{},
		clock:    time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
	}
}

func (r *memWorkoutRepo) tick() time.Time {
	r.clock = r.clock.Add(time.Minute)
	return r.clock
}

func (r *memWorkoutRepo) Create(_ context.Context, w *domain.Workout) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return primitive.NilObjectID, r.err
	}
	w.ID = primitive.NewObjectID()
	w.CreatedAt = r.tick()
	w.UpdatedAt = w.CreatedAt
	r.workouts[w.ID] = *w
	return w.ID, nil
}

func (r *memWorkoutRepo) GetByID(_ context.Context, id, ownerID primitive.ObjectID) (*domain.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	w, ok := r.workouts[id]
	if !ok || w.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	return &w, nil
}

func (r *memWorkoutRepo) GetByOwnerID(_ context.Context, ownerID primitive.ObjectID) ([]domain.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []domain.Workout
	for _, w := range r.workouts {
		if w.OwnerID == ownerID {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memWorkoutRepo) UpdateData(_ context.Context, id, ownerID primitive.ObjectID, data string) (*domain.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	w, ok := r.workouts[id]
	if !ok || w.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	w.Data = data
	w.UpdatedAt = r.tick()
	r.workouts[id] = w
	return &w, nil
}

func (r *memWorkoutRepo) Delete(_ context.Context, id, ownerID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	w, ok := r.workouts[id]
	if !ok || w.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	delete(r.workouts, id)
	return nil
}

type fakeStorage struct {
	objects map[string]bool
	deleted []string
	failURL bool
}

func newFakeStorage() *fakeStorage { return &fakeStorage{objects: map[string]bool{}} }

func (s *fakeStorage) GeneratePresignedUploadURL(_ context.Context, key, contentType string, _ time.Duration) (string, error) {
	if s.failURL {
		return "", errors.New("presign failed")
	}
	return "https://bucket.test/" + key + "?put&ct=" + contentType, nil
}

func (s *fakeStorage) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	if s.failURL {
		return "", errors.New("presign failed")
	}
	return "https://bucket.test/" + key + "?get", nil
}

func (s *fakeStorage) ObjectExists(_ context.Context, key string) (bool, error) {
	return s.objects[key], nil
}

func (s *fakeStorage) DeleteObject(_ context.Context, key string) error {
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

type fakeCompletion struct {
	payload []byte
	err     error
	calls   int
	last    []domain.ChatMessage
}

func (f *fakeCompletion) Complete(_ context.Context, msgs []domain.ChatMessage) ([]byte, error) {
	f.calls++
	f.last = msgs
	return f.payload, f.err
}

type fakeCheckout struct {
	email, ref string
	err        error
}

func (f *fakeCheckout) CreateSubscriptionCheckout(_ context.Context, email, ref string) (*payment.CheckoutSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.email, f.ref = email, ref
	return &payment.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.test/cs_test_1"}, nil
}
