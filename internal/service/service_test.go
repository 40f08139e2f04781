package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/deppfellow/lightbnb/internal/cache"
	"github.com/deppfellow/lightbnb/internal/errs"
	"github.com/deppfellow/lightbnb/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

func testLogger() (*zerolog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)
	return &l, &buf
}

func ptr[T any](v T) *T { return &v }

// ============================================
// Fakes
// ============================================

type fakeUserStore struct {
	users map[int64]models.User
	err   error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[int64]models.User{}}
}

func (f *fakeUserStore) GetUserWithEmail(_ context.Context, email string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) GetUserWithID(_ context.Context, id int64) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

// AddUser enforces a case-sensitive unique email, like the users table.
func (f *fakeUserStore) AddUser(_ context.Context, in models.NewUser) (models.User, error) {
	for _, u := range f.users {
		if u.Email == in.Email {
			code := "USER_ALREADY_EXISTS"
			return models.User{}, errs.NewConstraintError("A user with this email already exists", &code, nil, nil)
		}
	}
	u := models.User{ID: int64(len(f.users) + 1), Name: in.Name, Email: in.Email, Password: in.PasswordHash}
	f.users[u.ID] = u
	return u, nil
}

type fakePropertyStore struct {
	searches int
	added    []models.NewProperty
	result   []models.PropertyListing
	err      error

	// afterRead runs once, after the next search has read its rows.
	afterRead func()
}

func (f *fakePropertyStore) Search(context.Context, string, []any) ([]models.PropertyListing, error) {
	f.searches++
	result := append([]models.PropertyListing(nil), f.result...)
	if hook := f.afterRead; hook != nil {
		f.afterRead = nil
		hook()
	}
	return result, f.err
}

func (f *fakePropertyStore) AddProperty(_ context.Context, p models.NewProperty) (models.Property, error) {
	f.added = append(f.added, p)
	return models.Property{ID: int64(len(f.added)), Title: p.Title, City: p.City}, nil
}

type fakeReservationStore struct {
	stored  map[int64]models.Reservation
	updated []models.ReservationPatch
	deleted []int64
}

func (f *fakeReservationStore) AddReservation(_ context.Context, in models.NewReservation) (models.Reservation, error) {
	r := models.Reservation{ID: int64(len(f.stored) + 1), StartDate: in.StartDate, EndDate: in.EndDate, PropertyID: in.PropertyID, GuestID: in.GuestID}
	f.stored[r.ID] = r
	return r, nil
}

func (f *fakeReservationStore) GetUpcomingReservations(context.Context, int64, int) ([]models.GuestReservation, error) {
	return []models.GuestReservation{}, nil
}

func (f *fakeReservationStore) GetFulfilledReservations(context.Context, int64, int) ([]models.GuestReservation, error) {
	return []models.GuestReservation{}, nil
}

func (f *fakeReservationStore) GetPastReservations(context.Context, int64, int) ([]models.GuestReservation, error) {
	return nil, errs.NewConnectionError(errors.New("dial tcp: refused"))
}

func (f *fakeReservationStore) GetReservation(_ context.Context, id int64) (*models.Reservation, error) {
	if r, ok := f.stored[id]; ok {
		return &r, nil
	}
	return nil, nil
}

func (f *fakeReservationStore) UpdateReservation(_ context.Context, id int64, patch models.ReservationPatch) (models.Reservation, error) {
	f.updated = append(f.updated, patch)
	r := f.stored[id]
	if patch.EndDate != nil {
		r.EndDate = *patch.EndDate
	}
	return r, nil
}

func (f *fakeReservationStore) DeleteReservation(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeReviewStore struct {
	added []models.NewReview
}

func (f *fakeReviewStore) GetReviewsByProperty(context.Context, int64) ([]models.PropertyReviewDetail, error) {
	return []models.PropertyReviewDetail{}, nil
}

func (f *fakeReviewStore) AddReview(_ context.Context, in models.NewReview) (models.PropertyReview, error) {
	f.added = append(f.added, in)
	return models.PropertyReview{ID: 1, GuestID: in.GuestID, PropertyID: in.PropertyID, ReservationID: in.ReservationID, Rating: int(in.Rating)}, nil
}

// ============================================
// Users
// ============================================

func TestUserService_RegisterHashesPassword(t *testing.T) {
	store := newFakeUserStore()
	log, _ := testLogger()
	svc := NewUserService(store, bcrypt.MinCost, log)

	user, err := svc.Register(context.Background(), models.RegisterUser{
		Name: " Ada ", Email: "ada@example.com", Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if user.Name != "Ada" {
		t.Errorf("Name = %q, want trimmed", user.Name)
	}
	if user.Password == "correct horse" {
		t.Fatal("password stored in plain text")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("correct horse")) != nil {
		t.Error("stored hash does not match the password")
	}
}

func TestUserService_RegisterRejectsInvalidInput(t *testing.T) {
	store := newFakeUserStore()
	log, _ := testLogger()
	svc := NewUserService(store, bcrypt.MinCost, log)

	_, err := svc.Register(context.Background(), models.RegisterUser{Name: "Ada", Email: "not-an-email", Password: "short"})

	var appErr *errs.Error
	if !errors.As(err, &appErr) || appErr.Kind != errs.KindInvalid {
		t.Fatalf("err = %v, want KindInvalid", err)
	}
	if len(appErr.Errors) != 2 {
		t.Errorf("field errors = %+v, want email and password", appErr.Errors)
	}
	if len(store.users) != 0 {
		t.Error("invalid user reached the store")
	}
}

func TestUserService_RegisterPasswordOverBcryptLimit(t *testing.T) {
	store := newFakeUserStore()
	log, buf := testLogger()
	svc := NewUserService(store, bcrypt.MinCost, log)

	// 40 runes, 80 bytes.
	_, err := svc.Register(context.Background(), models.RegisterUser{
		Name: "Ada", Email: "ada@example.com", Password: strings.Repeat("é", 40),
	})

	var appErr *errs.Error
	if !errors.As(err, &appErr) || appErr.Kind != errs.KindInvalid {
		t.Fatalf("err = %v, want KindInvalid", err)
	}
	if len(appErr.Errors) != 1 || appErr.Errors[0].Field != "password" {
		t.Errorf("field errors = %+v", appErr.Errors)
	}
	if strings.Contains(buf.String(), `"level":"error"`) {
		t.Errorf("bad input logged as an error: %s", buf.String())
	}
	if len(store.users) != 0 {
		t.Error("user stored")
	}
}

func TestUserService_RegisterLowercasesEmail(t *testing.T) {
	store := newFakeUserStore()
	log, _ := testLogger()
	svc := NewUserService(store, bcrypt.MinCost, log)
	ctx := context.Background()

	user, err := svc.Register(ctx, models.RegisterUser{Name: "Ada", Email: " Ada@Example.COM ", Password: "correct horse"})
	if err != nil {
		t.Fatal(err)
	}
	if user.Email != "ada@example.com" {
		t.Errorf("Email = %q, want lowercased", user.Email)
	}

	_, err = svc.Register(ctx, models.RegisterUser{Name: "Ada", Email: "ada@example.com", Password: "correct horse"})
	if !errors.Is(err, errs.ErrConstraint) {
		t.Errorf("err = %v, want constraint error for a case variant", err)
	}
}

func TestUserService_RegisterDuplicate(t *testing.T) {
	store := newFakeUserStore()
	log, buf := testLogger()
	svc := NewUserService(store, bcrypt.MinCost, log)
	in := models.RegisterUser{Name: "Ada", Email: "ada@example.com", Password: "correct horse"}

	if _, err := svc.Register(context.Background(), in); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Register(context.Background(), in)
	if !errors.Is(err, errs.ErrConstraint) {
		t.Errorf("err = %v, want constraint error", err)
	}
	if !strings.Contains(buf.String(), `"operation":"user.register"`) {
		t.Errorf("failure not logged: %s", buf.String())
	}
}

func TestUserService_Authenticate(t *testing.T) {
	store := newFakeUserStore()
	log, _ := testLogger()
	svc := NewUserService(store, bcrypt.MinCost, log)
	ctx := context.Background()

	registered, err := svc.Register(ctx, models.RegisterUser{Name: "Ada", Email: "ada@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name, email, password string
		wantErr               bool
	}{
		{"match", "ada@example.com", "correct horse", false},
		{"case insensitive email", "ADA@example.com", "correct horse", false},
		{"wrong password", "ada@example.com", "battery staple", true},
		{"unknown email", "bob@example.com", "correct horse", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := svc.Authenticate(ctx, tt.email, tt.password)
			if tt.wantErr {
				if !errors.Is(err, errs.ErrUnauthorized) {
					t.Errorf("err = %v, want unauthorized", err)
				}
				return
			}
			if err != nil || user.ID != registered.ID {
				t.Errorf("got %+v, %v", user, err)
			}
		})
	}
}

func TestUserService_LookupsSurfaceErrors(t *testing.T) {
	store := newFakeUserStore()
	store.err = errs.NewConnectionError(errors.New("refused"))
	log, _ := testLogger()
	svc := NewUserService(store, bcrypt.MinCost, log)

	if _, err := svc.GetByEmail(context.Background(), "ada@example.com"); !errors.Is(err, errs.ErrConnection) {
		t.Errorf("GetByEmail err = %v", err)
	}
	if _, err := svc.GetByID(context.Background(), 1); !errors.Is(err, errs.ErrConnection) {
		t.Errorf("GetByID err = %v", err)
	}

	store.err = nil
	if u, err := svc.GetByID(context.Background(), 42); u != nil || err != nil {
		t.Errorf("absent user = %+v, %v; want nil, nil", u, err)
	}
}

// ============================================
// Properties and reviews (with a real cache on miniredis)
// ============================================

func newSearchCache(t *testing.T) *cache.SearchCache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return cache.New(client, time.Minute)
}

func TestPropertyService_SearchUsesCache(t *testing.T) {
	store := &fakePropertyStore{result: []models.PropertyListing{{Property: models.Property{ID: 1, City: "Rome"}}}}
	log, _ := testLogger()
	searchCache := newSearchCache(t)
	svc := NewPropertyService(store, searchCache, log)
	ctx := context.Background()
	filter := models.PropertyFilter{City: "Rome"}

	for i := 0; i < 3; i++ {
		got, err := svc.Search(ctx, filter, 10)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(got) != 1 || got[0].City != "Rome" {
			t.Fatalf("got %+v", got)
		}
	}
	if store.searches != 1 {
		t.Errorf("store searched %d times, want 1", store.searches)
	}

	// Adding a property invalidates the cached search.
	if _, err := svc.Add(ctx, models.NewProperty{
		OwnerID: 1, Title: "New", Street: "s", City: "Rome", Province: "p", PostCode: "1", Country: "c",
	}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := svc.Search(ctx, filter, 10); err != nil {
		t.Fatal(err)
	}
	if store.searches != 2 {
		t.Errorf("store searched %d times after invalidation, want 2", store.searches)
	}
}

func TestPropertyService_SearchRacingInvalidation(t *testing.T) {
	store := &fakePropertyStore{result: []models.PropertyListing{{Property: models.Property{ID: 1, City: "Rome"}}}}
	log, _ := testLogger()
	searchCache := newSearchCache(t)
	svc := NewPropertyService(store, searchCache, log)
	ctx := context.Background()
	filter := models.PropertyFilter{City: "Rome"}

	// A property is added and searches invalidated while the first search
	// is between its database read and its cache write.
	store.afterRead = func() {
		store.result = append(store.result, models.PropertyListing{Property: models.Property{ID: 2, City: "Rome"}})
		if err := searchCache.Invalidate(ctx); err != nil {
			t.Errorf("Invalidate: %v", err)
		}
	}

	first, err := svc.Search(ctx, filter, 10)
	if err != nil {
		t.Fatalf("first search: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("first search = %d listings, want 1", len(first))
	}

	second, err := svc.Search(ctx, filter, 10)
	if err != nil {
		t.Fatalf("second search: %v", err)
	}
	if len(second) != 2 {
		t.Errorf("second search = %d listings, want 2 (stale cache served)", len(second))
	}
	if store.searches != 2 {
		t.Errorf("store searched %d times, want 2", store.searches)
	}
}

func TestPropertyService_SearchWithoutCache(t *testing.T) {
	store := &fakePropertyStore{result: []models.PropertyListing{}}
	log, _ := testLogger()
	svc := NewPropertyService(store, nil, log)

	for i := 0; i < 2; i++ {
		if _, err := svc.Search(context.Background(), models.PropertyFilter{}, 0); err != nil {
			t.Fatal(err)
		}
	}
	if store.searches != 2 {
		t.Errorf("searches = %d, want 2", store.searches)
	}
}

func TestPropertyService_SearchRejectsBadFilter(t *testing.T) {
	store := &fakePropertyStore{}
	log, _ := testLogger()
	svc := NewPropertyService(store, nil, log)

	tests := []models.PropertyFilter{
		{MinimumPricePerNight: ptr(int64(500)), MaximumPricePerNight: ptr(int64(100))},
		{MinimumRating: ptr(7.0)},
	}
	for _, f := range tests {
		if _, err := svc.Search(context.Background(), f, 10); !errors.Is(err, errs.ErrInvalid) {
			t.Errorf("filter %+v: err = %v, want invalid", f, err)
		}
	}
	if store.searches != 0 {
		t.Error("invalid filter reached the store")
	}
}

func TestPropertyService_SearchSurvivesCacheOutage(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	mr.Close()

	store := &fakePropertyStore{result: []models.PropertyListing{}}
	log, buf := testLogger()
	svc := NewPropertyService(store, cache.New(client, time.Minute), log)

	if _, err := svc.Search(context.Background(), models.PropertyFilter{}, 10); err != nil {
		t.Fatalf("Search failed with redis down: %v", err)
	}
	if store.searches != 1 {
		t.Errorf("searches = %d, want 1", store.searches)
	}
	if !strings.Contains(buf.String(), "search cache read failed") {
		t.Errorf("cache failure not logged: %s", buf.String())
	}
}

func TestReviewService_AddInvalidatesSearches(t *testing.T) {
	searchCache := newSearchCache(t)
	ctx := context.Background()

	key, err := searchCache.Key(ctx, "stmt", nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := searchCache.Set(ctx, key, []models.PropertyListing{}); err != nil {
		t.Fatal(err)
	}

	reviews := &fakeReviewStore{}
	log, _ := testLogger()
	svc := NewReviewService(reviews, searchCache, log)

	review, err := svc.Add(ctx, models.NewReview{GuestID: 1, PropertyID: 2, ReservationID: 3, Rating: 5, Message: "great"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if review.ReservationID != 3 {
		t.Errorf("review = %+v", review)
	}

	key, err = searchCache.Key(ctx, "stmt", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := searchCache.Get(ctx, key); ok {
		t.Error("cached search survived a new review")
	}
}

func TestReviewService_AddRejectsBadRating(t *testing.T) {
	reviews := &fakeReviewStore{}
	log, _ := testLogger()
	svc := NewReviewService(reviews, nil, log)

	_, err := svc.Add(context.Background(), models.NewReview{GuestID: 1, PropertyID: 2, ReservationID: 3, Rating: 9})
	if !errors.Is(err, errs.ErrInvalid) {
		t.Errorf("err = %v, want invalid", err)
	}
	if len(reviews.added) != 0 {
		t.Error("invalid review reached the store")
	}
}

// ============================================
// Reservations
// ============================================

func TestReservationService(t *testing.T) {
	store := &fakeReservationStore{stored: map[int64]models.Reservation{}}
	log, buf := testLogger()
	svc := NewReservationService(store, log)
	ctx := context.Background()

	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	res, err := svc.Add(ctx, models.NewReservation{StartDate: start, EndDate: start.AddDate(0, 0, 3), PropertyID: 1, GuestID: 2})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	t.Run("add rejects backwards range", func(t *testing.T) {
		_, err := svc.Add(ctx, models.NewReservation{StartDate: start, EndDate: start.AddDate(0, 0, -1), PropertyID: 1, GuestID: 2})
		if !errors.Is(err, errs.ErrInvalid) {
			t.Errorf("err = %v, want invalid", err)
		}
	})

	t.Run("update checks the stored start date", func(t *testing.T) {
		before := start.AddDate(0, 0, -2)
		_, err := svc.Update(ctx, res.ID, models.ReservationPatch{EndDate: &before})
		if !errors.Is(err, errs.ErrInvalid) {
			t.Errorf("err = %v, want invalid", err)
		}
		if len(store.updated) != 0 {
			t.Error("invalid patch reached the store")
		}
	})

	t.Run("update", func(t *testing.T) {
		later := start.AddDate(0, 0, 7)
		got, err := svc.Update(ctx, res.ID, models.ReservationPatch{EndDate: &later})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if !got.EndDate.Equal(later) {
			t.Errorf("EndDate = %v", got.EndDate)
		}
	})

	t.Run("empty patch", func(t *testing.T) {
		if _, err := svc.Update(ctx, res.ID, models.ReservationPatch{}); !errors.Is(err, errs.ErrInvalid) {
			t.Errorf("err = %v, want invalid", err)
		}
	})

	t.Run("listings", func(t *testing.T) {
		if got, err := svc.Upcoming(ctx, 2, 10); err != nil || got == nil {
			t.Errorf("Upcoming = %v, %v", got, err)
		}
		if got, err := svc.Fulfilled(ctx, 2, 10); err != nil || got == nil {
			t.Errorf("Fulfilled = %v, %v", got, err)
		}
		if _, err := svc.Past(ctx, 2, 10); !errors.Is(err, errs.ErrConnection) {
			t.Errorf("Past err = %v, want connection error", err)
		}
		if !strings.Contains(buf.String(), `"level":"error"`) {
			t.Errorf("connection failure not logged at error: %s", buf.String())
		}
	})

	t.Run("get and delete", func(t *testing.T) {
		got, err := svc.Get(ctx, res.ID)
		if err != nil || got == nil || got.ID != res.ID {
			t.Errorf("Get = %+v, %v", got, err)
		}
		if err := svc.Delete(ctx, res.ID); err != nil {
			t.Fatal(err)
		}
		if len(store.deleted) != 1 || store.deleted[0] != res.ID {
			t.Errorf("deleted = %v", store.deleted)
		}
	})
}
