package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	authdomain "roadbuddy-backend/internal/auth/domain"
	authrepo "roadbuddy-backend/internal/auth/repository"
	chatrepo "roadbuddy-backend/internal/chat/repository"
	chatusecase "roadbuddy-backend/internal/chat/usecase"
	"roadbuddy-backend/internal/event"
	notifrepo "roadbuddy-backend/internal/notification/repository"
	notifusecase "roadbuddy-backend/internal/notification/usecase"
	"roadbuddy-backend/internal/ride/domain"
	"roadbuddy-backend/internal/ride/dto"
	"roadbuddy-backend/internal/ride/repository"
	"roadbuddy-backend/pkg/apperror"
	"roadbuddy-backend/pkg/clock"
	"roadbuddy-backend/pkg/docstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []event.RideEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e event.RideEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []event.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	var types []event.Type
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}

type rideFixture struct {
	rides     RideUsecase
	rideRepo  repository.RideRepository
	users     authrepo.UserRepository
	chats     chatusecase.ChatUsecase
	notifs    notifusecase.NotificationUsecase
	store     *docstore.MemoryStore
	publisher *recordingPublisher
}

// noon on 2025-06-01 in Los Angeles
var defaultNow = time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)

// slowStore widens the window between reading a document and writing it.
type slowStore struct {
	*docstore.MemoryStore
	delay time.Duration
}

func (s *slowStore) Get(ctx context.Context, collection, id string) (*docstore.Document, error) {
	time.Sleep(s.delay)
	return s.MemoryStore.Get(ctx, collection, id)
}

func (s *slowStore) Transact(ctx context.Context, collection, id string, fn docstore.TxFunc) error {
	return s.MemoryStore.Transact(ctx, collection, id, func(doc *docstore.Document) ([]docstore.Update, error) {
		time.Sleep(s.delay)
		return fn(doc)
	})
}

func newRideFixture(t *testing.T, now time.Time) *rideFixture {
	t.Helper()
	return newRideFixtureOn(t, now, nil)
}

// newRideFixtureOn lets wrap decorate the memory store the usecases run on.
func newRideFixtureOn(t *testing.T, now time.Time, wrap func(*docstore.MemoryStore) docstore.Store) *rideFixture {
	t.Helper()
	mem := docstore.NewMemoryStore()
	var store docstore.Store = mem
	if wrap != nil {
		store = wrap(mem)
	}
	clk, err := clock.Fixed("America/Los_Angeles", now)
	require.NoError(t, err)

	users := authrepo.NewUserRepository(store)
	rideRepo := repository.NewRideRepository(store)
	notifs := notifusecase.NewNotificationUsecase(notifrepo.NewNotificationRepository(store), nil, nil, clk)
	chats := chatusecase.NewChatUsecase(chatrepo.NewChatRepository(store), notifs, clk)
	publisher := &recordingPublisher{}

	f := &rideFixture{
		rides:     NewRideUsecase(rideRepo, users, chats, notifs, publisher, clk),
		rideRepo:  rideRepo,
		users:     users,
		chats:     chats,
		notifs:    notifs,
		store:     mem,
		publisher: publisher,
	}
	for _, u := range []struct{ id, name string }{
		{"olga", "Olga"}, {"bob", "Bob"}, {"cara", "Cara"}, {"dan", "Dan"}, {"eve", "Eve"},
	} {
		require.NoError(t, users.Create(context.Background(), &authdomain.User{ID: u.id, Name: u.name, Email: u.id + "@example.com"}))
	}
	return f
}

func identity(uid string) *authdomain.Identity {
	return &authdomain.Identity{UID: uid, Name: strings.ToUpper(uid[:1]) + uid[1:]}
}

func trip(date, departure string, seats int, cost float64) *dto.PostRideRequest {
	return &dto.PostRideRequest{
		From:          "X",
		To:            "Y",
		Date:          date,
		DepartureTime: departure,
		MaxPassengers: seats,
		Cost:          &cost,
	}
}

func (f *rideFixture) post(t *testing.T, owner string, req *dto.PostRideRequest) string {
	t.Helper()
	id, err := f.rides.PostRide(context.Background(), identity(owner), req)
	require.NoError(t, err)
	return id
}

func (f *rideFixture) ride(t *testing.T, id string) *domain.Ride {
	t.Helper()
	ride, err := f.rideRepo.FindByID(context.Background(), id)
	require.NoError(t, err)
	return ride
}

func (f *rideFixture) user(t *testing.T, id string) *authdomain.User {
	t.Helper()
	user, err := f.users.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, user)
	return user
}

func (f *rideFixture) rideCount(t *testing.T) int {
	t.Helper()
	docs, err := f.store.Query(context.Background(), docstore.Collection("rides"))
	require.NoError(t, err)
	return len(docs)
}

func (f *rideFixture) notifications(t *testing.T, userID string) []string {
	t.Helper()
	list, err := f.notifs.ListAndMarkRead(context.Background(), userID)
	require.NoError(t, err)
	messages := make([]string, 0, len(list))
	for _, n := range list {
		messages = append(messages, n.Message)
	}
	return messages
}

func assertCapacityInvariant(t *testing.T, ride *domain.Ride) {
	t.Helper()
	assert.LessOrEqual(t, len(ride.CurrentPassengers), ride.MaxPassengers)
	if len(ride.CurrentPassengers) == ride.MaxPassengers {
		assert.Equal(t, domain.RideStatusClosed, ride.Status)
	} else {
		assert.Equal(t, domain.RideStatusOpen, ride.Status)
	}
}

func TestPostRide(t *testing.T) {
	ctx := context.Background()
	f := newRideFixture(t, defaultNow)

	id := f.post(t, "olga", trip("2025-06-03", "09:00", 2, 10))

	ride := f.ride(t, id)
	require.NotNil(t, ride)
	assert.Equal(t, domain.RideStatusOpen, ride.Status)
	assert.Empty(t, ride.CurrentPassengers)
	assert.Equal(t, "Olga", ride.OwnerName)
	assert.Equal(t, []string{id}, f.user(t, "olga").RidesPosted)

	exists, err := f.chats.ChatExists(ctx, id)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, []event.Type{event.RidePosted}, f.publisher.types())
}

func TestPostRideValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *dto.PostRideRequest)
		field  string
	}{
		{name: "missing origin", mutate: func(r *dto.PostRideRequest) { r.From = "  " }, field: "from"},
		{name: "missing destination", mutate: func(r *dto.PostRideRequest) { r.To = "" }, field: "to"},
		{name: "malformed date", mutate: func(r *dto.PostRideRequest) { r.Date = "06/01/2025" }, field: "date"},
		{name: "no seats", mutate: func(r *dto.PostRideRequest) { r.MaxPassengers = 0 }, field: "maxPassengers"},
		{name: "negative cost", mutate: func(r *dto.PostRideRequest) { cost := -1.0; r.Cost = &cost }, field: "cost"},
		{name: "missing cost", mutate: func(r *dto.PostRideRequest) { r.Cost = nil }, field: "cost"},
		{name: "missing departure", mutate: func(r *dto.PostRideRequest) { r.DepartureTime = "" }, field: "departureTime"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRideFixture(t, defaultNow)
			req := trip("2025-06-03", "09:00", 2, 10)
			tt.mutate(req)

			_, err := f.rides.PostRide(context.Background(), identity("olga"), req)
			require.Error(t, err)
			appErr := apperror.As(err)
			assert.Equal(t, apperror.KindValidation, appErr.Kind)
			assert.Contains(t, appErr.Details, tt.field)
			assert.Zero(t, f.rideCount(t))
		})
	}
}

func TestPostRideStoresRequestAsGiven(t *testing.T) {
	f := newRideFixture(t, defaultNow)

	id := f.post(t, "olga", trip("2025-06-03", "09:00", 20, 10.005))

	ride := f.ride(t, id)
	assert.Equal(t, 10.005, ride.Cost)
	assert.Equal(t, 20, ride.MaxPassengers)
	assert.Equal(t, 20, ride.SeatsLeft())
}

func TestPostRideAcceptsFreeRide(t *testing.T) {
	f := newRideFixture(t, defaultNow)

	id := f.post(t, "olga", trip("2025-06-03", "09:00", 2, 0))
	assert.Zero(t, f.ride(t, id).Cost)
}

func TestPostRideRejectsDuplicateTrip(t *testing.T) {
	ctx := context.Background()
	f := newRideFixture(t, defaultNow)
	f.post(t, "olga", trip("2025-06-03", "09:00", 2, 10))

	_, err := f.rides.PostRide(ctx, identity("olga"), trip("2025-06-03", "09:00", 4, 25))
	assert.ErrorIs(t, err, apperror.ErrDuplicateRide)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	assert.Equal(t, 1, f.rideCount(t))
	assert.Len(t, f.user(t, "olga").RidesPosted, 1)

	// a different departure time or a different owner is not a duplicate
	f.post(t, "olga", trip("2025-06-03", "10:00", 2, 10))
	f.post(t, "bob", trip("2025-06-03", "09:00", 2, 10))
	assert.Equal(t, 3, f.rideCount(t))
}

func TestIsDuplicateRideSkipsMissingRides(t *testing.T) {
	ctx := context.Background()
	f := newRideFixture(t, defaultNow)
	id := f.post(t, "olga", trip("2025-06-03", "09:00", 2, 10))

	dup, err := f.rides.IsDuplicateRide(ctx, []string{"gone", id}, trip("2025-06-03", "09:00", 1, 0))
	require.NoError(t, err)
	assert.True(t, dup)

	dup, err = f.rides.IsDuplicateRide(ctx, []string{"gone"}, trip("2025-06-03", "09:00", 1, 0))
	require.NoError(t, err)
	assert.False(t, dup)
}

func TestPostRideWithdrawsRideWhenOwnerUpdateFails(t *testing.T) {
	f := newRideFixture(t, defaultNow)
	f.store.InjectFailure(docstore.OpUpdate, "users", "olga", errors.New("unavailable"))

	_, err := f.rides.PostRide(context.Background(), identity("olga"), trip("2025-06-03", "09:00", 2, 10))
	assert.Equal(t, apperror.KindDependency, apperror.KindOf(err))
	assert.Zero(t, f.rideCount(t))
}

func TestRideLifecycleScenario(t *testing.T) {
	ctx := context.Background()
	f := newRideFixture(t, defaultNow)

	id := f.post(t, "olga", trip("2025-06-01", "09:00", 1, 10.00))
	assert.Equal(t, domain.RideStatusOpen, f.ride(t, id).Status)

	resp, err := f.rides.JoinRide(ctx, id, identity("bob"))
	require.NoError(t, err)
	assert.False(t, resp.AlreadyPassenger)
	assert.Equal(t, "closed", resp.Ride.Status)

	ride := f.ride(t, id)
	assert.Equal(t, []string{"bob"}, ride.CurrentPassengers)
	assert.Equal(t, domain.RideStatusClosed, ride.Status)
	assert.Equal(t, []string{id}, f.user(t, "bob").RidesJoined)

	_, err = f.rides.JoinRide(ctx, id, identity("cara"))
	assert.ErrorIs(t, err, apperror.ErrRideFull)

	require.NoError(t, f.rides.Cancel(ctx, id, identity("bob")))
	ride = f.ride(t, id)
	assert.Empty(t, ride.CurrentPassengers)
	assert.Equal(t, domain.RideStatusOpen, ride.Status)
	assert.Empty(t, f.user(t, "bob").RidesJoined)

	assert.Equal(t, []string{
		"Bob has cancelled a ride with you.\nFrom: X\nTo: Y",
		"Bob has booked a ride with you.\nFrom: X\nTo: Y",
	}, f.notifications(t, "olga"))

	assert.Equal(t, []event.Type{event.RidePosted, event.RideJoined, event.RideCancelled}, f.publisher.types())
}

func TestJoinRideIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newRideFixture(t, defaultNow)
	id := f.post(t, "olga", trip("2025-06-03", "09:00", 3, 10))

	_, err := f.rides.JoinRide(ctx, id, identity("bob"))
	require.NoError(t, err)

	resp, err := f.rides.JoinRide(ctx, id, identity("bob"))
	require.NoError(t, err)
	assert.True(t, resp.AlreadyPassenger)
	assert.Equal(t, []string{"bob"}, f.ride(t, id).CurrentPassengers)

	already, err := f.rides.AddPassenger(ctx, id, "bob")
	require.NoError(t, err)
	assert.True(t, already)

	// only the first join notified the owner
	assert.Len(t, f.notifications(t, "olga"), 1)
}

func TestJoinRideAddsChatParticipant(t *testing.T) {
	ctx := context.Background()
	f := newRideFixture(t, defaultNow)
	id := f.post(t, "olga", trip("2025-06-03", "09:00", 3, 10))

	_, err := f.chats.SendMessage(ctx, id, "bob", "Bob", "hi")
	assert.ErrorIs(t, err, apperror.ErrNotAParticipant)

	_, err = f.rides.JoinRide(ctx, id, identity("bob"))
	require.NoError(t, err)

	_, err = f.chats.SendMessage(ctx, id, "bob", "Bob", "hi")
	assert.NoError(t, err)
}

func TestOwnerCannotJoinOwnRide(t *testing.T) {
	ctx := context.Background()
	f := newRideFixture(t, defaultNow)
	id := f.post(t, "olga", trip("2025-06-03", "09:00", 3, 10))

	_, err := f.rides.JoinRide(ctx, id, identity("olga"))
	assert.ErrorIs(t, err, apperror.ErrOwnerCannotJoin)
	assert.Equal(t, apperror.KindAuthorization, apperror.KindOf(err))

	_, err = f.rides.AddPassenger(ctx, id, "olga")
	assert.ErrorIs(t, err, apperror.ErrOwnerCannotJoin)
	assert.Empty(t, f.ride(t, id).CurrentPassengers)
}

func TestJoinMissingRide(t *testing.T) {
	f := newRideFixture(t, defaultNow)

	_, err := f.rides.JoinRide(context.Background(), "ghost", identity("bob"))
	assert.ErrorIs(t, err, apperror.ErrRideNotFound)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestJoinRideCompensatesWhenUserUpdateFails(t *testing.T) {
	ctx := context.Background()
	f := newRideFixture(t, defaultNow)
	id := f.post(t, "olga", trip("2025-06-03", "09:00", 1, 10))
	f.store.InjectFailure(docstore.OpUpdate, "users", "bob", errors.New("unavailable"))

	_, err := f.rides.JoinRide(ctx, id, identity("bob"))
	assert.Equal(t, apperror.KindDependency, apperror.KindOf(err))
	assert.Contains(t, err.Error(), "passenger was removed from the ride")

	f.store.ClearFailures()
	ride := f.ride(t, id)
	assert.Empty(t, ride.CurrentPassengers)
	assert.Equal(t, domain.RideStatusOpen, ride.Status)
	assert.Empty(t, f.user(t, "bob").RidesJoined)
	assert.Empty(t, f.notifications(t, "olga"))
}

func TestConcurrentJoinsNeverOverfill(t *testing.T) {
	ctx := context.Background()
	f := newRideFixtureOn(t, defaultNow, func(m *docstore.MemoryStore) docstore.Store {
		return &slowStore{MemoryStore: m, delay: 20 * time.Millisecond}
	})
	id := f.post(t, "olga", trip("2025-06-03", "09:00", 2, 10))

	riders := []string{"bob", "cara", "dan"}
	errs := make([]error, len(riders))
	var wg sync.WaitGroup
	for i, rider := range riders {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.rides.JoinRide(ctx, id, identity(rider))
		}()
	}
	wg.Wait()

	var rejected int
	for _, err := range errs {
		if err != nil {
			require.ErrorIs(t, err, apperror.ErrRideFull)
			rejected++
		}
	}
	assert.Equal(t, 1, rejected)

	ride := f.ride(t, id)
	assert.Len(t, ride.CurrentPassengers, 2)
	assert.Equal(t, domain.RideStatusClosed, ride.Status)
	assertCapacityInvariant(t, ride)
	for _, rider := range riders {
		assert.Equal(t, ride.HasPassenger(rider), slices.Contains(f.user(t, rider).RidesJoined, id), rider)
	}
}

func TestConcurrentJoinAndCancelKeepStatus(t *testing.T) {
	ctx := context.Background()
	f := newRideFixtureOn(t, defaultNow, func(m *docstore.MemoryStore) docstore.Store {
		return &slowStore{MemoryStore: m, delay: 10 * time.Millisecond}
	})
	id := f.post(t, "olga", trip("2025-06-03", "09:00", 2, 10))
	_, err := f.rides.JoinRide(ctx, id, identity("bob"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := f.rides.JoinRide(ctx, id, identity("cara"))
		assert.NoError(t, err)
	}()
	go func() {
		defer wg.Done()
		assert.NoError(t, f.rides.Cancel(ctx, id, identity("bob")))
	}()
	wg.Wait()

	ride := f.ride(t, id)
	assert.Equal(t, []string{"cara"}, ride.CurrentPassengers)
	assertCapacityInvariant(t, ride)
}

func TestCancelDoesNotRestoreOverTakenSeat(t *testing.T) {
	ctx := context.Background()
	f := newRideFixture(t, defaultNow)
	id := f.post(t, "olga", trip("2025-06-03", "09:00", 1, 10))
	_, err := f.rides.JoinRide(ctx, id, identity("bob"))
	require.NoError(t, err)

	// cara takes the freed seat before bob's cancellation is compensated
	guard := seatFree("bob")
	ride := f.ride(t, id)
	ride.CurrentPassengers = []string{"cara"}
	assert.ErrorIs(t, guard(ride), apperror.ErrRideFull)

	ride.CurrentPassengers = nil
	assert.NoError(t, guard(ride))
}

func TestCancelErrors(t *testing.T) {
	ctx := context.Background()
	f := newRideFixture(t, defaultNow)
	id := f.post(t, "olga", trip("2025-06-03", "09:00", 2, 10))

	tests := []struct {
		name string
		user string
		ride string
		want error
		kind apperror.Kind
	}{
		{name: "owner", user: "olga", ride: id, want: apperror.ErrOwnerCannotCancel, kind: apperror.KindAuthorization},
		{name: "not a passenger", user: "cara", ride: id, want: apperror.ErrNotAPassenger, kind: apperror.KindConflict},
		{name: "missing ride", user: "cara", ride: "ghost", want: apperror.ErrRideNotFound, kind: apperror.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.rides.Cancel(ctx, tt.ride, identity(tt.user))
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.kind, apperror.KindOf(err))
		})
	}
}

func TestCancelCompensatesWhenUserUpdateFails(t *testing.T) {
	ctx := context.Background()
	f := newRideFixture(t, defaultNow)
	id := f.post(t, "olga", trip("2025-06-03", "09:00", 1, 10))
	_, err := f.rides.JoinRide(ctx, id, identity("bob"))
	require.NoError(t, err)

	f.store.InjectFailure(docstore.OpUpdate, "users", "bob", errors.New("unavailable"))
	err = f.rides.Cancel(ctx, id, identity("bob"))
	assert.Equal(t, apperror.KindDependency, apperror.KindOf(err))
	assert.Contains(t, err.Error(), "passenger was restored")

	f.store.ClearFailures()
	ride := f.ride(t, id)
	assert.Equal(t, []string{"bob"}, ride.CurrentPassengers)
	assert.Equal(t, domain.RideStatusClosed, ride.Status)
	assert.Equal(t, []string{id}, f.user(t, "bob").RidesJoined)
}

func TestDeleteRequiresOwner(t *testing.T) {
	ctx := context.Background()
	f := newRideFixture(t, defaultNow)
	id := f.post(t, "olga", trip("2025-06-03", "09:00", 2, 10))

	_, err := f.rides.Delete(ctx, id, "bob")
	assert.ErrorIs(t, err, apperror.ErrNotOwner)
	assert.Equal(t, apperror.KindAuthorization, apperror.KindOf(err))
	assert.NotNil(t, f.ride(t, id))
}

func TestDeleteRefundsEveryPassenger(t *testing.T) {
	ctx := context.Background()
	f := newRideFixture(t, defaultNow)
	id := f.post(t, "olga", trip("2025-06-03", "09:00", 3, 10))
	other := f.post(t, "olga", trip("2025-06-04", "09:00", 3, 10))
	for _, p := range []string{"bob", "cara"} {
		_, err := f.rides.JoinRide(ctx, id, identity(p))
		require.NoError(t, err)
	}

	resp, err := f.rides.Delete(ctx, id, "olga")
	require.NoError(t, err)
	assert.Equal(t, "12.00", resp.RefundPerUser)
	assert.ElementsMatch(t, []string{"bob", "cara"}, resp.RefundedUsers)

	assert.Nil(t, f.ride(t, id))
	assert.Equal(t, []string{other}, f.user(t, "olga").RidesPosted)
	for _, p := range []string{"bob", "cara"} {
		assert.Empty(t, f.user(t, p).RidesJoined)
		assert.Equal(t, []string{
			"$12.00 has been refunded to you.\nOlga (ride's owner) has deleted the ride.\nFrom: X\nTo: Y",
		}, f.notifications(t, p))
	}

	exists, err := f.chats.ChatExists(ctx, id)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDeleteRefundAmounts(t *testing.T) {
	tests := []struct {
		cost float64
		want string
	}{
		{cost: 0, want: "0.00"},
		{cost: 7.5, want: "9.00"},
		{cost: 19.99, want: "23.99"},
		{cost: 0.1, want: "0.12"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			f := newRideFixture(t, defaultNow)
			id := f.post(t, "olga", trip("2025-06-03", "09:00", 1, tt.cost))

			resp, err := f.rides.Delete(context.Background(), id, "olga")
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.RefundPerUser)
		})
	}
}

func TestDeleteStopsWhenPassengerCleanupFails(t *testing.T) {
	ctx := context.Background()
	f := newRideFixture(t, defaultNow)
	id := f.post(t, "olga", trip("2025-06-03", "09:00", 2, 10))
	_, err := f.rides.JoinRide(ctx, id, identity("bob"))
	require.NoError(t, err)

	f.store.InjectFailure(docstore.OpUpdate, "users", "bob", errors.New("unavailable"))
	_, err = f.rides.Delete(ctx, id, "olga")
	assert.Equal(t, apperror.KindDependency, apperror.KindOf(err))

	f.store.ClearFailures()
	assert.NotNil(t, f.ride(t, id))
	assert.Equal(t, []string{id}, f.user(t, "olga").RidesPosted)
}

func TestDeleteRetrySendsOneRefundNoticePerPassenger(t *testing.T) {
	ctx := context.Background()
	f := newRideFixture(t, defaultNow)
	id := f.post(t, "olga", trip("2025-06-03", "09:00", 3, 10))
	for _, p := range []string{"bob", "cara"} {
		_, err := f.rides.JoinRide(ctx, id, identity(p))
		require.NoError(t, err)
	}

	f.store.InjectFailure(docstore.OpUpdate, "users", "cara", errors.New("unavailable"))
	_, err := f.rides.Delete(ctx, id, "olga")
	assert.Equal(t, apperror.KindDependency, apperror.KindOf(err))
	assert.Empty(t, f.notifications(t, "bob"))

	f.store.ClearFailures()
	_, err = f.rides.Delete(ctx, id, "olga")
	require.NoError(t, err)
	for _, p := range []string{"bob", "cara"} {
		assert.Len(t, f.notifications(t, p), 1, p)
	}
}

func TestDeleteKeepsRideWhenChatTeardownFails(t *testing.T) {
	ctx := context.Background()
	f := newRideFixture(t, defaultNow)
	id := f.post(t, "olga", trip("2025-06-03", "09:00", 2, 10))
	_, err := f.rides.JoinRide(ctx, id, identity("bob"))
	require.NoError(t, err)

	f.store.InjectFailure(docstore.OpDelete, "ride_chats", id, errors.New("unavailable"))
	_, err = f.rides.Delete(ctx, id, "olga")
	assert.Equal(t, apperror.KindDependency, apperror.KindOf(err))
	assert.NotNil(t, f.ride(t, id))
	assert.Empty(t, f.notifications(t, "bob"))

	f.store.ClearFailures()
	_, err = f.rides.Delete(ctx, id, "olga")
	require.NoError(t, err)
	assert.Nil(t, f.ride(t, id))
	exists, err := f.chats.ChatExists(ctx, id)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Len(t, f.notifications(t, "bob"), 1)
}

func TestSweepExpired(t *testing.T) {
	ctx := context.Background()
	f := newRideFixture(t, defaultNow)
	past := f.post(t, "olga", trip("2025-05-31", "09:00", 2, 10))
	today := f.post(t, "olga", trip("2025-06-01", "08:00", 2, 10))
	future := f.post(t, "olga", trip("2025-06-02", "09:00", 2, 10))
	_, err := f.rides.JoinRide(ctx, past, identity("bob"))
	require.NoError(t, err)
	_, err = f.rides.JoinRide(ctx, today, identity("bob"))
	require.NoError(t, err)

	result, err := f.rides.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, &dto.SweepResult{Expired: 1}, result)

	assert.Nil(t, f.ride(t, past))
	assert.NotNil(t, f.ride(t, today))
	assert.NotNil(t, f.ride(t, future))
	assert.ElementsMatch(t, []string{today, future}, f.user(t, "olga").RidesPosted)
	assert.Equal(t, []string{today}, f.user(t, "bob").RidesJoined)

	exists, err := f.chats.ChatExists(ctx, past)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Contains(t, f.publisher.types(), event.RideExpired)
}

func TestSweepUsesReferenceTimezone(t *testing.T) {
	// 03:00 UTC on June 2nd is still June 1st in Los Angeles
	f := newRideFixture(t, time.Date(2025, 6, 2, 3, 0, 0, 0, time.UTC))
	yesterday := f.post(t, "olga", trip("2025-05-31", "09:00", 2, 10))
	today := f.post(t, "olga", trip("2025-06-01", "09:00", 2, 10))

	result, err := f.rides.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Expired)
	assert.Nil(t, f.ride(t, yesterday))
	assert.NotNil(t, f.ride(t, today))
}

func TestSweepIsolatesFailures(t *testing.T) {
	f := newRideFixture(t, defaultNow)
	broken := f.post(t, "olga", trip("2025-05-30", "09:00", 2, 10))
	fine := f.post(t, "bob", trip("2025-05-31", "09:00", 2, 10))
	f.store.InjectFailure(docstore.OpDelete, "rides", broken, errors.New("unavailable"))

	result, err := f.rides.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &dto.SweepResult{Expired: 1, Failed: 1}, result)
	assert.NotNil(t, f.ride(t, broken))
	assert.Nil(t, f.ride(t, fine))

	// the next run retries the ride that failed
	f.store.ClearFailures()
	result, err = f.rides.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &dto.SweepResult{Expired: 1}, result)
	assert.Nil(t, f.ride(t, broken))
}

func TestSweepRetriesRideWhoseChatTeardownFailed(t *testing.T) {
	ctx := context.Background()
	f := newRideFixture(t, defaultNow)
	id := f.post(t, "olga", trip("2025-05-31", "09:00", 2, 10))
	f.store.InjectFailure(docstore.OpDelete, "ride_chats", id, errors.New("unavailable"))

	result, err := f.rides.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, &dto.SweepResult{Failed: 1}, result)
	assert.NotNil(t, f.ride(t, id))

	f.store.ClearFailures()
	result, err = f.rides.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, &dto.SweepResult{Expired: 1}, result)
	assert.Nil(t, f.ride(t, id))
	exists, err := f.chats.ChatExists(ctx, id)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSweepToleratesDeletedUsers(t *testing.T) {
	ctx := context.Background()
	f := newRideFixture(t, defaultNow)
	id := f.post(t, "olga", trip("2025-05-31", "09:00", 2, 10))
	_, err := f.rides.JoinRide(ctx, id, identity("bob"))
	require.NoError(t, err)
	require.NoError(t, f.store.Delete(ctx, "users", "bob"))

	result, err := f.rides.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Expired)
}

func TestListAvailable(t *testing.T) {
	ctx := context.Background()
	f := newRideFixture(t, defaultNow)
	own := f.post(t, "bob", trip("2025-06-03", "09:00", 2, 10))
	joined := f.post(t, "olga", trip("2025-06-03", "10:00", 2, 10))
	full := f.post(t, "olga", trip("2025-06-03", "11:00", 1, 10))
	stale := f.post(t, "olga", trip("2025-05-31", "09:00", 2, 10))
	later := f.post(t, "olga", trip("2025-06-05", "09:00", 2, 10))
	sooner := f.post(t, "cara", trip("2025-06-02", "09:00", 2, 10))

	_, err := f.rides.JoinRide(ctx, joined, identity("bob"))
	require.NoError(t, err)
	_, err = f.rides.JoinRide(ctx, full, identity("dan"))
	require.NoError(t, err)

	rides, err := f.rides.ListAvailable(ctx, "bob", "")
	require.NoError(t, err)
	var ids []string
	for _, r := range rides {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{sooner, later}, ids)
	assert.NotContains(t, ids, own)
	assert.NotContains(t, ids, stale)
}

func TestListAvailableRanksByRoute(t *testing.T) {
	ctx := context.Background()
	f := newRideFixture(t, defaultNow)
	post := func(from, to, departure string) string {
		req := trip("2025-06-03", departure, 2, 10)
		req.From, req.To = from, to
		return f.post(t, "olga", req)
	}
	toOakland := post("San Jose", "Oakland", "09:00")
	fromOakland := post("Oakland", "Fresno", "10:00")
	post("Sacramento", "Reno", "11:00")

	rides, err := f.rides.ListAvailable(ctx, "bob", "oaklnd")
	require.NoError(t, err)
	require.Len(t, rides, 2)
	assert.Equal(t, fromOakland, rides[0].ID)
	assert.Equal(t, toOakland, rides[1].ID)
}

func TestListUpcoming(t *testing.T) {
	ctx := context.Background()
	f := newRideFixture(t, defaultNow)
	later := f.post(t, "bob", trip("2025-06-05", "09:00", 2, 10))
	sooner := f.post(t, "bob", trip("2025-06-02", "09:00", 2, 10))
	joined := f.post(t, "olga", trip("2025-06-03", "09:00", 2, 10))
	_, err := f.rides.JoinRide(ctx, joined, identity("bob"))
	require.NoError(t, err)

	// a dangling reference is skipped
	require.NoError(t, f.users.AddJoinedRide(ctx, "bob", "ghost"))

	resp, err := f.rides.ListUpcoming(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, resp.Posted, 2)
	assert.Equal(t, sooner, resp.Posted[0].ID)
	assert.Equal(t, later, resp.Posted[1].ID)
	assert.True(t, resp.Posted[0].IsOwner)
	require.Len(t, resp.Joined, 1)
	assert.Equal(t, joined, resp.Joined[0].ID)
	assert.Equal(t, 1, resp.Joined[0].SeatsLeft)
	assert.Equal(t, "10.00", resp.Joined[0].Cost)
}

func TestMembershipInvariantsUnderRandomOperations(t *testing.T) {
	ctx := context.Background()
	f := newRideFixture(t, defaultNow)
	id := f.post(t, "olga", trip("2025-06-03", "09:00", 3, 10))
	riders := []string{"bob", "cara", "dan", "eve"}
	rng := rand.New(rand.NewSource(42))

	for step := 0; step < 200; step++ {
		user := riders[rng.Intn(len(riders))]
		if rng.Intn(2) == 0 {
			_, err := f.rides.JoinRide(ctx, id, identity(user))
			if err != nil {
				require.ErrorIs(t, err, apperror.ErrRideFull, "step %d", step)
			}
		} else {
			err := f.rides.Cancel(ctx, id, identity(user))
			if err != nil {
				require.ErrorIs(t, err, apperror.ErrNotAPassenger, "step %d", step)
			}
		}

		ride := f.ride(t, id)
		assertCapacityInvariant(t, ride)
		for _, r := range riders {
			joined := slices.Contains(f.user(t, r).RidesJoined, id)
			require.Equal(t, ride.HasPassenger(r), joined, fmt.Sprintf("step %d user %s", step, r))
		}
	}
}
