package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-booking/internal/booking"
	"github.com/iliyamo/hotel-booking/internal/middleware"
	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/queue"
	"github.com/iliyamo/hotel-booking/internal/repository"
	"github.com/iliyamo/hotel-booking/internal/utils"
)

var testLog = slog.New(slog.NewTextHandler(io.Discard, nil))

// request builds an echo context with an optional JSON body, session and
// path parameters given as name, value pairs.
func request(t *testing.T, method, target string, body any, sess *middleware.Session, params ...string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != nil {
		bs, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(bs)
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if sess != nil {
		middleware.SetSession(c, *sess)
	}
	var names, values []string
	for i := 0; i+1 < len(params); i += 2 {
		names = append(names, params[i])
		values = append(values, params[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c, rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func date(s string) time.Time {
	d, err := booking.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ----- hotels -----

type mockHotels struct {
	items   map[uint64]*model.Hotel
	nextID  uint64
	listErr error
	queries []repository.HotelQuery
}

func newMockHotels(hs ...model.Hotel) *mockHotels {
	m := &mockHotels{items: map[uint64]*model.Hotel{}, nextID: 100}
	for i := range hs {
		h := hs[i]
		m.items[h.ID] = &h
	}
	return m
}

func (m *mockHotels) Create(_ context.Context, h *model.Hotel) error {
	m.nextID++
	h.ID = m.nextID
	cp := *h
	m.items[h.ID] = &cp
	return nil
}

func (m *mockHotels) GetByID(_ context.Context, id uint64) (*model.Hotel, error) {
	h, ok := m.items[id]
	if !ok {
		return nil, repository.ErrHotelNotFound
	}
	cp := *h
	return &cp, nil
}

func (m *mockHotels) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Hotel, error) {
	h, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if h.OwnerID != ownerID {
		return nil, repository.ErrHotelNotFound
	}
	return h, nil
}

func (m *mockHotels) List(_ context.Context, q repository.HotelQuery) ([]model.Hotel, error) {
	m.queries = append(m.queries, q)
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []model.Hotel{}
	for _, h := range m.items {
		if q.OwnerID != 0 && h.OwnerID != q.OwnerID {
			continue
		}
		if q.ActiveOnly && !h.IsActive {
			continue
		}
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *mockHotels) Update(_ context.Context, h *model.Hotel) error {
	if _, ok := m.items[h.ID]; !ok {
		return repository.ErrHotelNotFound
	}
	cp := *h
	m.items[h.ID] = &cp
	return nil
}

func (m *mockHotels) SetActive(_ context.Context, id uint64, ownerID *uint64, active bool) error {
	h, ok := m.items[id]
	if !ok {
		return repository.ErrHotelNotFound
	}
	if ownerID != nil && h.OwnerID != *ownerID {
		return repository.ErrForbidden
	}
	h.IsActive = active
	return nil
}

func (m *mockHotels) DeleteByIDAndOwner(_ context.Context, id, ownerID uint64) error {
	h, ok := m.items[id]
	if !ok {
		return repository.ErrHotelNotFound
	}
	if h.OwnerID != ownerID {
		return repository.ErrForbidden
	}
	delete(m.items, id)
	return nil
}

func (m *mockHotels) Delete(_ context.Context, id uint64) error {
	if _, ok := m.items[id]; !ok {
		return repository.ErrHotelNotFound
	}
	delete(m.items, id)
	return nil
}

// ----- rooms -----

type mockRooms struct {
	items  map[uint64]*model.Room
	hotels *mockHotels
	nextID uint64
}

func newMockRooms(hotels *mockHotels, rs ...model.Room) *mockRooms {
	m := &mockRooms{items: map[uint64]*model.Room{}, hotels: hotels, nextID: 200}
	for i := range rs {
		r := rs[i]
		m.items[r.ID] = &r
	}
	return m
}

func (m *mockRooms) Create(_ context.Context, rm *model.Room) error {
	m.nextID++
	rm.ID = m.nextID
	cp := *rm
	m.items[rm.ID] = &cp
	return nil
}

func (m *mockRooms) GetByID(_ context.Context, id uint64) (*model.Room, error) {
	r, ok := m.items[id]
	if !ok {
		return nil, repository.ErrRoomNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *mockRooms) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Room, error) {
	r, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	h, err := m.hotels.GetByID(ctx, r.HotelID)
	if err != nil {
		return nil, err
	}
	if h.OwnerID != ownerID {
		return nil, repository.ErrForbidden
	}
	return r, nil
}

func (m *mockRooms) ListByHotel(_ context.Context, hotelID uint64, availableOnly bool) ([]model.Room, error) {
	out := []model.Room{}
	for _, r := range m.items {
		if r.HotelID == hotelID && (!availableOnly || r.IsAvailable) {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockRooms) Update(_ context.Context, rm *model.Room) error {
	if _, ok := m.items[rm.ID]; !ok {
		return repository.ErrRoomNotFound
	}
	cp := *rm
	m.items[rm.ID] = &cp
	return nil
}

func (m *mockRooms) Delete(_ context.Context, id uint64) error {
	if _, ok := m.items[id]; !ok {
		return repository.ErrRoomNotFound
	}
	delete(m.items, id)
	return nil
}

// ----- bookings -----

type mockBookings struct {
	items     map[uint64]*model.BookingDetail
	hotels    *mockHotels
	nextID    uint64
	createErr error
	queries   []repository.BookingQuery
}

func newMockBookings(hotels *mockHotels, ds ...model.BookingDetail) *mockBookings {
	m := &mockBookings{items: map[uint64]*model.BookingDetail{}, hotels: hotels, nextID: 300}
	for i := range ds {
		d := ds[i]
		m.items[d.ID] = &d
	}
	return m
}

func (m *mockBookings) Create(_ context.Context, b *model.Booking) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	b.ID = m.nextID
	d := &model.BookingDetail{Booking: *b, HotelName: "stored"}
	if h, ok := m.hotels.items[b.HotelID]; ok {
		d.HotelName = h.Name
	}
	m.items[b.ID] = d
	return nil
}

func (m *mockBookings) GetByID(_ context.Context, id uint64) (*model.BookingDetail, error) {
	d, ok := m.items[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *mockBookings) List(_ context.Context, q repository.BookingQuery) ([]model.BookingDetail, error) {
	m.queries = append(m.queries, q)
	out := []model.BookingDetail{}
	for _, d := range m.items {
		if q.UserID != 0 && d.UserID != q.UserID {
			continue
		}
		if q.OwnerID != 0 {
			h, ok := m.hotels.items[d.HotelID]
			if !ok || h.OwnerID != q.OwnerID {
				continue
			}
		}
		if q.Status != "" && d.Status != q.Status {
			continue
		}
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// UpdateStatus mirrors the repository: ownership, then the transition guard.
func (m *mockBookings) UpdateStatus(_ context.Context, ch repository.StatusChange) (model.BookingStatus, *model.BookingDetail, error) {
	d, ok := m.items[ch.BookingID]
	if !ok {
		return "", nil, repository.ErrBookingNotFound
	}
	switch ch.ActorRole {
	case model.RoleClient:
		if d.UserID != ch.ActorID {
			return "", nil, repository.ErrForbidden
		}
	case model.RoleOwner:
		if h, ok := m.hotels.items[d.HotelID]; !ok || h.OwnerID != ch.ActorID {
			return "", nil, repository.ErrForbidden
		}
	}
	if err := booking.CheckTransition(d.Status, ch.Requested, ch.ActorRole); err != nil {
		return "", nil, err
	}
	prev := d.Status
	d.Status = ch.Requested
	cp := *d
	return prev, &cp, nil
}

// ----- profiles and tokens -----

type mockProfiles struct {
	items  map[uint64]*model.Profile
	nextID uint64
}

func newMockProfiles(ps ...model.Profile) *mockProfiles {
	m := &mockProfiles{items: map[uint64]*model.Profile{}, nextID: 400}
	for i := range ps {
		p := ps[i]
		m.items[p.ID] = &p
	}
	return m
}

func (m *mockProfiles) Create(_ context.Context, np repository.NewProfile, cost int) (uint64, error) {
	email := strings.ToLower(strings.TrimSpace(np.Email))
	for _, p := range m.items {
		if p.Email == email {
			return 0, repository.ErrEmailExists
		}
	}
	hash, err := utils.HashPassword(np.Password, cost)
	if err != nil {
		return 0, err
	}
	m.nextID++
	m.items[m.nextID] = &model.Profile{ID: m.nextID, Email: email, PasswordHash: hash, Role: np.Role,
		FullName: np.FullName, Phone: np.Phone, IsActive: true}
	return m.nextID, nil
}

func (m *mockProfiles) GetByEmail(_ context.Context, email string) (*model.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, p := range m.items {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrProfileNotFound
}

func (m *mockProfiles) GetByID(_ context.Context, id uint64) (*model.Profile, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockProfiles) List(context.Context) ([]model.Profile, error) {
	out := []model.Profile{}
	for _, p := range m.items {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockProfiles) UpdateProfile(_ context.Context, id uint64, fullName string, phone *string) error {
	p, ok := m.items[id]
	if !ok {
		return repository.ErrProfileNotFound
	}
	p.FullName, p.Phone = fullName, phone
	return nil
}

func (m *mockProfiles) UpdateRole(_ context.Context, id uint64, role model.Role) error {
	p, ok := m.items[id]
	if !ok {
		return repository.ErrProfileNotFound
	}
	p.Role = role
	return nil
}

func (m *mockProfiles) Delete(_ context.Context, id uint64) error {
	if _, ok := m.items[id]; !ok {
		return repository.ErrProfileNotFound
	}
	delete(m.items, id)
	return nil
}

type mockTokens struct {
	items      map[string]uint64
	revokedAll []uint64
}

func newMockTokens() *mockTokens { return &mockTokens{items: map[string]uint64{}} }

func (m *mockTokens) StoreRefresh(_ context.Context, userID uint64, hash string, _ time.Time) error {
	m.items[hash] = userID
	return nil
}

func (m *mockTokens) ValidateRefresh(_ context.Context, hash string) (uint64, error) {
	uid, ok := m.items[hash]
	if !ok {
		return 0, repository.ErrInvalidRefresh
	}
	return uid, nil
}

func (m *mockTokens) Rotate(_ context.Context, oldHash string, userID uint64, newHash string, _ time.Time) error {
	if uid, ok := m.items[oldHash]; !ok || uid != userID {
		return repository.ErrInvalidRefresh
	}
	delete(m.items, oldHash)
	m.items[newHash] = userID
	return nil
}

func (m *mockTokens) RevokeByHash(_ context.Context, hash string) error {
	delete(m.items, hash)
	return nil
}

func (m *mockTokens) RevokeAllForUser(_ context.Context, userID uint64) error {
	m.revokedAll = append(m.revokedAll, userID)
	for h, uid := range m.items {
		if uid == userID {
			delete(m.items, h)
		}
	}
	return nil
}

// ----- reviews, amenities, events -----

type mockReviews struct {
	createFunc func(rv *model.Review) error
	items      []model.Review
}

func (m *mockReviews) Create(_ context.Context, rv *model.Review) error {
	if m.createFunc != nil {
		if err := m.createFunc(rv); err != nil {
			return err
		}
	}
	rv.ID = uint64(len(m.items) + 1)
	m.items = append(m.items, *rv)
	return nil
}

func (m *mockReviews) ListByHotel(_ context.Context, hotelID uint64) ([]model.Review, error) {
	out := []model.Review{}
	for _, rv := range m.items {
		if rv.HotelID == hotelID {
			out = append(out, rv)
		}
	}
	return out, nil
}

type mockAmenities struct {
	items []model.Amenity
}

func (m *mockAmenities) Create(_ context.Context, a *model.Amenity) error {
	for _, x := range m.items {
		if strings.EqualFold(x.Name, a.Name) {
			return repository.ErrAmenityExists
		}
	}
	a.ID = uint64(len(m.items) + 1)
	m.items = append(m.items, *a)
	return nil
}

func (m *mockAmenities) List(context.Context) ([]model.Amenity, error) {
	return append([]model.Amenity{}, m.items...), nil
}

type mockPublisher struct {
	mu     sync.Mutex
	events []queue.BookingEvent
	err    error
}

func (m *mockPublisher) Publish(_ context.Context, ev queue.BookingEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return m.err
}

// fixture is a small catalogue shared by the handler tests: two Paris and
// Tokyo hotels of owner 2, one inactive hotel, and client 1.
type fixture struct {
	hotels    *mockHotels
	rooms     *mockRooms
	bookings  *mockBookings
	reviews   *mockReviews
	amenities *mockAmenities
	profiles  *mockProfiles
	pub       *mockPublisher
}

const (
	clientID = uint64(1)
	ownerID  = uint64(2)
	adminID  = uint64(3)
)

var (
	clientSession = &middleware.Session{UserID: clientID, Role: model.RoleClient}
	ownerSession  = &middleware.Session{UserID: ownerID, Role: model.RoleOwner}
	adminSession  = &middleware.Session{UserID: adminID, Role: model.RoleAdmin}
)

func newFixture() *fixture {
	hotels := newMockHotels(
		model.Hotel{ID: 10, OwnerID: ownerID, Name: "Hotel Lumière", City: "Paris", Country: "France", StarRating: 4, Rating: 4.8, IsActive: true},
		model.Hotel{ID: 11, OwnerID: ownerID, Name: "Grand Tokyo", City: "Tokyo", Country: "Japan", StarRating: 5, Rating: 4.1, IsActive: true},
		model.Hotel{ID: 12, OwnerID: 9, Name: "Closed Inn", City: "Paris", Country: "France", StarRating: 2, Rating: 3.2, IsActive: false},
	)
	rooms := newMockRooms(hotels,
		model.Room{ID: 20, HotelID: 10, Title: "Deluxe", PricePerNightCents: 12000, MaxGuests: 2, IsAvailable: true},
		model.Room{ID: 21, HotelID: 10, Title: "Attic", PricePerNightCents: 8000, MaxGuests: 1, IsAvailable: false},
		model.Room{ID: 22, HotelID: 12, Title: "Hidden", PricePerNightCents: 5000, MaxGuests: 2, IsAvailable: true},
	)
	pending := model.BookingDetail{HotelName: "Hotel Lumière", RoomTitle: "Deluxe"}
	pending.Booking = model.Booking{ID: 30, Reference: "ref-30", UserID: clientID, RoomID: 20, HotelID: 10,
		CheckIn: date("2030-06-01"), CheckOut: date("2030-06-04"), NumGuests: 2, TotalPriceCents: 36000, Status: model.StatusPending}
	past := model.BookingDetail{HotelName: "Grand Tokyo", RoomTitle: "Suite"}
	past.Booking = model.Booking{ID: 31, Reference: "ref-31", UserID: clientID, RoomID: 23, HotelID: 11,
		CheckIn: date("2020-01-01"), CheckOut: date("2020-01-03"), NumGuests: 1, TotalPriceCents: 20000, Status: model.StatusCompleted}
	other := model.BookingDetail{HotelName: "Closed Inn"}
	other.Booking = model.Booking{ID: 32, Reference: "ref-32", UserID: 8, RoomID: 22, HotelID: 12,
		CheckIn: date("2030-01-01"), CheckOut: date("2030-01-02"), NumGuests: 1, TotalPriceCents: 5000, Status: model.StatusCanceled}
	bookings := newMockBookings(hotels, pending, past, other)

	return &fixture{
		hotels:    hotels,
		rooms:     rooms,
		bookings:  bookings,
		reviews:   &mockReviews{},
		amenities: &mockAmenities{},
		profiles: newMockProfiles(
			model.Profile{ID: clientID, Email: "guest@example.com", Role: model.RoleClient, IsActive: true},
			model.Profile{ID: ownerID, Email: "owner@example.com", Role: model.RoleOwner, IsActive: true},
			model.Profile{ID: adminID, Email: "admin@example.com", Role: model.RoleAdmin, IsActive: true},
		),
		pub: &mockPublisher{},
	}
}

func (f *fixture) public() *PublicHandler {
	return NewPublicHandler(f.hotels, f.rooms, f.reviews, f.amenities, testLog)
}

func (f *fixture) customer(now time.Time) *CustomerHandler {
	h := NewCustomerHandler(f.hotels, f.rooms, f.bookings, f.reviews, f.pub, testLog)
	h.Now = func() time.Time { return now }
	return h
}

func (f *fixture) owner() *OwnerHandler {
	return NewOwnerHandler(f.hotels, f.rooms, f.bookings, f.pub, testLog)
}

func (f *fixture) admin() *AdminHandler {
	return NewAdminHandler(f.profiles, f.hotels, f.bookings, f.amenities, f.pub, testLog)
}
