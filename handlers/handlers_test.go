package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/foodiehub/ordering-api/auth"
	"github.com/foodiehub/ordering-api/checkout"
	"github.com/foodiehub/ordering-api/config"
	"github.com/foodiehub/ordering-api/loyalty"
	"github.com/foodiehub/ordering-api/models"
	"github.com/foodiehub/ordering-api/payment"
	"github.com/foodiehub/ordering-api/store"
)

// fakeStore implements the handful of Store methods the tests reach; the
// embedded interface panics on anything else.
type fakeStore struct {
	Store

	users    map[string]*models.User
	products map[primitive.ObjectID]*models.Product
	orders   map[primitive.ObjectID]*models.Order
	settings *models.RestaurantSettings
	offer    *models.Offer
	dailyErr error

	categories map[string]bool
	deals      []*models.Deal
	feedback   map[primitive.ObjectID]*models.Feedback
}

func newFakeStore() *fakeStore {
	s := models.DefaultSettings()
	s.ID = primitive.NewObjectID()
	return &fakeStore{
		users:    map[string]*models.User{},
		products: map[primitive.ObjectID]*models.Product{},
		orders:   map[primitive.ObjectID]*models.Order{},
		settings: &s,

		categories: map[string]bool{},
		feedback:   map[primitive.ObjectID]*models.Feedback{},
	}
}

func (f *fakeStore) CreateUser(_ context.Context, u *models.User) error {
	email := strings.ToLower(u.Email)
	if _, ok := f.users[email]; ok {
		return fmt.Errorf("insert user: %w", store.ErrDuplicate)
	}
	u.ID = primitive.NewObjectID()
	u.Email = email
	f.users[email] = u
	return nil
}

func (f *fakeStore) UserByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := f.users[strings.ToLower(email)]; ok {
		return u, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) UserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) CreateProduct(_ context.Context, p *models.Product) error {
	p.ID = primitive.NewObjectID()
	f.products[p.ID] = p
	return nil
}

func (f *fakeStore) ProductByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) ReplaceProduct(_ context.Context, p *models.Product) error {
	if _, ok := f.products[p.ID]; !ok {
		return store.ErrNotFound
	}
	f.products[p.ID] = p
	return nil
}

func (f *fakeStore) SetDeliveryPlatform(_ context.Context, orderID, userID primitive.ObjectID, p models.DeliveryPlatform) (*models.Order, error) {
	o, ok := f.orders[orderID]
	if !ok || o.UserID != userID {
		return nil, store.ErrNotFound
	}
	o.DeliveryPlatform = p
	return o, nil
}

func (f *fakeStore) DailySales(context.Context, *time.Location) ([]models.DailySales, error) {
	if f.dailyErr != nil {
		return nil, f.dailyErr
	}
	return []models.DailySales{{Day: "2024-06-03", TotalSales: 42.5, Orders: 3}}, nil
}

func (f *fakeStore) GetSettings(context.Context) (*models.RestaurantSettings, error) {
	cp := *f.settings
	cp.OpeningHours = append([]models.OpeningHours(nil), f.settings.OpeningHours...)
	return &cp, nil
}

func (f *fakeStore) SetOpeningHours(_ context.Context, h models.OpeningHours) (*models.RestaurantSettings, error) {
	for i, oh := range f.settings.OpeningHours {
		if oh.Day == h.Day {
			f.settings.OpeningHours[i] = h
			return f.GetSettings(context.Background())
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) GetOffer(context.Context) (*models.Offer, error) {
	if f.offer == nil {
		return nil, store.ErrNotFound
	}
	cp := *f.offer
	return &cp, nil
}

func (f *fakeStore) SaveOffer(_ context.Context, o *models.Offer) (bool, error) {
	created := o.ID.IsZero()
	if created {
		o.ID = primitive.NewObjectID()
	}
	cp := *o
	f.offer = &cp
	return created, nil
}

func (f *fakeStore) CreateCategory(_ context.Context, c *models.Category) error {
	if f.categories[c.Name] {
		return fmt.Errorf("insert category: %w", store.ErrDuplicate)
	}
	f.categories[c.Name] = true
	c.ID = primitive.NewObjectID()
	c.IsActive = true
	return nil
}

func (f *fakeStore) CreateDeal(_ context.Context, d *models.Deal) error {
	d.ID = primitive.NewObjectID()
	d.IsActive = true
	f.deals = append(f.deals, d)
	return nil
}

func (f *fakeStore) CreateFeedback(_ context.Context, fb *models.Feedback) error {
	fb.ID = primitive.NewObjectID()
	if fb.Type == "" {
		fb.Type = models.FeedbackGeneral
	}
	fb.Status = models.FeedbackPending
	f.feedback[fb.ID] = fb
	return nil
}

func (f *fakeStore) AllFeedback(_ context.Context, status models.FeedbackStatus) ([]models.Feedback, error) {
	out := []models.Feedback{}
	for _, fb := range f.feedback {
		if status == "" || fb.Status == status {
			out = append(out, *fb)
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteFeedback(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.feedback[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.feedback, id)
	return nil
}

type fakeCheckout struct {
	gotPoints  int64
	gotItems   []models.CartItem
	intentErr  error
	confirmErr error
}

func (f *fakeCheckout) CreateIntent(_ context.Context, _ primitive.ObjectID, items []models.CartItem, points int64) (*checkout.IntentResult, error) {
	f.gotItems, f.gotPoints = items, points
	if f.intentErr != nil {
		return nil, f.intentErr
	}
	return &checkout.IntentResult{IntentID: "pi_1", ClientSecret: "pi_1_secret", Amount: 11, PointsApplied: points}, nil
}

func (f *fakeCheckout) Confirm(_ context.Context, userID primitive.ObjectID, intentID string, _ []models.CartItem) (*checkout.Confirmation, error) {
	if f.confirmErr != nil {
		return nil, f.confirmErr
	}
	o := &models.Order{ID: primitive.NewObjectID(), UserID: userID, Total: 37, PointsEarned: 37}
	return &checkout.Confirmation{Order: o, OrderID: o.ID.Hex(), PointsEarned: 37, NewPoints: 137, PaymentIntentID: intentID}, nil
}

type fakeLoyalty struct {
	err error
}

func (f *fakeLoyalty) Redeem(_ context.Context, userID, dealID primitive.ObjectID) (*loyalty.Redemption, error) {
	if f.err != nil {
		return nil, f.err
	}
	deal := &models.Deal{ID: dealID, Title: "Free fries", PointsCost: 20}
	return &loyalty.Redemption{
		UserDeal:        &models.UserDeal{UserID: userID, DealID: dealID, UsedCount: 1, IsActive: true, Deal: deal},
		RemainingPoints: 30,
	}, nil
}

func (f *fakeLoyalty) ListActive(context.Context, primitive.ObjectID) ([]models.UserDeal, error) {
	return []models.UserDeal{}, nil
}

type harness struct {
	store    *fakeStore
	checkout *fakeCheckout
	loyalty  *fakeLoyalty
	issuer   *auth.Issuer
	handler  *Handler
	router   http.Handler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := &config.Config{}
	cfg.Loyalty.PointValue = 0.5
	cfg.Loyalty.MinCharge = 0.5
	cfg.Stripe.Currency = "aud"
	cfg.Stripe.PublishableKey = "pk_test_123"
	cfg.App.Timezone = "UTC"

	hs := &harness{
		store:    newFakeStore(),
		checkout: &fakeCheckout{},
		loyalty:  &fakeLoyalty{},
		issuer:   auth.NewIssuer("test-secret", time.Hour),
	}
	hs.handler = New(Handler{
		Store:    hs.store,
		Tokens:   hs.issuer,
		Checkout: hs.checkout,
		Loyalty:  hs.loyalty,
		Config:   cfg,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	// a Monday
	hs.handler.now = func() time.Time { return time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC) }
	hs.router = NewRouter(hs.handler, hs.issuer, nil, prometheus.NewRegistry())
	return hs
}

func (hs *harness) token(t *testing.T, role models.Role) (string, primitive.ObjectID) {
	t.Helper()
	id := primitive.NewObjectID()
	tok, err := hs.issuer.Issue(&models.User{ID: id, Name: "tester", Role: role})
	require.NoError(t, err)
	return tok, id
}

func (hs *harness) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	hs.router.ServeHTTP(rec, req)
	return rec
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Message
}

func TestSignupAndSignin(t *testing.T) {
	hs := newHarness(t)

	rec := hs.do(t, http.MethodPost, "/api/auth/signup",
		`{"name":"Ann","email":"Ann@Example.com","password":"secret1","role":"master"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var session sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, models.RoleCustomer, session.User.Role)
	assert.Equal(t, "ann@example.com", session.User.Email)

	claims, err := hs.issuer.Parse(session.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, claims.Role)

	rec = hs.do(t, http.MethodPost, "/api/auth/signup",
		`{"name":"Ann","email":"ann@example.com","password":"secret1"}`, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Email already registered", message(t, rec))

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantMsg    string
	}{
		{"valid", `{"email":"ann@example.com","password":"secret1"}`, http.StatusOK, ""},
		{"wrong password", `{"email":"ann@example.com","password":"nope"}`, http.StatusUnauthorized, "Invalid credentials"},
		{"unknown email", `{"email":"bob@example.com","password":"secret1"}`, http.StatusUnauthorized, "Invalid credentials"},
		{"missing password", `{"email":"ann@example.com"}`, http.StatusBadRequest, "Password is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := hs.do(t, http.MethodPost, "/api/auth/signin", tt.body, "")
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, message(t, rec))
			}
		})
	}
}

func TestSignupValidation(t *testing.T) {
	hs := newHarness(t)

	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"missing name", `{"email":"a@b.co","password":"secret1"}`, "Name is required"},
		{"bad email", `{"name":"A","email":"nope","password":"secret1"}`, "Email must be a valid email"},
		{"short password", `{"name":"A","email":"a@b.co","password":"123"}`, "Password failed min=6"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := hs.do(t, http.MethodPost, "/api/auth/signup", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.wantMsg, message(t, rec))
		})
	}
}

func TestRoleGating(t *testing.T) {
	hs := newHarness(t)
	customer, _ := hs.token(t, models.RoleCustomer)
	admin, _ := hs.token(t, models.RoleAdmin)
	master, _ := hs.token(t, models.RoleMaster)

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		wantStatus int
	}{
		{"analytics without token", http.MethodGet, "/api/analytics/daily-sales", "", http.StatusUnauthorized},
		{"analytics as customer", http.MethodGet, "/api/analytics/daily-sales", customer, http.StatusForbidden},
		{"analytics as admin", http.MethodGet, "/api/analytics/daily-sales", admin, http.StatusOK},
		{"analytics as master", http.MethodGet, "/api/analytics/daily-sales", master, http.StatusOK},
		{"redeem as admin", http.MethodPost, "/api/deals/redeem/" + primitive.NewObjectID().Hex(), admin, http.StatusForbidden},
		{"public settings", http.MethodGet, "/api/settings", "", http.StatusOK},
		{"stripe key", http.MethodGet, "/api/config/stripe-key", "", http.StatusOK},
		{"health", http.MethodGet, "/api/health", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := hs.do(t, tt.method, tt.path, "", tt.token)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestServerErrorsAreHidden(t *testing.T) {
	hs := newHarness(t)
	hs.store.dailyErr = errors.New("connection refused on 10.0.0.5")
	admin, _ := hs.token(t, models.RoleAdmin)

	rec := hs.do(t, http.MethodGet, "/api/analytics/daily-sales", "", admin)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Server error", message(t, rec))
}

func TestCreatePaymentIntent(t *testing.T) {
	product := primitive.NewObjectID().Hex()
	items := fmt.Sprintf(`[{"productId":%q,"quantity":2}]`, product)

	tests := []struct {
		name       string
		body       string
		intentErr  error
		wantStatus int
		wantPoints int64
		wantMsg    string
	}{
		{
			name:       "fractional points are floored",
			body:       fmt.Sprintf(`{"items":%s,"pointsToRedeem":12.7}`, items),
			wantStatus: http.StatusOK,
			wantPoints: 12,
		},
		{
			name:       "negative points become zero",
			body:       fmt.Sprintf(`{"items":%s,"pointsToRedeem":-5}`, items),
			wantStatus: http.StatusOK,
			wantPoints: 0,
		},
		{
			name:       "below minimum charge",
			body:       fmt.Sprintf(`{"items":%s,"pointsToRedeem":100}`, items),
			intentErr:  checkout.ErrBelowMinimumCharge,
			wantStatus: http.StatusBadRequest,
			wantPoints: 100,
			wantMsg:    "Payment amount must be at least $0.50 aud. Please reduce points redemption.",
		},
		{
			name:       "unknown product",
			body:       fmt.Sprintf(`{"items":%s}`, items),
			intentErr:  checkout.ErrInvalidProduct,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Invalid product",
		},
		{
			name:       "malformed product id",
			body:       `{"items":[{"productId":"abc","quantity":1}]}`,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Items[0].productId failed len=24",
		},
		{
			name:       "gateway not configured",
			body:       fmt.Sprintf(`{"items":%s}`, items),
			intentErr:  payment.ErrNotConfigured,
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "Payment processing is not configured",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hs := newHarness(t)
			hs.checkout.intentErr = tt.intentErr
			tok, _ := hs.token(t, models.RoleCustomer)

			rec := hs.do(t, http.MethodPost, "/api/payment/create-intent", tt.body, tok)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, message(t, rec))
				return
			}
			assert.Equal(t, tt.wantPoints, hs.checkout.gotPoints)
			var res checkout.IntentResult
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
			assert.Equal(t, "pi_1_secret", res.ClientSecret)
		})
	}
}

func TestConfirmPayment(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"success", nil, http.StatusOK},
		{"second confirmation", checkout.ErrAlreadyConfirmed, http.StatusConflict},
		{"someone else's intent", checkout.ErrIntentOwner, http.StatusForbidden},
		{"not paid", checkout.ErrPaymentNotSucceeded, http.StatusBadRequest},
		{"unknown intent", payment.ErrIntentNotFound, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hs := newHarness(t)
			hs.checkout.confirmErr = tt.err
			tok, _ := hs.token(t, models.RoleCustomer)

			rec := hs.do(t, http.MethodPost, "/api/payment/confirm", `{"paymentIntentId":"pi_1"}`, tok)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.err != nil {
				return
			}
			var conf checkout.Confirmation
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conf))
			assert.Equal(t, int64(37), conf.PointsEarned)
			assert.Equal(t, "pi_1", conf.PaymentIntentID)
		})
	}
}

func TestRedeemDeal(t *testing.T) {
	dealPath := "/api/deals/redeem/" + primitive.NewObjectID().Hex()
	tests := []struct {
		name       string
		path       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"redeemed", dealPath, nil, http.StatusOK, "Deal redeemed successfully!"},
		{"insufficient points", dealPath, fmt.Errorf("%w. Need 50, have 10", loyalty.ErrInsufficientPoints),
			http.StatusBadRequest, "Insufficient points. Need 50, have 10"},
		{"max uses", dealPath, loyalty.ErrMaxUsesReached, http.StatusBadRequest,
			"You have already used this deal the maximum number of times"},
		{"missing deal", dealPath, loyalty.ErrDealNotFound, http.StatusNotFound, "Deal not found"},
		{"expired", dealPath, loyalty.ErrDealExpired, http.StatusBadRequest, "Deal has expired"},
		{"malformed id", "/api/deals/redeem/xyz", nil, http.StatusBadRequest, "Invalid id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hs := newHarness(t)
			hs.loyalty.err = tt.err
			tok, _ := hs.token(t, models.RoleCustomer)

			rec := hs.do(t, http.MethodPost, tt.path, "", tok)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantMsg, message(t, rec))
		})
	}
}

func TestSetDeliveryPlatform(t *testing.T) {
	hs := newHarness(t)
	tok, userID := hs.token(t, models.RoleCustomer)
	mine := &models.Order{ID: primitive.NewObjectID(), UserID: userID, DeliveryPlatform: models.DeliveryNone}
	theirs := &models.Order{ID: primitive.NewObjectID(), UserID: primitive.NewObjectID()}
	hs.store.orders[mine.ID] = mine
	hs.store.orders[theirs.ID] = theirs

	tests := []struct {
		name       string
		order      primitive.ObjectID
		body       string
		wantStatus int
		wantMsg    string
	}{
		{"own order", mine.ID, `{"deliveryPlatform":"express"}`, http.StatusOK, "Delivery platform updated"},
		{"invalid method", mine.ID, `{"deliveryPlatform":"drone"}`, http.StatusBadRequest, "Invalid shipping method"},
		{"someone else's order", theirs.ID, `{"deliveryPlatform":"pickup"}`, http.StatusNotFound, "Order not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := "/api/orders/" + tt.order.Hex() + "/delivery-platform"
			rec := hs.do(t, http.MethodPatch, path, tt.body, tok)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantMsg, message(t, rec))
		})
	}
	assert.Equal(t, models.DeliveryExpress, mine.DeliveryPlatform)
	assert.Empty(t, theirs.DeliveryPlatform)
}

func TestProductWrites(t *testing.T) {
	hs := newHarness(t)
	admin, _ := hs.token(t, models.RoleAdmin)

	rec := hs.do(t, http.MethodPost, "/api/products", `{"name":"Chips","imageUrl":"/c.png"}`, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Price is required", message(t, rec))

	rec = hs.do(t, http.MethodPost, "/api/products", `{"name":"Water","imageUrl":"/w.png","price":0}`, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.True(t, created.IsAvailable)
	assert.Zero(t, created.Price)

	rec = hs.do(t, http.MethodPut, "/api/products/"+created.ID.Hex(), `{"price":2.5}`, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 2.5, hs.store.products[created.ID].Price)
	assert.Equal(t, "Water", hs.store.products[created.ID].Name)

	rec = hs.do(t, http.MethodPut, "/api/products/"+created.ID.Hex(), `{"offerPercent":150}`, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = hs.do(t, http.MethodPut, "/api/products/nope", `{"price":1}`, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid id", message(t, rec))

	rec = hs.do(t, http.MethodPut, "/api/products/"+primitive.NewObjectID().Hex(), `{"price":1}`, admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product not found", message(t, rec))
}

func TestSettings(t *testing.T) {
	hs := newHarness(t)
	admin, _ := hs.token(t, models.RoleAdmin)

	var view models.SettingsView
	rec := hs.do(t, http.MethodGet, "/api/settings", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.True(t, view.IsCurrentlyOpen)
	assert.True(t, view.IsAcceptingOrders)

	hs.handler.now = func() time.Time { return time.Date(2024, 6, 3, 21, 45, 0, 0, time.UTC) }
	rec = hs.do(t, http.MethodGet, "/api/settings", "", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.True(t, view.IsCurrentlyOpen)
	assert.False(t, view.IsAcceptingOrders)

	tests := []struct {
		name       string
		day        string
		body       string
		wantStatus int
	}{
		{"close monday", "Monday", `{"isOpen":false}`, http.StatusOK},
		{"unknown day", "funday", `{"isOpen":false}`, http.StatusNotFound},
		{"bad time", "tuesday", `{"openTime":"9am"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := hs.do(t, http.MethodPut, "/api/settings/hours/"+tt.day, tt.body, admin)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}

	hs.handler.now = func() time.Time { return time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC) }
	rec = hs.do(t, http.MethodGet, "/api/settings", "", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.False(t, view.IsCurrentlyOpen)
	assert.Equal(t, "09:00", view.OpeningHours[0].OpenTime)
}

func TestOffer(t *testing.T) {
	hs := newHarness(t)
	admin, _ := hs.token(t, models.RoleAdmin)

	rec := hs.do(t, http.MethodGet, "/api/offer", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"imageUrl":"","headline":"","subtext":""}`, rec.Body.String())

	rec = hs.do(t, http.MethodPut, "/api/offer", `{"headline":"2 for 1"}`, admin)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = hs.do(t, http.MethodPut, "/api/offer", `{"subtext":"Tuesdays only"}`, admin)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2 for 1", hs.store.offer.Headline)
	assert.Equal(t, "Tuesdays only", hs.store.offer.Subtext)
}

func TestWriteRoutesRequireJSON(t *testing.T) {
	hs := newHarness(t)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signin", strings.NewReader("email=a"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	hs.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{badRequest("x"), http.StatusBadRequest},
		{fmt.Errorf("wrap: %w", store.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("wrap: %w", store.ErrDuplicate), http.StatusConflict},
		{checkout.ErrBelowMinimumCharge, http.StatusBadRequest},
		{checkout.ErrUserNotFound, http.StatusNotFound},
		{loyalty.ErrUserNotFound, http.StatusNotFound},
		{checkout.ErrUnderpaid, http.StatusBadRequest},
		{checkout.ErrIntentOwner, http.StatusForbidden},
		{payment.ErrNotConfigured, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusOf(tt.err))
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	hs := newHarness(t)
	rec := hs.do(t, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStripeKey(t *testing.T) {
	hs := newHarness(t)
	rec := hs.do(t, http.MethodGet, "/api/config/stripe-key", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"publishableKey":"pk_test_123","pointValue":0.5,"minCharge":0.5,"currency":"aud"}`, rec.Body.String())
}

func TestCreateCategory(t *testing.T) {
	hs := newHarness(t)
	admin, _ := hs.token(t, models.RoleAdmin)

	rec := hs.do(t, http.MethodPost, "/api/categories", `{"name":"Burgers"}`, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = hs.do(t, http.MethodPost, "/api/categories", `{"name":"Burgers"}`, admin)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Category name already exists", message(t, rec))
}

func TestCreateDeal(t *testing.T) {
	hs := newHarness(t)
	admin, _ := hs.token(t, models.RoleAdmin)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "percentage defaults",
			body:       `{"title":"Half off","description":"Any burger","pointsCost":40,"discountValue":50}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "percentage over 100",
			body:       `{"title":"Too much","description":"x","pointsCost":40,"discountValue":150}`,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Percentage discount must be in (0, 100], got 150",
		},
		{
			name:       "unknown type",
			body:       `{"title":"Odd","description":"x","pointsCost":40,"discountType":"bogus","discountValue":5}`,
			wantStatus: http.StatusBadRequest,
			wantMsg:    `Unknown discount type "bogus"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := hs.do(t, http.MethodPost, "/api/deals", tt.body, admin)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, message(t, rec))
			}
		})
	}

	require.Len(t, hs.store.deals, 1)
	assert.Equal(t, models.DiscountPercentage, hs.store.deals[0].DiscountType)
	assert.Equal(t, 1, hs.store.deals[0].MaxUses)
}

func TestFeedback(t *testing.T) {
	hs := newHarness(t)
	customer, _ := hs.token(t, models.RoleCustomer)
	admin, _ := hs.token(t, models.RoleAdmin)

	rec := hs.do(t, http.MethodPost, "/api/feedback", `{"type":"praise","subject":"Hi","message":"Great"}`, customer)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = hs.do(t, http.MethodPost, "/api/feedback", `{"type":"complaint","subject":"Cold","message":"Fries were cold"}`, customer)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		Feedback models.Feedback `json:"feedback"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, models.FeedbackPending, created.Feedback.Status)

	rec = hs.do(t, http.MethodGet, "/api/feedback/all?status=closed", "", admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = hs.do(t, http.MethodGet, "/api/feedback/all?status=pending", "", admin)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.Feedback
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	path := "/api/feedback/" + created.Feedback.ID.Hex()
	rec = hs.do(t, http.MethodDelete, path, "", admin)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = hs.do(t, http.MethodDelete, path, "", admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Feedback not found", message(t, rec))
}
