package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/foodiehub/ordering-api/middleware"
	"github.com/foodiehub/ordering-api/models"
)

// NewRouter mounts every endpoint under /api. Each role group is a subrouter
// with its own auth chain; write routes that carry a body go through
// ValidateJSON. gatherer backs /metrics.
func NewRouter(h *Handler, tokens middleware.TokenParser, authLimiter *middleware.RateLimiter, gatherer prometheus.Gatherer) *mux.Router {
	root := mux.NewRouter()
	root.Use(instrument)
	root.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	body := func(f http.HandlerFunc) http.Handler { return middleware.ValidateJSON(f) }
	authn := middleware.Authenticate(tokens)

	// Public.
	public := root.PathPrefix("/api").Subrouter()
	public.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	public.HandleFunc("/health/db", h.HealthDB).Methods(http.MethodGet)
	public.HandleFunc("/config/stripe-key", h.StripeKey).Methods(http.MethodGet)
	public.HandleFunc("/products", h.ListProducts).Methods(http.MethodGet)
	public.HandleFunc("/products/{id}", h.GetProduct).Methods(http.MethodGet)
	public.HandleFunc("/categories", h.ListCategories).Methods(http.MethodGet)
	public.HandleFunc("/categories/{id}", h.GetCategory).Methods(http.MethodGet)
	public.HandleFunc("/deals", h.ListDeals).Methods(http.MethodGet)
	public.HandleFunc("/settings", h.GetSettings).Methods(http.MethodGet)
	public.HandleFunc("/offer", h.GetOffer).Methods(http.MethodGet)
	public.HandleFunc("/delivery-platforms", h.GetDeliveryPlatforms).Methods(http.MethodGet)

	// Credential endpoints, rate limited per client IP.
	session := root.PathPrefix("/api/auth").Subrouter()
	if authLimiter != nil {
		session.Use(authLimiter.Middleware)
	}
	session.Handle("/signup", body(h.Signup)).Methods(http.MethodPost)
	session.Handle("/signin", body(h.Signin)).Methods(http.MethodPost)

	// Any signed-in user.
	signedIn := root.PathPrefix("/api").Subrouter()
	signedIn.Use(authn)
	signedIn.HandleFunc("/auth/me", h.Me).Methods(http.MethodGet)

	customer := root.PathPrefix("/api").Subrouter()
	customer.Use(authn, middleware.RequireRole(models.RoleCustomer))
	customer.HandleFunc("/deals/my-deals", h.MyDeals).Methods(http.MethodGet)
	customer.HandleFunc("/deals/redeem/{id}", h.RedeemDeal).Methods(http.MethodPost)
	customer.Handle("/payment/create-intent", body(h.CreatePaymentIntent)).Methods(http.MethodPost)
	customer.Handle("/payment/confirm", body(h.ConfirmPayment)).Methods(http.MethodPost)
	customer.HandleFunc("/orders/my", h.MyOrders).Methods(http.MethodGet)
	customer.Handle("/orders/{id}/delivery-platform", body(h.SetDeliveryPlatform)).Methods(http.MethodPatch)
	customer.Handle("/feedback", body(h.SubmitFeedback)).Methods(http.MethodPost)
	customer.HandleFunc("/feedback/my", h.MyFeedback).Methods(http.MethodGet)

	staff := root.PathPrefix("/api").Subrouter()
	staff.Use(authn, middleware.RequireRole(models.RoleAdmin, models.RoleMaster))
	staff.Handle("/products", body(h.CreateProduct)).Methods(http.MethodPost)
	staff.Handle("/products/{id}", body(h.UpdateProduct)).Methods(http.MethodPut)
	staff.HandleFunc("/products/{id}/availability", h.ToggleAvailability).Methods(http.MethodPatch)
	staff.HandleFunc("/products/{id}", h.DeleteProduct).Methods(http.MethodDelete)
	staff.Handle("/categories", body(h.CreateCategory)).Methods(http.MethodPost)
	staff.Handle("/categories/{id}", body(h.UpdateCategory)).Methods(http.MethodPut)
	staff.HandleFunc("/categories/{id}", h.DeleteCategory).Methods(http.MethodDelete)
	staff.Handle("/deals", body(h.CreateDeal)).Methods(http.MethodPost)
	staff.Handle("/deals/{id}", body(h.UpdateDeal)).Methods(http.MethodPut)
	staff.HandleFunc("/deals/{id}", h.DeleteDeal).Methods(http.MethodDelete)
	staff.HandleFunc("/analytics/daily-sales", h.DailySales).Methods(http.MethodGet)
	staff.HandleFunc("/analytics/weekly-sales", h.WeeklySales).Methods(http.MethodGet)
	staff.Handle("/settings", body(h.UpdateSettings)).Methods(http.MethodPut)
	staff.Handle("/settings/hours/{day}", body(h.UpdateHours)).Methods(http.MethodPut)
	staff.Handle("/offer", body(h.SaveOffer)).Methods(http.MethodPut)
	staff.Handle("/delivery-platforms", body(h.SaveDeliveryPlatforms)).Methods(http.MethodPut)
	staff.HandleFunc("/feedback/all", h.AllFeedback).Methods(http.MethodGet)
	staff.Handle("/feedback/{id}", body(h.UpdateFeedback)).Methods(http.MethodPatch)
	staff.HandleFunc("/feedback/{id}", h.DeleteFeedback).Methods(http.MethodDelete)
	if h.Feed != nil {
		staff.Handle("/ws/orders", h.Feed).Methods(http.MethodGet)
	}

	master := root.PathPrefix("/api").Subrouter()
	master.Use(authn, middleware.RequireRole(models.RoleMaster))
	master.HandleFunc("/analytics/weekly-revenue", h.WeeklyRevenue).Methods(http.MethodGet)
	master.HandleFunc("/master/customer-purchases", h.CustomerPurchases).Methods(http.MethodGet)
	master.HandleFunc("/master/products/{id}", h.MasterProduct).Methods(http.MethodGet)
	master.Handle("/master/products/{id}", body(h.UpdateProduct)).Methods(http.MethodPut)
	master.HandleFunc("/master/products/{id}", h.DeleteProduct).Methods(http.MethodDelete)
	master.HandleFunc("/master/deals/{id}", h.GetDeal).Methods(http.MethodGet)
	master.Handle("/master/deals/{id}", body(h.UpdateDeal)).Methods(http.MethodPut)

	return root
}
