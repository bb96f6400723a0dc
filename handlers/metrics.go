package handlers

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of request durations by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	checkoutIntents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_intents_total",
		Help: "Payment intents requested, by outcome",
	}, []string{"status"})

	checkoutConfirmations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_confirmations_total",
		Help: "Payment confirmations, by outcome",
	}, []string{"status"})

	dealRedemptions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "deal_redemptions_total",
		Help: "Deal redemptions, by outcome",
	}, []string{"status"})

	pointsAwarded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "points_awarded_total",
		Help: "Loyalty points earned on confirmed orders",
	})
)

// RegisterMetrics adds the handler collectors to reg.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(httpRequests, httpDuration, checkoutIntents, checkoutConfirmations, dealRedemptions, pointsAwarded)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter { return s.ResponseWriter }

// Hijack lets the order feed upgrade through the recorder.
func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	s.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}

// instrument counts requests by route template so ids do not explode label cardinality.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		route := "unmatched"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		httpRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
