package apiclient

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clinic_client_requests_total",
		Help: "Backend requests by method and final status.",
	}, []string{"method", "status"})

	refreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clinic_client_token_refresh_total",
		Help: "Access token refresh attempts by outcome.",
	}, []string{"outcome"})
)
