package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var notifications = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "plantcare_notifications_total",
	Help: "Webhook notifications by outcome.",
}, []string{"outcome"})
