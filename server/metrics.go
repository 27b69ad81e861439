package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var connectionsGauge = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "gateway",
	Name:      "connections_active",
	Help:      "Number of active ws connections",
})

var activeTransactionsGauge = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "gateway",
	Name:      "transactions_active",
	Help:      "Number of active transactions",
})

var settledEnergyCounter = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "gateway",
	Name:      "settled_energy_wh_total",
	Help:      "Total settled energy in watt-hours",
})

var malformedCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ocpp",
	Name:      "malformed_message_count",
	Help:      "Total number of malformed frames by station.",
}, []string{"station_id"})

var commandCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ocpp",
	Name:      "command_count",
	Help:      "Total number of dispatched commands by outcome.",
}, []string{"command", "outcome"})

func observeConnections(count int) {
	connectionsGauge.Set(float64(count))
}

func observeTransactions(count int) {
	activeTransactionsGauge.Set(float64(count))
}

func observeSettledEnergy(wh int64) {
	if wh > 0 {
		settledEnergyCounter.Add(float64(wh))
	}
}

func observeMalformed(stationId string) {
	if len(stationId) == 0 {
		return
	}
	malformedCounter.With(prometheus.Labels{"station_id": stationId}).Inc()
}

func observeCommand(command, outcome string) {
	commandCounter.With(prometheus.Labels{"command": command, "outcome": outcome}).Inc()
}
