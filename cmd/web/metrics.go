package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
)

// metrics holds the game counters. Each application gets its own registry so that several servers can run in one
// process during tests.
type metrics struct {
	registry      *prometheus.Registry
	gamesStarted  prometheus.Counter
	answers       *prometheus.CounterVec
	guesses       *prometheus.CounterVec
	gamesFinished *prometheus.CounterVec
}

func newMetrics() *metrics {
	registry := prometheus.NewRegistry()
	m := &metrics{
		registry: registry,
		gamesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reelguess_games_started_total",
			Help: "Number of games started.",
		}),
		answers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reelguess_answers_total",
			Help: "Number of answered questions by answer code.",
		}, []string{"answer"}),
		guesses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reelguess_guesses_total",
			Help: "Number of settled guesses by outcome.",
		}, []string{"outcome"}),
		gamesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reelguess_games_finished_total",
			Help: "Number of finished games by phase.",
		}, []string{"phase"}),
	}
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.gamesStarted,
		m.answers,
		m.guesses,
		m.gamesFinished,
	)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
