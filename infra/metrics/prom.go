package metrics

import (
	"strconv"

	coremetrics "github.com/bsb-logistics/ganttboard/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records board activity in Prometheus metrics.
type PromSink struct {
	mutations *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	refreshes *prometheus.CounterVec
	board     *prometheus.GaugeVec
}

// NewPromSink registers board metrics on the default Prometheus registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gantt_mutations_total",
		Help: "Total number of board mutations by operation and outcome",
	}, []string{"operation", "outcome", "code"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gantt_mutation_latency_seconds",
		Help:    "Time from operation start to tree reconciliation",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	refreshes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gantt_refreshes_total",
		Help: "Total number of board fetches and partial refreshes",
	}, []string{"scope", "failed"})
	board := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "gantt_board_entities",
		Help: "Number of entities currently on the board",
	}, []string{"kind"})

	var err error
	if mutations, err = register(reg, mutations); err != nil {
		return nil, err
	}
	if latency, err = register(reg, latency); err != nil {
		return nil, err
	}
	if refreshes, err = register(reg, refreshes); err != nil {
		return nil, err
	}
	if board, err = register(reg, board); err != nil {
		return nil, err
	}
	return &PromSink{mutations: mutations, latency: latency, refreshes: refreshes, board: board}, nil
}

// register reuses an already registered collector of the same shape.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordMutation counts the operation and observes its latency.
func (s *PromSink) RecordMutation(ev coremetrics.MutationEvent) error {
	code := ""
	if ev.RejectCode != 0 {
		code = strconv.Itoa(ev.RejectCode)
	}
	s.mutations.WithLabelValues(ev.Operation, ev.Outcome, code).Inc()
	s.latency.WithLabelValues(ev.Operation).Observe(ev.Latency.Seconds())
	return nil
}

// RecordRefresh counts fetches and partial refreshes.
func (s *PromSink) RecordRefresh(ev coremetrics.RefreshEvent) error {
	scope := "partial"
	if ev.Full {
		scope = "full"
	}
	s.refreshes.WithLabelValues(scope, strconv.FormatBool(ev.Failed)).Inc()
	return nil
}

// RecordBoardSize sets the entity gauges.
func (s *PromSink) RecordBoardSize(b coremetrics.BoardSize) error {
	s.board.WithLabelValues("vehicles").Set(float64(b.Vehicles))
	s.board.WithLabelValues("trips").Set(float64(b.Trips))
	s.board.WithLabelValues("tasks").Set(float64(b.Tasks))
	s.board.WithLabelValues("locked_trips").Set(float64(b.Locked))
	return nil
}
