package backendsim

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bsb-logistics/ganttboard/core/logger"
	"github.com/bsb-logistics/ganttboard/core/model"
	coremqtt "github.com/bsb-logistics/ganttboard/core/mqtt"
	"github.com/bsb-logistics/ganttboard/core/remote"
	"github.com/bsb-logistics/ganttboard/internal/httpx"
)

// Config configures the development backend.
type Config struct {
	Address  string `json:"address"`
	SeedFile string `json:"seed_file"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8000"
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.Address); err != nil {
		return fmt.Errorf("backend address %q: %w", c.Address, err)
	}
	return nil
}

// codeBadRequest is returned for bodies that cannot be decoded.
const codeBadRequest = 400

// Server exposes a Store over the persistence service's HTTP surface.
type Server struct {
	mu       sync.Mutex
	addr     string
	store    *Store
	notifier coremqtt.Notifier
	log      logger.Logger
	srv      *http.Server
	calls    *prometheus.CounterVec
	now      func() time.Time
}

// Option customises a Server.
type Option func(*Server)

// WithNotifier announces every committed change.
func WithNotifier(n coremqtt.Notifier) Option {
	return func(s *Server) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithLogger sets the server logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithRegistry registers the server metrics on reg instead of the default
// registerer.
func WithRegistry(reg prometheus.Registerer) Option {
	return func(s *Server) { s.calls = registerCalls(reg, s.log) }
}

// NewServer creates a server over store.
func NewServer(cfg Config, store *Store, opts ...Option) *Server {
	cfg.SetDefaults()
	s := &Server{
		addr:     cfg.Address,
		store:    store,
		notifier: coremqtt.NopNotifier{},
		log:      logger.NopLogger{},
		now:      store.now,
	}
	for _, o := range opts {
		o(s)
	}
	if s.calls == nil {
		s.calls = registerCalls(prometheus.DefaultRegisterer, s.log)
	}
	return s
}

func registerCalls(reg prometheus.Registerer, log logger.Logger) *prometheus.CounterVec {
	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ganttboard_backend_calls_total",
		Help: "Calls served by the development backend",
	}, []string{"route", "code"})
	if err := reg.Register(calls); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if exist, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return exist
			}
			log.Errorf("existing collector for ganttboard_backend_calls_total has wrong type %T", are.ExistingCollector)
		}
	}
	return calls
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := httpx.NewRouter(s.log)
	r.Route("/api/gantt", func(r chi.Router) {
		r.Get("/vehicles", s.handleVehicles)
		r.Post("/vehicles/refresh", s.handleRefresh)
		r.Post("/trip", s.handleCreateTrip)
		r.Get("/trip/{id}", s.handleGetTrip)
		r.Delete("/trip/{id}", s.handleDeleteTrip)
		r.Post("/task", s.handleCreateTask)
		r.Delete("/task/{id}", s.handleDeleteTask)
		r.Post("/drag/pm", s.handleDragVehicle)
		r.Post("/drag/time", s.handleDragTime)
		r.Get("/get_vehicle_driver_list", s.handleAvailable)
	})
	r.Route("/api/orders", func(r chi.Router) {
		r.Get("/containers", s.handleContainers)
		r.Get("/container/{ctn}", s.handleContainer)
		r.Post("/get_last_pickup_ctns", s.handleDue(model.DeadlineLastPickup))
		r.Post("/get_last_dehire_ctns", s.handleDue(model.DeadlineLastDehire))
		r.Post("/get_today_deliver_ctns", s.handleDue(model.DeadlineTodayDeliver))
		r.Post("/plan-to-task", s.handlePlanTask)
	})
	return r
}

// Addr returns the listening address once Start has been called.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Start runs the HTTP server until the context is canceled.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.addr = ln.Addr().String()
	s.srv = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	s.mu.Unlock()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("shutdown backend: %v", err)
		}
		cancel()
	}()
	s.log.Infof("development backend listening on %s", ln.Addr())
	err = s.srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

type refreshRequest struct {
	VehicleIDs []string        `json:"vehicleIds"`
	Range      model.TimeRange `json:"range"`
}

func (s *Server) handleVehicles(w http.ResponseWriter, r *http.Request) {
	rng := s.defaultRange()
	if v := r.URL.Query().Get("start"); v != "" {
		ts, err := model.ParseTimestamp(v)
		if err != nil {
			s.fail(w, "vehicles", remote.Reject(remote.CodeInvalidTimeRange, err.Error()))
			return
		}
		rng.Start = ts
	}
	if v := r.URL.Query().Get("end"); v != "" {
		ts, err := model.ParseTimestamp(v)
		if err != nil {
			s.fail(w, "vehicles", remote.Reject(remote.CodeInvalidTimeRange, err.Error()))
			return
		}
		rng.End = ts
	}
	if err := rng.Validate(); err != nil {
		s.fail(w, "vehicles", remote.Reject(remote.CodeInvalidTimeRange, err.Error()))
		return
	}
	s.ok(w, "vehicles", s.store.Vehicles(rng))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !s.decode(w, r, "refresh", &req) {
		return
	}
	rng := req.Range
	if rng.Start.IsZero() || rng.End.IsZero() {
		rng = s.defaultRange()
	}
	s.ok(w, "refresh", s.store.VehiclesByID(req.VehicleIDs, rng))
}

func (s *Server) handleCreateTrip(w http.ResponseWriter, r *http.Request) {
	var d model.TripDraft
	if !s.decode(w, r, "create_trip", &d) {
		return
	}
	trip, err := s.store.CreateTrip(d)
	if err != nil {
		s.fail(w, "create_trip", err)
		return
	}
	s.announce(trip.VehicleID)
	s.ok(w, "create_trip", trip)
}

func (s *Server) handleGetTrip(w http.ResponseWriter, r *http.Request) {
	trip, err := s.store.Trip(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "get_trip", err)
		return
	}
	s.ok(w, "get_trip", trip)
}

func (s *Server) handleDeleteTrip(w http.ResponseWriter, r *http.Request) {
	owner, err := s.store.DeleteTrip(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "delete_trip", err)
		return
	}
	s.announce(owner)
	s.ok(w, "delete_trip", nil)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var d model.TaskDraft
	if !s.decode(w, r, "create_task", &d) {
		return
	}
	task, owner, err := s.store.CreateTask(d)
	if err != nil {
		s.fail(w, "create_task", err)
		return
	}
	s.announce(owner)
	s.ok(w, "create_task", task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	owner, err := s.store.DeleteTask(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "delete_task", err)
		return
	}
	s.announce(owner)
	s.ok(w, "delete_task", nil)
}

func (s *Server) handleDragVehicle(w http.ResponseWriter, r *http.Request) {
	var d model.VehicleDrag
	if !s.decode(w, r, "drag_pm", &d) {
		return
	}
	owners, err := s.store.MoveTrip(d)
	if err != nil {
		s.fail(w, "drag_pm", err)
		return
	}
	s.announce(owners...)
	s.ok(w, "drag_pm", nil)
}

func (s *Server) handleDragTime(w http.ResponseWriter, r *http.Request) {
	var d model.TimeDrag
	if !s.decode(w, r, "drag_time", &d) {
		return
	}
	owner, err := s.store.ResizeTrip(d)
	if err != nil {
		s.fail(w, "drag_time", err)
		return
	}
	s.announce(owner)
	s.ok(w, "drag_time", nil)
}

func (s *Server) handleAvailable(w http.ResponseWriter, _ *http.Request) {
	plates, drivers := s.store.Available()
	s.ok(w, "vehicle_driver_list", [][]string{plates, drivers})
}

func (s *Server) handleContainers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.ok(w, "containers", s.store.Containers(model.ContainerFilter{
		Search:          q.Get("search"),
		LogisticsStatus: q.Get("logisticsStatus"),
		DeliverType:     q.Get("deliverType"),
		Terminal:        q.Get("terminal"),
	}))
}

func (s *Server) handleContainer(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.Container(chi.URLParam(r, "ctn"))
	if err != nil {
		s.fail(w, "container", err)
		return
	}
	s.ok(w, "container", c)
}

type dayRequest struct {
	QueryDate string `json:"query_date"`
}

func (s *Server) handleDue(d model.Deadline) http.HandlerFunc {
	route := string(d)
	return func(w http.ResponseWriter, r *http.Request) {
		var req dayRequest
		if !s.decode(w, r, route, &req) {
			return
		}
		day, err := model.ParseDay(req.QueryDate)
		if err != nil {
			s.invalid(w, route, err.Error())
			return
		}
		s.ok(w, route, map[string][]model.Container{"date": s.store.Due(d, day)})
	}
}

func (s *Server) handlePlanTask(w http.ResponseWriter, r *http.Request) {
	var req model.PlanRequest
	if !s.decode(w, r, "plan_task", &req) {
		return
	}
	if !req.TaskType.Valid() {
		s.invalid(w, "plan_task", fmt.Sprintf("unknown task type %q", req.TaskType))
		return
	}
	task, err := s.store.PlanTask(req)
	if err != nil {
		s.fail(w, "plan_task", err)
		return
	}
	s.ok(w, "plan_task", task)
}

// defaultRange covers one day back and three days ahead.
func (s *Server) defaultRange() model.TimeRange {
	now := s.now()
	return model.TimeRange{
		Start: model.At(now.Add(-24 * time.Hour)),
		End:   model.At(now.Add(72 * time.Hour)),
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, route string, v any) bool {
	if err := httpx.DecodeJSON(r, v); err != nil {
		s.invalid(w, route, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) invalid(w http.ResponseWriter, route, msg string) {
	s.calls.WithLabelValues(route, fmt.Sprint(codeBadRequest)).Inc()
	s.write(w, http.StatusBadRequest, remote.Envelope[any]{Code: codeBadRequest, Message: msg})
}

func (s *Server) ok(w http.ResponseWriter, route string, data any) {
	s.calls.WithLabelValues(route, "0").Inc()
	s.write(w, http.StatusOK, remote.Envelope[any]{Code: remote.CodeOK, Message: "ok", Data: data})
}

// fail reports a rejection inside a 200 envelope, as the service does.
func (s *Server) fail(w http.ResponseWriter, route string, err error) {
	code, ok := remote.RejectionCode(err)
	if !ok {
		s.calls.WithLabelValues(route, "500").Inc()
		s.log.Errorf("%s: %v", route, err)
		s.write(w, http.StatusInternalServerError, remote.Envelope[any]{Code: http.StatusInternalServerError, Message: err.Error()})
		return
	}
	var re *remote.RejectedError
	errors.As(err, &re)
	s.calls.WithLabelValues(route, fmt.Sprint(code)).Inc()
	s.log.Debugf("%s rejected with %d: %s", route, code, re.Message)
	s.write(w, http.StatusOK, remote.Envelope[any]{Code: code, Message: re.Message})
}

func (s *Server) write(w http.ResponseWriter, status int, env remote.Envelope[any]) {
	if err := httpx.WriteJSON(w, status, env); err != nil {
		s.log.Errorf("write response: %v", err)
	}
}

func (s *Server) announce(vehicleIDs ...string) {
	if err := s.notifier.Notify(coremqtt.Change{VehicleIDs: vehicleIDs}); err != nil {
		s.log.Warnf("announce change for %v: %v", vehicleIDs, err)
	}
}
