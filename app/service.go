// Package app assembles the board from its configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bsb-logistics/ganttboard/api/board"
	"github.com/bsb-logistics/ganttboard/config"
	"github.com/bsb-logistics/ganttboard/core/events"
	"github.com/bsb-logistics/ganttboard/core/interaction"
	coremetrics "github.com/bsb-logistics/ganttboard/core/metrics"
	"github.com/bsb-logistics/ganttboard/core/model"
	coremon "github.com/bsb-logistics/ganttboard/core/monitoring"
	"github.com/bsb-logistics/ganttboard/core/mutation"
	"github.com/bsb-logistics/ganttboard/core/mutation/journal"
	"github.com/bsb-logistics/ganttboard/core/reference"
	"github.com/bsb-logistics/ganttboard/core/schedule"
	coresettings "github.com/bsb-logistics/ganttboard/core/settings"
	"github.com/bsb-logistics/ganttboard/core/timeline"
	"github.com/bsb-logistics/ganttboard/infra/logger"
	"github.com/bsb-logistics/ganttboard/infra/metrics"
	"github.com/bsb-logistics/ganttboard/infra/monitoring"
	"github.com/bsb-logistics/ganttboard/infra/mqtt"
	"github.com/bsb-logistics/ganttboard/infra/remote"
	"github.com/bsb-logistics/ganttboard/infra/settings"
	"github.com/bsb-logistics/ganttboard/internal/collab"
	"github.com/bsb-logistics/ganttboard/internal/eventbus"
)

// Service owns the board components and the listeners serving them.
type Service struct {
	Coordinator *mutation.Coordinator
	Viewport    *timeline.Viewport
	Settings    *coresettings.Service
	Selection   *interaction.Selection

	cfg      *config.Config
	bus      *eventbus.TypedBus[events.BoardEvent]
	sink     coremetrics.MetricsSink
	journal  journal.Store
	api      *board.API
	poller   *collab.Poller
	listener *mqtt.Listener
	log      logger.Logger
}

// New builds every component described by cfg. Nothing is started until Run.
func New(ctx context.Context, cfg *config.Config) (*Service, error) {
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return nil, err
	}
	log := logger.New("service")
	zone := model.NewZone(cfg.Timeline.Zone())

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	sink, err := cfg.Metrics.Sink()
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	jstore, err := journal.New(cfg.Journal)
	if err != nil {
		return nil, fmt.Errorf("journal: %w", err)
	}
	store, err := settings.New(cfg.Settings)
	if err != nil {
		_ = jstore.Close()
		return nil, fmt.Errorf("settings store: %w", err)
	}
	prefs := coresettings.NewService(store, logger.New("settings"))
	if _, err := prefs.Load(ctx); err != nil {
		// Defaults stay in effect.
		log.Warnf("load settings: %v", err)
	}

	vp, err := timeline.NewViewport(cfg.Timeline.Window(time.Now()))
	if err != nil {
		_ = jstore.Close()
		return nil, fmt.Errorf("viewport: %w", err)
	}
	vp.SetOrientation(timeline.Orientation(prefs.Current().ViewMode))

	sel := interaction.NewSelection()
	tree := schedule.NewTree(sel)
	bus := eventbus.NewTyped[events.BoardEvent]()
	client := remote.NewClient(cfg.Remote, remote.WithLogger(logger.New("remote")))
	coord, err := mutation.NewCoordinator(tree, client, vp,
		mutation.WithMetrics(sink),
		mutation.WithJournal(jstore),
		mutation.WithBus(bus),
		mutation.WithLogger(logger.New("mutation")),
	)
	if err != nil {
		_ = jstore.Close()
		return nil, fmt.Errorf("coordinator: %w", err)
	}

	api, err := board.New(board.Deps{
		Coordinator: coord,
		Selection:   sel,
		Menu:        interaction.NewContextMenu(),
		Viewport:    vp,
		Settings:    prefs,
		Drivers:     reference.NewDirectory(cfg.Drivers),
		Bus:         bus,
		Journal:     jstore,
		Token:       cfg.API.Token,
		Log:         logger.New("board-api"),
		Zone:        zone,
	})
	if err != nil {
		_ = jstore.Close()
		return nil, err
	}

	return &Service{
		Coordinator: coord,
		Viewport:    vp,
		Settings:    prefs,
		Selection:   sel,
		cfg:         cfg,
		bus:         bus,
		sink:        sink,
		journal:     jstore,
		api:         api,
		poller:      collab.NewPoller(coord, tree.VehicleIDs, prefs),
		log:         log,
	}, nil
}

// Handler exposes the board API, mainly for tests.
func (s *Service) Handler() http.Handler { return s.api.Routes() }

// Run fetches the initial window, starts the listeners and blocks until ctx
// is canceled or the API server fails.
func (s *Service) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := s.Coordinator.FetchVehicles(ctx); err != nil {
		// The board starts empty and the next fetch or poll retries.
		s.log.Warnf("initial fetch: %v", err)
	}

	metrics.StartEventCollector(ctx, s.bus, s.sink)
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, addr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	go func() {
		if err := s.poller.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.log.Errorf("collab poller: %v", err)
		}
	}()
	if s.cfg.MQTT.Enabled {
		l, err := mqtt.NewListener(s.cfg.MQTT, s.Coordinator)
		if err != nil {
			// Polling still covers collaboration.
			s.log.Errorf("mqtt listener: %v", err)
		} else {
			s.listener = l
		}
	}

	srv := &http.Server{Addr: s.cfg.API.Address, Handler: s.api.Routes(), ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("board api listening on %s", s.cfg.API.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("board api: %w", err)
		}
	}
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	return srv.Shutdown(shutdownCtx)
}

// Close releases the listeners and stores held by the service.
func (s *Service) Close() error {
	if s.listener != nil {
		s.listener.Close()
	}
	s.bus.Close()
	coremon.Flush(2 * time.Second)
	return s.journal.Close()
}
