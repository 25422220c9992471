package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"emperror.dev/errors"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/voluzi/debugpilot/internal/config"
	"github.com/voluzi/debugpilot/internal/logging"
	"github.com/voluzi/debugpilot/pkg/cpusampler"
	"github.com/voluzi/debugpilot/pkg/database"
	"github.com/voluzi/debugpilot/pkg/debuginfos"
	"github.com/voluzi/debugpilot/pkg/procmetrics"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	server     *http.Server
	router     *mux.Router
	cfg        *Options
	config     *config.Holder
	source     procmetrics.Source
	sampler    *cpusampler.Sampler
	db         *database.DB
	ownsDB     bool
	metrics    *metrics
	stream     *stream
	debugInfos *debuginfos.Provider

	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
}

func New(opts ...Option) (*Server, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	holder := options.Config
	if holder == nil {
		holder = config.StaticHolder(config.Default())
	}
	cfg := holder.Current()

	source, err := newSource(options)
	if err != nil {
		return nil, err
	}

	db, ownsDB := options.Database, false
	if db == nil {
		if db, err = database.Open(cfg.Database.File); err != nil {
			return nil, err
		}
		ownsDB = true
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		router:  mux.NewRouter(),
		cfg:     options,
		config:  holder,
		source:  source,
		sampler: cpusampler.New(source,
			cpusampler.WithInterval(options.SamplerInterval),
			cpusampler.WithRetainTerminatedThreads(options.RetainTerminatedThreads),
		),
		db:      db,
		ownsDB:  ownsDB,
		metrics: newMetrics(source),
		stream:  newStream(),
		ctx:     ctx,
		cancel:  cancel,
	}

	s.sampler.OnTick(s.metrics.recordThreadUsage)
	s.sampler.OnTick(s.stream.publish)
	s.sampler.OnTick(func(cpusampler.TimeAndThreadCpuUsages) {
		debuginfos.LogProcessUsage(source)
	})

	providerOpts := []debuginfos.Option{
		debuginfos.WithDatabase(db),
		debuginfos.WithGatherer(s.metrics.registry),
		debuginfos.WithHistory(s.sampler),
		debuginfos.WithVersion(debuginfos.VersionFunc(func() string { return options.Version })),
	}
	if options.TempDir != "" {
		providerOpts = append(providerOpts, debuginfos.WithTempDir(options.TempDir))
	}
	s.debugInfos = debuginfos.New(holder, providerOpts...)

	go s.stream.run(ctx.Done())

	s.registerRoutes()
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", options.Host, options.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func newSource(options *Options) (procmetrics.Source, error) {
	if options.Source != nil {
		return options.Source, nil
	}

	var (
		source *procmetrics.ProcessSource
		err    error
	)
	switch {
	case options.ProcessName != "":
		p, findErr := procmetrics.FindProcessByName(options.ProcessName)
		if findErr != nil {
			return nil, errors.Wrapf(findErr, "failed to find process %s", options.ProcessName)
		}
		source, err = procmetrics.NewProcessSource(int(p.Pid))
	case options.PID > 0:
		source, err = procmetrics.NewProcessSource(options.PID)
	default:
		source, err = procmetrics.NewSelfSource()
	}
	if err != nil {
		return nil, err
	}
	log.WithField("pid", source.PID()).Info("monitoring process")
	return source, nil
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Sampler() *cpusampler.Sampler {
	return s.sampler
}

// Start applies the logging config, starts the sampler when the PERFORMANCE
// marker is enabled and serves HTTP until Stop is called.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

func (s *Server) Serve(ln net.Listener) error {
	s.applyConfig(s.config.Current())

	if s.config.Path() != "" {
		go func() {
			if err := s.config.Watch(s.ctx.Done(), s.applyConfig); err != nil {
				log.Errorf("error watching config file: %v", err)
			}
		}()
	}

	log.Infof("server started listening on %s ...", ln.Addr())
	err := s.server.Serve(ln)
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) applyConfig(cfg *config.Config) {
	if level, err := log.ParseLevel(cfg.Logging.Level); err == nil {
		log.SetLevel(level)
	}
	logging.SetMarkers(cfg.Logging.MarkersToLog)

	if !logging.Enabled(logging.Performance) {
		log.Debug("PERFORMANCE marker not enabled, thread cpu usage will not be sampled")
		return
	}
	if err := s.sampler.Start(s.ctx); err != nil && !errors.Is(err, cpusampler.ErrAlreadyStarted) {
		log.Errorf("failed to start sampler: %v", err)
	}
}

func (s *Server) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		log.Info("stopping server")
		s.cancel()
		s.sampler.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Debug("shutting down http server")
		err = s.server.Shutdown(ctx)

		if s.ownsDB {
			if dbErr := s.db.Close(); dbErr != nil && err == nil {
				err = dbErr
			}
		}
	})
	return err
}
