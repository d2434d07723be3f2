// Package supervisor wires a watcher's CDP source, event pipeline, ring
// buffers, file logger, network capture, HTTP server, and heartbeat
// together, and owns orderly shutdown, per spec.md §4.9 and §2 "Watcher
// supervisor".
package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vforsh/argus/internal/cdp"
	"github.com/vforsh/argus/internal/cdpsrc"
	"github.com/vforsh/argus/internal/events"
	"github.com/vforsh/argus/internal/filelog"
	"github.com/vforsh/argus/internal/heartbeat"
	"github.com/vforsh/argus/internal/httpapi"
	"github.com/vforsh/argus/internal/model"
	"github.com/vforsh/argus/internal/netcap"
	"github.com/vforsh/argus/internal/ops"
	"github.com/vforsh/argus/internal/registry"
	"github.com/vforsh/argus/internal/ring"
	"github.com/vforsh/argus/internal/storage"
)

// Config configures one watcher process.
type Config struct {
	ChromeHost string
	ChromePort int
	Criteria   cdpsrc.Criteria
	Mode       httpapi.Mode

	BindHost string
	BindPort int

	LogDir       string
	MaxLogFiles  int
	RingCapacity int
	HeartbeatMs  int

	RegistryStore *registry.Store
	Uploader      storage.Uploader
	IgnorePatterns []string
	Logger        *slog.Logger
}

// Supervisor owns every per-watcher component and coordinates shutdown.
type Supervisor struct {
	cfg       Config
	id        string
	source    cdpsrc.Source
	logs      *ring.LogBuffer
	nets      *ring.NetBuffer
	fileLog   *filelog.Logger
	capture   *netcap.Capture
	emulation *ops.EmulationController
	throttle  *ops.ThrottleController
	tracer    *ops.Tracer
	server    *httpapi.Server
	listener  net.Listener
	logger    *slog.Logger

	mu         sync.Mutex
	pageURL    string
	pageTitle  string
	cancel     context.CancelFunc
	stopOnce   sync.Once
	stoppedCh  chan struct{}
}

// New constructs a Supervisor from cfg, ready for Run.
func New(cfg Config) (*Supervisor, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ignoreList, err := events.NewIgnoreList(cfg.IgnorePatterns)
	if err != nil {
		return nil, fmt.Errorf("supervisor: invalid ignore pattern: %w", err)
	}

	s := &Supervisor{
		cfg:       cfg,
		id:        uuid.New().String(),
		source:    cdpsrc.NewCDPSource(cfg.ChromeHost, cfg.ChromePort, cfg.Criteria),
		logs:      ring.NewLogBuffer(cfg.RingCapacity),
		nets:      ring.NewNetBuffer(cfg.RingCapacity),
		emulation: ops.NewEmulationController(),
		throttle:  ops.NewThrottleController(),
		tracer:    ops.NewTracer(),
		logger:    logger,
		stoppedCh: make(chan struct{}),
	}

	s.fileLog = filelog.New(cfg.LogDir, s.id, cfg.MaxLogFiles)

	selector := &events.LocationSelector{Ignore: ignoreList, Resolver: events.NoopResolver{}}
	pipeline := events.NewPipeline(nil, selector, s.sinkLogEvent, s.currentPage)
	s.capture = netcap.NewCapture(s.sinkNetEvent)

	s.source.OnAttach(func(sess *cdp.Session, target cdpsrc.Target) {
		s.mu.Lock()
		s.pageURL = target.URL
		s.pageTitle = target.Title
		s.mu.Unlock()

		pipeline.Serializer.Session = sess
		pipeline.Attach(sess)
		s.capture.Attach(sess)
		if err := s.emulation.Apply(sess); err != nil {
			s.logger.Warn("supervisor: failed to apply desired emulation state", "err", err)
		}
		if err := s.throttle.Apply(sess); err != nil {
			s.logger.Warn("supervisor: failed to apply desired throttle state", "err", err)
		}
	})
	s.source.OnDetach(func(error) {
		s.capture.Detach()
	})
	s.source.OnPageNavigation(func(url, title string) {
		s.mu.Lock()
		s.pageURL = url
		s.mu.Unlock()
		s.fileLog.Rotate()
	})

	s.server = httpapi.New(&httpapi.Server{
		Source:    s.source,
		Logs:      s.logs,
		Nets:      s.nets,
		Emulation: s.emulation,
		Throttle:  s.throttle,
		Tracer:    s.tracer,
		Uploader:  cfg.Uploader,
		WatcherID: s.id,
		Mode:      cfg.Mode,
		Record:    s.currentRecord,
		Shutdown:  s.Stop,
		OnRequest: s.logRequest,
		Logger:    logger,
	})

	return s, nil
}

func (s *Supervisor) sinkLogEvent(e model.LogEvent) {
	s.logs.Add(e)
	s.fileLog.Append(e)
}

func (s *Supervisor) sinkNetEvent(n model.NetworkRequestSummary) {
	s.nets.Add(n)
}

func (s *Supervisor) currentPage() events.PageInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return events.PageInfo{URL: s.pageURL, Title: s.pageTitle}
}

func (s *Supervisor) currentRecord() registry.WatcherRecord {
	_, attached := s.source.Target()
	rec := registry.WatcherRecord{
		ID:  s.id,
		PID: os.Getpid(),
	}
	if attached {
		rec.CDP = &registry.CDPEndpoint{Host: s.cfg.ChromeHost, Port: s.cfg.ChromePort}
	}
	return rec
}

func (s *Supervisor) logRequest(endpoint, remoteAddr, query string, ts time.Time) {
	s.logger.Debug("http request", "endpoint", endpoint, "remoteAddr", remoteAddr, "query", query, "ts", ts)
}

// Run starts the CDP source, binds the HTTP listener, starts the
// heartbeat, and serves until Stop is called or ctx is cancelled.
func (s *Supervisor) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	addr := fmt.Sprintf("%s:%d", s.cfg.BindHost, s.cfg.BindPort)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		cancel()
		return fmt.Errorf("supervisor: failed to bind %s: %w", addr, err)
	}
	s.listener = ln
	boundPort := ln.Addr().(*net.TCPAddr).Port

	cwd, _ := os.Getwd()
	rec := registry.WatcherRecord{
		ID:        s.id,
		Host:      s.cfg.BindHost,
		Port:      boundPort,
		PID:       os.Getpid(),
		Cwd:       cwd,
		StartedAt: time.Now(),
		UpdatedAt: time.Now(),
		CDP:       &registry.CDPEndpoint{Host: s.cfg.ChromeHost, Port: s.cfg.ChromePort},
	}

	s.fileLog.SetHeader(filelog.Header{
		WatcherID:  s.id,
		StartedAt:  rec.StartedAt,
		ChromeHost: s.cfg.ChromeHost,
		ChromePort: s.cfg.ChromePort,
		MatchDesc:  s.cfg.Criteria.Describe(),
	})

	hb := heartbeat.New(s.cfg.RegistryStore, rec, s.cfg.HeartbeatMs, s.logger)
	go hb.Run(ctx)

	s.source.Start(ctx)

	httpSrv := &http.Server{Handler: s.server.Handler()}
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			s.logger.Error("supervisor: http server error", "err", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = httpSrv.Shutdown(shutdownCtx)
	s.source.Close()
	s.fileLog.Close()
	close(s.stoppedCh)
	return nil
}

// Stop triggers orderly shutdown; Run returns once teardown completes.
func (s *Supervisor) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		cancel := s.cancel
		s.mu.Unlock()
		if cancel != nil {
			cancel()
		}
	})
}

// Stopped returns a channel closed once Run has fully torn down.
func (s *Supervisor) Stopped() <-chan struct{} {
	return s.stoppedCh
}
