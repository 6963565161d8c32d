package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/navbus/navbus/config"
	"github.com/navbus/navbus/core/dispatch"
	coremetrics "github.com/navbus/navbus/core/metrics"
	coremon "github.com/navbus/navbus/core/monitoring"
	"github.com/navbus/navbus/core/persist"
	"github.com/navbus/navbus/infra/logger"
	"github.com/navbus/navbus/infra/metrics"
	"github.com/navbus/navbus/infra/monitoring"
	"github.com/navbus/navbus/infra/mqtt"
	"github.com/navbus/navbus/infra/nmea0183"
	"github.com/navbus/navbus/infra/nmea2000"
	"github.com/navbus/navbus/infra/serialport"
	"github.com/navbus/navbus/internal/eventbus"
)

// Service wires the dispatcher to its producers and consumers.
type Service struct {
	Dispatcher *dispatch.Dispatcher

	cfg      *config.Config
	bus      *eventbus.Bus
	sink     coremetrics.ValueSink
	store    persist.Store
	recorder *persist.Recorder
	client   *mqtt.Client
	uploader *mqtt.Uploader
	log      logger.Logger

	// openSerial and openCAN are replaced in tests.
	openSerial func(serialport.Config) (io.ReadCloser, error)
	openCAN    func(path string) (io.ReadCloser, error)
}

// New creates a Service from the configuration. Network and file resources
// of the consumers are acquired here; producers are opened by Run.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Monitoring)
	if err != nil {
		return nil, fmt.Errorf("monitoring: %w", err)
	}
	coremon.Init(mon)

	d := dispatch.New(cfg.Dispatcher, logger.New("dispatcher"))
	bus := eventbus.New()
	d.SetBus(bus)

	sink, err := coremetrics.NewSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	svc := &Service{
		Dispatcher: d,
		cfg:        cfg,
		bus:        bus,
		sink:       sink,
		log:        logg,
		openSerial: openSerial,
		openCAN:    openCAN,
	}

	if cfg.Persistence.Enabled() {
		store, err := persist.NewStore(cfg.Persistence.Module())
		if err != nil {
			return nil, fmt.Errorf("persistence: %w", err)
		}
		svc.store = store
		svc.recorder = persist.NewRecorder(d, store, cfg.Persistence.FlushInterval(), logger.New("recorder"))
		logg.Infof("recording session %s to %s store", svc.recorder.Session(), cfg.Persistence.Type)
	}

	if cfg.Telemetry.Enabled {
		client, err := mqtt.NewClient(cfg.MQTT)
		if err != nil {
			svc.Close()
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		svc.client = client
		svc.uploader = mqtt.NewUploader(client, d, cfg.Telemetry.UploaderOptions())
	}
	return svc, nil
}

func openSerial(cfg serialport.Config) (io.ReadCloser, error) {
	return serialport.Open(cfg.Device, cfg.Options())
}

func openCAN(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

// Run starts producers and consumers and blocks until the context is
// canceled. A failing producer is reported and the others keep running; a
// metrics endpoint that cannot listen stops the service.
func (s *Service) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	// The collector subscribes before producers start so no event is missed.
	if _, nop := s.sink.(coremetrics.NopSink); !nop {
		done := metrics.StartEventCollector(gctx, s.bus, s.sink)
		g.Go(func() error {
			<-done
			return nil
		})
	}

	if s.cfg.Serial.Enabled {
		g.Go(func() error {
			s.runProducer(gctx, "serial", func() (io.ReadCloser, error) { return s.openSerial(s.cfg.Serial) },
				func(ctx context.Context, r io.Reader) error {
					return nmea0183.NewReader(s.Dispatcher, s.cfg.Serial.Source, logger.New("nmea0183")).Run(ctx, r)
				})
			return nil
		})
	}
	if s.cfg.CAN.Enabled {
		g.Go(func() error {
			s.runProducer(gctx, "can", func() (io.ReadCloser, error) { return s.openCAN(s.cfg.CAN.Path) },
				func(ctx context.Context, r io.Reader) error {
					return nmea2000.NewReader(s.Dispatcher, logger.New("nmea2000")).Run(ctx, r)
				})
			return nil
		})
	}
	if s.recorder != nil {
		g.Go(func() error {
			s.recorder.Run(gctx)
			return nil
		})
	}
	if s.uploader != nil {
		g.Go(func() error {
			s.uploader.Run(gctx)
			return nil
		})
	}
	if port := s.cfg.Metrics.PrometheusPort; port != "" {
		g.Go(func() error {
			if err := metrics.StartPromServer(gctx, port); err != nil {
				return fmt.Errorf("prom server: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})
	return g.Wait()
}

func (s *Service) runProducer(ctx context.Context, name string, open func() (io.ReadCloser, error), run func(context.Context, io.Reader) error) {
	defer coremon.Recover()
	rc, err := open()
	if err != nil {
		s.log.Errorf("%s producer: %v", name, err)
		coremon.CaptureException(err, map[string]string{"producer": name})
		return
	}
	defer rc.Close()
	s.log.Infof("%s producer started", name)
	if err := run(ctx, rc); err != nil && ctx.Err() == nil {
		s.log.Errorf("%s producer stopped: %v", name, err)
		coremon.CaptureException(err, map[string]string{"producer": name})
		return
	}
	s.log.Infof("%s producer finished", name)
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	var err error
	if s.client != nil {
		s.client.Disconnect()
	}
	if s.store != nil {
		err = s.store.Close()
	}
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	s.bus.Close()
	coremon.Flush(2 * time.Second)
	return err
}
