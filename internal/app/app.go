package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"

	"github.com/lcalzada-xor/wsniff/internal/adapters/fingerprint"
	grpchealth "github.com/lcalzada-xor/wsniff/internal/adapters/grpc"
	"github.com/lcalzada-xor/wsniff/internal/adapters/mqtt"
	"github.com/lcalzada-xor/wsniff/internal/adapters/sniffer/capture"
	"github.com/lcalzada-xor/wsniff/internal/adapters/sniffer/driver"
	"github.com/lcalzada-xor/wsniff/internal/adapters/sniffer/hopping"
	"github.com/lcalzada-xor/wsniff/internal/adapters/sniffer/parser"
	"github.com/lcalzada-xor/wsniff/internal/adapters/web/middleware"
	webserver "github.com/lcalzada-xor/wsniff/internal/adapters/web/server"
	"github.com/lcalzada-xor/wsniff/internal/config"
	"github.com/lcalzada-xor/wsniff/internal/core/domain"
	"github.com/lcalzada-xor/wsniff/internal/core/ports"
	"github.com/lcalzada-xor/wsniff/internal/core/services/engine"
	"github.com/lcalzada-xor/wsniff/internal/telemetry"
)

// OUIDBCacheSize bounds the in-memory cache in front of the vendor registry.
const OUIDBCacheSize = 10000

// Application holds the core components of the application.
type Application struct {
	Config     *config.Config
	Engine     *engine.Engine
	Resolver   *fingerprint.Resolver
	WebServer  *webserver.Server
	GrpcServer *grpc.Server
	Health     *grpchealth.HealthServer
	Publisher  *mqtt.Publisher
}

// New creates a new Application instance and bootstraps its components.
func New(cfg *config.Config) (*Application, error) {
	app := &Application{
		Config: cfg,
	}

	if err := app.bootstrap(); err != nil {
		return nil, fmt.Errorf("application bootstrap failed: %w", err)
	}

	return app, nil
}

// bootstrap orchestrates the initialization sequence.
func (app *Application) bootstrap() error {
	telemetry.InitMetrics()

	app.Resolver = fingerprint.NewResolver(app.initVendors())

	mode, err := parser.ParseHeaderMode(app.Config.HeaderMode)
	if err != nil {
		return err
	}
	decoder := parser.NewDecoder(mode, app.Config.HeaderLen)

	opener, modes, switcher := app.initCapture()

	app.Engine = engine.New(engine.Options{
		Opener:      opener,
		Decoder:     decoder,
		Modes:       modes,
		Scheduler:   hopping.NewScheduler(app.Config.HopInterval, switcher),
		Vendors:     app.Resolver,
		Interface:   app.Config.Interface,
		SettleDelay: app.Config.SettleDelay,
	})

	auth := middleware.BasicAuth{
		Username:     app.Config.APIUser,
		PasswordHash: app.Config.APIPasswordHash,
	}
	if !auth.Enabled() {
		log.Println("Warning: API authentication disabled (no password hash configured)")
	}
	app.WebServer = webserver.NewServer(app.Config.Addr, app.Engine, auth)

	if app.Config.GRPCAddr != "" {
		app.Health = grpchealth.NewHealthServer(app.Engine, grpchealth.DefaultPollInterval)
		app.GrpcServer = grpchealth.NewGrpcServer(app.Health)
	}

	if app.Config.MQTTBroker != "" {
		app.Publisher = mqtt.New(mqtt.Config{
			Broker: app.Config.MQTTBroker,
			Topic:  app.Config.MQTTTopic,
		}, app.Engine, slog.Default())
	}

	return nil
}

// initVendors chains the SQLite registry, when configured, in front of
// the vendor list file.
func (app *Application) initVendors() fingerprint.VendorRepository {
	var repos []fingerprint.VendorRepository

	if app.Config.OUIDBPath != "" {
		ouiDB, err := fingerprint.NewOUIDatabase(app.Config.OUIDBPath, OUIDBCacheSize)
		if err != nil {
			log.Printf("Warning: Failed to load OUI database: %v. Using vendor list only.", err)
		} else {
			repos = append(repos, ouiDB)
		}
	}
	if app.Config.OUIPath != "" {
		repos = append(repos, fingerprint.NewFileVendorRepository(app.Config.OUIPath))
	}

	return fingerprint.NewCompositeVendorRepository(repos...)
}

// initCapture selects the frame source. Replaying a pcap needs no radio,
// so mode and channel changes become no-ops.
func (app *Application) initCapture() (ports.SourceOpener, ports.ModeController, hopping.ChannelSwitcher) {
	var (
		opener   ports.SourceOpener
		modes    ports.ModeController
		switcher hopping.ChannelSwitcher
	)

	if app.Config.ReplayPath != "" {
		log.Printf("Replay mode: reading frames from %s", app.Config.ReplayPath)
		opener = capture.ReplayOpener{Path: app.Config.ReplayPath}
		modes = offlineRadio{}
		switcher = offlineRadio{}
	} else {
		opener = capture.RawSocketOpener{}
		modes = driver.NewModeController()
		switcher = hopping.NewLinuxChannelSwitcher()
		app.checkChannels()
	}

	if app.Config.PcapPath != "" {
		log.Printf("Recording captured frames to %s", app.Config.PcapPath)
		opener = capture.RecordingOpener{Opener: opener, Path: app.Config.PcapPath}
	}
	return opener, modes, switcher
}

func (app *Application) checkChannels() {
	missing, err := driver.MissingChannels(app.Config.Interface)
	if err != nil {
		log.Printf("Could not query supported channels for %s: %v", app.Config.Interface, err)
		return
	}
	if len(missing) > 0 {
		log.Printf("Warning: %s does not support channels %v; hops to them will fail", app.Config.Interface, missing)
	}
}

// Run starts the application components and blocks until ctx is done or a
// server fails. The engine is stopped before Run returns.
func (app *Application) Run(ctx context.Context) error {
	slog.Info("Starting wsniff components...")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errChan := make(chan error, 3)

	go func() {
		if err := app.WebServer.Run(ctx); err != nil {
			errChan <- fmt.Errorf("web server error: %w", err)
		}
	}()

	if app.GrpcServer != nil {
		go app.Health.Run(ctx)
		go func() {
			log.Printf("gRPC Server listening on %s", app.Config.GRPCAddr)
			lis, err := net.Listen("tcp", app.Config.GRPCAddr)
			if err != nil {
				errChan <- fmt.Errorf("grpc listen error: %w", err)
				return
			}

			go func() {
				<-ctx.Done()
				app.GrpcServer.GracefulStop()
			}()

			if err := app.GrpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				errChan <- fmt.Errorf("grpc server error: %w", err)
			}
		}()
	}

	if app.Publisher != nil {
		go func() {
			if err := app.Publisher.Start(ctx); err != nil {
				log.Printf("MQTT publisher error: %v", err)
			}
		}()
	}

	if app.Config.AutoStart {
		if err := app.Engine.Start(ctx, ""); err != nil {
			log.Printf("Autostart failed: %v", err)
		}
	}

	slog.Info("wsniff ready. Press Ctrl+C to terminate.", "interface", app.Engine.Interface())

	var runErr error
	select {
	case <-ctx.Done():
		slog.Info("Termination signal received")
	case runErr = <-errChan:
	}

	app.cleanup()
	return runErr
}

// cleanup stops capture, which restores managed mode, and releases the
// vendor backends.
func (app *Application) cleanup() {
	slog.Info("Cleaning up resources...")

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.Engine.Stop(stopCtx); err != nil {
		log.Printf("Error stopping engine: %v", err)
	}
	if app.Publisher != nil {
		if err := app.Publisher.Stop(stopCtx); err != nil {
			log.Printf("Error disconnecting MQTT: %v", err)
		}
	}
	if err := app.Resolver.Close(); err != nil {
		log.Printf("Error closing vendor repository: %v", err)
	}
}

// offlineRadio stands in for the driver when frames come from a file.
type offlineRadio struct{}

func (offlineRadio) SetMode(string, domain.WifiMode) error { return nil }

func (offlineRadio) SetChannel(string, int) error { return nil }
