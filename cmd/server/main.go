package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/reflection"

	"github.com/quentinrf/engine-monitor/internal/adapters/csvstore"
	grpcAdapter "github.com/quentinrf/engine-monitor/internal/adapters/grpc"
	"github.com/quentinrf/engine-monitor/internal/adapters/memory"
	"github.com/quentinrf/engine-monitor/internal/adapters/mock"
	"github.com/quentinrf/engine-monitor/internal/adapters/rest"
	"github.com/quentinrf/engine-monitor/internal/adapters/sqlite"
	"github.com/quentinrf/engine-monitor/internal/adapters/xlsx"
	"github.com/quentinrf/engine-monitor/internal/config"
	"github.com/quentinrf/engine-monitor/internal/domain"
	"github.com/quentinrf/engine-monitor/internal/ports"
	"github.com/quentinrf/engine-monitor/pkg/tlsconfig"
)

func main() {
	// Initialize logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Str("log_level", cfg.LogLevel).Msg("invalid log level")
	}
	zerolog.SetGlobalLevel(level)
	if level > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Info().Str("config_file", cfg.ConfigFile).Msg("starting engine monitor")

	// Initialize repository
	var repo domain.ReadingRepository
	switch cfg.RepoType {
	case config.RepoSQLite:
		r, err := sqlite.NewReadingRepository(cfg.DBPath)
		if err != nil {
			log.Fatal().Err(err).Str("db_path", cfg.DBPath).Msg("failed to open SQLite database")
		}
		defer r.Close()
		repo = r
		log.Info().Str("db_path", cfg.DBPath).Msg("initialized SQLite repository")
	case config.RepoMemory:
		repo = memory.NewReadingRepository()
		log.Info().Msg("initialized in-memory repository")
	default:
		repo = csvstore.NewReadingRepository(cfg.DataFile)
		log.Info().Str("data_file", cfg.DataFile).Msg("initialized CSV repository")
	}

	sheet := xlsx.NewSpreadsheet()
	service := ports.NewReadingsService(repo, mock.NewGenerator(nil, nil), sheet, sheet, cfg.ReportDir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.SeedOnStart {
		n, err := ports.NewSeeder(service, cfg.Seed, cfg.SeedDays).SeedOnce(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to seed store")
		}
		log.Info().Int("count", n).Msg("seed finished")
	}

	serverOpts := []grpc.ServerOption{grpc.ChainUnaryInterceptor(grpcAdapter.UnaryRecovery())}

	// Configure TLS if certificates are provided
	tlsFiles := tlsconfig.Files{Cert: cfg.TLSCert, Key: cfg.TLSKey, CA: cfg.TLSCA}
	if tlsFiles.Enabled() {
		tlsCfg, err := tlsconfig.LoadServerTLS(tlsFiles)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load TLS config")
		}
		serverOpts = append(serverOpts, grpc.Creds(credentials.NewTLS(tlsCfg)))
		log.Info().Msg("mTLS enabled")
	} else {
		log.Warn().Msg("tls_cert not set, gRPC starting without TLS (dev mode only)")
	}

	grpcServer := grpc.NewServer(serverOpts...)
	grpcAdapter.RegisterReadingsServer(grpcServer, grpcAdapter.NewReadingsServiceHandler(service))

	// Enable gRPC reflection for grpcurl testing
	reflection.Register(grpcServer)

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		log.Fatal().Err(err).Int("port", cfg.GRPCPort).Msg("failed to listen")
	}

	go func() {
		log.Info().Int("port", cfg.GRPCPort).Msg("gRPC server listening")
		if err := grpcServer.Serve(listener); err != nil {
			log.Fatal().Err(err).Msg("failed to serve gRPC")
		}
	}()

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           rest.NewRouter(service),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to serve HTTP")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down servers...")

	cancel()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP shutdown failed")
	}
	grpcServer.GracefulStop()

	log.Info().Msg("server stopped")
}
