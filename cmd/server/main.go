package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/config"
	gweb "github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/grpcweb"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/handler"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/logging"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/middleware"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/store"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/web"
)

func main() {
	cfgFile := flag.String("config", "", "YAML config file")
	flag.Parse()

	v := config.New()
	if err := config.ReadFile(v, *cfgFile); err != nil {
		log.Fatal(err)
	}
	cfg, err := config.Load(v)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.RequireSecret(); err != nil {
		log.Fatal(err)
	}
	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	src, closeSrc, err := store.OpenSource(ctx, cfg.DatabaseURL, cfg.SeedFile, logger)
	if err != nil {
		logger.Error("catalog", "error", err)
		os.Exit(1)
	}
	defer closeSrc()

	h := handler.New(src, cfg.Secret,
		handler.WithTokenTTL(cfg.TokenTTL),
		handler.WithLoginDelay(cfg.LoginDelay),
		handler.WithLogger(logger),
	)

	// grpc server
	rl := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer rl.Close()
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			middleware.RateLimit(rl, handler.PublicMethods...),
			middleware.Auth(cfg.Secret, handler.PublicMethods...),
		),
	)
	handler.RegisterHealthServiceServer(srv, h)

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		logger.Error("listen", "error", err)
		os.Exit(1)
	}
	go func() {
		logger.Info("grpc listening", "port", cfg.GRPCPort)
		if err := srv.Serve(lis); err != nil {
			logger.Error("grpc", "error", err)
		}
	}()

	// grpc-web bridge -> forwards browser requests to grpc on localhost
	bridge, err := gweb.New("localhost:"+cfg.GRPCPort, logger)
	if err != nil {
		logger.Error("bridge", "error", err)
		os.Exit(1)
	}
	defer bridge.Close()

	site, err := web.New(web.Options{
		Source:        src,
		Secret:        cfg.Secret,
		SecureCookies: cfg.SecureCookies,
		TokenTTL:      cfg.TokenTTL,
		LoginDelay:    cfg.LoginDelay,
		Logger:        logger,
		Limiter:       rl,
		API:           bridge.Handler(),
	})
	if err != nil {
		logger.Error("web", "error", err)
		os.Exit(1)
	}

	httpSrv := &http.Server{
		Addr:              ":" + cfg.WebPort,
		Handler:           site.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("web listening", "port", cfg.WebPort)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http", "error", err)
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	srv.GracefulStop()
}
