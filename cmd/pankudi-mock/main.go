package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pankudi/visualizer/internal/config"
	"github.com/pankudi/visualizer/internal/mock"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")
	port := flag.Int("port", 0, "Override server port")
	watch := flag.Bool("watch", true, "Reload mock timings when the config file changes")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port > 0 {
		cfg.Mock.Port = *port
	}
	if err := cfg.Mock.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	assistant := mock.NewAssistant(ctx, cfg.Mock)

	if *watch {
		if _, err := os.Stat(*configPath); err == nil {
			cw, err := mock.WatchConfig(*configPath, assistant)
			if err != nil {
				log.Printf("Config watch disabled: %v", err)
			} else {
				defer cw.Close()
			}
		}
	}

	srv := &http.Server{
		Addr:              mock.Addr(cfg.Mock.Host, cfg.Mock.Port),
		Handler:           mock.NewServer(assistant).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Mock assistant listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	case <-ctx.Done():
		log.Println("Shutting down...")
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown: %v", err)
		}
		assistant.Wait()
	}
}
