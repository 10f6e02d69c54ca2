// Command monitor polls a running roster API the way the dashboard does and
// logs each refresh.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/rosterhub/internal/client"
	"github.com/geocoder89/rosterhub/internal/observability"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	defaultURL := os.Getenv("ROSTER_API_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:3000"
	}

	apiURL := flag.String("api-url", defaultURL, "base URL of the roster API")
	interval := flag.Duration("interval", client.DefaultPollInterval, "health poll interval")
	deleteID := flag.Int("delete", 0, "delete this user id, re-sync and exit")
	flag.Parse()

	log := observability.NewLogger(os.Getenv("APP_ENV"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := client.New(*apiURL, nil)

	p := client.NewPoller(c, *interval, func(s client.Snapshot) {
		if s.Err != nil {
			log.Warn("refresh failed", "err", s.Err)
			return
		}
		if s.Health != nil {
			log.Info("api status",
				"status", s.Health.Status,
				"api_timestamp", s.Health.Timestamp,
				"uptime", client.FormatUptime(s.Health.Uptime),
				"refreshed_at", s.LastRefreshed.Format(time.RFC3339),
				"users", len(s.Users),
			)
		}
	})

	if *deleteID > 0 {
		if _, err := p.DeleteUser(ctx, *deleteID); err != nil {
			os.Exit(1)
		}
		log.Info("user deleted", "id", *deleteID)
		return
	}

	p.SyncUsers(ctx)

	if err := p.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error("monitor stopped", "err", err)
		os.Exit(1)
	}
}
