//go:build functional

package test_functional

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/config"
	"github.com/Rogue-Bear-Innovations/shopmap-back/pkg/client"
)

const readyTimeout = 10 * time.Second

var (
	AppBaseURL url.URL
	API        *client.Client
	DBConn     *pgx.Conn
)

// TestMain runs against an app started with the same SHOPMAP_* environment.
func TestMain(m *testing.M) {
	code, err := run(m)
	if err != nil {
		log.Fatalf("functional tests: %v", err)
	}
	os.Exit(code)
}

func run(m *testing.M) (int, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return 0, errors.Wrap(err, "load config")
	}
	if cfg.DBDriver != config.DBDriverPostgres {
		return 0, errors.Errorf("functional tests need the postgres driver, got %s", cfg.DBDriver)
	}

	AppBaseURL = url.URL{
		Scheme: "http",
		Host:   cfg.Host + ":" + cfg.Port,
	}
	API = client.New(AppBaseURL.String())

	ctx, cancel := context.WithTimeout(context.Background(), readyTimeout)
	defer cancel()

	if err := API.WaitReady(ctx, 200*time.Millisecond); err != nil {
		return 0, err
	}

	DBConn, err = pgx.Connect(ctx, postgresURL(cfg))
	if err != nil {
		return 0, errors.Wrap(err, "connect postgres")
	}
	defer DBConn.Close(context.Background())

	return m.Run(), nil
}

func postgresURL(cfg *config.Config) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.DBUser, cfg.DBPassword),
		Host:     cfg.DBHost + ":" + cfg.DBPort,
		Path:     "/" + cfg.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", cfg.DBSSLMode),
	}
	return u.String()
}

// FlushDB empties every table between tests.
func FlushDB() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	_, err := DBConn.Exec(ctx, "TRUNCATE favorite_shops, reviews, shops, tokens, users RESTART IDENTITY CASCADE")
	if err != nil {
		panic(err)
	}
}
