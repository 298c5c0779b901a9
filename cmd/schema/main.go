// Command schema applies the notes table migrations to the backend's
// Postgres database.
//
// The DSN comes from -dsn, or from NOSPI_DATABASE_DSN (a .env file in the
// working directory is loaded first).
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/nospi-app/nospi/internal/logging"
	"github.com/nospi-app/nospi/internal/schema"
)

const dsnEnv = "NOSPI_DATABASE_DSN"

var errNoDSN = errors.New("no database DSN: pass -dsn or set " + dsnEnv)

func parseDSN(args []string, getenv func(string) string) (string, error) {
	fs := flag.NewFlagSet("schema", flag.ContinueOnError)
	dsn := fs.String("dsn", getenv(dsnEnv), "Postgres DSN")
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if *dsn == "" {
		return "", errNoDSN
	}
	return *dsn, nil
}

// run applies the migrations and returns the first error.
func run(ctx context.Context, args []string, getenv func(string) string) error {
	dsn, err := parseDSN(args, getenv)
	if err != nil {
		return err
	}

	logger := logging.NewTextLogger(os.Stderr, "info")

	db, err := schema.Open(ctx, dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := schema.Apply(ctx, db); err != nil {
		logger.Error(ctx, "schema migration failed", "error", err)
		return err
	}
	logger.Info(ctx, "schema up to date")
	return nil
}

func main() {

	_ = godotenv.Load()

	if err := run(context.Background(), os.Args[1:], os.Getenv); err != nil {
		log.Fatalf("%v", err)
	}

}
