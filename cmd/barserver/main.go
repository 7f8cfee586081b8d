/*
Barserver runs the BarScript run service: an HTTP API for registering users,
saving scripts, and executing them against posted bar feeds.

Usage:

	barserver [flags]

The flags are:

	-v, --version
		Give the current version of the run service and then exit.

	-l, --listen ADDRESS
		The host:port to listen on. Defaults to the value of the
		BARSCRIPT_LISTEN_ADDRESS environment variable, or ":8080" if unset.

	-s, --secret SECRET
		The secret used to sign auth tokens. Defaults to the value of the
		BARSCRIPT_TOKEN_SECRET environment variable. If that is also unset, a
		random secret is generated and the service will only honor tokens it
		issued during this run.

	-d, --db CONNSTRING
		A database connection string of the form "engine:params", e.g.
		"inmem" or "sqlite:/var/lib/barserver". Defaults to the value of the
		BARSCRIPT_DATABASE environment variable, or "inmem" if unset.

	-c, --config FILE
		Load the full server config (including indicator tuning) from the
		given TOML file. Flags and env vars above are ignored if this is set.
*/
package main

import (
	"crypto/rand"
	"fmt"
	"log"
	"os"

	"github.com/spf13/pflag"

	"github.com/barscript/barscript/config"
	"github.com/barscript/barscript/internal/version"
	"github.com/barscript/barscript/service"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitInitError indicates an issue loading config or connecting to the DB.
	ExitInitError

	// ExitServeError indicates the HTTP server exited with an error.
	ExitServeError
)

var (
	flagVersion = pflag.BoolP("version", "v", false, "Give the current version of the run service and then exit.")
	flagListen  = pflag.StringP("listen", "l", "", "The host:port to listen on.")
	flagSecret  = pflag.StringP("secret", "s", "", "The secret used to sign auth tokens.")
	flagDB      = pflag.StringP("db", "d", "", "A database connection string, e.g. 'inmem' or 'sqlite:/var/lib/barserver'.")
	flagConfig  = pflag.StringP("config", "c", "", "Load the full server config from the given TOML file.")
)

var returnCode = ExitSuccess

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", panicErr))
		}
		os.Exit(returnCode)
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.ServerCurrent)
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not load config: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}

	svc, err := service.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not start service: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}
	defer svc.Close()

	if err := svc.ServeForever(cfg.ListenAddress); err != nil {
		fmt.Fprintf(os.Stderr, "Server exited: %s\n", err.Error())
		returnCode = ExitServeError
	}
}

func loadConfig() (config.Config, error) {
	if *flagConfig != "" {
		return config.Load(*flagConfig)
	}

	cfg := config.Default()

	listen := *flagListen
	if listen == "" {
		listen = os.Getenv("BARSCRIPT_LISTEN_ADDRESS")
	}
	if listen != "" {
		cfg.ListenAddress = listen
	}

	secret := *flagSecret
	if secret == "" {
		secret = os.Getenv("BARSCRIPT_TOKEN_SECRET")
	}
	tokSecret, err := resolveSecret(secret)
	if err != nil {
		return config.Config{}, err
	}
	cfg.TokenSecret = tokSecret

	dbConn := *flagDB
	if dbConn == "" {
		dbConn = os.Getenv("BARSCRIPT_DATABASE")
	}
	if dbConn != "" {
		db, err := config.ParseDBConnString(dbConn)
		if err != nil {
			return config.Config{}, fmt.Errorf("db: %w", err)
		}
		cfg.DB = db
	}

	return cfg.FillDefaults(), nil
}

// resolveSecret pads a too-short secret up to the minimum size by repeating
// it, rejects one that's too long, and generates a random one with a warning
// if none was given at all.
func resolveSecret(secret string) (string, error) {
	if secret == "" {
		log.Printf("WARN: no token secret given; generating a random one for this run only")
		buf := make([]byte, config.MaxSecretSize)
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("generate random secret: %w", err)
		}
		return string(buf), nil
	}

	if len(secret) > config.MaxSecretSize {
		return "", fmt.Errorf("secret: must be no more than %d bytes, got %d", config.MaxSecretSize, len(secret))
	}

	for len(secret) < config.MinSecretSize {
		secret += secret
	}
	if len(secret) > config.MaxSecretSize {
		secret = secret[:config.MaxSecretSize]
	}

	return secret, nil
}
