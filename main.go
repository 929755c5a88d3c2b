package main

import (
	"flag"
	"fmt"
	"os"
	"zelus/internal/config"
	"zelus/internal/logging"
)

// Version holds the build-time version string.
var Version = "unknown" // nolint:gochecknoglobals

func main() {
	configPath := flag.String("config", "", "path to the JSON configuration file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, help()) }
	flag.Parse()

	if err := run(flag.Args(), *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

func run(args []string, configPath string) error {
	var cmd string
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "version":
		fmt.Fprintf(os.Stdout, "Zelus %s\n", Version)
		return nil
	case "help":
		fmt.Fprint(os.Stdout, help())
		return nil
	case "serve", "dev:fixtures", "data:import", "config:write":
	default:
		fmt.Fprint(os.Stderr, help())
		os.Exit(1)
	}

	conf, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := logging.New(logging.ParseLevel(conf.LogLevel), conf.DevMode)
	defer log.Sync() // nolint:errcheck

	switch cmd {
	case "dev:fixtures":
		return loadFixtures(conf, log)
	case "data:import":
		return importData(conf, log, args)
	case "config:write":
		return writeConfig(conf, configPath, log)
	default:
		return serve(conf, log)
	}
}

func help() string {
	return fmt.Sprintf(`
Zelus serves cricket statistics from a local SQLite database as HTML pages
and JSON for the visualizations.

Usage: %[1]s [-config PATH] COMMAND [ARGS]

COMMANDS
    serve        start the HTTP server
    data:import PATH...
                 load Cricsheet JSON matches (zip archives as found on
                 https://cricsheet.org/downloads/, directories or .json
                 files) into the database, creating it if needed
    dev:fixtures create a demo database at the configured path
    config:write write the current configuration to the config file
    help         display this help
    version      display the current version

ENVIRONMENT
    ZELUS_PORT, PORT      listening port (default 3000)
    ZELUS_DB              database file (default ./zelus.db)
    ZELUS_RESOURCES       templates, static files, locales and migrations
    ZELUS_QUERIES         directory of .sql files overriding the catalog
    ZELUS_QUERY_TIMEOUT   time budget of a single query (default 5s)
    ZELUS_RATE_LIMIT      max requests per second, 0 to disable
    ZELUS_LOG_LEVEL       debug, info, warn or error
    ZELUS_DEV             show error details and log to the console
`,
		os.Args[0],
	)
}
