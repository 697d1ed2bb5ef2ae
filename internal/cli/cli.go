package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/graphua/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// pathList is a repeatable flag that also splits comma separated values.
type pathList []string

func (p *pathList) String() string { return strings.Join(*p, ",") }

func (p *pathList) Set(v string) error {
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			*p = append(*p, s)
		}
	}
	return nil
}

// Parse processes the arguments of the serve command. It returns a populated
// Config, a boolean indicating if the program should exit cleanly, or an
// ExitError. Flags left at zero are filled later from the file `server` block
// and then from the defaults.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("graphua", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
Graphua - A property graph served as an OPC-UA style address space.

Usage:
  graphua [serve] [options] [CONFIG_PATH...]
  graphua browse|read|write|call [options] ARGS...

Arguments:
  CONFIG_PATH
    Path to a .hcl/.yaml/.yml file or a directory containing them.

Options:
`)
		flagSet.PrintDefaults()
	}

	var paths pathList
	flagSet.Var(&paths, "config", "Config file or directory. Repeatable, or comma separated.")
	listenFlag := flagSet.String("listen", "", fmt.Sprintf("Address of the main server. (default %q)", app.DefaultListen))
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for a separate HTTP health check server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "", fmt.Sprintf("Log output format. Options: 'text' or 'json'. (default %q)", app.DefaultLogFormat))
	logLevelFlag := flagSet.String("log-level", "", fmt.Sprintf("Set the logging level. Options: 'debug', 'info', 'warn', 'error'. (default %q)", app.DefaultLogLevel))
	workersFlag := flagSet.Int("workers", 0, fmt.Sprintf("Number of workers serving protocol requests. (default %d)", app.DefaultWorkers))
	queueFlag := flagSet.Int("event-queue", 0, fmt.Sprintf("Capacity of the event and request queues. (default %d)", app.DefaultEventQueue))
	nsFlag := flagSet.Int("namespace", 0, fmt.Sprintf("Namespace index of graph elements. (default %d)", app.DefaultNamespace))

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	paths = append(paths, flagSet.Args()...)
	slog.Debug("Config paths determined.", "paths", []string(paths))

	config, err := app.NewConfig(app.Config{
		ConfigPaths:     paths,
		Listen:          *listenFlag,
		HealthcheckPort: *healthPortFlag,
		LogFormat:       strings.ToLower(*logFormatFlag),
		LogLevel:        strings.ToLower(*logLevelFlag),
		Workers:         *workersFlag,
		EventQueue:      *queueFlag,
		Namespace:       *nsFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
