package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/specialistvlad/graphua/internal/app"
	"github.com/specialistvlad/graphua/internal/cli"
	"github.com/specialistvlad/graphua/internal/hcl_adapter"
	"github.com/specialistvlad/graphua/internal/uaclient"
)

// main is the entrypoint for the graphua application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The real main function handles errors and exit codes.
	if err := run(ctx, os.Stdout, os.Args[1:]); err != nil {
		stop()
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(ctx context.Context, outW io.Writer, args []string) error {
	if len(args) > 0 && cli.IsClientCommand(args[0]) {
		return runClient(ctx, outW, args[0], args[1:])
	}
	if len(args) > 0 && args[0] == "serve" {
		args = args[1:]
	}
	return serve(ctx, outW, args)
}

func serve(ctx context.Context, outW io.Writer, args []string) (err error) {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	// The app panics on critical config errors, so we recover here to provide
	// a clean exit message to the user.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	graphuaApp := app.NewApp(outW, appConfig, app.DefaultLoaders())
	return graphuaApp.Run(ctx)
}

func runClient(ctx context.Context, outW io.Writer, name string, args []string) error {
	cmd, shouldExit, err := cli.ParseClient(name, args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	client, err := uaclient.Dial(ctx, cmd.Server, uaclient.Options{
		InsecureSkipVerify: cmd.Insecure,
		Timeout:            cmd.Timeout,
	})
	if err != nil {
		return err
	}
	defer client.Close(ctx)

	return cmd.Run(ctx, client, hcl_adapter.NewConverter(), outW)
}
