// Command snakeql trains tabular Q-learning agents to play Snake with
// expiring food and poison, and replays trained agents in a terminal.
//
// Usage:
//
//	snakeql train [flags]       train on a single environment
//	snakeql curriculum [flags]  train on a sequence of environments
//	snakeql play [flags]        replay a trained agent greedily
//	snakeql inspect [flags]     print statistics of a trained table
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "snakeql:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		usage(stderr)
		return fmt.Errorf("missing command")
	}

	switch args[0] {
	case "train":
		return trainCmd(args[1:], stdout, stderr)
	case "curriculum":
		return curriculumCmd(args[1:], stdout, stderr)
	case "play":
		return playCmd(args[1:], stdout, stderr)
	case "inspect":
		return inspectCmd(args[1:], stdout, stderr)
	case "help", "-h", "-help", "--help":
		usage(stdout)
		return nil
	}
	usage(stderr)
	return fmt.Errorf("unknown command %q", args[0])
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: snakeql <train|curriculum|play|inspect> [flags]")
}

// newFlagSet returns a flag set which reports errors instead of
// exiting
func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

// newLogger returns a text logger writing to w and installs it as the
// default logger
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}
