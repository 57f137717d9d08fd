package main

import (
	"io"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const QtestVersion = "0.0.1"

func main() {
	logger := log.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&log.TextFormatter{DisableTimestamp: true})

	opts := DefaultOptions()
	root := &cobra.Command{
		Use:          "qtest",
		Short:        "Interactive tester for the string queue",
		Version:      QtestVersion,
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(opts, logger)
		},
	}

	flags := root.Flags()
	flags.StringVarP(&opts.File, "file", "f", "", "Read commands from file")
	flags.StringVarP(&opts.LogFile, "log", "l", "", "Copy output to file")
	flags.IntVarP(&opts.Verbose, "verbose", "v", DefaultVerbose, "Verbosity level (0-3)")
	flags.IntVar(&opts.FailPercent, "fail", 0, "Percentage of allocations that fail")
	flags.IntVar(&opts.StringLength, "length", DefaultStringLength, "Buffer size for removed strings")
	flags.IntVar(&opts.ErrorLimit, "error-limit", DefaultErrorLimit, "Number of errors before exiting")
	flags.Int64Var(&opts.Seed, "seed", 1, "Seed for allocation failures")

	if err := root.Execute(); err != nil {
		logger.Fatalf("failed to execute root command: \n%v", err)
	}
}

func run(opts *Options, logger *log.Logger) error {
	logger.SetLevel(logLevel(opts.Verbose))

	var in io.Reader = os.Stdin
	echo := false
	if opts.File != "" {
		if !FileExists(opts.File) {
			return errors.Errorf("qtest : command file %s does not exist", opts.File)
		}

		file, err := os.Open(opts.File)
		if err != nil {
			return errors.Wrap(err, "qtest : failed to open command file")
		}
		defer file.Close()

		in = file
		echo = true
	}

	console, err := NewConsole(opts, logger, os.Stdout)
	if err != nil {
		return err
	}
	logger.WithField("file", opts.File).Info("qtest started")

	runErr := console.Run(in, echo)
	if err := console.Close(); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}

	if n := console.Errors(); n > 0 {
		return errors.Errorf("%d errors reported", n)
	}
	return nil
}
