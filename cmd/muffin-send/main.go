package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/muffinlabs/muffin-metrics"
	"github.com/muffinlabs/muffin-metrics/internal/util"
	"github.com/muffinlabs/muffin-metrics/pkg/registry"
)

var (
	// BuildDate is the date when the binary was built.
	BuildDate string
	// GitCommit is the commit hash when the binary was built.
	GitCommit string
	// Version is the version of the binary.
	Version string
)

const (
	// ParamVerbose enables verbose logging.
	ParamVerbose = "verbose"
	// ParamJSON makes logger log in JSON format.
	ParamJSON = "json"
	// ParamConfigPath provides file with configuration.
	ParamConfigPath = "config-path"
	// ParamVersion makes program output its version.
	ParamVersion = "version"
	// ParamBackend selects the backend to send to.
	ParamBackend = "backend"
	// ParamKind selects the entry kind.
	ParamKind = "kind"
	// ParamRate is the sample rate for counter and timer entries.
	ParamRate = "rate"
	// ParamRetryMaxTime bounds resend attempts.
	ParamRetryMaxTime = "retry-max-time"
)

func main() {
	v, args, version, err := setupConfiguration()
	if err != nil {
		if err == pflag.ErrHelp {
			return
		}
		logrus.Fatalf("Error while parsing configuration: %v", err)
	}
	if version {
		fmt.Printf("Version: %s - Commit: %s - Date: %s\n", Version, GitCommit, BuildDate)
		return
	}
	if err := run(v, args); err != nil {
		logrus.Fatalf("%v", err)
	}
}

func run(v *viper.Viper, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: muffin-send [flags] <stat> <value>")
	}
	stat := args[0]
	value, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("value %q is not a number: %v", args[1], err)
	}

	logger := logrus.StandardLogger()
	reg, err := registry.NewFromViper(v, logger)
	if err != nil {
		return err
	}

	ctx, cancelFunc := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancelFunc()

	// The core never retries; resending on transport failure is this
	// caller's decision.
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = v.GetDuration(ParamRetryMaxTime)
	return backoff.Retry(func() error {
		err := sendOnce(ctx, reg, v, stat, value)
		var terr *metrics.TransportError
		if err != nil && !errors.As(err, &terr) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(bo, ctx))
}

func sendOnce(ctx context.Context, reg *registry.Registry, v *viper.Viper, stat string, value float64) error {
	backend := v.GetString(ParamBackend)
	kind := v.GetString(ParamKind)
	if kind == "raw" {
		return reg.Send(ctx, stat, value, backend)
	}

	c, err := reg.StatsdClient(ctx, backend)
	if err != nil {
		return err
	}
	defer c.Close()

	rate := v.GetFloat64(ParamRate)
	switch kind {
	case "counter":
		return c.Incr(stat, int64(value), rate)
	case "gauge":
		return c.Gauge(stat, value)
	case "timer":
		return c.Timing(stat, int64(value), rate)
	default:
		return fmt.Errorf("unknown entry kind %q", kind)
	}
}

func setupConfiguration() (*viper.Viper, []string, bool, error) {
	v := viper.New()
	defer setupLogger(v) // Apply logging configuration in case of early exit
	util.InitViper(v)

	var version bool

	cmd := pflag.NewFlagSet(os.Args[0], pflag.ContinueOnError)

	cmd.BoolVar(&version, ParamVersion, false, "Print the version and exit")
	cmd.Bool(ParamVerbose, false, "Verbose")
	cmd.Bool(ParamJSON, false, "Log in JSON format")
	cmd.String(ParamConfigPath, "", "Path to the configuration file")
	cmd.String(ParamBackend, "", "Backend to send to, the default backend when empty")
	cmd.String(ParamKind, "raw", "Entry kind: raw, counter, gauge or timer")
	cmd.Float64(ParamRate, 1, "Sample rate for counter and timer entries")
	cmd.Duration(ParamRetryMaxTime, 15*time.Second, "Give up resending after this long")

	cmd.VisitAll(func(flag *pflag.Flag) {
		if err := v.BindPFlag(flag.Name, flag); err != nil {
			panic(err) // Should never happen
		}
	})

	if err := cmd.Parse(os.Args[1:]); err != nil {
		return nil, nil, false, err
	}

	configPath := v.GetString(ParamConfigPath)
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, nil, false, err
		}
	}

	return v, cmd.Args(), version, nil
}

func setupLogger(v *viper.Viper) {
	if v.GetBool(ParamVerbose) {
		logrus.SetLevel(logrus.DebugLevel)
	}
	if v.GetBool(ParamJSON) {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
