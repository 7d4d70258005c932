// Package commands implements the mmapctl command line.
package commands

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hupe1980/mmapbuf"
	promcollector "github.com/hupe1980/mmapbuf/metrics/prometheus"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
)

// app carries the state shared by all subcommands of one invocation.
type app struct {
	v           *viper.Viper
	configFile  string
	metricsFile string
	registry    *prometheus.Registry
	collector   *promcollector.Collector
}

// Execute runs the command line with os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds a fresh command tree.
func NewRootCmd() *cobra.Command {
	reg := prometheus.NewRegistry()
	a := &app{
		v:         newViper(),
		registry:  reg,
		collector: promcollector.New(reg),
	}

	root := &cobra.Command{
		Use:   "mmapctl",
		Short: "Edit files in place through a memory-mapped buffer",
		Long: `mmapctl maps a file (or a System V shared segment) and edits it in place.

Sizes accept human-readable values such as 64KiB or 1MB. Every option can also
be set in a config file (--config) or through MMAPCTL_* environment variables,
e.g. MMAPCTL_INCREMENT=1MiB.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.writeMetrics()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file (yaml, toml or json)")
	pf.StringVar(&a.metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")
	pf.String("mode", "", "open mode: r, w, rw or a (default depends on the command)")
	pf.String("scope", "", "mapping scope: shared or private")
	pf.String("length", "", "map a fixed window of this many bytes")
	pf.String("offset", "", "window start in the file")
	pf.String("advice", "", "access hint: normal, sequential, random, willneed or dontneed")
	pf.String("increment", "", "minimum grow step")
	pf.String("memory-limit", "", "cap on mapped bytes")
	pf.String("log-level", "", "log level: debug, info, warn or error")
	pf.Int("ipc-key", 0, "System V key shared with other processes")

	for key, flag := range map[string]string{
		"mode":         "mode",
		"scope":        "scope",
		"length":       "length",
		"offset":       "offset",
		"advice":       "advice",
		"increment":    "increment",
		"memory_limit": "memory-limit",
		"log_level":    "log-level",
	} {
		_ = a.v.BindPFlag(key, pf.Lookup(flag))
	}

	root.AddCommand(
		a.catCmd(),
		a.infoCmd(),
		a.spliceCmd(),
		a.appendCmd(),
		a.subCmd(false),
		a.subCmd(true),
		a.transformCmd(),
		a.flushCmd(),
		a.dumpCmd(),
		a.loadCmd(),
		a.ipcCmd(),
		versionCmd(),
	)
	root.CompletionOptions.DisableDefaultCmd = true
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mmapctl %s (%s)\n", Version, Commit)
		},
	}
}

// open maps path with the configured options. mode applies unless the
// configuration names one.
func (a *app) open(cmd *cobra.Command, path string, mode mmapbuf.Mode) (*mmapbuf.Buffer, error) {
	opts, err := a.options(cmd, mode)
	if err != nil {
		return nil, err
	}
	return mmapbuf.Open(path, opts...)
}

func (a *app) options(cmd *cobra.Command, mode mmapbuf.Mode) ([]mmapbuf.Option, error) {
	cfg, err := a.config(cmd)
	if err != nil {
		return nil, err
	}
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	return append([]mmapbuf.Option{
		mmapbuf.WithMode(mode),
		mmapbuf.WithMetricsCollector(a.collector),
	}, opts...), nil
}

func (a *app) writeMetrics() error {
	if a.metricsFile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(a.metricsFile, a.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
