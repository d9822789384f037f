package main

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/crimson-sun/spfeed/internal/config"
	"github.com/crimson-sun/spfeed/internal/logging"
	"github.com/crimson-sun/spfeed/internal/output"
	"github.com/crimson-sun/spfeed/internal/output/async"
	"github.com/crimson-sun/spfeed/internal/output/file"
	"github.com/crimson-sun/spfeed/internal/output/multi"
	"github.com/crimson-sun/spfeed/internal/output/stdout"
	"github.com/crimson-sun/spfeed/internal/pipeline"
	"github.com/crimson-sun/spfeed/internal/source"
	"github.com/crimson-sun/spfeed/internal/taxonomy"
)

// app is the state shared by all subcommands once flags are parsed.
type app struct {
	configFile string
	v          *viper.Viper
	cfg        config.Config
	log        *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "spfeed",
		Short:         "Decode SharePoint alert lists and term store hierarchies",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.configFile, "config", "", "config file (default: ./spfeed.yaml if present)")
	f.String("source", "stdin", "payload source: file or stdin")
	f.StringP("path", "p", "", "payload file for the file source")
	f.StringP("format", "f", "json", "record format: json, pretty or yaml")
	f.StringP("output-file", "o", "", "append NDJSON records to this file instead of stdout")
	f.Bool("tee", false, "with --output-file, also write records to stdout")
	f.Int64("max-size", 0, "rotate --output-file at this many bytes (0 disables)")
	f.Bool("async", false, "write records through a buffered background writer")
	f.String("log-level", "info", "log level: debug, info, warn or error")

	root.AddCommand(
		newAlertsCmd(a),
		newTaxonomyCmd(a),
		newWatchCmd(a),
		newVersionCmd(),
	)
	return root
}

// persistentKeys maps persistent flags to configuration keys.
var persistentKeys = map[string]string{
	"source":      "source.kind",
	"path":        "source.path",
	"format":      "output.format",
	"output-file": "output.file",
	"tee":         "output.tee",
	"max-size":    "output.max_size",
	"async":       "output.async",
	"log-level":   "log.level",
}

// setup loads configuration with flags taking precedence over the
// environment and the config file, then installs the logger.
func (a *app) setup(cmd *cobra.Command) error {
	v, err := config.NewViper(a.configFile)
	if err != nil {
		return err
	}
	if err := bindFlags(v, cmd.Flags(), persistentKeys); err != nil {
		return err
	}
	if keys, ok := commandKeys[cmd.Name()]; ok {
		if err := bindFlags(v, cmd.Flags(), keys); err != nil {
			return err
		}
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	a.v, a.cfg = v, cfg
	a.log = logging.Init(cfg.Output.File == "" || cfg.Output.Tee, logging.ParseLevel(cfg.Log.Level))
	a.log.Debug("configuration loaded",
		zap.String("config_file", v.ConfigFileUsed()),
		zap.String("source", cfg.Source.Kind),
		zap.String("format", cfg.Output.Format))
	return nil
}

// bindFlags binds each named flag to its configuration key. Only flags the
// user set override lower layers.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) error {
	var result error
	for name, key := range keys {
		fl := flags.Lookup(name)
		if fl == nil {
			continue
		}
		if err := v.BindPFlag(key, fl); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result
}

// pipeline builds the source, output and pipeline from the loaded config.
func (a *app) pipeline() (*pipeline.Pipeline, error) {
	ctor, err := source.Get(a.cfg.Source.Kind)
	if err != nil {
		return nil, err
	}
	out, err := a.output()
	if err != nil {
		return nil, err
	}
	srcCfg := source.Config{Kind: a.cfg.Source.Kind, Path: a.cfg.Source.Path}
	return pipeline.New(ctor(), srcCfg, out,
		pipeline.WithLogger(a.log),
		pipeline.WithStore(taxonomy.NewStore(a.cfg.Taxonomy.CacheTTL))), nil
}

// run builds a pipeline, hands it to fn and closes it, reporting both
// failures if fn and Close fail.
func (a *app) run(fn func(p *pipeline.Pipeline) error) error {
	p, err := a.pipeline()
	if err != nil {
		return err
	}
	var result error
	if err := fn(p); err != nil {
		result = multierror.Append(result, err)
	}
	if err := p.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("close output: %w", err))
	}
	return result
}

// commandKeys maps each subcommand's local flags to configuration keys.
var commandKeys = map[string]map[string]string{}

func (a *app) output() (output.Output, error) {
	format, err := output.ParseFormat(a.cfg.Output.Format)
	if err != nil {
		return nil, err
	}

	var out output.Output = stdout.New(format)
	if path := a.cfg.Output.File; path != "" {
		fo, err := file.New(path,
			file.WithMaxSize(a.cfg.Output.MaxSize),
			file.WithMaxBackups(a.cfg.Output.MaxBackups))
		if err != nil {
			return nil, fmt.Errorf("output: %w", err)
		}
		if a.cfg.Output.Tee {
			out = multi.New(out, fo)
		} else {
			out = fo
		}
	}
	if a.cfg.Output.Async {
		out = async.New(out,
			async.WithBufferSize(a.cfg.Output.BufferSize),
			async.WithLogger(a.log))
	}
	return out, nil
}
