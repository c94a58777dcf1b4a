// Package main implements the helmfile-deps command-line interface.
//
// helmfile-deps reads helmfile manifests and reports the Helm chart dependencies they
// declare. The commands are:
//   - extract: print the dependency records of one or more manifests
//   - aliases: print the repository alias table assembled from configuration
//   - updates: look up newer chart versions in Helm's local repository cache
package main

import (
	"context"
	"os"
	"os/signal"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lucas-albers-lz4/helmfile-deps/pkg/debug"
	"github.com/lucas-albers-lz4/helmfile-deps/pkg/exitcodes"
	"github.com/lucas-albers-lz4/helmfile-deps/pkg/log"
	"github.com/lucas-albers-lz4/helmfile-deps/pkg/repository"
)

const (
	configName = ".helmfile-deps"
	envPrefix  = "HELMFILE_DEPS"

	keyAliases          = "aliases"
	keyAliasFile        = "alias-file"
	keyLogLevel         = "log-level"
	keyOutput           = "output"
	keyHelmRepositories = "helm-repositories"
)

// AppFs is the filesystem manifests and configuration files are read from.
var AppFs = afero.NewOsFs()

// SetFs replaces AppFs and returns a function restoring the previous one.
func SetFs(newFs afero.Fs) func() {
	oldFs := AppFs
	AppFs = newFs
	return func() { AppFs = oldFs }
}

// rootOptions holds the state shared by all commands of one root command.
type rootOptions struct {
	cfgFile      string
	debugEnabled bool
	aliasFlags   []string
	v            *viper.Viper
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{v: viper.New()}

	cmd := &cobra.Command{
		Use:   "helmfile-deps",
		Short: "Extract Helm chart dependencies from helmfile manifests",
		Long: `helmfile-deps reads helmfile manifests, strips Go template syntax, and reports
every release as a chart dependency record: the chart name, the pinned version and
the repository URL, or the reason the release cannot be tracked.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.initConfig(cmd); err != nil {
				return err
			}
			opts.setupLogging()
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.cfgFile, "config", "", "config file (default is $HOME/.helmfile-deps.yaml)")
	flags.BoolVar(&opts.debugEnabled, "debug", false, "enable debug logging")
	flags.String(keyLogLevel, "info", "set log level (debug, info, warn, error)")
	flags.StringArrayVar(&opts.aliasFlags, "alias", nil, "repository alias as name=url (repeatable)")
	flags.String(keyAliasFile, "", "YAML file with an aliases: map of repository aliases")
	flags.Bool(keyHelmRepositories, false, "import aliases from Helm's repositories.yaml")

	for _, key := range []string{keyLogLevel, keyAliasFile, keyHelmRepositories} {
		cobra.CheckErr(opts.v.BindPFlag(key, flags.Lookup(key)))
	}

	cmd.AddCommand(newExtractCmd(opts))
	cmd.AddCommand(newAliasesCmd(opts))
	cmd.AddCommand(newUpdatesCmd(opts))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// Execute runs the root command, cancelling its context on interrupt.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		return errors.Wrap(err, "execute command")
	}
	return nil
}

// initConfig reads the config file and binds HELMFILE_DEPS_* environment variables.
// A missing default config file is not an error; a missing --config file is.
func (o *rootOptions) initConfig(_ *cobra.Command) error {
	o.v.SetFs(AppFs)
	o.v.SetEnvPrefix(envPrefix)
	o.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	o.v.AutomaticEnv()

	if o.cfgFile != "" {
		o.v.SetConfigFile(o.cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			debug.Printf("No home directory, skipping default config: %v", err)
			return nil
		}
		o.v.SetConfigName(configName)
		o.v.SetConfigType("yaml")
		o.v.AddConfigPath(home)
	}

	if err := o.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			debug.Printf("No config file found: %v", err)
			return nil
		}
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitInputConfigurationError,
			Err:  errors.Wrap(err, "read config"),
		}
	}
	debug.Printf("Using config file %s", o.v.ConfigFileUsed())
	return nil
}

func (o *rootOptions) setupLogging() {
	level := log.LevelInfo
	if o.debugEnabled {
		level = log.LevelDebug
		debug.Enabled = true
	} else if raw := o.v.GetString(keyLogLevel); raw != "" {
		parsed, err := log.ParseLevel(raw)
		if err != nil {
			log.Warn("Invalid log level, using default", "level", raw, "default", level.String(), "error", err)
		} else {
			level = parsed
		}
	}
	log.SetLevel(level)
	debug.Printf("Effective log level set to %s", level)
	log.Debug("Starting helmfile-deps", "version", BinaryVersion)
}

// defaultAliases assembles the repository alias table from every configured source.
// Later sources override earlier ones: Helm's repositories.yaml, the alias file, the
// config file's aliases map, then --alias flags.
func (o *rootOptions) defaultAliases() (map[string]string, error) {
	var layers []map[string]string

	if o.v.GetBool(keyHelmRepositories) {
		path := repository.DefaultHelmRepositoriesPath()
		helmRepos, err := repository.LoadHelmRepositories(path)
		if err != nil {
			return nil, configError(err)
		}
		log.Debug("Imported Helm repositories", "path", path, "count", len(helmRepos))
		layers = append(layers, helmRepos)
	}

	if path := o.v.GetString(keyAliasFile); path != "" {
		fileAliases, err := repository.LoadAliasFile(AppFs, path)
		if err != nil {
			return nil, configError(err)
		}
		layers = append(layers, fileAliases)
	}

	if configured := o.v.GetStringMapString(keyAliases); len(configured) > 0 {
		if err := repository.ValidateAliases(configured); err != nil {
			return nil, configError(err)
		}
		layers = append(layers, configured)
	}

	flagAliases, err := repository.ParseAliasFlags(o.aliasFlags)
	if err != nil {
		return nil, configError(err)
	}
	layers = append(layers, flagAliases)

	return repository.Merge(layers...), nil
}

func configError(err error) error {
	return &exitcodes.ExitCodeError{Code: exitcodes.ExitInputConfigurationError, Err: err}
}
