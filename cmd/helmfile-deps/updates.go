package main

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"helm.sh/helm/v3/pkg/cli"

	"github.com/lucas-albers-lz4/helmfile-deps/pkg/datasource"
	"github.com/lucas-albers-lz4/helmfile-deps/pkg/exitcodes"
	"github.com/lucas-albers-lz4/helmfile-deps/pkg/extract"
	"github.com/lucas-albers-lz4/helmfile-deps/pkg/log"
)

type updatesOptions struct {
	indexFiles []string
}

func newUpdatesCmd(opts *rootOptions) *cobra.Command {
	uo := &updatesOptions{}
	cmd := &cobra.Command{
		Use:   "updates <helmfile>",
		Short: "List newer chart versions for the dependencies of a helmfile",
		Long: `Updates extracts the trackable dependencies of a helmfile and looks up their
published versions in the repository index files Helm caches locally. Run
'helm repo update' first, or point --index-file at downloaded index.yaml files.
OCI repositories are not supported and are left out.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := requireFiles(cmd, args); err != nil {
				return err
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdates(cmd, opts, uo, args[0])
		},
	}

	cmd.Flags().StringP(keyOutput, "o", outputJSON, "output format (json or yaml)")
	addOutputFileFlag(cmd)
	cmd.Flags().StringArrayVar(&uo.indexFiles, "index-file", nil, "repository index file as url=path (repeatable)")
	return cmd
}

func runUpdates(cmd *cobra.Command, opts *rootOptions, uo *updatesOptions, file string) error {
	format, err := opts.outputFormat(cmd)
	if err != nil {
		return err
	}

	dsOpts, err := parseIndexFiles(uo.indexFiles)
	if err != nil {
		return err
	}

	aliases, err := opts.defaultAliases()
	if err != nil {
		return err
	}

	results, err := extractFiles([]string{file}, extract.Config{Aliases: aliases})
	if err != nil {
		return err
	}

	updates, err := datasource.Updates(cmd.Context(), datasource.NewHelmIndex(cli.New(), dsOpts...), results[0].PackageFile.Trackable())
	if err != nil {
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitIndexLookupError,
			Err:  errors.Wrap(err, "look up chart versions"),
		}
	}
	if updates == nil {
		updates = []datasource.Update{}
	}
	log.Info("Update check finished", "file", file, "checked", len(updates))

	return writeOutput(cmd, format, updates)
}

func parseIndexFiles(pairs []string) ([]datasource.Option, error) {
	dsOpts := make([]datasource.Option, 0, len(pairs))
	for _, pair := range pairs {
		url, path, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(url) == "" || strings.TrimSpace(path) == "" {
			return nil, &exitcodes.ExitCodeError{
				Code: exitcodes.ExitInputConfigurationError,
				Err:  fmt.Errorf("invalid --index-file %q: expected url=path", pair),
			}
		}
		dsOpts = append(dsOpts, datasource.WithIndexFile(strings.TrimSpace(url), strings.TrimSpace(path)))
	}
	return dsOpts, nil
}
