package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lucas-albers-lz4/helmfile-deps/pkg/exitcodes"
	"github.com/lucas-albers-lz4/helmfile-deps/pkg/repository"
)

func newAliasesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aliases",
		Short: "Print the repository aliases used before manifest declarations",
		Long: `Aliases prints the default repository alias table built from Helm's
repositories.yaml (--helm-repositories), the alias file, the config file and --alias
flags. Repositories declared inside a helmfile override these entries.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			aliases, err := opts.defaultAliases()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed(keyOutput) {
				format, err := opts.outputFormat(cmd)
				if err != nil {
					return err
				}
				return writeOutput(cmd, format, aliases)
			}
			return printAliases(cmd, repository.Map(aliases))
		},
	}
	cmd.Flags().StringP(keyOutput, "o", "", "output format (json or yaml); a table when unset")
	return cmd
}

func printAliases(cmd *cobra.Command, aliases repository.Map) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tURL")
	for _, name := range aliases.Names() {
		fmt.Fprintf(w, "%s\t%s\n", name, aliases[name])
	}
	if err := w.Flush(); err != nil {
		return &exitcodes.ExitCodeError{Code: exitcodes.ExitIOError, Err: err}
	}
	return nil
}
