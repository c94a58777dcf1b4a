package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/lucas-albers-lz4/helmfile-deps/pkg/exitcodes"
	"github.com/lucas-albers-lz4/helmfile-deps/pkg/extract"
	"github.com/lucas-albers-lz4/helmfile-deps/pkg/fileutil"
	"github.com/lucas-albers-lz4/helmfile-deps/pkg/log"
)

// fileResult is the extraction result of one manifest. PackageFile is null when the
// manifest has no release.
type fileResult struct {
	File        string               `json:"file"`
	PackageFile *extract.PackageFile `json:"packageFile"`
}

func newExtractCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <helmfile>...",
		Short: "Print the chart dependencies declared in helmfile manifests",
		Long: `Extract reads each helmfile manifest and prints one dependency record per release.
Releases that cannot be tracked carry a skipReason (local-chart, unsupported-chart-type,
unknown-repository, invalid-name or invalid-version).`,
		Args: requireFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, opts, args)
		},
	}

	cmd.Flags().StringP(keyOutput, "o", outputJSON, "output format (json or yaml)")
	cmd.Flags().Bool("fail-on-empty", false, "exit with an error when no manifest yields a dependency")
	addOutputFileFlag(cmd)
	return cmd
}

func requireFiles(_ *cobra.Command, args []string) error {
	if len(args) == 0 {
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitMissingRequiredFlag,
			Err:  errors.New("at least one helmfile path is required"),
		}
	}
	return nil
}

func runExtract(cmd *cobra.Command, opts *rootOptions, files []string) error {
	format, err := opts.outputFormat(cmd)
	if err != nil {
		return err
	}
	failOnEmpty, err := cmd.Flags().GetBool("fail-on-empty")
	if err != nil {
		return &exitcodes.ExitCodeError{Code: exitcodes.ExitInputConfigurationError, Err: err}
	}

	aliases, err := opts.defaultAliases()
	if err != nil {
		return err
	}

	results, err := extractFiles(files, extract.Config{Aliases: aliases})
	if err != nil {
		return err
	}

	found := 0
	for _, r := range results {
		if r.PackageFile != nil {
			found += len(r.PackageFile.Deps)
		}
	}
	log.Info("Extraction finished", "files", len(results), "dependencies", found)

	if err := writeOutput(cmd, format, results); err != nil {
		return err
	}
	if failOnEmpty && found == 0 {
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitNothingExtracted,
			Err:  fmt.Errorf("no dependency found in %d helmfile(s)", len(files)),
		}
	}
	return nil
}

// extractFiles reads and extracts every manifest from AppFs in order.
func extractFiles(files []string, cfg extract.Config) ([]fileResult, error) {
	fsys := fileutil.NewAferoFS(AppFs)
	results := make([]fileResult, 0, len(files))
	for _, file := range files {
		content, err := readManifest(fsys, file)
		if err != nil {
			return nil, err
		}
		results = append(results, fileResult{
			File:        file,
			PackageFile: extract.ExtractPackageFile(content, file, cfg),
		})
	}
	return results, nil
}

func readManifest(fsys fileutil.FS, path string) (string, error) {
	exists, err := fileutil.FileExists(fsys, path)
	if err != nil {
		return "", &exitcodes.ExitCodeError{Code: exitcodes.ExitIOError, Err: err}
	}
	if !exists {
		return "", &exitcodes.ExitCodeError{
			Code: exitcodes.ExitManifestNotFound,
			Err:  fmt.Errorf("helmfile not found or not a file: %s", path),
		}
	}

	content, err := fileutil.ReadFileString(fsys, path)
	if err != nil {
		return "", &exitcodes.ExitCodeError{
			Code: exitcodes.ExitIOError,
			Err:  errors.Wrapf(err, "read helmfile %s", path),
		}
	}
	return content, nil
}
