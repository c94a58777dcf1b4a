package main

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/lucas-albers-lz4/helmfile-deps/pkg/exitcodes"
	"github.com/lucas-albers-lz4/helmfile-deps/pkg/fileutil"
	"github.com/lucas-albers-lz4/helmfile-deps/pkg/log"
)

const (
	outputJSON = "json"
	outputYAML = "yaml"

	flagOutputFile = "output-file"
)

func validateOutputFormat(format string) error {
	switch format {
	case outputJSON, outputYAML:
		return nil
	}
	return &exitcodes.ExitCodeError{
		Code: exitcodes.ExitInputConfigurationError,
		Err:  fmt.Errorf("unsupported output format %q (use %s or %s)", format, outputJSON, outputYAML),
	}
}

// outputFormat returns the --output flag when given, else the config file's output key.
func (o *rootOptions) outputFormat(cmd *cobra.Command) (string, error) {
	format := o.v.GetString(keyOutput)
	if cmd.Flags().Changed(keyOutput) {
		format, _ = cmd.Flags().GetString(keyOutput) //nolint:errcheck // flag is defined by the command
	}
	if format == "" {
		format = outputJSON
	}
	return format, validateOutputFormat(format)
}

func addOutputFileFlag(cmd *cobra.Command) {
	cmd.Flags().String(flagOutputFile, "", "write output to file instead of stdout")
}

// encode renders v in the given format. YAML goes through the JSON tags of v.
func encode(format string, v interface{}) ([]byte, error) {
	if format == outputYAML {
		data, err := yaml.Marshal(v)
		return data, errors.Wrap(err, "encode yaml")
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encode json")
	}
	return append(data, '\n'), nil
}

// writeOutput encodes v and writes it to --output-file when the command has one set,
// otherwise to the command's output.
func writeOutput(cmd *cobra.Command, format string, v interface{}) error {
	data, err := encode(format, v)
	if err != nil {
		return &exitcodes.ExitCodeError{Code: exitcodes.ExitGeneralRuntimeError, Err: err}
	}

	var outputFile string
	if f := cmd.Flags().Lookup(flagOutputFile); f != nil {
		outputFile = f.Value.String()
	}

	if outputFile == "" {
		if _, err := cmd.OutOrStdout().Write(data); err != nil {
			return &exitcodes.ExitCodeError{Code: exitcodes.ExitIOError, Err: errors.Wrap(err, "write output")}
		}
		return nil
	}

	if err := fileutil.NewAferoFS(AppFs).WriteFile(outputFile, data, fileutil.ReadWriteUserReadOthers); err != nil {
		return &exitcodes.ExitCodeError{Code: exitcodes.ExitIOError, Err: err}
	}
	log.Info("Wrote output", "file", outputFile)
	return nil
}
