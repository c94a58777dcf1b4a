package main

import (
	"os"

	"github.com/lucas-albers-lz4/helmfile-deps/pkg/debug"
	"github.com/lucas-albers-lz4/helmfile-deps/pkg/exitcodes"
	"github.com/lucas-albers-lz4/helmfile-deps/pkg/log"
)

func main() {
	debug.Init(false)

	if err := Execute(); err != nil {
		code, ok := exitcodes.IsExitCodeError(err)
		if !ok {
			code = exitcodes.ExitGeneralRuntimeError
		}
		log.Error("Command failed", "error", err, "exitCode", code)
		os.Exit(code)
	}
}
