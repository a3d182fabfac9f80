package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/solbind/solbind"
)

// Defaults picked up from SOLBIND_* environment variables; flags override.
type envDefaults struct {
	Compiler string        `envconfig:"COMPILER"`
	Timeout  time.Duration `envconfig:"TIMEOUT" default:"5m"`
}

var rootCmd = &cobra.Command{
	Use:   "solbind",
	Short: "Run Solidity compiler artifacts of any version",
	Long: `solbind - Load a Solidity compiler build (soljson .js or .wasm) and
compile standard-JSON input through it, regardless of which historical
calling convention the build exposes.

The compiler artifact is given with --compiler as a local path or an
http(s) URL, or via the SOLBIND_COMPILER environment variable.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	defaults := envDefaults{Timeout: 5 * time.Minute}
	if err := envconfig.Process("solbind", &defaults); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	rootCmd.PersistentFlags().StringP("compiler", "c", defaults.Compiler,
		"Compiler artifact: path or URL of a soljson .js or .wasm build")
	rootCmd.PersistentFlags().Duration("timeout", defaults.Timeout,
		"Deadline covering artifact load and compilation")
	rootCmd.PersistentFlags().Bool("worker", false,
		"Run the artifact in an isolated worker goroutine")
	rootCmd.PersistentFlags().StringSlice("disable", nil,
		"Disable an interface binding by name (repeatable)")
	rootCmd.PersistentFlags().Bool("no-patch", false,
		"Disable compatibility patching of known-buggy builds")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false,
		"Log load and compile diagnostics to stderr")
}

func buildOptions(cmd *cobra.Command) []solbind.Option {
	worker, _ := cmd.Flags().GetBool("worker")
	disable, _ := cmd.Flags().GetStringSlice("disable")
	noPatch, _ := cmd.Flags().GetBool("no-patch")
	verbose, _ := cmd.Flags().GetBool("verbose")

	var opts []solbind.Option
	if worker {
		opts = append(opts, solbind.WithWorker())
	}
	if len(disable) > 0 {
		opts = append(opts, solbind.WithDisabledBindings(disable...))
	}
	if noPatch {
		opts = append(opts, solbind.WithoutPatching())
	}
	if verbose {
		if log, err := zap.NewDevelopment(); err == nil {
			opts = append(opts, solbind.WithLogger(log))
		}
	}
	return opts
}

// loadHandle builds a handle from the --compiler flag. The returned context
// carries the --timeout deadline and covers both load and compile.
func loadHandle(cmd *cobra.Command) (*solbind.Handle, context.Context, context.CancelFunc, error) {
	compiler, _ := cmd.Flags().GetString("compiler")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if compiler == "" {
		return nil, nil, nil, fmt.Errorf("compiler artifact required: use --compiler or SOLBIND_COMPILER")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	opts := buildOptions(cmd)

	var handle *solbind.Handle
	var err error
	if strings.HasPrefix(compiler, "http://") || strings.HasPrefix(compiler, "https://") {
		handle, err = solbind.LoadURL(ctx, compiler, opts...)
	} else {
		var data []byte
		data, err = os.ReadFile(compiler)
		if err == nil {
			handle, err = solbind.Load(ctx, string(data), opts...)
		}
	}
	if err != nil {
		cancel()
		return nil, nil, nil, err
	}
	return handle, ctx, cancel, nil
}
