package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/solbind/solbind"
)

var compileCmd = &cobra.Command{
	Use:   "compile [files...]",
	Short: "Compile Solidity source files",
	Long: `Compile one or more .sol files through the configured compiler
artifact and print the standard-JSON output.

Exits non-zero if the compiler reports error-severity diagnostics;
warnings do not affect the exit code.`,
	Args: cobra.MinimumNArgs(1),
	Run:  runCompile,
}

func init() {
	compileCmd.Flags().Bool("pretty", true, "Indent the JSON output")
	compileCmd.Flags().String("settings", "", "Standard-JSON settings object (raw JSON)")
	rootCmd.AddCommand(compileCmd)
}

func runCompile(cmd *cobra.Command, args []string) {
	pretty, _ := cmd.Flags().GetBool("pretty")
	settings, _ := cmd.Flags().GetString("settings")

	sources := make(map[string]solbind.Source, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		sources[filepath.Base(path)] = solbind.Source{Content: string(data)}
	}

	input := &solbind.Input{
		Language: "Solidity",
		Sources:  sources,
		Settings: solbind.DefaultSettings(),
	}
	if settings != "" {
		input.Settings = json.RawMessage(settings)
	}

	handle, ctx, cancel, err := loadHandle(cmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer cancel()
	defer handle.Dispose()

	out, err := handle.Compile(ctx, input)
	if err != nil {
		// Render transport/initialization failures in the compiler's own
		// error shape so scripted callers parse one format.
		out = solbind.DiagnosticOutput(err)
	}

	var data []byte
	if pretty {
		data, _ = json.MarshalIndent(out, "", "  ")
	} else {
		data, _ = json.Marshal(out)
	}
	fmt.Println(string(data))

	if out.HasErrors() {
		os.Exit(1)
	}
}
