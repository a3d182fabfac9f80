package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/solbind/solbind"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive compile loop against one loaded artifact",
	Long: `Start an interactive session against a single loaded compiler
artifact. Type Solidity source line by line, then:

  :compile   compile the buffer and print the output
  :reset     discard the buffer
  :binding   show which calling convention was resolved

Type 'exit' or press Ctrl+D to quit.`,
	Run: runRepl,
}

func init() {
	replCmd.Flags().String("history", "", "History file path (default: ~/.solbind_history)")
	rootCmd.AddCommand(replCmd)
}

func runRepl(cmd *cobra.Command, args []string) {
	historyFile, _ := cmd.Flags().GetString("history")
	if historyFile == "" {
		home, _ := os.UserHomeDir()
		historyFile = filepath.Join(home, ".solbind_history")
	}

	// The --timeout deadline covers loading only; an interactive session
	// should not expire underneath the user.
	handle, _, cancel, err := loadHandle(cmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer cancel()
	defer handle.Dispose()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "sol> ",
		HistoryFile:       historyFile,
		HistoryLimit:      1000,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing readline: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Fprintf(os.Stderr, "solbind repl, binding %s (:compile to run, exit to quit)\n", handle.Binding())

	var buffer strings.Builder
	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				buffer.Reset()
				continue
			}
			break // Ctrl+D
		}

		switch strings.TrimSpace(line) {
		case "exit", "quit":
			return
		case ":reset":
			buffer.Reset()
			continue
		case ":binding":
			fmt.Println(handle.Binding())
			continue
		case ":compile":
			input := &solbind.Input{
				Language: "Solidity",
				Sources:  map[string]solbind.Source{"repl.sol": {Content: buffer.String()}},
				Settings: solbind.DefaultSettings(),
			}
			out, err := handle.Compile(context.Background(), input)
			if err != nil {
				out = solbind.DiagnosticOutput(err)
			}
			printReplOutput(out)
			continue
		default:
			buffer.WriteString(line)
			buffer.WriteString("\n")
		}
	}
}

func printReplOutput(out *solbind.Output) {
	for _, e := range out.Errors {
		msg := e.FormattedMessage
		if msg == "" {
			msg = e.Message
		}
		fmt.Fprintf(os.Stderr, "%s: %s\n", e.Severity, msg)
	}
	for file, contracts := range out.Contracts {
		for name, c := range contracts {
			size := 0
			if c.EVM != nil && c.EVM.Bytecode != nil {
				size = len(c.EVM.Bytecode.Object) / 2
			}
			fmt.Printf("%s:%s  %d bytes\n", file, name, size)
		}
	}
}
