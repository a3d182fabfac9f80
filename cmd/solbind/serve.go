package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/solbind/solbind"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the loaded artifact over HTTP",
	Long: `Start an HTTP server compiling standard-JSON requests through one
loaded compiler artifact.

Endpoints:
  POST /compile   Standard-JSON input in, standard-JSON output out
  GET  /health    Liveness plus the resolved binding name`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) {
	port, _ := cmd.Flags().GetInt("port")

	handle, _, cancel, err := loadHandle(cmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer cancel()
	defer handle.Dispose()

	addr := fmt.Sprintf(":%d", port)
	fmt.Fprintf(os.Stderr, "solbind serving on %s, binding %s\n", addr, handle.Binding())
	if err := http.ListenAndServe(addr, newServer(handle)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newServer(handle *solbind.Handle) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/compile", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "read request: "+err.Error(), http.StatusBadRequest)
			return
		}

		out, err := handle.CompileRaw(r.Context(), string(body))
		w.Header().Set("Content-Type", "application/json")
		if err != nil {
			// Same error shape as compiler diagnostics, one format for
			// every failure class.
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(solbind.DiagnosticOutput(err))
			return
		}
		io.WriteString(w, out)
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status":  "ok",
			"binding": handle.Binding(),
		})
	})

	return mux
}
