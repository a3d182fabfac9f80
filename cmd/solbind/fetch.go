package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
)

const defaultReleaseList = "https://binaries.soliditylang.org/bin"

var fetchCmd = &cobra.Command{
	Use:   "fetch <version|latest>",
	Short: "Download a compiler artifact release",
	Long: `Download a compiler build from the official release list so it can
be used with --compiler.

Examples:
  solbind fetch 0.8.24
  solbind fetch latest -o soljson.js
  solbind fetch 0.8.24 --list-url https://binaries.soliditylang.org/emscripten-wasm32`,
	Args: cobra.ExactArgs(1),
	Run:  runFetch,
}

func init() {
	fetchCmd.Flags().StringP("output", "o", "", "Output path (default: the release file name)")
	fetchCmd.Flags().String("list-url", defaultReleaseList, "Base URL of the release list")
	rootCmd.AddCommand(fetchCmd)
}

// releaseList is the shape of the official list.json index.
type releaseList struct {
	Releases      map[string]string `json:"releases"`
	LatestRelease string            `json:"latestRelease"`
}

func runFetch(cmd *cobra.Command, args []string) {
	version := args[0]
	output, _ := cmd.Flags().GetString("output")
	listURL, _ := cmd.Flags().GetString("list-url")

	client := resty.New()

	var list releaseList
	resp, err := client.R().SetResult(&list).Get(listURL + "/list.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: fetch release list: %v\n", err)
		os.Exit(1)
	}
	if resp.IsError() {
		fmt.Fprintf(os.Stderr, "Error: fetch release list: %s\n", resp.Status())
		os.Exit(1)
	}

	if version == "latest" {
		version = list.LatestRelease
	}
	file, ok := list.Releases[version]
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown release %q (latest is %s)\n", version, list.LatestRelease)
		os.Exit(1)
	}

	if output == "" {
		output = filepath.Base(file)
	}
	if _, err := os.Stat(output); err == nil {
		fmt.Fprintf(os.Stderr, "%s already exists\n", output)
		return
	}

	resp, err = client.R().SetOutput(output).Get(listURL + "/" + file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: download %s: %v\n", file, err)
		os.Exit(1)
	}
	if resp.IsError() {
		os.Remove(output)
		fmt.Fprintf(os.Stderr, "Error: download %s: %s\n", file, resp.Status())
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Saved %s (%s)\n", output, version)
}
