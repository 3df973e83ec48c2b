package main

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
	"gocv.io/x/gocv"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type versionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	GoCV      string `json:"gocv"`
	OpenCV    string `json:"opencv"`
}

func currentVersion() versionInfo {
	info := versionInfo{
		Version:   version,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		GoCV:      gocv.Version(),
		OpenCV:    gocv.OpenCVVersion(),
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				info.Commit = s.Value
			}
		}
	}
	return info
}

func newVersionCmd(stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show videostrip version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOutput, _ := cmd.Flags().GetBool("json")
			info := currentVersion()

			if jsonOutput {
				output, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(stdout, string(output))
				return nil
			}

			fmt.Fprintf(stdout, "videostrip %s\n", info.Version)
			if info.Commit != "" {
				fmt.Fprintf(stdout, "Commit: %s\n", info.Commit)
			}
			fmt.Fprintf(stdout, "Platform: %s\n", info.Platform)
			fmt.Fprintf(stdout, "Go: %s\n", info.GoVersion)
			fmt.Fprintf(stdout, "GoCV: %s (OpenCV %s)\n", info.GoCV, info.OpenCV)
			return nil
		},
	}
	cmd.Flags().BoolP("json", "j", false, "Output version info as JSON")
	return cmd
}
