package main

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"ropes/internal/enc"
	"ropes/internal/rope"
	"ropes/internal/version"
)

type buildInfo struct {
	Tool       string `json:"tool"`
	Version    string `json:"version"`
	GoVersion  string `json:"go_version"`
	Encodings  int    `json:"encodings"`
	MaxDepth   int    `json:"default_max_depth"`
	GitCommit  string `json:"git_commit,omitempty"`
	GitMessage string `json:"git_message,omitempty"`
	BuildDate  string `json:"build_date,omitempty"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show ropectl build metadata",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, err := cmd.Flags().GetString("format")
		if err != nil {
			return fmt.Errorf("failed to get format flag: %w", err)
		}
		full, err := cmd.Flags().GetBool("full")
		if err != nil {
			return fmt.Errorf("failed to get full flag: %w", err)
		}
		if err := applyColor(cmd); err != nil {
			return err
		}
		info := collectBuildInfo(full)
		switch strings.ToLower(format) {
		case "json":
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(info)
		case "pretty":
			renderBuildInfo(cmd.OutOrStdout(), info, full)
			return nil
		default:
			return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
		}
	},
}

func init() {
	versionCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	versionCmd.Flags().Bool("full", false, "include commit and build date")
}

func collectBuildInfo(full bool) buildInfo {
	v := strings.TrimSpace(version.Version)
	if v == "" {
		v = "dev"
	}
	info := buildInfo{
		Tool:      "ropectl",
		Version:   v,
		GoVersion: runtime.Version(),
		Encodings: enc.Count(),
		MaxDepth:  rope.DefaultMaxDepth,
	}
	if full {
		info.GitCommit = valueOrUnknown(version.GitCommit)
		info.GitMessage = valueOrUnknown(version.GitMessage)
		info.BuildDate = valueOrUnknown(version.BuildDate)
	}
	return info
}

func renderBuildInfo(out io.Writer, info buildInfo, full bool) {
	fmt.Fprintf(out, "ropectl %s (%s, %d encodings)\n", version.Colored(), info.GoVersion, info.Encodings)
	if !full {
		return
	}
	fmt.Fprintf(out, "commit:  %s\n", info.GitCommit)
	fmt.Fprintf(out, "message: %s\n", info.GitMessage)
	fmt.Fprintf(out, "built:   %s\n", info.BuildDate)
}

func valueOrUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "unknown"
	}
	return s
}
