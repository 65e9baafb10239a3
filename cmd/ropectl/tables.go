package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ropes/internal/enc"
	"ropes/internal/intern"
)

var internCmd = &cobra.Command{
	Use:   "intern",
	Short: "List the literals of the standard intern table",
	Args:  cobra.NoArgs,
	RunE:  runIntern,
}

var encodingsCmd = &cobra.Command{
	Use:   "encodings",
	Short: "List the supported encodings",
	Args:  cobra.NoArgs,
	RunE:  runEncodings,
}

func init() {
	internCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	internCmd.Flags().String("encoding", "", "only list literals of this encoding")
	encodingsCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

type internEntry struct {
	Text       string `json:"text"`
	Encoding   string `json:"encoding"`
	CodeRange  string `json:"code_range"`
	Characters int    `json:"characters"`
	Hash       string `json:"hash"`
}

func runIntern(cmd *cobra.Command, _ []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	only, err := cmd.Flags().GetString("encoding")
	if err != nil {
		return fmt.Errorf("failed to get encoding flag: %w", err)
	}
	var filter *enc.Encoding
	if only != "" {
		e, ok := enc.Find(only)
		if !ok {
			return fmt.Errorf("unknown encoding %q", only)
		}
		filter = e
	}

	s, closeSession, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer closeSession()

	entries := collectInternEntries(s.table, filter)
	out := cmd.OutOrStdout()
	switch strings.ToLower(format) {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(entries)
	case "pretty":
		return renderInternPretty(out, s.table, entries)
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
}

func collectInternEntries(t *intern.Table, filter *enc.Encoding) []internEntry {
	all := t.Entries()
	out := make([]internEntry, 0, len(all))
	for _, e := range all {
		if filter != nil && e.Encoding != filter {
			continue
		}
		out = append(out, internEntry{
			Text:       e.Text,
			Encoding:   e.Encoding.Name(),
			CodeRange:  e.Rope.CodeRange().String(),
			Characters: e.Rope.CharacterLength(),
			Hash:       fmt.Sprintf("%016x", e.Rope.Hash()),
		})
	}
	return out
}

func renderInternPretty(out io.Writer, t *intern.Table, entries []internEntry) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TEXT\tENCODING\tRANGE\tCHARS\tHASH")
	for _, e := range entries {
		fmt.Fprintf(tw, "%q\t%s\t%s\t%d\t%s\n", e.Text, e.Encoding, e.CodeRange, e.Characters, e.Hash)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s %d entries, longest literal %d bytes\n",
		color.New(color.Bold).Sprint("table:"), t.Len(), t.MaxLen())
	return nil
}

type encodingEntry struct {
	Index           int      `json:"index"`
	Name            string   `json:"name"`
	Aliases         []string `json:"aliases,omitempty"`
	MinCharLen      int      `json:"min_char_len"`
	MaxCharLen      int      `json:"max_char_len"`
	ASCIICompatible bool     `json:"ascii_compatible"`
}

func runEncodings(cmd *cobra.Command, _ []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if err := applyColor(cmd); err != nil {
		return err
	}
	all := enc.All()
	entries := make([]encodingEntry, len(all))
	for i, e := range all {
		entries[i] = encodingEntry{
			Index:           e.Index(),
			Name:            e.Name(),
			Aliases:         e.Aliases(),
			MinCharLen:      e.MinCharLen(),
			MaxCharLen:      e.MaxCharLen(),
			ASCIICompatible: e.ASCIICompatible(),
		}
	}

	out := cmd.OutOrStdout()
	switch strings.ToLower(format) {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(entries)
	case "pretty":
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "#\tNAME\tCHAR BYTES\tASCII\tALIASES")
		yes := color.New(color.FgGreen).Sprint("yes")
		for _, e := range entries {
			ascii := "no"
			if e.ASCIICompatible {
				ascii = yes
			}
			fmt.Fprintf(tw, "%d\t%s\t%d-%d\t%s\t%s\n", e.Index, e.Name, e.MinCharLen, e.MaxCharLen, ascii, strings.Join(e.Aliases, ", "))
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
}
