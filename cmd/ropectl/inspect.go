package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"ropes/internal/coderange"
	"ropes/internal/enc"
	"ropes/internal/rope"
	"ropes/internal/ropedump"
	"ropes/internal/textops"
	"ropes/internal/ui"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [flags] [text...]",
	Short: "Build a rope and report its shape and attributes",
	Long: `Inspect concatenates the given texts and files into one rope, optionally
repeats, slices, normalizes or transcodes it, and reports the result`,
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().String("encoding", "UTF-8", "encoding of the input pieces")
	inspectCmd.Flags().StringArray("file", nil, "append the contents of a file as one piece (repeatable)")
	inspectCmd.Flags().Int("repeat", 1, "repeat the concatenation this many times")
	inspectCmd.Flags().String("slice", "", "take a byte window OFFSET:LENGTH of the result")
	inspectCmd.Flags().String("normalize", "", "apply a Unicode normalization form (nfc|nfd|nfkc|nfkd)")
	inspectCmd.Flags().String("transcode", "", "convert the result to another encoding")
	inspectCmd.Flags().String("load", "", "read the rope from a snapshot instead of the arguments")
	inspectCmd.Flags().String("dump", "", "write the resulting rope to a snapshot file")
	inspectCmd.Flags().Bool("flatten", false, "flatten the result into a single leaf")
	inspectCmd.Flags().Int("max-nodes", 64, "maximum number of tree lines to print (0 hides the tree)")
	inspectCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

type inspectOptions struct {
	encoding  string
	files     []string
	repeat    int
	slice     string
	normalize string
	transcode string
	load      string
	dump      string
	flatten   bool
	maxNodes  int
	format    string
}

func readInspectOptions(cmd *cobra.Command) (inspectOptions, error) {
	var opts inspectOptions
	var err error
	flags := cmd.Flags()
	if opts.encoding, err = flags.GetString("encoding"); err != nil {
		return opts, fmt.Errorf("failed to get encoding flag: %w", err)
	}
	if opts.files, err = flags.GetStringArray("file"); err != nil {
		return opts, fmt.Errorf("failed to get file flag: %w", err)
	}
	if opts.repeat, err = flags.GetInt("repeat"); err != nil {
		return opts, fmt.Errorf("failed to get repeat flag: %w", err)
	}
	if opts.slice, err = flags.GetString("slice"); err != nil {
		return opts, fmt.Errorf("failed to get slice flag: %w", err)
	}
	if opts.normalize, err = flags.GetString("normalize"); err != nil {
		return opts, fmt.Errorf("failed to get normalize flag: %w", err)
	}
	if opts.transcode, err = flags.GetString("transcode"); err != nil {
		return opts, fmt.Errorf("failed to get transcode flag: %w", err)
	}
	if opts.load, err = flags.GetString("load"); err != nil {
		return opts, fmt.Errorf("failed to get load flag: %w", err)
	}
	if opts.dump, err = flags.GetString("dump"); err != nil {
		return opts, fmt.Errorf("failed to get dump flag: %w", err)
	}
	if opts.flatten, err = flags.GetBool("flatten"); err != nil {
		return opts, fmt.Errorf("failed to get flatten flag: %w", err)
	}
	if opts.maxNodes, err = flags.GetInt("max-nodes"); err != nil {
		return opts, fmt.Errorf("failed to get max-nodes flag: %w", err)
	}
	if opts.format, err = flags.GetString("format"); err != nil {
		return opts, fmt.Errorf("failed to get format flag: %w", err)
	}
	opts.format = strings.ToLower(opts.format)
	switch opts.format {
	case "pretty", "json":
	default:
		return opts, fmt.Errorf("unsupported format %q (must be pretty or json)", opts.format)
	}
	return opts, nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	opts, err := readInspectOptions(cmd)
	if err != nil {
		return err
	}
	s, closeSession, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer closeSession()

	r, err := buildInspected(s, opts, args)
	if err != nil {
		return err
	}

	if opts.dump != "" {
		if err := ropedump.Save(opts.dump, r); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if opts.format == "json" {
		return renderInspectJSON(out, s, r)
	}
	renderInspectPretty(out, s, r, opts.maxNodes)
	return nil
}

// buildInspected applies the inspect pipeline: pieces, repeat, slice,
// normalize, transcode, flatten.
func buildInspected(s *session, opts inspectOptions, args []string) (*rope.Rope, error) {
	var r *rope.Rope
	if opts.load != "" {
		if len(args) > 0 || len(opts.files) > 0 {
			return nil, fmt.Errorf("--load cannot be combined with text or --file pieces")
		}
		loaded, err := ropedump.Load(opts.load, s.factory)
		if err != nil {
			return nil, err
		}
		r = loaded
	} else {
		e, ok := enc.Find(opts.encoding)
		if !ok {
			return nil, fmt.Errorf("unknown encoding %q", opts.encoding)
		}
		pieces := make([][]byte, 0, len(args)+len(opts.files))
		for _, a := range args {
			pieces = append(pieces, []byte(a))
		}
		for _, path := range opts.files {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", path, err)
			}
			pieces = append(pieces, data)
		}
		built, err := concatPieces(s, e, pieces)
		if err != nil {
			return nil, err
		}
		r = built
	}

	var err error
	if opts.repeat != 1 {
		if r, err = s.factory.Repeat(r, opts.repeat); err != nil {
			return nil, err
		}
	}
	if opts.slice != "" {
		off, n, perr := parseSlice(opts.slice)
		if perr != nil {
			return nil, perr
		}
		if r, err = s.factory.Substring(r, off, n); err != nil {
			return nil, err
		}
	}
	if opts.normalize != "" {
		form, ferr := textops.ParseForm(opts.normalize)
		if ferr != nil {
			return nil, ferr
		}
		if r, err = textops.Normalize(s.factory, r, form); err != nil {
			return nil, err
		}
	}
	if opts.transcode != "" {
		to, ok := enc.Find(opts.transcode)
		if !ok {
			return nil, fmt.Errorf("unknown encoding %q", opts.transcode)
		}
		if r, err = textops.Transcode(s.factory, r, to); err != nil {
			return nil, err
		}
	}
	if opts.flatten {
		r = s.factory.Flatten(r)
	}
	return r, nil
}

// concatPieces joins the pieces left to right. Each leaf goes through the
// dedup cache so repeated pieces share one node.
func concatPieces(s *session, e *enc.Encoding, pieces [][]byte) (*rope.Rope, error) {
	acc := s.factory.Empty(e)
	for _, p := range pieces {
		leaf := s.cache.Dedup(s.factory.MakeLeaf(p, e, coderange.Unknown))
		next, err := s.factory.Concat(acc, leaf)
		if err != nil {
			return nil, err
		}
		acc = next
	}
	return acc, nil
}

func parseSlice(value string) (int, int, error) {
	offStr, lenStr, ok := strings.Cut(value, ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid --slice %q (expected OFFSET:LENGTH)", value)
	}
	off, err := strconv.Atoi(strings.TrimSpace(offStr))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid --slice offset: %w", err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(lenStr))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid --slice length: %w", err)
	}
	return off, n, nil
}

type inspectPayload struct {
	Kind       string `json:"kind"`
	Encoding   string `json:"encoding"`
	Bytes      int    `json:"bytes"`
	Characters int    `json:"characters"`
	Graphemes  *int   `json:"graphemes,omitempty"`
	CodeRange  string `json:"code_range"`
	Hash       string `json:"hash"`
	Depth      int    `json:"depth"`
	Nodes      int    `json:"nodes"`
	Leaves     int    `json:"leaves"`
	Concats    int    `json:"concats"`
	Substrings int    `json:"substrings"`
	Repeatings int    `json:"repeatings"`
	LeafBytes  int    `json:"leaf_bytes"`
	Interned   bool   `json:"interned"`
	Preview    string `json:"preview"`
}

func inspectInfo(s *session, r *rope.Rope) inspectPayload {
	st := rope.Collect(r)
	p := inspectPayload{
		Kind:       r.Kind().String(),
		Encoding:   r.Encoding().Name(),
		Bytes:      r.ByteLength(),
		Characters: r.CharacterLength(),
		CodeRange:  r.CodeRange().String(),
		Hash:       fmt.Sprintf("%016x", r.Hash()),
		Depth:      st.Depth,
		Nodes:      st.Nodes,
		Leaves:     st.Leaves,
		Concats:    st.Concats,
		Substrings: st.Substrings,
		Repeatings: st.Repeatings,
		LeafBytes:  st.LeafBytes,
	}
	if g, err := textops.GraphemeLength(s.factory, r); err == nil {
		p.Graphemes = &g
	}
	if r.ByteLength() <= s.table.MaxLen() {
		_, p.Interned = s.table.LookupBytes(r.Encoding(), r.Materialize().Bytes())
	}
	p.Preview = rope.Preview(r.Materialize().Bytes(), 64)
	return p
}

func renderInspectJSON(out io.Writer, s *session, r *rope.Rope) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(inspectInfo(s, r))
}

func renderInspectPretty(out io.Writer, s *session, r *rope.Rope, maxNodes int) {
	info := inspectInfo(s, r)
	fmt.Fprintln(out, ui.Stats(r))
	if info.Graphemes != nil {
		fmt.Fprintf(out, "graphemes: %d\n", *info.Graphemes)
	}
	if info.Interned {
		fmt.Fprintln(out, "interned: yes")
	}
	fmt.Fprintf(out, "text: %s\n", info.Preview)
	if maxNodes > 0 {
		fmt.Fprintln(out)
		fmt.Fprint(out, ui.Tree(r, termWidth(), maxNodes))
	}
}
