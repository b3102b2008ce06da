// Package report renders status summaries for the command line.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/git-pkgs/pkgversions/internal/core"
)

const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Formats lists the accepted output formats.
var Formats = []string{FormatText, FormatJSON, FormatYAML}

// Render writes summary to w in the given format.
func Render(w io.Writer, summary *core.StatusSummary, format string) error {
	switch format {
	case FormatText, "":
		return renderText(w, summary)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(summary); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (supported: %v)", format, Formats)
	}
}

func renderText(w io.Writer, summary *core.StatusSummary) error {
	if _, err := fmt.Fprintln(w, summary.String()); err != nil {
		return err
	}
	for _, d := range summary.Details {
		mark := "OK  "
		if !d.IsVersionMatching {
			mark = "DIFF"
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", mark, d.Description); err != nil {
			return err
		}
	}
	return nil
}
