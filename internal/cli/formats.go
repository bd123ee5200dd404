package cli

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wronai/pactfix/pkg/analyzers"
	"github.com/wronai/pactfix/pkg/annotate"
	"github.com/wronai/pactfix/pkg/langdetect"
)

// FormatInfo describes one supported format.
type FormatInfo struct {
	ID       string   `json:"id"`
	Aliases  []string `json:"aliases,omitempty"`
	Comment  string   `json:"comment,omitempty"`
	Analyzer bool     `json:"analyzer"`
}

func (a *app) newFormatsCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "formats",
		Short: "List supported formats",
		Long: `List every format pactfix classifies, with its fence aliases, the comment
syntax used for fix annotations, and whether a dedicated analyzer exists.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			infos, err := ListFormats()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(infos)
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "FORMAT\tANALYZER\tCOMMENT\tALIASES")
			for _, info := range infos {
				analyzer := "pass-through"
				if info.Analyzer {
					analyzer = "yes"
				}
				comment := info.Comment
				if comment == "" {
					comment = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", info.ID, analyzer, comment, strings.Join(info.Aliases, ", "))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the list as JSON")
	return cmd
}

// ListFormats returns every supported format in id order.
func ListFormats() ([]FormatInfo, error) {
	registry, err := analyzers.NewRegistry(nil, nil)
	if err != nil {
		return nil, err
	}

	aliases := make(map[string][]string)
	for alias, id := range langdetect.Aliases() {
		if alias != id {
			aliases[id] = append(aliases[id], alias)
		}
	}

	ids := langdetect.SupportedFormats()
	infos := make([]FormatInfo, 0, len(ids))
	for _, id := range ids {
		info := FormatInfo{ID: id, Aliases: slices.Sorted(slices.Values(aliases[id]))}
		if tok, ok := annotate.CommentToken(id); ok {
			info.Comment = strings.TrimSpace(tok.Prefix + " " + tok.Suffix)
		}
		if a, ok := registry.Get(id); ok {
			info.Analyzer = analyzers.HasRules(a)
		}
		infos = append(infos, info)
	}
	return infos, nil
}
