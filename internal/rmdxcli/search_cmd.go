package rmdxcli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"remindex/internal/model"
)

func newSearchCommand(sourceDir, indexDir *string) *cobra.Command {
	var (
		list      string
		pending   bool
		completed bool
		flagged   bool
		exact     bool
		limit     int
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "search [text...]",
		Short: "Typo-tolerant search across titles, notes, and list names",
		RunE: func(cmd *cobra.Command, args []string) error {
			if pending && completed {
				return fmt.Errorf("--pending and --completed are mutually exclusive")
			}

			m, err := openMirror(cmd, sourceDir, indexDir)
			if err != nil {
				return err
			}
			defer m.Close()

			text := strings.Join(args, " ")
			if exact {
				recs, err := m.SearchExact(text, limit)
				if err != nil {
					return err
				}
				return writeRecords(cmd, recs, asJSON)
			}

			spec := model.QuerySpec{Text: text, List: list, Limit: limit}
			if pending {
				spec.Completed = boolPtr(false)
			}
			if completed {
				spec.Completed = boolPtr(true)
			}
			if flagged {
				spec.Flagged = boolPtr(true)
			}

			hits, err := m.Search(spec)
			if err != nil {
				return err
			}
			return writeHits(cmd, hits, asJSON)
		},
	}
	cmd.Flags().StringVarP(&list, "list", "l", "", "filter by list name substring")
	cmd.Flags().BoolVar(&pending, "pending", false, "only pending records")
	cmd.Flags().BoolVar(&completed, "completed", false, "only completed records")
	cmd.Flags().BoolVar(&flagged, "flagged", false, "only flagged records")
	cmd.Flags().BoolVar(&exact, "exact", false, "stemmed token match instead of fuzzy ranking")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of results")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSONL instead of text")
	return cmd
}

func boolPtr(b bool) *bool { return &b }
