package rmdxcli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newListsCommand(sourceDir, indexDir *string) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "lists",
		Short: "Per-list pending/completed counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := openMirror(cmd, sourceDir, indexDir)
			if err != nil {
				return err
			}
			defer m.Close()

			lists, err := m.ListsSummary()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				for _, ls := range lists {
					if err := enc.Encode(ls); err != nil {
						return err
					}
				}
				return nil
			}
			for _, ls := range lists {
				fmt.Fprintf(out, "%s: %d pending, %d completed\n", ls.Name, ls.PendingCount, ls.CompletedCount)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSONL instead of text")
	return cmd
}
