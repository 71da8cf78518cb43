package rmdxcli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"remindex/internal/model"
)

func newBrowseCommand(sourceDir, indexDir *string) *cobra.Command {
	var limit int
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Fixed structured-store query variants",
	}
	cmd.PersistentFlags().IntVarP(&limit, "limit", "n", 20, "maximum number of results")
	cmd.PersistentFlags().BoolVar(&asJSON, "json", false, "emit JSONL instead of text")

	cmd.AddCommand(&cobra.Command{
		Use:   "recent",
		Short: "Most recently created records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return browseWith(cmd, sourceDir, indexDir, asJSON, func(m browser) ([]model.Record, error) {
				return m.BrowseRecent(limit)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "pending",
		Short: "Records not yet completed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return browseWith(cmd, sourceDir, indexDir, asJSON, func(m browser) ([]model.Record, error) {
				return m.BrowsePending(limit)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "completed",
		Short: "Completed records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return browseWith(cmd, sourceDir, indexDir, asJSON, func(m browser) ([]model.Record, error) {
				return m.BrowseCompleted(limit)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "flagged",
		Short: "Flagged records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return browseWith(cmd, sourceDir, indexDir, asJSON, func(m browser) ([]model.Record, error) {
				return m.BrowseFlagged(limit)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "due",
		Short: "Records due before now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return browseWith(cmd, sourceDir, indexDir, asJSON, func(m browser) ([]model.Record, error) {
				return m.BrowseDueBefore(time.Now().Unix(), limit)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list <name>",
		Short: "Records in lists whose name contains the given substring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return browseWith(cmd, sourceDir, indexDir, asJSON, func(m browser) ([]model.Record, error) {
				return m.BrowseByList(args[0], limit)
			})
		},
	})
	return cmd
}

type browser interface {
	BrowseRecent(limit int) ([]model.Record, error)
	BrowsePending(limit int) ([]model.Record, error)
	BrowseCompleted(limit int) ([]model.Record, error)
	BrowseFlagged(limit int) ([]model.Record, error)
	BrowseDueBefore(before int64, limit int) ([]model.Record, error)
	BrowseByList(name string, limit int) ([]model.Record, error)
}

func browseWith(cmd *cobra.Command, sourceDir, indexDir *string, asJSON bool, fetch func(m browser) ([]model.Record, error)) error {
	m, err := openMirror(cmd, sourceDir, indexDir)
	if err != nil {
		return err
	}
	defer m.Close()

	recs, err := fetch(m)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no records")
		return nil
	}
	return writeRecords(cmd, recs, asJSON)
}
