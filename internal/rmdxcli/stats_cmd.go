package rmdxcli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newStatsCommand(sourceDir, indexDir *string) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Aggregate counts from the last successful build",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := openMirror(cmd, sourceDir, indexDir)
			if err != nil {
				return err
			}
			defer m.Close()

			st, ok, err := m.Stats()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !ok {
				fmt.Fprintln(out, "no stats yet; run `rmdx sync` first")
				return nil
			}
			if asJSON {
				return json.NewEncoder(out).Encode(st)
			}
			fmt.Fprintf(out, "records: %d (%d pending, %d completed) across %d lists\n",
				st.Total, st.Pending, st.Completed, st.Lists)
			fmt.Fprintf(out, "created between %s and %s\n",
				time.Unix(st.OldestCreated, 0).Format("2006-01-02"),
				time.Unix(st.NewestCreated, 0).Format("2006-01-02"))
			fmt.Fprintf(out, "built %s, high-water-mark %d\n",
				time.Unix(st.BuiltAt, 0).Format(time.RFC3339), st.HighWaterMark)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON instead of text")
	return cmd
}
