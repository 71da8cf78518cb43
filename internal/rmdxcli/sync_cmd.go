package rmdxcli

import (
	"fmt"

	"github.com/spf13/cobra"

	"remindex/internal/core/mirror"
)

func newSyncCommand(sourceDir, indexDir *string) *cobra.Command {
	var full bool
	var progress bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Refresh the mirror from the source stores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := openMirror(cmd, sourceDir, indexDir)
			if err != nil {
				return err
			}
			defer m.Close()

			var fn mirror.ProgressFunc
			if progress {
				fn = func(phase mirror.Phase, current int, total int) {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s %d/%d\n", phase, current, total)
				}
			}

			if full {
				st, err := m.RebuildFull(fn)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "full rebuild: %d records, %d lists\n", st.Total, st.Lists)
				return nil
			}

			f, err := m.EnsureFresh()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sync: %s\n", f)
			return nil
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "discard both indexes and rebuild from scratch")
	cmd.Flags().BoolVar(&progress, "progress", false, "print build progress to stderr")
	return cmd
}
