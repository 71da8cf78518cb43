package rmdxcli

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"remindex/internal/core/mirror"
	"remindex/internal/version"
)

const sourceDirEnv = "REMINDEX_SOURCE_DIR"

func NewRootCommand() *cobra.Command {
	var sourceDir, indexDir string
	cmd := &cobra.Command{
		Use:           "rmdx",
		Short:         "Searchable local mirror of your reminders stores",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.SetVersionTemplate("{{.Version}}\n")
	cmd.Version = version.String()
	cmd.InitDefaultVersionFlag()
	if f := cmd.Flags().Lookup("version"); f != nil {
		f.Shorthand = "v"
	}

	cmd.PersistentFlags().StringVar(&sourceDir, "source-dir", "", "directory holding the source store files")
	cmd.PersistentFlags().StringVar(&indexDir, "index-dir", "", "directory holding the mirror indexes (default: user cache dir)")

	cmd.AddCommand(newSyncCommand(&sourceDir, &indexDir))
	cmd.AddCommand(newSearchCommand(&sourceDir, &indexDir))
	cmd.AddCommand(newBrowseCommand(&sourceDir, &indexDir))
	cmd.AddCommand(newListsCommand(&sourceDir, &indexDir))
	cmd.AddCommand(newStatsCommand(&sourceDir, &indexDir))
	return cmd
}

// openMirror builds the session for one command invocation. The caller must
// Close it.
func openMirror(cmd *cobra.Command, sourceDir, indexDir *string) (*mirror.Mirror, error) {
	src := *sourceDir
	if src == "" {
		src = defaultSourceDir()
	}
	if src == "" {
		return nil, fmt.Errorf("source directory not set (use --source-dir or %s)", sourceDirEnv)
	}
	return mirror.Open(mirror.Config{
		SourceDir: src,
		IndexDir:  *indexDir,
		OnSkip: func(path string, err error) {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: skipped unreadable source %s: %v\n", path, err)
		},
	})
}

func defaultSourceDir() string {
	if v := os.Getenv(sourceDirEnv); v != "" {
		return v
	}
	if runtime.GOOS == "darwin" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		return filepath.Join(home, "Library", "Group Containers",
			"group.com.apple.reminders", "Container_v1", "Stores")
	}
	return ""
}
