package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/rcliao/sheria/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show state database statistics",
		Args:  cobra.NoArgs,
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	a, err := openApp(cmd.Context())
	if err != nil {
		exitErr("open", err)
	}
	defer a.Close()

	path := a.cfg.DBPath
	if a.cfg.Ephemeral {
		path = ""
	}
	stats, err := store.CollectStats(cmd.Context(), a.blobs, path)
	if err != nil {
		exitErr("stats", err)
	}

	emit(a, stats, func(w io.Writer) { renderStats(w, stats) })
}
