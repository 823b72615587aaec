package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcliao/sheria/internal/chat"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export chat sessions as JSON",
		Long:  "Write every session to a JSON file. Use --out - to write to stdout.",
		Args:  cobra.NoArgs,
		Run:   runExport,
	}

	cmd.Flags().StringP("out", "o", "", "Output file (default: kenya-law-ai-chat-<date>.json)")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	out, _ := cmd.Flags().GetString("out")

	a, err := openApp(cmd.Context())
	if err != nil {
		exitErr("open", err)
	}
	defer a.Close()

	now := time.Now()
	st := a.chat.Snapshot()
	data, err := chat.Export(st, now)
	if err != nil {
		exitErr("export", err)
	}

	if out == "-" {
		fmt.Println(string(data))
		return
	}
	if out == "" {
		out = chat.ExportFileName(now)
	}
	if err := os.WriteFile(out, append(data, '\n'), 0o644); err != nil {
		exitErr("export", err)
	}

	res := struct {
		OK       bool   `json:"ok"`
		File     string `json:"file"`
		Sessions int    `json:"sessions"`
	}{OK: true, File: out, Sessions: len(st.Sessions)}
	emit(a, res, func(w io.Writer) {
		fmt.Fprintf(w, "exported %s to %s\n", pluralize(res.Sessions, "session"), out)
	})
}
