package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import [file|-]",
		Short: "Import chat sessions from JSON",
		Long:  "Import sessions from a file produced by export (stdin when no file or -). Sessions whose id already exists are skipped.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runImport,
	}

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		exitErr("read", err)
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		exitErr("open", err)
	}
	defer a.Close()

	imported, err := a.chat.Import(data)
	if err != nil {
		exitErr("import", err)
	}

	res := struct {
		OK       bool `json:"ok"`
		Imported int  `json:"imported"`
	}{OK: true, Imported: imported}
	emit(a, res, func(w io.Writer) {
		fmt.Fprintf(w, "imported %s\n", pluralize(imported, "session"))
	})
}
