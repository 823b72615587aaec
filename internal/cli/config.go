package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/sheria/internal/model"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Response preferences for new sessions",
}

func init() {
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the current preferences",
		Args:  cobra.NoArgs,
		Run:   runConfigShow,
	})
	configCmd.AddCommand(&cobra.Command{
		Use:               "set key=value...",
		Short:             "Change preferences",
		Long:              configSetHelp(),
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: completeConfigArgs,
		Run:               runConfigSet,
	})
	configCmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Restore default preferences",
		Args:  cobra.NoArgs,
		Run:   runConfigReset,
	})

	RootCmd.AddCommand(configCmd)
}

var boolOptions = []string{"true", "false"}

// configKeys lists the settable keys with their allowed values, in help
// order.
var configKeys = []struct {
	name    string
	options []string
}{
	{"style", model.Options(model.ValidResponseStyles)},
	{"detail", model.Options(model.ValidDetailLevels)},
	{"language", model.Options(model.ValidLanguages)},
	{"focus", model.Options(model.ValidFocusAreas)},
	{"length", model.Options(model.ValidResponseLengths)},
	{"examples", boolOptions},
	{"caselaw", boolOptions},
	{"procedures", boolOptions},
}

func configSetHelp() string {
	var b strings.Builder
	b.WriteString("Change preferences. Keys:\n")
	for _, k := range configKeys {
		fmt.Fprintf(&b, "  %-11s %s\n", k.name, strings.Join(k.options, ", "))
	}
	b.WriteString("\nExisting sessions keep the preferences they were created with.")
	return b.String()
}

// completeConfigArgs offers "key=" until a key is typed, then its values.
func completeConfigArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	key, _, hasValue := strings.Cut(toComplete, "=")
	var out []string
	for _, k := range configKeys {
		if !hasValue {
			if strings.HasPrefix(k.name, key) {
				out = append(out, k.name+"=")
			}
			continue
		}
		if k.name == strings.ToLower(key) {
			for _, o := range k.options {
				out = append(out, k.name+"="+o)
			}
		}
	}
	if !hasValue {
		return out, cobra.ShellCompDirectiveNoSpace
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// parseConfigArgs turns key=value pairs into a patch. Enumerated values are
// checked against the result of applying the patch to base.
func parseConfigArgs(base model.ChatConfig, args []string) (model.ConfigPatch, error) {
	var p model.ConfigPatch
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return p, fmt.Errorf("expected key=value, got %q", arg)
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "style", "responsestyle", "response_style":
			p.ResponseStyle = &value
		case "detail", "detaillevel", "detail_level":
			p.DetailLevel = &value
		case "language", "lang":
			p.Language = &value
		case "focus", "focusarea", "focus_area":
			p.FocusArea = &value
		case "length", "responselength", "response_length":
			p.ResponseLength = &value
		case "examples", "includeexamples", "include_examples":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return p, fmt.Errorf("%s: %w", key, err)
			}
			p.IncludeExamples = &b
		case "caselaw", "includecaselaw", "include_case_law":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return p, fmt.Errorf("%s: %w", key, err)
			}
			p.IncludeCaseLaw = &b
		case "procedures", "includeprocedures", "include_procedures":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return p, fmt.Errorf("%s: %w", key, err)
			}
			p.IncludeProcedures = &b
		default:
			return p, fmt.Errorf("unknown key %q", key)
		}
	}
	if err := p.Apply(base).Validate(); err != nil {
		return p, err
	}
	return p, nil
}

func runConfigShow(cmd *cobra.Command, args []string) {
	a, err := openApp(cmd.Context())
	if err != nil {
		exitErr("open", err)
	}
	defer a.Close()

	cfg := a.chat.Snapshot().Config
	emit(a, cfg, func(w io.Writer) { renderConfig(w, cfg) })
}

func runConfigSet(cmd *cobra.Command, args []string) {
	a, err := openApp(cmd.Context())
	if err != nil {
		exitErr("open", err)
	}
	defer a.Close()

	patch, err := parseConfigArgs(a.chat.Snapshot().Config, args)
	if err != nil {
		exitErr("config set", err)
	}
	a.chat.UpdateConfig(patch)

	cfg := a.chat.Snapshot().Config
	emit(a, cfg, func(w io.Writer) { renderConfig(w, cfg) })
}

func runConfigReset(cmd *cobra.Command, args []string) {
	a, err := openApp(cmd.Context())
	if err != nil {
		exitErr("open", err)
	}
	defer a.Close()

	a.chat.ResetConfig()
	cfg := a.chat.Snapshot().Config
	emit(a, cfg, func(w io.Writer) { renderConfig(w, cfg) })
}
