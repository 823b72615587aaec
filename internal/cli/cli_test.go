package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/rcliao/sheria/internal/auth"
	"github.com/rcliao/sheria/internal/model"
)

func TestParseConfigArgs(t *testing.T) {
	base := model.DefaultConfig()

	p, err := parseConfigArgs(base, []string{"style=casual", "Language=swahili", "caselaw=false"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got := p.Apply(base)
	if got.ResponseStyle != "casual" || got.Language != "swahili" || got.IncludeCaseLaw {
		t.Errorf("unexpected config %+v", got)
	}
	if got.DetailLevel != base.DetailLevel || !got.IncludeExamples {
		t.Errorf("untouched fields changed: %+v", got)
	}
}

func TestParseConfigArgsErrors(t *testing.T) {
	base := model.DefaultConfig()
	cases := map[string][]string{
		"missing equals": {"style"},
		"unknown key":    {"tone=warm"},
		"bad enum":       {"length=enormous"},
		"bad bool":       {"examples=maybe"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := parseConfigArgs(base, args); err == nil {
				t.Errorf("expected error for %v", args)
			}
		})
	}
}

func TestParseConfigArgsMentionsValidOptions(t *testing.T) {
	_, err := parseConfigArgs(model.DefaultConfig(), []string{"focus=tax"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "constitutional") {
		t.Errorf("error should list valid focus areas: %v", err)
	}
}

func TestAttachmentFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("section 47 of the Land Act\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	att, err := attachmentFromFile(path)
	if err != nil {
		t.Fatalf("attachment: %v", err)
	}
	if att.Name != "notes.txt" {
		t.Errorf("name = %q", att.Name)
	}
	if att.Size != 27 {
		t.Errorf("size = %d, want 27", att.Size)
	}
	if !strings.HasPrefix(att.Type, "text/plain") {
		t.Errorf("type = %q, want text/plain", att.Type)
	}
	if att.ID == "" || att.URL != "" {
		t.Errorf("unexpected id/url: %+v", att)
	}
}

func TestAttachmentFromFileRejectsDirectory(t *testing.T) {
	if _, err := attachmentFromFile(t.TempDir()); err == nil {
		t.Error("expected error for directory")
	}
	if _, err := attachmentFromFile(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestConfigSetHelpListsOptions(t *testing.T) {
	help := configSetHelp()
	for _, want := range []string{"practical", "comprehensive", "bilingual", "employment", "long, medium, short", "caselaw"} {
		if !strings.Contains(help, want) {
			t.Errorf("help missing %q:\n%s", want, help)
		}
	}
}

func TestCompleteConfigArgs(t *testing.T) {
	keys, directive := completeConfigArgs(nil, nil, "l")
	if len(keys) != 2 || keys[0] != "language=" || keys[1] != "length=" {
		t.Errorf("key completion = %v", keys)
	}
	if directive != cobra.ShellCompDirectiveNoSpace {
		t.Errorf("directive = %v", directive)
	}

	values, _ := completeConfigArgs(nil, nil, "language=")
	want := []string{"language=bilingual", "language=english", "language=swahili"}
	if strings.Join(values, " ") != strings.Join(want, " ") {
		t.Errorf("value completion = %v, want %v", values, want)
	}

	if none, _ := completeConfigArgs(nil, nil, "tone="); len(none) != 0 {
		t.Errorf("unknown key completed to %v", none)
	}
}

func TestIdentityOmitsTokens(t *testing.T) {
	st := auth.State{
		User:            &model.User{ID: "u1", Name: "Amina Odhiambo"},
		AccessToken:     "secret-access",
		RefreshToken:    "secret-refresh",
		IsAuthenticated: true,
	}
	b, err := json.Marshal(identityOf(st))
	if err != nil {
		t.Fatal(err)
	}
	out := string(b)
	if strings.Contains(out, "secret") {
		t.Errorf("tokens leaked: %s", out)
	}
	if !strings.Contains(out, `"isAuthenticated":true`) || !strings.Contains(out, `"u1"`) {
		t.Errorf("identity incomplete: %s", out)
	}
}

func TestDeletedSessionJSON(t *testing.T) {
	b, _ := json.Marshal(deletedSession{Deleted: `a"b`, CurrentSessionID: optionalID("")})
	if string(b) != `{"deleted":"a\"b","currentSessionId":null}` {
		t.Errorf("got %s", b)
	}

	b, _ = json.Marshal(deletedSession{Deleted: "x", CurrentSessionID: optionalID("y")})
	if string(b) != `{"deleted":"x","currentSessionId":"y"}` {
		t.Errorf("got %s", b)
	}
}
