package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/rcliao/sheria/internal/auth"
	"github.com/rcliao/sheria/internal/model"
	"github.com/rcliao/sheria/internal/store"
)

var (
	bold   = color.New(color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

// emit writes v as indented JSON, or calls text when --format text.
func emit(a *app, v any, text func(w io.Writer)) {
	w := io.Writer(os.Stdout)
	if a != nil && a.cfg.Format == "text" && text != nil {
		text(w)
		return
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(w, string(b))
}

type okResult struct {
	OK bool `json:"ok"`
}

// emitOK reports a command that has nothing to show beyond success.
func emitOK(a *app, msg string) {
	emit(a, okResult{OK: true}, func(w io.Writer) { fmt.Fprintln(w, green(msg)) })
}

// optionalID renders an empty id as JSON null.
func optionalID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

func ago(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return humanize.Time(t)
}

func renderSessions(w io.Writer, sessions []model.Session, currentID string) {
	if len(sessions) == 0 {
		fmt.Fprintln(w, dim("no sessions"))
		return
	}
	for _, s := range sessions {
		marker := " "
		if s.ID == currentID {
			marker = green("*")
		}
		fmt.Fprintf(w, "%s %s  %s  %s\n",
			marker,
			dim(s.ID),
			bold(s.Title),
			dim(fmt.Sprintf("(%s, updated %s)", pluralize(len(s.Messages), "message"), ago(s.UpdatedAt))))
	}
}

func renderSession(w io.Writer, s model.Session) {
	fmt.Fprintf(w, "%s  %s\n", bold(s.Title), dim(s.ID))
	fmt.Fprintf(w, "%s\n\n", dim(fmt.Sprintf("created %s, %s style, %s", ago(s.CreatedAt), s.Config.ResponseStyle, s.Config.Language)))
	if len(s.Messages) == 0 {
		fmt.Fprintln(w, dim("no messages"))
		return
	}
	for _, m := range s.Messages {
		renderMessage(w, m)
	}
}

func renderMessage(w io.Writer, m model.Message) {
	who := cyan("you")
	if m.Role == model.RoleAssistant {
		who = yellow("sheria")
	}
	fmt.Fprintf(w, "%s %s\n", who, dim(ago(m.Timestamp)))
	fmt.Fprintln(w, m.Content)
	for _, a := range m.Attachments {
		fmt.Fprintf(w, "  %s %s %s\n", dim("attached:"), a.Name, dim(fmt.Sprintf("(%s, %s)", a.Type, humanize.Bytes(uint64(a.Size)))))
	}
	if len(m.CaseReferences) > 0 {
		fmt.Fprintf(w, "  %s %s\n", dim("references:"), strings.Join(m.CaseReferences, "; "))
	}
	fmt.Fprintln(w)
}

func renderConfig(w io.Writer, cfg model.ChatConfig) {
	rows := [][2]string{
		{"style", cfg.ResponseStyle},
		{"detail", cfg.DetailLevel},
		{"language", cfg.Language},
		{"focus", cfg.FocusArea},
		{"length", cfg.ResponseLength},
		{"examples", fmt.Sprint(cfg.IncludeExamples)},
		{"caselaw", fmt.Sprint(cfg.IncludeCaseLaw)},
		{"procedures", fmt.Sprint(cfg.IncludeProcedures)},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%-11s %s\n", dim(r[0]), r[1])
	}
}

func renderAuth(w io.Writer, st auth.State) {
	if !st.IsAuthenticated || st.User == nil {
		fmt.Fprintln(w, dim("not signed in"))
		return
	}
	u := st.User
	verified := yellow("unverified")
	if u.IsVerified {
		verified = green("verified")
	}
	fmt.Fprintf(w, "%s <%s>\n", bold(u.Name), u.Email)
	fmt.Fprintf(w, "%s, %s\n", u.Role, verified)
}

func renderStats(w io.Writer, st *store.Stats) {
	fmt.Fprintf(w, "%s %s (%s)\n", dim("database"), st.DBPath, humanize.Bytes(uint64(st.DBSizeBytes)))
	for _, b := range st.Blobs {
		fmt.Fprintf(w, "  %-20s %8s  rev %-4d %s\n", b.Name, humanize.Bytes(uint64(b.Size)), b.Revision, dim(ago(b.UpdatedAt)))
	}
}

func pluralize(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return humanize.Comma(int64(n)) + " " + word + "s"
}
