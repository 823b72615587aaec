package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"github.com/rcliao/sheria/internal/chat"
	"github.com/rcliao/sheria/internal/model"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat sessions",
}

func init() {
	newCmd := &cobra.Command{
		Use:   "new",
		Short: "Start a new session and make it current",
		Args:  cobra.NoArgs,
		Run:   runChatNew,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions, most recent first",
		Args:  cobra.NoArgs,
		Run:   runChatList,
	}
	listCmd.Flags().StringP("search", "s", "", "Only sessions whose title or messages contain this text")

	useCmd := &cobra.Command{
		Use:   "use <id>",
		Short: "Make a session current",
		Args:  cobra.ExactArgs(1),
		Run:   runChatUse,
	}

	showCmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show a session (default: current)",
		Args:  cobra.MaximumNArgs(1),
		Run:   runChatShow,
	}

	sendCmd := &cobra.Command{
		Use:   "send <text>",
		Short: "Ask a question in a session",
		Long:  "Append a question to the current session (or --session) and record the assistant's answer. Reads the question from stdin when <text> is -.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runChatSend,
	}
	sendCmd.Flags().String("session", "", "Target session id (default: current)")
	sendCmd.Flags().Bool("new", false, "Start a new session for this question")
	sendCmd.Flags().StringSliceP("attach", "a", nil, "Attach files (repeatable)")

	clearCmd := &cobra.Command{
		Use:   "clear [id]",
		Short: "Remove every message from a session (default: current)",
		Args:  cobra.MaximumNArgs(1),
		Run:   runChatClear,
	}

	rmCmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a session",
		Args:  cobra.ExactArgs(1),
		Run:   runChatRm,
	}

	renameCmd := &cobra.Command{
		Use:   "rename <id> <title>",
		Short: "Rename a session",
		Args:  cobra.MinimumNArgs(2),
		Run:   runChatRename,
	}

	chatCmd.AddCommand(newCmd, listCmd, useCmd, showCmd, sendCmd, clearCmd, rmCmd, renameCmd)
	RootCmd.AddCommand(chatCmd)
}

// sessionArg resolves an optional id argument to a session, falling back
// to the current one.
func sessionArg(a *app, args []string) model.Session {
	if len(args) > 0 {
		sess, ok := a.chat.Session(args[0])
		if !ok {
			exitErr("chat", fmt.Errorf("%w: %s", chat.ErrNoSession, args[0]))
		}
		return sess
	}
	sess, ok := a.chat.CurrentSession()
	if !ok {
		exitErr("chat", fmt.Errorf("no current session: run `sheria chat new` or `sheria chat use <id>`"))
	}
	return sess
}

func runChatNew(cmd *cobra.Command, args []string) {
	a, err := openApp(cmd.Context())
	if err != nil {
		exitErr("open", err)
	}
	defer a.Close()

	id := a.chat.CreateSession()
	sess, _ := a.chat.Session(id)
	emit(a, sess, func(w io.Writer) { renderSession(w, sess) })
}

func runChatList(cmd *cobra.Command, args []string) {
	query, _ := cmd.Flags().GetString("search")

	a, err := openApp(cmd.Context())
	if err != nil {
		exitErr("open", err)
	}
	defer a.Close()

	a.chat.SetSearchQuery(query)
	sessions := a.chat.FilteredSessions()
	current := a.chat.Snapshot().CurrentSessionID

	type item struct {
		ID           string    `json:"id"`
		Title        string    `json:"title"`
		MessageCount int       `json:"messageCount"`
		UpdatedAt    time.Time `json:"updatedAt"`
		Current      bool      `json:"current,omitempty"`
	}
	items := make([]item, len(sessions))
	for i, s := range sessions {
		items[i] = item{
			ID:           s.ID,
			Title:        s.Title,
			MessageCount: len(s.Messages),
			UpdatedAt:    s.UpdatedAt,
			Current:      s.ID == current,
		}
	}
	emit(a, items, func(w io.Writer) { renderSessions(w, sessions, current) })
}

func runChatUse(cmd *cobra.Command, args []string) {
	a, err := openApp(cmd.Context())
	if err != nil {
		exitErr("open", err)
	}
	defer a.Close()

	sess, ok := a.chat.Session(args[0])
	if !ok {
		exitErr("use", fmt.Errorf("%w: %s", chat.ErrNoSession, args[0]))
	}
	a.chat.SetCurrent(sess.ID)
	emit(a, sess, func(w io.Writer) { renderSession(w, sess) })
}

func runChatShow(cmd *cobra.Command, args []string) {
	a, err := openApp(cmd.Context())
	if err != nil {
		exitErr("open", err)
	}
	defer a.Close()

	sess := sessionArg(a, args)
	emit(a, sess, func(w io.Writer) { renderSession(w, sess) })
}

func runChatSend(cmd *cobra.Command, args []string) {
	sessionID, _ := cmd.Flags().GetString("session")
	fresh, _ := cmd.Flags().GetBool("new")
	paths, _ := cmd.Flags().GetStringSlice("attach")

	content := strings.Join(args, " ")
	if content == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			exitErr("read stdin", err)
		}
		content = string(b)
	}
	if strings.TrimSpace(content) == "" {
		exitErr("send", chat.ErrEmptyMessage)
	}

	attachments := make([]model.Attachment, 0, len(paths))
	for _, p := range paths {
		att, err := attachmentFromFile(p)
		if err != nil {
			exitErr("attach", err)
		}
		attachments = append(attachments, att)
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		exitErr("open", err)
	}
	defer a.Close()

	switch {
	case fresh:
		sessionID = a.chat.CreateSession()
	case sessionID == "":
		sess, ok := a.chat.CurrentSession()
		if ok {
			sessionID = sess.ID
		} else {
			sessionID = a.chat.CreateSession()
		}
	}

	svc := chat.NewService(a.chat, a.client)
	reply, err := svc.Send(cmd.Context(), sessionID, content, attachments)
	if err != nil && reply.ID == "" {
		exitErr("send", err)
	}
	emit(a, reply, func(w io.Writer) { renderMessage(w, reply) })
	if err != nil {
		exitErr("send", err)
	}
}

// attachmentFromFile describes a local file. The file is not uploaded, so
// URL stays empty.
func attachmentFromFile(path string) (model.Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return model.Attachment{}, err
	}
	if info.IsDir() {
		return model.Attachment{}, fmt.Errorf("%s is a directory", path)
	}
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return model.Attachment{}, fmt.Errorf("detect type of %s: %w", path, err)
	}
	return model.Attachment{
		ID:         model.NewID(),
		Name:       filepath.Base(path),
		Type:       mt.String(),
		Size:       info.Size(),
		UploadedAt: time.Now(),
	}, nil
}

func runChatClear(cmd *cobra.Command, args []string) {
	a, err := openApp(cmd.Context())
	if err != nil {
		exitErr("open", err)
	}
	defer a.Close()

	sess := sessionArg(a, args)
	a.chat.ClearSession(sess.ID)
	sess, _ = a.chat.Session(sess.ID)
	emit(a, sess, func(w io.Writer) { renderSession(w, sess) })
}

type deletedSession struct {
	Deleted          string  `json:"deleted"`
	CurrentSessionID *string `json:"currentSessionId"`
}

func runChatRm(cmd *cobra.Command, args []string) {
	a, err := openApp(cmd.Context())
	if err != nil {
		exitErr("open", err)
	}
	defer a.Close()

	if _, ok := a.chat.Session(args[0]); !ok {
		exitErr("rm", fmt.Errorf("%w: %s", chat.ErrNoSession, args[0]))
	}
	a.chat.DeleteSession(args[0])

	current := a.chat.Snapshot().CurrentSessionID
	res := deletedSession{Deleted: args[0], CurrentSessionID: optionalID(current)}
	emit(a, res, func(w io.Writer) {
		fmt.Fprintf(w, "deleted %s\n", args[0])
		if current != "" {
			fmt.Fprintf(w, "current session: %s\n", current)
		}
	})
}

func runChatRename(cmd *cobra.Command, args []string) {
	a, err := openApp(cmd.Context())
	if err != nil {
		exitErr("open", err)
	}
	defer a.Close()

	if _, ok := a.chat.Session(args[0]); !ok {
		exitErr("rename", fmt.Errorf("%w: %s", chat.ErrNoSession, args[0]))
	}
	a.chat.RenameSession(args[0], strings.Join(args[1:], " "))
	sess, _ := a.chat.Session(args[0])
	emit(a, sess, func(w io.Writer) { renderSession(w, sess) })
}
