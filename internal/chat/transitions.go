package chat

import (
	"strings"
	"time"

	"github.com/rcliao/sheria/internal/model"
)

// Transitions never modify their input. Slices are copied before they are
// written so earlier snapshots stay valid for concurrent readers.

func createSession(st State, id string, now time.Time) State {
	sess := model.Session{
		ID:        id,
		Title:     DefaultTitle,
		Messages:  []model.Message{},
		CreatedAt: now,
		UpdatedAt: now,
		Config:    st.Config,
	}
	sessions := make([]model.Session, 0, len(st.Sessions)+1)
	sessions = append(sessions, sess)
	sessions = append(sessions, st.Sessions...)

	st.Sessions = sessions
	st.CurrentSessionID = id
	return st
}

func setCurrent(st State, id string) State {
	st.CurrentSessionID = id
	return st
}

// updateSession applies fn to the session with the given id. A missing id
// returns st unchanged.
func updateSession(st State, id string, fn func(model.Session) model.Session) (State, bool) {
	i := st.indexOf(id)
	if i < 0 {
		return st, false
	}
	sessions := make([]model.Session, len(st.Sessions))
	copy(sessions, st.Sessions)
	sessions[i] = fn(sessions[i])
	st.Sessions = sessions
	return st, true
}

// touch bumps UpdatedAt without ever moving it backwards.
func touch(sess model.Session, now time.Time) model.Session {
	if now.After(sess.UpdatedAt) {
		sess.UpdatedAt = now
	}
	return sess
}

func appendMessage(st State, sessionID string, msg model.Message, now time.Time) (State, bool) {
	return updateSession(st, sessionID, func(sess model.Session) model.Session {
		if len(sess.Messages) == 0 && msg.Role == model.RoleUser {
			sess.Title = deriveTitle(msg.Content)
		}
		msgs := make([]model.Message, len(sess.Messages), len(sess.Messages)+1)
		copy(msgs, sess.Messages)
		sess.Messages = append(msgs, msg.Clone())
		return touch(sess, now)
	})
}

// deriveTitle truncates content to titleMaxRunes characters, marking the
// cut with an ellipsis.
func deriveTitle(content string) string {
	runes := []rune(content)
	if len(runes) <= titleMaxRunes {
		return content
	}
	return string(runes[:titleMaxRunes]) + titleEllipsis
}

func clearSession(st State, sessionID string, now time.Time) (State, bool) {
	return updateSession(st, sessionID, func(sess model.Session) model.Session {
		sess.Messages = []model.Message{}
		return touch(sess, now)
	})
}

func deleteSession(st State, sessionID string) (State, bool) {
	i := st.indexOf(sessionID)
	if i < 0 {
		return st, false
	}
	sessions := make([]model.Session, 0, len(st.Sessions)-1)
	sessions = append(sessions, st.Sessions[:i]...)
	sessions = append(sessions, st.Sessions[i+1:]...)
	st.Sessions = sessions

	if st.CurrentSessionID == sessionID {
		st.CurrentSessionID = ""
		if len(sessions) > 0 {
			st.CurrentSessionID = sessions[0].ID
		}
	}
	return st, true
}

func renameSession(st State, sessionID, title string, now time.Time) (State, bool) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = UntitledTitle
	}
	return setSessionTitle(st, sessionID, title, now)
}

func setSessionTitle(st State, sessionID, title string, now time.Time) (State, bool) {
	return updateSession(st, sessionID, func(sess model.Session) model.Session {
		sess.Title = title
		return touch(sess, now)
	})
}

func updateConfig(st State, patch model.ConfigPatch) State {
	st.Config = patch.Apply(st.Config)
	return st
}

func resetConfig(st State) State {
	st.Config = model.DefaultConfig()
	return st
}

// updateMessage applies fn to one message of one session. Either lookup
// missing returns st unchanged.
func updateMessage(st State, sessionID, messageID string, fn func(model.Message) model.Message) (State, bool) {
	found := false
	next, _ := updateSession(st, sessionID, func(sess model.Session) model.Session {
		for i := range sess.Messages {
			if sess.Messages[i].ID != messageID {
				continue
			}
			msgs := make([]model.Message, len(sess.Messages))
			copy(msgs, sess.Messages)
			msgs[i] = fn(msgs[i])
			sess.Messages = msgs
			found = true
			break
		}
		return sess
	})
	if !found {
		return st, false
	}
	return next, true
}

func addAttachment(st State, sessionID, messageID string, att model.Attachment) (State, bool) {
	return updateMessage(st, sessionID, messageID, func(msg model.Message) model.Message {
		atts := make([]model.Attachment, len(msg.Attachments), len(msg.Attachments)+1)
		copy(atts, msg.Attachments)
		msg.Attachments = append(atts, att)
		return msg
	})
}

func removeAttachment(st State, sessionID, messageID, attachmentID string) (State, bool) {
	return updateMessage(st, sessionID, messageID, func(msg model.Message) model.Message {
		var atts []model.Attachment
		for _, a := range msg.Attachments {
			if a.ID != attachmentID {
				atts = append(atts, a)
			}
		}
		msg.Attachments = atts
		return msg
	})
}
