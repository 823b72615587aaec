package chat

import (
	"strings"

	"github.com/rcliao/sheria/internal/model"
)

// FilteredSessions returns the sessions whose title or any message content
// contains query, case-insensitively. A blank query returns every session
// in order. The result never aliases the input.
func FilteredSessions(sessions []model.Session, query string) []model.Session {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]model.Session, 0, len(sessions))
	for _, s := range sessions {
		if q == "" || sessionMatches(s, q) {
			out = append(out, s.Clone())
		}
	}
	return out
}

func sessionMatches(s model.Session, q string) bool {
	if strings.Contains(strings.ToLower(s.Title), q) {
		return true
	}
	for _, m := range s.Messages {
		if strings.Contains(strings.ToLower(m.Content), q) {
			return true
		}
	}
	return false
}

// CurrentSession returns the session with the given id.
func CurrentSession(sessions []model.Session, id string) (model.Session, bool) {
	if id == "" {
		return model.Session{}, false
	}
	for _, s := range sessions {
		if s.ID == id {
			return s.Clone(), true
		}
	}
	return model.Session{}, false
}

// CurrentMessages returns the messages of the session with the given id,
// or an empty slice.
func CurrentMessages(sessions []model.Session, id string) []model.Message {
	s, ok := CurrentSession(sessions, id)
	if !ok {
		return []model.Message{}
	}
	return s.Messages
}

// CurrentMessageCount is len(CurrentMessages) without the copy.
func CurrentMessageCount(sessions []model.Session, id string) int {
	for _, s := range sessions {
		if s.ID == id {
			return len(s.Messages)
		}
	}
	return 0
}
