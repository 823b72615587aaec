package chat

import (
	"reflect"
	"testing"

	"github.com/rcliao/sheria/internal/model"
)

func fixtureSessions() []model.Session {
	return []model.Session{
		{ID: "s1", Title: "Land dispute in Nakuru", Messages: []model.Message{
			{ID: "m1", Role: model.RoleUser, Content: "Who owns the title deed?"},
		}},
		{ID: "s2", Title: "New Chat", Messages: []model.Message{
			{ID: "m2", Role: model.RoleUser, Content: "Can I get BAIL for a minor offence?"},
		}},
		{ID: "s3", Title: "Employment contract", Messages: []model.Message{}},
	}
}

func ids(sessions []model.Session) []string {
	out := make([]string, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.ID)
	}
	return out
}

func TestFilteredSessions(t *testing.T) {
	sessions := fixtureSessions()

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"empty returns all in order", "", []string{"s1", "s2", "s3"}},
		{"blank returns all", "   ", []string{"s1", "s2", "s3"}},
		{"title match", "land", []string{"s1"}},
		{"content only match", "bail", []string{"s2"}},
		{"case insensitive", "EMPLOYMENT", []string{"s3"}},
		{"multiple", "n", []string{"s1", "s2", "s3"}},
		{"nothing", "defamation", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(FilteredSessions(sessions, tt.query))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FilteredSessions(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestFilteredSessionsIsStableAndPure(t *testing.T) {
	sessions := fixtureSessions()
	a := FilteredSessions(sessions, "bail")
	b := FilteredSessions(sessions, "bail")
	if !reflect.DeepEqual(a, b) {
		t.Error("repeated calls returned different results")
	}

	a[0].Title = "changed"
	if sessions[1].Title != "New Chat" {
		t.Error("selector result aliases the input")
	}
}

func TestCurrentSession(t *testing.T) {
	sessions := fixtureSessions()

	got, ok := CurrentSession(sessions, "s2")
	if !ok || got.ID != "s2" {
		t.Fatalf("expected s2, got %+v %v", got, ok)
	}
	if _, ok := CurrentSession(sessions, "missing"); ok {
		t.Error("expected no match")
	}
	if _, ok := CurrentSession(sessions, ""); ok {
		t.Error("expected empty id to match nothing")
	}
}

func TestCurrentMessages(t *testing.T) {
	sessions := fixtureSessions()
	if n := CurrentMessageCount(sessions, "s1"); n != 1 {
		t.Errorf("expected 1, got %d", n)
	}
	if n := CurrentMessageCount(sessions, "missing"); n != 0 {
		t.Errorf("expected 0, got %d", n)
	}
	if msgs := CurrentMessages(sessions, "missing"); msgs == nil || len(msgs) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", msgs)
	}
	if msgs := CurrentMessages(sessions, "s2"); len(msgs) != 1 || msgs[0].ID != "m2" {
		t.Errorf("unexpected messages %+v", msgs)
	}
}

func TestStoreFilteredSessionsUsesQuery(t *testing.T) {
	s, _ := newTestStore(t)
	a := s.CreateSession()
	b := s.CreateSession()
	s.AppendMessage(a, userMsg("m1", "eviction notice"))
	s.AppendMessage(b, userMsg("m2", "custody hearing"))

	if got := ids(s.FilteredSessions()); len(got) != 2 {
		t.Errorf("expected all sessions, got %v", got)
	}
	s.SetSearchQuery("EVICTION")
	got := ids(s.FilteredSessions())
	if !reflect.DeepEqual(got, []string{a}) {
		t.Errorf("expected [%s], got %v", a, got)
	}
}
