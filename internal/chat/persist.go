package chat

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rcliao/sheria/internal/model"
)

// Durable form of the chat store. Timestamps travel as RFC 3339 text and
// are reparsed on load; anything unparseable becomes the zero time.

type persistedState struct {
	Sessions         []wireSession   `json:"sessions"`
	Config           json.RawMessage `json:"config,omitempty"`
	CurrentSessionID *string         `json:"currentSessionId"`
}

type wireSession struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Messages  []wireMessage   `json:"messages"`
	CreatedAt string          `json:"createdAt"`
	UpdatedAt string          `json:"updatedAt"`
	Config    json.RawMessage `json:"config,omitempty"`
}

type wireMessage struct {
	ID             string           `json:"id"`
	Content        string           `json:"content"`
	Role           model.Role       `json:"role"`
	Timestamp      string           `json:"timestamp"`
	CaseReferences []string         `json:"caseReferences,omitempty"`
	Attachments    []wireAttachment `json:"attachments,omitempty"`
}

type wireAttachment struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Size       int64  `json:"size"`
	URL        string `json:"url,omitempty"`
	UploadedAt string `json:"uploadedAt"`
}

// DecodeReport counts what had to be repaired while decoding.
type DecodeReport struct {
	BadTimestamps int
	BadConfigs    int
	BadRoles      int
}

// Repaired reports whether anything was repaired.
func (r DecodeReport) Repaired() bool {
	return r.BadTimestamps > 0 || r.BadConfigs > 0 || r.BadRoles > 0
}

func formatTime(t time.Time) string {
	return model.FormatTime(t)
}

func (r *DecodeReport) parseTime(s string) time.Time {
	t, ok := model.ParseTime(s)
	if !ok {
		r.BadTimestamps++
	}
	return t
}

// parseRole keeps known roles. Anything else is shown as a reply.
func (r *DecodeReport) parseRole(role model.Role) model.Role {
	if !role.Valid() {
		r.BadRoles++
		return model.RoleAssistant
	}
	return role
}

// parseConfig decodes raw over the defaults. Missing fields keep their
// default; an undecodable or invalid config is replaced by the defaults.
func (r *DecodeReport) parseConfig(raw json.RawMessage) model.ChatConfig {
	cfg := model.DefaultConfig()
	if len(raw) == 0 {
		return cfg
	}
	if err := json.Unmarshal(raw, &cfg); err != nil || cfg.Validate() != nil {
		r.BadConfigs++
		return model.DefaultConfig()
	}
	return cfg
}

// EncodeState serializes the persisted subset of st.
func EncodeState(st State) ([]byte, error) {
	cfg, err := json.Marshal(st.Config)
	if err != nil {
		return nil, err
	}
	p := persistedState{
		Sessions: encodeSessions(st.Sessions),
		Config:   cfg,
	}
	if st.CurrentSessionID != "" {
		id := st.CurrentSessionID
		p.CurrentSessionID = &id
	}
	return json.Marshal(p)
}

func encodeSessions(sessions []model.Session) []wireSession {
	out := make([]wireSession, 0, len(sessions))
	for _, s := range sessions {
		cfg, _ := json.Marshal(s.Config)
		ws := wireSession{
			ID:        s.ID,
			Title:     s.Title,
			Messages:  make([]wireMessage, 0, len(s.Messages)),
			CreatedAt: formatTime(s.CreatedAt),
			UpdatedAt: formatTime(s.UpdatedAt),
			Config:    cfg,
		}
		for _, m := range s.Messages {
			wm := wireMessage{
				ID:             m.ID,
				Content:        m.Content,
				Role:           m.Role,
				Timestamp:      formatTime(m.Timestamp),
				CaseReferences: m.CaseReferences,
			}
			for _, a := range m.Attachments {
				wm.Attachments = append(wm.Attachments, wireAttachment{
					ID:         a.ID,
					Name:       a.Name,
					Type:       a.Type,
					Size:       a.Size,
					URL:        a.URL,
					UploadedAt: formatTime(a.UploadedAt),
				})
			}
			ws.Messages = append(ws.Messages, wm)
		}
		out = append(out, ws)
	}
	return out
}

// DecodeState parses a blob written by EncodeState. Only malformed JSON is
// an error; bad timestamps and configs are repaired and counted.
func DecodeState(data []byte) (State, DecodeReport, error) {
	var report DecodeReport
	var p persistedState
	if err := json.Unmarshal(data, &p); err != nil {
		return InitialState(), report, fmt.Errorf("decode chat state: %w", err)
	}

	st := InitialState()
	st.Config = report.parseConfig(p.Config)
	st.Sessions = report.decodeSessions(p.Sessions)
	if p.CurrentSessionID != nil {
		st.CurrentSessionID = *p.CurrentSessionID
	}
	return st, report, nil
}

func (r *DecodeReport) decodeSessions(in []wireSession) []model.Session {
	out := make([]model.Session, 0, len(in))
	for _, ws := range in {
		s := model.Session{
			ID:        ws.ID,
			Title:     ws.Title,
			Messages:  make([]model.Message, 0, len(ws.Messages)),
			CreatedAt: r.parseTime(ws.CreatedAt),
			UpdatedAt: r.parseTime(ws.UpdatedAt),
			Config:    r.parseConfig(ws.Config),
		}
		for _, wm := range ws.Messages {
			m := model.Message{
				ID:             wm.ID,
				Content:        wm.Content,
				Role:           r.parseRole(wm.Role),
				Timestamp:      r.parseTime(wm.Timestamp),
				CaseReferences: wm.CaseReferences,
			}
			for _, wa := range wm.Attachments {
				m.Attachments = append(m.Attachments, model.Attachment{
					ID:         wa.ID,
					Name:       wa.Name,
					Type:       wa.Type,
					Size:       wa.Size,
					URL:        wa.URL,
					UploadedAt: r.parseTime(wa.UploadedAt),
				})
			}
			s.Messages = append(s.Messages, m)
		}
		out = append(out, s)
	}
	return out
}
