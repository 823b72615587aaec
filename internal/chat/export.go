package chat

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rcliao/sheria/internal/model"
)

type exportDocument struct {
	ExportDate string        `json:"exportDate"`
	Sessions   []wireSession `json:"sessions"`
}

// Export serializes every session of st with ISO-8601 timestamps.
func Export(st State, now time.Time) ([]byte, error) {
	return json.MarshalIndent(exportDocument{
		ExportDate: formatTime(now),
		Sessions:   encodeSessions(st.Sessions),
	}, "", "  ")
}

// ExportFileName is the default file name for an export taken at now.
func ExportFileName(now time.Time) string {
	return fmt.Sprintf("kenya-law-ai-chat-%s.json", now.Format("2006-01-02"))
}

// Import merges the sessions of an export into the store, skipping ids
// already present. Imported sessions keep their order and are placed after
// the existing ones. Returns how many sessions were added.
func (s *Store) Import(data []byte) (int, error) {
	var doc exportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("parse export: %w", err)
	}
	var report DecodeReport
	incoming := report.decodeSessions(doc.Sessions)
	if report.Repaired() {
		s.logger.Warn().
			Int("bad_timestamps", report.BadTimestamps).
			Int("bad_configs", report.BadConfigs).
			Int("bad_roles", report.BadRoles).
			Msg("repaired sessions on import")
	}

	imported := 0
	s.apply(true, func(st State) State {
		seen := make(map[string]bool, len(st.Sessions))
		for _, sess := range st.Sessions {
			seen[sess.ID] = true
		}
		sessions := make([]model.Session, len(st.Sessions), len(st.Sessions)+len(incoming))
		copy(sessions, st.Sessions)
		for _, sess := range incoming {
			if sess.ID == "" || seen[sess.ID] {
				continue
			}
			seen[sess.ID] = true
			sessions = append(sessions, sess)
			imported++
		}
		st.Sessions = sessions
		return st
	})
	return imported, nil
}
