// Package model defines the core chat and identity data types.
package model

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Role is the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Attachment is a file attached to a message. URL stays empty until the
// file has been uploaded somewhere durable.
type Attachment struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Size       int64     `json:"size"`
	URL        string    `json:"url,omitempty"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Message is a single entry in a session's history.
type Message struct {
	ID             string       `json:"id"`
	Content        string       `json:"content"`
	Role           Role         `json:"role"`
	Timestamp      time.Time    `json:"timestamp"`
	CaseReferences []string     `json:"caseReferences,omitempty"`
	Attachments    []Attachment `json:"attachments,omitempty"`
}

// Session is a named conversation thread with its own history and a
// configuration snapshot taken when it was created.
type Session struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Messages  []Message  `json:"messages"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	Config    ChatConfig `json:"config"`
}

// Clone returns a copy of s that shares no slices with it.
func (s Session) Clone() Session {
	out := s
	out.Messages = make([]Message, len(s.Messages))
	for i, m := range s.Messages {
		out.Messages[i] = m.Clone()
	}
	return out
}

// Clone returns a copy of m that shares no slices with it.
func (m Message) Clone() Message {
	out := m
	if m.CaseReferences != nil {
		out.CaseReferences = append([]string(nil), m.CaseReferences...)
	}
	if m.Attachments != nil {
		out.Attachments = append([]Attachment(nil), m.Attachments...)
	}
	return out
}

// ChatConfig shapes the responses of the completion service.
type ChatConfig struct {
	ResponseStyle     string `json:"responseStyle" validate:"oneof=formal casual academic practical"`
	DetailLevel       string `json:"detailLevel" validate:"oneof=brief moderate comprehensive"`
	IncludeExamples   bool   `json:"includeExamples"`
	IncludeCaseLaw    bool   `json:"includeCaseLaw"`
	IncludeProcedures bool   `json:"includeProcedures"`
	Language          string `json:"language" validate:"oneof=english swahili bilingual"`
	FocusArea         string `json:"focusArea" validate:"oneof=constitutional criminal civil family land employment all"`
	ResponseLength    string `json:"responseLength" validate:"oneof=short medium long"`
}

// DefaultConfig returns the configuration new installs start with.
func DefaultConfig() ChatConfig {
	return ChatConfig{
		ResponseStyle:     "formal",
		DetailLevel:       "moderate",
		IncludeExamples:   true,
		IncludeCaseLaw:    true,
		IncludeProcedures: true,
		Language:          "english",
		FocusArea:         "all",
		ResponseLength:    "medium",
	}
}

// ConfigPatch is a partial ChatConfig. Nil fields are left unchanged.
type ConfigPatch struct {
	ResponseStyle     *string `json:"responseStyle,omitempty"`
	DetailLevel       *string `json:"detailLevel,omitempty"`
	IncludeExamples   *bool   `json:"includeExamples,omitempty"`
	IncludeCaseLaw    *bool   `json:"includeCaseLaw,omitempty"`
	IncludeProcedures *bool   `json:"includeProcedures,omitempty"`
	Language          *string `json:"language,omitempty"`
	FocusArea         *string `json:"focusArea,omitempty"`
	ResponseLength    *string `json:"responseLength,omitempty"`
}

// Apply returns c with every non-nil field of p written over it.
func (p ConfigPatch) Apply(c ChatConfig) ChatConfig {
	if p.ResponseStyle != nil {
		c.ResponseStyle = *p.ResponseStyle
	}
	if p.DetailLevel != nil {
		c.DetailLevel = *p.DetailLevel
	}
	if p.IncludeExamples != nil {
		c.IncludeExamples = *p.IncludeExamples
	}
	if p.IncludeCaseLaw != nil {
		c.IncludeCaseLaw = *p.IncludeCaseLaw
	}
	if p.IncludeProcedures != nil {
		c.IncludeProcedures = *p.IncludeProcedures
	}
	if p.Language != nil {
		c.Language = *p.Language
	}
	if p.FocusArea != nil {
		c.FocusArea = *p.FocusArea
	}
	if p.ResponseLength != nil {
		c.ResponseLength = *p.ResponseLength
	}
	return c
}

// ValidResponseStyles are the allowed response styles.
var ValidResponseStyles = map[string]bool{
	"formal":    true,
	"casual":    true,
	"academic":  true,
	"practical": true,
}

// ValidDetailLevels are the allowed detail levels.
var ValidDetailLevels = map[string]bool{
	"brief":         true,
	"moderate":      true,
	"comprehensive": true,
}

// ValidLanguages are the allowed response languages.
var ValidLanguages = map[string]bool{
	"english":   true,
	"swahili":   true,
	"bilingual": true,
}

// ValidFocusAreas are the allowed areas of law.
var ValidFocusAreas = map[string]bool{
	"constitutional": true,
	"criminal":       true,
	"civil":          true,
	"family":         true,
	"land":           true,
	"employment":     true,
	"all":            true,
}

// ValidResponseLengths are the allowed response lengths.
var ValidResponseLengths = map[string]bool{
	"short":  true,
	"medium": true,
	"long":   true,
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every enumerated field of c.
func (c ChatConfig) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("invalid %s %q (valid: %s)", fe.Field(), fe.Value(), fe.Param()))
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

// Options returns the sorted valid values of a map like ValidLanguages.
func Options(valid map[string]bool) []string {
	out := make([]string, 0, len(valid))
	for k := range valid {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
