package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rcliao/sheria/internal/model"
)

// ErrEmptyMessage is returned by Send for blank content.
var ErrEmptyMessage = errors.New("message content is empty")

// ErrNoSession is returned when a session id does not resolve.
var ErrNoSession = errors.New("session not found")

// FailureReply is appended in place of an answer when completion fails.
const FailureReply = "Sorry, I encountered an error. Please try again."

// Completer answers a legal-research query.
type Completer interface {
	Complete(ctx context.Context, query string, cfg model.ChatConfig) (string, error)
}

// Service sends user messages to the completion service and records both
// sides of the exchange in a Store.
type Service struct {
	store     *Store
	completer Completer
}

// NewService creates a Service.
func NewService(store *Store, completer Completer) *Service {
	return &Service{store: store, completer: completer}
}

// Send appends a user message to sessionID, asks the completer, and appends
// the assistant's reply. On completion failure a FailureReply message is
// appended and the error is returned. The returned message is the one
// appended last.
func (svc *Service) Send(ctx context.Context, sessionID, content string, attachments []model.Attachment) (model.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return model.Message{}, ErrEmptyMessage
	}
	sess, ok := svc.store.Session(sessionID)
	if !ok {
		return model.Message{}, fmt.Errorf("%w: %s", ErrNoSession, sessionID)
	}

	svc.store.AppendMessage(sessionID, model.Message{
		ID:          svc.store.newID(),
		Content:     content,
		Role:        model.RoleUser,
		Timestamp:   svc.store.now(),
		Attachments: attachments,
	})

	svc.store.SetLoading(true)
	answer, err := svc.completer.Complete(ctx, content, sess.Config)
	svc.store.SetLoading(false)

	if err != nil {
		reply := model.Message{
			ID:        svc.store.newID(),
			Content:   FailureReply,
			Role:      model.RoleAssistant,
			Timestamp: svc.store.now(),
		}
		svc.store.AppendMessage(sessionID, reply)
		return reply, fmt.Errorf("complete: %w", err)
	}

	reply := model.Message{
		ID:             svc.store.newID(),
		Content:        answer,
		Role:           model.RoleAssistant,
		Timestamp:      svc.store.now(),
		CaseReferences: CaseReferences(content),
	}
	svc.store.AppendMessage(sessionID, reply)
	return reply, nil
}

var (
	constitutionalRefs = []string{"Constitution of Kenya (2010)", "Article 255 - Amendment of Constitution"}
	judiciaryRefs      = []string{"Constitution Chapter 10", "Judiciary Act 2011"}
	criminalRefs       = []string{"Penal Code Cap. 63", "Criminal Procedure Code Cap. 75"}
)

// CaseReferences picks the statutes cited alongside an answer from the area
// of law the query mentions. Unrecognised queries cite nothing.
func CaseReferences(query string) []string {
	q := strings.ToLower(query)
	switch {
	case strings.Contains(q, "constitution"):
		return append([]string(nil), constitutionalRefs...)
	case strings.Contains(q, "court") || strings.Contains(q, "judiciary"):
		return append([]string(nil), judiciaryRefs...)
	case strings.Contains(q, "criminal") || strings.Contains(q, "offence"):
		return append([]string(nil), criminalRefs...)
	}
	return nil
}
