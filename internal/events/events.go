package events

import (
	"time"

	"github.com/example/identity-service/internal/domain"
)

const (
	MemberCreated = "member.created"
	MemberDeleted = "member.deleted"
)

type MemberEvent struct {
	Type       string            `json:"type"`
	MemberID   int64             `json:"member_id"`
	SocialType domain.SocialType `json:"social_type"`
	TraceID    string            `json:"trace_id,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

func NewMemberEvent(eventType string, memberID int64, socialType domain.SocialType, traceID string) MemberEvent {
	return MemberEvent{
		Type:       eventType,
		MemberID:   memberID,
		SocialType: socialType,
		TraceID:    traceID,
		OccurredAt: time.Now().UTC(),
	}
}
