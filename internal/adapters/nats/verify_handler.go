package nats

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	natsgo "github.com/nats-io/nats.go"
	"gorm.io/gorm"

	"github.com/example/identity-service/internal/domain"
	"github.com/example/identity-service/internal/repo"
	"github.com/example/identity-service/internal/service"
)

// VerifyHandler answers identity.verifyToken requests from sibling services.
// Access tokens are stateless, so verification needs no DB round-trip; the
// member lookup only enriches the response with id and role.
type VerifyHandler struct {
	tokens  service.TokenService
	members repo.MemberRepository
}

func NewVerifyHandler(tokens service.TokenService, members repo.MemberRepository) *VerifyHandler {
	return &VerifyHandler{tokens: tokens, members: members}
}

type verifyRequest struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	OK       bool        `json:"ok"`
	MemberID int64       `json:"member_id,omitempty"`
	Email    string      `json:"email,omitempty"`
	Role     domain.Role `json:"role,omitempty"`
	Error    string      `json:"error,omitempty"`
}

func (h *VerifyHandler) Handle(msg *natsgo.Msg) {
	var req verifyRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		Respond(msg, verifyResponse{Error: "invalid request"})
		return
	}
	subject, err := h.tokens.Validate(req.Token)
	if err != nil {
		Respond(msg, verifyResponse{Error: "invalid token"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	member, err := h.members.FindByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			Respond(msg, verifyResponse{Error: "member not found"})
			return
		}
		Respond(msg, verifyResponse{Error: "lookup failed"})
		return
	}
	if member.Deleted {
		Respond(msg, verifyResponse{Error: "member not found"})
		return
	}
	Respond(msg, verifyResponse{OK: true, MemberID: member.ID, Email: member.Email, Role: member.Role})
}
