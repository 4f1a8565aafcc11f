// Package conversation provides the application layer for chat history
// This implements the use cases defined in the inbound ports
package conversation

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/handsapp/backend/internal/domain/conversation"
	"github.com/handsapp/backend/internal/ports/inbound"
	"github.com/handsapp/backend/internal/ports/outbound"
	"github.com/handsapp/backend/pkg/errors"
)

// DefaultListLimit bounds the history sheet query.
const DefaultListLimit = 50

// ConversationService implements the chat history use cases
type ConversationService struct {
	repo    outbound.ConversationRepository
	metrics outbound.MetricsRecorder
	logger  *zap.Logger
}

// NewConversationService creates a new conversation service. metrics may be
// nil to disable instrumentation.
func NewConversationService(repo outbound.ConversationRepository, metrics outbound.MetricsRecorder, logger *zap.Logger) inbound.ConversationService {
	return &ConversationService{
		repo:    repo,
		metrics: metrics,
		logger:  logger.Named("conversation-service"),
	}
}

// Create starts a conversation seeded with the user's first message. The
// title is derived from that message.
func (s *ConversationService) Create(ctx context.Context, userID uuid.UUID, firstMessage string) (*inbound.ConversationDTO, error) {
	if strings.TrimSpace(firstMessage) == "" {
		return nil, errors.NewValidationError("first message must not be empty")
	}
	conv := conversation.New(userID, firstMessage)

	if err := s.repo.Create(ctx, conv); err != nil {
		return nil, errors.NewDatabaseError("create conversation", err)
	}

	s.logger.Info("Conversation created",
		zap.String("conversation_id", conv.ID.String()),
		zap.String("user_id", userID.String()),
	)
	if s.metrics != nil {
		s.metrics.ConversationCreated()
	}

	return s.entityToDTO(conv), nil
}

// Get loads a conversation, enforcing ownership.
func (s *ConversationService) Get(ctx context.Context, id, userID uuid.UUID) (*inbound.ConversationDTO, error) {
	conv, err := s.load(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return s.entityToDTO(conv), nil
}

// ListByUser returns the user's conversations, most recently updated first,
// without their message bodies.
func (s *ConversationService) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]inbound.ConversationSummaryDTO, error) {
	if limit <= 0 || limit > DefaultListLimit {
		limit = DefaultListLimit
	}

	convs, err := s.repo.FindByUserID(ctx, userID, limit)
	if err != nil {
		return nil, errors.NewDatabaseError("list conversations", err)
	}

	summaries := make([]inbound.ConversationSummaryDTO, 0, len(convs))
	for _, conv := range convs {
		summaries = append(summaries, inbound.ConversationSummaryDTO{
			ID:        conv.ID,
			Title:     conv.Title,
			UpdatedAt: conv.UpdatedAt.Format(time.RFC3339),
		})
	}
	return summaries, nil
}

// AppendMessage adds one turn. Conversations are append-only, so this is
// the only mutation a stored conversation ever sees.
func (s *ConversationService) AppendMessage(ctx context.Context, cmd inbound.AppendMessageCommand) error {
	if cmd.Content == "" {
		return errors.NewValidationError("message content must not be empty")
	}

	if _, err := s.load(ctx, cmd.ConversationID, cmd.UserID); err != nil {
		return err
	}

	msg := conversation.StoredMessage{
		Role:    cmd.Role,
		Content: cmd.Content,
		Recipes: cmd.Recipes,
	}
	if err := s.repo.AppendMessage(ctx, cmd.ConversationID, msg); err != nil {
		return errors.NewDatabaseError("append message", err)
	}
	return nil
}

// Delete removes a conversation, enforcing ownership.
func (s *ConversationService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	if _, err := s.load(ctx, id, userID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.NewDatabaseError("delete conversation", err)
	}

	s.logger.Info("Conversation deleted", zap.String("conversation_id", id.String()))
	return nil
}

func (s *ConversationService) load(ctx context.Context, id, userID uuid.UUID) (*conversation.Conversation, error) {
	conv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.NewDatabaseError("find conversation", err)
	}
	if conv == nil {
		return nil, errors.NewConversationNotFoundError(id.String())
	}
	// Ownership failures read as not-found so conversation IDs are not
	// enumerable across users.
	if conv.UserID != userID {
		return nil, errors.NewConversationNotFoundError(id.String())
	}
	return conv, nil
}

func (s *ConversationService) entityToDTO(conv *conversation.Conversation) *inbound.ConversationDTO {
	messages := make([]inbound.MessageDTO, 0, len(conv.Content))
	for _, msg := range conv.Content {
		messages = append(messages, inbound.MessageDTO{
			Role:    msg.Role,
			Content: msg.Content,
			Recipes: msg.Recipes,
		})
	}
	return &inbound.ConversationDTO{
		ID:        conv.ID,
		Title:     conv.Title,
		Messages:  messages,
		CreatedAt: conv.CreatedAt.Format(time.RFC3339),
		UpdatedAt: conv.UpdatedAt.Format(time.RFC3339),
	}
}
