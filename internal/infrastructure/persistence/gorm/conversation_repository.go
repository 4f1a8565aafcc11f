package gorm

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/handsapp/backend/internal/domain/conversation"
	"github.com/handsapp/backend/internal/ports/outbound"
)

// ConversationRepository implements the conversation repository using GORM
type ConversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db *gorm.DB) outbound.ConversationRepository {
	return &ConversationRepository{db: db}
}

// Create persists a new conversation
func (r *ConversationRepository) Create(ctx context.Context, conv *conversation.Conversation) error {
	model, err := ConversationToModel(conv)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByID loads a conversation. A missing row returns (nil, nil).
func (r *ConversationRepository) FindByID(ctx context.Context, id uuid.UUID) (*conversation.Conversation, error) {
	var model ConversationModel

	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ModelToConversation(&model)
}

// FindByUserID returns the user's conversations, most recently updated first
func (r *ConversationRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*conversation.Conversation, error) {
	var models []ConversationModel

	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	convs := make([]*conversation.Conversation, 0, len(models))
	for i := range models {
		conv, err := ModelToConversation(&models[i])
		if err != nil {
			return nil, err
		}
		convs = append(convs, conv)
	}
	return convs, nil
}

// AppendMessage extends the conversation content inside a transaction so
// concurrent appends cannot lose turns.
func (r *ConversationRepository) AppendMessage(ctx context.Context, id uuid.UUID, msg conversation.StoredMessage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model ConversationModel
		if err := tx.First(&model, "id = ?", id).Error; err != nil {
			return err
		}

		conv, err := ModelToConversation(&model)
		if err != nil {
			return err
		}
		conv.Append(msg)

		updated, err := ConversationToModel(conv)
		if err != nil {
			return err
		}
		return tx.Model(&ConversationModel{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"content":    updated.Content,
				"updated_at": updated.UpdatedAt,
			}).Error
	})
}

// Delete removes a conversation
func (r *ConversationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&ConversationModel{}, "id = ?", id).Error
}
