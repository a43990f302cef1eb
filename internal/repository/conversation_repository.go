package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/chat-service/internal/domain"
)

// ConversationRepository manages two-party conversations.
type ConversationRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Conversation, error)
	FindByParticipants(ctx context.Context, userA, userB string) (*domain.Conversation, error)
	Create(ctx context.Context, conv *domain.Conversation) error
	SetLastMessage(ctx context.Context, conversationID, messageID string) error
	ListByUser(ctx context.Context, userID string) ([]domain.Conversation, error)
}

type conversationRepository struct {
	pool *pgxpool.Pool
}

// NewConversationRepository builds the repository.
func NewConversationRepository(pool *pgxpool.Pool) ConversationRepository {
	return &conversationRepository{pool: pool}
}

const conversationColumns = `id, participants, last_message_id, last_message_time, created_at, updated_at`

func scanConversation(row pgx.Row) (*domain.Conversation, error) {
	var conv domain.Conversation
	if err := row.Scan(
		&conv.ID,
		&conv.Participants,
		&conv.LastMessageID,
		&conv.LastMessageTime,
		&conv.CreatedAt,
		&conv.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *conversationRepository) GetByID(ctx context.Context, id string) (*domain.Conversation, error) {
	const query = `SELECT ` + conversationColumns + ` FROM conversations WHERE id=$1`
	return scanConversation(r.pool.QueryRow(ctx, query, id))
}

func (r *conversationRepository) FindByParticipants(ctx context.Context, userA, userB string) (*domain.Conversation, error) {
	// Participants are stored sorted, so one lookup covers both orderings.
	const query = `
        SELECT ` + conversationColumns + `
        FROM conversations
        WHERE participants @> ARRAY[$1,$2]::uuid[] AND array_length(participants,1)=2`
	return scanConversation(r.pool.QueryRow(ctx, query, userA, userB))
}

func (r *conversationRepository) Create(ctx context.Context, conv *domain.Conversation) error {
	const query = `
        INSERT INTO conversations (participants)
        VALUES ($1)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query, conv.Participants).
		Scan(&conv.ID, &conv.CreatedAt, &conv.UpdatedAt)
}

func (r *conversationRepository) SetLastMessage(ctx context.Context, conversationID, messageID string) error {
	const query = `
        UPDATE conversations
        SET last_message_id=$1, last_message_time=NOW(), updated_at=NOW()
        WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, messageID, conversationID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *conversationRepository) ListByUser(ctx context.Context, userID string) ([]domain.Conversation, error) {
	const query = `
        SELECT ` + conversationColumns + `
        FROM conversations
        WHERE participants @> ARRAY[$1]::uuid[]
        ORDER BY last_message_time DESC NULLS LAST`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Conversation
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *conv)
	}
	return result, rows.Err()
}
