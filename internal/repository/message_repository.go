package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/chat-service/internal/domain"
)

// MessageRepository manages chat messages.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	GetByID(ctx context.Context, id string) (*domain.Message, error)
	ListByConversation(ctx context.Context, conversationID string, limit, offset int) ([]domain.Message, error)
	MarkDelivered(ctx context.Context, id string) (*domain.Message, error)
	MarkRead(ctx context.Context, id string) (*domain.Message, error)
}

type messageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository builds the repository.
func NewMessageRepository(pool *pgxpool.Pool) MessageRepository {
	return &messageRepository{pool: pool}
}

const messageColumns = `id, conversation_id, sender_id, receiver_id, content,
        message_type, image_url, status, delivered_at, read_at, created_at, updated_at`

func scanMessage(row pgx.Row) (*domain.Message, error) {
	var msg domain.Message
	if err := row.Scan(
		&msg.ID,
		&msg.ConversationID,
		&msg.SenderID,
		&msg.ReceiverID,
		&msg.Content,
		&msg.Type,
		&msg.ImageURL,
		&msg.Status,
		&msg.DeliveredAt,
		&msg.ReadAt,
		&msg.CreatedAt,
		&msg.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepository) Create(ctx context.Context, msg *domain.Message) error {
	const query = `
        INSERT INTO messages (conversation_id, sender_id, receiver_id, content,
            message_type, image_url, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		msg.ConversationID,
		msg.SenderID,
		msg.ReceiverID,
		msg.Content,
		msg.Type,
		msg.ImageURL,
		msg.Status,
	).Scan(&msg.ID, &msg.CreatedAt, &msg.UpdatedAt)
}

func (r *messageRepository) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	const query = `SELECT ` + messageColumns + ` FROM messages WHERE id=$1`
	return scanMessage(r.pool.QueryRow(ctx, query, id))
}

func (r *messageRepository) ListByConversation(ctx context.Context, conversationID string, limit, offset int) ([]domain.Message, error) {
	const query = `
        SELECT ` + messageColumns + `
        FROM messages WHERE conversation_id=$1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, conversationID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *msg)
	}
	return result, rows.Err()
}

func (r *messageRepository) MarkDelivered(ctx context.Context, id string) (*domain.Message, error) {
	const query = `
        UPDATE messages SET status='delivered', delivered_at=NOW(), updated_at=NOW()
        WHERE id=$1 AND status='sent'
        RETURNING ` + messageColumns
	return scanMessage(r.pool.QueryRow(ctx, query, id))
}

func (r *messageRepository) MarkRead(ctx context.Context, id string) (*domain.Message, error) {
	const query = `
        UPDATE messages SET status='read', read_at=NOW(),
            delivered_at=COALESCE(delivered_at, NOW()), updated_at=NOW()
        WHERE id=$1 AND status<>'read'
        RETURNING ` + messageColumns
	return scanMessage(r.pool.QueryRow(ctx, query, id))
}
