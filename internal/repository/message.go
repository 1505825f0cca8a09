package repository

import (
	"context"

	"github.com/google/uuid"

	"job_marketplace/internal/domain"
	"job_marketplace/pkg/logger"
)

type MessageRepository interface {
	Append(ctx context.Context, message *domain.Message) error
	ListRecent(ctx context.Context, conversationID uuid.UUID, limit int) ([]*domain.Message, error)
	// MarkRead помечает прочитанными сообщения, адресованные аккаунту
	// в треде, с учетом флагов блокировки/удаления его роли
	MarkRead(ctx context.Context, conversationID, toID uuid.UUID, role domain.Role) (int64, error)
	// CountUnread - агрегат непрочитанного по всем тредам аккаунта в роли
	CountUnread(ctx context.Context, accountID uuid.UUID, role domain.Role) (int, error)
	// SetBlockFlag перезаписывает флаг блокировки на всех сообщениях
	// всех тредов пары аккаунтов
	SetBlockFlag(ctx context.Context, employerID, candidateID uuid.UUID, initiator domain.Role, blocked bool) error
}

type messageRepository struct {
	db  DB
	log logger.Logger
}

func NewMessageRepository(db DB, log logger.Logger) MessageRepository {
	return &messageRepository{db: db, log: log}
}

// roleReadFilter - флаги, скрывающие сообщение от читателя данной роли
func roleReadFilter(role domain.Role) (blockedColumn, deletedColumn string) {
	if role == domain.RoleEmployer {
		return "is_candidate_blocked", "has_employer_deleted"
	}
	return "is_employer_blocked", "has_candidate_deleted"
}

func (r *messageRepository) Append(ctx context.Context, message *domain.Message) error {
	query := `
		INSERT INTO messages (
			conversation_id, from_id, to_id, body, original_body, message_type,
			is_encrypted, is_translated, is_read,
			is_candidate_blocked, is_employer_blocked,
			has_candidate_deleted, has_employer_deleted
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		message.ConversationID, message.FromID, message.ToID,
		message.Body, message.OriginalBody, message.Type,
		message.IsEncrypted, message.IsTranslated, message.IsRead,
		message.IsCandidateBlocked, message.IsEmployerBlocked,
		message.HasCandidateDeleted, message.HasEmployerDeleted,
	).Scan(&message.ID, &message.CreatedAt)
	if err != nil {
		r.log.Error("Failed to append message", "error", err, "conversation_id", message.ConversationID)
		return err
	}

	return nil
}

func (r *messageRepository) ListRecent(ctx context.Context, conversationID uuid.UUID, limit int) ([]*domain.Message, error) {
	query := `
		SELECT id, conversation_id, from_id, to_id, body, original_body,
		       message_type, is_encrypted, is_translated, is_read,
		       is_candidate_blocked, is_employer_blocked,
		       has_candidate_deleted, has_employer_deleted, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY id DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, conversationID, limit)
	if err != nil {
		r.log.Error("Failed to list messages", "error", err, "conversation_id", conversationID)
		return nil, err
	}
	defer rows.Close()

	var messages []*domain.Message
	for rows.Next() {
		message := &domain.Message{}
		err := rows.Scan(
			&message.ID, &message.ConversationID, &message.FromID, &message.ToID,
			&message.Body, &message.OriginalBody, &message.Type,
			&message.IsEncrypted, &message.IsTranslated, &message.IsRead,
			&message.IsCandidateBlocked, &message.IsEmployerBlocked,
			&message.HasCandidateDeleted, &message.HasEmployerDeleted,
			&message.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan message", "error", err)
			return nil, err
		}
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Возвращаем в порядке вставки (запрос отдает новые первыми)
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

func (r *messageRepository) MarkRead(ctx context.Context, conversationID, toID uuid.UUID, role domain.Role) (int64, error) {
	blockedColumn, deletedColumn := roleReadFilter(role)

	query := `
		UPDATE messages
		SET is_read = TRUE
		WHERE conversation_id = $1 AND to_id = $2 AND NOT is_read
		  AND NOT ` + blockedColumn + ` AND NOT ` + deletedColumn

	tag, err := r.db.Exec(ctx, query, conversationID, toID)
	if err != nil {
		r.log.Error("Failed to mark messages read", "error", err, "conversation_id", conversationID)
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func (r *messageRepository) CountUnread(ctx context.Context, accountID uuid.UUID, role domain.Role) (int, error) {
	blockedColumn, deletedColumn := roleReadFilter(role)
	partyColumn := "candidate_id"
	if role == domain.RoleEmployer {
		partyColumn = "employer_id"
	}

	query := `
		SELECT COUNT(*)
		FROM messages m
		JOIN conversations c ON c.id = m.conversation_id
		WHERE c.` + partyColumn + ` = $1
		  AND m.to_id = $1 AND NOT m.is_read
		  AND NOT m.` + blockedColumn + ` AND NOT m.` + deletedColumn

	var count int
	if err := r.db.QueryRow(ctx, query, accountID).Scan(&count); err != nil {
		r.log.Error("Failed to count unread messages", "error", err, "account_id", accountID)
		return 0, err
	}

	return count, nil
}

func (r *messageRepository) SetBlockFlag(ctx context.Context, employerID, candidateID uuid.UUID, initiator domain.Role, blocked bool) error {
	column := "is_employer_blocked"
	if initiator == domain.RoleEmployer {
		column = "is_candidate_blocked"
	}

	query := `
		UPDATE messages
		SET ` + column + ` = $3
		WHERE conversation_id IN (
			SELECT id FROM conversations WHERE employer_id = $1 AND candidate_id = $2
		)
	`

	_, err := r.db.Exec(ctx, query, employerID, candidateID, blocked)
	if err != nil {
		r.log.Error("Failed to propagate block flag to messages", "error", err,
			"employer_id", employerID, "candidate_id", candidateID)
		return err
	}

	return nil
}
