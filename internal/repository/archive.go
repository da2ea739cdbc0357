package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/SandhanuDulmeth/Health-Triage/internal/domain"
)

// Archive is an append-only transcript log for operational review. It
// stores attachment metadata (type, mime, decoded size), never payloads,
// and nothing in it feeds back into live sessions — the in-memory store
// stays the source of truth.
type Archive struct {
	db *pgxpool.Pool
}

func NewArchive(db *pgxpool.Pool) *Archive {
	return &Archive{db: db}
}

func (a *Archive) ArchiveSession(ctx context.Context, session *domain.TriageSession) error {
	_, err := a.db.Exec(ctx,
		`INSERT INTO triage_sessions (id, created_at) VALUES ($1, $2)
		 ON CONFLICT (id) DO NOTHING`,
		session.ID, session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (a *Archive) ArchiveMessage(ctx context.Context, sessionID string, msg domain.ChatMessage, costUSD string) error {
	cost := decimal.Zero
	if costUSD != "" {
		parsed, err := decimal.NewFromString(costUSD)
		if err != nil {
			return fmt.Errorf("parse cost: %w", err)
		}
		cost = parsed
	}

	// numeric column takes the decimal in text form
	_, err := a.db.Exec(ctx,
		`INSERT INTO triage_messages (id, session_id, role, text, pain_level, attachment_count, est_cost_usd, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		msg.ID, sessionID, string(msg.Role), msg.Text, msg.PainLevel, len(msg.Attachments), cost.String(), msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	for _, att := range msg.Attachments {
		_, err := a.db.Exec(ctx,
			`INSERT INTO triage_attachments (id, message_id, type, mime_type, size_bytes)
			 VALUES ($1, $2, $3, $4, $5)`,
			att.ID, msg.ID, string(att.Type), att.MimeType, decodedSize(att.Data),
		)
		if err != nil {
			return fmt.Errorf("insert attachment: %w", err)
		}
	}
	return nil
}

func decodedSize(b64 string) int {
	// Close enough for metadata; exact padding accounting is not worth a
	// decode pass over a multi-megabyte payload.
	return len(b64) / 4 * 3
}
