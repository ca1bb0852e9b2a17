package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/kharcha/internal/engine"
	"github.com/Veraticus/kharcha/internal/model"
	"github.com/shopspring/decimal"
)

// ExtractionRecord is one audit log row.
type ExtractionRecord struct {
	CreatedAt    time.Time
	Merchant     *string
	Amount       decimal.NullDecimal
	ID           string
	Text         string
	AudioQuality model.AudioQuality
	Status       engine.Status
	Kind         string
	Method       model.ExtractionMethod
	Category     model.Category
	Description  string
	Error        string
	Alternatives []string
	RetryCount   int
	Confidence   float64
}

// SaveExtraction writes one finished extraction to the audit log. It
// satisfies engine.Recorder.
func (s *SQLiteStorage) SaveExtraction(ctx context.Context, transcript model.Transcript, result engine.Result) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateResult(result); err != nil {
		return err
	}

	var alternatives sql.NullString
	if len(transcript.Alternatives) > 0 {
		data, err := json.Marshal(transcript.Alternatives)
		if err != nil {
			return fmt.Errorf("failed to marshal alternatives: %w", err)
		}
		alternatives = sql.NullString{String: string(data), Valid: true}
	}

	var (
		method, category, description sql.NullString
		merchant                      sql.NullString
		amount                        decimal.NullDecimal
	)
	if c := result.Data; c != nil {
		method = sql.NullString{String: string(c.ExtractionMethod), Valid: true}
		category = sql.NullString{String: string(c.Category), Valid: true}
		description = sql.NullString{String: c.Description, Valid: true}
		amount = decimal.NullDecimal{Decimal: c.Amount, Valid: true}
		if c.Merchant != nil {
			merchant = sql.NullString{String: *c.Merchant, Valid: true}
		}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO extractions (
			id, created_at, text, alternatives, audio_quality, retry_count,
			status, kind, method, amount, category, merchant, description,
			confidence, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		result.ID, s.now().UTC(), transcript.Text, alternatives,
		nullString(string(transcript.AudioQualityHint)), transcript.RetryCount,
		string(result.Status), nullString(string(result.Kind)), method, amount,
		category, merchant, description, result.Confidence, nullString(result.Error),
	)
	if err != nil {
		return fmt.Errorf("failed to save extraction %s: %w", result.ID, err)
	}

	return nil
}

// GetExtraction returns one record by id, or ErrNotFound.
func (s *SQLiteStorage) GetExtraction(ctx context.Context, id string) (*ExtractionRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, selectExtractions+` WHERE id = ?`, id)
	record, err := scanExtraction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, id, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get extraction %s: %w", id, err)
	}
	return record, nil
}

// RecentExtractions returns up to limit records, newest first.
func (s *SQLiteStorage) RecentExtractions(ctx context.Context, limit int) ([]ExtractionRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}

	rows, err := s.db.QueryContext(ctx, selectExtractions+` ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query extractions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []ExtractionRecord
	for rows.Next() {
		record, err := scanExtraction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan extraction: %w", err)
		}
		records = append(records, *record)
	}

	return records, rows.Err()
}

// CountByStatus returns how many extractions ended in each status.
func (s *SQLiteStorage) CountByStatus(ctx context.Context) (map[engine.Status]int, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM extractions GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count extractions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[engine.Status]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[engine.Status(status)] = count
	}

	return counts, rows.Err()
}

const selectExtractions = `
	SELECT id, created_at, text, alternatives, audio_quality, retry_count,
	       status, kind, method, amount, category, merchant, description,
	       confidence, error
	FROM extractions`

type scanner interface {
	Scan(dest ...any) error
}

func scanExtraction(row scanner) (*ExtractionRecord, error) {
	var (
		r                                     ExtractionRecord
		alternatives, audioQuality, kind      sql.NullString
		method, category, merchant, desc, msg sql.NullString
		status                                string
	)

	err := row.Scan(
		&r.ID, &r.CreatedAt, &r.Text, &alternatives, &audioQuality, &r.RetryCount,
		&status, &kind, &method, &r.Amount, &category, &merchant, &desc,
		&r.Confidence, &msg,
	)
	if err != nil {
		return nil, err
	}

	if alternatives.Valid {
		if err := json.Unmarshal([]byte(alternatives.String), &r.Alternatives); err != nil {
			return nil, fmt.Errorf("failed to unmarshal alternatives: %w", err)
		}
	}
	if merchant.Valid {
		m := merchant.String
		r.Merchant = &m
	}

	r.Status = engine.Status(status)
	r.AudioQuality = model.AudioQuality(audioQuality.String)
	r.Kind = kind.String
	r.Method = model.ExtractionMethod(method.String)
	r.Category = model.Category(category.String)
	r.Description = desc.String
	r.Error = msg.String

	return &r, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
