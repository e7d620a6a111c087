package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/letterloop/letterloop/internal/interview"
)

// ErrNotFound is returned when no interview has the requested id.
var ErrNotFound = errors.New("interview not found")

// Store provides SQLite-backed persistence for interviews.
type Store struct {
	db *sql.DB
}

// NewStore opens the SQLite database at dbPath and creates tables if they don't exist.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite has a single writer; one connection avoids "database is locked".
	db.SetMaxOpenConns(1)

	if err := createTables(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS interviews (
		id TEXT PRIMARY KEY,
		user_name TEXT NOT NULL DEFAULT '',
		user_email TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		current_question INTEGER NOT NULL DEFAULT 0,
		article TEXT NOT NULL DEFAULT '',
		summary_error TEXT NOT NULL DEFAULT '',
		email_sent INTEGER NOT NULL DEFAULT 0,
		delivery_error TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		interview_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (interview_id) REFERENCES interviews(id)
	);

	CREATE TABLE IF NOT EXISTS questions (
		interview_id TEXT NOT NULL,
		question_index INTEGER NOT NULL,
		question TEXT NOT NULL,
		follow_ups INTEGER NOT NULL DEFAULT 0,
		characters INTEGER NOT NULL DEFAULT 0,
		complete INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (interview_id, question_index),
		FOREIGN KEY (interview_id) REFERENCES interviews(id)
	);
	`
	_, err := db.Exec(schema)
	return err
}

// SaveInterview inserts or replaces an interview with its messages and
// per-question progress in one transaction.
func (s *Store) SaveInterview(ctx context.Context, rec Record) error {
	iv := rec.Interview
	now := time.Now()
	if iv.CreatedAt.IsZero() {
		iv.CreatedAt = now
	}
	iv.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO interviews (id, user_name, user_email, status, current_question,
		                         article, summary_error, email_sent, delivery_error, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   user_name = excluded.user_name,
		   user_email = excluded.user_email,
		   status = excluded.status,
		   current_question = excluded.current_question,
		   article = excluded.article,
		   summary_error = excluded.summary_error,
		   email_sent = excluded.email_sent,
		   delivery_error = excluded.delivery_error,
		   updated_at = excluded.updated_at`,
		iv.ID, iv.UserName, iv.UserEmail, iv.Status, iv.CurrentQuestion,
		iv.Article, iv.SummaryError, iv.EmailSent, iv.DeliveryError, iv.CreatedAt, iv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert interview: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE interview_id = ?`, iv.ID); err != nil {
		return fmt.Errorf("clear messages: %w", err)
	}
	for i, m := range rec.Messages {
		ts := m.Timestamp
		if ts.IsZero() {
			ts = now
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO messages (interview_id, position, role, content, timestamp)
			 VALUES (?, ?, ?, ?, ?)`,
			iv.ID, i, m.Role, m.Content, ts,
		)
		if err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE interview_id = ?`, iv.ID); err != nil {
		return fmt.Errorf("clear questions: %w", err)
	}
	for _, q := range rec.Questions {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO questions (interview_id, question_index, question, follow_ups, characters, complete)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			iv.ID, q.Index, q.Question, q.FollowUps, q.Characters, q.Complete,
		)
		if err != nil {
			return fmt.Errorf("insert question: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ArchiveInterview implements interview.Archiver.
func (s *Store) ArchiveInterview(ctx context.Context, st interview.State) error {
	return s.SaveInterview(ctx, RecordFromState(st))
}

// RecordFromState converts an engine snapshot into a storable record.
func RecordFromState(st interview.State) Record {
	status := StatusInProgress
	if st.InterviewComplete {
		status = StatusComplete
	}
	rec := Record{
		Interview: Interview{
			ID:              st.SessionID,
			UserName:        st.UserName,
			UserEmail:       st.UserEmail,
			Status:          status,
			CurrentQuestion: st.CurrentQuestionIndex,
			Article:         st.Article,
			SummaryError:    st.SummaryError,
			EmailSent:       st.EmailSent,
			DeliveryError:   st.DeliveryError,
		},
		Messages:  make([]Message, 0, len(st.Timeline)),
		Questions: make([]QuestionRecord, 0, len(st.Questions)),
	}
	for _, m := range st.Timeline {
		rec.Messages = append(rec.Messages, Message{Role: string(m.Role), Content: m.Content})
	}
	for i, q := range st.Questions {
		p := st.Progress(i)
		rec.Questions = append(rec.Questions, QuestionRecord{
			Index:      i,
			Question:   q,
			FollowUps:  p.FollowUpCount,
			Characters: p.CharacterCount,
			Complete:   p.IsComplete,
		})
	}
	return rec
}

// GetInterview retrieves an interview header by ID.
func (s *Store) GetInterview(ctx context.Context, id string) (*Interview, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_name, user_email, status, current_question, article,
		        summary_error, email_sent, delivery_error, created_at, updated_at
		 FROM interviews WHERE id = ?`,
		id,
	)

	var iv Interview
	err := row.Scan(&iv.ID, &iv.UserName, &iv.UserEmail, &iv.Status, &iv.CurrentQuestion, &iv.Article,
		&iv.SummaryError, &iv.EmailSent, &iv.DeliveryError, &iv.CreatedAt, &iv.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan interview: %w", err)
	}

	return &iv, nil
}

// GetMessages retrieves the timeline of an interview in order.
func (s *Store) GetMessages(ctx context.Context, id string) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, interview_id, position, role, content, timestamp
		 FROM messages
		 WHERE interview_id = ?
		 ORDER BY position ASC`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var messages []Message
	for rows.Next() {
		var msg Message
		if err := rows.Scan(&msg.ID, &msg.InterviewID, &msg.Position, &msg.Role, &msg.Content, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return messages, nil
}

// GetQuestions retrieves the per-question progress of an interview.
func (s *Store) GetQuestions(ctx context.Context, id string) ([]QuestionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT question_index, question, follow_ups, characters, complete
		 FROM questions
		 WHERE interview_id = ?
		 ORDER BY question_index ASC`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []QuestionRecord
	for rows.Next() {
		var q QuestionRecord
		if err := rows.Scan(&q.Index, &q.Question, &q.FollowUps, &q.Characters, &q.Complete); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		out = append(out, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return out, nil
}

// Transcript returns the stored timeline as engine messages.
func (s *Store) Transcript(ctx context.Context, id string) ([]interview.Message, error) {
	msgs, err := s.GetMessages(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]interview.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, interview.Message{Role: interview.Role(m.Role), Content: m.Content})
	}
	return out, nil
}

// ListInterviews returns summaries of the most recently updated interviews.
// A negative limit lists every interview.
func (s *Store) ListInterviews(ctx context.Context, limit int) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT i.id, i.user_name, i.status, i.email_sent, i.summary_error != '', i.updated_at,
		        COALESCE(COUNT(m.id), 0) as messages
		 FROM interviews i
		 LEFT JOIN messages m ON i.id = m.interview_id
		 GROUP BY i.id
		 ORDER BY i.updated_at DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query interviews: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var summaries []Summary
	for rows.Next() {
		var sum Summary
		if err := rows.Scan(&sum.ID, &sum.UserName, &sum.Status, &sum.EmailSent, &sum.HasError, &sum.UpdatedAt, &sum.Messages); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		summaries = append(summaries, sum)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return summaries, nil
}

// MarkEmailSent records the outcome of a delivery attempt.
func (s *Store) MarkEmailSent(ctx context.Context, id string, sent bool, deliveryErr string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE interviews SET email_sent = ?, delivery_error = ?, updated_at = ?
		 WHERE id = ?`,
		sent, deliveryErr, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("update interview: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteInterview removes an interview with its messages and question progress.
func (s *Store) DeleteInterview(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE interview_id = ?`, id); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE interview_id = ?`, id); err != nil {
		return fmt.Errorf("delete questions: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM interviews WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete interview: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
