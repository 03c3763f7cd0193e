// Package database provisions the Supabase project's Postgres schema. Only
// cmd/provision uses it; the serving path goes through the platform's REST
// API and never issues SQL.
package database

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Database struct {
	Pool *pgxpool.Pool
}

func NewConnection(databaseURL string) (*Database, error) {
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	log.Println("Successfully connected to database")
	return &Database{Pool: pool}, nil
}

func (db *Database) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

func RunMigrations(db *Database) error {
	ctx := context.Background()

	createUsersTable := `
	CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email VARCHAR(255) UNIQUE NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);`

	createQuestionsTable := `
	CREATE TABLE IF NOT EXISTS questions (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		title VARCHAR(500) NOT NULL,
		description TEXT NOT NULL,
		tags TEXT[] NOT NULL DEFAULT '{}',
		user_id UUID NOT NULL,
		username VARCHAR(255) NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		answer_count INTEGER NOT NULL DEFAULT 0 CHECK (answer_count >= 0),
		is_solved BOOLEAN NOT NULL DEFAULT FALSE
	);`

	createAnswersTable := `
	CREATE TABLE IF NOT EXISTS answers (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		question_id UUID NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
		text TEXT NOT NULL,
		user_id UUID NOT NULL,
		username VARCHAR(255) NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		upvoter_ids TEXT[] NOT NULL DEFAULT '{}',
		downvoter_ids TEXT[] NOT NULL DEFAULT '{}',
		is_accepted BOOLEAN NOT NULL DEFAULT FALSE
	);`

	createNotificationsTable := `
	CREATE TABLE IF NOT EXISTS notifications (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL,
		message TEXT NOT NULL,
		type VARCHAR(50) NOT NULL,
		read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);`

	createIndexes := `
	CREATE INDEX IF NOT EXISTS idx_questions_created_at ON questions(created_at);
	CREATE INDEX IF NOT EXISTS idx_questions_answer_count ON questions(answer_count);
	CREATE INDEX IF NOT EXISTS idx_questions_tags ON questions USING GIN(tags);
	CREATE INDEX IF NOT EXISTS idx_answers_question_id ON answers(question_id);
	CREATE INDEX IF NOT EXISTS idx_notifications_user_id ON notifications(user_id);`

	// Atomic server-side counter adjustment, floored at zero. Exposed to the
	// application through PostgREST /rpc/adjust_answer_count.
	createAdjustFunction := `
	CREATE OR REPLACE FUNCTION adjust_answer_count(qid UUID, delta INTEGER)
	RETURNS VOID AS $$
		UPDATE questions
		SET answer_count = GREATEST(0, answer_count + delta)
		WHERE id = qid;
	$$ LANGUAGE SQL;`

	migrations := []string{
		createUsersTable,
		createQuestionsTable,
		createAnswersTable,
		createNotificationsTable,
		createIndexes,
		createAdjustFunction,
	}

	for _, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	log.Println("Database migrations completed successfully")
	return nil
}
