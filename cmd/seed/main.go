// Command seed creates a couple of demo accounts and questions against a
// freshly provisioned Supabase project.
package main

import (
	"context"
	"log"
	"os"

	"stackit/internal/auth"
	"stackit/internal/config"
	"stackit/internal/forum"
	"stackit/internal/store"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.New()
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	ctx := context.Background()

	authClient := auth.NewClient(cfg)
	st := store.NewClient(cfg.Supabase, logger)
	questions := forum.NewQuestionService(st, logger)
	relay := forum.NewNotificationService(st, nil, logger)
	counts := &forum.RPCUpdater{Store: st}
	answers := forum.NewAnswerService(st, nil, counts, questions, relay, logger)

	users := []struct {
		Email    string
		Password string
	}{
		{"asker@example.com", "password123"},
		{"helper@example.com", "password123"},
	}

	idents := make([]*auth.Identity, 0, len(users))
	for _, u := range users {
		created, err := authClient.AdminCreateUser(ctx, u.Email, u.Password)
		if err != nil {
			log.Fatal("Failed to create user:", err)
		}
		idents = append(idents, &auth.Identity{ID: created.ID, Email: created.Email})
		log.Printf("Created user %s", created.Email)
	}

	// The seeder acts as one user at a time, switching actors through the
	// session the way a signed-in client would.
	session := auth.NewSession()
	release := session.Subscribe(func(ident *auth.Identity) {
		if ident != nil {
			log.Printf("Acting as %s", ident.Email)
		}
	})
	defer release()

	session.Set(idents[0])
	question, err := questions.Create(ctx, session.Current(), forum.NewQuestion{
		Title:       "How do I use hooks?",
		Description: "<p>I keep re-rendering on every state change. What am I missing?</p>",
		Tags:        []string{"react", "hooks"},
	})
	if err != nil {
		log.Fatal("Failed to create question:", err)
	}

	session.Set(idents[1])
	if _, err := answers.Submit(ctx, session.Current(), question.ID.String(), "<p>Use useEffect with a dependency array.</p>"); err != nil {
		log.Fatal("Failed to submit answer:", err)
	}

	log.Println("Seed data created")
}
