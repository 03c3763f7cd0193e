package forum

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"stackit/internal/auth"
	"stackit/internal/models"
	"stackit/internal/store"
)

const (
	FilterNewest     = "newest"
	FilterUnanswered = "unanswered"
)

// ListOptions narrows and orders a question listing. Tag filters on the
// store side with an exact array-membership match against the stored
// strings; Search is applied afterwards, case-insensitive over title and
// description.
type ListOptions struct {
	Filter    string
	Ascending bool
	Search    string
	Tag       string
}

type QuestionService struct {
	store *store.Client
	log   zerolog.Logger
}

func NewQuestionService(st *store.Client, log zerolog.Logger) *QuestionService {
	return &QuestionService{
		store: st,
		log:   log.With().Str("component", "questions").Logger(),
	}
}

func (s *QuestionService) List(ctx context.Context, opts ListOptions) ([]models.Question, error) {
	q := s.store.From("questions").Order("created_at", opts.Ascending)
	if opts.Filter == FilterUnanswered {
		q = q.Eq("answer_count", 0)
	}
	if opts.Tag != "" {
		q = q.Contains("tags", opts.Tag)
	}

	var questions []models.Question
	if err := q.Get(ctx, &questions); err != nil {
		return nil, &RemoteError{Op: "list questions", Err: err}
	}

	if search := strings.ToLower(strings.TrimSpace(opts.Search)); search != "" {
		filtered := questions[:0]
		for _, question := range questions {
			if strings.Contains(strings.ToLower(question.Title), search) ||
				strings.Contains(strings.ToLower(question.Description), search) {
				filtered = append(filtered, question)
			}
		}
		questions = filtered
	}

	if questions == nil {
		questions = []models.Question{}
	}
	return questions, nil
}

type NewQuestion struct {
	Title       string
	Description string
	Tags        []string
}

func (s *QuestionService) Create(ctx context.Context, ident *auth.Identity, input NewQuestion) (*models.Question, error) {
	if ident == nil {
		return nil, ErrAuthenticationRequired
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, &ValidationError{Field: "description", Reason: "must not be empty"}
	}

	tags := NormalizeTags(input.Tags)
	if len(tags) == 0 {
		return nil, &ValidationError{Field: "tags", Reason: "at least one tag is required"}
	}
	if len(tags) > models.MaxTags {
		return nil, &ValidationError{Field: "tags", Reason: "at most 5 unique tags are allowed"}
	}

	question := models.Question{
		ID:          uuid.New(),
		Title:       input.Title,
		Description: input.Description,
		Tags:        tags,
		UserID:      ident.ID,
		Username:    ident.Email,
		CreatedAt:   time.Now().UTC(),
		AnswerCount: 0,
		IsSolved:    false,
	}

	var created models.Question
	if err := s.store.From("questions").Insert(ctx, question, &created); err != nil {
		return nil, &RemoteError{Op: "create question", Err: err}
	}

	s.log.Info().Str("question_id", created.ID.String()).Str("user_id", ident.ID).Msg("question created")
	return &created, nil
}

func (s *QuestionService) Get(ctx context.Context, id string) (*models.Question, error) {
	var question models.Question
	err := s.store.From("questions").Eq("id", id).Single().Get(ctx, &question)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &NotFoundError{Collection: "questions", ID: id}
	}
	if err != nil {
		return nil, &RemoteError{Op: "get question", Err: err}
	}
	return &question, nil
}

// NormalizeTags trims, lower-cases and de-duplicates while preserving the
// order of first appearance.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	normalized := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		normalized = append(normalized, tag)
	}
	return normalized
}
