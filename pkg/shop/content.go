package shop

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/tienda/pkg/models"
	"github.com/example/tienda/pkg/repository"
	"go.uber.org/zap"
)

type FAQRequest struct {
	Question string `json:"pregunta" binding:"required"`
	Answer   string `json:"respuesta" binding:"required"`
}

type PostRequest struct {
	Title string `json:"titulo" binding:"required"`
	Body  string `json:"contenido" binding:"required"`
	Image string `json:"imagen"`
}

// ContentService serves the FAQ and the posts feed.
type ContentService struct {
	store  Store
	logger *zap.Logger
}

func NewContentService(store Store, logger *zap.Logger) *ContentService {
	return &ContentService{store: store, logger: logger}
}

func (s *ContentService) FAQ(ctx context.Context) ([]*models.FAQ, error) {
	faq, err := s.store.ListFAQ(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list faq: %w", err)
	}
	if len(faq) == 0 {
		return nil, fmt.Errorf("%w: no faq entries", ErrNotFound)
	}
	return faq, nil
}

func (s *ContentService) FAQEntry(ctx context.Context, id int) (*models.FAQ, error) {
	f, err := s.store.GetFAQ(ctx, id)
	if err != nil {
		return nil, contentErr(err, "faq", id)
	}
	return f, nil
}

func (s *ContentService) AddFAQ(ctx context.Context, req FAQRequest) (*models.FAQ, error) {
	if req.Question == "" || req.Answer == "" {
		return nil, fmt.Errorf("%w: pregunta and respuesta are required", ErrInvalidInput)
	}
	id, err := s.store.NextID(ctx, models.CounterFAQ)
	if err != nil {
		return nil, err
	}
	f := &models.FAQ{ID: id, Question: req.Question, Answer: req.Answer}
	if err := s.store.InsertFAQ(ctx, f); err != nil {
		return nil, fmt.Errorf("failed to add faq: %w", err)
	}
	s.logger.Info("FAQ entry added", zap.Int("faq_id", id))
	return f, nil
}

func (s *ContentService) DeleteFAQ(ctx context.Context, id int) error {
	if err := s.store.DeleteFAQ(ctx, id); err != nil {
		return contentErr(err, "faq", id)
	}
	return nil
}

func (s *ContentService) Posts(ctx context.Context) ([]*models.Post, error) {
	posts, err := s.store.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	if len(posts) == 0 {
		return nil, fmt.Errorf("%w: no posts", ErrNotFound)
	}
	return posts, nil
}

func (s *ContentService) Post(ctx context.Context, id int) (*models.Post, error) {
	p, err := s.store.GetPost(ctx, id)
	if err != nil {
		return nil, contentErr(err, "post", id)
	}
	return p, nil
}

func (s *ContentService) AddPost(ctx context.Context, req PostRequest) (*models.Post, error) {
	if req.Title == "" || req.Body == "" {
		return nil, fmt.Errorf("%w: titulo and contenido are required", ErrInvalidInput)
	}
	id, err := s.store.NextID(ctx, models.CounterPosts)
	if err != nil {
		return nil, err
	}
	p := &models.Post{
		ID:          id,
		Title:       req.Title,
		Body:        req.Body,
		Image:       req.Image,
		PublishedAt: time.Now().UTC(),
	}
	if err := s.store.InsertPost(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to add post: %w", err)
	}
	s.logger.Info("Post added", zap.Int("post_id", id))
	return p, nil
}

func (s *ContentService) DeletePost(ctx context.Context, id int) error {
	if err := s.store.DeletePost(ctx, id); err != nil {
		return contentErr(err, "post", id)
	}
	return nil
}

func contentErr(err error, what string, id int) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s %d", ErrNotFound, what, id)
	}
	return fmt.Errorf("failed to access %s %d: %w", what, id, err)
}
