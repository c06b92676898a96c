package answer

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hyperjump/sdkchat/internal/models"
	"go.uber.org/zap"
)

// EmptyQuestionMessage is the answer to a blank question.
const EmptyQuestionMessage = "Please enter a question."

// ErrEmptyQuestion is returned by Ask for a blank question.
var ErrEmptyQuestion = errors.New("question is empty")

// Retriever finds the documents nearest to a query.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]*models.RetrievalResult, error)
}

// Service answers questions against a built corpus index. It holds no
// mutable state and can be shared by every front end.
type Service struct {
	retriever   Retriever
	synthesizer *Synthesizer
	topK        int
	logger      *zap.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the logger used for per-question events.
func WithLogger(l *zap.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a service retrieving topK documents per question.
func NewService(retriever Retriever, synthesizer *Synthesizer, topK int, opts ...ServiceOption) *Service {
	if topK <= 0 {
		topK = 5
	}
	s := &Service{retriever: retriever, synthesizer: synthesizer, topK: topK, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TopK returns the number of documents retrieved per question.
func (s *Service) TopK() int { return s.topK }

// Answer returns the answer text for question. Failures come back as
// error-prefixed text rather than errors.
func (s *Service) Answer(ctx context.Context, question string) string {
	a, _ := s.Ask(ctx, question)
	return a.Answer
}

// Ask answers question and reports the sources used. The returned Answer is
// always non-nil and displayable; err is non-nil when Answer.Failed is set.
func (s *Service) Ask(ctx context.Context, question string) (*models.Answer, error) {
	start := time.Now()
	a := &models.Answer{Question: question, RequestID: uuid.New().String()}
	log := s.logger.With(zap.String("request_id", a.RequestID))

	if strings.TrimSpace(question) == "" {
		a.Answer = EmptyQuestionMessage
		a.Failed = true
		return a, ErrEmptyQuestion
	}

	results, err := s.retriever.Search(ctx, question, s.topK)
	if err != nil {
		log.Error("retrieval failed", zap.Error(err))
		a.Answer = InvocationErrorPrefix + err.Error()
		a.Failed = true
		a.QueryTime = time.Since(start).Milliseconds()
		return a, err
	}
	a.Sources = results
	docs := make([]string, len(results))
	for i, r := range results {
		docs[i] = r.Document.Content
	}
	log.Debug("retrieved context", zap.Int("documents", len(docs)))

	text, err := s.synthesizer.Synthesize(ctx, question, docs)
	a.Answer = text
	a.QueryTime = time.Since(start).Milliseconds()
	if err != nil {
		log.Error("generation failed", zap.Error(err), zap.Int64("query_time_ms", a.QueryTime))
		a.Failed = true
		return a, err
	}
	log.Info("answered", zap.Int("sources", len(results)), zap.Int64("query_time_ms", a.QueryTime))
	return a, nil
}
