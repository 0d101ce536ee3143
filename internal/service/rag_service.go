package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ahmednasr/blogsage/internal/logger"
	"github.com/ahmednasr/blogsage/internal/models"
	"github.com/ahmednasr/blogsage/internal/textsplit"
	"github.com/ahmednasr/blogsage/internal/vectorindex"
)

// NotRelevantAnswer is returned verbatim for questions the post cannot answer.
const NotRelevantAnswer = "This question is not relevant with respect to this blog post."

// UnavailableAnswer is shown when the embedding or generation service fails.
const UnavailableAnswer = "The assistant is temporarily unavailable. Please try again later."

// ragTopK is the number of chunks retrieved per question.
const ragTopK = 12

const systemInstruction = `You are a helpful assistant.
Answer ONLY using the blog context supplied with the question.
If the user's question is not related to the context,
respond exactly with:
"` + NotRelevantAnswer + `"`

// AnswerStatus tells callers which branch produced an AnswerResult.
type AnswerStatus int

const (
	StatusAnswered AnswerStatus = iota
	StatusNotRelevant
	StatusUnavailable
)

func (s AnswerStatus) String() string {
	switch s {
	case StatusAnswered:
		return "answered"
	case StatusNotRelevant:
		return "not_relevant"
	case StatusUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// AnswerResult is the outcome of one question about one post.
type AnswerResult struct {
	Question string
	Text     string
	// Grounded is true only when the text came from the model given retrieved context.
	Grounded bool
	Status   AnswerStatus
	// Context is the retrieved chunk text passed to the model.
	Context string
}

// Answerer answers questions about a post from the post's own text.
type Answerer interface {
	Answer(ctx context.Context, post models.Post, question string) (AnswerResult, error)
}

// RAGConfig tunes the answerer.
type RAGConfig struct {
	// MinScore drops retrieved chunks scoring below it; 0 disables the filter.
	MinScore float32
	// Timeout bounds the whole embed + generate call; 0 means no extra bound.
	Timeout time.Duration
}

type RAGService struct {
	embedder Embedder
	llm      LLM
	cfg      RAGConfig
}

func NewRAGService(embedder Embedder, llm LLM, cfg RAGConfig) *RAGService {
	return &RAGService{
		embedder: embedder,
		llm:      llm,
		cfg:      cfg,
	}
}

// Answer retrieves the chunks of post most similar to question and asks the
// LLM to answer from them alone. Upstream failures return a StatusUnavailable
// result together with an *UpstreamError.
func (s *RAGService) Answer(ctx context.Context, post models.Post, question string) (AnswerResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return AnswerResult{}, validationError("question is required")
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	unavailable := func(service string, err error) (AnswerResult, error) {
		logger.ErrorWithFields("[RAG Service] upstream failure", logger.Fields{
			"post_id": post.ID,
			"service": service,
			"error":   err.Error(),
		})
		return AnswerResult{Question: question, Text: UnavailableAnswer, Status: StatusUnavailable},
			&UpstreamError{Service: service, Cause: err}
	}

	// 1-2. Build and chunk the source document.
	chunks, err := textsplit.Split(SourceDocument(post), textsplit.DefaultChunkSize, textsplit.DefaultOverlap)
	if err != nil {
		return AnswerResult{}, fmt.Errorf("failed to chunk post: %w", err)
	}
	texts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if strings.TrimSpace(c.Text) != "" {
			texts = append(texts, c.Text)
		}
	}

	// 3. Embed, index and retrieve.
	hits, err := s.retrieve(ctx, texts, question)
	if err != nil {
		return unavailable("embedding", err)
	}

	// 4. Nothing relevant: skip generation.
	if len(hits) == 0 {
		logger.Log.Infof("[RAG Service] post %s: no relevant chunks for question", post.ID)
		return AnswerResult{Question: question, Text: NotRelevantAnswer, Status: StatusNotRelevant}, nil
	}

	// 5. Generate from the concatenated context.
	parts := make([]string, len(hits))
	for i, h := range hits {
		n, _ := strconv.Atoi(h.ID)
		parts[i] = texts[n]
	}
	contextText := strings.Join(parts, "\n\n")

	answer, err := s.llm.GenerateResponse(ctx, systemInstruction, buildPrompt(contextText, question))
	if err != nil {
		res, uerr := unavailable("generation", err)
		res.Context = contextText
		return res, uerr
	}

	answer = strings.TrimSpace(answer)
	grounded := !isNotRelevant(answer)
	if !grounded {
		answer = NotRelevantAnswer
	}
	logger.Log.Infof("[RAG Service] post %s: answered from %d chunks", post.ID, len(hits))
	return AnswerResult{
		Question: question,
		Text:     answer,
		Grounded: grounded,
		Status:   StatusAnswered,
		Context:  contextText,
	}, nil
}

// isNotRelevant reports whether the model replied with the not-relevant
// sentence, ignoring surrounding quotes, case and trailing punctuation.
func isNotRelevant(answer string) bool {
	norm := func(s string) string {
		return strings.Trim(s, " \t\r\n.!\"'`“”‘’")
	}
	return strings.EqualFold(norm(answer), norm(NotRelevantAnswer))
}

// retrieve returns up to ragTopK hits whose ids are indexes into texts.
func (s *RAGService) retrieve(ctx context.Context, texts []string, question string) ([]vectorindex.Hit, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vecs, err := embedAll(ctx, s.embedder, texts)
	if err != nil {
		return nil, err
	}
	idx := vectorindex.New()
	for i, v := range vecs {
		if err := idx.Add(strconv.Itoa(i), v); err != nil {
			return nil, err
		}
	}

	qVec, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, err
	}

	hits := idx.Query(qVec, ragTopK)
	if s.cfg.MinScore <= 0 {
		return hits, nil
	}
	kept := hits[:0]
	for _, h := range hits {
		if h.Score >= s.cfg.MinScore {
			kept = append(kept, h)
		}
	}
	return kept, nil
}

// SourceDocument flattens the labeled fields of a post into the text that is
// chunked for retrieval.
func SourceDocument(p models.Post) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Title: %s\n", p.Title)
	fmt.Fprintf(&sb, "Short Description: %s\n", p.ShortDescription)
	fmt.Fprintf(&sb, "Blog Content: %s\n\n", p.Body)
	fmt.Fprintf(&sb, "Author: %s\n", p.Author)
	fmt.Fprintf(&sb, "Category: %s\n", p.CategoryName)
	fmt.Fprintf(&sb, "Created At: %s\n", p.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "Last Updated: %s\n", p.UpdatedAt.Format("2006-01-02 15:04:05"))
	return sb.String()
}

func buildPrompt(contextText, question string) string {
	return fmt.Sprintf("Blog Context:\n%s\n\nQuestion: %s", contextText, question)
}
