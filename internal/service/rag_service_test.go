package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmednasr/blogsage/internal/models"
)

func ragPost() models.Post {
	created := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	return models.Post{
		ID:               "p1",
		Slug:             "caring-for-dogs",
		Title:            "Caring for dogs",
		ShortDescription: "Feeding and walking dogs",
		Body: strings.Repeat("Dogs need a daily walk and fresh water. ", 20) +
			"\n\n" + strings.Repeat("Cats sleep most of the day. ", 20),
		Author:       "sam",
		CategoryName: "Pets",
		Status:       models.StatusPublished,
		CreatedAt:    created,
		UpdatedAt:    created.Add(time.Hour),
	}
}

func TestSourceDocumentLabels(t *testing.T) {
	doc := SourceDocument(ragPost())
	assert.True(t, strings.HasPrefix(doc, "Title: Caring for dogs\nShort Description: Feeding and walking dogs\nBlog Content: "))
	assert.Contains(t, doc, "\n\nAuthor: sam\nCategory: Pets\nCreated At: 2024-03-01 09:30:00\nLast Updated: 2024-03-01 10:30:00\n")
}

func TestAnswerGroundedFromRetrievedChunks(t *testing.T) {
	llm := &fakeLLM{answer: "  Walk them daily.  "}
	svc := NewRAGService(newKeywordEmbedder("dogs", "walk", "cats", "sleep"), llm, RAGConfig{})

	res, err := svc.Answer(context.Background(), ragPost(), "  How often should I walk dogs?  ")
	require.NoError(t, err)
	assert.Equal(t, StatusAnswered, res.Status)
	assert.True(t, res.Grounded)
	assert.Equal(t, "Walk them daily.", res.Text)
	assert.Equal(t, "How often should I walk dogs?", res.Question)
	assert.Contains(t, res.Context, "Dogs need a daily walk")

	require.Equal(t, 1, llm.calls())
	prompt := llm.prompts[0]
	assert.True(t, strings.HasPrefix(prompt, "Blog Context:\n"+res.Context))
	assert.True(t, strings.HasSuffix(prompt, "\n\nQuestion: How often should I walk dogs?"))
}

func TestAnswerContextIsDeterministic(t *testing.T) {
	llm := &fakeLLM{answer: "ok"}
	svc := NewRAGService(newKeywordEmbedder("dogs", "walk", "cats", "sleep"), llm, RAGConfig{})

	first, err := svc.Answer(context.Background(), ragPost(), "do cats sleep?")
	require.NoError(t, err)
	second, err := svc.Answer(context.Background(), ragPost(), "do cats sleep?")
	require.NoError(t, err)

	assert.NotEmpty(t, first.Context)
	assert.Equal(t, first.Context, second.Context)
}

func TestAnswerContextHoldsAtMostTopKChunks(t *testing.T) {
	p := ragPost()
	p.Body = strings.Repeat("word ", 2000)
	llm := &fakeLLM{answer: "ok"}
	svc := NewRAGService(newKeywordEmbedder("word"), llm, RAGConfig{})

	res, err := svc.Answer(context.Background(), p, "word?")
	require.NoError(t, err)
	assert.Len(t, strings.Split(res.Context, "\n\n"), ragTopK)
}

func TestAnswerNotRelevantSkipsGeneration(t *testing.T) {
	llm := &fakeLLM{answer: "should not be used"}
	svc := NewRAGService(newKeywordEmbedder("dogs", "walk", "rockets"), llm, RAGConfig{MinScore: 0.2})

	res, err := svc.Answer(context.Background(), ragPost(), "When do rockets launch?")
	require.NoError(t, err)
	assert.Equal(t, StatusNotRelevant, res.Status)
	assert.Equal(t, NotRelevantAnswer, res.Text)
	assert.False(t, res.Grounded)
	assert.Empty(t, res.Context)
	assert.Zero(t, llm.calls())
}

func TestAnswerModelSaysNotRelevant(t *testing.T) {
	llm := &fakeLLM{answer: NotRelevantAnswer}
	svc := NewRAGService(newKeywordEmbedder("dogs"), llm, RAGConfig{})

	res, err := svc.Answer(context.Background(), ragPost(), "what about dogs and the stock market?")
	require.NoError(t, err)
	assert.Equal(t, StatusAnswered, res.Status)
	assert.Equal(t, NotRelevantAnswer, res.Text)
	assert.False(t, res.Grounded)
}

func TestAnswerModelSaysNotRelevantLoosely(t *testing.T) {
	replies := []string{
		`"` + NotRelevantAnswer + `"`,
		strings.TrimSuffix(NotRelevantAnswer, "."),
		"“" + strings.ToLower(NotRelevantAnswer) + "”",
		`"This question is not relevant with respect to this blog post".`,
	}
	for _, reply := range replies {
		svc := NewRAGService(newKeywordEmbedder("dogs"), &fakeLLM{answer: reply}, RAGConfig{})

		res, err := svc.Answer(context.Background(), ragPost(), "dogs and taxes?")
		require.NoError(t, err)
		assert.False(t, res.Grounded, "reply %q", reply)
		assert.Equal(t, NotRelevantAnswer, res.Text)
	}
}

func TestIsNotRelevant(t *testing.T) {
	assert.True(t, isNotRelevant(NotRelevantAnswer))
	assert.True(t, isNotRelevant("  'This question is not relevant with respect to this blog post!'  "))
	assert.False(t, isNotRelevant("Walk them daily."))
	assert.False(t, isNotRelevant(NotRelevantAnswer+" But here is some advice."))
}

func TestAnswerGenerationFailureIsExplicit(t *testing.T) {
	llm := &fakeLLM{err: errBoom}
	svc := NewRAGService(newKeywordEmbedder("dogs"), llm, RAGConfig{})

	res, err := svc.Answer(context.Background(), ragPost(), "dogs?")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.ErrorIs(t, err, errBoom)

	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "generation", ue.Service)

	assert.Equal(t, StatusUnavailable, res.Status)
	assert.Equal(t, UnavailableAnswer, res.Text)
	assert.False(t, res.Grounded)
	assert.NotEmpty(t, res.Context)
}

func TestAnswerEmbeddingFailure(t *testing.T) {
	emb := newKeywordEmbedder("dogs")
	emb.err = errBoom
	llm := &fakeLLM{answer: "x"}
	svc := NewRAGService(emb, llm, RAGConfig{})

	res, err := svc.Answer(context.Background(), ragPost(), "dogs?")
	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "embedding", ue.Service)
	assert.Equal(t, StatusUnavailable, res.Status)
	assert.Zero(t, llm.calls())
}

func TestAnswerRequiresQuestion(t *testing.T) {
	svc := NewRAGService(newKeywordEmbedder("dogs"), &fakeLLM{}, RAGConfig{})

	_, err := svc.Answer(context.Background(), ragPost(), "   ")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAnswerStatusString(t *testing.T) {
	assert.Equal(t, "answered", StatusAnswered.String())
	assert.Equal(t, "not_relevant", StatusNotRelevant.String())
	assert.Equal(t, "unavailable", StatusUnavailable.String())
	assert.Equal(t, "unknown", AnswerStatus(42).String())
}

func TestDummyLLMEchoesContext(t *testing.T) {
	out, err := NewDummyLLM().GenerateResponse(context.Background(), systemInstruction, buildPrompt("Title: Hello\nmore", "q"))
	require.NoError(t, err)
	assert.Equal(t, "[offline assistant] The post says: Title: Hello", out)
}
