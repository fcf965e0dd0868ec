package mcp

import (
	"context"

	"github.com/custodia-labs/upfund/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	hits  []domain.RetrievedHit
	query string
	k     int
}

func (m *mockSearchService) Search(_ context.Context, query string, k int) []domain.RetrievedHit {
	m.query = query
	m.k = k
	if m.hits == nil {
		return []domain.RetrievedHit{}
	}
	return m.hits
}

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer domain.Answer
	k      int
}

func (m *mockAnswerService) Synthesize(_ context.Context, _ string, _ []domain.RetrievedHit) string {
	return m.answer.Text
}

func (m *mockAnswerService) Ask(_ context.Context, question string, k int) domain.Answer {
	m.k = k
	a := m.answer
	a.Question = question
	return a
}

// mockStats is a mock IndexStats.
type mockStats struct {
	count int
	err   error
}

func (m *mockStats) Count(_ context.Context) (int, error) {
	return m.count, m.err
}
