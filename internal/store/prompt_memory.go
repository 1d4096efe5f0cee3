package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/promptkeep/promptkeep/models"
)

// memoryPromptStore is an in-memory PromptStore used by tests and the dev
// server. Same semantics as the file store minus persistence.
type memoryPromptStore struct {
	mu      sync.RWMutex
	prompts map[string]models.Prompt
}

func NewMemoryPromptStore() PromptStore {
	return &memoryPromptStore{prompts: make(map[string]models.Prompt)}
}

func (s *memoryPromptStore) List(ctx context.Context) ([]models.Prompt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Prompt, 0, len(s.prompts))
	for _, p := range s.prompts {
		out = append(out, p)
	}
	return out, nil
}

func (s *memoryPromptStore) Get(ctx context.Context, id string) (models.Prompt, error) {
	if err := ctx.Err(); err != nil {
		return models.Prompt{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.prompts[id]
	if !ok {
		return models.Prompt{}, fmt.Errorf("get prompt %s: %w", id, ErrPromptNotFound)
	}
	return p, nil
}

func (s *memoryPromptStore) Save(ctx context.Context, prompts ...models.Prompt) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range prompts {
		s.prompts[p.ID] = p
	}
	return nil
}

func (s *memoryPromptStore) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.prompts[id]; !ok {
		return false, nil
	}
	delete(s.prompts, id)
	return true, nil
}
