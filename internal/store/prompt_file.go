// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PromptKeep Authors

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/promptkeep/promptkeep/internal/logger"
	"github.com/promptkeep/promptkeep/models"
)

// filePromptStore keeps the whole prompt library as one JSON document on
// disk, mirrored in memory. All mutations hold the write lock for the full
// read-modify-write-replace cycle, so concurrent writers never interleave.
type filePromptStore struct {
	path string
	log  *logger.Logger

	mu      sync.RWMutex
	prompts map[string]models.Prompt
}

// persistedLibrary is the on-disk document shape.
type persistedLibrary struct {
	Prompts map[string]models.Prompt `json:"prompts"`
}

// NewFilePromptStore opens (or creates) the prompt library document at path.
func NewFilePromptStore(path string, log *logger.Logger) (PromptStore, error) {
	s := &filePromptStore{
		path:    path,
		log:     log,
		prompts: make(map[string]models.Prompt),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *filePromptStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read prompt library: %w", err)
	}

	var doc persistedLibrary
	if err = json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode prompt library: %w", err)
	}
	if doc.Prompts != nil {
		s.prompts = doc.Prompts
	}
	return nil
}

// persist writes the current library under the held write lock.
func (s *filePromptStore) persist() error {
	doc := persistedLibrary{Prompts: s.prompts}
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode prompt library: %w", err)
	}
	return writeFileAtomic(s.path, payload)
}

func (s *filePromptStore) List(ctx context.Context) ([]models.Prompt, error) {
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

func (s *filePromptStore) Get(ctx context.Context, id string) (models.Prompt, error) {
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

func (s *filePromptStore) Save(ctx context.Context, prompts ...models.Prompt) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range prompts {
		s.prompts[p.ID] = p
	}
	if err := s.persist(); err != nil {
		return fmt.Errorf("save prompts: %w", err)
	}
	return nil
}

func (s *filePromptStore) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.prompts[id]; !ok {
		return false, nil
	}
	delete(s.prompts, id)
	if err := s.persist(); err != nil {
		return false, fmt.Errorf("delete prompt %s: %w", id, err)
	}
	return true, nil
}
