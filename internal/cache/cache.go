// Package cache memoizes expensive high-confidence answers by question
// text. Keys are normalized (trimmed, case-folded) and the cache is a
// bounded LRU, so repeated phrasings of the same question hit and growth
// stays capped.
package cache

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"document-qa/internal/models"
)

type AnswerCache struct {
	lru *lru.Cache[string, models.Response]
}

func New(capacity int) (*AnswerCache, error) {
	c, err := lru.New[string, models.Response](capacity)
	if err != nil {
		return nil, err
	}
	return &AnswerCache{lru: c}, nil
}

func (c *AnswerCache) Get(question string) (models.Response, bool) {
	return c.lru.Get(normalize(question))
}

func (c *AnswerCache) Put(question string, response models.Response) {
	c.lru.Add(normalize(question), response)
}

func (c *AnswerCache) Len() int {
	return c.lru.Len()
}

func normalize(question string) string {
	return strings.ToLower(strings.TrimSpace(question))
}
