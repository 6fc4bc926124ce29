package config

import "fmt"

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SessionStartKey returns the cache key for a session's authoritative start time (unix seconds).
func (r *CacheKeyStruct) SessionStartKey(sessionID string) string {
	return fmt.Sprintf("session:%s:start", sessionID)
}

// SessionPaperKey returns the cache key for a session's taker-facing question payload.
func (r *CacheKeyStruct) SessionPaperKey(sessionID string) string {
	return fmt.Sprintf("session:%s:paper", sessionID)
}

// SessionAnswersKey returns the cache key for a session's autosaved answers hash.
func (r *CacheKeyStruct) SessionAnswersKey(sessionID string) string {
	return fmt.Sprintf("session:%s:answers", sessionID)
}

// SessionQuestionSetKey returns the cache key for the set of question IDs in a session.
func (r *CacheKeyStruct) SessionQuestionSetKey(sessionID string) string {
	return fmt.Sprintf("session:%s:questions", sessionID)
}

var CacheKey = NewCacheKeyStruct()
