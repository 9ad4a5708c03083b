package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// MemberLoginKey returns the cache key for a member's login session.
func (r *CacheKeyStruct) MemberLoginKey(memberID int) string {
	return fmt.Sprintf("login:%d", memberID)
}

// MemberSessionStartKey returns the cache key for a member's quiz session start time.
func (r *CacheKeyStruct) MemberSessionStartKey(quizID string, memberID int) string {
	return fmt.Sprintf("member:%d:quiz:%s:session_start", memberID, quizID)
}

// MemberAnswersKey returns the cache key for a member's autosaved answers.
func (r *CacheKeyStruct) MemberAnswersKey(quizID string, memberID int) string {
	return fmt.Sprintf("member:%d:quiz:%s:answers", memberID, quizID)
}

// QuizPayloadKey returns the cache key for a quiz's member-facing payload.
func (r *CacheKeyStruct) QuizPayloadKey(quizID string) string {
	return fmt.Sprintf("quiz:%s:payload", quizID)
}

// QuizTimeLimitKey returns the cache key for a quiz's time limit.
func (r *CacheKeyStruct) QuizTimeLimitKey(quizID string) string {
	return fmt.Sprintf("quiz:%s:time_limit", quizID)
}

// QuizAnswerKey returns the cache key for a quiz's answer key hash.
func (r *CacheKeyStruct) QuizAnswerKey(quizID string) string {
	return fmt.Sprintf("quiz:%s:key", quizID)
}

var CacheKey = NewCacheKeyStruct()
