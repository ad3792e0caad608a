package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// TestPayloadKey returns the cache key for a completed test's question payload
func (r *CacheKeyStruct) TestPayloadKey(testID string) string {
	return fmt.Sprintf("test:%s:payload", testID)
}

// TestEventsChannel returns the Redis PubSub channel for a test's status events
func (r *CacheKeyStruct) TestEventsChannel(testID string) string {
	return fmt.Sprintf("test:%s:events", testID)
}

var CacheKey = NewCacheKeyStruct()
