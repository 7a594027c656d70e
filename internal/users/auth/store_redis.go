// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/yamdb/internal/platform/constants"
)

// RedisCooldownRepository implements [CooldownRepository] with expiring keys.
type RedisCooldownRepository struct {
	client *redis.Client
}

// NewCooldownRepository creates a new Redis-backed CooldownRepository.
func NewCooldownRepository(client *redis.Client) *RedisCooldownRepository {
	return &RedisCooldownRepository{client: client}
}

/*
Acquire claims the cooldown window for an email with SET NX EX.

Parameters:
  - context: context.Context
  - email: string (case-folded before keying)
  - ttl: time.Duration

Returns:
  - bool: true when the window was free and is now held
  - error: Connectivity errors
*/
func (repository *RedisCooldownRepository) Acquire(context context.Context, email string, ttl time.Duration) (bool, error) {
	key := constants.RedisPrefixCodeCooldown + strings.ToLower(email)

	acquired, err := repository.client.SetNX(context, key, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis_code_cooldown_acquire_failed: %w", err)
	}
	return acquired, nil
}
