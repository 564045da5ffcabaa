package repositories

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/skillpivot/api/internal/pkg/apperrors"
	"github.com/skillpivot/api/internal/pkg/logger"
)

// TokenRepository stores refresh tokens in Redis. Only the SHA-256 of a token
// is kept; each user also has a set of live hashes for bulk revocation.
type TokenRepository struct {
	client *redis.Client
}

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(client *redis.Client) *TokenRepository {
	return &TokenRepository{client: client}
}

// CreateToken issues a refresh token for userID valid for ttl.
func (r *TokenRepository) CreateToken(ctx context.Context, userID int64, ttl time.Duration) (string, error) {
	token, err := generateRefreshToken()
	if err != nil {
		return "", err
	}
	hash := refreshTokenHash(token)

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, refreshTokenKey(hash), strconv.FormatInt(userID, 10), ttl)
	pipe.SAdd(ctx, userTokensKey(userID), hash)
	pipe.Expire(ctx, userTokensKey(userID), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error storing refresh token")
		return "", fmt.Errorf("error storing refresh token: %w", err)
	}
	return token, nil
}

// ConsumeToken atomically removes token and returns its owner. Unknown or
// expired tokens yield apperrors.ErrTokenNotFound.
func (r *TokenRepository) ConsumeToken(ctx context.Context, token string) (int64, error) {
	hash := refreshTokenHash(token)
	value, err := r.client.GetDel(ctx, refreshTokenKey(hash)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, apperrors.ErrTokenNotFound
	}
	if err != nil {
		logger.Error().Err(err).Msg("Error consuming refresh token")
		return 0, fmt.Errorf("error consuming refresh token: %w", err)
	}

	userID, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, apperrors.ErrTokenInvalid
	}
	_ = r.client.SRem(ctx, userTokensKey(userID), hash).Err()
	return userID, nil
}

// DeleteToken revokes a single refresh token. Unknown tokens are ignored.
func (r *TokenRepository) DeleteToken(ctx context.Context, token string) error {
	_, err := r.ConsumeToken(ctx, token)
	if err != nil && !errors.Is(err, apperrors.ErrTokenNotFound) && !errors.Is(err, apperrors.ErrTokenInvalid) {
		return err
	}
	return nil
}

// RevokeAllForUser deletes every refresh token issued to userID.
func (r *TokenRepository) RevokeAllForUser(ctx context.Context, userID int64) error {
	hashes, err := r.client.SMembers(ctx, userTokensKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("error listing refresh tokens: %w", err)
	}

	pipe := r.client.TxPipeline()
	for _, hash := range hashes {
		pipe.Del(ctx, refreshTokenKey(hash))
	}
	pipe.Del(ctx, userTokensKey(userID))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error revoking refresh tokens")
		return fmt.Errorf("error revoking refresh tokens: %w", err)
	}
	return nil
}

func generateRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func refreshTokenHash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func refreshTokenKey(hash string) string {
	return "refresh:token:" + hash
}

func userTokensKey(userID int64) string {
	return "refresh:user:" + strconv.FormatInt(userID, 10)
}
