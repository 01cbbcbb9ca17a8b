package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/patrickmn/go-cache"

	domain "storyweaver/internal/model"
	"storyweaver/internal/profile"
)

// CachedAnalyzer 按图片摘要缓存分析结果，只缓存成功的结果
type CachedAnalyzer struct {
	next  profile.VisionAnalyzer
	cache *cache.Cache
}

// NewCachedAnalyzer 包装一个分析器，ttl 为缓存有效期
func NewCachedAnalyzer(next profile.VisionAnalyzer, ttl time.Duration) *CachedAnalyzer {
	return &CachedAnalyzer{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

// Analyze 命中缓存直接返回，否则调用下游
func (c *CachedAnalyzer) Analyze(ctx context.Context, image []byte) (domain.Traits, error) {
	sum := sha256.Sum256(image)
	key := hex.EncodeToString(sum[:])
	if v, ok := c.cache.Get(key); ok {
		return v.(domain.Traits), nil
	}
	t, err := c.next.Analyze(ctx, image)
	if err != nil {
		return domain.Traits{}, err
	}
	c.cache.SetDefault(key, t)
	return t, nil
}

var _ profile.VisionAnalyzer = (*CachedAnalyzer)(nil)
