package blacklist

import (
	"fmt"
	"time"

	cache "github.com/patrickmn/go-cache"
)

// サインアウト済みrefresh tokenの失効リスト。
// エントリはトークンの残り寿命ぶんだけ生きて勝手に消える。
// キャッシュのTTLが守られない環境では、サインアウト済みトークンが
// 自然失効まで有効に見える可能性がある（この設計の前提）。
type Cache struct {
	c *cache.Cache
}

func New(cleanupInterval time.Duration) *Cache {
	if cleanupInterval <= 0 {
		cleanupInterval = 10 * time.Minute
	}
	return &Cache{c: cache.New(cache.NoExpiration, cleanupInterval)}
}

// 残り寿命が0以下なら何もしない（もう期限切れなので追跡不要）
func (b *Cache) Add(userID int64, tokenID string, remaining time.Duration) {
	if remaining <= 0 {
		return
	}
	b.c.Set(key(userID, tokenID), struct{}{}, remaining)
}

func (b *Cache) Contains(userID int64, tokenID string) bool {
	_, found := b.c.Get(key(userID, tokenID))
	return found
}

func key(userID int64, tokenID string) string {
	return fmt.Sprintf("%d:%s", userID, tokenID)
}
