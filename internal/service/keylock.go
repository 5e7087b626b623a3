package service

import (
	"keyhub/internal/core"
	"sync"
)

// KeyLocker 行程內的 per-key 互斥表；同一 token 或同一執行三元組的讀改寫在此序列化。
// 條目在最後一個持有者釋放後移除，表的大小只跟同時在處理的 key 數量有關。
type KeyLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func NewKeyLocker() *KeyLocker {
	return &KeyLocker{locks: make(map[string]*keyLock)}
}

// Lock 取得 key 的鎖，回傳釋放函式
func (l *KeyLocker) Lock(key string) func() {
	l.mu.Lock()
	entry, ok := l.locks[key]
	if !ok {
		entry = &keyLock{}
		l.locks[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}

func tokenLockKey(token string) string { return "token:" + token }

func tripleLockKey(composite string) string { return "exec:" + composite }

func giveawayLockKey(giveawayID string) string { return "giveaway:" + giveawayID }

func ownerLockKey(tier core.KeyTier, ownerID string) string {
	return "owner:" + string(tier) + ":" + ownerID
}
