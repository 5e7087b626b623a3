package kv

import (
	"strings"

	"keyhub/config"
	"keyhub/internal/core"
)

// Keys builds every storage key under one namespace prefix.
type Keys struct {
	prefix string
}

func NewKeys(prefix string) Keys {
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = string(core.RedisKeyDefaultPrefix)
	}
	return Keys{prefix: prefix}
}

// NewKeysFromConfig 使用 STORE__KEY_PREFIX
func NewKeysFromConfig(config *config.Configuration) Keys {
	return NewKeys(config.Store.KeyPrefix)
}

func (k Keys) join(parts ...string) string {
	return k.prefix + ":" + strings.Join(parts, ":")
}

func (k Keys) Token(tier core.KeyTier, token string) string {
	if tier == core.TierPaid {
		return k.join(string(core.RedisKeyPaidToken), token)
	}
	return k.join(string(core.RedisKeyFreeToken), token)
}

func (k Keys) OwnerIndex(tier core.KeyTier, ownerID string) string {
	if tier == core.TierPaid {
		return k.join(string(core.RedisKeyPaidOwnerIndex), ownerID)
	}
	return k.join(string(core.RedisKeyFreeOwnerIndex), ownerID)
}

// OwnerTombstones 已刪除但尚未 purge 的 token
func (k Keys) OwnerTombstones(tier core.KeyTier, ownerID string) string {
	if tier == core.TierPaid {
		return k.join(string(core.RedisKeyPaidTombstones), ownerID)
	}
	return k.join(string(core.RedisKeyFreeTombstones), ownerID)
}

// ExecEntry composite = scriptId:userId:deviceId
func (k Keys) ExecEntry(composite string) string {
	return k.join(string(core.RedisKeyExecEntry), composite)
}

func (k Keys) ExecIndex() string {
	return k.join(string(core.RedisKeyExecIndex))
}

func (k Keys) FreePolicy() string {
	return k.join(string(core.RedisKeyFreePolicy))
}

func (k Keys) PaidPolicy() string {
	return k.join(string(core.RedisKeyPaidPolicy))
}
