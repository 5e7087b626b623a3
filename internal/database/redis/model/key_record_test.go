package model

import (
	"testing"

	"keyhub/internal/core"
	"keyhub/internal/database/kv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeKeyRecordRoundTrip(t *testing.T) {
	exp := int64(2_000)
	rec := &KeyRecord{
		Token:     "EXHUBPAID-ABCD-EFGH-IJKL",
		OwnerID:   "owner-1",
		Tier:      core.TierPaid,
		Plan:      core.PlanLifetime,
		CreatedAt: 1_000,
		ExpiresAt: &exp,
		Valid:     true,
		Binding:   &BoundIdentity{ExternalUserID: "r1", BoundAt: 1_500},
	}
	raw, err := rec.Encode()
	require.NoError(t, err)

	got, err := DecodeKeyRecord(raw)
	require.NoError(t, err)
	assert.Equal(t, KeyRecordSchemaVersion, got.SchemaVersion)
	assert.Equal(t, "PAID LIFETIME", got.ProviderLabel)
	assert.Equal(t, "r1", got.Binding.ExternalUserID)
	assert.Equal(t, core.KeyStatusActive, got.Status(2_000))
	assert.Equal(t, core.KeyStatusExpired, got.Status(2_001))
}

func TestDecodeLegacyFreeKey(t *testing.T) {
	raw := []byte(`{
		"token": "EXHUBFREE-abc-defg-hijkl",
		"userId": 123456789,
		"provider": "workink",
		"createdAt": 1700000000000,
		"byIp": "1.2.3.4",
		"expiresAfter": "1700010800000",
		"deleted": false,
		"valid": true,
		"boundRobloxUserId": "r1",
		"boundRobloxUsername": "Alice",
		"boundRobloxDisplayName": null,
		"boundRobloxHWID": "dev-1",
		"boundAt": 1700000001000,
		"hwidResetCount": 2
	}`)

	rec, err := DecodeKeyRecord(raw)
	require.NoError(t, err)
	assert.Equal(t, "123456789", rec.OwnerID)
	assert.Equal(t, core.TierFree, rec.Tier)
	assert.Empty(t, rec.Plan)
	require.NotNil(t, rec.ExpiresAt)
	assert.Equal(t, int64(1700010800000), *rec.ExpiresAt)
	assert.Equal(t, "1.2.3.4", rec.SourceIP)
	require.NotNil(t, rec.Binding)
	assert.Equal(t, "Alice", rec.Binding.ExternalUsername)
	assert.Equal(t, "dev-1", rec.Binding.DeviceID)
	assert.Equal(t, 2, rec.BindingResetCount)
}

func TestDecodeLegacyPaidKey(t *testing.T) {
	raw := []byte(`{
		"token": "EXHUBPAID-ABCD-EFGH-IJKL",
		"createdAt": 1700000000000,
		"expiresAfter": 1702592000000,
		"type": "6",
		"tier": "Paid",
		"ownerDiscordId": "d-1",
		"hwid": "legacy-device",
		"boundAt": null
	}`)

	rec, err := DecodeKeyRecord(raw)
	require.NoError(t, err)
	assert.Equal(t, core.TierPaid, rec.Tier)
	assert.Equal(t, core.PlanSixMonth, rec.Plan)
	assert.Equal(t, "d-1", rec.OwnerID)
	assert.True(t, rec.Valid)
	require.NotNil(t, rec.Binding)
	assert.Equal(t, "legacy-device", rec.Binding.DeviceID)
	assert.Equal(t, rec.CreatedAt, rec.Binding.BoundAt)
}

func TestDecodeKeyRecordRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":         `{"token":`,
		"missing owner":    `{"token":"EXHUBFREE-abc-defg-hijkl","createdAt":1}`,
		"tier mismatch":    `{"schemaVersion":2,"token":"EXHUBFREE-abc-defg-hijkl","ownerId":"o","tier":"paid","plan":"month","createdAt":1}`,
		"unknown plan":     `{"schemaVersion":2,"token":"EXHUBPAID-ABCD-EFGH-IJKL","ownerId":"o","tier":"paid","plan":"weekly","createdAt":1}`,
		"no created at":    `{"schemaVersion":2,"token":"EXHUBFREE-abc-defg-hijkl","ownerId":"o","tier":"free"}`,
		"future schema":    `{"schemaVersion":9,"token":"EXHUBFREE-abc-defg-hijkl","ownerId":"o","tier":"free","createdAt":1}`,
		"unprefixed token": `{"token":"abc","userId":"o","createdAt":1}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeKeyRecord([]byte(raw))
			assert.ErrorIs(t, err, kv.ErrMalformed)
		})
	}
}

func TestKeyRecordStatusPrecedence(t *testing.T) {
	past := int64(10)
	rec := &KeyRecord{Valid: false, Deleted: true, ExpiresAt: &past}
	assert.Equal(t, core.KeyStatusDeleted, rec.Status(100))

	rec.Deleted = false
	assert.Equal(t, core.KeyStatusInvalid, rec.Status(100))

	rec.Valid = true
	assert.Equal(t, core.KeyStatusExpired, rec.Status(100))

	rec.ExpiresAt = nil
	assert.Equal(t, core.KeyStatusActive, rec.Status(100))
}
