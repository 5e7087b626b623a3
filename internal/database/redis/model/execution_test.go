package model

import (
	"testing"

	"keyhub/internal/database/kv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeLocationUnionsServerIDs(t *testing.T) {
	agg := &ExecutionAggregate{}
	agg.MergeLocation(Location{MapName: "Map1", PlaceID: "100"})
	agg.MergeLocation(Location{MapName: "Map1", PlaceID: "100", ServerID: "s1"})
	agg.MergeLocation(Location{MapName: "Map1", PlaceID: "100", ServerID: "s1"})

	require.Len(t, agg.AllMapList, 1)
	assert.Equal(t, []string{"s1"}, agg.AllMapList[0].ServerIDs)
	assert.Equal(t, "s1", agg.AllMapList[0].ServerID)

	agg.MergeLocation(Location{MapName: "Map1", PlaceID: "100", ServerID: "s2"})
	agg.MergeLocation(Location{GameID: "9", PlaceID: "100", MapName: "Map1"})
	require.Len(t, agg.AllMapList, 2)
	assert.Equal(t, []string{"s1", "s2"}, agg.AllMapList[0].ServerIDs)
	assert.Equal(t, "s2", agg.AllMapList[0].ServerID)
	assert.Equal(t, "9", agg.AllMapList[1].GameID)
}

func TestMergeLocationSkipsAnonymousEntries(t *testing.T) {
	agg := &ExecutionAggregate{}
	agg.MergeLocation(Location{ServerID: "s1"})
	assert.Empty(t, agg.AllMapList)
}

func TestDecodeLegacyExecution(t *testing.T) {
	raw := []byte(`{
		"key": "scriptA:r1:dev1",
		"scriptId": "scriptA",
		"userId": 42,
		"hwid": "dev1",
		"username": "alice",
		"clientExecuteCount": "7",
		"keyToken": "EXHUBFREE-abc-defg-hijkl",
		"keyCreatedAt": "1700000000000",
		"firstExecuteAt": "2024-01-01T00:00:00.000Z",
		"lastExecuteAt": "2024-01-02T00:00:00.000Z",
		"totalExecutes": 3,
		"allMapList": [
			{"mapName": "Map1", "placeId": 100, "serverIds": ["s1", "s1", ""], "serverId": "s2"}
		]
	}`)

	agg, err := DecodeExecutionAggregate(raw)
	require.NoError(t, err)
	assert.Equal(t, "42", agg.UserID)
	assert.Equal(t, int64(3), agg.TotalExecutes)
	assert.Equal(t, int64(1704067200000), agg.FirstExecuteAt)
	assert.Equal(t, int64(1704153600000), agg.LastExecuteAt)
	require.NotNil(t, agg.ClientExecuteCount)
	assert.Equal(t, int64(7), *agg.ClientExecuteCount)
	require.NotNil(t, agg.KeyCreatedAt)
	require.Len(t, agg.AllMapList, 1)
	assert.Equal(t, "100", agg.AllMapList[0].PlaceID)
	assert.Equal(t, []string{"s1", "s2"}, agg.AllMapList[0].ServerIDs)
}

func TestDecodeExecutionRejectsMissingTriple(t *testing.T) {
	_, err := DecodeExecutionAggregate([]byte(`{"schemaVersion":1,"scriptId":"s","userId":"u","totalExecutes":1}`))
	assert.ErrorIs(t, err, kv.ErrMalformed)
}

func TestExecutionEncodeRoundTrip(t *testing.T) {
	agg := &ExecutionAggregate{
		Key:            ExecutionKey("s", "u", "d"),
		ScriptID:       "s",
		UserID:         "u",
		DeviceID:       "d",
		TotalExecutes:  2,
		FirstExecuteAt: 1,
		LastExecuteAt:  2,
	}
	raw, err := agg.Encode()
	require.NoError(t, err)

	got, err := DecodeExecutionAggregate(raw)
	require.NoError(t, err)
	assert.Equal(t, "s:u:d", got.Key)
	assert.Equal(t, []Location{}, got.AllMapList)
}
