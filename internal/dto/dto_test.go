package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecReportAcceptsNumericIDs(t *testing.T) {
	raw := `{"scriptId":"s1","userId":123456789,"hwid":"d1","executeCount":"7","Key":"EXHUBPAID-AAAA-BBBB-CCCC","placeId":42}`
	var d ExecReportDto
	require.NoError(t, json.Unmarshal([]byte(raw), &d))

	in := d.ToInput("10.0.0.1")
	assert.Equal(t, "123456789", in.UserID)
	assert.Equal(t, "d1", in.DeviceID)
	assert.Equal(t, "EXHUBPAID-AAAA-BBBB-CCCC", in.KeyToken)
	assert.Equal(t, "42", in.PlaceID)
	assert.Equal(t, "10.0.0.1", in.IP)
	require.NotNil(t, in.ClientExecuteCount)
	assert.Equal(t, int64(7), *in.ClientExecuteCount)
}

func TestExecReportExecuteCountFallback(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want *int64
	}{
		{"client count", `{"clientExecuteCount":3}`, ptr(3)},
		{"executeCount wins", `{"executeCount":5,"clientExecuteCount":3}`, ptr(5)},
		{"not a number", `{"executeCount":"abc"}`, nil},
		{"absent", `{}`, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var d ExecReportDto
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &d))
			assert.Equal(t, tc.want, d.ToInput("").ClientExecuteCount)
		})
	}
}

func TestFlexStringNull(t *testing.T) {
	var v struct {
		A FlexString `json:"a"`
		B FlexString `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":null,"b":" x "}`), &v))
	assert.Equal(t, FlexString(""), v.A)
	assert.Equal(t, FlexString("x"), v.B)
}

func ptr(n int64) *int64 { return &n }
