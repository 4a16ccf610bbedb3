package einvoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecode(t *testing.T, raw string) responseBody {
	t.Helper()
	body, ok := decodeBody([]byte(raw))
	require.True(t, ok, "body should decode: %s", raw)
	return body
}

func TestDecodeBody(t *testing.T) {
	_, ok := decodeBody([]byte(`<html/>`))
	assert.False(t, ok)
	_, ok = decodeBody([]byte(`null`))
	assert.False(t, ok)
	_, ok = decodeBody([]byte(`[1,2]`))
	assert.False(t, ok)
	_, ok = decodeBody(nil)
	assert.False(t, ok)
}

func TestNormalizeFailure_Precedence(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
		code    string
	}{
		{
			name:    "ErrorMessage wins over everything",
			body:    `{"ErrorMessage":"flat","ErrorDetails":[{"ErrorMessage":"detail"}],"errorMessage":"lower","ValidationErrors":["v"],"message":"m"}`,
			message: "flat",
		},
		{
			name:    "ErrorDetails objects before errorMessage",
			body:    `{"ErrorDetails":[{"ErrorCode":"2150","ErrorMessage":"Duplicate IRN"}],"errorMessage":"lower","message":"m"}`,
			message: "Duplicate IRN",
			code:    "2150",
		},
		{
			name:    "ErrorDetails deduplicated and joined",
			body:    `{"ErrorDetails":[{"ErrorMessage":"A"},{"ErrorMessage":"B"},{"ErrorMessage":"A"}]}`,
			message: "A, B",
		},
		{
			name:    "ErrorDetails of plain strings",
			body:    `{"ErrorDetails":["x","y","x"]}`,
			message: "x, y",
		},
		{
			name:    "empty ErrorDetails falls through to errorMessage",
			body:    `{"ErrorDetails":[],"errorMessage":"lower","errorCode":"401"}`,
			message: "lower",
			code:    "401",
		},
		{
			name:    "errorMessage before ValidationErrors",
			body:    `{"errorMessage":"lower","ValidationErrors":["v1"]}`,
			message: "lower",
		},
		{
			name:    "ValidationErrors deduplicated",
			body:    `{"ValidationErrors":["Pin is invalid","Pin is invalid","Pos is required"],"message":"m"}`,
			message: "Pin is invalid, Pos is required",
		},
		{
			name:    "message last",
			body:    `{"status":0,"message":"Invalid client credentials"}`,
			message: "Invalid client credentials",
		},
		{
			name:    "fallback",
			body:    `{"status":0}`,
			message: UnknownUpstreamError,
		},
		{
			name:    "field names are case sensitive",
			body:    `{"errormessage":"nope","Message":"nope"}`,
			message: UnknownUpstreamError,
		},
		{
			name:    "nested auth payload",
			body:    `{"Status":0,"Data":{"ErrorMessage":"Invalid password","ErrorCode":"1005"}}`,
			message: "Invalid password",
			code:    "1005",
		},
		{
			name:    "numeric ErrorCode",
			body:    `{"ErrorCode":2150,"ErrorMessage":"Duplicate IRN"}`,
			message: "Duplicate IRN",
			code:    "2150",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			message, code := normalizeFailure(mustDecode(t, tt.body))
			assert.Equal(t, tt.message, message)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestAuthSucceeded(t *testing.T) {
	assert.True(t, authSucceeded(mustDecode(t, `{"status":1}`)))
	assert.True(t, authSucceeded(mustDecode(t, `{"Status":1}`)))
	assert.False(t, authSucceeded(mustDecode(t, `{"status":0}`)))
	assert.False(t, authSucceeded(mustDecode(t, `{"Status":"1"}`)))
	assert.False(t, authSucceeded(mustDecode(t, `{}`)))
}

func TestAuthField(t *testing.T) {
	assert.Equal(t, "tok1", authField(mustDecode(t, `{"status":1,"data":{"accessToken":"tok1"}}`), "accessToken"))
	assert.Equal(t, "tok2", authField(mustDecode(t, `{"status":1,"accessToken":"tok2"}`), "accessToken"))
	assert.Equal(t, "at", authField(mustDecode(t, `{"Status":1,"Data":{"AuthToken":"at"}}`), "AuthToken"))
	assert.Empty(t, authField(mustDecode(t, `{"Status":1,"Data":"encrypted"}`), "AuthToken"))
}

func TestParseIRNResult(t *testing.T) {
	t.Run("top level", func(t *testing.T) {
		result, ok := parseIRNResult(mustDecode(t, `{"Irn":"IRN123","AckNo":112010036563310,"AckDt":"2024-01-15 10:00:00","SignedQRCode":"qr","SignedInvoice":"si","Status":"ACT"}`))
		require.True(t, ok)
		assert.Equal(t, "IRN123", result.Irn)
		assert.Equal(t, "112010036563310", result.AckNo)
		assert.Equal(t, "2024-01-15 10:00:00", result.AckDate)
		assert.Equal(t, "qr", result.SignedQRCode)
		assert.Equal(t, "si", result.SignedInvoice)
		assert.Equal(t, "ACT", result.Status)
	})

	t.Run("wrapped in Data", func(t *testing.T) {
		result, ok := parseIRNResult(mustDecode(t, `{"Status":1,"Data":{"Irn":"IRN9","CancelDate":"2024-01-01 12:00:00"}}`))
		require.True(t, ok)
		assert.Equal(t, "IRN9", result.Irn)
		assert.Equal(t, "2024-01-01 12:00:00", result.CancelDate)
	})

	t.Run("null Irn is a failure", func(t *testing.T) {
		_, ok := parseIRNResult(mustDecode(t, `{"Irn":null,"ErrorDetails":[]}`))
		assert.False(t, ok)
	})

	t.Run("empty Irn is a failure", func(t *testing.T) {
		_, ok := parseIRNResult(mustDecode(t, `{"Irn":""}`))
		assert.False(t, ok)
	})
}
