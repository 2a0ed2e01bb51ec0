package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{"number", `{"Amount": 100.5}`, "100.5"},
		{"numeric string", `{"Amount": "2500.75"}`, "2500.75"},
		{"integer string", `{"Amount": "631412"}`, "631412"},
		{"negative", `{"Amount": "-10.00"}`, "-10"},
		{"absent defaults to zero", `{}`, "0"},
		{"null defaults to zero", `{"Amount": null}`, "0"},
		{"empty string defaults to zero", `{"Amount": ""}`, "0"},
		{"garbage defaults to zero", `{"Amount": "N/A"}`, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var payload struct {
				Amount Money `json:"Amount"`
			}
			require.NoError(t, json.Unmarshal([]byte(tt.json), &payload))
			assert.True(t, payload.Amount.Equal(decimal.RequireFromString(tt.want)),
				"got %s want %s", payload.Amount, tt.want)
		})
	}
}

// A bad amount field must never reject the notification; only an empty
// TransactionId does that.
func TestNotification_ToleratesUnknownFieldsAndStringAmounts(t *testing.T) {
	body := `{
		"TransactionId": "FTC123",
		"AcctNo": "01100012345",
		"Currency": "KES",
		"Amount": "1500.00",
		"BookedBalance": 20500.25,
		"Narration": "TI28ZF3AQY~631412",
		"SomeNewBankField": {"nested": true}
	}`

	var n Notification
	require.NoError(t, json.Unmarshal([]byte(body), &n))

	assert.Equal(t, "FTC123", n.TransactionID)
	assert.True(t, n.Amount.Equal(decimal.RequireFromString("1500.00")))
	assert.True(t, n.BookedBalance.Equal(decimal.RequireFromString("20500.25")))
	assert.True(t, n.ClearedBalance.IsZero())
	assert.Equal(t, "TI28ZF3AQY~631412", n.Narration)
}
