package blockchain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainerrors "lottery-ledger.backend/internal/domain/errors"
)

func TestIsEVMCurrency(t *testing.T) {
	assert.True(t, IsEVMCurrency("ETH"))
	assert.True(t, IsEVMCurrency("usdterc20"))
	assert.True(t, IsEVMCurrency("usdtbsc"))
	assert.True(t, IsEVMCurrency("usdcmatic"))
	assert.False(t, IsEVMCurrency("btc"))
	assert.False(t, IsEVMCurrency("usdttrc20"))
	assert.False(t, IsEVMCurrency("erc20"))
}

func TestValidatePayoutAddress(t *testing.T) {
	cases := []struct {
		name     string
		currency string
		address  string
		ok       bool
	}{
		{"checksummed evm", "usdterc20", "0x52908400098527886E0F7030069857D2E4169EE7", true},
		{"lowercase evm", "eth", "0x52908400098527886e0f7030069857d2e4169ee7", true},
		{"bad checksum", "eth", "0x52908400098527886E0F7030069857D2E4169Ee7", false},
		{"short evm", "eth", "0x1234", false},
		{"empty", "eth", "  ", false},
		{"btc bech32", "btc", "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq", true},
		{"btc with space", "btc", "bc1qar0srrr7xfkvy5l6 43lydnw9re59gtzzwf5mdq", false},
		{"tron too short", "trx", "T9yD14", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePayoutAddress(tc.currency, tc.address)
			if tc.ok {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, domainerrors.ErrInvalidPayoutAddress)
		})
	}
}
