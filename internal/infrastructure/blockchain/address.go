package blockchain

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	domainerrors "lottery-ledger.backend/internal/domain/errors"
)

var evmCurrencies = map[string]bool{
	"eth":   true,
	"bnb":   true,
	"matic": true,
	"pol":   true,
	"arb":   true,
	"op":    true,
	"avax":  true,
	"ftm":   true,
}

var evmNetworkSuffixes = []string{"erc20", "bsc", "bep20", "matic", "polygon", "arb", "arbitrum", "op", "base", "avaxc"}

// IsEVMCurrency reports whether payouts in currency go to an EVM address
func IsEVMCurrency(currency string) bool {
	c := strings.ToLower(strings.TrimSpace(currency))
	if evmCurrencies[c] {
		return true
	}
	for _, suffix := range evmNetworkSuffixes {
		if strings.HasSuffix(c, suffix) && len(c) > len(suffix) {
			return true
		}
	}
	return false
}

// ValidatePayoutAddress checks that address can receive currency. EVM
// addresses must be 20-byte hex and, when mixed case, carry a valid EIP-55
// checksum. Other chains only get a shape check; the gateway validates them.
func ValidatePayoutAddress(currency, address string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return fmt.Errorf("%w: address is required", domainerrors.ErrInvalidPayoutAddress)
	}

	if IsEVMCurrency(currency) {
		if !common.IsHexAddress(address) {
			return fmt.Errorf("%w: %s is not an EVM address", domainerrors.ErrInvalidPayoutAddress, address)
		}
		hexPart := strings.TrimPrefix(strings.TrimPrefix(address, "0x"), "0X")
		mixed := strings.ToLower(hexPart) != hexPart && strings.ToUpper(hexPart) != hexPart
		if mixed && common.HexToAddress(address).Hex() != "0x"+hexPart {
			return fmt.Errorf("%w: bad EIP-55 checksum", domainerrors.ErrInvalidPayoutAddress)
		}
		return nil
	}

	if len(address) < 20 || len(address) > 128 || strings.ContainsAny(address, " \t\r\n") {
		return fmt.Errorf("%w: malformed address", domainerrors.ErrInvalidPayoutAddress)
	}
	return nil
}
