package shared

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"golang.org/x/crypto/sha3"
)

const evmAddressHexLength = 40

// IsEVMAddress reports whether value looks like a 20-byte 0x EVM address.
func IsEVMAddress(value string) bool {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) != evmAddressHexLength+2 {
		return false
	}
	if !strings.HasPrefix(trimmed, "0x") && !strings.HasPrefix(trimmed, "0X") {
		return false
	}
	_, err := hex.DecodeString(trimmed[2:])
	return err == nil
}

// NormalizeEVMAddress returns the lowercase 0x form of an EVM address.
func NormalizeEVMAddress(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if !IsEVMAddress(trimmed) {
		return "", fmt.Errorf("invalid EVM address %q", value)
	}
	return "0x" + strings.ToLower(trimmed[2:]), nil
}

// EVMAddressFromPublicKeyHex derives the EVM address for a hex-encoded
// secp256k1 public key. Compressed (33 byte) and uncompressed (65 byte)
// encodings are accepted.
func EVMAddressFromPublicKeyHex(publicKeyHex string) (string, error) {
	trimmed := strings.TrimSpace(publicKeyHex)
	trimmed = strings.TrimPrefix(strings.TrimPrefix(trimmed, "0x"), "0X")
	if trimmed == "" {
		return "", fmt.Errorf("public key cannot be empty")
	}

	keyBytes, err := hex.DecodeString(trimmed)
	if err != nil {
		return "", fmt.Errorf("public key must be valid hex: %w", err)
	}

	publicKey, err := btcec.ParsePubKey(keyBytes)
	if err != nil {
		return "", fmt.Errorf("failed to parse secp256k1 public key: %w", err)
	}

	uncompressed := publicKey.SerializeUncompressed()

	hasher := sha3.NewLegacyKeccak256()
	hasher.Write(uncompressed[1:])
	digest := hasher.Sum(nil)

	return ChecksumEVMAddress(digest[len(digest)-20:]), nil
}

// ChecksumEVMAddress renders 20 address bytes in EIP-55 mixed-case form.
func ChecksumEVMAddress(address []byte) string {
	lower := hex.EncodeToString(address)

	hasher := sha3.NewLegacyKeccak256()
	hasher.Write([]byte(lower))
	digest := hasher.Sum(nil)

	checksummed := make([]byte, len(lower))
	for index := 0; index < len(lower); index++ {
		character := lower[index]
		nibble := digest[index/2]
		if index%2 == 0 {
			nibble >>= 4
		} else {
			nibble &= 0x0f
		}
		if character >= 'a' && character <= 'f' && nibble >= 8 {
			character = character - 'a' + 'A'
		}
		checksummed[index] = character
	}

	return "0x" + string(checksummed)
}
