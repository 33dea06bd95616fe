package hcs721

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/hashgraph-online/hcs721-go/pkg/shared"
)

// NormalizeSymbol returns the normalized collection symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// NormalizeAccountID strips whitespace and an optional address checksum
// from an account or topic identifier, returning the bare shard.realm.num
// form.
func NormalizeAccountID(identifier string) (string, error) {
	base, checksum, hasChecksum := strings.Cut(strings.TrimSpace(identifier), "-")
	if !hederaEntityRegex.MatchString(base) {
		return "", NewInvalidAccountFormatError(identifier)
	}
	if hasChecksum && !validAddressChecksum(checksum) {
		return "", NewInvalidAccountFormatError(identifier)
	}
	return base, nil
}

// validAddressChecksum reports whether suffix has the shape of a Hedera
// address checksum: exactly five lowercase letters.
func validAddressChecksum(suffix string) bool {
	if len(suffix) != 5 {
		return false
	}
	for _, character := range suffix {
		if character < 'a' || character > 'z' {
			return false
		}
	}
	return true
}

// NormalizeHolderID returns a normalized item holder identifier: a Hedera
// entity ID, or a 20-byte 0x EVM address lowered to canonical hex. EVM
// holders are tracked verbatim; they never match a transaction payer.
func NormalizeHolderID(identifier string) (string, error) {
	trimmed := strings.TrimSpace(identifier)
	if shared.IsEVMAddress(trimmed) {
		return shared.NormalizeEVMAddress(trimmed)
	}
	return NormalizeAccountID(identifier)
}

// FormatSerial renders a serial for the wire format.
func FormatSerial(serial int64) string {
	return strconv.FormatInt(serial, 10)
}

// ParseSerial parses and validates a wire-format serial.
func ParseSerial(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, NewInvalidSerialFormatError(value)
	}
	if len(trimmed) > MaxSerialLength {
		return 0, NewInvalidSerialFormatError(value)
	}
	if !serialRegex.MatchString(trimmed) {
		return 0, NewInvalidSerialFormatError(value)
	}

	serial, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, NewInvalidSerialFormatError(value)
	}
	if serial < FirstSerial {
		return 0, NewInvalidSerialFormatError(value)
	}

	return serial, nil
}

// ValidateSerialString validates a wire-format serial field.
func ValidateSerialString(value string) error {
	_, err := ParseSerial(value)
	return err
}

// ParseMaxSupply parses a wire-format max supply. Empty and "0" both mean
// the collection mints without a cap.
func ParseMaxSupply(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, nil
	}
	if len(trimmed) > MaxSerialLength || !serialRegex.MatchString(trimmed) {
		return 0, InvalidMessageFormatError{HCS721Error: HCS721Error{Message: fmt.Sprintf("max must be a base-10 integer with at most %d digits", MaxSerialLength)}}
	}

	maxSupply, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, InvalidMessageFormatError{HCS721Error: HCS721Error{Message: fmt.Sprintf("max must be a base-10 integer with at most %d digits", MaxSerialLength)}}
	}

	return maxSupply, nil
}

// ValidateTokenURI validates a token metadata URI field.
func ValidateTokenURI(tokenURI string) error {
	trimmed := strings.TrimSpace(tokenURI)
	if trimmed == "" {
		return NewInvalidTokenURIError(tokenURI)
	}
	if len(trimmed) > MaxTokenURILength {
		return NewInvalidTokenURIError(tokenURI)
	}
	return nil
}

// NormalizeMessage trims and case-folds message fields so validation and
// serialization see canonical values.
func NormalizeMessage(message Message) (Message, error) {
	normalized := message
	normalized.Protocol = strings.ToLower(strings.TrimSpace(message.Protocol))
	normalized.Operation = strings.ToLower(strings.TrimSpace(message.Operation))
	normalized.Name = strings.TrimSpace(message.Name)
	normalized.Symbol = NormalizeSymbol(message.Symbol)
	normalized.MaxSupply = strings.TrimSpace(message.MaxSupply)
	normalized.BaseURI = strings.TrimSpace(message.BaseURI)
	normalized.Metadata = strings.TrimSpace(message.Metadata)
	normalized.Memo = strings.TrimSpace(message.Memo)
	normalized.Serial = strings.TrimSpace(message.Serial)
	normalized.TokenURI = strings.TrimSpace(message.TokenURI)

	for _, holder := range []*string{&normalized.To, &normalized.From, &normalized.Operator} {
		if *holder == "" {
			continue
		}
		holderID, err := NormalizeHolderID(*holder)
		if err != nil {
			return normalized, err
		}
		*holder = holderID
	}
	if normalized.TopicID != "" {
		topicID, err := NormalizeAccountID(normalized.TopicID)
		if err != nil {
			return normalized, err
		}
		normalized.TopicID = topicID
	}

	return normalized, nil
}

// ValidateMessage validates an HCS-721 message.
func ValidateMessage(message Message) error {
	normalized, err := NormalizeMessage(message)
	if err != nil {
		return err
	}

	if normalized.Protocol != ProtocolID {
		return InvalidMessageFormatError{HCS721Error: HCS721Error{Message: "p must be hcs-721"}}
	}

	if len(normalized.Memo) > MaxMemoLength {
		return InvalidMessageFormatError{HCS721Error: HCS721Error{Message: fmt.Sprintf("m must be <= %d characters", MaxMemoLength)}}
	}

	switch normalized.Operation {
	case OperationDeploy:
		return validateDeploy(normalized)
	case OperationMint:
		return validateMint(normalized)
	case OperationTransfer:
		return validateTransfer(normalized)
	case OperationApprove:
		return validateApprove(normalized)
	case OperationApproveAll:
		return validateApproveAll(normalized)
	case OperationBurn:
		return validateBurn(normalized)
	case OperationUpdateURI:
		return validateUpdateURI(normalized)
	case OperationRegister:
		return validateRegister(normalized)
	default:
		return InvalidMessageFormatError{HCS721Error: HCS721Error{Message: "op must be one of deploy|mint|transfer|approve|approve_all|burn|update_uri|register"}}
	}
}

func validateDeploy(message Message) error {
	if message.Name == "" || len(message.Name) > MaxNameLength {
		return InvalidMessageFormatError{HCS721Error: HCS721Error{Message: fmt.Sprintf("name is required and must be <= %d characters", MaxNameLength)}}
	}
	if message.Symbol == "" || len(message.Symbol) > MaxSymbolLength {
		return InvalidMessageFormatError{HCS721Error: HCS721Error{Message: fmt.Sprintf("sym is required and must be <= %d characters", MaxSymbolLength)}}
	}
	if !symbolRegex.MatchString(message.Symbol) {
		return InvalidMessageFormatError{HCS721Error: HCS721Error{Message: "sym must contain only letters and digits"}}
	}
	if _, err := ParseMaxSupply(message.MaxSupply); err != nil {
		return err
	}
	if len(message.BaseURI) > MaxTokenURILength {
		return NewInvalidTokenURIError(message.BaseURI)
	}
	if len(message.Metadata) > MaxMetadataLength {
		return InvalidMessageFormatError{HCS721Error: HCS721Error{Message: fmt.Sprintf("metadata must be <= %d characters", MaxMetadataLength)}}
	}
	return nil
}

func validateMint(message Message) error {
	if message.To == "" {
		return NewInvalidAccountFormatError(message.To)
	}
	// uri may be empty; the state machine derives one from the collection's
	// base_uri when set, and otherwise mints the item with an empty URI.
	if message.TokenURI != "" {
		if err := ValidateTokenURI(message.TokenURI); err != nil {
			return err
		}
	}
	if message.Serial != "" {
		return InvalidMessageFormatError{HCS721Error: HCS721Error{Message: "sn must not be set on mint; serials are assigned in consensus order"}}
	}
	return nil
}

func validateTransfer(message Message) error {
	if err := ValidateSerialString(message.Serial); err != nil {
		return err
	}
	if message.From == "" {
		return NewInvalidAccountFormatError(message.From)
	}
	if message.To == "" {
		return NewInvalidAccountFormatError(message.To)
	}
	return nil
}

func validateApprove(message Message) error {
	return ValidateSerialString(message.Serial)
}

func validateApproveAll(message Message) error {
	if message.From == "" {
		return NewInvalidAccountFormatError(message.From)
	}
	if message.Operator == "" {
		return NewInvalidAccountFormatError(message.Operator)
	}
	if message.Operator == message.From {
		return InvalidMessageFormatError{HCS721Error: HCS721Error{Message: "operator must differ from from"}}
	}
	if message.Approved == nil {
		return InvalidMessageFormatError{HCS721Error: HCS721Error{Message: "approved is required for approve_all"}}
	}
	return nil
}

func validateBurn(message Message) error {
	if err := ValidateSerialString(message.Serial); err != nil {
		return err
	}
	if message.From == "" {
		return NewInvalidAccountFormatError(message.From)
	}
	return nil
}

func validateUpdateURI(message Message) error {
	if err := ValidateSerialString(message.Serial); err != nil {
		return err
	}
	return ValidateTokenURI(message.TokenURI)
}

func validateRegister(message Message) error {
	if message.Name == "" || len(message.Name) > MaxNameLength {
		return InvalidMessageFormatError{HCS721Error: HCS721Error{Message: fmt.Sprintf("name is required and must be <= %d characters", MaxNameLength)}}
	}
	if len(message.Metadata) > MaxMetadataLength {
		return InvalidMessageFormatError{HCS721Error: HCS721Error{Message: fmt.Sprintf("metadata must be <= %d characters", MaxMetadataLength)}}
	}
	if message.Private == nil {
		return InvalidMessageFormatError{HCS721Error: HCS721Error{Message: "private is required for register"}}
	}
	if message.TopicID == "" {
		return NewInvalidAccountFormatError(message.TopicID)
	}
	return nil
}

func normalizeAndValidate(message Message) (Message, error) {
	normalized, err := NormalizeMessage(message)
	if err != nil {
		return Message{}, err
	}
	if err := ValidateMessage(normalized); err != nil {
		return Message{}, err
	}
	return normalized, nil
}

// ParseMessageBytes decodes and validates an HCS-721 message payload.
func ParseMessageBytes(payload []byte) (Message, error) {
	var message Message
	if err := json.Unmarshal(payload, &message); err != nil {
		return Message{}, fmt.Errorf("failed to decode HCS-721 message: %w", err)
	}
	return normalizeAndValidate(message)
}

// BuildMessagePayload validates and serializes an HCS-721 message, returning
// the wire payload together with its normalized form.
func BuildMessagePayload(message Message) ([]byte, Message, error) {
	normalized, err := normalizeAndValidate(message)
	if err != nil {
		return nil, Message{}, err
	}

	payload, err := json.Marshal(normalized)
	if err != nil {
		return nil, Message{}, fmt.Errorf("failed to marshal HCS-721 message: %w", err)
	}
	return payload, normalized, nil
}
