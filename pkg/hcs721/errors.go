package hcs721

import "fmt"

type HCS721Error struct {
	Message string
}

func (errorValue HCS721Error) Error() string {
	return errorValue.Message
}

type CollectionDeploymentError struct {
	HCS721Error
	Name    string
	TopicID string
}

type ItemMintError struct {
	HCS721Error
	TopicID string
	To      string
}

type ItemTransferError struct {
	HCS721Error
	TopicID string
	Serial  int64
	From    string
	To      string
}

type ItemApprovalError struct {
	HCS721Error
	TopicID  string
	Serial   int64
	Operator string
}

type ItemBurnError struct {
	HCS721Error
	TopicID string
	Serial  int64
	From    string
}

type ItemURIUpdateError struct {
	HCS721Error
	TopicID string
	Serial  int64
}

type ItemNotFoundError struct {
	HCS721Error
	TopicID string
	Serial  int64
}

func NewItemNotFoundError(topicID string, serial int64) error {
	return ItemNotFoundError{
		HCS721Error: HCS721Error{Message: fmt.Sprintf("item %d not found in collection %s", serial, topicID)},
		TopicID:     topicID,
		Serial:      serial,
	}
}

type CollectionNotFoundError struct {
	HCS721Error
	TopicID string
}

func NewCollectionNotFoundError(topicID string) error {
	return CollectionNotFoundError{
		HCS721Error: HCS721Error{Message: fmt.Sprintf("collection with topic %s not found", topicID)},
		TopicID:     topicID,
	}
}

type TopicRegistrationError struct {
	HCS721Error
	TopicID string
}

type InvalidMessageFormatError struct {
	HCS721Error
}

type InvalidAccountFormatError struct {
	HCS721Error
	Account string
}

func NewInvalidAccountFormatError(account string) error {
	return InvalidAccountFormatError{
		HCS721Error: HCS721Error{Message: fmt.Sprintf("invalid Hedera account format: %s", account)},
		Account:     account,
	}
}

type InvalidSerialFormatError struct {
	HCS721Error
	Serial string
}

func NewInvalidSerialFormatError(serial string) error {
	return InvalidSerialFormatError{
		HCS721Error: HCS721Error{Message: fmt.Sprintf("invalid serial format: %s", serial)},
		Serial:      serial,
	}
}

type InvalidTokenURIError struct {
	HCS721Error
	TokenURI string
}

func NewInvalidTokenURIError(tokenURI string) error {
	return InvalidTokenURIError{
		HCS721Error: HCS721Error{Message: fmt.Sprintf("invalid token URI: %q", tokenURI)},
		TokenURI:    tokenURI,
	}
}
