package hcs721

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/bits"
	"slices"
	"strings"
)

// StateProof is an RFC-6962-style inclusion proof binding one item to a
// collection state root. Auditors can check it without replaying the topic.
type StateProof struct {
	TopicID     string   `json:"topicId"`
	Serial      int64    `json:"serial"`
	LeafIndex   uint64   `json:"leafIndex"`
	TreeSize    uint64   `json:"treeSize"`
	LeafHashHex string   `json:"leafHash"`
	Path        []string `json:"path"`
	RootBase64  string   `json:"root"`
}

type stateLeaf struct {
	Approved string `json:"approved"`
	Owner    string `json:"owner"`
	Serial   int64  `json:"serial"`
	TokenURI string `json:"uri"`
}

// Domain separation prefixes from RFC 6962.
const (
	leafHashPrefix = 0x00
	nodeHashPrefix = 0x01
)

// EmptyRoot is the root of a tree with no leaves: SHA-256 of the empty
// string.
func EmptyRoot() []byte {
	return sha256.New().Sum(nil)
}

// HashLeaf hashes one canonical item entry under the leaf prefix.
func HashLeaf(canonicalEntry []byte) []byte {
	hasher := sha256.New()
	hasher.Write([]byte{leafHashPrefix})
	hasher.Write(canonicalEntry)
	return hasher.Sum(nil)
}

// HashNode combines two subtree hashes under the node prefix.
func HashNode(left, right []byte) []byte {
	hasher := sha256.New()
	hasher.Write([]byte{nodeHashPrefix})
	hasher.Write(left)
	hasher.Write(right)
	return hasher.Sum(nil)
}

// CanonicalItemEntry renders the hashed view of one item. Field order is
// fixed so equal states always hash to equal leaves.
func CanonicalItemEntry(item ItemInfo) ([]byte, error) {
	entry := stateLeaf{
		Approved: item.Approved,
		Owner:    item.Owner,
		Serial:   item.Serial,
		TokenURI: item.TokenURI,
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize item %d: %w", item.Serial, err)
	}
	return payload, nil
}

// CollectionStateRoot computes the Merkle root over a collection's live
// items ordered by serial. An empty collection hashes to EmptyRoot.
func CollectionStateRoot(items map[int64]ItemInfo) ([]byte, error) {
	leafHashes, err := stateLeafHashes(items)
	if err != nil {
		return nil, err
	}
	return merkleRootFromLeafHashes(leafHashes), nil
}

// CollectionStateRootBase64 returns the requested value.
func CollectionStateRootBase64(items map[int64]ItemInfo) (string, error) {
	root, err := CollectionStateRoot(items)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(root), nil
}

// BuildItemProof builds an inclusion proof for one serial against the
// collection state root.
func BuildItemProof(topicID string, items map[int64]ItemInfo, serial int64) (StateProof, error) {
	serials := sortedSerials(items)

	leafIndex := -1
	for index, candidate := range serials {
		if candidate == serial {
			leafIndex = index
			break
		}
	}
	if leafIndex < 0 {
		return StateProof{}, NewItemNotFoundError(topicID, serial)
	}

	leafHashes, err := stateLeafHashes(items)
	if err != nil {
		return StateProof{}, err
	}

	path := inclusionPath(leafHashes, leafIndex)
	encodedPath := make([]string, 0, len(path))
	for _, node := range path {
		encodedPath = append(encodedPath, base64.StdEncoding.EncodeToString(node))
	}

	return StateProof{
		TopicID:     topicID,
		Serial:      serial,
		LeafIndex:   uint64(leafIndex),
		TreeSize:    uint64(len(leafHashes)),
		LeafHashHex: hex.EncodeToString(leafHashes[leafIndex]),
		Path:        encodedPath,
		RootBase64:  base64.StdEncoding.EncodeToString(merkleRootFromLeafHashes(leafHashes)),
	}, nil
}

// VerifyItemProof checks an inclusion proof against an expected root.
func VerifyItemProof(proof StateProof, expectedRootB64 string) (bool, error) {
	if proof.TreeSize == 0 {
		return false, fmt.Errorf("treeSize must be greater than zero for inclusion proofs")
	}
	if proof.LeafIndex >= proof.TreeSize {
		return false, fmt.Errorf("leafIndex must be less than treeSize")
	}

	leafHash, err := hex.DecodeString(strings.TrimSpace(proof.LeafHashHex))
	if err != nil {
		return false, fmt.Errorf("leafHash must be valid hex: %w", err)
	}

	fn := proof.LeafIndex
	sn := proof.TreeSize - 1
	current := leafHash

	for _, node := range proof.Path {
		if sn == 0 {
			return false, nil
		}

		sibling, err := base64.StdEncoding.DecodeString(node)
		if err != nil {
			return false, fmt.Errorf("path element must be valid base64: %w", err)
		}

		if fn&1 == 1 || fn == sn {
			current = HashNode(sibling, current)
			for fn&1 == 0 && fn != 0 {
				fn >>= 1
				sn >>= 1
			}
		} else {
			current = HashNode(current, sibling)
		}

		fn >>= 1
		sn >>= 1
	}

	if sn != 0 {
		return false, nil
	}
	return base64.StdEncoding.EncodeToString(current) == expectedRootB64, nil
}

// CollectionStateRoot returns the base64 state root of an indexed
// collection's live items.
func (indexer *CollectionIndexer) CollectionStateRoot(topicID string) (string, error) {
	normalizedTopicID, err := NormalizeAccountID(topicID)
	if err != nil {
		return "", err
	}

	indexer.mutex.RLock()
	topicItems, exists := indexer.state.Items[normalizedTopicID]
	clone := make(map[int64]ItemInfo, len(topicItems))
	for serial, item := range topicItems {
		clone[serial] = item
	}
	indexer.mutex.RUnlock()

	if !exists {
		if _, collectionExists := indexer.GetCollectionInfo(normalizedTopicID); !collectionExists {
			return "", NewCollectionNotFoundError(topicID)
		}
	}

	return CollectionStateRootBase64(clone)
}

// ProveItem builds an inclusion proof for an indexed item.
func (indexer *CollectionIndexer) ProveItem(topicID string, serial int64) (StateProof, error) {
	normalizedTopicID, err := NormalizeAccountID(topicID)
	if err != nil {
		return StateProof{}, err
	}

	indexer.mutex.RLock()
	topicItems := indexer.state.Items[normalizedTopicID]
	clone := make(map[int64]ItemInfo, len(topicItems))
	for itemSerial, item := range topicItems {
		clone[itemSerial] = item
	}
	indexer.mutex.RUnlock()

	return BuildItemProof(normalizedTopicID, clone, serial)
}

func stateLeafHashes(items map[int64]ItemInfo) ([][]byte, error) {
	serials := sortedSerials(items)

	leafHashes := make([][]byte, 0, len(serials))
	for _, serial := range serials {
		canonical, err := CanonicalItemEntry(items[serial])
		if err != nil {
			return nil, err
		}
		leafHashes = append(leafHashes, HashLeaf(canonical))
	}

	return leafHashes, nil
}

func sortedSerials(items map[int64]ItemInfo) []int64 {
	serials := make([]int64, 0, len(items))
	for serial := range items {
		serials = append(serials, serial)
	}
	slices.Sort(serials)
	return serials
}

func merkleRootFromLeafHashes(leafHashes [][]byte) []byte {
	switch len(leafHashes) {
	case 0:
		return EmptyRoot()
	case 1:
		return leafHashes[0]
	default:
		split := largestPowerOfTwoLessThan(uint64(len(leafHashes)))
		left := merkleRootFromLeafHashes(leafHashes[:split])
		right := merkleRootFromLeafHashes(leafHashes[split:])
		return HashNode(left, right)
	}
}

func inclusionPath(leafHashes [][]byte, index int) [][]byte {
	if len(leafHashes) <= 1 {
		return nil
	}

	split := largestPowerOfTwoLessThan(uint64(len(leafHashes)))
	if index < split {
		path := inclusionPath(leafHashes[:split], index)
		return append(path, merkleRootFromLeafHashes(leafHashes[split:]))
	}

	path := inclusionPath(leafHashes[split:], index-split)
	return append(path, merkleRootFromLeafHashes(leafHashes[:split]))
}

// largestPowerOfTwoLessThan is the RFC 6962 split point: the widest
// power-of-two left subtree strictly smaller than the leaf count.
func largestPowerOfTwoLessThan(value uint64) int {
	if value <= 1 {
		return 0
	}
	return 1 << (bits.Len64(value-1) - 1)
}
