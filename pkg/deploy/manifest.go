package deploy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashgraph-online/hcs721-go/pkg/hcs721"
	"github.com/hashgraph-online/hcs721-go/pkg/shared"
	"gopkg.in/yaml.v3"
)

// SupportedStandardRevision is the HCS-721 protocol revision this runner
// implements. Manifests pinning a different revision are rejected before
// any network work starts.
const SupportedStandardRevision = "1"

type Manifest struct {
	// Network selects where the run executes: mainnet, testnet, or local.
	Network string `yaml:"network"`

	// StandardRevision pins the protocol revision the run targets.
	StandardRevision string `yaml:"standardRevision"`

	Collection CollectionManifest `yaml:"collection"`
	Registry   RegistryManifest   `yaml:"registry"`
	Premint    []PremintItem      `yaml:"premint"`
	Localnet   LocalnetManifest   `yaml:"localnet"`
	Log        LogManifest        `yaml:"log"`
}

type CollectionManifest struct {
	Name     string `yaml:"name"`
	Symbol   string `yaml:"symbol"`
	Metadata string `yaml:"metadata"`
	Memo     string `yaml:"memo"`
	Private  bool   `yaml:"private"`
	TTL      int64  `yaml:"ttl"`

	// MaxSupply caps how many items may be live at once. Zero deploys an
	// uncapped collection.
	MaxSupply int64 `yaml:"maxSupply"`

	// BaseURI lets premint items omit their uri; the collection derives
	// one per serial.
	BaseURI string `yaml:"baseUri"`
}

type RegistryManifest struct {
	// Enabled announces the collection on a registry topic after deploy.
	Enabled bool `yaml:"enabled"`

	// Create provisions a fresh registry topic before announcing. When
	// false, TopicID names an existing registry.
	Create  bool   `yaml:"create"`
	TopicID string `yaml:"topicId"`
	TTL     int64  `yaml:"ttl"`
}

type PremintItem struct {
	// To is the recipient account. Empty mints to the operator.
	To   string `yaml:"to"`
	URI  string `yaml:"uri"`
	Memo string `yaml:"memo"`
}

type LocalnetManifest struct {
	// MirrorAddr is the listen address of the embedded mirror server for
	// local runs. ":0" style addresses pick a free port.
	MirrorAddr string `yaml:"mirrorAddr"`
}

type LogManifest struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// LoadManifest reads a YAML manifest, applies defaults, and validates it.
func LoadManifest(path string) (Manifest, error) {
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(content, &manifest); err != nil {
		return Manifest{}, fmt.Errorf("failed to parse manifest: %w", err)
	}

	manifest.applyDefaults()
	if err := manifest.Validate(); err != nil {
		return Manifest{}, err
	}

	return manifest, nil
}

func (manifest *Manifest) applyDefaults() {
	if strings.TrimSpace(manifest.Network) == "" {
		manifest.Network = shared.NetworkTestnet
	}
	if strings.TrimSpace(manifest.StandardRevision) == "" {
		manifest.StandardRevision = SupportedStandardRevision
	}
	if manifest.Collection.TTL <= 0 {
		manifest.Collection.TTL = hcs721.DefaultTopicTTL
	}
	if manifest.Registry.TTL <= 0 {
		manifest.Registry.TTL = hcs721.DefaultTopicTTL
	}
	if strings.TrimSpace(manifest.Localnet.MirrorAddr) == "" {
		manifest.Localnet.MirrorAddr = "127.0.0.1:0"
	}
	if strings.TrimSpace(manifest.Log.Level) == "" {
		manifest.Log.Level = "info"
	}
	if strings.TrimSpace(manifest.Log.Format) == "" {
		manifest.Log.Format = "text"
	}
}

// Validate reports the first problem that would abort a run.
func (manifest *Manifest) Validate() error {
	normalizedNetwork, err := shared.NormalizeNetwork(manifest.Network)
	if err != nil {
		return err
	}
	manifest.Network = normalizedNetwork

	if manifest.StandardRevision != SupportedStandardRevision {
		return fmt.Errorf(
			"unsupported standardRevision %q: this toolchain implements revision %s",
			manifest.StandardRevision, SupportedStandardRevision,
		)
	}

	if strings.TrimSpace(manifest.Collection.Name) == "" {
		return fmt.Errorf("collection.name is required")
	}
	if strings.TrimSpace(manifest.Collection.Symbol) == "" {
		return fmt.Errorf("collection.symbol is required")
	}
	if manifest.Collection.MaxSupply < 0 {
		return fmt.Errorf("collection.maxSupply must not be negative, got %d", manifest.Collection.MaxSupply)
	}
	if manifest.Collection.MaxSupply > 0 && int64(len(manifest.Premint)) > manifest.Collection.MaxSupply {
		return fmt.Errorf(
			"premint lists %d items but collection.maxSupply is %d",
			len(manifest.Premint), manifest.Collection.MaxSupply,
		)
	}

	if manifest.Registry.Enabled && !manifest.Registry.Create &&
		strings.TrimSpace(manifest.Registry.TopicID) == "" {
		return fmt.Errorf("registry.topicId is required when registry.create is false")
	}

	for index, item := range manifest.Premint {
		if strings.TrimSpace(item.URI) == "" && strings.TrimSpace(manifest.Collection.BaseURI) == "" {
			return fmt.Errorf("premint[%d].uri is required when collection.baseUri is unset", index)
		}
	}

	format := strings.ToLower(strings.TrimSpace(manifest.Log.Format))
	if format != "text" && format != "json" {
		return fmt.Errorf("log.format must be text or json, got %q", manifest.Log.Format)
	}
	manifest.Log.Format = format

	return nil
}
