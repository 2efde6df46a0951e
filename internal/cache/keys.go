package cache

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/quantmind-br/assets-manifest-go/internal/utils"
)

// PrefixManifest namespaces the digests of written manifests
const PrefixManifest = "manifest"

// GenerateKey generates a cache key as the SHA256 hash of key
func GenerateKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])
}

// ManifestKey returns the key under which the digest of the manifest at
// path is stored. Equivalent spellings of one path share a key.
func ManifestKey(path string) string {
	return PrefixManifest + ":" + utils.AbsPath(path)
}

// Digest returns the hex SHA256 of content
func Digest(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}
