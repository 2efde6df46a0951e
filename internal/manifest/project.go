package manifest

import (
	"path"
	"strings"

	"github.com/quantmind-br/assets-manifest-go/internal/domain"
)

// DefaultExtensions are grouped when no extensions are configured explicitly
var DefaultExtensions = []string{"js", "css"}

// Options controls how chunks are projected into manifest nodes
type Options struct {
	// Extensions name the file groups of every node. Matching is a plain,
	// case-sensitive suffix test on the file name.
	Extensions []string
	// BasePath is joined in front of every retained file.
	BasePath string
}

// DefaultOptions returns options with the default extensions and no base path
func DefaultOptions() Options {
	return Options{
		Extensions: append([]string(nil), DefaultExtensions...),
	}
}

// Project builds the manifest chain for chunks already in dependency order.
// It returns nil when there are no chunks.
func Project(chunks []domain.Chunk, opts Options) *Node {
	if len(chunks) == 0 {
		return nil
	}

	extensions := uniqueExtensions(opts.Extensions)

	nodes := make([]Node, len(chunks))
	for i, c := range chunks {
		nodes[i] = Node{
			ID:     c.ID,
			Assets: groupFiles(c.Files, extensions, opts.BasePath),
		}
	}
	for i := 0; i < len(nodes)-1; i++ {
		nodes[i].Next = &nodes[i+1]
	}

	return &nodes[0]
}

// groupFiles returns one group per extension, in extension order. A nil
// result means no extensions were configured.
func groupFiles(files, extensions []string, basePath string) []Assets {
	if len(extensions) == 0 {
		return nil
	}

	groups := make([]Assets, len(extensions))
	for i, ext := range extensions {
		matched := make([]string, 0)
		for _, file := range files {
			if strings.HasSuffix(file, ext) {
				matched = append(matched, JoinPath(basePath, file))
			}
		}
		groups[i] = Assets{Extension: ext, Files: matched}
	}
	return groups
}

// uniqueExtensions drops repeated extensions, keeping the first occurrence
func uniqueExtensions(extensions []string) []string {
	if len(extensions) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(extensions))
	out := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		if seen[ext] {
			continue
		}
		seen[ext] = true
		out = append(out, ext)
	}
	return out
}

// JoinPath joins a base path and a file name with forward slashes, cleaning
// the result. An empty base returns the cleaned file name. The scheme and
// host prefix of a URL base ("https://cdn/", "//cdn/") is kept intact.
func JoinPath(base, file string) string {
	prefix := ""
	if i := strings.Index(base, "://"); i >= 0 {
		prefix, base = base[:i+3], base[i+3:]
	} else if strings.HasPrefix(base, "//") {
		prefix, base = "//", base[2:]
	}

	joined := path.Join(base, file)
	if prefix != "" {
		return prefix + strings.TrimPrefix(joined, "/")
	}
	return joined
}
