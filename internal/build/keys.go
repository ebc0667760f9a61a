// SPDX-License-Identifier: EPL-2.0

package build

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gantry-cli/internal/container"
	"gantry-cli/pkg/gantryfile"
)

// tagHashLen is the hex prefix length of the derived image tag.
const tagHashLen = 12

// DependencyKey returns the cache key covering every input of the
// dependency layer: base image, poetry pin/home/groups, and the raw
// manifest and lock bytes. Source changes never move this key.
func DependencyKey(gf *gantryfile.Gantryfile, manifest, lock []byte) string {
	h := sha256.New()
	h.Write([]byte("base:" + gf.BaseImage() + "\n"))
	h.Write([]byte("poetry:" + string(gf.PoetryVersion()) + "\n"))
	h.Write([]byte("home:" + gf.PoetryHome() + "\n"))
	h.Write([]byte("groups:" + strings.Join(gf.Groups(), ",") + "\n"))
	h.Write([]byte("manifest:\n"))
	h.Write(manifest)
	h.Write([]byte("lock:\n"))
	h.Write(lock)
	return hex.EncodeToString(h.Sum(nil))
}

// SourceKey hashes the filtered source tree: for each selected file, the
// slash-relative path plus a content hash, in sorted order. Metadata like
// modification times is deliberately excluded so a fresh checkout of
// identical content maps to the same key.
func SourceKey(root string, files []string) (string, error) {
	h := sha256.New()
	for _, rel := range files {
		fileHash, err := hashFile(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			return "", fmt.Errorf("failed to hash %s: %w", rel, err)
		}
		fmt.Fprintf(h, "%s:%s\n", rel, fileHash)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// DeriveTag returns the content-addressed image tag
// <repository>:<12-hex prefix> over both cache keys, the entrypoint, and
// the descriptor environment. An unchanged project derives an unchanged
// tag, which is what turns "image exists" into a cache hit.
func DeriveTag(gf *gantryfile.Gantryfile, depKey, srcKey string) container.ImageTag {
	h := sha256.New()
	h.Write([]byte("dep:" + depKey + "\n"))
	h.Write([]byte("src:" + srcKey + "\n"))
	h.Write([]byte("entrypoint:" + strings.Join(gf.EntrypointArgv(), "\x00") + "\n"))
	for _, v := range DescriptorEnv(gf) {
		h.Write([]byte("env:" + v.Name + "=" + v.Value + "\n"))
	}

	digest := hex.EncodeToString(h.Sum(nil))
	return container.ImageTag(fmt.Sprintf("%s:%s", gf.Repository(), digest[:tagHashLen]))
}

// hashFile returns the hex SHA-256 of a file's contents.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }() // Read-only file; close error non-critical

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
