package filemanager

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/company/ai-scaffold/internal/answers"
)

// HashBytes computes the SHA256 hash of a byte slice.
func HashBytes(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("sha256:%x", h)
}

// HashFile computes the SHA256 hash of a file.
func HashFile(fs billy.Basic, p string) (string, error) {
	f, err := fs.Open(p)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("sha256:%x", h.Sum(nil)), nil
}

// isBookkeeping reports whether p is the context side-file or a leftover
// temporary from an interrupted write. Neither is part of the generated tree.
func isBookkeeping(p string) bool {
	return p == answers.ContextFile || strings.HasSuffix(p, ".tmp")
}

// isTooling reports whether dir belongs to a tool rather than the project:
// .git, .venv, caches.
func isTooling(dir string) bool {
	base := path.Base(dir)
	return strings.HasPrefix(base, ".") || base == "__pycache__"
}

// walkTree lists every path below the root of fs, files and directories
// separately, skipping bookkeeping files and tooling directories.
func walkTree(fs billy.Filesystem) (files, dirs []string, err error) {
	err = util.Walk(fs, ".", func(p string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if p == "." || p == "" {
			return nil
		}
		p = strings.TrimPrefix(p, "./")
		if info.IsDir() {
			if isTooling(p) {
				return filepath.SkipDir
			}
			dirs = append(dirs, p)
			return nil
		}
		if !isBookkeeping(p) {
			files = append(files, p)
		}
		return nil
	})
	sort.Strings(files)
	sort.Strings(dirs)
	return files, dirs, err
}

// HashTree hashes every file of the tree, keyed by path.
func HashTree(fs billy.Filesystem) (map[string]string, error) {
	files, _, err := walkTree(fs)
	if err != nil {
		return nil, err
	}
	hashes := make(map[string]string, len(files))
	for _, f := range files {
		h, err := HashFile(fs, f)
		if err != nil {
			return nil, err
		}
		hashes[f] = h
	}
	return hashes, nil
}

// TreeDigest computes a deterministic SHA256 hash of the whole tree.
// Files are sorted by path and each file's path + content is hashed.
func TreeDigest(fs billy.Filesystem) (string, error) {
	files, _, err := walkTree(fs)
	if err != nil {
		return "", err
	}

	h := sha256.New()
	for _, f := range files {
		fmt.Fprintf(h, "file:%s\n", f)

		data, err := util.ReadFile(fs, f)
		if err != nil {
			return "", err
		}
		h.Write(data)
	}

	return fmt.Sprintf("sha256:%x", h.Sum(nil)), nil
}
