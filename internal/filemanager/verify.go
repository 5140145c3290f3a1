package filemanager

import (
	billy "github.com/go-git/go-billy/v5"

	"github.com/company/ai-scaffold/internal/plan"
)

// VerifyResult contains the results of comparing a tree with its plan.
type VerifyResult struct {
	OK bool
	// Missing paths are planned but absent.
	Missing []string
	// Unexpected paths exist but are not planned: orphans a prune left
	// behind, or files added by hand.
	Unexpected []string
	// Modified files differ from the content recorded at generation.
	Modified []string
}

// VerifyTree compares the tree in fs with the expected tree. When hashes is
// non-empty, files recorded in it are also checked for modification.
func VerifyTree(fs billy.Filesystem, expected *plan.Tree, hashes map[string]string) (*VerifyResult, error) {
	files, dirs, err := walkTree(fs)
	if err != nil {
		return nil, err
	}

	actual := plan.NewTree()
	for _, d := range dirs {
		actual.AddDir(d)
	}
	for _, f := range files {
		actual.AddFile(f)
	}

	result := &VerifyResult{}
	result.Missing, result.Unexpected = plan.Diff(expected, actual)

	for _, f := range files {
		want, ok := hashes[f]
		if !ok || !expected.Has(f) {
			continue
		}
		got, err := HashFile(fs, f)
		if err != nil || got != want {
			result.Modified = append(result.Modified, f)
		}
	}

	result.OK = len(result.Missing) == 0 && len(result.Unexpected) == 0 && len(result.Modified) == 0
	return result, nil
}
