package edit

import (
	"github.com/pmezard/go-difflib/difflib"
)

// UnifiedDiff renders the difference between the original and edited
// document as a unified diff, for dry-run previews.
func UnifiedDiff(path, before, after string) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: path,
		ToFile:   path,
		Context:  3,
	})
}
