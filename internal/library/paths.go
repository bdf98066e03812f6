package library

import (
	"strings"

	"golang.org/x/text/cases"
)

// PathPrefix is the root every stored volume path starts with. The reader UI
// serves the library under /manga and reports page locations relative to it.
const PathPrefix = "./manga"

// NormalizePath turns a volume path into its comparison key: backslashes become
// forward slashes, leading "." and "/" characters are dropped and the result is
// case folded. Stored and incoming paths must both go through it before comparing.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	p = strings.TrimLeft(p, "./")
	return cases.Fold().String(p)
}

// SamePath reports whether two volume paths refer to the same catalog entry.
func SamePath(a, b string) bool {
	return NormalizePath(a) == NormalizePath(b)
}

// VolumePath builds the stored path for an HTML reader page of a series.
func VolumePath(series, fileName string) string {
	p := PathPrefix + "/" + series + "/" + fileName
	return strings.ReplaceAll(p, `\`, "/")
}
