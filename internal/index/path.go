package index

import (
	"path/filepath"
	"regexp"
	"strings"
)

var driveLetter = regexp.MustCompile(`^[A-Za-z]:`)

// Normalize implements spec §4.9's path normalization rule: forward
// slash, lowercase drive letter, project-root-relative. ok is false when
// absPath cannot be resolved relative to projectRoot (escapes it via
// "../"), in which case the caller must skip the file with a warning and
// never treat it as orphaned.
func Normalize(projectRoot, absPath string) (rel string, ok bool) {
	rel, err := filepath.Rel(projectRoot, absPath)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	if driveLetter.MatchString(rel) {
		rel = strings.ToLower(rel[:1]) + rel[1:]
	}
	return rel, true
}
