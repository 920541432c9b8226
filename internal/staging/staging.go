package staging

import (
	"fmt"
	"path/filepath"
)

// JobDir returns the per-job staging directory. Paths are unique by job id so
// concurrent stages never share files.
func JobDir(stagingDir string, jobID int64) string {
	return filepath.Join(stagingDir, fmt.Sprintf("job-%d", jobID))
}
