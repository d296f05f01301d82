package dataset

import (
	"fmt"
	"os"
	"path/filepath"
)

// Name returns the dataset name for a data directory.
func Name(dir string) string {
	return filepath.Base(filepath.Clean(dir))
}

// LabelPath locates the ground truth file inside the data directory.
func LabelPath(dir string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_labels.txt", Name(dir)))
}

// ArtifactPath locates the embedding artifact trained for the given training ratio.
func ArtifactPath(dataDir, outDir string, tr float64) string {
	return filepath.Join(outDir, fmt.Sprintf("%s_label_%g.emb", Name(dataDir), tr))
}

// MakePath ensures the parent directory exists and returns the full file path.
func MakePath(parentDir string, fileName string) (string, error) {
	if _, err := os.Stat(parentDir); os.IsNotExist(err) {
		err := os.MkdirAll(parentDir, 0700)
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(parentDir, fileName), nil
}
