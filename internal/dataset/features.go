package dataset

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// WriteFeatureFile renders the rows of x with their class labels as a csv
// feature file, one row per sample with the class in the last column.
// Class ids become strings so that downstream parsers treat them as categories.
func WriteFeatureFile(parentPath string, name string, x *mat.Dense, y []int) (string, error) {
	n, d := x.Dims()
	if n != len(y) {
		return "", fmt.Errorf("inconsistent feature rows %d vs labels %d: %w", n, len(y), DataLoadErr)
	}

	fn, err := MakePath(parentPath, fmt.Sprintf("%s.csv", name))
	if err != nil {
		return "", err
	}
	file, err := os.OpenFile(fn, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0755)
	if err != nil {
		return "", fmt.Errorf("could not open file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	defer writer.Flush()

	for i := 0; i < n; i++ {
		lw := new(strings.Builder)
		for j := 0; j < d; j++ {
			lw.WriteString(fmt.Sprintf("%f,", x.At(i, j)))
		}
		lw.WriteString(fmt.Sprintf("c%d", y[i]))
		_, _ = writer.WriteString(lw.String() + "\n")
	}

	return fn, nil
}
