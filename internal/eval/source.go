package eval

import (
	"fmt"

	"github.com/drakos74/free-embed/internal/dataset"
	"gonum.org/v1/gonum/mat"
)

// Source resolves a trained model into its embedding matrix.
type Source interface {
	Embedding() (*mat.Dense, error)
}

// FileSource loads the embedding from a word2vec formatted file.
type FileSource struct {
	Path string
}

func (s FileSource) Embedding() (*mat.Dense, error) {
	return dataset.Embedding(s.Path)
}

// MatrixSource serves an in-memory embedding.
type MatrixSource struct {
	Matrix *mat.Dense
}

func (s MatrixSource) Embedding() (*mat.Dense, error) {
	if s.Matrix == nil {
		return nil, fmt.Errorf("no embedding matrix given")
	}
	return s.Matrix, nil
}
