package dataset

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
)

// Embedding loads a word2vec formatted embedding file into a dense matrix.
// The first line holds the node count and the dimension,
// each following line holds a node id and its vector.
// Rows may appear in any order, the returned matrix is indexed by node id.
func Embedding(path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not read embedding '%s' %s: %w", path, err.Error(), DataLoadErr)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	if !scanner.Scan() {
		return nil, fmt.Errorf("empty embedding file '%s': %w", path, DataLoadErr)
	}
	header := strings.Fields(scanner.Text())
	if len(header) != 2 {
		return nil, fmt.Errorf("malformed embedding header '%s': %w", scanner.Text(), DataLoadErr)
	}
	n, err := strconv.Atoi(header[0])
	if err != nil {
		return nil, fmt.Errorf("bad node count '%s': %w", header[0], DataLoadErr)
	}
	d, err := strconv.Atoi(header[1])
	if err != nil {
		return nil, fmt.Errorf("bad dimension '%s': %w", header[1], DataLoadErr)
	}
	if n <= 0 || d <= 0 {
		return nil, fmt.Errorf("invalid embedding size %dx%d: %w", n, d, DataLoadErr)
	}

	embedding := mat.NewDense(n, d, nil)
	seen := make(map[int]struct{}, n)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != d+1 {
			return nil, fmt.Errorf("embedding row has %d values instead of %d: %w",
				len(fields)-1, d, DataLoadErr)
		}
		id, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("bad node id '%s': %w", fields[0], DataLoadErr)
		}
		if id < 0 || id >= n {
			return nil, fmt.Errorf("node id %d outside of [0,%d): %w", id, n, DataLoadErr)
		}
		if _, ok := seen[id]; ok {
			return nil, fmt.Errorf("duplicate embedding row for node %d: %w", id, DataLoadErr)
		}
		seen[id] = struct{}{}
		for j, field := range fields[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("bad embedding value '%s': %w", field, DataLoadErr)
			}
			embedding.Set(id, j, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not scan embedding '%s': %w", path, DataLoadErr)
	}
	if len(seen) != n {
		return nil, fmt.Errorf("embedding has %d rows instead of %d: %w", len(seen), n, DataLoadErr)
	}

	log.Debug().
		Str("path", path).
		Int("nodes", n).
		Int("dim", d).
		Msg("loaded embedding")

	return embedding, nil
}
