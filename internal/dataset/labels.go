package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

var (
	// DataLoadErr flags unreadable or malformed dataset files.
	DataLoadErr = errors.New("could not load dataset")
)

// Labels holds the ground truth for the labelled subset of the graph.
// Index carries the node ids in ascending order,
// Single and Sets are aligned with Index.
type Labels struct {
	Index   []int
	Single  []int
	Sets    [][]int
	Classes int
}

// Size returns the number of labelled nodes.
func (l Labels) Size() int {
	return len(l.Index)
}

// LoadLabels reads the single-label ground truth from the data directory.
// Each line holds a node id and exactly one class id.
func LoadLabels(dir string) (Labels, error) {
	rows, err := readLabelFile(LabelPath(dir))
	if err != nil {
		return Labels{}, err
	}

	labels := Labels{
		Index:  make([]int, len(rows)),
		Single: make([]int, len(rows)),
	}
	classes := make(map[int]struct{})
	for i, row := range rows {
		if len(row.labels) != 1 {
			return Labels{}, fmt.Errorf("node %d carries %d labels instead of one: %w",
				row.node, len(row.labels), DataLoadErr)
		}
		labels.Index[i] = row.node
		labels.Single[i] = row.labels[0]
		classes[row.labels[0]] = struct{}{}
	}
	labels.Classes = len(classes)

	log.Debug().
		Str("dir", dir).
		Int("nodes", labels.Size()).
		Int("classes", labels.Classes).
		Msg("loaded labels")

	return labels, nil
}

// LoadMultiLabels reads the multi-label ground truth from the data directory.
// Each line holds a node id and one or more class ids.
func LoadMultiLabels(dir string) (Labels, error) {
	rows, err := readLabelFile(LabelPath(dir))
	if err != nil {
		return Labels{}, err
	}

	labels := Labels{
		Index: make([]int, len(rows)),
		Sets:  make([][]int, len(rows)),
	}
	classes := make(map[int]struct{})
	for i, row := range rows {
		labels.Index[i] = row.node
		labels.Sets[i] = row.labels
		for _, l := range row.labels {
			classes[l] = struct{}{}
		}
	}
	labels.Classes = len(classes)

	log.Debug().
		Str("dir", dir).
		Int("nodes", labels.Size()).
		Int("classes", labels.Classes).
		Msg("loaded multi-labels")

	return labels, nil
}

type labelRow struct {
	node   int
	labels []int
}

func readLabelFile(path string) ([]labelRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not read labels '%s' %s: %w", path, err.Error(), DataLoadErr)
	}
	defer f.Close()

	seen := make(map[int]struct{})
	rows := make([]labelRow, 0)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.FieldsFunc(line, func(r rune) bool {
			return r == ' ' || r == '\t' || r == ','
		})
		if len(fields) < 2 {
			return nil, fmt.Errorf("malformed label line '%s': %w", line, DataLoadErr)
		}
		node, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("bad node id in line '%s': %w", line, DataLoadErr)
		}
		if _, ok := seen[node]; ok {
			return nil, fmt.Errorf("duplicate node id %d: %w", node, DataLoadErr)
		}
		seen[node] = struct{}{}
		ll := make([]int, 0, len(fields)-1)
		for _, field := range fields[1:] {
			l, err := strconv.Atoi(field)
			if err != nil {
				return nil, fmt.Errorf("bad label in line '%s': %w", line, DataLoadErr)
			}
			ll = append(ll, l)
		}
		rows = append(rows, labelRow{node: node, labels: ll})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not scan labels '%s': %w", path, DataLoadErr)
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].node < rows[j].node
	})

	return rows, nil
}
