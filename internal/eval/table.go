package eval

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/drakos74/free-embed/internal/buffer"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
)

// Row is the aggregated outcome for one group of splits.
type Row struct {
	Group   float64 `json:"group"`
	Splits  int     `json:"splits"`
	Metrics Metrics `json:"metrics"`
}

// Table holds the aggregated evaluation outcome,
// one row of metric means per group, sorted by group.
type Table struct {
	RunID   string `json:"run_id"`
	Dataset string `json:"dataset"`
	Scheme  Scheme `json:"scheme"`
	Rows    []Row  `json:"rows"`
}

// Row returns the aggregate for the given group.
func (t Table) Row(group float64) (Row, bool) {
	for _, row := range t.Rows {
		if row.Group == group {
			return row, true
		}
	}
	return Row{}, false
}

// Render writes the table in a human readable layout.
func (t Table) Render(w io.Writer) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader([]string{"tr", "accuracy", "f1micro", "f1macro", "auc", "splits"})
	for _, row := range t.Rows {
		tw.Append([]string{
			fmt.Sprintf("%g", row.Group),
			fmt.Sprintf("%.4f", row.Metrics.Accuracy),
			fmt.Sprintf("%.4f", row.Metrics.F1Micro),
			fmt.Sprintf("%.4f", row.Metrics.F1Macro),
			fmt.Sprintf("%.4f", row.Metrics.AUC),
			fmt.Sprintf("%d", row.Splits),
		})
	}
	tw.Render()
}

func (t Table) String() string {
	sb := new(strings.Builder)
	sb.WriteString(fmt.Sprintf("%s/%s [%s]\n", t.Dataset, t.Scheme, t.RunID))
	t.Render(sb)
	return sb.String()
}

// collector accumulates the metric rows of a single evaluation run,
// grouped by training ratio or repetition index.
type collector struct {
	order []float64
	rows  map[float64][]Metrics
}

func newCollector() *collector {
	return &collector{
		order: make([]float64, 0),
		rows:  make(map[float64][]Metrics),
	}
}

func (c *collector) add(group float64, m Metrics) {
	if _, ok := c.rows[group]; !ok {
		c.order = append(c.order, group)
	}
	c.rows[group] = append(c.rows[group], m)
}

// table aggregates the collected rows into their per group means.
func (c *collector) table(dataset string, scheme Scheme) *Table {
	groups := make([]float64, len(c.order))
	copy(groups, c.order)
	sort.Float64s(groups)

	rows := make([]Row, 0, len(groups))
	for _, group := range groups {
		stats := buffer.NewStatsCollector(4)
		for _, m := range c.rows[group] {
			stats.Push(m.Accuracy, m.F1Micro, m.F1Macro, m.AUC)
		}
		avgs := stats.Avgs()
		rows = append(rows, Row{
			Group:  group,
			Splits: stats.Size(),
			Metrics: Metrics{
				Accuracy: avgs[0],
				F1Micro:  avgs[1],
				F1Macro:  avgs[2],
				AUC:      avgs[3],
			},
		})
	}

	return &Table{
		RunID:   uuid.New().String(),
		Dataset: dataset,
		Scheme:  scheme,
		Rows:    rows,
	}
}
