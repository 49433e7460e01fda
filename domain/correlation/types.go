package correlation

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"healthcorr/domain/core"
)

// MinPairs is the minimum number of complete (x, y) pairs needed before a coefficient is
// reported.
const MinPairs = 10

// OrderMode selects how variables are laid out on both matrix axes
type OrderMode string

const (
	OrderNatural    OrderMode = "natural"
	OrderSimilarity OrderMode = "similarity"
)

// ParseOrderMode parses a mode name
func ParseOrderMode(s string) (OrderMode, error) {
	switch OrderMode(strings.ToLower(strings.TrimSpace(s))) {
	case OrderNatural:
		return OrderNatural, nil
	case OrderSimilarity:
		return OrderSimilarity, nil
	}
	return "", fmt.Errorf("%w: %q", core.ErrUnknownOrder, s)
}

// Toggled returns the other mode
func (m OrderMode) Toggled() OrderMode {
	if m == OrderSimilarity {
		return OrderNatural
	}
	return OrderSimilarity
}

// AbsentReason explains why a cell carries no coefficient
type AbsentReason string

const (
	ReasonInsufficientPairs AbsentReason = "insufficient_pairs"
	ReasonZeroVariance      AbsentReason = "zero_variance"
)

// Cell is the relationship between a row and a column variable of the current ordering
type Cell struct {
	Row         core.VariableKey `json:"row"`
	Col         core.VariableKey `json:"col"`
	RowLabel    string           `json:"row_label"`
	ColLabel    string           `json:"col_label"`
	Coefficient *float64         `json:"coefficient"` // nil when absent
	Pairs       int              `json:"pairs"`
	PValue      *float64         `json:"p_value,omitempty"`
	Reason      AbsentReason     `json:"reason,omitempty"`
}

// HasValue reports whether the cell carries a coefficient
func (c Cell) HasValue() bool {
	return c.Coefficient != nil
}

// Value returns the coefficient and whether it is present
func (c Cell) Value() (float64, bool) {
	if c.Coefficient == nil {
		return 0, false
	}
	return *c.Coefficient, true
}

// Clone returns a copy that shares no pointers with c
func (c Cell) Clone() Cell {
	if c.Coefficient != nil {
		r := *c.Coefficient
		c.Coefficient = &r
	}
	if c.PValue != nil {
		p := *c.PValue
		c.PValue = &p
	}
	return c
}

// IsDiagonal reports whether the cell pairs a variable with itself
func (c Cell) IsDiagonal() bool {
	return c.Row == c.Col
}

// Matrix holds the n² cells for an ordering, row-major: cell (i, j) is Cells[i*n+j]
type Matrix struct {
	Order []core.VariableKey `json:"order"`
	Cells []Cell             `json:"cells"`
}

// Size returns the number of variables on each axis
func (m Matrix) Size() int {
	return len(m.Order)
}

// At returns the cell at row i, column j
func (m Matrix) At(i, j int) Cell {
	return m.Cells[i*len(m.Order)+j]
}

// Lookup returns the cell for a pair of keys
func (m Matrix) Lookup(row, col core.VariableKey) (Cell, bool) {
	i, j := -1, -1
	for idx, k := range m.Order {
		if k == row {
			i = idx
		}
		if k == col {
			j = idx
		}
	}
	if i < 0 || j < 0 {
		return Cell{}, false
	}
	return m.At(i, j), true
}

// TopPairs returns up to k unique off-diagonal cells (upper triangle) with a present
// coefficient, strongest |r| first. Ties keep row-major position.
func (m Matrix) TopPairs(k int) []Cell {
	n := len(m.Order)
	pairs := make([]Cell, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if c := m.At(i, j); c.HasValue() {
				pairs = append(pairs, c)
			}
		}
	}
	sort.SliceStable(pairs, func(a, b int) bool {
		return math.Abs(*pairs[a].Coefficient) > math.Abs(*pairs[b].Coefficient)
	})
	if k >= 0 && k < len(pairs) {
		pairs = pairs[:k]
	}
	return pairs
}

// Fingerprint hashes a canonical encoding of the ordering and coefficients. Identical
// datasets and orderings produce identical fingerprints.
func (m Matrix) Fingerprint() core.Hash {
	var b strings.Builder
	b.WriteString(strings.Join(core.KeyStrings(m.Order), ","))
	b.WriteByte('\n')
	for _, c := range m.Cells {
		b.WriteString(string(c.Row))
		b.WriteByte('|')
		b.WriteString(string(c.Col))
		b.WriteByte('=')
		if v, ok := c.Value(); ok {
			b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		} else {
			b.WriteString("null")
		}
		b.WriteByte(';')
	}
	return core.NewHash([]byte(b.String()))
}

// Snapshot is a persisted rendering of a matrix view
type Snapshot struct {
	ID          core.SnapshotID    `json:"id"`
	CreatedAt   core.Timestamp     `json:"created_at"`
	Mode        OrderMode          `json:"mode"`
	Scheme      string             `json:"scheme"`
	Order       []core.VariableKey `json:"order"`
	Cells       []Cell             `json:"cells"`
	Rows        int                `json:"rows"`
	Fingerprint core.Hash          `json:"fingerprint"`
}

// Matrix returns the snapshot's matrix
func (s Snapshot) Matrix() Matrix {
	return Matrix{Order: s.Order, Cells: s.Cells}
}
