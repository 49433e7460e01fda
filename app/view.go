package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"healthcorr/adapters/stats/engine"
	"healthcorr/domain/core"
	"healthcorr/domain/correlation"
	"healthcorr/domain/survey"
)

// ColorScheme names a diverging or sequential palette. The renderer owns the actual
// colours; the view only carries the selection.
type ColorScheme string

const DefaultScheme ColorScheme = "RdBu"

// ColorSchemes lists the selectable palettes
var ColorSchemes = []ColorScheme{"RdBu", "PuOr", "BrBG", "PiYG", "Viridis"}

// ParseColorScheme matches name case-insensitively against ColorSchemes
func ParseColorScheme(name string) (ColorScheme, error) {
	name = strings.TrimSpace(name)
	for _, s := range ColorSchemes {
		if strings.EqualFold(string(s), name) {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", core.ErrUnknownScheme, name)
}

// ViewState is an immutable copy of what the renderer needs to draw the heatmap
type ViewState struct {
	Mode        correlation.OrderMode `json:"mode"`
	Scheme      ColorScheme           `json:"scheme"`
	Labels      []string              `json:"labels"`
	Matrix      correlation.Matrix    `json:"matrix"`
	Rows        int                   `json:"rows"`
	Fingerprint core.Hash             `json:"fingerprint"`
}

// Order returns the variable ordering on both axes
func (s ViewState) Order() []core.VariableKey {
	return s.Matrix.Order
}

// Snapshot stamps the state with a new ID and creation time for storage
func (s ViewState) Snapshot() correlation.Snapshot {
	return correlation.Snapshot{
		ID:          core.NewSnapshotID(),
		CreatedAt:   core.Now(),
		Mode:        s.Mode,
		Scheme:      string(s.Scheme),
		Order:       s.Matrix.Order,
		Cells:       s.Matrix.Cells,
		Rows:        s.Rows,
		Fingerprint: s.Fingerprint,
	}
}

// View owns the current ordering, colour scheme and matrix for one dataset. It toggles
// between the natural (codebook) order and the similarity order; similarity is always
// derived from the natural keys, so toggling twice restores the starting order exactly.
type View struct {
	mu sync.RWMutex

	engine   *engine.StatsEngine
	codebook survey.Codebook
	dataset  survey.Dataset
	natural  []core.VariableKey

	mode   correlation.OrderMode
	scheme ColorScheme
	matrix correlation.Matrix
}

// NewView builds a view in natural order
func NewView(ctx context.Context, eng *engine.StatsEngine, cb survey.Codebook, ds survey.Dataset, scheme ColorScheme) (*View, error) {
	if scheme == "" {
		scheme = DefaultScheme
	}
	if _, err := ParseColorScheme(string(scheme)); err != nil {
		return nil, err
	}

	v := &View{
		engine:   eng,
		codebook: cb,
		dataset:  ds,
		natural:  cb.Keys(),
		scheme:   scheme,
	}
	if err := v.apply(ctx, correlation.OrderNatural); err != nil {
		return nil, err
	}
	return v, nil
}

// apply recomputes order and matrix for mode; callers hold the write lock or own v
func (v *View) apply(ctx context.Context, mode correlation.OrderMode) error {
	order := make([]core.VariableKey, len(v.natural))
	copy(order, v.natural)

	if mode == correlation.OrderSimilarity {
		sorted, err := v.engine.ReorderBySimilarity(ctx, v.dataset, v.natural)
		if err != nil {
			return err
		}
		order = sorted
	}

	m, err := v.engine.ComputeMatrix(ctx, v.dataset, v.codebook, order)
	if err != nil {
		return err
	}

	v.mode = mode
	v.matrix = m
	return nil
}

// ToggleOrder switches between natural and similarity order
func (v *View) ToggleOrder(ctx context.Context) (ViewState, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.apply(ctx, v.mode.Toggled()); err != nil {
		return ViewState{}, err
	}
	return v.stateLocked(), nil
}

// SetOrder moves to mode; setting the current mode leaves the view unchanged
func (v *View) SetOrder(ctx context.Context, mode correlation.OrderMode) (ViewState, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if mode != correlation.OrderNatural && mode != correlation.OrderSimilarity {
		return ViewState{}, fmt.Errorf("%w: %q", core.ErrUnknownOrder, mode)
	}
	if mode != v.mode {
		if err := v.apply(ctx, mode); err != nil {
			return ViewState{}, err
		}
	}
	return v.stateLocked(), nil
}

// SetScheme selects a colour scheme by name
func (v *View) SetScheme(name string) (ViewState, error) {
	scheme, err := ParseColorScheme(name)
	if err != nil {
		return ViewState{}, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.scheme = scheme
	return v.stateLocked(), nil
}

// State returns the current view state
func (v *View) State() ViewState {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.stateLocked()
}

// Codebook returns the variables the view was built for
func (v *View) Codebook() survey.Codebook {
	return v.codebook
}

// Dataset returns the underlying dataset
func (v *View) Dataset() survey.Dataset {
	return v.dataset
}

func (v *View) stateLocked() ViewState {
	order := make([]core.VariableKey, len(v.matrix.Order))
	copy(order, v.matrix.Order)
	cells := make([]correlation.Cell, len(v.matrix.Cells))
	for i, c := range v.matrix.Cells {
		cells[i] = c.Clone()
	}

	labels := make([]string, len(order))
	for i, k := range order {
		labels[i] = v.codebook.Label(k)
	}

	m := correlation.Matrix{Order: order, Cells: cells}
	return ViewState{
		Mode:        v.mode,
		Scheme:      v.scheme,
		Labels:      labels,
		Matrix:      m,
		Rows:        v.dataset.Len(),
		Fingerprint: m.Fingerprint(),
	}
}
