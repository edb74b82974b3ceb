// Package query evaluates join chains over a loaded triple index and
// provides the canned reports used by the command-line tools.
//
// A chain is a typed path pattern: a start type, then a sequence of
// (predicate, type) steps. Evaluation extends every partial row one hop
// at a time, so a chain of N steps yields rows of N+1 columns. Literal
// hops terminate a row with the literal's text form and must therefore
// leave the step type empty.
package query

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dcppc-phosphorous/GTEC-ETL/errors"
	"github.com/dcppc-phosphorous/GTEC-ETL/graph"
	"github.com/dcppc-phosphorous/GTEC-ETL/metric"
)

// ErrInvalidChain reports a structurally unusable chain, such as an empty
// start type or a step without a predicate. An empty result set is not an
// error.
var ErrInvalidChain = stderrors.New("invalid join chain")

// ErrDatasetNotFound reports that a report was asked about a dataset the
// loaded document does not contain.
var ErrDatasetNotFound = stderrors.New("dataset not found")

// Step is one hop of a join chain: follow Predicate from the current
// column, keeping only objects of the given type. An empty Type accepts
// any entity and additionally admits literal objects.
type Step struct {
	Predicate string
	Type      string
}

// Chain is a join path pattern. StartType selects the seed subjects;
// StartID, when set, narrows the seeds to that single identity.
type Chain struct {
	StartType string
	StartID   string
	Steps     []Step
}

// Engine evaluates chains against one immutable index.
type Engine struct {
	idx     *graph.Index
	metrics *metric.Registry
}

// Option configures an Engine.
type Option func(*Engine)

// WithMetrics attaches a metric registry to the engine.
func WithMetrics(r *metric.Registry) Option {
	return func(e *Engine) { e.metrics = r }
}

// New returns an engine over the given index.
func New(idx *graph.Index, opts ...Option) *Engine {
	e := &Engine{idx: idx}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// row is a partial result during evaluation. Terminal tracks whether the
// last column is a literal, which cannot be extended further.
type row struct {
	cols     []string
	terminal bool
}

// Execute evaluates the chain and returns the deduplicated result rows in
// a deterministic column-wise lexicographic order. A chain that matches
// nothing returns an empty slice and no error.
func (e *Engine) Execute(chain Chain) ([][]string, error) {
	if err := validateChain(chain); err != nil {
		return nil, err
	}
	e.metrics.IncQueriesExecuted()

	partials := e.seed(chain)
	for _, step := range chain.Steps {
		if len(partials) == 0 {
			break
		}
		partials = e.extend(partials, step)
	}

	rows := dedupe(partials)
	sortRows(rows)
	e.metrics.AddQueryRows(len(rows))
	return rows, nil
}

func validateChain(chain Chain) error {
	if chain.StartType == "" {
		return errors.WrapInvalid(ErrInvalidChain, "query", "Execute",
			"chain has no start type")
	}
	for i, step := range chain.Steps {
		if step.Predicate == "" {
			return errors.WrapInvalid(ErrInvalidChain, "query", "Execute",
				fmt.Sprintf("step %d has no predicate", i+1))
		}
	}
	return nil
}

func (e *Engine) seed(chain Chain) []row {
	subjects := e.idx.SubjectsOfType(chain.StartType)
	partials := make([]row, 0, len(subjects))
	for _, s := range subjects {
		if chain.StartID != "" && s != chain.StartID {
			continue
		}
		partials = append(partials, row{cols: []string{s}})
	}
	return partials
}

// extend follows one step from every partial row. Entity objects must
// carry the step's type when one is given; literal objects survive only
// untyped steps.
func (e *Engine) extend(partials []row, step Step) []row {
	var next []row
	for _, p := range partials {
		if p.terminal {
			continue
		}
		subject := p.cols[len(p.cols)-1]
		for _, tr := range e.idx.BySubjectPredicate(subject, step.Predicate) {
			if tr.IsEntity {
				target := tr.ObjectString()
				if step.Type != "" {
					typ, ok := e.idx.TypeOf(target)
					if !ok || typ != step.Type {
						continue
					}
				}
				next = append(next, row{cols: appendCol(p.cols, target)})
				continue
			}
			if step.Type != "" {
				continue
			}
			next = append(next, row{
				cols:     appendCol(p.cols, tr.ObjectString()),
				terminal: true,
			})
		}
	}
	return next
}

func appendCol(cols []string, col string) []string {
	out := make([]string, len(cols)+1)
	copy(out, cols)
	out[len(cols)] = col
	return out
}

func dedupe(partials []row) [][]string {
	seen := make(map[string]bool, len(partials))
	rows := make([][]string, 0, len(partials))
	for _, p := range partials {
		key := strings.Join(p.cols, "\x1f")
		if seen[key] {
			continue
		}
		seen[key] = true
		rows = append(rows, p.cols)
	}
	return rows
}

// sortRows orders rows lexicographically column by column. Rows sharing a
// prefix sort shorter-first, though evaluated chains always produce rows
// of equal width.
func sortRows(rows [][]string) {
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		for k := 0; k < len(a) && k < len(b); k++ {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return len(a) < len(b)
	})
}
