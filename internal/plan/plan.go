// Package plan derives ordered execution plans from resolved replication
// documents. A plan is what gets handed to an engine: enabled streams
// only, in declaration order, with a stable identity for audit trails.
package plan

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/turbolytics/curator/internal/replication"
)

// Task is one unit of work for the engine: a single enabled stream.
type Task struct {
	Position int                        `json:"position"`
	Stream   replication.ResolvedStream `json:"stream"`
}

// Plan is an ordered execution plan. Disabled streams are counted but
// never appear as tasks.
type Plan struct {
	ID        string                   `json:"id"`
	CreatedAt time.Time                `json:"created_at"`
	Source    string                   `json:"source"`
	Target    string                   `json:"target"`
	Columns   replication.ColumnPolicy `json:"columns"`
	Env       map[string]string        `json:"env,omitempty"`
	Tasks     []Task                   `json:"tasks"`

	TotalStreams    int `json:"total_streams"`
	DisabledStreams int `json:"disabled_streams"`
}

type Option func(*Plan)

// WithID overrides the generated plan id.
func WithID(id string) Option {
	return func(p *Plan) {
		p.ID = id
	}
}

// WithCreatedAt overrides the plan timestamp.
func WithCreatedAt(ts time.Time) Option {
	return func(p *Plan) {
		p.CreatedAt = ts
	}
}

// New derives an execution plan from a resolution.
func New(res *replication.Resolution, opts ...Option) (*Plan, error) {
	if res == nil {
		return nil, fmt.Errorf("plan: nil resolution")
	}

	p := &Plan{
		ID:           uuid.Must(uuid.NewUUID()).String(),
		CreatedAt:    time.Now().UTC(),
		Source:       res.Source,
		Target:       res.Target,
		Columns:      res.Columns,
		Env:          res.Env,
		Tasks:        []Task{},
		TotalStreams: len(res.Streams),
	}
	for _, o := range opts {
		o(p)
	}

	for _, s := range res.Enabled() {
		p.Tasks = append(p.Tasks, Task{
			Position: len(p.Tasks) + 1,
			Stream:   s,
		})
	}
	p.DisabledStreams = p.TotalStreams - len(p.Tasks)

	return p, nil
}
