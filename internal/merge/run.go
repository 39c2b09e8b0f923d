// Package merge implements the merge/remap engine: identifier remapping,
// reference rewriting, dependency-ordered entity merging, the best-effort
// cross-store transaction, and the post-merge integrity audit.
package merge

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/lherron/svmerge/internal/mapping"
	"github.com/lherron/svmerge/internal/store"
)

// Options configures one merge run.
type Options struct {
	// IDOffset is added to every merged primary identifier. The operator
	// must pick it larger than the highest existing target id of any merged
	// entity kind; this is not verified at runtime.
	IDOffset int64

	// ClanTable is the per-server clan table (clan_sv{N}).
	ClanTable string

	// ClanColumn is the per-server clan reference column on player
	// (clan_id_sv{N}).
	ClanColumn string

	// DryRun computes mappings and reports without writing or transacting.
	DryRun bool

	// Out receives console reporting. Defaults to io.Discard when nil.
	Out io.Writer
}

// Run is the per-run context: both stores, the transaction coordinator, and
// the mapping registry. It is owned exclusively by one orchestrator; there is
// no cross-run or global state.
type Run struct {
	Target   *store.Store
	Source   *store.Store
	Txn      *Txn
	Mappings *mapping.Registry

	// Catalog answers schema questions about the target. It is the target
	// store itself outside of tests.
	Catalog Catalog

	ClanTable  string
	ClanColumn string
	DryRun     bool
	Out        io.Writer
}

// NewRun assembles the context for one merge run.
func NewRun(target, source *store.Store, opts Options) *Run {
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	return &Run{
		Target:     target,
		Source:     source,
		Txn:        NewTxn(target, source, opts.DryRun),
		Mappings:   mapping.NewRegistry(opts.IDOffset),
		Catalog:    target,
		ClanTable:  opts.ClanTable,
		ClanColumn: opts.ClanColumn,
		DryRun:     opts.DryRun,
		Out:        out,
	}
}

// Offset returns the id offset of this run.
func (r *Run) Offset() int64 {
	return r.Mappings.Offset()
}

func (r *Run) sectionf(format string, args ...any) {
	fmt.Fprintln(r.Out, color.New(color.FgYellow).Sprintf(format, args...))
}

func (r *Run) checkf(format string, args ...any) {
	fmt.Fprintf(r.Out, "%s %s\n", color.GreenString("✓"), fmt.Sprintf(format, args...))
}

func (r *Run) warnf(format string, args ...any) {
	fmt.Fprintf(r.Out, "%s %s\n", color.YellowString("⚠"), fmt.Sprintf(format, args...))
}
