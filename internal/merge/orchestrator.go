package merge

import (
	"errors"
	"fmt"
)

// Merger merges one entity's rows from the source store into the target.
// On success its identifier mapping is fully populated before the next
// dependency-ordered merger runs, and the returned count equals the rows
// read. In dry-run mode reads and mapping generation still happen but no
// write lands in the target.
type Merger interface {
	Table() string
	Merge(run *Run) (int, error)
}

// State tracks the orchestrator through its strictly sequential run.
type State int

const (
	StateIdle State = iota
	StateSchemaReady
	StateAccountsMerged
	StatePlayersMerged
	StateClansMerged
	StateHistoriesMerged
	StateAuxiliaryMerged
	StateVerified
	StateCommitted
	StateRolledBack
)

var stateNames = map[State]string{
	StateIdle:            "idle",
	StateSchemaReady:     "schema-ready",
	StateAccountsMerged:  "accounts-merged",
	StatePlayersMerged:   "players-merged",
	StateClansMerged:     "clans-merged",
	StateHistoriesMerged: "histories-merged",
	StateAuxiliaryMerged: "auxiliary-merged",
	StateVerified:        "verified",
	StateCommitted:       "committed",
	StateRolledBack:      "rolled-back",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

type step struct {
	merger Merger
	next   State
}

// Orchestrator drives one merge run: schema evolution, then each entity
// merger in dependency order, then the integrity audit, all under one
// transaction coordinator session. The ordering is fixed: clans need the
// player mapping for the members rewrite, and the history and auxiliary
// mergers need it for player_id, so nothing may be reordered.
type Orchestrator struct {
	run    *Run
	state  State
	steps  []step
	report *IntegrityReport
}

// NewOrchestrator returns an orchestrator owning the given run context.
func NewOrchestrator(run *Run) *Orchestrator {
	return &Orchestrator{
		run:   run,
		state: StateIdle,
		steps: []step{
			{AccountMerger{}, StateAccountsMerged},
			{PlayerMerger{}, StatePlayersMerged},
			{ClanMerger{}, StateClansMerged},
			{HistoryMerger{}, StateHistoriesMerged},
			{VipMerger{}, StateAuxiliaryMerged},
		},
	}
}

// State returns the current run state.
func (o *Orchestrator) State() State {
	return o.state
}

// Report returns the integrity audit result, available once the run reaches
// the verified state.
func (o *Orchestrator) Report() *IntegrityReport {
	return o.report
}

// Execute runs the merge sequence up to the verified state. Any step failure
// rolls back both stores, leaves the orchestrator rolled-back, and skips all
// downstream steps. On success the caller decides between Commit and
// Rollback.
func (o *Orchestrator) Execute() error {
	if o.state != StateIdle {
		return fmt.Errorf("merge already ran (state %s)", o.state)
	}

	if err := o.run.Txn.Begin(); err != nil {
		o.state = StateRolledBack
		return err
	}

	if err := o.execute(); err != nil {
		rbErr := o.run.Txn.Rollback()
		o.state = StateRolledBack
		if rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}
	return nil
}

func (o *Orchestrator) execute() error {
	run := o.run

	// Rows arrive before their parents within a step, so FK enforcement is
	// suspended for this session until the merge sequence completes.
	if !run.DryRun {
		if _, err := run.Txn.Target().Exec("SET FOREIGN_KEY_CHECKS=0"); err != nil {
			return fmt.Errorf("failed to disable foreign key checks: %w", err)
		}
	}

	run.sectionf(">>> Checking %s provenance columns...", ProvenanceColumn)
	evolver := NewEvolver(run.Catalog, run.Txn.Target(), run.DryRun)
	for _, table := range []string{"account", "player"} {
		created, err := evolver.EnsureProvenanceColumn(table)
		if err != nil {
			return err
		}
		if created {
			run.checkf("added %s column to %s", ProvenanceColumn, table)
		} else {
			run.checkf("%s column already present on %s", ProvenanceColumn, table)
		}
	}
	o.state = StateSchemaReady

	for _, s := range o.steps {
		run.sectionf(">>> Merging %s...", s.merger.Table())
		count, err := s.merger.Merge(run)
		if err != nil {
			return err
		}
		run.checkf("%d %s rows", count, s.merger.Table())
		o.state = s.next
	}

	if !run.DryRun {
		if _, err := run.Txn.Target().Exec("SET FOREIGN_KEY_CHECKS=1"); err != nil {
			return fmt.Errorf("failed to re-enable foreign key checks: %w", err)
		}
	}

	report, err := NewVerifier(run.Txn.Target()).FindOrphans()
	if err != nil {
		return err
	}
	o.report = report
	o.state = StateVerified

	return nil
}

// Commit commits both store transactions. Only valid once verified.
func (o *Orchestrator) Commit() error {
	if o.state != StateVerified {
		return fmt.Errorf("cannot commit from state %s", o.state)
	}
	if err := o.run.Txn.Commit(); err != nil {
		o.state = StateRolledBack
		return err
	}
	o.state = StateCommitted
	return nil
}

// Rollback discards both store transactions.
func (o *Orchestrator) Rollback() error {
	err := o.run.Txn.Rollback()
	o.state = StateRolledBack
	return err
}
