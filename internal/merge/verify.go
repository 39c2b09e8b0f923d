package merge

import (
	"fmt"

	"github.com/lherron/svmerge/internal/store"
)

// OrphanSampleLimit caps the detailed rows in an integrity report. The total
// count is always exact.
const OrphanSampleLimit = 20

// Orphan is a player row whose account_id matches no account row. Such
// players cannot log in after the merge.
type Orphan struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	AccountID int64  `json:"account_id"`
}

// IntegrityReport is the result of the post-merge referential audit. It is
// informational: warnings never block the commit decision.
type IntegrityReport struct {
	Total  int64    `json:"total"`
	Sample []Orphan `json:"sample,omitempty"`
}

// Verifier audits player-to-account referential integrity on the target
// store.
type Verifier struct {
	db store.Execer
}

// NewVerifier returns a verifier reading through db, which may be an open
// transaction (to audit uncommitted rows) or a plain connection.
func NewVerifier(db store.Execer) *Verifier {
	return &Verifier{db: db}
}

// FindOrphans runs the integrity query: an outer join from player to account
// filtered to missing parents. It returns the exact total and a sample capped
// at OrphanSampleLimit rows.
func (v *Verifier) FindOrphans() (*IntegrityReport, error) {
	var total int64
	err := v.db.QueryRow(
		`SELECT COUNT(*) FROM player p
		 LEFT JOIN account a ON p.account_id = a.id
		 WHERE a.id IS NULL`,
	).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("failed to count orphaned players: %w", err)
	}

	report := &IntegrityReport{Total: total}
	if total == 0 {
		return report, nil
	}

	rows, err := v.db.Query(fmt.Sprintf(
		`SELECT p.id, p.name, p.account_id FROM player p
		 LEFT JOIN account a ON p.account_id = a.id
		 WHERE a.id IS NULL
		 LIMIT %d`, OrphanSampleLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to list orphaned players: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var o Orphan
		if err := rows.Scan(&o.ID, &o.Name, &o.AccountID); err != nil {
			return nil, fmt.Errorf("failed to scan orphaned player: %w", err)
		}
		report.Sample = append(report.Sample, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orphaned players: %w", err)
	}

	return report, nil
}
