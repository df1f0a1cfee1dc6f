package postgres

import (
	"context"
	"fmt"

	"github.com/frahmantamala/ldc-construction/internal/hierarchy"
	"github.com/jmoiron/sqlx"
)

type DependencyCounter struct {
	db *sqlx.DB
}

func NewDependencyCounter(db *sqlx.DB) *DependencyCounter {
	return &DependencyCounter{db: db}
}

const countDependenciesQuery = `
SELECT
  (SELECT COUNT(*) FROM users       WHERE construction_group_id = $1 AND is_active) AS users,
  (SELECT COUNT(*) FROM volunteers  WHERE construction_group_id = $1 AND is_active) AS volunteers,
  (SELECT COUNT(*) FROM trade_teams WHERE construction_group_id = $1 AND is_active) AS trade_teams,
  (SELECT COUNT(*) FROM projects    WHERE construction_group_id = $1 AND is_active) AS projects
`

func (c *DependencyCounter) CountDependencies(ctx context.Context, cgID string) (hierarchy.DependencyCounts, error) {
	var counts hierarchy.DependencyCounts
	if err := c.db.GetContext(ctx, &counts, countDependenciesQuery, cgID); err != nil {
		return hierarchy.DependencyCounts{}, fmt.Errorf("count dependencies: %w", err)
	}
	return counts, nil
}
