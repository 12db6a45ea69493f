// Package dataset loads performance rows from a source and serves them as
// immutable snapshots.
package dataset

import (
	"context"

	"github.com/patrickwarner/adinsights/internal/models"
)

// Source produces a full dataset. Implementations: CSVSource, db.Postgres
// and db.ClickHouse.
type Source interface {
	Name() string
	Load(ctx context.Context) (models.Dataset, error)
}
