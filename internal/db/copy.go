package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// DefaultBatchSize is the number of rows sent per COPY call.
const DefaultBatchSize = 5000

// CopyFromSchema bulk-inserts rows into a schema-qualified table using the
// PostgreSQL COPY protocol, batchSize rows per call (0 = DefaultBatchSize).
func CopyFromSchema(ctx context.Context, pool Pool, schema, table string, columns []string, rows [][]any, batchSize int) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	log := zap.L().With(
		zap.String("component", "db.copy"),
		zap.String("table", schema+"."+table),
	)

	var total int64
	for i := 0; i < len(rows); i += batchSize {
		end := min(i+batchSize, len(rows))
		n, err := pool.CopyFrom(ctx, pgx.Identifier{schema, table}, columns, pgx.CopyFromRows(rows[i:end]))
		if err != nil {
			return total, eris.Wrapf(err, "db: COPY INTO %s.%s (rows %d-%d)", schema, table, i, end)
		}
		total += n
		log.Debug("batch copied", zap.Int("batch_start", i), zap.Int64("rows", n))
	}
	return total, nil
}
