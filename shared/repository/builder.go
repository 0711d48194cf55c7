package repository

//nolint:revive
import (
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
)

const dialectPostgres = "postgres"

// Builder renders statements for lib/pq. Callers enable Prepared(true) so values travel as $n args.
var Builder = goqu.Dialect(dialectPostgres)
