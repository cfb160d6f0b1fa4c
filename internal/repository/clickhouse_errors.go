package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"

	domrepo "DistroDash/internal/domain/repository"
)

// codeUnknownTable is ClickHouse's UNKNOWN_TABLE.
const codeUnknownTable = 60

// sourceError marks missing tables as ErrSourceNotFound. The native protocol returns
// a typed exception; over HTTP only the message carries the code name.
func sourceError(op, table string, err error) error {
	var exc *clickhouse.Exception
	if (errors.As(err, &exc) && exc.Code == codeUnknownTable) || strings.Contains(err.Error(), "UNKNOWN_TABLE") {
		return fmt.Errorf("%s: %w: table %s: %w", op, domrepo.ErrSourceNotFound, table, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
