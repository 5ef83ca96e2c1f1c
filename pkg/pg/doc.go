// Package pg manages the PostgreSQL connection pool used by the usage and
// subscription stores: connection with retry, schema migrations, and helpers
// for classifying pgx errors.
package pg
