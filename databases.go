package panther

import (
	"context"
	"regexp"
)

// The API only resolves unquoted Snowflake identifiers; quoted names with
// special characters are rejected up front.
// See https://docs.snowflake.com/en/sql-reference/identifiers-syntax
var unquotedIdentifierPattern = regexp.MustCompile(`^[a-zA-Z_][\w$.]*$`)

// Column describes a single column of a data lake table.
type Column struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// Table describes a single data lake table.
type Table struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Columns     []Column `json:"columns,omitempty"`
}

// Database describes a data lake database and its tables.
type Database struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Tables      []Table `json:"tables,omitempty"`
}

// DatabaseService describes the data lake's databases, tables, and columns.
type DatabaseService interface {
	// List returns every database available in the data lake.
	List(ctx context.Context, opts ...RequestOption) ([]*Database, error)

	// Get returns a single database and its tables by name.
	Get(ctx context.Context, database string, opts ...RequestOption) (*Database, error)
}

// databaseService implements DatabaseService.
type databaseService struct {
	gql *gqlExecutor
}

func newDatabaseService(gql *gqlExecutor) *databaseService {
	return &databaseService{gql: gql}
}

// List returns every database available in the data lake.
func (s *databaseService) List(ctx context.Context, opts ...RequestOption) ([]*Database, error) {
	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	var result struct {
		DataLakeDatabases []*Database `json:"dataLakeDatabases"`
	}
	err := s.gql.execute(ctx, "databases/list", nil, reqCfg.headers, &result)
	if err != nil {
		return nil, err
	}

	return result.DataLakeDatabases, nil
}

// Get returns a single database and its tables by name.
func (s *databaseService) Get(ctx context.Context, database string, opts ...RequestOption) (*Database, error) {
	if !unquotedIdentifierPattern.MatchString(database) {
		return nil, &ValidationError{Message: "invalid database name: " + database}
	}

	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	var result struct {
		DataLakeDatabase *Database `json:"dataLakeDatabase"`
	}
	err := s.gql.execute(ctx, "databases/get", map[string]any{"database": database}, reqCfg.headers, &result)
	if err != nil {
		return nil, err
	}

	return result.DataLakeDatabase, nil
}
