package panther

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tphakala/go-panther/internal/graphql"
)

// gqlExecutor invokes named GraphQL operations and maps structured error
// responses to the package error taxonomy. Transport and network failures
// pass through unchanged; no retries happen at this layer.
type gqlExecutor struct {
	transport *graphql.Transport
}

// execute runs the operation registered under name with the given variable
// bindings and unmarshals the data payload into result.
func (g *gqlExecutor) execute(ctx context.Context, name string, variables map[string]any, headers http.Header, result any) error {
	data, err := g.transport.Execute(ctx, name, variables, headers)
	if err != nil {
		return mapGraphQLError(err)
	}

	if result != nil && len(data) > 0 {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("unmarshaling %s response: %w", name, err)
		}
	}

	return nil
}
