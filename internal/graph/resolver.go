// Package graph serves the GraphQL API over the service layer.
package graph

import (
	"context"
	_ "embed"
	"errors"
	"net/http"

	"cab_booking/internal/logging"
	"cab_booking/internal/metrics"
	"cab_booking/internal/service"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"github.com/rs/zerolog"
)

//go:embed schema.graphql
var schemaSDL string

const maxQueryDepth = 10

// errInternal replaces any failure that is not meant for clients
var errInternal = errors.New("internal server error")

// Resolver is the root resolver for both Query and Mutation
type Resolver struct {
	auth     service.AuthService
	cabs     service.CabService
	bookings service.BookingService
	admin    service.AdminService
	logger   zerolog.Logger
}

// NewResolver creates the root resolver
func NewResolver(auth service.AuthService, cabs service.CabService, bookings service.BookingService, admin service.AdminService, logger zerolog.Logger) *Resolver {
	return &Resolver{
		auth:     auth,
		cabs:     cabs,
		bookings: bookings,
		admin:    admin,
		logger:   logger,
	}
}

// NewSchema parses the embedded schema against r. It panics when a schema
// field has no matching resolver method.
func NewSchema(r *Resolver) *graphql.Schema {
	return graphql.MustParseSchema(schemaSDL, r, graphql.MaxDepth(maxQueryDepth))
}

// Handler serves POST requests carrying a GraphQL query
func Handler(schema *graphql.Schema) http.Handler {
	return &relay.Handler{Schema: schema}
}

// done records the outcome of one operation and masks internal errors
func (r *Resolver) done(ctx context.Context, operation string, err error) error {
	switch {
	case err == nil:
		metrics.IncOperation(operation, "ok")
		return nil
	case service.IsPublic(err):
		metrics.IncOperation(operation, "rejected")
		return err
	}

	metrics.IncOperation(operation, "internal")
	logging.FromContext(ctx, &r.logger).Error().Err(err).Str(logging.FieldOperation, operation).Msg("GraphQL operation failed")
	return errInternal
}
