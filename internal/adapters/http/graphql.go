package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/transitcat/internal/core/domain"
	"github.com/samirrijal/transitcat/internal/core/usecases"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	settingsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RoutingSettings",
		Fields: graphql.Fields{
			"bus_wait_time": &graphql.Field{Type: graphql.Int},
			"bus_velocity":  &graphql.Field{Type: graphql.Float},
		},
	})

	boundsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Bounds",
		Fields: graphql.Fields{
			"min_lat": &graphql.Field{Type: graphql.Float},
			"min_lon": &graphql.Field{Type: graphql.Float},
			"max_lat": &graphql.Field{Type: graphql.Float},
			"max_lon": &graphql.Field{Type: graphql.Float},
		},
	})

	networkType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Network",
		Fields: graphql.Fields{
			"snapshot_id":      &graphql.Field{Type: graphql.String},
			"loaded_at":        &graphql.Field{Type: graphql.DateTime},
			"stops":            &graphql.Field{Type: graphql.Int},
			"routes":           &graphql.Field{Type: graphql.Int},
			"vertices":         &graphql.Field{Type: graphql.Int},
			"edges":            &graphql.Field{Type: graphql.Int},
			"engine":           &graphql.Field{Type: graphql.String},
			"routing_settings": &graphql.Field{Type: settingsType},
			"bounds":           &graphql.Field{Type: boundsType},
		},
	})

	stopType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Stop",
		Fields: graphql.Fields{
			"name":     &graphql.Field{Type: graphql.String},
			"location": &graphql.Field{Type: geoPointType},
			"buses":    &graphql.Field{Type: graphql.NewList(graphql.String)},
		},
	})

	statsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RouteStats",
		Fields: graphql.Fields{
			"stop_count":        &graphql.Field{Type: graphql.Int},
			"unique_stop_count": &graphql.Field{Type: graphql.Int},
			"route_length":      &graphql.Field{Type: graphql.Int},
			"curvature": &graphql.Field{
				Type:        graphql.Float,
				Description: "Null when the geographic length is zero",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if s, ok := p.Source.(domain.RouteStats); ok && s.Curvature != nil {
						return *s.Curvature, nil
					}
					return nil, nil
				},
			},
		},
	})

	routeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Route",
		Fields: graphql.Fields{
			"number":       &graphql.Field{Type: graphql.String},
			"is_roundtrip": &graphql.Field{Type: graphql.Boolean},
			"stops":        &graphql.Field{Type: graphql.NewList(graphql.String)},
			"stats":        &graphql.Field{Type: statsType},
		},
	})

	legType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ItineraryLeg",
		Fields: graphql.Fields{
			"type": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if l, ok := p.Source.(domain.ItineraryLeg); ok {
						return string(l.Kind), nil
					}
					return nil, nil
				},
			},
			"stop_name":  &graphql.Field{Type: graphql.String},
			"bus":        &graphql.Field{Type: graphql.String},
			"span_count": &graphql.Field{Type: graphql.Int},
			"time":       &graphql.Field{Type: graphql.Float},
		},
	})

	itineraryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Itinerary",
		Fields: graphql.Fields{
			"from":       &graphql.Field{Type: graphql.String},
			"to":         &graphql.Field{Type: graphql.String},
			"total_time": &graphql.Field{Type: graphql.Float},
			"items":      &graphql.Field{Type: graphql.NewList(legType)},
		},
	})

	pageArgs := graphql.FieldConfigArgument{
		"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
		"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"network": &graphql.Field{
				Type:        networkType,
				Description: "Summary of the loaded network",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Network.Summary(), nil
				},
			},
			"stops": &graphql.Field{
				Type:        graphql.NewList(stopType),
				Description: "Stops in name order",
				Args:        pageArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					offset, _ := p.Args["offset"].(int)
					limit, _ := p.Args["limit"].(int)
					stops, _ := deps.Network.ListStops(p.Context, max(offset, 0), usecases.PageLimit(limit))
					return stops, nil
				},
			},
			"stop": &graphql.Field{
				Type:        stopType,
				Description: "Get a stop by name",
				Args: graphql.FieldConfigArgument{
					"name": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					name, _ := p.Args["name"].(string)
					return deps.Network.Stop(p.Context, name)
				},
			},
			"routes": &graphql.Field{
				Type:        graphql.NewList(routeType),
				Description: "Routes in number order",
				Args:        pageArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					offset, _ := p.Args["offset"].(int)
					limit, _ := p.Args["limit"].(int)
					routes, _, err := deps.Network.ListRoutes(p.Context, max(offset, 0), usecases.PageLimit(limit))
					return routes, err
				},
			},
			"route": &graphql.Field{
				Type:        routeType,
				Description: "Get a route and its statistics by number",
				Args: graphql.FieldConfigArgument{
					"number": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					number, _ := p.Args["number"].(string)
					return deps.Network.Route(p.Context, number)
				},
			},
			"itinerary": &graphql.Field{
				Type:        itineraryType,
				Description: "Fastest trip between two stops",
				Args: graphql.FieldConfigArgument{
					"from": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"to":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					from, _ := p.Args["from"].(string)
					to, _ := p.Args["to"].(string)
					it, err := deps.Network.PlanItinerary(p.Context, from, to)
					if err != nil {
						return nil, err
					}
					return it, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		if deps.Network == nil {
			return errUnavailable(c, "network not loaded")
		}

		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
