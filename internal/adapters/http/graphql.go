package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/flightpath/internal/core/domain"
	"github.com/samirrijal/flightpath/internal/core/usecases"
	"github.com/samirrijal/flightpath/internal/pkg/geospatial"
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

	summaryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RouteSummary",
		Fields: graphql.Fields{
			"distance_km": &graphql.Field{Type: graphql.Float},
			"zoom_level":  &graphql.Field{Type: graphql.Int},
			"midpoint":    &graphql.Field{Type: geoPointType},
		},
	})

	weatherSampleType := graphql.NewObject(graphql.ObjectConfig{
		Name: "WeatherSample",
		Fields: graphql.Fields{
			"id":             &graphql.Field{Type: graphql.String},
			"station":        &graphql.Field{Type: graphql.String},
			"coord":          &graphql.Field{Type: geoPointType},
			"wind_direction": &graphql.Field{Type: graphql.Float},
			"wind_speed":     &graphql.Field{Type: graphql.Float},
			"observed_at":    &graphql.Field{Type: graphql.DateTime},
		},
	})

	windSegmentType := graphql.NewObject(graphql.ObjectConfig{
		Name: "WindSegment",
		Fields: graphql.Fields{
			"from": &graphql.Field{Type: weatherSampleType},
			"to":   &graphql.Field{Type: weatherSampleType},
			"path": &graphql.Field{Type: graphql.NewList(geoPointType)},
		},
	})

	flightPlanType := graphql.NewObject(graphql.ObjectConfig{
		Name: "FlightPlan",
		Fields: graphql.Fields{
			"start":             &graphql.Field{Type: geoPointType},
			"end":               &graphql.Field{Type: geoPointType},
			"summary":           &graphql.Field{Type: summaryType},
			"path":              &graphql.Field{Type: graphql.NewList(geoPointType)},
			"marker_path":       &graphql.Field{Type: graphql.NewList(geoPointType)},
			"departure_bearing": &graphql.Field{Type: graphql.Int},
			"arrival_bearing":   &graphql.Field{Type: graphql.Int},
			"wind_samples":      &graphql.Field{Type: graphql.NewList(weatherSampleType)},
			"wind_segments":     &graphql.Field{Type: graphql.NewList(windSegmentType)},
			"computed_at":       &graphql.Field{Type: graphql.DateTime},
		},
	})

	bearingType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Bearing",
		Fields: graphql.Fields{
			"angle":   &graphql.Field{Type: graphql.Int},
			"bucket":  &graphql.Field{Type: graphql.String},
			"azimuth": &graphql.Field{Type: graphql.Float},
		},
	})

	endpointArgs := func() graphql.FieldConfigArgument {
		return graphql.FieldConfigArgument{
			"start_lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
			"start_lon": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
			"end_lat":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
			"end_lon":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
		}
	}

	planArgs := endpointArgs()
	planArgs["points"] = &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0}
	planArgs["wind"] = &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: false}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"flightPlan": &graphql.Field{
				Type:        flightPlanType,
				Description: "Great-circle flight plan between two points",
				Args:        planArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					start, end := endpointsFromArgs(p.Args)
					plan, err := deps.Flights.Plan(p.Context, usecases.PlanRequest{
						Start:       start,
						End:         end,
						Points:      p.Args["points"].(int),
						IncludeWind: p.Args["wind"].(bool),
					})
					if err != nil {
						return nil, err
					}
					return flightPlanToMap(plan), nil
				},
			},
			"routeSummary": &graphql.Field{
				Type:        summaryType,
				Description: "Distance, zoom and midpoint of a flight",
				Args:        endpointArgs(),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					start, end := endpointsFromArgs(p.Args)
					return deps.Flights.Summary(start, end)
				},
			},
			"bearing": &graphql.Field{
				Type:        bearingType,
				Description: "Diagonal marker orientation from origin towards a point",
				Args: graphql.FieldConfigArgument{
					"origin_lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"origin_lon": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lat":        &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":        &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"flipped":    &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: false},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					origin := domain.GeoPoint{Lat: p.Args["origin_lat"].(float64), Lon: p.Args["origin_lon"].(float64)}
					relative := domain.GeoPoint{Lat: p.Args["lat"].(float64), Lon: p.Args["lon"].(float64)}
					if err := origin.Validate(); err != nil {
						return nil, err
					}
					if err := relative.Validate(); err != nil {
						return nil, err
					}
					b := geospatial.ClassifyBearing(origin, relative, p.Args["flipped"].(bool))
					return map[string]interface{}{
						"angle":   int(b),
						"bucket":  b.Bucket(),
						"azimuth": geospatial.InitialBearing(origin, relative),
					}, nil
				},
			},
			"windSamples": &graphql.Field{
				Type:        graphql.NewList(weatherSampleType),
				Description: "Latest wind sample of every station inside a box",
				Args: graphql.FieldConfigArgument{
					"min_lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"min_lon": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"max_lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"max_lon": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"limit":   &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if deps.Weather == nil {
						return nil, errors.New("weather storage not configured")
					}
					b := domain.Bounds{
						MinLat: p.Args["min_lat"].(float64),
						MinLon: p.Args["min_lon"].(float64),
						MaxLat: p.Args["max_lat"].(float64),
						MaxLon: p.Args["max_lon"].(float64),
					}
					return deps.Weather.InBounds(p.Context, b, p.Args["limit"].(int))
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

func endpointsFromArgs(args map[string]interface{}) (domain.GeoPoint, domain.GeoPoint) {
	start := domain.GeoPoint{Lat: args["start_lat"].(float64), Lon: args["start_lon"].(float64)}
	end := domain.GeoPoint{Lat: args["end_lat"].(float64), Lon: args["end_lon"].(float64)}
	return start, end
}

// flightPlanToMap converts bearings to plain ints, which graphql-go cannot
// coerce from a named type.
func flightPlanToMap(plan *domain.FlightPlan) map[string]interface{} {
	return map[string]interface{}{
		"start":             plan.Start,
		"end":               plan.End,
		"summary":           plan.Summary,
		"path":              plan.Path,
		"marker_path":       plan.MarkerPath,
		"departure_bearing": int(plan.DepartureBearing),
		"arrival_bearing":   int(plan.ArrivalBearing),
		"wind_samples":      plan.WindSamples,
		"wind_segments":     plan.WindSegments,
		"computed_at":       plan.ComputedAt,
	}
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
