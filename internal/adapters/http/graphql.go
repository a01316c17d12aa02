package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/checkout/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	budgetType := graphql.NewObject(graphql.ObjectConfig{
		Name: "BudgetSnapshot",
		Fields: graphql.Fields{
			"totalRequests": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return int(p.Source.(domain.BudgetSnapshot).TotalRequests), nil
				},
			},
			"errorRate":       &graphql.Field{Type: graphql.Float},
			"p95LatencyMs":    &graphql.Field{Type: graphql.Float},
			"remainingBudget": &graphql.Field{Type: graphql.Float},
		},
	})

	orderType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Order",
		Fields: graphql.Fields{
			"id":    &graphql.Field{Type: graphql.String},
			"total": &graphql.Field{Type: graphql.Float},
			"items": &graphql.Field{
				Type: graphql.NewList(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					o := p.Source.(domain.Order)
					items := make([]string, len(o.Items))
					for i, it := range o.Items {
						items[i] = fmt.Sprint(it)
					}
					return items, nil
				},
			},
			"itemCount": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return len(p.Source.(domain.Order).Items), nil
				},
			},
			"createdAt": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.Order).CreatedAt.Format(time.RFC3339Nano), nil
				},
			},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"errorBudget": &graphql.Field{
				Type:        budgetType,
				Description: "Current error-budget snapshot",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Budget.Snapshot(), nil
				},
			},
			"orders": &graphql.Field{
				Type:        graphql.NewList(orderType),
				Description: "Most recent orders, oldest first",
				Args: graphql.FieldConfigArgument{
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 25},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					limit, _ := p.Args["limit"].(int)
					return deps.Orders.Recent(p.Context, limit)
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
