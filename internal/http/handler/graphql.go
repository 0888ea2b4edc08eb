package handler

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/graph-gophers/graphql-go"

	"hackernews/internal/auth"
)

type graphQLRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

var mutationOp = regexp.MustCompile(`(?m)^\s*mutation\b`)

// GraphQL serves the schema over POST (JSON body) and GET (query string).
// GET is read-only: resolvers see auth.WithReadOnly and refuse every mutation.
// Documents that plainly start with a mutation are answered with 405 up front.
func GraphQL(schema *graphql.Schema) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req graphQLRequest
		ctx := c.UserContext()
		if c.Method() == fiber.MethodGet {
			ctx = auth.WithReadOnly(ctx)
			req.Query = c.Query("query")
			req.OperationName = c.Query("operationName")
			if v := c.Query("variables"); v != "" {
				if err := json.Unmarshal([]byte(v), &req.Variables); err != nil {
					return writeError(c, fiber.StatusBadRequest, "INVALID_VARIABLES", "variables must be a JSON object")
				}
			}
			if mutationOp.MatchString(req.Query) {
				c.Set(fiber.HeaderAllow, fiber.MethodPost)
				return writeError(c, fiber.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "mutations require POST")
			}
		} else if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		if strings.TrimSpace(req.Query) == "" {
			return writeError(c, fiber.StatusBadRequest, "QUERY_REQUIRED", "query is required")
		}

		resp := schema.Exec(ctx, req.Query, req.OperationName, req.Variables)
		return c.JSON(resp)
	}
}
