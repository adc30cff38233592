package http

import (
	"strings"

	"fleet/api"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/labstack/echo/v4"
)

// ValidateRequests checks each matched request against its operation in doc
// before the handler runs. Routes the document does not describe pass through.
func ValidateRequests(doc *openapi3.T) echo.MiddlewareFunc {
	options := &openapi3filter.Options{
		MultiError:         false,
		AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := openAPIPath(c.Path())
			item := doc.Paths.Value(path)
			if item == nil {
				return next(c)
			}
			method := c.Request().Method
			operation := item.GetOperation(method)
			if operation == nil {
				return next(c)
			}

			params := make(map[string]string, len(c.ParamNames()))
			for i, name := range c.ParamNames() {
				params[name] = c.ParamValues()[i]
			}

			err := openapi3filter.ValidateRequest(c.Request().Context(), &openapi3filter.RequestValidationInput{
				Request:    c.Request(),
				PathParams: params,
				Route: &routers.Route{
					Spec:      doc,
					Path:      path,
					PathItem:  item,
					Method:    method,
					Operation: operation,
				},
				Options: options,
			})
			if err != nil {
				return badRequest(c, err.Error())
			}
			return next(c)
		}
	}
}

// openAPIPath turns an echo route such as /api/v1/loads/:id into the
// document's /loads/{id}.
func openAPIPath(route string) string {
	route = strings.TrimPrefix(route, api.BasePath)
	segments := strings.Split(route, "/")
	for i, s := range segments {
		if strings.HasPrefix(s, ":") {
			segments[i] = "{" + s[1:] + "}"
		}
	}
	return strings.Join(segments, "/")
}
