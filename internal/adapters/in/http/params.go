package http

import (
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

const ActorHeader = "X-Actor-ID"

// parseID reports malformed ids as invalid values so they map to 400.
func parseID(param, raw string) (kernel.UUID, error) {
	if raw == "" {
		return kernel.UUID{}, errs.NewValueIsRequiredError(param)
	}
	id, err := kernel.UUIDFromString(raw)
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(param, err)
	}
	return id, nil
}

func parseIDs(param string, raw []string) ([]kernel.UUID, error) {
	ids := make([]kernel.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := parseID(param, r)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// bindID binds a simple-style path or header parameter.
func bindID(param, raw string, location runtime.ParamLocation) (kernel.UUID, error) {
	if raw == "" {
		return kernel.UUID{}, errs.NewValueIsRequiredError(param)
	}

	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", param, raw, &id, runtime.BindStyledParameterOptions{
		ParamLocation: location,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(param, err)
	}
	return toKernelID(param, id)
}

func toKernelID(param string, id openapi_types.UUID) (kernel.UUID, error) {
	parsed, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(param, err)
	}
	return parsed, nil
}

func actorID(c echo.Context) (kernel.UUID, error) {
	return bindID(ActorHeader, c.Request().Header.Get(ActorHeader), runtime.ParamLocationHeader)
}

func pathID(c echo.Context) (kernel.UUID, error) {
	return bindID("id", c.Param("id"), runtime.ParamLocationPath)
}

func actorAndPathID(c echo.Context) (kernel.UUID, kernel.UUID, error) {
	actor, err := actorID(c)
	if err != nil {
		return kernel.UUID{}, kernel.UUID{}, err
	}
	id, err := pathID(c)
	if err != nil {
		return kernel.UUID{}, kernel.UUID{}, err
	}
	return actor, id, nil
}

func queryID(c echo.Context, param string) (kernel.UUID, error) {
	if c.QueryParam(param) == "" {
		return kernel.UUID{}, errs.NewValueIsRequiredError(param)
	}

	var id openapi_types.UUID
	if err := runtime.BindQueryParameter("form", true, true, param, c.QueryParams(), &id); err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(param, err)
	}
	return toKernelID(param, id)
}

// queryString returns "" for an absent optional parameter.
func queryString(c echo.Context, param string) (string, error) {
	var value *string
	if err := runtime.BindQueryParameter("form", true, false, param, c.QueryParams(), &value); err != nil {
		return "", errs.NewValueIsInvalidErrorWithCause(param, err)
	}
	if value == nil {
		return "", nil
	}
	return *value, nil
}

func bindNotificationsParams(c echo.Context) (NotificationsParams, error) {
	var params NotificationsParams
	if err := runtime.BindQueryParameter("form", true, false, "unreadOnly", c.QueryParams(), &params.UnreadOnly); err != nil {
		return NotificationsParams{}, errs.NewValueIsInvalidErrorWithCause("unreadOnly", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", c.QueryParams(), &params.Limit); err != nil {
		return NotificationsParams{}, errs.NewValueIsInvalidErrorWithCause("limit", err)
	}
	return params, nil
}

func (p NotificationsParams) values() (unreadOnly bool, limit int) {
	if p.UnreadOnly != nil {
		unreadOnly = *p.UnreadOnly
	}
	if p.Limit != nil {
		limit = *p.Limit
	}
	return unreadOnly, limit
}
