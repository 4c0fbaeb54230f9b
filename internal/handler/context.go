package handler

import (
	"time"

	"precast-erp/internal/apperror"
	"precast-erp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// actorFrom reads the identity the auth middleware stored on the context.
func actorFrom(c *gin.Context) (service.Actor, error) {
	id, err := uuid.Parse(c.GetString("userID"))
	if err != nil {
		return service.Actor{}, apperror.ErrForbidden.WithMessage("missing user identity")
	}
	return service.Actor{ID: id, Role: c.GetString("userRole")}, nil
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "Invalid ID format")
		return uuid.Nil, false
	}
	return id, true
}

// queryUUID parses an optional uuid query parameter.
func queryUUID(c *gin.Context, key string) (*uuid.UUID, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperror.ErrInvalidInput.WithMessage("invalid %s", key)
	}
	return &id, nil
}

// queryDate parses an optional YYYY-MM-DD query parameter.
func queryDate(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	d, err := service.ParseDate(raw)
	if err != nil {
		return nil, apperror.ErrInvalidInput.WithMessage("invalid %s, expected YYYY-MM-DD", key)
	}
	t := time.Time(d)
	return &t, nil
}

// dayRange reads from/to query dates. to is widened to the end of its day
// so timestamp columns include the whole day.
func dayRange(c *gin.Context) (from, to *time.Time, err error) {
	if from, err = queryDate(c, "from"); err != nil {
		return nil, nil, err
	}
	if to, err = queryDate(c, "to"); err != nil {
		return nil, nil, err
	}
	if to != nil {
		end := to.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}
	return from, to, nil
}
