package server

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	menumapper "github.com/Apurer/canteen-orders/internal/domains/menu/adapters/http/mapper"
	userdomain "github.com/Apurer/canteen-orders/internal/domains/users/domain"
	userports "github.com/Apurer/canteen-orders/internal/domains/users/ports"
	apierrors "github.com/Apurer/canteen-orders/internal/shared/errors"
)

// HeaderUserID carries the internal user id of the caller. The chat layer in
// front of this API authenticates the account and sets it.
const HeaderUserID = "X-User-ID"

const actorKey = "canteen.actor"

// requireUser resolves the caller and rejects unknown or blocked accounts.
func requireUser(users userports.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderUserID))
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			respondProblem(c, apierrors.ErrUnauthorized.WithDetail(HeaderUserID+" header must carry a user id"))
			c.Abort()
			return
		}
		user, err := users.Get(c.Request.Context(), id)
		if errors.Is(err, userports.ErrNotFound) {
			respondProblem(c, apierrors.ErrUnauthorized.WithDetail("unknown user"))
			c.Abort()
			return
		}
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}
		if user.Blocked {
			respondProblem(c, apierrors.ErrForbidden.WithDetail("user is blocked"))
			c.Abort()
			return
		}
		c.Set(actorKey, user)
		c.Next()
	}
}

// requireManager must run after requireUser.
func requireManager() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !actor(c).IsManager() {
			respondProblem(c, apierrors.ErrForbidden.WithDetail("manager role required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

func actor(c *gin.Context) *userdomain.User {
	if v, ok := c.Get(actorKey); ok {
		if user, ok := v.(*userdomain.User); ok {
			return user
		}
	}
	return &userdomain.User{}
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(name+" must be a positive integer"))
		return 0, false
	}
	return id, true
}

// optionalID parses an optional positive id from the query string.
func optionalID(c *gin.Context, name string) (*int64, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(name+" must be a positive integer"))
		return nil, false
	}
	return &id, true
}

func parseDate(raw string) (time.Time, error) {
	date, err := time.ParseInLocation(menumapper.DateLayout, strings.TrimSpace(raw), time.UTC)
	if err != nil {
		return time.Time{}, errors.New("date must look like YYYY-MM-DD")
	}
	return date, nil
}

// queryDate parses the date query parameter; required controls whether it may be absent.
func queryDate(c *gin.Context, required bool) (*time.Time, bool) {
	raw := strings.TrimSpace(c.Query("date"))
	if raw == "" {
		if required {
			respondProblem(c, apierrors.ErrBadRequest.WithDetail("date is required"))
			return nil, false
		}
		return nil, true
	}
	date, err := parseDate(raw)
	if err != nil {
		respondBadRequest(c, err)
		return nil, false
	}
	return &date, true
}
