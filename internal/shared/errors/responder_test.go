package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSoldOut = errors.New("sold out")

func serve(t *testing.T, r *ChainedResponder, err error) (int, ProblemDetail) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/orders", func(c *gin.Context) { r.RespondError(c, err) })
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))
	require.Equal(t, ContentTypeProblemJSON, rec.Header().Get("Content-Type"))
	var problem ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	return rec.Code, problem
}

func TestChainedResponder_UsesFirstMatchingMapper(t *testing.T) {
	r := NewChainedResponder("https://canteen.example",
		func(err error) (ProblemDetail, bool) {
			if errors.Is(err, errSoldOut) {
				return ErrConflict.WithDetail(err.Error()).WithExtension("dishId", 7), true
			}
			return ProblemDetail{}, false
		},
		func(error) (ProblemDetail, bool) { return ErrValidation, true },
	)

	code, problem := serve(t, r, errSoldOut)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "https://canteen.example"+TypeConflict, problem.Type)
	assert.Equal(t, "/orders", problem.Instance)
	assert.EqualValues(t, 7, problem.Extensions["dishId"])
}

func TestChainedResponder_HidesUnmappedErrors(t *testing.T) {
	r := NewChainedResponder("")
	code, problem := serve(t, r, errors.New("pq: relation \"orders\" does not exist"))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, TypeInternal, problem.Type)
	assert.NotContains(t, problem.Detail, "pq:")
}

func TestChainedResponder_PassesProblemsThrough(t *testing.T) {
	r := NewChainedResponder("")
	code, problem := serve(t, r, ErrForbidden.WithDetail("managers only"))
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "managers only", problem.Detail)
}

func TestWithExtension_DoesNotShareMaps(t *testing.T) {
	base := ErrConflict.WithExtension("a", 1)
	derived := base.WithExtension("b", 2)
	assert.Len(t, base.Extensions, 1)
	assert.Len(t, derived.Extensions, 2)
}
