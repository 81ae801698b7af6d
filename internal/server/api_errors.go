package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	cartapp "github.com/Apurer/canteen-orders/internal/domains/cart/application"
	cartports "github.com/Apurer/canteen-orders/internal/domains/cart/ports"
	deadlineapp "github.com/Apurer/canteen-orders/internal/domains/deadlines/application"
	deadlinedomain "github.com/Apurer/canteen-orders/internal/domains/deadlines/domain"
	deadlineports "github.com/Apurer/canteen-orders/internal/domains/deadlines/ports"
	menuapp "github.com/Apurer/canteen-orders/internal/domains/menu/application"
	menudomain "github.com/Apurer/canteen-orders/internal/domains/menu/domain"
	menuports "github.com/Apurer/canteen-orders/internal/domains/menu/ports"
	orderapp "github.com/Apurer/canteen-orders/internal/domains/orders/application"
	orderdomain "github.com/Apurer/canteen-orders/internal/domains/orders/domain"
	orderports "github.com/Apurer/canteen-orders/internal/domains/orders/ports"
	userapp "github.com/Apurer/canteen-orders/internal/domains/users/application"
	userports "github.com/Apurer/canteen-orders/internal/domains/users/ports"
	apierrors "github.com/Apurer/canteen-orders/internal/shared/errors"
)

// Problem types specific to ordering.
const (
	TypeInsufficientAvailability = "/problems/insufficient-availability"
	TypeDeadlinePassed           = "/problems/deadline-passed"
	TypeDuplicateOrder           = "/problems/duplicate-order"
	TypeInvalidState             = "/problems/invalid-state"
)

var responder = apierrors.NewChainedResponder("",
	mapAvailabilityError,
	mapConflictError,
	mapDeadlineError,
	mapStateError,
	mapForbiddenError,
	mapNotFoundError,
	mapValidationError,
)

// respondProblem maps a ProblemDetail through the shared responder.
func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	responder.Respond(c, problem)
}

// respondError sends err through the domain mappers; unmapped errors become 500.
func respondError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	responder.RespondError(c, err)
}

func respondBadRequest(c *gin.Context, err error) {
	respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
}

func mapAvailabilityError(err error) (apierrors.ProblemDetail, bool) {
	var shortage *menudomain.InsufficientAvailabilityError
	if !errors.As(err, &shortage) {
		return apierrors.ProblemDetail{}, false
	}
	return apierrors.ProblemDetail{
		Type:   TypeInsufficientAvailability,
		Title:  "Insufficient Availability",
		Status: http.StatusConflict,
		Detail: shortage.Error(),
	}.WithExtension("shortfalls", shortage.Shortfalls), true
}

func mapConflictError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, orderdomain.ErrDuplicateOrder):
		return apierrors.ProblemDetail{
			Type:   TypeDuplicateOrder,
			Title:  "Duplicate Order",
			Status: http.StatusConflict,
			Detail: err.Error(),
		}, true
	case errors.Is(err, menuports.ErrEntryExists):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapDeadlineError(err error) (apierrors.ProblemDetail, bool) {
	if !errors.Is(err, deadlinedomain.ErrDeadlinePassed) {
		return apierrors.ProblemDetail{}, false
	}
	return apierrors.ProblemDetail{
		Type:   TypeDeadlinePassed,
		Title:  "Deadline Passed",
		Status: http.StatusUnprocessableEntity,
		Detail: err.Error(),
	}, true
}

func mapStateError(err error) (apierrors.ProblemDetail, bool) {
	if errors.Is(err, orderdomain.ErrNotEditable) || errors.Is(err, orderdomain.ErrNotCancellable) {
		return apierrors.ProblemDetail{
			Type:   TypeInvalidState,
			Title:  "Invalid Order State",
			Status: http.StatusUnprocessableEntity,
			Detail: err.Error(),
		}, true
	}
	return apierrors.ProblemDetail{}, false
}

func mapForbiddenError(err error) (apierrors.ProblemDetail, bool) {
	if errors.Is(err, orderapp.ErrForbidden) {
		return apierrors.ErrForbidden.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapNotFoundError(err error) (apierrors.ProblemDetail, bool) {
	if errors.Is(err, orderports.ErrNotFound) ||
		errors.Is(err, menuports.ErrNotFound) ||
		errors.Is(err, menuports.ErrDishNotFound) ||
		errors.Is(err, deadlineports.ErrNotFound) ||
		errors.Is(err, userports.ErrNotFound) ||
		errors.Is(err, cartports.ErrNotFound) {
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapValidationError(err error) (apierrors.ProblemDetail, bool) {
	if errors.Is(err, orderapp.ErrInvalidInput) ||
		errors.Is(err, cartapp.ErrInvalidInput) ||
		errors.Is(err, menuapp.ErrInvalidInput) ||
		errors.Is(err, deadlineapp.ErrInvalidInput) ||
		errors.Is(err, userapp.ErrInvalidInput) {
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}
