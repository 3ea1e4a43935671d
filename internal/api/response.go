package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/moogar0880/problems"

	"github.com/shaiso/FlowMaster/internal/artifact"
	"github.com/shaiso/FlowMaster/internal/engine"
	"github.com/shaiso/FlowMaster/internal/executor"
)

// Типы problem-документов.
const (
	ProblemValidation = "validation_error"
	ProblemEmptyFlow  = "empty_flow"
	ProblemNoOutput   = "no_output"
	ProblemTooLarge   = "request_too_large"
	ProblemInternal   = "internal_error"
)

// DataResponse — структура успешного ответа.
type DataResponse struct {
	Data any `json:"data"`
}

// JSON отправляет JSON ответ.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Success отправляет успешный ответ с данными.
func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, DataResponse{Data: data})
}

// Problem отправляет ошибку в формате RFC 7807.
func Problem(w http.ResponseWriter, r *http.Request, status int, problemType, detail string) {
	problem := problems.NewStatusProblem(status).
		WithInstance(r.URL.Path).
		WithType(problemType).
		WithDetail(detail)

	w.Header().Set("Content-Type", problems.ProblemMediaType)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(problem)
}

// BadRequest отправляет ошибку 400.
func BadRequest(w http.ResponseWriter, r *http.Request, detail string) {
	Problem(w, r, http.StatusBadRequest, ProblemValidation, detail)
}

// InternalError отправляет ошибку 500.
func InternalError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	logger.Error("internal error", "path", r.URL.Path, "error", err)
	Problem(w, r, http.StatusInternalServerError, ProblemInternal, "internal server error")
}

// HandleError преобразует ошибку в problem-ответ.
// Возвращает false, если err == nil.
func HandleError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) bool {
	if err == nil {
		return false
	}

	var tooLarge *http.MaxBytesError

	switch {
	case engine.IsValidationError(err):
		BadRequest(w, r, err.Error())
	case errors.Is(err, executor.ErrEmptyFlow):
		Problem(w, r, http.StatusUnprocessableEntity, ProblemEmptyFlow, err.Error())
	case errors.Is(err, artifact.ErrNoOutput):
		Problem(w, r, http.StatusUnprocessableEntity, ProblemNoOutput, err.Error())
	case errors.As(err, &tooLarge):
		Problem(w, r, http.StatusRequestEntityTooLarge, ProblemTooLarge, err.Error())
	default:
		InternalError(w, r, logger, err)
	}

	return true
}
