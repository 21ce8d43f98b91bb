package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shaiso/Flowcraft/internal/activity"
	"github.com/shaiso/Flowcraft/internal/engine"
	"github.com/shaiso/Flowcraft/internal/graph"
	"github.com/shaiso/Flowcraft/internal/lineage"
	"github.com/shaiso/Flowcraft/internal/repo"
)

// ErrorCode — код ошибки API.
type ErrorCode string

const (
	ErrCodeBadRequest    ErrorCode = "BAD_REQUEST"
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeConflict      ErrorCode = "CONFLICT"
	ErrCodeInvalidState  ErrorCode = "INVALID_STATE"
	ErrCodeRunInProgress ErrorCode = "RUN_IN_PROGRESS"
	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// ErrorResponse — структура ответа с ошибкой.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail — детали ошибки.
type ErrorDetail struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// DataResponse — структура успешного ответа.
type DataResponse struct {
	Data any `json:"data"`
}

// ListResponse — структура ответа со списком.
type ListResponse struct {
	Data  any `json:"data"`
	Total int `json:"total"`
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

// Created отправляет ответ о создании ресурса.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, DataResponse{Data: data})
}

// Accepted отправляет ответ о принятой в работу операции (202).
func Accepted(w http.ResponseWriter, data any) {
	JSON(w, http.StatusAccepted, DataResponse{Data: data})
}

// NoContent отправляет ответ без тела (204).
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// List отправляет ответ со списком.
func List(w http.ResponseWriter, data any, total int) {
	JSON(w, http.StatusOK, ListResponse{Data: data, Total: total})
}

// Error отправляет ответ с ошибкой.
func Error(w http.ResponseWriter, status int, code ErrorCode, message string) {
	JSON(w, status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// BadRequest отправляет ошибку 400.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// NotFound отправляет ошибку 404.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// Conflict отправляет ошибку 409.
func Conflict(w http.ResponseWriter, message string) {
	Error(w, http.StatusConflict, ErrCodeConflict, message)
}

// InvalidState отправляет ошибку 422.
func InvalidState(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnprocessableEntity, ErrCodeInvalidState, message)
}

// InternalError отправляет ошибку 500. Подробности только в логе.
func InternalError(w http.ResponseWriter, logger *slog.Logger, err error) {
	logger.Error("internal error", "error", err)
	Error(w, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
}

// errorMapping — соответствие sentinel-ошибки HTTP ответу.
type errorMapping struct {
	target error
	status int
	code   ErrorCode
}

// knownErrors проверяются по порядку через errors.Is.
var knownErrors = []errorMapping{
	{repo.ErrNotFound, http.StatusNotFound, ErrCodeNotFound},
	{graph.ErrNodeNotFound, http.StatusNotFound, ErrCodeNotFound},
	{repo.ErrAlreadyExists, http.StatusConflict, ErrCodeConflict},
	{engine.ErrRunInProgress, http.StatusConflict, ErrCodeRunInProgress},
	{graph.ErrCycleDetected, http.StatusBadRequest, ErrCodeBadRequest},
	{graph.ErrInvalidDocument, http.StatusBadRequest, ErrCodeBadRequest},
	{lineage.ErrNotAncestor, http.StatusUnprocessableEntity, ErrCodeInvalidState},
	{lineage.ErrUnknownField, http.StatusUnprocessableEntity, ErrCodeInvalidState},
	{activity.ErrInvalidConfig, http.StatusUnprocessableEntity, ErrCodeInvalidState},
	{activity.ErrActivityNotFound, http.StatusUnprocessableEntity, ErrCodeInvalidState},
}

// HandleError пишет ответ для err и возвращает true; для nil — false.
// notFoundMsg заменяет текст ошибки в ответе 404, если задан.
// Неизвестные ошибки — 500.
func HandleError(w http.ResponseWriter, logger *slog.Logger, err error, notFoundMsg string) bool {
	if err == nil {
		return false
	}

	for _, m := range knownErrors {
		if !errors.Is(err, m.target) {
			continue
		}
		msg := err.Error()
		if m.status == http.StatusNotFound && notFoundMsg != "" {
			msg = notFoundMsg
		}
		Error(w, m.status, m.code, msg)
		return true
	}

	InternalError(w, logger, err)
	return true
}
