// Package api содержит HTTP API сервер.
//
// Структура:
//   - handler.go           — Handler с DI (executor, logger)
//   - routes.go            — регистрация маршрутов
//   - middleware.go        — middleware (logging, recovery)
//   - response.go          — JSON-ответы и ошибки RFC 7807 (problem+json)
//   - dto.go               — Data Transfer Objects
//   - flow_handler.go      — проверка и импорт документов flow
//   - execution_handler.go — выполнение flow, поток событий, артефакт
//
// Состояние между запросами не хранится: каждый запрос несёт документ flow.
package api
