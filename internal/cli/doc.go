// Package cli реализует инструмент командной строки FlowMaster.
//
// # Обзор
//
// CLI работает в двух режимах:
//   - локально: validate, export и run выполняют flow в процессе
//     через internal/engine и internal/executor;
//   - через сервер: remote validate и remote run обращаются к HTTP API,
//     watch читает события выполнения из RabbitMQ, watch --results
//     разбирает durable очередь executions.results.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для FlowMaster API. Инкапсулирует HTTP-запросы,
// разбор ответов (DataResponse) и ошибок RFC 7807 (APIError).
//
//	client := cli.NewClient("http://localhost:8080")
//	result, err := client.Execute(doc, "application/json")
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) и строки журнала — по умолчанию
//   - JSON (json.Encoder) — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: flowmaster run flow.json --json | jq .status
//
// ## Commands
//
// Каждая команда создаётся через фабричную функцию (NewRunCmd и т.д.),
// принимающую clientFn и outputFn — замыкания для ленивого создания
// Client и Output после парсинга PersistentFlags.
// Логгер команды берут из контекста (telemetry.FromContext).
package cli
