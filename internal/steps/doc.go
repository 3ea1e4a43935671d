// Package steps содержит реализации типов узлов flow.
//
// # Обзор
//
// Каждый шаг:
//   - Раскладывает и валидирует конфигурацию своего узла
//   - Выполняет действие над данными предыдущего узла
//   - Пишет записи журнала через Request.Emit
//   - Возвращает данные для следующего узла и накопленный вывод
//
// # Интерфейс Step
//
//	type Step interface {
//	    Type() domain.NodeType
//	    Execute(ctx context.Context, req *Request) (*Response, error)
//	}
//
// # Registry
//
//	registry := steps.DefaultRegistry()  // trigger, api, process, condition, output
//	step, err := registry.Get(node.Type)
//	if err != nil {
//	    // unknown node type: <type>
//	}
//
// Реальные HTTP запросы включаются заменой api шага:
//
//	registry.Register(steps.NewAPIStep(http.DefaultTransport))
//
// # Типы узлов
//
//   - trigger.go   — TriggerStep, фиксирует режим запуска
//   - api.go       — APIStep, HTTP запрос через http.RoundTripper
//   - transport.go — SimulatedTransport, ответ без сети
//   - process.go   — ProcessStep, format_txt и конверты действий
//   - condition.go — ConditionStep, вычисление условия
//   - output.go    — OutputStep, итоговый вывод
//   - latency.go   — Latency, симулированная задержка узла
package steps
