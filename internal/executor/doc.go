// Package executor выполняет flow.
//
// Executor проходит узлы flow строго по порядку, для каждого узла
// выбирает реализацию из steps.Registry, пишет журнал выполнения и
// финализирует ровно один domain.ExecutionResult.
//
// Ход выполнения наблюдается через события (Event): записи журнала,
// старт и завершение узлов, итоговый результат. Потребители:
//   - Observer — колбэки OnLog / OnNodeStart / OnNodeComplete
//   - Stream — канал событий, последним приходит результат
//   - Config.Sinks — постоянные приёмники (например, публикация в RabbitMQ)
//
// Первая ошибка узла останавливает run: status=error, следующие узлы
// не выполняются.
package executor
