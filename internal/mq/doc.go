// Package mq публикует события выполнения flow в RabbitMQ и читает их обратно.
//
// Структура:
//   - connection.go — управление соединением с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — объявление exchanges, queues, bindings
//   - publisher.go  — публикация сообщений
//   - sink.go       — EventSink, приёмник событий executor
//   - consumer.go   — потребление сообщений (flowmaster watch, watch --results)
//
// Типы сообщений:
//   - execution.log           — запись журнала
//   - execution.node_start    — узел начал выполняться
//   - execution.node_complete — узел завершился
//   - execution.result        — итог run
//
// Exchanges:
//   - flowmaster.executions — события выполнения (topic)
//   - flowmaster.dlq        — dead letter queue
package mq
