package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// Exchanges — имена обменников.
const (
	ExchangeExecutions Exchange = "flowmaster.executions"
	ExchangeDLQ        Exchange = "flowmaster.dlq"
)

// Queues — имена очередей.
const (
	QueueExecutionResults Queue = "executions.results"
	QueueDLQExecutions    Queue = "dlq.executions"
)

// Routing keys.
//
// События выполнения публикуются с ключом "execution.<kind>",
// например execution.log или execution.result.
const (
	RoutingKeyAllEvents RoutingKey = "execution.#"
	RoutingKeyResult    RoutingKey = "execution.result"
	RoutingKeyDLQ       RoutingKey = "executions"
)

// EventRoutingKey возвращает ключ маршрутизации для вида события.
func EventRoutingKey(kind string) RoutingKey {
	return RoutingKey("execution." + kind)
}

// SetupTopology объявляет обменники, очереди и привязки.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		// 1. Создаём exchanges
		if err := declareExchanges(ch); err != nil {
			return err
		}

		// 2. Создаём queues
		if err := declareQueues(ch); err != nil {
			return err
		}

		// 3. Привязываем queues к exchanges
		return bindQueues(ch)
	})
}

// declareExchanges создаёт обменники.
func declareExchanges(ch *amqp.Channel) error {
	exchanges := []struct {
		name Exchange
		kind string
	}{
		{ExchangeExecutions, amqp.ExchangeTopic},
		{ExchangeDLQ, amqp.ExchangeDirect},
	}

	for _, ex := range exchanges {
		err := ch.ExchangeDeclare(
			string(ex.name), // name
			ex.kind,         // type
			true,            // durable
			false,           // auto-deleted
			false,           // internal
			false,           // no-wait
			nil,             // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ex.name, err)
		}
	}

	return nil
}

// declareQueues создаёт очереди.
func declareQueues(ch *amqp.Channel) error {
	dlqArgs := amqp.Table{
		"x-dead-letter-exchange":    string(ExchangeDLQ),
		"x-dead-letter-routing-key": string(RoutingKeyDLQ),
	}

	queues := []struct {
		name Queue
		args amqp.Table
	}{
		// executions.results — итоги run, с DLQ для необработанных
		{QueueExecutionResults, dlqArgs},

		// dlq.executions — сама DLQ очередь
		{QueueDLQExecutions, nil},
	}

	for _, q := range queues {
		_, err := ch.QueueDeclare(
			string(q.name), // name
			true,           // durable
			false,          // delete when unused
			false,          // exclusive
			false,          // no-wait
			q.args,         // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", q.name, err)
		}
	}

	return nil
}

// bindQueues привязывает очереди к обменникам.
func bindQueues(ch *amqp.Channel) error {
	bindings := []struct {
		queue      Queue
		routingKey RoutingKey
		exchange   Exchange
	}{
		{QueueExecutionResults, RoutingKeyResult, ExchangeExecutions},
		{QueueDLQExecutions, RoutingKeyDLQ, ExchangeDLQ},
	}

	for _, b := range bindings {
		err := ch.QueueBind(
			string(b.queue),      // queue name
			string(b.routingKey), // routing key
			string(b.exchange),   // exchange
			false,                // no-wait
			nil,                  // arguments
		)
		if err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.exchange, err)
		}
	}

	return nil
}

// DeclareWatchQueue создаёт временную очередь, получающую все события выполнения.
// Очередь эксклюзивна и удаляется при закрытии соединения.
func DeclareWatchQueue(ctx context.Context, conn *Connection) (Queue, error) {
	var name Queue

	err := conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		q, err := ch.QueueDeclare(
			"",    // name (генерирует сервер)
			false, // durable
			true,  // delete when unused
			true,  // exclusive
			false, // no-wait
			nil,   // arguments
		)
		if err != nil {
			return fmt.Errorf("declare watch queue: %w", err)
		}

		if err := ch.QueueBind(q.Name, string(RoutingKeyAllEvents), string(ExchangeExecutions), false, nil); err != nil {
			return fmt.Errorf("bind watch queue: %w", err)
		}

		name = Queue(q.Name)
		return nil
	})

	return name, err
}

// TopologyInfo возвращает описание топологии для логирования.
func TopologyInfo() string {
	return `
  FlowMaster RabbitMQ Topology:

    flowmaster.executions (topic)
    ├── executions.results [routing: execution.result]
    │       Consumer: flowmaster watch --results
    │       DLQ: dlq.executions
    └── <watch queue> [routing: execution.#]
            Consumer: flowmaster watch

    flowmaster.dlq (direct)
    └── dlq.executions [routing: executions]
            Manual processing
  `
}
