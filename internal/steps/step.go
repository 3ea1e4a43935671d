package steps

import (
	"context"
	"errors"
	"fmt"

	"github.com/shaiso/FlowMaster/internal/domain"
	"github.com/shaiso/FlowMaster/internal/engine"
)

// Ошибки шагов.
var (
	// ErrStepNotFound — для типа узла нет реализации.
	// Текст совпадает с сообщением об ошибке неизвестного типа узла.
	ErrStepNotFound = errors.New("unknown node type")

	// ErrStepCancelled — выполнение шага отменено.
	ErrStepCancelled = errors.New("step execution cancelled")

	// ErrAPIRequest — запрос api узла не удался.
	ErrAPIRequest = errors.New("api request failed")
)

// Step — интерфейс для типов узлов.
//
// Каждый тип узла (trigger, api, process, condition, output) реализует этот интерфейс.
type Step interface {
	// Type возвращает тип узла.
	Type() domain.NodeType

	// Execute выполняет узел и возвращает результат.
	// Шаг должен проверять ctx.Done() для отмены.
	Execute(ctx context.Context, req *Request) (*Response, error)
}

// EmitFunc — приёмник записей журнала, которые шаг пишет по ходу работы.
type EmitFunc func(level domain.LogLevel, message string, data any)

// Request — входные данные для выполнения узла.
type Request struct {
	// Node — выполняемый узел. Конфигурация ещё не разобрана:
	// шаг сам раскладывает и валидирует её.
	Node *domain.Node

	// PreviousData — данные, переданные предыдущим узлом. nil для первого узла.
	PreviousData any

	// Output — накопленный к этому моменту текстовый вывод.
	Output string

	// TemplateContext — контекст шаблонов с данными выполненных узлов.
	TemplateContext *engine.Context

	// Emit — приёмник журнала. Может быть nil.
	Emit EmitFunc
}

// Response — результат выполнения узла.
type Response struct {
	// Data — новое значение previousData для следующего узла.
	Data any

	// Output — новое значение накопленного вывода.
	Output string
}

// NewRequest создаёт новый Request.
func NewRequest(node *domain.Node, previousData any, output string, tmplCtx *engine.Context, emit EmitFunc) *Request {
	return &Request{
		Node:            node,
		PreviousData:    previousData,
		Output:          output,
		TemplateContext: tmplCtx,
		Emit:            emit,
	}
}

// Pass возвращает Response с новыми данными и неизменным выводом.
func (r *Request) Pass(data any) *Response {
	return &Response{
		Data:   data,
		Output: r.Output,
	}
}

// Info пишет информационную запись журнала.
func (r *Request) Info(message string, data any) {
	r.emit(domain.LogLevelInfo, message, data)
}

// Success пишет запись об успехе.
func (r *Request) Success(message string, data any) {
	r.emit(domain.LogLevelSuccess, message, data)
}

// Warning пишет предупреждение.
func (r *Request) Warning(message string, data any) {
	r.emit(domain.LogLevelWarning, message, data)
}

func (r *Request) emit(level domain.LogLevel, message string, data any) {
	if r.Emit != nil {
		r.Emit(level, message, data)
	}
}

// templateContext возвращает контекст шаблонов.
// Если он не задан, собирает минимальный контекст из PreviousData.
func (r *Request) templateContext() *engine.Context {
	if r.TemplateContext != nil {
		return r.TemplateContext
	}
	ctx := engine.NewContext(nil)
	ctx.SetData(r.PreviousData)
	return ctx
}

// checkContext возвращает ErrStepCancelled, если ctx уже отменён.
func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrStepCancelled, ctx.Err())
	default:
		return nil
	}
}
