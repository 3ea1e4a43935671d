// Package engine содержит всё, что нужно для понимания документа flow.
//
// Включает:
//   - parser.go    — импорт/экспорт документа (JSON, YAML, извлечение из текста)
//   - schema.go    — JSON Schema документа flow (gojsonschema)
//   - validate.go  — строгая валидация flow и конфигураций узлов (validator)
//   - condition.go — операторы condition узла и доступ к полям по пути
//   - schedule.go  — cron-выражения trigger узлов
//   - template.go  — рендеринг Go templates ({{ .Data.field }})
//
// Engine ничего не выполняет: выполнением занимается пакет executor,
// а поведение отдельных типов узлов реализовано в пакете steps.
package engine
