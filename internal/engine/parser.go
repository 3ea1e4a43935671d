package engine

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/shaiso/FlowMaster/internal/domain"
)

// Parse разбирает JSON документ flow.
//
// Документ сначала проверяется по схеме (name + steps), затем
// раскладывается в domain.Flow. Любая ошибка — *ValidationError.
func Parse(data []byte) (*domain.Flow, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, NewValidationError("", "", fmt.Sprintf("%s: %v", ErrInvalidJSON, err), ErrInvalidJSON)
	}

	if err := validateDocument(doc); err != nil {
		return nil, err
	}

	var flow domain.Flow
	if err := json.Unmarshal(data, &flow); err != nil {
		return nil, NewValidationError("", "", fmt.Sprintf("%s: %v", ErrInvalidDocument, err), ErrInvalidDocument)
	}

	return &flow, nil
}

// Extract извлекает JSON объект из произвольного текста.
//
// Если в тексте есть фрагмент от первой "{" до последней "}",
// возвращается он; иначе — весь текст без изменений.
// Так импортируются .txt файлы, внутри которых лежит JSON.
func Extract(text []byte) []byte {
	first := bytes.IndexByte(text, '{')
	last := bytes.LastIndexByte(text, '}')
	if first < 0 || last <= first {
		return text
	}
	return text[first : last+1]
}

// Import разбирает содержимое импортируемого файла: Extract + Parse.
func Import(text []byte) (*domain.Flow, error) {
	return Parse(Extract(text))
}

// ParseYAML разбирает YAML документ flow.
//
// YAML приводится к JSON и проходит ту же проверку, что и Parse.
func ParseYAML(data []byte) (*domain.Flow, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, NewValidationError("", "", fmt.Sprintf("%s: %v", ErrInvalidYAML, err), ErrInvalidYAML)
	}

	jsonData, err := json.Marshal(doc)
	if err != nil {
		return nil, NewValidationError("", "", fmt.Sprintf("%s: %v", ErrInvalidYAML, err), ErrInvalidYAML)
	}

	return Parse(jsonData)
}

// Export сериализует flow в JSON с отступом в 2 пробела.
func Export(flow *domain.Flow) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(flow); err != nil {
		return nil, fmt.Errorf("encode flow: %w", err)
	}

	// Encoder добавляет перевод строки в конце
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// ExportYAML сериализует flow в YAML.
func ExportYAML(flow *domain.Flow) ([]byte, error) {
	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(flow); err != nil {
		return nil, fmt.Errorf("encode flow: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode flow: %w", err)
	}

	return buf.Bytes(), nil
}
