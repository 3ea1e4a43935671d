// Package artifact сохраняет вывод run в текстовый файл.
package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shaiso/FlowMaster/internal/domain"
)

// DefaultName — имя артефакта для flow без имени.
const DefaultName = "output"

// ErrNoOutput — run не успешен или его вывод пуст.
var ErrNoOutput = errors.New("execution has no output")

// nameReplacer убирает из имени flow разделители путей.
var nameReplacer = strings.NewReplacer("/", "_", `\`, "_")

// Filename возвращает имя файла артефакта:
//
//	<flow.name>_<completedAt в unix ms>.txt
func Filename(flow *domain.Flow, result *domain.ExecutionResult) string {
	name := ""
	if flow != nil {
		name = strings.TrimSpace(flow.Name)
	}
	if name == "" {
		name = DefaultName
	}
	name = nameReplacer.Replace(name)

	return name + "_" + strconv.FormatInt(result.CompletedAt.UnixMilli(), 10) + ".txt"
}

// Content возвращает содержимое артефакта: вывод run без изменений.
func Content(result *domain.ExecutionResult) ([]byte, error) {
	if result == nil || !result.HasOutput() {
		return nil, ErrNoOutput
	}
	return []byte(result.Output), nil
}

// Write записывает артефакт в каталог dir и возвращает путь к файлу.
func Write(dir string, flow *domain.Flow, result *domain.ExecutionResult) (string, error) {
	content, err := Content(result)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}

	path := filepath.Join(dir, Filename(flow, result))
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}

	return path, nil
}
