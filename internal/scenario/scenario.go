package scenario

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hjson/hjson-go/v4"
	"gopkg.in/yaml.v2"

	"github.com/cloud-ru/rentability-go/internal/calculations"
	"github.com/cloud-ru/rentability-go/pkg/utils"
)

// Поддерживаемые форматы файлов сценария
const (
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatHJSON = "hjson"
)

// FormatFromPath определяет формат по расширению файла
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".hjson":
		return FormatHJSON, nil
	default:
		return "", fmt.Errorf("неизвестный формат файла сценария: %s", path)
	}
}

// Load читает сценарий из файла JSON, YAML или HJSON
func Load(path string) (calculations.RentabilityInput, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return calculations.RentabilityInput{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return calculations.RentabilityInput{}, fmt.Errorf("не удалось прочитать сценарий: %w", err)
	}
	return Decode(data, format)
}

// Decode разбирает сценарий. YAML и HJSON приводятся к JSON, после чего
// декодируются в RentabilityInput; неизвестные поля считаются ошибкой.
func Decode(data []byte, format string) (calculations.RentabilityInput, error) {
	var in calculations.RentabilityInput

	var raw []byte
	switch format {
	case FormatJSON:
		raw = data
	case FormatYAML:
		var doc yamlNode
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return in, fmt.Errorf("ошибка разбора YAML: %w", err)
		}
		converted, err := normalizeValue(doc.value, "")
		if err != nil {
			return in, err
		}
		if raw, err = json.Marshal(converted); err != nil {
			return in, fmt.Errorf("ошибка преобразования YAML: %w", err)
		}
	case FormatHJSON:
		var doc interface{}
		opts := hjson.DefaultDecoderOptions()
		opts.UseJSONNumber = true
		if err := hjson.UnmarshalWithOptions(data, &doc, opts); err != nil {
			return in, fmt.Errorf("ошибка разбора HJSON: %w", err)
		}
		var err error
		if raw, err = json.Marshal(doc); err != nil {
			return in, fmt.Errorf("ошибка преобразования HJSON: %w", err)
		}
	default:
		return in, fmt.Errorf("неподдерживаемый формат: %s", format)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return in, fmt.Errorf("некорректный сценарий: %w", err)
	}
	return in, nil
}

// yamlNode - узел YAML-документа. Числа сохраняются исходным текстом
// (json.Number), чтобы десятичные значения не проходили через float64.
type yamlNode struct {
	value interface{}
}

// UnmarshalYAML реализует yaml.Unmarshaler
func (n *yamlNode) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var generic interface{}
	if err := unmarshal(&generic); err != nil {
		return err
	}

	switch value := generic.(type) {
	case map[interface{}]interface{}:
		var m map[string]*yamlNode
		if err := unmarshal(&m); err != nil {
			return err
		}
		n.value = m
	case []interface{}:
		var items []*yamlNode
		if err := unmarshal(&items); err != nil {
			return err
		}
		n.value = items
	case int, int64, uint64, float64:
		if f, ok := value.(float64); ok && !utils.IsFinite(f) {
			n.value = f
			return nil
		}
		var text string
		if err := unmarshal(&text); err != nil {
			return err
		}
		n.value = numberFromYAML(text, value)
	default:
		n.value = value
	}
	return nil
}

// numberFromYAML возвращает исходную запись числа, если она допустима в JSON.
// Формы YAML вроде 0x1F или 1_000 переводятся через разобранное значение.
func numberFromYAML(text string, parsed interface{}) json.Number {
	if json.Valid([]byte(text)) {
		return json.Number(text)
	}
	switch v := parsed.(type) {
	case int:
		return json.Number(strconv.Itoa(v))
	case int64:
		return json.Number(strconv.FormatInt(v, 10))
	case uint64:
		return json.Number(strconv.FormatUint(v, 10))
	default:
		return json.Number(strconv.FormatFloat(v.(float64), 'f', -1, 64))
	}
}

// normalizeValue разворачивает дерево yamlNode в значения для encoding/json
// и отклоняет бесконечности и NaN
func normalizeValue(v interface{}, path string) (interface{}, error) {
	switch value := v.(type) {
	case map[string]*yamlNode:
		out := make(map[string]interface{}, len(value))
		for key, item := range value {
			converted, err := normalizeValue(nodeValue(item), joinPath(path, key))
			if err != nil {
				return nil, err
			}
			out[key] = converted
		}
		return out, nil
	case []*yamlNode:
		out := make([]interface{}, len(value))
		for i, item := range value {
			converted, err := normalizeValue(nodeValue(item), fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out[i] = converted
		}
		return out, nil
	case float64:
		if !utils.IsFinite(value) {
			return nil, fmt.Errorf("поле %s: значение должно быть конечным числом", path)
		}
		return value, nil
	default:
		return value, nil
	}
}

func nodeValue(n *yamlNode) interface{} {
	if n == nil {
		return nil
	}
	return n.value
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
