package translation

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"

	"github.com/lehigh-university-libraries/imgtranslate/internal/models"
	"github.com/lehigh-university-libraries/imgtranslate/internal/normalize"
	"github.com/lehigh-university-libraries/imgtranslate/internal/providers"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed result.schema.json
var resultSchemaJSON string

var (
	compileOnce       sync.Once
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error

	fencedBlock = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)```")
)

// ParseResult turns raw model output into a TranslationResult. The whole
// text is tried as JSON first, then the contents of a fenced code block,
// then the span from the first '{' to its matching '}'. The last step is
// lossy when the surrounding prose itself contains braces.
//
// Every target is normalized. A missing detectedLanguage falls back to the
// hint, or Unknown in auto mode.
func ParseResult(raw, hint string) (*models.TranslationResult, error) {
	value, err := decodeCandidates(raw)
	if err != nil {
		return nil, &providers.Error{Kind: providers.KindMalformedResponse, Op: "parse", Err: err}
	}

	schema, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	if err := schema.Validate(value); err != nil {
		return nil, &providers.Error{
			Kind: providers.KindMalformedResponse,
			Op:   "parse",
			Err:  fmt.Errorf("schema validation failed: %w", err),
		}
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("normalize result JSON: %w", err)
	}
	var result models.TranslationResult
	if err := json.Unmarshal(normalized, &result); err != nil {
		return nil, &providers.Error{Kind: providers.KindMalformedResponse, Op: "parse", Err: err}
	}

	for i := range result.Segments {
		result.Segments[i].Target = normalize.Text(strings.TrimSpace(result.Segments[i].Target))
	}
	if result.Segments == nil {
		result.Segments = []models.Segment{}
	}
	if strings.TrimSpace(result.DetectedLanguage) == "" {
		result.DetectedLanguage = fallbackLanguage(hint)
	}

	return &result, nil
}

func decodeCandidates(raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("response is empty")
	}

	candidates := []string{raw}
	if m := fencedBlock.FindStringSubmatch(raw); m != nil {
		candidates = append(candidates, strings.TrimSpace(m[1]))
	}
	if obj, ok := firstObject(raw); ok {
		candidates = append(candidates, obj)
	}

	var lastErr error
	for _, c := range candidates {
		value, err := decodeObject(c)
		if err == nil {
			return value, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("no JSON object found in response: %w", lastErr)
}

func decodeObject(s string) (any, error) {
	decoder := json.NewDecoder(bytes.NewReader([]byte(s)))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, errors.New("response contains trailing content")
	}
	if _, ok := value.(map[string]any); !ok {
		return nil, errors.New("response is not a JSON object")
	}
	return value, nil
}

// firstObject returns the first '{' through its matching top-level '}',
// skipping braces inside JSON strings.
func firstObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020

		if err := compiler.AddResource("result.schema.json", strings.NewReader(resultSchemaJSON)); err != nil {
			compiledSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}

		schema, err := compiler.Compile("result.schema.json")
		if err != nil {
			compiledSchemaErr = fmt.Errorf("compile schema: %w", err)
			return
		}

		compiledSchema = schema
	})

	if compiledSchemaErr != nil {
		return nil, compiledSchemaErr
	}
	if compiledSchema == nil {
		return nil, fmt.Errorf("schema not initialized")
	}
	return compiledSchema, nil
}
