package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var payloadValidator = newPayloadValidator()

func newPayloadValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ParseEvaluation extracts a validated evaluation payload from the model's raw
// text reply. Models do not reliably honour "emit pure JSON" instructions, so
// the reply may carry surrounding prose, code fences, and the occasional
// missing separator; each recovery step is narrow and named rather than a
// general-purpose lenient parse, to keep failure attribution clear.
func ParseEvaluation(raw string) (EvaluationResult, error) {
	text := stripCodeFence(strings.TrimSpace(raw))

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return EvaluationResult{}, ErrNoStructuredData
	}
	text = repairJSON(text[start : end+1])

	var result EvaluationResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return EvaluationResult{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if err := payloadValidator.Struct(result); err != nil {
		var violations validator.ValidationErrors
		if !errors.As(err, &violations) {
			return EvaluationResult{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}

		fields := make([]string, 0, len(violations))
		for _, violation := range violations {
			fields = append(fields, payloadFieldPath(violation))
		}
		return EvaluationResult{}, &SchemaError{Fields: fields}
	}

	return result, nil
}

// ParseQuestions extracts the generated question list. A count mismatch is a
// recovery case, not a failure: extra entries are truncated and missing ones
// padded with a role-specific filler, so a partial set never blocks interview
// creation.
func ParseQuestions(raw string, count int, role string) ([]string, error) {
	text := stripCodeFence(strings.TrimSpace(raw))

	var questions []string
	if err := json.Unmarshal([]byte(text), &questions); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if len(questions) > count {
		questions = questions[:count]
	}
	for len(questions) < count {
		questions = append(questions, fmt.Sprintf("Describe your experience with %s responsibilities.", role))
	}

	return questions, nil
}

// stripCodeFence removes a surrounding markdown fence, including the language
// tag on the opening line.
func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}

	if newline := strings.Index(text, "\n"); newline != -1 {
		text = text[newline+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")

	return strings.TrimSpace(text)
}

func payloadFieldPath(violation validator.FieldError) string {
	namespace := violation.Namespace()
	if dot := strings.Index(namespace, "."); dot != -1 {
		return namespace[dot+1:]
	}
	return namespace
}
