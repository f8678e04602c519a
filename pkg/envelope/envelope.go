// Package envelope writes the JSON envelopes every command emits on
// standard output: exactly one object per invocation, {"status":"ok",...}
// on success and {"status":"error","error","message","hint"} on failure.
package envelope

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/mnemoware/mnemo/pkg/embeddings"
	"github.com/mnemoware/mnemo/pkg/memory"
	"github.com/mnemoware/mnemo/pkg/memstore"
)

// Error codes surfaced to callers.
const (
	CodeMissingContent  = "missing_content"
	CodeMissingText     = "missing_text"
	CodeEmbeddingFailed = "embedding_failed"
	CodeInsertFailed    = "insert_failed"
	CodeNotFound        = "not_found"
	CodeUpdateFailed    = "update_failed"
	CodeUnexpected      = "unexpected_error"
)

// WriteOK emits a success envelope carrying the payload's fields.
func WriteOK(w io.Writer, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("payload is not a JSON object: %w", err)
	}
	fields["status"] = "ok"

	return write(w, fields)
}

// errorEnvelope is the failure shape; hint is omitted when empty.
type errorEnvelope struct {
	Status  string `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// WriteError emits an error envelope with an explicit code.
func WriteError(w io.Writer, code, message, hint string) error {
	return write(w, errorEnvelope{
		Status:  "error",
		Error:   code,
		Message: message,
		Hint:    hint,
	})
}

// WriteFailure classifies an operation error and emits its envelope.
func WriteFailure(w io.Writer, err error) error {
	code, hint := Classify(err)
	return WriteError(w, code, err.Error(), hint)
}

// Classify maps an operation error to its envelope code and hint.
func Classify(err error) (code, hint string) {
	switch {
	case errors.Is(err, memory.ErrEmptyContent):
		return CodeMissingContent, "Use --content 'your text'"
	case errors.Is(err, memory.ErrEmptyQuery):
		return CodeMissingText, "Use --text 'your query'"
	case errors.Is(err, embeddings.ErrEmbedding),
		errors.Is(err, embeddings.ErrUnreachable),
		errors.Is(err, embeddings.ErrNoProvider),
		errors.Is(err, embeddings.ErrMissingCredential):
		return CodeEmbeddingFailed, ""
	case errors.Is(err, memstore.ErrInsert):
		return CodeInsertFailed, ""
	case errors.Is(err, memstore.ErrNotFound):
		return CodeNotFound, ""
	case errors.Is(err, memstore.ErrUpdate):
		return CodeUpdateFailed, ""
	default:
		return CodeUnexpected, ""
	}
}

func write(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
