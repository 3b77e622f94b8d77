package commands

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"mp3tool/internal/console"
	"mp3tool/internal/metadata"
)

// OutcomeKind classifies what happened to one edit request entry.
type OutcomeKind int

const (
	Applied OutcomeKind = iota
	UnknownKey
	ReadOnlyKey
	InvalidValue
	SourceReadFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case Applied:
		return "applied"
	case UnknownKey:
		return "unknown key"
	case ReadOnlyKey:
		return "read-only key"
	case InvalidValue:
		return "invalid value"
	case SourceReadFailed:
		return "source read failed"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// Outcome is the result of one edit request entry.
type Outcome struct {
	Key  string
	Kind OutcomeKind
	Err  error
}

// SourceReadError reports an artwork source that could not be read. It aborts
// the edit before anything is saved.
type SourceReadError struct {
	Path string
	Err  error
}

func (e *SourceReadError) Error() string {
	return fmt.Sprintf("read artwork source %s: %v", e.Path, e.Err)
}

func (e *SourceReadError) Unwrap() error {
	return e.Err
}

// EditTags applies the edit request stored at requestPath to the file at path
// and saves it. Rejected entries are reported and skipped. The returned
// outcomes follow document order.
func (h *Handler) EditTags(path, requestPath string) ([]Outcome, error) {
	req, err := ReadEditRequest(requestPath)
	if err != nil {
		return nil, err
	}

	m, err := metadata.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	outcomes := make([]Outcome, 0, len(req))
	for _, entry := range req {
		outcome := h.apply(m, entry)
		outcomes = append(outcomes, outcome)

		switch outcome.Kind {
		case Applied:
			h.logger.WithField("key", entry.Key).Debug("tag set")
		case UnknownKey:
			console.Warnf(h.out, "Unknown key: %s", entry.Key)
		case ReadOnlyKey:
			console.Warnf(h.out, "Read-only key: %s", entry.Key)
		case InvalidValue:
			console.Warnf(h.out, "Invalid value for %s", entry.Key)
		case SourceReadFailed:
			return outcomes, outcome.Err
		}
	}

	h.logger.WithField("path", m.Path()).WithField("changed", len(m.Changed())).Debug("saving tags")
	if err := m.Save(); err != nil {
		return outcomes, fmt.Errorf("save tags: %w", err)
	}
	console.Printf(h.out, "Done")
	return outcomes, nil
}

func (h *Handler) apply(m *metadata.Map, entry EditEntry) Outcome {
	name, err := metadata.LookupWritable(entry.Key)
	switch {
	case errors.Is(err, metadata.ErrUnknownKey):
		return Outcome{Key: entry.Key, Kind: UnknownKey, Err: err}
	case errors.Is(err, metadata.ErrReadOnlyKey):
		return Outcome{Key: entry.Key, Kind: ReadOnlyKey, Err: err}
	case err != nil:
		return Outcome{Key: entry.Key, Kind: InvalidValue, Err: err}
	}

	text, ok := entry.Text()
	if !ok {
		return Outcome{Key: entry.Key, Kind: InvalidValue, Err: fmt.Errorf("unsupported JSON value %s", entry.Value)}
	}

	value := metadata.Value{Text: text}
	if name == metadata.Artwork {
		data, err := os.ReadFile(text)
		if err != nil {
			return Outcome{Key: entry.Key, Kind: SourceReadFailed, Err: &SourceReadError{Path: text, Err: err}}
		}
		value = metadata.Value{Data: data, MIMEType: http.DetectContentType(data)}
	}

	if err := m.Set(name, value); err != nil {
		return Outcome{Key: entry.Key, Kind: InvalidValue, Err: err}
	}
	return Outcome{Key: entry.Key, Kind: Applied}
}
