package commands

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sirupsen/logrus"

	"mp3tool/internal/audio"
	"mp3tool/internal/console"
)

const (
	inputPattern = "*.mp3"

	// DefaultOutput replaces an output path that lacks the .mp3 extension.
	DefaultOutput = "output.mp3"
)

// ErrNoInputs is returned when no argument survives the input filter.
var ErrNoInputs = errors.New("no MP3 input files")

// Merge concatenates the MP3 files among inputs, in order, into output and
// returns the path actually written.
func (h *Handler) Merge(inputs []string, output string) (string, error) {
	sources, err := filterInputs(inputs)
	if err != nil {
		return "", err
	}
	for _, skipped := range difference(inputs, sources) {
		h.logger.WithField("path", skipped).Debug("skipping non-mp3 input")
	}
	if len(sources) == 0 {
		return "", ErrNoInputs
	}

	h.logger.WithField("inputs", len(sources)).Info("Merging files...")
	merged := audio.Empty()
	for _, path := range sources {
		buf, err := audio.Decode(path)
		if err != nil {
			return "", fmt.Errorf("decode %s: %w", path, err)
		}
		if err := merged.Append(buf); err != nil {
			return "", err
		}
		h.logger.WithFields(logrus.Fields{
			"path":   path,
			"frames": buf.Frames(),
		}).Debug("decoded input")
	}

	target := ResolveOutput(output)
	h.logger.WithField("path", target).Info("Exporting output...")
	if err := audio.Encode(merged, target); err != nil {
		return "", fmt.Errorf("encode %s: %w", target, err)
	}

	h.mu.Lock()
	console.Printf(h.out, "Exporting finished: %s created", target)
	h.mu.Unlock()
	return target, nil
}

// ResolveOutput returns output when it ends in .mp3 and DefaultOutput otherwise.
func ResolveOutput(output string) string {
	if strings.HasSuffix(output, ".mp3") {
		return output
	}
	return DefaultOutput
}

func filterInputs(inputs []string) ([]string, error) {
	var sources []string
	for _, path := range inputs {
		ok, err := doublestar.Match(inputPattern, filepath.Base(path))
		if err != nil {
			return nil, err
		}
		if ok {
			sources = append(sources, path)
		}
	}
	return sources, nil
}

func difference(all, kept []string) []string {
	var out []string
	i := 0
	for _, path := range all {
		if i < len(kept) && kept[i] == path {
			i++
			continue
		}
		out = append(out, path)
	}
	return out
}
