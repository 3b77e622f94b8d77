package commands

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"mp3tool/internal/config"
	"mp3tool/internal/console"
	"mp3tool/internal/metadata"
	"mp3tool/internal/watch"
)

// ReadTags prints the tags enabled in settings for the file at path.
func (h *Handler) ReadTags(settings config.Settings, path string) error {
	m, err := metadata.Load(path)
	if err != nil {
		return fmt.Errorf("load tags: %w", err)
	}

	rows := TagRows(m, settings.ReadTags)
	h.logger.WithFields(logrus.Fields{
		"path":     m.Path(),
		"settings": settings.Path,
		"tags":     len(rows),
	}).Debug("rendering tag table")

	h.mu.Lock()
	defer h.mu.Unlock()
	console.RenderTagTable(h.out, m.Path(), rows)
	return nil
}

// WatchTags prints the tag table once and again after every change to the
// file, until ctx is cancelled.
func (h *Handler) WatchTags(ctx context.Context, settings config.Settings, path string) error {
	if err := h.ReadTags(settings, path); err != nil {
		return err
	}

	w, err := watch.New(path, settings.RefreshDebounce, func() {
		if err := h.ReadTags(settings, path); err != nil {
			h.logger.WithError(err).WithField("path", path).Warn("refresh tag table")
		}
	}, h.logger)
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	defer func() {
		if err := w.Close(); err != nil {
			h.logger.WithError(err).Warn("error closing watcher")
		}
	}()

	h.logger.WithField("path", path).Debug("watching for changes")
	<-ctx.Done()
	return nil
}

// TagRows builds one table row per name, in order.
func TagRows(m *metadata.Map, names []metadata.Name) []console.Row {
	rows := make([]console.Row, 0, len(names))
	for _, name := range names {
		row := console.Row{Tag: name.Capitalized()}
		if v, ok := m.Get(name); ok {
			row.Value = v.String()
		} else {
			row.Missing = true
		}
		rows = append(rows, row)
	}
	return rows
}
