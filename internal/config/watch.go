package config

import (
	"context"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// WatchRules monitors the rules file and calls onChange with the newly
// loaded Rules each time the file is written. It runs until ctx is
// cancelled. A failed reload keeps the previous rules active.
func WatchRules(ctx context.Context, path string, log zerolog.Logger, onChange func(Rules)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil { return err }
	defer watcher.Close()

	if err := watcher.Add(path); err != nil { return err }
	log.Info().Str("path", path).Msg("rules: watching for changes")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok { return nil }
			// Editors often save via rename, so catch Create as well as Write.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) { continue }
			r, err := LoadRules(path)
			if err != nil {
				log.Error().Err(err).Str("path", path).Msg("rules: reload failed, keeping previous")
				continue
			}
			log.Info().Str("path", path).Msg("rules: reloaded")
			onChange(r)
			// Re-add in case an atomic save replaced the inode.
			_ = watcher.Add(path)
		case err, ok := <-watcher.Errors:
			if !ok { return nil }
			log.Error().Err(err).Msg("rules: watcher error")
		}
	}
}
