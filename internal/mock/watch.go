package mock

import (
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pankudi/visualizer/internal/config"
)

// ConfigWatcher reloads the mock timings whenever the config file changes.
// Invalid files are logged and ignored; the previous timings stay active.
type ConfigWatcher struct {
	w         *fsnotify.Watcher
	path      string
	assistant *Assistant
	// reloaded, if set, is offered every applied config.
	reloaded chan<- config.MockConfig
	done     chan struct{}
}

// WatchConfig watches path's directory so that editors which replace the
// file on save are still seen.
func WatchConfig(path string, a *Assistant) (*ConfigWatcher, error) {
	return watchConfig(path, a, nil)
}

func watchConfig(path string, a *Assistant, reloaded chan<- config.MockConfig) (*ConfigWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}

	cw := &ConfigWatcher{
		w:         fw,
		path:      filepath.Clean(path),
		assistant: a,
		reloaded:  reloaded,
		done:      make(chan struct{}),
	}
	go cw.loop()
	return cw, nil
}

// Close stops the watcher and waits for its loop to exit.
func (cw *ConfigWatcher) Close() error {
	err := cw.w.Close()
	<-cw.done
	return err
}

func (cw *ConfigWatcher) loop() {
	defer close(cw.done)
	for {
		select {
		case event, ok := <-cw.w.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if filepath.Clean(event.Name) != cw.path {
				continue
			}
			cw.reload()

		case err, ok := <-cw.w.Errors:
			if !ok {
				return
			}
			log.Printf("config watcher error: %v", err)
		}
	}
}

func (cw *ConfigWatcher) reload() {
	cfg, err := config.Load(cw.path)
	if err != nil {
		log.Printf("config reload: %v", err)
		return
	}
	cw.assistant.SetTimings(cfg.Mock)
	log.Printf("config reloaded from %s", cw.path)
	if cw.reloaded != nil {
		select {
		case cw.reloaded <- cfg.Mock:
		default:
		}
	}
}
