package core

import (
	"errors"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// ConfigWatcher reloads a config file whenever it is written and delivers
// the validated result on Changes. Invalid files are logged and skipped.
type ConfigWatcher struct {
	path     string
	fsnotify *fsnotify.Watcher
	changes  chan *Config
	done     chan struct{}
	closed   chan struct{}
	isClosed bool
}

func NewConfigWatcher(path string) (*ConfigWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// editors often replace the file, so watch the directory
	if err := fsWatch.Add(filepath.Dir(abs)); err != nil {
		fsWatch.Close()
		return nil, err
	}
	cw := &ConfigWatcher{
		path:     abs,
		fsnotify: fsWatch,
		changes:  make(chan *Config, 1),
		done:     make(chan struct{}),
		closed:   make(chan struct{}),
	}
	go cw.start()
	return cw, nil
}

func (cw *ConfigWatcher) Changes() <-chan *Config {
	return cw.changes
}

func (cw *ConfigWatcher) Close() error {
	if cw.isClosed {
		return errors.New("config watcher already closed")
	}
	cw.isClosed = true
	close(cw.done)
	<-cw.closed
	return nil
}

func (cw *ConfigWatcher) start() {
	defer close(cw.closed)
	for {
		select {
		case e, ok := <-cw.fsnotify.Events:
			if !ok {
				return
			}
			if filepath.Clean(e.Name) != cw.path {
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			cfg, err := LoadConfig(cw.path)
			if err != nil {
				LogWarn("ignoring config reload: %s", err)
				continue
			}
			LogInfo("config `%s` reloaded", cw.path)
			// keep only the latest
			select {
			case <-cw.changes:
			default:
			}
			cw.changes <- cfg

		case e, ok := <-cw.fsnotify.Errors:
			if !ok {
				return
			}
			LogError(e.Error())

		case <-cw.done:
			cw.fsnotify.Close()
			close(cw.changes)
			return
		}
	}
}
