package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/atdiar/kvo"
	"github.com/fsnotify/fsnotify"
	"github.com/golang/glog"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var paths []string
	var debounce time.Duration
	watchCmd := &cobra.Command{
		Use:   "watch FILE",
		Short: "watch prints notifications each time FILE is rewritten.",
		Long: `
		watch keeps FILE loaded and observes every --path. When FILE changes on
		disk its new content is merged into the loaded document, so that objects
		and collections keep their identity, and each observer prints what it
		received. Stop with Ctrl-C.
		`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := args[0]
			g := kvo.NewGraph()
			root, err := loadDocument(g, file)
			if err != nil {
				return err
			}
			if _, err := observe(root, cmd.OutOrStdout(), paths...); err != nil {
				return err
			}

			fw, err := newFileWatcher(file, debounce)
			if err != nil {
				return err
			}
			defer fw.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			fw.Run(ctx, func() {
				if err := reload(g, root, file); err != nil {
					glog.Warningf("reloading %s: %v", file, err)
				}
			})
			return nil
		},
	}
	watchCmd.Flags().StringArrayVarP(&paths, "path", "p", nil, "key path to observe (repeatable)")
	watchCmd.Flags().DurationVar(&debounce, "debounce", 100*time.Millisecond, "quiet period before a rewritten file is reloaded")
	return watchCmd
}

// reload merges the current content of file into root. Observers see one
// notification per path for the whole file.
func reload(g *kvo.Graph, root kvo.Observable, file string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	plain, err := decodeDocument(data)
	if err != nil {
		return err
	}
	return g.Update(root, plain)
}

// fileWatcher reports settled writes to a single file. The parent directory
// is watched so that editors replacing the file by rename are noticed.
type fileWatcher struct {
	watcher  *fsnotify.Watcher
	name     string
	debounce time.Duration
}

func newFileWatcher(file string, debounce time.Duration) (*fileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(file)); err != nil {
		watcher.Close()
		return nil, err
	}
	return &fileWatcher{watcher: watcher, name: filepath.Base(file), debounce: debounce}, nil
}

func (fw *fileWatcher) Close() error {
	return fw.watcher.Close()
}

// Run calls onChange on the calling goroutine once writes to the file have
// been quiet for the debounce duration. It returns when ctx is done or the
// watcher is closed.
func (fw *fileWatcher) Run(ctx context.Context, onChange func()) {
	settled := make(chan struct{}, 1)
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != fw.name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			glog.V(2).Infof("fs event: %v", event)
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(fw.debounce, func() {
				select {
				case settled <- struct{}{}:
				default:
				}
			})
		case <-settled:
			onChange()
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			glog.Warningf("watcher: %v", err)
		}
	}
}
