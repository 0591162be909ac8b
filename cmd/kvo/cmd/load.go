package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/atdiar/kvo"
	"github.com/golang/glog"
	"sigs.k8s.io/yaml"
)

// decodeDocument parses YAML or JSON. JSON is valid YAML so one decoder serves
// both.
func decodeDocument(data []byte) (any, error) {
	var plain any
	if err := yaml.Unmarshal(data, &plain); err != nil {
		return nil, err
	}
	return plain, nil
}

// loadDocument reads file into g. The document root has to be a mapping or a
// sequence.
func loadDocument(g *kvo.Graph, file string) (kvo.Observable, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	plain, err := decodeDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	root, ok := g.Adapt(plain).(kvo.Observable)
	if !ok {
		return nil, fmt.Errorf("%s: document root must be a mapping or a sequence", file)
	}
	glog.V(1).Infof("loaded %s as %s", file, root.ID())
	return root, nil
}

// writeDocument saves root back to file, as JSON when the file name says so.
func writeDocument(file string, root kvo.Observable) error {
	format := "yaml"
	if strings.EqualFold(filepath.Ext(file), ".json") {
		format = "json"
	}
	data, err := encode(format, kvo.Plain(root))
	if err != nil {
		return err
	}
	return os.WriteFile(file, data, 0o644)
}

func encode(format string, plain any) ([]byte, error) {
	switch format {
	case "yaml", "yml":
		return yaml.Marshal(plain)
	case "json":
		data, err := json.MarshalIndent(plain, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

type watchable interface {
	Watch(path string, h *kvo.Handler, context any) (*kvo.Subscription, error)
}

// observe registers a printing observer for each path.
func observe(root kvo.Observable, w io.Writer, paths ...string) ([]*kvo.Subscription, error) {
	target, ok := root.(watchable)
	if !ok {
		return nil, fmt.Errorf("%T cannot be observed", root)
	}
	subs := make([]*kvo.Subscription, 0, len(paths))
	for _, path := range paths {
		s, err := target.Watch(path, kvo.NewHandler(printChange(w)), nil)
		if err != nil {
			for _, s := range subs {
				s.Unregister()
			}
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, nil
}

// printChange writes one line per notification:
//
//	owner.name setting "ada" -> "grace"
//	tags insertion [1] null -> ["b"]
func printChange(w io.Writer) kvo.ObserverFunc {
	return func(c kvo.Change, keyPath string, _ any) {
		before, after := compact(c.OldValue), compact(c.NewValue)
		if c.IsCollectionMutation() {
			fmt.Fprintf(w, "%s %s %v %s -> %s\n", keyPath, c.Kind, c.Indexes, before, after)
			return
		}
		fmt.Fprintf(w, "%s %s %s -> %s\n", keyPath, c.Kind, before, after)
	}
}

func compact(v any) string {
	data, err := json.Marshal(kvo.Plain(v))
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
