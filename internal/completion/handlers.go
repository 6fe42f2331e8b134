package completion

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/oakwood-commons/replkit/pkg/registry"
)

// Static returns a handler offering a fixed list of values.
func Static(values ...string) Handler {
	opts := make([]Option, len(values))
	for i, v := range values {
		opts[i] = Option{Value: v}
	}
	return Choices(opts...)
}

// Choices returns a handler offering fixed options with descriptions.
func Choices(opts ...Option) Handler {
	return HandlerFunc(func(context.Context, *CursorContext) ([]Option, error) {
		return append([]Option(nil), opts...), nil
	})
}

// typeHandler is the fallback for arguments without an explicit handler.
func typeHandler(arg *registry.Argument) Handler {
	switch arg.Type {
	case registry.TypeBool:
		return Static("true", "false")
	case registry.TypeEnum:
		return Static(arg.Enum...)
	case registry.TypePath:
		return &PathHandler{}
	}
	return nil
}

// PathHandler completes filesystem paths relative to Root.
type PathHandler struct {
	Root       string
	DirsOnly   bool
	ShowHidden bool
}

// Options lists the entries of the directory named by the query.
func (h *PathHandler) Options(ctx context.Context, cc *CursorContext) ([]Option, error) {
	partial := ""
	if cc != nil {
		partial = cc.Query
	}
	// dirPart keeps the typed directory prefix so the values still match the query
	dirPart, prefix := "", partial
	if i := strings.LastIndexAny(partial, `/`+string(os.PathSeparator)); i >= 0 {
		dirPart, prefix = partial[:i+1], partial[i+1:]
	}
	dir := dirPart
	if dir == "" {
		dir = "."
	}
	if !filepath.IsAbs(dir) && h.Root != "" {
		dir = filepath.Join(h.Root, dir)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	opts := make([]Option, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") && !h.ShowHidden && !strings.HasPrefix(prefix, ".") {
			continue
		}
		if h.DirsOnly && !entry.IsDir() {
			continue
		}
		value := dirPart + name
		desc := "file"
		if entry.IsDir() {
			value += "/"
			desc = "directory"
		} else if info, err := entry.Info(); err == nil {
			desc = formatSize(info.Size())
		}
		opts = append(opts, Option{Value: value, Description: desc})
	}
	return opts, nil
}

func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}

// HistoryHandler offers values previously bound to the same argument during
// this session. Nothing is persisted.
type HistoryHandler struct {
	mu     sync.Mutex
	limit  int
	values map[string][]string // argument name -> most recent last
}

// NewHistoryHandler keeps up to limit values per argument; limit <= 0 means 50.
func NewHistoryHandler(limit int) *HistoryHandler {
	if limit <= 0 {
		limit = 50
	}
	return &HistoryHandler{limit: limit, values: map[string][]string{}}
}

// Remember records value for the argument, moving repeats to the end.
func (h *HistoryHandler) Remember(arg, value string) {
	if value == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	list := h.values[arg]
	for i, v := range list {
		if v == value {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	list = append(list, value)
	if len(list) > h.limit {
		list = list[len(list)-h.limit:]
	}
	h.values[arg] = list
}

// Values returns the remembered values for arg, most recent first.
func (h *HistoryHandler) Values(arg string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	list := h.values[arg]
	out := make([]string, len(list))
	for i, v := range list {
		out[len(list)-1-i] = v
	}
	return out
}

// Reset forgets everything.
func (h *HistoryHandler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.values = map[string][]string{}
}

// Options returns the remembered values for the slot's argument.
func (h *HistoryHandler) Options(_ context.Context, cc *CursorContext) ([]Option, error) {
	if cc == nil || cc.Argument == nil {
		return nil, nil
	}
	values := h.Values(cc.Argument.Name)
	opts := make([]Option, len(values))
	for i, v := range values {
		opts[i] = Option{Value: v, Description: "recent"}
	}
	return opts, nil
}
