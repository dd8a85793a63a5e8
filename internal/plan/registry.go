package plan

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownPlan is returned for a plan name that is neither built in nor a
// readable file.
var ErrUnknownPlan = errors.New("unknown plan")

//go:embed plans
var builtinFS embed.FS

var builtinCache sync.Map // map[string]*Plan

// Names returns the built-in plan names, sorted.
func Names() []string {
	entries, err := builtinFS.ReadDir("plans")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), path.Ext(e.Name()))
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsBuiltin reports whether name is a built-in plan.
func IsBuiltin(name string) bool {
	_, ok := builtinFile(name)
	return ok
}

func builtinFile(name string) (string, bool) {
	entries, err := builtinFS.ReadDir("plans")
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if strings.TrimSuffix(e.Name(), path.Ext(e.Name())) == name {
			return "plans/" + e.Name(), true
		}
	}
	return "", false
}

// Builtin returns the embedded plan with the given name.
func Builtin(name string) (*Plan, error) {
	if cached, ok := builtinCache.Load(name); ok {
		return cached.(*Plan), nil
	}
	file, ok := builtinFile(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlan, name)
	}
	data, err := builtinFS.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read builtin plan: %w", err)
	}
	p, err := Load(data, FormatFor(file))
	if err != nil {
		return nil, fmt.Errorf("load builtin plan %q: %w", name, err)
	}
	builtinCache.Store(name, p)
	return p, nil
}

// Resolve returns a built-in plan by name, or loads nameOrPath from disk.
func Resolve(nameOrPath string) (*Plan, error) {
	if IsBuiltin(nameOrPath) {
		return Builtin(nameOrPath)
	}
	if _, err := os.Stat(nameOrPath); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlan, nameOrPath)
	}
	return LoadFile(nameOrPath)
}
