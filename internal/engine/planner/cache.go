package planner

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/draft/internal/core/domain"
	"go.trai.ch/draft/internal/core/ports"
	"golang.org/x/sync/singleflight"
)

// Cache memoizes work shared by the targets of one planning pass. Concurrent
// requests for the same key run the computation once.
type Cache struct {
	group   singleflight.Group
	mu      sync.RWMutex
	entries map[uint64]any
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[uint64]any)}
}

// Load returns the value cached under the key parts, computing it with fn on a miss.
// Errors are not cached.
func (c *Cache) Load(fn func() (any, error), parts ...string) (any, error) {
	key := cacheKey(parts)

	c.mu.RLock()
	v, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return v, nil
	}

	v, err, _ := c.group.Do(fmt.Sprintf("%016x", key), func() (any, error) {
		c.mu.RLock()
		v, ok := c.entries[key]
		c.mu.RUnlock()
		if ok {
			return v, nil
		}
		v, err := fn()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = v
		c.mu.Unlock()
		return v, nil
	})
	return v, err
}

func cacheKey(parts []string) uint64 {
	d := xxhash.New()
	for _, p := range parts {
		_, _ = d.WriteString(p)
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}

// prefixHeader returns the prefix header input of a compile and the flags that
// include it. Precompiled headers are shared by every compile whose header, dialect,
// architecture, variant and compiler flags agree.
func (b *targetBuilder) prefixHeader(c *archContext, scope ports.Scope, dialect string) (string, []string, error) {
	header := b.scopedSourcePath(scope, domain.SettingPrefixHeader)
	if header == "" || dialect == "" || dialect == b.assemblyDialect() {
		return "", nil, nil
	}
	if !scope.LookupBool(domain.SettingPrecompilePrefixHeader) {
		return header, []string{"-include", header}, nil
	}

	cflags := scope.Lookup(domain.SettingOtherCFlags)
	cc := scope.Lookup(domain.SettingCC)
	v, err := b.pass.cache.Load(func() (any, error) {
		return b.precompile(c, scope, header, dialect)
	}, "pch", header, dialect, c.arch, c.variant, cflags, cc)
	if err != nil {
		return "", nil, err
	}
	pch := v.(string)
	return pch, []string{"-include-pch", pch}, nil
}

// precompile adds the plan-global task producing the precompiled form of header.
func (b *targetBuilder) precompile(c *archContext, scope ports.Scope, header, dialect string) (string, error) {
	tool, err := b.tool(domain.ToolPrecompile)
	if err != nil {
		return "", err
	}
	sum := xxhash.Sum64String(strings.Join([]string{
		header, dialect, c.arch, c.variant,
		scope.Lookup(domain.SettingOtherCFlags), scope.Lookup(domain.SettingCC),
	}, "\x00"))
	dir := fmt.Sprintf("%s-%016x", stem(header), sum)
	pch := filepath.Join(scope.Lookup(domain.SettingSharedPrecompsDir), dir, filepath.Base(header)+tool.OutputExtension)

	var after []*domain.Node
	if root := filepath.Clean(b.setting(domain.SettingObjRoot)); root != "." {
		n, err := b.createDirectory(domain.ToolCreateBuildDir, root, nil, nil)
		if err != nil {
			return "", err
		}
		after = append(after, n)
	}

	inv := invocation(scope, withVars(inputVars(header), domain.SettingTable{
		domain.VarOutputFilePath: quoteWord(pch),
		domain.VarPrefixHeader:   quoteWord(header),
		domain.VarDialect:        dialect,
	}))
	t := b.newTask(taskSpec{
		ruleInfo: []string{tool.RuleType, pch, header, dialect, c.arch, c.variant},
		command:  inv.ExpandList(tool.Command),
		env:      tool.Env,
		inputs:   []string{header},
		outputs:  []string{pch},
		after:    after,
		global:   true,
	})
	if _, err := b.pass.plan.AddSharedTask(t); err != nil {
		return "", err
	}
	return pch, nil
}

func (b *targetBuilder) assemblyDialect() string {
	tool, ok := b.pass.planner.registry.ToolForFileType(domain.FileTypeAssembly)
	if !ok {
		return ""
	}
	return tool.Dialect(domain.FileTypeAssembly)
}
