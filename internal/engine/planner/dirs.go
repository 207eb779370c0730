package planner

import (
	"cmp"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/draft/internal/core/domain"
	"go.trai.ch/zerr"
)

// managedRoots returns the build roots the target writes below.
func (b *targetBuilder) managedRoots() []string {
	keys := []string{domain.SettingSymRoot, domain.SettingObjRoot}
	if b.action.IsInstall() || b.copiesToAbsolutePath() {
		keys = append(keys, domain.SettingDstRoot)
	}
	var roots []string
	for _, k := range keys {
		if v := b.setting(k); v != "" {
			roots = appendUnique(roots, filepath.Clean(v))
		}
	}
	return roots
}

func (b *targetBuilder) copiesToAbsolutePath() bool {
	return slices.ContainsFunc(b.target.Phases, func(p *domain.BuildPhase) bool {
		return p.Type == domain.PhaseCopyFiles && p.Destination == domain.CopyToAbsolutePath && !b.skipPhase(p)
	})
}

// targetDirectories returns the directories the target's own tasks write into.
func (b *targetBuilder) targetDirectories() []string {
	if len(b.target.Phases) == 0 {
		return nil
	}
	dirs := []string{b.setting(domain.SettingTargetTempDir)}
	if !b.product.HasBinary() {
		return cleanPaths(dirs)
	}
	dirs = append(dirs, b.setting(domain.SettingTargetBuildDir))
	if b.product.IsWrapper() {
		dirs = append(dirs,
			b.productPath(domain.SettingWrapperName),
			b.productPath(domain.SettingExecutableFolderPath),
			b.productPath(domain.SettingResourcesFolderPath),
		)
	}
	return cleanPaths(dirs)
}

func cleanPaths(paths []string) []string {
	var out []string
	for _, p := range paths {
		if p != "" && p != "." {
			out = appendUnique(out, filepath.Clean(p))
		}
	}
	return out
}

func appendUnique(list []string, v string) []string {
	if slices.Contains(list, v) {
		return list
	}
	return append(list, v)
}

// createDirectories emits the plan-global root and directory creation tasks and
// returns the nodes the entry gate waits for. Every directory depends on the creation
// of its nearest enclosing managed directory.
func (b *targetBuilder) createDirectories() ([]*domain.Node, error) {
	dirs := b.targetDirectories()
	if len(dirs) == 0 {
		return nil, nil
	}
	slices.SortFunc(dirs, byLength)

	roots := b.managedRoots()
	slices.SortFunc(roots, byLength)

	created := make(map[string]*domain.Node)
	var known []string
	for _, root := range roots {
		n, err := b.createDirectory(domain.ToolCreateBuildDir, root, created, known)
		if err != nil {
			return nil, err
		}
		created[root] = n
		known = append(known, root)
	}

	var nodes []*domain.Node
	for _, dir := range dirs {
		if n, ok := created[dir]; ok {
			nodes = append(nodes, n)
			continue
		}
		n, err := b.createDirectory(domain.ToolMkdir, dir, created, known)
		if err != nil {
			return nil, err
		}
		created[dir] = n
		known = append(known, dir)
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func byLength(a, b string) int {
	return cmp.Or(cmp.Compare(len(a), len(b)), strings.Compare(a, b))
}

func (b *targetBuilder) createDirectory(toolID, dir string, created map[string]*domain.Node, known []string) (*domain.Node, error) {
	tool, err := b.tool(toolID)
	if err != nil {
		return nil, err
	}

	var after []*domain.Node
	if parent := enclosing(dir, known); parent != "" {
		after = append(after, created[parent])
	}

	scope := invocation(b.scope, domain.SettingTable{domain.VarOutputFilePath: quoteWord(dir)})
	t := b.newTask(taskSpec{
		ruleInfo: []string{tool.RuleType, dir},
		command:  scope.ExpandList(tool.Command),
		outputs:  []string{dir},
		after:    after,
		global:   true,
	})
	shared, err := b.pass.plan.AddSharedTask(t)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to add directory creation task")
	}
	return completion(shared), nil
}

// enclosing returns the longest directory in known that strictly contains dir.
func enclosing(dir string, known []string) string {
	best := ""
	for _, k := range known {
		if k != dir && isWithin(dir, k) && len(k) > len(best) {
			best = k
		}
	}
	return best
}

func isWithin(path, dir string) bool {
	if dir == "/" {
		return strings.HasPrefix(path, "/")
	}
	return strings.HasPrefix(path, dir+string(filepath.Separator))
}
