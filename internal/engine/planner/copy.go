package planner

import (
	"path/filepath"

	"go.trai.ch/draft/internal/core/domain"
	"go.trai.ch/zerr"
)

// misplaced reports whether f is one of the target's special files and warns once
// per phase if so. Such files are processed by dedicated steps and skipped here.
func (b *targetBuilder) misplaced(index int, phase *domain.BuildPhase, f *domain.BuildFile) bool {
	if f.Path == "" {
		return false
	}
	checks := []struct {
		key  string
		kind string
	}{
		{domain.SettingInfoPlistFile, "Info.plist file"},
		{domain.SettingEntitlementsFile, "entitlements file"},
		{domain.SettingExportedSymbolsFile, "exported symbols file"},
		{domain.SettingUnexportedSymbolsFile, "unexported symbols file"},
	}
	for _, c := range checks {
		if path := b.sourcePath(c.key); path != "" && path == filepath.Clean(f.Path) {
			b.warn("the %s '%s' should not be a member of the '%s' phase (phase %d)", c.kind, f.Path, phase.DisplayName(), index)
			return true
		}
	}
	return false
}

// planHeaders copies public and private headers into the product. Header copies are
// header producers: they wait only for begin-compiling and feed generated-headers.
func (b *targetBuilder) planHeaders(index int, phase *domain.BuildPhase) error {
	tool, err := b.tool(domain.ToolCopyHeader)
	if err != nil {
		return err
	}
	for _, f := range b.declaredFiles(phase) {
		if b.misplaced(index, phase, f) {
			continue
		}
		if !b.fileType(f).IsHeader() {
			b.warn("no rule to process file '%s' of type '%s' in the '%s' phase", f.Path, b.fileType(f), phase.DisplayName())
			continue
		}

		var folder string
		switch f.Visibility {
		case domain.HeaderPublic:
			folder = b.setting(domain.SettingPublicHeadersFolderPath)
		case domain.HeaderPrivate:
			folder = b.setting(domain.SettingPrivateHeadersFolderPath)
		}
		if folder == "" {
			continue
		}

		dest := filepath.Join(b.setting(domain.SettingTargetBuildDir), folder, filepath.Base(f.Path))
		scope := invocation(b.scope, withVars(inputVars(f.Path), domain.SettingTable{domain.VarOutputFilePath: quoteWord(dest)}))
		t := b.newTask(taskSpec{
			ruleInfo: []string{tool.RuleType, dest, f.Path},
			command:  scope.ExpandList(tool.Command),
			inputs:   []string{f.Path},
			outputs:  []string{dest},
			after:    []*domain.Node{b.gates.node(gateBeginCompiling)},
		})
		if err := b.emit(t); err != nil {
			return err
		}
		b.headerNodes = append(b.headerNodes, completion(t))
	}
	return nil
}

// planResources compiles or copies resources into the product resources folder.
func (b *targetBuilder) planResources(index int, phase *domain.BuildPhase, start []*domain.Node) error {
	if !b.product.IsWrapper() {
		if len(phase.Files) > 0 {
			b.warn("resources are only copied into bundle products; the '%s' phase is ignored", phase.DisplayName())
		}
		return nil
	}
	dir := b.productPath(domain.SettingResourcesFolderPath)

	for _, f := range b.declaredFiles(phase) {
		if b.misplaced(index, phase, f) {
			continue
		}
		tool, err := b.resourceTool(f)
		if err != nil {
			return err
		}

		name := filepath.Base(f.Path)
		if tool.OutputExtension != "" {
			name = stem(f.Path) + tool.OutputExtension
		}
		dest := filepath.Join(dir, name)
		scope := invocation(b.scope, withVars(inputVars(f.Path), domain.SettingTable{domain.VarOutputFilePath: quoteWord(dest)}))
		if err := b.emit(b.newTask(taskSpec{
			ruleInfo: []string{tool.RuleType, dest, f.Path},
			command:  scope.ExpandList(tool.Command),
			env:      tool.Env,
			inputs:   []string{f.Path},
			outputs:  []string{dest},
			after:    start,
		})); err != nil {
			return err
		}
	}
	return nil
}

// resourceTool selects the resource compiler for a file's type. Directories and
// files without a resource tool are copied as they are.
func (b *targetBuilder) resourceTool(f *domain.BuildFile) (*domain.ToolSpec, error) {
	if !b.pass.planner.fs.IsDir(f.Path) {
		if tool, ok := b.pass.planner.registry.ToolForFileType(b.fileType(f)); ok && tool.Kind == domain.ToolKindResource {
			return tool, nil
		}
	}
	return b.tool(domain.ToolDefaultResource)
}

// copyDestination returns the directory a copy-files phase copies into.
func (b *targetBuilder) copyDestination(phase *domain.BuildPhase) string {
	subpath := b.scope.Expand(phase.Subpath)
	if phase.Destination == domain.CopyToAbsolutePath {
		return filepath.Join(b.setting(domain.SettingDstRoot), subpath)
	}

	var dir string
	switch phase.Destination {
	case domain.CopyToWrapper:
		dir = b.productPath(domain.SettingWrapperName)
	case domain.CopyToExecutables:
		dir = b.productPath(domain.SettingExecutableFolderPath)
	case domain.CopyToFrameworks:
		dir = b.productPath(domain.SettingFrameworksFolderPath)
	case domain.CopyToPlugIns:
		dir = b.productPath(domain.SettingPlugInsFolderPath)
	case domain.CopyToSharedSupport:
		dir = b.productPath(domain.SettingSharedSupportFolderPath)
	case domain.CopyToProducts:
		dir = b.setting(domain.SettingBuiltProductsDir)
	default:
		dir = b.productPath(domain.SettingResourcesFolderPath)
	}
	return filepath.Join(dir, subpath)
}

// planCopyFiles copies files into the phase destination, signing copies that ask for it.
// A missing file that is not the product of another target fails the target.
func (b *targetBuilder) planCopyFiles(index int, phase *domain.BuildPhase, start []*domain.Node) error {
	copyTool, err := b.tool(domain.ToolCopy)
	if err != nil {
		return err
	}
	dest := b.copyDestination(phase)

	for _, f := range phase.Files {
		if b.skipFile(phase, f) || b.misplaced(index, phase, f) {
			continue
		}

		src := f.Path
		embeddable := b.fileType(f).ConformsTo(domain.FileTypeAppExtension)
		if f.ProductOf != nil {
			path, productType, err := b.referencedProduct(*f.ProductOf)
			if err != nil {
				return err
			}
			src = path
			embeddable = productType.IsEmbeddable()
		} else if src == "" || !b.pass.planner.fs.Exists(src) {
			return zerr.With(zerr.With(domain.ErrMissingCopyFile, "path", f.Name()), "phase", phase.DisplayName())
		}

		out := filepath.Join(dest, filepath.Base(src))
		scope := invocation(b.scope, withVars(inputVars(src), domain.SettingTable{domain.VarOutputFilePath: quoteWord(out)}))
		copied := b.newTask(taskSpec{
			ruleInfo: []string{copyTool.RuleType, out, src},
			command:  scope.ExpandList(copyTool.Command),
			env:      copyTool.Env,
			inputs:   []string{src},
			outputs:  []string{out},
			after:    start,
		})
		if err := b.emit(copied); err != nil {
			return err
		}

		if f.CodeSignOnCopy {
			if _, err := b.sign(out, []*domain.Node{completion(copied)}); err != nil {
				return err
			}
		}
		if embeddable {
			b.embedded = append(b.embedded, out)
		}
	}
	return nil
}
