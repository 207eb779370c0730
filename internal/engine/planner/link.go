package planner

import (
	"path/filepath"
	"strings"

	"go.trai.ch/draft/internal/core/domain"
	"go.trai.ch/zerr"
)

// linkItem is one entry of a frameworks phase as seen by the linker.
type linkItem struct {
	// path is a file the link reads, if any.
	path string
	args []string
}

// collectLinkItems turns the frameworks phase into linker arguments. Missing
// frameworks are tolerated; the linker reports them.
func (b *targetBuilder) collectLinkItems(phase *domain.BuildPhase) error {
	for _, f := range phase.Files {
		if b.skipFile(phase, f) {
			continue
		}
		switch {
		case f.ProductOf != nil:
			item, err := b.productLinkItem(f)
			if err != nil {
				return err
			}
			b.linkItems = append(b.linkItems, item)
		case f.LinkName != "":
			b.linkItems = append(b.linkItems, linkItem{args: linkByName(f.LinkName, f.WeakLink)})
		default:
			item, ok := b.fileLinkItem(f)
			if !ok {
				b.warn("no rule to link file '%s' of type '%s'", f.Path, b.fileType(f))
				continue
			}
			b.linkItems = append(b.linkItems, item)
		}
	}
	return nil
}

func linkByName(name string, weak bool) []string {
	if fw, ok := strings.CutSuffix(name, ".framework"); ok {
		if weak {
			return []string{"-weak_framework", fw}
		}
		return []string{"-framework", fw}
	}
	lib := strings.TrimPrefix(name, "lib")
	for _, ext := range []string{".dylib", ".tbd", ".a"} {
		lib = strings.TrimSuffix(lib, ext)
	}
	if weak {
		return []string{"-weak-l" + lib}
	}
	return []string{"-l" + lib}
}

func frameworkArgs(path string, weak bool) []string {
	flag := "-framework"
	if weak {
		flag = "-weak_framework"
	}
	return []string{"-F" + filepath.Dir(path), flag, stem(path)}
}

func (b *targetBuilder) fileLinkItem(f *domain.BuildFile) (linkItem, bool) {
	ft := b.fileType(f)
	switch {
	case ft.ConformsTo(domain.FileTypeFramework):
		return linkItem{path: f.Path, args: frameworkArgs(f.Path, f.WeakLink)}, true
	case ft.ConformsTo(domain.FileTypeArchive), ft.ConformsTo(domain.FileTypeObject):
		if f.WeakLink {
			b.warn("static library '%s' cannot be weakly linked and is linked normally", f.Path)
		}
		return linkItem{path: f.Path, args: []string{f.Path}}, true
	case ft.ConformsTo(domain.FileTypeDylib), ft.ConformsTo(domain.FileTypeTextDylib):
		if f.WeakLink {
			return linkItem{path: f.Path, args: []string{"-weak_library", f.Path}}, true
		}
		return linkItem{path: f.Path, args: []string{f.Path}}, true
	default:
		return linkItem{}, false
	}
}

// productLinkItem links the product of another target.
func (b *targetBuilder) productLinkItem(f *domain.BuildFile) (linkItem, error) {
	ref := *f.ProductOf
	path, productType, err := b.referencedProduct(ref)
	if err != nil {
		return linkItem{}, err
	}

	weak := f.WeakLink
	if weak && !productType.WeakLinkable() {
		b.warn("product '%s' of type '%s' cannot be weakly linked and is linked normally", ref, productType)
		weak = false
	}
	switch {
	case productType == domain.ProductTypeFramework:
		return linkItem{path: path, args: frameworkArgs(path, weak)}, nil
	case weak:
		return linkItem{path: path, args: []string{"-weak_library", path}}, nil
	default:
		return linkItem{path: path, args: []string{path}}, nil
	}
}

// referencedProduct resolves the product path of another target with the parameters
// it is built with in this request.
func (b *targetBuilder) referencedProduct(ref domain.TargetRef) (string, domain.ProductType, error) {
	info, ok := b.pass.requested[ref]
	if !ok {
		project, target, found := b.workspace().Lookup(ref)
		if !found {
			return "", "", zerr.With(domain.ErrUnresolvedDependency, "dependency", ref.String())
		}
		info = domain.BuildTargetInfo{Project: project, Target: target, Parameters: b.info.Parameters}
	}
	scope, err := b.pass.planner.resolver.Resolve(b.pass.request.Workspace, info.Project, info.Target, info.Parameters)
	if err != nil {
		return "", "", zerr.Wrap(err, "failed to resolve referenced product")
	}
	path := filepath.Join(scope.Lookup(domain.SettingTargetBuildDir), scope.Lookup(domain.SettingFullProductName))
	return filepath.Clean(path), info.Target.ProductType, nil
}

// binaryPath returns the final binary of a variant. Variants other than the default
// one carry a suffix.
func (b *targetBuilder) binaryPath(variant string) string {
	return b.productPath(domain.SettingExecutablePath) + variantSuffix(variant)
}

func variantSuffix(variant string) string {
	if variant == domain.DefaultVariant {
		return ""
	}
	return "_" + variant
}

// planBinary links or archives every context and merges the per-architecture
// binaries of each variant.
func (b *targetBuilder) planBinary(start []*domain.Node) error {
	if !b.product.HasBinary() || !b.hasObjects() {
		return nil
	}
	for _, variant := range b.variants {
		final := b.binaryPath(variant)
		var perArch []string
		for _, c := range b.contexts {
			if c.variant != variant {
				continue
			}
			out := final
			if len(b.archs) > 1 {
				out = filepath.Join(c.objDir, "Binary", filepath.Base(final))
			}
			if err := b.link(c, out, start); err != nil {
				return err
			}
			perArch = append(perArch, out)
		}
		if len(perArch) > 1 {
			if err := b.merge(variant, perArch, final, start); err != nil {
				return err
			}
		}
		b.binaries[variant] = final
	}
	return nil
}

func (b *targetBuilder) hasObjects() bool {
	for _, c := range b.contexts {
		if len(c.objects) > 0 || len(c.linkables) > 0 {
			return true
		}
	}
	return false
}

func (b *targetBuilder) link(c *archContext, out string, start []*domain.Node) error {
	objects := append(append([]string{}, c.objects...), c.linkables...)
	if c.scope.LookupBool(domain.SettingGenerateMasterObject) && len(objects) > 0 {
		master, err := b.masterObject(c, objects, start)
		if err != nil {
			return err
		}
		objects = []string{master}
	}

	fileList := filepath.Join(c.objDir, c.scope.Lookup(domain.SettingProductName)+".LinkFileList")
	if err := b.writeAuxiliaryFile(fileList, []byte(strings.Join(objects, "\n")+"\n")); err != nil {
		return err
	}

	toolID := domain.ToolLinker
	if b.product.IsStaticArchive() {
		toolID = domain.ToolArchiver
	}
	tool, err := b.tool(toolID)
	if err != nil {
		return err
	}

	inputs := append(append([]string{}, objects...), fileList)
	var args []string
	if !b.product.IsStaticArchive() {
		for _, item := range b.linkItems {
			args = append(args, item.args...)
			inputs = append(inputs, item.path)
		}
		for _, key := range []string{domain.SettingExportedSymbolsFile, domain.SettingUnexportedSymbolsFile} {
			path := b.sourcePath(key)
			if path == "" {
				continue
			}
			flag := "-exported_symbols_list"
			if key == domain.SettingUnexportedSymbolsFile {
				flag = "-unexported_symbols_list"
			}
			args = append(args, flag, path)
			inputs = append(inputs, path)
		}
	}

	scope := invocation(c.scope, domain.SettingTable{
		domain.VarOutputFilePath: quoteWord(out),
		domain.VarInputFileList:  quoteWord(fileList),
		domain.VarLinkerInputs:   joinArgs(args...),
	})
	return b.emit(b.newTask(taskSpec{
		ruleInfo: []string{tool.RuleType, out, c.variant, c.arch},
		command:  scope.ExpandList(tool.Command),
		env:      tool.Env,
		inputs:   inputs,
		outputs:  []string{out},
		after:    start,
	}))
}

// masterObject prelinks the objects of a context into a single relocatable object.
func (b *targetBuilder) masterObject(c *archContext, objects []string, start []*domain.Node) (string, error) {
	tool, err := b.tool(domain.ToolMasterObject)
	if err != nil {
		return "", err
	}
	out := filepath.Join(c.objDir, c.scope.Lookup(domain.SettingProductName)+"-master.o")
	scope := invocation(c.scope, domain.SettingTable{
		domain.VarOutputFilePath: quoteWord(out),
		domain.VarInputFiles:     joinArgs(objects...),
	})
	err = b.emit(b.newTask(taskSpec{
		ruleInfo: []string{tool.RuleType, out},
		command:  scope.ExpandList(tool.Command),
		env:      tool.Env,
		inputs:   objects,
		outputs:  []string{out},
		after:    start,
	}))
	return out, err
}

// merge combines the per-architecture binaries of a variant in ARCHS order.
func (b *targetBuilder) merge(variant string, perArch []string, final string, start []*domain.Node) error {
	toolID := domain.ToolLipo
	if b.product.IsStaticArchive() {
		toolID = domain.ToolMergeArchives
	}
	tool, err := b.tool(toolID)
	if err != nil {
		return err
	}

	scope := invocation(b.scope, domain.SettingTable{
		domain.VarOutputFilePath: quoteWord(final),
		domain.VarInputFiles:     joinArgs(perArch...),
		domain.VarCurrentVariant: variant,
	})
	ruleInfo := []string{tool.RuleType, final, variant}
	if toolID == domain.ToolLipo {
		ruleInfo = append(ruleInfo, strings.Join(b.archs, " "))
	}
	return b.emit(b.newTask(taskSpec{
		ruleInfo: ruleInfo,
		command:  scope.ExpandList(tool.Command),
		env:      tool.Env,
		inputs:   perArch,
		outputs:  []string{final},
		after:    start,
	}))
}
