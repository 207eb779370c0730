package planner

import (
	"path/filepath"

	"go.trai.ch/draft/internal/core/domain"
)

const dsymFormat = "dwarf-with-dsym"

// postprocess orders the steps that run once the product content is in place:
// entitlements, variant signing, product signing, symbol extraction and stripping,
// ownership and mode, and finally validation of embedded binaries. Each step waits
// for the previous one. It returns the nodes the end gate waits for.
func (b *targetBuilder) postprocess(start []*domain.Node) ([]*domain.Node, error) {
	if !b.product.HasBinary() {
		return nil, nil
	}
	prev := start

	entitlements, tasks, err := b.processEntitlements(prev)
	if err != nil {
		return nil, err
	}
	prev = advance(prev, tasks)

	var productSign *domain.Task
	if b.signingEnabled() {
		var variantSigns []*domain.Task
		for _, variant := range b.variants {
			path, ok := b.binaries[variant]
			if !ok || variant == domain.DefaultVariant {
				continue
			}
			t, err := b.signWith(path, entitlements, prev)
			if err != nil {
				return nil, err
			}
			variantSigns = append(variantSigns, t)
		}
		prev = advance(prev, variantSigns)

		if path := b.productSignPath(); path != "" {
			productSign, err = b.signWith(path, entitlements, prev)
			if err != nil {
				return nil, err
			}
			prev = advance(prev, []*domain.Task{productSign})
		}
	}

	tasks, err = b.extractSymbols(prev)
	if err != nil {
		return nil, err
	}
	prev = advance(prev, tasks)

	tasks, err = b.setPermissions(prev)
	if err != nil {
		return nil, err
	}
	prev = advance(prev, tasks)

	validations, err := b.validateEmbedded(prev, productSign)
	if err != nil {
		return nil, err
	}
	return append(prev, completions(validations)...), nil
}

func advance(prev []*domain.Node, tasks []*domain.Task) []*domain.Node {
	if len(tasks) == 0 {
		return prev
	}
	return completions(tasks)
}

func (b *targetBuilder) signingEnabled() bool {
	if b.setting(domain.SettingCodeSignIdentity) == "" {
		return false
	}
	switch b.product {
	case domain.ProductTypeStaticLibrary, domain.ProductTypeObjectFile:
		return false
	default:
		return true
	}
}

// productSignPath is the wrapper of bundle products and the default binary otherwise.
func (b *targetBuilder) productSignPath() string {
	if b.product.IsWrapper() {
		return b.productPath(domain.SettingWrapperName)
	}
	return b.binaries[domain.DefaultVariant]
}

// productInstallPath is the path ownership and mode are applied to.
func (b *targetBuilder) productInstallPath() string {
	if b.product.IsWrapper() {
		return b.productPath(domain.SettingWrapperName)
	}
	if path, ok := b.binaries[domain.DefaultVariant]; ok {
		return path
	}
	return b.productPath(domain.SettingFullProductName)
}

// processEntitlements produces the signing entitlements and embeds the provisioning
// profile. It returns the processed entitlements path, if any.
func (b *targetBuilder) processEntitlements(after []*domain.Node) (string, []*domain.Task, error) {
	var tasks []*domain.Task
	var xcent string

	if src := b.sourcePath(domain.SettingEntitlementsFile); src != "" {
		tool, err := b.tool(domain.ToolEntitlements)
		if err != nil {
			return "", nil, err
		}
		xcent = filepath.Join(b.setting(domain.SettingTargetTempDir), b.setting(domain.SettingProductName)+".xcent")
		scope := invocation(b.scope, withVars(inputVars(src), domain.SettingTable{domain.VarOutputFilePath: quoteWord(xcent)}))
		t := b.newTask(taskSpec{
			ruleInfo: []string{tool.RuleType, xcent, src},
			command:  scope.ExpandList(tool.Command),
			env:      tool.Env,
			inputs:   []string{src},
			outputs:  []string{xcent},
			after:    after,
		})
		if err := b.emit(t); err != nil {
			return "", nil, err
		}
		tasks = append(tasks, t)
	}

	if src := b.sourcePath(domain.SettingProvisioningProfile); src != "" && b.product.IsWrapper() {
		tool, err := b.tool(domain.ToolCopy)
		if err != nil {
			return "", nil, err
		}
		dest := filepath.Join(b.productPath(domain.SettingContentsFolderPath), "embedded.mobileprovision")
		scope := invocation(b.scope, withVars(inputVars(src), domain.SettingTable{domain.VarOutputFilePath: quoteWord(dest)}))
		t := b.newTask(taskSpec{
			ruleInfo: []string{tool.RuleType, dest, src},
			command:  scope.ExpandList(tool.Command),
			env:      tool.Env,
			inputs:   []string{src},
			outputs:  []string{dest},
			after:    after,
		})
		if err := b.emit(t); err != nil {
			return "", nil, err
		}
		tasks = append(tasks, t)
	}
	return xcent, tasks, nil
}

// sign emits a signing task for a copied item.
func (b *targetBuilder) sign(path string, after []*domain.Node) (*domain.Task, error) {
	return b.signWith(path, "", after)
}

func (b *targetBuilder) signWith(path, entitlements string, after []*domain.Node) (*domain.Task, error) {
	tool, err := b.tool(domain.ToolCodeSign)
	if err != nil {
		return nil, err
	}
	var flags []string
	if entitlements != "" {
		flags = []string{"--entitlements", entitlements}
	}
	scope := invocation(b.scope, domain.SettingTable{
		domain.VarSigningTarget:     quoteWord(path),
		domain.VarEntitlementsFlags: joinArgs(flags...),
	})
	t := b.newTask(taskSpec{
		ruleInfo: []string{tool.RuleType, path},
		command:  scope.ExpandList(tool.Command),
		env:      tool.Env,
		inputs:   []string{path, entitlements},
		after:    after,
	})
	return t, b.emit(t)
}

// extractSymbols generates dSYM bundles when requested and strips installed binaries
// after their symbols were extracted.
func (b *targetBuilder) extractSymbols(after []*domain.Node) ([]*domain.Task, error) {
	if b.product.IsStaticArchive() || b.product == domain.ProductTypeObjectFile {
		return nil, nil
	}
	dsym := b.setting(domain.SettingDebugInformationFormat) == dsymFormat
	strip := b.action.IsInstall() &&
		b.scope.LookupBool(domain.SettingDeploymentPostprocess) &&
		b.scope.LookupBool(domain.SettingStripInstalledProduct)
	if !dsym && !strip {
		return nil, nil
	}

	var tasks []*domain.Task
	for _, variant := range b.variants {
		binary, ok := b.binaries[variant]
		if !ok {
			continue
		}
		stripAfter := after
		if dsym {
			t, err := b.generateDSYM(variant, binary, after)
			if err != nil {
				return nil, err
			}
			tasks = append(tasks, t)
			stripAfter = []*domain.Node{completion(t)}
		}
		if strip {
			t, err := b.utility(domain.ToolStrip, binary, nil, stripAfter)
			if err != nil {
				return nil, err
			}
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

func (b *targetBuilder) generateDSYM(variant, binary string, after []*domain.Node) (*domain.Task, error) {
	tool, err := b.tool(domain.ToolDsymutil)
	if err != nil {
		return nil, err
	}
	name := b.setting(domain.SettingFullProductName) + variantSuffix(variant) + ".dSYM"
	out := filepath.Join(b.setting(domain.SettingDwarfDsymFolderPath), name)
	scope := invocation(b.scope, withVars(inputVars(binary), domain.SettingTable{domain.VarOutputFilePath: quoteWord(out)}))
	t := b.newTask(taskSpec{
		ruleInfo: []string{tool.RuleType, out, binary},
		command:  scope.ExpandList(tool.Command),
		env:      tool.Env,
		inputs:   []string{binary},
		outputs:  []string{out},
		after:    after,
	})
	return t, b.emit(t)
}

// utility emits an in-place tool run on path whose identity is the rule type, the
// extra identity elements and the path.
func (b *targetBuilder) utility(toolID, path string, vars domain.SettingTable, after []*domain.Node, identity ...string) (*domain.Task, error) {
	tool, err := b.tool(toolID)
	if err != nil {
		return nil, err
	}
	scope := invocation(b.scope, withVars(inputVars(path), vars))
	ruleInfo := append([]string{tool.RuleType}, identity...)
	t := b.newTask(taskSpec{
		ruleInfo: append(ruleInfo, path),
		command:  scope.ExpandList(tool.Command),
		env:      tool.Env,
		inputs:   []string{path},
		after:    after,
	})
	return t, b.emit(t)
}

// setPermissions applies installed ownership and mode, then the alternate
// permissions of ALTERNATE_PERMISSIONS_FILES.
func (b *targetBuilder) setPermissions(after []*domain.Node) ([]*domain.Task, error) {
	if !b.action.IsInstall() || !b.scope.LookupBool(domain.SettingDeploymentPostprocess) {
		return nil, nil
	}

	owner := b.setting(domain.SettingInstallOwner) + ":" + b.setting(domain.SettingInstallGroup)
	path := b.productInstallPath()
	chown, err := b.utility(domain.ToolChown, path, nil, after, owner)
	if err != nil {
		return nil, err
	}
	chmod, err := b.utility(domain.ToolChmod, path, nil, []*domain.Node{completion(chown)}, b.setting(domain.SettingInstallModeFlag))
	if err != nil {
		return nil, err
	}
	last := []*domain.Task{chmod}

	altOwner := b.setting(domain.SettingAlternateOwner) + ":" + b.setting(domain.SettingAlternateGroup)
	altMode := b.setting(domain.SettingAlternateMode)
	vars := domain.SettingTable{
		domain.SettingInstallOwner:    quoteWord(b.setting(domain.SettingAlternateOwner)),
		domain.SettingInstallGroup:    quoteWord(b.setting(domain.SettingAlternateGroup)),
		domain.SettingInstallModeFlag: quoteWord(altMode),
	}
	for _, p := range b.scope.LookupList(domain.SettingAlternatePermissions) {
		if !filepath.IsAbs(p) {
			p = filepath.Join(b.setting(domain.SettingTargetBuildDir), p)
		}
		p = filepath.Clean(p)
		altChown, err := b.utility(domain.ToolChown, p, vars, []*domain.Node{completion(chmod)}, altOwner)
		if err != nil {
			return nil, err
		}
		altChmod, err := b.utility(domain.ToolChmod, p, vars, []*domain.Node{completion(altChown)}, altMode)
		if err != nil {
			return nil, err
		}
		last = append(last, altChmod)
	}
	return last, nil
}

// validateEmbedded validates every embedded product after the container has been
// signed. The validation depends on the signature but is never depended upon by it.
func (b *targetBuilder) validateEmbedded(after []*domain.Node, productSign *domain.Task) ([]*domain.Task, error) {
	var tasks []*domain.Task
	for _, path := range b.embedded {
		t, err := b.utility(domain.ToolValidateEmbed, path, nil, after)
		if err != nil {
			return nil, err
		}
		if productSign != nil {
			b.orderings = append(b.orderings, domain.Ordering{Before: productSign, After: t})
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}
