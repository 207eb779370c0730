package domain

// ToolKind classifies how the planner invokes a tool.
type ToolKind string

const (
	// ToolKindCompiler runs once per input, variant and architecture and produces an object file.
	ToolKindCompiler ToolKind = "compiler"
	// ToolKindGenerator runs once per input and produces derived files fed back into the phase.
	ToolKindGenerator ToolKind = "generator"
	// ToolKindResource processes a resource into the product resources folder.
	ToolKindResource ToolKind = "resource"
	// ToolKindUtility is invoked by identifier for fixed build steps.
	ToolKindUtility ToolKind = "utility"
)

// Identifiers of utility tools the planner invokes directly.
const (
	ToolLinker          = "linker.ld"
	ToolArchiver        = "archiver.libtool"
	ToolMergeArchives   = "archiver.merge"
	ToolLipo            = "lipo"
	ToolMasterObject    = "linker.master-object"
	ToolCopy            = "copy"
	ToolCopyHeader      = "copy.header"
	ToolMkdir           = "mkdir"
	ToolCreateBuildDir  = "mkdir.build-directory"
	ToolScript          = "script"
	ToolRuleScript      = "script.rule"
	ToolCodeSign        = "codesign"
	ToolStrip           = "strip"
	ToolDsymutil        = "dsymutil"
	ToolChown           = "chown"
	ToolChmod           = "chmod"
	ToolEntitlements    = "product-packaging"
	ToolInfoPlist       = "info-plist"
	ToolValidateEmbed   = "validate-embedded"
	ToolRez             = "rez"
	ToolResMerger       = "resmerger"
	ToolExternal        = "external"
	ToolPrecompile      = "compiler.pch"
	ToolWriteAuxiliary  = "write-file"
	ToolSwiftCompiler   = "compiler.swift"
	ToolDefaultResource = "copy.resource"
)

// ToolSpec describes a tool: how to invoke it and what it produces.
type ToolSpec struct {
	ID       string
	RuleType string
	Kind     ToolKind
	// InputTypes lists the file types this tool is the default producer for.
	InputTypes []FileType
	// Command is a command-line template expanded against a scope.
	Command []string
	// OutputExtension replaces the input extension for the primary output.
	OutputExtension string
	// OutputFileType is the type of the primary output.
	OutputFileType FileType
	// Dialects maps input types to the -x dialect passed to the compiler.
	Dialects map[FileType]string
	// DependencyInfo reports whether the tool writes a .d dependency file.
	DependencyInfo bool
	// Module tools compile every matching input of a variant/arch in one invocation.
	Module bool
	// GeneratedHeader is a path template for a header emitted by a module tool.
	GeneratedHeader string
	Env             map[string]string
}

// Accepts reports whether the tool is a default producer for ft.
func (t *ToolSpec) Accepts(ft FileType) bool {
	for _, in := range t.InputTypes {
		if ft.ConformsTo(in) {
			return true
		}
	}
	return false
}

// Dialect returns the compiler dialect for ft, or an empty string.
func (t *ToolSpec) Dialect(ft FileType) string {
	if d, ok := t.Dialects[ft]; ok {
		return d
	}
	best := ""
	bestLen := -1
	for in, d := range t.Dialects {
		if ft.ConformsTo(in) && len(in) > bestLen {
			best, bestLen = d, len(in)
		}
	}
	return best
}
