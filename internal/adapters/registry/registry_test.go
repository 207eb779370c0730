package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/draft/internal/adapters/registry"
	"go.trai.ch/draft/internal/core/domain"
	"go.trai.ch/zerr"
)

func TestRegistry_FileType(t *testing.T) {
	r, err := registry.New()
	require.NoError(t, err)

	tests := []struct {
		path string
		want domain.FileType
	}{
		{"/src/main.c", domain.FileTypeCSource},
		{"/src/View.M", domain.FileTypeObjCSource},
		{"/src/Bridge.mm", domain.FileTypeObjCppSource},
		{"/src/engine.cpp", domain.FileTypeCppSource},
		{"/src/App.swift", domain.FileTypeSwift},
		{"/src/include/api.h", domain.FileTypeHeader},
		{"/src/parse.y", domain.FileTypeYacc},
		{"/Frameworks/Cocoa.framework", domain.FileTypeFramework},
		{"/lib/libz.a", domain.FileTypeArchive},
		{"/src/App.entitlements", domain.FileTypeEntitlements},
		{"/src/README", domain.FileTypeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, r.FileType(tt.path))
		})
	}
}

func TestRegistry_ToolForFileType(t *testing.T) {
	r, err := registry.New()
	require.NoError(t, err)

	cc, ok := r.ToolForFileType(domain.FileTypeObjCSource)
	require.True(t, ok)
	assert.Equal(t, "CompileC", cc.RuleType)
	assert.Equal(t, "objective-c", cc.Dialect(domain.FileTypeObjCSource))
	assert.Equal(t, "objective-c++", cc.Dialect(domain.FileTypeObjCppSource))
	assert.True(t, cc.DependencyInfo)

	header, ok := r.ToolForFileType(domain.FileTypeHeader)
	require.True(t, ok)
	assert.Equal(t, domain.ToolCopyHeader, header.ID)

	yacc, ok := r.ToolForFileType(domain.FileTypeYacc)
	require.True(t, ok)
	assert.Equal(t, domain.ToolKindGenerator, yacc.Kind)
	assert.Equal(t, domain.FileTypeCSource, yacc.OutputFileType)

	swift, ok := r.ToolForFileType(domain.FileTypeSwift)
	require.True(t, ok)
	assert.True(t, swift.Module)

	_, ok = r.ToolForFileType(domain.FileTypePlist)
	assert.False(t, ok)
}

func TestRegistry_UtilityTools(t *testing.T) {
	r, err := registry.New()
	require.NoError(t, err)

	for _, id := range []string{
		domain.ToolLinker, domain.ToolArchiver, domain.ToolMergeArchives, domain.ToolLipo,
		domain.ToolMasterObject, domain.ToolCopy, domain.ToolCopyHeader, domain.ToolMkdir,
		domain.ToolCreateBuildDir, domain.ToolScript, domain.ToolRuleScript, domain.ToolCodeSign,
		domain.ToolStrip, domain.ToolDsymutil, domain.ToolChown, domain.ToolChmod,
		domain.ToolEntitlements, domain.ToolInfoPlist, domain.ToolValidateEmbed, domain.ToolRez,
		domain.ToolResMerger, domain.ToolExternal, domain.ToolPrecompile, domain.ToolWriteAuxiliary,
		domain.ToolSwiftCompiler, domain.ToolDefaultResource,
	} {
		spec, ok := r.Tool(id)
		if assert.True(t, ok, "missing tool %s", id) {
			assert.NotEmpty(t, spec.RuleType, id)
		}
	}

	_, ok := r.Tool("no.such.tool")
	assert.False(t, ok)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{
			name: "unknown kind",
			data: "tools:\n  - id: x\n    ruleType: X\n    kind: wizard\n",
			want: "wizard",
		},
		{
			name: "missing rule type",
			data: "tools:\n  - id: x\n    kind: utility\n",
			want: "missing id or rule type",
		},
		{
			name: "duplicate id",
			data: "tools:\n  - {id: x, ruleType: X, kind: utility}\n  - {id: x, ruleType: Y, kind: utility}\n",
			want: "duplicate id",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := registry.Parse([]byte(tt.data))
			require.Error(t, err)

			var zErr *zerr.Error
			require.ErrorAs(t, err, &zErr)
			assert.Contains(t, zErr.Error(), "failed to parse tool specifications")

			found := false
			for _, v := range zErr.Metadata() {
				if v == tt.want {
					found = true
				}
			}
			assert.True(t, found, "metadata %v does not mention %q", zErr.Metadata(), tt.want)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := registry.Parse([]byte("tools: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse tool specifications")
}
