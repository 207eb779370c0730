package domain

import "strings"

// FileType is a dotted, hierarchical file type identifier such as "sourcecode.c.objc".
// A type conforms to every dotted prefix of itself.
type FileType string

// Well-known file types referenced by the planner.
const (
	FileTypeUnknown         FileType = "file"
	FileTypeSource          FileType = "sourcecode"
	FileTypeCSource         FileType = "sourcecode.c.c"
	FileTypeObjCSource      FileType = "sourcecode.c.objc"
	FileTypeCppSource       FileType = "sourcecode.cpp.cpp"
	FileTypeObjCppSource    FileType = "sourcecode.cpp.objcpp"
	FileTypeAssembly        FileType = "sourcecode.asm"
	FileTypeSwift           FileType = "sourcecode.swift"
	FileTypeHeader          FileType = "sourcecode.c.h"
	FileTypeRez             FileType = "sourcecode.rez"
	FileTypeExports         FileType = "sourcecode.exports"
	FileTypeObject          FileType = "compiled.mach-o.objfile"
	FileTypeDylib           FileType = "compiled.mach-o.dylib"
	FileTypeArchive         FileType = "archive.ar"
	FileTypeTextDylib       FileType = "sourcecode.text-based-dylib-definition"
	FileTypeFramework       FileType = "wrapper.framework"
	FileTypeAppExtension    FileType = "wrapper.app-extension"
	FileTypeApplication     FileType = "wrapper.application"
	FileTypeBundle          FileType = "wrapper.cfbundle"
	FileTypePlist           FileType = "text.plist"
	FileTypeEntitlements    FileType = "text.plist.entitlements"
	FileTypeModuleMap       FileType = "sourcecode.module-map"
	FileTypeRsrc            FileType = "archive.rsrc"
	FileTypeShellScript     FileType = "text.script.sh"
	FileTypeMobileProvision FileType = "file.mobileprovision"
	FileTypeYacc            FileType = "sourcecode.yacc"
	FileTypeLex             FileType = "sourcecode.lex"
	FileTypeCppHeader       FileType = "sourcecode.cpp.h"
)

// ConformsTo reports whether t equals other or is a more specific type of other.
func (t FileType) ConformsTo(other FileType) bool {
	if t == other {
		return true
	}
	return strings.HasPrefix(string(t), string(other)+".")
}

// IsHeader reports whether t is a C-family header.
func (t FileType) IsHeader() bool {
	return t.ConformsTo(FileTypeHeader) || t.ConformsTo(FileTypeCppHeader)
}

// IsLinkable reports whether the linker accepts files of this type directly.
func (t FileType) IsLinkable() bool {
	switch {
	case t.ConformsTo(FileTypeObject), t.ConformsTo(FileTypeDylib), t.ConformsTo(FileTypeArchive),
		t.ConformsTo(FileTypeTextDylib), t.ConformsTo(FileTypeFramework):
		return true
	default:
		return false
	}
}
