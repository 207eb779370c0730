package domain

import "go.trai.ch/zerr"

// ProductType determines the layout of a target's product and which tasks produce it.
type ProductType string

const (
	// ProductTypeApplication is a bundled application.
	ProductTypeApplication ProductType = "application"
	// ProductTypeAppExtension is an application extension embedded in a host application.
	ProductTypeAppExtension ProductType = "app-extension"
	// ProductTypeFramework is a bundled dynamic library with headers and resources.
	ProductTypeFramework ProductType = "framework"
	// ProductTypeStaticLibrary is a static archive.
	ProductTypeStaticLibrary ProductType = "static-library"
	// ProductTypeDynamicLibrary is an unbundled dynamic library.
	ProductTypeDynamicLibrary ProductType = "dynamic-library"
	// ProductTypeObjectFile is a relocatable object produced with ld -r.
	ProductTypeObjectFile ProductType = "object-file"
	// ProductTypeBundle is a loadable bundle.
	ProductTypeBundle ProductType = "bundle"
	// ProductTypeTool is a command-line executable.
	ProductTypeTool ProductType = "tool"
	// ProductTypeAggregate has no product of its own.
	ProductTypeAggregate ProductType = "aggregate"
	// ProductTypeExternal delegates the build to an external tool.
	ProductTypeExternal ProductType = "external"
)

var productTypes = []ProductType{
	ProductTypeApplication,
	ProductTypeAppExtension,
	ProductTypeFramework,
	ProductTypeStaticLibrary,
	ProductTypeDynamicLibrary,
	ProductTypeObjectFile,
	ProductTypeBundle,
	ProductTypeTool,
	ProductTypeAggregate,
	ProductTypeExternal,
}

// ParseProductType validates s as a product type.
func ParseProductType(s string) (ProductType, error) {
	for _, pt := range productTypes {
		if string(pt) == s {
			return pt, nil
		}
	}
	return "", zerr.With(ErrInvalidProductType, "product_type", s)
}

// IsWrapper reports whether the product is a directory bundle.
func (p ProductType) IsWrapper() bool {
	switch p {
	case ProductTypeApplication, ProductTypeAppExtension, ProductTypeFramework, ProductTypeBundle:
		return true
	default:
		return false
	}
}

// HasBinary reports whether the product contains a linked or archived binary.
func (p ProductType) HasBinary() bool {
	switch p {
	case ProductTypeAggregate, ProductTypeExternal:
		return false
	default:
		return true
	}
}

// IsStaticArchive reports whether the product is produced by an archiver rather than a linker.
func (p ProductType) IsStaticArchive() bool {
	return p == ProductTypeStaticLibrary
}

// IsEmbeddable reports whether a copy of this product inside another product must be validated.
func (p ProductType) IsEmbeddable() bool {
	return p == ProductTypeAppExtension
}

// WeakLinkable reports whether a product of this type can be weakly linked.
func (p ProductType) WeakLinkable() bool {
	switch p {
	case ProductTypeStaticLibrary, ProductTypeObjectFile:
		return false
	default:
		return true
	}
}
