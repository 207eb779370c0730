package domain

const (
	// ProjectFileName is the name of the project configuration file.
	ProjectFileName = "draft.yaml"

	// WorkFileName is the name of the workspace configuration file.
	WorkFileName = "draft.work.yaml"

	// DefaultConfiguration is used when a build request does not name a configuration.
	DefaultConfiguration = "Debug"

	// DefaultPlatform is used when a build request does not name a platform.
	DefaultPlatform = "macosx"

	// DefaultVariant is the build variant whose binaries carry no suffix.
	DefaultVariant = "normal"

	// DefaultArenaDirName is the output root used when no arena override is given.
	DefaultArenaDirName = "build"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)
