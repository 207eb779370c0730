package domain

// Build setting names read by the planner.
const (
	SettingAction                   = "ACTION"
	SettingArchs                    = "ARCHS"
	SettingBuildVariants            = "BUILD_VARIANTS"
	SettingConfiguration            = "CONFIGURATION"
	SettingPlatformName             = "PLATFORM_NAME"
	SettingProjectName              = "PROJECT_NAME"
	SettingProjectDir               = "PROJECT_DIR"
	SettingSrcRoot                  = "SRCROOT"
	SettingTargetName               = "TARGET_NAME"
	SettingProductName              = "PRODUCT_NAME"
	SettingProductType              = "PRODUCT_TYPE"
	SettingArenaRoot                = "ARENA_ROOT"
	SettingSymRoot                  = "SYMROOT"
	SettingObjRoot                  = "OBJROOT"
	SettingDstRoot                  = "DSTROOT"
	SettingBuiltProductsDir         = "BUILT_PRODUCTS_DIR"
	SettingTargetBuildDir           = "TARGET_BUILD_DIR"
	SettingTargetTempDir            = "TARGET_TEMP_DIR"
	SettingDerivedFileDir           = "DERIVED_FILE_DIR"
	SettingObjectFileDir            = "OBJECT_FILE_DIR"
	SettingSharedPrecompsDir        = "SHARED_PRECOMPS_DIR"
	SettingInstallPath              = "INSTALL_PATH"
	SettingWrapperName              = "WRAPPER_NAME"
	SettingExecutableName           = "EXECUTABLE_NAME"
	SettingExecutablePath           = "EXECUTABLE_PATH"
	SettingExecutableFolderPath     = "EXECUTABLE_FOLDER_PATH"
	SettingContentsFolderPath       = "CONTENTS_FOLDER_PATH"
	SettingResourcesFolderPath      = "UNLOCALIZED_RESOURCES_FOLDER_PATH"
	SettingFrameworksFolderPath     = "FRAMEWORKS_FOLDER_PATH"
	SettingPlugInsFolderPath        = "PLUGINS_FOLDER_PATH"
	SettingSharedSupportFolderPath  = "SHARED_SUPPORT_FOLDER_PATH"
	SettingPublicHeadersFolderPath  = "PUBLIC_HEADERS_FOLDER_PATH"
	SettingPrivateHeadersFolderPath = "PRIVATE_HEADERS_FOLDER_PATH"
	SettingModulesFolderPath        = "MODULES_FOLDER_PATH"
	SettingInfoPlistPath            = "INFOPLIST_PATH"
	SettingFullProductName          = "FULL_PRODUCT_NAME"
	SettingProductModuleName        = "PRODUCT_MODULE_NAME"

	SettingExcludedSourceFileNames = "EXCLUDED_SOURCE_FILE_NAMES"
	SettingIncludedSourceFileNames = "INCLUDED_SOURCE_FILE_NAMES"
	SettingGenerateMasterObject    = "GENERATE_MASTER_OBJECT_FILE"
	SettingPrefixHeader            = "GCC_PREFIX_HEADER"
	SettingPrecompilePrefixHeader  = "GCC_PRECOMPILE_PREFIX_HEADER"
	SettingDefinesModule           = "DEFINES_MODULE"
	SettingModuleMapFile           = "MODULEMAP_FILE"
	SettingInfoPlistFile           = "INFOPLIST_FILE"
	SettingEntitlementsFile        = "CODE_SIGN_ENTITLEMENTS"
	SettingProvisioningProfile     = "PROVISIONING_PROFILE"
	SettingCodeSignIdentity        = "CODE_SIGN_IDENTITY"
	SettingExportedSymbolsFile     = "EXPORTED_SYMBOLS_FILE"
	SettingUnexportedSymbolsFile   = "UNEXPORTED_SYMBOLS_FILE"
	SettingDebugInformationFormat  = "DEBUG_INFORMATION_FORMAT"
	SettingDwarfDsymFolderPath     = "DWARF_DSYM_FOLDER_PATH"
	SettingStripInstalledProduct   = "STRIP_INSTALLED_PRODUCT"
	SettingDeploymentPostprocess   = "DEPLOYMENT_POSTPROCESSING"
	SettingInstallOwner            = "INSTALL_OWNER"
	SettingInstallGroup            = "INSTALL_GROUP"
	SettingInstallModeFlag         = "INSTALL_MODE_FLAG"
	SettingAlternatePermissions    = "ALTERNATE_PERMISSIONS_FILES"
	SettingAlternateOwner          = "ALTERNATE_OWNER"
	SettingAlternateGroup          = "ALTERNATE_GROUP"
	SettingAlternateMode           = "ALTERNATE_MODE"
	SettingShallowBundle           = "SHALLOW_BUNDLE"
	SettingOtherLDFlags            = "OTHER_LDFLAGS"
	SettingOtherCFlags             = "OTHER_CFLAGS"
	SettingCC                      = "CC"
	SettingCompilerFlags           = "COMPILER_FLAGS"
	SettingScriptExportedSettings  = "SCRIPT_EXPORTED_SETTINGS"
)

// Per-invocation variables bound by the task factory.
const (
	VarInputFilePath      = "INPUT_FILE_PATH"
	VarInputFileName      = "INPUT_FILE_NAME"
	VarInputFileBase      = "INPUT_FILE_BASE"
	VarInputFileSuffix    = "INPUT_FILE_SUFFIX"
	VarInputFileDir       = "INPUT_FILE_DIR"
	VarOutputFilePath     = "OUTPUT_FILE_PATH"
	VarCurrentArch        = "CURRENT_ARCH"
	VarCurrentVariant     = "CURRENT_VARIANT"
	VarDialect            = "DIALECT"
	VarDependencyInfoFile = "DEPENDENCY_INFO_FILE"
	VarInputFileList      = "INPUT_FILE_LIST"
	VarPrefixHeader       = "PREFIX_HEADER"
	VarPrefixHeaderFlags  = "PREFIX_HEADER_FLAGS"
	VarLinkerInputs       = "LINKER_INPUTS"
	VarInputFiles         = "INPUT_FILES"
	VarScriptFile         = "SCRIPT_FILE"
	VarScriptShell        = "SCRIPT_SHELL"
	VarSigningTarget      = "SIGNING_TARGET"
	VarEntitlements       = "ENTITLEMENTS_FILE"
	VarEntitlementsFlags  = "ENTITLEMENTS_FLAGS"
	VarExternalTool       = "EXTERNAL_TOOL"
	VarExternalArgs       = "EXTERNAL_ARGS"
	VarModuleName         = "MODULE_NAME"
	VarGeneratedHeader    = "GENERATED_HEADER"
	VarModuleOutput       = "MODULE_OUTPUT"
)

// Condition names understood by scopes.
const (
	ConditionArch     = "arch"
	ConditionVariant  = "variant"
	ConditionPlatform = "platform"
	ConditionConfig   = "config"
	ConditionAction   = "action"
)
