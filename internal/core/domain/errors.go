package domain

import "go.trai.ch/zerr"

var (
	// ErrDuplicateTask is returned when two tasks register the same rule-identity tuple.
	ErrDuplicateTask = zerr.New("duplicate tasks")

	// ErrDuplicateProducer is reported when two distinct tasks declare the same output node.
	ErrDuplicateProducer = zerr.New("multiple tasks produce the same output")

	// ErrCycleDetected is returned when the task graph or target graph contains a cycle.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrPlanFinalized is returned when a task is added to a plan after Finalize.
	ErrPlanFinalized = zerr.New("build plan is already finalized")

	// ErrPlanningFailed is returned when a target failed to plan and errors are not allowed to continue.
	ErrPlanningFailed = zerr.New("task construction failed")

	// ErrPlanningCancelled is returned when planning observes a cancelled context.
	ErrPlanningCancelled = zerr.New("task construction cancelled")

	// ErrNoTargetsSpecified is returned when a build request contains no targets.
	ErrNoTargetsSpecified = zerr.New("no targets specified")

	// ErrTargetNotFound is returned when a requested target does not exist in the workspace.
	ErrTargetNotFound = zerr.New("target not found")

	// ErrAmbiguousTarget is returned when a target name without project matches targets in several projects.
	ErrAmbiguousTarget = zerr.New("target name is ambiguous, qualify it as Project/Target")

	// ErrUnresolvedDependency is returned when a target depends on a target that cannot be resolved.
	ErrUnresolvedDependency = zerr.New("unable to resolve target dependency")

	// ErrMissingCopyFile is returned when a copy-files phase references a file that does not exist.
	ErrMissingCopyFile = zerr.New("file referenced by copy phase does not exist")

	// ErrInvalidProductType is returned when a target declares an unknown product type.
	ErrInvalidProductType = zerr.New("invalid product type")

	// ErrInvalidPhaseType is returned when a build phase declares an unknown phase type.
	ErrInvalidPhaseType = zerr.New("invalid build phase type")

	// ErrInvalidCopyDestination is returned when a copy-files phase declares an unknown destination.
	ErrInvalidCopyDestination = zerr.New("invalid copy destination")

	// ErrInvalidBuildRule is returned when a build rule has neither patterns nor a file type, or no outputs.
	ErrInvalidBuildRule = zerr.New("invalid build rule")

	// ErrInvalidAction is returned when a build action is not recognised.
	ErrInvalidAction = zerr.New("invalid build action, expected 'build' or 'install'")

	// ErrInvalidTargetName is returned when a target name is empty or contains reserved characters.
	ErrInvalidTargetName = zerr.New("target name can only contain alphanumeric characters, spaces, dots, hyphens and underscores")

	// ErrDuplicateTargetName is returned when a project declares two targets with the same name.
	ErrDuplicateTargetName = zerr.New("duplicate target name")

	// ErrMissingProjectName is returned when a project file does not declare a project name.
	ErrMissingProjectName = zerr.New("missing project name")

	// ErrInvalidProjectName is returned when a project name contains invalid characters.
	ErrInvalidProjectName = zerr.New("project name can only contain alphanumeric characters, dots, hyphens and underscores")

	// ErrDuplicateProjectName is returned when multiple projects share the same name in a workspace.
	ErrDuplicateProjectName = zerr.New("duplicate project name")

	// ErrUnknownTool is returned when a rule or phase references a tool the registry does not know.
	ErrUnknownTool = zerr.New("tool specification not found")

	// ErrToolSpecParseFailed is returned when the built-in tool specifications cannot be parsed.
	ErrToolSpecParseFailed = zerr.New("failed to parse tool specifications")

	// ErrSettingsParseFailed is returned when built-in default settings cannot be parsed.
	ErrSettingsParseFailed = zerr.New("failed to parse default settings")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigNotFound is returned when the config file cannot be found.
	ErrConfigNotFound = zerr.New("could not find draft.yaml or draft.work.yaml")

	// ErrInvalidOverride is returned when a command-line setting override is not in KEY=VALUE form.
	ErrInvalidOverride = zerr.New("invalid setting override, expected KEY=VALUE")

	// ErrDumpFailed is returned when the plan cannot be written to the dump directory.
	ErrDumpFailed = zerr.New("failed to dump build plan")
)
