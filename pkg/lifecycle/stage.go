package lifecycle

import "fmt"

// Stage names one phase of the build lifecycle.
type Stage string

const (
	StageAnnounce      Stage = "announce"
	StageExport        Stage = "export"
	StageSetup         Stage = "setup"
	StageBeforeInstall Stage = "before_install"
	StageInstall       Stage = "install"
	StageAfterInstall  Stage = "after_install"
	StageBeforeScript  Stage = "before_script"
	StageScript        Stage = "script"
	StageAfterScript   Stage = "after_script"
)

var stageOrder = []Stage{
	StageAnnounce,
	StageExport,
	StageSetup,
	StageBeforeInstall,
	StageInstall,
	StageAfterInstall,
	StageBeforeScript,
	StageScript,
	StageAfterScript,
}

// Stages returns every stage in execution order.
func Stages() []Stage {
	return append([]Stage(nil), stageOrder...)
}

// ParseStage returns the stage called name.
func ParseStage(name string) (Stage, error) {
	for _, s := range stageOrder {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStage, name)
}

// UserOverridable reports whether a build config may replace the stage with
// its own command list.
func (s Stage) UserOverridable() bool {
	switch s {
	case StageAnnounce, StageExport, StageSetup:
		return false
	}
	return true
}

func (s Stage) String() string {
	return string(s)
}
