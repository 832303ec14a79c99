// Package prereq checks that the runtime redistributable the Windows build
// links against is installed and recent enough.
//
// The check never fails its caller: the outcome is a property value of
// "1" or "0" that the installer's own conditions act on.
package prereq

import (
	"errors"
	"fmt"

	"rawkvm/internal/logging"
)

var logger = logging.Child("[prereq]")

// Registry location and value names, read from the 64-bit view.
const (
	RegistryKey    = `SOFTWARE\Microsoft\VisualStudio\14.0\VC\Runtimes\x64`
	ValueInstalled = "Installed"
	ValueMajor     = "Major"
	ValueMinor     = "Minor"
	ValueVersion   = "Version"

	// PropertyName is the installer property set from the result
	PropertyName = "VC_REDIST_VERSION_OK"
)

// ErrUnsupported is returned by the registry source outside Windows
var ErrUnsupported = errors.New("prereq: registry not available on this platform")

// Source reads values under RegistryKey.
type Source interface {
	ReadDWORD(name string) (uint32, error)
	ReadString(name string) (string, error)
}

// Requirement is the minimum accepted major.minor version.
type Requirement struct {
	Major uint32
	Minor uint32
}

// Satisfied applies "major greater, or major equal and minor at least".
func (r Requirement) Satisfied(major, minor uint32) bool {
	if major > r.Major {
		return true
	}
	return major == r.Major && minor >= r.Minor
}

func (r Requirement) String() string {
	return fmt.Sprintf("%d.%d", r.Major, r.Minor)
}

// Result is the outcome of Check.
type Result struct {
	OK     bool
	Major  uint32
	Minor  uint32
	Reason string
}

// PropertyValue returns the installer property value, "1" or "0".
func (r Result) PropertyValue() string {
	if r.OK {
		return "1"
	}
	return "0"
}

// Check reads the installed flag and version from src and compares them to req.
// Numeric Major/Minor values are preferred over the Version string.
func Check(src Source, req Requirement) Result {
	logger.Debugf("checking for runtime redistributable >= %s", req)

	installed, err := src.ReadDWORD(ValueInstalled)
	if err != nil || installed == 0 {
		logger.Debugf("redistributable not installed or key missing")
		return Result{Reason: "not installed"}
	}

	major, errMaj := src.ReadDWORD(ValueMajor)
	minor, errMin := src.ReadDWORD(ValueMinor)
	if errMaj != nil || errMin != nil {
		ver, err := src.ReadString(ValueVersion)
		if err != nil {
			logger.Debugf("version string not found")
			return Result{Reason: "version not found"}
		}
		major, minor = ParseVersion(ver)
		logger.Debugf("parsed version string %q: %d.%d", ver, major, minor)
	} else {
		logger.Debugf("found version Major=%d Minor=%d", major, minor)
	}

	res := Result{Major: major, Minor: minor, OK: req.Satisfied(major, minor)}
	if res.OK {
		res.Reason = fmt.Sprintf("found %d.%d", major, minor)
	} else {
		res.Reason = fmt.Sprintf("found %d.%d, need %s", major, minor, req)
	}
	return res
}

// ParseVersion reads the leading major and minor numbers of a version
// string of the form v<major>.<minor>.<build>.<revision>. Parts that
// cannot be read are returned as 0.
func ParseVersion(s string) (major, minor uint32) {
	n, _ := fmt.Sscanf(s, "v%d.%d", &major, &minor)
	switch n {
	case 0:
		return 0, 0
	case 1:
		return major, 0
	}
	return major, minor
}
