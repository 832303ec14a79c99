//go:build windows

package prereq

import (
	"fmt"

	"golang.org/x/sys/windows/registry"
)

// registrySource reads HKLM\RegistryKey through the 64-bit view so a
// 32-bit process sees the same values as a 64-bit one.
type registrySource struct {
	path string
}

// NewRegistrySource returns a Source backed by the Windows registry
func NewRegistrySource() Source {
	return registrySource{path: RegistryKey}
}

func (s registrySource) open() (registry.Key, error) {
	return registry.OpenKey(registry.LOCAL_MACHINE, s.path, registry.QUERY_VALUE|registry.WOW64_64KEY)
}

func (s registrySource) ReadDWORD(name string) (uint32, error) {
	k, err := s.open()
	if err != nil {
		return 0, err
	}
	defer k.Close()

	v, typ, err := k.GetIntegerValue(name)
	if err != nil {
		return 0, err
	}
	if typ != registry.DWORD {
		return 0, fmt.Errorf("%s: unexpected value type %d", name, typ)
	}
	return uint32(v), nil
}

func (s registrySource) ReadString(name string) (string, error) {
	k, err := s.open()
	if err != nil {
		return "", err
	}
	defer k.Close()

	v, _, err := k.GetStringValue(name)
	return v, err
}
