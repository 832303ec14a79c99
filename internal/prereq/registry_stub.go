//go:build !windows

package prereq

type unsupportedSource struct{}

// NewRegistrySource returns a Source that fails every read
func NewRegistrySource() Source {
	return unsupportedSource{}
}

func (unsupportedSource) ReadDWORD(string) (uint32, error) {
	return 0, ErrUnsupported
}

func (unsupportedSource) ReadString(string) (string, error) {
	return "", ErrUnsupported
}
