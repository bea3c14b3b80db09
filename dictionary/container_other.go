//go:build !unix

package dictionary

import "os"

// mmapContainer falls back to a plain read on non-unix platforms: an
// owned buffer rather than a true memory map. Bytes/Close present the
// same container contract either way.
type mmapContainer struct {
	data []byte
}

func openMmap(path string) (*mmapContainer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, newError(InvalidArgument, "file is empty", nil)
	}
	return &mmapContainer{data: data}, nil
}

func (m *mmapContainer) Bytes() []byte { return m.data }
func (m *mmapContainer) Close() error  { return nil }
