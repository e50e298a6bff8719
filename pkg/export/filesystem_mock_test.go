package export

import (
	"bytes"
	"io"

	"github.com/stretchr/testify/mock"
)

type fileManagementMock struct {
	mock.Mock
	written bytes.Buffer
}

func (fm *fileManagementMock) writeFileAtomically(path string, write func(io.Writer) error) error {
	args := fm.Called(path)
	if err := write(&fm.written); err != nil {
		return err
	}
	return args.Error(0)
}
