package export

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const exportFileMode = 0644

type filesystemManagement interface {
	writeFileAtomically(path string, write func(io.Writer) error) error
}

type fileManagement struct{}

// writeFileAtomically streams into a temporary file next to path and renames
// it into place only when every write succeeded, so a failed export never
// leaves a partial file behind.
func (fs *fileManagement) writeFileAtomically(path string, write func(io.Writer) error) error {
	directory := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(directory, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temporary export file")
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	buffered := bufio.NewWriter(tmpFile)
	if err := write(buffered); err != nil {
		tmpFile.Close()
		return err
	}
	if err := buffered.Flush(); err != nil {
		tmpFile.Close()
		return errors.Wrap(err, "write export file")
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return errors.Wrap(err, "sync export file")
	}
	if err := tmpFile.Close(); err != nil {
		return errors.Wrap(err, "close export file")
	}
	if err := os.Chmod(tmpPath, exportFileMode); err != nil {
		return errors.Wrap(err, "set export file mode")
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return errors.Wrapf(err, "move export file to %s", path)
	}

	success = true
	return nil
}
