package reader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/ssargent/pff/pkg/codec"
	"github.com/ssargent/pff/pkg/frame"
)

// FilePath resolves the file for index. A base ending in ".pff" names a
// single file and is returned unchanged with numbered=false; any other base
// is a stub followed by a six digit file index.
func FilePath(base string, index int) (path string, numbered bool) {
	if strings.HasSuffix(base, Extension) {
		return base, false
	}
	return fmt.Sprintf("%s%06d%s", base, index, Extension), true
}

// fileContext is the state of one open file. It is created by openFile
// and discarded on close or rollover.
type fileContext struct {
	path   string
	index  int
	file   *os.File
	stream *frame.Stream
	header *codec.Header
}

func (fc *fileContext) compressed() bool {
	return fc.header.Zipped
}

func (fc *fileContext) close() error {
	if fc.file == nil {
		return nil
	}
	err := fc.file.Close()
	fc.file = nil
	fc.stream = nil
	return err
}

// openFile opens the file for index and decodes its header. Errors wrap
// ErrOpenFailed when the file cannot be opened, or the header/frame error
// otherwise.
func (r *Reader) openFile(index int) (*fileContext, error) {
	path, _ := FilePath(r.config.BasePath, index)

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrOpenFailed, path, err)
	}

	fc := &fileContext{
		path:   path,
		index:  index,
		file:   file,
		stream: frame.NewStream(file, r.config.frameOptions()...),
	}

	data, err := fc.stream.ReadRecord()
	if err != nil {
		fc.close()
		r.metrics.decodeError(kindHeader)
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s: no header record", ErrInvalidHeader, path)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidHeader, path, err)
	}

	header, err := codec.DecodeHeader(data)
	if err != nil {
		fc.close()
		r.metrics.decodeError(kindHeader)
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	fc.header = header

	if int(header.FileNumber) != index {
		r.logger.Warn("file number in header does not match sequence",
			zap.String("path", path),
			zap.Int("index", index),
			zap.Int32("header_file_number", header.FileNumber))
	}

	r.metrics.fileOpened()
	r.logger.Debug("opened file",
		zap.String("path", path),
		zap.Int("index", index),
		zap.String("run", header.RunIdentifier),
		zap.Bool("zipped", header.Zipped))
	return fc, nil
}

// advance closes the current file and opens the next one. It returns
// ErrEndOfStream when there is no next file.
func (r *Reader) advance() error {
	next := r.index + 1
	if r.file != nil {
		if err := r.closeFile(); err != nil {
			r.logger.Warn("failed to close file", zap.Error(err))
		}
	}

	if _, numbered := FilePath(r.config.BasePath, next); !numbered {
		r.state = StateExhausted
		return ErrEndOfStream
	}

	fc, err := r.openFile(next)
	if err != nil {
		r.state = StateExhausted
		if errors.Is(err, ErrOpenFailed) {
			r.logger.Info("end of input", zap.Int("files", next), zap.String("reason", err.Error()))
			return ErrEndOfStream
		}
		r.logger.Error("failed to open next file", zap.Error(err))
		return err
	}

	r.file = fc
	r.index = fc.index
	r.header = fc.header
	r.state = StateHeaderRead
	r.logger.Info("rolled over", zap.String("path", fc.path), zap.Int("index", fc.index))
	if r.onFileOpened != nil {
		r.onFileOpened(fc.index, *fc.header)
	}
	return nil
}

func (r *Reader) closeFile() error {
	if r.file == nil {
		return nil
	}
	err := r.file.close()
	r.file = nil
	return err
}
