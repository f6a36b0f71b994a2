package eol

import (
	"bytes"
	"fmt"
	"io"
)

const (
	cappedReadErrorTemplateConstant  = "failed to read content: %w"
	cappedDrainErrorTemplateConstant = "failed to drain remaining content: %w"
)

// ReadCapped returns at most maxBytes bytes from reader and then drains the rest of the
// stream so the underlying transport is never left half read. A non-positive maxBytes
// disables the cap.
func ReadCapped(reader io.Reader, maxBytes int64) ([]byte, error) {
	if reader == nil {
		return nil, nil
	}

	if maxBytes <= 0 {
		content, readError := io.ReadAll(reader)
		if readError != nil {
			return nil, fmt.Errorf(cappedReadErrorTemplateConstant, readError)
		}
		return content, nil
	}

	var contentBuffer bytes.Buffer
	if _, readError := io.CopyN(&contentBuffer, reader, maxBytes); readError != nil && readError != io.EOF {
		return nil, fmt.Errorf(cappedReadErrorTemplateConstant, readError)
	}

	if _, drainError := io.Copy(io.Discard, reader); drainError != nil {
		return nil, fmt.Errorf(cappedDrainErrorTemplateConstant, drainError)
	}

	return contentBuffer.Bytes(), nil
}
