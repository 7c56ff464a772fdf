package inline

import "errors"

var (
	// ErrNilInput is returned when a processor is initialized without a sequence or page grid.
	ErrNilInput = errors.New("inline: sequence and page grid are required")

	// ErrInvalidLineBounds is returned when the end of a line lies before its start.
	ErrInvalidLineBounds = errors.New("inline: line end before line start")

	// ErrZeroWidthBlock reports an inline block whose content width collapsed to zero
	// after margins, borders and padding were subtracted. It points at a measurement bug upstream.
	ErrZeroWidthBlock = errors.New("inline: inline block has no content width")

	// ErrContentOutsideBox reports a CONTENT or END element that appears before any START.
	ErrContentOutsideBox = errors.New("inline: invalid sequence, content outside of a box context")
)
