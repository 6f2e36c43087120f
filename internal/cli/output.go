package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"wastelookup/internal/collection"
	apierrors "wastelookup/internal/errors"
)

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// userError prefixes lookup failures with the message residents see.
func userError(err error) error {
	switch {
	case errors.Is(err, collection.ErrNotFound):
		return fmt.Errorf("%s (%w)", apierrors.MessageChipNotFound, err)
	case errors.Is(err, collection.ErrInvalidRange):
		return fmt.Errorf("%s (%w)", apierrors.MessageInvalidRange, err)
	case errors.Is(err, collection.ErrEmptyRange):
		return fmt.Errorf("%s (%w)", apierrors.MessageEmptyRange, err)
	default:
		return fmt.Errorf("%s %w", apierrors.MessageLoadFailed, err)
	}
}
