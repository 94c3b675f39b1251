package codec

import (
	"errors"
	"fmt"
)

// ErrInvalidCharacter indicates a decode input contains a character outside the encoding's alphabet.
var ErrInvalidCharacter = errors.New("invalid character")

type InvalidCharacterError struct {
	Encoding string
	Char     rune
	Pos      int
}

func (e *InvalidCharacterError) Error() string {
	return fmt.Sprintf("invalid %s character %q at position %d", e.Encoding, e.Char, e.Pos)
}

func (e *InvalidCharacterError) Is(target error) bool {
	return target == ErrInvalidCharacter
}
