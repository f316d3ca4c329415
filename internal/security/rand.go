package security

import (
	"errors"
	"io"
)

// Alphanumeric: алфавит идентификаторов комнат и кодов доступа.
const Alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

var ErrEmptyAlphabet = errors.New("empty alphabet")

// RandomString собирает строку длины n из символов alphabet.
// Байты выше наибольшего кратного len(alphabet) отбрасываются, чтобы не было перекоса.
func RandomString(r io.Reader, alphabet string, n int) (string, error) {
	if len(alphabet) == 0 || len(alphabet) > 256 {
		return "", ErrEmptyAlphabet
	}
	limit := 256 - 256%len(alphabet)

	out := make([]byte, 0, n)
	buf := make([]byte, n)
	for len(out) < n {
		if _, err := io.ReadFull(r, buf[:n-len(out)]); err != nil {
			return "", err
		}
		for _, b := range buf[:n-len(out)] {
			if int(b) >= limit {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
		}
	}

	return string(out), nil
}
