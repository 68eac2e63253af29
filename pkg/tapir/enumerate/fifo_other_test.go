//go:build !unix

package enumerate

import "errors"

func mkfifo(path string) error {
	return errors.New("fifos not supported on this platform")
}
