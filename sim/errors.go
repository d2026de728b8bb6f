package sim

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

var (
	// ErrInvalidArgument covers malformed arguments: bad 3-element lists,
	// unknown names, empty field arrays.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrMonitor covers monitors that are unbound, have no modes, or have no
	// solver data loaded.
	ErrMonitor = errors.New("monitor error")

	// ErrSource covers sources whose modes cannot be synthesised or selected.
	ErrSource = errors.New("source error")

	// ErrSize is returned by the pre-flight size checks.
	ErrSize = errors.New("simulation size limit exceeded")

	// ErrUnknownField is returned by StoreData for a field tag other than e/h.
	ErrUnknownField = errors.New("unknown field tag")
)

// fail logs the error at the point of detection and returns it wrapped in
// kind. format may use %w to keep a cause in the chain.
func fail(kind error, format string, args ...any) error {
	err := fmt.Errorf("%w: "+format, append([]any{kind}, args...)...)
	logrus.Error(err)
	return err
}
