package errors

import "strings"

// Append clubs together all provided errors. Nil values are ignored.
//
// If given error implements unpacker interface, it is flattened. All
// errors are put together as they would create a list.
func Append(errs ...error) error {
	var res multiError
	for _, e := range errs {
		if isNilErr(e) {
			continue
		}
		if u, ok := e.(unpacker); ok {
			res = append(res, u.Unpack()...)
		} else {
			res = append(res, e)
		}
	}

	switch len(res) {
	case 0:
		return nil
	case 1:
		return res[0]
	default:
		return res
	}
}

type multiError []error

func (e multiError) Error() string {
	switch len(e) {
	case 0:
		return "<nil>"
	case 1:
		return e[0].Error()
	}

	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Unpack implements unpacker interface.
func (e multiError) Unpack() []error {
	return e
}

func isNilErr(err error) bool {
	if err == nil {
		return true
	}
	if e, ok := err.(multiError); ok {
		return len(e) == 0
	}
	return false
}

// unpacker is an interface implemented by an error that can be split into
// a collection of errors it is made of.
type unpacker interface {
	Unpack() []error
}
