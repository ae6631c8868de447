package rest_test

import (
	"errors"
	"strconv"
)

func errorsAs(err error, target any) bool {
	return errors.As(err, target)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
