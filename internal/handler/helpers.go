package handler

import (
	"strconv"
	"strings"

	appErrors "github.com/noah-isme/timetable-organizer/pkg/errors"
)

func invalidPayload(err error) *appErrors.Error {
	return appErrors.WrapAs(appErrors.ErrValidation, err, "invalid payload")
}

func queryBool(raw, name string) (*bool, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, appErrors.WrapAs(appErrors.ErrValidation, err, name+" must be true or false")
	}
	return &v, nil
}
