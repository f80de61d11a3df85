package model

import "errors"

var ErrorInvalidInput = errors.New("invalid input")
var ErrorStorage = errors.New("storage failure")
