package services

import "errors"

var (
	errUnknownSymbol   = errors.New("symbol not found")
	errValidationDrift = errors.New("stored prices drifted beyond tolerance")
)
