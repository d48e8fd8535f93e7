package cli

import "errors"

var (
	errNotLoggedIn   = errors.New("not logged in, run: academyctl login")
	errUnknownFormat = errors.New("unknown output format, use json or yaml")
	errBodyRequired  = errors.New("a request body is required, use --data, --file or --set")
)
