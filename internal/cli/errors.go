package cli

import "errors"

var errNoProject = errors.New("no project given; pass a directory or --project (or set PHICHAIN_PROJECT)")
