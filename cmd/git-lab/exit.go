package main

import (
	laberrors "lab/internal/errors"
	"lab/internal/logging"
)

// exitCode maps an error to the process exit status. Every failure is 1
// except a refused checkout or branch creation, which is reported but
// leaves the status at 0.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if laberrors.Is(err, laberrors.KindBranchOperation) {
		return 0
	}
	return 1
}

// report prints err once at Error severity and returns the exit status.
func report(log logging.Logger, err error) int {
	if err == nil {
		return 0
	}
	log.Log(logging.SeverityError, laberrors.UserMessage(err))
	return exitCode(err)
}
