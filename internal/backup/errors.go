package backup

import "errors"

// ErrBackupNotFound is returned when a snapshot ID does not exist on disk.
var ErrBackupNotFound = errors.New("backup not found")
