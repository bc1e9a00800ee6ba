// Package runstatus names the steps of an upload run as reported to status
// hooks and logs.
package runstatus

import "strings"

var keyReplacer = strings.NewReplacer(" ", "_", "(", "", ")", "")

const (
	Validating    = "Validating file"
	Joining       = "Joining channel"
	Uploading     = "Uploading"
	FallingBack   = "Uploading (external)"
	ResolvingLink = "Resolving link"
	Notifying     = "Posting link"
	Done          = "Done"
	Failed        = "Failed"
)

// Key normalizes a status for comparisons and log fields.
func Key(status string) string {
	return keyReplacer.Replace(strings.ToLower(strings.TrimSpace(status)))
}
