package handlers

import (
	"fmt"

	"github.com/transpoze/drivegate/pkg/gateway"
)

func sharedMessage(res *gateway.BulkResult, email string) string {
	return fmt.Sprintf("Shared %d of %d folders with %s", res.Succeeded(), res.Total, email)
}

func deletedMessage(res *gateway.BulkResult) string {
	return fmt.Sprintf("Successfully deleted %d of %d folders", res.Succeeded(), res.Total)
}

func sharedFileMessage(email string) string {
	return "File successfully shared with " + email
}

func copiedMessage(email string) string {
	return fmt.Sprintf("File successfully copied to %s's Google Drive", email)
}
