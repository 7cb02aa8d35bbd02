package classifier

import (
	"fmt"

	"filesort/internal/category"
	"filesort/internal/scanner"
)

const systemPrompt = "You are a helpful file organization assistant."

const promptTemplate = `You are a productivity guru!
Based on the following file information, suggest a single appropriate category folder name:
Filename: %s
Type: %s
Created: %s

Respond with just the category name (one word, lowercase) from these options:
%s`

// buildPrompt renders the classification request. Only metadata is included;
// file contents never leave the machine.
func buildPrompt(rec scanner.FileRecord) string {
	mimeType := rec.MimeType
	if mimeType == "" {
		mimeType = scanner.UnknownMIME
	}
	return fmt.Sprintf(promptTemplate, rec.Name, mimeType, rec.CreatedDate(), category.Names())
}
