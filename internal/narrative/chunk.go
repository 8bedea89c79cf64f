package narrative

import (
	"regexp"
	"strings"
)

var dateToken = regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`)

// Chunk is a run of narrative text that starts at a date token. The leading
// chunk of a narrative may have no date when text precedes the first token.
type Chunk struct {
	Date string
	Body string
}

// Chunks splits text at every M/D/YYYY token, preserving order
func Chunks(text string) []Chunk {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return nil
	}

	locs := dateToken.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []Chunk{{Body: text}}
	}

	var chunks []Chunk
	if lead := text[:locs[0][0]]; strings.TrimSpace(lead) != "" {
		chunks = append(chunks, Chunk{Body: lead})
	}

	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		chunks = append(chunks, Chunk{
			Date: text[loc[0]:loc[1]],
			Body: text[loc[1]:end],
		})
	}

	return chunks
}
