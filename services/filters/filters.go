// Package filters builds message predicates for bulk reaction runs
package filters

import (
	"fmt"
	"regexp"
	"strings"

	"emotify/models"
)

var linkPattern = regexp.MustCompile(`(?i)https?://\S+`)

var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp"}

// All matches when every filter matches. No filters match everything.
func All(filters ...models.MessageFilter) models.MessageFilter {
	return func(message models.Message) bool {
		for _, filter := range filters {
			if !filter(message) {
				return false
			}
		}
		return true
	}
}

// Any matches when at least one filter matches
func Any(filters ...models.MessageFilter) models.MessageFilter {
	return func(message models.Message) bool {
		for _, filter := range filters {
			if filter(message) {
				return true
			}
		}
		return false
	}
}

func Not(filter models.MessageFilter) models.MessageFilter {
	return func(message models.Message) bool {
		return !filter(message)
	}
}

// From matches messages by author ID or case-insensitive username
func From(author string) models.MessageFilter {
	author = strings.TrimSpace(author)
	return func(message models.Message) bool {
		if message.AuthorID.String() == author {
			return true
		}
		return strings.EqualFold(message.AuthorName, author)
	}
}

// Contains matches a case-insensitive substring of the content
func Contains(text string) models.MessageFilter {
	text = strings.ToLower(text)
	return func(message models.Message) bool {
		return strings.Contains(strings.ToLower(message.Content), text)
	}
}

func Pinned() models.MessageFilter {
	return func(message models.Message) bool {
		return message.Pinned
	}
}

func Bot() models.MessageFilter {
	return func(message models.Message) bool {
		return message.AuthorIsBot
	}
}

// Has matches messages carrying a kind of content: attachment, embed, image, link, sticker or pin
func Has(kind string) (models.MessageFilter, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "attachment", "file":
		return func(message models.Message) bool {
			return len(message.AttachmentURLs) > 0
		}, nil
	case "embed":
		return func(message models.Message) bool {
			return message.EmbedCount > 0
		}, nil
	case "image":
		return func(message models.Message) bool {
			for _, url := range message.AttachmentURLs {
				if isImageURL(url) {
					return true
				}
			}
			return false
		}, nil
	case "link":
		return func(message models.Message) bool {
			return linkPattern.MatchString(message.Content)
		}, nil
	case "sticker":
		return func(message models.Message) bool {
			return message.StickerCount > 0
		}, nil
	case "pin":
		return Pinned(), nil
	default:
		return nil, fmt.Errorf("unknown content kind %q", kind)
	}
}

func isImageURL(url string) bool {
	path, _, _ := strings.Cut(strings.ToLower(url), "?")
	for _, extension := range imageExtensions {
		if strings.HasSuffix(path, extension) {
			return true
		}
	}
	return false
}

// Options is the CLI view of a message filter
type Options struct {
	From     []string
	Contains []string
	Has      []string
	SkipBots bool
}

// Build combines options into one filter: any listed author, any listed phrase, and every
// listed content kind. It returns nil when no option is set.
func Build(options Options) (models.MessageFilter, error) {
	var filters []models.MessageFilter

	if len(options.From) > 0 {
		authors := make([]models.MessageFilter, 0, len(options.From))
		for _, author := range options.From {
			authors = append(authors, From(author))
		}
		filters = append(filters, Any(authors...))
	}

	if len(options.Contains) > 0 {
		phrases := make([]models.MessageFilter, 0, len(options.Contains))
		for _, phrase := range options.Contains {
			phrases = append(phrases, Contains(phrase))
		}
		filters = append(filters, Any(phrases...))
	}

	for _, kind := range options.Has {
		filter, err := Has(kind)
		if err != nil {
			return nil, err
		}
		filters = append(filters, filter)
	}

	if options.SkipBots {
		filters = append(filters, Not(Bot()))
	}

	if len(filters) == 0 {
		return nil, nil
	}
	return All(filters...), nil
}
