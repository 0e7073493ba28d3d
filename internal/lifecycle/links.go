package lifecycle

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/akyairhashvil/problemtracker/internal/config"
	"github.com/akyairhashvil/problemtracker/internal/models"
)

// NormalizePhone keeps digits only and rewrites local mobile numbers
// (05..., 5...) to the international 966 form.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	switch {
	case strings.HasPrefix(digits, "05"):
		return config.CountryCode + digits[1:]
	case strings.HasPrefix(digits, "5"):
		return config.CountryCode + digits
	}
	return digits
}

// ContactLink is the plain chat link shown next to each phone number.
func ContactLink(base, phone string) string {
	return strings.TrimRight(base, "/") + "/" + NormalizePhone(phone)
}

// RenderMessage fills {reporter}, {description} and {number}.
func RenderMessage(template string, p models.Problem) string {
	return strings.NewReplacer(
		"{reporter}", p.Reporter,
		"{description}", p.Description,
		"{number}", p.ProblemNumber,
	).Replace(template)
}

// MessageLink is ContactLink with the rendered message pre-filled.
func MessageLink(base string, p models.Problem, template string) string {
	text := strings.ReplaceAll(url.QueryEscape(RenderMessage(template, p)), "+", "%20")
	return ContactLink(base, p.Phone) + "?text=" + text
}

// ClipboardOpener copies links to the system clipboard.
type ClipboardOpener struct{}

func (ClipboardOpener) OpenLink(_ context.Context, link string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("clipboard unsupported on this system")
	}
	return clipboard.WriteAll(link)
}

// WriterOpener prints links, one per line.
type WriterOpener struct {
	W io.Writer
}

func (o WriterOpener) OpenLink(_ context.Context, link string) error {
	_, err := fmt.Fprintln(o.W, link)
	return err
}
