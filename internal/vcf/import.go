// Package vcf imports contacts from a vCard stream as new relationships.
package vcf

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/emersion/go-vcard"

	"github.com/tartampluch/go-keepintouch/internal/config"
	"github.com/tartampluch/go-keepintouch/internal/engine"
)

// Import decodes every card in the stream and adds one relationship per
// card through the backend. Malformed cards are skipped, not fatal, to
// maximize data recovery from real-world exports. Returns the number of
// relationships created and the number of cards skipped.
func Import(ctx context.Context, backend engine.Backend, r io.Reader) (int, int, error) {
	log := slog.With(config.LogKeyComponent, config.CompImporter)

	decoder := vcard.NewDecoder(r)
	imported, skipped := 0, 0

	for {
		if err := ctx.Err(); err != nil {
			return imported, skipped, err
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Log error but continue to next card to maximize data recovery
			log.Warn(config.MsgSkippedCard, config.LogKeyError, err)
			skipped++
			continue
		}

		first, last := splitName(card)
		if _, _, err := backend.AddRelationship(ctx, engine.Relationship{
			FirstName: first,
			LastName:  last,
		}); err != nil {
			return imported, skipped, err
		}
		imported++
	}

	log.Info(config.MsgImportFinished,
		slog.Int(config.LogKeyImported, imported),
		slog.Int(config.LogKeySkipped, skipped),
	)
	return imported, skipped, nil
}

// splitName extracts a first/last name pair from a card.
// Name Strategy: N (structured, already split) > FN (formatted) > Fallback.
func splitName(card vcard.Card) (string, string) {
	if name := card.Name(); name != nil && (name.GivenName != "" || name.FamilyName != "") {
		return name.GivenName, name.FamilyName
	}

	if fn := card.Get(config.VCardFN); fn != nil && strings.TrimSpace(fn.Value) != "" {
		parts := strings.Fields(fn.Value)
		if len(parts) == 1 {
			return parts[0], ""
		}
		return parts[0], strings.Join(parts[1:], " ")
	}

	return config.FallbackName, ""
}
