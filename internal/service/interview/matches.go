package interview

import (
	"net/url"
	"strings"

	"github.com/salt-byte/cinematic-mirror/backend/internal/model/character"
	"github.com/salt-byte/cinematic-mirror/backend/internal/model/locale"
	"github.com/salt-byte/cinematic-mirror/backend/internal/model/profile"
)

const (
	defaultHitRate  = 85
	defaultMissRate = 80
)

// resolvedMatch keeps the catalog entry next to the match so styling assembly
// can use it.
type resolvedMatch struct {
	match profile.CharacterMatch
	hit   *character.Character
}

// resolveMatches maps raw model matches onto the catalog. Misses still produce a
// match with a placeholder image; entries with neither a hit nor a name are dropped.
func resolveMatches(raw []any, catalog character.Store, loc locale.Locale, defaults ProfileDefaults) []resolvedMatch {
	resolved := make([]resolvedMatch, 0, len(raw))
	for _, item := range raw {
		var entry map[string]any
		switch v := item.(type) {
		case map[string]any:
			entry = v
		case string:
			entry = map[string]any{"name": v}
		default:
			continue
		}

		id := stringField(entry, "id")
		name := stringField(entry, "name")
		description := stringField(entry, "description", "reason")

		hit, ok := lookupCharacter(catalog, id, name)
		if ok {
			image := ""
			if styling, ok := hit.FirstStyling(); ok {
				image = styling.Image
			}
			resolved = append(resolved, resolvedMatch{
				match: profile.CharacterMatch{
					Name:        hit.DisplayName(loc),
					Movie:       hit.DisplayMovie(loc),
					MatchRate:   matchRate(entry, defaultHitRate),
					Description: description,
					Image:       image,
				},
				hit: &hit,
			})
			continue
		}

		if name == "" && id == "" {
			continue
		}
		if name == "" {
			name = defaults.UnknownRole
		}
		resolved = append(resolved, resolvedMatch{
			match: profile.CharacterMatch{
				Name:        name,
				Movie:       stringOr(entry, defaults.UnknownMovie, "movie"),
				MatchRate:   matchRate(entry, defaultMissRate),
				Description: description,
				Image:       placeholderImage(name),
			},
		})
	}
	return resolved
}

func lookupCharacter(catalog character.Store, id, name string) (character.Character, bool) {
	if catalog == nil {
		return character.Character{}, false
	}
	if id != "" {
		if c, ok := catalog.FindByID(id); ok {
			return c, true
		}
	}
	if name != "" {
		return catalog.FindByName(name)
	}
	return character.Character{}, false
}

func matchRate(entry map[string]any, fallback float64) float64 {
	rate, ok := numberField(entry, "matchRate")
	if !ok {
		rate = fallback
	}
	switch {
	case rate < 0:
		return 0
	case rate > 100:
		return 100
	default:
		return rate
	}
}

// placeholderImage is stable for a given name.
func placeholderImage(name string) string {
	return "https://picsum.photos/seed/" + url.PathEscape(strings.ToLower(name)) + "/400/600"
}

// assembleStylings concatenates the first styling of every catalog hit, in match
// order, with the model's own stylingVariants and customStyles. Nothing is merged.
func assembleStylings(matches []resolvedMatch, obj map[string]any) []character.Styling {
	stylings := []character.Styling{}
	for _, m := range matches {
		if m.hit == nil {
			continue
		}
		if styling, ok := m.hit.FirstStyling(); ok {
			stylings = append(stylings, styling)
		}
	}

	for _, key := range []string{"stylingVariants", "customStyles"} {
		for _, item := range listField(obj, key) {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if styling, ok := stylingFromModel(entry); ok {
				stylings = append(stylings, styling)
			}
		}
	}
	return stylings
}

func stylingFromModel(entry map[string]any) (character.Styling, bool) {
	title := stringField(entry, "title")
	if title == "" {
		return character.Styling{}, false
	}

	palette := []character.Swatch{}
	for _, item := range listField(entry, "palette") {
		switch v := item.(type) {
		case map[string]any:
			palette = append(palette, character.Swatch{Name: stringField(v, "name"), Hex: stringField(v, "hex")})
		case string:
			palette = append(palette, character.Swatch{Name: v})
		}
	}

	return character.Styling{
		Title:        title,
		Subtitle:     stringField(entry, "subtitle"),
		Image:        stringField(entry, "image"),
		Palette:      palette,
		Materials:    stringList(listField(entry, "materials")),
		Tailoring:    stringField(entry, "tailoring"),
		Narrative:    stringField(entry, "narrative"),
		DirectorNote: stringField(entry, "directorNote"),
	}, true
}
